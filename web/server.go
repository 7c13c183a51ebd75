package web

import (
	"log"
	"net/http"
	"os"
	"path"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/mogaika/skeleton_viewer/status"
	"github.com/mogaika/skeleton_viewer/viewer"
)

type Server struct {
	Registry *viewer.Registry
	Status   *status.Hub

	upgrader websocket.Upgrader
}

// NewServer forwards pose events of reg to hub.
func NewServer(reg *viewer.Registry, hub *status.Hub) *Server {
	s := &Server{Registry: reg, Status: hub}
	reg.OnEvent = func(e viewer.Event) { hub.Pose(e) }
	return s
}

func (s *Server) Router(webPath string) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/json/skeletons", s.HandlerAjaxSkeletons).Methods("GET")
	r.HandleFunc("/json/skeleton/{id}", s.HandlerAjaxSkeleton).Methods("GET")
	r.HandleFunc("/json/skeleton/{id}", s.HandlerRemoveSkeleton).Methods("DELETE")
	r.HandleFunc("/json/skeleton/{id}/flatten", s.HandlerAjaxFlatten).Methods("GET")
	r.HandleFunc("/json/skeleton/{id}/joints", s.HandlerAjaxJoints).Methods("GET")
	r.HandleFunc("/json/skeleton/{id}/transforms", s.HandlerAjaxTransforms).Methods("GET")
	r.HandleFunc("/json/skeleton/{id}/pick", s.HandlerAjaxPick).Methods("GET")
	r.HandleFunc("/action/skeleton/{id}/bone/{bone}/roll", s.HandlerActionRoll).Methods("POST")
	r.HandleFunc("/action/skeleton/{id}/bone/{bone}/rotate", s.HandlerActionRotate).Methods("POST")
	r.HandleFunc("/action/skeleton/{id}/reset", s.HandlerActionReset).Methods("POST")
	r.HandleFunc("/action/skeleton/{id}/script", s.HandlerActionScript).Methods("POST")
	r.HandleFunc("/dump/skeleton/{id}/gltf", s.HandlerDumpGLTF).Methods("GET")
	r.HandleFunc("/dump/skeleton/{id}/fbx", s.HandlerDumpFBX).Methods("GET")
	r.HandleFunc("/dump/skeleton/{id}/rig", s.HandlerDumpRig).Methods("GET")
	r.HandleFunc("/dump/skeleton/{id}/debug", s.HandlerDumpDebug).Methods("GET")
	r.HandleFunc("/upload/skeleton", s.HandlerUploadSkeleton).Methods("POST")
	r.HandleFunc("/ws/status", s.HandlerStatus)

	if webPath != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(path.Join(webPath, "data"))))
	}
	return r
}

func StartServer(addr string, s *Server, webPath string) error {
	h := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(s.Router(webPath))
	h = handlers.LoggingHandler(os.Stdout, h)

	log.Printf("[web] Starting server %v", addr)

	return http.ListenAndServe(addr, h)
}
