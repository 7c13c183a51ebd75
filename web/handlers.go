package web

import (
	"bytes"
	"io"
	"io/ioutil"
	"log"
	"net/http"
	"strconv"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/mogaika/skeleton_viewer/camera"
	"github.com/mogaika/skeleton_viewer/rig"
	"github.com/mogaika/skeleton_viewer/skeleton"
	"github.com/mogaika/skeleton_viewer/viewer"
	"github.com/mogaika/skeleton_viewer/webutils"
)

type flattenResult struct {
	Points []mgl64.Vec3    `json:"points"`
	Lines  []skeleton.Line `json:"lines"`
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*viewer.Session, bool) {
	id := mux.Vars(r)["id"]
	ss, ok := s.Registry.Get(id)
	if !ok {
		webutils.WriteErrorStatus(w, http.StatusNotFound, errors.Errorf("skeleton %q not found", id))
	}
	return ss, ok
}

// bone accepts either a bone id or the name of its distal joint.
func (s *Server) bone(w http.ResponseWriter, r *http.Request, ss *viewer.Session) (int, bool) {
	param := mux.Vars(r)["bone"]
	if id, err := strconv.Atoi(param); err == nil {
		return id, true
	}
	id, found := 0, false
	ss.View(func(sk *skeleton.Skeleton) {
		if b := sk.BoneByName(param); b != nil {
			id, found = b.Id(), true
		}
	})
	if !found {
		webutils.WriteErrorStatus(w, http.StatusNotFound, errors.Errorf("bone %q not found", param))
	}
	return id, found
}

func vec3Params(r *http.Request, x, y, z string) (mgl64.Vec3, error) {
	var v mgl64.Vec3
	for i, name := range []string{x, y, z} {
		f, err := webutils.FloatParam(r, name, 0)
		if err != nil {
			return v, err
		}
		v[i] = f
	}
	return v, nil
}

// screenRay builds a pick ray from a viewport click:
// sx, sy, w, h for the pixel and viewport, tx, ty, tz, dist, pitch, yaw for the
// orbit camera and an optional fov.
func screenRay(r *http.Request) (mgl64.Vec3, mgl64.Vec3, error) {
	var params [7]float64
	for i, name := range []string{"sx", "sy", "w", "h", "dist", "pitch", "yaw"} {
		v, err := webutils.FloatParam(r, name, 0)
		if err != nil {
			return mgl64.Vec3{}, mgl64.Vec3{}, err
		}
		params[i] = v
	}
	target, err := vec3Params(r, "tx", "ty", "tz")
	if err != nil {
		return mgl64.Vec3{}, mgl64.Vec3{}, err
	}
	proj := camera.DefaultProjection()
	if proj.Fov, err = webutils.FloatParam(r, "fov", proj.Fov); err != nil {
		return mgl64.Vec3{}, mgl64.Vec3{}, err
	}

	cam := camera.NewOrbitController(target, params[4], params[5], params[6])
	return camera.ScreenRay(cam, proj, params[0], params[1], int(params[2]), int(params[3]))
}

func writePoseError(w http.ResponseWriter, err error) {
	if errors.Cause(err) == viewer.ErrBoneNotFound {
		webutils.WriteErrorStatus(w, http.StatusNotFound, err)
	} else {
		webutils.WriteErrorStatus(w, http.StatusBadRequest, err)
	}
}

func writeFlatten(w http.ResponseWriter, ss *viewer.Session) {
	points, lines := ss.Flatten()
	webutils.WriteJson(w, &flattenResult{Points: points, Lines: lines})
}

func (s *Server) HandlerAjaxSkeletons(w http.ResponseWriter, r *http.Request) {
	type entry struct {
		Id    string `json:"id"`
		Name  string `json:"name"`
		Bones int    `json:"bones"`
	}
	list := make([]entry, 0)
	for _, ss := range s.Registry.List() {
		list = append(list, entry{Id: ss.Id.String(), Name: ss.Name, Bones: ss.Len()})
	}
	webutils.WriteJson(w, list)
}

func (s *Server) HandlerAjaxSkeleton(w http.ResponseWriter, r *http.Request) {
	if ss, ok := s.session(w, r); ok {
		webutils.WriteJson(w, ss.Summary())
	}
}

func (s *Server) HandlerRemoveSkeleton(w http.ResponseWriter, r *http.Request) {
	if ss, ok := s.session(w, r); ok {
		s.Registry.Remove(ss.Id.String())
		s.Status.Info("Closed %q", ss.Name)
		webutils.WriteJson(w, map[string]string{"removed": ss.Id.String()})
	}
}

func (s *Server) HandlerAjaxFlatten(w http.ResponseWriter, r *http.Request) {
	if ss, ok := s.session(w, r); ok {
		writeFlatten(w, ss)
	}
}

func (s *Server) HandlerAjaxJoints(w http.ResponseWriter, r *http.Request) {
	if ss, ok := s.session(w, r); ok {
		webutils.WriteJson(w, ss.JointPositions())
	}
}

func (s *Server) HandlerAjaxTransforms(w http.ResponseWriter, r *http.Request) {
	if ss, ok := s.session(w, r); ok {
		webutils.WriteJson(w, ss.WorldTransforms())
	}
}

func (s *Server) HandlerAjaxPick(w http.ResponseWriter, r *http.Request) {
	ss, ok := s.session(w, r)
	if !ok {
		return
	}
	var origin, dir mgl64.Vec3
	var err error
	if webutils.HasParam(r, "sx") {
		origin, dir, err = screenRay(r)
	} else if origin, err = vec3Params(r, "ox", "oy", "oz"); err == nil {
		dir, err = vec3Params(r, "dx", "dy", "dz")
	}
	if err != nil {
		webutils.WriteErrorStatus(w, http.StatusBadRequest, err)
		return
	}
	radius, err := webutils.FloatParam(r, "r", 0)
	if err != nil {
		webutils.WriteErrorStatus(w, http.StatusBadRequest, err)
		return
	}

	type pickResult struct {
		Hit  bool `json:"hit"`
		Bone int  `json:"bone"`
	}
	id, hit := ss.Pick(origin, dir, radius)
	if !hit {
		id = -1
	}
	webutils.WriteJson(w, &pickResult{Hit: hit, Bone: id})
}

func (s *Server) HandlerActionRoll(w http.ResponseWriter, r *http.Request) {
	ss, ok := s.session(w, r)
	if !ok {
		return
	}
	bone, ok := s.bone(w, r, ss)
	if !ok {
		return
	}

	if webutils.HasParam(r, "steps") {
		steps, err := strconv.Atoi(r.URL.Query().Get("steps"))
		if err != nil {
			webutils.WriteErrorStatus(w, http.StatusBadRequest, errors.Errorf("steps must be integer"))
			return
		}
		err = ss.RollSteps(bone, steps)
		if err != nil {
			writePoseError(w, err)
			return
		}
	} else {
		theta, err := webutils.FloatParam(r, "theta", 0)
		if err == nil {
			err = ss.Roll(bone, theta)
		}
		if err != nil {
			writePoseError(w, err)
			return
		}
	}
	writeFlatten(w, ss)
}

func (s *Server) HandlerActionRotate(w http.ResponseWriter, r *http.Request) {
	ss, ok := s.session(w, r)
	if !ok {
		return
	}
	bone, ok := s.bone(w, r, ss)
	if !ok {
		return
	}

	axis, err := vec3Params(r, "ax", "ay", "az")
	if err != nil {
		webutils.WriteErrorStatus(w, http.StatusBadRequest, err)
		return
	}
	if axis.Len() == 0 {
		webutils.WriteErrorStatus(w, http.StatusBadRequest, errors.Errorf("rotation axis is zero"))
		return
	}

	if webutils.HasParam(r, "drag") {
		var pixels float64
		if pixels, err = webutils.FloatParam(r, "drag", 0); err == nil {
			err = ss.RotateDrag(bone, pixels, axis)
		}
	} else {
		var angle float64
		if angle, err = webutils.FloatParam(r, "angle", 0); err == nil {
			err = ss.Rotate(bone, angle, axis)
		}
	}
	if err != nil {
		writePoseError(w, err)
		return
	}
	writeFlatten(w, ss)
}

func (s *Server) HandlerActionReset(w http.ResponseWriter, r *http.Request) {
	if ss, ok := s.session(w, r); ok {
		ss.Reset()
		writeFlatten(w, ss)
	}
}

func (s *Server) HandlerActionScript(w http.ResponseWriter, r *http.Request) {
	ss, ok := s.session(w, r)
	if !ok {
		return
	}
	text, err := ioutil.ReadAll(r.Body)
	if err != nil {
		webutils.WriteErrorStatus(w, http.StatusBadRequest, errors.Wrapf(err, "Failed to read script"))
		return
	}
	commands, err := ss.RunScript(text)
	if err != nil {
		webutils.WriteErrorStatus(w, http.StatusBadRequest, err)
		return
	}
	log.Printf("[web] Applied %d pose commands to %q", len(commands), ss.Name)
	writeFlatten(w, ss)
}

// exportFile renders one export into memory, reporting progress on the status hub.
func (s *Server) exportFile(w http.ResponseWriter, fileName string, export func(w io.Writer) error) {
	s.Status.Progress(0, "Exporting %q", fileName)
	var buf bytes.Buffer
	if err := export(&buf); err != nil {
		s.Status.Error("Failed to export %q: %v", fileName, err)
		webutils.WriteError(w, errors.Wrapf(err, "Failed to export %q", fileName))
		return
	}
	s.Status.Progress(1, "Exported %q (%d bytes)", fileName, buf.Len())
	webutils.WriteFile(w, &buf, fileName)
}

func (s *Server) HandlerDumpGLTF(w http.ResponseWriter, r *http.Request) {
	if ss, ok := s.session(w, r); ok {
		s.exportFile(w, ss.Name+".glb", ss.ExportGLB)
	}
}

func (s *Server) HandlerDumpFBX(w http.ResponseWriter, r *http.Request) {
	if ss, ok := s.session(w, r); ok {
		s.exportFile(w, ss.Name+".fbx", ss.ExportFBX)
	}
}

func (s *Server) HandlerDumpRig(w http.ResponseWriter, r *http.Request) {
	if ss, ok := s.session(w, r); ok {
		webutils.WriteJsonFile(w, ss.Rig(), ss.Name)
	}
}

func (s *Server) HandlerDumpDebug(w http.ResponseWriter, r *http.Request) {
	if ss, ok := s.session(w, r); ok {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		webutils.WriteResult(w, []byte(ss.Dump()))
	}
}

// HandlerUploadSkeleton loads a rig file from the "data" form field. JSON is
// detected by content, anything else is read as YAML.
func (s *Server) HandlerUploadSkeleton(w http.ResponseWriter, r *http.Request) {
	data, err := webutils.ReadFormFile(r, "data")
	if err != nil {
		webutils.WriteErrorStatus(w, http.StatusBadRequest, err)
		return
	}

	format := rig.FORMAT_YAML
	if trimmed := bytes.TrimSpace(data); len(trimmed) != 0 && trimmed[0] == '{' {
		format = rig.FORMAT_JSON
	}
	rg, err := rig.Parse(data, format)
	if err != nil {
		webutils.WriteErrorStatus(w, http.StatusBadRequest, err)
		return
	}
	if rg.Name == "" {
		rg.Name = r.FormValue("name")
	}

	ss, err := s.Registry.AddRig(rg)
	if err != nil {
		webutils.WriteErrorStatus(w, http.StatusBadRequest, err)
		s.Status.Error("Failed to load rig: %v", err)
		return
	}
	s.Status.Info("Loaded %q with %d bones", ss.Name, ss.Len())
	webutils.WriteJson(w, ss.Summary())
}

func (s *Server) HandlerStatus(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[web] ws upgrade error: %v", err)
		return
	}
	s.Status.ServeClient(conn)
}
