package viewer

import (
	"log"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mogaika/skeleton_viewer/rig"
	"github.com/mogaika/skeleton_viewer/skeleton"
)

type Registry struct {
	lock     sync.RWMutex
	sessions map[uuid.UUID]*Session
	loaded   int

	// OnEvent receives pose changes of every session. Set it before adding sessions.
	OnEvent func(Event)
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[uuid.UUID]*Session)}
}

func (r *Registry) Add(name string, s *skeleton.Skeleton) *Session {
	ss := NewSession(name, s)
	ss.notify = r.OnEvent

	r.lock.Lock()
	r.loaded++
	ss.order = r.loaded
	r.sessions[ss.Id] = ss
	r.lock.Unlock()

	log.Printf("[viewer] Loaded %q (%d bones) as %v", name, s.Len(), ss.Id)
	return ss
}

// AddRig builds the rig and registers it under the rig name.
func (r *Registry) AddRig(rg *rig.Rig) (*Session, error) {
	s, err := rg.Build()
	if err != nil {
		return nil, err
	}
	return r.Add(rg.Name, s), nil
}

// LoadFile reads a rig file and registers it.
func (r *Registry) LoadFile(path string) (*Session, error) {
	rg, err := rig.LoadFile(path)
	if err != nil {
		return nil, err
	}
	ss, err := r.AddRig(rg)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot load %q", path)
	}
	return ss, nil
}

// Get accepts the textual session id. Malformed ids are reported as missing.
func (r *Registry) Get(id string) (*Session, bool) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, false
	}
	r.lock.RLock()
	defer r.lock.RUnlock()
	ss, ok := r.sessions[uid]
	return ss, ok
}

func (r *Registry) Remove(id string) bool {
	uid, err := uuid.Parse(id)
	if err != nil {
		return false
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, ok := r.sessions[uid]; !ok {
		return false
	}
	delete(r.sessions, uid)
	return true
}

// List returns sessions ordered by load time.
func (r *Registry) List() []*Session {
	r.lock.RLock()
	result := make([]*Session, 0, len(r.sessions))
	for _, ss := range r.sessions {
		result = append(result, ss)
	}
	r.lock.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].order < result[j].order })
	return result
}
