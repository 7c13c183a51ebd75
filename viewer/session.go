// Package viewer shares loaded skeletons between concurrent requests.
package viewer

import (
	"io"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mogaika/skeleton_viewer/config"
	"github.com/mogaika/skeleton_viewer/export"
	"github.com/mogaika/skeleton_viewer/posescript"
	"github.com/mogaika/skeleton_viewer/rig"
	"github.com/mogaika/skeleton_viewer/skeleton"
	"github.com/mogaika/skeleton_viewer/utils"
)

var ErrBoneNotFound = errors.New("bone not found")

const (
	EVENT_ROLL   = "roll"
	EVENT_ROTATE = "rotate"
	EVENT_RESET  = "reset"
	EVENT_SCRIPT = "script"
)

// Event describes a pose change. Bone is -1 for whole-skeleton changes.
type Event struct {
	Session string  `json:"session"`
	Kind    string  `json:"kind"`
	Bone    int     `json:"bone"`
	Angle   float64 `json:"angle,omitempty"`
}

// Session guards one skeleton: posing takes the write lock, queries the read lock.
type Session struct {
	Id      uuid.UUID
	Name    string
	Created time.Time
	order   int

	lock     sync.RWMutex
	skeleton *skeleton.Skeleton
	notify   func(Event)
}

func NewSession(name string, s *skeleton.Skeleton) *Session {
	return &Session{
		Id:       uuid.New(),
		Name:     name,
		Created:  time.Now(),
		skeleton: s,
	}
}

func (ss *Session) emit(e Event) {
	if ss.notify != nil {
		e.Session = ss.Id.String()
		ss.notify(e)
	}
}

// View runs f under the read lock. f must not retain s or pose it.
func (ss *Session) View(f func(s *skeleton.Skeleton)) {
	ss.lock.RLock()
	defer ss.lock.RUnlock()
	f(ss.skeleton)
}

type BoneInfo struct {
	Id       int        `json:"id"`
	Name     string     `json:"name"`
	Parent   int        `json:"parent"`
	Children []int      `json:"children"`
	Length   float64    `json:"length"`
	Proximal mgl64.Vec3 `json:"proximal"`
	Distal   mgl64.Vec3 `json:"distal"`
}

type Summary struct {
	Id      string     `json:"id"`
	Name    string     `json:"name"`
	Created time.Time  `json:"created"`
	Bones   []BoneInfo `json:"bones"`
}

func (ss *Session) Summary() Summary {
	sum := Summary{Id: ss.Id.String(), Name: ss.Name, Created: ss.Created}
	ss.View(func(s *skeleton.Skeleton) {
		sum.Bones = make([]BoneInfo, 0, s.Len())
		for _, b := range s.Bones() {
			info := BoneInfo{
				Id:       b.Id(),
				Name:     export.BoneName(s, b),
				Parent:   -1,
				Children: make([]int, 0, len(b.Children())),
				Length:   b.Length(),
				Proximal: b.ProximalWorld(),
				Distal:   b.DistalWorld(),
			}
			if b.Parent() != nil {
				info.Parent = b.Parent().Id()
			}
			for _, c := range b.Children() {
				info.Children = append(info.Children, c.Id())
			}
			sum.Bones = append(sum.Bones, info)
		}
	})
	return sum
}

func (ss *Session) Len() (n int) {
	ss.View(func(s *skeleton.Skeleton) { n = s.Len() })
	return n
}

func (ss *Session) Flatten() (points []mgl64.Vec3, lines []skeleton.Line) {
	ss.View(func(s *skeleton.Skeleton) { points, lines = s.FlattenForDisplay() })
	return points, lines
}

func (ss *Session) JointPositions() (points []mgl64.Vec3) {
	ss.View(func(s *skeleton.Skeleton) { points = s.JointPositions() })
	return points
}

func (ss *Session) WorldTransforms() (transforms []mgl64.Mat4) {
	ss.View(func(s *skeleton.Skeleton) { transforms = s.WorldTransforms() })
	return transforms
}

// Pick uses the configured pick radius when radius is not positive.
func (ss *Session) Pick(origin, dir mgl64.Vec3, radius float64) (id int, found bool) {
	if radius <= 0 {
		radius = config.Get().PickRadius
	}
	ss.View(func(s *skeleton.Skeleton) { id, found = s.Pick(origin, dir, radius) })
	return id, found
}

func (ss *Session) pose(boneId int, f func(b *skeleton.Bone)) error {
	ss.lock.Lock()
	defer ss.lock.Unlock()
	b := ss.skeleton.BoneById(boneId)
	if b == nil {
		return errors.Wrapf(ErrBoneNotFound, "bone %d", boneId)
	}
	f(b)
	return nil
}

func (ss *Session) Roll(boneId int, theta float64) error {
	if err := ss.pose(boneId, func(b *skeleton.Bone) { b.Roll(theta) }); err != nil {
		return err
	}
	ss.emit(Event{Kind: EVENT_ROLL, Bone: boneId, Angle: theta})
	return nil
}

// RollSteps rolls by steps times the configured roll speed.
func (ss *Session) RollSteps(boneId int, steps int) error {
	return ss.Roll(boneId, float64(steps)*config.Get().RollSpeed)
}

func (ss *Session) Rotate(boneId int, angle float64, axis mgl64.Vec3) error {
	if err := ss.pose(boneId, func(b *skeleton.Bone) { b.Rotate(angle, axis) }); err != nil {
		return err
	}
	ss.emit(Event{Kind: EVENT_ROTATE, Bone: boneId, Angle: angle})
	return nil
}

// RotateDrag rotates by the dragged distance in pixels times the configured rotation speed.
func (ss *Session) RotateDrag(boneId int, pixels float64, axis mgl64.Vec3) error {
	return ss.Rotate(boneId, pixels*config.Get().RotationSpeed, axis)
}

func (ss *Session) Reset() {
	ss.lock.Lock()
	ss.skeleton.ResetPose()
	ss.lock.Unlock()
	ss.emit(Event{Kind: EVENT_RESET, Bone: -1})
}

// RunScript parses and applies a pose script as one write-locked step.
func (ss *Session) RunScript(text []byte) ([]*posescript.Command, error) {
	commands, err := posescript.Parse(text)
	if err != nil {
		return nil, err
	}
	ss.lock.Lock()
	err = posescript.Apply(ss.skeleton, commands)
	ss.lock.Unlock()
	if err != nil {
		return nil, err
	}
	ss.emit(Event{Kind: EVENT_SCRIPT, Bone: -1})
	return commands, nil
}

func (ss *Session) ExportGLB(w io.Writer) error {
	var err error
	ss.View(func(s *skeleton.Skeleton) {
		doc, e := export.ExportGLTFDefault(ss.Name, s)
		if e != nil {
			err = e
			return
		}
		err = export.WriteGLB(w, doc)
	})
	return err
}

func (ss *Session) ExportFBX(w io.Writer) error {
	var err error
	ss.View(func(s *skeleton.Skeleton) { err = export.ExportFBX(w, ss.Name, s) })
	return err
}

// Rig describes the bind pose so the session can be saved and reloaded.
func (ss *Session) Rig() (r *rig.Rig) {
	ss.View(func(s *skeleton.Skeleton) { r = rig.FromSkeleton(ss.Name, s) })
	return r
}

func (ss *Session) Dump() (dump string) {
	ss.View(func(s *skeleton.Skeleton) {
		dump = utils.SDump(ss.Name, s.Joints(), s.WorldTransforms(), s.Weights())
	})
	return dump
}
