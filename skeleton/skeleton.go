// Package skeleton implements the bone hierarchy: bind-pose construction from
// flat joint arrays, forward kinematics, posing and ray picking.
//
// A Skeleton is not safe for concurrent use. Callers sharing one between
// goroutines must serialize posing against queries (see package viewer).
package skeleton

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type Skeleton struct {
	joints []Joint
	root   *Bone
	byId   map[int]*Bone
	bones  []*Bone

	weights []SparseTuple
}

// Build validates the joint arrays and instantiates every bone, parents first.
// The returned error, if any, has ErrConfiguration as its cause.
func Build(offsets []mgl64.Vec3, parents []int, weights []SparseTuple) (*Skeleton, error) {
	return BuildNamed(offsets, parents, nil, weights)
}

// BuildNamed is Build with optional joint names (nil or one per offset).
func BuildNamed(offsets []mgl64.Vec3, parents []int, names []string, weights []SparseTuple) (*Skeleton, error) {
	if len(offsets) != len(parents) {
		return nil, configErrorf("offsets count %d does not match parents count %d", len(offsets), len(parents))
	}
	if names != nil && len(names) != len(offsets) {
		return nil, configErrorf("names count %d does not match offsets count %d", len(names), len(offsets))
	}
	rootJoint, err := validateParents(parents)
	if err != nil {
		return nil, err
	}
	for i, o := range offsets {
		if !finite(o[0], o[1], o[2], o.Len()) {
			return nil, configErrorf("joint %d has non-finite offset %v", i, o)
		}
	}

	s := &Skeleton{
		joints:  make([]Joint, len(offsets)+1),
		byId:    make(map[int]*Bone, len(offsets)),
		bones:   make([]*Bone, 0, len(offsets)),
		weights: append([]SparseTuple(nil), weights...),
	}
	for i := range offsets {
		s.joints[i] = Joint{Offset: offsets[i], Parent: parents[i]}
		if names != nil {
			s.joints[i].Name = names[i]
		}
	}
	syntheticRoot := len(offsets)
	s.joints[syntheticRoot] = Joint{Parent: JOINT_PARENT_NONE, Name: "origin"}

	children := make([][]int, len(offsets))
	for i, p := range parents {
		if p != JOINT_PARENT_NONE {
			children[p] = append(children[p], i)
		}
	}

	// joints[rootJoint] hangs off the synthetic origin
	s.root = s.addBone(syntheticRoot, rootJoint, mgl64.Vec3{}, nil)
	s.growBones(s.root, rootJoint, offsets[rootJoint], children)

	return s, nil
}

// validateParents returns the index of the single root joint.
func validateParents(parents []int) (int, error) {
	n := len(parents)
	if n == 0 {
		return 0, configErrorf("skeleton has no joints")
	}

	root := -1
	for i, p := range parents {
		switch {
		case p == JOINT_PARENT_NONE:
			if root != -1 {
				return 0, configErrorf("joints %d and %d are both marked as root", root, i)
			}
			root = i
		case p < 0 || p >= n:
			return 0, configErrorf("joint %d references parent %d out of range [0, %d)", i, p, n)
		case p == i:
			return 0, configErrorf("joint %d is its own parent", i)
		}
	}
	if root == -1 {
		return 0, configErrorf("no root joint (parent %d) found", JOINT_PARENT_NONE)
	}

	// 0 unknown, 1 in progress, 2 reaches root
	state := make([]byte, n)
	state[root] = 2
	for i := range parents {
		path := make([]int, 0, 8)
		j := i
		for state[j] == 0 {
			state[j] = 1
			path = append(path, j)
			j = parents[j]
		}
		if state[j] == 1 {
			return 0, configErrorf("joint %d is part of a parent cycle", j)
		}
		for _, k := range path {
			state[k] = 2
		}
	}
	return root, nil
}

func (s *Skeleton) addBone(proximal, distal int, proximalWorld mgl64.Vec3, parent *Bone) *Bone {
	b := newBone(len(s.bones), proximal, distal, proximalWorld, s.joints[distal].Offset, parent)
	s.bones = append(s.bones, b)
	s.byId[b.id] = b
	if parent != nil {
		parent.addChild(b)
	}
	return b
}

func (s *Skeleton) growBones(parent *Bone, joint int, jointWorld mgl64.Vec3, children [][]int) {
	for _, c := range children[joint] {
		b := s.addBone(joint, c, jointWorld, parent)
		s.growBones(b, c, jointWorld.Add(s.joints[c].Offset), children)
	}
}

func (s *Skeleton) Root() *Bone     { return s.root }
func (s *Skeleton) Len() int        { return len(s.bones) }
func (s *Skeleton) Bones() []*Bone  { return s.bones }
func (s *Skeleton) Joints() []Joint { return s.joints }

// Joint returns the arena entry at i. The last entry is the synthetic origin.
func (s *Skeleton) Joint(i int) (Joint, bool) {
	if i < 0 || i >= len(s.joints) {
		return Joint{}, false
	}
	return s.joints[i], true
}

// Weights returns a copy of the stored influence tuples.
func (s *Skeleton) Weights() []SparseTuple {
	return append([]SparseTuple(nil), s.weights...)
}

func (s *Skeleton) BoneById(id int) *Bone {
	return s.byId[id]
}

// BoneByName finds the bone whose distal joint carries name.
func (s *Skeleton) BoneByName(name string) *Bone {
	if name == "" {
		return nil
	}
	for _, b := range s.bones {
		if s.joints[b.distal].Name == name {
			return b
		}
	}
	return nil
}

func (s *Skeleton) BoneAt(i int) *Bone {
	if i < 0 || i >= len(s.bones) {
		return nil
	}
	return s.bones[i]
}

// Pick returns the id of the bone nearest along the ray, if any is hit.
func (s *Skeleton) Pick(origin, dir mgl64.Vec3, radius float64) (int, bool) {
	best := math.Inf(1)
	id, found := 0, false
	for _, b := range s.bones {
		if t, ok := b.Intersect(origin, dir, radius); ok && t < best {
			best = t
			id, found = b.id, true
		}
	}
	return id, found
}

// FlattenForDisplay produces two points and one line per bone.
func (s *Skeleton) FlattenForDisplay() ([]mgl64.Vec3, []Line) {
	points := make([]mgl64.Vec3, 0, 2*len(s.bones))
	lines := make([]Line, 0, len(s.bones))
	return s.root.Flatten(mgl64.Ident4(), points, lines)
}

// JointPositions is FlattenForDisplay without the line records.
func (s *Skeleton) JointPositions() []mgl64.Vec3 {
	points, _ := s.FlattenForDisplay()
	return points
}

// WorldTransforms returns every bone's world transform indexed by bone id.
func (s *Skeleton) WorldTransforms() []mgl64.Mat4 {
	result := make([]mgl64.Mat4, len(s.bones))
	for _, b := range s.bones {
		result[b.id] = b.WorldTransform()
	}
	return result
}

func (s *Skeleton) ResetPose() {
	for _, b := range s.bones {
		b.ResetPose()
	}
}
