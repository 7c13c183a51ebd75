package skeleton

import "github.com/go-gl/mathgl/mgl64"

// JOINT_PARENT_NONE marks the tree root in a parent index array.
const JOINT_PARENT_NONE = -1

// Joint is a bind-pose articulation point. Offset is relative to the parent joint.
type Joint struct {
	Offset mgl64.Vec3
	Parent int
	Name   string
}

// SparseTuple is one (vertex, bone, weight) influence record. The skeleton keeps
// them for the skinning stage and never interprets them.
type SparseTuple struct {
	Vertex int     `json:"vertex" yaml:"vertex"`
	Bone   int     `json:"bone" yaml:"bone"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// Line connects two point indices of a flattened skeleton.
type Line [2]int
