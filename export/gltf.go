// Package export converts a posed skeleton into interchange formats.
package export

import (
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/mogaika/skeleton_viewer/skeleton"
	"github.com/mogaika/skeleton_viewer/utils"
)

// BoneName prefers the distal joint name and falls back to the bone id.
func BoneName(s *skeleton.Skeleton, b *skeleton.Bone) string {
	if j, ok := s.Joint(b.DistalJoint()); ok && j.Name != "" {
		return j.Name
	}
	return fmt.Sprintf("bone_%d", b.Id())
}

// LocalPose is the bone transform relative to its parent bone in the current pose.
func LocalPose(b *skeleton.Bone) (mgl64.Vec3, mgl64.Quat) {
	return utils.RigidDecompose(b.Local().Mul4(b.Frame().Mat4()))
}

type GLTFSkeletonExported struct {
	// node index of every bone, indexed by bone id
	BoneNodes []uint32
}

// ExportGLTF appends one node per bone and a skin binding them to doc. Node
// transforms carry the current pose, inverse bind matrices the bind pose.
func ExportGLTF(doc *gltf.Document, name string, s *skeleton.Skeleton) (*GLTFSkeletonExported, error) {
	if s == nil || s.Len() == 0 {
		return nil, errors.Errorf("Skeleton %q is empty", name)
	}

	exported := &GLTFSkeletonExported{
		BoneNodes: make([]uint32, s.Len()),
	}

	for _, b := range s.Bones() {
		pos, rot := LocalPose(b)
		q := utils.QuatTo32(rot)
		node := &gltf.Node{
			Name:        BoneName(s, b),
			Translation: utils.Vec3To32(pos),
			Rotation:    q.V.Vec4(q.W),
			Scale:       [3]float32{1, 1, 1},
		}
		exported.BoneNodes[b.Id()] = uint32(len(doc.Nodes))
		doc.Nodes = append(doc.Nodes, node)
	}

	// parents precede children in id order, so every child node already exists
	for _, b := range s.Bones() {
		node := doc.Nodes[exported.BoneNodes[b.Id()]]
		for _, child := range b.Children() {
			node.Children = append(node.Children, exported.BoneNodes[child.Id()])
		}
	}

	inverseBind := make([][4][4]float32, s.Len())
	for _, b := range s.Bones() {
		m := utils.Mat4ToArray(b.BindTransform().Inv())
		for col := 0; col < 4; col++ {
			copy(inverseBind[b.Id()][col][:], m[col*4:col*4+4])
		}
	}
	ibm := modeler.WriteAccessor(doc, gltf.TargetNone, inverseBind)

	skin := &gltf.Skin{
		Name:                name,
		InverseBindMatrices: gltf.Index(ibm),
		Skeleton:            gltf.Index(exported.BoneNodes[s.Root().Id()]),
		Joints:              append([]uint32(nil), exported.BoneNodes...),
	}
	if weights := s.Weights(); len(weights) != 0 {
		skin.Extras = map[string]interface{}{"weights": weights}
	}
	doc.Skins = append(doc.Skins, skin)

	if len(doc.Scenes) != 0 {
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, exported.BoneNodes[s.Root().Id()])
	}

	return exported, nil
}

func ExportGLTFDefault(name string, s *skeleton.Skeleton) (*gltf.Document, error) {
	doc := gltf.NewDocument()
	if _, err := ExportGLTF(doc, name, s); err != nil {
		return nil, errors.Wrapf(err, "Failed to export %q", name)
	}
	return doc, nil
}

func WriteGLB(w io.Writer, doc *gltf.Document) error {
	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return encoder.Encode(doc)
}
