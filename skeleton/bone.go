package skeleton

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const epsilon = 1e-9

// Bone is a rigid segment between a proximal and a distal joint.
// World-space results are recomputed from the ancestor chain on every call.
type Bone struct {
	id       int
	parent   *Bone
	children []*Bone

	proximal int
	distal   int

	length    float64
	local     mgl64.Mat4
	bindFrame mgl64.Mat3
	frame     mgl64.Mat3
}

// newBone computes the bind frame and local translation. proximalWorld and
// distalOffset are bind-pose values taken from the joint arena.
func newBone(id int, proximal, distal int, proximalWorld, distalOffset mgl64.Vec3, parent *Bone) *Bone {
	b := &Bone{
		id:       id,
		parent:   parent,
		proximal: proximal,
		distal:   distal,
		length:   distalOffset.Len(),
		local:    mgl64.Ident4(),
	}

	parentOrientation := mgl64.Ident3()
	if parent != nil {
		parentOrientation = parent.WorldOrientation()
		p := parent.WorldTransform().Inv().Mul4x1(proximalWorld.Vec4(1)).Vec3()
		b.local = mgl64.Translate3D(p[0], p[1], p[2])
	}

	// orientation is orthonormal, so its transpose brings the world offset into parent space
	b.bindFrame = frameFromTangent(parentOrientation.Transpose().Mul3x1(distalOffset))
	b.frame = b.bindFrame

	return b
}

func (b *Bone) Id() int               { return b.id }
func (b *Bone) Parent() *Bone         { return b.parent }
func (b *Bone) Children() []*Bone     { return b.children }
func (b *Bone) Length() float64       { return b.length }
func (b *Bone) ProximalJoint() int    { return b.proximal }
func (b *Bone) DistalJoint() int      { return b.distal }
func (b *Bone) Frame() mgl64.Mat3     { return b.frame }
func (b *Bone) BindFrame() mgl64.Mat3 { return b.bindFrame }
func (b *Bone) Local() mgl64.Mat4     { return b.local }
func (b *Bone) Tangent() mgl64.Vec3   { return b.frame.Col(FRAME_TANGENT) }
func (b *Bone) Normal() mgl64.Vec3    { return b.frame.Col(FRAME_NORMAL) }
func (b *Bone) Binormal() mgl64.Vec3  { return b.frame.Col(FRAME_BINORMAL) }

// BindTransform is WorldTransform evaluated with every frame in the bind pose.
func (b *Bone) BindTransform() mgl64.Mat4 {
	m := b.local.Mul4(b.bindFrame.Mat4())
	if b.parent != nil {
		return b.parent.BindTransform().Mul4(m)
	}
	return m
}

func (b *Bone) addChild(child *Bone) {
	b.children = append(b.children, child)
}

// WorldTransform is parent world transform * local translation * pose frame.
func (b *Bone) WorldTransform() mgl64.Mat4 {
	m := b.local.Mul4(b.frame.Mat4())
	if b.parent != nil {
		return b.parent.WorldTransform().Mul4(m)
	}
	return m
}

// WorldOrientation is the rotation-only part of WorldTransform.
func (b *Bone) WorldOrientation() mgl64.Mat3 {
	if b.parent != nil {
		return b.parent.WorldOrientation().Mul3(b.frame)
	}
	return b.frame
}

// WorldTranslation returns a pure translation to the proximal joint's current
// world position.
func (b *Bone) WorldTranslation() mgl64.Mat4 {
	p := b.ProximalWorld()
	return mgl64.Translate3D(p[0], p[1], p[2])
}

func (b *Bone) parentWorld() mgl64.Mat4 {
	if b.parent != nil {
		return b.parent.WorldTransform()
	}
	return mgl64.Ident4()
}

func (b *Bone) ProximalWorld() mgl64.Vec3 {
	return b.parentWorld().Mul4(b.local).Col(3).Vec3()
}

func (b *Bone) DistalWorld() mgl64.Vec3 {
	return b.WorldTransform().Mul4x1(mgl64.Vec4{0, 0, b.length, 1}).Vec3()
}

// DisplayTransform maps a unit cylinder along +z onto the bone.
func (b *Bone) DisplayTransform() mgl64.Mat4 {
	return b.WorldTransform().Mul4(mgl64.Scale3D(1, 1, b.length))
}

// Roll twists the bone around its own tangent. The distal joint does not move.
func (b *Bone) Roll(theta float64) {
	if !finite(theta) || theta == 0 {
		return
	}
	// rotation about local z, which the frame maps onto the tangent
	b.frame = orthonormalize(b.frame.Mul3(mgl64.Rotate3DZ(theta)))
}

// Rotate turns the whole frame by angle around a world-space axis.
func (b *Bone) Rotate(angle float64, axis mgl64.Vec3) {
	if !finite(angle, axis[0], axis[1], axis[2]) || angle == 0 || axis.Len() < epsilon {
		return
	}
	parentOrientation := mgl64.Ident3()
	if b.parent != nil {
		parentOrientation = b.parent.WorldOrientation()
	}
	localAxis := parentOrientation.Transpose().Mul3x1(axis.Normalize())
	rotation := mgl64.QuatRotate(angle, localAxis.Normalize()).Mat4().Mat3()
	b.frame = orthonormalize(rotation.Mul3(b.frame))
}

// ResetPose restores the bind-pose frame.
func (b *Bone) ResetPose() {
	b.frame = b.bindFrame
}

// Intersect casts a ray against an open cylinder of the given radius around the
// bone axis, clipped to [0, length]. The direction is normalized, so the result
// is the distance from origin to the nearest hit.
func (b *Bone) Intersect(origin, dir mgl64.Vec3, radius float64) (float64, bool) {
	if !(radius > 0) || !finite(origin[0], origin[1], origin[2], dir[0], dir[1], dir[2]) {
		return 0, false
	}
	// scale by the largest component first so tiny directions do not underflow
	m := math.Max(math.Abs(dir[0]), math.Max(math.Abs(dir[1]), math.Abs(dir[2])))
	if m == 0 {
		return 0, false
	}
	dir = mgl64.Vec3{dir[0] / m, dir[1] / m, dir[2] / m}.Normalize()

	inv := b.WorldTransform().Inv()
	o := inv.Mul4x1(origin.Vec4(1)).Vec3()
	d := inv.Mul4x1(dir.Vec4(0)).Vec3()

	qa := d[0]*d[0] + d[1]*d[1]
	qb := 2 * (o[0]*d[0] + o[1]*d[1])
	qc := o[0]*o[0] + o[1]*o[1] - radius*radius

	if qa < epsilon {
		// parallel to the axis: either always inside the tube or never
		if qc > 0 {
			return 0, false
		}
		return b.axialEntry(o[2], d[2])
	}

	disc := qb*qb - 4*qa*qc
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	roots := [2]float64{(-qb - sq) / (2 * qa), (-qb + sq) / (2 * qa)}

	for _, t := range roots {
		if t < 0 {
			continue
		}
		if z := o[2] + t*d[2]; z >= -epsilon && z <= b.length+epsilon {
			return t, true
		}
	}
	return 0, false
}

func (b *Bone) axialEntry(oz, dz float64) (float64, bool) {
	if oz >= 0 && oz <= b.length {
		return 0, true
	}
	if math.Abs(dz) < epsilon {
		return 0, false
	}
	best, found := 0.0, false
	for _, z := range [2]float64{0, b.length} {
		t := (z - oz) / dz
		if t >= 0 && (!found || t < best) {
			best, found = t, true
		}
	}
	return best, found
}

// Flatten appends the proximal and distal world points and the line joining
// them, then recurses into the children.
func (b *Bone) Flatten(parent mgl64.Mat4, points []mgl64.Vec3, lines []Line) ([]mgl64.Vec3, []Line) {
	base := parent.Mul4(b.local)
	world := base.Mul4(b.frame.Mat4())

	points = append(points,
		base.Col(3).Vec3(),
		world.Mul4x1(mgl64.Vec4{0, 0, b.length, 1}).Vec3())
	lines = append(lines, Line{len(points) - 2, len(points) - 1})

	for _, child := range b.children {
		points, lines = child.Flatten(world, points, lines)
	}
	return points, lines
}
