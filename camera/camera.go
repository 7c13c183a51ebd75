// Package camera turns viewport clicks into world-space pick rays.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

type Camera interface {
	GetViewMatrix() mgl64.Mat4
	Position() mgl64.Vec3
}

// OrbitController circles Target. Pitch and Yaw are in degrees.
type OrbitController struct {
	Target   mgl64.Vec3
	Distance float64
	Pitch    float64 // x rotation
	Yaw      float64 // y rotation
}

func NewOrbitController(target mgl64.Vec3, dist, pitch, yaw float64) *OrbitController {
	return &OrbitController{
		Target:   target,
		Distance: dist,
		Pitch:    pitch,
		Yaw:      yaw,
	}
}

func (c *OrbitController) GetViewMatrix() mgl64.Mat4 {
	return mgl64.LookAtV(c.Position(), c.Target, mgl64.Vec3{0, 1, 0})
}

func (c *OrbitController) Position() mgl64.Vec3 {
	pitch, yaw := mgl64.DegToRad(c.Pitch), mgl64.DegToRad(c.Yaw)
	return mgl64.Vec3{
		c.Distance * math.Cos(pitch) * math.Sin(yaw),
		c.Distance * math.Sin(pitch),
		c.Distance * math.Cos(pitch) * math.Cos(yaw),
	}.Add(c.Target)
}

type Projection struct {
	Fov  float64 // vertical, degrees
	Near float64
	Far  float64
}

func DefaultProjection() Projection {
	return Projection{Fov: 45, Near: 0.1, Far: 1000}
}

func (p Projection) Matrix(aspect float64) mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(p.Fov), aspect, p.Near, p.Far)
}

// ScreenRay unprojects a viewport pixel (origin top-left) into a ray that
// starts on the near plane. dir is normalized.
func ScreenRay(c Camera, p Projection, x, y float64, width, height int) (origin, dir mgl64.Vec3, err error) {
	if width <= 0 || height <= 0 {
		return origin, dir, errors.Errorf("Invalid viewport %dx%d", width, height)
	}
	view := c.GetViewMatrix()
	proj := p.Matrix(float64(width) / float64(height))
	winY := float64(height) - y

	near, err := mgl64.UnProject(mgl64.Vec3{x, winY, 0}, view, proj, 0, 0, width, height)
	if err != nil {
		return origin, dir, errors.Wrapf(err, "Unproject near")
	}
	far, err := mgl64.UnProject(mgl64.Vec3{x, winY, 1}, view, proj, 0, 0, width, height)
	if err != nil {
		return origin, dir, errors.Wrapf(err, "Unproject far")
	}
	return near, far.Sub(near).Normalize(), nil
}
