package utils

import (
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestQuatToEuler(t *testing.T) {
	tests := []struct {
		angle float64
		axis  mgl64.Vec3
		out   mgl64.Vec3
	}{
		{0, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{}},
		{math.Pi / 2, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{math.Pi / 2, 0, 0}},
		{0.3, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 0.3, 0}},
		{-1, mgl64.Vec3{0, 0, 1}, mgl64.Vec3{0, 0, -1}},
	}
	for _, test := range tests {
		e := QuatToEuler(mgl64.QuatRotate(test.angle, test.axis))
		if !e.ApproxEqualThreshold(test.out, 1e-9) {
			t.Errorf("QuatToEuler(%v about %v)=%v; expected %v", test.angle, test.axis, e, test.out)
		}
	}
}

func TestRigidDecompose(t *testing.T) {
	q := mgl64.QuatRotate(0.7, mgl64.Vec3{1, 1, 0}.Normalize())
	m := mgl64.Translate3D(1, 2, 3).Mul4(q.Mat4())
	pos, rot := RigidDecompose(m)
	if !pos.ApproxEqualThreshold(mgl64.Vec3{1, 2, 3}, 1e-9) {
		t.Errorf("position %v; expected (1,2,3)", pos)
	}
	if !rot.OrientationEqualThreshold(q, 1e-9) {
		t.Errorf("rotation %v; expected %v", rot, q)
	}
}

func TestRandomNameGenerator(t *testing.T) {
	var a, b RandomNameGenerator
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		na, nb := a.RandomName(), b.RandomName()
		if na != nb {
			t.Fatalf("generators diverged at %d: %q vs %q", i, na, nb)
		}
		if seen[na] {
			t.Fatalf("duplicate name %q", na)
		}
		seen[na] = true
	}
}

func TestSDump(t *testing.T) {
	s := SDump(struct{ Name string }{"hips"})
	if !strings.Contains(s, "hips") {
		t.Errorf("SDump output %q does not contain the value", s)
	}
}
