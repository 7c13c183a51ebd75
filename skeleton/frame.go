package skeleton

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	FRAME_BINORMAL = 0
	FRAME_NORMAL   = 1
	FRAME_TANGENT  = 2
)

// helperAxis picks the basis vector along the smallest component of t so the
// cross product with t never degenerates.
func helperAxis(t mgl64.Vec3) mgl64.Vec3 {
	ax, ay, az := math.Abs(t[0]), math.Abs(t[1]), math.Abs(t[2])
	switch {
	case ax <= ay && ax <= az:
		return mgl64.Vec3{1, 0, 0}
	case ay <= ax && ay <= az:
		return mgl64.Vec3{0, 1, 0}
	default:
		return mgl64.Vec3{0, 0, 1}
	}
}

// frameFromTangent builds a right-handed basis with columns {binormal, normal, tangent}.
func frameFromTangent(t mgl64.Vec3) mgl64.Mat3 {
	if t.Len() < epsilon {
		return mgl64.Ident3()
	}
	t = t.Normalize()
	n := t.Cross(helperAxis(t)).Normalize()
	b := n.Cross(t).Normalize()
	return frameFromAxes(b, n, t)
}

func frameFromAxes(b, n, t mgl64.Vec3) mgl64.Mat3 {
	var f mgl64.Mat3
	f.SetCol(FRAME_BINORMAL, b)
	f.SetCol(FRAME_NORMAL, n)
	f.SetCol(FRAME_TANGENT, t)
	return f
}

// orthonormalize re-projects the frame with the tangent as the fixed axis.
func orthonormalize(f mgl64.Mat3) mgl64.Mat3 {
	t := f.Col(FRAME_TANGENT)
	if t.Len() < epsilon {
		return mgl64.Ident3()
	}
	t = t.Normalize()
	n := f.Col(FRAME_NORMAL)
	n = n.Sub(t.Mul(n.Dot(t)))
	if n.Len() < epsilon {
		return frameFromTangent(t)
	}
	n = n.Normalize()
	b := n.Cross(t).Normalize()
	return frameFromAxes(b, n, t)
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
