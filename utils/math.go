package utils

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// result in radians, x-y-z order
func QuatToEuler(q mgl64.Quat) (e mgl64.Vec3) {
	sinr_cosp := 2 * (q.W*q.X() + q.Y()*q.Z())
	cosr_cosp := 1 - 2*(q.X()*q.X()+q.Y()*q.Y())
	e[0] = math.Atan2(sinr_cosp, cosr_cosp)

	sinp := 2 * (q.W*q.Y() - q.Z()*q.X())
	if math.Abs(sinp) >= 1 {
		e[1] = math.Copysign(math.Pi/2, sinp)
	} else {
		e[1] = math.Asin(sinp)
	}

	siny_cosp := 2 * (q.W*q.Z() + q.X()*q.Y())
	cosy_cosp := 1 - 2*(q.Y()*q.Y()+q.Z()*q.Z())
	e[2] = math.Atan2(siny_cosp, cosy_cosp)

	return e
}

func RadiansToDegreeV3(v mgl64.Vec3) mgl64.Vec3 {
	return v.Mul(180.0 / math.Pi)
}

func Vec3To32(v mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}

func QuatTo32(q mgl64.Quat) mgl32.Quat {
	return mgl32.Quat{W: float32(q.W), V: Vec3To32(q.V)}
}

func Mat4To32(m mgl64.Mat4) mgl32.Mat4 {
	var r mgl32.Mat4
	for i, v := range m {
		r[i] = float32(v)
	}
	return r
}

// Mat4ToArray returns the column-major elements, the layout glTF expects.
func Mat4ToArray(m mgl64.Mat4) [16]float32 {
	return [16]float32(Mat4To32(m))
}

// RigidDecompose splits a rotation+translation matrix into its parts.
func RigidDecompose(m mgl64.Mat4) (mgl64.Vec3, mgl64.Quat) {
	return m.Col(3).Vec3(), mgl64.Mat4ToQuat(m).Normalize()
}
