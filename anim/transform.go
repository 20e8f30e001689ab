package anim

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Transform places an object in the scene. Rotation holds Euler angles in
// radians applied in X, Y, Z order. Spin is an extra rotation about the world
// Z axis, applied after the local rotation.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
	Spin     float32
}

// Identity has unit scale and no rotation or translation.
func Identity() Transform {
	return Transform{Scale: mgl32.Vec3{1, 1, 1}}
}

func (t Transform) Matrix() mgl32.Mat4 {
	scale := t.Scale
	if scale == (mgl32.Vec3{}) {
		scale = mgl32.Vec3{1, 1, 1}
	}

	local := mgl32.HomogRotate3DX(t.Rotation[0]).
		Mul4(mgl32.HomogRotate3DY(t.Rotation[1])).
		Mul4(mgl32.HomogRotate3DZ(t.Rotation[2]))

	return mgl32.Translate3D(t.Position[0], t.Position[1], t.Position[2]).
		Mul4(mgl32.HomogRotate3DZ(t.Spin)).
		Mul4(local).
		Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2]))
}

// Motion derives an object's transform from its base transform and the
// elapsed time. Motions must be pure.
type Motion func(base Transform, t float64) Transform

// Still leaves the base transform untouched.
func Still(base Transform, t float64) Transform {
	return base
}

// Spin rotates each axis linearly with time at the given rate in radians per second.
func Spin(rate mgl32.Vec3) Motion {
	return func(base Transform, t float64) Transform {
		base.Rotation = base.Rotation.Add(rate.Mul(float32(t)))
		return base
	}
}

// Orbit moves the object around a circle in the XY plane of the given radius,
// at rate radians per second, while drifting about the world Z axis at drift
// radians per second. The base Z position is kept.
func Orbit(radius, rate, drift float64) Motion {
	return func(base Transform, t float64) Transform {
		base.Position[0] = float32(math.Sin(t*rate) * radius)
		base.Position[1] = float32(math.Cos(t*rate) * radius)
		base.Spin += float32(drift * t)
		return base
	}
}
