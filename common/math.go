package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Axis vectors of the engine's right-handed coordinate system.
var (
	WorldRight   = mgl32.Vec3{1, 0, 0}
	WorldUp      = mgl32.Vec3{0, 1, 0}
	WorldForward = mgl32.Vec3{0, 0, -1}
)

// BuildModelMatrix constructs a 4x4 model matrix from position, rotation and scale.
// The composition is T * R * S. All matrices are column-major.
//
// Parameters:
//   - position: translation in world space
//   - rotation: orientation quaternion
//   - scale: scale factors along each axis
//
// Returns:
//   - mgl32.Mat4: the model matrix
func BuildModelMatrix(position mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) mgl32.Mat4 {
	t := mgl32.Translate3D(position.X(), position.Y(), position.Z())
	r := rotation.Normalize().Mat4()
	s := mgl32.Scale3D(scale.X(), scale.Y(), scale.Z())
	return t.Mul4(r).Mul4(s)
}

// EulerToQuat converts Euler angles in degrees (applied X, then Y, then Z) to a quaternion.
//
// Parameters:
//   - degrees: rotation around the X, Y and Z axes in degrees
//
// Returns:
//   - mgl32.Quat: the normalized rotation
func EulerToQuat(degrees mgl32.Vec3) mgl32.Quat {
	return mgl32.AnglesToQuat(
		mgl32.DegToRad(degrees.X()),
		mgl32.DegToRad(degrees.Y()),
		mgl32.DegToRad(degrees.Z()),
		mgl32.XYZ,
	).Normalize()
}

// Invert4 inverts a matrix, reporting false when it is singular.
// mgl32.Mat4.Inv returns the zero matrix for singular input so the determinant is checked first.
//
// Parameters:
//   - m: the matrix to invert
//
// Returns:
//   - mgl32.Mat4: the inverse, or the identity when singular
//   - bool: true if the matrix was invertible
func Invert4(m mgl32.Mat4) (mgl32.Mat4, bool) {
	if det := m.Det(); math.Abs(float64(det)) < 1e-12 {
		return mgl32.Ident4(), false
	}
	return m.Inv(), true
}

// FrustumCorners returns the eight world-space corners of the frustum described by a
// projection*view matrix, by unprojecting the NDC cube corners.
// Corners are ordered with x as the outermost and z as the innermost loop.
//
// Parameters:
//   - viewProj: the combined projection * view matrix
//
// Returns:
//   - [8]mgl32.Vec3: corner positions in world space
func FrustumCorners(viewProj mgl32.Mat4) [8]mgl32.Vec3 {
	inv, _ := Invert4(viewProj)
	var corners [8]mgl32.Vec3
	n := 0
	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			for z := 0; z < 2; z++ {
				p := inv.Mul4x1(mgl32.Vec4{
					2*float32(x) - 1,
					2*float32(y) - 1,
					2*float32(z) - 1,
					1,
				})
				corners[n] = p.Vec3().Mul(1 / p.W())
				n++
			}
		}
	}
	return corners
}

// MaxComponent returns the largest component of v.
func MaxComponent(v mgl32.Vec3) float32 {
	return max(v.X(), v.Y(), v.Z())
}

// QuatToVec4 packs a quaternion in (x, y, z, w) order, the layout shaders read it in.
func QuatToVec4(q mgl32.Quat) mgl32.Vec4 {
	return mgl32.Vec4{q.V.X(), q.V.Y(), q.V.Z(), q.W}
}
