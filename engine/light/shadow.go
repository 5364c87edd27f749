package light

import (
	"math"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultCascadeCount is the number of shadow cascades rendered by default.
const DefaultCascadeCount = 4

// ShadowMapResolution is the default width and height in texels of every cascade
// depth texture. Shadow framebuffers are never resized with the viewport.
const ShadowMapResolution = 2048

// Cascade divisor polynomial coefficients. Cascade i covers [near, far / d(i)] with
// d(i) = A*i^3 + B*i^2 + C*i + D.
const (
	CascadeDivisorA = float32(0.833)
	CascadeDivisorB = float32(-0.25)
	CascadeDivisorC = float32(0.417)
	CascadeDivisorD = float32(1.0)
)

// CascadeDivisor returns the far-plane divisor of cascade i. The polynomial is strictly
// increasing for i >= 0, so deeper cascades cover shorter ranges.
//
// Parameters:
//   - i: the cascade index
//
// Returns:
//   - float32: the divisor, 1 for cascade 0
func CascadeDivisor(i int) float32 {
	x := float32(i)
	return CascadeDivisorA*x*x*x + CascadeDivisorB*x*x + CascadeDivisorC*x + CascadeDivisorD
}

// CascadeFar returns the far plane distance of cascade i for a camera far plane.
//
// Parameters:
//   - far: the camera far plane
//   - i: the cascade index
//
// Returns:
//   - float32: far / CascadeDivisor(i)
func CascadeFar(far float32, i int) float32 {
	return far / CascadeDivisor(i)
}

// FitLightSpace computes the light-space matrix enclosing the frustum of projection*view.
//
// The frustum corners are unprojected to world space and averaged to find the cascade
// center. A light view looks from center - lightFront toward the center, and an
// orthographic box is fitted around the corners in that space. The depth range is
// widened to at least [-depthBias, depthBias] so casters outside the sub-frustum still
// land in the map.
//
// Parameters:
//   - projection: the cascade sub-frustum projection
//   - view: the camera view matrix
//   - lightFront: the light's forward axis
//   - lightUp: the light's up axis
//   - depthBias: minimum half-depth of the box, usually the camera far plane
//
// Returns:
//   - mgl32.Mat4: orthographic * lightView
func FitLightSpace(projection, view mgl32.Mat4, lightFront, lightUp mgl32.Vec3, depthBias float32) mgl32.Mat4 {
	corners := common.FrustumCorners(projection.Mul4(view))

	var center mgl32.Vec3
	for _, c := range corners {
		center = center.Add(c)
	}
	center = center.Mul(1.0 / float32(len(corners)))

	lightView := mgl32.LookAtV(center.Sub(lightFront), center, lightUp)

	minX, minY, minZ := float32(math.MaxFloat32), float32(math.MaxFloat32), float32(math.MaxFloat32)
	maxX, maxY, maxZ := -float32(math.MaxFloat32), -float32(math.MaxFloat32), -float32(math.MaxFloat32)
	for _, c := range corners {
		p := lightView.Mul4x1(c.Vec4(1))
		minX, maxX = min(minX, p.X()), max(maxX, p.X())
		minY, maxY = min(minY, p.Y()), max(maxY, p.Y())
		minZ, maxZ = min(minZ, p.Z()), max(maxZ, p.Z())
	}
	minZ = min(minZ, -depthBias)
	maxZ = max(maxZ, depthBias)

	// the view looks down -Z, so the box spans distances -maxZ..-minZ in front of the eye
	lightProjection := mgl32.Ortho(minX, maxX, minY, maxY, -maxZ, -minZ)
	return lightProjection.Mul4(lightView)
}
