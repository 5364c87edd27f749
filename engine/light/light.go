package light

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// DirectionalLight is a light with no position. Its direction is the forward axis
// of the owning entity's Transform.
type DirectionalLight struct {
	Color     mgl32.Vec3
	Intensity float32
}

// NewDirectionalLight returns a white directional light of intensity 1.
func NewDirectionalLight(opts ...DirectionalLightOption) *DirectionalLight {
	l := &DirectionalLight{
		Color:     mgl32.Vec3{1, 1, 1},
		Intensity: 1,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// PointLight emits in all directions from the owning entity's Transform position.
// Attenuation follows 1 / (constant + linear*d + quadratic*d^2).
type PointLight struct {
	Color     mgl32.Vec3
	Constant  float32
	Linear    float32
	Quadratic float32
}

// Default point light attenuation, a range of roughly 50 units.
const (
	DefaultConstant  = float32(1.0)
	DefaultLinear    = float32(0.09)
	DefaultQuadratic = float32(0.032)
)

// lightCutoff is the inverse of the attenuated intensity treated as black (5/256).
const lightCutoff = 256.0 / 5.0

// NewPointLight returns a white point light with the default attenuation.
func NewPointLight(opts ...PointLightOption) *PointLight {
	l := &PointLight{
		Color:     mgl32.Vec3{1, 1, 1},
		Constant:  DefaultConstant,
		Linear:    DefaultLinear,
		Quadratic: DefaultQuadratic,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Radius returns the distance at which the brightest color channel attenuates below 5/256.
// The point light volume is scaled to this radius. A light with no quadratic term
// falls back to the linear solution, and one with neither returns 0.
//
// Returns:
//   - float32: the light volume radius
func (l *PointLight) Radius() float32 {
	brightest := float64(max(l.Color.X(), l.Color.Y(), l.Color.Z()))
	c := float64(l.Constant) - lightCutoff*brightest
	a, b := float64(l.Quadratic), float64(l.Linear)
	switch {
	case a > 0:
		return float32((-b + math.Sqrt(b*b-4*a*c)) / (2 * a))
	case b > 0:
		return float32(max(-c/b, 0))
	default:
		return 0
	}
}
