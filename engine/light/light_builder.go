package light

import "github.com/go-gl/mathgl/mgl32"

// DirectionalLightOption configures a DirectionalLight during construction.
type DirectionalLightOption func(*DirectionalLight)

// PointLightOption configures a PointLight during construction.
type PointLightOption func(*PointLight)

// WithDirectionalColor is an option builder that sets the RGB color of a directional light.
//
// Parameters:
//   - color: the light color
//
// Returns:
//   - DirectionalLightOption: a function that applies the color option
func WithDirectionalColor(color mgl32.Vec3) DirectionalLightOption {
	return func(l *DirectionalLight) {
		l.Color = color
	}
}

// WithIntensity is an option builder that sets the intensity of a directional light.
//
// Parameters:
//   - intensity: the light intensity
//
// Returns:
//   - DirectionalLightOption: a function that applies the intensity option
func WithIntensity(intensity float32) DirectionalLightOption {
	return func(l *DirectionalLight) {
		l.Intensity = intensity
	}
}

// WithColor is an option builder that sets the RGB color of a point light.
//
// Parameters:
//   - color: the light color
//
// Returns:
//   - PointLightOption: a function that applies the color option
func WithColor(color mgl32.Vec3) PointLightOption {
	return func(l *PointLight) {
		l.Color = color
	}
}

// WithAttenuation is an option builder that sets the attenuation coefficients of a point light.
//
// Parameters:
//   - constant: the constant term
//   - linear: the linear term
//   - quadratic: the quadratic term
//
// Returns:
//   - PointLightOption: a function that applies the attenuation option
func WithAttenuation(constant, linear, quadratic float32) PointLightOption {
	return func(l *PointLight) {
		l.Constant = constant
		l.Linear = linear
		l.Quadratic = quadratic
	}
}
