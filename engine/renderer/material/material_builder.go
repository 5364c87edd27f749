package material

import (
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/go-gl/mathgl/mgl32"
)

// MaterialBuilderOption is a functional option for configuring a Material via NewMaterial.
type MaterialBuilderOption func(*material)

// WithID is an option builder that fixes the AssetID of the Material instead of generating one.
//
// Parameters:
//   - id: the asset identifier to use
//
// Returns:
//   - MaterialBuilderOption: a function that applies the id option to a material
func WithID(id common.AssetID) MaterialBuilderOption {
	return func(m *material) {
		m.id = id
	}
}

// WithName is an option builder that sets the debug name of the Material.
//
// Parameters:
//   - name: the material name
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithColor is an option builder that sets the RGBA albedo color of the Material.
//
// Parameters:
//   - color: the albedo color
//
// Returns:
//   - MaterialBuilderOption: a function that applies the color option to a material
func WithColor(color mgl32.Vec4) MaterialBuilderOption {
	return func(m *material) {
		m.color = color
	}
}

// WithMetallic is an option builder that sets the metallic factor of the Material.
//
// Parameters:
//   - v: the metallic factor
//
// Returns:
//   - MaterialBuilderOption: a function that applies the metallic option to a material
func WithMetallic(v float32) MaterialBuilderOption {
	return func(m *material) {
		m.metallic = v
	}
}

// WithRoughness is an option builder that sets the roughness factor of the Material.
//
// Parameters:
//   - v: the roughness factor
//
// Returns:
//   - MaterialBuilderOption: a function that applies the roughness option to a material
func WithRoughness(v float32) MaterialBuilderOption {
	return func(m *material) {
		m.roughness = v
	}
}

// WithEmission is an option builder that sets the emission strength of the Material.
//
// Parameters:
//   - v: the emission strength
//
// Returns:
//   - MaterialBuilderOption: a function that applies the emission option to a material
func WithEmission(v float32) MaterialBuilderOption {
	return func(m *material) {
		m.emission = v
	}
}

// WithAmbientOcclusion is an option builder that sets the ambient occlusion factor of the Material.
//
// Parameters:
//   - v: the ambient occlusion factor
//
// Returns:
//   - MaterialBuilderOption: a function that applies the ambient occlusion option to a material
func WithAmbientOcclusion(v float32) MaterialBuilderOption {
	return func(m *material) {
		m.ambientOcclusion = v
	}
}

// WithAlbedoTexture is an option builder that sets the albedo texture reference of the Material.
//
// Parameters:
//   - id: the repository texture id
//
// Returns:
//   - MaterialBuilderOption: a function that applies the albedo texture option to a material
func WithAlbedoTexture(id common.AssetID) MaterialBuilderOption {
	return func(m *material) {
		m.albedoTexture = id
	}
}

// WithMaterialTexture is an option builder that sets the packed material texture reference.
//
// Parameters:
//   - id: the repository texture id
//
// Returns:
//   - MaterialBuilderOption: a function that applies the material texture option to a material
func WithMaterialTexture(id common.AssetID) MaterialBuilderOption {
	return func(m *material) {
		m.materialTexture = id
	}
}

// WithTransparency is an option builder that sets the transparency mode of the Material.
//
// Parameters:
//   - t: the transparency mode
//
// Returns:
//   - MaterialBuilderOption: a function that applies the transparency option to a material
func WithTransparency(t Transparency) MaterialBuilderOption {
	return func(m *material) {
		m.transparency = t
	}
}

// WithParameter is an option builder that stores a custom shader parameter.
// Values outside the parameter domain are ignored.
//
// Parameters:
//   - tag: the uniform name
//   - value: the parameter value
//
// Returns:
//   - MaterialBuilderOption: a function that applies the parameter option to a material
func WithParameter(tag string, value any) MaterialBuilderOption {
	return func(m *material) {
		if v, ok := NormalizeParameter(value); ok {
			m.parameters[tag] = v
		}
	}
}
