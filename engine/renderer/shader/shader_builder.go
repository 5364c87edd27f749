package shader

import "github.com/Carmen-Shannon/oxy-gl/common"

// ShaderBuilderOption is a functional option for configuring a Shader via NewShader.
type ShaderBuilderOption func(*shader)

// WithID is an option builder that fixes the AssetID of the Shader instead of generating one.
//
// Parameters:
//   - id: the asset identifier to use
//
// Returns:
//   - ShaderBuilderOption: a function that applies the id option to a shader
func WithID(id common.AssetID) ShaderBuilderOption {
	return func(s *shader) {
		s.id = id
	}
}

// WithGeometry is an option builder that adds a geometry stage to the Shader.
//
// Parameters:
//   - path: the geometry source path
//
// Returns:
//   - ShaderBuilderOption: a function that applies the geometry option to a shader
func WithGeometry(path common.Path) ShaderBuilderOption {
	return func(s *shader) {
		s.geometry = path
	}
}

// WithDefaultMaterial is an option builder that enables the default material uniforms.
//
// Parameters:
//   - use: true to apply the default material when drawing
//
// Returns:
//   - ShaderBuilderOption: a function that applies the default material option to a shader
func WithDefaultMaterial(use bool) ShaderBuilderOption {
	return func(s *shader) {
		s.useDefaultMaterial = use
	}
}

// WithUniforms is an option builder that declares uniform names up front, in addition to
// those discovered while loading the sources.
//
// Parameters:
//   - names: the uniform names to declare
//
// Returns:
//   - ShaderBuilderOption: a function that applies the uniforms option to a shader
func WithUniforms(names ...string) ShaderBuilderOption {
	return func(s *shader) {
		for _, n := range names {
			s.uniforms[n] = struct{}{}
		}
	}
}
