package model

import "github.com/Carmen-Shannon/oxy-gl/common"

// MeshBuilderOption is a functional option for configuring a Mesh via NewMesh.
type MeshBuilderOption func(*mesh)

// WithMeshID is an option builder that fixes the AssetID of the Mesh instead of generating one.
//
// Parameters:
//   - id: the asset identifier to use
//
// Returns:
//   - MeshBuilderOption: a function that applies the id option to a mesh
func WithMeshID(id common.AssetID) MeshBuilderOption {
	return func(m *mesh) {
		m.id = id
	}
}

// WithMeshName is an option builder that sets the debug name of the Mesh.
//
// Parameters:
//   - name: the mesh name
//
// Returns:
//   - MeshBuilderOption: a function that applies the name option to a mesh
func WithMeshName(name string) MeshBuilderOption {
	return func(m *mesh) {
		m.name = name
	}
}

// WithLayout is an option builder that sets the per-vertex attribute layout of the Mesh.
// The layout is deep-copied.
//
// Parameters:
//   - layout: the attribute widths
//
// Returns:
//   - MeshBuilderOption: a function that applies the layout option to a mesh
func WithLayout(layout common.Layout) MeshBuilderOption {
	return func(m *mesh) {
		m.layout = layout.Clone()
	}
}

// WithDynamic is an option builder that marks the Mesh buffers for dynamic usage.
//
// Parameters:
//   - dynamic: true for dynamic usage
//
// Returns:
//   - MeshBuilderOption: a function that applies the dynamic option to a mesh
func WithDynamic(dynamic bool) MeshBuilderOption {
	return func(m *mesh) {
		m.dynamic = dynamic
	}
}
