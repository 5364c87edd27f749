package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
)

// ImportedPrimitive is one drawable piece of an imported model: a mesh in the default vertex
// layout and the material it is drawn with.
type ImportedPrimitive struct {
	Mesh     model.Mesh
	Material material.Material
}

// ImportedModel is the CPU-side result of an import. Textures referenced by the materials
// are listed once each, in the order the file declares them.
type ImportedModel struct {
	Name       string
	Primitives []ImportedPrimitive
	Materials  []material.Material
	Textures   []texture.Texture
}

// loaderBackend defines the generic interface for loading models from files or streams.
// Concrete implementations (e.g., gltfLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Load performs a full model import from the given file path.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *ImportedModel: the imported model data
	//   - error: error if loading fails
	Load(path string) (*ImportedModel, error)

	// LoadReader imports a model from a reader stream. External resources are resolved
	// relative to dir.
	//
	// Parameters:
	//   - name: the model name
	//   - r: the reader providing model data, text or binary
	//   - dir: the directory external buffers and images are read from
	//
	// Returns:
	//   - *ImportedModel: the imported model data
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, dir string) (*ImportedModel, error)
}
