package model

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-gl/common"
)

// DefaultVertexLayout is position(3) + normal(3) + uv(2).
var DefaultVertexLayout = common.Layout{3, 3, 2}

// mesh is the implementation of the Mesh interface.
type mesh struct {
	id             common.AssetID
	name           string
	vertices       []float32
	indices        []uint32
	layout         common.Layout
	dynamic        bool
	boundingRadius float32
}

// Mesh is immutable vertex and index data described by an attribute Layout.
// A Mesh is the CPU-side half of a GPU vertex array; the device uploads it by ID.
type Mesh interface {
	// ID returns the asset identifier linking this mesh to its GPU mirror.
	//
	// Returns:
	//   - common.AssetID: the mesh identifier
	ID() common.AssetID

	// Name returns the optional debug name of the mesh.
	//
	// Returns:
	//   - string: the mesh name
	Name() string

	// Vertices returns the interleaved vertex floats. The slice must not be modified.
	//
	// Returns:
	//   - []float32: the vertex data
	Vertices() []float32

	// Indices returns the triangle index list. The slice must not be modified.
	//
	// Returns:
	//   - []uint32: the index data
	Indices() []uint32

	// Layout returns a copy of the per-vertex attribute layout.
	//
	// Returns:
	//   - common.Layout: the attribute widths
	Layout() common.Layout

	// VertexCount returns the number of vertices (vertices / stride).
	//
	// Returns:
	//   - int: the vertex count
	VertexCount() int

	// IndexCount returns the number of indices.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// Dynamic reports whether the mesh buffers should be allocated for frequent updates.
	//
	// Returns:
	//   - bool: true for dynamic usage
	Dynamic() bool

	// BoundingRadius returns the largest distance from the origin to any vertex position.
	// The first layout attribute is treated as the position. Used by frustum culling.
	//
	// Returns:
	//   - float32: the bounding radius
	BoundingRadius() float32
}

var _ Mesh = &mesh{}

// NewMesh creates a Mesh from interleaved vertex floats and indices.
// When no layout option is given the DefaultVertexLayout is used, and when no ID option is
// given a process-unique ID is generated.
//
// Parameters:
//   - vertices: interleaved vertex data
//   - indices: triangle indices into the vertex list
//   - options: functional options to configure the mesh
//
// Returns:
//   - Mesh: the constructed mesh
//   - error: ErrInvalidMesh when the vertex count is not a multiple of the layout stride
func NewMesh(vertices []float32, indices []uint32, options ...MeshBuilderOption) (Mesh, error) {
	m := &mesh{
		layout: DefaultVertexLayout.Clone(),
	}
	for _, opt := range options {
		opt(m)
	}

	stride := int(m.layout.Stride())
	if stride == 0 {
		return nil, fmt.Errorf("%w: layout %v has zero stride", common.ErrInvalidMesh, m.layout)
	}
	if len(vertices)%stride != 0 {
		return nil, fmt.Errorf("%w: %d vertex floats is not a multiple of stride %d", common.ErrInvalidMesh, len(vertices), stride)
	}
	count := uint32(len(vertices) / stride)
	for _, idx := range indices {
		if idx >= count {
			return nil, fmt.Errorf("%w: index %d out of range for %d vertices", common.ErrInvalidMesh, idx, count)
		}
	}

	if m.id == 0 {
		m.id = common.NewAssetID()
	}
	m.vertices = append([]float32(nil), vertices...)
	m.indices = append([]uint32(nil), indices...)
	m.boundingRadius = boundingRadius(m.vertices, m.layout)
	return m, nil
}

// boundingRadius measures the farthest vertex position from the origin.
func boundingRadius(vertices []float32, layout common.Layout) float32 {
	if len(layout) == 0 || layout[0] == 0 {
		return 0
	}
	stride := int(layout.Stride())
	width := int(min(layout[0], 3))
	var best float64
	for i := 0; i+stride <= len(vertices); i += stride {
		var sq float64
		for c := 0; c < width; c++ {
			v := float64(vertices[i+c])
			sq += v * v
		}
		best = max(best, sq)
	}
	return float32(math.Sqrt(best))
}

func (m *mesh) ID() common.AssetID {
	return m.id
}

func (m *mesh) Name() string {
	return m.name
}

func (m *mesh) Vertices() []float32 {
	return m.vertices
}

func (m *mesh) Indices() []uint32 {
	return m.indices
}

func (m *mesh) Layout() common.Layout {
	return m.layout.Clone()
}

func (m *mesh) VertexCount() int {
	return len(m.vertices) / int(m.layout.Stride())
}

func (m *mesh) IndexCount() int {
	return len(m.indices)
}

func (m *mesh) Dynamic() bool {
	return m.dynamic
}

func (m *mesh) BoundingRadius() float32 {
	return m.boundingRadius
}
