package shader

import (
	"sort"
	"sync"

	"github.com/Carmen-Shannon/oxy-gl/common"
)

// shader is the implementation of the Shader interface.
type shader struct {
	mu *sync.Mutex

	id                 common.AssetID
	vertex             common.Path
	fragment           common.Path
	geometry           common.Path
	uniforms           map[string]struct{}
	useDefaultMaterial bool
}

// Shader describes a GLSL program by the paths of its stage sources. The GPU program itself
// is owned by the device and keyed by ID. The declared-uniform set decides which material
// custom parameters are uploaded to the program.
type Shader interface {
	// ID returns the asset identifier linking this shader to its GPU program.
	//
	// Returns:
	//   - common.AssetID: the shader identifier
	ID() common.AssetID

	// Vertex returns the path of the vertex stage source.
	//
	// Returns:
	//   - common.Path: the vertex source path
	Vertex() common.Path

	// Fragment returns the path of the fragment stage source.
	//
	// Returns:
	//   - common.Path: the fragment source path
	Fragment() common.Path

	// Geometry returns the path of the optional geometry stage source, or "" when the
	// program has no geometry stage.
	//
	// Returns:
	//   - common.Path: the geometry source path
	Geometry() common.Path

	// DeclaresUniform reports whether name is in the declared-uniform set.
	//
	// Parameters:
	//   - name: the uniform name, e.g. "uScatter" or "uDLight.color"
	//
	// Returns:
	//   - bool: true if the uniform is declared
	DeclaresUniform(name string) bool

	// AddUniform adds names to the declared-uniform set. Safe for concurrent use.
	//
	// Parameters:
	//   - names: the uniform names to declare
	AddUniform(names ...string)

	// Uniforms returns the declared uniform names in sorted order.
	//
	// Returns:
	//   - []string: the declared uniform names
	Uniforms() []string

	// UseDefaultMaterial reports whether the device applies the PBR material uniforms
	// (uAlbedo, uMetallic, uRoughness, uEmission, uAO, uMaterialMode) when drawing with this shader.
	//
	// Returns:
	//   - bool: true if the default material is applied
	UseDefaultMaterial() bool

	// SetUseDefaultMaterial toggles application of the default material uniforms.
	//
	// Parameters:
	//   - use: true to apply the default material
	SetUseDefaultMaterial(use bool)
}

var _ Shader = &shader{}

// NewShader creates a new Shader from a vertex and a fragment source path.
//
// Parameters:
//   - vertex: path of the vertex stage source
//   - fragment: path of the fragment stage source
//   - opts: optional ShaderBuilderOption functions
//
// Returns:
//   - Shader: the new shader description
func NewShader(vertex, fragment common.Path, opts ...ShaderBuilderOption) Shader {
	s := &shader{
		mu:       &sync.Mutex{},
		vertex:   vertex,
		fragment: fragment,
		uniforms: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == 0 {
		s.id = common.NewAssetID()
	}
	return s
}

func (s *shader) ID() common.AssetID {
	return s.id
}

func (s *shader) Vertex() common.Path {
	return s.vertex
}

func (s *shader) Fragment() common.Path {
	return s.fragment
}

func (s *shader) Geometry() common.Path {
	return s.geometry
}

func (s *shader) DeclaresUniform(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.uniforms[name]
	return ok
}

func (s *shader) AddUniform(names ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range names {
		if n != "" {
			s.uniforms[n] = struct{}{}
		}
	}
}

func (s *shader) Uniforms() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.uniforms))
	for n := range s.uniforms {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (s *shader) UseDefaultMaterial() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.useDefaultMaterial
}

func (s *shader) SetUseDefaultMaterial(use bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.useDefaultMaterial = use
}
