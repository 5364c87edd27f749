package pass

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/framebuffer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
)

// renderData is the implementation of the RenderData interface.
type renderData struct {
	mu *sync.Mutex

	device        device.Device
	width, height int

	parameters   map[string]any
	shaders      map[common.AssetID]shader.Shader
	meshes       map[common.AssetID]model.Mesh
	framebuffers map[common.AssetID]framebuffer.Framebuffer
	claims       map[string]struct{}
}

// RenderData is the engine-wide state shared by all passes: the viewport size, the GPU
// device, the pass-owned shaders, meshes and framebuffers, and the parameter bag through
// which passes exchange configuration and results.
type RenderData interface {
	// Device returns the GPU resource cache.
	Device() device.Device

	// Width returns the viewport width.
	Width() int

	// Height returns the viewport height.
	Height() int

	// SetSize sets the viewport size.
	//
	// Parameters:
	//   - width, height: the new viewport size
	SetSize(width, height int)

	// Set stores a parameter, replacing any existing value.
	//
	// Parameters:
	//   - key: the parameter key
	//   - value: the value, normalized with NormalizeParameter
	//
	// Returns:
	//   - error: common.ErrTypeMismatch if the value is outside the parameter domain
	Set(key string, value any) error

	// SetDefault stores a parameter only if the key is absent.
	//
	// Parameters:
	//   - key: the parameter key
	//   - value: the default value
	//
	// Returns:
	//   - error: common.ErrTypeMismatch if the value is outside the parameter domain
	SetDefault(key string, value any) error

	// Parameter returns the raw value stored under key.
	//
	// Parameters:
	//   - key: the parameter key
	//
	// Returns:
	//   - any: the value
	//   - bool: false if the key is absent
	Parameter(key string) (any, bool)

	// Delete removes a parameter.
	Delete(key string)

	// ParameterKeys returns every parameter key, sorted.
	ParameterKeys() []string

	// AddShader registers a pass-owned or externally submitted shader.
	AddShader(s shader.Shader)

	// Shader returns the registered shader with the given ID.
	//
	// Returns:
	//   - shader.Shader: the shader
	//   - error: common.ErrLookup if it is not registered
	Shader(id common.AssetID) (shader.Shader, error)

	// RemoveShader unregisters a shader.
	RemoveShader(id common.AssetID)

	// Shaders returns every registered shader ordered by ID.
	Shaders() []shader.Shader

	// AddMesh registers a pass-owned mesh.
	AddMesh(m model.Mesh)

	// Mesh returns the registered mesh with the given ID.
	//
	// Returns:
	//   - model.Mesh: the mesh
	//   - error: common.ErrLookup if it is not registered
	Mesh(id common.AssetID) (model.Mesh, error)

	// RemoveMesh unregisters a mesh.
	RemoveMesh(id common.AssetID)

	// Meshes returns every registered mesh ordered by ID.
	Meshes() []model.Mesh

	// AddFramebuffer registers a pass-owned framebuffer.
	AddFramebuffer(fb framebuffer.Framebuffer)

	// Framebuffer returns the registered framebuffer with the given ID.
	//
	// Returns:
	//   - framebuffer.Framebuffer: the framebuffer
	//   - error: common.ErrLookup if it is not registered
	Framebuffer(id common.AssetID) (framebuffer.Framebuffer, error)

	// RemoveFramebuffer unregisters a framebuffer.
	RemoveFramebuffer(id common.AssetID)

	// Framebuffers returns every registered framebuffer ordered by ID.
	Framebuffers() []framebuffer.Framebuffer

	// Claim records that owner has initialized against this render data.
	//
	// Parameters:
	//   - owner: the pass name
	//
	// Returns:
	//   - bool: false if owner already holds the claim
	Claim(owner string) bool

	// Release drops the claim of owner so it can initialize again.
	Release(owner string)
}

var _ RenderData = &renderData{}

// NewRenderData creates an empty RenderData.
//
// Parameters:
//   - dev: the GPU resource cache the passes render through
//   - width, height: the initial viewport size
//
// Returns:
//   - RenderData: the render data
func NewRenderData(dev device.Device, width, height int) RenderData {
	return &renderData{
		mu:           &sync.Mutex{},
		device:       dev,
		width:        width,
		height:       height,
		parameters:   make(map[string]any),
		shaders:      make(map[common.AssetID]shader.Shader),
		meshes:       make(map[common.AssetID]model.Mesh),
		framebuffers: make(map[common.AssetID]framebuffer.Framebuffer),
		claims:       make(map[string]struct{}),
	}
}

func (r *renderData) Device() device.Device {
	return r.device
}

func (r *renderData) Width() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width
}

func (r *renderData) Height() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.height
}

func (r *renderData) SetSize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.width, r.height = width, height
}

func (r *renderData) Set(key string, value any) error {
	v, ok := NormalizeParameter(value)
	if !ok {
		return fmt.Errorf("%w: parameter %q cannot hold %T", common.ErrTypeMismatch, key, value)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parameters[key] = v
	return nil
}

func (r *renderData) SetDefault(key string, value any) error {
	v, ok := NormalizeParameter(value)
	if !ok {
		return fmt.Errorf("%w: parameter %q cannot hold %T", common.ErrTypeMismatch, key, value)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.parameters[key]; !exists {
		r.parameters[key] = v
	}
	return nil
}

func (r *renderData) Parameter(key string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.parameters[key]
	return v, ok
}

func (r *renderData) Delete(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.parameters, key)
}

func (r *renderData) ParameterKeys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.parameters))
	for k := range r.parameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r *renderData) AddShader(s shader.Shader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shaders[s.ID()] = s
}

func (r *renderData) Shader(id common.AssetID) (shader.Shader, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shaders[id]
	if !ok {
		return nil, common.LookupError("shader", id)
	}
	return s, nil
}

func (r *renderData) RemoveShader(id common.AssetID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.shaders, id)
}

func (r *renderData) Shaders() []shader.Shader {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sortedValues(r.shaders, func(s shader.Shader) common.AssetID { return s.ID() })
}

func (r *renderData) AddMesh(m model.Mesh) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.meshes[m.ID()] = m
}

func (r *renderData) Mesh(id common.AssetID) (model.Mesh, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meshes[id]
	if !ok {
		return nil, common.LookupError("mesh", id)
	}
	return m, nil
}

func (r *renderData) RemoveMesh(id common.AssetID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.meshes, id)
}

func (r *renderData) Meshes() []model.Mesh {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sortedValues(r.meshes, func(m model.Mesh) common.AssetID { return m.ID() })
}

func (r *renderData) AddFramebuffer(fb framebuffer.Framebuffer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.framebuffers[fb.ID()] = fb
}

func (r *renderData) Framebuffer(id common.AssetID) (framebuffer.Framebuffer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fb, ok := r.framebuffers[id]
	if !ok {
		return nil, common.LookupError("framebuffer", id)
	}
	return fb, nil
}

func (r *renderData) RemoveFramebuffer(id common.AssetID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.framebuffers, id)
}

func (r *renderData) Framebuffers() []framebuffer.Framebuffer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sortedValues(r.framebuffers, func(fb framebuffer.Framebuffer) common.AssetID { return fb.ID() })
}

func (r *renderData) Claim(owner string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.claims[owner]; ok {
		return false
	}
	r.claims[owner] = struct{}{}
	return true
}

func (r *renderData) Release(owner string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.claims, owner)
}

func sortedValues[T any](m map[common.AssetID]T, id func(T) common.AssetID) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return id(out[i]) < id(out[j]) })
	return out
}
