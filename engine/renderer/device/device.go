package device

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/framebuffer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// DefaultGrowthFactor is the instance buffer growth multiplier.
const DefaultGrowthFactor float32 = 2.0

type instanceEntry struct {
	handle backend.InstanceHandle
	mesh   common.AssetID
	stride int

	// capacity is the number of instances the buffer holds.
	capacity int
}

type framebufferEntry struct {
	handle   backend.FramebufferHandle
	width    int
	height   int
	textures []common.AssetID
}

type shaderEntry struct {
	program   uint32
	locations map[string]int32
}

// device is the implementation of the Device interface.
type device struct {
	mu     *sync.Mutex
	logger *zap.Logger

	backend      backend.Backend
	growthFactor float32

	meshes       map[common.AssetID]backend.MeshHandle
	groups       map[common.AssetID]*instanceEntry
	textures     map[common.AssetID]uint32
	framebuffers map[common.AssetID]*framebufferEntry
	shaders      map[common.AssetID]*shaderEntry

	boundProgram uint32
}

// Resident counts the GPU mirrors held by a Device per asset kind.
type Resident struct {
	Meshes         int
	InstanceGroups int
	Textures       int
	Framebuffers   int
	Shaders        int
}

// Device is the GPU resource cache. It maps AssetIDs to GPU handles for meshes, instance
// groups, textures, framebuffers and shader programs, and holds no reference to the CPU assets.
//
// Load is not idempotent: callers check the matching Loaded method first. Bind and lookup of
// an unresident AssetID return common.ErrLookup. Like the backend it drives, a Device must be
// used from the thread that owns the graphics context.
type Device interface {
	// Backend returns the backend the device drives.
	//
	// Returns:
	//   - backend.Backend: the backend
	Backend() backend.Backend

	// GrowthFactor returns the instance buffer growth multiplier.
	//
	// Returns:
	//   - float32: the growth factor
	GrowthFactor() float32

	// MeshLoaded reports whether a mesh is resident.
	//
	// Parameters:
	//   - id: the mesh ID
	//
	// Returns:
	//   - bool: true if resident
	MeshLoaded(id common.AssetID) bool

	// LoadMesh uploads a mesh.
	//
	// Parameters:
	//   - m: the mesh
	//
	// Returns:
	//   - error: an error if the backend rejects the mesh layout
	LoadMesh(m model.Mesh) error

	// BindMesh binds the vertex array of a resident mesh.
	//
	// Parameters:
	//   - id: the mesh ID
	//
	// Returns:
	//   - error: common.ErrLookup if the mesh is not resident
	BindMesh(id common.AssetID) error

	// ReleaseMesh releases the GPU mirror of a mesh. Unresident IDs are ignored.
	//
	// Parameters:
	//   - id: the mesh ID
	ReleaseMesh(id common.AssetID)

	// InstanceGroupLoaded reports whether an instance group is resident.
	//
	// Parameters:
	//   - id: the group ID
	//
	// Returns:
	//   - bool: true if resident
	InstanceGroupLoaded(id common.AssetID) bool

	// LoadInstanceGroup builds the group's vertex array from the mesh attributes (slots from 0)
	// and the per-instance attributes (slots from len(mesh layout), divisor 1), records the
	// instance capacity as the group count and syncs the group. The mesh is uploaded first if
	// it is not resident.
	//
	// Parameters:
	//   - g: the instance group
	//   - m: the mesh the group draws
	//
	// Returns:
	//   - error: an error if the mesh or group cannot be uploaded
	LoadInstanceGroup(g model.InstanceGroup, m model.Mesh) error

	// UpdateInstanceGroup uploads the group data. When the group count exceeds the capacity
	// the buffer is reallocated to count × growth factor instances with a full upload,
	// otherwise a sub-range upload is issued. The group is synced.
	//
	// Parameters:
	//   - g: the instance group
	//
	// Returns:
	//   - error: common.ErrLookup if the group is not resident
	UpdateInstanceGroup(g model.InstanceGroup) error

	// BindInstanceGroup binds the vertex array of a resident instance group.
	//
	// Parameters:
	//   - id: the group ID
	//
	// Returns:
	//   - error: common.ErrLookup if the group is not resident
	BindInstanceGroup(id common.AssetID) error

	// InstanceCapacity returns the number of instances the group's buffer holds.
	//
	// Parameters:
	//   - id: the group ID
	//
	// Returns:
	//   - int: the capacity in instances
	//   - error: common.ErrLookup if the group is not resident
	InstanceCapacity(id common.AssetID) (int, error)

	// ReleaseInstanceGroup releases the GPU mirror of an instance group. The mesh stays resident.
	//
	// Parameters:
	//   - id: the group ID
	ReleaseInstanceGroup(id common.AssetID)

	// TextureLoaded reports whether a texture is resident, either uploaded directly or as a
	// framebuffer attachment.
	//
	// Parameters:
	//   - id: the texture ID
	//
	// Returns:
	//   - bool: true if resident
	TextureLoaded(id common.AssetID) bool

	// LoadTexture uploads a texture.
	//
	// Parameters:
	//   - t: the texture
	//
	// Returns:
	//   - error: an error if the texture has no size
	LoadTexture(t texture.Texture) error

	// BindTexture binds a resident texture to a texture unit.
	//
	// Parameters:
	//   - id: the texture ID
	//   - unit: the texture unit
	//
	// Returns:
	//   - error: common.ErrLookup if the texture is not resident
	BindTexture(id common.AssetID, unit texture.Unit) error

	// ReleaseTexture releases the GPU mirror of a texture.
	//
	// Parameters:
	//   - id: the texture ID
	ReleaseTexture(id common.AssetID)

	// FramebufferLoaded reports whether a framebuffer is resident.
	//
	// Parameters:
	//   - id: the framebuffer ID
	//
	// Returns:
	//   - bool: true if resident
	FramebufferLoaded(id common.AssetID) bool

	// LoadFramebuffer builds a framebuffer. Attachments without a size inherit the framebuffer
	// size; the attachment textures become resident under their own IDs; the framebuffer's
	// recorded attachment list is replaced by the slot-sorted list.
	//
	// Parameters:
	//   - fb: the framebuffer
	//
	// Returns:
	//   - error: common.ErrFramebufferIncomplete if the build fails, no textures stay resident
	LoadFramebuffer(fb framebuffer.Framebuffer) error

	// BindFramebuffer binds a resident framebuffer and sets the viewport to its size.
	//
	// Parameters:
	//   - id: the framebuffer ID
	//
	// Returns:
	//   - error: common.ErrLookup if the framebuffer is not resident
	BindFramebuffer(id common.AssetID) error

	// BindDefault binds the default back buffer with the given viewport.
	//
	// Parameters:
	//   - width: viewport width
	//   - height: viewport height
	BindDefault(width, height int)

	// ResizeFramebuffer rebuilds a framebuffer at (width, height) × its resize factor,
	// resizing every attachment to match. The new objects are built before the old ones are
	// released; on failure the framebuffer and its attachments keep their previous size and
	// GPU mirrors.
	//
	// Parameters:
	//   - fb: the framebuffer
	//   - width: the new parent viewport width
	//   - height: the new parent viewport height
	//
	// Returns:
	//   - error: the build error, if any
	ResizeFramebuffer(fb framebuffer.Framebuffer, width, height int) error

	// ReleaseFramebuffer releases a framebuffer together with its attachment textures.
	//
	// Parameters:
	//   - id: the framebuffer ID
	ReleaseFramebuffer(id common.AssetID)

	// ShaderLoaded reports whether a shader program is resident.
	//
	// Parameters:
	//   - id: the shader ID
	//
	// Returns:
	//   - bool: true if resident
	ShaderLoaded(id common.AssetID) bool

	// LoadShader reads, pre-processes, compiles and links a shader.
	//
	// Parameters:
	//   - s: the shader
	//
	// Returns:
	//   - error: a common.ErrBuild error if a source is unreadable or fails to build
	LoadShader(s shader.Shader) error

	// CompileShader compiles and links a shader from already loaded sources.
	//
	// Parameters:
	//   - s: the shader
	//   - src: the pre-processed stage sources
	//
	// Returns:
	//   - error: a common.ErrBuild error carrying the compiler log
	CompileShader(s shader.Shader, src shader.Sources) error

	// BindShader binds a resident shader program.
	//
	// Parameters:
	//   - id: the shader ID
	//
	// Returns:
	//   - error: common.ErrLookup if the shader is not resident
	BindShader(id common.AssetID) error

	// ReleaseShader releases a shader program and its uniform location cache.
	//
	// Parameters:
	//   - id: the shader ID
	ReleaseShader(id common.AssetID)

	// Uniform uploads a value to a named uniform of a resident shader, binding the shader if
	// it is not bound. Locations are memoized per shader on first lookup.
	//
	// Parameters:
	//   - id: the shader ID
	//   - name: the uniform name
	//   - value: the value, in the backend uniform domain
	//
	// Returns:
	//   - error: common.ErrLookup or common.ErrUnknownUniformType
	Uniform(id common.AssetID, name string, value any) error

	// ApplyMaterial uploads a material to a shader. With the default material enabled on the
	// shader it binds the albedo texture to unit 0 (or uploads uAlbedo), binds the material
	// texture to the unit equal to the mode mask (or uploads uMetallic, uRoughness, uEmission
	// and uAO) and uploads uMaterialMode. Custom parameters are uploaded for every tag the
	// shader declares.
	//
	// Parameters:
	//   - s: the shader, which must be resident
	//   - m: the material
	//
	// Returns:
	//   - error: common.ErrLookup if the shader or a referenced texture is not resident
	ApplyMaterial(s shader.Shader, m material.Material) error

	// ApplyTransform uploads uPosition, uScale and uRotation.
	//
	// Parameters:
	//   - id: the shader ID
	//   - p: the placement to upload
	//
	// Returns:
	//   - error: common.ErrLookup if the shader is not resident
	ApplyTransform(id common.AssetID, p model.Placement) error

	// State applies a render-state toggle.
	//
	// Parameters:
	//   - state: the toggle
	State(state backend.RenderState)

	// BlendWeights sets the weighted-blend factors.
	//
	// Parameters:
	//   - source: the source weight
	//   - destination: the destination weight
	BlendWeights(source, destination float32)

	// ClearBuffers clears color and depth of the bound framebuffer with color.
	//
	// Parameters:
	//   - color: the clear color
	ClearBuffers(color mgl32.Vec4)

	// Draw issues an indexed triangle draw of the bound vertex array.
	//
	// Parameters:
	//   - indexCount: the index count
	Draw(indexCount int)

	// DrawInstanced issues an instanced indexed triangle draw of the bound vertex array.
	//
	// Parameters:
	//   - indexCount: the index count
	//   - instances: the instance count
	DrawInstanced(indexCount, instances int)

	// TextureName returns the backend name of a resident texture.
	//
	// Parameters:
	//   - id: the texture ID
	//
	// Returns:
	//   - uint32: the texture name
	//   - error: common.ErrLookup if the texture is not resident
	TextureName(id common.AssetID) (uint32, error)

	// FramebufferName returns the backend name of a resident framebuffer.
	//
	// Parameters:
	//   - id: the framebuffer ID
	//
	// Returns:
	//   - uint32: the framebuffer name
	//   - error: common.ErrLookup if the framebuffer is not resident
	FramebufferName(id common.AssetID) (uint32, error)

	// ShaderProgram returns the backend name of a resident shader program.
	//
	// Parameters:
	//   - id: the shader ID
	//
	// Returns:
	//   - uint32: the program name
	//   - error: common.ErrLookup if the shader is not resident
	ShaderProgram(id common.AssetID) (uint32, error)

	// Resident counts the resident GPU mirrors per kind.
	//
	// Returns:
	//   - Resident: the counts
	Resident() Resident

	// ReleaseAll releases every GPU mirror.
	ReleaseAll()
}

var _ Device = &device{}

// NewDevice creates a Device driving b.
//
// Parameters:
//   - b: the backend, already initialized
//   - opts: optional DeviceBuilderOption functions
//
// Returns:
//   - Device: the GPU resource cache
func NewDevice(b backend.Backend, opts ...DeviceBuilderOption) Device {
	d := &device{
		mu:           &sync.Mutex{},
		logger:       zap.NewNop(),
		backend:      b,
		growthFactor: DefaultGrowthFactor,
		meshes:       make(map[common.AssetID]backend.MeshHandle),
		groups:       make(map[common.AssetID]*instanceEntry),
		textures:     make(map[common.AssetID]uint32),
		framebuffers: make(map[common.AssetID]*framebufferEntry),
		shaders:      make(map[common.AssetID]*shaderEntry),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.growthFactor < 1 {
		d.growthFactor = 1
	}
	return d
}

func (d *device) Backend() backend.Backend {
	return d.backend
}

func (d *device) GrowthFactor() float32 {
	return d.growthFactor
}

func (d *device) State(state backend.RenderState) {
	d.backend.State(state)
}

func (d *device) BlendWeights(source, destination float32) {
	d.backend.BlendWeights(source, destination)
}

func (d *device) ClearBuffers(color mgl32.Vec4) {
	d.backend.ClearColor(color)
	d.backend.Clear()
}

func (d *device) Draw(indexCount int) {
	d.backend.DrawIndexed(backend.DrawTriangles, indexCount)
}

func (d *device) DrawInstanced(indexCount, instances int) {
	d.backend.DrawIndexedInstanced(backend.DrawTriangles, indexCount, instances)
}

func (d *device) Resident() Resident {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Resident{
		Meshes:         len(d.meshes),
		InstanceGroups: len(d.groups),
		Textures:       len(d.textures),
		Framebuffers:   len(d.framebuffers),
		Shaders:        len(d.shaders),
	}
}

// ReleaseAll releases instance groups before meshes since their vertex arrays reference the
// mesh buffers, and framebuffers before loose textures.
func (d *device) ReleaseAll() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for id := range d.groups {
		d.releaseInstanceGroup(id)
	}
	for id := range d.meshes {
		d.releaseMesh(id)
	}
	for id := range d.framebuffers {
		d.releaseFramebuffer(id)
	}
	for id := range d.textures {
		d.releaseTexture(id)
	}
	for id := range d.shaders {
		d.releaseShader(id)
	}
	d.logger.Debug("device cache cleared")
}
