package backend

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
	"github.com/go-gl/mathgl/mgl32"
)

// Context is the window side of context initialization.
type Context interface {
	// MakeContextCurrent binds the window's graphics context to the calling thread.
	MakeContextCurrent()
}

// Backend is the narrow, pass-agnostic surface over the graphics API.
// The graphics context is process-wide; every method must be called on the thread that
// owns it, which is the thread that called Init.
type Backend interface {
	// Init makes the context of ctx current and loads the API entry points. Global state is
	// set to depth-test enabled. Calling Init again only rebinds the context.
	//
	// Parameters:
	//   - ctx: the window providing the context, may be nil for backends without a context
	//
	// Returns:
	//   - error: an error if the API could not be loaded
	Init(ctx Context) error

	// Info reports the driver strings. Valid after Init.
	//
	// Returns:
	//   - Info: renderer, vendor, version and shading language version
	Info() Info

	// LastError returns and clears the most recent API error code, 0 if none.
	//
	// Returns:
	//   - uint32: the error code
	LastError() uint32

	// Viewport sets the viewport rectangle starting at the origin.
	//
	// Parameters:
	//   - width: viewport width in pixels
	//   - height: viewport height in pixels
	Viewport(width, height int)

	// ClearColor sets the color used by Clear.
	//
	// Parameters:
	//   - color: the RGBA clear color
	ClearColor(color mgl32.Vec4)

	// Clear clears the color and depth buffers of the bound framebuffer.
	Clear()

	// State applies a global render-state toggle.
	//
	// Parameters:
	//   - state: the toggle to apply
	State(state RenderState)

	// BlendWeights sets the source and destination factors used by StateBlendWeighted.
	//
	// Parameters:
	//   - source: the source weight
	//   - destination: the destination weight
	BlendWeights(source, destination float32)

	// CreateMesh uploads vertex and index data and wires the vertex attributes from slot 0.
	//
	// Parameters:
	//   - vertices: interleaved vertex floats
	//   - indices: 32-bit indices
	//   - layout: per-vertex attribute widths
	//   - dynamic: true to allocate for frequent updates
	//
	// Returns:
	//   - MeshHandle: the created objects
	//   - error: an error if the layout cannot be expressed as vertex attributes
	CreateMesh(vertices []float32, indices []uint32, layout common.Layout, dynamic bool) (MeshHandle, error)

	// DeleteMesh releases the objects of a mesh.
	//
	// Parameters:
	//   - h: the mesh handle
	DeleteMesh(h MeshHandle)

	// CreateInstanceBuffer builds a vertex array that combines the mesh attributes (slots
	// 0..len(meshLayout)-1) with per-instance attributes starting at slot len(meshLayout),
	// each with divisor 1, and uploads data into a buffer of capacity floats.
	//
	// Parameters:
	//   - mesh: the uploaded mesh the instances draw
	//   - meshLayout: the mesh per-vertex layout
	//   - instanceLayout: the per-instance layout
	//   - data: the packed instance floats
	//   - capacity: the buffer size in floats, at least len(data)
	//   - dynamic: true to allocate for frequent updates
	//
	// Returns:
	//   - InstanceHandle: the created objects
	//   - error: an error if a layout cannot be expressed as vertex attributes
	CreateInstanceBuffer(mesh MeshHandle, meshLayout, instanceLayout common.Layout, data []float32, capacity int, dynamic bool) (InstanceHandle, error)

	// UpdateInstanceBuffer writes data into the instance buffer. When capacity exceeds the
	// current capacity the buffer is reallocated to capacity floats with a full upload,
	// otherwise data is written as a sub-range from offset 0.
	//
	// Parameters:
	//   - h: the instance handle, its Capacity is updated on reallocation
	//   - data: the packed instance floats
	//   - capacity: the required capacity in floats
	//   - dynamic: true to allocate for frequent updates
	UpdateInstanceBuffer(h *InstanceHandle, data []float32, capacity int, dynamic bool)

	// DeleteInstanceBuffer releases the vertex array and instance buffer. The mesh objects are kept.
	//
	// Parameters:
	//   - h: the instance handle
	DeleteInstanceBuffer(h InstanceHandle)

	// BindVertexArray binds a vertex array for drawing.
	//
	// Parameters:
	//   - vao: the vertex array name
	BindVertexArray(vao uint32)

	// CreateTexture creates a 2D texture from its description. Empty data creates an
	// uninitialized texture.
	//
	// Parameters:
	//   - t: the texture description
	//
	// Returns:
	//   - uint32: the texture name
	//   - error: an error if the description has no size
	CreateTexture(t texture.Texture) (uint32, error)

	// DeleteTexture releases a texture.
	//
	// Parameters:
	//   - id: the texture name
	DeleteTexture(id uint32)

	// BindTexture binds a texture to a texture unit.
	//
	// Parameters:
	//   - id: the texture name
	//   - unit: the texture unit
	BindTexture(id uint32, unit texture.Unit)

	// CreateFramebuffer creates a framebuffer with one texture per attachment. Color
	// attachments are sorted by slot and declared as the draw-buffer list; a depth
	// renderbuffer is created when no depth attachment is supplied. Textures created during
	// a failed build are released before the error is returned.
	//
	// Parameters:
	//   - width: framebuffer width, also used by the depth renderbuffer
	//   - height: framebuffer height
	//   - attachments: the attachment textures, each with its size already set
	//
	// Returns:
	//   - FramebufferHandle: the created objects, Textures co-indexed with SortAttachments(attachments)
	//   - error: common.ErrFramebufferIncomplete if the framebuffer is incomplete
	CreateFramebuffer(width, height int, attachments []texture.Texture) (FramebufferHandle, error)

	// DeleteFramebuffer releases the framebuffer and its renderbuffer. Attachment textures are
	// released separately with DeleteTexture.
	//
	// Parameters:
	//   - h: the framebuffer handle
	DeleteFramebuffer(h FramebufferHandle)

	// BindFramebuffer binds a framebuffer and sets the viewport to its size. fbo 0 is the
	// default back buffer.
	//
	// Parameters:
	//   - fbo: the framebuffer name
	//   - width: viewport width
	//   - height: viewport height
	BindFramebuffer(fbo uint32, width, height int)

	// CompileProgram compiles and links a program. The geometry stage is optional.
	//
	// Parameters:
	//   - src: the stage sources
	//
	// Returns:
	//   - uint32: the program name
	//   - error: a *common.BuildError carrying the compiler or linker log
	CompileProgram(src ProgramSource) (uint32, error)

	// DeleteProgram releases a program.
	//
	// Parameters:
	//   - program: the program name
	DeleteProgram(program uint32)

	// UseProgram binds a program.
	//
	// Parameters:
	//   - program: the program name
	UseProgram(program uint32)

	// UniformLocation looks up a uniform location, -1 if the program has no such active uniform.
	//
	// Parameters:
	//   - program: the program name
	//   - name: the uniform name
	//
	// Returns:
	//   - int32: the location
	UniformLocation(program uint32, name string) int32

	// Uniform uploads a value to a location of the bound program. Supported values are bool,
	// int, int32, uint32, uint64, float32, float64, mgl32.Vec2/Vec3/Vec4, mgl32.Quat (as x,y,z,w),
	// mgl32.Mat3, mgl32.Mat4 and texture.Unit.
	//
	// Parameters:
	//   - location: the uniform location, -1 is ignored
	//   - value: the value to upload
	//
	// Returns:
	//   - error: common.ErrUnknownUniformType for unsupported values
	Uniform(location int32, value any) error

	// DrawIndexed issues an indexed draw of the bound vertex array.
	//
	// Parameters:
	//   - mode: the primitive topology
	//   - count: the index count
	DrawIndexed(mode DrawMode, count int)

	// DrawIndexedInstanced issues an instanced indexed draw of the bound vertex array.
	//
	// Parameters:
	//   - mode: the primitive topology
	//   - count: the index count
	//   - instances: the instance count
	DrawIndexedInstanced(mode DrawMode, count, instances int)
}

// NewBackend creates a Backend of the given type.
//
// Parameters:
//   - backendType: the implementation to create
//
// Returns:
//   - Backend: the backend
//   - error: an error if the type is unknown
func NewBackend(backendType BackendType) (Backend, error) {
	switch backendType {
	case BackendTypeOpenGL:
		return newGLBackend(), nil
	case BackendTypeHeadless:
		return NewHeadless(), nil
	default:
		return nil, fmt.Errorf("unknown backend type %s", backendType)
	}
}

// SortAttachments returns the attachments ordered as the backend wires them: color
// attachments by ascending slot, then the depth attachment. The input is not modified.
//
// Parameters:
//   - attachments: the attachment textures
//
// Returns:
//   - []texture.Texture: the sorted attachments
func SortAttachments(attachments []texture.Texture) []texture.Texture {
	out := make([]texture.Texture, len(attachments))
	copy(out, attachments)
	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := out[i].Attachment(), out[j].Attachment()
		if ai.IsColor() != aj.IsColor() {
			return ai.IsColor()
		}
		return ai < aj
	})
	return out
}

// validateLayout checks that every attribute width fits a single vertex attribute.
func validateLayout(layout common.Layout) error {
	if layout.Stride() == 0 {
		return fmt.Errorf("%w: empty layout", common.ErrInvalidMesh)
	}
	for i, w := range layout {
		if w == 0 || w > 4 {
			return fmt.Errorf("%w: attribute %d has width %d", common.ErrInvalidMesh, i, w)
		}
	}
	return nil
}

// checkUniform reports whether value is in the uploadable domain.
func checkUniform(value any) error {
	switch value.(type) {
	case bool, int, int32, uint32, uint64, float32, float64,
		mgl32.Vec2, mgl32.Vec3, mgl32.Vec4, mgl32.Quat, mgl32.Mat3, mgl32.Mat4, texture.Unit:
		return nil
	default:
		return fmt.Errorf("%w: %T", common.ErrUnknownUniformType, value)
	}
}
