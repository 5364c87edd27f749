package backend

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
)

// BackendType identifies the graphics API implementation behind a Backend.
type BackendType int

const (
	// BackendTypeOpenGL selects the OpenGL 4.1 core profile backend.
	BackendTypeOpenGL BackendType = iota

	// BackendTypeHeadless selects the recording backend that issues no API calls.
	BackendTypeHeadless
)

func (t BackendType) String() string {
	switch t {
	case BackendTypeOpenGL:
		return "opengl"
	case BackendTypeHeadless:
		return "headless"
	default:
		return fmt.Sprintf("BackendType(%d)", int(t))
	}
}

// RenderState is a global render-state toggle.
type RenderState int

const (
	StateEnableDepth RenderState = iota
	StateDisableDepth
	StateEnableBlend
	StateDisableBlend
	StateEnableCulling
	StateDisableCulling
	StateCullFront
	StateCullBack

	// StateBlendAdd sums source and destination (ONE, ONE).
	StateBlendAdd

	// StateBlendWeighted scales source and destination by the weights set with BlendWeights.
	StateBlendWeighted
)

func (s RenderState) String() string {
	switch s {
	case StateEnableDepth:
		return "enable_depth"
	case StateDisableDepth:
		return "disable_depth"
	case StateEnableBlend:
		return "enable_blend"
	case StateDisableBlend:
		return "disable_blend"
	case StateEnableCulling:
		return "enable_culling"
	case StateDisableCulling:
		return "disable_culling"
	case StateCullFront:
		return "cull_front"
	case StateCullBack:
		return "cull_back"
	case StateBlendAdd:
		return "blend_add"
	case StateBlendWeighted:
		return "blend_weighted"
	default:
		return fmt.Sprintf("RenderState(%d)", int(s))
	}
}

// DrawMode is the primitive topology of an indexed draw. Values are the GL enums.
type DrawMode uint32

const (
	DrawPoints        DrawMode = 0x0000
	DrawLines         DrawMode = 0x0001
	DrawTriangles     DrawMode = 0x0004
	DrawTriangleStrip DrawMode = 0x0005
	DrawTriangleFan   DrawMode = 0x0006
)

// Info describes the driver behind a Backend.
type Info struct {
	Renderer string
	Vendor   string
	Version  string
	GLSL     string
}

// MeshHandle holds the GPU objects of an uploaded mesh.
type MeshHandle struct {
	VAO        uint32
	VBO        uint32
	EBO        uint32
	IndexCount int
}

// InstanceHandle holds the GPU objects of an uploaded instance group. The VAO combines the
// mesh attributes with the per-instance attributes; VBO and EBO belong to the mesh.
type InstanceHandle struct {
	VAO         uint32
	InstanceVBO uint32
	IndexCount  int

	// Capacity is the allocated size of the instance buffer in floats.
	Capacity int
}

// FramebufferHandle holds the GPU objects of a built framebuffer.
type FramebufferHandle struct {
	FBO uint32

	// Renderbuffer is the fallback depth renderbuffer, 0 when a depth texture was supplied.
	Renderbuffer uint32

	// Textures holds the created texture names, co-indexed with the attachments passed to
	// CreateFramebuffer after sorting.
	Textures []uint32

	// DrawBuffers is the color attachment list in the order declared to the API.
	DrawBuffers []texture.AttachmentType
}

// ProgramSource is the GLSL text of each stage of a program. Geometry may be empty.
type ProgramSource struct {
	Name     string
	Vertex   string
	Fragment string
	Geometry string
}
