package backend

import (
	"fmt"
	"strings"
	"sync"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// glLoad guards gl.Init; entry points are process-wide.
var glLoad struct {
	once sync.Once
	err  error
}

// glBackend is the OpenGL 4.1 core implementation of the Backend interface.
type glBackend struct {
	info        Info
	initialized bool
}

var _ Backend = &glBackend{}

func newGLBackend() *glBackend {
	return &glBackend{}
}

func (b *glBackend) Init(ctx Context) error {
	if ctx != nil {
		ctx.MakeContextCurrent()
	}
	if b.initialized {
		return nil
	}
	glLoad.once.Do(func() {
		glLoad.err = gl.Init()
	})
	if glLoad.err != nil {
		return fmt.Errorf("load opengl: %w", glLoad.err)
	}

	gl.Enable(gl.DEPTH_TEST)

	b.info = Info{
		Renderer: gl.GoStr(gl.GetString(gl.RENDERER)),
		Vendor:   gl.GoStr(gl.GetString(gl.VENDOR)),
		Version:  gl.GoStr(gl.GetString(gl.VERSION)),
		GLSL:     gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION)),
	}
	b.initialized = true
	return nil
}

func (b *glBackend) Info() Info {
	return b.info
}

func (b *glBackend) LastError() uint32 {
	var last uint32
	for code := gl.GetError(); code != gl.NO_ERROR; code = gl.GetError() {
		last = code
	}
	return last
}

func (b *glBackend) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (b *glBackend) ClearColor(color mgl32.Vec4) {
	gl.ClearColor(color[0], color[1], color[2], color[3])
}

func (b *glBackend) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (b *glBackend) State(state RenderState) {
	switch state {
	case StateEnableDepth:
		gl.Enable(gl.DEPTH_TEST)
	case StateDisableDepth:
		gl.Disable(gl.DEPTH_TEST)
	case StateEnableBlend:
		gl.Enable(gl.BLEND)
	case StateDisableBlend:
		gl.Disable(gl.BLEND)
	case StateEnableCulling:
		gl.Enable(gl.CULL_FACE)
	case StateDisableCulling:
		gl.Disable(gl.CULL_FACE)
	case StateCullFront:
		gl.CullFace(gl.FRONT)
	case StateCullBack:
		gl.CullFace(gl.BACK)
	case StateBlendAdd:
		gl.BlendFunc(gl.ONE, gl.ONE)
	case StateBlendWeighted:
		gl.BlendFunc(gl.CONSTANT_COLOR, gl.CONSTANT_ALPHA)
	}
}

// BlendWeights stores the source weight in the constant color and the destination weight in
// the constant alpha, read back by StateBlendWeighted.
func (b *glBackend) BlendWeights(source, destination float32) {
	gl.BlendColor(source, source, source, destination)
}

func (b *glBackend) CreateMesh(vertices []float32, indices []uint32, layout common.Layout, dynamic bool) (MeshHandle, error) {
	if err := validateLayout(layout); err != nil {
		return MeshHandle{}, err
	}
	usage := bufferUsage(dynamic)

	var h MeshHandle
	gl.GenVertexArrays(1, &h.VAO)
	gl.BindVertexArray(h.VAO)

	gl.GenBuffers(1, &h.VBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, h.VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, floatPtr(vertices), usage)

	gl.GenBuffers(1, &h.EBO)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, h.EBO)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, uintPtr(indices), usage)

	bindAttributes(layout, 0, 0)

	gl.BindVertexArray(0)
	h.IndexCount = len(indices)
	return h, nil
}

func (b *glBackend) DeleteMesh(h MeshHandle) {
	gl.DeleteBuffers(1, &h.VBO)
	gl.DeleteBuffers(1, &h.EBO)
	gl.DeleteVertexArrays(1, &h.VAO)
}

func (b *glBackend) CreateInstanceBuffer(mesh MeshHandle, meshLayout, instanceLayout common.Layout, data []float32, capacity int, dynamic bool) (InstanceHandle, error) {
	if err := validateLayout(meshLayout); err != nil {
		return InstanceHandle{}, err
	}
	if err := validateLayout(instanceLayout); err != nil {
		return InstanceHandle{}, err
	}
	if capacity < len(data) {
		capacity = len(data)
	}

	h := InstanceHandle{IndexCount: mesh.IndexCount, Capacity: capacity}
	gl.GenVertexArrays(1, &h.VAO)
	gl.BindVertexArray(h.VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, mesh.VBO)
	bindAttributes(meshLayout, 0, 0)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, mesh.EBO)

	gl.GenBuffers(1, &h.InstanceVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, h.InstanceVBO)
	gl.BufferData(gl.ARRAY_BUFFER, capacity*4, nil, bufferUsage(dynamic))
	if len(data) > 0 {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(data)*4, floatPtr(data))
	}
	bindAttributes(instanceLayout, meshLayout.Size(), 1)

	gl.BindVertexArray(0)
	return h, nil
}

func (b *glBackend) UpdateInstanceBuffer(h *InstanceHandle, data []float32, capacity int, dynamic bool) {
	gl.BindBuffer(gl.ARRAY_BUFFER, h.InstanceVBO)
	if capacity > h.Capacity {
		gl.BufferData(gl.ARRAY_BUFFER, capacity*4, nil, bufferUsage(dynamic))
		h.Capacity = capacity
	}
	if len(data) > 0 {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(data)*4, floatPtr(data))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func (b *glBackend) DeleteInstanceBuffer(h InstanceHandle) {
	gl.DeleteBuffers(1, &h.InstanceVBO)
	gl.DeleteVertexArrays(1, &h.VAO)
}

func (b *glBackend) BindVertexArray(vao uint32) {
	gl.BindVertexArray(vao)
}

func (b *glBackend) CreateTexture(t texture.Texture) (uint32, error) {
	if t.Width() <= 0 || t.Height() <= 0 {
		return 0, fmt.Errorf("texture %d has no size (%dx%d)", t.ID(), t.Width(), t.Height())
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, int32(t.InternalFormat()), int32(t.Width()), int32(t.Height()), 0,
		uint32(t.Format()), uint32(t.DataType()), bytePtr(t.Data()))

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, int32(t.WrapS()))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, int32(t.WrapT()))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, int32(t.MinFilter()))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, int32(t.MagFilter()))

	if t.InternalFormat().IsDepth() && t.WrapS() == texture.WrapClampToBorder {
		border := [4]float32{1, 1, 1, 1}
		gl.TexParameterfv(gl.TEXTURE_2D, gl.TEXTURE_BORDER_COLOR, &border[0])
	}
	if t.MinFilter().Mipmapped() && len(t.Data()) > 0 {
		gl.GenerateMipmap(gl.TEXTURE_2D)
	}

	gl.BindTexture(gl.TEXTURE_2D, 0)
	return id, nil
}

func (b *glBackend) DeleteTexture(id uint32) {
	gl.DeleteTextures(1, &id)
}

func (b *glBackend) BindTexture(id uint32, unit texture.Unit) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, id)
}

func (b *glBackend) CreateFramebuffer(width, height int, attachments []texture.Texture) (FramebufferHandle, error) {
	sorted := SortAttachments(attachments)

	var h FramebufferHandle
	gl.GenFramebuffers(1, &h.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, h.FBO)

	release := func() {
		for _, id := range h.Textures {
			b.DeleteTexture(id)
		}
		h.Textures = nil
		b.DeleteFramebuffer(h)
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	}

	hasDepth := false
	for _, t := range sorted {
		id, err := b.CreateTexture(t)
		if err != nil {
			release()
			return FramebufferHandle{}, fmt.Errorf("%w: %v", common.ErrFramebufferIncomplete, err)
		}
		h.Textures = append(h.Textures, id)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, uint32(t.Attachment()), gl.TEXTURE_2D, id, 0)

		if t.Attachment() == texture.AttachmentDepth {
			hasDepth = true
		} else if t.Attachment().IsColor() {
			h.DrawBuffers = append(h.DrawBuffers, t.Attachment())
		}
	}

	if len(h.DrawBuffers) > 0 {
		buffers := make([]uint32, len(h.DrawBuffers))
		for i, a := range h.DrawBuffers {
			buffers[i] = uint32(a)
		}
		gl.DrawBuffers(int32(len(buffers)), &buffers[0])
	} else {
		gl.DrawBuffer(gl.NONE)
		gl.ReadBuffer(gl.NONE)
	}

	if !hasDepth {
		gl.GenRenderbuffers(1, &h.Renderbuffer)
		gl.BindRenderbuffer(gl.RENDERBUFFER, h.Renderbuffer)
		gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, int32(width), int32(height))
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, h.Renderbuffer)
		gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
	}

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		release()
		return FramebufferHandle{}, fmt.Errorf("%w: status 0x%x", common.ErrFramebufferIncomplete, status)
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return h, nil
}

func (b *glBackend) DeleteFramebuffer(h FramebufferHandle) {
	if h.Renderbuffer != 0 {
		gl.DeleteRenderbuffers(1, &h.Renderbuffer)
	}
	gl.DeleteFramebuffers(1, &h.FBO)
}

func (b *glBackend) BindFramebuffer(fbo uint32, width, height int) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (b *glBackend) CompileProgram(src ProgramSource) (uint32, error) {
	type stage struct {
		kind   uint32
		name   string
		source string
	}
	stages := []stage{
		{gl.VERTEX_SHADER, "vertex", src.Vertex},
		{gl.FRAGMENT_SHADER, "fragment", src.Fragment},
	}
	if src.Geometry != "" {
		stages = append(stages, stage{gl.GEOMETRY_SHADER, "geometry", src.Geometry})
	}

	program := gl.CreateProgram()
	compiled := make([]uint32, 0, len(stages))
	cleanup := func() {
		for _, s := range compiled {
			gl.DeleteShader(s)
		}
	}

	for _, s := range stages {
		id, err := compileStage(s.kind, s.source)
		if err != nil {
			cleanup()
			gl.DeleteProgram(program)
			return 0, &common.BuildError{Stage: s.name, Path: src.Name, Log: err.Error()}
		}
		gl.AttachShader(program, id)
		compiled = append(compiled, id)
	}

	gl.LinkProgram(program)
	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		cleanup()
		gl.DeleteProgram(program)
		return 0, &common.BuildError{Stage: "link", Path: src.Name, Log: strings.TrimRight(log, "\x00")}
	}

	for _, s := range compiled {
		gl.DetachShader(program, s)
	}
	cleanup()
	return program, nil
}

func compileStage(kind uint32, source string) (uint32, error) {
	shader := gl.CreateShader(kind)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s", strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

func (b *glBackend) DeleteProgram(program uint32) {
	gl.DeleteProgram(program)
}

func (b *glBackend) UseProgram(program uint32) {
	gl.UseProgram(program)
}

func (b *glBackend) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (b *glBackend) Uniform(location int32, value any) error {
	if err := checkUniform(value); err != nil {
		return err
	}
	if location < 0 {
		return nil
	}
	switch v := value.(type) {
	case bool:
		var i int32
		if v {
			i = 1
		}
		gl.Uniform1i(location, i)
	case int:
		gl.Uniform1i(location, int32(v))
	case int32:
		gl.Uniform1i(location, v)
	case texture.Unit:
		gl.Uniform1i(location, int32(v))
	case uint32:
		gl.Uniform1ui(location, v)
	case uint64:
		gl.Uniform1ui(location, uint32(v))
	case float32:
		gl.Uniform1f(location, v)
	case float64:
		gl.Uniform1f(location, float32(v))
	case mgl32.Vec2:
		gl.Uniform2f(location, v[0], v[1])
	case mgl32.Vec3:
		gl.Uniform3f(location, v[0], v[1], v[2])
	case mgl32.Vec4:
		gl.Uniform4f(location, v[0], v[1], v[2], v[3])
	case mgl32.Quat:
		gl.Uniform4f(location, v.V[0], v.V[1], v.V[2], v.W)
	case mgl32.Mat3:
		gl.UniformMatrix3fv(location, 1, false, &v[0])
	case mgl32.Mat4:
		gl.UniformMatrix4fv(location, 1, false, &v[0])
	}
	return nil
}

func (b *glBackend) DrawIndexed(mode DrawMode, count int) {
	gl.DrawElements(uint32(mode), int32(count), gl.UNSIGNED_INT, nil)
}

func (b *glBackend) DrawIndexedInstanced(mode DrawMode, count, instances int) {
	gl.DrawElementsInstanced(uint32(mode), int32(count), gl.UNSIGNED_INT, nil, int32(instances))
}

// ReadPixels reads a rectangle of float values from an attachment of fbo: RGBA for color
// attachments, one depth value per pixel for AttachmentDepth.
func (b *glBackend) ReadPixels(fbo uint32, attachment texture.AttachmentType, x, y, width, height int) []float32 {
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, fbo)
	format, components := uint32(gl.RGBA), 4
	if attachment == texture.AttachmentDepth {
		format, components = gl.DEPTH_COMPONENT, 1
	} else if fbo != 0 {
		gl.ReadBuffer(uint32(attachment))
	}
	out := make([]float32, width*height*components)
	gl.ReadPixels(int32(x), int32(y), int32(width), int32(height), format, gl.FLOAT, gl.Ptr(out))
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	return out
}

// bindAttributes wires layout as float attributes starting at slot base on the bound buffer.
func bindAttributes(layout common.Layout, base uint32, divisor uint32) {
	stride := int32(layout.Stride() * 4)
	var offset uintptr
	for i, width := range layout {
		slot := base + uint32(i)
		gl.EnableVertexAttribArray(slot)
		gl.VertexAttribPointerWithOffset(slot, int32(width), gl.FLOAT, false, stride, offset)
		if divisor > 0 {
			gl.VertexAttribDivisor(slot, divisor)
		}
		offset += uintptr(width * 4)
	}
}

func bufferUsage(dynamic bool) uint32 {
	if dynamic {
		return gl.DYNAMIC_DRAW
	}
	return gl.STATIC_DRAW
}

func floatPtr(data []float32) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}
	return gl.Ptr(data)
}

func uintPtr(data []uint32) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}
	return gl.Ptr(data)
}

func bytePtr(data []byte) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}
	return gl.Ptr(data)
}
