package backend

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
	"github.com/go-gl/mathgl/mgl32"
)

// Op names a recorded backend call.
type Op string

const (
	OpViewport             Op = "viewport"
	OpClearColor           Op = "clear_color"
	OpClear                Op = "clear"
	OpState                Op = "state"
	OpBlendWeights         Op = "blend_weights"
	OpCreateMesh           Op = "create_mesh"
	OpDeleteMesh           Op = "delete_mesh"
	OpCreateInstanceBuffer Op = "create_instance_buffer"
	OpUpdateInstanceBuffer Op = "update_instance_buffer"
	OpDeleteInstanceBuffer Op = "delete_instance_buffer"
	OpBindVertexArray      Op = "bind_vertex_array"
	OpCreateTexture        Op = "create_texture"
	OpDeleteTexture        Op = "delete_texture"
	OpBindTexture          Op = "bind_texture"
	OpCreateFramebuffer    Op = "create_framebuffer"
	OpDeleteFramebuffer    Op = "delete_framebuffer"
	OpBindFramebuffer      Op = "bind_framebuffer"
	OpCompileProgram       Op = "compile_program"
	OpDeleteProgram        Op = "delete_program"
	OpUseProgram           Op = "use_program"
	OpUniform              Op = "uniform"
	OpDrawIndexed          Op = "draw_indexed"
	OpDrawIndexedInstanced Op = "draw_indexed_instanced"
)

// Command is one recorded backend call.
//
// Handle is the object the call acts on (vertex array, texture, framebuffer or program).
// Name is the uniform or program name. Value is the uniform value or render state.
// Args holds integer arguments in call order: sizes, counts, units.
type Command struct {
	Op     Op
	Handle uint32
	Name   string
	Value  any
	Args   []int
}

// StateSnapshot is the global render state as tracked by the headless backend.
type StateSnapshot struct {
	Depth         bool
	Blend         bool
	Culling       bool
	CullFront     bool
	BlendWeighted bool
	SourceWeight  float32
	DestWeight    float32
}

type uniformSlot struct {
	program uint32
	name    string
}

type headlessTexture struct {
	width, height int
}

// headless is the recording implementation of the Headless interface.
type headless struct {
	mu *sync.Mutex

	next     uint32
	commands []Command
	state    StateSnapshot

	meshes       map[uint32]struct{}
	buffers      map[uint32]int
	textures     map[uint32]headlessTexture
	framebuffers map[uint32]FramebufferHandle
	programs     map[uint32]string

	locations map[uniformSlot]int32
	slots     map[int32]uniformSlot
	values    map[uniformSlot]any

	boundProgram     uint32
	boundFramebuffer uint32

	failCompile     string
	failFramebuffer bool
}

// Headless is a Backend that issues no graphics API calls. It records every call as a Command,
// tracks the objects it hands out and the last value uploaded to every uniform, and can be
// told to fail program compilation or framebuffer completeness.
type Headless interface {
	Backend

	// Commands returns a copy of the recorded calls since the last Reset.
	//
	// Returns:
	//   - []Command: the recorded calls
	Commands() []Command

	// Count returns how many recorded calls have the given op.
	//
	// Parameters:
	//   - op: the op to count
	//
	// Returns:
	//   - int: the number of matching calls
	Count(op Op) int

	// Reset discards the recorded calls. Live objects and state are kept.
	Reset()

	// SetCompileFailure makes CompileProgram fail for every program whose name contains match.
	// An empty match disables the failure.
	//
	// Parameters:
	//   - match: the substring of the program name to fail on
	SetCompileFailure(match string)

	// SetFramebufferFailure makes CreateFramebuffer report an incomplete framebuffer.
	//
	// Parameters:
	//   - fail: true to fail
	SetFramebufferFailure(fail bool)

	// Live returns the number of objects created and not yet deleted.
	//
	// Returns:
	//   - int: the live object count
	Live() int

	// TextureSize returns the size a texture was created with.
	//
	// Parameters:
	//   - id: the texture name
	//
	// Returns:
	//   - int: the width
	//   - int: the height
	//   - bool: false if the texture is not live
	TextureSize(id uint32) (int, int, bool)

	// BufferCapacity returns the allocated size of an instance buffer in floats.
	//
	// Parameters:
	//   - vbo: the instance buffer name
	//
	// Returns:
	//   - int: the capacity
	//   - bool: false if the buffer is not live
	BufferCapacity(vbo uint32) (int, bool)

	// UniformValue returns the last value uploaded to a uniform of a program.
	//
	// Parameters:
	//   - program: the program name
	//   - name: the uniform name
	//
	// Returns:
	//   - any: the value
	//   - bool: false if nothing was uploaded
	UniformValue(program uint32, name string) (any, bool)

	// ProgramName returns the name a program was compiled under.
	//
	// Parameters:
	//   - program: the program name
	//
	// Returns:
	//   - string: the source name, empty if the program is not live
	ProgramName(program uint32) string

	// BoundProgram returns the program bound by the last UseProgram.
	//
	// Returns:
	//   - uint32: the program name
	BoundProgram() uint32

	// BoundFramebuffer returns the framebuffer bound by the last BindFramebuffer.
	//
	// Returns:
	//   - uint32: the framebuffer name, 0 for the back buffer
	BoundFramebuffer() uint32

	// Snapshot returns the tracked global render state.
	//
	// Returns:
	//   - StateSnapshot: the render state
	Snapshot() StateSnapshot
}

var _ Headless = &headless{}

// NewHeadless creates a Headless backend. Depth testing starts enabled, as after Init on a
// real context.
//
// Returns:
//   - Headless: the backend
func NewHeadless() Headless {
	return &headless{
		mu:           &sync.Mutex{},
		state:        StateSnapshot{Depth: true},
		meshes:       make(map[uint32]struct{}),
		buffers:      make(map[uint32]int),
		textures:     make(map[uint32]headlessTexture),
		framebuffers: make(map[uint32]FramebufferHandle),
		programs:     make(map[uint32]string),
		locations:    make(map[uniformSlot]int32),
		slots:        make(map[int32]uniformSlot),
		values:       make(map[uniformSlot]any),
	}
}

func (h *headless) record(c Command) {
	h.commands = append(h.commands, c)
}

func (h *headless) handle() uint32 {
	h.next++
	return h.next
}

func (h *headless) Init(ctx Context) error {
	if ctx != nil {
		ctx.MakeContextCurrent()
	}
	return nil
}

func (h *headless) Info() Info {
	return Info{Renderer: "headless", Vendor: "oxy-gl", Version: "4.1 headless", GLSL: "4.10"}
}

func (h *headless) LastError() uint32 {
	return 0
}

func (h *headless) Viewport(width, height int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record(Command{Op: OpViewport, Args: []int{width, height}})
}

func (h *headless) ClearColor(color mgl32.Vec4) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record(Command{Op: OpClearColor, Value: color})
}

func (h *headless) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record(Command{Op: OpClear, Handle: h.boundFramebuffer})
}

func (h *headless) State(state RenderState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch state {
	case StateEnableDepth:
		h.state.Depth = true
	case StateDisableDepth:
		h.state.Depth = false
	case StateEnableBlend:
		h.state.Blend = true
	case StateDisableBlend:
		h.state.Blend = false
	case StateEnableCulling:
		h.state.Culling = true
	case StateDisableCulling:
		h.state.Culling = false
	case StateCullFront:
		h.state.CullFront = true
	case StateCullBack:
		h.state.CullFront = false
	case StateBlendAdd:
		h.state.BlendWeighted = false
	case StateBlendWeighted:
		h.state.BlendWeighted = true
	}
	h.record(Command{Op: OpState, Value: state})
}

func (h *headless) BlendWeights(source, destination float32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state.SourceWeight, h.state.DestWeight = source, destination
	h.record(Command{Op: OpBlendWeights, Value: [2]float32{source, destination}})
}

func (h *headless) CreateMesh(vertices []float32, indices []uint32, layout common.Layout, dynamic bool) (MeshHandle, error) {
	if err := validateLayout(layout); err != nil {
		return MeshHandle{}, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	m := MeshHandle{VAO: h.handle(), VBO: h.handle(), EBO: h.handle(), IndexCount: len(indices)}
	h.meshes[m.VAO] = struct{}{}
	h.record(Command{Op: OpCreateMesh, Handle: m.VAO, Args: []int{len(vertices), len(indices)}})
	return m, nil
}

func (h *headless) DeleteMesh(m MeshHandle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.meshes, m.VAO)
	h.record(Command{Op: OpDeleteMesh, Handle: m.VAO})
}

func (h *headless) CreateInstanceBuffer(mesh MeshHandle, meshLayout, instanceLayout common.Layout, data []float32, capacity int, dynamic bool) (InstanceHandle, error) {
	if err := validateLayout(meshLayout); err != nil {
		return InstanceHandle{}, err
	}
	if err := validateLayout(instanceLayout); err != nil {
		return InstanceHandle{}, err
	}
	if capacity < len(data) {
		capacity = len(data)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	ih := InstanceHandle{VAO: h.handle(), InstanceVBO: h.handle(), IndexCount: mesh.IndexCount, Capacity: capacity}
	h.meshes[ih.VAO] = struct{}{}
	h.buffers[ih.InstanceVBO] = capacity
	h.record(Command{Op: OpCreateInstanceBuffer, Handle: ih.VAO, Args: []int{len(data), capacity, int(meshLayout.Size())}})
	return ih, nil
}

func (h *headless) UpdateInstanceBuffer(ih *InstanceHandle, data []float32, capacity int, dynamic bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	realloc := 0
	if capacity > ih.Capacity {
		ih.Capacity = capacity
		h.buffers[ih.InstanceVBO] = capacity
		realloc = 1
	}
	h.record(Command{Op: OpUpdateInstanceBuffer, Handle: ih.VAO, Args: []int{len(data), ih.Capacity, realloc}})
}

func (h *headless) DeleteInstanceBuffer(ih InstanceHandle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.meshes, ih.VAO)
	delete(h.buffers, ih.InstanceVBO)
	h.record(Command{Op: OpDeleteInstanceBuffer, Handle: ih.VAO})
}

func (h *headless) BindVertexArray(vao uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record(Command{Op: OpBindVertexArray, Handle: vao})
}

func (h *headless) CreateTexture(t texture.Texture) (uint32, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.createTexture(t)
}

func (h *headless) createTexture(t texture.Texture) (uint32, error) {
	if t.Width() <= 0 || t.Height() <= 0 {
		return 0, fmt.Errorf("texture %d has no size (%dx%d)", t.ID(), t.Width(), t.Height())
	}
	id := h.handle()
	h.textures[id] = headlessTexture{width: t.Width(), height: t.Height()}
	h.record(Command{Op: OpCreateTexture, Handle: id, Args: []int{t.Width(), t.Height()}})
	return id, nil
}

func (h *headless) DeleteTexture(id uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deleteTexture(id)
}

func (h *headless) deleteTexture(id uint32) {
	delete(h.textures, id)
	h.record(Command{Op: OpDeleteTexture, Handle: id})
}

func (h *headless) BindTexture(id uint32, unit texture.Unit) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record(Command{Op: OpBindTexture, Handle: id, Args: []int{int(unit)}})
}

func (h *headless) CreateFramebuffer(width, height int, attachments []texture.Texture) (FramebufferHandle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sorted := SortAttachments(attachments)
	fb := FramebufferHandle{FBO: h.handle()}
	release := func() {
		for _, id := range fb.Textures {
			h.deleteTexture(id)
		}
	}

	hasDepth := false
	for _, t := range sorted {
		id, err := h.createTexture(t)
		if err != nil {
			release()
			return FramebufferHandle{}, fmt.Errorf("%w: %v", common.ErrFramebufferIncomplete, err)
		}
		fb.Textures = append(fb.Textures, id)
		if t.Attachment() == texture.AttachmentDepth {
			hasDepth = true
		} else if t.Attachment().IsColor() {
			fb.DrawBuffers = append(fb.DrawBuffers, t.Attachment())
		}
	}
	if !hasDepth {
		fb.Renderbuffer = h.handle()
	}

	if h.failFramebuffer {
		release()
		return FramebufferHandle{}, fmt.Errorf("%w: status 0x8cd6", common.ErrFramebufferIncomplete)
	}

	h.framebuffers[fb.FBO] = fb
	h.record(Command{Op: OpCreateFramebuffer, Handle: fb.FBO, Args: []int{width, height, len(sorted)}})
	return fb, nil
}

func (h *headless) DeleteFramebuffer(fb FramebufferHandle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.framebuffers, fb.FBO)
	h.record(Command{Op: OpDeleteFramebuffer, Handle: fb.FBO})
}

func (h *headless) BindFramebuffer(fbo uint32, width, height int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.boundFramebuffer = fbo
	h.record(Command{Op: OpBindFramebuffer, Handle: fbo, Args: []int{width, height}})
}

func (h *headless) CompileProgram(src ProgramSource) (uint32, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failCompile != "" && strings.Contains(src.Name, h.failCompile) {
		return 0, &common.BuildError{Stage: "fragment", Path: src.Name, Log: "0:1(1): error: forced failure"}
	}
	if src.Vertex == "" || src.Fragment == "" {
		return 0, &common.BuildError{Stage: "link", Path: src.Name, Log: "missing vertex or fragment stage"}
	}
	id := h.handle()
	h.programs[id] = src.Name
	h.record(Command{Op: OpCompileProgram, Handle: id, Name: src.Name})
	return id, nil
}

func (h *headless) DeleteProgram(program uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.programs, program)
	h.record(Command{Op: OpDeleteProgram, Handle: program})
}

func (h *headless) UseProgram(program uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.boundProgram = program
	h.record(Command{Op: OpUseProgram, Handle: program})
}

func (h *headless) UniformLocation(program uint32, name string) int32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	slot := uniformSlot{program: program, name: name}
	if loc, ok := h.locations[slot]; ok {
		return loc
	}
	loc := int32(len(h.locations))
	h.locations[slot] = loc
	h.slots[loc] = slot
	return loc
}

func (h *headless) Uniform(location int32, value any) error {
	if err := checkUniform(value); err != nil {
		return err
	}
	if location < 0 {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	slot, ok := h.slots[location]
	if !ok {
		return nil
	}
	h.values[slot] = value
	h.record(Command{Op: OpUniform, Handle: slot.program, Name: slot.name, Value: value})
	return nil
}

func (h *headless) DrawIndexed(mode DrawMode, count int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record(Command{Op: OpDrawIndexed, Handle: h.boundProgram, Value: mode, Args: []int{count}})
}

func (h *headless) DrawIndexedInstanced(mode DrawMode, count, instances int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record(Command{Op: OpDrawIndexedInstanced, Handle: h.boundProgram, Value: mode, Args: []int{count, instances}})
}

func (h *headless) Commands() []Command {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Command, len(h.commands))
	copy(out, h.commands)
	return out
}

func (h *headless) Count(op Op) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, c := range h.commands {
		if c.Op == op {
			n++
		}
	}
	return n
}

func (h *headless) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.commands = nil
}

func (h *headless) SetCompileFailure(match string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failCompile = match
}

func (h *headless) SetFramebufferFailure(fail bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failFramebuffer = fail
}

func (h *headless) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.meshes) + len(h.textures) + len(h.framebuffers) + len(h.programs)
}

func (h *headless) TextureSize(id uint32) (int, int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	t, ok := h.textures[id]
	return t.width, t.height, ok
}

func (h *headless) BufferCapacity(vbo uint32) (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.buffers[vbo]
	return c, ok
}

func (h *headless) UniformValue(program uint32, name string) (any, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	v, ok := h.values[uniformSlot{program: program, name: name}]
	return v, ok
}

func (h *headless) ProgramName(program uint32) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.programs[program]
}

func (h *headless) BoundProgram() uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.boundProgram
}

func (h *headless) BoundFramebuffer() uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.boundFramebuffer
}

func (h *headless) Snapshot() StateSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}
