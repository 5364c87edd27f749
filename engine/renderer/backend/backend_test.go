package backend

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
	"github.com/go-gl/mathgl/mgl32"
)

func TestNewBackend(t *testing.T) {
	b, err := NewBackend(BackendTypeHeadless)
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	if _, ok := b.(Headless); !ok {
		t.Fatalf("headless backend has type %T", b)
	}
	if _, err := NewBackend(BackendType(42)); err == nil {
		t.Fatal("expected error for unknown backend type")
	}
}

func TestSortAttachments(t *testing.T) {
	in := []texture.Texture{
		texture.NewAttachment(texture.AttachmentDepth, texture.ColorFormatDepth32F),
		texture.NewAttachment(texture.AttachmentColor2, texture.ColorFormatRGBA8),
		texture.NewAttachment(texture.AttachmentColor0, texture.ColorFormatRGB16F),
		texture.NewAttachment(texture.AttachmentColor1, texture.ColorFormatRGB16F),
	}
	out := SortAttachments(in)
	want := []texture.AttachmentType{texture.AttachmentColor0, texture.AttachmentColor1, texture.AttachmentColor2, texture.AttachmentDepth}
	for i, a := range want {
		if out[i].Attachment() != a {
			t.Errorf("index %d: got 0x%x, want 0x%x", i, out[i].Attachment(), a)
		}
	}
	if in[0].Attachment() != texture.AttachmentDepth {
		t.Error("input slice was reordered")
	}
}

func sized(a texture.AttachmentType, f texture.ColorFormat, w, h int) texture.Texture {
	t := texture.NewAttachment(a, f)
	t.SetSize(w, h)
	return t
}

func TestHeadlessFramebuffer(t *testing.T) {
	h := NewHeadless()
	fb, err := h.CreateFramebuffer(64, 32, []texture.Texture{
		sized(texture.AttachmentColor1, texture.ColorFormatRGB16F, 64, 32),
		sized(texture.AttachmentColor0, texture.ColorFormatRGB16F, 64, 32),
	})
	if err != nil {
		t.Fatalf("CreateFramebuffer: %v", err)
	}
	if fb.Renderbuffer == 0 {
		t.Error("expected depth renderbuffer fallback")
	}
	if len(fb.DrawBuffers) != 2 || fb.DrawBuffers[0] != texture.AttachmentColor0 {
		t.Errorf("DrawBuffers = %v", fb.DrawBuffers)
	}
	for _, id := range fb.Textures {
		if w, ht, ok := h.TextureSize(id); !ok || w != 64 || ht != 32 {
			t.Errorf("texture %d size %dx%d live=%v", id, w, ht, ok)
		}
	}

	withDepth, err := h.CreateFramebuffer(16, 16, []texture.Texture{
		sized(texture.AttachmentDepth, texture.ColorFormatDepth32F, 16, 16),
	})
	if err != nil {
		t.Fatalf("CreateFramebuffer depth: %v", err)
	}
	if withDepth.Renderbuffer != 0 || len(withDepth.DrawBuffers) != 0 {
		t.Errorf("depth-only framebuffer = %+v", withDepth)
	}
}

func TestHeadlessFramebufferFailureReleasesTextures(t *testing.T) {
	h := NewHeadless()
	before := h.Live()

	h.SetFramebufferFailure(true)
	_, err := h.CreateFramebuffer(8, 8, []texture.Texture{
		sized(texture.AttachmentColor0, texture.ColorFormatRGBA8, 8, 8),
		sized(texture.AttachmentDepth, texture.ColorFormatDepth32F, 8, 8),
	})
	if !errors.Is(err, common.ErrFramebufferIncomplete) || !errors.Is(err, common.ErrBuild) {
		t.Fatalf("expected incomplete framebuffer build error, got %v", err)
	}
	if h.Live() != before {
		t.Errorf("live objects = %d, want %d", h.Live(), before)
	}

	h.SetFramebufferFailure(false)
	_, err = h.CreateFramebuffer(8, 8, []texture.Texture{
		sized(texture.AttachmentColor0, texture.ColorFormatRGBA8, 8, 8),
		texture.NewAttachment(texture.AttachmentColor1, texture.ColorFormatRGBA8),
	})
	if !errors.Is(err, common.ErrFramebufferIncomplete) {
		t.Fatalf("expected error for unsized attachment, got %v", err)
	}
	if h.Live() != before {
		t.Errorf("partial textures leaked: live = %d", h.Live())
	}
}

func TestHeadlessCompileFailure(t *testing.T) {
	h := NewHeadless()
	src := ProgramSource{Name: "skybox.vert+skybox.frag", Vertex: "v", Fragment: "f"}
	if _, err := h.CompileProgram(src); err != nil {
		t.Fatalf("CompileProgram: %v", err)
	}
	h.SetCompileFailure("skybox")
	_, err := h.CompileProgram(src)
	var be *common.BuildError
	if !errors.As(err, &be) || be.Log == "" {
		t.Fatalf("expected BuildError with log, got %v", err)
	}
}

func TestUniformDomain(t *testing.T) {
	h := NewHeadless()
	prog, _ := h.CompileProgram(ProgramSource{Name: "p", Vertex: "v", Fragment: "f"})
	loc := h.UniformLocation(prog, "uValue")
	if again := h.UniformLocation(prog, "uValue"); again != loc {
		t.Errorf("location changed: %d != %d", again, loc)
	}

	valid := []any{true, 1, int32(2), uint32(3), uint64(4), float32(1), 2.0, mgl32.Vec2{}, mgl32.Vec3{}, mgl32.Vec4{},
		mgl32.QuatIdent(), mgl32.Ident3(), mgl32.Ident4(), texture.Unit3}
	for _, v := range valid {
		if err := h.Uniform(loc, v); err != nil {
			t.Errorf("Uniform(%T): %v", v, err)
		}
	}
	if got, _ := h.UniformValue(prog, "uValue"); got != texture.Unit3 {
		t.Errorf("last value = %v", got)
	}
	for _, v := range []any{"string", []float32{1}, struct{}{}} {
		if err := h.Uniform(loc, v); !errors.Is(err, common.ErrUnknownUniformType) {
			t.Errorf("Uniform(%T) = %v, want ErrUnknownUniformType", v, err)
		}
	}
}

func TestHeadlessInstanceBuffer(t *testing.T) {
	h := NewHeadless()
	mesh, err := h.CreateMesh(make([]float32, 8*3), []uint32{0, 1, 2}, common.Layout{3, 3, 2}, false)
	if err != nil {
		t.Fatalf("CreateMesh: %v", err)
	}
	ih, err := h.CreateInstanceBuffer(mesh, common.Layout{3, 3, 2}, common.Layout{3, 3, 4}, make([]float32, 20), 10, true)
	if err != nil {
		t.Fatalf("CreateInstanceBuffer: %v", err)
	}
	if ih.Capacity != 20 {
		t.Errorf("capacity = %d, want 20 (clamped to data)", ih.Capacity)
	}
	h.UpdateInstanceBuffer(&ih, make([]float32, 10), ih.Capacity, true)
	if ih.Capacity != 20 {
		t.Errorf("sub-range update changed capacity to %d", ih.Capacity)
	}
	h.UpdateInstanceBuffer(&ih, make([]float32, 30), 60, true)
	if c, _ := h.BufferCapacity(ih.InstanceVBO); c != 60 || ih.Capacity != 60 {
		t.Errorf("capacity after growth = %d/%d, want 60", c, ih.Capacity)
	}

	if _, err := h.CreateMesh(nil, nil, common.Layout{5}, false); !errors.Is(err, common.ErrInvalidMesh) {
		t.Errorf("expected ErrInvalidMesh for width 5, got %v", err)
	}
}

func TestHeadlessStateTracking(t *testing.T) {
	h := NewHeadless()
	h.State(StateDisableDepth)
	h.State(StateEnableBlend)
	h.State(StateCullFront)
	h.BlendWeights(0.3, 0.7)
	h.State(StateBlendWeighted)
	s := h.Snapshot()
	if s.Depth || !s.Blend || !s.CullFront || !s.BlendWeighted || s.SourceWeight != 0.3 || s.DestWeight != 0.7 {
		t.Errorf("snapshot = %+v", s)
	}
	if n := h.Count(OpState); n != 4 {
		t.Errorf("state commands = %d, want 4", n)
	}
	h.Reset()
	if len(h.Commands()) != 0 {
		t.Error("Reset kept commands")
	}
}
