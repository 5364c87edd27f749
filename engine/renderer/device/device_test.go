package device

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/component"
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/framebuffer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/texture"
	"github.com/go-gl/mathgl/mgl32"
)

const testSource = "#version 410 core\nvoid main() {}\n"

func newTestDevice(t *testing.T) (Device, backend.Headless) {
	t.Helper()
	h := backend.NewHeadless()
	if err := h.Init(nil); err != nil {
		t.Fatalf("init headless: %v", err)
	}
	return NewDevice(h), h
}

func newGBuffer() framebuffer.Framebuffer {
	fb := framebuffer.NewFramebuffer(800, 600)
	_ = fb.AddTexture("depth", texture.NewAttachment(texture.AttachmentDepth, texture.ColorFormatDepth32F))
	_ = fb.AddTexture("material", texture.NewAttachment(texture.AttachmentColor2, texture.ColorFormatRGBA8))
	_ = fb.AddTexture("normal", texture.NewAttachment(texture.AttachmentColor0, texture.ColorFormatRGB16F))
	_ = fb.AddTexture("albedo", texture.NewAttachment(texture.AttachmentColor1, texture.ColorFormatRGBA8))
	return fb
}

func compileTestShader(t *testing.T, d Device, uniforms ...string) shader.Shader {
	t.Helper()
	s := shader.NewShader("test.vert", "test.frag", shader.WithDefaultMaterial(true), shader.WithUniforms(uniforms...))
	if err := d.CompileShader(s, shader.Sources{Vertex: testSource, Fragment: testSource}); err != nil {
		t.Fatalf("compile: %v", err)
	}
	return s
}

func TestNewDeviceGrowthFactor(t *testing.T) {
	tests := []struct {
		name   string
		opts   []DeviceBuilderOption
		expect float32
	}{
		{"default", nil, DefaultGrowthFactor},
		{"custom", []DeviceBuilderOption{WithGrowthFactor(1.5)}, 1.5},
		{"clamped", []DeviceBuilderOption{WithGrowthFactor(0.5)}, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDevice(backend.NewHeadless(), tc.opts...)
			if d.GrowthFactor() != tc.expect {
				t.Errorf("expected growth %v, got %v", tc.expect, d.GrowthFactor())
			}
		})
	}
}

func TestBindUnresident(t *testing.T) {
	d, _ := newTestDevice(t)
	id := common.NewAssetID()

	tests := []struct {
		name string
		bind func() error
	}{
		{"mesh", func() error { return d.BindMesh(id) }},
		{"instance group", func() error { return d.BindInstanceGroup(id) }},
		{"texture", func() error { return d.BindTexture(id, texture.Unit0) }},
		{"framebuffer", func() error { return d.BindFramebuffer(id) }},
		{"shader", func() error { return d.BindShader(id) }},
		{"uniform", func() error { return d.Uniform(id, "uView", mgl32.Ident4()) }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.bind(); !errors.Is(err, common.ErrLookup) {
				t.Errorf("expected ErrLookup, got %v", err)
			}
		})
	}
}

func TestMeshReleaseAndReload(t *testing.T) {
	d, h := newTestDevice(t)
	m := model.Cube()

	if err := d.LoadMesh(m); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !d.MeshLoaded(m.ID()) {
		t.Fatalf("expected mesh to be resident")
	}
	d.ReleaseMesh(m.ID())
	if d.MeshLoaded(m.ID()) {
		t.Fatalf("expected mesh to be released")
	}
	if err := d.BindMesh(m.ID()); !errors.Is(err, common.ErrLookup) {
		t.Fatalf("expected ErrLookup after release, got %v", err)
	}
	if err := d.LoadMesh(m); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if err := d.BindMesh(m.ID()); err != nil {
		t.Fatalf("bind after reload: %v", err)
	}
	if h.Count(backend.OpCreateMesh) != 2 || h.Count(backend.OpDeleteMesh) != 1 {
		t.Errorf("expected 2 creates and 1 delete, got %d and %d",
			h.Count(backend.OpCreateMesh), h.Count(backend.OpDeleteMesh))
	}
}

func TestInstanceGroupLoadAndGrow(t *testing.T) {
	d, h := newTestDevice(t)
	m := model.Cube()
	g := model.NewInstanceGroup(m.ID(), common.NewAssetID())

	for i := 0; i < 10; i++ {
		if err := g.SubmitTransform(uint64(i), component.NewTransformAt(mgl32.Vec3{float32(i), 0, 0})); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	if err := d.LoadInstanceGroup(g, m); err != nil {
		t.Fatalf("load group: %v", err)
	}
	if !d.MeshLoaded(m.ID()) {
		t.Errorf("expected the group mesh to be loaded with the group")
	}
	if g.Changed() {
		t.Errorf("expected group to be synced after load")
	}
	if c, _ := d.InstanceCapacity(g.ID()); c != 10 {
		t.Errorf("expected capacity 10, got %d", c)
	}

	for i := 10; i < 1000; i++ {
		if err := g.SubmitTransform(uint64(i), component.NewTransform()); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	if err := d.UpdateInstanceGroup(g); err != nil {
		t.Fatalf("update: %v", err)
	}
	c, err := d.InstanceCapacity(g.ID())
	if err != nil {
		t.Fatalf("capacity: %v", err)
	}
	if c < 1000 {
		t.Errorf("expected capacity >= 1000, got %d", c)
	}
	if g.Changed() {
		t.Errorf("expected group to be synced after update")
	}

	// shrinking reuses the buffer
	g.Remove(0)
	h.Reset()
	if err := d.UpdateInstanceGroup(g); err != nil {
		t.Fatalf("update: %v", err)
	}
	for _, cmd := range h.Commands() {
		if cmd.Op == backend.OpUpdateInstanceBuffer && cmd.Args[2] != 0 {
			t.Errorf("expected a sub-upload, got a reallocation")
		}
	}

	d.ReleaseInstanceGroup(g.ID())
	if d.InstanceGroupLoaded(g.ID()) {
		t.Errorf("expected group to be released")
	}
	if !d.MeshLoaded(m.ID()) {
		t.Errorf("expected mesh to stay resident after group release")
	}
}

func TestUpdateUnresidentGroup(t *testing.T) {
	d, _ := newTestDevice(t)
	g := model.NewInstanceGroup(common.NewAssetID(), common.NewAssetID())
	if err := d.UpdateInstanceGroup(g); !errors.Is(err, common.ErrLookup) {
		t.Errorf("expected ErrLookup, got %v", err)
	}
}

func TestLoadFramebufferAttachments(t *testing.T) {
	d, h := newTestDevice(t)
	fb := newGBuffer()

	if err := d.LoadFramebuffer(fb); err != nil {
		t.Fatalf("load: %v", err)
	}
	expect := []texture.AttachmentType{
		texture.AttachmentColor0, texture.AttachmentColor1, texture.AttachmentColor2,
	}
	got := fb.Attachments()
	if len(got) != len(expect) {
		t.Fatalf("expected %d attachments, got %d", len(expect), len(got))
	}
	for i := range expect {
		if got[i] != expect[i] {
			t.Errorf("attachment %d: expected %#x, got %#x", i, expect[i], got[i])
		}
		if !got[i].IsColor() {
			t.Errorf("attachment %d: expected a color slot, got %#x", i, got[i])
		}
	}
	if len(fb.Textures()) != 4 {
		t.Errorf("expected the depth texture kept alongside the color slots, got %d textures", len(fb.Textures()))
	}
	for _, tex := range fb.Textures() {
		name, err := d.TextureName(tex.ID())
		if err != nil {
			t.Fatalf("texture %d not registered: %v", tex.ID(), err)
		}
		w, hh, ok := h.TextureSize(name)
		if !ok || w != 800 || hh != 600 {
			t.Errorf("expected 800x600 texture, got %dx%d (live %v)", w, hh, ok)
		}
	}
}

func TestLoadFramebufferFailure(t *testing.T) {
	d, h := newTestDevice(t)
	h.SetFramebufferFailure(true)
	live := h.Live()

	fb := newGBuffer()
	if err := d.LoadFramebuffer(fb); !errors.Is(err, common.ErrFramebufferIncomplete) {
		t.Fatalf("expected ErrFramebufferIncomplete, got %v", err)
	}
	if d.FramebufferLoaded(fb.ID()) {
		t.Errorf("expected framebuffer not resident")
	}
	if r := d.Resident(); r.Textures != 0 {
		t.Errorf("expected no resident textures, got %d", r.Textures)
	}
	if h.Live() != live {
		t.Errorf("expected live objects %d, got %d", live, h.Live())
	}
}

func TestResizeFramebuffer(t *testing.T) {
	tests := []struct {
		name          string
		factor        float32
		width, height int
		expectW       int
		expectH       int
	}{
		{"full", 1, 1024, 768, 1024, 768},
		{"half", 0.5, 1024, 768, 512, 384},
		{"odd", 0.5, 801, 601, 400, 300},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, h := newTestDevice(t)
			fb := newGBuffer()
			fb.SetResizeFactor(tc.factor)
			if err := d.LoadFramebuffer(fb); err != nil {
				t.Fatalf("load: %v", err)
			}
			live := h.Live()

			if err := d.ResizeFramebuffer(fb, tc.width, tc.height); err != nil {
				t.Fatalf("resize: %v", err)
			}
			if fb.Width() != tc.expectW || fb.Height() != tc.expectH {
				t.Errorf("expected %dx%d, got %dx%d", tc.expectW, tc.expectH, fb.Width(), fb.Height())
			}
			for _, tex := range fb.Textures() {
				name, _ := d.TextureName(tex.ID())
				w, hh, _ := h.TextureSize(name)
				if w != tc.expectW || hh != tc.expectH {
					t.Errorf("texture %d: expected %dx%d, got %dx%d", tex.ID(), tc.expectW, tc.expectH, w, hh)
				}
			}
			if h.Live() != live {
				t.Errorf("expected old objects released, live %d before and %d after", live, h.Live())
			}
		})
	}
}

func TestResizeFramebufferFailureKeepsOld(t *testing.T) {
	d, h := newTestDevice(t)
	fb := newGBuffer()
	if err := d.LoadFramebuffer(fb); err != nil {
		t.Fatalf("load: %v", err)
	}
	oldFBO, _ := d.FramebufferName(fb.ID())

	h.SetFramebufferFailure(true)
	if err := d.ResizeFramebuffer(fb, 1920, 1080); err == nil {
		t.Fatalf("expected resize to fail")
	}
	if fb.Width() != 800 || fb.Height() != 600 {
		t.Errorf("expected size restored to 800x600, got %dx%d", fb.Width(), fb.Height())
	}
	if len(fb.Attachments()) != 3 {
		t.Errorf("expected attachments restored, got %v", fb.Attachments())
	}
	if fbo, _ := d.FramebufferName(fb.ID()); fbo != oldFBO {
		t.Errorf("expected old framebuffer %d to stay bound to the asset, got %d", oldFBO, fbo)
	}
	if err := d.BindFramebuffer(fb.ID()); err != nil {
		t.Errorf("bind after failed resize: %v", err)
	}
}

func TestReleaseFramebufferReleasesTextures(t *testing.T) {
	d, _ := newTestDevice(t)
	fb := newGBuffer()
	if err := d.LoadFramebuffer(fb); err != nil {
		t.Fatalf("load: %v", err)
	}
	d.ReleaseFramebuffer(fb.ID())
	r := d.Resident()
	if r.Framebuffers != 0 || r.Textures != 0 {
		t.Errorf("expected nothing resident, got %+v", r)
	}
}

func TestCompileShaderFailure(t *testing.T) {
	d, h := newTestDevice(t)
	h.SetCompileFailure("broken")
	s := shader.NewShader("broken.vert", "broken.frag")

	err := d.CompileShader(s, shader.Sources{Vertex: testSource, Fragment: testSource})
	var be *common.BuildError
	if !errors.As(err, &be) {
		t.Fatalf("expected BuildError, got %v", err)
	}
	if d.ShaderLoaded(s.ID()) {
		t.Errorf("expected shader not resident")
	}
}

func TestUniformLocationMemoized(t *testing.T) {
	d, h := newTestDevice(t)
	s := compileTestShader(t, d)
	program, _ := d.ShaderProgram(s.ID())

	for i := 0; i < 3; i++ {
		if err := d.Uniform(s.ID(), "uView", mgl32.Ident4()); err != nil {
			t.Fatalf("uniform: %v", err)
		}
	}
	if h.Count(backend.OpUseProgram) != 1 {
		t.Errorf("expected the program bound once, got %d", h.Count(backend.OpUseProgram))
	}
	if v, ok := h.UniformValue(program, "uView"); !ok || v.(mgl32.Mat4) != mgl32.Ident4() {
		t.Errorf("expected uView uploaded, got %v", v)
	}
	if err := d.Uniform(s.ID(), "uView", "nope"); !errors.Is(err, common.ErrUnknownUniformType) {
		t.Errorf("expected ErrUnknownUniformType, got %v", err)
	}
}

func TestApplyMaterialMode(t *testing.T) {
	d, h := newTestDevice(t)
	albedo := texture.NewTexture(texture.WithSize(4, 4))
	mat := texture.NewTexture(texture.WithSize(4, 4))
	if err := d.LoadTexture(albedo); err != nil {
		t.Fatalf("load texture: %v", err)
	}
	if err := d.LoadTexture(mat); err != nil {
		t.Fatalf("load texture: %v", err)
	}

	tests := []struct {
		name   string
		opts   []material.MaterialBuilderOption
		expect int32
	}{
		{"constants", nil, 0},
		{"albedo", []material.MaterialBuilderOption{material.WithAlbedoTexture(albedo.ID())}, ModeAlbedoTexture},
		{"material", []material.MaterialBuilderOption{material.WithMaterialTexture(mat.ID())}, ModeMaterialTexture},
		{"both", []material.MaterialBuilderOption{
			material.WithAlbedoTexture(albedo.ID()), material.WithMaterialTexture(mat.ID()),
		}, ModeAlbedoTexture | ModeMaterialTexture},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := compileTestShader(t, d, "uTint")
			program, _ := d.ShaderProgram(s.ID())
			m := material.NewMaterial(append(tc.opts,
				material.WithParameter("uTint", mgl32.Vec3{1, 0, 0}),
				material.WithParameter("uUnused", float32(2)))...)

			if err := d.ApplyMaterial(s, m); err != nil {
				t.Fatalf("apply: %v", err)
			}
			v, ok := h.UniformValue(program, "uMaterialMode")
			if !ok || v.(int32) != tc.expect {
				t.Errorf("expected mode %d, got %v", tc.expect, v)
			}
			if _, ok := h.UniformValue(program, "uTint"); !ok {
				t.Errorf("expected declared parameter uTint uploaded")
			}
			if _, ok := h.UniformValue(program, "uUnused"); ok {
				t.Errorf("expected undeclared parameter uUnused skipped")
			}
			_, hasRoughness := h.UniformValue(program, "uRoughness")
			if hasRoughness == (tc.expect&ModeMaterialTexture != 0) {
				t.Errorf("uRoughness uploaded %v with mode %d", hasRoughness, tc.expect)
			}
		})
	}
}

func TestApplyMaterialUnresidentTexture(t *testing.T) {
	d, _ := newTestDevice(t)
	s := compileTestShader(t, d)
	m := material.NewMaterial(material.WithAlbedoTexture(common.NewAssetID()))
	if err := d.ApplyMaterial(s, m); !errors.Is(err, common.ErrLookup) {
		t.Errorf("expected ErrLookup, got %v", err)
	}
}

func TestApplyTransform(t *testing.T) {
	d, h := newTestDevice(t)
	s := compileTestShader(t, d)
	program, _ := d.ShaderProgram(s.ID())

	tr := component.NewTransformAt(mgl32.Vec3{1, 2, 3})
	if err := d.ApplyTransform(s.ID(), tr); err != nil {
		t.Fatalf("apply transform: %v", err)
	}
	if v, _ := h.UniformValue(program, "uPosition"); v.(mgl32.Vec3) != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("expected uPosition {1 2 3}, got %v", v)
	}
	if _, ok := h.UniformValue(program, "uRotation"); !ok {
		t.Errorf("expected uRotation uploaded")
	}
}

func TestReleaseAll(t *testing.T) {
	d, h := newTestDevice(t)
	m := model.Cube()
	g := model.NewInstanceGroup(m.ID(), common.NewAssetID())
	_ = g.SubmitTransform(1, component.NewTransform())
	if err := d.LoadInstanceGroup(g, m); err != nil {
		t.Fatalf("load group: %v", err)
	}
	if err := d.LoadFramebuffer(newGBuffer()); err != nil {
		t.Fatalf("load framebuffer: %v", err)
	}
	compileTestShader(t, d)

	d.ReleaseAll()
	if r := d.Resident(); r != (Resident{}) {
		t.Errorf("expected nothing resident, got %+v", r)
	}
	if h.Live() != 0 {
		t.Errorf("expected no live backend objects, got %d", h.Live())
	}
}

func TestApplyMaterialWithoutDefault(t *testing.T) {
	d, h := newTestDevice(t)
	s := shader.NewShader("sky.vert", "sky.frag", shader.WithUniforms("uScatter"))
	if err := d.CompileShader(s, shader.Sources{Vertex: testSource, Fragment: testSource}); err != nil {
		t.Fatalf("compile: %v", err)
	}
	program, _ := d.ShaderProgram(s.ID())
	m := material.NewMaterial(material.WithParameter("uScatter", mgl32.Vec3{0.1, 0.2, 0.9}))

	if err := d.ApplyMaterial(s, m); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, ok := h.UniformValue(program, "uMaterialMode"); ok {
		t.Errorf("expected no default material uniforms")
	}
	if v, ok := h.UniformValue(program, "uScatter"); !ok || v.(mgl32.Vec3) != (mgl32.Vec3{0.1, 0.2, 0.9}) {
		t.Errorf("expected uScatter uploaded, got %v", v)
	}
}
