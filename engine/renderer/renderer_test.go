package renderer

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/component"
	"github.com/Carmen-Shannon/oxy-gl/engine/ecs"
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/framebuffer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/pass"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

const shaderDir = "../../assets/shaders"

type fakeSurface struct {
	width, height int
	swaps         int
	current       int
	interval      int
}

func (s *fakeSurface) MakeContextCurrent() { s.current++ }
func (s *fakeSurface) Width() int { return s.width }
func (s *fakeSurface) Height() int { return s.height }
func (s *fakeSurface) SwapBuffers() { s.swaps++ }
func (s *fakeSurface) SetSwapInterval(i int) { s.interval = i }

type fixture struct {
	backend  backend.Headless
	renderer Renderer
	scene    scene.Scene
	surface  *fakeSurface
}

// newFixture builds a headless renderer over a fresh scene with a skybox material.
func newFixture(t *testing.T, passes []pass.Pass, opts ...RendererBuilderOption) *fixture {
	t.Helper()
	s := scene.NewScene()
	sky := material.NewMaterial(material.WithParameter("uScatter", mgl32.Vec3{0.1, 0.2, 0.9}))
	s.Repository().AddMaterial(sky)
	camTransform, err := ecs.Get[component.Transform](s.World(), s.MainCamera())
	if err != nil {
		t.Fatalf("camera transform: %v", err)
	}
	camTransform.SetPosition(mgl32.Vec3{0, 0, 3})

	h := backend.NewHeadless()
	opts = append([]RendererBuilderOption{
		WithBackend(h),
		WithPasses(passes...),
		WithParameter(pass.KeyShaderPath, shaderDir),
		WithParameter(pass.KeySkyboxMaterial, sky.ID()),
		WithParameter(pass.KeyPointLightGroup, s.PointLightGroup()),
	}, opts...)
	r, err := NewRenderer(backend.BackendTypeHeadless, opts...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return &fixture{backend: h, renderer: r, scene: s, surface: &fakeSurface{width: 1280, height: 720}}
}

func (f *fixture) frame(t *testing.T) {
	t.Helper()
	if err := f.scene.Update(0.016); err != nil {
		t.Fatalf("scene update: %v", err)
	}
	if err := f.renderer.Render(f.scene.RenderContext()); err != nil {
		t.Fatalf("render: %v", err)
	}
	if err := f.renderer.Update(f.surface); err != nil {
		t.Fatalf("update: %v", err)
	}
}

func TestEmptyScene(t *testing.T) {
	f := newFixture(t, []pass.Pass{
		pass.NewSkyboxPass(), pass.NewGeometryPass(), pass.NewLightingPass(), pass.NewDrawPass(),
	})
	if err := f.renderer.Initialize(f.surface); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	f.frame(t)

	if f.surface.swaps != 1 {
		t.Errorf("expected 1 present, got %d", f.surface.swaps)
	}
	if f.backend.BoundFramebuffer() != 0 {
		t.Errorf("expected the frame to end on the back buffer")
	}
	if n := f.backend.Count(backend.OpDrawIndexedInstanced); n != 0 {
		t.Errorf("expected no instanced draws in an empty scene, got %d", n)
	}
	if f.surface.interval != 1 {
		t.Errorf("expected vsync by default, got interval %d", f.surface.interval)
	}
}

func TestSweepSkipsGroupWithoutMesh(t *testing.T) {
	f := newFixture(t, DefaultPasses())
	mat := material.NewMaterial()
	f.scene.Repository().AddMaterial(mat)
	g := model.NewInstanceGroup(0, mat.ID())
	if err := g.SubmitTransform(1, component.NewTransform()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	f.scene.Repository().AddInstanceGroup(g)

	if err := f.renderer.Initialize(f.surface); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	f.frame(t)

	if f.renderer.Device().InstanceGroupLoaded(g.ID()) {
		t.Errorf("expected the group without a mesh to stay unresident")
	}
	if f.surface.swaps != 1 {
		t.Errorf("expected 1 present, got %d", f.surface.swaps)
	}
}

func TestInstancedSpheres(t *testing.T) {
	f := newFixture(t, DefaultPasses())
	repo := f.scene.Repository()
	sphere := model.Sphere(16)
	repo.AddMesh(sphere)
	red := material.NewMaterial(material.WithColor(mgl32.Vec4{1, 0, 0, 1}), material.WithEmission(0.5))
	repo.AddMaterial(red)
	group := model.NewInstanceGroup(sphere.ID(), red.ID())
	repo.AddInstanceGroup(group)

	w := f.scene.World()
	for x := 0; x < 10; x++ {
		for y := 0; y < 10; y++ {
			for z := 0; z < 10; z++ {
				id := w.CreateEntity()
				tr := component.NewTransformAt(mgl32.Vec3{float32(x) * 2, float32(y) * 2, float32(z) * -2})
				ecs.Attach(w, id, tr)
				ecs.Attach(w, id, &component.InstanceRenderer{Group: group.ID()})
				if err := group.SubmitTransform(uint64(id), tr); err != nil {
					t.Fatalf("submit: %v", err)
				}
			}
		}
	}
	if !group.Changed() {
		t.Fatalf("expected the group changed after submit")
	}

	if err := f.renderer.Initialize(f.surface); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	f.frame(t)

	if group.Changed() {
		t.Errorf("expected the group synced after the upload sweep")
	}
	capacity, err := f.renderer.Device().InstanceCapacity(group.ID())
	if err != nil || capacity < 1000 {
		t.Errorf("expected capacity >= 1000, got %d (%v)", capacity, err)
	}

	id, err := ParameterAs[common.AssetID](f.renderer, pass.KeyInstancedGeometryShader)
	if err != nil {
		t.Fatalf("instanced geometry shader: %v", err)
	}
	program, _ := f.renderer.Device().ShaderProgram(id)
	drawn := 0
	for _, c := range f.backend.Commands() {
		if c.Op == backend.OpDrawIndexedInstanced && c.Handle == program {
			drawn += c.Args[1]
		}
	}
	if drawn != 1000 {
		t.Errorf("expected 1000 instances in the geometry pass, got %d", drawn)
	}
}

func TestResize(t *testing.T) {
	f := newFixture(t, DefaultPasses())
	if err := f.renderer.Initialize(f.surface); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	f.frame(t)

	f.surface.width, f.surface.height = 1600, 900
	f.frame(t)
	f.frame(t)

	rd := f.renderer.RenderData()
	if rd.Width() != 1600 || rd.Height() != 900 {
		t.Fatalf("expected render size 1600x900, got %dx%d", rd.Width(), rd.Height())
	}
	for _, fb := range rd.Framebuffers() {
		wantW, wantH := int(pass.DefaultShadowBufferSize), int(pass.DefaultShadowBufferSize)
		if fb.Resize() {
			wantW, wantH = framebuffer.ScaledSize(1600, 900, fb.ResizeFactor())
		}
		if fb.Width() != wantW || fb.Height() != wantH {
			t.Errorf("framebuffer %d: expected %dx%d, got %dx%d", fb.ID(), wantW, wantH, fb.Width(), fb.Height())
		}
		for _, tex := range fb.Textures() {
			name, err := f.renderer.Device().TextureName(tex.ID())
			if err != nil {
				t.Fatalf("texture of framebuffer %d: %v", fb.ID(), err)
			}
			w, h, _ := f.backend.TextureSize(name)
			if w != wantW || h != wantH {
				t.Errorf("framebuffer %d attachment: expected %dx%d, got %dx%d", fb.ID(), wantW, wantH, w, h)
			}
		}
	}
}

func TestRenderBeforeInitialize(t *testing.T) {
	f := newFixture(t, DefaultPasses())
	if err := f.renderer.Render(f.scene.RenderContext()); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
	if err := f.renderer.Update(f.surface); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
}

func TestNewRendererRejectsParameter(t *testing.T) {
	_, err := NewRenderer(backend.BackendTypeHeadless, WithParameter("bad", []int{1}))
	if !errors.Is(err, common.ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestUnknownBackend(t *testing.T) {
	if _, err := NewRenderer(backend.BackendType(99)); err == nil {
		t.Errorf("expected an error for an unknown backend")
	}
}

func TestPresetParameterOverridesDefault(t *testing.T) {
	f := newFixture(t, DefaultPasses(), WithParameter(pass.KeyCascadeCount, uint64(2)))
	if err := f.renderer.Initialize(f.surface); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	count, err := ParameterAs[uint64](f.renderer, pass.KeyCascadeCount)
	if err != nil || count != 2 {
		t.Errorf("expected cascade_count 2, got %d (%v)", count, err)
	}
	if _, err := ParameterAs[float32](f.renderer, pass.KeyCascadeCount); !errors.Is(err, common.ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestCompileFailureAbortsFrame(t *testing.T) {
	f := newFixture(t, DefaultPasses())
	f.backend.SetCompileFailure("deferred.frag")
	if err := f.renderer.Initialize(f.surface); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	err := f.renderer.Render(f.scene.RenderContext())
	if !errors.Is(err, common.ErrBuild) {
		t.Fatalf("expected ErrBuild, got %v", err)
	}
	if n := f.backend.Count(backend.OpDrawIndexed) + f.backend.Count(backend.OpDrawIndexedInstanced); n != 0 {
		t.Errorf("expected no draws after a failed sweep, got %d", n)
	}
}

func TestSubmitShader(t *testing.T) {
	f := newFixture(t, DefaultPasses())
	custom := shader.NewShader(shaderDir+"/default.vert", shaderDir+"/deferred.frag", shader.WithDefaultMaterial(true))
	id := f.renderer.Submit(custom)

	repo := f.scene.Repository()
	cube := model.Cube()
	repo.AddMesh(cube)
	m := material.NewMaterial()
	m.SetShader(pass.MaterialShaderGeometry, id)
	repo.AddMaterial(m)
	e := f.scene.World().CreateEntity()
	ecs.Attach(f.scene.World(), e, component.NewMeshRenderer(cube.ID(), m.ID()))
	ecs.Attach(f.scene.World(), e, component.NewTransform())

	if err := f.renderer.Initialize(f.surface); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	f.frame(t)
	if !f.renderer.Device().ShaderLoaded(id) {
		t.Fatalf("expected the submitted shader compiled")
	}
	program, _ := f.renderer.Device().ShaderProgram(id)
	used := false
	for _, c := range f.backend.Commands() {
		if c.Op == backend.OpDrawIndexed && c.Handle == program {
			used = true
		}
	}
	if !used {
		t.Errorf("expected the cube drawn with the submitted shader")
	}
}

func TestReleaseMeshReuploads(t *testing.T) {
	f := newFixture(t, DefaultPasses())
	cube := model.Cube()
	f.scene.Repository().AddMesh(cube)
	if err := f.renderer.Initialize(f.surface); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	f.frame(t)

	f.renderer.ReleaseMesh(cube.ID())
	if f.renderer.Device().MeshLoaded(cube.ID()) {
		t.Fatalf("expected the mesh released")
	}
	f.frame(t)
	if !f.renderer.Device().MeshLoaded(cube.ID()) {
		t.Errorf("expected the mesh uploaded again")
	}
}

func TestCloseReleasesEverything(t *testing.T) {
	f := newFixture(t, DefaultPasses())
	if err := f.renderer.Initialize(f.surface); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	f.frame(t)
	if f.backend.Live() == 0 {
		t.Fatalf("expected live GPU objects after a frame")
	}

	if err := f.renderer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if n := f.backend.Live(); n != 0 {
		t.Errorf("expected no live GPU objects, got %d", n)
	}
	if len(f.renderer.RenderData().Framebuffers()) != 0 || len(f.renderer.RenderData().Shaders()) != 0 {
		t.Errorf("expected the render data emptied")
	}
	if err := f.renderer.Render(f.scene.RenderContext()); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized after close, got %v", err)
	}
	if err := f.renderer.Close(); err != nil {
		t.Errorf("expected a second close to be a no-op, got %v", err)
	}
}
