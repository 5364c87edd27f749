package engine

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/component"
	"github.com/Carmen-Shannon/oxy-gl/engine/ecs"
	"github.com/Carmen-Shannon/oxy-gl/engine/light"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/pass"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

const shaderDir = "../assets/shaders"

// fakeWindow runs the update callback up to maxFrames times per ProcessMessages call.
type fakeWindow struct {
	width, height int
	maxFrames     int
	frames        int
	swaps         int
	closed        bool
	closeRequests int
	running       bool

	onUpdate    func()
	onKeyDown   func(uint32)
	onKeyUp     func(uint32)
	onMouseMove func(x, y int32)
}

func newFakeWindow(frames int) *fakeWindow {
	return &fakeWindow{width: 1280, height: 720, maxFrames: frames, running: true}
}

func (w *fakeWindow) SetUpdateCallback(cb func()) { w.onUpdate = cb }
func (w *fakeWindow) SetResizeCallback(func(width, height int)) {}
func (w *fakeWindow) SetScrollCallback(func(delta float32)) {}
func (w *fakeWindow) SetKeyDownCallback(cb func(keyCode uint32)) { w.onKeyDown = cb }
func (w *fakeWindow) SetKeyUpCallback(cb func(keyCode uint32)) { w.onKeyUp = cb }
func (w *fakeWindow) SetMiddleMouseDownCallback(func(x, y int32)) {}
func (w *fakeWindow) SetMiddleMouseUpCallback(func(x, y int32)) {}
func (w *fakeWindow) SetMouseMoveCallback(cb func(x, y int32)) { w.onMouseMove = cb }
func (w *fakeWindow) MakeContextCurrent() {}
func (w *fakeWindow) SwapBuffers() { w.swaps++ }
func (w *fakeWindow) SetSwapInterval(int) {}
func (w *fakeWindow) RequestClose() {
	w.closeRequests++
	w.running = false
}

func (w *fakeWindow) SetTitle(string) {}
func (w *fakeWindow) IsRunning() bool { return w.running && !w.closed }
func (w *fakeWindow) Close() error {
	w.closed = true
	return nil
}

func (w *fakeWindow) Width() int { return w.width }
func (w *fakeWindow) Height() int { return w.height }

func (w *fakeWindow) ProcessMessages() {
	for w.IsRunning() && w.frames < w.maxFrames {
		w.frames++
		if w.onUpdate != nil {
			w.onUpdate()
		}
	}
}

type fixture struct {
	backend backend.Headless
	window  *fakeWindow
	scene   scene.Scene
	engine  Engine
}

func newFixture(t *testing.T, frames int, opts ...EngineBuilderOption) *fixture {
	t.Helper()
	s := scene.NewScene()
	sky := material.NewMaterial(material.WithParameter("uScatter", mgl32.Vec3{0.1, 0.2, 0.9}))
	s.Repository().AddMaterial(sky)

	h := backend.NewHeadless()
	r, err := renderer.NewRenderer(backend.BackendTypeHeadless,
		renderer.WithBackend(h),
		renderer.WithParameter(pass.KeyShaderPath, shaderDir),
		renderer.WithParameter(pass.KeySkyboxMaterial, sky.ID()),
	)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	w := newFakeWindow(frames)
	e, err := NewEngine(append([]EngineBuilderOption{
		WithWindow(w),
		WithRenderer(r),
		WithScene(s),
	}, opts...)...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return &fixture{backend: h, window: w, scene: s, engine: e}
}

func TestRunRendersFrames(t *testing.T) {
	f := newFixture(t, 3)
	var rendered int
	f.engine.SetRenderCallback(func(float32) { rendered++ })

	if err := f.engine.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if f.window.swaps != 3 || rendered != 3 {
		t.Errorf("swaps = %d, render callbacks = %d, want 3 each", f.window.swaps, rendered)
	}
	if !f.window.closed {
		t.Errorf("window not closed after Run")
	}
	if n := f.backend.Live(); n != 0 {
		t.Errorf("live GPU objects after Run = %d, want 0", n)
	}
}

func TestSetScenePublishesPointLightGroup(t *testing.T) {
	f := newFixture(t, 1)
	got, err := renderer.ParameterAs[common.AssetID](f.engine.Renderer(), pass.KeyPointLightGroup)
	if err != nil {
		t.Fatalf("point light group: %v", err)
	}
	if got != f.scene.PointLightGroup() {
		t.Errorf("point light group = %d, want %d", got, f.scene.PointLightGroup())
	}

	other := scene.NewScene()
	f.engine.SetScene(other)
	got, _ = renderer.ParameterAs[common.AssetID](f.engine.Renderer(), pass.KeyPointLightGroup)
	if got != other.PointLightGroup() || f.engine.Scene() != other {
		t.Errorf("SetScene did not switch to the new scene")
	}
}

func TestRunSyncsPointLights(t *testing.T) {
	f := newFixture(t, 2)
	f.scene.AddPointLight(light.NewPointLight(), mgl32.Vec3{1, 2, 3})

	if err := f.engine.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	g, err := f.scene.Repository().InstanceGroup(f.scene.PointLightGroup())
	if err != nil {
		t.Fatalf("point light group: %v", err)
	}
	if g.Count() != 1 {
		t.Errorf("point light instances = %d, want 1", g.Count())
	}
}

func TestRunStopsOnRenderError(t *testing.T) {
	f := newFixture(t, 5)
	f.backend.SetCompileFailure("deferred.frag")

	err := f.engine.Run()
	if !errors.Is(err, common.ErrBuild) {
		t.Fatalf("Run error = %v, want ErrBuild", err)
	}
	if f.window.frames != 1 {
		t.Errorf("frames = %d, want the loop to stop after the failing frame", f.window.frames)
	}
	if f.window.swaps != 0 {
		t.Errorf("failed frame was presented")
	}
}

func TestQuitStopsLoop(t *testing.T) {
	f := newFixture(t, 10)
	f.engine.SetRenderCallback(func(float32) {
		if f.window.frames == 2 {
			f.engine.Quit()
		}
	})
	if err := f.engine.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if f.window.frames != 3 || f.window.swaps != 2 {
		t.Errorf("frames = %d, swaps = %d, want the third iteration to only close", f.window.frames, f.window.swaps)
	}
	f.engine.Quit()
}

func TestRunWithoutScene(t *testing.T) {
	r, err := renderer.NewRenderer(backend.BackendTypeHeadless)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	e, err := NewEngine(WithWindow(newFakeWindow(1)), WithRenderer(r))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if err := e.Run(); !errors.Is(err, common.ErrLookup) {
		t.Errorf("Run error = %v, want ErrLookup", err)
	}
}

func TestControllerDrivesMainCamera(t *testing.T) {
	cc := camera.NewCameraController(camera.WithSpeed(10))
	f := newFixture(t, 1, WithCameraController(cc))
	eng := f.engine.(*engine)
	eng.bindInput()
	if f.window.onKeyDown == nil || f.window.onMouseMove == nil {
		t.Fatalf("controller callbacks not bound")
	}

	tr, err := ecs.Get[component.Transform](f.scene.World(), f.scene.MainCamera())
	if err != nil {
		t.Fatalf("camera transform: %v", err)
	}
	start := tr.Position()
	f.window.onKeyDown(common.KeyW)
	eng.tick(0.5)
	if moved := tr.Position().Sub(start).Len(); moved < 4.99 || moved > 5.01 {
		t.Errorf("camera moved %v, want 5", moved)
	}
}

func TestTickRateOptions(t *testing.T) {
	f := newFixture(t, 1, WithTickRate(120), WithRenderFrameLimit(30))
	eng := f.engine.(*engine)
	if eng.engineTickRate <= 0 || eng.renderFrameLimit <= 0 {
		t.Fatalf("rates not applied")
	}
	eng.SetTickRate(0)
	if got := eng.engineTickRate; got.Seconds()*60 < 0.99 || got.Seconds()*60 > 1.01 {
		t.Errorf("tick period = %v, want 1/60 s", got)
	}
	eng.SetRenderFrameLimit(0)
	if eng.renderFrameLimit != 0 {
		t.Errorf("frame limit = %v, want uncapped", eng.renderFrameLimit)
	}
}
