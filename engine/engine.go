package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/component"
	"github.com/Carmen-Shannon/oxy-gl/engine/ecs"
	"github.com/Carmen-Shannon/oxy-gl/engine/profiler"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/pass"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"github.com/Carmen-Shannon/oxy-gl/engine/window"
	"go.uber.org/zap"
)

// engine implements the Engine interface.
// Coordinates the tick goroutine and the render loop on the window thread.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	// frameMu serializes scene access between the tick goroutine and the render loop.
	frameMu *sync.Mutex

	logger   *zap.Logger
	window   window.Window
	renderer renderer.Renderer
	scene    scene.Scene

	controller camera.CameraController

	profiler         *profiler.Profiler
	profilingEnabled bool
	profileInterval  time.Duration

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	lastRender       time.Time

	errMu *sync.Mutex
	err   error
}

// Engine is the main entry point for the engine.
// It owns the window, the renderer and the active scene. Run drives the frame loop on the
// calling thread, which must be the thread that created the window: each frame updates the
// scene, renders it and presents it. Game logic runs on a fixed-rate tick goroutine and is
// serialized with the frame so callbacks may mutate the scene freely.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the deferred renderer.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// Scene returns the active scene, nil if none is set.
	//
	// Returns:
	//   - scene.Scene: the scene
	Scene() scene.Scene

	// SetScene replaces the active scene and points the renderer at its point-light group.
	// It waits for the running frame or tick, so it must not be called from the tick callback.
	//
	// Parameters:
	//   - s: the scene to render
	SetScene(s scene.Scene)

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in frames per second.
	// The tick callback will be called at this rate for game logic updates.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	// Use this for game logic, physics, input processing, and animation updates.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called after each presented frame.
	//
	// Parameters:
	//   - callback: function to call each render frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run initializes the renderer against the window and runs the frame loop until the window
	// closes, Quit is called or a frame fails. The renderer and the window are closed on return.
	//
	// Returns:
	//   - error: the frame error that stopped the loop, joined with close errors
	Run() error

	// Quit signals all engine goroutines to stop and shuts down the engine.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// Without WithWindow a GLFW window is created, without WithRenderer an OpenGL renderer.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
//   - error: error if the renderer cannot be created
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		frameMu:         &sync.Mutex{},
		errMu:           &sync.Mutex{},
		logger:          zap.NewNop(),
		engineTickRate:  time.Second / 60,
		profileInterval: profiler.DefaultInterval,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.renderer == nil {
		r, err := renderer.NewRenderer(backend.BackendTypeOpenGL, renderer.WithLogger(e.logger))
		if err != nil {
			return nil, fmt.Errorf("create engine: %w", err)
		}
		e.renderer = r
	}
	if e.window == nil {
		e.window = window.NewWindow()
	}
	e.profiler = profiler.NewProfiler(
		profiler.WithLogger(e.logger),
		profiler.WithBackend(e.renderer.Backend()),
		profiler.WithInterval(e.profileInterval),
	)
	if e.scene != nil {
		e.SetScene(e.scene)
	}
	return e, nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) SetScene(s scene.Scene) {
	e.frameMu.Lock()
	defer e.frameMu.Unlock()
	e.scene = s
	if s == nil {
		return
	}
	if err := e.renderer.SetParameter(pass.KeyPointLightGroup, s.PointLightGroup()); err != nil {
		e.logger.Warn("point light group rejected", zap.Error(err))
	}
}

func (e *engine) Run() error {
	if e.Scene() == nil {
		return fmt.Errorf("%w: engine has no scene", common.ErrLookup)
	}
	if err := e.renderer.Initialize(e.window); err != nil {
		return fmt.Errorf("run engine: %w", err)
	}

	e.bindInput()
	e.running = true
	e.wg.Add(1)
	go e.handleEngine()

	e.lastRender = time.Now()
	e.window.SetUpdateCallback(e.handleFrame)
	e.window.ProcessMessages()

	e.signalQuit()
	e.wg.Wait()
	e.running = false

	closeErr := e.renderer.Close()
	windowErr := e.window.Close()
	return errors.Join(e.frameErr(), closeErr, windowErr)
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// fail records the first frame error and stops the loop.
func (e *engine) fail(err error) {
	e.errMu.Lock()
	if e.err == nil {
		e.err = err
	}
	e.errMu.Unlock()
	e.signalQuit()
	e.window.RequestClose()
}

func (e *engine) frameErr() error {
	e.errMu.Lock()
	defer e.errMu.Unlock()
	return e.err
}

// bindInput forwards window input to the camera controller.
func (e *engine) bindInput() {
	if e.controller == nil {
		return
	}
	e.window.SetKeyDownCallback(e.controller.OnKeyDown)
	e.window.SetKeyUpCallback(e.controller.OnKeyUp)
	e.window.SetMouseMoveCallback(e.controller.OnMouseMove)
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Applies the camera controller and fires the tick callback at the configured tick rate,
// and listens for dynamic rate changes via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now
			e.tick(dt)
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

func (e *engine) tick(dt float32) {
	e.frameMu.Lock()
	defer e.frameMu.Unlock()

	if e.controller != nil && e.scene != nil {
		t, err := ecs.Get[component.Transform](e.scene.World(), e.scene.MainCamera())
		if err == nil {
			e.controller.Update(t, dt)
		}
	}
	if e.tickCallback != nil {
		e.tickCallback(dt)
	}
}

// handleFrame runs one iteration of the render loop on the window thread: scene update,
// render, present. Recovers from panics so the window and the renderer are still closed.
func (e *engine) handleFrame() {
	select {
	case <-e.quitChannel:
		e.window.RequestClose()
		return
	default:
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("render frame recovered from panic", zap.Any("panic", r))
			e.fail(fmt.Errorf("render panic: %v", r))
		}
	}()

	now := time.Now()
	dt := float32(now.Sub(e.lastRender).Seconds())
	e.lastRender = now

	if err := e.renderFrame(dt); err != nil {
		e.logger.Error("render failed", zap.Error(err))
		e.fail(err)
		return
	}

	if e.renderCallback != nil {
		e.renderCallback(dt)
	}

	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick()
	}

	// Frame rate limiting
	if e.renderFrameLimit > 0 {
		elapsed := time.Since(now)
		if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

func (e *engine) renderFrame(dt float32) error {
	e.frameMu.Lock()
	defer e.frameMu.Unlock()

	if err := e.scene.Update(dt); err != nil {
		return fmt.Errorf("scene update: %w", err)
	}
	if err := e.renderer.Render(e.scene.RenderContext()); err != nil {
		return err
	}
	return e.renderer.Update(e.window)
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if e.running {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetRenderCallback registers the function called each render frame.
func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}
