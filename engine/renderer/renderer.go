package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/framebuffer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/pass"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"go.uber.org/zap"
)

// ErrNotInitialized is returned by frame operations on a renderer that has not been initialized.
var ErrNotInitialized = errors.New("renderer not initialized")

// DefaultShaderWorkers is the default number of concurrent shader source loads.
const DefaultShaderWorkers = 4

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu     *sync.Mutex
	logger *zap.Logger

	backendType backend.BackendType
	backend     backend.Backend
	device      device.Device
	renderData  pass.RenderData
	pipeline    pipeline.Pipeline
	loaderPool  worker.DynamicWorkerPool

	// Pre-creation config collected from builder options
	passes        []pass.Pass
	parameters    map[string]any
	growthFactor  float32
	shaderWorkers int
	presentMode   PresentMode

	initialized bool
	closed      bool
}

// Renderer drives the deferred pipeline against a window surface.
//
// A frame is Render followed by Update: Render makes every referenced asset resident and runs
// the passes in order, Update presents the back buffer and rebuilds the resizable
// framebuffers when the surface size changed. Every method must be called from the thread
// that owns the graphics context.
type Renderer interface {
	// Initialize binds the backend to the surface's graphics context, sizes the render data to
	// the surface and initializes every pass. Calling it again rebinds the context only.
	//
	// Parameters:
	//   - surface: the window to render into
	//
	// Returns:
	//   - error: an error if the backend cannot be loaded or a pass fails to initialize
	Initialize(surface Surface) error

	// Render uploads every asset the frame references and then renders every pass.
	// Upload failures abort the frame before any draw.
	//
	// Parameters:
	//   - ctx: the scene view of this frame
	//
	// Returns:
	//   - error: the first upload or pass error
	Render(ctx scene.RenderContext) error

	// Update presents the frame and resizes the framebuffers when the surface size changed
	// since the last Initialize, Update or Resize.
	//
	// Parameters:
	//   - surface: the window presenting the frame
	//
	// Returns:
	//   - error: a resize error
	Update(surface Surface) error

	// Resize sets the render size and rebuilds every framebuffer flagged for resize at the new
	// size scaled by its resize factor. A framebuffer that fails to rebuild keeps its old size.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	//
	// Returns:
	//   - error: the joined rebuild errors
	Resize(width, height int) error

	// SetParameter stores a render parameter.
	//
	// Parameters:
	//   - key: the parameter key
	//   - value: the value, normalized into the parameter domain
	//
	// Returns:
	//   - error: common.ErrTypeMismatch if the value is outside the domain
	SetParameter(key string, value any) error

	// Parameter returns a render parameter.
	//
	// Parameters:
	//   - key: the parameter key
	//
	// Returns:
	//   - any: the value
	//   - bool: false if the key is absent
	Parameter(key string) (any, bool)

	// Submit registers an externally authored shader. It is compiled by the next upload sweep and
	// can then be referenced from a material's shader map.
	//
	// Parameters:
	//   - s: the shader
	//
	// Returns:
	//   - common.AssetID: the shader's ID
	Submit(s shader.Shader) common.AssetID

	// ReleaseMesh frees the GPU mirror of a mesh. The next sweep that observes it uploads it again.
	ReleaseMesh(id common.AssetID)

	// ReleaseTexture frees the GPU mirror of a texture.
	ReleaseTexture(id common.AssetID)

	// ReleaseInstanceGroup frees the instance buffer of a group.
	ReleaseInstanceGroup(id common.AssetID)

	// ReleaseShader frees a program and unregisters the shader.
	ReleaseShader(id common.AssetID)

	// ReleaseFramebuffer frees a framebuffer with its attachments and unregisters it.
	ReleaseFramebuffer(id common.AssetID)

	// RenderData returns the render data shared by the passes.
	RenderData() pass.RenderData

	// Device returns the GPU resource cache.
	Device() device.Device

	// Backend returns the graphics backend.
	Backend() backend.Backend

	// Pipeline returns the pass pipeline.
	Pipeline() pipeline.Pipeline

	// Close terminates every pass and releases every remaining GPU resource. The renderer
	// cannot be used afterwards.
	//
	// Returns:
	//   - error: the joined pass terminate errors
	Close() error
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer on the given backend type. Without WithPasses the renderer
// runs DefaultPasses.
//
// Parameters:
//   - backendType: the graphics backend to create, ignored when WithBackend is given
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the renderer
//   - error: an error if the backend type is unknown or a parameter is outside the domain
func NewRenderer(backendType backend.BackendType, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:            &sync.Mutex{},
		logger:        zap.NewNop(),
		backendType:   backendType,
		parameters:    make(map[string]any),
		growthFactor:  device.DefaultGrowthFactor,
		shaderWorkers: DefaultShaderWorkers,
	}
	for _, opt := range options {
		opt(r)
	}

	if r.backend == nil {
		b, err := backend.NewBackend(backendType)
		if err != nil {
			return nil, fmt.Errorf("create renderer: %w", err)
		}
		r.backend = b
	}
	r.device = device.NewDevice(r.backend,
		device.WithLogger(r.logger),
		device.WithGrowthFactor(r.growthFactor),
	)
	r.renderData = pass.NewRenderData(r.device, 0, 0)
	for key, value := range r.parameters {
		if err := r.renderData.Set(key, value); err != nil {
			return nil, fmt.Errorf("create renderer: %w", err)
		}
	}

	if len(r.passes) == 0 {
		r.passes = DefaultPasses()
	}
	r.pipeline = pipeline.NewPipeline(
		pipeline.WithPasses(r.passes...),
		pipeline.WithLogger(r.logger),
	)
	r.loaderPool = shader.NewLoaderPool(r.shaderWorkers)
	return r, nil
}

// DefaultPasses returns the full deferred pipeline: skybox, shadow, geometry, lighting,
// bloom and draw.
//
// Returns:
//   - []pass.Pass: fresh passes in execution order
func DefaultPasses() []pass.Pass {
	return pipeline.Default()
}

// ParameterAs returns a render parameter as a T.
//
// Parameters:
//   - r: the renderer
//   - key: the parameter key
//
// Returns:
//   - T: the value
//   - error: common.ErrLookup if the key is absent, common.ErrTypeMismatch if it holds another type
func ParameterAs[T any](r Renderer, key string) (T, error) {
	return pass.Get[T](r.RenderData(), key)
}

func (r *renderer) Initialize(surface Surface) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrNotInitialized
	}

	if err := r.backend.Init(surface); err != nil {
		return fmt.Errorf("initialize renderer: %w", err)
	}
	if r.initialized {
		return nil
	}
	surface.SetSwapInterval(r.presentMode.swapInterval())

	info := r.backend.Info()
	r.logger.Info("renderer initialized",
		zap.Stringer("backend", r.backendType),
		zap.String("gpu", info.Renderer),
		zap.String("vendor", info.Vendor),
		zap.String("version", info.Version),
		zap.Int("width", surface.Width()),
		zap.Int("height", surface.Height()),
	)

	r.renderData.SetSize(surface.Width(), surface.Height())
	if err := r.pipeline.Initialize(r.renderData); err != nil {
		return err
	}
	r.initialized = true
	return nil
}

func (r *renderer) Render(ctx scene.RenderContext) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.initialized || r.closed {
		return ErrNotInitialized
	}
	if err := r.upload(ctx); err != nil {
		return fmt.Errorf("upload sweep: %w", err)
	}
	return r.pipeline.Render(r.renderData, ctx)
}

func (r *renderer) Update(surface Surface) error {
	r.mu.Lock()
	if !r.initialized || r.closed {
		r.mu.Unlock()
		return ErrNotInitialized
	}
	surface.SwapBuffers()
	w, h := surface.Width(), surface.Height()
	changed := w != r.renderData.Width() || h != r.renderData.Height()
	r.mu.Unlock()

	if !changed {
		return nil
	}
	return r.Resize(w, h)
}

func (r *renderer) Resize(width, height int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if width <= 0 || height <= 0 {
		return nil
	}
	r.renderData.SetSize(width, height)

	var errs []error
	for _, fb := range r.renderData.Framebuffers() {
		if !fb.Resize() {
			continue
		}
		if !r.device.FramebufferLoaded(fb.ID()) {
			fb.SetSize(framebuffer.ScaledSize(width, height, fb.ResizeFactor()))
			continue
		}
		if err := r.device.ResizeFramebuffer(fb, width, height); err != nil {
			errs = append(errs, err)
		}
	}
	r.logger.Info("renderer resized", zap.Int("width", width), zap.Int("height", height))
	return errors.Join(errs...)
}

func (r *renderer) SetParameter(key string, value any) error {
	return r.renderData.Set(key, value)
}

func (r *renderer) Parameter(key string) (any, bool) {
	return r.renderData.Parameter(key)
}

func (r *renderer) Submit(s shader.Shader) common.AssetID {
	r.renderData.AddShader(s)
	return s.ID()
}

func (r *renderer) ReleaseMesh(id common.AssetID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.device.ReleaseMesh(id)
}

func (r *renderer) ReleaseTexture(id common.AssetID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.device.ReleaseTexture(id)
}

func (r *renderer) ReleaseInstanceGroup(id common.AssetID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.device.ReleaseInstanceGroup(id)
}

func (r *renderer) ReleaseShader(id common.AssetID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.device.ReleaseShader(id)
	r.renderData.RemoveShader(id)
}

func (r *renderer) ReleaseFramebuffer(id common.AssetID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.device.ReleaseFramebuffer(id)
	r.renderData.RemoveFramebuffer(id)
}

func (r *renderer) RenderData() pass.RenderData {
	return r.renderData
}

func (r *renderer) Device() device.Device {
	return r.device
}

func (r *renderer) Backend() backend.Backend {
	return r.backend
}

func (r *renderer) Pipeline() pipeline.Pipeline {
	return r.pipeline
}

func (r *renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true

	var err error
	if r.initialized {
		err = r.pipeline.Terminate(r.renderData)
	}
	for _, s := range r.renderData.Shaders() {
		r.renderData.RemoveShader(s.ID())
	}
	for _, fb := range r.renderData.Framebuffers() {
		r.renderData.RemoveFramebuffer(fb.ID())
	}
	for _, m := range r.renderData.Meshes() {
		r.renderData.RemoveMesh(m.ID())
	}
	r.device.ReleaseAll()
	if err != nil {
		r.logger.Warn("pass terminate failed", zap.Error(err))
	}
	return err
}
