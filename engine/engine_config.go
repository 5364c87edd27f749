package engine

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/config"
	"github.com/Carmen-Shannon/oxy-gl/engine/logger"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-gl/engine/window"
	"go.uber.org/zap"
)

// RendererOptions converts the renderer section of cfg into renderer options.
//
// Parameters:
//   - cfg: the configuration
//   - log: the logger handed to the renderer
//
// Returns:
//   - []renderer.RendererBuilderOption: the options
func RendererOptions(cfg *config.Config, log *zap.Logger) []renderer.RendererBuilderOption {
	mode := renderer.PresentModeVSync
	if cfg.Renderer.PresentMode == "uncapped" {
		mode = renderer.PresentModeUncapped
	}
	return []renderer.RendererBuilderOption{
		renderer.WithLogger(log),
		renderer.WithParameters(cfg.Renderer.Parameters()),
		renderer.WithGrowthFactor(cfg.Renderer.GrowthFactor),
		renderer.WithShaderWorkers(cfg.Renderer.ShaderWorkers),
		renderer.WithPresentMode(mode),
	}
}

// NewEngineFromConfig builds the logger, window and OpenGL renderer described by cfg and
// returns an engine over them. Extra options are applied after the configured ones.
//
// Parameters:
//   - cfg: a validated configuration
//   - options: further engine options, typically WithScene
//
// Returns:
//   - Engine: the engine
//   - error: error if the configuration is invalid or the logger or renderer cannot be built
func NewEngineFromConfig(cfg *config.Config, options ...EngineBuilderOption) (Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	log, err := logger.NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	r, err := renderer.NewRenderer(backend.BackendTypeOpenGL, RendererOptions(cfg, log)...)
	if err != nil {
		return nil, err
	}
	w := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithWidth(cfg.Window.Width),
		window.WithHeight(cfg.Window.Height),
		window.WithMaxWidth(max(1600, cfg.Window.Width)),
		window.WithMaxHeight(max(1200, cfg.Window.Height)),
		window.WithSamples(cfg.Window.Samples),
	)
	interval, _ := cfg.Engine.ProfileInterval()

	opts := []EngineBuilderOption{
		WithLogger(log),
		WithRenderer(r),
		WithWindow(w),
		WithTickRate(cfg.Engine.TickRate),
		WithRenderFrameLimit(cfg.Engine.FrameLimit),
		WithProfiling(cfg.Engine.Profiling),
		WithProfileInterval(interval),
	}
	return NewEngine(append(opts, options...)...)
}
