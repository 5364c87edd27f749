package renderer

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/pass"
	"go.uber.org/zap"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPasses sets the passes in execution order. The order is fixed for the renderer's lifetime.
//
// Parameters:
//   - passes: the passes
//
// Returns:
//   - RendererBuilderOption: a function that applies the passes option to a renderer
func WithPasses(passes ...pass.Pass) RendererBuilderOption {
	return func(r *renderer) {
		r.passes = append(r.passes, passes...)
	}
}

// WithParameter presets a render parameter. Passes only write defaults for absent keys, so a
// preset value overrides the pass default.
//
// Parameters:
//   - key: the parameter key
//   - value: the value
//
// Returns:
//   - RendererBuilderOption: a function that applies the parameter option to a renderer
func WithParameter(key string, value any) RendererBuilderOption {
	return func(r *renderer) {
		r.parameters[key] = value
	}
}

// WithParameters presets several render parameters.
//
// Parameters:
//   - params: the parameters keyed by name
//
// Returns:
//   - RendererBuilderOption: a function that applies the parameters option to a renderer
func WithParameters(params map[string]any) RendererBuilderOption {
	return func(r *renderer) {
		for k, v := range params {
			r.parameters[k] = v
		}
	}
}

// WithLogger sets the logger passed to the device and the pipeline. A nil logger is ignored.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger option to a renderer
func WithLogger(logger *zap.Logger) RendererBuilderOption {
	return func(r *renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithGrowthFactor sets the instance buffer growth multiplier of the device.
//
// Parameters:
//   - factor: the multiplier, values below 1 are clamped by the device
//
// Returns:
//   - RendererBuilderOption: a function that applies the growth factor option to a renderer
func WithGrowthFactor(factor float32) RendererBuilderOption {
	return func(r *renderer) {
		r.growthFactor = factor
	}
}

// WithShaderWorkers sets the number of shader sources read concurrently during the upload sweep.
//
// Parameters:
//   - workers: the worker count
//
// Returns:
//   - RendererBuilderOption: a function that applies the shader workers option to a renderer
func WithShaderWorkers(workers int) RendererBuilderOption {
	return func(r *renderer) {
		r.shaderWorkers = workers
	}
}

// WithBackend uses an existing backend instead of creating one from the backend type.
//
// Parameters:
//   - b: the backend
//
// Returns:
//   - RendererBuilderOption: a function that applies the backend option to a renderer
func WithBackend(b backend.Backend) RendererBuilderOption {
	return func(r *renderer) {
		r.backend = b
	}
}

// WithPresentMode sets how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.presentMode = mode
	}
}
