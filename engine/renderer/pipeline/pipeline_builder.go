package pipeline

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/pass"
	"go.uber.org/zap"
)

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithPasses appends passes to the pipeline in execution order.
//
// Parameters:
//   - passes: the passes to append
//
// Returns:
//   - PipelineBuilderOption: a function that appends the passes
func WithPasses(passes ...pass.Pass) PipelineBuilderOption {
	return func(p *pipeline) {
		for _, ps := range passes {
			if ps != nil {
				p.passes = append(p.passes, ps)
			}
		}
	}
}

// WithLogger sets the logger used for per-pass debug timing. A nil logger is ignored.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - PipelineBuilderOption: a function that sets the logger
func WithLogger(logger *zap.Logger) PipelineBuilderOption {
	return func(p *pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Default returns the full deferred pipeline: skybox, shadow, geometry, lighting, bloom and draw.
//
// Returns:
//   - []pass.Pass: fresh passes in execution order
func Default() []pass.Pass {
	return []pass.Pass{
		pass.NewSkyboxPass(),
		pass.NewShadowPass(),
		pass.NewGeometryPass(),
		pass.NewLightingPass(),
		pass.NewBloomPass(),
		pass.NewDrawPass(),
	}
}
