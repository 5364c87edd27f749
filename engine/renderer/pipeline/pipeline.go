package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/pass"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"go.uber.org/zap"
)

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	logger *zap.Logger

	// passes run in slice order; the order is fixed at construction
	passes []pass.Pass
}

// Pipeline is the ordered sequence of render passes. The order passed at construction is the
// order in which passes initialize and render, so a pass that publishes a parameter must come
// before the passes that read it.
type Pipeline interface {
	// Passes returns the passes in execution order.
	//
	// Returns:
	//   - []pass.Pass: a copy of the pass list
	Passes() []pass.Pass

	// Len returns the number of passes.
	Len() int

	// Initialize initializes every pass in order and stops at the first error.
	//
	// Parameters:
	//   - rd: the shared render data
	//
	// Returns:
	//   - error: the first pass error
	Initialize(rd pass.RenderData) error

	// Render renders every pass in order and stops at the first error.
	//
	// Parameters:
	//   - rd: the shared render data
	//   - ctx: the scene view of this frame
	//
	// Returns:
	//   - error: the first pass error
	Render(rd pass.RenderData, ctx scene.RenderContext) error

	// Terminate terminates every pass in reverse order.
	//
	// Parameters:
	//   - rd: the shared render data
	//
	// Returns:
	//   - error: every pass error, joined
	Terminate(rd pass.RenderData) error

	// Clone returns a pipeline holding clones of every pass.
	//
	// Returns:
	//   - Pipeline: the copy
	Clone() Pipeline
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a Pipeline.
//
// Parameters:
//   - options: functional options to configure the pipeline
//
// Returns:
//   - Pipeline: the pipeline
func NewPipeline(options ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *pipeline) Passes() []pass.Pass {
	out := make([]pass.Pass, len(p.passes))
	copy(out, p.passes)
	return out
}

func (p *pipeline) Len() int {
	return len(p.passes)
}

func (p *pipeline) Initialize(rd pass.RenderData) error {
	for _, ps := range p.passes {
		if err := ps.Initialize(rd); err != nil {
			return fmt.Errorf("initialize pipeline: %w", err)
		}
		p.logger.Debug("pass initialized", zap.String("pass", ps.Name()))
	}
	return nil
}

func (p *pipeline) Render(rd pass.RenderData, ctx scene.RenderContext) error {
	for _, ps := range p.passes {
		start := time.Now()
		if err := ps.Render(rd, ctx); err != nil {
			return err
		}
		if ce := p.logger.Check(zap.DebugLevel, "pass rendered"); ce != nil {
			ce.Write(zap.String("pass", ps.Name()), zap.Duration("elapsed", time.Since(start)))
		}
	}
	return nil
}

func (p *pipeline) Terminate(rd pass.RenderData) error {
	var errs []error
	for i := len(p.passes) - 1; i >= 0; i-- {
		if err := p.passes[i].Terminate(rd); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *pipeline) Clone() Pipeline {
	c := &pipeline{
		logger: p.logger,
		passes: make([]pass.Pass, len(p.passes)),
	}
	for i, ps := range p.passes {
		c.passes[i] = ps.Clone()
	}
	return c
}
