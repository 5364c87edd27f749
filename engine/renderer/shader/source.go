package shader

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-gl/common"
)

// Sources holds the pre-processed GLSL text of each stage of a Shader.
// Geometry is empty when the shader has no geometry stage.
type Sources struct {
	Vertex   string
	Fragment string
	Geometry string
}

// LoadSources reads and pre-processes every stage of s, adding the discovered uniform names
// to the shader's declared-uniform set. A stage that cannot be read or pre-processed
// yields a *common.BuildError with stage "read".
//
// Parameters:
//   - s: the shader whose sources to load
//
// Returns:
//   - Sources: the processed stage sources
//   - error: a build error if any stage cannot be loaded
func LoadSources(s Shader) (Sources, error) {
	var src Sources
	pp := NewPreProcessor()

	load := func(path common.Path) (string, error) {
		text, err := pp.Process(path)
		if err != nil {
			return "", &common.BuildError{Stage: "read", Path: string(path), Log: err.Error()}
		}
		s.AddUniform(pp.Uniforms()...)
		return text, nil
	}

	var err error
	if src.Vertex, err = load(s.Vertex()); err != nil {
		return Sources{}, err
	}
	if src.Fragment, err = load(s.Fragment()); err != nil {
		return Sources{}, err
	}
	if s.Geometry() != "" {
		if src.Geometry, err = load(s.Geometry()); err != nil {
			return Sources{}, err
		}
	}
	return src, nil
}

// LoadAll loads the sources of every shader in parallel on pool, blocking until all are done.
// The returned map holds the sources of every shader that loaded; the error joins every failure.
//
// Parameters:
//   - pool: the worker pool to run the loads on
//   - shaders: the shaders to load
//
// Returns:
//   - map[common.AssetID]Sources: the loaded sources keyed by shader ID
//   - error: the joined load errors, nil if every shader loaded
func LoadAll(pool worker.DynamicWorkerPool, shaders []Shader) (map[common.AssetID]Sources, error) {
	out := make(map[common.AssetID]Sources, len(shaders))
	if len(shaders) == 0 {
		return out, nil
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	store := func(s Shader, src Sources, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			errs = append(errs, fmt.Errorf("shader %d: %w", s.ID(), err))
			return
		}
		out[s.ID()] = src
	}

	var wg sync.WaitGroup
	for i, s := range shaders {
		wg.Add(1)
		sCap := s
		pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				src, err := LoadSources(sCap)
				store(sCap, src, err)
				return nil, err
			},
		})
	}
	wg.Wait()
	return out, errors.Join(errs...)
}

// NewLoaderPool creates a worker pool sized for shader source loading.
//
// Parameters:
//   - workers: the maximum number of concurrent loads
//
// Returns:
//   - worker.DynamicWorkerPool: the pool
func NewLoaderPool(workers int) worker.DynamicWorkerPool {
	if workers < 1 {
		workers = 1
	}
	return worker.NewDynamicWorkerPool(workers, 256, 1*time.Second)
}
