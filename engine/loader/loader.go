package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/repository"
	"go.uber.org/zap"
)

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// DefaultDecodeWorkers is the default number of concurrent image decodes.
const DefaultDecodeWorkers = 4

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	logger        *zap.Logger
	repository    repository.Repository
	decodeWorkers int
	pool          worker.DynamicWorkerPool

	modelCache map[string]*ImportedModel

	backend loaderBackend
}

// Loader imports model files into engine assets and caches the results by name.
// When a repository is attached, every mesh, material and texture of a freshly imported
// model is added to it, so a MeshRenderer can reference them by ID.
type Loader interface {
	// Load imports a model file and caches the result.
	// If the model is already cached (by file path), the cached version is returned.
	// The backend is selected based on the file extension (.gltf/.glb → glTF backend).
	//
	// Parameters:
	//   - path: the file path to the model file
	//
	// Returns:
	//   - *ImportedModel: the loaded and cached model
	//   - error: error if loading fails
	Load(path string) (*ImportedModel, error)

	// LoadReader imports a model from a reader stream and caches it by the given name.
	//
	// Parameters:
	//   - name: the cache key for the loaded model
	//   - r: the reader providing glTF JSON or GLB data
	//   - dir: the directory external images are read from
	//
	// Returns:
	//   - *ImportedModel: the loaded model
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, dir string) (*ImportedModel, error)

	// Get retrieves a cached model by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - *ImportedModel: the cached model or nil
	Get(name string) *ImportedModel

	// Models returns a copy of the model cache.
	//
	// Returns:
	//   - map[string]*ImportedModel: all cached models keyed by name
	Models() map[string]*ImportedModel
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		logger:        zap.NewNop(),
		decodeWorkers: DefaultDecodeWorkers,
		modelCache:    make(map[string]*ImportedModel),
	}
	for _, option := range options {
		option(l)
	}
	if l.decodeWorkers < 1 {
		l.decodeWorkers = 1
	}
	l.pool = worker.NewDynamicWorkerPool(l.decodeWorkers, 256, 1*time.Second)

	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend(l.pool, l.logger)
	}
	return l
}

func (l *loader) Load(path string) (*ImportedModel, error) {
	if cached := l.Get(path); cached != nil {
		return cached, nil
	}

	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}
	imported, err := backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return l.store(path, imported), nil
}

func (l *loader) LoadReader(name string, r io.Reader, dir string) (*ImportedModel, error) {
	if cached := l.Get(name); cached != nil {
		return cached, nil
	}
	if l.backend == nil {
		return nil, fmt.Errorf("%w: no loader backend", common.ErrLookup)
	}
	imported, err := l.backend.LoadReader(name, r, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}
	return l.store(name, imported), nil
}

func (l *loader) Get(name string) *ImportedModel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.modelCache[name]
}

func (l *loader) Models() map[string]*ImportedModel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	cp := make(map[string]*ImportedModel, len(l.modelCache))
	for k, v := range l.modelCache {
		cp[k] = v
	}
	return cp
}

// store caches imported under key and registers its assets. A concurrent import of the same
// key keeps the first result.
func (l *loader) store(key string, imported *ImportedModel) *ImportedModel {
	l.mu.Lock()
	defer l.mu.Unlock()
	if cached, ok := l.modelCache[key]; ok {
		return cached
	}
	l.modelCache[key] = imported

	if l.repository != nil {
		for _, t := range imported.Textures {
			l.repository.AddTexture(t)
		}
		for _, m := range imported.Materials {
			l.repository.AddMaterial(m)
		}
		for _, p := range imported.Primitives {
			l.repository.AddMesh(p.Mesh)
		}
	}
	l.logger.Debug("model imported",
		zap.String("model", key),
		zap.Int("primitives", len(imported.Primitives)),
		zap.Int("materials", len(imported.Materials)),
		zap.Int("textures", len(imported.Textures)),
	)
	return imported
}

// resolveBackend selects an appropriate loader backend based on the file extension.
// Currently only glTF/GLB is supported.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		if l.backend != nil {
			return l.backend, nil
		}
	}
	return nil, fmt.Errorf("%w: no loader backend for %s", common.ErrLookup, path)
}
