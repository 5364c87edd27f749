package loader

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/repository"
	"go.uber.org/zap"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithRepository is an option builder that sets the repository imported assets are added to.
//
// Parameters:
//   - repo: the asset repository
//
// Returns:
//   - LoaderBuilderOption: a function that applies the repository option to a loader
func WithRepository(repo repository.Repository) LoaderBuilderOption {
	return func(l *loader) {
		l.repository = repo
	}
}

// WithLogger is an option builder that sets the logger. A nil logger is ignored.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger option to a loader
func WithLogger(logger *zap.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithDecodeWorkers sets the number of images decoded concurrently.
func WithDecodeWorkers(workers int) LoaderBuilderOption {
	return func(l *loader) {
		l.decodeWorkers = workers
	}
}

// WithModel is an option builder that pre-populates the model cache with a model.
//
// Parameters:
//   - key: the cache key for the model
//   - model: the model to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the model option to a loader
func WithModel(key string, model *ImportedModel) LoaderBuilderOption {
	return func(l *loader) {
		l.modelCache[key] = model
	}
}
