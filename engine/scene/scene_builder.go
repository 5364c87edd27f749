package scene

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/light"
	"github.com/Carmen-Shannon/oxy-gl/engine/repository"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithName sets the scene's identifier.
//
// Parameters:
//   - name: the scene name
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithName(name string) SceneBuilderOption {
	return func(s *scene) {
		s.name = name
	}
}

// WithCamera sets the component of the main camera entity.
//
// Parameters:
//   - cam: the camera
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCamera(cam *camera.Camera) SceneBuilderOption {
	return func(s *scene) {
		s.camera = cam
	}
}

// WithDirectionalLight sets the component of the main light entity.
//
// Parameters:
//   - l: the directional light
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithDirectionalLight(l *light.DirectionalLight) SceneBuilderOption {
	return func(s *scene) {
		s.sun = l
	}
}

// WithRepository uses an existing asset repository, for example one filled by the loader.
//
// Parameters:
//   - repo: the repository
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithRepository(repo repository.Repository) SceneBuilderOption {
	return func(s *scene) {
		if repo != nil {
			s.repository = repo
		}
	}
}
