package scene

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/component"
	"github.com/Carmen-Shannon/oxy-gl/engine/ecs"
	"github.com/Carmen-Shannon/oxy-gl/engine/light"
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/Carmen-Shannon/oxy-gl/engine/repository"
)

// renderContext is the implementation of the RenderContext interface.
type renderContext struct {
	world      *ecs.World
	repository repository.Repository
	camera     ecs.EntityID
	light      ecs.EntityID
}

// RenderContext is the read-only view of a scene handed to the render passes for one frame.
// It does not own the entity store or the repository, and neither may be mutated while a
// pass runs.
type RenderContext interface {
	// World returns the entity store.
	World() *ecs.World

	// Repository returns the asset repository.
	Repository() repository.Repository

	// CameraEntity returns the entity holding the active camera.
	CameraEntity() ecs.EntityID

	// LightEntity returns the entity holding the active directional light.
	LightEntity() ecs.EntityID

	// Camera returns the active camera and its transform.
	//
	// Returns:
	//   - *camera.Camera: the camera component
	//   - *component.Transform: the camera transform
	//   - error: common.ErrLookup if the entity lacks either component
	Camera() (*camera.Camera, *component.Transform, error)

	// DirectionalLight returns the active directional light and its transform.
	//
	// Returns:
	//   - *light.DirectionalLight: the light component
	//   - *component.Transform: the light transform
	//   - error: common.ErrLookup if the entity lacks either component
	DirectionalLight() (*light.DirectionalLight, *component.Transform, error)

	// EachMeshRenderer calls fn for every entity with a MeshRenderer and a Transform.
	//
	// Parameters:
	//   - fn: the callback
	EachMeshRenderer(fn func(id ecs.EntityID, r *component.MeshRenderer, t *component.Transform))

	// InstanceGroups returns every instance group of the repository, ordered by ID.
	InstanceGroups() []model.InstanceGroup
}

var _ RenderContext = &renderContext{}

// NewRenderContext creates a RenderContext over a world and a repository.
//
// Parameters:
//   - world: the entity store
//   - repo: the asset repository
//   - cameraEntity: the entity holding the active Camera and its Transform
//   - lightEntity: the entity holding the active DirectionalLight and its Transform
//
// Returns:
//   - RenderContext: the frame view
func NewRenderContext(world *ecs.World, repo repository.Repository, cameraEntity, lightEntity ecs.EntityID) RenderContext {
	return &renderContext{
		world:      world,
		repository: repo,
		camera:     cameraEntity,
		light:      lightEntity,
	}
}

func (c *renderContext) World() *ecs.World {
	return c.world
}

func (c *renderContext) Repository() repository.Repository {
	return c.repository
}

func (c *renderContext) CameraEntity() ecs.EntityID {
	return c.camera
}

func (c *renderContext) LightEntity() ecs.EntityID {
	return c.light
}

func (c *renderContext) Camera() (*camera.Camera, *component.Transform, error) {
	cam, err := ecs.Get[camera.Camera](c.world, c.camera)
	if err != nil {
		return nil, nil, fmt.Errorf("active camera: %w", err)
	}
	t, err := ecs.Get[component.Transform](c.world, c.camera)
	if err != nil {
		return nil, nil, fmt.Errorf("active camera: %w", err)
	}
	return cam, t, nil
}

func (c *renderContext) DirectionalLight() (*light.DirectionalLight, *component.Transform, error) {
	l, err := ecs.Get[light.DirectionalLight](c.world, c.light)
	if err != nil {
		return nil, nil, fmt.Errorf("active directional light: %w", err)
	}
	t, err := ecs.Get[component.Transform](c.world, c.light)
	if err != nil {
		return nil, nil, fmt.Errorf("active directional light: %w", err)
	}
	return l, t, nil
}

func (c *renderContext) EachMeshRenderer(fn func(id ecs.EntityID, r *component.MeshRenderer, t *component.Transform)) {
	ecs.Each2(ecs.StoreOf[component.MeshRenderer](c.world), ecs.StoreOf[component.Transform](c.world), fn)
}

func (c *renderContext) InstanceGroups() []model.InstanceGroup {
	return c.repository.InstanceGroups()
}
