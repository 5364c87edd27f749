package scene

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/component"
	"github.com/Carmen-Shannon/oxy-gl/engine/ecs"
	"github.com/Carmen-Shannon/oxy-gl/engine/light"
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/Carmen-Shannon/oxy-gl/engine/repository"
	"github.com/go-gl/mathgl/mgl32"
)

// PointLightLayout is the per-instance layout of the point-light group: position, scale,
// color and the constant, linear and quadratic attenuation terms.
var PointLightLayout = common.Layout{3, 3, 3, 3}

// DefaultLightEuler is the rotation of the main directional light in degrees.
var DefaultLightEuler = mgl32.Vec3{-45, 0, 0}

// PointLightMeshSegments is the sphere resolution of the point-light volume mesh.
const PointLightMeshSegments = 10

// scene is the implementation of the Scene interface.
type scene struct {
	mu *sync.Mutex

	name       string
	world      *ecs.World
	repository repository.Repository

	mainCamera ecs.EntityID
	mainLight  ecs.EntityID

	pointLightGroup common.AssetID

	camera *camera.Camera
	sun    *light.DirectionalLight
}

// Scene owns the entity store and the asset repository of one renderable world, with a main
// camera entity, a main directional light entity and the instance group of point-light volumes.
//
// Point lights are plain entities with a light.PointLight and a component.Transform. Update
// gathers them into the point-light group, so the lighting pass draws every point light in a
// single instanced call.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// World returns the entity store.
	World() *ecs.World

	// Repository returns the asset repository.
	Repository() repository.Repository

	// MainCamera returns the entity holding the main Camera and its Transform.
	MainCamera() ecs.EntityID

	// MainLight returns the entity holding the main DirectionalLight and its Transform.
	MainLight() ecs.EntityID

	// PointLightGroup returns the AssetID of the point-light instance group.
	PointLightGroup() common.AssetID

	// AddPointLight creates a point-light entity at position.
	//
	// Parameters:
	//   - l: the light
	//   - position: the world position
	//
	// Returns:
	//   - ecs.EntityID: the new entity
	AddPointLight(l *light.PointLight, position mgl32.Vec3) ecs.EntityID

	// Update advances the scene by dt seconds. Entities marked for destruction are destroyed,
	// point lights not yet in the point-light group are submitted and marked with an
	// InstanceRenderer, lights whose transform or properties changed are re-packed and rows
	// of destroyed entities are removed.
	//
	// Parameters:
	//   - dt: the elapsed time in seconds
	//
	// Returns:
	//   - error: an error if the point-light group is missing or rejects a row
	Update(dt float32) error

	// RenderContext returns the view of the scene for one frame.
	RenderContext() RenderContext
}

var _ Scene = &scene{}

// NewScene creates a Scene with its main camera, main light and point-light group.
//
// Parameters:
//   - options: variadic list of SceneBuilderOption functions to configure the Scene
//
// Returns:
//   - Scene: the scene
func NewScene(options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:         &sync.Mutex{},
		world:      ecs.NewWorld(),
		repository: repository.NewRepository(),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.camera == nil {
		s.camera = camera.NewCamera()
	}
	if s.sun == nil {
		s.sun = light.NewDirectionalLight()
	}

	s.mainCamera = s.world.CreateEntity()
	ecs.Attach(s.world, s.mainCamera, s.camera)
	ecs.Attach(s.world, s.mainCamera, component.NewTransform())

	sunTransform := component.NewTransform()
	sunTransform.SetEuler(DefaultLightEuler)
	s.mainLight = s.world.CreateEntity()
	ecs.Attach(s.world, s.mainLight, s.sun)
	ecs.Attach(s.world, s.mainLight, sunTransform)

	volume := model.Sphere(PointLightMeshSegments)
	s.repository.AddMesh(volume)
	group := model.NewInstanceGroup(volume.ID(), 0,
		model.WithInstanceLayout(PointLightLayout),
		model.WithGroupShadow(false),
		model.WithGroupDynamic(true),
	)
	s.pointLightGroup = s.repository.AddInstanceGroup(group)
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) World() *ecs.World {
	return s.world
}

func (s *scene) Repository() repository.Repository {
	return s.repository
}

func (s *scene) MainCamera() ecs.EntityID {
	return s.mainCamera
}

func (s *scene) MainLight() ecs.EntityID {
	return s.mainLight
}

func (s *scene) PointLightGroup() common.AssetID {
	return s.pointLightGroup
}

func (s *scene) AddPointLight(l *light.PointLight, position mgl32.Vec3) ecs.EntityID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.world.CreateEntity()
	ecs.Attach(s.world, id, l)
	ecs.Attach(s.world, id, component.NewTransformAt(position))
	return id
}

func (s *scene) Update(dt float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.world.FlushDestroyQueue()
	return s.updatePointLights()
}

func (s *scene) RenderContext() RenderContext {
	return NewRenderContext(s.world, s.repository, s.mainCamera, s.mainLight)
}

func (s *scene) updatePointLights() error {
	group, err := s.repository.InstanceGroup(s.pointLightGroup)
	if err != nil {
		return fmt.Errorf("point light group: %w", err)
	}

	var stale []uint64
	for _, key := range group.Keys() {
		if !s.world.Alive(ecs.EntityID(key)) {
			stale = append(stale, key)
		}
	}
	for _, key := range stale {
		group.Remove(key)
	}

	lights := ecs.StoreOf[light.PointLight](s.world)
	transforms := ecs.StoreOf[component.Transform](s.world)
	renderers := ecs.StoreOf[component.InstanceRenderer](s.world)

	var added []ecs.EntityID
	var submitErr error
	ecs.Each2Without(lights, transforms, renderers, func(id ecs.EntityID, l *light.PointLight, t *component.Transform) {
		if submitErr != nil {
			return
		}
		if err := group.Submit(uint64(id), packPointLight(l, t)); err != nil {
			submitErr = fmt.Errorf("point light %d: %w", id, err)
			return
		}
		t.ClearChanged()
		added = append(added, id)
	})
	if submitErr != nil {
		return submitErr
	}
	for _, id := range added {
		ecs.Attach(s.world, id, &component.InstanceRenderer{Group: group.ID()})
	}

	var updateErr error
	ecs.Each3(lights, transforms, renderers, func(id ecs.EntityID, l *light.PointLight, t *component.Transform, r *component.InstanceRenderer) {
		if updateErr != nil || r.Group != group.ID() {
			return
		}
		row := packPointLight(l, t)
		if !t.Changed() && rowEqual(storedRow(group, uint64(id)), row) {
			return
		}
		if err := group.Update(uint64(id), row); err != nil {
			updateErr = fmt.Errorf("point light %d: %w", id, err)
			return
		}
		t.ClearChanged()
	})
	return updateErr
}

// packPointLight returns the instance row of a point light in PointLightLayout.
func packPointLight(l *light.PointLight, t *component.Transform) []float32 {
	p, sc := t.Position(), t.Scale()
	return []float32{
		p.X(), p.Y(), p.Z(),
		sc.X(), sc.Y(), sc.Z(),
		l.Color.X(), l.Color.Y(), l.Color.Z(),
		l.Constant, l.Linear, l.Quadratic,
	}
}

// storedRow returns the packed values of key in group, or nil when the key is absent.
func storedRow(group model.InstanceGroup, key uint64) []float32 {
	i := group.IndexOf(key)
	if i < 0 {
		return nil
	}
	stride := int(group.Layout().Stride())
	return group.Data()[i*stride : (i+1)*stride]
}

func rowEqual(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
