package scene

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/component"
	"github.com/Carmen-Shannon/oxy-gl/engine/ecs"
	"github.com/Carmen-Shannon/oxy-gl/engine/light"
	"github.com/go-gl/mathgl/mgl32"
)

func TestNewScene(t *testing.T) {
	s := NewScene(WithName("test"))
	if s.Name() != "test" {
		t.Errorf("expected name test, got %s", s.Name())
	}

	ctx := s.RenderContext()
	if _, _, err := ctx.Camera(); err != nil {
		t.Fatalf("camera: %v", err)
	}
	_, lt, err := ctx.DirectionalLight()
	if err != nil {
		t.Fatalf("directional light: %v", err)
	}
	if lt.Front().Y() >= 0 {
		t.Errorf("expected the main light to point down, got %v", lt.Front())
	}

	group, err := s.Repository().InstanceGroup(s.PointLightGroup())
	if err != nil {
		t.Fatalf("point light group: %v", err)
	}
	if group.Material() != 0 || group.Shadow() {
		t.Errorf("expected an unlit shadowless group, got material %d shadow %v", group.Material(), group.Shadow())
	}
	if group.Layout().Stride() != 12 {
		t.Errorf("expected stride 12, got %d", group.Layout().Stride())
	}
	if _, err := s.Repository().Mesh(group.Mesh()); err != nil {
		t.Errorf("expected the volume mesh in the repository: %v", err)
	}
}

func TestUpdatePointLights(t *testing.T) {
	s := NewScene()
	l := light.NewPointLight(light.WithColor(mgl32.Vec3{1, 0.5, 0.25}))
	id := s.AddPointLight(l, mgl32.Vec3{1, 2, 3})

	if err := s.Update(0.016); err != nil {
		t.Fatalf("update: %v", err)
	}
	group, _ := s.Repository().InstanceGroup(s.PointLightGroup())
	if group.Count() != 1 {
		t.Fatalf("expected 1 point light, got %d", group.Count())
	}
	r, err := ecs.Get[component.InstanceRenderer](s.World(), id)
	if err != nil || r.Group != group.ID() {
		t.Fatalf("expected an InstanceRenderer on the light: %v", err)
	}
	expect := []float32{1, 2, 3, 1, 1, 1, 1, 0.5, 0.25, light.DefaultConstant, light.DefaultLinear, light.DefaultQuadratic}
	for i, v := range group.Data() {
		if v != expect[i] {
			t.Errorf("value %d: expected %v, got %v", i, expect[i], v)
		}
	}

	group.Sync()
	if err := s.Update(0.016); err != nil {
		t.Fatalf("update: %v", err)
	}
	if group.Count() != 1 || group.Changed() {
		t.Errorf("expected a second update to leave the group untouched")
	}

	tr, _ := ecs.Get[component.Transform](s.World(), id)
	tr.SetPosition(mgl32.Vec3{4, 5, 6})
	if err := s.Update(0.016); err != nil {
		t.Fatalf("update: %v", err)
	}
	if !group.Changed() || group.Data()[0] != 4 {
		t.Errorf("expected the moved light re-packed, got %v", group.Data()[:3])
	}
}

func TestUpdateRepacksLightProperties(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(l *light.PointLight)
		index  int
		expect float32
	}{
		{"color", func(l *light.PointLight) { l.Color = mgl32.Vec3{0, 1, 0} }, 6, 0},
		{"linear", func(l *light.PointLight) { l.Linear = 0.5 }, 10, 0.5},
		{"quadratic", func(l *light.PointLight) { l.Quadratic = 0.25 }, 11, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScene()
			l := light.NewPointLight(light.WithColor(mgl32.Vec3{1, 1, 1}))
			s.AddPointLight(l, mgl32.Vec3{1, 2, 3})
			if err := s.Update(0); err != nil {
				t.Fatalf("update: %v", err)
			}
			group, _ := s.Repository().InstanceGroup(s.PointLightGroup())
			group.Sync()

			tt.mutate(l)
			if err := s.Update(0); err != nil {
				t.Fatalf("update: %v", err)
			}
			if !group.Changed() {
				t.Fatalf("expected the group marked changed")
			}
			if got := group.Data()[tt.index]; got != tt.expect {
				t.Errorf("value %d: expected %v, got %v", tt.index, tt.expect, got)
			}
			if got := group.Data()[0]; got != 1 {
				t.Errorf("expected position kept, got %v", got)
			}
		})
	}
}

func TestUpdateRemovesDestroyedLights(t *testing.T) {
	s := NewScene()
	a := s.AddPointLight(light.NewPointLight(), mgl32.Vec3{})
	b := s.AddPointLight(light.NewPointLight(), mgl32.Vec3{1, 0, 0})
	if err := s.Update(0); err != nil {
		t.Fatalf("update: %v", err)
	}
	s.World().MarkForDestruction(a)
	if err := s.Update(0); err != nil {
		t.Fatalf("update: %v", err)
	}
	group, _ := s.Repository().InstanceGroup(s.PointLightGroup())
	if group.Count() != 1 || group.IndexOf(uint64(b)) != 0 {
		t.Errorf("expected only light b left, got count %d", group.Count())
	}
}

func TestUpdateMissingGroup(t *testing.T) {
	s := NewScene()
	s.Repository().RemoveInstanceGroup(s.PointLightGroup())
	if err := s.Update(0); !errors.Is(err, common.ErrLookup) {
		t.Errorf("expected ErrLookup, got %v", err)
	}
}

func TestRenderContextLookupErrors(t *testing.T) {
	s := NewScene()
	ctx := NewRenderContext(s.World(), s.Repository(), s.MainLight(), s.MainCamera())
	if _, _, err := ctx.Camera(); !errors.Is(err, common.ErrLookup) {
		t.Errorf("expected ErrLookup for a camera lookup on the light entity, got %v", err)
	}
	if _, _, err := ctx.DirectionalLight(); !errors.Is(err, common.ErrLookup) {
		t.Errorf("expected ErrLookup, got %v", err)
	}
}

func TestEachMeshRenderer(t *testing.T) {
	s := NewScene()
	for i := 0; i < 3; i++ {
		id := s.World().CreateEntity()
		ecs.Attach(s.World(), id, component.NewMeshRenderer(1, 1))
		ecs.Attach(s.World(), id, component.NewTransform())
	}
	orphan := s.World().CreateEntity()
	ecs.Attach(s.World(), orphan, component.NewMeshRenderer(1, 1))

	n := 0
	s.RenderContext().EachMeshRenderer(func(ecs.EntityID, *component.MeshRenderer, *component.Transform) { n++ })
	if n != 3 {
		t.Errorf("expected 3 renderers, got %d", n)
	}
}
