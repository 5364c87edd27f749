package model

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/go-gl/mathgl/mgl32"
)

type placement struct {
	pos, scale mgl32.Vec3
	rot        mgl32.Quat
}

func (p placement) Position() mgl32.Vec3 { return p.pos }
func (p placement) Scale() mgl32.Vec3    { return p.scale }
func (p placement) Rotation() mgl32.Quat { return p.rot }

func TestNewMeshValidatesStride(t *testing.T) {
	tests := []struct {
		name     string
		vertices int
		layout   common.Layout
		wantErr  bool
	}{
		{"default layout exact", 16, nil, false},
		{"default layout remainder", 17, nil, true},
		{"custom layout", 9, common.Layout{3}, false},
		{"zero stride", 3, common.Layout{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []MeshBuilderOption
			if tt.layout != nil {
				opts = append(opts, WithLayout(tt.layout))
			}
			m, err := NewMesh(make([]float32, tt.vertices), nil, opts...)
			if tt.wantErr {
				if !errors.Is(err, common.ErrInvalidMesh) {
					t.Fatalf("expected ErrInvalidMesh, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(m.Vertices())%int(m.Layout().Stride()) != 0 {
				t.Errorf("vertex count %d not a multiple of stride %d", len(m.Vertices()), m.Layout().Stride())
			}
			if m.ID() == 0 {
				t.Errorf("expected generated id")
			}
		})
	}
}

func TestNewMeshRejectsOutOfRangeIndex(t *testing.T) {
	_, err := NewMesh(make([]float32, 8), []uint32{0, 1}, WithLayout(common.Layout{3, 3, 2}))
	if !errors.Is(err, common.ErrInvalidMesh) {
		t.Fatalf("expected ErrInvalidMesh, got %v", err)
	}
}

func TestMeshIsImmutable(t *testing.T) {
	verts := []float32{1, 2, 3}
	layout := common.Layout{3}
	m, err := NewMesh(verts, []uint32{0}, WithLayout(layout), WithMeshID(42))
	if err != nil {
		t.Fatal(err)
	}
	verts[0] = 9
	layout[0] = 1
	m.Layout()[0] = 7
	if m.Vertices()[0] != 1 {
		t.Errorf("mesh shares vertex storage with caller")
	}
	if m.Layout()[0] != 3 {
		t.Errorf("mesh layout was modified through a copy")
	}
	if m.ID() != 42 {
		t.Errorf("expected fixed id 42, got %d", m.ID())
	}
}

func TestPrimitives(t *testing.T) {
	tests := []struct {
		name        string
		mesh        Mesh
		vertexCount int
		indexCount  int
		radius      float32
	}{
		{"cube", Cube(), 24, 36, 0.8660254},
		{"quad", Quad(), 4, 6, 1.4142135},
		{"sphere", Sphere(10), 121, 10*10*6 - 2*10*3, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mesh.VertexCount(); got != tt.vertexCount {
				t.Errorf("VertexCount() = %d, want %d", got, tt.vertexCount)
			}
			if got := tt.mesh.IndexCount(); got != tt.indexCount {
				t.Errorf("IndexCount() = %d, want %d", got, tt.indexCount)
			}
			if got := tt.mesh.BoundingRadius(); mgl32.Abs(got-tt.radius) > 1e-4 {
				t.Errorf("BoundingRadius() = %f, want %f", got, tt.radius)
			}
		})
	}
}

func assertGroupInvariant(t *testing.T, g InstanceGroup) {
	t.Helper()
	if want := g.Count() * int(g.Layout().Stride()); len(g.Data()) != want {
		t.Fatalf("len(data) = %d, want count*stride = %d", len(g.Data()), want)
	}
	if len(g.Keys()) != g.Count() {
		t.Fatalf("len(keys) = %d, count = %d", len(g.Keys()), g.Count())
	}
}

func TestInstanceGroupDefaults(t *testing.T) {
	g := NewInstanceGroup(1, 2)
	if !g.Layout().Equal(DefaultInstanceLayout) {
		t.Errorf("expected default layout, got %v", g.Layout())
	}
	if !g.Render() || g.Dynamic() || !g.Shadow() || g.Changed() {
		t.Errorf("unexpected default flags render=%v dynamic=%v shadow=%v changed=%v", g.Render(), g.Dynamic(), g.Shadow(), g.Changed())
	}
	if g.Mesh() != 1 || g.Material() != 2 || g.ID() == 0 {
		t.Errorf("unexpected ids mesh=%d material=%d id=%d", g.Mesh(), g.Material(), g.ID())
	}
}

func TestInstanceGroupLifecycle(t *testing.T) {
	g := NewInstanceGroup(1, 2)
	tr := placement{mgl32.Vec3{1, 2, 3}, mgl32.Vec3{1, 1, 1}, mgl32.QuatIdent()}

	for k := uint64(0); k < 5; k++ {
		if err := g.SubmitTransform(k, tr); err != nil {
			t.Fatalf("submit %d: %v", k, err)
		}
		assertGroupInvariant(t, g)
	}
	if !g.Changed() {
		t.Fatal("expected changed after submit")
	}
	g.Sync()
	assertGroupInvariant(t, g)
	if g.Changed() {
		t.Fatal("expected clean after sync")
	}

	before := g.Count()
	if err := g.SubmitTransform(99, tr); err != nil {
		t.Fatal(err)
	}
	i := g.IndexOf(99)
	if i != before {
		t.Errorf("IndexOf(99) = %d, want %d", i, before)
	}
	moved := placement{mgl32.Vec3{7, 8, 9}, mgl32.Vec3{2, 2, 2}, mgl32.QuatIdent()}
	if err := g.UpdateTransform(99, moved); err != nil {
		t.Fatal(err)
	}
	stride := int(g.Layout().Stride())
	if got := g.Data()[i*stride]; got != 7 {
		t.Errorf("update did not overwrite slot, got x=%f", got)
	}
	if !g.Remove(99) {
		t.Fatal("remove returned false for present key")
	}
	assertGroupInvariant(t, g)
	if g.Count() != before {
		t.Errorf("count = %d after submit/remove, want %d", g.Count(), before)
	}

	g.Sync()
	g.Clear()
	assertGroupInvariant(t, g)
	if g.Count() != 0 || len(g.Data()) != 0 || !g.Changed() {
		t.Errorf("after clear count=%d data=%d changed=%v", g.Count(), len(g.Data()), g.Changed())
	}
}

func TestInstanceGroupRemoveKeepsKeysCoIndexed(t *testing.T) {
	g := NewInstanceGroup(1, 2, WithInstanceLayout(common.Layout{1}))
	for k := uint64(0); k < 4; k++ {
		if err := g.Submit(k, []float32{float32(k)}); err != nil {
			t.Fatal(err)
		}
	}
	g.Remove(1)
	g.Remove(0)
	assertGroupInvariant(t, g)
	for i, k := range g.Keys() {
		if g.Data()[i] != float32(k) {
			t.Errorf("slot %d holds key %d with value %f", i, k, g.Data()[i])
		}
		if g.IndexOf(k) != i {
			t.Errorf("IndexOf(%d) = %d, want %d", k, g.IndexOf(k), i)
		}
	}
}

func TestInstanceGroupErrors(t *testing.T) {
	g := NewInstanceGroup(1, 2, WithInstanceLayout(common.Layout{3, 3, 3, 3}))
	if err := g.Submit(1, make([]float32, 10)); !errors.Is(err, common.ErrInvalidInstanceData) {
		t.Errorf("short submit: expected ErrInvalidInstanceData, got %v", err)
	}
	if err := g.SubmitTransform(1, placement{}); !errors.Is(err, common.ErrInvalidInstanceData) {
		t.Errorf("transform submit on custom layout: expected ErrInvalidInstanceData, got %v", err)
	}
	if err := g.Submit(1, make([]float32, 12)); err != nil {
		t.Fatal(err)
	}
	if err := g.Submit(1, make([]float32, 12)); !errors.Is(err, common.ErrInvalidInstanceData) {
		t.Errorf("duplicate key: expected ErrInvalidInstanceData, got %v", err)
	}
	if err := g.Update(2, make([]float32, 12)); !errors.Is(err, common.ErrLookup) {
		t.Errorf("update missing key: expected ErrLookup, got %v", err)
	}
	if g.Remove(2) {
		t.Errorf("remove of missing key returned true")
	}
	assertGroupInvariant(t, g)
}
