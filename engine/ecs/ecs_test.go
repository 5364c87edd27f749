package ecs

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
)

type position struct{ x, y float32 }
type velocity struct{ dx, dy float32 }
type tag struct{}

func TestEntityPoolGenerations(t *testing.T) {
	p := NewEntityPool()
	a := p.Create()
	if a.IsZero() {
		t.Fatal("first entity must not be the zero id")
	}
	if !p.Alive(a) {
		t.Fatal("created entity is not alive")
	}
	p.Destroy(a)
	if p.Alive(a) {
		t.Fatal("destroyed entity still alive")
	}
	b := p.Create()
	if b.Index() != a.Index() {
		t.Errorf("expected index reuse, got %d and %d", a.Index(), b.Index())
	}
	if b.Generation() == a.Generation() {
		t.Errorf("expected new generation on reuse")
	}
	if p.Alive(a) {
		t.Errorf("stale id reported alive after reuse")
	}
	if p.Len() != 1 {
		t.Errorf("Len() = %d, want 1", p.Len())
	}
}

func TestAttachGet(t *testing.T) {
	w := NewWorld()
	id := w.CreateEntity()
	Attach(w, id, &position{1, 2})

	got, err := Get[position](w, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.x != 1 || got.y != 2 {
		t.Errorf("Get returned %+v", got)
	}
	if _, err := Get[velocity](w, id); !errors.Is(err, common.ErrLookup) {
		t.Errorf("missing component: expected ErrLookup, got %v", err)
	}
	got.x = 5
	again, _ := Get[position](w, id)
	if again.x != 5 {
		t.Errorf("components are not shared by pointer")
	}
}

func TestEachViews(t *testing.T) {
	w := NewWorld()
	for i := 0; i < 10; i++ {
		id := w.CreateEntity()
		Attach(w, id, &position{float32(i), 0})
		if i%2 == 0 {
			Attach(w, id, &velocity{1, 0})
		}
		if i%4 == 0 {
			Attach(w, id, &tag{})
		}
	}

	both := 0
	Each2(StoreOf[position](w), StoreOf[velocity](w), func(EntityID, *position, *velocity) { both++ })
	if both != 5 {
		t.Errorf("Each2 visited %d, want 5", both)
	}

	without := 0
	Each2Without(StoreOf[position](w), StoreOf[velocity](w), StoreOf[tag](w), func(EntityID, *position, *velocity) { without++ })
	if without != 2 {
		t.Errorf("Each2Without visited %d, want 2", without)
	}

	all := 0
	Each3(StoreOf[position](w), StoreOf[velocity](w), StoreOf[tag](w), func(EntityID, *position, *velocity, *tag) { all++ })
	if all != 3 {
		t.Errorf("Each3 visited %d, want 3", all)
	}
}

func TestFlushDestroyQueue(t *testing.T) {
	w := NewWorld()
	id := w.CreateEntity()
	Attach(w, id, &position{})
	w.MarkForDestruction(id)
	if !w.Alive(id) {
		t.Fatal("entity destroyed before flush")
	}
	w.FlushDestroyQueue()
	if w.Alive(id) {
		t.Fatal("entity alive after flush")
	}
	if StoreOf[position](w).Has(id) {
		t.Errorf("component survived destruction")
	}
}
