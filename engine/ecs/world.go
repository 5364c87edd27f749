package ecs

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-gl/common"
)

// storeKey identifies the store of component type T without reflection.
type storeKey[T any] struct{}

// World is the top-level ECS container. It owns the entity pool, one store per
// component type, and a deferred destruction queue flushed by the scene each tick.
type World struct {
	mu           *sync.Mutex
	pool         *EntityPool
	stores       map[any]Removable
	destroyQueue []EntityID
}

func NewWorld() *World {
	return &World{
		mu:           &sync.Mutex{},
		pool:         NewEntityPool(),
		stores:       make(map[any]Removable, 16),
		destroyQueue: make([]EntityID, 0, 64),
	}
}

func (w *World) Pool() *EntityPool { return w.pool }

func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// MarkForDestruction queues an entity for end-of-tick cleanup.
func (w *World) MarkForDestruction(id EntityID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.destroyQueue = append(w.destroyQueue, id)
}

// FlushDestroyQueue destroys all queued entities and clears their components.
func (w *World) FlushDestroyQueue() {
	w.mu.Lock()
	queue := w.destroyQueue
	w.destroyQueue = make([]EntityID, 0, cap(queue))
	w.mu.Unlock()

	for _, id := range queue {
		for _, s := range w.stores {
			s.Remove(id)
		}
		w.pool.Destroy(id)
	}
}

// StoreOf returns the store for component type T, creating it on first use.
func StoreOf[T any](w *World) *Store[T] {
	key := storeKey[T]{}
	if s, ok := w.stores[key]; ok {
		return s.(*Store[T])
	}
	s := NewStore[T]()
	w.stores[key] = s
	return s
}

// Attach sets the T component of id, replacing any existing one.
func Attach[T any](w *World, id EntityID, c *T) {
	StoreOf[T](w).Set(id, c)
}

// Detach removes the T component of id.
func Detach[T any](w *World, id EntityID) {
	StoreOf[T](w).Remove(id)
}

// Has reports whether id carries a T component.
func Has[T any](w *World, id EntityID) bool {
	return StoreOf[T](w).Has(id)
}

// Get returns the T component of id, or an error when the entity is dead or lacks it.
func Get[T any](w *World, id EntityID) (*T, error) {
	if !w.Alive(id) {
		return nil, fmt.Errorf("%w: entity %d is not alive", common.ErrLookup, id)
	}
	c, ok := StoreOf[T](w).Get(id)
	if !ok {
		var zero T
		return nil, fmt.Errorf("%w: entity %d has no %T component", common.ErrLookup, id, zero)
	}
	return c, nil
}
