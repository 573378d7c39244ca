package ecs

import (
	"context"

	"github.com/milk9111/thirdperson/ecs/component"
)

// System updates a world once per tick.
type System interface {
	Update(w *World) error
}

// World owns entities, components, and system order.
type World struct {
	entities  entityStore
	stores    map[component.ComponentID]store
	scheduler Scheduler
	events    EventQueue

	physicsWorld *PhysicsWorld

	// valid during Update
	ctx   context.Context
	delta float64
	ticks uint64
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{stores: make(map[component.ComponentID]store), ctx: context.Background()}
}

func CreateEntity(w *World) Entity {
	return w.entities.create()
}

// DestroyEntity drops e and all of its components. It reports whether e
// was alive.
func DestroyEntity(w *World, e Entity) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	for _, s := range w.stores {
		s.remove(e.id())
	}
	return w.entities.destroy(e)
}

func IsAlive(w *World, e Entity) bool {
	return w != nil && w.entities.isAlive(e)
}

// Entities lists every live entity in id order.
func Entities(w *World) []Entity {
	if w == nil {
		return nil
	}
	return w.entities.all()
}

// AddSystem appends a system to the update order.
func (w *World) AddSystem(s System) {
	w.scheduler.Add(s)
}

// Update runs all systems once. A failing system does not stop the ones
// after it; every error is returned joined.
func (w *World) Update(ctx context.Context, delta float64) error {
	if w == nil {
		return nil
	}
	w.ctx = ctx
	w.delta = delta
	w.ticks++
	err := w.scheduler.Update(w)
	w.events.flush()
	return err
}

// Context is the context of the running Update.
func (w *World) Context() context.Context {
	return w.ctx
}

// Delta is the fixed timestep of the running Update, in seconds.
func (w *World) Delta() float64 {
	return w.delta
}

func (w *World) Ticks() uint64 {
	return w.ticks
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

// SetPhysicsWorld attaches a physics world to this ECS world.
func (w *World) SetPhysicsWorld(pw *PhysicsWorld) {
	if w == nil {
		return
	}
	w.physicsWorld = pw
}

// PhysicsWorld returns the attached physics world, if any.
func (w *World) PhysicsWorld() *PhysicsWorld {
	if w == nil {
		return nil
	}
	return w.physicsWorld
}
