package ecs

import (
	"log"

	"github.com/milk9111/thirdperson/levels"
	"github.com/milk9111/thirdperson/world"
)

// PhysicsWorld owns the level's collision space and the colliders handed
// out to characters, so a level reload can rebind all of them.
type PhysicsWorld struct {
	level     *levels.Level
	space     *world.Space
	colliders []*world.Collider
}

// NewPhysicsWorld creates a physics world for a level.
func NewPhysicsWorld(level *levels.Level) (*PhysicsWorld, error) {
	space, err := world.New(level)
	if err != nil {
		return nil, err
	}
	return &PhysicsWorld{level: level, space: space}, nil
}

// Space returns the collision space. It doubles as the limb raycaster.
func (pw *PhysicsWorld) Space() *world.Space {
	if pw == nil {
		return nil
	}
	return pw.space
}

func (pw *PhysicsWorld) Level() *levels.Level {
	if pw == nil {
		return nil
	}
	return pw.level
}

// Collider hands out a character collider bound to this world.
func (pw *PhysicsWorld) Collider(radius float64) *world.Collider {
	c := pw.space.Collider(radius)
	pw.colliders = append(pw.colliders, c)
	return c
}

// Reload swaps the level geometry between ticks. Existing colliders keep
// working since they share the rebuilt space.
func (pw *PhysicsWorld) Reload(level *levels.Level) error {
	if err := pw.space.Rebuild(level); err != nil {
		return err
	}
	pw.level = level
	log.Printf("physics: reloaded level %q for %d colliders", level.Name, len(pw.colliders))
	return nil
}
