package system

import (
	"github.com/milk9111/thirdperson/character"
	"github.com/milk9111/thirdperson/ecs"
	"github.com/milk9111/thirdperson/ecs/component"
	"github.com/milk9111/thirdperson/limb"
)

// StrideSystem moves legs after the characters have stepped. A completed
// step is scheduled as a character event and dispatched on the next tick.
type StrideSystem struct{}

func NewStrideSystem() *StrideSystem {
	return &StrideSystem{}
}

func (s *StrideSystem) Update(w *ecs.World) error {
	if w == nil {
		return nil
	}

	var caster limb.Raycaster
	if pw := w.PhysicsWorld(); pw != nil {
		caster = pw.Space()
	}

	ecs.ForEach2(w, component.CharacterComponent.Kind(), component.LegsComponent.Kind(), func(e ecs.Entity, ch *component.Character, legs *component.Legs) {
		c := ch.Character
		if c == nil || legs.Legs == nil || c.IsPaused() {
			return
		}
		body := limb.Body{
			Frame:  c.Committed(),
			Move:   c.Input().Curr().Move,
			Caster: caster,
		}
		if legs.Legs.Update(body, w.Delta()) {
			c.Schedule(character.EventStep)
		}
	})
	return nil
}
