package system

import (
	"github.com/milk9111/thirdperson/character"
	"github.com/milk9111/thirdperson/ecs"
	"github.com/milk9111/thirdperson/ecs/component"
)

// EventSystem publishes the events each character committed this tick to
// the world queue and tallies them in its EventLog. It polls after the
// simulation so listeners never touch the world from a parallel step.
type EventSystem struct{}

func NewEventSystem() *EventSystem {
	return &EventSystem{}
}

func (s *EventSystem) Update(w *ecs.World) error {
	if w == nil {
		return nil
	}

	ecs.ForEach2(w, component.CharacterComponent.Kind(), component.EventLogComponent.Kind(), func(e ecs.Entity, ch *component.Character, el *component.EventLog) {
		c := ch.Character
		if c == nil {
			return
		}
		// a paused character keeps its frame; don't count it twice
		tick := c.Ticks()
		if tick == el.LastTick {
			return
		}
		events := c.Committed().Events
		el.LastTick = tick
		el.Last = events
		if events == 0 {
			return
		}

		if el.Counts == nil {
			el.Counts = make(map[character.Events]int)
		}
		for _, ev := range events.Split() {
			el.Counts[ev]++
		}
		w.Events().Push(ecs.Event{
			Type:   ecs.EventCharacter,
			Entity: e,
			Data:   ecs.CharacterEvent{Tick: tick, Events: events},
		})
	})
	return nil
}
