package ecs

import "github.com/milk9111/thirdperson/character"

// Event is a generic ECS event payload.
type Event struct {
	Type   string
	Entity Entity
	Data   any
}

const EventCharacter = "character"

// CharacterEvent carries the events one character produced in a tick.
type CharacterEvent struct {
	Tick   uint64
	Events character.Events
}

// EventQueue is a simple FIFO queue. Events live until the end of the
// tick they were pushed in.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

func (q *EventQueue) flush() {
	if q == nil {
		return
	}
	q.items = nil
}
