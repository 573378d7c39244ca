package character

import "strings"

// Events is the set of discrete things that happened during a tick.
type Events uint16

const (
	EventJump Events = 1 << iota
	EventLand
	EventIdle
	EventMove
	EventStep
	EventCrouch
	EventWall
)

var eventNames = []struct {
	event Events
	name  string
}{
	{EventJump, "jump"},
	{EventLand, "land"},
	{EventIdle, "idle"},
	{EventMove, "move"},
	{EventStep, "step"},
	{EventCrouch, "crouch"},
	{EventWall, "wall"},
}

func (e Events) Has(o Events) bool {
	return e&o == o
}

// Split lists the single events in e in declaration order.
func (e Events) Split() []Events {
	var out []Events
	for _, n := range eventNames {
		if e.Has(n.event) {
			out = append(out, n.event)
		}
	}
	return out
}

func (e Events) String() string {
	if e == 0 {
		return "none"
	}
	var names []string
	for _, n := range eventNames {
		if e.Has(n.event) {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}

// ParseEvent looks up a single event by name.
func ParseEvent(name string) (Events, bool) {
	for _, n := range eventNames {
		if n.name == name {
			return n.event, true
		}
	}
	return 0, false
}

// Listener is called after a tick that produced events.
type Listener func(c *Character, events Events)
