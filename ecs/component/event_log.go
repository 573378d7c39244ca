package component

import "github.com/milk9111/thirdperson/character"

// EventLog tallies the events a character has produced.
type EventLog struct {
	Counts map[character.Events]int
	Last   character.Events
	// LastTick is the character tick Last was committed on.
	LastTick uint64
}

var EventLogComponent = NewComponent[EventLog]()
