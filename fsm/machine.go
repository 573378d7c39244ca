package fsm

import (
	"fmt"
	"log"
)

// ID identifies a phase within one machine. Zero is a valid phase; each
// machine declares its own enumeration.
type ID uint8

// Phase is one state of a machine. Implementations are usually stateless
// singletons; everything that must survive a tick lives in the context.
type Phase[C any] interface {
	ID() ID
	Name() string
	Enter(c C)
	Update(c C, delta float64)
	Exit(c C)
}

// State is the persisted part of a machine: which phase is active and how
// long it has been active. It is stored in the character frame so history
// rewinds and forced frames restore it.
type State struct {
	Phase   ID
	Elapsed float64
	Frames  int
}

// Machine drives phases for a context type C. The active State is read
// through an accessor so the machine itself holds no per-tick data.
type Machine[C any] struct {
	name    string
	phases  []Phase[C]
	state   func(C) *State
	logging bool

	depth int
}

// maxImmediateDepth bounds chains of ChangeToImmediate within one update.
const maxImmediateDepth = 4

// New builds a machine from its phases. Phase IDs must be unique and dense
// starting at zero.
func New[C any](name string, state func(C) *State, phases ...Phase[C]) *Machine[C] {
	table := make([]Phase[C], len(phases))
	for _, p := range phases {
		id := int(p.ID())
		if id >= len(table) || table[id] != nil {
			panic(fmt.Sprintf("fsm %s: bad phase id %d for %s", name, id, p.Name()))
		}
		table[id] = p
	}
	return &Machine[C]{name: name, phases: table, state: state}
}

func (m *Machine[C]) Name() string { return m.name }

// SetLogging toggles transition logging.
func (m *Machine[C]) SetLogging(enabled bool) {
	m.logging = enabled
}

// Init resets the state to the given phase and enters it.
func (m *Machine[C]) Init(c C, id ID) {
	s := m.state(c)
	*s = State{Phase: id}
	m.lookup(id).Enter(c)
}

func (m *Machine[C]) Phase(c C) ID {
	return m.state(c).Phase
}

func (m *Machine[C]) PhaseName(c C) string {
	return m.lookup(m.state(c).Phase).Name()
}

func (m *Machine[C]) Is(c C, id ID) bool {
	return m.state(c).Phase == id
}

func (m *Machine[C]) Elapsed(c C) float64 {
	return m.state(c).Elapsed
}

// Update advances the phase clock and runs the active phase.
func (m *Machine[C]) Update(c C, delta float64) {
	s := m.state(c)
	s.Elapsed += delta
	s.Frames++
	m.run(c, s.Phase, delta)
}

// ChangeTo exits the active phase and enters id. Changing to the active
// phase is a no-op.
func (m *Machine[C]) ChangeTo(c C, id ID) {
	s := m.state(c)
	if s.Phase == id {
		return
	}

	from := s.Phase
	m.lookup(from).Exit(c)
	s = m.state(c)
	*s = State{Phase: id}
	if m.logging {
		log.Printf("fsm %s: %s -> %s", m.name, m.lookup(from).Name(), m.lookup(id).Name())
	}
	m.lookup(id).Enter(c)
}

// ChangeToImmediate changes phase and runs the new phase's update in the same
// tick. Chains deeper than maxImmediateDepth only change phase.
func (m *Machine[C]) ChangeToImmediate(c C, id ID, delta float64) {
	m.ChangeTo(c, id)
	if m.depth > maxImmediateDepth {
		return
	}
	m.run(c, m.state(c).Phase, delta)
}

func (m *Machine[C]) run(c C, id ID, delta float64) {
	m.depth++
	defer func() { m.depth-- }()
	m.lookup(id).Update(c, delta)
}

func (m *Machine[C]) lookup(id ID) Phase[C] {
	if int(id) >= len(m.phases) {
		panic(fmt.Sprintf("fsm %s: unknown phase %d", m.name, id))
	}
	return m.phases[id]
}
