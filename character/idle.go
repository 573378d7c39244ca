package character

import "github.com/milk9111/thirdperson/fsm"

const (
	phaseNotIdle fsm.ID = iota
	phaseIdle
)

type idleSystem struct {
	machine *fsm.Machine[*Character]
}

func newIdleSystem() *idleSystem {
	return &idleSystem{
		machine: fsm.New("idle", func(c *Character) *fsm.State { return &c.Next().Idle },
			notIdlePhase{},
			idlePhase{},
		),
	}
}

func (s *idleSystem) name() string { return s.machine.Name() }
func (s *idleSystem) setLogging(enabled bool) { s.machine.SetLogging(enabled) }
func (s *idleSystem) update(c *Character, delta float64) { s.machine.Update(c, delta) }

func canIdle(c *Character) bool {
	t := c.tuning.Idle
	curr := c.Curr()
	return curr.IsOnGround() &&
		c.input.IsMoveIdle(t.MoveIdleFrames) &&
		curr.Velocity.LenSqr() <= t.SqrSpeedThreshold
}

type notIdlePhase struct{}

func (notIdlePhase) ID() fsm.ID { return phaseNotIdle }
func (notIdlePhase) Name() string { return "NotIdle" }
func (notIdlePhase) Enter(*Character) {}
func (notIdlePhase) Exit(*Character) {}

func (notIdlePhase) Update(c *Character, delta float64) {
	if canIdle(c) {
		c.idleSys.machine.ChangeTo(c, phaseIdle)
	}
}

type idlePhase struct{}

func (idlePhase) ID() fsm.ID { return phaseIdle }
func (idlePhase) Name() string { return "Idle" }

func (idlePhase) Enter(c *Character) {
	c.Schedule(EventIdle)
}

func (idlePhase) Update(c *Character, delta float64) {
	if !canIdle(c) {
		c.idleSys.machine.ChangeTo(c, phaseNotIdle)
		return
	}
	c.Next().IdleTime += delta
}

func (idlePhase) Exit(c *Character) {
	c.Next().IdleTime = 0
	c.Schedule(EventMove)
}
