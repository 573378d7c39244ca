package character

import (
	"math"

	"github.com/milk9111/thirdperson/common"
	"github.com/milk9111/thirdperson/fsm"
)

const (
	phaseNotCrouching fsm.ID = iota
	phaseCrouching
)

type crouchSystem struct {
	machine *fsm.Machine[*Character]
}

func newCrouchSystem() *crouchSystem {
	return &crouchSystem{
		machine: fsm.New("crouch", func(c *Character) *fsm.State { return &c.Next().Crouch },
			notCrouchingPhase{},
			crouchingPhase{},
		),
	}
}

func (s *crouchSystem) name() string { return s.machine.Name() }
func (s *crouchSystem) setLogging(enabled bool) { s.machine.SetLogging(enabled) }
func (s *crouchSystem) update(c *Character, delta float64) { s.machine.Update(c, delta) }

type notCrouchingPhase struct{}

func (notCrouchingPhase) ID() fsm.ID { return phaseNotCrouching }
func (notCrouchingPhase) Name() string { return "NotCrouching" }
func (notCrouchingPhase) Exit(*Character) {}

func (notCrouchingPhase) Enter(c *Character) {
	c.Next().IsCrouching = false
}

func (notCrouchingPhase) Update(c *Character, delta float64) {
	next := c.Next()
	m := c.tuning.Movement
	next.IsCrouching = false
	next.SurfaceDrag = m.Drag
	next.SurfaceKineticFriction = m.KineticFriction
	next.SurfaceStaticFriction = m.StaticFriction

	if c.Curr().IsColliding() && c.input.IsCrouchPressed() {
		c.crouchSys.machine.ChangeToImmediate(c, phaseCrouching, delta)
	}
}

type crouchingPhase struct{}

func (crouchingPhase) ID() fsm.ID { return phaseCrouching }
func (crouchingPhase) Name() string { return "Crouching" }

func (crouchingPhase) Enter(c *Character) {
	next := c.Next()
	next.IsCrouching = true
	if c.isStopped() {
		next.CrouchDirection = c.Curr().Forward
	} else {
		next.CrouchDirection = c.Curr().PlanarDirection()
	}
	c.Schedule(EventCrouch)
}

func (crouchingPhase) Exit(c *Character) {
	c.Next().IsCrouching = false
}

func (crouchingPhase) Update(c *Character, delta float64) {
	curr := c.Curr()
	next := c.Next()
	if !curr.IsColliding() || !c.input.IsCrouchPressed() {
		c.crouchSys.machine.ChangeToImmediate(c, phaseNotCrouching, delta)
		return
	}

	t := c.tuning.Crouch
	stopped := c.isStopped()
	next.IsCrouching = true
	next.SurfaceStaticFriction = t.StaticFriction

	dir := next.CrouchDirection
	moveDir := curr.Forward
	if !stopped {
		moveDir = curr.PlanarDirection()
	}
	if moveDir.Dot(dir) < 0 {
		dir = moveDir
	}

	input := c.input.Move()
	if stopped && c.input.HasMove() && input.Dot(dir) < 0 {
		dir = input.Normalize()
	}
	if !common.IsZero(dir) {
		next.CrouchDirection = dir
	}

	dot := 0.0
	if c.input.HasMove() {
		dot = input.Normalize().Dot(next.CrouchDirection)
	}
	mag := math.Abs(dot)
	if dot > 0 {
		next.SurfaceDrag = t.PositiveDrag.Evaluate(mag)
		next.SurfaceKineticFriction = t.PositiveKineticFriction.Evaluate(mag)
	} else {
		next.SurfaceDrag = t.NegativeDrag.Evaluate(mag)
		next.SurfaceKineticFriction = t.NegativeKineticFriction.Evaluate(mag)
	}

	next.Force = next.Force.Add(next.Up().Mul(t.Acceleration))
}
