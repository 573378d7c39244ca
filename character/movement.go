package character

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/thirdperson/common"
	"github.com/milk9111/thirdperson/fsm"
)

const (
	phaseNotMoving fsm.ID = iota
	phaseMoving
	phasePivot
	phaseFloating
	phaseSliding
)

type movementSystem struct {
	machine *fsm.Machine[*Character]
}

func newMovementSystem() *movementSystem {
	return &movementSystem{
		machine: fsm.New("movement", func(c *Character) *fsm.State { return &c.Next().Movement },
			notMovingPhase{},
			movingPhase{},
			pivotPhase{},
			floatingPhase{},
			slidingPhase{},
		),
	}
}

func (s *movementSystem) name() string { return s.machine.Name() }
func (s *movementSystem) setLogging(enabled bool) { s.machine.SetLogging(enabled) }
func (s *movementSystem) update(c *Character, delta float64) { s.machine.Update(c, delta) }

// IsPivoting reports whether the character is turning around.
func (c *Character) IsPivoting() bool {
	return c.movementSys.machine.Is(c, phasePivot)
}

// MovementPhase names the active movement phase.
func (c *Character) MovementPhase() string {
	return c.movementSys.machine.PhaseName(c)
}

// groundedPhase picks the phase a grounded character should be in.
func groundedPhase(c *Character) fsm.ID {
	switch {
	case c.Curr().IsCrouching && !c.isStopped():
		return phaseSliding
	case c.input.HasMove() || !c.isStopped():
		return phaseMoving
	default:
		return phaseNotMoving
	}
}

// thrust pushes the character along the surface toward its facing.
func thrust(c *Character, scale float64) {
	curr := c.Curr()
	next := c.Next()
	m := c.tuning.Movement

	accel := common.Project(c.input.Move(), next.Forward).Mul(m.Acceleration * scale)
	if curr.MainSurface.IsSome() {
		accel = alongSurface(accel, curr.MainSurface.Normal)
	}
	next.Force = next.Force.Add(accel)
}

// alongSurface redirects a planar vector onto the surface plane, keeping its
// length.
func alongSurface(v, normal mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l == 0 {
		return v
	}
	return common.Normalize(common.ProjectOnPlane(v, normal)).Mul(l)
}

type notMovingPhase struct{}

func (notMovingPhase) ID() fsm.ID { return phaseNotMoving }
func (notMovingPhase) Name() string { return "NotMoving" }
func (notMovingPhase) Enter(*Character) {}
func (notMovingPhase) Exit(*Character) {}

func (notMovingPhase) Update(c *Character, delta float64) {
	m := c.movementSys.machine
	if !c.isGrounded() {
		m.ChangeToImmediate(c, phaseFloating, delta)
		return
	}
	if id := groundedPhase(c); id != phaseNotMoving {
		m.ChangeToImmediate(c, id, delta)
		return
	}

	// cancel whatever drift is left so we stop exactly
	next := c.Next()
	v := c.Curr().SurfaceVelocity()
	next.Force = next.Force.Sub(v.Mul(1 / delta))
}

type movingPhase struct{}

func (movingPhase) ID() fsm.ID { return phaseMoving }
func (movingPhase) Name() string { return "Moving" }
func (movingPhase) Enter(*Character) {}
func (movingPhase) Exit(*Character) {}

func (movingPhase) Update(c *Character, delta float64) {
	m := c.movementSys.machine
	if !c.isGrounded() {
		m.ChangeToImmediate(c, phaseFloating, delta)
		return
	}
	if id := groundedPhase(c); id != phaseMoving {
		m.ChangeToImmediate(c, id, delta)
		return
	}

	t := c.tuning.Movement
	curr := c.Curr()
	input := c.input.Move()
	if c.input.HasMove() {
		dot := curr.Forward.Dot(input.Normalize())
		if dot < t.PivotStartThreshold && curr.PlanarVelocity().LenSqr() > t.PivotSqrSpeedThreshold {
			m.ChangeToImmediate(c, phasePivot, delta)
			return
		}
		c.turnTowards(input, t.TurnSpeed, delta)
	}

	thrust(c, t.SurfaceScale.Evaluate(curr.MainSurface.Angle))
}

type pivotPhase struct{}

func (pivotPhase) ID() fsm.ID { return phasePivot }
func (pivotPhase) Name() string { return "Pivot" }

func (pivotPhase) Enter(c *Character) {
	next := c.Next()
	next.PivotDirection = common.Normalize(c.input.Move())
	next.PivotFrame = 0
}

func (pivotPhase) Exit(c *Character) {
	c.Next().PivotFrame = -1
}

func (pivotPhase) Update(c *Character, delta float64) {
	m := c.movementSys.machine
	if !c.isGrounded() {
		m.ChangeToImmediate(c, phaseFloating, delta)
		return
	}

	t := c.tuning.Movement
	curr := c.Curr()
	next := c.Next()
	next.PivotFrame++
	if c.input.HasMove() {
		next.PivotDirection = c.input.Move().Normalize()
	}

	if c.isStopped() {
		if c.input.HasMove() {
			m.ChangeToImmediate(c, phaseMoving, delta)
		} else {
			m.ChangeToImmediate(c, phaseNotMoving, delta)
		}
		return
	}

	v := curr.SurfaceVelocity()
	dir := v.Normalize()
	if common.Planar(dir).Dot(next.PivotDirection) >= t.PivotStartThreshold {
		m.ChangeToImmediate(c, phaseMoving, delta)
		return
	}

	c.turnTowards(next.PivotDirection, t.PivotSpeed, delta)

	decel := math.Min(v.Len()/delta, t.PivotDeceleration())
	next.Force = next.Force.Sub(dir.Mul(decel))
}

type floatingPhase struct{}

func (floatingPhase) ID() fsm.ID { return phaseFloating }
func (floatingPhase) Name() string { return "Floating" }
func (floatingPhase) Enter(*Character) {}
func (floatingPhase) Exit(*Character) {}

func (floatingPhase) Update(c *Character, delta float64) {
	if c.isGrounded() {
		c.movementSys.machine.ChangeToImmediate(c, groundedPhase(c), delta)
		return
	}

	t := c.tuning.Movement
	next := c.Next()
	next.Force = next.Force.Add(c.input.Move().Mul(t.AerialDriftAcceleration))
	if c.input.IsCrouchPressed() {
		c.turnTowards(c.input.Move(), t.AirTurnSpeed, delta)
	}
}

type slidingPhase struct{}

func (slidingPhase) ID() fsm.ID { return phaseSliding }
func (slidingPhase) Name() string { return "Sliding" }
func (slidingPhase) Enter(*Character) {}
func (slidingPhase) Exit(*Character) {}

func (slidingPhase) Update(c *Character, delta float64) {
	m := c.movementSys.machine
	if !c.isGrounded() {
		m.ChangeToImmediate(c, phaseFloating, delta)
		return
	}
	if id := groundedPhase(c); id != phaseSliding {
		m.ChangeToImmediate(c, id, delta)
		return
	}

	curr := c.Curr()
	next := c.Next()
	crouch := c.tuning.Crouch
	input := c.input.Move()

	// steer sideways relative to the slide, harder the faster we slide
	along := math.Abs(curr.SurfaceVelocity().Dot(curr.CrouchDirection))
	lateral := input.Sub(common.Project(input, curr.CrouchDirection))
	steer := 1.0
	if crouch.LateralMaxSpeed > 0 {
		steer = common.Clamp01(along / crouch.LateralMaxSpeed)
	}
	accel := lateral.Mul(c.tuning.Movement.Acceleration * steer)
	if curr.MainSurface.IsSome() {
		accel = alongSurface(accel, curr.MainSurface.Normal)
	}
	next.Force = next.Force.Add(accel)

	c.turnTowards(input, crouch.TurnSpeed, delta)
}
