package character

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/thirdperson/common"
	"github.com/milk9111/thirdperson/fsm"
)

const (
	phaseFrictionNotOnSurface fsm.ID = iota
	phaseFrictionOnSurface
)

type frictionSystem struct {
	machine *fsm.Machine[*Character]
}

func newFrictionSystem() *frictionSystem {
	return &frictionSystem{
		machine: fsm.New("friction", func(c *Character) *fsm.State { return &c.Next().Friction },
			frictionNotOnSurfacePhase{},
			frictionOnSurfacePhase{},
		),
	}
}

func (s *frictionSystem) name() string { return s.machine.Name() }
func (s *frictionSystem) setLogging(enabled bool) { s.machine.SetLogging(enabled) }
func (s *frictionSystem) update(c *Character, delta float64) { s.machine.Update(c, delta) }

// onSurface is true when friction should grip. A jump this tick lets go
// immediately.
func onSurface(c *Character) bool {
	curr := c.Curr()
	return curr.IsColliding() && curr.MainSurface.IsSome() && !c.isScheduled(EventJump)
}

// applyFriction decelerates v0 under acceleration a0 by kinetic friction
// plus quadratic drag. When the deceleration would overshoot, the motion is
// cancelled exactly instead.
func applyFriction(next *Frame, v0, a0 mgl64.Vec3, friction, drag, delta float64) {
	va := v0.Add(a0.Mul(delta))
	if common.IsZero(va) {
		return
	}

	speed := v0.Len()
	decel := va.Normalize().Mul(friction + drag*speed*speed)
	if decel.Mul(delta).LenSqr() >= va.LenSqr() {
		next.Force = next.Force.Sub(a0.Add(v0.Mul(1 / delta)))
		return
	}
	next.Force = next.Force.Sub(decel)
}

type frictionNotOnSurfacePhase struct{}

func (frictionNotOnSurfacePhase) ID() fsm.ID { return phaseFrictionNotOnSurface }
func (frictionNotOnSurfacePhase) Name() string { return "NotOnSurface" }
func (frictionNotOnSurfacePhase) Enter(*Character) {}
func (frictionNotOnSurfacePhase) Exit(*Character) {}

func (frictionNotOnSurfacePhase) Update(c *Character, delta float64) {
	if onSurface(c) {
		c.frictionSys.machine.ChangeToImmediate(c, phaseFrictionOnSurface, delta)
		return
	}

	next := c.Next()
	v0 := c.Curr().PlanarVelocity()
	a0 := common.Planar(next.Force)
	applyFriction(next, v0, a0, 0, c.tuning.Friction.AerialDrag, delta)
}

type frictionOnSurfacePhase struct{}

func (frictionOnSurfacePhase) ID() fsm.ID { return phaseFrictionOnSurface }
func (frictionOnSurfacePhase) Name() string { return "OnSurface" }
func (frictionOnSurfacePhase) Enter(*Character) {}
func (frictionOnSurfacePhase) Exit(*Character) {}

func (frictionOnSurfacePhase) Update(c *Character, delta float64) {
	if !onSurface(c) {
		c.frictionSys.machine.ChangeToImmediate(c, phaseFrictionNotOnSurface, delta)
		return
	}

	curr := c.Curr()
	next := c.Next()
	surface := curr.MainSurface

	friction := next.SurfaceKineticFriction
	if c.isStopped() && !c.input.HasMove() {
		friction = next.SurfaceStaticFriction
	}
	friction *= c.tuning.Friction.SurfaceScale.Evaluate(surface.Angle)

	v0 := common.ProjectOnPlane(curr.Velocity, surface.Normal)
	a0 := common.ProjectOnPlane(next.Force, surface.Normal)
	applyFriction(next, v0, a0, friction, next.SurfaceDrag, delta)
}
