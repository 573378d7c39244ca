package character

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/thirdperson/common"
	"github.com/milk9111/thirdperson/curve"
	"github.com/milk9111/thirdperson/fsm"
)

const (
	phaseNotOnSurface fsm.ID = iota
	phaseOnGround
	phaseOnWall
)

type wallSystem struct {
	machine *fsm.Machine[*Character]
}

func newWallSystem() *wallSystem {
	return &wallSystem{
		machine: fsm.New("wall", func(c *Character) *fsm.State { return &c.Next().Wall },
			notOnSurfacePhase{},
			onGroundPhase{},
			onWallPhase{},
		),
	}
}

func (s *wallSystem) name() string { return s.machine.Name() }
func (s *wallSystem) setLogging(enabled bool) { s.machine.SetLogging(enabled) }
func (s *wallSystem) update(c *Character, delta float64) { s.machine.Update(c, delta) }

// WallPhase names the active surface phase.
func (c *Character) WallPhase() string {
	return c.wallSys.machine.PhaseName(c)
}

// surfacePhase maps the main surface onto a wall system phase.
func surfacePhase(c *Character) fsm.ID {
	switch c.Curr().MainSurface.Kind {
	case SurfaceGround:
		return phaseOnGround
	case SurfaceWall:
		return phaseOnWall
	default:
		return phaseNotOnSurface
	}
}

// changeSurface moves to the phase matching the main surface, reporting
// whether it did.
func changeSurface(c *Character, self fsm.ID, delta float64) bool {
	id := surfacePhase(c)
	if id == self {
		return false
	}
	c.wallSys.machine.ChangeToImmediate(c, id, delta)
	return true
}

// transfer converts inertia into speed along the surface. The tangent
// follows the previous surface, and input can skew it.
func transfer(c *Character, delta float64) {
	t := c.tuning.Surface
	prev := c.Prev()
	curr := c.Curr()
	next := c.Next()

	surface := curr.MainSurface
	normal := surface.Normal
	velDir := common.Normalize(curr.Velocity)

	// "up" along the surface, falling back to velocity, then facing
	surfUp := common.Normalize(common.ProjectOnPlane(common.Up, normal))
	if common.IsZero(surfUp) {
		surfUp = velDir
	}
	if common.IsZero(surfUp) {
		surfUp = common.Normalize(common.ProjectOnPlane(curr.Forward, normal))
	}
	surfRight := normal.Cross(surfUp)
	surfFwd := common.Normalize(common.ProjectOnPlane(normal, common.Up)).Mul(-1)

	var tangent mgl64.Vec3
	var angleDelta float64
	prevSurface := prev.MainSurface
	switch {
	case prevSurface.IsNone():
		tangent = velDir
		if common.IsZero(tangent) {
			tangent = surfUp
		}
		// curr.Velocity already slid along the surface; measure the
		// velocity it arrived with
		incoming := prev.Velocity.Add(curr.Force.Mul(delta))
		angleDelta = math.Abs(90 - common.Angle(incoming, normal))
	case !common.Near(prevSurface.Normal, normal, 1e-6):
		tangent = normal.Cross(prevSurface.Normal.Cross(normal))
		angleDelta = common.Angle(prevSurface.Normal, normal)
	default:
		tangent = curr.SurfaceTangent
	}
	next.SurfaceTangent = tangent

	decayScale := 1.0
	if t.InertiaDecayTime > 0 {
		decayScale = 1 - math.Pow(0.01, delta/t.InertiaDecayTime)
	}
	decay := curr.Inertia * math.Min(decayScale, 1)

	input := c.input.Move()
	inputTg := common.Normalize(surfUp.Mul(input.Dot(surfFwd)).Add(surfRight.Mul(input.Dot(surfRight))))
	diAngle := common.SignedAngle(tangent, inputTg, normal)
	diRot := t.TransferDiAngle.Evaluate(math.Abs(diAngle)) * common.Sign(diAngle) * c.input.MoveMagnitude()
	transferTg := common.AngleAxis(diRot, normal, common.Normalize(tangent))

	accel := mgl64.Vec3{}
	if delta > 0 {
		accel = transferTg.Mul(decay * t.TransferScale.Evaluate(angleDelta) / delta)
	}
	accel = accel.Sub(normal.Mul(t.Grip))

	next.Inertia -= decay
	next.Force = next.Force.Add(accel)
}

type notOnSurfacePhase struct{}

func (notOnSurfacePhase) ID() fsm.ID { return phaseNotOnSurface }
func (notOnSurfacePhase) Name() string { return "NotOnSurface" }
func (notOnSurfacePhase) Enter(*Character) {}
func (notOnSurfacePhase) Exit(*Character) {}

func (notOnSurfacePhase) Update(c *Character, delta float64) {
	changeSurface(c, phaseNotOnSurface, delta)
}

type onGroundPhase struct{}

func (onGroundPhase) ID() fsm.ID { return phaseOnGround }
func (onGroundPhase) Name() string { return "OnGround" }
func (onGroundPhase) Enter(*Character) {}
func (onGroundPhase) Exit(*Character) {}

func (onGroundPhase) Update(c *Character, delta float64) {
	if changeSurface(c, phaseOnGround, delta) {
		return
	}
	transfer(c, delta)
}

type onWallPhase struct{}

func (onWallPhase) ID() fsm.ID { return phaseOnWall }
func (onWallPhase) Name() string { return "OnWall" }

func (onWallPhase) Enter(c *Character) {
	next := c.Next()
	next.WallReleasedAt = curve.NotReleased
	if !c.input.IsJumpPressed() {
		next.WallReleasedAt = 0
	}
	c.Schedule(EventWall)
}

func (onWallPhase) Exit(c *Character) {
	c.Next().WallReleasedAt = curve.NotReleased
}

func (onWallPhase) Update(c *Character, delta float64) {
	if changeSurface(c, phaseOnWall, delta) {
		return
	}
	transfer(c, delta)

	next := c.Next()
	normal := c.Curr().MainSurface.Normal
	elapsed := c.wallSys.machine.Elapsed(c)

	held := c.input.IsJumpPressed()
	if !held && next.WallReleasedAt < 0 {
		next.WallReleasedAt = elapsed
	}

	next.Force = next.Force.Add(wallForce(c.tuning, next.Up(), normal, held, elapsed, next.WallReleasedAt))
}

// wallForce is the magnet toward the wall plus the wall gravity tier,
// shaped by the gravity envelope, directed along the wall's up tangent.
func wallForce(t *Tuning, up, normal mgl64.Vec3, held bool, elapsed, releasedAt float64) mgl64.Vec3 {
	tier := t.Wall.HoldGravity
	if held {
		tier = t.Wall.Gravity
	}
	gravity := (tier - t.Air.Gravity) * t.Wall.GravityCurve.Evaluate(elapsed, releasedAt, 1)

	wallUp := common.Normalize(common.ProjectOnPlane(up, normal))
	if common.IsZero(wallUp) {
		wallUp = up
	}
	return wallUp.Mul(gravity).Sub(normal.Mul(t.Wall.Magnet))
}
