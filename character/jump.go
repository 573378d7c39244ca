package character

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/thirdperson/common"
	"github.com/milk9111/thirdperson/fsm"
)

const (
	phaseNotJumping fsm.ID = iota
	phaseLanding
	phaseJumpSquat
	phaseFalling
)

type jumpSystem struct {
	machine *fsm.Machine[*Character]
}

func newJumpSystem() *jumpSystem {
	return &jumpSystem{
		machine: fsm.New("jump", func(c *Character) *fsm.State { return &c.Next().Jump },
			notJumpingPhase{},
			landingPhase{},
			jumpSquatPhase{},
			fallingPhase{},
		),
	}
}

func (s *jumpSystem) name() string { return s.machine.Name() }
func (s *jumpSystem) setLogging(enabled bool) { s.machine.SetLogging(enabled) }

func (s *jumpSystem) update(c *Character, delta float64) {
	curr := c.Curr()
	next := c.Next()
	air := c.tuning.Air

	if next.CooldownFrames > 0 {
		next.CooldownFrames--
	}

	standing := curr.MainSurface.IsStandable()
	if standing {
		next.CoyoteFrames = air.MaxCoyoteFrames
		next.JumpSurface = curr.PerceivedSurface
	}

	s.machine.Update(c, delta)

	// after the jump check, so the last coyote frame still counts
	if !standing && next.CoyoteFrames > 0 {
		next.CoyoteFrames--
		// coyote ran out without a jump: the ground jump is spent
		if next.CoyoteFrames == 0 && next.Jumps == 0 && len(air.Jumps) > 0 && !s.machine.Is(c, phaseJumpSquat) {
			advanceJumps(c)
		}
	}

	applyGravity(c)
}

// JumpPhase names the active jump phase.
func (c *Character) JumpPhase() string {
	return c.jumpSys.machine.PhaseName(c)
}

// applyGravity adds the tiered gravity. Tunings store gravities; the
// extra tiers are applied as the difference to base gravity.
func applyGravity(c *Character) {
	air := c.tuning.Air
	curr := c.Curr()
	next := c.Next()
	up := next.Up()

	accel := air.Gravity
	vy := curr.Velocity.Dot(up)
	switch {
	case vy > 0 && c.input.IsJumpPressed():
		accel += air.JumpAcceleration()
	case vy < 0 && curr.MainSurface.IsNone():
		accel += air.FallAcceleration()
	}
	next.Force = next.Force.Add(up.Mul(accel))
}

// hasJump reports whether a jump may start this tick.
func hasJump(c *Character) bool {
	jumps := c.tuning.Air.Jumps
	next := c.Next()
	switch {
	case len(jumps) == 0:
		return false
	case next.CooldownFrames > 0:
		return false
	case next.Jumps == 0 && next.CoyoteFrames > 0:
		return true
	}

	t := jumps[next.NextJump.Index]
	return t.Count == 0 || next.NextJump.Count < t.Count
}

// advanceJumps consumes one use of the next jump, moving on to the next
// definition once this one is exhausted.
func advanceJumps(c *Character) {
	jumps := c.tuning.Air.Jumps
	next := c.Next()
	next.NextJump.Count++

	t := jumps[next.NextJump.Index]
	if t.Count > 0 && next.NextJump.Count >= t.Count && next.NextJump.Index < len(jumps)-1 {
		next.NextJump.Index++
		next.NextJump.Count = 0
	}
}

func resetJumps(f *Frame) {
	f.Jumps = 0
	f.NextJump = JumpId{}
}

func currentJumpTuning(c *Character) JumpTuning {
	return c.tuning.Air.Jumps[c.Next().NextJump.Index]
}

// JumpVelocity is the velocity right after a jump launched from v0. Prior
// upward speed is partially kept, downward speed is always cancelled.
func JumpVelocity(v0, dir, up mgl64.Vec3, t JumpTuning, pct float64) mgl64.Vec3 {
	vy := v0.Dot(up)
	loss := 1.0
	if vy > 0 {
		loss = t.UpwardsMomentumLoss
	}
	vy = vy*(1-loss) + t.VerticalSpeed(pct)

	planar := common.ProjectOnPlane(v0, up)
	planar = planar.Mul(1 - t.HorizontalMomentumLoss).Add(common.Normalize(dir).Mul(t.HorizontalSpeed(pct)))
	return planar.Add(up.Mul(vy))
}

func executeJump(c *Character, delta float64) {
	curr := c.Curr()
	next := c.Next()
	t := currentJumpTuning(c)

	dir := common.Planar(c.input.Move())
	if common.IsZero(dir) {
		dir = common.Planar(curr.Forward)
	}
	pct := t.SquatPercent(next.JumpSquatFrame)

	// the force sets velocity rather than adding to it
	v := JumpVelocity(curr.Velocity, dir, next.Up(), t, pct)
	next.Force = next.Force.Add(v.Sub(curr.Velocity).Mul(1 / delta))

	next.Inertia = 0
	next.CoyoteFrames = 0
	next.CooldownFrames = t.CooldownFrames
	next.Jumps++
	next.ActiveJump = next.NextJump
	advanceJumps(c)
	c.Schedule(EventJump)

	c.jumpSys.machine.ChangeTo(c, phaseFalling)
}

type notJumpingPhase struct{}

func (notJumpingPhase) ID() fsm.ID { return phaseNotJumping }
func (notJumpingPhase) Name() string { return "NotJumping" }
func (notJumpingPhase) Enter(*Character) {}
func (notJumpingPhase) Exit(*Character) {}

func (notJumpingPhase) Update(c *Character, delta float64) {
	m := c.jumpSys.machine
	if !c.Curr().MainSurface.IsStandable() {
		m.ChangeToImmediate(c, phaseFalling, delta)
		return
	}

	resetJumps(c.Next())
	if c.input.IsJumpPressedInBuffer(c.tuning.Air.JumpBufferFrames) && hasJump(c) {
		m.ChangeToImmediate(c, phaseJumpSquat, delta)
	}
}

type landingPhase struct{}

func (landingPhase) ID() fsm.ID { return phaseLanding }
func (landingPhase) Name() string { return "Landing" }

func (landingPhase) Enter(c *Character) {
	next := c.Next()
	resetJumps(next)
	next.JumpSurface = Collision{}
	next.IsLanding = true
	if !c.Curr().MainSurface.IsWall() {
		c.Schedule(EventLand)
	}
}

func (landingPhase) Exit(c *Character) {
	c.Next().IsLanding = false
}

func (landingPhase) Update(c *Character, delta float64) {
	m := c.jumpSys.machine
	if !c.Curr().MainSurface.IsStandable() {
		m.ChangeToImmediate(c, phaseFalling, delta)
		return
	}
	if c.input.IsJumpPressedInBuffer(c.tuning.Air.JumpBufferFrames) && hasJump(c) {
		m.ChangeToImmediate(c, phaseJumpSquat, delta)
		return
	}
	if m.Elapsed(c) >= c.tuning.Air.LandingDuration {
		m.ChangeTo(c, phaseNotJumping)
	}
}

type jumpSquatPhase struct{}

func (jumpSquatPhase) ID() fsm.ID { return phaseJumpSquat }
func (jumpSquatPhase) Name() string { return "JumpSquat" }

func (jumpSquatPhase) Enter(c *Character) {
	c.input.ConsumeJump()
	next := c.Next()
	next.IsInJumpSquat = true
	next.JumpSquatFrame = 0
}

func (jumpSquatPhase) Exit(c *Character) {
	next := c.Next()
	next.IsInJumpSquat = false
	next.JumpSquatFrame = -1
}

func (jumpSquatPhase) Update(c *Character, delta float64) {
	next := c.Next()
	if c.Curr().MainSurface.IsStandable() {
		resetJumps(next)
	}

	t := currentJumpTuning(c)
	frame := next.JumpSquatFrame
	if frame >= t.MaxJumpSquatFrames || (!c.input.IsJumpPressed() && frame >= t.MinJumpSquatFrames) {
		executeJump(c, delta)
		return
	}
	next.JumpSquatFrame++
}

type fallingPhase struct{}

func (fallingPhase) ID() fsm.ID { return phaseFalling }
func (fallingPhase) Name() string { return "Falling" }
func (fallingPhase) Enter(*Character) {}
func (fallingPhase) Exit(*Character) {}

func (fallingPhase) Update(c *Character, delta float64) {
	m := c.jumpSys.machine
	curr := c.Curr()
	if curr.MainSurface.IsStandable() && curr.Velocity.Dot(curr.Up()) <= 0 {
		m.ChangeToImmediate(c, phaseLanding, delta)
		return
	}
	if c.input.IsJumpPressedInBuffer(1) && hasJump(c) {
		m.ChangeToImmediate(c, phaseJumpSquat, delta)
	}
}
