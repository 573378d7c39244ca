package limb

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/thirdperson/common"
)

// Legs drives a pair of limbs so that one strides while the other holds.
type Legs struct {
	Left  *Limb
	Right *Limb

	tuning LegsTuning
}

func NewLegs(cfg *Config) *Legs {
	g := &Legs{
		Left:   New("left-leg", &cfg.Limb),
		Right:  New("right-leg", &cfg.Limb),
		tuning: cfg.Legs,
	}
	g.Left.SetLogging(cfg.Debug)
	g.Right.SetLogging(cfg.Debug)
	return g
}

// SetConfig swaps in a reloaded config.
func (g *Legs) SetConfig(cfg *Config) {
	g.tuning = cfg.Legs
	g.Left.SetTuning(&cfg.Limb)
	g.Right.SetTuning(&cfg.Limb)
	g.Left.SetLogging(cfg.Debug)
	g.Right.SetLogging(cfg.Debug)
}

// Contexts places both hips under the character's committed frame.
func (g *Legs) Contexts(body Body) (left, right Context) {
	f := body.Frame
	up := f.Up()
	hips := f.Position.Add(up.Mul(g.tuning.HipHeight))
	side := up.Cross(f.Forward).Mul(g.tuning.HipWidth / 2)

	base := Context{
		Body:       body,
		SearchDir:  up.Mul(-1),
		InitialLen: g.tuning.Length,
	}
	left, right = base, base
	left.RootPos = hips.Sub(side)
	right.RootPos = hips.Add(side)
	return left, right
}

// Update coordinates the pair and then runs both strides. It reports
// whether either leg completed a step.
func (g *Legs) Update(body Body, delta float64) bool {
	f := body.Frame

	// held legs slide when the character can't keep up with its input
	slide := mgl64.Vec3{}
	v := f.SurfaceVelocity()
	moveMag := common.Clamp01(body.Move.Len())
	if moveMag > 0 && v.Dot(common.Normalize(body.Move)) < g.tuning.SlideThreshold {
		moveDir := common.Normalize(v)
		if common.IsZero(moveDir) {
			moveDir = f.Forward
		}
		slide = moveDir.Mul(moveMag * g.tuning.SlideSpeed * delta)
	}
	g.Left.SetSlideOffset(slide)
	g.Right.SetSlideOffset(slide)

	striding := !f.IsCrouching && !f.IsInJumpSquat
	g.Left.SetIsStriding(striding)
	g.Right.SetIsStriding(striding)

	switch {
	case g.Left.IsFree() != g.Right.IsFree():
		g.Left.Release()
		g.Right.Release()
	case g.Left.IsHeld() && g.Right.IsHeld():
		g.switchLegs()
	}

	left, right := g.Contexts(body)
	g.Left.Update(left, delta)
	g.Right.Update(right, delta)
	return g.Left.Stepped() || g.Right.Stepped()
}

// switchLegs moves whichever leg is farther from its root.
func (g *Legs) switchLegs() {
	move, hold := g.Right, g.Left
	if g.Left.SqrLength() > g.Right.SqrLength() {
		move, hold = g.Left, g.Right
	}
	move.Move(hold)
}
