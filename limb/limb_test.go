package limb

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/thirdperson/character"
	"github.com/milk9111/thirdperson/common"
	"github.com/milk9111/thirdperson/curve"
)

// planeCaster is an infinite floor at y = height.
type planeCaster struct {
	height float64
}

func (p planeCaster) Raycast(src, dir mgl64.Vec3, maxLen float64) (RayHit, bool) {
	if dir[1] >= 0 {
		return RayHit{}, false
	}
	dist := (p.height - src[1]) / dir[1]
	if dist < 0 || dist > maxLen {
		return RayHit{}, false
	}
	return RayHit{Point: src.Add(dir.Mul(dist)), Normal: mgl64.Vec3{0, 1, 0}, Distance: dist}, true
}

func testTuning() *Tuning {
	return &Tuning{
		MinMove:                0.1,
		MaxLength:              curve.FloatRange{Min: 0.2, Max: 0.6},
		MaxLengthCrossScale:    0.5,
		InputScaleReleaseSpeed: 2,
		SearchRangeOnSurface:   0.2,
		SearchRangeNoSurface:   0.5,
		HeldDistanceOnSurface:  0.1,
	}
}

func testFrame() *character.Frame {
	f := &character.Frame{}
	f.SetForward(mgl64.Vec3{0, 0, 1})
	return f
}

func testContext(caster Raycaster) Context {
	return Context{
		Body:       Body{Frame: testFrame(), Caster: caster},
		RootPos:    mgl64.Vec3{0, 1, 0},
		SearchDir:  mgl64.Vec3{0, -1, 0},
		InitialLen: 1.2,
	}
}

func TestFreeFindsPlacement(t *testing.T) {
	cases := []struct {
		name   string
		caster Raycaster
		phase  string
		goal   mgl64.Vec3
	}{
		{"floor_in_reach", planeCaster{height: 0}, "Holding", mgl64.Vec3{0, 0, 0}},
		{"no_floor", nil, "Free", mgl64.Vec3{0, -0.2, 0}},
		{"floor_too_far", planeCaster{height: -5}, "Free", mgl64.Vec3{0, -0.2, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := New("leg", testTuning())
			l.Update(testContext(tc.caster), 1.0/60)
			if l.Phase() != tc.phase {
				t.Fatalf("phase = %s, want %s", l.Phase(), tc.phase)
			}
			if !common.Near(l.GoalPos(), tc.goal, 1e-9) {
				t.Fatalf("goal = %v, want %v", l.GoalPos(), tc.goal)
			}
		})
	}
}

func TestHoldingHysteresis(t *testing.T) {
	cases := []struct {
		name  string
		slide float64
		want  mgl64.Vec3
	}{
		{"below_min_move_stays", 0.05, mgl64.Vec3{0, 0, 0}},
		{"above_min_move_follows", 0.2, mgl64.Vec3{-0.2, 0, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := New("leg", testTuning())
			ctx := testContext(planeCaster{height: 0})
			l.Update(ctx, 1.0/60)
			if !l.IsHeld() {
				t.Fatalf("limb should hold the floor, phase %s", l.Phase())
			}

			l.SetSlideOffset(mgl64.Vec3{tc.slide, 0, 0})
			l.Update(ctx, 1.0/60)
			if !l.IsHeld() {
				t.Fatalf("limb lost its hold, phase %s", l.Phase())
			}
			if !common.Near(l.GoalPos(), tc.want, 1e-9) {
				t.Fatalf("goal = %v, want %v", l.GoalPos(), tc.want)
			}
		})
	}
}

func TestHoldingLosesSurface(t *testing.T) {
	l := New("leg", testTuning())
	ctx := testContext(planeCaster{height: 0})
	l.Update(ctx, 1.0/60)

	ctx.Caster = nil
	l.Update(ctx, 1.0/60)
	if !l.IsFree() {
		t.Fatalf("phase = %s, want Free", l.Phase())
	}
}

func TestPlacementOutOfRange(t *testing.T) {
	l := New("leg", testTuning())
	l.ctx = testContext(planeCaster{height: -0.5})
	p, ok := l.findPlacement(l.ctx.RootPos, l.ctx.SearchDir, 2, 0)
	if !ok || p.Result != CastOutOfRange {
		t.Fatalf("placement = %+v, ok = %v", p, ok)
	}
	if math.Abs(p.Distance-1.5) > 1e-9 {
		t.Fatalf("distance = %v", p.Distance)
	}
}

func TestStridingToggle(t *testing.T) {
	l := New("leg", testTuning())
	ctx := testContext(planeCaster{height: 0})
	l.Update(ctx, 1.0/60)

	l.SetIsStriding(false)
	l.Update(ctx, 1.0/60)
	if l.IsStriding() || !common.Near(l.GoalPos(), mgl64.Vec3{0, -0.2, 0}, 1e-9) {
		t.Fatalf("not striding limb should rest at full length, goal %v", l.GoalPos())
	}

	l.SetIsStriding(true)
	if !l.IsFree() {
		t.Fatalf("re-enabling striding should free the limb, phase %s", l.Phase())
	}
}

func TestLegsAlternate(t *testing.T) {
	cfg := &Config{
		Limb: *testTuning(),
		Legs: LegsTuning{HipHeight: 1, HipWidth: 0.4, Length: 1.2},
	}
	legs := NewLegs(cfg)
	body := Body{Frame: testFrame(), Caster: planeCaster{height: 0}}

	legs.Update(body, 1.0/60)
	if !legs.Left.IsHeld() || !legs.Right.IsHeld() {
		t.Fatalf("both legs should plant: %s %s", legs.Left.Phase(), legs.Right.Phase())
	}

	// both held, so one starts moving
	legs.Update(body, 1.0/60)
	moving := 0
	for _, l := range []*Limb{legs.Left, legs.Right} {
		if l.Phase() == "Moving" {
			moving++
		}
	}
	if moving != 1 {
		t.Fatalf("exactly one leg should stride: %s %s", legs.Left.Phase(), legs.Right.Phase())
	}

	body.Frame.IsCrouching = true
	legs.Update(body, 1.0/60)
	if legs.Left.IsStriding() || legs.Right.IsStriding() {
		t.Fatalf("crouching stops striding")
	}
}

func TestLegsContexts(t *testing.T) {
	legs := NewLegs(&Config{Legs: LegsTuning{HipHeight: 1, HipWidth: 0.4, Length: 1}})
	left, right := legs.Contexts(Body{Frame: testFrame()})
	if !common.Near(left.RootPos, mgl64.Vec3{-0.2, 1, 0}, 1e-12) {
		t.Fatalf("left root = %v", left.RootPos)
	}
	if !common.Near(right.RootPos, mgl64.Vec3{0.2, 1, 0}, 1e-12) {
		t.Fatalf("right root = %v", right.RootPos)
	}
	if left.SearchDir != (mgl64.Vec3{0, -1, 0}) {
		t.Fatalf("search dir = %v", left.SearchDir)
	}
}
