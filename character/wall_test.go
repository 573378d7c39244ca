package character

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/thirdperson/common"
	"github.com/milk9111/thirdperson/curve"
)

// wallCollider is a vertical wall at x facing -x, with nothing else around.
type wallCollider struct {
	x float64
}

func (w *wallCollider) Move(pos, vel, up mgl64.Vec3, delta float64) MoveResult {
	p := pos.Add(vel.Mul(delta))
	if p[0] < w.x-1e-6 {
		return MoveResult{Position: p, Velocity: vel}
	}
	p[0] = w.x
	if vel[0] > 0 {
		vel[0] = 0
	}
	return MoveResult{
		Position: p,
		Velocity: vel,
		Contacts: []Contact{{Normal: mgl64.Vec3{-1, 0, 0}, Point: p, Source: SourceMove}},
	}
}

func newWallCharacter(t *testing.T, tuning *Tuning, collider Collider, pos, vel mgl64.Vec3) *Character {
	t.Helper()
	c, err := New(tuning, collider, pos, mgl64.Vec3{0, 0, 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f := *c.Committed()
	f.Velocity = vel
	c.ForceState(f)
	return c
}

func TestWallForce(t *testing.T) {
	tuning := &Tuning{
		Air: AirTuning{Gravity: -30},
		Wall: WallTuning{
			Gravity:     -10,
			HoldGravity: -4,
			Magnet:      2,
			GravityCurve: curve.AdsrCurve{
				Sustain:      1,
				MaxScale:     2,
				HoldDuration: 0.5,
				Attack:       curve.DurationCurve{Duration: 0.5},
				Decay:        curve.DurationCurve{Duration: 1},
				Release:      curve.DurationCurve{Duration: 0.5},
			},
		},
	}
	up := mgl64.Vec3{0, 1, 0}
	wall := mgl64.Vec3{-1, 0, 0}
	slanted := mgl64.Vec3{-2, 1, 0}.Normalize()
	s5 := math.Sqrt(5)

	tests := []struct {
		name       string
		normal     mgl64.Vec3
		held       bool
		elapsed    float64
		releasedAt float64
		want       mgl64.Vec3
	}{
		{"held_hold", wall, true, 0.75, curve.NotReleased, mgl64.Vec3{2, 40, 0}},
		{"not_held_hold", wall, false, 0.75, curve.NotReleased, mgl64.Vec3{2, 52, 0}},
		{"held_attack", wall, true, 0.25, curve.NotReleased, mgl64.Vec3{2, 20, 0}},
		{"held_decay", wall, true, 1.5, curve.NotReleased, mgl64.Vec3{2, 30, 0}},
		{"held_sustain", wall, true, 3, curve.NotReleased, mgl64.Vec3{2, 20, 0}},
		{"releasing", wall, false, 1, 0.75, mgl64.Vec3{2, 26, 0}},
		{"released", wall, false, 2, 0.75, mgl64.Vec3{2, 0, 0}},
		{"slanted_wall", slanted, true, 3, curve.NotReleased, mgl64.Vec3{24 / s5, 38 / s5, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wallForce(tuning, up, tt.normal, tt.held, tt.elapsed, tt.releasedAt)
			if !common.Near(got, tt.want, 1e-9) {
				t.Fatalf("force = %v, want %v", got, tt.want)
			}
			// only the magnet pushes into the wall
			if into := got.Dot(tt.normal); math.Abs(into+tuning.Wall.Magnet) > 1e-9 {
				t.Fatalf("force along normal = %v, want %v", into, -tuning.Wall.Magnet)
			}
		})
	}
}

func TestTransfer(t *testing.T) {
	wall := NewCollision(mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{}, SourceMove)
	ground := NewCollision(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{}, SourceMove)

	tests := []struct {
		name        string
		prevSurface Collision
		prevVel     mgl64.Vec3
		currVel     mgl64.Vec3
		currTangent mgl64.Vec3
		inertia     float64
		move        mgl64.Vec3
		wantForce   mgl64.Vec3
		wantTangent mgl64.Vec3
	}{
		{
			name:        "from_air_head_on",
			prevVel:     mgl64.Vec3{6, 0, 0},
			inertia:     6,
			wantForce:   mgl64.Vec3{0, 360, 0},
			wantTangent: mgl64.Vec3{0, 1, 0},
		},
		{
			name:        "from_air_glancing",
			prevVel:     mgl64.Vec3{3, 0, 3},
			currVel:     mgl64.Vec3{0, 0, 3},
			inertia:     3,
			wantForce:   mgl64.Vec3{0, 0, 90},
			wantTangent: mgl64.Vec3{0, 0, 1},
		},
		{
			name:        "input_skews_tangent",
			prevVel:     mgl64.Vec3{6, 0, 0},
			inertia:     6,
			move:        mgl64.Vec3{0, 0, -1},
			wantForce:   mgl64.Vec3{0, 0, -360},
			wantTangent: mgl64.Vec3{0, 1, 0},
		},
		{
			name:        "surface_changed",
			prevSurface: ground,
			inertia:     2,
			wantForce:   mgl64.Vec3{0, 120, 0},
			wantTangent: mgl64.Vec3{0, 1, 0},
		},
		{
			name:        "same_surface",
			prevSurface: wall,
			currTangent: mgl64.Vec3{0, 0, 1},
			inertia:     2,
			wantForce:   mgl64.Vec3{},
			wantTangent: mgl64.Vec3{0, 0, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tuning := testTuning()
			tuning.Surface.InertiaDecayTime = 0
			tuning.Surface.TransferScale = curve.MapCurve{
				Src: curve.FloatRange{Min: 0, Max: 90},
				Dst: curve.FloatRange{Min: 0, Max: 1},
			}
			tuning.Surface.TransferDiAngle = curve.MapCurve{
				Src: curve.FloatRange{Min: 0, Max: 180},
				Dst: curve.FloatRange{Min: 0, Max: 180},
			}
			c := newWallCharacter(t, tuning, nil, mgl64.Vec3{}, mgl64.Vec3{})

			prev := c.Prev()
			prev.MainSurface = tt.prevSurface
			prev.Velocity = tt.prevVel

			curr := c.Curr()
			curr.MainSurface = wall
			curr.Velocity = tt.currVel
			curr.SurfaceTangent = tt.currTangent
			curr.Inertia = tt.inertia

			next := c.Next()
			*next = *curr
			next.Force = mgl64.Vec3{}

			c.Input().Push(InputFrame{Move: tt.move})
			transfer(c, dt)

			if !common.Near(next.Force, tt.wantForce, 1e-6) {
				t.Fatalf("force = %v, want %v", next.Force, tt.wantForce)
			}
			if !common.Near(next.SurfaceTangent, tt.wantTangent, 1e-9) {
				t.Fatalf("tangent = %v, want %v", next.SurfaceTangent, tt.wantTangent)
			}
			if math.Abs(next.Inertia) > 1e-9 {
				t.Fatalf("inertia = %v, want 0", next.Inertia)
			}
		})
	}
}

func TestWallContactEvents(t *testing.T) {
	tests := []struct {
		name     string
		collider Collider
		pos      mgl64.Vec3
		vel      mgl64.Vec3
		want     Events
		notWant  Events
	}{
		{"wall", &wallCollider{x: 0.5}, mgl64.Vec3{}, mgl64.Vec3{5, 0, 0}, EventWall, EventLand},
		{"floor", &floorCollider{}, mgl64.Vec3{0, 0.5, 0}, mgl64.Vec3{}, EventLand, EventWall},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tuning := testTuning()
			tuning.Wall.Magnet = 1
			c := newWallCharacter(t, tuning, tt.collider, tt.pos, tt.vel)

			var got Events
			c.OnEvent(func(_ *Character, e Events) { got |= e })
			for i := 0; i < 30; i++ {
				step(t, c, InputFrame{})
			}

			if !got.Has(tt.want) {
				t.Fatalf("events = %v, missing %v", got, tt.want)
			}
			if got.Has(tt.notWant) {
				t.Fatalf("events = %v, unexpected %v", got, tt.notWant)
			}
		})
	}
}

func TestWallSlowsDescent(t *testing.T) {
	tuning := testTuning()
	tuning.Surface.TransferScale = curve.MapCurve{Curve: curve.Constant(0), Dst: curve.FloatRange{Min: 0, Max: 1}}
	tuning.Wall = WallTuning{
		Gravity:     -5,
		HoldGravity: -5,
		Magnet:      1,
		GravityCurve: curve.AdsrCurve{
			Sustain:  1,
			MaxScale: 1,
			Release:  curve.DurationCurve{Curve: curve.Constant(0)},
		},
	}

	fall := func(collider Collider) (float64, *Character) {
		c := newWallCharacter(t, tuning, collider, mgl64.Vec3{}, mgl64.Vec3{5, 0, 0})
		for i := 0; i < 30; i++ {
			step(t, c, InputFrame{})
		}
		return c.Committed().Velocity[1], c
	}

	free, _ := fall(nil)
	slid, c := fall(&wallCollider{x: 0.5})

	if c.WallPhase() != "OnWall" {
		t.Fatalf("wall phase = %s, want OnWall", c.WallPhase())
	}
	if free > -10 {
		t.Fatalf("free fall vy = %v", free)
	}
	if slid < free/2 {
		t.Fatalf("wall vy = %v, free fall vy = %v", slid, free)
	}
}

func TestJumpSquatCharge(t *testing.T) {
	tests := []struct {
		name      string
		hold      int
		wantVert  float64
		wantHoriz float64
	}{
		{"tap", 1, 4, 2},
		{"half", 2, 6, 4},
		{"full", 10, 18, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tuning := testTuning()
			tuning.Air.Jumps = []JumpTuning{{
				Count:                1,
				MaxJumpSquatFrames:   4,
				VerticalMinSpeed:     2,
				VerticalMaxSpeed:     18,
				VerticalSpeedCurve:   curve.New([2]float64{0, 0}, [2]float64{0.5, 0.25}, [2]float64{1, 1}),
				HorizontalMinSpeed:   0,
				HorizontalMaxSpeed:   8,
				HorizontalSpeedCurve: curve.Linear(),
			}}
			c := newTestCharacter(t, tuning, &floorCollider{})
			settle(t, c)

			jumped := false
			for i := 0; i < 12 && !jumped; i++ {
				step(t, c, InputFrame{Jump: i < tt.hold})
				jumped = c.Committed().Events.Has(EventJump)
			}
			if !jumped {
				t.Fatalf("no jump after holding %d ticks", tt.hold)
			}

			// base gravity acts on the launch tick
			v := c.Committed().Velocity
			if want := tt.wantVert + tuning.Air.Gravity*dt; math.Abs(v[1]-want) > 0.25 {
				t.Fatalf("vertical speed = %v, want %v", v[1], want)
			}
			if math.Abs(v[2]-tt.wantHoriz) > 0.25 {
				t.Fatalf("horizontal speed = %v, want %v", v[2], tt.wantHoriz)
			}
		})
	}
}
