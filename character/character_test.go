package character

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/thirdperson/common"
)

const dt = 1.0 / 60

// floorCollider is an infinite floor at y = 0 that can be switched off.
type floorCollider struct {
	off bool
}

func (f *floorCollider) Move(pos, vel, up mgl64.Vec3, delta float64) MoveResult {
	p := pos.Add(vel.Mul(delta))
	if f.off || p[1] > 1e-6 {
		return MoveResult{Position: p, Velocity: vel}
	}
	p[1] = 0
	if vel[1] < 0 {
		vel[1] = 0
	}
	return MoveResult{
		Position: p,
		Velocity: vel,
		Contacts: []Contact{{Normal: up, Point: mgl64.Vec3{p[0], 0, p[2]}, Source: SourceMove}},
	}
}

func testTuning() *Tuning {
	return &Tuning{
		InputBufferFrames: 30,
		Movement: MovementTuning{
			Acceleration:            30,
			Drag:                    0.25,
			KineticFriction:         5,
			StaticFriction:          10,
			MinSpeed:                0.05,
			TurnSpeed:               720,
			PivotSpeed:              1440,
			AirTurnSpeed:            360,
			TimeToPivot:             0.2,
			PivotStartThreshold:     0,
			PivotSqrSpeedThreshold:  1,
			AerialDriftAcceleration: 5,
		},
		Friction: FrictionTuning{AerialDrag: 0.01},
		Air: AirTuning{
			Gravity:          -30,
			JumpGravity:      -20,
			FallGravity:      -40,
			JumpBufferFrames: 6,
			MaxCoyoteFrames:  5,
			LandingDuration:  0.1,
			Jumps: []JumpTuning{{
				Count:               1,
				VerticalMinSpeed:    10,
				VerticalMaxSpeed:    10,
				UpwardsMomentumLoss: 0.5,
			}},
		},
		Surface: SurfaceTuning{
			GroundAngle:            45,
			CeilingAngle:           135,
			InertiaDecayTime:       0.1,
			PerceptionAngularSpeed: 360,
			PerceptionLingerFrames: 3,
		},
		Crouch: CrouchTuning{StaticFriction: 20},
		Idle:   IdleTuning{SqrSpeedThreshold: 0.01, MoveIdleFrames: 5},
		Tilt:   TiltTuning{TiltForBaseAcceleration: 10, MaxTilt: 20, Smoothing: 10},
	}
}

func newTestCharacter(t *testing.T, tuning *Tuning, floor *floorCollider) *Character {
	t.Helper()
	c, err := New(tuning, floor, mgl64.Vec3{}, mgl64.Vec3{0, 0, 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func step(t *testing.T, c *Character, in InputFrame) {
	t.Helper()
	c.Input().Push(in)
	if err := c.Step(dt); err != nil {
		t.Fatalf("Step: %v", err)
	}
}

func settle(t *testing.T, c *Character) {
	t.Helper()
	for i := 0; i < 20; i++ {
		step(t, c, InputFrame{})
	}
}

func TestNewRejectsZeroForward(t *testing.T) {
	_, err := New(testTuning(), nil, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0})
	if !errors.Is(err, ErrZeroForward) {
		t.Fatalf("err = %v, want ErrZeroForward", err)
	}
}

func TestDragEquilibrium(t *testing.T) {
	tuning := testTuning()
	c := newTestCharacter(t, tuning, &floorCollider{})
	settle(t, c)

	for i := 0; i < 600; i++ {
		step(t, c, InputFrame{Move: mgl64.Vec3{0, 0, 1}})
	}

	want := tuning.Movement.MaxPlanarSpeed()
	if want != 10 {
		t.Fatalf("MaxPlanarSpeed = %v, want 10", want)
	}
	got := c.Committed().PlanarVelocity().Len()
	if !mgl64.FloatEqualThreshold(got, want, 1e-6) {
		t.Fatalf("planar speed = %v, want %v", got, want)
	}
	if c.MovementPhase() != "Moving" {
		t.Fatalf("movement phase = %s", c.MovementPhase())
	}
}

func TestNotMovingStops(t *testing.T) {
	c := newTestCharacter(t, testTuning(), &floorCollider{})
	settle(t, c)
	for i := 0; i < 30; i++ {
		step(t, c, InputFrame{Move: mgl64.Vec3{1, 0, 0}})
	}
	for i := 0; i < 240; i++ {
		step(t, c, InputFrame{})
	}
	if v := c.Committed().PlanarVelocity(); v.Len() > 1e-9 {
		t.Fatalf("velocity should be zero, got %v", v)
	}
	if c.MovementPhase() != "NotMoving" {
		t.Fatalf("movement phase = %s", c.MovementPhase())
	}
	if !c.Committed().IsIdle() {
		t.Fatalf("a stopped character without input should be idle")
	}
}

func TestCoyoteTime(t *testing.T) {
	for n := 1; n <= 6; n++ {
		floor := &floorCollider{}
		c := newTestCharacter(t, testTuning(), floor)
		settle(t, c)

		// tick T: the last tick whose systems still see ground
		floor.off = true
		step(t, c, InputFrame{})
		for i := 1; i < n; i++ {
			step(t, c, InputFrame{})
		}
		step(t, c, InputFrame{Jump: true})

		jumped := c.Committed().Events.Has(EventJump)
		if want := n <= 5; jumped != want {
			t.Fatalf("jump at T+%d: jumped = %v, want %v", n, jumped, want)
		}
	}
}

func TestJumpBufferedBeforeLanding(t *testing.T) {
	c := newTestCharacter(t, testTuning(), &floorCollider{})
	settle(t, c)

	var jumps, lands int
	c.OnEvent(func(_ *Character, e Events) {
		if e.Has(EventJump) {
			jumps++
		}
		if e.Has(EventLand) {
			lands++
		}
	})

	step(t, c, InputFrame{Jump: true})
	if jumps != 1 {
		t.Fatalf("ground jump did not fire")
	}

	// press once just before touching down; the only jump is spent so it
	// has to wait for the landing
	pressed := false
	for i := 0; i < 120; i++ {
		f := c.Committed()
		in := InputFrame{}
		if !pressed && f.Velocity[1] < 0 && f.Position[1] < 0.3 {
			in.Jump = true
			pressed = true
		}
		step(t, c, in)
		if pressed && lands == 0 && jumps > 1 {
			t.Fatalf("jumped in the air without a jump left")
		}
	}
	if !pressed || lands == 0 || jumps != 2 {
		t.Fatalf("pressed = %v, lands = %d, jumps = %d", pressed, lands, jumps)
	}
}

func TestJumpVelocityMomentum(t *testing.T) {
	jt := JumpTuning{VerticalMinSpeed: 8, VerticalMaxSpeed: 8, UpwardsMomentumLoss: 0.5, HorizontalMomentumLoss: 0.25, HorizontalMinSpeed: 2, HorizontalMaxSpeed: 2}
	up := mgl64.Vec3{0, 1, 0}
	cases := []struct {
		name string
		v0   mgl64.Vec3
		want mgl64.Vec3
	}{
		{"rising_keeps_half", mgl64.Vec3{0, 3, 0}, mgl64.Vec3{0, 1.5 + 8, 2}},
		{"falling_is_cancelled", mgl64.Vec3{0, -3, 0}, mgl64.Vec3{0, 8, 2}},
		{"planar_loses_a_quarter", mgl64.Vec3{4, 0, 0}, mgl64.Vec3{3, 8, 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := JumpVelocity(tc.v0, mgl64.Vec3{0, 0, 1}, up, jt, 1)
			if !common.Near(got, tc.want, 1e-12) {
				t.Fatalf("JumpVelocity(%v) = %v, want %v", tc.v0, got, tc.want)
			}
		})
	}
}

func TestJumpSequence(t *testing.T) {
	tuning := testTuning()
	tuning.Air.Jumps = []JumpTuning{
		{Count: 1, VerticalMinSpeed: 10, VerticalMaxSpeed: 10},
		{Count: 1, CooldownFrames: 3, VerticalMinSpeed: 6, VerticalMaxSpeed: 6},
	}
	c := newTestCharacter(t, tuning, &floorCollider{})
	settle(t, c)

	jumps := 0
	c.OnEvent(func(_ *Character, e Events) {
		if e.Has(EventJump) {
			jumps++
		}
	})

	step(t, c, InputFrame{Jump: true})
	if jumps != 1 {
		t.Fatalf("ground jump did not fire")
	}
	for i := 0; i < 10; i++ {
		step(t, c, InputFrame{})
	}
	step(t, c, InputFrame{Jump: true})
	if jumps != 2 {
		t.Fatalf("air jump did not fire")
	}
	if got := c.Committed().ActiveJump; got != (JumpId{Index: 1, Count: 0}) {
		t.Fatalf("active jump = %+v", got)
	}
	for i := 0; i < 5; i++ {
		step(t, c, InputFrame{})
		step(t, c, InputFrame{Jump: true})
	}
	if jumps != 2 {
		t.Fatalf("exhausted jumps fired again: %d", jumps)
	}
}

func TestPivotThreshold(t *testing.T) {
	cases := []struct {
		name  string
		input mgl64.Vec3
		want  string
	}{
		{"at_threshold_turns", mgl64.Vec3{1, 0, 0}, "Moving"},
		{"below_threshold_pivots", mgl64.Vec3{1, 0, -0.01}, "Pivot"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestCharacter(t, testTuning(), &floorCollider{})
			settle(t, c)
			for i := 0; i < 60; i++ {
				step(t, c, InputFrame{Move: mgl64.Vec3{0, 0, 1}})
			}
			step(t, c, InputFrame{Move: tc.input})
			if got := c.MovementPhase(); got != tc.want {
				t.Fatalf("phase = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestCrouchSetsFriction(t *testing.T) {
	var events Events
	c := newTestCharacter(t, testTuning(), &floorCollider{})
	c.OnEvent(func(_ *Character, e Events) { events |= e })
	settle(t, c)

	step(t, c, InputFrame{Crouch: true})
	f := c.Committed()
	if !f.IsCrouching || f.SurfaceStaticFriction != 20 {
		t.Fatalf("crouching = %v, static friction = %v", f.IsCrouching, f.SurfaceStaticFriction)
	}
	if !events.Has(EventCrouch) {
		t.Fatalf("missing crouch event, got %v", events)
	}

	step(t, c, InputFrame{})
	f = c.Committed()
	if f.IsCrouching || f.SurfaceStaticFriction != 10 {
		t.Fatalf("releasing crouch should restore friction, got %v", f.SurfaceStaticFriction)
	}
}

func TestPauseKeepsReadingInput(t *testing.T) {
	c := newTestCharacter(t, testTuning(), &floorCollider{})
	c.Pause()
	before := *c.Committed()
	step(t, c, InputFrame{Load: true})
	if !c.Input().IsLoadPressed() {
		t.Fatalf("input should be pushed while paused")
	}
	if *c.Committed() != before || c.Ticks() != 0 {
		t.Fatalf("paused character must not advance")
	}
	c.Unpause()
	step(t, c, InputFrame{})
	if c.Ticks() != 1 {
		t.Fatalf("ticks = %d", c.Ticks())
	}
}

type scriptedSource struct {
	frames []InputFrame
	err    error
}

func (s *scriptedSource) Read(view FrameView) (InputFrame, error) {
	if s.err != nil {
		return InputFrame{}, s.err
	}
	if len(s.frames) == 0 {
		return InputFrame{}, nil
	}
	in := s.frames[0]
	s.frames = s.frames[1:]
	return in, nil
}

func TestDrivenInput(t *testing.T) {
	c := newTestCharacter(t, testTuning(), &floorCollider{})
	src := &scriptedSource{frames: []InputFrame{{Crouch: true}}}
	c.Drive(src)
	if err := c.Step(dt); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !c.Input().IsCrouchPressed() {
		t.Fatalf("driven input was not read")
	}

	boom := errors.New("boom")
	src.err = boom
	if err := c.Step(dt); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}

	c.Release()
	if c.IsDriven() {
		t.Fatalf("Release should detach the source")
	}
}

func TestEvents(t *testing.T) {
	cases := []struct {
		events Events
		split  []Events
		name   string
	}{
		{0, nil, "none"},
		{EventLand, []Events{EventLand}, "land"},
		{EventWall | EventJump | EventStep, []Events{EventJump, EventStep, EventWall}, "jump|step|wall"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.events.String(); got != tc.name {
				t.Fatalf("String = %q, want %q", got, tc.name)
			}
			got := tc.events.Split()
			if len(got) != len(tc.split) {
				t.Fatalf("Split = %v, want %v", got, tc.split)
			}
			for i := range got {
				if got[i] != tc.split[i] {
					t.Fatalf("Split = %v, want %v", got, tc.split)
				}
			}
		})
	}

	if ev, ok := ParseEvent("crouch"); !ok || ev != EventCrouch {
		t.Fatalf("ParseEvent(crouch) = %v, %v", ev, ok)
	}
	if _, ok := ParseEvent("fly"); ok {
		t.Fatalf("ParseEvent(fly) should fail")
	}
}
