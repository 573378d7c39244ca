package common

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestInverseLerp(t *testing.T) {
	cases := []struct {
		name    string
		a, b, v float64
		want    float64
	}{
		{"middle", 0, 10, 5, 0.5},
		{"below", 0, 10, -5, 0},
		{"above", 0, 10, 15, 1},
		{"reversed", 10, 0, 2.5, 0.75},
		{"degenerate_at", 3, 3, 3, 1},
		{"degenerate_below", 3, 3, 2, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := InverseLerp(tc.a, tc.b, tc.v); got != tc.want {
				t.Fatalf("InverseLerp(%v, %v, %v) = %v, want %v", tc.a, tc.b, tc.v, got, tc.want)
			}
		})
	}
}

func TestMoveTowards(t *testing.T) {
	if got := MoveTowards(0, 10, 3); got != 3 {
		t.Fatalf("got %v", got)
	}
	if got := MoveTowards(0, -10, 3); got != -3 {
		t.Fatalf("got %v", got)
	}
	if got := MoveTowards(9, 10, 3); got != 10 {
		t.Fatalf("should not overshoot, got %v", got)
	}
}

func TestProjectOnPlane(t *testing.T) {
	got := ProjectOnPlane(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{0, 5, 0})
	if got != (mgl64.Vec3{1, 0, 3}) {
		t.Fatalf("ProjectOnPlane = %v", got)
	}
	if got := Project(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{}); got != (mgl64.Vec3{}) {
		t.Fatalf("projecting onto zero should be zero, got %v", got)
	}
}

func TestSignedAngle(t *testing.T) {
	x := mgl64.Vec3{1, 0, 0}
	z := mgl64.Vec3{0, 0, 1}
	if got := Angle(x, z); !mgl64.FloatEqualThreshold(got, 90, 1e-9) {
		t.Fatalf("Angle = %v", got)
	}
	// x cross z points down
	if got := SignedAngle(x, z, Up); !mgl64.FloatEqualThreshold(got, -90, 1e-9) {
		t.Fatalf("SignedAngle = %v", got)
	}
	if got := Angle(x, mgl64.Vec3{}); got != 0 {
		t.Fatalf("angle to zero vector = %v", got)
	}
}

func TestRotateTowards(t *testing.T) {
	cases := []struct {
		name     string
		cur, tgt mgl64.Vec3
		maxRad   float64
		want     mgl64.Vec3
	}{
		{"reaches_target", Forward, mgl64.Vec3{1, 0, 0}, math.Pi, mgl64.Vec3{1, 0, 0}},
		{"partial", Forward, mgl64.Vec3{1, 0, 0}, math.Pi / 4, mgl64.Vec3{math.Sqrt2 / 2, 0, math.Sqrt2 / 2}},
		{"keeps_length", Forward.Mul(2), mgl64.Vec3{1, 0, 0}, math.Pi, mgl64.Vec3{2, 0, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := RotateTowards(tc.cur, tc.tgt, tc.maxRad, 0)
			if !Near(got, tc.want, 1e-9) {
				t.Fatalf("RotateTowards = %v, want %v", got, tc.want)
			}
		})
	}

	// opposite directions still turn by the allowed amount
	got := RotateTowards(Forward, Forward.Mul(-1), math.Pi/2, 0)
	if !mgl64.FloatEqualThreshold(Angle(got, Forward), 90, 1e-9) {
		t.Fatalf("opposite turn = %v", got)
	}
}

func TestSlerp(t *testing.T) {
	got := Slerp(Forward, mgl64.Vec3{2, 0, 0}, 0.5)
	want := mgl64.Vec3{1, 0, 1}.Normalize().Mul(1.5)
	if !Near(got, want, 1e-9) {
		t.Fatalf("Slerp = %v, want %v", got, want)
	}
}

func TestQuatSlerp(t *testing.T) {
	a := mgl64.QuatIdent()
	b := mgl64.QuatRotate(math.Pi/2, Up)
	if QuatSlerp(a, b, 0) != a || QuatSlerp(a, b, 2) != b {
		t.Fatalf("t should clamp to the endpoints")
	}
	mid := QuatSlerp(a, b, 0.5)
	want := mgl64.QuatRotate(math.Pi/4, Up)
	if !NearQuat(mid, want, 1e-9) {
		t.Fatalf("QuatSlerp = %v, want %v", mid, want)
	}
}

func TestAngleAxis(t *testing.T) {
	got := AngleAxis(90, Up, Forward)
	if !Near(got, mgl64.Vec3{1, 0, 0}, 1e-9) {
		t.Fatalf("AngleAxis = %v", got)
	}
	if got := AngleAxis(90, mgl64.Vec3{}, Forward); got != Forward {
		t.Fatalf("zero axis should leave v alone, got %v", got)
	}
}

func TestNear(t *testing.T) {
	cases := []struct {
		name string
		a, b mgl64.Vec3
		want bool
	}{
		{"rounding_against_zero", mgl64.Vec3{1, 0, 2.220446049250313e-16}, mgl64.Vec3{1, 0, 0}, true},
		{"tiny_against_tiny", mgl64.Vec3{1e-12, 0, 0}, mgl64.Vec3{-1e-12, 0, 0}, true},
		{"apart", mgl64.Vec3{1, 0, 0}, mgl64.Vec3{1, 0, 1e-6}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Near(tc.a, tc.b, 1e-9); got != tc.want {
				t.Fatalf("Near(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
	if !NearQuat(mgl64.Quat{W: 1}, mgl64.Quat{W: 1, V: mgl64.Vec3{0, 1e-17, 0}}, 1e-9) {
		t.Fatalf("quaternions differing by rounding should be near")
	}
}
