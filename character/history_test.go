package character

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/thirdperson/common"
)

func testFrame() Frame {
	f := Frame{
		Position: mgl64.Vec3{1, 2, 3},
		Velocity: mgl64.Vec3{0, 0, 4},
		Tilt:     mgl64.QuatIdent(),
	}
	f.SetForward(mgl64.Vec3{0, 0, 1})
	return f
}

func TestFrameHistoryFill(t *testing.T) {
	f := testFrame()
	h := NewFrameHistory(ReleaseHistorySize, Frame{})
	h.Fill(f)
	if *h.Next() != f || *h.Curr() != f || *h.Prev() != f {
		t.Fatalf("Fill should set every view to the same frame")
	}
}

func TestFrameHistoryAdvance(t *testing.T) {
	h := NewFrameHistory(3, testFrame())
	next := h.Next()
	next.Position = mgl64.Vec3{9, 9, 9}
	next.Force = mgl64.Vec3{1, 0, 0}
	next.Events = EventJump | EventLand

	h.Advance()
	if h.Curr().Position != (mgl64.Vec3{9, 9, 9}) {
		t.Fatalf("Curr should be the frame written last tick")
	}
	if h.Curr().Events != EventJump|EventLand {
		t.Fatalf("committed frame lost its events")
	}
	if h.Next().Position != (mgl64.Vec3{9, 9, 9}) {
		t.Fatalf("Next should start as a copy of Curr")
	}
	if h.Next().Force != (mgl64.Vec3{}) || h.Next().Events != 0 {
		t.Fatalf("Advance must clear force and events, got %v %v", h.Next().Force, h.Next().Events)
	}
	if h.Prev().Position != (mgl64.Vec3{1, 2, 3}) {
		t.Fatalf("Prev = %v", h.Prev().Position)
	}

	// wraps around the ring
	for i := 0; i < 7; i++ {
		h.Next().IdleTime = float64(i)
		h.Advance()
	}
	if h.Curr().IdleTime != 6 || h.Prev().IdleTime != 5 {
		t.Fatalf("wrap: curr %v prev %v", h.Curr().IdleTime, h.Prev().IdleTime)
	}
	if h.At(3) != h.Next() {
		t.Fatalf("At should wrap by capacity")
	}
}

func TestFrameHistoryOverride(t *testing.T) {
	h := NewFrameHistory(4, testFrame())
	g := testFrame()
	g.Position = mgl64.Vec3{-1, 0, 0}
	h.Override(g)
	if *h.Next() != g {
		t.Fatalf("Override should replace the write target")
	}
	if h.Curr().Position != (mgl64.Vec3{1, 2, 3}) {
		t.Fatalf("Override must not touch committed frames")
	}
}

func TestFrameHistoryTooSmall(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for a history smaller than 3")
		}
	}()
	NewFrameHistory(2, Frame{})
}

func TestFrameForwardInvariant(t *testing.T) {
	f := testFrame()
	f.SetForward(mgl64.Vec3{})
	if f.Forward != (mgl64.Vec3{0, 0, 1}) {
		t.Fatalf("zero forward must be ignored, got %v", f.Forward)
	}
	f.SetProjectedForward(mgl64.Vec3{0, 5, 0})
	if f.Forward != (mgl64.Vec3{0, 0, 1}) {
		t.Fatalf("vertical forward projects to zero and must be ignored, got %v", f.Forward)
	}
	f.SetProjectedForward(mgl64.Vec3{3, 1, 0})
	if !common.Near(f.Forward, mgl64.Vec3{1, 0, 0}, 1e-12) {
		t.Fatalf("projected forward = %v", f.Forward)
	}
}

func TestInterpolate(t *testing.T) {
	a := testFrame()
	b := testFrame()
	a.Position = mgl64.Vec3{0, 0, 0}
	b.Position = mgl64.Vec3{10, 0, 0}
	b.SetForward(mgl64.Vec3{1, 0, 0})
	b.IdleTime = 3

	mid := Interpolate(&a, &b, 0.5)
	if mid.Position != (mgl64.Vec3{5, 0, 0}) {
		t.Fatalf("position = %v", mid.Position)
	}
	want := mgl64.Vec3{1, 0, 1}.Normalize()
	if !common.Near(mid.Forward, want, 1e-9) {
		t.Fatalf("forward = %v, want %v", mid.Forward, want)
	}
	if mid.IdleTime != 3 {
		t.Fatalf("discrete fields come from the end frame")
	}

	if over := Interpolate(&a, &b, 2); over.Position != b.Position {
		t.Fatalf("k should clamp to 1, got %v", over.Position)
	}
}
