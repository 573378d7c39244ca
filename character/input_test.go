package character

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/thirdperson/common"
)

func pushJumps(w *InputWindow, jumps ...bool) {
	for _, j := range jumps {
		w.Push(InputFrame{Jump: j})
	}
}

func TestInputWindowClampsMove(t *testing.T) {
	w := NewInputWindow(4)
	w.Push(InputFrame{Move: mgl64.Vec3{3, 7, 4}})
	if got := w.Move(); !common.Near(got, mgl64.Vec3{0.6, 0, 0.8}, 1e-12) {
		t.Fatalf("Move = %v", got)
	}
	if got := w.MoveMagnitude(); got > 1+1e-12 {
		t.Fatalf("MoveMagnitude = %v", got)
	}
}

func TestInputWindowJumpBuffer(t *testing.T) {
	cases := []struct {
		name   string
		jumps  []bool
		buffer int
		want   bool
	}{
		{"pressed_now", []bool{false, true}, 1, true},
		{"pressed_within_buffer", []bool{true, true, false, false}, 4, true},
		{"pressed_outside_buffer", []bool{true, false, false, false}, 3, false},
		{"held_since_before_window", []bool{true, true, true}, 2, false},
		{"first_frame_counts_as_edge", []bool{true}, 1, true},
		{"zero_buffer_means_now", []bool{false, true}, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := NewInputWindow(8)
			pushJumps(w, tc.jumps...)
			if got := w.IsJumpPressedInBuffer(tc.buffer); got != tc.want {
				t.Fatalf("IsJumpPressedInBuffer(%d) = %v, want %v", tc.buffer, got, tc.want)
			}
		})
	}
}

func TestInputWindowConsumeJump(t *testing.T) {
	w := NewInputWindow(8)
	pushJumps(w, false, true)
	w.ConsumeJump()
	if w.IsJumpPressedInBuffer(4) {
		t.Fatalf("consumed press must not buffer again")
	}
	if !w.IsJumpDown(4) {
		t.Fatalf("IsJumpDown ignores consumption")
	}

	pushJumps(w, false, true)
	if !w.IsJumpPressedInBuffer(4) {
		t.Fatalf("a new press after consumption should buffer")
	}
}

func TestInputWindowIsJumpDown(t *testing.T) {
	w := NewInputWindow(8)
	pushJumps(w, false, true, true, true)
	if !w.IsJumpDown(3) {
		t.Fatalf("press 2 frames ago, held: expected down within 3")
	}
	if w.IsJumpDown(2) {
		t.Fatalf("press 2 frames ago is outside a 2 frame window")
	}
	pushJumps(w, false)
	if w.IsJumpDown(8) {
		t.Fatalf("released jump is not down")
	}
}

func TestInputWindowMoveIdle(t *testing.T) {
	w := NewInputWindow(8)
	w.Push(InputFrame{Move: mgl64.Vec3{1, 0, 0}})
	w.Push(InputFrame{})
	w.Push(InputFrame{})
	if !w.IsMoveIdle(2) {
		t.Fatalf("two idle frames should be idle for 2")
	}
	if w.IsMoveIdle(3) {
		t.Fatalf("move 2 frames ago breaks a 3 frame idle")
	}
}
