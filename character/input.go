package character

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/thirdperson/common"
)

// InputFrame is one tick of player intent.
type InputFrame struct {
	Move   mgl64.Vec3
	Jump   bool
	Crouch bool
	Load   bool
}

// Clamped flattens Move onto the ground plane and caps it at unit length.
func (in InputFrame) Clamped() InputFrame {
	in.Move = common.ClampMagnitude(common.Planar(in.Move), 1)
	return in
}

// FrameView is the read-only character state an input source may look at.
type FrameView interface {
	Committed() *Frame
	Ticks() uint64
}

// InputSource produces one InputFrame per tick.
type InputSource interface {
	Read(view FrameView) (InputFrame, error)
}

// InputWindow keeps the last few input frames for buffered queries.
type InputWindow struct {
	frames []InputFrame
	head   int
	count  int

	// pushes counts every frame ever pushed; edges at or before
	// consumedAt have been used by a jump.
	pushes     int
	consumedAt int
}

func NewInputWindow(size int) *InputWindow {
	if size < 2 {
		panic(fmt.Sprintf("character: input window size %d < 2", size))
	}
	return &InputWindow{frames: make([]InputFrame, size), head: size - 1, consumedAt: -1}
}

func (w *InputWindow) Len() int {
	return len(w.frames)
}

// Push records this tick's input.
func (w *InputWindow) Push(in InputFrame) {
	w.head = (w.head + 1) % len(w.frames)
	w.frames[w.head] = in.Clamped()
	w.pushes++
	if w.count < len(w.frames) {
		w.count++
	}
}

func (w *InputWindow) Curr() InputFrame {
	return w.At(0)
}

// At returns the input offset ticks in the past, or an empty frame when
// the window does not reach that far.
func (w *InputWindow) At(offset int) InputFrame {
	if offset < 0 || offset >= w.count {
		return InputFrame{}
	}
	n := len(w.frames)
	return w.frames[((w.head-offset)%n+n)%n]
}

func (w *InputWindow) Move() mgl64.Vec3 {
	return w.Curr().Move
}

func (w *InputWindow) MoveMagnitude() float64 {
	return w.Curr().Move.Len()
}

func (w *InputWindow) HasMove() bool {
	return !common.IsZero(w.Curr().Move)
}

func (w *InputWindow) IsJumpPressed() bool {
	return w.Curr().Jump
}

func (w *InputWindow) IsCrouchPressed() bool {
	return w.Curr().Crouch
}

func (w *InputWindow) IsLoadPressed() bool {
	return w.Curr().Load
}

// IsJumpDown is true when jump is held now and was first pressed within the
// last n frames.
func (w *InputWindow) IsJumpDown(n int) bool {
	return w.IsJumpPressed() && w.jumpEdge(n, false) >= 0
}

// IsJumpPressedInBuffer is true when jump was first pressed within the last
// n frames and that press has not been consumed.
func (w *InputWindow) IsJumpPressedInBuffer(n int) bool {
	return w.jumpEdge(n, true) >= 0
}

// ConsumeJump marks every press so far as used.
func (w *InputWindow) ConsumeJump() {
	w.consumedAt = w.pushes - 1
}

// jumpEdge returns the offset of the newest rising edge within n frames.
func (w *InputWindow) jumpEdge(n int, unconsumed bool) int {
	if n < 1 {
		n = 1
	}
	if n > w.count {
		n = w.count
	}
	for i := 0; i < n; i++ {
		if !w.At(i).Jump || w.At(i+1).Jump {
			continue
		}
		if unconsumed && w.pushes-1-i <= w.consumedAt {
			return -1
		}
		return i
	}
	return -1
}

// IsMoveIdle is true when there was no move input for the last past frames.
func (w *InputWindow) IsMoveIdle(past int) bool {
	if past < 1 {
		past = 1
	}
	for i := 0; i < past; i++ {
		if !common.IsZero(w.At(i).Move) {
			return false
		}
	}
	return true
}
