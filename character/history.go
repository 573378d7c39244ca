package character

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// FrameHistory is a fixed ring of frames. Offset 0 is the frame being
// written this tick, offset 1 the last committed frame.
type FrameHistory struct {
	frames []Frame
	head   int
}

// NewFrameHistory allocates size frames, all set to initial. A history needs
// at least three frames to expose Next, Curr and Prev.
func NewFrameHistory(size int, initial Frame) *FrameHistory {
	if size < 3 {
		panic(fmt.Sprintf("character: frame history size %d < 3", size))
	}
	h := &FrameHistory{frames: make([]Frame, size)}
	h.Fill(initial)
	return h
}

func (h *FrameHistory) Len() int {
	return len(h.frames)
}

// Advance starts a new tick: the write target becomes the committed frame
// and a copy of it, with per-tick fields cleared, becomes the new target.
func (h *FrameHistory) Advance() {
	prev := h.head
	h.head = (h.head + 1) % len(h.frames)
	h.frames[h.head] = h.frames[prev]

	next := &h.frames[h.head]
	next.Force = mgl64.Vec3{}
	next.Events = 0
}

// Fill sets every slot to f.
func (h *FrameHistory) Fill(f Frame) {
	for i := range h.frames {
		h.frames[i] = f
	}
}

// Override replaces the write target without advancing time.
func (h *FrameHistory) Override(f Frame) {
	h.frames[h.head] = f
}

func (h *FrameHistory) Next() *Frame {
	return h.At(0)
}

func (h *FrameHistory) Curr() *Frame {
	return h.At(1)
}

func (h *FrameHistory) Prev() *Frame {
	return h.At(2)
}

// At returns the frame offset ticks behind the write target. Offsets wrap.
func (h *FrameHistory) At(offset int) *Frame {
	n := len(h.frames)
	i := ((h.head-offset)%n + n) % n
	return &h.frames[i]
}
