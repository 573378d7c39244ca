package character

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/thirdperson/common"
)

// system is one cooperating piece of the character simulation. Systems run
// in a fixed order every tick and talk only through the Next frame.
type system interface {
	name() string
	setLogging(enabled bool)
	update(c *Character, delta float64)
}

// Character owns one simulated character: its frame history, input window
// and the systems that advance it.
type Character struct {
	tuning     *Tuning
	history    *FrameHistory
	input      *InputWindow
	source     InputSource
	collider   Collider
	classifier SurfaceClassifier
	systems    []system

	idleSys     *idleSystem
	movementSys *movementSystem
	jumpSys     *jumpSystem
	crouchSys   *crouchSystem
	wallSys     *wallSystem
	frictionSys *frictionSystem

	paused    bool
	ticks     uint64
	pending   Events
	listeners []Listener
	contacts  []Contact
}

// New spawns a character at pos facing fwd. The tuning is normalized and
// never written afterwards.
func New(t *Tuning, collider Collider, pos, fwd mgl64.Vec3) (*Character, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("character: %w", err)
	}

	c := &Character{
		collider:    collider,
		idleSys:     newIdleSystem(),
		movementSys: newMovementSystem(),
		jumpSys:     newJumpSystem(),
		crouchSys:   newCrouchSystem(),
		wallSys:     newWallSystem(),
		frictionSys: newFrictionSystem(),
	}
	c.systems = []system{
		c.idleSys,
		c.movementSys,
		c.jumpSys,
		c.crouchSys,
		c.wallSys,
		c.frictionSys,
		tiltSystem{},
	}
	c.applyTuning(t)

	initial, err := c.Create(pos, fwd)
	if err != nil {
		return nil, err
	}
	c.history = NewFrameHistory(c.tuning.HistorySize(), initial)
	c.input = NewInputWindow(c.tuning.InputBufferFrames)
	return c, nil
}

func (c *Character) applyTuning(t *Tuning) {
	c.tuning = t.Normalized()
	c.classifier = NewSurfaceClassifier(c.tuning.Surface)
	for _, s := range c.systems {
		s.setLogging(c.tuning.Debug)
	}
}

// SetTuning swaps in a reloaded tuning between ticks. The frame history and
// input window keep their sizes.
func (c *Character) SetTuning(t *Tuning) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("character: %w", err)
	}
	c.applyTuning(t)
	return nil
}

func (c *Character) Tuning() *Tuning {
	return c.tuning
}

// Create builds a fresh frame at pos facing fwd, as if just spawned.
func (c *Character) Create(pos, fwd mgl64.Vec3) (Frame, error) {
	fwd = common.ProjectOnPlane(fwd, common.Up)
	if common.IsZero(fwd) {
		return Frame{}, fmt.Errorf("character: create at %v: %w", pos, ErrZeroForward)
	}

	f := Frame{
		Position:               pos,
		Tilt:                   mgl64.QuatIdent(),
		JumpSquatFrame:         -1,
		PivotFrame:             -1,
		WallReleasedAt:         -1,
		SurfaceDrag:            c.tuning.Movement.Drag,
		SurfaceKineticFriction: c.tuning.Movement.KineticFriction,
		SurfaceStaticFriction:  c.tuning.Movement.StaticFriction,
	}
	f.SetForward(fwd)
	f.CrouchDirection = f.Forward
	return f, nil
}

func (c *Character) History() *FrameHistory {
	return c.history
}

func (c *Character) Input() *InputWindow {
	return c.input
}

func (c *Character) Next() *Frame {
	return c.history.Next()
}

func (c *Character) Curr() *Frame {
	return c.history.Curr()
}

func (c *Character) Prev() *Frame {
	return c.history.Prev()
}

// Committed is the newest complete frame. Between ticks that is the frame
// the last Step wrote.
func (c *Character) Committed() *Frame {
	return c.history.Next()
}

func (c *Character) Ticks() uint64 {
	return c.ticks
}

func (c *Character) SetCollider(collider Collider) {
	c.collider = collider
}

// Drive attaches an input source that is read once per Step.
func (c *Character) Drive(source InputSource) {
	c.source = source
}

// Release detaches the input source. Input then has to be pushed directly.
func (c *Character) Release() {
	c.source = nil
}

func (c *Character) IsDriven() bool {
	return c.source != nil
}

func (c *Character) Pause() {
	c.paused = true
}

func (c *Character) Unpause() {
	c.paused = false
}

func (c *Character) IsPaused() bool {
	return c.paused
}

// ForceState replaces the frame being written, e.g. for teleports.
func (c *Character) ForceState(f Frame) {
	c.history.Override(f)
}

func (c *Character) OnEvent(l Listener) {
	c.listeners = append(c.listeners, l)
}

// Schedule queues events for the next dispatch.
func (c *Character) Schedule(e Events) {
	c.pending |= e
}

func (c *Character) isScheduled(e Events) bool {
	return c.pending.Has(e)
}

// Step runs one fixed tick.
func (c *Character) Step(delta float64) error {
	if c.source != nil {
		in, err := c.source.Read(c)
		if err != nil {
			return fmt.Errorf("character: read input: %w", err)
		}
		c.input.Push(in)
	}

	if c.paused {
		return nil
	}

	c.ticks++
	c.history.Advance()
	for _, s := range c.systems {
		s.update(c, delta)
	}
	c.collide(delta)
	c.dispatch()
	return nil
}

func (c *Character) dispatch() {
	events := c.pending
	c.pending = 0
	if events == 0 {
		return
	}

	next := c.history.Next()
	next.Events |= events
	for _, l := range c.listeners {
		l(c, next.Events)
	}
}

// isStopped is true when the character moves slower than the minimum speed
// along its surface.
func (c *Character) isStopped() bool {
	return c.Curr().SurfaceVelocity().Len() < c.tuning.Movement.MinSpeed
}

// isGrounded is true when the last committed frame stands on ground.
func (c *Character) isGrounded() bool {
	return c.Curr().MainSurface.IsGround()
}

// turnTowards rotates Next.Forward toward dir at speed deg/s.
func (c *Character) turnTowards(dir mgl64.Vec3, speed, delta float64) {
	if common.IsZero(dir) {
		return
	}
	next := c.Next()
	rotated := common.RotateTowards(c.Curr().Forward, common.Planar(dir), mgl64.DegToRad(speed)*delta, 0)
	next.SetProjectedForward(rotated)
}
