package character

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/thirdperson/common"
	"github.com/milk9111/thirdperson/fsm"
)

// MaxSurfaces caps the contacts a frame keeps per tick.
const MaxSurfaces = 8

var ErrZeroForward = errors.New("forward must be non-zero")

// JumpId identifies a jump definition and how many times it has been used
// since the character was last grounded.
type JumpId struct {
	Index int
	Count int
}

// Frame is the full character state for one tick. Frames are plain values:
// copying one copies everything, surfaces included.
type Frame struct {
	Position     mgl64.Vec3
	Velocity     mgl64.Vec3
	Inertia      float64
	Force        mgl64.Vec3
	Acceleration mgl64.Vec3
	Forward      mgl64.Vec3
	Tilt         mgl64.Quat

	IsLanding     bool
	IsInJumpSquat bool
	IsCrouching   bool

	surfaces     [MaxSurfaces]Collision
	surfaceCount int

	MainSurface      Collision
	PerceivedSurface Collision
	PerceivedLinger  int
	SurfaceTangent   mgl64.Vec3

	JumpSquatFrame int
	IdleTime       float64

	SurfaceDrag            float64
	SurfaceKineticFriction float64
	SurfaceStaticFriction  float64

	PivotFrame      int
	PivotDirection  mgl64.Vec3
	CrouchDirection mgl64.Vec3

	Jumps          uint
	JumpSurface    Collision
	CoyoteFrames   int
	CooldownFrames int
	NextJump       JumpId
	ActiveJump     JumpId
	WallReleasedAt float64

	Idle     fsm.State
	Movement fsm.State
	Jump     fsm.State
	Crouch   fsm.State
	Wall     fsm.State
	Friction fsm.State

	Events Events
}

// Up is the world up axis.
func (f *Frame) Up() mgl64.Vec3 {
	return common.Up
}

func (f *Frame) Surfaces() []Collision {
	return f.surfaces[:f.surfaceCount]
}

func (f *Frame) IsColliding() bool {
	return f.surfaceCount > 0
}

// IsOnGround is true while coyote time remains, so it outlives contact by
// a few frames.
func (f *Frame) IsOnGround() bool {
	return f.CoyoteFrames > 0
}

func (f *Frame) IsOnWall() bool {
	return f.MainSurface.Kind == SurfaceWall
}

func (f *Frame) IsIdle() bool {
	return f.IdleTime > 0
}

// ClearSurfaces drops this frame's contacts.
func (f *Frame) ClearSurfaces() {
	f.surfaceCount = 0
	f.MainSurface = Collision{}
}

// AddSurface records a contact, merging it into an existing one with the
// same normal. Contacts past MaxSurfaces are dropped.
func (f *Frame) AddSurface(c Collision) {
	for i := 0; i < f.surfaceCount; i++ {
		if common.Near(f.surfaces[i].Normal, c.Normal, 1e-6) {
			f.surfaces[i].AddSource(c.Source)
			return
		}
	}
	if f.surfaceCount == MaxSurfaces {
		return
	}
	f.surfaces[f.surfaceCount] = c
	f.surfaceCount++
}

func (f *Frame) PlanarVelocity() mgl64.Vec3 {
	return common.Planar(f.Velocity)
}

// SurfaceVelocity is the velocity along the main surface plane, or the raw
// velocity without a surface.
func (f *Frame) SurfaceVelocity() mgl64.Vec3 {
	if f.MainSurface.IsNone() {
		return f.Velocity
	}
	return common.ProjectOnPlane(f.Velocity, f.MainSurface.Normal)
}

func (f *Frame) SurfaceForce() mgl64.Vec3 {
	if f.MainSurface.IsNone() {
		return f.Force
	}
	return common.ProjectOnPlane(f.Force, f.MainSurface.Normal)
}

func (f *Frame) Direction() mgl64.Vec3 {
	return orForward(f.Velocity, f.Forward)
}

func (f *Frame) PlanarDirection() mgl64.Vec3 {
	return orForward(f.PlanarVelocity(), f.Forward)
}

func (f *Frame) SurfaceDirection() mgl64.Vec3 {
	return orForward(f.SurfaceVelocity(), f.Forward)
}

func orForward(v, fwd mgl64.Vec3) mgl64.Vec3 {
	if common.IsZero(v) {
		return fwd
	}
	return v.Normalize()
}

// SetForward normalizes and stores a new facing. Zero vectors are ignored.
func (f *Frame) SetForward(v mgl64.Vec3) {
	if common.IsZero(v) {
		return
	}
	f.Forward = v.Normalize()
}

// SetProjectedForward flattens v onto the ground plane before storing it.
func (f *Frame) SetProjectedForward(v mgl64.Vec3) {
	f.SetForward(common.ProjectOnPlane(v, f.Up()))
}

// Copy returns an independent copy of the frame.
func (f *Frame) Copy() Frame {
	return *f
}

// Interpolate blends two frames. Continuous quantities are lerped, facing
// and tilt are slerped, and everything else is taken from end.
func Interpolate(start, end *Frame, k float64) Frame {
	k = common.Clamp01(k)
	out := *end
	out.Position = lerpVec(start.Position, end.Position, k)
	out.Velocity = lerpVec(start.Velocity, end.Velocity, k)
	out.Force = lerpVec(start.Force, end.Force, k)
	out.Acceleration = lerpVec(start.Acceleration, end.Acceleration, k)
	out.SetForward(common.Slerp(start.Forward, end.Forward, k))
	out.Tilt = common.QuatSlerp(start.Tilt, end.Tilt, k)
	return out
}

func lerpVec(a, b mgl64.Vec3, k float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(k))
}
