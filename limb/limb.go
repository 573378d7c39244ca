package limb

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/thirdperson/character"
	"github.com/milk9111/thirdperson/common"
	"github.com/milk9111/thirdperson/fsm"
)

const (
	phaseFree fsm.ID = iota
	phaseNotStriding
	phaseMoving
	phaseHolding
)

// Anchor is the limb a stride is measured against.
type Anchor interface {
	GoalPos() mgl64.Vec3
	RootPos() mgl64.Vec3
}

// Body is what a limb reads from its character each tick.
type Body struct {
	// Frame is the committed frame; limbs never write to it.
	Frame  *character.Frame
	Move   mgl64.Vec3
	Caster Raycaster
}

// Context is everything one limb update needs.
type Context struct {
	Body
	RootPos    mgl64.Vec3
	SearchDir  mgl64.Vec3
	InitialLen float64
}

func (c *Context) moveMagnitude() float64 {
	return math.Min(c.Move.Len(), 1)
}

// Limb tracks the goal of one foot (or hand) as the character moves.
type Limb struct {
	name    string
	tuning  *Tuning
	machine *fsm.Machine[*Limb]
	state   fsm.State
	ctx     Context

	goal         mgl64.Vec3
	placement    Placement
	inputScale   float64
	slideOffset  mgl64.Vec3
	heldDistance float64
	anchor       Anchor
	stepped      bool
}

func New(name string, t *Tuning) *Limb {
	l := &Limb{name: name, tuning: t}
	l.machine = fsm.New(name, func(l *Limb) *fsm.State { return &l.state },
		freePhase{},
		notStridingPhase{},
		movingPhase{},
		holdingPhase{},
	)
	return l
}

func (l *Limb) Name() string { return l.name }

func (l *Limb) SetLogging(enabled bool) {
	l.machine.SetLogging(enabled)
}

func (l *Limb) SetTuning(t *Tuning) {
	l.tuning = t
}

// Update runs one stride tick.
func (l *Limb) Update(ctx Context, delta float64) {
	l.ctx = ctx
	l.stepped = false
	l.machine.Update(l, delta)
}

func (l *Limb) GoalPos() mgl64.Vec3 { return l.goal }
func (l *Limb) RootPos() mgl64.Vec3 { return l.ctx.RootPos }
func (l *Limb) Placement() Placement { return l.placement }
func (l *Limb) HeldDistance() float64 { return l.heldDistance }
func (l *Limb) Phase() string { return l.machine.PhaseName(l) }

func (l *Limb) IsFree() bool { return l.machine.Is(l, phaseFree) }
func (l *Limb) IsHeld() bool { return l.machine.Is(l, phaseHolding) }
func (l *Limb) IsStriding() bool { return !l.machine.Is(l, phaseNotStriding) }

// Stepped reports whether the last update completed a stride.
func (l *Limb) Stepped() bool { return l.stepped }

// SqrLength is the squared distance from root to goal.
func (l *Limb) SqrLength() float64 {
	return l.goal.Sub(l.ctx.RootPos).LenSqr()
}

// SetIsStriding turns striding on or off.
func (l *Limb) SetIsStriding(striding bool) {
	if l.IsStriding() == striding {
		return
	}
	if striding {
		l.machine.ChangeTo(l, phaseFree)
	} else {
		l.machine.ChangeTo(l, phaseNotStriding)
	}
}

// Move starts a stride measured against anchor.
func (l *Limb) Move(anchor Anchor) {
	l.anchor = anchor
	l.machine.ChangeTo(l, phaseMoving)
}

// Hold plants the limb where it is.
func (l *Limb) Hold(delta float64) {
	if !l.IsHeld() {
		l.machine.ChangeToImmediate(l, phaseHolding, delta)
	}
}

// Release lets go of any hold.
func (l *Limb) Release() {
	l.anchor = nil
	if !l.IsFree() {
		l.machine.ChangeTo(l, phaseFree)
	}
}

// SetSlideOffset drags held goals along with a slipping character.
func (l *Limb) SetSlideOffset(offset mgl64.Vec3) {
	l.slideOffset = offset
}

func (l *Limb) restPos() mgl64.Vec3 {
	return l.ctx.RootPos.Add(l.ctx.SearchDir.Mul(l.ctx.InitialLen))
}

// nextInputScale rises with input immediately and falls at the release speed.
func (l *Limb) nextInputScale(delta float64) float64 {
	mag := l.ctx.moveMagnitude()
	if mag > l.inputScale {
		return mag
	}
	return common.MoveTowards(l.inputScale, mag, l.tuning.InputScaleReleaseSpeed*delta)
}

// ellipseLen is the stride radius along strideDir, an ellipse stretched
// along the character's facing.
func (l *Limb) ellipseLen(strideDir mgl64.Vec3, inputScale float64) float64 {
	t := l.tuning
	speedScale := t.SpeedScale.Evaluate(l.ctx.Frame.SurfaceVelocity().Len())
	fwd := t.MaxLength.Lerp(speedScale * inputScale)
	cross := fwd * t.MaxLengthCrossScale

	angle := mgl64.DegToRad(common.Angle(strideDir, l.ctx.Frame.Forward))
	x := fwd * math.Cos(angle)
	y := cross * math.Sin(angle)
	return math.Sqrt(x*x + y*y)
}

// goalMax is how far along goalDir a stride of length ellipse can reach.
func (l *Limb) goalMax(goalDir, strideDir mgl64.Vec3, ellipse float64) float64 {
	dot := goalDir.Dot(strideDir)
	if dot <= common.Epsilon {
		return l.ctx.InitialLen
	}
	return math.Max(l.ctx.InitialLen, ellipse/dot)
}

// findPlacement casts for a surface, classifying hits past the limb's
// length as out of range.
func (l *Limb) findPlacement(src, dir mgl64.Vec3, length, offset float64) (Placement, bool) {
	if l.ctx.Caster == nil || common.IsZero(dir) {
		return Placement{}, false
	}
	src = src.Sub(dir.Mul(l.tuning.CastOffset))
	length += l.tuning.CastOffset

	hit, ok := l.ctx.Caster.Raycast(src, dir, length)
	if !ok {
		return Placement{}, false
	}
	if hit.Point.Sub(l.ctx.RootPos).Len() > l.ctx.InitialLen {
		return placementFromHit(hit, offset, CastOutOfRange), true
	}
	return placementFromHit(hit, offset, CastHit), true
}

// findPlacementFromEnd casts along the search direction from the end of
// the limb.
func (l *Limb) findPlacementFromEnd() (Placement, bool) {
	t := l.tuning
	root := l.ctx.RootPos
	src := root.Add(common.Normalize(l.goal.Sub(root)).Mul(l.ctx.InitialLen))

	length := t.SearchRangeOnSurface
	if !l.IsHeld() {
		scale := math.Max(common.Normalize(l.ctx.Frame.Velocity).Dot(l.ctx.SearchDir), 0)
		length = math.Max(t.SearchRangeNoSurface*scale, t.HeldDistanceOnSurface)
	}
	return l.findPlacement(src, l.ctx.SearchDir, length, t.CastOffset)
}

type notStridingPhase struct{}

func (notStridingPhase) ID() fsm.ID { return phaseNotStriding }
func (notStridingPhase) Name() string { return "NotStriding" }
func (notStridingPhase) Enter(*Limb) {}
func (notStridingPhase) Exit(*Limb) {}

func (notStridingPhase) Update(l *Limb, delta float64) {
	l.goal = l.restPos()
}

type freePhase struct{}

func (freePhase) ID() fsm.ID { return phaseFree }
func (freePhase) Name() string { return "Free" }
func (freePhase) Exit(*Limb) {}

func (freePhase) Enter(l *Limb) {
	l.goal = l.restPos()
}

func (freePhase) Update(l *Limb, delta float64) {
	p, ok := l.findPlacement(l.ctx.RootPos, l.ctx.SearchDir, l.ctx.InitialLen, 0)
	if !ok {
		p, ok = l.findPlacementFromEnd()
	}
	if ok {
		l.goal = p.Pos
		l.placement = p
		l.machine.ChangeToImmediate(l, phaseHolding, delta)
		return
	}
	l.placement = Placement{}
	l.goal = l.restPos()
}

type movingPhase struct{}

func (movingPhase) ID() fsm.ID { return phaseMoving }
func (movingPhase) Name() string { return "Moving" }
func (movingPhase) Enter(*Limb) {}
func (movingPhase) Exit(*Limb) {}

func (movingPhase) Update(l *Limb, delta float64) {
	if l.anchor == nil {
		l.machine.ChangeTo(l, phaseFree)
		return
	}

	t := l.tuning
	ctx := &l.ctx
	inputScale := l.nextInputScale(delta)

	// the stride we'd take mirroring the anchor over the search dir
	anchor := l.anchor.GoalPos().Sub(l.anchor.RootPos())
	anchorAlongSearch := common.Project(anchor, ctx.SearchDir)
	stride := anchorAlongSearch.Sub(anchor)
	strideLen := stride.Len()
	strideDir := common.Normalize(stride)

	ellipse := l.ellipseLen(strideDir, inputScale)

	moveDir := ctx.Frame.SurfaceVelocity()
	if common.IsZero(moveDir) {
		moveDir = ctx.Frame.Forward
	}

	progress := 1.0
	if ellipse > 0 {
		progress = common.Sign(stride.Dot(moveDir)) * math.Min(strideLen, ellipse) / ellipse
	}
	next := strideDir.Mul(t.Shape.Evaluate(progress) * ellipse)

	goalDir := common.Normalize(next.Add(anchorAlongSearch))
	if common.IsZero(goalDir) {
		goalDir = ctx.SearchDir
	}

	p, _ := l.findPlacement(ctx.RootPos, goalDir, l.goalMax(goalDir, strideDir, ellipse), 0)
	offset := 0.0
	if p.Result == CastHit {
		offset = ctx.InitialLen - p.Distance
	}
	offset = math.Max(offset, t.ShapeOffset.Evaluate(progress)*inputScale)

	l.goal = ctx.RootPos.Add(goalDir.Mul(ctx.InitialLen)).Sub(goalDir.Mul(offset))
	l.placement = p
	l.inputScale = inputScale

	if progress >= 1 {
		l.stepped = true
		l.machine.ChangeToImmediate(l, phaseHolding, delta)
	}
}

type holdingPhase struct{}

func (holdingPhase) ID() fsm.ID { return phaseHolding }
func (holdingPhase) Name() string { return "Holding" }
func (holdingPhase) Enter(*Limb) {}

func (holdingPhase) Exit(l *Limb) {
	l.heldDistance = 0
}

func (holdingPhase) Update(l *Limb, delta float64) {
	t := l.tuning
	ctx := &l.ctx
	l.inputScale = l.nextInputScale(delta)

	goal := l.goal.Sub(l.slideOffset)
	toGoal := goal.Sub(ctx.RootPos)
	strideDir := common.Normalize(common.ProjectOnPlane(toGoal, ctx.SearchDir))
	ellipse := l.ellipseLen(strideDir, l.inputScale)
	goalDir := common.Normalize(toGoal)

	p, ok := l.findPlacement(ctx.RootPos, goalDir, l.goalMax(goalDir, strideDir, ellipse), 0)
	extension := goalDir.Mul(math.Max(0, p.Distance-ctx.InitialLen))
	if !ok {
		p, ok = l.findPlacementFromEnd()
		if p.Result == CastOutOfRange {
			dir := p.Pos.Sub(ctx.RootPos)
			extension = dir.Mul(dir.Len() - ctx.InitialLen)
		}
	}

	// how far past the end of the limb the surface is, along the search dir
	held := 0.0
	normalDotSearch := p.Normal.Dot(ctx.SearchDir)
	if p.Result == CastOutOfRange && normalDotSearch < 0 {
		held = extension.Dot(p.Normal) / normalDotSearch
	}
	l.placement = p
	l.heldDistance = held

	if !ok {
		l.machine.ChangeTo(l, phaseFree)
		return
	}

	if p.Pos.Sub(l.goal).LenSqr() > t.MinMove*t.MinMove {
		l.goal = p.Pos
	}
}
