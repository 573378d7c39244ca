package character

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/thirdperson/common"
)

// Source records how a contact was detected.
type Source uint8

const (
	SourceMove Source = 1 << iota
	SourceOverlap
)

type SurfaceKind uint8

const (
	SurfaceNone SurfaceKind = iota
	SurfaceGround
	SurfaceWall
	SurfaceCeiling
)

func (k SurfaceKind) String() string {
	switch k {
	case SurfaceGround:
		return "ground"
	case SurfaceWall:
		return "wall"
	case SurfaceCeiling:
		return "ceiling"
	default:
		return "none"
	}
}

// Collision is one contact surface. The zero value is "no surface".
type Collision struct {
	Normal mgl64.Vec3
	Point  mgl64.Vec3
	// Angle is the unsigned angle between Normal and up, in degrees.
	Angle  float64
	Source Source
	Kind   SurfaceKind
}

// NewCollision builds a contact and measures its angle from up.
func NewCollision(normal, point mgl64.Vec3, source Source) Collision {
	normal = common.Normalize(normal)
	return Collision{
		Normal: normal,
		Point:  point,
		Angle:  common.Angle(normal, common.Up),
		Source: source,
	}
}

func (c Collision) IsSome() bool {
	return !common.IsZero(c.Normal)
}

func (c Collision) IsNone() bool {
	return common.IsZero(c.Normal)
}

func (c Collision) IsGround() bool {
	return c.Kind == SurfaceGround
}

func (c Collision) IsWall() bool {
	return c.Kind == SurfaceWall
}

// IsStandable is true for surfaces the character can jump from.
func (c Collision) IsStandable() bool {
	return c.Kind == SurfaceGround || c.Kind == SurfaceWall
}

func (c *Collision) AddSource(s Source) {
	c.Source |= s
}

// Contact is a raw contact reported by a Collider.
type Contact struct {
	Normal mgl64.Vec3
	Point  mgl64.Vec3
	Source Source
}

// tieTolerance is how close two up-dots must be to count as equally steep.
const tieTolerance = 1e-6

// SurfaceClassifier turns raw contacts into classified surfaces and picks the
// main one.
type SurfaceClassifier struct {
	GroundAngle            float64
	CeilingAngle           float64
	PerceptionAngularSpeed float64
	PerceptionLingerFrames int
}

func NewSurfaceClassifier(t SurfaceTuning) SurfaceClassifier {
	return SurfaceClassifier{
		GroundAngle:            t.GroundAngle,
		CeilingAngle:           t.CeilingAngle,
		PerceptionAngularSpeed: t.PerceptionAngularSpeed,
		PerceptionLingerFrames: t.PerceptionLingerFrames,
	}
}

// Kind classifies a surface by its angle from up.
func (s SurfaceClassifier) Kind(c Collision) SurfaceKind {
	switch {
	case c.IsNone():
		return SurfaceNone
	case c.Angle <= s.GroundAngle:
		return SurfaceGround
	case c.Angle < s.CeilingAngle:
		return SurfaceWall
	default:
		return SurfaceCeiling
	}
}

// Classify records each contact on f, merging duplicates, and selects the
// main surface relative to pos.
func (s SurfaceClassifier) Classify(f *Frame, contacts []Contact, pos mgl64.Vec3) {
	f.ClearSurfaces()
	for _, ct := range contacts {
		c := NewCollision(ct.Normal, ct.Point, ct.Source)
		if c.IsNone() {
			continue
		}
		c.Kind = s.Kind(c)
		f.AddSurface(c)
	}
	f.MainSurface = s.Main(f.Surfaces(), pos)
}

// Main picks the surface that best represents "the floor". Ceilings lose
// while any ground or wall exists. Otherwise the most up-facing normal
// wins, then the contact closest to pos, then the earliest contact.
func (s SurfaceClassifier) Main(surfaces []Collision, pos mgl64.Vec3) Collision {
	best := -1
	bestStandable := false
	bestDot, bestDist := 0.0, 0.0
	for i, c := range surfaces {
		standable := c.IsStandable()
		dot := c.Normal.Dot(common.Up)
		dist := c.Point.Sub(pos).LenSqr()

		switch {
		case best < 0:
		case standable != bestStandable:
			if !standable {
				continue
			}
		case dot > bestDot+tieTolerance:
		case math.Abs(dot-bestDot) <= tieTolerance && dist < bestDist:
		default:
			continue
		}

		best, bestStandable, bestDot, bestDist = i, standable, dot, dist
	}
	if best < 0 {
		return Collision{}
	}
	return surfaces[best]
}

// Perceive smooths the main surface for consumers that should not snap:
// the perceived normal turns toward the main one at a bounded speed and
// lingers for a few frames after contact is lost.
func (s SurfaceClassifier) Perceive(prev Collision, linger int, main Collision, delta float64) (Collision, int) {
	if main.IsNone() {
		linger++
		if prev.IsNone() || linger > s.PerceptionLingerFrames {
			return Collision{}, linger
		}
		return prev, linger
	}

	if prev.IsNone() || s.PerceptionAngularSpeed <= 0 {
		return main, 0
	}

	out := main
	out.Normal = common.Normalize(common.RotateTowards(prev.Normal, main.Normal, mgl64.DegToRad(s.PerceptionAngularSpeed)*delta, 0))
	out.Angle = common.Angle(out.Normal, common.Up)
	return out, 0
}
