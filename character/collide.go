package character

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/thirdperson/common"
)

// MoveResult is where a Collider put the character.
type MoveResult struct {
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	Contacts []Contact
}

// Collider sweeps the character through world geometry.
type Collider interface {
	Move(pos, vel, up mgl64.Vec3, delta float64) MoveResult
}

// separatingSpeed is how fast the character may move away from a contact
// before it stops counting as a surface.
const separatingSpeed = 1e-3

// collide integrates this tick's force, moves the character and classifies
// what it touched.
func (c *Character) collide(delta float64) {
	curr := c.history.Curr()
	next := c.history.Next()

	vel := curr.Velocity.Add(next.Force.Mul(delta))

	var res MoveResult
	if c.collider != nil {
		res = c.collider.Move(curr.Position, vel, next.Up(), delta)
	} else {
		res = MoveResult{Position: curr.Position.Add(vel.Mul(delta)), Velocity: vel}
	}

	next.Position = res.Position
	next.Velocity = res.Velocity

	c.contacts = c.contacts[:0]
	for _, ct := range res.Contacts {
		if res.Velocity.Dot(ct.Normal) > separatingSpeed {
			continue
		}
		c.contacts = append(c.contacts, ct)
	}
	c.classifier.Classify(next, c.contacts, next.Position)

	// speed lost into a newly touched surface is kept as inertia
	main := next.MainSurface
	if main.IsSome() && (curr.MainSurface.IsNone() || !common.Near(curr.MainSurface.Normal, main.Normal, 1e-6)) {
		removed := vel.Sub(res.Velocity)
		next.Inertia += math.Max(0, -removed.Dot(main.Normal))
	}

	next.PerceivedSurface, next.PerceivedLinger = c.classifier.Perceive(
		curr.PerceivedSurface,
		curr.PerceivedLinger,
		main,
		delta,
	)

	if delta > 0 {
		next.Acceleration = next.Velocity.Sub(curr.Velocity).Mul(1 / delta)
	}
}
