package world

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/thirdperson/character"
)

const (
	DefaultSkin       = 0.005
	DefaultIterations = 3
)

// Collider sweeps a circle of Radius resting on the character's position
// through the space. It satisfies character.Collider.
type Collider struct {
	space *Space

	Radius     float64
	Skin       float64
	Iterations int
}

func (s *Space) Collider(radius float64) *Collider {
	return &Collider{
		space:      s,
		Radius:     radius,
		Skin:       DefaultSkin,
		Iterations: DefaultIterations,
	}
}

// Move slides the circle along vel for delta seconds, stripping the part
// of the velocity that runs into whatever it hits, then pushes it out of
// anything it still overlaps.
func (c *Collider) Move(pos, vel, up mgl64.Vec3, delta float64) character.MoveResult {
	c.space.mu.Lock()
	defer c.space.mu.Unlock()
	space := c.space.space
	lift := planar(up.Mul(c.Radius))
	center := planar(pos).Add(lift)
	v := planar(vel)
	z := pos[2] + vel[2]*delta

	var contacts []character.Contact
	remaining := delta
	for i := 0; i < c.Iterations && remaining > 0; i++ {
		motion := v.Mult(remaining)
		length := motion.Length()
		if length < 1e-9 {
			break
		}
		end := center.Add(motion)
		info := space.SegmentQueryFirst(center, end, c.Radius, cp.SHAPE_FILTER_ALL)
		if info.Shape == nil {
			center = end
			remaining = 0
			break
		}

		// stop a skin short of the hit
		if travel := length*info.Alpha - c.Skin; travel > 0 {
			center = center.Add(motion.Mult(travel / length))
		}
		remaining *= 1 - info.Alpha
		if vn := v.Dot(info.Normal); vn < 0 {
			v = v.Sub(info.Normal.Mult(vn))
		}
		contacts = append(contacts, character.Contact{
			Normal: fromCP(info.Normal, 0),
			Point:  fromCP(info.Point, z),
			Source: character.SourceMove,
		})
	}

	type overlap struct {
		normal cp.Vector
		point  cp.Vector
		depth  float64
	}
	var overlaps []overlap
	reach := c.Radius + 2*c.Skin
	space.BBQuery(cp.NewBBForCircle(center, reach), cp.SHAPE_FILTER_ALL, func(shape *cp.Shape, data interface{}) {
		info := shape.PointQuery(center)
		if info.Distance >= reach {
			return
		}
		overlaps = append(overlaps, overlap{normal: info.Gradient, point: info.Point, depth: c.Radius - info.Distance})
	}, nil)
	for _, o := range overlaps {
		if o.depth > 0 {
			center = center.Add(o.normal.Mult(o.depth))
		}
		if vn := v.Dot(o.normal); vn < 0 {
			v = v.Sub(o.normal.Mult(vn))
		}
		contacts = append(contacts, character.Contact{
			Normal: fromCP(o.normal, 0),
			Point:  fromCP(o.point, z),
			Source: character.SourceOverlap,
		})
	}

	feet := center.Sub(lift)
	return character.MoveResult{
		Position: fromCP(feet, z),
		Velocity: mgl64.Vec3{v.X, v.Y, vel[2]},
		Contacts: contacts,
	}
}
