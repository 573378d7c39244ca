package world

import (
	"fmt"
	"log"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/thirdperson/levels"
	"github.com/milk9111/thirdperson/limb"
)

// Space owns the chipmunk space holding a level's static geometry. It is
// safe for concurrent use; chipmunk locks the space during a query, so
// queries are serialized.
type Space struct {
	mu    sync.Mutex
	level *levels.Level
	space *cp.Space
}

func New(level *levels.Level) (*Space, error) {
	s := &Space{}
	if err := s.Rebuild(level); err != nil {
		return nil, err
	}
	return s, nil
}

// Rebuild replaces the geometry with level's.
func (s *Space) Rebuild(level *levels.Level) error {
	if level == nil {
		return fmt.Errorf("world: nil level")
	}
	if err := level.Validate(); err != nil {
		return fmt.Errorf("world: %w", err)
	}

	space := cp.NewSpace()
	for _, seg := range level.Segments {
		shape := cp.NewSegment(space.StaticBody, toCP(seg.A), toCP(seg.B), seg.Radius)
		space.AddShape(shape)
	}
	for _, box := range level.Boxes {
		bb := cp.BB{L: box.Min[0], B: box.Min[1], R: box.Max[0], T: box.Max[1]}
		space.AddShape(cp.NewBox2(space.StaticBody, bb, 0))
	}

	s.mu.Lock()
	s.level = level
	s.space = space
	s.mu.Unlock()
	log.Printf("world: built %q: %d segments, %d boxes", level.Name, len(level.Segments), len(level.Boxes))
	return nil
}

func (s *Space) Level() *levels.Level {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level
}

// Raycast casts along dir in the level's plane. The z coordinate rides
// along with the ray.
func (s *Space) Raycast(src, dir mgl64.Vec3, maxLen float64) (limb.RayHit, bool) {
	if maxLen <= 0 {
		return limb.RayHit{}, false
	}
	end := src.Add(dir.Mul(maxLen))
	a, b := planar(src), planar(end)
	if a.DistanceSq(b) == 0 {
		return limb.RayHit{}, false
	}

	s.mu.Lock()
	info := s.space.SegmentQueryFirst(a, b, 0, cp.SHAPE_FILTER_ALL)
	s.mu.Unlock()
	if info.Shape == nil {
		return limb.RayHit{}, false
	}
	dist := info.Alpha * maxLen
	z := src[2] + dir[2]*dist
	return limb.RayHit{
		Point:    fromCP(info.Point, z),
		Normal:   fromCP(info.Normal, 0),
		Distance: dist,
	}, true
}

func toCP(v mgl64.Vec2) cp.Vector {
	return cp.Vector{X: v[0], Y: v[1]}
}

func planar(v mgl64.Vec3) cp.Vector {
	return cp.Vector{X: v[0], Y: v[1]}
}

func fromCP(v cp.Vector, z float64) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, z}
}
