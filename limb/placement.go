package limb

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type CastResult uint8

const (
	CastMiss CastResult = iota
	CastHit
	CastOutOfRange
)

func (r CastResult) String() string {
	switch r {
	case CastHit:
		return "Hit"
	case CastOutOfRange:
		return "OutOfRange"
	default:
		return "Miss"
	}
}

// Placement is where a cast put the limb's goal. The zero value is a miss.
type Placement struct {
	Pos      mgl64.Vec3
	Normal   mgl64.Vec3
	Distance float64
	Result   CastResult
}

// RayHit is a single raycast result.
type RayHit struct {
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
	Distance float64
}

// Raycaster finds the first surface along a ray.
type Raycaster interface {
	Raycast(src, dir mgl64.Vec3, maxLen float64) (RayHit, bool)
}

func placementFromHit(hit RayHit, offset float64, result CastResult) Placement {
	return Placement{
		Pos:      hit.Point,
		Normal:   hit.Normal,
		Distance: math.Max(hit.Distance-offset, 0),
		Result:   result,
	}
}
