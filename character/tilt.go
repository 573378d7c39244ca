package character

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/thirdperson/common"
)

// tiltSystem leans the character into its planar acceleration.
type tiltSystem struct{}

func (tiltSystem) name() string { return "tilt" }
func (tiltSystem) setLogging(bool) {}

func (tiltSystem) update(c *Character, delta float64) {
	t := c.tuning.Tilt
	curr := c.Curr()
	next := c.Next()

	target := TiltFor(common.Planar(curr.Acceleration), c.tuning.Movement.Acceleration, t)
	k := 1.0
	if t.Smoothing > 0 {
		k = 1 - math.Exp(-t.Smoothing*delta)
	}
	next.Tilt = common.QuatSlerp(curr.Tilt, target, k)
}

// TiltFor is the lean for a planar acceleration: proportional to the
// acceleration relative to base, capped at MaxTilt, around up x accel.
func TiltFor(accel mgl64.Vec3, base float64, t TiltTuning) mgl64.Quat {
	if common.IsZero(accel) || base <= 0 {
		return mgl64.QuatIdent()
	}
	angle := math.Min(accel.Len()/base*t.TiltForBaseAcceleration, t.MaxTilt)
	axis := common.Normalize(common.Up.Cross(accel))
	if common.IsZero(axis) || angle <= 0 {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatRotate(mgl64.DegToRad(angle), axis)
}
