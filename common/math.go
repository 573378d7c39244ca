package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the tolerance used for vector zero checks.
const Epsilon = 1e-9

var (
	// Up is the world up axis.
	Up = mgl64.Vec3{0, 1, 0}
	// Forward is the default facing direction.
	Forward = mgl64.Vec3{0, 0, 1}
	// Zero is the zero vector.
	Zero = mgl64.Vec3{}
)

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// InverseLerp returns where v sits between a and b, clamped to [0, 1].
func InverseLerp(a, b, v float64) float64 {
	if a == b {
		if v >= b {
			return 1
		}
		return 0
	}
	return Clamp01((v - a) / (b - a))
}

func Clamp01(v float64) float64 {
	return mgl64.Clamp(v, 0, 1)
}

// MoveTowards moves current toward target by at most maxDelta.
func MoveTowards(current, target, maxDelta float64) float64 {
	if math.Abs(target-current) <= maxDelta {
		return target
	}
	if target > current {
		return current + maxDelta
	}
	return current - maxDelta
}

func Sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

func IsZero(v mgl64.Vec3) bool {
	return v.LenSqr() <= Epsilon*Epsilon
}

// Near reports whether a and b lie within eps of each other. Unlike
// mgl64's ApproxEqualThreshold it is absolute, so components at zero
// compare sanely.
func Near(a, b mgl64.Vec3, eps float64) bool {
	return a.Sub(b).Len() <= eps
}

func NearQuat(a, b mgl64.Quat, eps float64) bool {
	return a.Sub(b).Len() <= eps
}

// Normalize returns the unit vector of v, or zero when v has no length.
func Normalize(v mgl64.Vec3) mgl64.Vec3 {
	if IsZero(v) {
		return mgl64.Vec3{}
	}
	return v.Normalize()
}

// ClampMagnitude shortens v to at most max.
func ClampMagnitude(v mgl64.Vec3, max float64) mgl64.Vec3 {
	l := v.Len()
	if l <= max || l == 0 {
		return v
	}
	return v.Mul(max / l)
}

// Project projects v onto the direction of onto.
func Project(v, onto mgl64.Vec3) mgl64.Vec3 {
	sqr := onto.LenSqr()
	if sqr <= Epsilon*Epsilon {
		return mgl64.Vec3{}
	}
	return onto.Mul(v.Dot(onto) / sqr)
}

// ProjectOnPlane removes the component of v along the plane normal.
func ProjectOnPlane(v, normal mgl64.Vec3) mgl64.Vec3 {
	return v.Sub(Project(v, normal))
}

// Planar returns v on the xz plane.
func Planar(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v[0], 0, v[2]}
}

// Angle is the unsigned angle between a and b in degrees.
func Angle(a, b mgl64.Vec3) float64 {
	den := math.Sqrt(a.LenSqr() * b.LenSqr())
	if den < Epsilon {
		return 0
	}
	cos := mgl64.Clamp(a.Dot(b)/den, -1, 1)
	return mgl64.RadToDeg(math.Acos(cos))
}

// SignedAngle is the angle from a to b in degrees, signed around axis.
func SignedAngle(a, b, axis mgl64.Vec3) float64 {
	angle := Angle(a, b)
	if axis.Dot(a.Cross(b)) < 0 {
		return -angle
	}
	return angle
}

// AngleAxis rotates v by deg degrees around axis.
func AngleAxis(deg float64, axis, v mgl64.Vec3) mgl64.Vec3 {
	axis = Normalize(axis)
	if IsZero(axis) || deg == 0 {
		return v
	}
	return mgl64.QuatRotate(mgl64.DegToRad(deg), axis).Rotate(v)
}

// RotateTowards rotates current toward target by at most maxRadians, and
// moves its magnitude toward the target's by at most maxMagnitude.
func RotateTowards(current, target mgl64.Vec3, maxRadians, maxMagnitude float64) mgl64.Vec3 {
	curLen := current.Len()
	tgtLen := target.Len()
	if curLen < Epsilon || tgtLen < Epsilon {
		return current.Add(ClampMagnitude(target.Sub(current), maxMagnitude))
	}

	from := current.Mul(1 / curLen)
	to := target.Mul(1 / tgtLen)
	angle := mgl64.DegToRad(Angle(from, to))
	length := MoveTowards(curLen, tgtLen, maxMagnitude)
	if angle <= maxRadians {
		return to.Mul(length)
	}

	axis := from.Cross(to)
	if IsZero(axis) {
		// opposite directions; any perpendicular works, prefer rotating about up
		axis = Up.Cross(from)
		if IsZero(axis) {
			axis = mgl64.Vec3{1, 0, 0}
		}
	}
	rotated := mgl64.QuatRotate(maxRadians, axis.Normalize()).Rotate(from)
	return rotated.Mul(length)
}

// Slerp spherically interpolates between two directions.
func Slerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	t = Clamp01(t)
	aLen, bLen := a.Len(), b.Len()
	if aLen < Epsilon || bLen < Epsilon {
		return a.Add(b.Sub(a).Mul(t))
	}
	angle := mgl64.DegToRad(Angle(a, b))
	length := Lerp(aLen, bLen, t)
	if angle < 1e-6 {
		return Normalize(a.Add(b.Sub(a).Mul(t))).Mul(length)
	}
	return RotateTowards(a.Mul(1/aLen), b.Mul(1/bLen), angle*t, 0).Mul(length)
}

// QuatSlerp interpolates between rotations with t clamped to [0, 1].
func QuatSlerp(a, b mgl64.Quat, t float64) mgl64.Quat {
	t = Clamp01(t)
	if t == 0 {
		return a
	}
	if t == 1 {
		return b
	}
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	if NearQuat(a, b, 1e-9) {
		return b
	}
	return mgl64.QuatSlerp(a, b, t)
}
