package character

import (
	"errors"
	"fmt"
	"math"

	"github.com/milk9111/thirdperson/curve"
)

const (
	// ReleaseHistorySize is the frame history capacity for normal runs.
	ReleaseHistorySize = 5
	// DebugHistorySize keeps enough frames around to scrub through.
	DebugHistorySize = 300
	// DefaultInputBufferFrames is used when the tuning leaves it unset.
	DefaultInputBufferFrames = 60
)

var ErrInvalidTuning = errors.New("invalid tuning")

// Tuning is the authored configuration for one character. It is loaded
// once and read by every system; nothing writes to it during a tick.
type Tuning struct {
	Debug             bool `yaml:"debug" toml:"debug"`
	InputBufferFrames int  `yaml:"input_buffer_frames" toml:"input_buffer_frames"`

	Movement MovementTuning `yaml:"movement" toml:"movement"`
	Friction FrictionTuning `yaml:"friction" toml:"friction"`
	Air      AirTuning      `yaml:"air" toml:"air"`
	Surface  SurfaceTuning  `yaml:"surface" toml:"surface"`
	Wall     WallTuning     `yaml:"wall" toml:"wall"`
	Crouch   CrouchTuning   `yaml:"crouch" toml:"crouch"`
	Idle     IdleTuning     `yaml:"idle" toml:"idle"`
	Tilt     TiltTuning     `yaml:"tilt" toml:"tilt"`
}

type MovementTuning struct {
	Acceleration    float64 `yaml:"acceleration" toml:"acceleration"`
	Drag            float64 `yaml:"drag" toml:"drag"`
	KineticFriction float64 `yaml:"kinetic_friction" toml:"kinetic_friction"`
	StaticFriction  float64 `yaml:"static_friction" toml:"static_friction"`
	MinSpeed        float64 `yaml:"min_speed" toml:"min_speed"`

	// turn speeds are in deg/s
	TurnSpeed    float64 `yaml:"turn_speed" toml:"turn_speed"`
	PivotSpeed   float64 `yaml:"pivot_speed" toml:"pivot_speed"`
	AirTurnSpeed float64 `yaml:"air_turn_speed" toml:"air_turn_speed"`

	TimeToPivot            float64 `yaml:"time_to_pivot" toml:"time_to_pivot"`
	PivotStartThreshold    float64 `yaml:"pivot_start_threshold" toml:"pivot_start_threshold"`
	PivotSqrSpeedThreshold float64 `yaml:"pivot_sqr_speed_threshold" toml:"pivot_sqr_speed_threshold"`

	AerialDriftAcceleration float64 `yaml:"aerial_drift_acceleration" toml:"aerial_drift_acceleration"`

	// SurfaceScale scales thrust by the main surface angle.
	SurfaceScale curve.MapCurve `yaml:"surface_scale" toml:"surface_scale"`
}

// MaxPlanarSpeed is the equilibrium speed of sustained full input against
// kinetic friction and quadratic drag.
func (m MovementTuning) MaxPlanarSpeed() float64 {
	if m.Drag <= 0 {
		return math.Inf(1)
	}
	return math.Sqrt(math.Max(0, m.Acceleration-m.KineticFriction) / m.Drag)
}

// TimeToPercentMaxSpeed is the time to reach pct of MaxPlanarSpeed from rest.
func (m MovementTuning) TimeToPercentMaxSpeed(pct float64) float64 {
	if m.Drag <= 0 || pct >= 1 {
		return math.Inf(1)
	}
	return -math.Log(1-pct) / m.Drag
}

func (m MovementTuning) TimeToMaxSpeed() float64 {
	return m.TimeToPercentMaxSpeed(0.99)
}

// TimeToStop is the time for friction and drag to stop the character from
// MaxPlanarSpeed.
func (m MovementTuning) TimeToStop() float64 {
	v := m.MaxPlanarSpeed()
	if m.KineticFriction <= 0 || m.Drag <= 0 {
		return m.TimeToPercentMaxSpeed(0.99)
	}
	k := math.Sqrt(m.KineticFriction * m.Drag)
	return math.Atan(v*m.Drag/k) / k
}

func (m MovementTuning) PivotDeceleration() float64 {
	if m.TimeToPivot <= 0 {
		return math.Inf(1)
	}
	return m.MaxPlanarSpeed() / m.TimeToPivot
}

type FrictionTuning struct {
	AerialDrag float64 `yaml:"aerial_drag" toml:"aerial_drag"`

	// SurfaceScale scales friction by the main surface angle.
	SurfaceScale curve.MapCurve `yaml:"surface_scale" toml:"surface_scale"`
}

// AirTuning holds gravity, jump windows and the ordered jump definitions.
// Gravities are signed accelerations along up.
type AirTuning struct {
	Gravity     float64 `yaml:"gravity" toml:"gravity"`
	JumpGravity float64 `yaml:"jump_gravity" toml:"jump_gravity"`
	FallGravity float64 `yaml:"fall_gravity" toml:"fall_gravity"`

	JumpBufferFrames int     `yaml:"jump_buffer_frames" toml:"jump_buffer_frames"`
	MaxCoyoteFrames  int     `yaml:"max_coyote_frames" toml:"max_coyote_frames"`
	LandingDuration  float64 `yaml:"landing_duration" toml:"landing_duration"`

	Jumps []JumpTuning `yaml:"jumps" toml:"jumps"`
}

func (a AirTuning) JumpAcceleration() float64 {
	return a.JumpGravity - a.Gravity
}

func (a AirTuning) FallAcceleration() float64 {
	return a.FallGravity - a.Gravity
}

// JumpTuning is one entry of the jump sequence. Count 0 means unlimited.
type JumpTuning struct {
	Count              int `yaml:"count" toml:"count"`
	CooldownFrames     int `yaml:"cooldown_frames" toml:"cooldown_frames"`
	MinJumpSquatFrames int `yaml:"min_jump_squat_frames" toml:"min_jump_squat_frames"`
	MaxJumpSquatFrames int `yaml:"max_jump_squat_frames" toml:"max_jump_squat_frames"`

	VerticalMinSpeed    float64     `yaml:"vertical_min_speed" toml:"vertical_min_speed"`
	VerticalMaxSpeed    float64     `yaml:"vertical_max_speed" toml:"vertical_max_speed"`
	VerticalSpeedCurve  curve.Curve `yaml:"vertical_speed_curve" toml:"vertical_speed_curve"`
	UpwardsMomentumLoss float64     `yaml:"upwards_momentum_loss" toml:"upwards_momentum_loss"`

	HorizontalMinSpeed     float64     `yaml:"horizontal_min_speed" toml:"horizontal_min_speed"`
	HorizontalMaxSpeed     float64     `yaml:"horizontal_max_speed" toml:"horizontal_max_speed"`
	HorizontalSpeedCurve   curve.Curve `yaml:"horizontal_speed_curve" toml:"horizontal_speed_curve"`
	HorizontalMomentumLoss float64     `yaml:"horizontal_momentum_loss" toml:"horizontal_momentum_loss"`
}

// SquatPercent maps a squat frame onto [0, 1].
func (j JumpTuning) SquatPercent(frame int) float64 {
	if j.MaxJumpSquatFrames <= 0 {
		return 1
	}
	return math.Min(float64(frame)/float64(j.MaxJumpSquatFrames), 1)
}

func (j JumpTuning) VerticalSpeed(pct float64) float64 {
	return curve.FloatRange{Min: j.VerticalMinSpeed, Max: j.VerticalMaxSpeed}.Lerp(j.VerticalSpeedCurve.Evaluate(pct))
}

func (j JumpTuning) HorizontalSpeed(pct float64) float64 {
	return curve.FloatRange{Min: j.HorizontalMinSpeed, Max: j.HorizontalMaxSpeed}.Lerp(j.HorizontalSpeedCurve.Evaluate(pct))
}

type SurfaceTuning struct {
	// angles are in degrees from up
	GroundAngle  float64 `yaml:"ground_angle" toml:"ground_angle"`
	CeilingAngle float64 `yaml:"ceiling_angle" toml:"ceiling_angle"`

	InertiaDecayTime float64 `yaml:"inertia_decay_time" toml:"inertia_decay_time"`
	Grip             float64 `yaml:"grip" toml:"grip"`

	// TransferScale is keyed on the angle between the old and new surface.
	TransferScale curve.MapCurve `yaml:"transfer_scale" toml:"transfer_scale"`
	// TransferDiAngle maps the input/tangent angle to a rotation in degrees.
	TransferDiAngle curve.MapCurve `yaml:"transfer_di_angle" toml:"transfer_di_angle"`

	PerceptionAngularSpeed float64 `yaml:"perception_angular_speed" toml:"perception_angular_speed"`
	PerceptionLingerFrames int     `yaml:"perception_linger_frames" toml:"perception_linger_frames"`
}

type WallTuning struct {
	Gravity      float64         `yaml:"gravity" toml:"gravity"`
	HoldGravity  float64         `yaml:"hold_gravity" toml:"hold_gravity"`
	Magnet       float64         `yaml:"magnet" toml:"magnet"`
	GravityCurve curve.AdsrCurve `yaml:"gravity_curve" toml:"gravity_curve"`
}

type CrouchTuning struct {
	StaticFriction  float64 `yaml:"static_friction" toml:"static_friction"`
	Acceleration    float64 `yaml:"acceleration" toml:"acceleration"`
	TurnSpeed       float64 `yaml:"turn_speed" toml:"turn_speed"`
	LateralMaxSpeed float64 `yaml:"lateral_max_speed" toml:"lateral_max_speed"`

	// keyed by |dot(input, crouch direction)|
	PositiveDrag            curve.MapOutCurve `yaml:"positive_drag" toml:"positive_drag"`
	NegativeDrag            curve.MapOutCurve `yaml:"negative_drag" toml:"negative_drag"`
	PositiveKineticFriction curve.MapOutCurve `yaml:"positive_kinetic_friction" toml:"positive_kinetic_friction"`
	NegativeKineticFriction curve.MapOutCurve `yaml:"negative_kinetic_friction" toml:"negative_kinetic_friction"`
}

type IdleTuning struct {
	SqrSpeedThreshold float64 `yaml:"sqr_speed_threshold" toml:"sqr_speed_threshold"`
	MoveIdleFrames    int     `yaml:"move_idle_frames" toml:"move_idle_frames"`
}

type TiltTuning struct {
	// degrees of tilt at Movement.Acceleration
	TiltForBaseAcceleration float64 `yaml:"tilt_for_base_acceleration" toml:"tilt_for_base_acceleration"`
	MaxTilt                 float64 `yaml:"max_tilt" toml:"max_tilt"`
	// Smoothing is a rate in 1/s.
	Smoothing float64 `yaml:"smoothing" toml:"smoothing"`
}

// HistorySize picks the frame history capacity.
func (t *Tuning) HistorySize() int {
	if t.Debug {
		return DebugHistorySize
	}
	return ReleaseHistorySize
}

// Validate reports values no character can run with.
func (t *Tuning) Validate() error {
	var errs []error
	if t.Movement.Drag <= 0 {
		errs = append(errs, fmt.Errorf("movement.drag must be positive, got %v", t.Movement.Drag))
	}
	if t.Movement.Acceleration < 0 {
		errs = append(errs, fmt.Errorf("movement.acceleration must not be negative, got %v", t.Movement.Acceleration))
	}
	if t.Movement.MinSpeed < 0 {
		errs = append(errs, fmt.Errorf("movement.min_speed must not be negative, got %v", t.Movement.MinSpeed))
	}
	if t.Surface.GroundAngle < 0 || t.Surface.GroundAngle > t.Surface.CeilingAngle || t.Surface.CeilingAngle > 180 {
		errs = append(errs, fmt.Errorf("surface angles must satisfy 0 <= ground (%v) <= ceiling (%v) <= 180", t.Surface.GroundAngle, t.Surface.CeilingAngle))
	}
	if t.Air.JumpBufferFrames < 0 || t.Air.MaxCoyoteFrames < 0 {
		errs = append(errs, fmt.Errorf("air frame windows must not be negative"))
	}
	for i, j := range t.Air.Jumps {
		if j.MinJumpSquatFrames < 0 || j.MinJumpSquatFrames > j.MaxJumpSquatFrames {
			errs = append(errs, fmt.Errorf("air.jumps[%d]: min squat frames %d outside [0, %d]", i, j.MinJumpSquatFrames, j.MaxJumpSquatFrames))
		}
		if j.Count < 0 || j.CooldownFrames < 0 {
			errs = append(errs, fmt.Errorf("air.jumps[%d]: count and cooldown must not be negative", i))
		}
	}
	if t.InputBufferFrames < 0 {
		errs = append(errs, fmt.Errorf("input_buffer_frames must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidTuning, errors.Join(errs...))
	}
	return nil
}

// Normalized returns a copy with defaults applied and derived clamps
// enforced. Unset scale curves become a constant 1.
func (t *Tuning) Normalized() *Tuning {
	n := *t
	if n.InputBufferFrames == 0 {
		n.InputBufferFrames = DefaultInputBufferFrames
	}
	// unset gravity tiers fall back to base gravity
	if n.Air.JumpGravity == 0 {
		n.Air.JumpGravity = n.Air.Gravity
	}
	if n.Air.FallGravity == 0 {
		n.Air.FallGravity = n.Air.Gravity
	}
	if n.Wall.Gravity == 0 {
		n.Wall.Gravity = n.Air.Gravity
	}
	if n.Wall.HoldGravity == 0 {
		n.Wall.HoldGravity = n.Air.Gravity
	}
	if len(n.Air.Jumps) == 0 {
		n.Air.MaxCoyoteFrames = 0
	} else if n.Air.MaxCoyoteFrames < n.Air.Jumps[0].MinJumpSquatFrames {
		n.Air.MaxCoyoteFrames = n.Air.Jumps[0].MinJumpSquatFrames
	}
	// the buffer windows have to fit in the input ring
	if n.Air.JumpBufferFrames >= n.InputBufferFrames {
		n.Air.JumpBufferFrames = n.InputBufferFrames - 1
	}
	if n.Idle.MoveIdleFrames >= n.InputBufferFrames {
		n.Idle.MoveIdleFrames = n.InputBufferFrames - 1
	}

	unit := curve.MapCurve{Curve: curve.Constant(1), Dst: curve.FloatRange{Min: 0, Max: 1}}
	if isUnset(n.Movement.SurfaceScale) {
		n.Movement.SurfaceScale = unit
	}
	if isUnset(n.Friction.SurfaceScale) {
		n.Friction.SurfaceScale = unit
	}
	if isUnset(n.Surface.TransferScale) {
		n.Surface.TransferScale = unit
	}

	// crouching without authored curves keeps the standing values
	drag := constantOut(n.Movement.Drag)
	kinetic := constantOut(n.Movement.KineticFriction)
	for _, c := range []struct {
		dst *curve.MapOutCurve
		def curve.MapOutCurve
	}{
		{&n.Crouch.PositiveDrag, drag},
		{&n.Crouch.NegativeDrag, drag},
		{&n.Crouch.PositiveKineticFriction, kinetic},
		{&n.Crouch.NegativeKineticFriction, kinetic},
	} {
		if c.dst.Curve.IsEmpty() && c.dst.Dst == (curve.FloatRange{}) {
			*c.dst = c.def
		}
	}
	return &n
}

func isUnset(m curve.MapCurve) bool {
	return m.Curve.IsEmpty() && m.Dst == (curve.FloatRange{})
}

func constantOut(v float64) curve.MapOutCurve {
	return curve.MapOutCurve{Curve: curve.Linear(), Dst: curve.FloatRange{Min: v, Max: v}}
}
