package limb

import (
	"errors"
	"fmt"

	"github.com/milk9111/thirdperson/curve"
)

var ErrInvalidTuning = errors.New("invalid limb tuning")

// Tuning shapes one limb's stride.
type Tuning struct {
	// CastOffset backs every placement cast up so surfaces touching the
	// cast origin are still found.
	CastOffset float64 `yaml:"cast_offset" toml:"cast_offset"`

	// MinMove is the distance under which a held goal is not moved.
	MinMove float64 `yaml:"min_move" toml:"min_move"`

	// MaxLength is the stride radius, indexed by speed and input scale.
	MaxLength           curve.FloatRange `yaml:"max_length" toml:"max_length"`
	MaxLengthCrossScale float64          `yaml:"max_length_cross_scale" toml:"max_length_cross_scale"`

	// Shape maps stride progress onto stride length; ShapeOffset lifts the
	// moving foot off its line by progress.
	Shape       curve.Curve       `yaml:"shape" toml:"shape"`
	ShapeOffset curve.MapOutCurve `yaml:"shape_offset" toml:"shape_offset"`

	InputScaleReleaseSpeed float64        `yaml:"input_scale_release_speed" toml:"input_scale_release_speed"`
	SpeedScale             curve.MapCurve `yaml:"speed_scale" toml:"speed_scale"`

	SearchRangeOnSurface  float64 `yaml:"search_range_on_surface" toml:"search_range_on_surface"`
	SearchRangeNoSurface  float64 `yaml:"search_range_no_surface" toml:"search_range_no_surface"`
	HeldDistanceOnSurface float64 `yaml:"held_distance_on_surface" toml:"held_distance_on_surface"`
}

// LegsTuning places a pair of legs on the character and controls how
// held legs slip.
type LegsTuning struct {
	HipHeight float64 `yaml:"hip_height" toml:"hip_height"`
	HipWidth  float64 `yaml:"hip_width" toml:"hip_width"`
	Length    float64 `yaml:"length" toml:"length"`

	// legs slide when speed toward input drops under SlideThreshold
	SlideThreshold float64 `yaml:"slide_threshold" toml:"slide_threshold"`
	SlideSpeed     float64 `yaml:"slide_speed" toml:"slide_speed"`
}

// Config is the on-disk limb spec.
type Config struct {
	Debug bool       `yaml:"debug" toml:"debug"`
	Limb  Tuning     `yaml:"limb" toml:"limb"`
	Legs  LegsTuning `yaml:"legs" toml:"legs"`
}

func (c *Config) Validate() error {
	var errs []error
	if c.Limb.MinMove < 0 {
		errs = append(errs, fmt.Errorf("limb.min_move must not be negative, got %v", c.Limb.MinMove))
	}
	if c.Limb.MaxLength.Min < 0 || c.Limb.MaxLength.Max < c.Limb.MaxLength.Min {
		errs = append(errs, fmt.Errorf("limb.max_length must satisfy 0 <= min <= max, got %+v", c.Limb.MaxLength))
	}
	if c.Legs.Length <= 0 {
		errs = append(errs, fmt.Errorf("legs.length must be positive, got %v", c.Legs.Length))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidTuning, errors.Join(errs...))
	}
	return nil
}
