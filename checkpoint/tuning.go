package checkpoint

import (
	"errors"
	"fmt"
)

var ErrInvalidTuning = errors.New("invalid checkpoint tuning")

type Tuning struct {
	Debug bool `yaml:"debug" toml:"debug"`

	// save timings are measured from the start of the crouch
	SaveDelay     float64 `yaml:"save_delay" toml:"save_delay"`
	SaveSmellTime float64 `yaml:"save_smell_time" toml:"save_smell_time"`
	SavePlantTime float64 `yaml:"save_plant_time" toml:"save_plant_time"`

	LoadCastMaxTime       float64 `yaml:"load_cast_max_time" toml:"load_cast_max_time"`
	LoadCastPointTime     float64 `yaml:"load_cast_point_time" toml:"load_cast_point_time"`
	LoadCastPointDistance float64 `yaml:"load_cast_point_distance" toml:"load_cast_point_distance"`
	LoadCancelMultiplier  float64 `yaml:"load_cancel_multiplier" toml:"load_cancel_multiplier"`
}

func (t *Tuning) SmellDuration() float64 {
	return t.SaveSmellTime - t.SaveDelay
}

func (t *Tuning) PlantDuration() float64 {
	return t.SavePlantTime - t.SmellDuration()
}

// LoadDuration is the load cast time for a checkpoint dist away. It is
// exactly LoadCastPointTime at LoadCastPointDistance and approaches
// LoadCastMaxTime as the distance grows.
func (t *Tuning) LoadDuration(dist float64) float64 {
	f := t.LoadCastPointTime / t.LoadCastMaxTime
	k := f / (t.LoadCastPointDistance * (1 - f))
	return t.LoadCastMaxTime * (1 - 1/(k*dist+1))
}

func (t *Tuning) Validate() error {
	var errs []error
	if t.LoadCastMaxTime <= 0 {
		errs = append(errs, fmt.Errorf("load_cast_max_time must be positive, got %v", t.LoadCastMaxTime))
	}
	if t.LoadCastPointTime <= 0 || t.LoadCastPointTime >= t.LoadCastMaxTime {
		errs = append(errs, fmt.Errorf("load_cast_point_time must be in (0, %v), got %v", t.LoadCastMaxTime, t.LoadCastPointTime))
	}
	if t.LoadCastPointDistance <= 0 {
		errs = append(errs, fmt.Errorf("load_cast_point_distance must be positive, got %v", t.LoadCastPointDistance))
	}
	if t.SaveDelay < 0 || t.SmellDuration() < 0 || t.PlantDuration() < 0 {
		errs = append(errs, fmt.Errorf("save times must be ordered, got delay %v smell %v plant %v", t.SaveDelay, t.SaveSmellTime, t.SavePlantTime))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidTuning, errors.Join(errs...))
	}
	return nil
}
