package curve

import (
	"math"

	"github.com/milk9111/thirdperson/common"
)

// NotReleased marks an envelope whose input is still held.
const NotReleased = -1.0

// AdsrCurve is an attack/hold/decay/sustain/release envelope. Attack rises to
// MaxScale, decay falls back to 1, and the result is scaled by Sustain.
// Release fades the pre-release value to zero.
type AdsrCurve struct {
	Sustain      float64       `yaml:"sustain" toml:"sustain"`
	HoldDuration float64       `yaml:"hold_duration" toml:"hold_duration"`
	MaxScale     float64       `yaml:"max_scale" toml:"max_scale"`
	Attack       DurationCurve `yaml:"attack" toml:"attack"`
	Decay        DurationCurve `yaml:"decay" toml:"decay"`
	Release      DurationCurve `yaml:"release" toml:"release"`
}

// Evaluate samples the envelope elapsed seconds after it started.
// releasedAt is the elapsed time the input was released at, or NotReleased.
func (a AdsrCurve) Evaluate(elapsed, releasedAt, amplitudeScale float64) float64 {
	released := releasedAt >= 0
	held := elapsed
	if released {
		held = math.Min(releasedAt, elapsed)
	}

	maxScale := a.MaxScale * amplitudeScale
	scale := 1.0
	switch {
	case held < a.Attack.Duration:
		scale = a.Attack.Evaluate(held) * maxScale
	case held < a.Attack.Duration+a.HoldDuration:
		scale = maxScale
	case held < a.Attack.Duration+a.HoldDuration+a.Decay.Duration:
		scale = common.Lerp(maxScale, 1, a.Decay.Evaluate(held-a.Attack.Duration-a.HoldDuration))
	}

	if released {
		releaseElapsed := math.Max(elapsed-releasedAt, 0)
		scale = common.Lerp(scale, 0, a.Release.Evaluate(releaseElapsed))
	}

	return a.Sustain * scale
}
