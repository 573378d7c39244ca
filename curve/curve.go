package curve

import (
	"fmt"
	"sort"

	"github.com/milk9111/thirdperson/common"
	"gopkg.in/yaml.v3"
)

// Keyframe is a single (time, value) point on a curve.
type Keyframe struct {
	T float64
	V float64
}

// Curve is a piecewise-linear curve through sorted keyframes. Values outside
// the keyed range clamp to the first/last key. An empty curve is the
// identity.
type Curve struct {
	Keys []Keyframe
}

// Linear returns the identity curve on [0, 1].
func Linear() Curve {
	return Curve{Keys: []Keyframe{{0, 0}, {1, 1}}}
}

// Constant returns a curve that always evaluates to v.
func Constant(v float64) Curve {
	return Curve{Keys: []Keyframe{{0, v}}}
}

// New builds a curve from (t, v) pairs.
func New(pairs ...[2]float64) Curve {
	keys := make([]Keyframe, 0, len(pairs))
	for _, p := range pairs {
		keys = append(keys, Keyframe{T: p[0], V: p[1]})
	}
	sort.SliceStable(keys, func(i, j int) bool { return keys[i].T < keys[j].T })
	return Curve{Keys: keys}
}

func (c Curve) IsEmpty() bool {
	return len(c.Keys) == 0
}

func (c Curve) Evaluate(t float64) float64 {
	n := len(c.Keys)
	switch {
	case n == 0:
		return t
	case n == 1 || t <= c.Keys[0].T:
		return c.Keys[0].V
	case t >= c.Keys[n-1].T:
		return c.Keys[n-1].V
	}

	i := sort.Search(n, func(i int) bool { return c.Keys[i].T >= t })
	a, b := c.Keys[i-1], c.Keys[i]
	if b.T == a.T {
		return b.V
	}
	return common.Lerp(a.V, b.V, (t-a.T)/(b.T-a.T))
}

// UnmarshalYAML accepts a scalar constant, a list of [t, v] pairs, or a
// list of {t, v} maps.
func (c *Curve) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var v float64
		if err := value.Decode(&v); err != nil {
			return fmt.Errorf("curve: %w", err)
		}
		*c = Constant(v)
		return nil
	case yaml.SequenceNode:
		pairs := make([][2]float64, 0, len(value.Content))
		for _, item := range value.Content {
			switch item.Kind {
			case yaml.SequenceNode:
				var p []float64
				if err := item.Decode(&p); err != nil {
					return fmt.Errorf("curve: %w", err)
				}
				if len(p) != 2 {
					return fmt.Errorf("curve: key must have 2 values, got %d", len(p))
				}
				pairs = append(pairs, [2]float64{p[0], p[1]})
			case yaml.MappingNode:
				var k struct {
					T float64 `yaml:"t"`
					V float64 `yaml:"v"`
				}
				if err := item.Decode(&k); err != nil {
					return fmt.Errorf("curve: %w", err)
				}
				pairs = append(pairs, [2]float64{k.T, k.V})
			default:
				return fmt.Errorf("curve: unexpected key node at line %d", item.Line)
			}
		}
		*c = New(pairs...)
		return nil
	default:
		return fmt.Errorf("curve: unexpected node at line %d", value.Line)
	}
}

// UnmarshalTOML mirrors UnmarshalYAML for toml tuning files.
func (c *Curve) UnmarshalTOML(data any) error {
	switch v := data.(type) {
	case float64:
		*c = Constant(v)
		return nil
	case int64:
		*c = Constant(float64(v))
		return nil
	case []any:
		pairs := make([][2]float64, 0, len(v))
		for _, item := range v {
			p, ok := item.([]any)
			if !ok || len(p) != 2 {
				return fmt.Errorf("curve: key must be a [t, v] pair")
			}
			t, err := tomlFloat(p[0])
			if err != nil {
				return err
			}
			val, err := tomlFloat(p[1])
			if err != nil {
				return err
			}
			pairs = append(pairs, [2]float64{t, val})
		}
		*c = New(pairs...)
		return nil
	default:
		return fmt.Errorf("curve: unsupported toml value %T", data)
	}
}

func tomlFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("curve: expected number, got %T", v)
	}
}

// FloatRange is a closed [Min, Max] interval.
type FloatRange struct {
	Min float64 `yaml:"min" toml:"min"`
	Max float64 `yaml:"max" toml:"max"`
}

func (r FloatRange) Lerp(t float64) float64 {
	return common.Lerp(r.Min, r.Max, t)
}

func (r FloatRange) InverseLerp(v float64) float64 {
	return common.InverseLerp(r.Min, r.Max, v)
}

func (r FloatRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// MapOutCurve maps a normalized input through a curve into Dst.
type MapOutCurve struct {
	Curve Curve      `yaml:"curve" toml:"curve"`
	Dst   FloatRange `yaml:"dst" toml:"dst"`
}

func (m MapOutCurve) Evaluate(t float64) float64 {
	return m.Dst.Lerp(m.Curve.Evaluate(t))
}

// MapCurve normalizes an input from Src, shapes it, and maps it into Dst.
type MapCurve struct {
	Src   FloatRange `yaml:"src" toml:"src"`
	Curve Curve      `yaml:"curve" toml:"curve"`
	Dst   FloatRange `yaml:"dst" toml:"dst"`
}

func (m MapCurve) Evaluate(v float64) float64 {
	return m.Dst.Lerp(m.Curve.Evaluate(m.Src.InverseLerp(v)))
}

// DurationCurve is a normalized curve stretched over a duration in seconds.
type DurationCurve struct {
	Curve    Curve   `yaml:"curve" toml:"curve"`
	Duration float64 `yaml:"duration" toml:"duration"`
}

func (d DurationCurve) Evaluate(elapsed float64) float64 {
	if d.Duration <= 0 {
		return d.Curve.Evaluate(1)
	}
	return d.Curve.Evaluate(common.Clamp01(elapsed / d.Duration))
}
