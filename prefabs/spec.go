package prefabs

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/milk9111/thirdperson/character"
	"github.com/milk9111/thirdperson/checkpoint"
	"github.com/milk9111/thirdperson/limb"
	"gopkg.in/yaml.v3"
)

// LoadSpec decodes a prefab as yaml or toml depending on its extension.
func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &spec); err != nil {
			return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
		}
	default:
		if err := yaml.Unmarshal(data, &spec); err != nil {
			return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
		}
	}

	return spec, nil
}

// CharacterSpec is a character tuning plus the body it collides with.
type CharacterSpec struct {
	Name   string           `yaml:"name" toml:"name"`
	Radius float64          `yaml:"radius" toml:"radius"`
	Tuning character.Tuning `yaml:"tuning" toml:"tuning"`
}

func LoadCharacterSpec(name string) (*CharacterSpec, error) {
	spec, err := LoadSpec[CharacterSpec](name)
	if err != nil {
		return nil, err
	}
	if spec.Radius <= 0 {
		return nil, fmt.Errorf("prefabs: %s: radius must be positive, got %v", name, spec.Radius)
	}
	if err := spec.Tuning.Validate(); err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", name, err)
	}
	return &spec, nil
}

func LoadLimbConfig(name string) (*limb.Config, error) {
	cfg, err := LoadSpec[limb.Config](name)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", name, err)
	}
	return &cfg, nil
}

func LoadCheckpointTuning(name string) (*checkpoint.Tuning, error) {
	t, err := LoadSpec[checkpoint.Tuning](name)
	if err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", name, err)
	}
	return &t, nil
}
