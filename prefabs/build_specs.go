package prefabs

import (
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// EntityBuildSpec names the prefabs a hosted character is assembled from.
type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

func LoadEntityBuildSpec(filename string) (EntityBuildSpec, error) {
	return LoadSpec[EntityBuildSpec](filename)
}

func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

type CharacterComponentSpec struct {
	Spec string `yaml:"spec"`
	// Spawn and Forward override the level's spawn point when set.
	Spawn   *mgl64.Vec3 `yaml:"spawn"`
	Forward *mgl64.Vec3 `yaml:"forward"`
}

type LegsComponentSpec struct {
	Spec string `yaml:"spec"`
}

type CheckpointComponentSpec struct {
	Spec string `yaml:"spec"`
	// ID keys the persisted checkpoint; empty means a fresh uuid.
	ID string `yaml:"id"`
}

type ScriptComponentSpec struct {
	Path string `yaml:"path"`
}
