package levels

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

//go:embed *.json *.yaml
var LevelsFS embed.FS

// Default is the level the runner loads when none is given.
const Default = "default.json"

var ErrInvalidLevel = errors.New("invalid level")

// Level is a 2D profile in the xy plane, extruded along z.
type Level struct {
	Name     string     `json:"name" yaml:"name"`
	Spawn    mgl64.Vec3 `json:"spawn" yaml:"spawn"`
	Forward  mgl64.Vec3 `json:"forward" yaml:"forward"`
	Segments []Segment  `json:"segments,omitempty" yaml:"segments,omitempty"`
	Boxes    []Box      `json:"boxes,omitempty" yaml:"boxes,omitempty"`
}

type Segment struct {
	A      mgl64.Vec2 `json:"a" yaml:"a"`
	B      mgl64.Vec2 `json:"b" yaml:"b"`
	Radius float64    `json:"radius,omitempty" yaml:"radius,omitempty"`
}

type Box struct {
	Min mgl64.Vec2 `json:"min" yaml:"min"`
	Max mgl64.Vec2 `json:"max" yaml:"max"`
}

func (l *Level) Validate() error {
	var errs []error
	if l.Forward.Len() == 0 {
		errs = append(errs, fmt.Errorf("%w: zero spawn forward", ErrInvalidLevel))
	}
	for i, s := range l.Segments {
		if s.A == s.B {
			errs = append(errs, fmt.Errorf("%w: segment %d has no length", ErrInvalidLevel, i))
		}
		if s.Radius < 0 {
			errs = append(errs, fmt.Errorf("%w: segment %d radius %v", ErrInvalidLevel, i, s.Radius))
		}
	}
	for i, b := range l.Boxes {
		if b.Min[0] >= b.Max[0] || b.Min[1] >= b.Max[1] {
			errs = append(errs, fmt.Errorf("%w: box %d min %v not below max %v", ErrInvalidLevel, i, b.Min, b.Max))
		}
	}
	return errors.Join(errs...)
}

// Parse decodes a level, picking the format from the name's extension.
func Parse(name string, data []byte) (*Level, error) {
	var lvl Level
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &lvl); err != nil {
			return nil, fmt.Errorf("unmarshal level %s: %w", name, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &lvl); err != nil {
			return nil, fmt.Errorf("unmarshal level %s: %w", name, err)
		}
	default:
		return nil, fmt.Errorf("level %s: unknown extension", name)
	}
	if lvl.Name == "" {
		lvl.Name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	if err := lvl.Validate(); err != nil {
		return nil, fmt.Errorf("level %s: %w", name, err)
	}
	return &lvl, nil
}

func LoadLevelFromFS(name string) (*Level, error) {
	data, err := fs.ReadFile(LevelsFS, name)
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	return Parse(name, data)
}

// Load reads a level from disk, falling back to the embedded levels.
func Load(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		return Parse(path, data)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read level: %w", err)
	}
	return LoadLevelFromFS(filepath.Base(path))
}
