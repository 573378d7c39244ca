package prefabs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

func TestEmbeddedCharacterSpecs(t *testing.T) {
	cases := []struct {
		file    string
		name    string
		gravity float64
		jumps   int
	}{
		{"character.yaml", "runner", -32, 2},
		{"floaty.toml", "floaty", -12, 1},
	}
	for _, tc := range cases {
		t.Run(tc.file, func(t *testing.T) {
			spec, err := LoadCharacterSpec(tc.file)
			if err != nil {
				t.Fatalf("LoadCharacterSpec: %v", err)
			}
			if spec.Name != tc.name {
				t.Fatalf("name = %q, want %q", spec.Name, tc.name)
			}
			if spec.Tuning.Air.Gravity != tc.gravity {
				t.Fatalf("gravity = %v, want %v", spec.Tuning.Air.Gravity, tc.gravity)
			}
			if len(spec.Tuning.Air.Jumps) != tc.jumps {
				t.Fatalf("jumps = %d, want %d", len(spec.Tuning.Air.Jumps), tc.jumps)
			}
			// the first jump's speed curve is authored as a [t, v] list
			if got := spec.Tuning.Air.Jumps[0].VerticalSpeedCurve.Evaluate(0.5); !mgl64.FloatEqualThreshold(got, 0.5, 1e-12) {
				t.Fatalf("vertical speed curve(0.5) = %v", got)
			}
		})
	}
}

func TestEmbeddedLimbAndCheckpoint(t *testing.T) {
	cfg, err := LoadLimbConfig("limb.yaml")
	if err != nil {
		t.Fatalf("LoadLimbConfig: %v", err)
	}
	if cfg.Legs.Length != 1 || cfg.Limb.MaxLength.Max != 0.9 {
		t.Fatalf("limb config = %+v", cfg)
	}
	if got := cfg.Limb.Shape.Evaluate(0.3); !mgl64.FloatEqualThreshold(got, 0.6, 1e-12) {
		t.Fatalf("shape(0.3) = %v", got)
	}

	tuning, err := LoadCheckpointTuning("checkpoint.toml")
	if err != nil {
		t.Fatalf("LoadCheckpointTuning: %v", err)
	}
	if tuning.LoadCastPointDistance != 20 || tuning.LoadCancelMultiplier != 3 {
		t.Fatalf("checkpoint tuning = %+v", tuning)
	}
}

func TestEntityBuildSpecs(t *testing.T) {
	runner, err := LoadEntityBuildSpec("runner.yaml")
	if err != nil {
		t.Fatalf("LoadEntityBuildSpec(runner): %v", err)
	}
	script, err := DecodeComponentSpec[ScriptComponentSpec](runner.Components["script"])
	if err != nil || script.Path != "patrol.tengo" {
		t.Fatalf("runner script = %+v, %v", script, err)
	}
	ch, err := DecodeComponentSpec[CharacterComponentSpec](runner.Components["character"])
	if err != nil || ch.Spec != "character.yaml" || ch.Spawn != nil {
		t.Fatalf("runner character = %+v, %v", ch, err)
	}

	ghost, err := LoadEntityBuildSpec("ghost.yaml")
	if err != nil {
		t.Fatalf("LoadEntityBuildSpec(ghost): %v", err)
	}
	if _, ok := ghost.Components["legs"]; ok {
		t.Fatalf("ghost has no legs")
	}
	ch, err = DecodeComponentSpec[CharacterComponentSpec](ghost.Components["character"])
	if err != nil {
		t.Fatalf("decode ghost character: %v", err)
	}
	if ch.Spawn == nil || *ch.Spawn != (mgl64.Vec3{4, 6, 0}) {
		t.Fatalf("ghost spawn = %v", ch.Spawn)
	}
}

func TestDecodeComponentSpecNil(t *testing.T) {
	spec, err := DecodeComponentSpec[CheckpointComponentSpec](nil)
	if err != nil || spec != (CheckpointComponentSpec{}) {
		t.Fatalf("nil raw should decode to the zero spec, got %+v, %v", spec, err)
	}
}

func TestLoadPrefersDisk(t *testing.T) {
	old := Dir
	Dir = t.TempDir()
	defer func() { Dir = old }()

	if err := os.WriteFile(filepath.Join(Dir, "checkpoint.toml"), []byte("save_delay = 9\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	spec, err := LoadSpec[struct {
		SaveDelay float64 `toml:"save_delay"`
	}]("checkpoint.toml")
	if err != nil {
		t.Fatalf("LoadSpec: %v", err)
	}
	if spec.SaveDelay != 9 {
		t.Fatalf("save_delay = %v, want the disk override", spec.SaveDelay)
	}

	if _, err := LoadScript("patrol.tengo"); err != nil {
		t.Fatalf("embedded script should still load: %v", err)
	}
}

func TestCleanScriptPath(t *testing.T) {
	cases := map[string]string{
		"patrol.tengo":                 "scripts/patrol.tengo",
		"scripts/patrol.tengo":         "scripts/patrol.tengo",
		"prefabs/scripts/patrol.tengo": "scripts/patrol.tengo",
		"prefabs/patrol.tengo":         "scripts/patrol.tengo",
		"":                             "",
	}
	for in, want := range cases {
		if got := cleanScriptPath(in); got != want {
			t.Fatalf("cleanScriptPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "limb.yaml")
	if err := os.WriteFile(path, []byte("debug: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-w.Events:
		if got != path {
			t.Fatalf("event for %q, want %q", got, path)
		}
	case err := <-w.Errors:
		t.Fatalf("watch error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatalf("no event for %s", path)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Close waits for the watch loop, which closes Events
	for range w.Events {
	}
}
