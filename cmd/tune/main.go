// Command tune prints the motion a character spec produces, and with
// -check validates every embedded prefab and level.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/milk9111/thirdperson/levels"
	"github.com/milk9111/thirdperson/prefabs"
)

func main() {
	spec := flag.String("spec", "character.yaml", "character spec to describe")
	dt := flag.Float64("dt", 1.0/60, "fixed timestep used to convert frames to seconds")
	check := flag.Bool("check", false, "validate all embedded prefabs and levels")
	flag.Parse()

	if *check {
		if err := checkAll(); err != nil {
			log.Fatal(err)
		}
		log.Printf("tune: all prefabs and levels valid")
		return
	}

	cs, err := prefabs.LoadCharacterSpec(*spec)
	if err != nil {
		log.Fatal(err)
	}
	describe(os.Stdout, cs, *dt)
}

// apexHeight is how high a jump launched at v climbs under gravity g (< 0).
func apexHeight(v, g float64) float64 {
	if g >= 0 {
		return math.Inf(1)
	}
	return v * v / (2 * -g)
}

func describe(out io.Writer, cs *prefabs.CharacterSpec, dt float64) {
	t := cs.Tuning.Normalized()
	m := t.Movement

	fmt.Fprintf(out, "%s (radius %.2f)\n", cs.Name, cs.Radius)
	fmt.Fprintf(out, "  max speed        %.2f m/s\n", m.MaxPlanarSpeed())
	fmt.Fprintf(out, "  time to max      %.2f s\n", m.TimeToMaxSpeed())
	fmt.Fprintf(out, "  time to stop     %.2f s\n", m.TimeToStop())
	fmt.Fprintf(out, "  pivot decel      %.2f m/s²\n", m.PivotDeceleration())
	fmt.Fprintf(out, "  coyote window    %.3f s\n", float64(t.Air.MaxCoyoteFrames)*dt)
	fmt.Fprintf(out, "  jump buffer      %.3f s\n", float64(t.Air.JumpBufferFrames)*dt)

	for i, j := range t.Air.Jumps {
		count := fmt.Sprint(j.Count)
		if j.Count == 0 {
			count = "unlimited"
		}
		tap := j.VerticalSpeed(j.SquatPercent(j.MinJumpSquatFrames))
		full := j.VerticalSpeed(1)
		fmt.Fprintf(out, "  jump %d x%s: tap %.2f m, full %.2f m, squat %d-%d frames\n",
			i+1, count, apexHeight(tap, t.Air.JumpGravity), apexHeight(full, t.Air.JumpGravity),
			j.MinJumpSquatFrames, j.MaxJumpSquatFrames)
	}
}

func checkAll() error {
	var errs []error

	_ = fs.WalkDir(prefabs.PrefabsFS, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if err := checkPrefab(path); err != nil {
			errs = append(errs, err)
		}
		return nil
	})

	_ = fs.WalkDir(levels.LevelsFS, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if _, err := levels.LoadLevelFromFS(path); err != nil {
			errs = append(errs, err)
		}
		return nil
	})

	scripts, _ := fs.Glob(prefabs.ScriptsFS, "scripts/*.tengo")
	for _, s := range scripts {
		if _, err := prefabs.LoadScript(filepath.Base(s)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// checkPrefab loads a prefab as whatever its contents say it is.
func checkPrefab(name string) error {
	build, err := prefabs.LoadEntityBuildSpec(name)
	if err != nil {
		return err
	}
	if len(build.Components) > 0 {
		return nil
	}

	switch {
	case strings.HasPrefix(name, "limb"):
		_, err = prefabs.LoadLimbConfig(name)
	case strings.HasPrefix(name, "checkpoint"):
		_, err = prefabs.LoadCheckpointTuning(name)
	default:
		_, err = prefabs.LoadCharacterSpec(name)
	}
	return err
}
