package system

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/milk9111/thirdperson/ecs"
	"github.com/milk9111/thirdperson/ecs/component"
	"github.com/milk9111/thirdperson/levels"
	"github.com/milk9111/thirdperson/prefabs"
)

// ReloadSystem consumes ReloadRequest entities between ticks. A request
// for the running level rebuilds the collision space, a script request
// detaches the script so it recompiles, and any other path reloads the
// tunings loaded from that prefab. A file that fails to load leaves the
// old values in place.
type ReloadSystem struct {
	LevelPath string
}

func NewReloadSystem(levelPath string) *ReloadSystem {
	return &ReloadSystem{LevelPath: levelPath}
}

func (s *ReloadSystem) Update(w *ecs.World) error {
	if w == nil {
		return nil
	}

	var paths []string
	ecs.ForEach(w, component.ReloadRequestComponent.Kind(), func(e ecs.Entity, req *component.ReloadRequest) {
		paths = append(paths, req.Path)
		ecs.DestroyEntity(w, e)
	})

	var errs []error
	for _, path := range paths {
		if err := s.reload(w, path); err != nil {
			log.Printf("reload: %s: %v", path, err)
			errs = append(errs, fmt.Errorf("reload %s: %w", path, err))
		}
	}
	return errors.Join(errs...)
}

func (s *ReloadSystem) reload(w *ecs.World, path string) error {
	switch {
	case s.isLevel(path):
		return s.reloadLevel(w, path)
	case prefabs.IsScript(path):
		n := reloadScripts(w, prefabs.Name(path))
		log.Printf("reload: %s: restarted %d scripts", path, n)
		return nil
	default:
		n, err := reloadSpecs(w, prefabs.Name(path))
		log.Printf("reload: %s: retuned %d components", path, n)
		return err
	}
}

func (s *ReloadSystem) isLevel(path string) bool {
	return s.LevelPath != "" && filepath.Base(path) == filepath.Base(s.LevelPath)
}

func (s *ReloadSystem) reloadLevel(w *ecs.World, path string) error {
	pw := w.PhysicsWorld()
	if pw == nil {
		return nil
	}
	level, err := levels.Load(path)
	if err != nil {
		return err
	}
	return pw.Reload(level)
}

func reloadScripts(w *ecs.World, name string) int {
	n := 0
	ecs.ForEach2(w, component.CharacterComponent.Kind(), component.ScriptComponent.Kind(), func(e ecs.Entity, ch *component.Character, sc *component.Script) {
		if prefabs.Name(sc.Path) != name {
			return
		}
		if sc.Source != nil && ch.Character != nil {
			ch.Character.Release()
		}
		sc.Source = nil
		sc.Failed = false
		n++
	})
	return n
}

func reloadSpecs(w *ecs.World, name string) (int, error) {
	n := 0
	var errs []error

	ecs.ForEach(w, component.CharacterComponent.Kind(), func(e ecs.Entity, ch *component.Character) {
		if ch.Character == nil || prefabs.Name(ch.Spec) != name {
			return
		}
		spec, err := prefabs.LoadCharacterSpec(name)
		if err == nil {
			err = ch.Character.SetTuning(&spec.Tuning)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("entity %v: %w", e, err))
			return
		}
		if ch.Collider != nil {
			ch.Collider.Radius = spec.Radius
		}
		n++
	})

	ecs.ForEach(w, component.LegsComponent.Kind(), func(e ecs.Entity, legs *component.Legs) {
		if legs.Legs == nil || prefabs.Name(legs.Spec) != name {
			return
		}
		cfg, err := prefabs.LoadLimbConfig(name)
		if err != nil {
			errs = append(errs, fmt.Errorf("entity %v: %w", e, err))
			return
		}
		legs.Legs.SetConfig(cfg)
		n++
	})

	ecs.ForEach(w, component.CheckpointComponent.Kind(), func(e ecs.Entity, cp *component.Checkpoint) {
		if cp.Checkpointer == nil || prefabs.Name(cp.Spec) != name {
			return
		}
		t, err := prefabs.LoadCheckpointTuning(name)
		if err != nil {
			errs = append(errs, fmt.Errorf("entity %v: %w", e, err))
			return
		}
		cp.Checkpointer.SetTuning(t)
		n++
	})

	return n, errors.Join(errs...)
}
