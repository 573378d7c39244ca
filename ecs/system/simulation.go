package system

import (
	"errors"
	"fmt"
	"log"

	"github.com/milk9111/thirdperson/character"
	"github.com/milk9111/thirdperson/ecs"
	"github.com/milk9111/thirdperson/ecs/component"
	"golang.org/x/sync/errgroup"
)

// SimulationSystem steps every character once per tick. Characters share
// nothing but the collision space, so they step in parallel.
type SimulationSystem struct {
	// Limit caps concurrent steps; zero or less means no limit.
	Limit int
}

func NewSimulationSystem(limit int) *SimulationSystem {
	return &SimulationSystem{Limit: limit}
}

func (s *SimulationSystem) Update(w *ecs.World) error {
	if w == nil {
		return nil
	}

	type job struct {
		e  ecs.Entity
		ch *character.Character
	}
	var jobs []job
	ecs.ForEach(w, component.CharacterComponent.Kind(), func(e ecs.Entity, ch *component.Character) {
		if ch.Character != nil {
			jobs = append(jobs, job{e: e, ch: ch.Character})
		}
	})
	if len(jobs) == 0 {
		return nil
	}

	delta := w.Delta()
	results := make([]error, len(jobs))
	var g errgroup.Group
	if s.Limit > 0 {
		g.SetLimit(s.Limit)
	}
	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			results[i] = j.ch.Step(delta)
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for i, err := range results {
		if err == nil {
			continue
		}
		j := jobs[i]
		// a script that errors is detached so the character idles
		if sc, ok := ecs.Get(w, j.e, component.ScriptComponent.Kind()); ok && sc.Source != nil {
			j.ch.Release()
			sc.Source = nil
			sc.Failed = true
			log.Printf("script: entity %v: %s detached: %v", j.e, sc.Path, err)
		}
		errs = append(errs, fmt.Errorf("simulation: entity %v: %w", j.e, err))
	}
	return errors.Join(errs...)
}
