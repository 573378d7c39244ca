package ecs

import "errors"

// Scheduler runs systems in the order they were added.
type Scheduler struct {
	systems []System
}

func (s *Scheduler) Add(system System) {
	if system == nil {
		return
	}
	s.systems = append(s.systems, system)
}

// Update runs every system even when an earlier one fails.
func (s *Scheduler) Update(w *World) error {
	var errs []error
	for _, system := range s.systems {
		if err := system.Update(w); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
