package system

import (
	"errors"
	"fmt"

	"github.com/milk9111/thirdperson/ecs"
	"github.com/milk9111/thirdperson/ecs/component"
)

// CheckpointSystem runs each character's save and load machines against
// the frame the character just committed.
type CheckpointSystem struct{}

func NewCheckpointSystem() *CheckpointSystem {
	return &CheckpointSystem{}
}

func (s *CheckpointSystem) Update(w *ecs.World) error {
	if w == nil {
		return nil
	}

	var errs []error
	ecs.ForEach(w, component.CheckpointComponent.Kind(), func(e ecs.Entity, cp *component.Checkpoint) {
		if cp.Checkpointer == nil {
			return
		}
		if err := cp.Checkpointer.Update(w.Context(), w.Delta()); err != nil {
			errs = append(errs, fmt.Errorf("checkpoint: entity %v: %w", e, err))
		}
	})
	return errors.Join(errs...)
}
