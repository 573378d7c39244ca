package system

import (
	"errors"
	"fmt"
	"log"

	"github.com/milk9111/thirdperson/ecs"
	"github.com/milk9111/thirdperson/ecs/component"
)

// ScriptSystem compiles scripts on first use and attaches them as their
// character's input source. A script that fails to load is marked Failed
// and left alone until a reload clears it.
type ScriptSystem struct{}

func NewScriptSystem() *ScriptSystem {
	return &ScriptSystem{}
}

func (s *ScriptSystem) Update(w *ecs.World) error {
	if w == nil {
		return nil
	}

	var errs []error
	ecs.ForEach2(w, component.CharacterComponent.Kind(), component.ScriptComponent.Kind(), func(e ecs.Entity, ch *component.Character, sc *component.Script) {
		if ch.Character == nil || sc.Failed {
			return
		}
		if sc.Source == nil {
			src, err := NewScriptInput(sc.Path)
			if err != nil {
				sc.Failed = true
				log.Printf("script: entity %v: %v", e, err)
				errs = append(errs, fmt.Errorf("entity %v: %w", e, err))
				return
			}
			sc.Source = src
		}
		if !ch.Character.IsDriven() {
			ch.Character.Drive(sc.Source)
		}
	})
	return errors.Join(errs...)
}
