package system

import (
	"github.com/milk9111/thirdperson/character"
	"github.com/milk9111/thirdperson/ecs"
	"github.com/milk9111/thirdperson/ecs/component"
)

// InputSystem pushes each undriven character's Input component, or an empty
// frame when it has none, so its input window keeps moving. Characters
// driven by a source read their own input and are skipped.
type InputSystem struct{}

func NewInputSystem() *InputSystem {
	return &InputSystem{}
}

func (i *InputSystem) Update(w *ecs.World) error {
	if w == nil {
		return nil
	}

	ecs.ForEach(w, component.CharacterComponent.Kind(), func(e ecs.Entity, ch *component.Character) {
		if ch.Character == nil || ch.Character.IsDriven() {
			return
		}
		var frame character.InputFrame
		if in, ok := ecs.Get(w, e, component.InputComponent.Kind()); ok {
			frame = in.Frame
		}
		ch.Character.Input().Push(frame)
	})
	return nil
}
