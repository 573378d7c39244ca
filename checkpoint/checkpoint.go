package checkpoint

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/thirdperson/character"
)

// Checkpoint is a place a character can return to.
type Checkpoint struct {
	Position mgl64.Vec3 `json:"position"`
	Forward  mgl64.Vec3 `json:"forward"`
}

func FromState(f *character.Frame) Checkpoint {
	return Checkpoint{Position: f.Position, Forward: f.Forward}
}

// IntoState builds the frame a character has right after loading cp.
func (cp Checkpoint) IntoState(c *character.Character) (character.Frame, error) {
	return c.Create(cp.Position, cp.Forward)
}
