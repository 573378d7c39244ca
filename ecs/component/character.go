package component

import (
	"github.com/milk9111/thirdperson/character"
	"github.com/milk9111/thirdperson/world"
)

// Character is a simulated character and the body it collides with.
type Character struct {
	Character *character.Character
	Collider  *world.Collider
	// Spec is the prefab the tuning was loaded from.
	Spec string
}

var CharacterComponent = NewComponent[Character]()
