package component

import "github.com/milk9111/thirdperson/character"

// Input is the intent pushed into an undriven character each tick.
type Input struct {
	Frame character.InputFrame
}

var InputComponent = NewComponent[Input]()
