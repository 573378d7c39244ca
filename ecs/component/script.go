package component

import "github.com/milk9111/thirdperson/character"

// Script drives a character from a tengo script.
type Script struct {
	Path string
	// Source is nil until the script compiles.
	Source character.InputSource
	Failed bool
}

var ScriptComponent = NewComponent[Script]()
