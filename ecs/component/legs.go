package component

import "github.com/milk9111/thirdperson/limb"

type Legs struct {
	Legs *limb.Legs
	Spec string
}

var LegsComponent = NewComponent[Legs]()
