package component

import "github.com/milk9111/thirdperson/checkpoint"

type Checkpoint struct {
	Checkpointer *checkpoint.Checkpointer
	Spec         string
}

var CheckpointComponent = NewComponent[Checkpoint]()
