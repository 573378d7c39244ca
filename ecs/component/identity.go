package component

import "github.com/google/uuid"

// Identity names a hosted character. ID is derived from the prefab, so it
// is stable across reloads and restarts and keys the persisted checkpoint.
type Identity struct {
	ID     uuid.UUID
	Name   string
	Prefab string
}

var IdentityComponent = NewComponent[Identity]()
