package ecs

import "fmt"

// Entity is an opaque identifier in [0, MaxEntities).
// Identifiers are recycled: a destroyed entity's id is handed out again by a later
// CreateEntity, lowest id first.
type Entity uint32

func (e Entity) String() string {
	return fmt.Sprintf("Entity(%d)", uint32(e))
}

// Handle is a generation-checked reference to an entity.
// A Handle stops resolving once its entity is destroyed, even if the id is reused.
// Handles taken before a World.Reset or a Deinit/Init cycle never resolve afterwards.
type Handle struct {
	Entity     Entity
	Generation uint32

	epoch uint32
}

func (h Handle) String() string {
	return fmt.Sprintf("Entity(%d:%d)", uint32(h.Entity), h.Generation)
}
