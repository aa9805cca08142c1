package ecs

import "go.uber.org/zap"

// PendingDestroy is the reserved tag marking entities for removal by the next sweep.
// Every registry declares it as kind 1.
var PendingDestroy = Tag{kind: pendingDestroyKind}

// MarkForDestruction tags e with PendingDestroy. Other systems keep seeing e through
// their queries until a sweep runs. Marking twice is harmless.
func (w *World) MarkForDestruction(e Entity) error {
	return PendingDestroy.Set(w, e)
}

// Sweep destroys every entity tagged PendingDestroy and returns how many it destroyed.
func (w *World) Sweep() int {
	return len(w.sweep(nil))
}

// sweep reuses buf for the snapshot of marked entities and returns it.
func (w *World) sweep(buf []Entity) []Entity {
	marked := w.AppendQuery(buf[:0], PendingDestroy.kind)
	for _, e := range marked {
		w.DestroyEntity(e)
	}
	if len(marked) > 0 {
		w.logger.Debug("swept entities", zap.Int("count", len(marked)))
	}
	return marked
}

// DestroySweep is the system that honors PendingDestroy. Register it after every
// system that may still need to observe entities marked in the same frame.
type DestroySweep struct {
	// Swept counts entities destroyed over the system's lifetime.
	Swept int

	buf []Entity
}

func (s *DestroySweep) Execute(frame *UpdateFrame) {
	s.buf = frame.World.sweep(s.buf)
	s.Swept += len(s.buf)
}
