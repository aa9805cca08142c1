package ecs

import (
	"github.com/kamstrup/intmap"
	"go.uber.org/multierr"
)

// Commands buffers world mutations that are applied after the last system of a frame
// has returned. Commands are keyed by Handle, so an operation queued against an entity
// that is destroyed before the flush is dropped instead of hitting the id's next tenant.
type Commands struct {
	destroys  []Handle
	destroyed *intmap.Set[Entity]
	removes   []removeCommand
	spawns    []spawnCommand
	defers    []deferCommand
}

func newCommands() *Commands {
	return &Commands{
		destroyed: intmap.NewSet[Entity](64),
	}
}

type removeCommand struct {
	handle Handle
	kind   Kind
}

type spawnCommand struct {
	fn func(w *World, e Entity) error
}

type deferCommand struct {
	fn func()
}

// Destroy tags the entity PendingDestroy right away and guarantees it is destroyed by
// the end of the frame, whether or not a DestroySweep runs after the calling system.
func (c *Commands) Destroy(w *World, e Entity) error {
	h, err := w.Handle(e)
	if err != nil {
		return err
	}
	if err := PendingDestroy.Set(w, e); err != nil {
		return err
	}
	if c.destroyed.Has(e) {
		return nil
	}
	c.destroyed.Add(e)
	c.destroys = append(c.destroys, h)
	return nil
}

// Remove queues removal of kind from the entity.
func (c *Commands) Remove(w *World, kind Kind, e Entity) error {
	h, err := w.Handle(e)
	if err != nil {
		return err
	}
	c.removes = append(c.removes, removeCommand{handle: h, kind: kind})
	return nil
}

// Spawn queues creation of an entity; fn populates it once created.
// If fn returns an error the entity is destroyed again.
func (c *Commands) Spawn(fn func(w *World, e Entity) error) {
	c.spawns = append(c.spawns, spawnCommand{fn: fn})
}

// Defer queues a function execution operation.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, deferCommand{fn: fn})
}

// Len returns the number of queued operations.
func (c *Commands) Len() int {
	return len(c.destroys) + len(c.removes) + len(c.spawns) + len(c.defers)
}

// Flush applies all commands to the world, resetting the buffer state.
// Order: destroys, removes, spawns, defers.
func (c *Commands) Flush(w *World) error {
	var errs error

	for _, h := range c.destroys {
		if e, ok := w.Resolve(h); ok {
			w.DestroyEntity(e)
		}
	}

	for _, cmd := range c.removes {
		e, ok := w.Resolve(cmd.handle)
		if !ok {
			continue
		}
		errs = multierr.Append(errs, w.Remove(cmd.kind, e))
	}

	for _, cmd := range c.spawns {
		e, err := w.CreateEntity()
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if cmd.fn == nil {
			continue
		}
		// A half-populated entity matches no query and would never be swept.
		if err := cmd.fn(w, e); err != nil {
			w.DestroyEntity(e)
			errs = multierr.Append(errs, err)
		}
	}

	for _, df := range c.defers {
		df.fn()
	}

	c.reset()
	return errs
}

func (c *Commands) reset() {
	c.destroys = c.destroys[:0]
	c.destroyed.Clear()
	c.removes = c.removes[:0]
	c.spawns = c.spawns[:0]
	c.defers = c.defers[:0]
}
