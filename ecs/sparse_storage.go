package ecs

import (
	"slices"

	"github.com/kamstrup/intmap"
)

type sparseEntry[T any] struct {
	value T
	stale bool
}

// sparseStorage keeps values in an int-keyed hash map instead of a table sized to
// the entity limit. Entries are heap allocated so pointers handed out by Get stay
// valid while the map rehashes.
type sparseStorage[T any] struct {
	items   *intmap.Map[Entity, *sparseEntry[T]]
	present int
}

func newSparseStorage[T any](capacityHint int) *sparseStorage[T] {
	return &sparseStorage[T]{
		items: intmap.New[Entity, *sparseEntry[T]](capacityHint),
	}
}

func (ss *sparseStorage[T]) Set(e Entity, value T) {
	entry, ok := ss.items.Get(e)
	if !ok {
		ss.items.Put(e, &sparseEntry[T]{value: value})
		ss.present++
		return
	}
	if entry.stale {
		entry.stale = false
		ss.present++
	}
	entry.value = value
}

func (ss *sparseStorage[T]) Get(e Entity) (*T, slotState) {
	entry, ok := ss.items.Get(e)
	if !ok {
		return nil, slotEmpty
	}
	if entry.stale {
		return &entry.value, slotStale
	}
	return &entry.value, slotPresent
}

func (ss *sparseStorage[T]) Has(e Entity) bool {
	entry, ok := ss.items.Get(e)
	return ok && !entry.stale
}

func (ss *sparseStorage[T]) Remove(e Entity) bool {
	entry, ok := ss.items.Get(e)
	if !ok {
		return false
	}
	ss.items.Del(e)
	if entry.stale {
		return false
	}
	ss.present--
	return true
}

func (ss *sparseStorage[T]) Retire(e Entity) {
	entry, ok := ss.items.Get(e)
	if !ok || entry.stale {
		return
	}
	entry.stale = true
	ss.present--
}

func (ss *sparseStorage[T]) Count() int {
	return ss.present
}

func (ss *sparseStorage[T]) AppendEntities(dst []Entity) []Entity {
	start := len(dst)
	for e, entry := range ss.items.All() {
		if !entry.stale {
			dst = append(dst, e)
		}
	}
	slices.Sort(dst[start:])
	return dst
}

func (ss *sparseStorage[T]) Clear() {
	ss.items.Clear()
	ss.present = 0
}
