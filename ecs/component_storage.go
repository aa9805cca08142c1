package ecs

import "github.com/bits-and-blooms/bitset"

// slotState describes what a storage slot holds for an entity.
type slotState uint8

const (
	slotEmpty slotState = iota
	slotPresent
	// slotStale holds a value written for a previous tenant of the entity id.
	slotStale
)

// componentStorage is the type-erased view of a per-kind table that the world uses
// for destroy, reset and queries.
type componentStorage interface {
	Has(e Entity) bool
	// Remove clears the presence flag and reports whether it was set.
	Remove(e Entity) bool
	// Retire is called on destroy: the association disappears but any value stays
	// in place for a later tenant of the same id to observe.
	Retire(e Entity)
	Count() int
	// AppendEntities appends present entities in ascending order.
	AppendEntities(dst []Entity) []Entity
	Clear()
}

// valueStorage is implemented by the tables behind data kinds.
type valueStorage[T any] interface {
	componentStorage
	Set(e Entity, value T)
	Get(e Entity) (*T, slotState)
}

const (
	genericBlockSize = 64
)

// denseStorage is a table of capacity slots keyed directly by entity id.
// Slots are allocated in blocks of genericBlockSize on first write. Blocks are
// held by pointer so values never move once written.
type denseStorage[T any] struct {
	capacity int
	blocks   []*[genericBlockSize]T
	present  *bitset.BitSet
	stale    *bitset.BitSet
}

func newDenseStorage[T any](capacity int) *denseStorage[T] {
	return &denseStorage[T]{
		capacity: capacity,
		blocks:   make([]*[genericBlockSize]T, (capacity+genericBlockSize-1)/genericBlockSize),
		present:  bitset.New(uint(capacity)),
		stale:    bitset.New(uint(capacity)),
	}
}

func (cs *denseStorage[T]) slot(e Entity, allocate bool) *T {
	index := int(e)
	if index < 0 || index >= cs.capacity {
		return nil
	}

	blockIdx := index / genericBlockSize
	slotIdx := index % genericBlockSize

	block := cs.blocks[blockIdx]
	if block == nil {
		if !allocate {
			return nil
		}
		block = new([genericBlockSize]T)
		cs.blocks[blockIdx] = block
	}
	return &block[slotIdx]
}

func (cs *denseStorage[T]) Set(e Entity, value T) {
	ptr := cs.slot(e, true)
	if ptr == nil {
		return
	}
	*ptr = value
	cs.present.Set(uint(e))
	cs.stale.Clear(uint(e))
}

func (cs *denseStorage[T]) Get(e Entity) (*T, slotState) {
	switch {
	case cs.present.Test(uint(e)):
		return cs.slot(e, false), slotPresent
	case cs.stale.Test(uint(e)):
		return cs.slot(e, false), slotStale
	default:
		return nil, slotEmpty
	}
}

func (cs *denseStorage[T]) Has(e Entity) bool {
	return cs.present.Test(uint(e))
}

func (cs *denseStorage[T]) Remove(e Entity) bool {
	had := cs.present.Test(uint(e))
	cs.present.Clear(uint(e))
	cs.stale.Clear(uint(e))
	return had
}

func (cs *denseStorage[T]) Retire(e Entity) {
	if cs.present.Test(uint(e)) {
		cs.present.Clear(uint(e))
		cs.stale.Set(uint(e))
	}
}

func (cs *denseStorage[T]) Count() int {
	return int(cs.present.Count())
}

func (cs *denseStorage[T]) AppendEntities(dst []Entity) []Entity {
	return appendSetBits(dst, cs.present)
}

func (cs *denseStorage[T]) Clear() {
	clear(cs.blocks)
	cs.present.ClearAll()
	cs.stale.ClearAll()
}

// tagStorage only tracks presence.
type tagStorage struct {
	present *bitset.BitSet
}

func newTagStorage(capacity int) *tagStorage {
	return &tagStorage{present: bitset.New(uint(capacity))}
}

func (ts *tagStorage) Set(e Entity) {
	ts.present.Set(uint(e))
}

func (ts *tagStorage) Has(e Entity) bool {
	return ts.present.Test(uint(e))
}

func (ts *tagStorage) Remove(e Entity) bool {
	had := ts.present.Test(uint(e))
	ts.present.Clear(uint(e))
	return had
}

func (ts *tagStorage) Retire(e Entity) {
	ts.present.Clear(uint(e))
}

func (ts *tagStorage) Count() int {
	return int(ts.present.Count())
}

func (ts *tagStorage) AppendEntities(dst []Entity) []Entity {
	return appendSetBits(dst, ts.present)
}

func (ts *tagStorage) Clear() {
	ts.present.ClearAll()
}

func appendSetBits(dst []Entity, set *bitset.BitSet) []Entity {
	for i, ok := set.NextSet(0); ok; i, ok = set.NextSet(i + 1) {
		dst = append(dst, Entity(i))
	}
	return dst
}
