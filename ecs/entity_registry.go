package ecs

import "github.com/bits-and-blooms/bitset"

// entityRegistry is the sole authority on entity liveness.
// Free ids are found by scanning the alive table for its lowest clear bit, so a
// recycled id always wins over a never-issued one.
type entityRegistry struct {
	capacity    uint
	alive       *bitset.BitSet
	generations []uint32
	highWater   uint
}

func newEntityRegistry(capacity int) *entityRegistry {
	return &entityRegistry{
		capacity:    uint(capacity),
		alive:       bitset.New(uint(capacity)),
		generations: make([]uint32, capacity),
	}
}

// create returns the lowest free id, or false when every slot is alive.
func (r *entityRegistry) create() (Entity, bool) {
	index, ok := r.alive.NextClear(0)
	if !ok || index >= r.capacity {
		return 0, false
	}

	r.alive.Set(index)
	if index >= r.highWater {
		r.highWater = index + 1
	}
	return Entity(index), true
}

// destroy frees the id and bumps its generation. It reports whether e was alive.
func (r *entityRegistry) destroy(e Entity) bool {
	if !r.isAlive(e) {
		return false
	}
	r.alive.Clear(uint(e))
	r.generations[e]++
	return true
}

func (r *entityRegistry) isAlive(e Entity) bool {
	return uint(e) < r.capacity && r.alive.Test(uint(e))
}

func (r *entityRegistry) generation(e Entity) uint32 {
	if uint(e) >= r.capacity {
		return 0
	}
	return r.generations[e]
}

func (r *entityRegistry) count() int {
	return int(r.alive.Count())
}

// recycled reports whether e sits below the high-water mark of issued ids,
// meaning a previous tenant may have left component data behind.
func (r *entityRegistry) recycled(e Entity) bool {
	return uint(e) < r.highWater && r.generations[e] > 0
}

func (r *entityRegistry) clear() {
	r.alive.ClearAll()
	clear(r.generations)
	r.highWater = 0
}
