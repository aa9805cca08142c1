package ecs

import "iter"

// Query returns, in ascending order, every alive entity holding kind.
// The result is a copy: later creates, destroys and removals do not change it.
func (w *World) Query(kind Kind) []Entity {
	return w.AppendQuery(nil, kind)
}

// AppendQuery is Query appending into dst, for callers that reuse a buffer across frames.
func (w *World) AppendQuery(dst []Entity, kind Kind) []Entity {
	s := w.lookup(kind)
	if s == nil {
		return dst
	}
	return s.AppendEntities(dst)
}

// QueryAll returns, in ascending order, every alive entity holding all of kinds.
// The smallest table drives the scan.
func (w *World) QueryAll(kinds ...Kind) []Entity {
	return w.appendQueryAll(nil, kinds)
}

func (w *World) appendQueryAll(dst []Entity, kinds []Kind) []Entity {
	if len(kinds) == 0 {
		return dst
	}

	stores := make([]componentStorage, len(kinds))
	smallest := 0
	for i, kind := range kinds {
		s := w.lookup(kind)
		if s == nil {
			return dst
		}
		stores[i] = s
		if s.Count() < stores[smallest].Count() {
			smallest = i
		}
	}

	start := len(dst)
	dst = stores[smallest].AppendEntities(dst)

	// Filter in place.
	kept := start
	for _, e := range dst[start:] {
		match := true
		for i, s := range stores {
			if i != smallest && !s.Has(e) {
				match = false
				break
			}
		}
		if match {
			dst[kept] = e
			kept++
		}
	}
	return dst[:kept]
}

// Query is a reusable query over one or more kinds. Execute takes a snapshot that Iter
// and Entities replay until the next Execute, so a system can mutate the world while
// walking the result.
type Query struct {
	world *World
	kinds []Kind

	cachedEntities []Entity
	cacheValid     bool
}

// NewQuery creates a query matching entities that hold every one of kinds.
func NewQuery(w *World, kinds ...Kind) *Query {
	return &Query{
		world: w,
		kinds: kinds,
	}
}

// Execute refreshes the snapshot.
func (q *Query) Execute() {
	q.cachedEntities = q.cachedEntities[:0]
	if len(q.kinds) == 1 {
		q.cachedEntities = q.world.AppendQuery(q.cachedEntities, q.kinds[0])
	} else {
		q.cachedEntities = q.world.appendQueryAll(q.cachedEntities, q.kinds)
	}
	q.cacheValid = true
}

// Iter returns an iterator over the snapshot.
// Panics if Execute() has not been called.
func (q *Query) Iter() iter.Seq[Entity] {
	if !q.cacheValid {
		panic("Query.Iter() called before Query.Execute()")
	}

	return func(yield func(Entity) bool) {
		for _, e := range q.cachedEntities {
			if !yield(e) {
				return
			}
		}
	}
}

// Entities returns the snapshot slice. It is overwritten by the next Execute.
func (q *Query) Entities() []Entity {
	if !q.cacheValid {
		panic("Query.Entities() called before Query.Execute()")
	}
	return q.cachedEntities
}

func (q *Query) Len() int {
	return len(q.cachedEntities)
}
