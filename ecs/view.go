package ecs

import "iter"

// Each calls fn for every entity holding c, in ascending order, with a pointer to its
// value. The entity set is snapshotted before the first call; entities destroyed or
// stripped of c by an earlier fn call are skipped.
func Each[A any](w *World, c Component[A], fn func(Entity, *A)) {
	for _, e := range w.Query(c.kind) {
		if !c.Has(w, e) {
			continue
		}
		a, err := c.Get(w, e)
		if err != nil {
			continue
		}
		fn(e, a)
	}
}

// Each2 is Each over entities holding both ca and cb.
func Each2[A, B any](w *World, ca Component[A], cb Component[B], fn func(Entity, *A, *B)) {
	for _, e := range w.QueryAll(ca.kind, cb.kind) {
		if !ca.Has(w, e) || !cb.Has(w, e) {
			continue
		}
		a, errA := ca.Get(w, e)
		b, errB := cb.Get(w, e)
		if errA != nil || errB != nil {
			continue
		}
		fn(e, a, b)
	}
}

// Each3 is Each over entities holding ca, cb and cc.
func Each3[A, B, C any](w *World, ca Component[A], cb Component[B], cc Component[C], fn func(Entity, *A, *B, *C)) {
	for _, e := range w.QueryAll(ca.kind, cb.kind, cc.kind) {
		if !ca.Has(w, e) || !cb.Has(w, e) || !cc.Has(w, e) {
			continue
		}
		a, errA := ca.Get(w, e)
		b, errB := cb.Get(w, e)
		c, errC := cc.Get(w, e)
		if errA != nil || errB != nil || errC != nil {
			continue
		}
		fn(e, a, b, c)
	}
}

// Row2 is one result of a View2.
type Row2[A, B any] struct {
	Entity Entity
	A      *A
	B      *B
}

// View2 is a reusable typed join over two data kinds, backed by a Query snapshot.
type View2[A, B any] struct {
	world *World
	ca    Component[A]
	cb    Component[B]
	query *Query
}

func NewView2[A, B any](w *World, ca Component[A], cb Component[B]) *View2[A, B] {
	return &View2[A, B]{
		world: w,
		ca:    ca,
		cb:    cb,
		query: NewQuery(w, ca.kind, cb.kind),
	}
}

// Iter snapshots the matching entities and yields their values. Rows whose entity lost
// either kind during iteration are skipped.
func (v *View2[A, B]) Iter() iter.Seq[Row2[A, B]] {
	v.query.Execute()
	return func(yield func(Row2[A, B]) bool) {
		for e := range v.query.Iter() {
			if !v.ca.Has(v.world, e) || !v.cb.Has(v.world, e) {
				continue
			}
			a, errA := v.ca.Get(v.world, e)
			b, errB := v.cb.Get(v.world, e)
			if errA != nil || errB != nil {
				continue
			}
			if !yield(Row2[A, B]{Entity: e, A: a, B: b}) {
				return
			}
		}
	}
}

// Get returns the row for e, or false if e does not hold both kinds.
func (v *View2[A, B]) Get(e Entity) (Row2[A, B], bool) {
	if !v.ca.Has(v.world, e) || !v.cb.Has(v.world, e) {
		return Row2[A, B]{}, false
	}
	a, errA := v.ca.Get(v.world, e)
	b, errB := v.cb.Get(v.world, e)
	if errA != nil || errB != nil {
		return Row2[A, B]{}, false
	}
	return Row2[A, B]{Entity: e, A: a, B: b}, true
}
