package ecs

// WorldStats is a point-in-time summary of a world's storage.
type WorldStats struct {
	EntityCount   int
	MaxEntities   int
	KindCount     int
	MaxComponents int
	KindBreakdown []KindStats
}

// KindStats describes one declared kind.
type KindStats struct {
	Kind        Kind
	Name        string
	Tag         bool
	Sparse      bool
	EntityCount int
}

// CollectStats gathers entity and per-kind counts. It reports zero counts for an
// uninitialized world.
func (w *World) CollectStats() WorldStats {
	stats := WorldStats{
		EntityCount:   w.EntityCount(),
		MaxEntities:   w.maxEntities,
		KindCount:     w.registry.Len(),
		MaxComponents: w.registry.MaxComponents(),
		KindBreakdown: make([]KindStats, 0, w.registry.Len()),
	}

	for i := 1; i < len(w.registry.kinds); i++ {
		kind := Kind(i)
		info := w.registry.kinds[i]
		ks := KindStats{
			Kind:   kind,
			Name:   info.name,
			Tag:    info.tag,
			Sparse: info.sparse,
		}
		if s := w.lookup(kind); s != nil {
			ks.EntityCount = s.Count()
		}
		stats.KindBreakdown = append(stats.KindBreakdown, ks)
	}
	return stats
}
