package ecs_test

import (
	"testing"

	"github.com/plus3/roids/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectStats(t *testing.T) {
	w, k := newTestWorld(t, ecs.WithMaxEntities(64))

	for i := 0; i < 10; i++ {
		e := mustCreate(t, w)
		require.NoError(t, k.Position.Set(w, e, Position{}))
		if i < 3 {
			require.NoError(t, k.Score.Set(w, e, Score(i)))
		}
		if i == 0 {
			require.NoError(t, k.Player.Set(w, e))
		}
	}
	w.DestroyEntity(1)
	require.NoError(t, w.MarkForDestruction(2))

	stats := w.CollectStats()
	assert.Equal(t, 9, stats.EntityCount)
	assert.Equal(t, 64, stats.MaxEntities)
	assert.Equal(t, 7, stats.KindCount)
	assert.Equal(t, ecs.DefaultMaxComponents, stats.MaxComponents)
	require.Len(t, stats.KindBreakdown, 7)

	byName := make(map[string]ecs.KindStats, len(stats.KindBreakdown))
	for _, ks := range stats.KindBreakdown {
		byName[ks.Name] = ks
	}

	assert.Equal(t, ecs.KindStats{Kind: 1, Name: "PendingDestroy", Tag: true, EntityCount: 1}, byName["PendingDestroy"])
	assert.Equal(t, 9, byName["ecs_test.Position"].EntityCount)
	assert.Equal(t, 0, byName["ecs_test.Velocity"].EntityCount)
	assert.Equal(t, 2, byName["ecs_test.Score"].EntityCount)
	assert.True(t, byName["ecs_test.Score"].Sparse)
	assert.Equal(t, 1, byName["Player"].EntityCount)
	assert.True(t, byName["Player"].Tag)
	assert.Equal(t, 0, byName["Asteroid"].EntityCount)
}

func TestCollectStatsUninitialized(t *testing.T) {
	registry, _ := newTestRegistry(t)
	w := ecs.NewWorld(registry)

	stats := w.CollectStats()
	assert.Equal(t, 0, stats.EntityCount)
	require.Len(t, stats.KindBreakdown, 7)
	for _, ks := range stats.KindBreakdown {
		assert.Equal(t, 0, ks.EntityCount)
	}
}
