package ecs_test

import (
	"testing"

	"github.com/plus3/roids/ecs"
	"github.com/stretchr/testify/require"
)

// Common test component types
type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Health struct {
	Current int
	Max     int
}

type Score int32

type testKinds struct {
	Position ecs.Component[Position]
	Velocity ecs.Component[Velocity]
	Health   ecs.Component[Health]
	Score    ecs.Component[Score]
	Player   ecs.Tag
	Asteroid ecs.Tag
}

func newTestRegistry(t testing.TB) (*ecs.ComponentRegistry, testKinds) {
	t.Helper()

	registry := ecs.NewComponentRegistry()
	var k testKinds
	var err error

	k.Position, err = ecs.RegisterComponent[Position](registry)
	require.NoError(t, err)
	k.Velocity, err = ecs.RegisterComponent[Velocity](registry)
	require.NoError(t, err)
	k.Health, err = ecs.RegisterComponent[Health](registry)
	require.NoError(t, err)
	k.Score, err = ecs.RegisterComponent[Score](registry, ecs.Sparse())
	require.NoError(t, err)
	k.Player, err = ecs.RegisterTag(registry, "Player")
	require.NoError(t, err)
	k.Asteroid, err = ecs.RegisterTag(registry, "Asteroid")
	require.NoError(t, err)

	return registry, k
}

// newTestWorld returns an initialized world over the common test kinds.
func newTestWorld(t testing.TB, opts ...ecs.Option) (*ecs.World, testKinds) {
	t.Helper()

	registry, k := newTestRegistry(t)
	w := ecs.NewWorld(registry, opts...)
	require.NoError(t, w.Init())
	t.Cleanup(func() {
		if w.Running() {
			_ = w.Deinit()
		}
	})
	return w, k
}

func mustCreate(t testing.TB, w *ecs.World) ecs.Entity {
	t.Helper()
	e, err := w.CreateEntity()
	require.NoError(t, err)
	return e
}

// must is used by examples, which have no *testing.T.
func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
