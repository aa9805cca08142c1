package ecs_test

import (
	"fmt"
	"testing"

	"github.com/plus3/roids/ecs"
)

func BenchmarkCreateDestroy(b *testing.B) {
	w, k := newTestWorld(b, ecs.WithMaxEntities(4096))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e, err := w.CreateEntity()
		if err != nil {
			b.Fatal(err)
		}
		k.Position.Set(w, e, Position{X: 1})
		w.DestroyEntity(e)
	}
}

func BenchmarkGet(b *testing.B) {
	w, k := newTestWorld(b)
	e := mustCreate(b, w)
	k.Position.Set(w, e, Position{X: 1})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p, _ := k.Position.Get(w, e)
		p.X++
	}
}

func BenchmarkQuery(b *testing.B) {
	for _, n := range []int{100, 1000, 4000} {
		b.Run(fmt.Sprintf("entities=%d", n), func(b *testing.B) {
			w, k := newTestWorld(b, ecs.WithMaxEntities(n))
			for i := 0; i < n; i++ {
				e := mustCreate(b, w)
				k.Position.Set(w, e, Position{})
				if i%4 == 0 {
					k.Velocity.Set(w, e, Velocity{DX: 1})
				}
			}
			buf := make([]ecs.Entity, 0, n)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				buf = w.AppendQuery(buf[:0], k.Position.Kind())
			}
		})
	}
}

func BenchmarkEach2(b *testing.B) {
	w, k := newTestWorld(b, ecs.WithMaxEntities(4096))
	for i := 0; i < 4096; i++ {
		e := mustCreate(b, w)
		k.Position.Set(w, e, Position{})
		if i%2 == 0 {
			k.Velocity.Set(w, e, Velocity{DX: 1, DY: 1})
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ecs.Each2(w, k.Position, k.Velocity, func(_ ecs.Entity, p *Position, v *Velocity) {
			p.X += v.DX
			p.Y += v.DY
		})
	}
}

func BenchmarkRunFrame(b *testing.B) {
	w, k := newTestWorld(b, ecs.WithMaxEntities(2048))
	for i := 0; i < 1024; i++ {
		e := mustCreate(b, w)
		k.Position.Set(w, e, Position{})
		k.Velocity.Set(w, e, Velocity{DX: 1})
	}
	w.RegisterSystem(&MovementSystem{Position: k.Position, Velocity: k.Velocity})
	w.RegisterSystem(&ecs.DestroySweep{})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := w.RunFrame(0.016); err != nil {
			b.Fatal(err)
		}
	}
}
