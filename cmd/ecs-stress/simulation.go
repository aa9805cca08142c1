package main

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/kamstrup/intmap"
	"github.com/plus3/roids/ecs"
	"github.com/plus3/roids/internal/config"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type Position struct {
	X, Y float64
}

type Velocity struct {
	DX, DY float64
}

// Lifetime is the number of seconds a bullet has left.
type Lifetime float64

type Radius float64

const (
	minAsteroidRadius = 5
	maxAsteroidRadius = 25
	bulletSpeed       = 300
)

type kinds struct {
	Position ecs.Component[Position]
	Velocity ecs.Component[Velocity]
	Lifetime ecs.Component[Lifetime]
	Radius   ecs.Component[Radius]
	Asteroid ecs.Tag
	Bullet   ecs.Tag
}

func registerKinds(registry *ecs.ComponentRegistry) (kinds, error) {
	var k kinds
	var err, e error

	k.Position, e = ecs.RegisterComponent[Position](registry)
	err = multierr.Append(err, e)
	k.Velocity, e = ecs.RegisterComponent[Velocity](registry)
	err = multierr.Append(err, e)
	k.Lifetime, e = ecs.RegisterComponent[Lifetime](registry, ecs.Sparse())
	err = multierr.Append(err, e)
	k.Radius, e = ecs.RegisterComponent[Radius](registry)
	err = multierr.Append(err, e)
	k.Asteroid, e = ecs.RegisterTag(registry, "Asteroid")
	err = multierr.Append(err, e)
	k.Bullet, e = ecs.RegisterTag(registry, "Bullet")
	err = multierr.Append(err, e)

	return k, err
}

// simulation is an asteroid field under fire. Asteroids drift and wrap around the
// arena, bullets expire or shatter the first asteroid they touch, and the field is
// topped back up to its configured size every frame.
type simulation struct {
	cfg   config.StressConfig
	log   *zap.Logger
	world *ecs.World
	k     kinds
	rng   *rand.Rand

	collisions *collisionSystem
	sweep      *ecs.DestroySweep
	respawn    *respawnSystem
	gun        *gunSystem
}

func newSimulation(cfg *config.Config, log *zap.Logger) (*simulation, error) {
	registry := ecs.NewComponentRegistry(ecs.WithMaxComponents(cfg.World.MaxComponents))
	k, err := registerKinds(registry)
	if err != nil {
		return nil, fmt.Errorf("register kinds: %w", err)
	}

	world := ecs.NewWorld(registry,
		ecs.WithMaxEntities(cfg.World.MaxEntities),
		ecs.WithLogger(log.Named("ecs")),
	)
	if err := world.Init(); err != nil {
		return nil, err
	}

	s := &simulation{
		cfg:   cfg.Stress,
		log:   log,
		world: world,
		k:     k,
		rng:   rand.New(rand.NewPCG(cfg.Stress.Seed, cfg.Stress.Seed^0x9e3779b97f4a7c15)),
	}

	s.collisions = &collisionSystem{
		sim:      s,
		cellSize: 2 * maxAsteroidRadius,
		grid:     intmap.New[uint64, []ecs.Entity](256),
	}
	s.sweep = &ecs.DestroySweep{}
	s.respawn = &respawnSystem{sim: s}
	s.gun = &gunSystem{sim: s}

	world.RegisterSystem(&movementSystem{sim: s})
	world.RegisterSystem(&lifetimeSystem{sim: s})
	world.RegisterSystem(s.collisions)
	world.RegisterSystem(s.sweep)
	world.RegisterSystem(s.respawn)
	world.RegisterSystem(s.gun)

	return s, nil
}

// populate creates the initial asteroid field.
func (s *simulation) populate() error {
	for i := 0; i < s.cfg.Entities; i++ {
		e, err := s.world.CreateEntity()
		if err != nil {
			return err
		}
		if err := s.spawnAsteroid(s.world, e); err != nil {
			return err
		}
	}
	return nil
}

func (s *simulation) spawnAsteroid(w *ecs.World, e ecs.Entity) error {
	size := s.cfg.ArenaSize
	angle := s.rng.Float64() * 2 * math.Pi
	speed := 10 + s.rng.Float64()*40
	return multierr.Combine(
		s.k.Position.Set(w, e, Position{X: s.rng.Float64() * size, Y: s.rng.Float64() * size}),
		s.k.Velocity.Set(w, e, Velocity{DX: math.Cos(angle) * speed, DY: math.Sin(angle) * speed}),
		s.k.Radius.Set(w, e, Radius(minAsteroidRadius+s.rng.Float64()*(maxAsteroidRadius-minAsteroidRadius))),
		s.k.Asteroid.Set(w, e),
	)
}

func (s *simulation) spawnBullet(w *ecs.World, e ecs.Entity) error {
	size := s.cfg.ArenaSize
	angle := s.rng.Float64() * 2 * math.Pi
	return multierr.Combine(
		s.k.Position.Set(w, e, Position{X: size / 2, Y: size / 2}),
		s.k.Velocity.Set(w, e, Velocity{DX: math.Cos(angle) * bulletSpeed, DY: math.Sin(angle) * bulletSpeed}),
		s.k.Lifetime.Set(w, e, Lifetime(s.cfg.BulletLifetime.Seconds())),
		s.k.Bullet.Set(w, e),
	)
}

func (s *simulation) step(dt float64) error {
	return s.world.RunFrame(dt)
}

// run steps the world until ctx is done, recording frame times into report.
func (s *simulation) run(ctx context.Context, report *Report) error {
	var tick <-chan time.Time
	if s.cfg.TickRate > 0 {
		ticker := time.NewTicker(s.cfg.TickRate)
		defer ticker.Stop()
		tick = ticker.C
	}

	lastFrameTime := time.Now()
	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-tick:
			}
		} else {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
		}

		deltaTime := time.Since(lastFrameTime)
		lastFrameTime = time.Now()

		updateStart := time.Now()
		if err := s.step(deltaTime.Seconds()); err != nil {
			return fmt.Errorf("frame %d: %w", report.TotalUpdates, err)
		}
		report.UpdateTime.Samples = append(report.UpdateTime.Samples, time.Since(updateStart))
		report.TotalUpdates++
	}
}

func (s *simulation) close() error {
	return s.world.Deinit()
}

func wrap(v, size float64) float64 {
	v = math.Mod(v, size)
	if v < 0 {
		v += size
	}
	return v
}

type movementSystem struct {
	sim *simulation
}

func (m *movementSystem) Execute(frame *ecs.UpdateFrame) {
	size := m.sim.cfg.ArenaSize
	ecs.Each2(frame.World, m.sim.k.Position, m.sim.k.Velocity, func(_ ecs.Entity, p *Position, v *Velocity) {
		p.X = wrap(p.X+v.DX*frame.DeltaTime, size)
		p.Y = wrap(p.Y+v.DY*frame.DeltaTime, size)
	})
}

type lifetimeSystem struct {
	sim *simulation
}

func (l *lifetimeSystem) Execute(frame *ecs.UpdateFrame) {
	w := frame.World
	ecs.Each(w, l.sim.k.Lifetime, func(e ecs.Entity, ttl *Lifetime) {
		*ttl -= Lifetime(frame.DeltaTime)
		if *ttl <= 0 {
			if err := w.MarkForDestruction(e); err != nil {
				l.sim.log.Error("mark expired bullet", zap.Stringer("entity", e), zap.Error(err))
			}
		}
	})
}

// collisionSystem buckets asteroids into a uniform grid and tests each bullet against
// its own cell and the eight around it.
type collisionSystem struct {
	sim      *simulation
	cellSize float64
	grid     *intmap.Map[uint64, []ecs.Entity]

	// Hits counts bullet-asteroid collisions over the run.
	Hits int
}

func (c *collisionSystem) cell(x, y float64) (int32, int32) {
	return int32(math.Floor(x / c.cellSize)), int32(math.Floor(y / c.cellSize))
}

func cellKey(cx, cy int32) uint64 {
	return uint64(uint32(cx))<<32 | uint64(uint32(cy))
}

func (c *collisionSystem) Execute(frame *ecs.UpdateFrame) {
	w := frame.World
	k := c.sim.k

	c.grid.Clear()
	for _, a := range w.QueryAll(k.Asteroid.Kind(), k.Position.Kind(), k.Radius.Kind()) {
		p, err := k.Position.Get(w, a)
		if err != nil || p == nil {
			continue
		}
		key := cellKey(c.cell(p.X, p.Y))
		bucket, _ := c.grid.Get(key)
		c.grid.Put(key, append(bucket, a))
	}

	for _, b := range w.QueryAll(k.Bullet.Kind(), k.Position.Kind()) {
		if ecs.PendingDestroy.Has(w, b) {
			continue
		}
		bp, err := k.Position.Get(w, b)
		if err != nil || bp == nil {
			continue
		}
		if target, ok := c.hit(w, bp); ok {
			c.Hits++
			if err := multierr.Combine(w.MarkForDestruction(b), w.MarkForDestruction(target)); err != nil {
				c.sim.log.Error("mark collision", zap.Stringer("bullet", b), zap.Stringer("asteroid", target), zap.Error(err))
			}
		}
	}
}

func (c *collisionSystem) hit(w *ecs.World, bp *Position) (ecs.Entity, bool) {
	k := c.sim.k
	cx, cy := c.cell(bp.X, bp.Y)
	for dx := int32(-1); dx <= 1; dx++ {
		for dy := int32(-1); dy <= 1; dy++ {
			bucket, ok := c.grid.Get(cellKey(cx+dx, cy+dy))
			if !ok {
				continue
			}
			for _, a := range bucket {
				if ecs.PendingDestroy.Has(w, a) {
					continue
				}
				ap, err := k.Position.Get(w, a)
				if err != nil || ap == nil {
					continue
				}
				r, err := k.Radius.Get(w, a)
				if err != nil || r == nil {
					continue
				}
				ddx, ddy := ap.X-bp.X, ap.Y-bp.Y
				if ddx*ddx+ddy*ddy <= float64(*r)*float64(*r) {
					return a, true
				}
			}
		}
	}
	return 0, false
}

// respawnSystem tops the field back up to its configured size. It runs after the
// sweep so the asteroid count is exact.
type respawnSystem struct {
	sim *simulation

	// Queued is the number of asteroids queued during the current frame.
	Queued int
	// Total counts asteroids respawned over the run.
	Total int
}

func (r *respawnSystem) Execute(frame *ecs.UpdateFrame) {
	w := frame.World
	missing := r.sim.cfg.Entities - len(r.sim.k.Asteroid.Query(w))
	free := w.MaxEntities() - w.EntityCount()
	r.Queued = max(0, min(missing, free))

	for i := 0; i < r.Queued; i++ {
		frame.Commands.Spawn(r.sim.spawnAsteroid)
	}
	r.Total += r.Queued
}

// gunSystem fires bullets from the arena center into whatever capacity the respawn
// system left over.
type gunSystem struct {
	sim *simulation

	// Fired counts bullets spawned over the run.
	Fired int
}

func (g *gunSystem) Execute(frame *ecs.UpdateFrame) {
	w := frame.World
	free := w.MaxEntities() - w.EntityCount() - g.sim.respawn.Queued
	n := max(0, min(g.sim.cfg.BulletsPerTick, free))

	for i := 0; i < n; i++ {
		frame.Commands.Spawn(g.sim.spawnBullet)
	}
	g.Fired += n
}
