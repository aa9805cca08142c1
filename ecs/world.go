package ecs

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultMaxEntities   = 1024
	DefaultMaxComponents = 32
)

// World owns the entity registry, one table per declared kind, and the system schedule.
// A World starts uninitialized; Init allocates its storage and Deinit releases it.
type World struct {
	registry    *ComponentRegistry
	maxEntities int
	logger      *zap.Logger

	running   bool
	session   uuid.UUID
	entities  *entityRegistry
	stores    []componentStorage
	scheduler *Scheduler

	// epoch advances on every Init and Reset and is stamped into handles.
	epoch uint32
}

// Option configures a World.
type Option func(*World)

// WithMaxEntities sets the number of entities that may be alive at once.
func WithMaxEntities(n int) Option {
	return func(w *World) {
		w.maxEntities = n
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(w *World) {
		w.logger = logger
	}
}

// NewWorld creates an uninitialized world storing the kinds declared in registry.
func NewWorld(registry *ComponentRegistry, opts ...Option) *World {
	w := &World{
		registry:    registry,
		maxEntities: DefaultMaxEntities,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.registry == nil {
		w.registry = NewComponentRegistry()
	}
	if w.maxEntities <= 0 {
		w.maxEntities = DefaultMaxEntities
	}
	if w.logger == nil {
		w.logger = zap.NewNop()
	}
	w.scheduler = newScheduler(w.logger)
	return w
}

// Init allocates storage for MaxEntities entities across every declared kind.
func (w *World) Init() error {
	if w.running {
		return ErrAlreadyRunning
	}

	w.entities = newEntityRegistry(w.maxEntities)
	w.stores = make([]componentStorage, 0, w.registry.MaxComponents())
	w.syncStores()
	w.session = uuid.New()
	w.epoch++
	w.running = true

	w.logger.Info("world initialized",
		zap.Stringer("session", w.session),
		zap.Int("max_entities", w.maxEntities),
		zap.Int("kinds", w.registry.Len()),
	)
	return nil
}

// Deinit releases all storage and drops the schedule. A later Init starts from empty.
func (w *World) Deinit() error {
	if !w.running {
		return ErrNotRunning
	}
	if w.scheduler.inFrame {
		return fmt.Errorf("deinit: %w", ErrFrameInProgress)
	}

	w.scheduler.clear()
	w.entities = nil
	w.stores = nil
	w.running = false

	w.logger.Info("world deinitialized", zap.Stringer("session", w.session))
	return nil
}

// Reset returns a running world to empty: no systems, no entities, no component data.
// Kind registrations are kept.
func (w *World) Reset() error {
	if !w.running {
		return ErrNotRunning
	}
	if w.scheduler.inFrame {
		return fmt.Errorf("reset: %w", ErrFrameInProgress)
	}

	previous := w.session
	w.scheduler.clear()
	w.entities.clear()
	for _, s := range w.stores {
		if s != nil {
			s.Clear()
		}
	}
	w.session = uuid.New()
	w.epoch++

	w.logger.Info("world reset",
		zap.Stringer("previous_session", previous),
		zap.Stringer("session", w.session),
	)
	return nil
}

func (w *World) Running() bool {
	return w.running
}

// Session identifies the current Init or Reset of the world in logs.
func (w *World) Session() uuid.UUID {
	return w.session
}

func (w *World) Registry() *ComponentRegistry {
	return w.registry
}

func (w *World) MaxEntities() int {
	return w.maxEntities
}

func (w *World) Scheduler() *Scheduler {
	return w.scheduler
}

// CreateEntity returns the lowest free entity id.
func (w *World) CreateEntity() (Entity, error) {
	if !w.running {
		return 0, fmt.Errorf("create entity: %w", ErrNotRunning)
	}

	e, ok := w.entities.create()
	if !ok {
		w.logger.Warn("entity limit reached", zap.Int("max_entities", w.maxEntities))
		return 0, fmt.Errorf("create entity: %w (limit %d)", ErrCapacityExceeded, w.maxEntities)
	}
	if w.entities.recycled(e) {
		w.logger.Debug("recycled entity id", zapEntity(e), zap.Uint32("generation", w.entities.generation(e)))
	}
	return e, nil
}

// DestroyEntity frees e and clears its presence in every kind. Data values are left in
// place and remain readable through Get by the next tenant of the id until overwritten.
// Destroying a dead entity does nothing.
func (w *World) DestroyEntity(e Entity) {
	if !w.running || !w.entities.destroy(e) {
		return
	}
	for _, s := range w.stores {
		if s != nil {
			s.Retire(e)
		}
	}
}

func (w *World) IsAlive(e Entity) bool {
	return w.running && w.entities.isAlive(e)
}

// EntityCount returns the number of alive entities.
func (w *World) EntityCount() int {
	if !w.running {
		return 0
	}
	return w.entities.count()
}

// Handle captures e together with its current generation.
func (w *World) Handle(e Entity) (Handle, error) {
	if !w.IsAlive(e) {
		return Handle{}, fmt.Errorf("handle for %s: %w", e, ErrDeadEntity)
	}
	return Handle{Entity: e, Generation: w.entities.generation(e), epoch: w.epoch}, nil
}

// Resolve returns the entity behind h if it has not been destroyed since h was taken.
func (w *World) Resolve(h Handle) (Entity, bool) {
	if h.epoch != w.epoch || !w.IsAlive(h.Entity) || w.entities.generation(h.Entity) != h.Generation {
		return 0, false
	}
	return h.Entity, true
}

// Has reports whether e is alive and currently holds kind.
func (w *World) Has(kind Kind, e Entity) bool {
	if !w.IsAlive(e) {
		return false
	}
	s := w.lookup(kind)
	return s != nil && s.Has(e)
}

// Remove clears e's association with kind. Removing an absent kind is not an error.
func (w *World) Remove(kind Kind, e Entity) error {
	s, err := w.lookupLive(kind, e)
	if err != nil {
		return fmt.Errorf("remove %s from %s: %w", w.kindName(kind), e, err)
	}
	s.Remove(e)
	return nil
}

// lookup returns the table for kind, creating tables for kinds declared after Init.
func (w *World) lookup(kind Kind) componentStorage {
	if !w.running || !w.registry.declared(kind) {
		return nil
	}
	if int(kind) >= len(w.stores) {
		w.syncStores()
	}
	return w.stores[kind]
}

func (w *World) lookupLive(kind Kind, e Entity) (componentStorage, error) {
	if !w.running {
		return nil, ErrNotRunning
	}
	s := w.lookup(kind)
	if s == nil {
		return nil, ErrUnknownKind
	}
	if !w.entities.isAlive(e) {
		return nil, ErrDeadEntity
	}
	return s, nil
}

func (w *World) syncStores() {
	for i := len(w.stores); i < len(w.registry.kinds); i++ {
		info := w.registry.kinds[i]
		if info.factory == nil {
			w.stores = append(w.stores, nil)
			continue
		}
		w.stores = append(w.stores, info.factory(w.maxEntities))
	}
}

func (w *World) kindName(kind Kind) string {
	if name := w.registry.Name(kind); name != "" {
		return name
	}
	return fmt.Sprintf("kind %d", kind)
}

func zapEntity(e Entity) zap.Field {
	return zap.Uint32("entity", uint32(e))
}

func zapKind(w *World, kind Kind) zap.Field {
	return zap.String("kind", w.kindName(kind))
}
