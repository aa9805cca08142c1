package ecs

import (
	"fmt"
	"math"
	"reflect"
)

// Kind identifies a component kind. Valid kinds are in [1, MaxComponents).
type Kind uint16

// pendingDestroyKind is declared first by every registry.
const pendingDestroyKind Kind = 1

const maxKinds = math.MaxUint16 + 1

type kindInfo struct {
	name    string
	typ     reflect.Type
	tag     bool
	sparse  bool
	factory func(capacity int) componentStorage
}

// ComponentRegistry declares the component kinds a world stores.
// Kinds are definitions: they survive World.Reset and World.Deinit, and one registry
// may back several worlds.
type ComponentRegistry struct {
	maxComponents int
	kinds         []kindInfo
}

// RegistryOption configures a ComponentRegistry.
type RegistryOption func(*ComponentRegistry)

// WithMaxComponents sets the exclusive upper bound on kind identifiers.
// Values above 65536 are clamped, since a Kind is 16 bits wide.
func WithMaxComponents(n int) RegistryOption {
	return func(r *ComponentRegistry) {
		r.maxComponents = n
	}
}

// NewComponentRegistry creates a registry holding only the reserved PendingDestroy tag.
func NewComponentRegistry(opts ...RegistryOption) *ComponentRegistry {
	r := &ComponentRegistry{
		maxComponents: DefaultMaxComponents,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.maxComponents <= int(pendingDestroyKind) {
		r.maxComponents = int(pendingDestroyKind) + 1
	}
	// Every kind must fit in a Kind.
	if r.maxComponents > maxKinds {
		r.maxComponents = maxKinds
	}

	r.kinds = make([]kindInfo, 1, r.maxComponents)
	r.kinds = append(r.kinds, kindInfo{
		name: "PendingDestroy",
		tag:  true,
		factory: func(capacity int) componentStorage {
			return newTagStorage(capacity)
		},
	})
	return r
}

// MaxComponents returns the exclusive upper bound on kind identifiers.
func (r *ComponentRegistry) MaxComponents() int {
	return r.maxComponents
}

// Len returns the number of declared kinds, PendingDestroy included.
func (r *ComponentRegistry) Len() int {
	return len(r.kinds) - 1
}

// Name returns the name a kind was registered under.
func (r *ComponentRegistry) Name(kind Kind) string {
	if !r.declared(kind) {
		return ""
	}
	return r.kinds[kind].name
}

// IsTag reports whether kind was registered as a tag.
func (r *ComponentRegistry) IsTag(kind Kind) bool {
	return r.declared(kind) && r.kinds[kind].tag
}

func (r *ComponentRegistry) declared(kind Kind) bool {
	return kind > 0 && int(kind) < len(r.kinds)
}

func (r *ComponentRegistry) declare(info kindInfo) (Kind, error) {
	if len(r.kinds) >= r.maxComponents {
		return 0, fmt.Errorf("register %s: %w (limit %d kinds)", info.name, ErrCapacityExceeded, r.maxComponents-1)
	}
	r.kinds = append(r.kinds, info)
	return Kind(len(r.kinds) - 1), nil
}

type componentConfig struct {
	name   string
	sparse bool
}

// ComponentOption configures a data kind at registration.
type ComponentOption func(*componentConfig)

// Sparse stores the kind in a hash map keyed by entity instead of a table sized to
// the entity limit. Use it for kinds attached to a handful of entities.
func Sparse() ComponentOption {
	return func(c *componentConfig) {
		c.sparse = true
	}
}

// WithName overrides the kind name used in logs and stats.
func WithName(name string) ComponentOption {
	return func(c *componentConfig) {
		c.name = name
	}
}

// RegisterComponent declares a data kind whose values have type T.
func RegisterComponent[T any](r *ComponentRegistry, opts ...ComponentOption) (Component[T], error) {
	t := reflect.TypeFor[T]()
	cfg := componentConfig{name: t.String()}
	for _, opt := range opts {
		opt(&cfg)
	}

	info := kindInfo{
		name:   cfg.name,
		typ:    t,
		sparse: cfg.sparse,
	}
	if cfg.sparse {
		info.factory = func(int) componentStorage {
			return newSparseStorage[T](sparseCapacityHint)
		}
	} else {
		info.factory = func(capacity int) componentStorage {
			return newDenseStorage[T](capacity)
		}
	}

	kind, err := r.declare(info)
	if err != nil {
		return Component[T]{}, err
	}
	return Component[T]{kind: kind}, nil
}

// RegisterTag declares a kind that carries no value.
func RegisterTag(r *ComponentRegistry, name string) (Tag, error) {
	kind, err := r.declare(kindInfo{
		name: name,
		tag:  true,
		factory: func(capacity int) componentStorage {
			return newTagStorage(capacity)
		},
	})
	if err != nil {
		return Tag{}, err
	}
	return Tag{kind: kind}, nil
}

const sparseCapacityHint = 16

// Component is the handle to a data kind holding values of type T.
type Component[T any] struct {
	kind Kind
}

func (c Component[T]) Kind() Kind {
	return c.kind
}

// Set records value as e's association for this kind, overwriting any prior value.
func (c Component[T]) Set(w *World, e Entity, value T) error {
	s, err := lookupValueStorage[T](w, c.kind, e)
	if err != nil {
		return fmt.Errorf("set %s on %s: %w", w.kindName(c.kind), e, err)
	}
	s.Set(e, value)
	return nil
}

// Get returns a pointer to e's value. Writes through the pointer are the stored value.
// An absent association yields (nil, nil). A value left by a previous tenant of a
// recycled id is returned as is; Stale tells the two apart.
func (c Component[T]) Get(w *World, e Entity) (*T, error) {
	s, err := lookupValueStorage[T](w, c.kind, e)
	if err != nil {
		return nil, fmt.Errorf("get %s on %s: %w", w.kindName(c.kind), e, err)
	}
	ptr, state := s.Get(e)
	if state == slotStale {
		w.logger.Debug("stale component read",
			zapKind(w, c.kind),
			zapEntity(e),
		)
	}
	return ptr, nil
}

// Has reports whether e currently holds this kind.
func (c Component[T]) Has(w *World, e Entity) bool {
	return w.Has(c.kind, e)
}

// Remove clears e's association. The stored value is left in place but Get reports
// absence until the next Set.
func (c Component[T]) Remove(w *World, e Entity) error {
	return w.Remove(c.kind, e)
}

// Stale reports whether e's slot holds a value written for a previous tenant of e's id.
func (c Component[T]) Stale(w *World, e Entity) bool {
	s, err := lookupValueStorage[T](w, c.kind, e)
	if err != nil {
		return false
	}
	_, state := s.Get(e)
	return state == slotStale
}

// Query returns an ascending snapshot of the entities holding this kind.
func (c Component[T]) Query(w *World) []Entity {
	return w.Query(c.kind)
}

// Tag is the handle to a kind whose presence is the only signal.
type Tag struct {
	kind Kind
}

func (t Tag) Kind() Kind {
	return t.kind
}

func (t Tag) Set(w *World, e Entity) error {
	s, err := w.lookupLive(t.kind, e)
	if err != nil {
		return fmt.Errorf("set %s on %s: %w", w.kindName(t.kind), e, err)
	}
	ts, ok := s.(*tagStorage)
	if !ok {
		return fmt.Errorf("set %s on %s: %w", w.kindName(t.kind), e, ErrKindMismatch)
	}
	ts.Set(e)
	return nil
}

func (t Tag) Has(w *World, e Entity) bool {
	return w.Has(t.kind, e)
}

func (t Tag) Remove(w *World, e Entity) error {
	return w.Remove(t.kind, e)
}

func (t Tag) Query(w *World) []Entity {
	return w.Query(t.kind)
}

func lookupValueStorage[T any](w *World, kind Kind, e Entity) (valueStorage[T], error) {
	s, err := w.lookupLive(kind, e)
	if err != nil {
		return nil, err
	}
	vs, ok := s.(valueStorage[T])
	if !ok {
		return nil, ErrKindMismatch
	}
	return vs, nil
}
