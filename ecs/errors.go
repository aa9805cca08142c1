package ecs

import "errors"

var (
	// ErrCapacityExceeded is returned when creating an entity beyond the world's
	// entity limit or registering a kind beyond the registry's kind limit.
	ErrCapacityExceeded = errors.New("ecs: capacity exceeded")

	// ErrDeadEntity is returned by Set, Get and Remove for identifiers that are not alive.
	ErrDeadEntity = errors.New("ecs: entity is not alive")

	ErrNotRunning      = errors.New("ecs: world is not initialized")
	ErrAlreadyRunning  = errors.New("ecs: world is already initialized")
	ErrFrameInProgress = errors.New("ecs: frame in progress")

	// ErrUnknownKind is returned for kinds the world's registry never declared.
	ErrUnknownKind = errors.New("ecs: unknown component kind")

	// ErrKindMismatch is returned when a handle is used against a registry that
	// declared the kind with a different value type or flavor.
	ErrKindMismatch = errors.New("ecs: component kind mismatch")
)
