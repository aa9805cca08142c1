package ecs

// System represents a behavior that runs once per frame.
// User-defined systems implement this interface and may keep state, such as reusable
// Query values, in their own fields between frames.
type System interface {
	Execute(frame *UpdateFrame)
}

// SystemFunc adapts a plain function to System.
type SystemFunc func(frame *UpdateFrame)

func (f SystemFunc) Execute(frame *UpdateFrame) {
	f(frame)
}

type namedSystem struct {
	name string
	fn   SystemFunc
}

func (s namedSystem) Execute(frame *UpdateFrame) {
	s.fn(frame)
}

func (s namedSystem) Name() string {
	return s.name
}

// NamedSystem wraps fn with the name reported in scheduler stats.
func NamedSystem(name string, fn SystemFunc) System {
	return namedSystem{name: name, fn: fn}
}
