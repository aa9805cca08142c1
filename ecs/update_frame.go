package ecs

// UpdateFrame is passed to every system during World.RunFrame.
type UpdateFrame struct {
	// DeltaTime is the elapsed time since the previous frame, as given by the host.
	DeltaTime float64
	World     *World
	Commands  *Commands
}
