package ecs

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"go.uber.org/zap"
)

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	FrameCount      int64
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	name           string
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

// Scheduler runs the world's systems in registration order.
type Scheduler struct {
	logger      *zap.Logger
	systems     []System
	systemStats []*systemStatsInternal
	commands    *Commands
	frames      int64
	inFrame     bool
}

func newScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		logger:   logger,
		systems:  make([]System, 0),
		commands: newCommands(),
	}
}

// Register appends a system to the schedule.
// A system registered while a frame is running first executes in the next frame.
func (s *Scheduler) Register(system System) {
	s.systems = append(s.systems, system)
	s.systemStats = append(s.systemStats, &systemStatsInternal{
		name:        systemName(system),
		minDuration: time.Duration(1<<63 - 1),
	})
	s.logger.Debug("system registered",
		zap.String("system", systemName(system)),
		zap.Int("position", len(s.systems)-1),
	)
}

// Len returns the number of registered systems.
func (s *Scheduler) Len() int {
	return len(s.systems)
}

func systemName(system System) string {
	if named, ok := system.(interface{ Name() string }); ok {
		return named.Name()
	}

	systemType := reflect.TypeOf(system)
	if systemType.Kind() == reflect.Ptr {
		systemType = systemType.Elem()
	}
	return systemType.Name()
}

// once executes every registered system with dt, then flushes the frame's commands.
// A frame that panics drops whatever it had queued.
func (s *Scheduler) once(w *World, dt float64) error {
	s.inFrame = true
	flushed := false
	defer func() {
		s.inFrame = false
		if !flushed {
			s.commands.reset()
		}
	}()

	frame := &UpdateFrame{
		DeltaTime: dt,
		World:     w,
		Commands:  s.commands,
	}

	// Systems appended during the frame are outside this slice header.
	systems := s.systems
	stats := s.systemStats
	for i, system := range systems {
		start := time.Now()
		system.Execute(frame)
		duration := time.Since(start)

		st := stats[i]
		st.executionCount++
		st.lastDuration = duration
		st.totalDuration += duration

		if duration < st.minDuration {
			st.minDuration = duration
		}
		if duration > st.maxDuration {
			st.maxDuration = duration
		}
	}

	s.frames++
	err := s.commands.Flush(w)
	flushed = true
	return err
}

func (s *Scheduler) clear() {
	s.systems = s.systems[:0]
	s.systemStats = s.systemStats[:0]
	s.commands.reset()
	s.frames = 0
}

// Stats returns statistics about system execution.
func (s *Scheduler) Stats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(s.systems),
		FrameCount:  s.frames,
		Systems:     make([]SystemStats, len(s.systemStats)),
	}

	var totalExecs int64
	for i, internal := range s.systemStats {
		avgDuration := time.Duration(0)
		minDuration := internal.minDuration
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
		} else {
			minDuration = 0
		}

		stats.Systems[i] = SystemStats{
			Name:           internal.name,
			ExecutionCount: internal.executionCount,
			MinDuration:    minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
		totalExecs += internal.executionCount
	}

	stats.TotalExecutions = totalExecs
	return stats
}

// RegisterSystem appends system to the world's schedule.
func (w *World) RegisterSystem(system System) {
	w.scheduler.Register(system)
}

// RunFrame invokes every registered system in registration order, each receiving dt,
// then applies the frame's deferred commands. Errors from applying commands are
// returned together once every command has been attempted.
func (w *World) RunFrame(dt float64) error {
	if !w.running {
		return fmt.Errorf("run frame: %w", ErrNotRunning)
	}
	if w.scheduler.inFrame {
		return fmt.Errorf("run frame: %w", ErrFrameInProgress)
	}
	return w.scheduler.once(w, dt)
}

// Run executes frames at the given interval until ctx is cancelled or a frame fails.
// Cancellation is not an error.
func (w *World) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			if err := w.RunFrame(dt); err != nil {
				return err
			}
		}
	}
}
