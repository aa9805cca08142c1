package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"github.com/plus3/roids/internal/config"
	"github.com/plus3/roids/internal/logging"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ecs-stress: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to a TOML or YAML config file. Defaults to $"+config.EnvPath+".")
	duration := flag.Duration("duration", 0, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 0, "The number of asteroids kept in the field.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	profileMode := flag.String("profile", "", "Write a cpu or mem profile to the working directory.")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	// Flags given explicitly override the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "duration":
			cfg.Stress.Duration = *duration
		case "entities":
			cfg.Stress.Entities = *entityCount
		case "gc-pause-metrics":
			cfg.Stress.GCPauseMetrics = *gcPauseMetrics
		case "profile":
			cfg.Stress.Profile = *profileMode
		}
	})
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	switch cfg.Stress.Profile {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	}

	sim, err := newSimulation(cfg, log)
	if err != nil {
		return err
	}
	defer sim.close()

	log.Info("populating world",
		zap.Stringer("session", sim.world.Session()),
		zap.Int("asteroids", cfg.Stress.Entities),
		zap.Int("max_entities", cfg.World.MaxEntities),
	)
	if err := sim.populate(); err != nil {
		return fmt.Errorf("populate: %w", err)
	}

	report := &Report{
		Duration:       cfg.Stress.Duration,
		Entities:       cfg.Stress.Entities,
		MaxEntities:    cfg.World.MaxEntities,
		Seed:           cfg.Stress.Seed,
		Session:        sim.world.Session().String(),
		GCPauseMetrics: cfg.Stress.GCPauseMetrics,
		UpdateTime: Stats{
			Samples: make([]time.Duration, 0),
		},
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	log.Info("running simulation", zap.Duration("duration", cfg.Stress.Duration))
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Stress.Duration)
	defer cancel()

	startTime := time.Now()
	runErr := sim.run(ctx, report)
	report.TotalTime = time.Since(startTime)
	report.UpdateTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)
	report.collect(sim)

	if runErr != nil {
		return runErr
	}
	log.Info("simulation finished", zap.Int64("frames", report.TotalUpdates))

	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		return fmt.Errorf("generate report: %w", err)
	}
	fmt.Println("--- End of Report ---")
	return nil
}
