package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable consulted when Load is given no path.
const EnvPath = "ROIDS_CONFIG"

type Config struct {
	World   WorldConfig   `toml:"world" yaml:"world"`
	Stress  StressConfig  `toml:"stress" yaml:"stress"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
}

type WorldConfig struct {
	MaxEntities   int `toml:"max_entities" yaml:"max_entities"`
	MaxComponents int `toml:"max_components" yaml:"max_components"`
}

type StressConfig struct {
	Duration time.Duration `toml:"duration" yaml:"duration"`
	// Entities is the number of asteroids kept in the field.
	Entities int `toml:"entities" yaml:"entities"`
	// BulletsPerTick bullets are spawned through the command buffer each frame.
	BulletsPerTick int           `toml:"bullets_per_tick" yaml:"bullets_per_tick"`
	BulletLifetime time.Duration `toml:"bullet_lifetime" yaml:"bullet_lifetime"`
	// TickRate of 0 runs frames back to back.
	TickRate       time.Duration `toml:"tick_rate" yaml:"tick_rate"`
	ArenaSize      float64       `toml:"arena_size" yaml:"arena_size"`
	Seed           uint64        `toml:"seed" yaml:"seed"`
	GCPauseMetrics bool          `toml:"gc_pause_metrics" yaml:"gc_pause_metrics"`
	Profile        string        `toml:"profile" yaml:"profile"` // "", "cpu" or "mem"
}

type LoggingConfig struct {
	Level string `toml:"level" yaml:"level"`
	// Format is "json" or "console".
	Format string `toml:"format" yaml:"format"`
}

var ErrUnsupportedFormat = errors.New("unsupported config format")

// Load reads the file at path, falling back to $ROIDS_CONFIG, and overlays it on the
// defaults. With neither set it returns the defaults. The result is validated.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvPath)
	}
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("config %s: %w %q", path, ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Defaults() *Config {
	return &Config{
		World: WorldConfig{
			MaxEntities:   16384,
			MaxComponents: 32,
		},
		Stress: StressConfig{
			Duration:       10 * time.Second,
			Entities:       10000,
			BulletsPerTick: 8,
			BulletLifetime: 2 * time.Second,
			ArenaSize:      1000,
			Seed:           1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate reports every out-of-range setting at once.
func (c *Config) Validate() error {
	var errs error
	if c.World.MaxEntities <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("world.max_entities must be positive, got %d", c.World.MaxEntities))
	}
	if c.World.MaxComponents < 2 {
		errs = multierr.Append(errs, fmt.Errorf("world.max_components must be at least 2, got %d", c.World.MaxComponents))
	}
	if c.Stress.Duration <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("stress.duration must be positive, got %s", c.Stress.Duration))
	}
	if c.Stress.Entities < 0 || c.Stress.Entities > c.World.MaxEntities {
		errs = multierr.Append(errs, fmt.Errorf("stress.entities must be in [0, %d], got %d", c.World.MaxEntities, c.Stress.Entities))
	}
	if c.Stress.BulletsPerTick < 0 {
		errs = multierr.Append(errs, fmt.Errorf("stress.bullets_per_tick must not be negative, got %d", c.Stress.BulletsPerTick))
	}
	if c.Stress.TickRate < 0 {
		errs = multierr.Append(errs, fmt.Errorf("stress.tick_rate must not be negative, got %s", c.Stress.TickRate))
	}
	if c.Stress.ArenaSize <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("stress.arena_size must be positive, got %g", c.Stress.ArenaSize))
	}
	switch c.Stress.Profile {
	case "", "cpu", "mem":
	default:
		errs = multierr.Append(errs, fmt.Errorf("stress.profile must be cpu or mem, got %q", c.Stress.Profile))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = multierr.Append(errs, fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format))
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("logging.level: %w", err))
	}
	return errs
}
