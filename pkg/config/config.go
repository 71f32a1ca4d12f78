package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/picogrid/volley-simulations/pkg/behavior"
	"github.com/picogrid/volley-simulations/pkg/engine"
	"github.com/picogrid/volley-simulations/pkg/geometry"
	"github.com/picogrid/volley-simulations/pkg/logger"
	"github.com/picogrid/volley-simulations/pkg/movement"
	"github.com/picogrid/volley-simulations/pkg/physics"
	"github.com/picogrid/volley-simulations/pkg/script"
	"github.com/picogrid/volley-simulations/pkg/world"
)

// EngineConfig holds the complete engine configuration
type EngineConfig struct {
	// Basic simulation settings
	Simulation SimulationSettings `yaml:"simulation"`

	// Player movement tuning
	Movement movement.Params `yaml:"movement"`

	// Ball flight tuning per contact type
	Physics physics.Table `yaml:"physics"`

	// Rally flow and contact gating
	Rally RallyConfig `yaml:"rally"`

	// Scripted rally generator
	Script script.Config `yaml:"script"`

	// Performance settings
	Performance PerformanceConfig `yaml:"performance"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging"`
}

// SimulationSettings holds basic simulation settings
type SimulationSettings struct {
	Name         string  `yaml:"name"`
	Description  string  `yaml:"description"`
	TickRate     int     `yaml:"tick_rate"` // ticks per second
	MaxDt        float64 `yaml:"max_dt"`    // seconds
	Seed         int64   `yaml:"seed"`
	ServingSide  string  `yaml:"serving_side"` // "home", "away"
	HomeRotation int     `yaml:"home_rotation"`
	AwayRotation int     `yaml:"away_rotation"`
}

// RallyConfig defines rally pacing and contact reach
type RallyConfig struct {
	DeadBallPause float64         `yaml:"dead_ball_pause"` // seconds
	Contact       behavior.Params `yaml:"contact"`
}

// PerformanceConfig defines performance settings
type PerformanceConfig struct {
	ThinkWorkers  int    `yaml:"think_workers"`
	StatsView     bool   `yaml:"statsview"`
	StatsViewAddr string `yaml:"statsview_addr"`
}

// LoggingConfig defines logging and reporting settings
type LoggingConfig struct {
	ConsoleLevel string `yaml:"console_level"` // "debug", "info", "warn", "error"
	NoColor      bool   `yaml:"no_color"`
	ShowTime     bool   `yaml:"show_time"`
	EnableReport bool   `yaml:"enable_report"`
	ReportFormat string `yaml:"report_format"` // "json", "markdown"
	ReportPath   string `yaml:"report_path"`
}

var (
	validLevels        = []string{"debug", "info", "warn", "error"}
	validReportFormats = []string{"json", "markdown"}
	validSides         = []string{"home", "away"}
)

func oneOf(value string, valid []string) (string, bool) {
	v := strings.ToLower(value)
	for _, ok := range valid {
		if v == ok {
			return ok, true
		}
	}
	return "", false
}

// Validate checks if the configuration is valid
func (c *EngineConfig) Validate() error {
	if c.Simulation.Name == "" {
		return fmt.Errorf("simulation name is required")
	}

	if c.Simulation.TickRate <= 0 {
		return fmt.Errorf("tick rate must be positive")
	}

	if c.Simulation.MaxDt <= 0 || c.Simulation.MaxDt > 1 {
		return fmt.Errorf("max dt must be between 0 and 1 second")
	}

	if _, ok := oneOf(c.Simulation.ServingSide, validSides); !ok {
		return fmt.Errorf("serving side must be home or away, got %q", c.Simulation.ServingSide)
	}

	if !world.ValidRotation(c.Simulation.HomeRotation) || !world.ValidRotation(c.Simulation.AwayRotation) {
		return fmt.Errorf("%w: home %d, away %d", world.ErrInvalidRotation, c.Simulation.HomeRotation, c.Simulation.AwayRotation)
	}

	if c.Movement.ArrivalRadius <= 0 || c.Movement.PlayerRadius <= 0 {
		return fmt.Errorf("movement radii must be positive")
	}

	for _, contact := range physics.ContactTypes {
		p, ok := c.Physics[contact]
		if !ok {
			return fmt.Errorf("physics table is missing %s", contact)
		}
		if p.MinDuration <= 0 || p.MaxDuration < p.MinDuration {
			return fmt.Errorf("%s duration range is invalid", contact)
		}
		if p.MaxSpread < 0 {
			return fmt.Errorf("%s spread must not be negative", contact)
		}
	}

	if c.Rally.DeadBallPause < 0 {
		return fmt.Errorf("dead ball pause must not be negative")
	}

	if c.Rally.Contact.ContactReach <= 0 {
		return fmt.Errorf("contact reach must be positive")
	}
	if c.Rally.Contact.NetPlane <= 0 || c.Rally.Contact.NetPlane > c.Rally.Contact.BlockDepth {
		return fmt.Errorf("net plane must be positive and within the block depth")
	}

	if err := c.Script.Validate(); err != nil {
		return fmt.Errorf("script: %w", err)
	}

	if c.Performance.ThinkWorkers < 1 {
		return fmt.Errorf("think workers must be at least 1")
	}

	if _, ok := oneOf(c.Logging.ConsoleLevel, validLevels); !ok {
		return fmt.Errorf("unknown console level %q", c.Logging.ConsoleLevel)
	}

	if _, ok := oneOf(c.Logging.ReportFormat, validReportFormats); !ok {
		return fmt.Errorf("unknown report format %q", c.Logging.ReportFormat)
	}

	return nil
}

// Engine converts the configuration into pipeline settings.
func (c *EngineConfig) Engine() engine.Config {
	return engine.Config{
		DefaultDt:     1 / float64(c.Simulation.TickRate),
		MaxDt:         c.Simulation.MaxDt,
		DeadBallPause: c.Rally.DeadBallPause,
		ThinkWorkers:  c.Performance.ThinkWorkers,
		Movement:      c.Movement,
		Physics:       c.Physics,
		Contact:       c.Rally.Contact,
	}
}

// Dt is the fixed tick length.
func (c *EngineConfig) Dt() float64 {
	return 1 / float64(c.Simulation.TickRate)
}

// Side returns the configured serving side.
func (c *EngineConfig) Side() geometry.Side {
	if strings.EqualFold(c.Simulation.ServingSide, "away") {
		return geometry.Away
	}
	return geometry.Home
}

// WorldOptions returns the options for a new world matching the
// configuration.
func (c *EngineConfig) WorldOptions() []world.Option {
	return []world.Option{
		world.WithSeed(c.Simulation.Seed),
		world.WithRotations(c.Simulation.HomeRotation, c.Simulation.AwayRotation),
		world.WithServingSide(c.Side()),
	}
}

// Logger builds a console logger writing to w from the logging section.
func (c *EngineConfig) Logger(w io.Writer) logger.Logger {
	return logger.NewWithConfig(logger.Config{
		Level:    logger.ParseLevel(c.Logging.ConsoleLevel),
		Writer:   w,
		NoColor:  c.Logging.NoColor,
		ShowTime: c.Logging.ShowTime,
	})
}

// String returns a human-readable representation of the configuration
func (c *EngineConfig) String() string {
	return fmt.Sprintf(`Engine Configuration:
  Name: %s
  Description: %s
  Tick Rate: %d Hz
  Max Dt: %.3fs
  Seed: %d

Match:
  Serving Side: %s
  Rotations: home %d, away %d
  Dead Ball Pause: %.2fs
  Serve Delay: %.2fs

Script:
  Extension Rounds: %d
  Continuation: %.2f, decay %.2f

Performance:
  Think Workers: %d
  Statsview: %t

Logging:
  Console Level: %s
  Report Enabled: %t
  Report Format: %s`,
		c.Simulation.Name,
		c.Simulation.Description,
		c.Simulation.TickRate,
		c.Simulation.MaxDt,
		c.Simulation.Seed,
		c.Simulation.ServingSide,
		c.Simulation.HomeRotation,
		c.Simulation.AwayRotation,
		c.Rally.DeadBallPause,
		c.Rally.Contact.ServeDelay,
		c.Script.ExtensionRounds,
		c.Script.Start,
		c.Script.Decay,
		c.Performance.ThinkWorkers,
		c.Performance.StatsView,
		c.Logging.ConsoleLevel,
		c.Logging.EnableReport,
		c.Logging.ReportFormat,
	)
}

// GetDefaultConfig returns the stock engine configuration
func GetDefaultConfig() *EngineConfig {
	eng := engine.DefaultConfig()
	return &EngineConfig{
		Simulation: SimulationSettings{
			Name:         "volley-sim",
			Description:  "Six-a-side volleyball rally simulation",
			TickRate:     60,
			MaxDt:        eng.MaxDt,
			Seed:         1,
			ServingSide:  "home",
			HomeRotation: 1,
			AwayRotation: 1,
		},

		Movement: eng.Movement,

		Physics: eng.Physics,

		Rally: RallyConfig{
			DeadBallPause: eng.DeadBallPause,
			Contact:       eng.Contact,
		},

		Script: script.DefaultConfig(),

		Performance: PerformanceConfig{
			ThinkWorkers:  1,
			StatsView:     false,
			StatsViewAddr: "localhost:18066",
		},

		Logging: LoggingConfig{
			ConsoleLevel: "info",
			ShowTime:     true,
			EnableReport: false,
			ReportFormat: "markdown",
			ReportPath:   "./reports/",
		},
	}
}
