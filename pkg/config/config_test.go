package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/picogrid/volley-simulations/pkg/geometry"
	"github.com/picogrid/volley-simulations/pkg/physics"
)

func TestDefaultConfigIsValid(t *testing.T) {
	config := GetDefaultConfig()
	if err := config.Validate(); err != nil {
		t.Fatalf("Expected default config to be valid, got %v", err)
	}

	if config.Simulation.TickRate != 60 {
		t.Errorf("Expected tick rate 60, got %d", config.Simulation.TickRate)
	}

	if config.Script.ExtensionRounds != 3 {
		t.Errorf("Expected 3 extension rounds, got %d", config.Script.ExtensionRounds)
	}

	if config.Script.Start != 0.6 {
		t.Errorf("Expected continuation start 0.6, got %f", config.Script.Start)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*EngineConfig)
		errMsg string
	}{
		{"missing name", func(c *EngineConfig) { c.Simulation.Name = "" }, "name is required"},
		{"zero tick rate", func(c *EngineConfig) { c.Simulation.TickRate = 0 }, "tick rate"},
		{"max dt above one", func(c *EngineConfig) { c.Simulation.MaxDt = 2 }, "max dt"},
		{"bad serving side", func(c *EngineConfig) { c.Simulation.ServingSide = "left" }, "serving side"},
		{"bad rotation", func(c *EngineConfig) { c.Simulation.AwayRotation = 0 }, "rotation"},
		{"missing physics entry", func(c *EngineConfig) { delete(c.Physics, physics.Block) }, "missing block"},
		{"inverted durations", func(c *EngineConfig) {
			p := c.Physics[physics.Serve]
			p.MaxDuration = p.MinDuration / 2
			c.Physics[physics.Serve] = p
		}, "duration range"},
		{"negative pause", func(c *EngineConfig) { c.Rally.DeadBallPause = -1 }, "dead ball pause"},
		{"bad script", func(c *EngineConfig) { c.Script.Start = 2 }, "script"},
		{"no workers", func(c *EngineConfig) { c.Performance.ThinkWorkers = 0 }, "think workers"},
		{"bad level", func(c *EngineConfig) { c.Logging.ConsoleLevel = "loud" }, "console level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := GetDefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if err == nil {
				t.Fatal("Expected a validation error")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Expected error containing %q, got %q", tt.errMsg, err.Error())
			}
		})
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	config := GetDefaultConfig()
	config.Simulation.Seed = 99
	config.Simulation.ServingSide = "away"
	config.Performance.ThinkWorkers = 4

	if err := SaveConfig(config, path); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loaded.Simulation.Seed != 99 {
		t.Errorf("Expected seed 99, got %d", loaded.Simulation.Seed)
	}
	if loaded.Side() != geometry.Away {
		t.Errorf("Expected serving side AWAY, got %s", loaded.Side())
	}
	if loaded.Performance.ThinkWorkers != 4 {
		t.Errorf("Expected 4 think workers, got %d", loaded.Performance.ThinkWorkers)
	}
	if loaded.Physics[physics.Attack] != config.Physics[physics.Attack] {
		t.Errorf("Expected attack physics to round trip, got %+v", loaded.Physics[physics.Attack])
	}
}

func TestLoadPartialConfigKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "simulation:\n  name: partial\n  tick_rate: 30\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if config.Simulation.TickRate != 30 {
		t.Errorf("Expected tick rate 30, got %d", config.Simulation.TickRate)
	}
	if config.Rally.DeadBallPause != GetDefaultConfig().Rally.DeadBallPause {
		t.Errorf("Expected default dead ball pause, got %f", config.Rally.DeadBallPause)
	}
	if dt := config.Engine().DefaultDt; dt != 1.0/30.0 {
		t.Errorf("Expected default dt 1/30, got %f", dt)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestMergeWithEnvironment(t *testing.T) {
	t.Setenv("VOLLEY_SEED", "1234")
	t.Setenv("VOLLEY_SERVING_SIDE", "AWAY")
	t.Setenv("VOLLEY_THINK_WORKERS", "8")
	t.Setenv("VOLLEY_LOG_LEVEL", "DEBUG")
	t.Setenv("VOLLEY_HOME_ROTATION", "9")
	t.Setenv("VOLLEY_SERVE_DELAY", "0.5")

	config := GetDefaultConfig()
	MergeWithEnvironment(config)

	if config.Simulation.Seed != 1234 {
		t.Errorf("Expected seed 1234, got %d", config.Simulation.Seed)
	}
	if config.Simulation.ServingSide != "away" {
		t.Errorf("Expected serving side away, got %s", config.Simulation.ServingSide)
	}
	if config.Performance.ThinkWorkers != 8 {
		t.Errorf("Expected 8 think workers, got %d", config.Performance.ThinkWorkers)
	}
	if config.Logging.ConsoleLevel != "debug" {
		t.Errorf("Expected console level debug, got %s", config.Logging.ConsoleLevel)
	}
	if config.Simulation.HomeRotation != 1 {
		t.Errorf("Expected out-of-range rotation to be ignored, got %d", config.Simulation.HomeRotation)
	}
	if config.Rally.Contact.ServeDelay != 0.5 {
		t.Errorf("Expected serve delay 0.5, got %f", config.Rally.Contact.ServeDelay)
	}
}

func TestMergeWithCLIOverrides(t *testing.T) {
	config := GetDefaultConfig()
	MergeWithCLIOverrides(config, map[string]interface{}{
		"seed":             7,
		"away_rotation":    3,
		"think_workers":    -2,
		"extension_rounds": 5,
		"log_level":        "warn",
		"statsview":        "yes",
	})

	if config.Simulation.Seed != 7 {
		t.Errorf("Expected seed 7, got %d", config.Simulation.Seed)
	}
	if config.Simulation.AwayRotation != 3 {
		t.Errorf("Expected away rotation 3, got %d", config.Simulation.AwayRotation)
	}
	if config.Performance.ThinkWorkers != 1 {
		t.Errorf("Expected invalid worker count to be ignored, got %d", config.Performance.ThinkWorkers)
	}
	if config.Script.ExtensionRounds != 5 {
		t.Errorf("Expected 5 extension rounds, got %d", config.Script.ExtensionRounds)
	}
	if config.Logging.ConsoleLevel != "warn" {
		t.Errorf("Expected console level warn, got %s", config.Logging.ConsoleLevel)
	}
	if config.Performance.StatsView {
		t.Error("Expected a non-bool statsview override to be ignored")
	}
}

func TestEngineConversion(t *testing.T) {
	config := GetDefaultConfig()
	config.Performance.ThinkWorkers = 3
	eng := config.Engine()

	if eng.ThinkWorkers != 3 {
		t.Errorf("Expected 3 think workers, got %d", eng.ThinkWorkers)
	}
	if eng.MaxDt != config.Simulation.MaxDt {
		t.Errorf("Expected max dt %f, got %f", config.Simulation.MaxDt, eng.MaxDt)
	}
	if eng.Contact != config.Rally.Contact {
		t.Errorf("Expected contact params to carry over, got %+v", eng.Contact)
	}
	if len(config.WorldOptions()) != 3 {
		t.Errorf("Expected 3 world options, got %d", len(config.WorldOptions()))
	}
}
