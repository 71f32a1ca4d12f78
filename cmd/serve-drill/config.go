package servedrill

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/picogrid/volley-simulations/pkg/geometry"
	"github.com/picogrid/volley-simulations/pkg/simulation"
	"github.com/picogrid/volley-simulations/pkg/whiteboard"
	"github.com/picogrid/volley-simulations/pkg/world"
)

// Config holds the configuration for the serve receive drill
type Config struct {
	ConfigFile    string
	Seed          int64
	Repetitions   int
	ReceivingSide geometry.Side
	Rotation      int
	Strategy      string
	ShowTraces    bool
	Focus         world.Role // empty for every player
	MaxServeTime  time.Duration
}

// ValidateAndParse validates and parses the raw parameters into a Config
func ValidateAndParse(params map[string]interface{}) (*Config, error) {
	p := simulation.Params(params)
	config := &Config{
		ConfigFile: p.String("config_file", ""),
		Strategy:   p.String("strategy", whiteboard.Tactical{}.Name()),
	}

	seed, err := p.Int("seed", 1)
	if err != nil {
		return nil, err
	}
	config.Seed = int64(seed)

	if config.Repetitions, err = p.Int("repetitions", 5); err != nil {
		return nil, err
	}
	if config.Repetitions < 1 || config.Repetitions > 50 {
		return nil, fmt.Errorf("repetitions must be between 1 and 50")
	}

	switch side := strings.ToLower(p.String("receiving_side", "home")); side {
	case "home":
		config.ReceivingSide = geometry.Home
	case "away":
		config.ReceivingSide = geometry.Away
	default:
		return nil, fmt.Errorf("receiving_side must be home or away")
	}

	if config.Rotation, err = p.Int("rotation", 1); err != nil {
		return nil, err
	}
	if !world.ValidRotation(config.Rotation) {
		return nil, fmt.Errorf("rotation must be between 1 and 6")
	}

	if _, err := whiteboard.StrategyByName(config.Strategy); err != nil {
		return nil, err
	}

	if config.ShowTraces, err = p.Bool("show_traces", true); err != nil {
		return nil, err
	}

	focus := strings.ToUpper(p.String("focus", "all"))
	if focus != "ALL" {
		role := world.Role(focus)
		if !lo.Contains(world.Roles, role) {
			return nil, fmt.Errorf("focus must be all or a role, got %s", focus)
		}
		config.Focus = role
	}

	if config.MaxServeTime, err = p.Duration("max_serve_time", 10*time.Second); err != nil {
		return nil, err
	}
	if config.MaxServeTime < time.Second {
		return nil, fmt.Errorf("max_serve_time must be at least 1s")
	}

	return config, nil
}

// rotations puts the receiving team in the drilled rotation.
func (c *Config) rotations() (home, away int) {
	if c.ReceivingSide == geometry.Home {
		return c.Rotation, 1
	}
	return 1, c.Rotation
}
