package rally

import (
	"fmt"
	"time"

	"github.com/picogrid/volley-simulations/pkg/simulation"
	"github.com/picogrid/volley-simulations/pkg/whiteboard"
)

// Config holds the configuration for a full match
type Config struct {
	ConfigFile       string
	PointsToWin      int
	Seed             int64
	ServingSide      string
	HomeRotation     int
	AwayRotation     int
	Strategy         string
	MaxRallyDuration time.Duration // simulated time
	Speed            float64       // 0 runs unpaced, 1 is real time
	Verbose          bool
	EnableReport     bool
	ReportPath       string
	ReplayPath       string
}

// ValidateAndParse validates and parses the raw parameters into a Config
func ValidateAndParse(params map[string]interface{}) (*Config, error) {
	p := simulation.Params(params)
	config := &Config{
		ConfigFile:  p.String("config_file", ""),
		ServingSide: p.String("serving_side", "home"),
		Strategy:    p.String("strategy", whiteboard.Tactical{}.Name()),
		ReportPath:  p.String("report_path", ""),
		ReplayPath:  p.String("replay_path", ""),
	}

	var err error
	if config.PointsToWin, err = p.Int("points_to_win", 5); err != nil {
		return nil, err
	}
	if config.PointsToWin < 1 || config.PointsToWin > 25 {
		return nil, fmt.Errorf("points_to_win must be between 1 and 25")
	}

	seed, err := p.Int("seed", 1)
	if err != nil {
		return nil, err
	}
	config.Seed = int64(seed)

	if config.ServingSide != "home" && config.ServingSide != "away" {
		return nil, fmt.Errorf("serving_side must be home or away")
	}

	if config.HomeRotation, err = p.Int("home_rotation", 1); err != nil {
		return nil, err
	}
	if config.AwayRotation, err = p.Int("away_rotation", 1); err != nil {
		return nil, err
	}
	if config.HomeRotation < 1 || config.HomeRotation > 6 || config.AwayRotation < 1 || config.AwayRotation > 6 {
		return nil, fmt.Errorf("rotations must be between 1 and 6")
	}

	if _, err := whiteboard.StrategyByName(config.Strategy); err != nil {
		return nil, err
	}

	if config.MaxRallyDuration, err = p.Duration("max_rally_duration", 2*time.Minute); err != nil {
		return nil, err
	}
	if config.MaxRallyDuration < 10*time.Second {
		return nil, fmt.Errorf("max_rally_duration must be at least 10s")
	}

	if config.Speed, err = p.Float("speed", 0); err != nil {
		return nil, err
	}
	if config.Speed < 0 || config.Speed > 10 {
		return nil, fmt.Errorf("speed must be between 0 and 10")
	}

	if config.Verbose, err = p.Bool("verbose", false); err != nil {
		return nil, err
	}
	if config.EnableReport, err = p.Bool("enable_report", false); err != nil {
		return nil, err
	}

	return config, nil
}

// overrides maps the match settings onto engine configuration keys.
func (c *Config) overrides() map[string]interface{} {
	o := map[string]interface{}{
		"seed":          c.Seed,
		"serving_side":  c.ServingSide,
		"home_rotation": c.HomeRotation,
		"away_rotation": c.AwayRotation,
		"enable_report": c.EnableReport,
	}
	if c.ReportPath != "" {
		o["report_path"] = c.ReportPath
	}
	return o
}
