package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/picogrid/volley-simulations/pkg/logger"
)

// configDirName is the per-user directory under $HOME.
const configDirName = ".volley-sim"

// DefaultPath returns $HOME/.volley-sim/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, configDirName, "config.yaml"), nil
}

// LoadConfig loads configuration from a YAML file. Sections missing from the
// file keep their defaults.
func LoadConfig(path string) (*EngineConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config := GetDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LoadConfigOrDefault loads config from path, then from the usual locations,
// then falls back to the defaults. Environment overrides are always applied.
func LoadConfigOrDefault(path string) (*EngineConfig, error) {
	var config *EngineConfig
	var err error

	if path != "" {
		config, err = LoadConfig(path)
		if err != nil {
			logger.Warnf("Could not load config from %s: %v", path, err)
			config = nil
		}
	}

	if config == nil {
		defaultPaths := []string{
			"volley-sim.yaml",
			"config.yaml",
		}
		if p, err := DefaultPath(); err == nil {
			defaultPaths = append(defaultPaths, p)
		}

		for _, p := range defaultPaths {
			if _, err := os.Stat(p); err == nil {
				config, err = LoadConfig(p)
				if err == nil {
					logger.Debugf("Loaded config from: %s", p)
					break
				}
			}
		}
	}

	if config == nil {
		logger.Debug("Using default configuration")
		config = GetDefaultConfig()
	}

	MergeWithEnvironment(config)

	return config, nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *EngineConfig, path string) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// MergeWithCLIOverrides applies CLI parameter overrides to the configuration.
// Values of the wrong type or out of range are ignored.
func MergeWithCLIOverrides(config *EngineConfig, overrides map[string]interface{}) {
	for key, value := range overrides {
		switch key {
		case "seed":
			switch v := value.(type) {
			case int64:
				config.Simulation.Seed = v
			case int:
				config.Simulation.Seed = int64(v)
			}
		case "tick_rate":
			if rate, ok := value.(int); ok && rate > 0 {
				config.Simulation.TickRate = rate
			}
		case "serving_side":
			if side, ok := value.(string); ok {
				if valid, ok := oneOf(side, validSides); ok {
					config.Simulation.ServingSide = valid
				}
			}
		case "home_rotation":
			if r, ok := value.(int); ok && r >= 1 && r <= 6 {
				config.Simulation.HomeRotation = r
			}
		case "away_rotation":
			if r, ok := value.(int); ok && r >= 1 && r <= 6 {
				config.Simulation.AwayRotation = r
			}
		case "think_workers":
			if n, ok := value.(int); ok && n > 0 {
				config.Performance.ThinkWorkers = n
			}
		case "statsview":
			if enable, ok := value.(bool); ok {
				config.Performance.StatsView = enable
			}
		case "extension_rounds":
			if n, ok := value.(int); ok && n >= 0 {
				config.Script.ExtensionRounds = n
			}
		case "enable_report":
			if enable, ok := value.(bool); ok {
				config.Logging.EnableReport = enable
			}
		case "report_path":
			if path, ok := value.(string); ok && path != "" {
				config.Logging.ReportPath = path
			}
		case "log_level":
			if level, ok := value.(string); ok {
				if valid, ok := oneOf(level, validLevels); ok {
					config.Logging.ConsoleLevel = valid
				}
			}
		}
	}
}

// LoadConfigWithOverrides loads config and applies both environment and CLI overrides
func LoadConfigWithOverrides(path string, cliOverrides map[string]interface{}) (*EngineConfig, error) {
	config, err := LoadConfigOrDefault(path)
	if err != nil {
		return nil, err
	}

	if cliOverrides != nil {
		MergeWithCLIOverrides(config, cliOverrides)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed after overrides: %w", err)
	}

	return config, nil
}

// MergeWithEnvironment merges config with VOLLEY_* environment variables
func MergeWithEnvironment(config *EngineConfig) {
	if seed := os.Getenv("VOLLEY_SEED"); seed != "" {
		if v, err := strconv.ParseInt(seed, 10, 64); err == nil {
			config.Simulation.Seed = v
		}
	}

	if rate := os.Getenv("VOLLEY_TICK_RATE"); rate != "" {
		if v, err := strconv.Atoi(rate); err == nil && v > 0 {
			config.Simulation.TickRate = v
		}
	}

	if maxDt := os.Getenv("VOLLEY_MAX_DT"); maxDt != "" {
		if v, err := strconv.ParseFloat(maxDt, 64); err == nil && v > 0 && v <= 1 {
			config.Simulation.MaxDt = v
		}
	}

	if side := os.Getenv("VOLLEY_SERVING_SIDE"); side != "" {
		if valid, ok := oneOf(side, validSides); ok {
			config.Simulation.ServingSide = valid
		}
	}

	if r := os.Getenv("VOLLEY_HOME_ROTATION"); r != "" {
		if v, err := strconv.Atoi(r); err == nil && v >= 1 && v <= 6 {
			config.Simulation.HomeRotation = v
		}
	}

	if r := os.Getenv("VOLLEY_AWAY_ROTATION"); r != "" {
		if v, err := strconv.Atoi(r); err == nil && v >= 1 && v <= 6 {
			config.Simulation.AwayRotation = v
		}
	}

	if pause := os.Getenv("VOLLEY_DEAD_BALL_PAUSE"); pause != "" {
		if v, err := strconv.ParseFloat(pause, 64); err == nil && v >= 0 {
			config.Rally.DeadBallPause = v
		}
	}

	if delay := os.Getenv("VOLLEY_SERVE_DELAY"); delay != "" {
		if v, err := strconv.ParseFloat(delay, 64); err == nil && v >= 0 {
			config.Rally.Contact.ServeDelay = v
		}
	}

	if workers := os.Getenv("VOLLEY_THINK_WORKERS"); workers != "" {
		if v, err := strconv.Atoi(workers); err == nil && v > 0 {
			config.Performance.ThinkWorkers = v
		}
	}

	if rounds := os.Getenv("VOLLEY_EXTENSION_ROUNDS"); rounds != "" {
		if v, err := strconv.Atoi(rounds); err == nil && v >= 0 {
			config.Script.ExtensionRounds = v
		}
	}

	if logLevel := os.Getenv("VOLLEY_LOG_LEVEL"); logLevel != "" {
		if valid, ok := oneOf(logLevel, validLevels); ok {
			config.Logging.ConsoleLevel = valid
		}
	}

	if enable := os.Getenv("VOLLEY_ENABLE_REPORT"); enable != "" {
		if v, err := strconv.ParseBool(enable); err == nil {
			config.Logging.EnableReport = v
		}
	}

	if path := os.Getenv("VOLLEY_REPORT_PATH"); path != "" {
		config.Logging.ReportPath = path
	}
}
