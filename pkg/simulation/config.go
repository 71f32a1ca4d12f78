package simulation

import (
	"fmt"
	"strconv"
	"time"
)

// SimulationConfig represents the scenario metadata loaded from
// simulation.yaml
type SimulationConfig struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Version     string      `yaml:"version"`
	Category    string      `yaml:"category"`
	Parameters  []Parameter `yaml:"parameters"`
}

// Parameter defines a configurable parameter for a scenario
type Parameter struct {
	Name        string      `yaml:"name"`
	Type        string      `yaml:"type"` // integer, float, string, duration, boolean
	Description string      `yaml:"description"`
	Default     interface{} `yaml:"default"`
	Required    bool        `yaml:"required"`
	Min         interface{} `yaml:"min,omitempty"`
	Max         interface{} `yaml:"max,omitempty"`
	Options     []string    `yaml:"options,omitempty"` // For string enums
}

// Defaults returns every parameter's default value by name.
func (c SimulationConfig) Defaults() map[string]interface{} {
	params := make(map[string]interface{}, len(c.Parameters))
	for _, p := range c.Parameters {
		if p.Default != nil {
			params[p.Name] = p.Default
		}
	}
	return params
}

// Params reads typed values out of a parameter map. Prompts and YAML decode
// numbers as int or float64 and durations as strings, so each getter accepts
// every form it may see.
type Params map[string]interface{}

// Int returns the named integer or def when it is missing.
func (p Params) Int(name string, def int) (int, error) {
	v, ok := p[name]
	if !ok || v == nil {
		return def, nil
	}
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		return int(val), nil
	case string:
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer: %w", name, err)
		}
		return i, nil
	}
	return 0, fmt.Errorf("%s must be an integer, got %T", name, v)
}

// Float returns the named number or def when it is missing.
func (p Params) Float(name string, def float64) (float64, error) {
	v, ok := p[name]
	if !ok || v == nil {
		return def, nil
	}
	switch val := v.(type) {
	case float64:
		return val, nil
	case int:
		return float64(val), nil
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be a number: %w", name, err)
		}
		return f, nil
	}
	return 0, fmt.Errorf("%s must be a number, got %T", name, v)
}

// String returns the named string or def when it is missing.
func (p Params) String(name, def string) string {
	v, ok := p[name]
	if !ok || v == nil {
		return def
	}
	return fmt.Sprintf("%v", v)
}

// Bool returns the named flag or def when it is missing.
func (p Params) Bool(name string, def bool) (bool, error) {
	v, ok := p[name]
	if !ok || v == nil {
		return def, nil
	}
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		b, err := strconv.ParseBool(val)
		if err != nil {
			return false, fmt.Errorf("%s must be a boolean: %w", name, err)
		}
		return b, nil
	}
	return false, fmt.Errorf("%s must be a boolean, got %T", name, v)
}

// Duration returns the named duration or def when it is missing. Bare
// numbers are seconds.
func (p Params) Duration(name string, def time.Duration) (time.Duration, error) {
	v, ok := p[name]
	if !ok || v == nil {
		return def, nil
	}
	switch val := v.(type) {
	case time.Duration:
		return val, nil
	case int:
		return time.Duration(val) * time.Second, nil
	case float64:
		return time.Duration(val * float64(time.Second)), nil
	case string:
		d, err := time.ParseDuration(val)
		if err != nil {
			return 0, fmt.Errorf("invalid %s format: %w", name, err)
		}
		return d, nil
	}
	return 0, fmt.Errorf("%s must be a duration, got %T", name, v)
}
