package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/samber/lo"
	"golang.org/x/term"

	"github.com/picogrid/volley-simulations/pkg/simulation"
)

// envPrefix prefixes per-parameter environment overrides.
const envPrefix = "VOLLEY_"

// Interactive reports whether both stdin and stdout are terminals, so that
// survey prompts can be answered.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// SkipPrompts reports whether parameters must be resolved without asking:
// VOLLEY_SKIP_PROMPTS=true or a non-interactive session.
func SkipPrompts() bool {
	return os.Getenv(envPrefix+"SKIP_PROMPTS") == "true" || !Interactive()
}

// PromptForParameters resolves every parameter, prompting when the session
// allows it. preset values, typically from a parameters file, win over both
// prompts and the environment.
func PromptForParameters(params []simulation.Parameter, preset map[string]interface{}) (map[string]interface{}, error) {
	result := make(map[string]interface{})
	skip := SkipPrompts()

	for _, param := range params {
		if v, ok := preset[param.Name]; ok {
			result[param.Name] = v
			continue
		}
		value, err := promptForParameter(param, skip)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s: %w", param.Name, err)
		}
		if value != nil {
			result[param.Name] = value
		}
	}

	return result, nil
}

// promptForParameter prompts for a single parameter
func promptForParameter(param simulation.Parameter, skip bool) (interface{}, error) {
	envKey := envPrefix + strings.ToUpper(param.Name)

	if skip {
		if envValue := os.Getenv(envKey); envValue != "" {
			value, err := parseEnvValue(envValue, param)
			if err != nil {
				return nil, err
			}
			return value, CheckValue(param, value)
		}
		if param.Default != nil {
			return param.Default, nil
		}
		if param.Required {
			return nil, fmt.Errorf("required parameter %s not provided and no default available", param.Name)
		}
		return nil, nil
	}

	// An environment value becomes the prompt default
	if envValue := os.Getenv(envKey); envValue != "" {
		// Update the default value from environment
		parsed, err := parseEnvValue(envValue, param)
		if err == nil {
			param.Default = parsed
		}
	}

	switch param.Type {
	case "integer":
		return promptInteger(param)
	case "float":
		return promptFloat(param)
	case "string":
		return promptString(param)
	case "boolean":
		return promptBoolean(param)
	case "duration":
		return promptDuration(param)
	default:
		return nil, fmt.Errorf("unsupported parameter type: %s", param.Type)
	}
}

// CheckValue validates value against the parameter's range and options.
func CheckValue(param simulation.Parameter, value interface{}) error {
	switch v := value.(type) {
	case int:
		if param.Min != nil && v < toInt(param.Min) {
			return fmt.Errorf("%s must be at least %d", param.Name, toInt(param.Min))
		}
		if param.Max != nil && v > toInt(param.Max) {
			return fmt.Errorf("%s must be at most %d", param.Name, toInt(param.Max))
		}
	case float64:
		if param.Min != nil && v < toFloat64(param.Min) {
			return fmt.Errorf("%s must be at least %g", param.Name, toFloat64(param.Min))
		}
		if param.Max != nil && v > toFloat64(param.Max) {
			return fmt.Errorf("%s must be at most %g", param.Name, toFloat64(param.Max))
		}
	case string:
		if len(param.Options) > 0 && !lo.Contains(param.Options, v) {
			return fmt.Errorf("%s must be one of %s", param.Name, strings.Join(param.Options, ", "))
		}
	}
	return nil
}

// parseEnvValue parses an environment variable value according to the parameter type
func parseEnvValue(value string, param simulation.Parameter) (interface{}, error) {
	switch param.Type {
	case "integer":
		return strconv.Atoi(value)
	case "float":
		return strconv.ParseFloat(value, 64)
	case "string":
		return value, nil
	case "boolean":
		return strconv.ParseBool(value)
	case "duration":
		duration, err := time.ParseDuration(value)
		if err != nil {
			return nil, err
		}
		return duration, nil
	default:
		return nil, fmt.Errorf("unsupported parameter type: %s", param.Type)
	}
}

func promptInteger(param simulation.Parameter) (int, error) {
	defaultStr := ""
	if param.Default != nil {
		switch v := param.Default.(type) {
		case int:
			defaultStr = strconv.Itoa(v)
		case float64:
			defaultStr = strconv.Itoa(int(v))
		}
	}

	prompt := &survey.Input{
		Message: param.Description,
		Default: defaultStr,
	}

	var result string
	if err := survey.AskOne(prompt, &result, survey.WithValidator(survey.Required)); err != nil {
		return 0, err
	}

	value, err := strconv.Atoi(result)
	if err != nil {
		return 0, fmt.Errorf("invalid integer: %w", err)
	}

	return value, CheckValue(param, value)
}

func promptFloat(param simulation.Parameter) (float64, error) {
	defaultStr := ""
	if param.Default != nil {
		defaultStr = fmt.Sprintf("%v", param.Default)
	}

	prompt := &survey.Input{
		Message: param.Description,
		Default: defaultStr,
	}

	var result string
	if err := survey.AskOne(prompt, &result, survey.WithValidator(survey.Required)); err != nil {
		return 0, err
	}

	value, err := strconv.ParseFloat(result, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %w", err)
	}

	return value, CheckValue(param, value)
}

func promptString(param simulation.Parameter) (string, error) {
	defaultStr := ""
	if param.Default != nil {
		defaultStr = fmt.Sprintf("%v", param.Default)
	}

	// If options are provided, use a select prompt
	if len(param.Options) > 0 {
		prompt := &survey.Select{
			Message: param.Description,
			Options: param.Options,
			Default: defaultStr,
		}

		var result string
		if err := survey.AskOne(prompt, &result); err != nil {
			return "", err
		}
		return result, nil
	}

	// Otherwise use input prompt
	prompt := &survey.Input{
		Message: param.Description,
		Default: defaultStr,
	}

	var result string
	var validators []survey.Validator
	if param.Required {
		validators = append(validators, survey.Required)
	}

	if err := survey.AskOne(prompt, &result, survey.WithValidator(survey.ComposeValidators(validators...))); err != nil {
		return "", err
	}

	return result, nil
}

func promptBoolean(param simulation.Parameter) (bool, error) {
	defaultBool := false
	if param.Default != nil {
		switch v := param.Default.(type) {
		case bool:
			defaultBool = v
		case string:
			defaultBool = v == "true" || v == "yes" || v == "1"
		}
	}

	prompt := &survey.Confirm{
		Message: param.Description,
		Default: defaultBool,
	}

	var result bool
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}

	return result, nil
}

func promptDuration(param simulation.Parameter) (time.Duration, error) {
	defaultStr := ""
	if param.Default != nil {
		defaultStr = fmt.Sprintf("%v", param.Default)
	}

	prompt := &survey.Input{
		Message: param.Description + " (e.g., 5m, 1h30m, 30s)",
		Default: defaultStr,
	}

	var result string
	if err := survey.AskOne(prompt, &result, survey.WithValidator(func(val interface{}) error {
		str := val.(string)
		_, err := time.ParseDuration(str)
		if err != nil {
			return fmt.Errorf("invalid duration format (use formats like 5m, 1h30m, 30s)")
		}
		return nil
	})); err != nil {
		return 0, err
	}

	duration, err := time.ParseDuration(result)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}

	return duration, nil
}

// Helper functions
func toInt(v interface{}) int {
	switch val := v.(type) {
	case int:
		return val
	case float64:
		return int(val)
	case string:
		i, _ := strconv.Atoi(val)
		return i
	default:
		return 0
	}
}

func toFloat64(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		f, _ := strconv.ParseFloat(val, 64)
		return f
	default:
		return 0
	}
}
