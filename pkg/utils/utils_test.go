package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/picogrid/volley-simulations/pkg/simulation"
)

var params = []simulation.Parameter{
	{Name: "points_to_win", Type: "integer", Default: 5, Min: 1, Max: 25},
	{Name: "serving_side", Type: "string", Default: "home", Options: []string{"home", "away"}},
	{Name: "pause", Type: "duration", Default: "2s"},
	{Name: "verbose", Type: "boolean", Default: false},
	{Name: "report_path", Type: "string"},
}

func TestPromptForParametersWithoutPrompts(t *testing.T) {
	t.Setenv("VOLLEY_SKIP_PROMPTS", "true")
	t.Setenv("VOLLEY_POINTS_TO_WIN", "11")
	t.Setenv("VOLLEY_PAUSE", "1500ms")

	got, err := PromptForParameters(params, map[string]interface{}{"verbose": true})
	if err != nil {
		t.Fatalf("Failed to resolve parameters: %v", err)
	}

	if got["points_to_win"] != 11 {
		t.Errorf("Expected 11 from the environment, got %v", got["points_to_win"])
	}
	if got["serving_side"] != "home" {
		t.Errorf("Expected the default side, got %v", got["serving_side"])
	}
	if got["pause"] != 1500*time.Millisecond {
		t.Errorf("Expected 1.5s, got %v", got["pause"])
	}
	if got["verbose"] != true {
		t.Errorf("Expected the preset to win, got %v", got["verbose"])
	}
	if _, ok := got["report_path"]; ok {
		t.Error("Expected an optional parameter without default to be left out")
	}
}

func TestPromptForParametersRejectsBadEnvironment(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"out of range", "VOLLEY_POINTS_TO_WIN", "40"},
		{"not a number", "VOLLEY_POINTS_TO_WIN", "many"},
		{"unknown option", "VOLLEY_SERVING_SIDE", "left"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("VOLLEY_SKIP_PROMPTS", "true")
			t.Setenv(tt.key, tt.value)
			if _, err := PromptForParameters(params, nil); err == nil {
				t.Errorf("Expected %s=%s to be rejected", tt.key, tt.value)
			}
		})
	}
}

func TestPromptForParametersRequired(t *testing.T) {
	t.Setenv("VOLLEY_SKIP_PROMPTS", "true")
	required := []simulation.Parameter{{Name: "replay_path", Type: "string", Required: true}}
	if _, err := PromptForParameters(required, nil); err == nil {
		t.Error("Expected a missing required parameter to fail")
	}
}

func TestDiscoverIn(t *testing.T) {
	dir := t.TempDir()
	write := func(rel, content string) {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	write("rally/simulation.yaml", "name: Full Rally\nversion: 1.0.0\nparameters:\n  - name: points_to_win\n    type: integer\n    default: 5\n")
	write("drill/simulation.yaml", "name: Serve Receive Drill\n")
	write("broken/simulation.yaml", "name: [unterminated\n")
	write("nameless/simulation.yaml", "description: missing name\n")

	infos, err := DiscoverIn(dir)
	if err != nil {
		t.Fatalf("Failed to discover: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("Expected 2 scenarios, got %d", len(infos))
	}

	info, err := FindSimulation(infos, "Full Rally")
	if err != nil {
		t.Fatalf("Failed to find Full Rally: %v", err)
	}
	if info.Path != filepath.Join(dir, "rally") {
		t.Errorf("Expected path %s, got %s", filepath.Join(dir, "rally"), info.Path)
	}
	if len(info.Config.Parameters) != 1 || info.Config.Defaults()["points_to_win"] != 5 {
		t.Errorf("Expected points_to_win default 5, got %+v", info.Config.Parameters)
	}
	if _, err := FindSimulation(infos, "Missing"); err == nil {
		t.Error("Expected an error for an unknown scenario")
	}
}

func TestCheckValue(t *testing.T) {
	p := simulation.Parameter{Name: "speed", Min: 0.5, Max: 2.0}
	if err := CheckValue(p, 1.0); err != nil {
		t.Errorf("Expected 1.0 to be accepted, got %v", err)
	}
	if err := CheckValue(p, 2.5); err == nil {
		t.Error("Expected 2.5 to be rejected")
	}
}
