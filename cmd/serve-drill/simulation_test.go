package servedrill

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/picogrid/volley-simulations/pkg/engine"
	"github.com/picogrid/volley-simulations/pkg/geometry"
	"github.com/picogrid/volley-simulations/pkg/simulation"
	"github.com/picogrid/volley-simulations/pkg/world"
)

func TestValidateAndParse(t *testing.T) {
	tests := []struct {
		name    string
		params  map[string]interface{}
		wantErr bool
	}{
		{"defaults", map[string]interface{}{}, false},
		{"away in rotation 4", map[string]interface{}{"receiving_side": "AWAY", "rotation": 4}, false},
		{"libero focus", map[string]interface{}{"focus": "l"}, false},
		{"no repetitions", map[string]interface{}{"repetitions": 0}, true},
		{"bad side", map[string]interface{}{"receiving_side": "both"}, true},
		{"bad rotation", map[string]interface{}{"rotation": 0}, true},
		{"bad focus", map[string]interface{}{"focus": "coach"}, true},
		{"bad strategy", map[string]interface{}{"strategy": "chaos"}, true},
		{"short wait", map[string]interface{}{"max_serve_time": "100ms"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateAndParse(tt.params)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAndParse() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	cfg, _ := ValidateAndParse(map[string]interface{}{"receiving_side": "away", "rotation": 4, "focus": "l"})
	if home, away := cfg.rotations(); home != 1 || away != 4 {
		t.Errorf("Expected rotations 1 and 4, got %d and %d", home, away)
	}
	if cfg.Focus != world.LiberoRole {
		t.Errorf("Expected focus L, got %s", cfg.Focus)
	}
}

func newDrill(t *testing.T, params map[string]interface{}) (*ServeDrill, *bytes.Buffer) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	var out bytes.Buffer
	s := NewServeDrill().(*ServeDrill)
	s.out = &out
	if err := s.Configure(params); err != nil {
		t.Fatalf("Failed to configure: %v", err)
	}
	s.engine.Logging.ConsoleLevel = "error"
	return s, &out
}

func TestRunDrillsEveryServe(t *testing.T) {
	s, out := newDrill(t, map[string]interface{}{"repetitions": 3, "seed": 7, "rotation": 2})

	serves := 0
	obs := simulation.ObserverFunc(func(_ float64, res engine.Result) {
		if res.World.Tick == 1 {
			serves++
		}
	})
	if err := s.Run(context.Background(), obs); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	outcomes := s.Outcomes()
	if len(outcomes) != 3 || serves != 3 {
		t.Fatalf("Expected 3 serves, got %d outcomes and %d fresh worlds", len(outcomes), serves)
	}
	for i, o := range outcomes {
		if o.Seed != int64(7+i) {
			t.Errorf("Serve %d: expected seed %d, got %d", i+1, 7+i, o.Seed)
		}
		if o.Result == "" || o.Result == "timeout" {
			t.Errorf("Serve %d: expected the serve to be played, got %q", i+1, o.Result)
		}
		if o.Traces != 6 {
			t.Errorf("Serve %d: expected 6 receiving traces, got %d", i+1, o.Traces)
		}
		if o.Final.Rotations.For(geometry.Home) != 2 {
			t.Errorf("Serve %d: expected home in rotation 2, got %d", i+1, o.Final.Rotations.For(geometry.Home))
		}
	}
	if !strings.Contains(out.String(), "lineup [") || !strings.Contains(out.String(), "phase") {
		t.Errorf("Expected lineups and traces in the output, got %q", out.String())
	}
}

func TestRunFocusesOneRole(t *testing.T) {
	s, out := newDrill(t, map[string]interface{}{"repetitions": 1, "focus": "S"})
	if err := s.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	o := s.Outcomes()[0]
	if o.Traces != 1 {
		t.Errorf("Expected only the setter's trace, got %d", o.Traces)
	}
	if !strings.Contains(out.String(), "home-s (HOME, S)") {
		t.Errorf("Expected the setter's trace, got %q", out.String())
	}
}

func TestRunStopsBeforeNextServe(t *testing.T) {
	s, _ := newDrill(t, map[string]interface{}{"repetitions": 10, "show_traces": false})
	_ = s.Stop()
	if err := s.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if n := len(s.Outcomes()); n != 0 {
		t.Errorf("Expected no serves after Stop, got %d", n)
	}
}

func TestOutcomeInSystem(t *testing.T) {
	tests := []struct {
		outcome Outcome
		want    bool
	}{
		{Outcome{Result: "pass", Quality: "perfect"}, true},
		{Outcome{Result: "pass", Quality: "good"}, true},
		{Outcome{Result: "pass", Quality: "poor"}, false},
		{Outcome{Result: "ace"}, false},
	}
	for _, tt := range tests {
		if got := tt.outcome.InSystem(); got != tt.want {
			t.Errorf("InSystem(%+v) = %t, want %t", tt.outcome, got, tt.want)
		}
	}
}
