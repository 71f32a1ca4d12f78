package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/picogrid/volley-simulations/pkg/simulation"
	"github.com/picogrid/volley-simulations/pkg/utils"
)

func drillInfo() utils.SimulationInfo {
	return utils.SimulationInfo{Config: simulation.SimulationConfig{
		Name:     "Serve Drill",
		Version:  "1.0.0",
		Category: "drill",
		Parameters: []simulation.Parameter{
			{Name: "serves", Type: "integer", Default: 20, Min: 1, Max: 500, Required: true, Description: "Serves to hit"},
			{Name: "serving_side", Type: "string", Default: "home", Options: []string{"home", "away"}},
			{Name: "replay_path", Type: "string", Default: ""},
			{Name: "speed", Type: "float", Min: 0},
		},
	}}
}

func TestWriteSimulations(t *testing.T) {
	tests := []struct {
		name       string
		withParams bool
		want       []string
		absent     []string
	}{
		{
			name:   "summary only",
			want:   []string{"NAME", "Serve Drill", "drill", "4"},
			absent: []string{"PARAMETER", "serves*"},
		},
		{
			name:       "with parameters",
			withParams: true,
			want: []string{
				"PARAMETER",
				"serves*",
				"[1, 500]",
				"home|away",
				`""`,
				"[0, ]",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := writeSimulations(&buf, []utils.SimulationInfo{drillInfo()}, tt.withParams); err != nil {
				t.Fatalf("writeSimulations() error = %v", err)
			}
			out := buf.String()
			for _, s := range tt.want {
				if !strings.Contains(out, s) {
					t.Errorf("Expected %q in output, got:\n%s", s, out)
				}
			}
			for _, s := range tt.absent {
				if strings.Contains(out, s) {
					t.Errorf("Expected no %q in output, got:\n%s", s, out)
				}
			}
		})
	}
}

func TestWriteSimulationsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := writeSimulations(&buf, nil, true); err != nil {
		t.Fatalf("writeSimulations() error = %v", err)
	}
	if buf.String() != "No simulations found\n" {
		t.Errorf("Expected the empty message, got %q", buf.String())
	}
}
