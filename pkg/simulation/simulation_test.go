package simulation

import (
	"context"
	"testing"
	"time"

	"github.com/picogrid/volley-simulations/pkg/engine"
)

type stubSimulation struct{ name string }

func (s *stubSimulation) Name() string { return s.name }
func (s *stubSimulation) Description() string { return "stub" }
func (s *stubSimulation) Configure(map[string]interface{}) error { return nil }
func (s *stubSimulation) Run(context.Context, Observer) error { return nil }
func (s *stubSimulation) Stop() error { return nil }

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"b", "a"} {
		name := name
		if err := r.Register(name, func() Simulation { return &stubSimulation{name: name} }); err != nil {
			t.Fatalf("Failed to register %s: %v", name, err)
		}
	}

	if err := r.Register("a", func() Simulation { return &stubSimulation{} }); err == nil {
		t.Error("Expected duplicate registration to fail")
	}
	if err := r.Register("", nil); err == nil {
		t.Error("Expected an empty registration to fail")
	}

	names := r.List()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("Expected [a b], got %v", names)
	}

	sim, err := r.Get("b")
	if err != nil {
		t.Fatalf("Failed to get b: %v", err)
	}
	if sim.Name() != "b" {
		t.Errorf("Expected b, got %s", sim.Name())
	}
	if _, err := r.Get("missing"); err == nil {
		t.Error("Expected an error for an unknown scenario")
	}
}

func TestParams(t *testing.T) {
	p := Params{
		"points":   float64(7),
		"rate":     30,
		"side":     "away",
		"report":   "true",
		"pause":    "1500ms",
		"seconds":  2,
		"bad_int":  "x",
		"bad_bool": 3,
	}

	if v, err := p.Int("points", 0); err != nil || v != 7 {
		t.Errorf("Expected 7, got %d (%v)", v, err)
	}
	if v, err := p.Float("rate", 0); err != nil || v != 30 {
		t.Errorf("Expected 30, got %f (%v)", v, err)
	}
	if v := p.String("side", "home"); v != "away" {
		t.Errorf("Expected away, got %s", v)
	}
	if v := p.String("missing", "home"); v != "home" {
		t.Errorf("Expected the default, got %s", v)
	}
	if v, err := p.Bool("report", false); err != nil || !v {
		t.Errorf("Expected true, got %t (%v)", v, err)
	}
	if v, err := p.Duration("pause", 0); err != nil || v != 1500*time.Millisecond {
		t.Errorf("Expected 1.5s, got %v (%v)", v, err)
	}
	if v, err := p.Duration("seconds", 0); err != nil || v != 2*time.Second {
		t.Errorf("Expected 2s, got %v (%v)", v, err)
	}
	if v, err := p.Int("missing", 5); err != nil || v != 5 {
		t.Errorf("Expected the default 5, got %d (%v)", v, err)
	}
	if _, err := p.Int("bad_int", 0); err == nil {
		t.Error("Expected an error for a non-numeric integer")
	}
	if _, err := p.Bool("bad_bool", false); err == nil {
		t.Error("Expected an error for a non-boolean flag")
	}
}

func TestObserversSkipNil(t *testing.T) {
	calls := 0
	obs := Observers{
		ObserverFunc(func(float64, engine.Result) { calls++ }),
		nil,
		Nop,
		ObserverFunc(func(dt float64, _ engine.Result) {
			if dt != 0.5 {
				t.Errorf("Expected dt 0.5, got %f", dt)
			}
			calls++
		}),
	}
	obs.OnTick(0.5, engine.Result{})

	if calls != 2 {
		t.Errorf("Expected 2 calls, got %d", calls)
	}
}

func TestDefaults(t *testing.T) {
	cfg := SimulationConfig{Parameters: []Parameter{
		{Name: "points", Default: 5},
		{Name: "report_path"},
	}}
	d := cfg.Defaults()
	if len(d) != 1 || d["points"] != 5 {
		t.Errorf("Expected only points=5, got %v", d)
	}
}
