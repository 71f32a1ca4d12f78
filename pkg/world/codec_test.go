package world

import (
	"errors"
	"testing"

	"github.com/picogrid/volley-simulations/pkg/geometry"
	"github.com/picogrid/volley-simulations/pkg/physics"
	"github.com/picogrid/volley-simulations/pkg/rally"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	ws := mustNew(t, WithSeed(42), WithRotations(3, 5), WithServingSide(geometry.Away))
	ws.Tick = 17
	ws.Time = 1.0 / 3.0
	ws.Rally = rally.Transition(ws.Rally, rally.Event{Type: rally.ServeContact, Side: geometry.Away, PlayerID: "away-s", Time: 0.1})
	f := physics.Launch(geometry.V3(0.2, -0.04, 2.6), geometry.V2(0.7, 0.8), physics.Serve,
		physics.Skill{Accuracy: 0.7, Power: 0.6}, 0.1, physics.NewRand(42, 0), ws.Court, physics.DefaultTable())
	ws.Ball = Launched(f, geometry.Away, 1).At(0.3)
	ws.Players[2].RequestedGoal = BlockMiddle

	data, err := ws.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !Equal(ws, got) {
		t.Errorf("Expected round trip to reproduce the world")
	}
	if got.Ball.Flight != ws.Ball.Flight {
		t.Errorf("Expected flight %+v, got %+v", ws.Ball.Flight, got.Ball.Flight)
	}
	if got.Time != ws.Time {
		t.Errorf("Expected time %v, got %v", ws.Time, got.Time)
	}

	fa, _ := ws.Fingerprint()
	fb, _ := got.Fingerprint()
	if fa != fb {
		t.Errorf("Expected equal fingerprints, got %x and %x", fa, fb)
	}
}

func TestFingerprintChangesWithState(t *testing.T) {
	ws := mustNew(t)
	a, err := ws.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}
	moved := ws.Clone()
	moved.Players[0].Position[0] += 1e-9
	b, _ := moved.Fingerprint()
	if a == b {
		t.Errorf("Expected fingerprint to change with a moved player")
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: "{"},
		{name: "unknown field", data: `{"tick":1,"bogus":true}`},
		{name: "wrong type", data: `{"tick":"one"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.data)); !errors.Is(err, ErrDecode) {
				t.Errorf("Expected ErrDecode, got %v", err)
			}
		})
	}
}
