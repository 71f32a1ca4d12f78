package whiteboard

import (
	"errors"
	"math"
	"testing"

	"github.com/picogrid/volley-simulations/pkg/geometry"
	"github.com/picogrid/volley-simulations/pkg/world"
)

func newWorld(t *testing.T) world.WorldState {
	t.Helper()
	ws, err := world.New(world.WithRotations(1, 3))
	if err != nil {
		t.Fatalf("Failed to create world: %v", err)
	}
	return ws
}

func near(a, b geometry.Vec2) bool {
	return geometry.Dist(a, b) < 1e-9
}

func TestFromWorldListsActivePlayersInLineupOrder(t *testing.T) {
	ws := newWorld(t)
	m := FromWorld(ws, geometry.Home)

	if m.Len() != 6 {
		t.Fatalf("Expected 6 positions, got %d", m.Len())
	}
	expected := []world.Role{world.Setter, world.Outside1, world.Opposite, world.Outside2, world.Middle2, world.LiberoRole}
	for i, role := range m.Keys() {
		if role != expected[i] {
			t.Errorf("Expected role %s at %d, got %s", expected[i], i, role)
		}
	}
	if _, ok := m.Get(world.Middle1); ok {
		t.Error("Expected the substituted middle to be left out")
	}
}

func TestApplyToWorldRoundTrip(t *testing.T) {
	ws := newWorld(t)
	m := NewPositionMap()
	m.Set(world.Setter, geometry.V2(0.6, 0.55))
	m.Set(world.Outside1, geometry.V2(0.2, 0.8))

	out, err := ApplyToWorld(ws, geometry.Home, m, false)
	if err != nil {
		t.Fatalf("Failed to apply positions: %v", err)
	}
	back := FromWorld(out, geometry.Home)
	for _, role := range m.Keys() {
		want, _ := m.Get(role)
		got, _ := back.Get(role)
		if !near(want, got) {
			t.Errorf("Expected %s at %v, got %v", role, want, got)
		}
	}

	before, _ := ws.PlayerByRole(geometry.Away, world.Setter)
	after, _ := out.PlayerByRole(geometry.Away, world.Setter)
	if !near(before.Position, after.Position) {
		t.Error("Expected the opponent to stay put without mirroring")
	}
	original, _ := ws.PlayerByRole(geometry.Home, world.Setter)
	if near(original.Position, geometry.V2(0.6, 0.55)) {
		t.Error("Expected the input world to be left unchanged")
	}
}

func TestApplyToWorldMirrorsOpponent(t *testing.T) {
	ws := newWorld(t)
	m := NewPositionMap()
	m.Set(world.Outside1, geometry.V2(0.15, 0.6))
	m.Set(world.Opposite, geometry.V2(0.85, 0.6))

	out, err := ApplyToWorld(ws, geometry.Home, m, true)
	if err != nil {
		t.Fatalf("Failed to apply positions: %v", err)
	}
	for _, role := range m.Keys() {
		home, _ := out.PlayerByRole(geometry.Home, role)
		away, _ := out.PlayerByRole(geometry.Away, role)
		if !near(away.Position, out.Court.Mirror(home.Position)) {
			t.Errorf("Expected away %s at %v, got %v", role, out.Court.Mirror(home.Position), away.Position)
		}
		if !out.Court.OnSide(away.Position, geometry.Away) {
			t.Errorf("Expected mirrored %s on the away half, got %v", role, away.Position)
		}
		if !near(out.Court.Mirror(away.Position), home.Position) {
			t.Errorf("Expected mirroring twice to return %v", home.Position)
		}
	}
}

func TestApplyToWorldClampsAndRejects(t *testing.T) {
	ws := newWorld(t)

	t.Run("clamps to movement area", func(t *testing.T) {
		m := NewPositionMap()
		m.Set(world.Setter, geometry.V2(5, 5))
		out, err := ApplyToWorld(ws, geometry.Home, m, false)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		p, _ := out.PlayerByRole(geometry.Home, world.Setter)
		if p.Position != ws.Court.BoundsMax {
			t.Errorf("Expected %v, got %v", ws.Court.BoundsMax, p.Position)
		}
	})

	t.Run("rejects non-finite", func(t *testing.T) {
		m := NewPositionMap()
		m.Set(world.Setter, geometry.V2(math.NaN(), 0.7))
		if _, err := ApplyToWorld(ws, geometry.Home, m, false); !errors.Is(err, geometry.ErrNonFinite) {
			t.Errorf("Expected ErrNonFinite, got %v", err)
		}
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		m := NewPositionMap()
		m.Set(world.Role("DS"), geometry.V2(0.5, 0.7))
		if _, err := ApplyToWorld(ws, geometry.Home, m, false); !errors.Is(err, world.ErrPlayerNotFound) {
			t.Errorf("Expected ErrPlayerNotFound, got %v", err)
		}
	})

	t.Run("rejects unknown side", func(t *testing.T) {
		if _, err := ApplyToWorld(ws, geometry.Side("LEFT"), NewPositionMap(), false); err == nil {
			t.Error("Expected an error for an unknown side")
		}
	})
}

func TestStrategiesStayOnTheirHalf(t *testing.T) {
	ws := newWorld(t)
	for _, s := range Strategies() {
		for _, side := range world.Sides {
			t.Run(s.Name()+"/"+string(side), func(t *testing.T) {
				m := s.Positions(ws, side)
				if m.Len() != 6 {
					t.Fatalf("Expected 6 positions, got %d", m.Len())
				}
				for _, role := range m.Keys() {
					p, _ := m.Get(role)
					if !ws.Court.OnSide(p, side) {
						t.Errorf("Expected %s on %s half, got %v", role, side, p)
					}
				}
			})
		}
	}
}

func TestZoneCenterMatchesBasePositions(t *testing.T) {
	ws := newWorld(t)
	m := ZoneCenter{}.Positions(ws, geometry.Away)
	for _, role := range m.Keys() {
		p, _ := ws.PlayerByRole(geometry.Away, role)
		got, _ := m.Get(role)
		if !near(got, ws.BasePosition(p)) {
			t.Errorf("Expected %s at %v, got %v", role, ws.BasePosition(p), got)
		}
	}
}

func TestTacticalGoals(t *testing.T) {
	ws := newWorld(t)
	serving := world.SenseTeam(ws, geometry.Home)
	receiving := world.SenseTeam(ws, geometry.Away)

	server, _ := ws.PlayerByID(ws.ServerID(geometry.Home))
	if g := TacticalGoal(server, serving); g != world.ServePosition {
		t.Errorf("Expected server goal %s, got %s", world.ServePosition, g)
	}
	setter, _ := ws.PlayerByRole(geometry.Away, world.Setter)
	if g := TacticalGoal(setter, receiving); g != world.SetterRelease {
		t.Errorf("Expected receiving setter goal %s, got %s", world.SetterRelease, g)
	}
	libero, _ := ws.PlayerByRole(geometry.Away, world.LiberoRole)
	if g := TacticalGoal(libero, receiving); g != world.ReceiveLeft && g != world.ReceiveMiddle && g != world.ReceiveRight {
		t.Errorf("Expected the libero to receive, got %s", g)
	}
}

func TestStrategyByName(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"tactical", "tactical", false},
		{"Zone-Center", "zone-center", false},
		{"preset", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := StrategyByName(tt.name)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownStrategy) {
					t.Errorf("Expected ErrUnknownStrategy, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if s.Name() != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, s.Name())
			}
		})
	}
}

func TestFormat(t *testing.T) {
	m := NewPositionMap()
	m.Set(world.Setter, geometry.V2(0.5, 0.75))
	m.Set(world.Opposite, geometry.V2(0.25, 1))
	expected := "[S=(0.500, 0.750) OPP=(0.250, 1.000)]"
	if got := Format(m); got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}
