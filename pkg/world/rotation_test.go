package world

import (
	"testing"

	"github.com/picogrid/volley-simulations/pkg/geometry"
	"github.com/picogrid/volley-simulations/pkg/physics"
)

func TestZoneOf(t *testing.T) {
	tests := []struct {
		role     Role
		rotation int
		want     int
	}{
		{Setter, 1, 1},
		{Setter, 2, 6},
		{Setter, 4, 4},
		{Outside1, 1, 2},
		{Outside1, 2, 1},
		{Middle1, 1, 6},
		{Opposite, 1, 4},
		{LiberoRole, 1, 0},
		{Setter, 7, 0},
	}
	for _, tt := range tests {
		if got := ZoneOf(tt.role, tt.rotation); got != tt.want {
			t.Errorf("ZoneOf(%s, %d) = %d, want %d", tt.role, tt.rotation, got, tt.want)
		}
	}
}

func TestEveryZoneFilledOncePerRotation(t *testing.T) {
	for rot := 1; rot <= 6; rot++ {
		seen := map[int]bool{}
		for role := range baseZones {
			z := ZoneOf(role, rot)
			if seen[z] {
				t.Errorf("rotation %d: zone %d assigned twice", rot, z)
			}
			seen[z] = true
			if RoleInZone(z, rot) != role {
				t.Errorf("rotation %d: RoleInZone(%d) != %s", rot, z, role)
			}
		}
	}
}

func TestHitterModeAndServer(t *testing.T) {
	if HitterModeOf(1) != ThreeHitters {
		t.Errorf("Expected three hitters with setter in zone 1")
	}
	if HitterModeOf(4) != TwoHitters {
		t.Errorf("Expected two hitters with setter in zone 4")
	}
	if ServerRole(1) != Setter {
		t.Errorf("Expected setter to serve in rotation 1, got %s", ServerRole(1))
	}
	if ServerRole(2) != Outside1 {
		t.Errorf("Expected OH1 to serve in rotation 2, got %s", ServerRole(2))
	}
	if NextRotation(6) != 1 || NextRotation(3) != 4 {
		t.Errorf("Expected rotation to wrap 6 -> 1")
	}
}

func TestBackRowMiddle(t *testing.T) {
	for rot := 1; rot <= 6; rot++ {
		z := ZoneOf(BackRowMiddle(rot), rot)
		if geometry.FrontRow(z) {
			t.Errorf("rotation %d: back-row middle is in front-row zone %d", rot, z)
		}
	}
}

func TestSenseTeam(t *testing.T) {
	ws := mustNew(t)
	f := physics.Launch(geometry.V3(0.8, 1.04, 2.6), geometry.V2(0.3, 0.2), physics.Serve,
		physics.Skill{Accuracy: 1, Power: 0.5}, 0, nil, ws.Court, physics.DefaultTable())
	ws.Ball = Launched(f, geometry.Home, 1)

	away := SenseTeam(ws, geometry.Away)
	if !away.BallIncoming {
		t.Errorf("Expected serve to be incoming for AWAY")
	}
	if away.Serving {
		t.Errorf("Expected AWAY not to be serving")
	}
	if away.ServerID != ws.ServerID(geometry.Home) {
		t.Errorf("Expected server %s, got %s", ws.ServerID(geometry.Home), away.ServerID)
	}
	if len(away.Teammates) != 6 || len(away.Opponents) != 6 {
		t.Errorf("Expected 6 teammates and 6 opponents, got %d and %d", len(away.Teammates), len(away.Opponents))
	}
	setter, _ := away.TeammateByRole(Setter)
	if away.SetterID != setter.ID {
		t.Errorf("Expected designated setter %s, got %s", setter.ID, away.SetterID)
	}

	home := SenseTeam(ws, geometry.Home)
	if home.BallIncoming {
		t.Errorf("Expected serve not to be incoming for HOME")
	}
	// landing x 0.3 seen from AWAY's home frame is 0.7
	if away.OpponentLane != LaneRight {
		t.Errorf("Expected AWAY to read the right lane, got %s (x=%f)", away.OpponentLane, away.OpponentLaneX)
	}
}
