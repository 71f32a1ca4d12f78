package goals

import (
	"math"
	"testing"

	"github.com/picogrid/volley-simulations/pkg/geometry"
	"github.com/picogrid/volley-simulations/pkg/world"
)

// attackBoard is side's view of an opponent set heading to landing.
func attackBoard(side geometry.Side, landing geometry.Vec2) world.Blackboard {
	court := geometry.DefaultCourt()
	b := world.Blackboard{
		Side:             side,
		Court:            court,
		PredictedLanding: landing,
	}
	b.Ball.InFlight = true
	b.Ball.LastTeam = side.Opponent()
	b.Ball.Ground = landing
	b.OpponentLaneX = court.ToHomeFrame(landing, side)[0]
	return b
}

func player(side geometry.Side, role world.Role, pos geometry.Vec2) world.PlayerState {
	p := world.NewPlayer(side, role)
	p.Position = pos
	return p
}

func TestBlockMiddleStaysInLane(t *testing.T) {
	court := geometry.DefaultCourt()
	actor := player(geometry.Home, world.Middle2, geometry.V2(0.5, 0.58))
	board := attackBoard(geometry.Home, geometry.V2(0.9, 0.3))

	res := Resolve(world.BlockMiddle, actor, board, court, 1)
	if res.Target[0] > 0.8 {
		t.Errorf("Expected block x <= 0.8, got %f", res.Target[0])
	}
	if math.Abs(res.Target[0]-0.8) > 1e-12 {
		t.Errorf("Expected block to follow the ball to the lane edge 0.8, got %f", res.Target[0])
	}
	if res.Target[1] < court.NetY || res.Target[1] > court.NetY+0.05 {
		t.Errorf("Expected blocker at the net on HOME side, got y=%f", res.Target[1])
	}
}

func TestBlockLanes(t *testing.T) {
	court := geometry.DefaultCourt()
	tests := []struct {
		goal    world.Goal
		landing float64
		lane    Lane
	}{
		{world.BlockLeft, 0.9, BlockLaneLeft},
		{world.BlockLeft, 0.0, BlockLaneLeft},
		{world.BlockMiddle, 0.1, BlockLaneMiddle},
		{world.BlockRight, 0.1, BlockLaneRight},
		{world.BlockRight, 0.7, BlockLaneRight},
	}
	for _, tt := range tests {
		for _, side := range world.Sides {
			t.Run(string(tt.goal)+"/"+string(side), func(t *testing.T) {
				landing := court.FromHomeFrame(geometry.V2(tt.landing, 0.3), side)
				actor := player(side, world.Middle1, court.FromHomeFrame(geometry.V2(0.5, 0.6), side))
				res := Resolve(tt.goal, actor, attackBoard(side, landing), court, 1)

				home := court.ToHomeFrame(res.Target, side)
				if home[0] < tt.lane.Min-1e-12 || home[0] > tt.lane.Max+1e-12 {
					t.Errorf("Expected x in [%f, %f], got %f", tt.lane.Min, tt.lane.Max, home[0])
				}
				if !court.OnSide(res.Target, side) {
					t.Errorf("Expected target on %s side, got %v", side, res.Target)
				}
			})
		}
	}
}

func TestEveryGoalResolvesOnOwnSide(t *testing.T) {
	court := geometry.DefaultCourt()
	for _, side := range world.Sides {
		board := attackBoard(side, court.FromHomeFrame(geometry.V2(0.3, 0.2), side))
		for _, role := range world.Roles {
			actor := player(side, role, court.Center(side))
			for _, g := range world.Goals {
				res := Resolve(g, actor, board, court, 3)
				if !geometry.IsFinite2(res.Target) {
					t.Fatalf("%s %s %s: non-finite target", side, role, g)
				}
				if !court.OnSide(res.Target, side) {
					t.Errorf("%s %s %s: target %v not on own side", side, role, g, res.Target)
				}
				if court.DistanceToNet(res.Target) < res.NetAllowance-1e-12 {
					t.Errorf("%s %s %s: target %v inside net allowance %f", side, role, g, res.Target, res.NetAllowance)
				}
			}
		}
	}
}

func TestGoalsMirrorAcrossTheNet(t *testing.T) {
	court := geometry.DefaultCourt()
	landingHome := geometry.V2(0.25, 0.35)
	homeBoard := attackBoard(geometry.Home, landingHome)
	awayBoard := attackBoard(geometry.Away, court.Mirror(landingHome))

	for _, g := range world.Goals {
		if g == world.StayInPlace {
			continue
		}
		h := Resolve(g, player(geometry.Home, world.Outside1, geometry.V2(0.4, 0.7)), homeBoard, court, 2)
		a := Resolve(g, player(geometry.Away, world.Outside1, court.Mirror(geometry.V2(0.4, 0.7))), awayBoard, court, 2)
		m := court.Mirror(a.Target)
		if math.Abs(m[0]-h.Target[0]) > 1e-9 || math.Abs(m[1]-h.Target[1]) > 1e-9 {
			t.Errorf("%s: HOME %v and mirrored AWAY %v differ", g, h.Target, m)
		}
	}
}

func TestUnknownGoalFallsBackToBase(t *testing.T) {
	court := geometry.DefaultCourt()
	actor := player(geometry.Away, world.Opposite, geometry.V2(0.5, 0.2))
	board := attackBoard(geometry.Away, geometry.V2(0.5, 0.8))

	got := Resolve(world.Goal("Moonwalk"), actor, board, court, 1)
	want := Resolve(world.Base, actor, board, court, 1)
	if got.Target != want.Target || got.Goal != world.Base {
		t.Errorf("Expected fallback to base %v, got %v (%s)", want.Target, got.Target, got.Goal)
	}

	zone4, _ := court.ZoneCenter(4, geometry.Away)
	if math.Abs(want.Target[0]-zone4[0]) > 1e-12 || math.Abs(want.Target[1]-zone4[1]) > 1e-12 {
		t.Errorf("Expected opposite's base at zone 4 %v, got %v", zone4, want.Target)
	}
}

func TestNonFiniteInputsFallBack(t *testing.T) {
	court := geometry.DefaultCourt()
	actor := player(geometry.Home, world.Setter, geometry.V2(math.NaN(), 0.7))
	board := attackBoard(geometry.Home, geometry.V2(math.Inf(1), 0.3))

	for _, g := range []world.Goal{world.StayInPlace, world.ChaseBall, world.BlockLeft} {
		res := Resolve(g, actor, board, court, 1)
		if !geometry.IsFinite2(res.Target) {
			t.Errorf("%s: expected finite fallback target, got %v", g, res.Target)
		}
	}
}

func TestApproachWaypoint(t *testing.T) {
	court := geometry.DefaultCourt()
	target := geometry.V2(0.15, 0.56)
	wp := ApproachWaypoint(world.ApproachLeft, world.CategoryOutside, target, geometry.Home, court, 0.12)
	if wp[0] >= target[0] {
		t.Errorf("Expected left approach to start outside left, got %v", wp)
	}
	if wp[1] <= target[1] {
		t.Errorf("Expected waypoint further from the net than the target, got %v", wp)
	}

	away := ApproachWaypoint(world.ApproachLeft, world.CategoryOutside, court.Mirror(target), geometry.Away, court, 0.12)
	m := court.Mirror(away)
	if math.Abs(m[0]-wp[0]) > 1e-9 || math.Abs(m[1]-wp[1]) > 1e-9 {
		t.Errorf("Expected mirrored waypoint %v, got %v", wp, m)
	}
}

func TestGoalClassifiers(t *testing.T) {
	if !IsBallReactive(world.ReceiveServe) || IsBallReactive(world.Base) {
		t.Errorf("Unexpected ball-reactive classification")
	}
	if !IsAttackApproach(world.ApproachBackRow) || IsAttackApproach(world.BlockLeft) {
		t.Errorf("Unexpected approach classification")
	}
	for _, g := range world.Goals {
		if !Known(g) {
			t.Errorf("Expected resolver for %s", g)
		}
	}
}
