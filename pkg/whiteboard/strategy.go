package whiteboard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/picogrid/volley-simulations/pkg/geometry"
	"github.com/picogrid/volley-simulations/pkg/goals"
	"github.com/picogrid/volley-simulations/pkg/rally"
	"github.com/picogrid/volley-simulations/pkg/world"
)

// ErrUnknownStrategy is returned by StrategyByName.
var ErrUnknownStrategy = errors.New("unknown whiteboard strategy")

// Strategy computes default whiteboard positions for one side.
type Strategy interface {
	Name() string
	Description() string
	Positions(ws world.WorldState, side geometry.Side) *PositionMap
}

// ZoneCenter places every player on court at the centre of its rotation zone.
type ZoneCenter struct{}

func (ZoneCenter) Name() string { return "zone-center" }

func (ZoneCenter) Description() string {
	return "Each player at the centre of its rotation zone"
}

func (ZoneCenter) Positions(ws world.WorldState, side geometry.Side) *PositionMap {
	m := NewPositionMap()
	for _, role := range world.Roles {
		p, ok := ws.PlayerByRole(side, role)
		if !ok || !p.Active {
			continue
		}
		m.Set(role, ws.BasePosition(p))
	}
	return m
}

// Tactical resolves a phase-appropriate goal for every player on court.
type Tactical struct{}

func (Tactical) Name() string { return "tactical" }

func (Tactical) Description() string {
	return "Goal-resolved positions for the current rally phase"
}

func (Tactical) Positions(ws world.WorldState, side geometry.Side) *PositionMap {
	board := world.SenseTeam(ws, side)
	rot := ws.Rotations.For(side)
	m := NewPositionMap()
	for _, role := range world.Roles {
		p, ok := ws.PlayerByRole(side, role)
		if !ok || !p.Active {
			continue
		}
		res := goals.Resolve(TacticalGoal(p, board), p, board, ws.Court, rot)
		m.Set(role, res.Target)
	}
	return m
}

// TacticalGoal picks the goal Tactical resolves for p.
func TacticalGoal(p world.PlayerState, board world.Blackboard) world.Goal {
	zone := world.ResponsibleZone(p.Role, board.Rotation)
	switch board.Phase {
	case rally.PreServe, rally.ServeInAir, rally.BallDead:
		if board.Serving {
			if p.ID == board.ServerID {
				return world.ServePosition
			}
			return world.Base
		}
		if p.Role == world.Setter {
			return world.SetterRelease
		}
		if geometry.FrontRow(zone) && p.Category == world.CategoryMiddle {
			return world.Base
		}
		return receiveGoal(zone)
	case rally.AttackPhase, rally.TransitionToDefense, rally.Defense:
		if board.BallOnOurSide {
			return world.Base
		}
		return defenseGoal(zone)
	}
	return world.Base
}

func receiveGoal(zone int) world.Goal {
	switch zone {
	case 4, 5:
		return world.ReceiveLeft
	case 2, 1:
		return world.ReceiveRight
	}
	return world.ReceiveMiddle
}

func defenseGoal(zone int) world.Goal {
	switch zone {
	case 4:
		return world.BlockLeft
	case 3:
		return world.BlockMiddle
	case 2:
		return world.BlockRight
	case 5:
		return world.DefendLeftBack
	case 1:
		return world.DefendRightBack
	}
	return world.DefendMiddleBack
}

var strategies = []Strategy{Tactical{}, ZoneCenter{}}

// Strategies returns the named strategies, tactical first.
func Strategies() []Strategy {
	out := make([]Strategy, len(strategies))
	copy(out, strategies)
	return out
}

// StrategyByName looks a strategy up case-insensitively.
func StrategyByName(name string) (Strategy, error) {
	for _, s := range strategies {
		if strings.EqualFold(s.Name(), name) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// Apply lays side out with s, mirroring onto the opponent when asked.
func Apply(ws world.WorldState, s Strategy, side geometry.Side, mirrorOpponent bool) (world.WorldState, error) {
	return ApplyToWorld(ws, side, s.Positions(ws, side), mirrorOpponent)
}
