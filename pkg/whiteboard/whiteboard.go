// Package whiteboard converts between the editable role to position map used
// by non-simulated callers and the engine's player list.
package whiteboard

import (
	"fmt"
	"strings"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/picogrid/volley-simulations/pkg/geometry"
	"github.com/picogrid/volley-simulations/pkg/world"
)

// PositionMap holds one side's positions keyed by role, in lineup order.
type PositionMap = orderedmap.OrderedMap[world.Role, geometry.Vec2]

// NewPositionMap returns an empty map.
func NewPositionMap() *PositionMap {
	return orderedmap.NewOrderedMap[world.Role, geometry.Vec2]()
}

// FromWorld returns the positions of side's players on court.
func FromWorld(ws world.WorldState, side geometry.Side) *PositionMap {
	m := NewPositionMap()
	for _, role := range world.Roles {
		p, ok := ws.PlayerByRole(side, role)
		if !ok || !p.Active {
			continue
		}
		m.Set(role, p.Position)
	}
	return m
}

// ApplyToWorld moves side's players to positions. Points are clamped to the
// movement area and velocities are zeroed. With mirrorOpponent the opposing
// side's player of each role is placed at the mirror image across the net.
func ApplyToWorld(ws world.WorldState, side geometry.Side, positions *PositionMap, mirrorOpponent bool) (world.WorldState, error) {
	if !side.Valid() {
		return ws, fmt.Errorf("unknown side %q", side)
	}
	out := ws.Clone()
	if positions == nil {
		return out, nil
	}
	for _, role := range positions.Keys() {
		pos, _ := positions.Get(role)
		if _, err := geometry.Validate2(pos); err != nil {
			return ws, fmt.Errorf("%s %s: %w", side, role, err)
		}
		pos = out.Court.ClampToBounds(pos)

		var err error
		out, err = place(out, side, role, pos)
		if err != nil {
			return ws, err
		}
		if mirrorOpponent {
			if out, err = place(out, side.Opponent(), role, out.Court.Mirror(pos)); err != nil {
				return ws, err
			}
		}
	}
	return out, nil
}

func place(ws world.WorldState, side geometry.Side, role world.Role, pos geometry.Vec2) (world.WorldState, error) {
	p, ok := ws.PlayerByRole(side, role)
	if !ok {
		return ws, fmt.Errorf("%w: %s has no %s", world.ErrPlayerNotFound, side, role)
	}
	p.Position = pos
	p.Velocity = geometry.Vec2{}
	return ws.WithPlayer(p)
}

// Format renders m as "[S=(x, y) OH1=(x, y) ...]".
func Format(m *PositionMap) string {
	if m == nil {
		return "[]"
	}
	parts := make([]string, 0, m.Len())
	for _, role := range m.Keys() {
		p, _ := m.Get(role)
		parts = append(parts, fmt.Sprintf("%s=(%.3f, %.3f)", role, p[0], p[1]))
	}
	return "[" + strings.Join(parts, " ") + "]"
}
