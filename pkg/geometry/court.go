package geometry

import (
	"errors"
	"fmt"
)

// Side identifies one of the two teams by the half of the court it defends.
type Side string

const (
	Home Side = "HOME"
	Away Side = "AWAY"
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == Home {
		return Away
	}
	return Home
}

// Valid reports whether s is HOME or AWAY.
func (s Side) Valid() bool {
	return s == Home || s == Away
}

// ErrUnknownZone is returned for zone numbers outside 1-6.
var ErrUnknownZone = errors.New("unknown court zone")

// Court is the normalized court model. In-court lines span LinesMin..LinesMax
// (0..1 on both axes); the net sits at NetY. HOME defends y > NetY.
// BoundsMin/BoundsMax is the movement area including the free zone.
type Court struct {
	NetY       float64 `json:"netY" yaml:"net_y"`
	LinesMin   Vec2    `json:"linesMin" yaml:"lines_min"`
	LinesMax   Vec2    `json:"linesMax" yaml:"lines_max"`
	BoundsMin  Vec2    `json:"boundsMin" yaml:"bounds_min"`
	BoundsMax  Vec2    `json:"boundsMax" yaml:"bounds_max"`
	NetHeight  float64 `json:"netHeight" yaml:"net_height"`   // meters
	AttackLine float64 `json:"attackLine" yaml:"attack_line"` // distance from the net, normalized
}

// DefaultCourt returns the standard 9x18m court in normalized units.
func DefaultCourt() Court {
	return Court{
		NetY:       0.5,
		LinesMin:   Vec2{0, 0},
		LinesMax:   Vec2{1, 1},
		BoundsMin:  Vec2{-0.12, -0.08},
		BoundsMax:  Vec2{1.12, 1.08},
		NetHeight:  2.43,
		AttackLine: 1.0 / 6.0,
	}
}

// CenterX is the x coordinate of the court's long axis.
func (c Court) CenterX() float64 {
	return (c.LinesMin[0] + c.LinesMax[0]) / 2
}

// Center returns the centre of one side's half.
func (c Court) Center(side Side) Vec2 {
	depth := (c.LinesMax[1] - c.NetY) / 2
	if side == Away {
		depth = -(c.NetY - c.LinesMin[1]) / 2
	}
	return Vec2{c.CenterX(), c.NetY + depth}
}

// SideOf returns which half a ground point lies on. Points exactly on the
// net line belong to HOME.
func (c Court) SideOf(p Vec2) Side {
	if p[1] >= c.NetY {
		return Home
	}
	return Away
}

// OnSide reports whether p is on the given half.
func (c Court) OnSide(p Vec2, side Side) bool {
	return c.SideOf(p) == side
}

// InBounds reports whether p lies inside the court lines (lines are in).
func (c Court) InBounds(p Vec2) bool {
	return p[0] >= c.LinesMin[0] && p[0] <= c.LinesMax[0] &&
		p[1] >= c.LinesMin[1] && p[1] <= c.LinesMax[1]
}

// ClampToBounds clamps p into the movement area.
func (c Court) ClampToBounds(p Vec2) Vec2 {
	return ClampVec(p, c.BoundsMin, c.BoundsMax)
}

// ClampToInterior clamps p into the court lines shrunk by margin.
func (c Court) ClampToInterior(p Vec2, margin float64) Vec2 {
	lo := Vec2{c.LinesMin[0] + margin, c.LinesMin[1] + margin}
	hi := Vec2{c.LinesMax[0] - margin, c.LinesMax[1] - margin}
	return ClampVec(p, lo, hi)
}

// ClampToSide keeps p on the given half, at least buffer away from the net
// line. A negative buffer lets the point reach past the net by that much.
// A non-finite point falls back to the centre of the half.
func (c Court) ClampToSide(p Vec2, side Side, buffer float64) Vec2 {
	if !IsFinite2(p) {
		p = c.Center(side)
	}
	p = c.ClampToBounds(p)
	if side == Home {
		if p[1] < c.NetY+buffer {
			p[1] = c.NetY + buffer
		}
		return p
	}
	if p[1] > c.NetY-buffer {
		p[1] = c.NetY - buffer
	}
	return p
}

// Mirror reflects p through the centre of the net line, mapping a position on
// one half to the equivalent position on the other. Mirror(Mirror(p)) == p.
func (c Court) Mirror(p Vec2) Vec2 {
	return Vec2{2*c.CenterX() - p[0], 2*c.NetY - p[1]}
}

// Mirror3 mirrors the ground components and keeps the height.
func (c Court) Mirror3(p Vec3) Vec3 {
	g := c.Mirror(Ground(p))
	return Vec3{g[0], g[1], p[2]}
}

// ToHomeFrame expresses p, seen by side, in HOME coordinates.
func (c Court) ToHomeFrame(p Vec2, side Side) Vec2 {
	if side == Away {
		return c.Mirror(p)
	}
	return p
}

// FromHomeFrame maps a HOME-frame point back to side's coordinates.
func (c Court) FromHomeFrame(p Vec2, side Side) Vec2 {
	// mirror is an involution
	return c.ToHomeFrame(p, side)
}

// DistanceToNet returns the absolute distance from p to the net line.
func (c Court) DistanceToNet(p Vec2) float64 {
	d := p[1] - c.NetY
	if d < 0 {
		return -d
	}
	return d
}

// Baseline returns the y coordinate of side's end line.
func (c Court) Baseline(side Side) float64 {
	if side == Home {
		return c.LinesMax[1]
	}
	return c.LinesMin[1]
}

// ZoneCenter returns the centre of zone 1-6 on the given side. Zones 2-4 are
// front row; 4 is on the left as the team faces the net.
func (c Court) ZoneCenter(zone int, side Side) (Vec2, error) {
	width := c.LinesMax[0] - c.LinesMin[0]
	depth := c.LinesMax[1] - c.NetY
	front := c.NetY + c.AttackLine/2
	back := c.NetY + c.AttackLine + (depth-c.AttackLine)/2
	left := c.LinesMin[0] + width/6
	mid := c.LinesMin[0] + width/2
	right := c.LinesMin[0] + 5*width/6

	var p Vec2
	switch zone {
	case 1:
		p = Vec2{right, back}
	case 2:
		p = Vec2{right, front}
	case 3:
		p = Vec2{mid, front}
	case 4:
		p = Vec2{left, front}
	case 5:
		p = Vec2{left, back}
	case 6:
		p = Vec2{mid, back}
	default:
		return Vec2{}, fmt.Errorf("%w: %d", ErrUnknownZone, zone)
	}
	return c.FromHomeFrame(p, side), nil
}

// FrontRow reports whether zone is a front-row zone.
func FrontRow(zone int) bool {
	return zone >= 2 && zone <= 4
}
