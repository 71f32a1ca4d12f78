package behavior

import (
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/picogrid/volley-simulations/pkg/geometry"
	"github.com/picogrid/volley-simulations/pkg/physics"
	"github.com/picogrid/volley-simulations/pkg/rally"
	"github.com/picogrid/volley-simulations/pkg/world"
)

// Params gates ball contacts. Reaches are meters, distances court-normalized.
type Params struct {
	ContactReach float64 `json:"contactReach" yaml:"contact_reach"`
	PassReach    float64 `json:"passReach" yaml:"pass_reach"`
	AttackReach  float64 `json:"attackReach" yaml:"attack_reach"`
	BlockReach   float64 `json:"blockReach" yaml:"block_reach"`
	BlockDepth   float64 `json:"blockDepth" yaml:"block_depth"`
	NetPlane     float64 `json:"netPlane" yaml:"net_plane"`
	ServeDelay   float64 `json:"serveDelay" yaml:"serve_delay"`
}

// DefaultParams returns the stock contact gating.
func DefaultParams() Params {
	return Params{
		ContactReach: 0.06,
		PassReach:    2.6,
		AttackReach:  3.4,
		BlockReach:   3.5,
		BlockDepth:   0.06,
		NetPlane:     0.02,
		ServeDelay:   1.0,
	}
}

// ReachFor returns the highest ball a player can play with contact.
func (p Params) ReachFor(c physics.ContactType) float64 {
	switch c {
	case physics.Attack:
		return p.AttackReach
	case physics.Block:
		return p.BlockReach
	}
	return p.PassReach
}

// Reachable reports whether actor can make contact with ball right now. The
// engine applies the same test before honoring a contact intent.
func (p Params) Reachable(actor world.PlayerState, ball world.BallState, contact physics.ContactType, court geometry.Court) bool {
	if contact == physics.Serve {
		return !ball.InFlight && ball.HolderID == actor.ID
	}
	if !ball.InFlight || ball.Phase == physics.Grounded {
		return false
	}
	h := ball.Position[2]

	// A block meets the ball at the net plane, once per flight.
	if contact == physics.Block {
		return ball.LastTeam != actor.Team && !ball.BlockContested &&
			h >= court.NetHeight && h <= p.BlockReach &&
			court.DistanceToNet(ball.Ground) <= p.NetPlane &&
			court.DistanceToNet(actor.Position) <= p.BlockDepth &&
			math.Abs(actor.Position[0]-ball.Ground[0]) <= p.ContactReach
	}

	if !court.OnSide(ball.Ground, actor.Team) {
		return false
	}
	if geometry.Dist(actor.Position, ball.Ground) > p.ContactReach {
		return false
	}
	return ball.Phase == physics.Falling && h <= p.ReachFor(contact)
}

// Context is everything a tree may read for one player in one tick.
type Context struct {
	Board  world.Blackboard
	Actor  world.PlayerState
	Params Params
}

// Situation is a coarse read of the rally from one team's view.
type Situation string

const (
	SituationDead      Situation = "dead"
	SituationOurServe  Situation = "our-serve"
	SituationReceive   Situation = "receive"
	SituationFirstBall Situation = "first-ball"
	SituationFreeBall  Situation = "free-ball"
	SituationOffense   Situation = "offense"
	SituationDefense   Situation = "defense"
)

// Situation classifies the board.
func (c Context) Situation() Situation {
	b := c.Board
	switch b.Phase {
	case "", rally.BallDead:
		return SituationDead
	case rally.PreServe:
		if b.Serving {
			return SituationOurServe
		}
		return SituationReceive
	}

	if b.BallIncoming {
		switch {
		case b.LastContact == physics.Attack && b.LastTouchSide != b.Side && !b.BallOnOurSide:
			return SituationDefense
		case b.LastContact == physics.Serve:
			return SituationReceive
		case b.LastTouchSide == b.Side:
			return SituationOffense
		case b.LastContact == physics.FreeBall:
			return SituationFreeBall
		}
		return SituationFirstBall
	}
	return SituationDefense
}

// Zone is the actor's responsible zone this rotation.
func (c Context) Zone() int {
	return world.ResponsibleZone(c.Actor.Role, c.Board.Rotation)
}

// FrontRow reports whether the actor plays front row.
func (c Context) FrontRow() bool {
	return geometry.FrontRow(c.Zone())
}

// Home maps a world point into the team's HOME frame.
func (c Context) Home(p geometry.Vec2) geometry.Vec2 {
	return c.Board.Court.ToHomeFrame(p, c.Board.Side)
}

// World maps a HOME-frame point to world coordinates for the team.
func (c Context) World(p geometry.Vec2) geometry.Vec2 {
	return c.Board.Court.FromHomeFrame(p, c.Board.Side)
}

// OursToPlay reports whether the ball is coming down on our side with
// touches left.
func (c Context) OursToPlay() bool {
	b := c.Board
	return b.Ball.InFlight && b.BallIncoming && b.TouchesUsed < rally.MaxTouches
}

// Designated returns the teammate who should play the next touch: the
// setter on the second touch, otherwise whoever is closest to the landing
// spot. The setter and middles stay out of serve receive and nobody plays
// two touches in a row.
func (c Context) Designated() string {
	b := c.Board
	if b.TouchesUsed == 1 && b.SetterID != "" {
		return b.SetterID
	}
	skip := func(p world.PlayerState) bool {
		if b.LastTouchSide == b.Side && p.ID == b.LastTouchID {
			return true
		}
		return b.LastContact == physics.Serve &&
			(p.Role == world.Setter || p.Category == world.CategoryMiddle)
	}
	return closest(b.Teammates, b.PredictedLanding, skip)
}

// IsDesignated reports whether the actor plays the next touch.
func (c Context) IsDesignated() bool {
	return c.Designated() == c.Actor.ID
}

// NextContact is the touch the team plays next.
func (c Context) NextContact() physics.ContactType {
	b := c.Board
	switch b.TouchesUsed {
	case 0:
		switch b.LastContact {
		case physics.Attack, physics.Block:
			return physics.Dig
		}
		return physics.Pass
	case 1:
		return physics.Set
	}
	if c.Actor.Category == world.CategoryLibero {
		return physics.FreeBall
	}
	return physics.Attack
}

// OpponentAttackAtNet reports whether an opponent attack is in flight.
func (c Context) OpponentAttackAtNet() bool {
	ball := c.Board.Ball
	return ball.InFlight && ball.LastTeam == c.Board.Side.Opponent() && ball.Contact == physics.Attack
}

func closest(players []world.PlayerState, p geometry.Vec2, skip func(world.PlayerState) bool) string {
	best, bestD := "", 0.0
	for _, m := range players {
		if skip(m) {
			continue
		}
		d := geometry.Dist(m.Position, p)
		if best == "" || d < bestD {
			best, bestD = m.ID, d
		}
	}
	return best
}

// stackOrder returns the non-setter teammates ordered left to right by base
// zone, for the five-player receive stack.
func (c Context) stackOrder() []world.PlayerState {
	court := c.Board.Court
	passers := lo.Filter(c.Board.Teammates, func(p world.PlayerState, _ int) bool {
		return p.Role != world.Setter
	})
	xOf := func(p world.PlayerState) float64 {
		z, err := court.ZoneCenter(world.ResponsibleZone(p.Role, c.Board.Rotation), geometry.Home)
		if err != nil {
			return court.CenterX()
		}
		return z[0]
	}
	sort.SliceStable(passers, func(i, j int) bool {
		xi, xj := xOf(passers[i]), xOf(passers[j])
		if xi != xj {
			return xi < xj
		}
		return world.ResponsibleZone(passers[i].Role, c.Board.Rotation) < world.ResponsibleZone(passers[j].Role, c.Board.Rotation)
	})
	return passers
}

// blockersNear counts opponent front-row players whose HOME-frame x is within
// width of x.
func (c Context) blockersNear(x, width float64) int {
	court := c.Board.Court
	return lo.CountBy(c.Board.Opponents, func(p world.PlayerState) bool {
		if court.DistanceToNet(p.Position) > court.AttackLine {
			return false
		}
		return math.Abs(c.Home(p.Position)[0]-x) <= width
	})
}

// openSpot picks the HOME-frame candidate farthest from its nearest
// opponent. Ties keep candidate order.
func (c Context) openSpot(candidates []geometry.Vec2) geometry.Vec2 {
	best, bestD := candidates[0], -1.0
	for _, cand := range candidates {
		d := math.Inf(1)
		for _, o := range c.Board.Opponents {
			if od := geometry.Dist(c.Home(o.Position), cand); od < d {
				d = od
			}
		}
		if d > bestD {
			best, bestD = cand, d
		}
	}
	return best
}
