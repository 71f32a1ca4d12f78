package behavior

import (
	"fmt"

	"github.com/picogrid/volley-simulations/pkg/geometry"
	"github.com/picogrid/volley-simulations/pkg/intent"
	"github.com/picogrid/volley-simulations/pkg/physics"
	"github.com/picogrid/volley-simulations/pkg/world"
)

// Intent priorities. Higher wins in Rank.
const (
	priorityFallback = 0
	priorityPosition = 1
	priorityChase    = 2
	priorityContact  = 3
)

// request proposes moving to goal.
func request(goal world.Goal, confidence float64, reason string) ActionFunc {
	return func(Context) (Proposal, bool) {
		return Proposal{
			Action:     intent.Action{Kind: intent.RequestGoal, Goal: goal},
			Confidence: confidence,
			Priority:   priorityPosition,
			Reason:     reason,
		}, true
	}
}

// requestFn proposes a goal picked from the context.
func requestFn(pick func(c Context) (world.Goal, string, bool)) ActionFunc {
	return func(c Context) (Proposal, bool) {
		goal, reason, ok := pick(c)
		if !ok {
			return Proposal{}, false
		}
		return request(goal, 0.8, reason)(c)
	}
}

func contact(c Context, kind physics.ContactType, homeTarget geometry.Vec2, receiver, reason string) Proposal {
	return Proposal{
		Action: intent.Action{
			Kind:       intent.BallContact,
			Contact:    kind,
			Target:     c.World(homeTarget),
			ReceiverID: receiver,
		},
		Confidence: c.Actor.Skills.For(kind).Accuracy,
		Priority:   priorityContact,
		Reason:     reason,
	}
}

// serveBall aims the serve at the open seam of the receiving formation.
func serveBall(c Context) (Proposal, bool) {
	court := c.Board.Court
	spot := c.openSpot([]geometry.Vec2{
		{0.15, court.NetY * 0.24},
		{0.5, court.NetY * 0.2},
		{0.85, court.NetY * 0.24},
		{0.3, court.NetY * 0.6},
		{0.7, court.NetY * 0.6},
		{0.5, court.NetY * 0.4},
	})
	return contact(c, physics.Serve, spot, "",
		fmt.Sprintf("serving to the open seam at (%.2f, %.2f)", spot[0], spot[1])), true
}

// passBall sends the first touch to the setting window.
func passBall(c Context) (Proposal, bool) {
	kind := c.NextContact()
	court := c.Board.Court
	target := geometry.Vec2{setWindowX, court.NetY + 0.06}
	return contact(c, kind, target, c.Board.SetterID,
		fmt.Sprintf("%s to the setter", kind)), true
}

// setBall sets the hitter facing the fewest blockers.
func setBall(c Context) (Proposal, bool) {
	opt, hitter, reason, ok := c.planSet()
	if !ok {
		return freeBallOver(c)
	}
	return contact(c, physics.Set, opt.target(c.Board.Court), hitter.ID, reason), true
}

// attackBall hits to the spot farthest from the defense.
func attackBall(c Context) (Proposal, bool) {
	court := c.Board.Court
	spot := c.openSpot([]geometry.Vec2{
		{0.1, court.NetY * 0.2},
		{0.9, court.NetY * 0.2},
		{0.5, court.NetY * 0.3},
		{0.15, court.NetY * 0.7},
		{0.85, court.NetY * 0.7},
		{0.5, court.NetY * 0.8},
	})
	return contact(c, physics.Attack, spot, "",
		fmt.Sprintf("attacking the open court at (%.2f, %.2f)", spot[0], spot[1])), true
}

// freeBallOver sends an easy ball deep into the opponent court.
func freeBallOver(c Context) (Proposal, bool) {
	court := c.Board.Court
	return contact(c, physics.FreeBall, geometry.Vec2{court.CenterX(), court.NetY * 0.3}, "",
		"no attack available, free ball deep"), true
}

// playBall makes whichever touch the team needs next.
func playBall(c Context) (Proposal, bool) {
	switch c.NextContact() {
	case physics.Set:
		return setBall(c)
	case physics.Attack:
		return attackBall(c)
	case physics.FreeBall:
		return freeBallOver(c)
	}
	return passBall(c)
}

// blockBall stuffs the attack straight down on the attacker's side.
func blockBall(c Context) (Proposal, bool) {
	court := c.Board.Court
	x := c.Home(c.Board.Ball.Ground)[0]
	return contact(c, physics.Block, geometry.Vec2{x, court.NetY - 0.1}, "",
		fmt.Sprintf("blocking the attack at x=%.2f", x)), true
}

// chase runs under the ball.
func chase(c Context) (Proposal, bool) {
	return Proposal{
		Action:     intent.Action{Kind: intent.RequestGoal, Goal: world.ChaseBall},
		Confidence: 0.9,
		Priority:   priorityChase,
		Reason:     fmt.Sprintf("closest to the landing spot for the %s", c.NextContact()),
	}, true
}

// holdBase is the low-confidence fallback every tree proposes.
func holdBase(Context) (Proposal, bool) {
	return Proposal{
		Action:     intent.Action{Kind: intent.RequestGoal, Goal: world.Base},
		Confidence: 0.1,
		Priority:   priorityFallback,
		Reason:     "hold rotation base",
	}, true
}

// setWindowX is where passes are aimed, between zones 2 and 3.
const setWindowX = 0.62

// setOption is one attack option the setter can choose.
type setOption struct {
	name  string
	goal  world.Goal
	zone  int
	x     float64
	depth func(court geometry.Court) float64
	pipe  bool
}

func (o setOption) target(court geometry.Court) geometry.Vec2 {
	return geometry.Vec2{o.x, court.NetY + o.depth(court)}
}

func atNet(d float64) func(geometry.Court) float64 {
	return func(geometry.Court) float64 { return d }
}

var setOptions = []setOption{
	{name: "outside", goal: world.SetOutside, zone: 4, x: 0.15, depth: atNet(0.06)},
	{name: "quick", goal: world.SetQuick, zone: 3, x: 0.5, depth: atNet(0.05)},
	{name: "opposite", goal: world.SetOpposite, zone: 2, x: 0.85, depth: atNet(0.06)},
	{name: "pipe", goal: world.SetQuick, x: 0.5, pipe: true,
		depth: func(c geometry.Court) float64 { return c.AttackLine + 0.04 }},
}

// hitterFor returns the teammate who attacks option o, if any.
func (c Context) hitterFor(o setOption) (world.PlayerState, bool) {
	for _, p := range c.Board.Teammates {
		if p.ID == c.Actor.ID || p.Category == world.CategoryLibero || p.Role == world.Setter {
			continue
		}
		zone := world.ResponsibleZone(p.Role, c.Board.Rotation)
		if o.pipe {
			if p.Category == world.CategoryOutside && !geometry.FrontRow(zone) {
				return p, true
			}
			continue
		}
		if zone == o.zone {
			return p, true
		}
	}
	return world.PlayerState{}, false
}

// planSet picks the set option. Out of system only the pins are available
// and the outside is preferred; in system the option facing the fewest
// blockers wins, ties going to the earlier option.
func (c Context) planSet() (setOption, world.PlayerState, string, bool) {
	inSystem := c.Board.InSystem
	var (
		best      setOption
		bestP     world.PlayerState
		bestCount = -1
	)
	for _, o := range setOptions {
		if !inSystem && o.zone != 4 && o.zone != 2 {
			continue
		}
		if o.pipe && c.Board.HitterMode != world.ThreeHitters {
			continue
		}
		p, ok := c.hitterFor(o)
		if !ok {
			continue
		}
		n := c.blockersNear(o.x, 0.2)
		if !inSystem {
			n = 0
		}
		if bestCount < 0 || n < bestCount {
			best, bestP, bestCount = o, p, n
		}
	}
	if bestCount < 0 {
		return setOption{}, world.PlayerState{}, "", false
	}
	if !inSystem {
		return best, bestP, fmt.Sprintf("out of system, high ball to the %s", best.name), true
	}
	return best, bestP, fmt.Sprintf("in system, %d blockers facing the %s", bestCount, best.name), true
}
