// Package goals turns abstract tactical goals into court targets. Every
// target is computed for the HOME half and mirrored for AWAY.
package goals

import (
	"github.com/picogrid/volley-simulations/pkg/geometry"
	"github.com/picogrid/volley-simulations/pkg/physics"
	"github.com/picogrid/volley-simulations/pkg/world"
)

// Resolution is where a goal sends a player.
type Resolution struct {
	Goal            world.Goal    `json:"goal"`
	Target          geometry.Vec2 `json:"target"`
	NetAllowance    float64       `json:"netAllowance"`    // minimum distance kept from the net line
	SpeedMultiplier float64       `json:"speedMultiplier"` // applied to the player's max speed
}

// Lane is an x range in the HOME frame.
type Lane struct {
	Min float64
	Max float64
}

// Clamp clamps x into the lane.
func (l Lane) Clamp(x float64) float64 {
	return geometry.Clamp(x, l.Min, l.Max)
}

// Blocking lanes, HOME frame.
var (
	BlockLaneLeft   = Lane{Min: 0.05, Max: 0.45}
	BlockLaneMiddle = Lane{Min: 0.2, Max: 0.8}
	BlockLaneRight  = Lane{Min: 0.55, Max: 0.95}
)

const (
	defaultAllowance = 0.03
	blockAllowance   = 0.005
	setterAllowance  = 0.01
	attackAllowance  = 0.02

	// blockDepth is how far from the net a blocker stands.
	blockDepth = 0.02
	// setSpotX is the setter's target x, between zones 2 and 3.
	setSpotX = 0.62
	// laneBias is how strongly back-row defenders shift toward the read lane.
	laneBias = 0.25
)

type spec struct {
	allowance float64
	speed     float64
	target    func(in input) geometry.Vec2
}

// input is everything a goal may read, already in the HOME frame.
type input struct {
	court    geometry.Court
	actor    world.PlayerState
	position geometry.Vec2
	base     geometry.Vec2
	zone     int
	landing  geometry.Vec2
	ball     geometry.Vec2
	laneX    float64
	board    world.Blackboard
}

func fixed(x, y float64) func(input) geometry.Vec2 {
	return func(input) geometry.Vec2 { return geometry.Vec2{x, y} }
}

func offNet(x, depth float64) func(input) geometry.Vec2 {
	return func(in input) geometry.Vec2 { return geometry.Vec2{x, in.court.NetY + depth} }
}

var table = map[world.Goal]spec{
	world.Base:          {defaultAllowance, 1, func(in input) geometry.Vec2 { return in.base }},
	world.StayInPlace:   {defaultAllowance, 0, func(in input) geometry.Vec2 { return in.position }},
	world.ServePosition: {defaultAllowance, 1, serveSpot},

	world.ReceiveServe:  {defaultAllowance, 1.1, receiveServe},
	world.ReceiveLeft:   {defaultAllowance, 1.1, fixed(0.2, 0.78)},
	world.ReceiveMiddle: {defaultAllowance, 1.1, fixed(0.5, 0.82)},
	world.ReceiveRight:  {defaultAllowance, 1.1, fixed(0.8, 0.78)},
	world.StackW1:       {defaultAllowance, 1, fixed(0.12, 0.7)},
	world.StackW2:       {defaultAllowance, 1, fixed(0.3, 0.86)},
	world.StackW3:       {defaultAllowance, 1, fixed(0.5, 0.7)},
	world.StackW4:       {defaultAllowance, 1, fixed(0.7, 0.86)},
	world.StackW5:       {defaultAllowance, 1, fixed(0.88, 0.7)},

	world.SetterRelease:  {setterAllowance, 1.2, offNet(setSpotX, 0.05)},
	world.SetInSystem:    {setterAllowance, 1.2, offNet(setSpotX, 0.045)},
	world.SetOutOfSystem: {setterAllowance, 1.3, underBall(0.05)},
	world.SetQuick:       {setterAllowance, 1.2, setUnderPass(-0.01)},
	world.SetOutside:     {setterAllowance, 1.2, setUnderPass(0.01)},
	world.SetOpposite:    {setterAllowance, 1.2, setUnderPass(0)},

	world.ApproachLeft:    {attackAllowance, 1.25, offNet(0.15, 0.06)},
	world.ApproachMiddle:  {attackAllowance, 1.25, offNet(0.5, 0.05)},
	world.ApproachRight:   {attackAllowance, 1.25, offNet(0.85, 0.06)},
	world.ApproachBackRow: {attackAllowance, 1.2, backRowApproach},

	world.BlockLeft:   {blockAllowance, 1.3, block(BlockLaneLeft)},
	world.BlockMiddle: {blockAllowance, 1.3, block(BlockLaneMiddle)},
	world.BlockRight:  {blockAllowance, 1.3, block(BlockLaneRight)},

	world.DefendLeftBack:   {defaultAllowance, 1.2, defend(0.15, 0.88)},
	world.DefendMiddleBack: {defaultAllowance, 1.2, defend(0.5, 0.94)},
	world.DefendRightBack:  {defaultAllowance, 1.2, defend(0.85, 0.88)},
	world.DefendOffBlocker: {defaultAllowance, 1.2, offBlocker},
	world.TipCoverage:      {defaultAllowance, 1.3, tipCoverage},
	world.CoverHitter:      {defaultAllowance, 1.2, coverHitter},

	world.ChaseBall:        {defaultAllowance, 1.4, underBall(0.02)},
	world.FreeBallPosition: {defaultAllowance, 1, freeBall},
	world.TransitionOffNet: {defaultAllowance, 1.2, transitionOffNet},
}

// Known reports whether g has a resolver.
func Known(g world.Goal) bool {
	_, ok := table[g]
	return ok
}

// Resolve maps goal to a target for actor. It is pure and never fails:
// unknown goals resolve like Base, and invalid positions fall back to the
// centre of the actor's half.
func Resolve(goal world.Goal, actor world.PlayerState, board world.Blackboard, court geometry.Court, rotation int) Resolution {
	s, ok := table[goal]
	if !ok {
		goal = world.Base
		s = table[world.Base]
	}

	side := actor.Team
	if !side.Valid() {
		side = geometry.Home
	}
	in := input{
		court: court,
		actor: actor,
		board: board,
		zone:  world.ResponsibleZone(actor.Role, rotation),
	}
	in.base = baseTarget(court, in.zone)
	in.position = homeOr(court, actor.Position, side, in.base)
	in.ball = homeOr(court, board.Ball.Ground, side, court.Center(geometry.Home))
	in.landing = homeOr(court, board.PredictedLanding, side, in.ball)
	in.laneX = geometry.Clamp(board.OpponentLaneX, 0, 1)

	target := s.target(in)
	if !geometry.IsFinite2(target) {
		target = in.base
	}
	target = court.ClampToSide(target, geometry.Home, s.allowance)

	return Resolution{
		Goal:            goal,
		Target:          court.FromHomeFrame(target, side),
		NetAllowance:    s.allowance,
		SpeedMultiplier: s.speed,
	}
}

func homeOr(court geometry.Court, p geometry.Vec2, side geometry.Side, fallback geometry.Vec2) geometry.Vec2 {
	if _, err := geometry.Validate2(p); err != nil {
		return fallback
	}
	return court.ToHomeFrame(p, side)
}

func baseTarget(court geometry.Court, zone int) geometry.Vec2 {
	p, err := court.ZoneCenter(zone, geometry.Home)
	if err != nil {
		return court.Center(geometry.Home)
	}
	return p
}

func serveSpot(in input) geometry.Vec2 {
	zone1 := baseTarget(in.court, 1)
	return geometry.Vec2{zone1[0], in.court.LinesMax[1] + 0.04}
}

func receiveServe(in input) geometry.Vec2 {
	depth := in.court.NetY + (in.court.LinesMax[1]-in.court.NetY)*0.62
	return geometry.Vec2{in.base[0], depth}
}

// underBall targets the predicted landing, kept at least depth off the net.
func underBall(depth float64) func(input) geometry.Vec2 {
	return func(in input) geometry.Vec2 {
		p := in.landing
		if p[1] < in.court.NetY+depth {
			p[1] = in.court.NetY + depth
		}
		return p
	}
}

// setUnderPass moves the setter under the pass, kept in the setting window.
// shift nudges x to square up for the chosen set.
func setUnderPass(shift float64) func(input) geometry.Vec2 {
	return func(in input) geometry.Vec2 {
		x := geometry.Clamp(in.landing[0], 0.45, 0.8) + shift
		y := geometry.Clamp(in.landing[1], in.court.NetY+0.03, in.court.NetY+0.15)
		return geometry.Vec2{x, y}
	}
}

func backRowApproach(in input) geometry.Vec2 {
	return geometry.Vec2{0.5, in.court.NetY + in.court.AttackLine + 0.04}
}

// block follows the predicted ball x inside lane.
func block(lane Lane) func(input) geometry.Vec2 {
	return func(in input) geometry.Vec2 {
		x := in.landing[0]
		if in.board.Ball.LastTeam == in.actor.Team || !in.board.Ball.InFlight {
			x = in.laneX
		}
		return geometry.Vec2{lane.Clamp(x), in.court.NetY + blockDepth}
	}
}

// defend blends a back-row zone toward the read attack lane.
func defend(x, y float64) func(input) geometry.Vec2 {
	return func(in input) geometry.Vec2 {
		bx := x + (in.laneX-0.5)*laneBias
		return geometry.Vec2{geometry.Clamp(bx, 0.05, 0.95), y}
	}
}

// offBlocker drops the front-row player away from the attack off the net.
func offBlocker(in input) geometry.Vec2 {
	y := in.court.NetY + in.court.AttackLine + 0.02
	switch world.LaneOf(in.laneX) {
	case world.LaneLeft:
		return geometry.Vec2{0.85, y}
	case world.LaneRight:
		return geometry.Vec2{0.15, y}
	}
	if in.base[0] < 0.5 {
		return geometry.Vec2{0.15, y}
	}
	return geometry.Vec2{0.85, y}
}

func tipCoverage(in input) geometry.Vec2 {
	x := geometry.Lerp(geometry.Vec2{0.5, 0}, geometry.Vec2{in.laneX, 0}, 0.6)[0]
	return geometry.Vec2{x, in.court.NetY + 0.15}
}

// coverHitter sits behind our own hitter's attack point.
func coverHitter(in input) geometry.Vec2 {
	b := in.board.Ball
	attack := in.base
	if b.InFlight && b.LastTeam == in.actor.Team && b.Contact == physics.Set {
		attack = in.landing
	}
	return geometry.Vec2{attack[0], in.court.NetY + in.court.AttackLine + 0.05}
}

func freeBall(in input) geometry.Vec2 {
	if geometry.FrontRow(in.zone) {
		return geometry.Vec2{in.base[0], in.court.NetY + in.court.AttackLine + 0.03}
	}
	return geometry.Vec2{in.base[0], 0.82}
}

func transitionOffNet(in input) geometry.Vec2 {
	return geometry.Vec2{in.base[0], in.court.NetY + in.court.AttackLine + 0.05}
}
