package rally

import (
	"github.com/picogrid/volley-simulations/pkg/geometry"
	"github.com/picogrid/volley-simulations/pkg/physics"
)

// ClassifyLanding decides the outcome of the ball hitting the floor at
// landing. Out of bounds is charged to the last toucher; an unreturned serve,
// attack or block that lands on the opponent's half scores for the toucher;
// anything else is a point for the side opposite where the ball landed.
func ClassifyLanding(s State, landing geometry.Vec2, court geometry.Court) (Reason, geometry.Side) {
	landedSide := court.SideOf(landing)
	last, ok := s.LastContact()
	if !ok {
		return Landed, landedSide.Opponent()
	}

	if !court.InBounds(landing) {
		return Out, last.Side.Opponent()
	}
	if landedSide == last.Side {
		return Landed, landedSide.Opponent()
	}

	switch last.Type {
	case physics.Serve:
		return Ace, last.Side
	case physics.Attack:
		return Kill, last.Side
	case physics.Block:
		return BlockKill, last.Side
	}
	return Landed, landedSide.Opponent()
}

// LandingEvent builds the BALL_DEAD event for a landing.
func LandingEvent(s State, landing geometry.Vec2, court geometry.Court, now float64) Event {
	reason, winner := ClassifyLanding(s, landing, court)
	return Event{Type: BallDeadEvent, Side: winner, Reason: reason, Time: now}
}
