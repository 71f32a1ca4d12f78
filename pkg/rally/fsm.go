package rally

import (
	"github.com/picogrid/volley-simulations/pkg/geometry"
	"github.com/picogrid/volley-simulations/pkg/physics"
)

// EventType names the inputs the rally state machine understands.
type EventType string

const (
	StartRally      EventType = "START_RALLY"
	ServeContact    EventType = "SERVE_CONTACT"
	BallCrossedNet  EventType = "BALL_CROSSED_NET"
	TeamTouchedBall EventType = "TEAM_TOUCHED_BALL"
	BallDeadEvent   EventType = "BALL_DEAD"
)

// Event is one input to Transition. Side means the serving side for
// START_RALLY and SERVE_CONTACT, the side the ball came from for
// BALL_CROSSED_NET, the touching side for TEAM_TOUCHED_BALL and the winner
// for BALL_DEAD.
type Event struct {
	Type     EventType           `json:"type" yaml:"type"`
	Side     geometry.Side       `json:"side" yaml:"side"`
	Contact  physics.ContactType `json:"contact,omitempty" yaml:"contact,omitempty"`
	Quality  physics.Quality     `json:"quality,omitempty" yaml:"quality,omitempty"`
	PlayerID string              `json:"playerId,omitempty" yaml:"player_id,omitempty"`
	Reason   Reason              `json:"reason,omitempty" yaml:"reason,omitempty"`
	Time     float64             `json:"time" yaml:"time"`
}

// Transition applies e to s and returns the next state. Events that are not
// valid in the current phase leave the state unchanged. A dead rally only
// reacts to START_RALLY.
func Transition(s State, e Event) State {
	next := s.Clone()

	if e.Type == StartRally {
		return startRally(next, e)
	}
	if next.Phase == BallDead || next.Phase == "" {
		return next
	}

	switch e.Type {
	case ServeContact:
		return serveContact(next, e)
	case BallCrossedNet:
		return crossedNet(next, e)
	case TeamTouchedBall:
		return touched(next, e)
	case BallDeadEvent:
		return end(next, e.Reason, e.Side, e.Time)
	}
	return next
}

// Replay folds events through Transition starting from s.
func Replay(s State, events []Event) State {
	for _, e := range events {
		s = Transition(s, e)
	}
	return s
}

func startRally(s State, e Event) State {
	serving := e.Side
	if !serving.Valid() {
		serving = s.ServingSide
	}
	if !serving.Valid() {
		serving = Home
	}
	s.Phase = PreServe
	s.ServingSide = serving
	s.TouchCount = 0
	s.TouchSide = ""
	s.Possession = nil
	s.InSystem = true
	s.Reason = ""
	s.Winner = ""
	s.PhaseSince = e.Time
	s.RallyNumber++
	return s
}

func serveContact(s State, e Event) State {
	if s.Phase != PreServe {
		return s
	}
	side := s.ServingSide
	s.Possession = append(s.Possession, ContactRecord{
		Type:     physics.Serve,
		Quality:  e.Quality,
		PlayerID: e.PlayerID,
		Side:     side,
		Time:     e.Time,
	})
	s.TouchSide = side
	s.TouchCount = 1
	if e.Quality == physics.Error {
		return end(s, ErrorOut, side.Opponent(), e.Time)
	}
	return enter(s, ServeInAir, e.Time)
}

func crossedNet(s State, e Event) State {
	switch s.Phase {
	case PreServe:
		return s
	case ServeInAir:
		s.InSystem = true
		return enter(s, ServeReceive, e.Time)
	case AttackPhase, TransitionToDefense:
		return enter(s, Defense, e.Time)
	default:
		// an overpass from a pass or set hands over a free ball
		return enter(s, TransitionToDefense, e.Time)
	}
}

func touched(s State, e Event) State {
	if s.Phase == PreServe {
		return s
	}
	if e.Side == s.TouchSide {
		s.TouchCount++
	} else {
		s.TouchSide = e.Side
		s.TouchCount = 1
	}
	s.Possession = append(s.Possession, ContactRecord{
		Type:     e.Contact,
		Quality:  e.Quality,
		PlayerID: e.PlayerID,
		Side:     e.Side,
		Time:     e.Time,
	})

	if s.TouchCount > MaxTouches {
		return end(s, FourTouches, e.Side.Opponent(), e.Time)
	}
	if e.Quality == physics.Error {
		reason := ErrorNet
		if e.Contact == physics.Serve || e.Contact == physics.Attack {
			reason = ErrorOut
		}
		return end(s, reason, e.Side.Opponent(), e.Time)
	}

	switch e.Contact {
	case physics.Pass, physics.Dig:
		s.InSystem = e.Quality.InSystem()
		if s.TouchCount == 1 {
			return enter(s, TransitionToOffense, e.Time)
		}
	case physics.Set:
		return enter(s, SetPhase, e.Time)
	case physics.Attack:
		return enter(s, AttackPhase, e.Time)
	case physics.Block, physics.FreeBall:
		return enter(s, TransitionToDefense, e.Time)
	}
	return s
}

func enter(s State, phase Phase, now float64) State {
	if s.Phase != phase {
		s.Phase = phase
		s.PhaseSince = now
	}
	return s
}

func end(s State, reason Reason, winner geometry.Side, now float64) State {
	if s.Phase == BallDead {
		return s
	}
	if !winner.Valid() {
		winner = s.ServingSide.Opponent()
	}
	s.Phase = BallDead
	s.PhaseSince = now
	s.Reason = reason
	s.Winner = winner
	if winner == Home {
		s.HomeScore++
	} else {
		s.AwayScore++
	}
	s.ServingSide = winner
	return s
}
