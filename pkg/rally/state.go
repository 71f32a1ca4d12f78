package rally

import (
	"github.com/picogrid/volley-simulations/pkg/geometry"
	"github.com/picogrid/volley-simulations/pkg/physics"
)

// Phase is the rally state machine's current state.
type Phase string

const (
	PreServe            Phase = "pre-serve"
	ServeInAir          Phase = "serve-in-air"
	ServeReceive        Phase = "serve-receive"
	TransitionToOffense Phase = "transition-to-offense"
	SetPhase            Phase = "set"
	AttackPhase         Phase = "attack"
	TransitionToDefense Phase = "transition-to-defense"
	Defense             Phase = "defense"
	BallDead            Phase = "ball-dead"
)

// Reason explains why a rally ended.
type Reason string

const (
	FourTouches Reason = "four_touches"
	ErrorOut    Reason = "error_out"
	ErrorNet    Reason = "error_net"
	Out         Reason = "out"
	Ace         Reason = "ace"
	Kill        Reason = "kill"
	BlockKill   Reason = "block_kill"
	Landed      Reason = "landed"
	EngineFault Reason = "engine_fault"
)

// MaxTouches is the number of consecutive touches one side may take.
const MaxTouches = 3

// ContactRecord is one entry of the possession chain.
type ContactRecord struct {
	Type     physics.ContactType `json:"type"`
	Quality  physics.Quality     `json:"quality"`
	PlayerID string              `json:"playerId"`
	Side     geometry.Side       `json:"side"`
	Time     float64             `json:"time"`
}

// State is the rally finite-state machine's data. It is a plain value; every
// transition returns a new State.
type State struct {
	Phase       Phase           `json:"phase"`
	ServingSide geometry.Side   `json:"servingSide"`
	TouchCount  int             `json:"touchCount"`
	TouchSide   geometry.Side   `json:"touchSide,omitempty"`
	Possession  []ContactRecord `json:"possession,omitempty"`
	InSystem    bool            `json:"inSystem"`
	HomeScore   int             `json:"homeScore"`
	AwayScore   int             `json:"awayScore"`
	Reason      Reason          `json:"reason,omitempty"`
	Winner      geometry.Side   `json:"winner,omitempty"`
	PhaseSince  float64         `json:"phaseSince"`
	RallyNumber int             `json:"rallyNumber"`
}

// NewState returns a fresh rally waiting for serving's serve.
func NewState(serving geometry.Side, now float64) State {
	return Transition(State{}, Event{Type: StartRally, Side: serving, Time: now})
}

// Clone deep-copies the possession chain.
func (s State) Clone() State {
	out := s
	if s.Possession != nil {
		out.Possession = make([]ContactRecord, len(s.Possession))
		copy(out.Possession, s.Possession)
	}
	return out
}

// Live reports whether the rally is still being played.
func (s State) Live() bool {
	return s.Phase != BallDead
}

// Score returns side's points.
func (s State) Score(side geometry.Side) int {
	if side == Home {
		return s.HomeScore
	}
	return s.AwayScore
}

// LastContact returns the latest contact in the possession chain.
func (s State) LastContact() (ContactRecord, bool) {
	if len(s.Possession) == 0 {
		return ContactRecord{}, false
	}
	return s.Possession[len(s.Possession)-1], true
}

// TouchesFor returns how many consecutive touches side currently has.
func (s State) TouchesFor(side geometry.Side) int {
	if s.TouchSide != side {
		return 0
	}
	return s.TouchCount
}

// Home and Away are re-exported for brevity in this package.
const (
	Home = geometry.Home
	Away = geometry.Away
)
