package world

import (
	"github.com/samber/lo"

	"github.com/picogrid/volley-simulations/pkg/geometry"
	"github.com/picogrid/volley-simulations/pkg/physics"
	"github.com/picogrid/volley-simulations/pkg/rally"
)

// Lane is a third of the court width, named from the reading team's view.
type Lane string

const (
	LaneLeft   Lane = "left"
	LaneMiddle Lane = "middle"
	LaneRight  Lane = "right"
)

// LaneOf classifies a HOME-frame x coordinate.
func LaneOf(x float64) Lane {
	switch {
	case x < 1.0/3.0:
		return LaneLeft
	case x > 2.0/3.0:
		return LaneRight
	}
	return LaneMiddle
}

// Blackboard is one team's read-only view of the world for a tick. Positions
// are in world coordinates; OpponentLaneX is in the team's HOME frame.
type Blackboard struct {
	Side             geometry.Side       `json:"side"`
	Tick             uint64              `json:"tick"`
	Time             float64             `json:"time"`
	Phase            rally.Phase         `json:"phase"`
	PhaseSince       float64             `json:"phaseSince"`
	Rotation         int                 `json:"rotation"`
	OpponentRotation int                 `json:"opponentRotation"`
	HitterMode       HitterMode          `json:"hitterMode"`
	Serving          bool                `json:"serving"`
	ServerID         string              `json:"serverId"`
	SetterID         string              `json:"setterId"`
	SetterFrontRow   bool                `json:"setterFrontRow"`
	Ball             BallState           `json:"ball"`
	BallOnOurSide    bool                `json:"ballOnOurSide"`
	BallIncoming     bool                `json:"ballIncoming"`
	PredictedLanding geometry.Vec2       `json:"predictedLanding"`
	LandingTime      float64             `json:"landingTime"`
	TouchesUsed      int                 `json:"touchesUsed"`
	LastTouchSide    geometry.Side       `json:"lastTouchSide,omitempty"`
	LastTouchID      string              `json:"lastTouchId,omitempty"`
	LastContact      physics.ContactType `json:"lastContact,omitempty"`
	InSystem         bool                `json:"inSystem"`
	OpponentLane     Lane                `json:"opponentLane"`
	OpponentLaneX    float64             `json:"opponentLaneX"`
	Teammates        []PlayerState       `json:"teammates"`
	Opponents        []PlayerState       `json:"opponents"`
	Court            geometry.Court      `json:"court"`
}

// SenseTeam builds side's blackboard from ws.
func SenseTeam(ws WorldState, side geometry.Side) Blackboard {
	ball := ws.Ball.At(ws.Time)
	opp := side.Opponent()
	rot := ws.Rotations.For(side)

	b := Blackboard{
		Side:             side,
		Tick:             ws.Tick,
		Time:             ws.Time,
		Phase:            ws.Rally.Phase,
		PhaseSince:       ws.Rally.PhaseSince,
		Rotation:         rot,
		OpponentRotation: ws.Rotations.For(opp),
		HitterMode:       HitterModeOf(rot),
		Serving:          ws.ServingSide == side,
		ServerID:         ws.ServerID(ws.ServingSide),
		SetterFrontRow:   geometry.FrontRow(ZoneOf(Setter, rot)),
		Ball:             ball,
		PredictedLanding: ball.Landing,
		LandingTime:      ball.LandingTime,
		TouchesUsed:      ws.Rally.TouchesFor(side),
		LastTouchSide:    ws.Rally.TouchSide,
		InSystem:         ws.Rally.InSystem,
		Teammates:        ws.ActivePlayers(side),
		Opponents:        ws.ActivePlayers(opp),
		Court:            ws.Court,
	}
	if last, ok := ws.Rally.LastContact(); ok {
		b.LastContact = last.Type
		b.LastTouchID = last.PlayerID
	}

	b.BallOnOurSide = ws.Court.OnSide(ball.Ground, side)
	b.BallIncoming = ball.InFlight && ws.Court.OnSide(ball.Landing, side) &&
		!(ball.LastTeam == side && ball.Contact == physics.Block)
	b.SetterID = designatedSetter(b)

	laneX := ball.Ground
	if ball.InFlight && ball.LastTeam == opp {
		laneX = ball.Landing
	}
	b.OpponentLaneX = ws.Court.ToHomeFrame(laneX, side)[0]
	b.OpponentLane = LaneOf(b.OpponentLaneX)
	return b
}

// designatedSetter is the setter unless the setter already took this
// possession's touch, then the libero, then the opposite.
func designatedSetter(b Blackboard) string {
	for _, role := range []Role{Setter, LiberoRole, Opposite} {
		p, ok := lo.Find(b.Teammates, func(p PlayerState) bool { return p.Role == role })
		if !ok {
			continue
		}
		if b.LastTouchSide == b.Side && b.LastTouchID == p.ID {
			continue
		}
		return p.ID
	}
	return ""
}

// Teammate returns the active teammate with id.
func (b Blackboard) Teammate(id string) (PlayerState, bool) {
	return lo.Find(b.Teammates, func(p PlayerState) bool { return p.ID == id })
}

// TeammateByRole returns the active teammate holding role.
func (b Blackboard) TeammateByRole(role Role) (PlayerState, bool) {
	return lo.Find(b.Teammates, func(p PlayerState) bool { return p.Role == role })
}

// ClosestTo returns the id of the active teammate nearest to p, skipping
// exclude. Ties break on world order.
func (b Blackboard) ClosestTo(p geometry.Vec2, exclude string) string {
	best, bestD := "", 0.0
	for _, m := range b.Teammates {
		if m.ID == exclude {
			continue
		}
		d := geometry.Dist(m.Position, p)
		if best == "" || d < bestD {
			best, bestD = m.ID, d
		}
	}
	return best
}

// HomeFrame maps a world point into this team's HOME frame.
func (b Blackboard) HomeFrame(p geometry.Vec2) geometry.Vec2 {
	return b.Court.ToHomeFrame(p, b.Side)
}
