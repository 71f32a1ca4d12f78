package world

import (
	"github.com/picogrid/volley-simulations/pkg/geometry"
	"github.com/picogrid/volley-simulations/pkg/physics"
	"github.com/picogrid/volley-simulations/pkg/rally"
)

// Role is a player's lineup slot.
type Role string

const (
	Setter     Role = "S"
	Outside1   Role = "OH1"
	Outside2   Role = "OH2"
	Middle1    Role = "MB1"
	Middle2    Role = "MB2"
	Opposite   Role = "OPP"
	LiberoRole Role = "L"
)

// Roles lists the lineup slots in a stable order.
var Roles = []Role{Setter, Outside1, Middle1, Opposite, Outside2, Middle2, LiberoRole}

// Category groups roles that share a behavior tree.
type Category string

const (
	CategorySetter   Category = "setter"
	CategoryOutside  Category = "outside"
	CategoryMiddle   Category = "middle"
	CategoryOpposite Category = "opposite"
	CategoryLibero   Category = "libero"
)

// Category returns the role's category.
func (r Role) Category() Category {
	switch r {
	case Setter:
		return CategorySetter
	case Outside1, Outside2:
		return CategoryOutside
	case Middle1, Middle2:
		return CategoryMiddle
	case Opposite:
		return CategoryOpposite
	case LiberoRole:
		return CategoryLibero
	}
	return ""
}

// SkillProfile holds accuracy and power per skill.
type SkillProfile struct {
	Passing   physics.Skill `json:"passing" yaml:"passing"`
	Setting   physics.Skill `json:"setting" yaml:"setting"`
	Attacking physics.Skill `json:"attacking" yaml:"attacking"`
	Serving   physics.Skill `json:"serving" yaml:"serving"`
	Blocking  physics.Skill `json:"blocking" yaml:"blocking"`
	Movement  physics.Skill `json:"movement" yaml:"movement"`
}

// For returns the skill used for a contact type.
func (s SkillProfile) For(c physics.ContactType) physics.Skill {
	switch c {
	case physics.Serve:
		return s.Serving
	case physics.Set:
		return s.Setting
	case physics.Attack:
		return s.Attacking
	case physics.Block:
		return s.Blocking
	}
	return s.Passing
}

// PlayerState is one player in the world snapshot.
type PlayerState struct {
	ID             string        `json:"id"`
	Name           string        `json:"name,omitempty"`
	Number         int           `json:"number,omitempty"`
	Team           geometry.Side `json:"team"`
	Role           Role          `json:"role"`
	Category       Category      `json:"category"`
	Position       geometry.Vec2 `json:"position"`
	Velocity       geometry.Vec2 `json:"velocity"`
	MaxSpeed       float64       `json:"maxSpeed"`
	Priority       int           `json:"priority"`
	RequestedGoal  Goal          `json:"requestedGoal,omitempty"`
	BaseGoal       Goal          `json:"baseGoal"`
	ManualOverride Goal          `json:"manualOverride,omitempty"`
	ActiveGoal     Goal          `json:"activeGoal,omitempty"`
	WaypointDone   bool          `json:"waypointDone,omitempty"`
	Active         bool          `json:"active"`
	Skills         SkillProfile  `json:"skills"`
}

// Goal returns the goal in effect: manual override, then requested goal, then
// base goal.
func (p PlayerState) Goal() Goal {
	switch {
	case p.ManualOverride != "":
		return p.ManualOverride
	case p.RequestedGoal != "":
		return p.RequestedGoal
	case p.BaseGoal != "":
		return p.BaseGoal
	}
	return Base
}

// BallState is the 3D ball. When InFlight is false the ball is held by
// HolderID (the server) or lies dead on the floor.
type BallState struct {
	Position       geometry.Vec3       `json:"position"`
	Velocity       geometry.Vec3       `json:"velocity"`
	Ground         geometry.Vec2       `json:"ground"`
	Landing        geometry.Vec2       `json:"landing"`
	LandingTime    float64             `json:"landingTime"`
	Peak           float64             `json:"peak"`
	Phase          physics.FlightPhase `json:"phase"`
	TouchCount     int                 `json:"touchCount"`
	LastTeam       geometry.Side       `json:"lastTeam,omitempty"`
	Contact        physics.ContactType `json:"contact,omitempty"`
	InFlight       bool                `json:"inFlight"`
	Flight         physics.Flight      `json:"flight"`
	HolderID       string              `json:"holderId,omitempty"`
	BlockContested bool                `json:"blockContested,omitempty"`
}

// Launched returns the ball state for a freshly launched flight. The
// previous ball's touch bookkeeping is replaced wholesale.
func Launched(f physics.Flight, team geometry.Side, touches int) BallState {
	b := BallState{
		InFlight:    true,
		Flight:      f,
		Contact:     f.Contact,
		LastTeam:    team,
		TouchCount:  touches,
		Landing:     f.Target,
		LandingTime: f.LandingTime(),
		Peak:        f.Peak,
	}
	return b.At(f.StartTime)
}

// At samples the flight at time t. A ball not in flight is returned as is.
func (b BallState) At(t float64) BallState {
	if !b.InFlight {
		return b
	}
	b.Position = b.Flight.PositionAt(t)
	b.Velocity = b.Flight.VelocityAt(t)
	b.Ground = geometry.Ground(b.Position)
	b.Phase = b.Flight.PhaseAt(t)
	return b
}

// Rotations holds each side's rotation number (1-6).
type Rotations struct {
	Home int `json:"home" yaml:"home"`
	Away int `json:"away" yaml:"away"`
}

// For returns side's rotation.
func (r Rotations) For(side geometry.Side) int {
	if side == geometry.Away {
		return r.Away
	}
	return r.Home
}

// With returns a copy with side's rotation set to n.
func (r Rotations) With(side geometry.Side, n int) Rotations {
	if side == geometry.Away {
		r.Away = n
	} else {
		r.Home = n
	}
	return r
}

// WorldState is the complete, serializable simulation snapshot.
type WorldState struct {
	Tick        uint64         `json:"tick"`
	Time        float64        `json:"time"`
	Ball        BallState      `json:"ball"`
	Players     []PlayerState  `json:"players"`
	Rally       rally.State    `json:"rally"`
	Court       geometry.Court `json:"court"`
	Rotations   Rotations      `json:"rotations"`
	ServingSide geometry.Side  `json:"servingSide"`
	Seed        int64          `json:"seed"`
	ContactSeq  uint64         `json:"contactSeq"`
	Frozen      bool           `json:"frozen,omitempty"`
}
