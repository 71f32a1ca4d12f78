package world

import (
	"errors"
	"fmt"
	"strings"

	"github.com/picogrid/volley-simulations/pkg/geometry"
	"github.com/picogrid/volley-simulations/pkg/physics"
)

var (
	// ErrInvalidRoster is returned when a roster does not hold one player per
	// court role.
	ErrInvalidRoster = errors.New("invalid roster")
	// ErrInvalidRotation is returned for rotations outside 1-6.
	ErrInvalidRotation = errors.New("invalid rotation")
)

type roleDefaults struct {
	number   int
	speed    float64
	priority int
	skills   SkillProfile
}

func sk(acc, pow float64) physics.Skill { return physics.Skill{Accuracy: acc, Power: pow} }

var defaults = map[Role]roleDefaults{
	Setter: {number: 3, speed: 0.34, priority: 5, skills: SkillProfile{
		Passing: sk(0.70, 0.5), Setting: sk(0.92, 0.6), Attacking: sk(0.55, 0.5),
		Serving: sk(0.80, 0.6), Blocking: sk(0.55, 0.5), Movement: sk(0.8, 0.7),
	}},
	Outside1: {number: 7, speed: 0.32, priority: 3, skills: SkillProfile{
		Passing: sk(0.80, 0.6), Setting: sk(0.55, 0.5), Attacking: sk(0.82, 0.8),
		Serving: sk(0.75, 0.7), Blocking: sk(0.65, 0.6), Movement: sk(0.75, 0.7),
	}},
	Outside2: {number: 11, speed: 0.32, priority: 3, skills: SkillProfile{
		Passing: sk(0.78, 0.6), Setting: sk(0.55, 0.5), Attacking: sk(0.80, 0.8),
		Serving: sk(0.72, 0.7), Blocking: sk(0.65, 0.6), Movement: sk(0.75, 0.7),
	}},
	Middle1: {number: 9, speed: 0.30, priority: 2, skills: SkillProfile{
		Passing: sk(0.50, 0.5), Setting: sk(0.45, 0.5), Attacking: sk(0.78, 0.85),
		Serving: sk(0.70, 0.6), Blocking: sk(0.85, 0.8), Movement: sk(0.65, 0.7),
	}},
	Middle2: {number: 14, speed: 0.30, priority: 2, skills: SkillProfile{
		Passing: sk(0.50, 0.5), Setting: sk(0.45, 0.5), Attacking: sk(0.76, 0.85),
		Serving: sk(0.70, 0.6), Blocking: sk(0.83, 0.8), Movement: sk(0.65, 0.7),
	}},
	Opposite: {number: 1, speed: 0.32, priority: 3, skills: SkillProfile{
		Passing: sk(0.60, 0.5), Setting: sk(0.55, 0.5), Attacking: sk(0.84, 0.9),
		Serving: sk(0.74, 0.8), Blocking: sk(0.75, 0.7), Movement: sk(0.7, 0.7),
	}},
	LiberoRole: {number: 5, speed: 0.36, priority: 4, skills: SkillProfile{
		Passing: sk(0.90, 0.5), Setting: sk(0.65, 0.4), Attacking: sk(0.20, 0.2),
		Serving: sk(0.50, 0.4), Blocking: sk(0.10, 0.1), Movement: sk(0.9, 0.8),
	}},
}

// PlayerID returns the conventional id for side's role, e.g. "home-oh1".
func PlayerID(side geometry.Side, role Role) string {
	return strings.ToLower(string(side)) + "-" + strings.ToLower(string(role))
}

// NewPlayer returns a player with the stock attributes for role.
func NewPlayer(side geometry.Side, role Role) PlayerState {
	d := defaults[role]
	return PlayerState{
		ID:       PlayerID(side, role),
		Name:     fmt.Sprintf("%s %s", side, role),
		Number:   d.number,
		Team:     side,
		Role:     role,
		Category: role.Category(),
		MaxSpeed: d.speed,
		Priority: d.priority,
		BaseGoal: Base,
		Active:   role != LiberoRole,
		Skills:   d.skills,
	}
}

// DefaultRoster returns seven players (six court roles plus a libero).
func DefaultRoster(side geometry.Side) []PlayerState {
	roster := make([]PlayerState, 0, len(Roles))
	for _, role := range Roles {
		roster = append(roster, NewPlayer(side, role))
	}
	return roster
}

// ValidateRoster checks that roster holds exactly one player for each of the
// six court roles, at most one libero, unique ids, and that every player
// belongs to side.
func ValidateRoster(side geometry.Side, roster []PlayerState) error {
	seen := make(map[Role]int)
	ids := make(map[string]bool)
	for _, p := range roster {
		if p.Team != side {
			return fmt.Errorf("%w: player %s is on %s, not %s", ErrInvalidRoster, p.ID, p.Team, side)
		}
		if p.ID == "" || ids[p.ID] {
			return fmt.Errorf("%w: missing or duplicate id %q", ErrInvalidRoster, p.ID)
		}
		ids[p.ID] = true
		if p.Role.Category() == "" {
			return fmt.Errorf("%w: unknown role %q", ErrInvalidRoster, p.Role)
		}
		seen[p.Role]++
	}
	for role := range baseZones {
		if seen[role] != 1 {
			return fmt.Errorf("%w: %s needs exactly one %s, has %d", ErrInvalidRoster, side, role, seen[role])
		}
	}
	if seen[LiberoRole] > 1 {
		return fmt.Errorf("%w: %s has %d liberos", ErrInvalidRoster, side, seen[LiberoRole])
	}
	return nil
}
