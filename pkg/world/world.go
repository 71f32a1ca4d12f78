package world

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/picogrid/volley-simulations/pkg/geometry"
	"github.com/picogrid/volley-simulations/pkg/physics"
	"github.com/picogrid/volley-simulations/pkg/rally"
)

// ErrPlayerNotFound is returned by lookups for ids not in the world.
var ErrPlayerNotFound = errors.New("player not found")

// Sides is both teams in iteration order.
var Sides = []geometry.Side{geometry.Home, geometry.Away}

// serveDepth is how far behind the end line the server stands.
const serveDepth = 0.04

// serveHoldHeight is the height of a ball held by the server, in meters.
const serveHoldHeight = 1.0

type options struct {
	court     geometry.Court
	rotations Rotations
	serving   geometry.Side
	seed      int64
	rosters   map[geometry.Side][]PlayerState
}

// Option customizes New.
type Option func(*options)

// WithCourt replaces the default court.
func WithCourt(c geometry.Court) Option {
	return func(o *options) { o.court = c }
}

// WithRotations sets both sides' starting rotations.
func WithRotations(home, away int) Option {
	return func(o *options) { o.rotations = Rotations{Home: home, Away: away} }
}

// WithServingSide sets which side serves first.
func WithServingSide(side geometry.Side) Option {
	return func(o *options) { o.serving = side }
}

// WithSeed sets the seed for aim variance and contact quality rolls.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

// WithRoster replaces side's default roster.
func WithRoster(side geometry.Side, roster []PlayerState) Option {
	return func(o *options) {
		cp := make([]PlayerState, len(roster))
		copy(cp, roster)
		o.rosters[side] = cp
	}
}

// New builds a world ready for the first serve: players at their rotation
// base positions, the libero swapped in, the ball held by the server behind
// the serving side's end line, and the rally in pre-serve.
func New(opts ...Option) (WorldState, error) {
	o := options{
		court:     geometry.DefaultCourt(),
		rotations: Rotations{Home: 1, Away: 1},
		serving:   geometry.Home,
		seed:      1,
		rosters:   make(map[geometry.Side][]PlayerState),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if !ValidRotation(o.rotations.Home) || !ValidRotation(o.rotations.Away) {
		return WorldState{}, fmt.Errorf("%w: home %d, away %d", ErrInvalidRotation, o.rotations.Home, o.rotations.Away)
	}
	if !o.serving.Valid() {
		return WorldState{}, fmt.Errorf("unknown serving side %q", o.serving)
	}

	ws := WorldState{
		Court:       o.court,
		Rotations:   o.rotations,
		ServingSide: o.serving,
		Seed:        o.seed,
	}
	for _, side := range Sides {
		roster, ok := o.rosters[side]
		if !ok {
			roster = DefaultRoster(side)
		}
		if err := ValidateRoster(side, roster); err != nil {
			return WorldState{}, err
		}
		for _, p := range roster {
			p.Category = p.Role.Category()
			p.Active = p.Role != LiberoRole
			if p.BaseGoal == "" {
				p.BaseGoal = Base
			}
			ws.Players = append(ws.Players, p)
		}
	}

	ws = ws.ApplyLiberoSwap(geometry.Home).ApplyLiberoSwap(geometry.Away)
	ws = ws.ResetForServe()
	ws.Rally = rally.NewState(o.serving, 0)
	return ws, nil
}

// Clone returns a deep copy sharing no mutable memory with ws.
func (ws WorldState) Clone() WorldState {
	out := ws
	if ws.Players != nil {
		out.Players = make([]PlayerState, len(ws.Players))
		copy(out.Players, ws.Players)
	}
	out.Rally = ws.Rally.Clone()
	return out
}

func (ws WorldState) index(id string) int {
	_, i, ok := lo.FindIndexOf(ws.Players, func(p PlayerState) bool { return p.ID == id })
	if !ok {
		return -1
	}
	return i
}

// PlayerByID returns a copy of the player with id.
func (ws WorldState) PlayerByID(id string) (PlayerState, error) {
	i := ws.index(id)
	if i < 0 {
		return PlayerState{}, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}
	return ws.Players[i], nil
}

// PlayerByRole returns side's player holding role.
func (ws WorldState) PlayerByRole(side geometry.Side, role Role) (PlayerState, bool) {
	return lo.Find(ws.Players, func(p PlayerState) bool { return p.Team == side && p.Role == role })
}

// ByTeam returns copies of side's players in world order.
func (ws WorldState) ByTeam(side geometry.Side) []PlayerState {
	return lo.Filter(ws.Players, func(p PlayerState, _ int) bool { return p.Team == side })
}

// ActivePlayers returns side's players currently on court.
func (ws WorldState) ActivePlayers(side geometry.Side) []PlayerState {
	return ActiveOnly(ws.ByTeam(side))
}

// ActiveCount returns how many of side's players are on court.
func (ws WorldState) ActiveCount(side geometry.Side) int {
	return lo.CountBy(ws.Players, func(p PlayerState) bool { return p.Team == side && p.Active })
}

// ActiveOnly filters players to those on court.
func ActiveOnly(players []PlayerState) []PlayerState {
	return lo.Filter(players, func(p PlayerState, _ int) bool { return p.Active })
}

// WithPlayer returns a copy of ws with the player sharing p's id replaced.
func (ws WorldState) WithPlayer(p PlayerState) (WorldState, error) {
	i := ws.index(p.ID)
	if i < 0 {
		return ws, fmt.Errorf("%w: %s", ErrPlayerNotFound, p.ID)
	}
	out := ws.Clone()
	out.Players[i] = p
	return out, nil
}

// UpdatePlayer returns a copy of ws with fn applied to the player with id.
func (ws WorldState) UpdatePlayer(id string, fn func(PlayerState) PlayerState) (WorldState, error) {
	p, err := ws.PlayerByID(id)
	if err != nil {
		return ws, err
	}
	return ws.WithPlayer(fn(p))
}

// WithPlayers returns a copy of ws with every player whose id matches one in
// players replaced. Unknown ids are ignored.
func (ws WorldState) WithPlayers(players []PlayerState) WorldState {
	out := ws.Clone()
	byID := lo.KeyBy(players, func(p PlayerState) string { return p.ID })
	for i, p := range out.Players {
		if np, ok := byID[p.ID]; ok {
			out.Players[i] = np
		}
	}
	return out
}

// WithBall returns a copy of ws with the ball replaced.
func (ws WorldState) WithBall(b BallState) WorldState {
	out := ws.Clone()
	out.Ball = b
	return out
}

// WithRally returns a copy of ws with the rally state replaced.
func (ws WorldState) WithRally(r rally.State) WorldState {
	out := ws.Clone()
	out.Rally = r.Clone()
	return out
}

// ZoneFor returns the zone p is responsible for. The libero takes the zone of
// the back-row middle.
func (ws WorldState) ZoneFor(p PlayerState) int {
	return ResponsibleZone(p.Role, ws.Rotations.For(p.Team))
}

// BasePosition returns the centre of p's zone, or the centre of its half when
// it has none.
func (ws WorldState) BasePosition(p PlayerState) geometry.Vec2 {
	pos, err := ws.Court.ZoneCenter(ws.ZoneFor(p), p.Team)
	if err != nil {
		return ws.Court.Center(p.Team)
	}
	return pos
}

// BenchPosition is where substituted players wait.
func (ws WorldState) BenchPosition(side geometry.Side) geometry.Vec2 {
	c := ws.Court.Center(side)
	return geometry.Vec2{ws.Court.BoundsMin[0], c[1]}
}

// ServerID returns the id of the player serving for side in its current
// rotation.
func (ws WorldState) ServerID(side geometry.Side) string {
	p, ok := ws.PlayerByRole(side, ServerRole(ws.Rotations.For(side)))
	if !ok {
		return ""
	}
	return p.ID
}

// ServeSpot returns where side's server stands, behind the zone 1 end line.
func (ws WorldState) ServeSpot(side geometry.Side) geometry.Vec2 {
	zone1, err := ws.Court.ZoneCenter(1, geometry.Home)
	if err != nil {
		zone1 = ws.Court.Center(geometry.Home)
	}
	home := geometry.Vec2{zone1[0], ws.Court.LinesMax[1] + serveDepth}
	return ws.Court.FromHomeFrame(home, side)
}

// ResetForServe moves every player to its base position (the server to the
// serve spot), clears per-rally goals and velocities, and hands the ball to
// the serving side's server.
func (ws WorldState) ResetForServe() WorldState {
	out := ws.Clone()
	server := out.ServerID(out.ServingSide)
	for i, p := range out.Players {
		p.Velocity = geometry.Vec2{}
		p.RequestedGoal = ""
		p.ActiveGoal = ""
		p.WaypointDone = false
		switch {
		case !p.Active:
			p.Position = out.BenchPosition(p.Team)
		case p.ID == server:
			p.Position = out.ServeSpot(p.Team)
		default:
			p.Position = out.BasePosition(p)
		}
		out.Players[i] = p
	}

	spot := out.ServeSpot(out.ServingSide)
	out.Ball = BallState{
		Position: geometry.Vec3{spot[0], spot[1], serveHoldHeight},
		Ground:   spot,
		Landing:  spot,
		Phase:    physics.Grounded,
		HolderID: server,
	}
	return out
}

// ApplyLiberoSwap puts side's libero on court in place of the back-row
// middle, unless that middle is about to serve. Exactly six of side's
// players are active afterwards. Sides without a libero keep all six.
func (ws WorldState) ApplyLiberoSwap(side geometry.Side) WorldState {
	out := ws.Clone()
	rot := out.Rotations.For(side)
	mid := BackRowMiddle(rot)

	li, mi := -1, -1
	for i, p := range out.Players {
		if p.Team != side {
			continue
		}
		switch p.Role {
		case LiberoRole:
			li = i
		case mid:
			mi = i
		default:
			out.Players[i].Active = true
		}
	}
	if mi < 0 {
		return out
	}
	if li < 0 {
		out.Players[mi].Active = true
		return out
	}

	liberoIn := !(out.ServingSide == side && ZoneOf(mid, rot) == 1)
	libero, middle := out.Players[li], out.Players[mi]
	switch {
	case liberoIn && !libero.Active:
		libero.Position, middle.Position = middle.Position, out.BenchPosition(side)
	case !liberoIn && libero.Active:
		middle.Position, libero.Position = libero.Position, out.BenchPosition(side)
	}
	libero.Active = liberoIn
	middle.Active = !liberoIn
	out.Players[li], out.Players[mi] = libero, middle
	return out
}
