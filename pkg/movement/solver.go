package movement

import (
	"math"

	"github.com/picogrid/volley-simulations/pkg/geometry"
	"github.com/picogrid/volley-simulations/pkg/goals"
	"github.com/picogrid/volley-simulations/pkg/logger"
	"github.com/picogrid/volley-simulations/pkg/world"
)

// Params tunes the movement solver. Distances are court-normalized, times in
// seconds.
type Params struct {
	ArrivalRadius        float64 `json:"arrivalRadius" yaml:"arrival_radius"`
	DeadZone             float64 `json:"deadZone" yaml:"dead_zone"`
	Momentum             float64 `json:"momentum" yaml:"momentum"`
	WaypointDistance     float64 `json:"waypointDistance" yaml:"waypoint_distance"`
	WaypointThreshold    float64 `json:"waypointThreshold" yaml:"waypoint_threshold"`
	WaypointSkipDistance float64 `json:"waypointSkipDistance" yaml:"waypoint_skip_distance"`
	InterceptHorizon     float64 `json:"interceptHorizon" yaml:"intercept_horizon"`
	InterceptBlend       float64 `json:"interceptBlend" yaml:"intercept_blend"`
	PlayerRadius         float64 `json:"playerRadius" yaml:"player_radius"`
	AvoidanceStrength    float64 `json:"avoidanceStrength" yaml:"avoidance_strength"`
	AvoidanceWeight      float64 `json:"avoidanceWeight" yaml:"avoidance_weight"`
	TimeToCollision      float64 `json:"timeToCollision" yaml:"time_to_collision"`
	Overspeed            float64 `json:"overspeed" yaml:"overspeed"`
	JitterThreshold      float64 `json:"jitterThreshold" yaml:"jitter_threshold"`
	MinNetBuffer         float64 `json:"minNetBuffer" yaml:"min_net_buffer"`
	MaxDt                float64 `json:"maxDt" yaml:"max_dt"`
	DefaultMaxSpeed      float64 `json:"defaultMaxSpeed" yaml:"default_max_speed"`
}

// DefaultParams returns the stock solver tuning.
func DefaultParams() Params {
	return Params{
		ArrivalRadius:        0.08,
		DeadZone:             0.004,
		Momentum:             0.25,
		WaypointDistance:     0.12,
		WaypointThreshold:    0.03,
		WaypointSkipDistance: 0.05,
		InterceptHorizon:     0.6,
		InterceptBlend:       0.35,
		PlayerRadius:         0.025,
		AvoidanceStrength:    0.6,
		AvoidanceWeight:      0.5,
		TimeToCollision:      0.6,
		Overspeed:            1.1,
		JitterThreshold:      0.002,
		MinNetBuffer:         0.005,
		MaxDt:                1,
		DefaultMaxSpeed:      0.32,
	}
}

// Solver moves players toward their resolved goals. It holds no state
// between steps and draws no random numbers.
type Solver struct {
	Params Params
	Log    logger.Logger
}

// New returns a solver with params.
func New(params Params, log logger.Logger) Solver {
	return Solver{Params: params, Log: log}
}

// plan is one player's intended motion for the step.
type plan struct {
	desired  geometry.Vec2
	push     geometry.Vec2
	buffer   float64
	maxSpeed float64
}

// Step advances every active player by dt and returns the updated players.
// The input slice is not modified. Results always lie inside the court
// bounds and on the player's own side of the net.
func (s Solver) Step(players []world.PlayerState, boards map[geometry.Side]world.Blackboard, court geometry.Court, rotations world.Rotations, dt float64) []world.PlayerState {
	dt = s.sanitizeDt(dt)

	out := make([]world.PlayerState, len(players))
	copy(out, players)
	plans := make([]plan, len(out))

	for i, p := range out {
		if !p.Active {
			out[i].Velocity = geometry.Vec2{}
			continue
		}
		p = s.sanitize(p, court)
		board := boards[p.Team]

		goal := p.Goal()
		res := goals.Resolve(goal, p, board, court, rotations.For(p.Team))
		if goal != p.ActiveGoal {
			p.ActiveGoal = goal
			p.WaypointDone = false
		}

		target := res.Target
		if goals.IsAttackApproach(goal) {
			target, p.WaypointDone = s.approach(p, goal, target, court)
		}
		if goals.IsBallReactive(goal) {
			target = s.intercept(target, goal, p.Team, board, court)
		}

		buffer := math.Max(res.NetAllowance, s.Params.MinNetBuffer)
		target = court.ClampToSide(target, p.Team, buffer)
		maxSpeed := p.MaxSpeed * res.SpeedMultiplier
		if !finite(maxSpeed) || maxSpeed < 0 {
			maxSpeed = p.MaxSpeed
		}

		plans[i] = plan{
			desired:  s.arrive(p, target, maxSpeed, dt),
			buffer:   buffer,
			maxSpeed: maxSpeed,
		}
		out[i] = p
	}

	s.avoid(out, plans)
	steer := make([]geometry.Vec2, len(out))
	for i, p := range out {
		if p.Active {
			steer[i] = s.avoidance(i, out, plans)
		}
	}

	for i, p := range out {
		if !p.Active {
			continue
		}
		pl := plans[i]
		v := pl.desired.Add(steer[i].Mul(s.Params.AvoidanceWeight))
		v = geometry.ClampLen(v, pl.maxSpeed*s.Params.Overspeed)
		if v.Len() < s.Params.JitterThreshold {
			v = geometry.Vec2{}
		}
		pos := p.Position.Add(v.Mul(dt)).Add(pl.push)
		p.Position = court.ClampToSide(pos, p.Team, pl.buffer)
		p.Velocity = v
		out[i] = p
	}
	return out
}

func (s Solver) sanitizeDt(dt float64) float64 {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt < 0 {
		s.warn("invalid dt, not moving", map[string]interface{}{"dt": dt})
		return 0
	}
	if s.Params.MaxDt > 0 && dt > s.Params.MaxDt {
		return s.Params.MaxDt
	}
	return dt
}

// sanitize resets non-finite positions to the centre of the player's half,
// drops non-finite velocities and replaces an unusable max speed.
func (s Solver) sanitize(p world.PlayerState, court geometry.Court) world.PlayerState {
	if _, err := geometry.Validate2(p.Position); err != nil {
		s.warn("non-finite position reset to court centre", map[string]interface{}{"player": p.ID})
		p.Position = court.Center(p.Team)
	}
	if _, err := geometry.Validate2(p.Velocity); err != nil {
		p.Velocity = geometry.Vec2{}
	}
	if !finite(p.MaxSpeed) || p.MaxSpeed < 0 {
		s.warn("invalid max speed reset to default", map[string]interface{}{"player": p.ID, "maxSpeed": p.MaxSpeed})
		p.MaxSpeed = s.Params.DefaultMaxSpeed
		if !finite(p.MaxSpeed) || p.MaxSpeed < 0 {
			p.MaxSpeed = 0
		}
	}
	return p
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (s Solver) warn(msg string, fields map[string]interface{}) {
	if s.Log == nil {
		return
	}
	s.Log.WithFields(fields).Warn(msg)
}

// approach routes an attack approach through its waypoint until the player
// reaches it or is already close to the final target.
func (s Solver) approach(p world.PlayerState, goal world.Goal, target geometry.Vec2, court geometry.Court) (geometry.Vec2, bool) {
	if p.WaypointDone {
		return target, true
	}
	if geometry.Dist(p.Position, target) <= s.Params.WaypointSkipDistance {
		return target, true
	}
	wp := goals.ApproachWaypoint(goal, p.Category, target, p.Team, court, s.Params.WaypointDistance)
	if geometry.Dist(p.Position, wp) <= s.Params.WaypointThreshold {
		return target, true
	}
	return wp, false
}

// intercept blends target toward where the ball will be a short horizon from
// now. Blocks only shift along the net and stay in their lane.
func (s Solver) intercept(target geometry.Vec2, goal world.Goal, side geometry.Side, board world.Blackboard, court geometry.Court) geometry.Vec2 {
	ball := board.Ball
	if !ball.InFlight || ball.LastTeam == side || s.Params.InterceptBlend <= 0 {
		return target
	}
	at := board.Time + s.Params.InterceptHorizon
	if lt := ball.Flight.LandingTime(); at > lt {
		at = lt
	}
	predicted := geometry.Ground(ball.Flight.PositionAt(at))
	if !geometry.IsFinite2(predicted) {
		return target
	}

	if lane, ok := goals.BlockLane(goal); ok {
		home := court.ToHomeFrame(target, side)
		px := court.ToHomeFrame(predicted, side)[0]
		home[0] = lane.Clamp(home[0] + (px-home[0])*s.Params.InterceptBlend)
		return court.FromHomeFrame(home, side)
	}
	if !court.OnSide(predicted, side) {
		return target
	}
	return geometry.Lerp(target, predicted, s.Params.InterceptBlend)
}

// arrive returns the desired velocity toward target: full speed outside the
// arrival radius, quadratic ease-out inside it, zero inside the dead zone,
// and never overshooting within one step.
func (s Solver) arrive(p world.PlayerState, target geometry.Vec2, maxSpeed, dt float64) geometry.Vec2 {
	to := target.Sub(p.Position)
	d := to.Len()
	if d <= s.Params.DeadZone || maxSpeed <= 0 {
		return geometry.Vec2{}
	}

	speed := maxSpeed
	if s.Params.ArrivalRadius > 0 && d < s.Params.ArrivalRadius {
		k := d / s.Params.ArrivalRadius
		speed = maxSpeed * k * (2 - k)
	}
	if dt > 0 && speed*dt > d {
		speed = d / dt
	}

	dir := geometry.SafeNormalize(to)
	if m := s.Params.Momentum; m > 0 && p.Velocity.Len() > s.Params.JitterThreshold {
		heading := geometry.SafeNormalize(p.Velocity)
		mixed := dir.Mul(1 - m).Add(heading.Mul(m))
		if mixed.Len() > 1e-6 {
			dir = geometry.SafeNormalize(mixed)
		}
	}
	return dir.Mul(speed)
}

// avoid computes the positional push-apart for overlapping teammates. The
// overlap is split so the higher priority player moves less.
func (s Solver) avoid(players []world.PlayerState, plans []plan) {
	minDist := 2 * s.Params.PlayerRadius
	for i := range players {
		for j := i + 1; j < len(players); j++ {
			a, b := players[i], players[j]
			if !a.Active || !b.Active || a.Team != b.Team {
				continue
			}
			rel := a.Position.Sub(b.Position)
			dist := rel.Len()
			if dist >= minDist {
				continue
			}
			dir := geometry.SafeNormalize(rel)
			if dir.Len() == 0 {
				dir = geometry.Vec2{1, 0}
			}
			overlap := minDist - dist
			wa, wb := yieldShares(a.Priority, b.Priority)
			plans[i].push = plans[i].push.Add(dir.Mul(overlap * wa))
			plans[j].push = plans[j].push.Sub(dir.Mul(overlap * wb))
		}
	}
}

// yieldShares splits an overlap between two players; the lower priority
// player takes the larger share.
func yieldShares(pa, pb int) (float64, float64) {
	a, b := float64(pa+1), float64(pb+1)
	if a <= 0 || b <= 0 {
		return 0.5, 0.5
	}
	return b / (a + b), a / (a + b)
}

// avoidance returns the predictive steering velocity for player i against
// teammates that are not already overlapping.
func (s Solver) avoidance(i int, players []world.PlayerState, plans []plan) geometry.Vec2 {
	minDist := 2 * s.Params.PlayerRadius
	me := players[i]
	var steer geometry.Vec2
	for j, other := range players {
		if j == i || !other.Active || other.Team != me.Team {
			continue
		}
		rel := me.Position.Sub(other.Position)
		if rel.Len() < minDist {
			continue
		}
		relVel := plans[i].desired.Sub(plans[j].desired)
		speed2 := relVel.Dot(relVel)
		if speed2 < 1e-12 {
			continue
		}
		t := -rel.Dot(relVel) / speed2
		if t <= 0 || t >= s.Params.TimeToCollision {
			continue
		}
		closest := rel.Add(relVel.Mul(t))
		if closest.Len() >= minDist {
			continue
		}
		perp := geometry.Perp(geometry.SafeNormalize(relVel))
		if perp.Dot(closest) < 0 {
			perp = perp.Mul(-1)
		}
		share, _ := yieldShares(me.Priority, other.Priority)
		strength := s.Params.AvoidanceStrength * (1 - t/s.Params.TimeToCollision) * plans[i].maxSpeed * 2 * share
		steer = steer.Add(perp.Mul(strength))
	}
	return steer
}
