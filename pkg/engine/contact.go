package engine

import (
	"github.com/picogrid/volley-simulations/pkg/geometry"
	"github.com/picogrid/volley-simulations/pkg/intent"
	"github.com/picogrid/volley-simulations/pkg/physics"
	"github.com/picogrid/volley-simulations/pkg/rally"
	"github.com/picogrid/volley-simulations/pkg/world"
)

// Difficulty of playing a ball by the contact that sent it.
const (
	attackDifficulty  = 0.6
	blockDifficulty   = 0.4
	serveDifficulty   = 0.35
	defaultDifficulty = 0.1
)

// poorAccuracyFactor scales aim accuracy on a poor touch.
const poorAccuracyFactor = 0.5

func difficulty(previous physics.ContactType) float64 {
	switch previous {
	case physics.Attack:
		return attackDifficulty
	case physics.Block:
		return blockDifficulty
	case physics.Serve:
		return serveDifficulty
	}
	return defaultDifficulty
}

// resolveContacts honors the first legal ball-contact intent of the tick.
// Legality is judged against prev, the world as the tick started: players
// touch the ball where they stood when they decided to.
func (c *Context) resolveContacts(prev, out world.WorldState, contacts []intent.Intent, events []rally.Event) (world.WorldState, []rally.Event) {
	ball := prev.Ball.At(prev.Time)
	for _, in := range contacts {
		actor, err := prev.PlayerByID(in.ActorID)
		if err != nil {
			continue
		}
		if reason := c.refuse(prev, actor, ball, in.Action.Contact); reason != "" {
			c.Log.WithFields(map[string]interface{}{
				"actor":   actor.ID,
				"contact": in.Action.Contact,
				"reason":  reason,
			}).Debug("contact refused")
			continue
		}
		rng := physics.NewRand(prev.Seed, prev.ContactSeq)
		out.ContactSeq = prev.ContactSeq + 1
		if in.Action.Contact == physics.Block && !c.contestBlock(prev, actor, rng) {
			out.Ball.BlockContested = true
			return out, events
		}
		return c.touch(prev, out, actor, ball, in, rng, events)
	}
	return out, events
}

// contestBlock rolls blocker against the attacker who sent the ball.
func (c *Context) contestBlock(ws world.WorldState, blocker world.PlayerState, rng physics.Rand) bool {
	var attack physics.Skill
	if last, ok := ws.Rally.LastContact(); ok {
		if hitter, err := ws.PlayerByID(last.PlayerID); err == nil {
			attack = hitter.Skills.For(physics.Attack)
		}
	}
	block := blocker.Skills.For(physics.Block)
	if physics.ContestBlock(rng, block, attack) {
		return true
	}
	c.Log.WithFields(map[string]interface{}{
		"actor":  blocker.ID,
		"chance": physics.BlockChance(block, attack),
	}).Debug("block missed")
	return false
}

// refuse returns why actor may not make contact now, or "" if it may.
func (c *Context) refuse(ws world.WorldState, actor world.PlayerState, ball world.BallState, contact physics.ContactType) string {
	r := ws.Rally
	switch {
	case !actor.Active:
		return "player not on court"
	case !r.Live():
		return "rally is dead"
	case contact == physics.Serve && (r.Phase != rally.PreServe || actor.Team != r.ServingSide):
		return "not this side's serve"
	case contact != physics.Serve && r.Phase == rally.PreServe:
		return "ball not served yet"
	case contact != physics.Serve && contact != physics.Block && r.TouchSide == actor.Team:
		if last, ok := r.LastContact(); ok && last.PlayerID == actor.ID && last.Type != physics.Block {
			return "consecutive touch by the same player"
		}
	}
	if !c.Config.Contact.Reachable(actor, ball, contact, ws.Court) {
		return "ball out of reach"
	}
	return ""
}

// touch grades the contact, feeds it to the rally and launches the next
// flight. Each contact draws from its own seeded stream rng.
func (c *Context) touch(prev, out world.WorldState, actor world.PlayerState, ball world.BallState, in intent.Intent, rng physics.Rand, events []rally.Event) (world.WorldState, []rally.Event) {
	kind := in.Action.Contact

	skill := actor.Skills.For(kind)
	q := physics.RollQuality(rng, skill.Accuracy, difficulty(ball.Contact))

	e := rally.Event{
		Type:     rally.TeamTouchedBall,
		Side:     actor.Team,
		Contact:  kind,
		Quality:  q,
		PlayerID: actor.ID,
		Time:     prev.Time,
	}
	if kind == physics.Serve {
		e.Type = rally.ServeContact
	}
	out.Rally = rally.Transition(out.Rally, e)
	events = append(events, e)

	c.Log.WithFields(map[string]interface{}{
		"actor":   actor.ID,
		"contact": kind,
		"quality": q,
		"touches": out.Rally.TouchesFor(actor.Team),
	}).Debug("contact")

	if !out.Rally.Live() {
		out.Ball = grounded(ball, ball.Ground)
		c.rallyOver(out)
		return out, events
	}

	target, err := geometry.Validate2(in.Action.Target)
	if err != nil {
		target = out.Court.Center(actor.Team.Opponent())
	}
	if q == physics.Poor {
		skill.Accuracy *= poorAccuracyFactor
	}
	height := c.Config.Physics.For(kind).LaunchHeight
	origin := geometry.Vec3{ball.Ground[0], ball.Ground[1], height}
	f := physics.Launch(origin, target, kind, skill, prev.Time, rng, out.Court, c.Config.Physics)
	out.Ball = world.Launched(f, actor.Team, out.Rally.TouchesFor(actor.Team))
	return out, events
}

// stepBall moves the ball from t0 to t1, raising a net crossing when it
// changes halves and ending the rally when it lands. A held ball follows its
// holder.
func (c *Context) stepBall(out world.WorldState, t0, t1 float64, events []rally.Event) (world.WorldState, []rally.Event) {
	ball := out.Ball
	if !ball.InFlight {
		if ball.HolderID != "" {
			if holder, err := out.PlayerByID(ball.HolderID); err == nil {
				ball.Ground = holder.Position
				ball.Position = geometry.Vec3{holder.Position[0], holder.Position[1], ball.Position[2]}
				ball.Landing = holder.Position
				out.Ball = ball
			}
		}
		return out, events
	}

	from := ball.At(t0)
	next := ball.At(t1)
	court := out.Court

	if side := court.SideOf(from.Ground); side != court.SideOf(next.Ground) {
		e := rally.Event{Type: rally.BallCrossedNet, Side: side, Time: t1}
		out.Rally = rally.Transition(out.Rally, e)
		events = append(events, e)
	}

	if next.Flight.Complete(t1) {
		landing := next.Flight.Target
		if out.Rally.Live() {
			e := rally.LandingEvent(out.Rally, landing, court, t1)
			out.Rally = rally.Transition(out.Rally, e)
			events = append(events, e)
			c.rallyOver(out)
		}
		next = grounded(next, landing)
	}
	out.Ball = next
	return out, events
}

// lifecycle starts the next rally once the dead-ball pause has passed. A
// side-out rotates the team winning the serve. A rally ended by a fault stays
// dead.
func (c *Context) lifecycle(out world.WorldState, now float64, events []rally.Event) (world.WorldState, []rally.Event) {
	r := out.Rally
	if r.Live() || r.Reason == rally.EngineFault {
		return out, events
	}
	if now-r.PhaseSince < c.Config.DeadBallPause {
		return out, events
	}

	winner := r.Winner
	if !winner.Valid() {
		winner = r.ServingSide
	}
	if winner != out.ServingSide {
		rot := world.NextRotation(out.Rotations.For(winner))
		out.Rotations = out.Rotations.With(winner, rot)
		c.Log.WithFields(map[string]interface{}{"side": winner, "rotation": rot}).Debug("side-out")
	}
	out.ServingSide = winner

	e := rally.Event{Type: rally.StartRally, Side: winner, Time: now}
	out.Rally = rally.Transition(out.Rally, e)
	events = append(events, e)

	out = out.ApplyLiberoSwap(geometry.Home).ApplyLiberoSwap(geometry.Away)
	out = out.ResetForServe()
	c.Log.WithFields(map[string]interface{}{
		"rally":   out.Rally.RallyNumber,
		"serving": winner,
	}).Debug("rally started")
	return out, events
}

func (c *Context) rallyOver(ws world.WorldState) {
	c.Log.WithFields(map[string]interface{}{
		"reason": ws.Rally.Reason,
		"winner": ws.Rally.Winner,
		"home":   ws.Rally.HomeScore,
		"away":   ws.Rally.AwayScore,
	}).Debug("rally over")
}

// grounded is ball lying dead at p.
func grounded(ball world.BallState, p geometry.Vec2) world.BallState {
	ball.InFlight = false
	ball.Phase = physics.Grounded
	ball.Position = geometry.Vec3{p[0], p[1], 0}
	ball.Velocity = geometry.Vec3{}
	ball.Ground = p
	ball.Landing = p
	ball.HolderID = ""
	return ball
}
