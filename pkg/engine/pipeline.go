package engine

import (
	"fmt"
	"sync"

	"github.com/picogrid/volley-simulations/pkg/geometry"
	"github.com/picogrid/volley-simulations/pkg/intent"
	"github.com/picogrid/volley-simulations/pkg/rally"
	"github.com/picogrid/volley-simulations/pkg/world"
)

// Sense builds both teams' blackboards.
func (c *Context) Sense(ws world.WorldState) map[geometry.Side]world.Blackboard {
	boards := make(map[geometry.Side]world.Blackboard, len(world.Sides))
	for _, side := range world.Sides {
		boards[side] = world.SenseTeam(ws, side)
	}
	return boards
}

// Think runs every active player's tree. Traces come back in world order
// whether or not the evaluation fans out across workers, and the returned
// intents are each trace's selected intent in that order.
func (c *Context) Think(ws world.WorldState, boards map[geometry.Side]world.Blackboard) ([]intent.Intent, []intent.DecisionTrace) {
	actors := world.ActiveOnly(ws.Players)
	traces := make([]intent.DecisionTrace, len(actors))

	decide := func(i int) {
		p := actors[i]
		traces[i] = c.Library.Decide(boards[p.Team], p)
	}

	workers := c.Config.ThinkWorkers
	if workers <= 1 || len(actors) <= 1 {
		for i := range actors {
			decide(i)
		}
	} else {
		c.fanOut(len(actors), workers, decide)
	}

	intents := make([]intent.Intent, 0, len(traces))
	for _, t := range traces {
		if t.Selected != nil {
			intents = append(intents, *t.Selected)
		}
	}
	return intents, traces
}

// fanOut runs fn for 0..n-1 across workers goroutines. A panic in a worker is
// re-raised on the calling goroutine once all workers have stopped.
func (c *Context) fanOut(n, workers int, fn func(int)) {
	if workers > n {
		workers = n
	}
	jobs := make(chan int, n)
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		panicked interface{}
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					mu.Lock()
					if panicked == nil {
						panicked = r
					}
					mu.Unlock()
				}
			}()
			for i := range jobs {
				fn(i)
			}
		}()
	}
	wg.Wait()

	if panicked != nil {
		panic(fmt.Sprintf("think worker: %v", panicked))
	}
}

// Propose merges the AI's intents with the caller's. A human intent for a
// player discards every AI intent for that player.
func (c *Context) Propose(ai, human []intent.Intent) []intent.Intent {
	return intent.Merge(ai, human)
}

// Commit applies intents to ws and advances it by dt.
func (c *Context) Commit(ws world.WorldState, intents []intent.Intent, dt float64) world.WorldState {
	next, _ := c.commit(ws, intents, dt)
	return next
}

// commit is Commit that also returns the rally events raised during the tick.
func (c *Context) commit(ws world.WorldState, intents []intent.Intent, dt float64) (world.WorldState, []rally.Event) {
	out := ws.Clone()
	for i := range out.Players {
		out.Players[i].RequestedGoal = ""
	}

	index := make(map[string]int, len(out.Players))
	for i, p := range out.Players {
		index[p.ID] = i
	}

	moves := make(map[string]geometry.Vec2)
	var contacts []intent.Intent
	for _, in := range intents {
		i, ok := index[in.ActorID]
		if !ok {
			c.Log.WithField("actor", in.ActorID).Warn("intent for unknown player ignored")
			continue
		}
		p := &out.Players[i]
		switch in.Action.Kind {
		case intent.RequestGoal:
			p.RequestedGoal = in.Action.Goal
		case intent.Stay:
			p.RequestedGoal = world.StayInPlace
		case intent.MoveTo:
			target, err := geometry.Validate2(in.Action.Target)
			if err != nil {
				c.Log.WithFields(map[string]interface{}{"actor": in.ActorID, "error": err}).Warn("move-to ignored")
				continue
			}
			moves[p.ID] = out.Court.ClampToSide(target, p.Team, c.Config.Movement.MinNetBuffer)
		case intent.BallContact:
			contacts = append(contacts, in)
		default:
			c.Log.WithFields(map[string]interface{}{"actor": in.ActorID, "kind": in.Action.Kind}).Warn("unknown intent kind ignored")
		}
	}

	out.Players = c.Solver.Step(out.Players, c.Sense(out), out.Court, out.Rotations, dt)
	for i, p := range out.Players {
		if pos, ok := moves[p.ID]; ok {
			out.Players[i].Position = pos
			out.Players[i].Velocity = geometry.Vec2{}
		}
	}

	var events []rally.Event
	out, events = c.resolveContacts(ws, out, contacts, events)

	newTime := ws.Time + dt
	out, events = c.stepBall(out, ws.Time, newTime, events)
	out, events = c.lifecycle(out, newTime, events)

	out.Tick = ws.Tick + 1
	out.Time = newTime
	return out, events
}
