package engine

import (
	"fmt"

	"github.com/picogrid/volley-simulations/pkg/geometry"
	"github.com/picogrid/volley-simulations/pkg/intent"
	"github.com/picogrid/volley-simulations/pkg/rally"
	"github.com/picogrid/volley-simulations/pkg/world"
)

// Preview is what the players would do this tick, without doing it.
type Preview struct {
	Boards  map[geometry.Side]world.Blackboard `json:"boards"`
	Intents []intent.Intent                    `json:"intents"`
	Traces  []intent.DecisionTrace             `json:"traces"`
}

// DryRun runs Sense, Think and Propose on ws without committing anything.
// A fault is reported to OnError and yields an empty preview.
func (c *Context) DryRun(ws world.WorldState, human []intent.Intent) (p Preview) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: dry run at tick %d: %v", ErrEngineFault, ws.Tick, r)
			c.Log.Error(err.Error())
			if c.OnError != nil {
				c.OnError(err, ws)
			}
			p = Preview{}
		}
	}()

	boards := c.Sense(ws)
	ai, traces := c.Think(ws, boards)
	return Preview{
		Boards:  boards,
		Intents: c.Propose(ai, human),
		Traces:  traces,
	}
}

// StopFunc decides after each tick whether a run is finished.
type StopFunc func(ws world.WorldState, events []rally.Event) bool

// RallyOver stops as soon as the ball is dead.
func RallyOver(ws world.WorldState, _ []rally.Event) bool {
	return !ws.Rally.Live()
}

// ScoreReached stops once either side has points.
func ScoreReached(points int) StopFunc {
	return func(ws world.WorldState, _ []rally.Event) bool {
		return ws.Rally.HomeScore >= points || ws.Rally.AwayScore >= points
	}
}

// Run is the outcome of SimulateUntil.
type Run struct {
	World   world.WorldState `json:"world"`
	Ticks   int              `json:"ticks"`
	Events  []rally.Event    `json:"events,omitempty"`
	Stopped bool             `json:"stopped"`
}

// SimulateUntil steps ws with AI intents only until stop returns true, the
// world freezes, or maxTicks ticks have run. Stopped reports whether stop
// fired.
func (c *Context) SimulateUntil(ws world.WorldState, stop StopFunc, maxTicks int, dt float64) Run {
	run := Run{World: ws}
	for run.Ticks < maxTicks && !run.World.Frozen {
		res := c.Step(run.World, nil, dt)
		run.World = res.World
		run.Ticks++
		run.Events = append(run.Events, res.Events...)
		if stop != nil && stop(run.World, res.Events) {
			run.Stopped = true
			break
		}
	}
	return run
}
