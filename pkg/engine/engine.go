// Package engine runs the Sense, Think, Propose and Commit pipeline that
// turns one world snapshot into the next.
package engine

import (
	"errors"
	"fmt"
	"math"
	"runtime/debug"

	"github.com/picogrid/volley-simulations/pkg/behavior"
	"github.com/picogrid/volley-simulations/pkg/intent"
	"github.com/picogrid/volley-simulations/pkg/logger"
	"github.com/picogrid/volley-simulations/pkg/movement"
	"github.com/picogrid/volley-simulations/pkg/physics"
	"github.com/picogrid/volley-simulations/pkg/rally"
	"github.com/picogrid/volley-simulations/pkg/world"
)

// ErrEngineFault wraps a panic recovered at the tick boundary.
var ErrEngineFault = errors.New("engine fault")

// Config tunes the pipeline.
type Config struct {
	DefaultDt     float64         `json:"defaultDt" yaml:"default_dt"`
	MaxDt         float64         `json:"maxDt" yaml:"max_dt"`
	DeadBallPause float64         `json:"deadBallPause" yaml:"dead_ball_pause"`
	ThinkWorkers  int             `json:"thinkWorkers" yaml:"think_workers"`
	Movement      movement.Params `json:"movement" yaml:"movement"`
	Physics       physics.Table   `json:"physics" yaml:"physics"`
	Contact       behavior.Params `json:"contact" yaml:"contact"`
}

// DefaultConfig returns the stock pipeline tuning: 60 ticks per second.
func DefaultConfig() Config {
	return Config{
		DefaultDt:     1.0 / 60.0,
		MaxDt:         1,
		DeadBallPause: 2,
		ThinkWorkers:  1,
		Movement:      movement.DefaultParams(),
		Physics:       physics.DefaultTable(),
		Contact:       behavior.DefaultParams(),
	}
}

// ErrorHandler receives faults recovered at the tick boundary together with
// the world the faulting tick started from.
type ErrorHandler func(err error, ws world.WorldState)

// Context is the simulation context. It holds no per-tick state, so one
// Context can step any number of worlds.
type Context struct {
	Config  Config
	Library *behavior.Library
	Solver  movement.Solver
	Log     logger.Logger
	OnError ErrorHandler
}

// Option customizes a Context.
type Option func(*Context)

// WithErrorHandler sets the fault callback.
func WithErrorHandler(h ErrorHandler) Option {
	return func(c *Context) { c.OnError = h }
}

// WithLibrary replaces the behavior trees.
func WithLibrary(l *behavior.Library) Option {
	return func(c *Context) { c.Library = l }
}

// New builds a Context from cfg. A nil log uses the default logger.
func New(cfg Config, log logger.Logger, opts ...Option) *Context {
	if log == nil {
		log = logger.New()
	}
	if cfg.Physics == nil {
		cfg.Physics = physics.DefaultTable()
	}
	c := &Context{
		Config:  cfg,
		Library: behavior.NewLibrary(cfg.Contact),
		Solver:  movement.New(cfg.Movement, log.WithPrefix("movement")),
		Log:     log.WithPrefix("engine"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result is everything one tick produced.
type Result struct {
	World   world.WorldState       `json:"world"`
	Intents []intent.Intent        `json:"intents"`
	Traces  []intent.DecisionTrace `json:"traces"`
	Events  []rally.Event          `json:"events,omitempty"`
}

// Step advances ws by dt, applying human intents over the AI's. A frozen
// world is returned unchanged. A panic inside the tick ends the rally with
// engine_fault, freezes the world and is reported to OnError.
func (c *Context) Step(ws world.WorldState, human []intent.Intent, dt float64) (res Result) {
	if ws.Frozen {
		return Result{World: ws.Clone()}
	}

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: tick %d: %v", ErrEngineFault, ws.Tick, r)
			c.Log.WithFields(map[string]interface{}{
				"tick":  ws.Tick,
				"stack": string(debug.Stack()),
			}).Error(err.Error())
			if c.OnError != nil {
				c.OnError(err, ws)
			}
			res = Result{World: Fault(ws)}
			res.Events = []rally.Event{{Type: rally.BallDeadEvent, Reason: rally.EngineFault, Time: ws.Time}}
		}
	}()

	dt = c.ValidDt(dt)
	boards := c.Sense(ws)
	ai, traces := c.Think(ws, boards)
	intents := c.Propose(ai, human)
	next, events := c.commit(ws, intents, dt)
	return Result{World: next, Intents: intents, Traces: traces, Events: events}
}

// Fault force-ends ws's rally with engine_fault and freezes it. No point is
// awarded.
func Fault(ws world.WorldState) world.WorldState {
	out := ws.Clone()
	out.Rally.Phase = rally.BallDead
	out.Rally.PhaseSince = out.Time
	out.Rally.Reason = rally.EngineFault
	out.Rally.Winner = ""
	out.Ball.InFlight = false
	out.Ball.Phase = physics.Grounded
	out.Frozen = true
	return out
}

// ValidDt sanitizes dt: non-finite values become the default tick, negative
// values zero, and large values are clamped to MaxDt.
func (c *Context) ValidDt(dt float64) float64 {
	switch {
	case math.IsNaN(dt) || math.IsInf(dt, 0):
		c.Log.WithField("dt", dt).Warn("non-finite dt, using default tick")
		return c.Config.DefaultDt
	case dt < 0:
		c.Log.WithField("dt", dt).Warn("negative dt, not advancing")
		return 0
	case c.Config.MaxDt > 0 && dt > c.Config.MaxDt:
		return c.Config.MaxDt
	}
	return dt
}
