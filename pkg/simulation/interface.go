package simulation

import (
	"context"

	"github.com/picogrid/volley-simulations/pkg/engine"
)

// Simulation defines the interface that all scenarios must implement
type Simulation interface {
	// Name returns the name of the scenario
	Name() string

	// Description returns a brief description of what the scenario does
	Description() string

	// Configure sets up the scenario with the provided parameters
	Configure(params map[string]interface{}) error

	// Run executes the scenario, reporting every committed tick to obs
	Run(ctx context.Context, obs Observer) error

	// Stop gracefully shuts down the scenario
	Stop() error
}

// Observer is told about every tick a scenario commits. dt is the tick
// length the engine was asked for.
type Observer interface {
	OnTick(dt float64, res engine.Result)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(dt float64, res engine.Result)

// OnTick calls f.
func (f ObserverFunc) OnTick(dt float64, res engine.Result) { f(dt, res) }

// Observers fans a tick out to each observer in order. Nil entries are
// skipped.
type Observers []Observer

// OnTick notifies every observer.
func (o Observers) OnTick(dt float64, res engine.Result) {
	for _, obs := range o {
		if obs != nil {
			obs.OnTick(dt, res)
		}
	}
}

// Nop is an observer that ignores every tick.
var Nop Observer = ObserverFunc(func(float64, engine.Result) {})
