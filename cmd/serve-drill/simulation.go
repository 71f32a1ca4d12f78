// Package servedrill repeats serves at one receiving rotation and explains
// how the receiving team lines up before each one.
package servedrill

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/picogrid/volley-simulations/pkg/config"
	"github.com/picogrid/volley-simulations/pkg/engine"
	"github.com/picogrid/volley-simulations/pkg/logger"
	"github.com/picogrid/volley-simulations/pkg/physics"
	"github.com/picogrid/volley-simulations/pkg/rally"
	"github.com/picogrid/volley-simulations/pkg/reporting"
	"github.com/picogrid/volley-simulations/pkg/simulation"
	"github.com/picogrid/volley-simulations/pkg/whiteboard"
	"github.com/picogrid/volley-simulations/pkg/world"
)

// Name is the registered scenario name.
const Name = "Serve Receive Drill"

// Outcome is how one drilled serve ended for the receiving team.
type Outcome struct {
	Rep     int              `json:"rep"`
	Seed    int64            `json:"seed"`
	Result  string           `json:"result"` // "pass", a rally end reason or "timeout"
	Player  string           `json:"player,omitempty"`
	Quality string           `json:"quality,omitempty"`
	Ticks   int              `json:"ticks"`
	Lineup  string           `json:"lineup"`
	Traces  int              `json:"traces"`
	Final   world.WorldState `json:"-"`
}

// InSystem reports whether the serve was passed in system.
func (o Outcome) InSystem() bool {
	return o.Result == "pass" && physics.Quality(o.Quality).InSystem()
}

// ServeDrill runs the drill
type ServeDrill struct {
	config *Config
	engine *config.EngineConfig
	out    io.Writer

	mu       sync.Mutex
	outcomes []Outcome
	stopOnce sync.Once
	stopChan chan struct{}
}

// NewServeDrill creates a new instance of the drill
func NewServeDrill() simulation.Simulation {
	return &ServeDrill{
		out:      os.Stdout,
		stopChan: make(chan struct{}),
	}
}

// Name returns the scenario name
func (s *ServeDrill) Name() string {
	return Name
}

// Description returns the scenario description
func (s *ServeDrill) Description() string {
	return "Repeated serves against one receiving rotation with decision traces of the lineup"
}

// Configure sets up the drill with provided parameters
func (s *ServeDrill) Configure(params map[string]interface{}) error {
	cfg, err := ValidateAndParse(params)
	if err != nil {
		return err
	}

	eng, err := config.LoadConfigWithOverrides(cfg.ConfigFile, map[string]interface{}{
		"seed":         cfg.Seed,
		"serving_side": string(cfg.ReceivingSide.Opponent()),
	})
	if err != nil {
		return fmt.Errorf("failed to load engine config: %w", err)
	}

	s.config = cfg
	s.engine = eng
	logger.Infof("Configured %s: %d serves at %s rotation %d", Name, cfg.Repetitions, cfg.ReceivingSide, cfg.Rotation)
	return nil
}

// Run serves Repetitions balls, each from a fresh world
func (s *ServeDrill) Run(ctx context.Context, obs simulation.Observer) error {
	if s.config == nil {
		return fmt.Errorf("simulation not configured")
	}
	if obs == nil {
		obs = simulation.Nop
	}

	strategy, err := whiteboard.StrategyByName(s.config.Strategy)
	if err != nil {
		return err
	}

	log := s.engine.Logger(s.out)
	eng := engine.New(s.engine.Engine(), log, engine.WithErrorHandler(
		reporting.SentryHandler(fmt.Sprintf("drill-%d", s.config.Seed)),
	))
	home, away := s.config.rotations()
	dt := s.engine.Dt()
	maxTicks := int(s.config.MaxServeTime.Seconds() / dt)

	s.mu.Lock()
	s.outcomes = nil
	s.mu.Unlock()

	for rep := 1; rep <= s.config.Repetitions; rep++ {
		select {
		case <-ctx.Done():
			log.Warn("drill interrupted")
			return s.summarize()
		case <-s.stopChan:
			return s.summarize()
		default:
		}

		seed := s.config.Seed + int64(rep-1)
		opts := append(s.engine.WorldOptions(),
			world.WithSeed(seed),
			world.WithRotations(home, away),
			world.WithServingSide(s.config.ReceivingSide.Opponent()),
		)
		ws, err := world.New(opts...)
		if err != nil {
			return fmt.Errorf("failed to create world: %w", err)
		}
		if ws, err = whiteboard.Apply(ws, strategy, s.config.ReceivingSide, false); err != nil {
			return fmt.Errorf("failed to line up: %w", err)
		}

		lineup := whiteboard.Format(whiteboard.FromWorld(ws, s.config.ReceivingSide))
		logger.LogSubSection(fmt.Sprintf("Serve %d/%d (seed %d)", rep, s.config.Repetitions, seed))
		_, _ = fmt.Fprintf(s.out, "lineup %s\n", lineup)

		traces := s.explain(eng.DryRun(ws, nil))

		outcome := s.serve(eng, ws, dt, maxTicks, obs)
		outcome.Rep = rep
		outcome.Seed = seed
		outcome.Lineup = lineup
		outcome.Traces = traces

		s.mu.Lock()
		s.outcomes = append(s.outcomes, outcome)
		s.mu.Unlock()
	}

	return s.summarize()
}

// explain prints the receiving team's decision traces and returns how many
// were shown.
func (s *ServeDrill) explain(p engine.Preview) int {
	shown := 0
	for _, tr := range p.Traces {
		if tr.Side != s.config.ReceivingSide {
			continue
		}
		if s.config.Focus != "" && tr.Role != s.config.Focus {
			continue
		}
		shown++
		if s.config.ShowTraces {
			_, _ = fmt.Fprint(s.out, tr.Explain())
		}
	}
	return shown
}

// serve steps ws until the receiving team touches the ball, the rally ends or
// maxTicks pass.
func (s *ServeDrill) serve(eng *engine.Context, ws world.WorldState, dt float64, maxTicks int, obs simulation.Observer) Outcome {
	for ticks := 1; ticks <= maxTicks; ticks++ {
		res := eng.Step(ws, nil, dt)
		ws = res.World
		obs.OnTick(dt, res)

		for _, e := range res.Events {
			switch {
			case e.Type == rally.TeamTouchedBall && e.Side == s.config.ReceivingSide:
				return Outcome{Result: "pass", Player: e.PlayerID, Quality: string(e.Quality), Ticks: ticks, Final: ws}
			case e.Type == rally.BallDeadEvent:
				return Outcome{Result: string(e.Reason), Ticks: ticks, Final: ws}
			}
		}
		if ws.Frozen {
			return Outcome{Result: string(rally.EngineFault), Ticks: ticks, Final: ws}
		}
	}
	return Outcome{Result: "timeout", Ticks: maxTicks, Final: ws}
}

func (s *ServeDrill) summarize() error {
	outcomes := s.Outcomes()

	logger.LogSection(fmt.Sprintf("%s: %s rotation %d", Name, s.config.ReceivingSide, s.config.Rotation))
	table := logger.NewTable("SERVE", "SEED", "RESULT", "PLAYER", "QUALITY", "TICKS")
	passes, inSystem := 0, 0
	for _, o := range outcomes {
		table.AddRow(fmt.Sprint(o.Rep), fmt.Sprint(o.Seed), o.Result, o.Player, o.Quality, fmt.Sprint(o.Ticks))
		if o.Result == "pass" {
			passes++
		}
		if o.InSystem() {
			inSystem++
		}
	}
	table.Print()

	logger.LogKeyValue("Serves", len(outcomes))
	logger.LogKeyValue("Passed", passes)
	if passes > 0 {
		logger.LogKeyValue("In system", fmt.Sprintf("%d (%.0f%%)", inSystem, 100*float64(inSystem)/float64(passes)))
	}
	return nil
}

// Outcomes returns the outcomes of the last run.
func (s *ServeDrill) Outcomes() []Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Outcome, len(s.outcomes))
	copy(out, s.outcomes)
	return out
}

// Stop ends the drill before the next serve
func (s *ServeDrill) Stop() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	return nil
}

// init registers the drill
func init() {
	if err := simulation.DefaultRegistry.Register(Name, NewServeDrill); err != nil {
		logger.Errorf("Failed to register simulation: %v", err)
	}
}
