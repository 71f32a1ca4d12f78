// Package rally plays full matches between the two AI teams.
package rally

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/picogrid/volley-simulations/pkg/config"
	"github.com/picogrid/volley-simulations/pkg/engine"
	"github.com/picogrid/volley-simulations/pkg/geometry"
	"github.com/picogrid/volley-simulations/pkg/logger"
	"github.com/picogrid/volley-simulations/pkg/replay"
	"github.com/picogrid/volley-simulations/pkg/reporting"
	"github.com/picogrid/volley-simulations/pkg/simulation"
	"github.com/picogrid/volley-simulations/pkg/whiteboard"
	"github.com/picogrid/volley-simulations/pkg/world"
)

// Name is the registered scenario name.
const Name = "Full Rally"

// FullRally plays rallies until one side reaches the target score
type FullRally struct {
	config *Config
	engine *config.EngineConfig
	out    io.Writer

	mu       sync.Mutex
	final    world.WorldState
	report   *reporting.MatchReport
	stopOnce sync.Once
	stopChan chan struct{}
}

// NewFullRally creates a new instance of the full rally scenario
func NewFullRally() simulation.Simulation {
	return &FullRally{
		out:      os.Stdout,
		stopChan: make(chan struct{}),
	}
}

// Name returns the scenario name
func (s *FullRally) Name() string {
	return Name
}

// Description returns the scenario description
func (s *FullRally) Description() string {
	return "AI versus AI match to a target score with rally log, report and replay"
}

// Configure sets up the scenario with provided parameters
func (s *FullRally) Configure(params map[string]interface{}) error {
	cfg, err := ValidateAndParse(params)
	if err != nil {
		return err
	}

	eng, err := config.LoadConfigWithOverrides(cfg.ConfigFile, cfg.overrides())
	if err != nil {
		return fmt.Errorf("failed to load engine config: %w", err)
	}

	s.config = cfg
	s.engine = eng
	logger.Infof("Configured %s: first to %d, seed %d, %s serves", Name, cfg.PointsToWin, cfg.Seed, cfg.ServingSide)
	return nil
}

// Run plays the match
func (s *FullRally) Run(ctx context.Context, obs simulation.Observer) error {
	if s.config == nil {
		return fmt.Errorf("simulation not configured")
	}
	if obs == nil {
		obs = simulation.Nop
	}

	log := s.engine.Logger(s.out)
	rl := reporting.NewRallyLogger("", reporting.WithWriter(s.out), reporting.WithVerbose(s.config.Verbose))
	eng := engine.New(s.engine.Engine(), log, engine.WithErrorHandler(
		reporting.Chain(rl.ErrorHandler(), reporting.SentryHandler(rl.MatchID())),
	))

	ws, err := world.New(s.engine.WorldOptions()...)
	if err != nil {
		return fmt.Errorf("failed to create world: %w", err)
	}
	if ws, err = s.lineUp(ws); err != nil {
		return err
	}

	var rec *replay.Recorder
	if s.config.ReplayPath != "" {
		rec = replay.NewRecorder(ws, eng.Config)
	}

	dt := s.engine.Dt()
	var pace <-chan time.Time
	if s.config.Speed > 0 {
		ticker := time.NewTicker(time.Duration(dt / s.config.Speed * float64(time.Second)))
		defer ticker.Stop()
		pace = ticker.C
	}

	stop := engine.ScoreReached(s.config.PointsToWin)
	maxRallyTicks := int(s.config.MaxRallyDuration.Seconds() / dt)
	rallyNumber, rallyTicks := ws.Rally.RallyNumber, 0

loop:
	for {
		select {
		case <-ctx.Done():
			log.Warn("match interrupted")
			break loop
		case <-s.stopChan:
			log.Warn("match stopped")
			break loop
		default:
		}

		var res engine.Result
		if rec != nil {
			if res, err = rec.Step(eng, ws, nil, dt); err != nil {
				return fmt.Errorf("failed to record tick %d: %w", ws.Tick, err)
			}
		} else {
			res = eng.Step(ws, nil, dt)
		}
		ws = res.World
		rl.Observe(ws, res.Events)
		obs.OnTick(dt, res)

		if ws.Frozen {
			log.Error("world frozen by an engine fault, ending match")
			break
		}
		if stop(ws, res.Events) {
			break
		}

		if ws.Rally.RallyNumber != rallyNumber {
			rallyNumber, rallyTicks = ws.Rally.RallyNumber, 0
		}
		rallyTicks++
		if rallyTicks > maxRallyTicks {
			return fmt.Errorf("rally %d did not finish within %s", rallyNumber, s.config.MaxRallyDuration)
		}

		if pace != nil {
			select {
			case <-pace:
			case <-ctx.Done():
			case <-s.stopChan:
			}
		}
	}

	return s.finish(ws, rl, rec)
}

// lineUp places both teams with the configured whiteboard strategy.
func (s *FullRally) lineUp(ws world.WorldState) (world.WorldState, error) {
	strategy, err := whiteboard.StrategyByName(s.config.Strategy)
	if err != nil {
		return ws, err
	}
	for _, side := range []geometry.Side{geometry.Home, geometry.Away} {
		if ws, err = whiteboard.Apply(ws, strategy, side, false); err != nil {
			return ws, fmt.Errorf("failed to line up %s: %w", side, err)
		}
	}
	logger.Debugf("Home lineup (%s): %s", strategy.Name(), whiteboard.Format(whiteboard.FromWorld(ws, geometry.Home)))
	return ws, nil
}

func (s *FullRally) finish(ws world.WorldState, rl *reporting.RallyLogger, rec *replay.Recorder) error {
	report := reporting.BuildReport(rl.MatchID(), ws.Seed, rl.RallyEvents())
	report.Metadata.Scenario = Name
	rl.PrintSummary(report)

	s.mu.Lock()
	s.final = ws
	s.report = report
	s.mu.Unlock()

	if s.engine.Logging.EnableReport {
		if _, err := reporting.SaveReport(report, reporting.ReportConfig{
			OutputDir: s.engine.Logging.ReportPath,
			Format:    s.engine.Logging.ReportFormat,
		}); err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
	}

	if rec != nil {
		if err := replay.SaveFile(s.config.ReplayPath, rec.Recording()); err != nil {
			return fmt.Errorf("failed to save replay: %w", err)
		}
		logger.Successf("Replay saved to: %s (%d frames)", s.config.ReplayPath, rec.Len())
	}
	return nil
}

// Result returns the final world and the match report of the last run.
func (s *FullRally) Result() (world.WorldState, *reporting.MatchReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.final, s.report
}

// Stop ends a running match after the current tick
func (s *FullRally) Stop() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	return nil
}

// init registers the scenario
func init() {
	if err := simulation.DefaultRegistry.Register(Name, NewFullRally); err != nil {
		logger.Errorf("Failed to register simulation: %v", err)
	}
}
