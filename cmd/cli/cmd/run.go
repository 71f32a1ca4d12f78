package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/getsentry/sentry-go"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/picogrid/volley-simulations/pkg/engine"
	"github.com/picogrid/volley-simulations/pkg/logger"
	"github.com/picogrid/volley-simulations/pkg/reporting"
	"github.com/picogrid/volley-simulations/pkg/simulation"
	"github.com/picogrid/volley-simulations/pkg/stream"
	"github.com/picogrid/volley-simulations/pkg/utils"

	// Import simulations to register them
	_ "github.com/picogrid/volley-simulations/cmd/rally"
	_ "github.com/picogrid/volley-simulations/cmd/serve-drill"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation",
	Long:  `Run a simulation interactively or with specified parameters`,
	RunE:  runSimulation,
}

func init() {
	runCmd.Flags().StringP("simulation", "s", "", "simulation name to run")
	runCmd.Flags().StringP("params", "p", "", "parameters file (YAML)")
	runCmd.Flags().Bool("statsview", false, "serve runtime charts while the simulation runs")
	runCmd.Flags().String("statsview-addr", "", "statsview listen address (default from engine config)")
	runCmd.Flags().String("serve-addr", "", "stream frames to websocket viewers on this address")
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	if enabled, err := reporting.InitSentry(version); err != nil {
		logger.Warnf("Sentry disabled: %v", err)
	} else if enabled {
		defer sentry.Flush(2 * time.Second)
		defer sentry.Recover()
	}

	simName, err := selectSimulation(cmd)
	if err != nil {
		return fmt.Errorf("failed to select simulation: %w", err)
	}

	sim, err := simulation.DefaultRegistry.Get(simName)
	if err != nil {
		return fmt.Errorf("failed to get simulation: %w", err)
	}

	simInfos, err := utils.DiscoverSimulations()
	if err != nil {
		return fmt.Errorf("failed to discover simulations: %w", err)
	}
	info, err := utils.FindSimulation(simInfos, simName)
	if err != nil {
		return err
	}

	preset, err := loadParams(cmd)
	if err != nil {
		return err
	}

	params, err := utils.PromptForParameters(info.Config.Parameters, preset)
	if err != nil {
		return fmt.Errorf("failed to get parameters: %w", err)
	}
	if cfgFile != "" {
		params["config_file"] = cfgFile
	}

	if err := sim.Configure(params); err != nil {
		return fmt.Errorf("failed to configure simulation: %w", err)
	}

	stop, err := startStatsView(cmd)
	if err != nil {
		return err
	}
	defer stop()

	var obs simulation.Observer = simulation.Nop
	if addr, _ := cmd.Flags().GetString("serve-addr"); addr != "" {
		hub := stream.NewHub(logger.Default().WithPrefix("stream"))
		shutdown := listen(addr, hub)
		defer shutdown()
		obs = publishTo(hub)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
		case <-ctx.Done():
			return
		}
		logger.Warn("\nReceived interrupt signal, stopping simulation...")
		if err := sim.Stop(); err != nil {
			logger.Errorf("Failed to stop simulation: %v", err)
		}
		cancel()
	}()

	logger.LogSection(fmt.Sprintf("Starting %s", sim.Name()))
	if err := sim.Run(ctx, obs); err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	logger.Success("Simulation completed successfully")
	return nil
}

// loadParams reads the --params preset file, if any.
func loadParams(cmd *cobra.Command) (map[string]interface{}, error) {
	path, _ := cmd.Flags().GetString("params")
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parameters file: %w", err)
	}
	preset := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &preset); err != nil {
		return nil, fmt.Errorf("failed to parse parameters file: %w", err)
	}
	return preset, nil
}

func selectSimulation(cmd *cobra.Command) (string, error) {
	// Check if simulation is specified via flag
	simName, _ := cmd.Flags().GetString("simulation")
	if simName != "" {
		return simName, nil
	}

	simInfos, err := utils.DiscoverSimulations()
	if err != nil {
		return "", err
	}
	if len(simInfos) == 0 {
		return "", fmt.Errorf("no simulations found")
	}
	if !utils.Interactive() {
		return "", fmt.Errorf("no terminal to choose from %d simulations, pass --simulation", len(simInfos))
	}

	options := make([]string, len(simInfos))
	descriptions := make(map[string]string)
	for i, info := range simInfos {
		options[i] = info.Config.Name
		descriptions[info.Config.Name] = info.Config.Description
	}

	var selected string
	prompt := &survey.Select{
		Message: "Select simulation:",
		Options: options,
		Description: func(value string, index int) string {
			return descriptions[value]
		},
	}
	if err := survey.AskOne(prompt, &selected); err != nil {
		return "", err
	}

	return selected, nil
}

// startStatsView serves runtime charts when --statsview or the engine
// config asks for them. The returned func stops the viewer.
func startStatsView(cmd *cobra.Command) (func(), error) {
	enabled, _ := cmd.Flags().GetBool("statsview")
	addr, _ := cmd.Flags().GetString("statsview-addr")

	cfg, err := loadEngineConfig(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load engine config: %w", err)
	}
	if !enabled && !cfg.Performance.StatsView {
		return func() {}, nil
	}
	if addr == "" {
		addr = cfg.Performance.StatsViewAddr
	}

	viewer.SetConfiguration(viewer.WithTheme(viewer.ThemeWesteros), viewer.WithAddr(addr))
	mgr := statsview.New()
	go func() {
		if err := mgr.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warnf("statsview stopped: %v", err)
		}
	}()
	logger.Networkf("Runtime charts at http://%s/debug/statsview", addr)
	return mgr.Stop, nil
}

// listen serves hub on addr until the returned func is called.
func listen(addr string, hub *stream.Hub) func() {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("Stream server failed: %v", err)
		}
	}()
	logger.Networkf("Streaming frames on ws://%s/ws", addr)

	return func() {
		hub.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// publishTo forwards every tick to hub's viewers.
func publishTo(hub *stream.Hub) simulation.Observer {
	return simulation.ObserverFunc(func(_ float64, res engine.Result) {
		err := hub.Publish(stream.Frame{
			Tick:   res.World.Tick,
			Time:   res.World.Time,
			World:  res.World,
			Traces: res.Traces,
			Events: res.Events,
		})
		if err != nil {
			logger.Debugf("frame %d not published: %v", res.World.Tick, err)
		}
	})
}
