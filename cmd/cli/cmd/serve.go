package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	fullrally "github.com/picogrid/volley-simulations/cmd/rally"
	"github.com/picogrid/volley-simulations/pkg/logger"
	"github.com/picogrid/volley-simulations/pkg/simulation"
	"github.com/picogrid/volley-simulations/pkg/stream"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Play a match in real time for websocket viewers",
	Long: `Play a Full Rally match paced to the wall clock and publish every tick as
a JSON frame on ws://<addr>/ws. Late viewers receive the latest frame first.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "localhost:8086", "listen address")
	serveCmd.Flags().Int64("seed", 1, "match seed")
	serveCmd.Flags().Int("points", 5, "points to win")
	serveCmd.Flags().Float64("speed", 1, "playback speed (0 = as fast as possible)")
	serveCmd.Flags().String("strategy", "tactical", "whiteboard strategy for both teams")
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	seed, _ := cmd.Flags().GetInt64("seed")
	points, _ := cmd.Flags().GetInt("points")
	speed, _ := cmd.Flags().GetFloat64("speed")
	strategy, _ := cmd.Flags().GetString("strategy")

	sim, err := simulation.DefaultRegistry.Get(fullrally.Name)
	if err != nil {
		return err
	}
	params := map[string]interface{}{
		"seed":          seed,
		"points_to_win": points,
		"speed":         speed,
		"strategy":      strategy,
	}
	if cfgFile != "" {
		params["config_file"] = cfgFile
	}
	if err := sim.Configure(params); err != nil {
		return fmt.Errorf("failed to configure simulation: %w", err)
	}

	hub := stream.NewHub(logger.Default().WithPrefix("stream"))
	shutdown := listen(addr, hub)
	defer shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sim.Run(ctx, publishTo(hub)); err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	logger.Successf("Match over, %d viewers connected", hub.Viewers())
	return nil
}
