package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/picogrid/volley-simulations/pkg/engine"
	"github.com/picogrid/volley-simulations/pkg/logger"
	"github.com/picogrid/volley-simulations/pkg/replay"
)

var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Re-run a recorded match and check it is bit-identical",
	Long: `Load a replay written with the replay_path parameter, re-run it from its
initial world with the recorded engine settings and compare every tick's
fingerprint.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func runReplay(_ *cobra.Command, args []string) error {
	rec, err := replay.LoadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to load replay: %w", err)
	}

	cfg, err := loadEngineConfig(nil)
	if err != nil {
		return fmt.Errorf("failed to load engine config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Progressf("Verifying %d frames of %s", len(rec.Frames), rec.Header.ID)
	eng := engine.New(rec.Header.Engine, cfg.Logger(os.Stderr))
	report, err := replay.Verify(ctx, eng, rec)
	if errors.Is(err, replay.ErrDiverged) {
		logger.Errorf("Diverged after %d matching frames", report.Frames)
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to verify replay: %w", err)
	}

	final := report.Final
	logger.Successf("Replay matches: %d frames", report.Frames)
	logger.LogKeyValue("Recorded", rec.Header.CreatedAt.Format("2006-01-02 15:04:05"))
	logger.LogKeyValue("Final tick", final.Tick)
	logger.LogKeyValue("Rally", final.Rally.RallyNumber)
	logger.LogKeyValue("Score", fmt.Sprintf("%d-%d", final.Rally.HomeScore, final.Rally.AwayScore))
	return nil
}
