package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/picogrid/volley-simulations/pkg/engine"
	"github.com/picogrid/volley-simulations/pkg/geometry"
	"github.com/picogrid/volley-simulations/pkg/logger"
	"github.com/picogrid/volley-simulations/pkg/whiteboard"
	"github.com/picogrid/volley-simulations/pkg/world"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Explain the next AI decisions without advancing the world",
	Long: `Build a world at the serve, line both teams up with a whiteboard strategy
and print every player's decision trace from a dry run.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().Int64("seed", 1, "world seed")
	previewCmd.Flags().String("serving-side", "home", "serving side (home, away)")
	previewCmd.Flags().Int("home-rotation", 1, "home rotation (1-6)")
	previewCmd.Flags().Int("away-rotation", 1, "away rotation (1-6)")
	previewCmd.Flags().String("strategy", whiteboard.Tactical{}.Name(), "whiteboard strategy for both teams")
	previewCmd.Flags().String("side", "", "only explain this side (home, away)")
	previewCmd.Flags().String("role", "", "only explain this role")
	previewCmd.Flags().Bool("json", false, "print the preview as JSON")
}

func runPreview(cmd *cobra.Command, _ []string) error {
	seed, _ := cmd.Flags().GetInt64("seed")
	serving, _ := cmd.Flags().GetString("serving-side")
	home, _ := cmd.Flags().GetInt("home-rotation")
	away, _ := cmd.Flags().GetInt("away-rotation")

	cfg, err := loadEngineConfig(map[string]interface{}{
		"seed":          seed,
		"serving_side":  serving,
		"home_rotation": home,
		"away_rotation": away,
	})
	if err != nil {
		return fmt.Errorf("failed to load engine config: %w", err)
	}

	ws, err := world.New(cfg.WorldOptions()...)
	if err != nil {
		return fmt.Errorf("failed to create world: %w", err)
	}

	name, _ := cmd.Flags().GetString("strategy")
	strategy, err := whiteboard.StrategyByName(name)
	if err != nil {
		return err
	}
	for _, side := range []geometry.Side{geometry.Home, geometry.Away} {
		if ws, err = whiteboard.Apply(ws, strategy, side, false); err != nil {
			return fmt.Errorf("failed to line up %s: %w", side, err)
		}
	}

	eng := engine.New(cfg.Engine(), cfg.Logger(os.Stderr))
	preview := eng.DryRun(ws, nil)

	sideFlag, _ := cmd.Flags().GetString("side")
	roleFlag, _ := cmd.Flags().GetString("role")
	side := geometry.Side(strings.ToUpper(sideFlag))
	role := world.Role(strings.ToUpper(roleFlag))

	traces := preview.Traces[:0:0]
	for _, tr := range preview.Traces {
		if side != "" && tr.Side != side {
			continue
		}
		if role != "" && tr.Role != role {
			continue
		}
		traces = append(traces, tr)
	}
	if len(traces) == 0 {
		return fmt.Errorf("no players match side %q and role %q", sideFlag, roleFlag)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		preview.Traces = traces
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(preview)
	}

	logger.LogSection(fmt.Sprintf("Preview at tick %d (seed %d)", ws.Tick, ws.Seed))
	for _, s := range []geometry.Side{geometry.Home, geometry.Away} {
		logger.LogKeyValue(string(s), whiteboard.Format(whiteboard.FromWorld(ws, s)))
	}
	for _, tr := range traces {
		fmt.Print(tr.Explain())
	}
	return nil
}
