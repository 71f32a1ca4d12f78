package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/picogrid/volley-simulations/pkg/geometry"
	"github.com/picogrid/volley-simulations/pkg/logger"
	"github.com/picogrid/volley-simulations/pkg/rally"
	"github.com/picogrid/volley-simulations/pkg/script"
)

var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Generate scripted rallies",
	Long: `Generate a rally as a sequence of events without running the physics.
With --count above one, generate that many rallies and tally how they ended.`,
	RunE: runScript,
}

func init() {
	scriptCmd.Flags().Int64("seed", 1, "generator seed")
	scriptCmd.Flags().Int("count", 1, "number of rallies to generate")
	scriptCmd.Flags().String("serving-side", "", "serving side (home, away; default from engine config)")
	scriptCmd.Flags().StringP("output", "o", "", "write the script YAML to this file")
}

func runScript(cmd *cobra.Command, _ []string) error {
	seed, _ := cmd.Flags().GetInt64("seed")
	count, _ := cmd.Flags().GetInt("count")
	output, _ := cmd.Flags().GetString("output")

	overrides := map[string]interface{}{}
	if side, _ := cmd.Flags().GetString("serving-side"); side != "" {
		overrides["serving_side"] = side
	}
	cfg, err := loadEngineConfig(overrides)
	if err != nil {
		return fmt.Errorf("failed to load engine config: %w", err)
	}
	gen := cfg.Script
	gen.ServingSide = cfg.Side()

	if count < 1 {
		return fmt.Errorf("count must be at least 1")
	}
	if count == 1 {
		return printScript(gen, seed, output)
	}
	return tallyScripts(gen, seed, count)
}

func printScript(gen script.Config, seed int64, output string) error {
	s, err := script.Generate(gen, seed)
	if err != nil {
		return fmt.Errorf("failed to generate script: %w", err)
	}
	data, err := s.YAML()
	if err != nil {
		return fmt.Errorf("failed to encode script: %w", err)
	}

	reason, winner := s.Outcome()
	if output != "" {
		if err := os.WriteFile(output, data, 0644); err != nil {
			return fmt.Errorf("failed to write script: %w", err)
		}
		logger.Successf("Script written to %s (%s, %s wins)", output, reason, winner)
		return nil
	}

	fmt.Print(string(data))
	logger.Infof("%d events, %d extension rounds: %s, %s wins", len(s.Events), s.Rounds, reason, winner)
	return nil
}

func tallyScripts(gen script.Config, seed int64, count int) error {
	reasons := map[rally.Reason]int{}
	wins := map[geometry.Side]int{}
	rounds := 0

	bar := logger.NewProgressBar(count, "Generating")
	for i := 0; i < count; i++ {
		s, err := script.Generate(gen, seed+int64(i))
		if err != nil {
			return fmt.Errorf("failed to generate script %d: %w", i+1, err)
		}
		reason, winner := s.Outcome()
		reasons[reason]++
		wins[winner]++
		rounds += s.Rounds
		bar.Increment()
	}
	bar.Finish()

	logger.LogSection(fmt.Sprintf("%d scripted rallies from seed %d", count, seed))
	table := logger.NewTable("REASON", "RALLIES", "SHARE")
	keys := make([]string, 0, len(reasons))
	for r := range reasons {
		keys = append(keys, string(r))
	}
	sort.Strings(keys)
	for _, k := range keys {
		n := reasons[rally.Reason(k)]
		table.AddRow(k, fmt.Sprint(n), fmt.Sprintf("%.1f%%", 100*float64(n)/float64(count)))
	}
	table.Print()

	logger.LogKeyValue("Won by "+strings.ToLower(string(geometry.Home)), wins[geometry.Home])
	logger.LogKeyValue("Won by "+strings.ToLower(string(geometry.Away)), wins[geometry.Away])
	logger.LogKeyValue("Mean extension rounds", fmt.Sprintf("%.2f", float64(rounds)/float64(count)))
	return nil
}
