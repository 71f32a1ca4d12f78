package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/picogrid/volley-simulations/pkg/simulation"
	"github.com/picogrid/volley-simulations/pkg/utils"
)

var listCmd = &cobra.Command{
	Use:   "list [simulation]",
	Short: "List available simulations",
	Long: `List the discovered scenarios with their version, category and
description. With --params each scenario's simulation.yaml parameters are
listed too, with their type, default and accepted range.`,
	Args: cobra.MaximumNArgs(1),
	RunE: listSimulations,
}

func init() {
	listCmd.Flags().BoolP("params", "p", false, "show each simulation's parameters")
}

func listSimulations(cmd *cobra.Command, args []string) error {
	simInfos, err := utils.DiscoverSimulations()
	if err != nil {
		return fmt.Errorf("failed to discover simulations: %w", err)
	}
	if len(args) == 1 {
		info, err := utils.FindSimulation(simInfos, args[0])
		if err != nil {
			return err
		}
		simInfos = []utils.SimulationInfo{*info}
	}

	withParams, _ := cmd.Flags().GetBool("params")
	return writeSimulations(cmd.OutOrStdout(), simInfos, withParams || len(args) == 1)
}

// writeSimulations renders the scenario table, followed by one parameter
// table per scenario when withParams is set.
func writeSimulations(out io.Writer, infos []utils.SimulationInfo, withParams bool) error {
	if len(infos) == 0 {
		_, err := fmt.Fprintln(out, "No simulations found")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tVERSION\tCATEGORY\tPARAMS\tDESCRIPTION")
	_, _ = fmt.Fprintln(w, "----\t-------\t--------\t------\t-----------")
	for _, info := range infos {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			info.Config.Name,
			info.Config.Version,
			info.Config.Category,
			len(info.Config.Parameters),
			info.Config.Description,
		)
	}
	if err := w.Flush(); err != nil || !withParams {
		return err
	}

	for _, info := range infos {
		if len(info.Config.Parameters) == 0 {
			continue
		}
		_, _ = fmt.Fprintf(out, "\n%s\n", info.Config.Name)
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "  PARAMETER\tTYPE\tDEFAULT\tRANGE\tDESCRIPTION")
		for _, p := range info.Config.Parameters {
			name := p.Name
			if p.Required {
				name += "*"
			}
			_, _ = fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n", name, p.Type, defaultOf(p), rangeOf(p), p.Description)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func defaultOf(p simulation.Parameter) string {
	if p.Default == nil {
		return "-"
	}
	if s, ok := p.Default.(string); ok && s == "" {
		return `""`
	}
	return fmt.Sprint(p.Default)
}

// rangeOf renders options as a|b and numeric bounds as [min, max].
func rangeOf(p simulation.Parameter) string {
	if len(p.Options) > 0 {
		return strings.Join(p.Options, "|")
	}
	if p.Min == nil && p.Max == nil {
		return "-"
	}
	bound := func(v interface{}) string {
		if v == nil {
			return ""
		}
		return fmt.Sprint(v)
	}
	return fmt.Sprintf("[%s, %s]", bound(p.Min), bound(p.Max))
}
