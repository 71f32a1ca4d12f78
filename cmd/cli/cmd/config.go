package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/picogrid/volley-simulations/pkg/config"
	"github.com/picogrid/volley-simulations/pkg/logger"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show, create or check the engine configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective engine configuration",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := loadEngineConfig(nil)
		if err != nil {
			return err
		}
		fmt.Println(cfg.String())
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default engine configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists, pass --force to overwrite", path)
		}
		if err := config.SaveConfig(config.GetDefaultConfig(), path); err != nil {
			return err
		}
		logger.Successf("Wrote default configuration to %s", path)
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check an engine configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := config.LoadConfig(path); err != nil {
			return err
		}
		logger.Successf("%s is valid", path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().Bool("force", false, "overwrite an existing file")
	configCmd.AddCommand(configShowCmd, configInitCmd, configValidateCmd)
}

// configPath is --config or the per-user default.
func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.DefaultPath()
}
