package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/picogrid/volley-simulations/pkg/config"
	"github.com/picogrid/volley-simulations/pkg/logger"
)

// version is stamped at build time with -ldflags "-X ...cmd.version=...".
var version = "dev"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "volley-sim",
	Short: "Volleyball tactics simulation CLI",
	Long: `Volley Sim runs the deterministic six-a-side volleyball simulation core:
full AI matches, serve receive drills, dry-run previews with decision
traces, scripted rallies, replay verification and a live spectator stream.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "engine config file (default is $HOME/.volley-sim/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("no_color", rootCmd.PersistentFlags().Lookup("no-color"))

	// Add commands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(scriptCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// initConfig reads the CLI settings from the config file and VOLLEY_*
// environment variables
func initConfig() {
	viper.SetEnvPrefix("VOLLEY")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("$HOME/.volley-sim")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && cfgFile == "" {
		cfgFile = viper.ConfigFileUsed()
	}

	logger.SetLevel(logger.ParseLevel(viper.GetString("log_level")))
	logger.SetNoColor(viper.GetBool("no_color"))
}

// loadEngineConfig loads the engine configuration named by --config.
func loadEngineConfig(overrides map[string]interface{}) (*config.EngineConfig, error) {
	return config.LoadConfigWithOverrides(cfgFile, overrides)
}
