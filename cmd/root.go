package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentic-research/treescan/internal/config"
	"github.com/agentic-research/treescan/internal/logging"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "treescan",
		Short:         "Record file-system metadata as a table for offline analysis",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "Path to HCL config file (default: user config dir)")
	root.PersistentFlags().String("log-level", "", "Log level: disabled, error, warn, info, debug")

	root.AddCommand(newScanCmd(), newRepairCmd(), newExportCmd())
	return root
}

// loadConfig reads the config file named by --config, or the per-user default
// when it exists, and applies --log-level.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	required := path != ""
	if !required {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return config.Default(), nil
		}
	}
	cfg, err := config.Load(path, required)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg config.Config) (*logging.Logger, error) {
	level, ok := logging.NameToLevel(cfg.LogLevel)
	if !ok {
		return nil, fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}
	return logging.New(cmd.ErrOrStderr(), level), nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
