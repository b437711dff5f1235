package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentic-research/treescan/internal/annotate"
	"github.com/agentic-research/treescan/internal/store"
)

func newRepairCmd() *cobra.Command {
	repairCmd := &cobra.Command{
		Use:   "repair <file.db|dir>",
		Short: "Upgrade tables written by older versions in place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("desktop-rule") {
				cfg.DesktopRule, _ = cmd.Flags().GetString("desktop-rule")
			}
			rule, err := annotate.ParseDesktopRule(cfg.DesktopRule)
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd, cfg)
			if err != nil {
				return err
			}
			opts := store.RepairOptions{DesktopRule: rule, Logger: logger.Sublogger("repair")}

			target := args[0]
			info, err := os.Stat(target)
			if err != nil {
				return fmt.Errorf("repair: %w", err)
			}

			out := cmd.OutOrStdout()
			if info.IsDir() {
				n, err := store.RepairDir(target, opts)
				fmt.Fprintf(out, "Repaired %d tables in %s\n", n, target)
				if err != nil {
					return fmt.Errorf("repair: %w", err)
				}
				return nil
			}

			changed, err := store.Repair(target, opts)
			if err != nil {
				return fmt.Errorf("repair %s: %w", target, err)
			}
			if changed {
				fmt.Fprintf(out, "Repaired %s\n", target)
			} else {
				fmt.Fprintf(out, "%s is up to date\n", target)
			}
			return nil
		},
	}
	repairCmd.Flags().String("desktop-rule", "", "Sub-Desktop-Parent rule: ancestors or literal")
	return repairCmd
}
