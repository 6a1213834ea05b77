// ABOUTME: CLI commands for inspecting and creating the config file.
// ABOUTME: Shows the effective layered configuration as YAML.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/harperreed/runlog/internal/config"
	"github.com/spf13/cobra"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create the configuration file",
	Long: `Show or create the runlog configuration.

Settings are layered: built-in defaults, then the YAML file at
~/.config/runlog/config.yaml (or $RUNLOG_CONFIG), then RUNLOG_* environment
variables such as RUNLOG_INGEST_MATCH_TOLERANCE_KM or RUNLOG_LOG_LEVEL.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := cfg.Marshal()
		if err != nil {
			return fmt.Errorf("failed to render config: %w", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, color.New(color.Faint).Sprintf("# %s", config.GetConfigPath()))
		_, err = out.Write(data)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.GetConfigPath()
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("config already exists: %s (use --force to overwrite)", path)
		}
		if err := config.Default().Save(path); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Wrote %s", path))
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "overwrite an existing config file")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
