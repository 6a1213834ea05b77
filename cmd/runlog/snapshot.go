// ABOUTME: CLI command for copying the store into another SQLite file.
// ABOUTME: Uses the upsert path so an existing snapshot is refreshed in place.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/runlog/internal/config"
	"github.com/harperreed/runlog/internal/storage"
	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <dest.db>",
	Short: "Copy runs and sleep into another store file",
	Long: `Copy every run and sleep row into another runlog database.

The destination is created with the same schema if it does not exist. Rows
already present are replaced by key, so running snapshot again refreshes the
copy. The source store is only read.

EXAMPLES:

  runlog snapshot ~/backups/runlog-2024-06.db
  runlog snapshot /srv/dashboard/runlog.db     # refresh the dashboard copy`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dest := config.ExpandPath(args[0])

		sum, err := storage.SnapshotFile(cmd.Context(), repo, dest)
		if err != nil {
			return fmt.Errorf("snapshot failed: %w", err)
		}

		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Copied %d run(s) and %d sleep day(s) to %s\n",
			sum.Runs, sum.Sleep, dest)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
}
