// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs a read-only stdio MCP server over the run store.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/runlog/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server is read-only and communicates via stdin/stdout. Import data with
'runlog ingest' first.

CLAUDE DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "runlog": {
        "command": "runlog",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  list_runs     Recent runs with the preceding night's sleep
  get_run       One run by activity ID, with device metrics
  get_sleep     Sleep and readiness for a date
  run_summary   Store totals

AVAILABLE RESOURCES:

  runlog://summary   Store totals as JSON
  runlog://recent    Last 10 runs as JSON`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(repo)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
