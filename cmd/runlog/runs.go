// ABOUTME: CLI command for listing runs joined with the prior night's sleep.
// ABOUTME: Reads the run_with_sleep view, newest first.
package main

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/harperreed/runlog/internal/models"
	"github.com/harperreed/runlog/internal/storage"
	"github.com/spf13/cobra"
)

var (
	runsLimit int
	runsSince string
	runsJSON  bool
)

var runsCmd = &cobra.Command{
	Use:     "runs",
	Aliases: []string{"list", "ls"},
	Short:   "List runs",
	Long: `List runs from the store, newest first.

OUTPUT FORMAT:

  DATE  TIME  DISTANCE  PACE  HR  GELS  SLEEP  NAME

  SLEEP is the sleep score of the night before the run: for runs starting
  before noon that is the same calendar date, for later runs the previous
  date. A dash means no sleep record exists for that night.

EXAMPLES:

  runlog runs                     # Last 20 runs
  runlog runs -n 50               # Last 50 runs
  runlog runs --since 2024-01-01  # Everything since January
  runlog runs --json              # Full rows as JSON`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if runsSince != "" {
			if _, err := time.Parse(models.DateLayout, runsSince); err != nil {
				return fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", runsSince)
			}
		}

		runs, err := repo.ListRuns(cmd.Context(), storage.RunFilter{Since: runsSince, Limit: runsLimit})
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}

		out := cmd.OutOrStdout()
		if runsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if runs == nil {
				runs = []*models.RunWithRecovery{}
			}
			return enc.Encode(runs)
		}

		if len(runs) == 0 {
			fmt.Fprintln(out, "No runs found.")
			return nil
		}

		printRuns(out, runs)
		return nil
	},
}

func printRuns(w io.Writer, runs []*models.RunWithRecovery) {
	faint := color.New(color.Faint)
	long := color.New(color.FgYellow)

	for _, r := range runs {
		dist := "-"
		if r.DistanceKm != nil {
			dist = fmt.Sprintf("%.2f km", *r.DistanceKm)
		}
		gels := ""
		if r.IsLongRun() {
			gels = long.Sprintf("%d gels", *r.GelsEstimated)
		}
		sleep := "-"
		if r.Recovery != nil && r.Recovery.SleepScore != nil {
			sleep = fmt.Sprintf("%d", *r.Recovery.SleepScore)
		}

		fmt.Fprintf(w, "%s %s %s %s %s %s %s %s\n",
			faint.Sprint(r.Date),
			faint.Sprint(r.StartedAt.Format("15:04")),
			padRight(dist, 10),
			padRight(formatPace(r.PaceMinKm), 8),
			padRight(optInt(r.AvgHR), 4),
			padRight(gels, 7),
			padRight(sleep, 3),
			truncate(r.Name, 30))
	}
}

// formatPace renders decimal minutes per km as m:ss/km.
func formatPace(p *float64) string {
	if p == nil {
		return "-"
	}
	total := int(math.Round(*p * 60))
	return fmt.Sprintf("%d:%02d/km", total/60, total%60)
}

func optInt(p *int) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *p)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "max number of results")
	runsCmd.Flags().StringVar(&runsSince, "since", "", "only runs on or after date (YYYY-MM-DD)")
	runsCmd.Flags().BoolVar(&runsJSON, "json", false, "print full rows as JSON")
	rootCmd.AddCommand(runsCmd)
}
