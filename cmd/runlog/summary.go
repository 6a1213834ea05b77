// ABOUTME: CLI command for store-wide totals.
// ABOUTME: Shows date range, distance, long-run fueling, and sleep coverage.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show store totals",
	Long: `Show totals across every run in the store.

  Runs            count and date range
  Distance        total in km and miles
  Long runs       runs at or above ingest.long_run_threshold_km, with the
                  estimated gels and carbohydrate grams for them
  Device matched  runs that received a device-metrics record
  With sleep      runs whose preceding night has a sleep record`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := repo.Summary(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to summarize: %w", err)
		}

		out := cmd.OutOrStdout()
		if s.Runs == 0 {
			fmt.Fprintln(out, "No runs found.")
			if s.SleepDays > 0 {
				fmt.Fprintf(out, "%d sleep day(s) stored.\n", s.SleepDays)
			}
			return nil
		}

		bold := color.New(color.Bold)
		faint := color.New(color.Faint)

		fmt.Fprintf(out, "%s %d %s\n", bold.Sprint(padRight("Runs", 16)), s.Runs,
			faint.Sprintf("(%s to %s)", s.FirstDate, s.LastDate))
		fmt.Fprintf(out, "%s %.1f km / %.1f mi\n", bold.Sprint(padRight("Distance", 16)), s.TotalKm, s.TotalMiles)
		fmt.Fprintf(out, "%s %d %s\n", bold.Sprint(padRight("Long runs", 16)), s.LongRuns,
			faint.Sprintf("(%d gels, %d g carbs)", s.TotalGels, s.TotalCarbsG))
		fmt.Fprintf(out, "%s %d of %d\n", bold.Sprint(padRight("Device matched", 16)), s.RunsWithDevice, s.Runs)
		fmt.Fprintf(out, "%s %d of %d %s\n", bold.Sprint(padRight("With sleep", 16)), s.RunsWithSleep, s.Runs,
			faint.Sprintf("(%d sleep days stored)", s.SleepDays))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}
