// ABOUTME: CLI command for importing a directory of fitness exports.
// ABOUTME: Prints per-source counts and the files that were rejected.
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/harperreed/runlog/internal/ingest"
	"github.com/spf13/cobra"
)

var (
	ingestTolerance float64
	ingestAllTypes  bool
)

var ingestCmd = &cobra.Command{
	Use:     "ingest <dir>",
	Aliases: []string{"import"},
	Short:   "Import exports from a directory",
	Long: `Import every recognised export in a directory into the store.

FILES:

  export_*/activities.csv    first matching directory wins
  oura_*_trends.csv          all matches, in name order
  garmin_*.csv               all matches, merged into runs by date and distance

Each file is committed in its own transaction. A file that fails to parse is
rejected whole and reported; the remaining files are still imported and the
command exits 1. A storage failure stops the run and exits 2.

Device records are attached to the run on the same date with the nearest
distance, within ingest.match_tolerance_km (default 1.0 km).

EXAMPLES:

  runlog ingest ~/Downloads/fitness
  runlog ingest . --tolerance 0.5
  runlog ingest . --all-types          # keep rides, swims, etc.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cfg.IngestOptions()
		if ingestTolerance > 0 {
			opts.MatchToleranceKm = ingestTolerance
		}
		if ingestAllTypes {
			opts.ActivityTypes = nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rep, err := ingest.New(repo, opts).Run(ctx, args[0])
		printReport(cmd.OutOrStdout(), rep)
		if err != nil {
			return err
		}

		if rejected := rep.Rejected(); len(rejected) > 0 {
			return fmt.Errorf("%d file(s) rejected:\n%w", len(rejected), rep.Err())
		}
		return nil
	},
}

func printReport(w io.Writer, rep *ingest.Report) {
	if rep == nil || len(rep.Files) == 0 {
		return
	}

	faint := color.New(color.Faint)
	for _, kind := range []ingest.SourceKind{ingest.SourceActivity, ingest.SourceDevice, ingest.SourceRecovery} {
		parsed, written, rejected := rep.Totals(kind)
		if parsed == 0 && rejected == 0 {
			continue
		}
		line := fmt.Sprintf("%s %d parsed, %d written", padRight(string(kind), 9), parsed, written)
		if rejected > 0 {
			line += color.RedString(", %d file(s) rejected", rejected)
		}
		fmt.Fprintln(w, line)
	}

	if rep.Matched > 0 || rep.UnmatchedDevice > 0 {
		fmt.Fprintf(w, "%s %d matched, %d unmatched\n", padRight("match", 9), rep.Matched, rep.UnmatchedDevice)
	}

	for _, f := range rep.Files {
		switch {
		case f.Rejected():
			fmt.Fprintf(w, "%s %s\n", color.RedString("✗"), f.Err)
		case f.Skipped > 0:
			fmt.Fprintln(w, faint.Sprintf("  %s: skipped %d non-matching activity type(s)", filepath.Base(f.Path), f.Skipped))
		}
	}

	if len(rep.Rejected()) == 0 {
		fmt.Fprintln(w, color.GreenString("✓ Imported %s", rep.Dir))
	}
	fmt.Fprintln(w, faint.Sprintf("run %s", rep.RunID))
}

func init() {
	ingestCmd.Flags().Float64Var(&ingestTolerance, "tolerance", 0, "device match tolerance in km (default from config)")
	ingestCmd.Flags().BoolVar(&ingestAllTypes, "all-types", false, "import every activity type, not just runs")
	rootCmd.AddCommand(ingestCmd)
}
