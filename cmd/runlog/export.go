// ABOUTME: CLI command for dumping store tables to files or stdout.
// ABOUTME: Supports CSV, JSON, NDJSON, YAML, XLSX, and Markdown.
package main

import (
	"errors"
	"fmt"
	"slices"

	"github.com/fatih/color"
	"github.com/harperreed/runlog/internal/storage"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportTables []string
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export store tables",
	Long: `Export the runs and sleep tables and the run_with_sleep view.

FORMATS:

  csv        One CSV file per table, header row first
  json       JSON array of objects per table, keys in column order
  ndjson     One JSON object per line
  yaml       YAML sequence of mappings
  xlsx       One workbook per table with a frozen header row
  markdown   Markdown table (alias: md)

Files are named <table>.<ext> inside the output directory. Empty tables are
skipped. Use -o - to print to stdout instead (not available for xlsx).

EXAMPLES:

  runlog export csv                         # ./runs.csv, ./sleep.csv, ...
  runlog export xlsx -o ~/reports           # Workbooks in ~/reports
  runlog export ndjson -o - --tables runs   # Stream runs as NDJSON`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"csv", "json", "ndjson", "yaml", "xlsx", "markdown", "md"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := storage.ParseFormat(args[0])
		if err != nil {
			return fmt.Errorf("%w (use csv, json, ndjson, yaml, xlsx, or markdown)", err)
		}
		if err := checkTables(exportTables); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if exportOutput == "-" {
			if format == storage.FormatXLSX {
				return errors.New("xlsx cannot be written to stdout; use -o DIR")
			}
			for _, name := range exportTables {
				t, err := repo.Dump(cmd.Context(), name)
				if err != nil {
					return fmt.Errorf("export failed: %w", err)
				}
				if err := storage.WriteTable(out, t, format); err != nil {
					return fmt.Errorf("export %s: %w", name, err)
				}
			}
			return nil
		}

		files, err := storage.ExportTables(cmd.Context(), repo, exportOutput, format, exportTables)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		if len(files) == 0 {
			fmt.Fprintln(out, "Nothing to export.")
			return nil
		}
		for _, f := range files {
			fmt.Fprintln(out, color.GreenString("✓ Exported %d row(s) to %s", f.Rows, f.Path))
		}
		return nil
	},
}

func checkTables(tables []string) error {
	if len(tables) == 0 {
		return errors.New("no tables selected")
	}
	for _, t := range tables {
		if !slices.Contains(storage.Tables, t) {
			return fmt.Errorf("unknown table %q (use %v)", t, storage.Tables)
		}
	}
	return nil
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", ".", "output directory, or - for stdout")
	exportCmd.Flags().StringSliceVar(&exportTables, "tables", storage.Tables, "tables to export")
	rootCmd.AddCommand(exportCmd)
}
