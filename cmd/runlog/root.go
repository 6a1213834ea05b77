// ABOUTME: Root Cobra command for runlog CLI.
// ABOUTME: Loads config, sets up logging, and manages the store lifecycle.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/harperreed/runlog/internal/config"
	"github.com/harperreed/runlog/internal/logging"
	"github.com/harperreed/runlog/internal/storage"
	"github.com/spf13/cobra"
)

// Process exit codes.
const (
	exitOK       = 0
	exitRejected = 1
	exitFatal    = 2
)

var (
	cfg  *config.Config
	repo *storage.DB

	dbFlag       string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "runlog",
	Short: "Import fitness exports into a local run log",
	Long: `Runlog imports exported fitness CSVs into a local SQLite store.

SOURCES:

  export_*/activities.csv    Strava bulk export (runs, HR, weather, effort)
  oura_*_trends.csv          Oura trends (sleep, readiness, HRV)
  garmin_*.csv               Garmin activities (training effect, power, zones)

QUICK START:

  $ runlog ingest ~/Downloads/fitness     # Import everything in the folder
  $ runlog summary                        # Totals and coverage
  $ runlog runs -n 10                     # Last 10 runs with prior night's sleep

Re-running ingest over the same folder is safe: rows are replaced by
activity ID and sleep date, never duplicated.

EXIT CODES:

  0  success, including "nothing new"
  1  one or more files were rejected (others were still imported)
  2  the store could not be written; files committed earlier remain

DATA STORAGE:

  The store lives at ~/.local/share/runlog/runlog.db unless data_dir or
  db_path is set in ~/.config/runlog/config.yaml (or RUNLOG_DB_PATH).
  Use --db to point a single command at another file.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if dbFlag != "" {
			cfg.DBPath = dbFlag
		}

		logCfg := cfg.Logging()
		if logLevelFlag != "" {
			logCfg.Level = logLevelFlag
		}
		logCfg.Output = cmd.ErrOrStderr()
		logging.Init(logCfg)

		if !needsStore(cmd) {
			return nil
		}
		repo, err = cfg.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		logging.Debug().Str("db", repo.Path()).Msg("store opened")
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeRepo()
	},
}

// storeless lists commands that never touch the database.
var storeless = map[string]bool{
	"help":       true,
	"completion": true,
	"config":     true,
	"show":       true,
	"init":       true,
}

func needsStore(cmd *cobra.Command) bool {
	return !storeless[cmd.Name()]
}

func closeRepo() error {
	if repo == nil {
		return nil
	}
	err := repo.Close()
	repo = nil
	return err
}

// exitCode classifies a command error.
func exitCode(err error) int {
	var we *storage.WriteError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &we):
		return exitFatal
	default:
		return exitRejected
	}
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if cerr := closeRepo(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
	}
	return exitCode(err)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "path to the runlog database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level: debug, info, warn, error")
}
