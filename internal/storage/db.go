// ABOUTME: Opens the runlog SQLite store and resolves its default XDG location.
// ABOUTME: Store setup failures surface as WriteErrors so the CLI exits fatally.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DBFileName is the store's file name inside the data directory.
const DBFileName = "runlog.db"

// DB is the runlog store: one SQLite file holding runs, sleep, and the
// run_with_sleep view.
type DB struct {
	db     *sql.DB
	dbPath string
}

// storePragmas let a dashboard read the last committed file while ingest writes.
var storePragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA temp_store = MEMORY",
}

// Open opens the store at dbPath, creating the file and its directory on
// first use. Failures after the file is reachable are WriteErrors.
func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, &WriteError{Op: "create data directory", Err: err}
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, &WriteError{Op: "open store", Err: err}
	}
	// Ingest commits one file at a time from a single goroutine.
	conn.SetMaxOpenConns(1)

	d := &DB{db: conn, dbPath: dbPath}
	fail := func(op string, err error) (*DB, error) {
		_ = conn.Close()
		return nil, &WriteError{Op: op, Err: err}
	}

	for _, pragma := range storePragmas {
		if _, err := conn.Exec(pragma); err != nil {
			return fail("configure store", fmt.Errorf("%s: %w", pragma, err))
		}
	}
	// The pragmas above create the file.
	if err := os.Chmod(dbPath, 0600); err != nil && !os.IsNotExist(err) {
		return fail("restrict store permissions", err)
	}
	if err := d.initSchema(); err != nil {
		return fail("initialize schema", err)
	}
	return d, nil
}

// NewWithDB wraps an existing connection without touching the schema.
func NewWithDB(db *sql.DB) *DB {
	return &DB{db: db}
}

// DataDir returns the default data directory following XDG conventions.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "runlog")
}

// DefaultDBPath returns the default database path following XDG conventions.
func DefaultDBPath() string {
	return filepath.Join(DataDir(), DBFileName)
}

// Path returns the database file path, empty for wrapped connections.
func (d *DB) Path() string {
	return d.dbPath
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}
