// Package db opens and initializes the project-local state database.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/warden/internal/config"
)

// BusyTimeoutMillis bounds how long a writer waits for the exclusive
// lock before the driver reports SQLITE_BUSY.
const BusyTimeoutMillis = 2000

// Open opens (creating if needed) the warden state database for a
// project directory and applies the schema.
func Open(projectDir string) (*sql.DB, error) {
	stateDir := config.StateDir(projectDir)
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", config.StateDirName, err)
	}

	dbPath := filepath.Join(stateDir, "warden.db")
	// _txlock=immediate makes BeginTx take the write lock up front, so a
	// busy database surfaces at transaction start instead of mid-cycle.
	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL&_txlock=immediate", dbPath, BusyTimeoutMillis)
	database, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Invocations are short-lived single-threaded CLI runs; one
	// connection keeps transaction semantics predictable.
	database.SetMaxOpenConns(1)

	if _, err := database.Exec(SchemaSQL); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, nil
}

// Path returns the state database path for a project directory.
func Path(projectDir string) string {
	return filepath.Join(config.StateDir(projectDir), "warden.db")
}
