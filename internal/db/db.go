// Package db opens the load catalog database and manages its schema.
package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/cloudload/internal/monitoring"
)

// DB wraps the catalog connection pool.
type DB struct {
	*sql.DB
}

// pragmas are applied to every new database handle.
var pragmas = []string{
	"PRAGMA busy_timeout=5000",
	"PRAGMA foreign_keys=ON",
}

// OpenDB opens (creating if needed) the SQLite database at path, applies
// connection pragmas and migrates the schema to the latest version.
func OpenDB(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("empty database path")
	}
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	memory := path == ":memory:" || strings.Contains(path, "mode=memory")
	if memory {
		// Each pooled connection would otherwise get its own empty database.
		sqlDB.SetMaxOpenConns(1)
	}

	stmts := pragmas
	if !memory {
		stmts = append([]string{"PRAGMA journal_mode=WAL"}, stmts...)
	}
	for _, p := range stmts {
		if _, err := sqlDB.Exec(p); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	db := &DB{sqlDB}
	if err := db.MigrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	version, _, err := db.MigrateVersion()
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	monitoring.Logf("db: opened %s at schema version %d", path, version)
	return db, nil
}
