// Package navdb persists run summaries for the graph construction
// pipeline in SQLite: one row per run plus per-factor-type counts. The
// factor graph itself is never stored here; graph export is a separate
// concern.
package navdb

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/tailscale/tailsql/server/tailsql"
	_ "modernc.org/sqlite"
	"tailscale.com/tsweb"

	"github.com/banshee-data/auvnav/internal/monitoring"
)

// DB wraps the run database handle.
type DB struct {
	*sql.DB
}

// Open opens (or creates) the run database at path and applies any
// pending migrations. Use ":memory:" for tests.
func Open(path string) (*DB, error) {
	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open run db: %w", err)
	}
	// A single connection keeps :memory: databases coherent across the
	// pool; the write volume here is one row per run.
	sqldb.SetMaxOpenConns(1)
	db := &DB{sqldb}
	if err := db.MigrateUp(); err != nil {
		sqldb.Close()
		return nil, err
	}
	return db, nil
}

// AttachAdminRoutes mounts a live SQL inspector for the run database on
// the given mux, under /debug/tailsql/.
func (db *DB) AttachAdminRoutes(mux *http.ServeMux, label string) error {
	debug := tsweb.Debugger(mux)
	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		return fmt.Errorf("create tailsql server: %w", err)
	}
	tsql.SetDB("sqlite://runs.db", db.DB, &tailsql.DBOptions{
		Label: label,
	})
	debug.Handle("tailsql/", "SQL inspection of run summaries", tsql.NewMux())
	monitoring.Logf("navdb: admin SQL routes attached under /debug/tailsql/")
	return nil
}
