package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// sqliteBackend runs against an embedded SQLite database through database/sql.
// It bridges the dialect gap: $n placeholders become ?n, booleans become 0/1
// integers, and sql.ErrNoRows becomes the backend-neutral sentinel.
type sqliteBackend struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and ensures the schema
// exists. Pass ":memory:" for a throwaway in-memory database (used in tests).
func OpenSQLite(path string) (Backend, error) {
	dsn := path
	if path == ":memory:" {
		dsn = "file::memory:"
	}
	db, err := sql.Open("sqlite", dsn+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// Single writer; also keeps an in-memory database on one connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating sqlite schema: %w", err)
	}
	return &sqliteBackend{db: db}, nil
}

func (b *sqliteBackend) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := b.db.ExecContext(ctx, rebind(query), encodeArgs(args)...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (b *sqliteBackend) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := b.db.QueryContext(ctx, rebind(query), encodeArgs(args)...)
	if err != nil {
		return nil, err
	}
	return sqliteRows{rows: rows}, nil
}

func (b *sqliteBackend) QueryRow(ctx context.Context, query string, args ...any) Row {
	return sqliteRow{row: b.db.QueryRowContext(ctx, rebind(query), encodeArgs(args)...)}
}

func (b *sqliteBackend) Begin(ctx context.Context) (Tx, error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	return &sqliteTx{tx: tx}, nil
}

func (b *sqliteBackend) SupportsReturning() bool { return false }

func (b *sqliteBackend) IsUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
		serr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

func (b *sqliteBackend) Name() string { return "sqlite" }

func (b *sqliteBackend) Close() { b.db.Close() }

// sqliteTx adapts *sql.Tx. The context arguments on Commit/Rollback exist
// only to satisfy the backend-neutral interface.
type sqliteTx struct {
	tx *sql.Tx
}

func (t *sqliteTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := t.tx.ExecContext(ctx, rebind(query), encodeArgs(args)...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (t *sqliteTx) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := t.tx.QueryContext(ctx, rebind(query), encodeArgs(args)...)
	if err != nil {
		return nil, err
	}
	return sqliteRows{rows: rows}, nil
}

func (t *sqliteTx) QueryRow(ctx context.Context, query string, args ...any) Row {
	return sqliteRow{row: t.tx.QueryRowContext(ctx, rebind(query), encodeArgs(args)...)}
}

func (t *sqliteTx) Commit(context.Context) error   { return t.tx.Commit() }
func (t *sqliteTx) Rollback(context.Context) error { return t.tx.Rollback() }

type sqliteRows struct {
	rows *sql.Rows
}

func (r sqliteRows) Next() bool             { return r.rows.Next() }
func (r sqliteRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r sqliteRows) Err() error             { return r.rows.Err() }
func (r sqliteRows) Close()                 { r.rows.Close() }

type sqliteRow struct {
	row *sql.Row
}

func (r sqliteRow) Scan(dest ...any) error {
	err := r.row.Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return errNoRows
	}
	return err
}

// rebind converts PostgreSQL placeholders ($1, $2, ...) to SQLite's numbered
// form (?1, ?2, ...). Our queries never contain a literal dollar sign.
func rebind(query string) string {
	return strings.ReplaceAll(query, "$", "?")
}

// encodeArgs converts booleans to 0/1 integers; SQLite has no boolean type.
func encodeArgs(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		if b, ok := a.(bool); ok {
			if b {
				out[i] = 1
			} else {
				out[i] = 0
			}
			continue
		}
		out[i] = a
	}
	return out
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS workouts (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users(id),
	name       TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_workouts_user_id ON workouts(user_id);

CREATE TABLE IF NOT EXISTS exercises (
	id         TEXT PRIMARY KEY,
	workout_id TEXT NOT NULL REFERENCES workouts(id) ON DELETE CASCADE,
	name       TEXT NOT NULL,
	sets       INTEGER NOT NULL,
	reps       INTEGER NOT NULL,
	weight     REAL NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_exercises_workout_id ON exercises(workout_id);

CREATE TABLE IF NOT EXISTS workout_sessions (
	id           TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL REFERENCES users(id),
	workout_id   TEXT REFERENCES workouts(id) ON DELETE SET NULL,
	workout_name TEXT NOT NULL,
	started_at   TIMESTAMP NOT NULL,
	ended_at     TIMESTAMP,
	is_active    BOOLEAN NOT NULL,
	created_at   TIMESTAMP NOT NULL,
	updated_at   TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_workout_sessions_user_id ON workout_sessions(user_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_workout_sessions_one_active
	ON workout_sessions(user_id) WHERE is_active = 1;

CREATE TABLE IF NOT EXISTS session_exercises (
	id            TEXT PRIMARY KEY,
	session_id    TEXT NOT NULL REFERENCES workout_sessions(id) ON DELETE CASCADE,
	exercise_id   TEXT REFERENCES exercises(id) ON DELETE SET NULL,
	exercise_name TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL,
	updated_at    TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_session_exercises_session_id ON session_exercises(session_id);

CREATE TABLE IF NOT EXISTS exercise_sets (
	id                  TEXT PRIMARY KEY,
	session_exercise_id TEXT NOT NULL REFERENCES session_exercises(id) ON DELETE CASCADE,
	reps                INTEGER NOT NULL,
	weight              REAL NOT NULL,
	completed           BOOLEAN NOT NULL,
	notes               TEXT,
	created_at          TIMESTAMP NOT NULL,
	updated_at          TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_exercise_sets_session_exercise_id ON exercise_sets(session_exercise_id);
`
