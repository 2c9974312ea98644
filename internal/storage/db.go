package storage

import (
	"context"
	"fmt"
	"log/slog"
)

// DB is the storage adapter plus every store method built on it. The backend
// is chosen once in Open and never switched for the life of the process.
type DB struct {
	b   Backend
	log *slog.Logger
}

// NewDB wraps an already-open backend. Tests use this with an in-memory
// SQLite backend.
func NewDB(b Backend, log *slog.Logger) *DB {
	return &DB{b: b, log: log}
}

// Open connects to PostgreSQL when a DSN is configured and the server
// answers a ping; otherwise it falls back to the embedded SQLite database
// at sqlitePath, creating the schema if absent.
func Open(ctx context.Context, dsn, sqlitePath string, log *slog.Logger) (*DB, error) {
	if dsn != "" {
		b, err := OpenPostgres(ctx, dsn)
		if err == nil {
			log.Info("storage backend selected", "backend", b.Name())
			return NewDB(b, log), nil
		}
		log.Warn("postgres unavailable, falling back to sqlite", "error", err)
	}

	b, err := OpenSQLite(sqlitePath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite fallback: %w", err)
	}
	log.Info("storage backend selected", "backend", b.Name(), "path", sqlitePath)
	return NewDB(b, log), nil
}

// Kind returns the active backend name ("postgres" or "sqlite").
func (db *DB) Kind() string { return db.b.Name() }

// Close closes the active backend.
func (db *DB) Close() { db.b.Close() }

// withTx runs fn inside a transaction, rolling back on error.
func (db *DB) withTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := db.b.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			db.log.Error("transaction rollback failed", "error", rbErr)
		}
		return err
	}
	return tx.Commit(ctx)
}

// insertReturning runs an INSERT and scans the stored row back into dest.
// PostgreSQL appends a RETURNING clause; SQLite execs the insert and re-reads
// the row with fetch (a SELECT by primary key taking id as its only argument).
func (db *DB) insertReturning(ctx context.Context, q Querier, insert, returning, fetch string, args []any, id string, dest ...any) error {
	if db.b.SupportsReturning() {
		return q.QueryRow(ctx, insert+" RETURNING "+returning, args...).Scan(dest...)
	}
	if _, err := q.Exec(ctx, insert, args...); err != nil {
		return err
	}
	return q.QueryRow(ctx, fetch, id).Scan(dest...)
}

// isUniqueViolation exposes the backend check to store methods.
func (db *DB) isUniqueViolation(err error) bool { return db.b.IsUniqueViolation(err) }
