package storage

import "context"

// Querier executes SQL against a backend or an open transaction. Queries are
// written once, in PostgreSQL placeholder syntax ($1, $2, ...), with booleans
// always passed as parameters; each driver translates what its dialect needs.
type Querier interface {
	// Exec runs a statement and returns the number of affected rows.
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) Row
}

// Rows is the subset of a result cursor both drivers provide.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// Row is a single-row result. Scan returns errNoRows when the query matched
// nothing, regardless of backend.
type Row interface {
	Scan(dest ...any) error
}

// Tx is an open transaction on either backend.
type Tx interface {
	Querier
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Backend is one of the two storage drivers: the PostgreSQL server or the
// embedded SQLite file. Selected once at startup and never switched.
type Backend interface {
	Querier
	Begin(ctx context.Context) (Tx, error)
	// SupportsReturning reports whether INSERT ... RETURNING works natively.
	// When false, insertReturning re-reads the row after the insert.
	SupportsReturning() bool
	// IsUniqueViolation reports whether err was caused by a unique index,
	// e.g. the one-active-session-per-user partial index.
	IsUniqueViolation(err error) bool
	Name() string
	Close()
}
