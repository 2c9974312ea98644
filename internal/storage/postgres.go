package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxRunner is the query surface shared by *pgxpool.Pool and pgx.Tx.
type pgxRunner interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgxBackend runs against a PostgreSQL connection pool. Queries pass through
// verbatim: native placeholders, native booleans, RETURNING supported.
type pgxBackend struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects a pool and verifies liveness with a ping.
func OpenPostgres(ctx context.Context, dsn string) (Backend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &pgxBackend{pool: pool}, nil
}

func (b *pgxBackend) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return pgxExec(ctx, b.pool, query, args...)
}

func (b *pgxBackend) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	return pgxQuery(ctx, b.pool, query, args...)
}

func (b *pgxBackend) QueryRow(ctx context.Context, query string, args ...any) Row {
	return pgxRow{row: b.pool.QueryRow(ctx, query, args...)}
}

func (b *pgxBackend) Begin(ctx context.Context) (Tx, error) {
	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	return &pgxTx{tx: tx}, nil
}

func (b *pgxBackend) SupportsReturning() bool { return true }

func (b *pgxBackend) IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (b *pgxBackend) Name() string { return "postgres" }

func (b *pgxBackend) Close() { b.pool.Close() }

// pgxTx adapts pgx.Tx to the backend-neutral Tx.
type pgxTx struct {
	tx pgx.Tx
}

func (t *pgxTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return pgxExec(ctx, t.tx, query, args...)
}

func (t *pgxTx) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	return pgxQuery(ctx, t.tx, query, args...)
}

func (t *pgxTx) QueryRow(ctx context.Context, query string, args ...any) Row {
	return pgxRow{row: t.tx.QueryRow(ctx, query, args...)}
}

func (t *pgxTx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *pgxTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

func pgxExec(ctx context.Context, r pgxRunner, query string, args ...any) (int64, error) {
	tag, err := r.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func pgxQuery(ctx context.Context, r pgxRunner, query string, args ...any) (Rows, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgxRows{rows: rows}, nil
}

type pgxRows struct {
	rows pgx.Rows
}

func (r pgxRows) Next() bool             { return r.rows.Next() }
func (r pgxRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r pgxRows) Err() error             { return r.rows.Err() }
func (r pgxRows) Close()                 { r.rows.Close() }

type pgxRow struct {
	row pgx.Row
}

func (r pgxRow) Scan(dest ...any) error {
	err := r.row.Scan(dest...)
	if errors.Is(err, pgx.ErrNoRows) {
		return errNoRows
	}
	return err
}

// RunMigrations applies all pending PostgreSQL migrations from the given
// directory. The SQLite backend creates its schema inline instead.
func RunMigrations(dsn, migrationsPath string) error {
	m, err := migrate.New("file://"+migrationsPath, dsn)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}
