package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is the sentinel returned by reads, updates and deletes against
// a missing record. Callers check it with errors.Is rather than catching a
// failure.
var ErrNotFound = errors.New("record not found")

// Database is the subset of pgxpool.Pool the repositories use. pgxmock
// satisfies it, so repository tests run without a live database.
type Database interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
