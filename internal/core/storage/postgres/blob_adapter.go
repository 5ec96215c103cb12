package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Jomes01/Kioku/internal/core/storage"
)

// Adapter implements storage.BlobStore on a PostgreSQL table.
type Adapter struct {
	db      *sql.DB
	stmtGet *sql.Stmt
	stmtSet *sql.Stmt
}

// NewAdapter prepares the blob statements on an open handle.
//
// IMPORTANT: the blobs table must exist. Run migrations.RunMigrations first.
func NewAdapter(db *sql.DB) (*Adapter, error) {
	if err := validateSchema(db); err != nil {
		return nil, fmt.Errorf("schema validation failed - did you run migrations?: %w", err)
	}

	stmtGet, err := db.Prepare(queryGetBlob)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare getBlob statement: %w", err)
	}

	stmtSet, err := db.Prepare(querySetBlob)
	if err != nil {
		stmtGet.Close()
		return nil, fmt.Errorf("failed to prepare setBlob statement: %w", err)
	}

	slog.Info("[Postgres] Adapter initialized with prepared statements")

	return &Adapter{
		db:      db,
		stmtGet: stmtGet,
		stmtSet: stmtSet,
	}, nil
}

// Get returns the stored value or storage.ErrNotFound.
func (a *Adapter) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := a.stmtGet.QueryRowContext(ctx, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get blob: %w", err)
	}
	return value, nil
}

// Set upserts the value for key.
func (a *Adapter) Set(ctx context.Context, key string, value []byte) error {
	if _, err := a.stmtSet.ExecContext(ctx, key, value); err != nil {
		return fmt.Errorf("failed to set blob: %w", err)
	}

	slog.Debug("[Postgres] Saved blob", "key", key, "bytes", len(value))
	return nil
}

// DB returns the underlying handle.
func (a *Adapter) DB() *sql.DB {
	return a.db
}

// Close closes the prepared statements and the database handle.
func (a *Adapter) Close() error {
	var firstErr error

	if err := a.stmtGet.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close getBlob statement: %w", err)
	}

	if err := a.stmtSet.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close setBlob statement: %w", err)
	}

	if err := a.db.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close database: %w", err)
	}

	if firstErr != nil {
		return firstErr
	}

	slog.Info("[Postgres] Adapter closed gracefully")
	return nil
}

// Ping checks database connectivity.
func (a *Adapter) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}
