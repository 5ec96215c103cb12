package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed *.sql
var MigrationFiles embed.FS

// BlobTable is the table every migration here manages.
const BlobTable = "blobs"

// ErrSchemaBehind is returned when auto-migration is off and the blob table
// schema is older than the embedded migrations.
var ErrSchemaBehind = errors.New("blob table schema is behind")

// RunMigrations brings the blob table schema up to date. With autoMigrate
// false it only checks that the database already is at the latest version.
func RunMigrations(db *sql.DB, autoMigrate bool) error {
	src, err := iofs.New(MigrationFiles, ".")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	latest, err := LatestVersion(src)
	if err != nil {
		return err
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	if dirty {
		// The failed step may not have created the blob table. Roll the
		// recorded version back one step so Up applies it again.
		prev, err := PreviousVersion(src, version)
		if err != nil {
			return err
		}
		slog.Warn("[Migrations] Blob table migration left dirty, re-applying",
			"dirty_version", version,
			"reset_to", prev)
		if err := m.Force(prev); err != nil {
			return fmt.Errorf("failed to reset dirty migration %d: %w", version, err)
		}
		if prev < 0 {
			version = 0
		} else {
			version = uint(prev)
		}
	}

	if !autoMigrate {
		if version < latest {
			return fmt.Errorf("%w: at version %d, need %d (enable storage.auto_migrate or migrate manually)",
				ErrSchemaBehind, version, latest)
		}
		slog.Info("[Migrations] Auto-migration disabled, schema current", "version", version)
		return nil
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			slog.Debug("[Migrations] Blob table schema is up to date", "version", version)
			return nil
		}
		return fmt.Errorf("failed to migrate %s table: %w", BlobTable, err)
	}

	slog.Info("[Migrations] Blob table migrated",
		"from_version", version,
		"to_version", latest)
	return nil
}

// LatestVersion returns the highest migration version in src.
func LatestVersion(src source.Driver) (uint, error) {
	version, err := src.First()
	if err != nil {
		return 0, fmt.Errorf("no migrations found: %w", err)
	}
	for {
		next, err := src.Next(version)
		if errors.Is(err, fs.ErrNotExist) {
			return version, nil
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read migration after %d: %w", version, err)
		}
		version = next
	}
}

// PreviousVersion returns the version before v in src, or -1 when v is the
// first migration. -1 is the value migrate.Force uses for "no version".
func PreviousVersion(src source.Driver, v uint) (int, error) {
	prev, err := src.Prev(v)
	if errors.Is(err, fs.ErrNotExist) {
		return -1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read migration before %d: %w", v, err)
	}
	return int(prev), nil
}
