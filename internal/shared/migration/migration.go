// Package migration applies the embedded goose migrations for the
// configured database driver.
package migration

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/Wakkzz12/employee-leave-tracker/internal/config"

	"github.com/pressly/goose/v3"
)

//go:embed sql/postgres/*.sql sql/sqlite/*.sql
var embedMigrations embed.FS

func dialectAndDir(driver string) (string, string, error) {
	switch driver {
	case config.DriverPostgres, "":
		return "postgres", "sql/postgres", nil
	case config.DriverSQLite:
		return "sqlite3", "sql/sqlite", nil
	default:
		return "", "", fmt.Errorf("no migrations for driver %q", driver)
	}
}

// Up applies every pending migration.
func Up(ctx context.Context, db *sql.DB, driver string) error {
	dialect, dir, err := dialectAndDir(driver)
	if err != nil {
		return err
	}

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Down rolls back the most recent migration.
func Down(ctx context.Context, db *sql.DB, driver string) error {
	dialect, dir, err := dialectAndDir(driver)
	if err != nil {
		return err
	}

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	return goose.DownContext(ctx, db, dir)
}
