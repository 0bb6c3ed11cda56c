// Package migrations applies the versioned SQL files under migrations/<driver>
// with golang-migrate.
package migrations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"

	DefaultDir   = "migrations"
	DefaultTable = "schema_migrations"
)

type migrator interface {
	Up() error
	Close() (sourceErr error, databaseErr error)
}

var driverFactory = func(db *sql.DB, cfg Config) (database.Driver, error) {
	if cfg.Driver == DriverSQLite {
		return sqlite3.WithInstance(db, &sqlite3.Config{MigrationsTable: cfg.MigrationsTable})
	}
	return postgres.WithInstance(db, &postgres.Config{MigrationsTable: cfg.MigrationsTable})
}

var migratorFactory = func(sourceURL, driverName string, driver database.Driver) (migrator, error) {
	return migrate.NewWithDatabaseInstance(sourceURL, driverName, driver)
}

type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Config zero values fall back to DefaultDir, DefaultTable and postgres.
type Config struct {
	// Dir holds one subdirectory per driver. SQL files directly in Dir are
	// used when the driver subdirectory is absent.
	Dir             string
	Driver          string
	MigrationsTable string
	Logger          Logger
}

func (cfg Config) normalized() (Config, error) {
	driver, err := NormalizeDriver(cfg.Driver)
	if err != nil {
		return cfg, err
	}
	cfg.Driver = driver

	if strings.TrimSpace(cfg.Dir) == "" {
		cfg.Dir = DefaultDir
	}
	if strings.TrimSpace(cfg.MigrationsTable) == "" {
		cfg.MigrationsTable = DefaultTable
	}
	if cfg.Logger == nil {
		cfg.Logger = nopLogger{}
	}
	return cfg, nil
}

// NormalizeDriver maps the accepted DB_DRIVER spellings onto driver names.
func NormalizeDriver(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "postgres", "postgresql", "pg":
		return DriverPostgres, nil
	case "sqlite", "sqlite3":
		return DriverSQLite, nil
	default:
		return "", fmt.Errorf("migrations: unsupported driver %q", name)
	}
}

// sourceDir resolves dir to an absolute path, descending into the driver
// subdirectory when one exists.
func sourceDir(dir, driver string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("migrations: resolve dir: %w", err)
	}
	sub := filepath.Join(abs, driver)
	if info, err := os.Stat(sub); err == nil && info.IsDir() {
		return sub, nil
	}
	return abs, nil
}

func fileURL(dir string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(dir)}).String()
}

// Up applies every pending migration. golang-migrate takes no context, so a
// cancelled ctx closes the migrator and returns ctx.Err() without waiting.
func Up(ctx context.Context, db *sql.DB, cfg Config) error {
	if db == nil {
		return errors.New("migrations: db is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg, err := cfg.normalized()
	if err != nil {
		return err
	}
	dir, err := sourceDir(cfg.Dir, cfg.Driver)
	if err != nil {
		return err
	}

	driver, err := driverFactory(db, cfg)
	if err != nil {
		return fmt.Errorf("migrations: %s driver: %w", cfg.Driver, err)
	}
	m, err := migratorFactory(fileURL(dir), cfg.Driver, driver)
	if err != nil {
		return fmt.Errorf("migrations: init: %w", err)
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			srcErr, dbErr := m.Close()
			if srcErr != nil {
				cfg.Logger.Warn("Migrations source close error", "error", srcErr)
			}
			if dbErr != nil {
				cfg.Logger.Warn("Migrations db close error", "error", dbErr)
			}
		})
	}
	defer release()

	cfg.Logger.Info("Running SQL migrations", "dir", dir, "driver", cfg.Driver, "table", cfg.MigrationsTable)

	done := make(chan error, 1)
	go func() { done <- m.Up() }()

	select {
	case <-ctx.Done():
		release()
		return ctx.Err()
	case err := <-done:
		switch {
		case errors.Is(err, migrate.ErrNoChange):
			cfg.Logger.Info("No migrations to apply")
			return nil
		case err != nil:
			cfg.Logger.Error("Migrations failed", "error", err)
			return fmt.Errorf("migrations: up: %w", err)
		}
	}

	cfg.Logger.Info("Migrations applied successfully")
	return nil
}
