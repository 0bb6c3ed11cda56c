package main

import (
	"context"
	"fmt"
	"time"

	"github.com/akeren/launchwait/config"
	"github.com/akeren/launchwait/pkg/migrations"
	"github.com/urfave/cli/v3"
)

func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Run database migrations and exit",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "driver",
				Aliases: []string{"d"},
				Usage:   "Database driver (postgres or sqlite)",
				Sources: cli.EnvVars("DB_DRIVER"),
			},
			&cli.StringFlag{
				Name:    "sqlite-path",
				Usage:   "SQLite database file",
				Sources: cli.EnvVars("SQLITE_PATH"),
			},
			&cli.StringFlag{
				Name:    "dir",
				Usage:   "Directory holding per-driver migration folders",
				Value:   "migrations",
				Sources: cli.EnvVars("MIGRATIONS_DIR"),
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Give up after this long",
				Value: 5 * time.Minute,
			},
		},
		Action: r.Migrate,
	}
}

func (r *Runner) Migrate(ctx context.Context, cmd *cli.Command) error {
	dbCfg := &config.DBConfig{
		Driver:     cmd.String("driver"),
		SQLitePath: cmd.String("sqlite-path"),
	}

	driver, err := dbCfg.ResolveDriver()
	if err != nil {
		return err
	}

	db, err := r.openDB(r.logger, dbCfg)
	if err != nil {
		return fmt.Errorf("connect for migration: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get SQL DB instance: %w", err)
	}
	defer func() {
		// The migrate driver may already have closed it.
		_ = sqlDB.Close()
	}()

	ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
	defer cancel()

	if err := migrations.Up(ctx, sqlDB, migrations.Config{
		Dir:    cmd.String("dir"),
		Driver: driver,
		Logger: r.logger,
	}); err != nil {
		return err
	}

	fmt.Fprintln(r.output, "Database migrations completed")
	return nil
}
