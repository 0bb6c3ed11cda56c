package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/akeren/launchwait/internal/log"
	"github.com/akeren/launchwait/pkg/migrations"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type DBConfig struct {
	Driver          string // postgres (default) or sqlite3; falls back to DB_DRIVER
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	SSLMode         string // Default: "require" for prod safety
	SQLitePath      string // Falls back to SQLITE_PATH, then launchwait.db
}

func (cfg *DBConfig) applyDefaults() {
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 10
	}
	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = 100
	}
	if cfg.ConnMaxLifetime == 0 {
		cfg.ConnMaxLifetime = time.Minute
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "require"
	}
	if cfg.Driver == "" {
		cfg.Driver = sanitizeEnv(GetValueFromEnvironmentVariable("DB_DRIVER", ""))
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = sanitizeEnv(GetValueFromEnvironmentVariable("SQLITE_PATH", "launchwait.db"))
	}
}

// ResolveDriver returns the normalized driver name NewDatabase would use.
func (cfg *DBConfig) ResolveDriver() (string, error) {
	cfg.applyDefaults()
	return migrations.NormalizeDriver(cfg.Driver)
}

func NewDatabase(logger *log.Logger, cfg *DBConfig) (*gorm.DB, error) {
	if cfg == nil {
		cfg = &DBConfig{}
	}

	driver, err := cfg.ResolveDriver()
	if err != nil {
		logger.Error("Unsupported database driver", "driver", cfg.Driver)
		return nil, err
	}

	dialector, err := buildDialector(logger, cfg, driver)
	if err != nil {
		return nil, err
	}

	// TranslateError turns driver-specific uniqueness violations into
	// gorm.ErrDuplicatedKey.
	gdb, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		logger.Error("Failed to connect to database", "driver", driver, "error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		logger.Error("Failed to get database instance", "error", err)
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if driver == migrations.DriverSQLite {
		// SQLite serializes writers; one connection avoids SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := sqlDB.Ping(); err != nil {
		logger.Error("Database ping failed", "error", err)
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	logger.Info("Database connection established successfully", "driver", driver)
	return gdb, nil
}

func buildDialector(logger *log.Logger, cfg *DBConfig, driver string) (gorm.Dialector, error) {
	if driver == migrations.DriverSQLite {
		logger.Info("Using SQLite database", "path", cfg.SQLitePath)
		return sqlite.Open(cfg.SQLitePath), nil
	}

	appDatabaseURL := sanitizeEnv(GetValueFromEnvironmentVariable("APP_DATABASE_URL", ""))
	if appDatabaseURL != "" {
		logger.Info("Using APP_DATABASE_URL for database connection")
		return postgres.Open(appDatabaseURL), nil
	}

	dsn, err := buildPostgresDSNFromEnv(logger, cfg)
	if err != nil {
		return nil, err
	}

	return postgres.Open(dsn), nil
}

// postgresEnv holds the POSTGRES_* connection settings.
type postgresEnv struct {
	host, port, user, password, dbName, sslMode string
}

func loadPostgresEnv() postgresEnv {
	get := func(key string) string {
		return sanitizeEnv(GetValueFromEnvironmentVariable(key, ""))
	}
	return postgresEnv{
		host:     get("POSTGRES_HOST"),
		port:     get("POSTGRES_PORT"),
		user:     get("POSTGRES_USER"),
		password: get("POSTGRES_PASSWORD"),
		dbName:   get("POSTGRES_DB_NAME"),
		sslMode:  get("POSTGRES_SSLMODE"),
	}
}

func (env postgresEnv) missing() []string {
	var names []string
	for _, v := range []struct{ name, value string }{
		{"POSTGRES_HOST", env.host},
		{"POSTGRES_PORT", env.port},
		{"POSTGRES_USER", env.user},
		{"POSTGRES_DB_NAME", env.dbName},
	} {
		if v.value == "" {
			names = append(names, v.name)
		}
	}
	return names
}

func buildPostgresDSNFromEnv(logger *log.Logger, cfg *DBConfig) (string, error) {
	env := loadPostgresEnv()
	if env.sslMode == "" {
		env.sslMode = cfg.SSLMode
	}

	if missing := env.missing(); len(missing) > 0 {
		joined := strings.Join(missing, ", ")
		logger.Error("Missing required database environment variables", "missing_vars", joined)
		return "", fmt.Errorf("missing required database env vars: %s", joined)
	}

	port, err := strconv.Atoi(env.port)
	if err != nil {
		logger.Error("Invalid POSTGRES_PORT", "error", err)
		return "", fmt.Errorf("invalid POSTGRES_PORT %q: %w", env.port, err)
	}

	logger.Info("Connecting to database", "host", env.host, "port", port, "dbname", env.dbName, "sslmode", env.sslMode)
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		env.host, port, env.user, env.password, env.dbName, env.sslMode), nil
}

func sanitizeEnv(v string) string {
	s := strings.TrimSpace(v)

	if len(s) >= 2 && ((s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'')) {
		s = s[1 : len(s)-1]
	}

	return s
}

func AutoMigrate(logger *log.Logger, db *gorm.DB, models ...interface{}) error {
	if db == nil {
		logger.Error("Cannot migrate: db is empty")
		return fmt.Errorf("cannot migrate: db is empty")
	}

	if err := db.AutoMigrate(models...); err != nil {
		logger.Error("Database migration failed", "error", err)
		return fmt.Errorf("auto-migrate failed: %w", err)
	}

	logger.Info("Database migration completed successfully")

	return nil
}

func CloseDatabase(db *gorm.DB, logger *log.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("Failed to get SQL DB instance", "error", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		logger.Error("Failed to close database", "error", err)
	} else {
		logger.Info("Database closed successfully")
	}
}
