package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/akeren/launchwait/internal/log"
	"github.com/akeren/launchwait/pkg/utils"
	"github.com/joho/godotenv"
)

const AppEnvKey = "APP_ENV"

var autoMigrateEnvs = []string{"", "dev", "development", "local", "test", "testing"}

// envFiles lists ENV_FILE entries, or .env when ENV_FILE is empty.
func envFiles() []string {
	if files := utils.GetEnvList("ENV_FILE"); len(files) > 0 {
		return files
	}
	return []string{".env"}
}

// InitializeEnvFile loads dotenv files without overriding variables that
// are already set. SKIP_DOTENV=true turns it off.
func InitializeEnvFile(logger *log.Logger) {
	if utils.GetEnvBoolOrDefault("SKIP_DOTENV", false) {
		logger.Debug("Skipping dotenv load (SKIP_DOTENV=true)")
		return
	}

	files := envFiles()
	err := godotenv.Load(files...)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Debug("No dotenv file found", "files", files)
	case err != nil:
		logger.Warn("Failed to load dotenv file", "files", files, "error", err)
	default:
		logger.Info("Environment loaded from dotenv", "files", files)
	}
}

func GetValueFromEnvironmentVariable(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func GetAppEnv() string {
	return strings.ToLower(utils.GetEnvTrimmed(AppEnvKey))
}

// ValidateAutoMigrateAllowed refuses --auto-migrate outside development-like
// environments.
func ValidateAutoMigrateAllowed(appEnv string) error {
	env := strings.ToLower(strings.TrimSpace(appEnv))
	if slices.Contains(autoMigrateEnvs, env) {
		return nil
	}
	return fmt.Errorf("--auto-migrate is not allowed when %s=%q", AppEnvKey, env)
}
