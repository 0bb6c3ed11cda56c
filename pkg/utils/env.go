package utils

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

func GetEnvTrimmed(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func GetEnvTrimmedOrDefault(key, defaultValue string) string {
	v := strings.TrimSpace(os.Getenv(key))

	if v == "" {
		return defaultValue
	}

	return v
}

// GetEnvIntOrDefault parses a positive integer, falling back on absence or
// garbage.
func GetEnvIntOrDefault(key string, defaultValue int) int {
	raw := GetEnvTrimmed(key)
	if raw == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return defaultValue
	}

	return parsed
}

// GetEnvDurationOrDefault parses a positive time.ParseDuration value.
func GetEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	parsed, err := time.ParseDuration(GetEnvTrimmed(key))
	if err != nil || parsed <= 0 {
		return defaultValue
	}

	return parsed
}

// GetEnvBoolOrDefault falls back when the variable is unset or not a bool.
func GetEnvBoolOrDefault(key string, defaultValue bool) bool {
	parsed, err := strconv.ParseBool(GetEnvTrimmed(key))
	if err != nil {
		return defaultValue
	}

	return parsed
}

// GetEnvList splits a comma-separated variable, dropping blank items. It
// returns nil when nothing is left.
func GetEnvList(key string) []string {
	var items []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return items
}
