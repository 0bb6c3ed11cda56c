// Package log wraps log/slog with correlation IDs carried through
// request contexts.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

var CorrelatedIDKey contextKey = "correlation_id"

const LoggerKeyForContext contextKey = "logger"

type Logger struct {
	*slog.Logger
}

func NewLoggerWithJSONOutput() *Logger {
	return NewLoggerWithWriter(os.Stdout)
}

// NewLoggerWithWriter writes to w at the LOG_LEVEL level (debug, info, warn,
// error; info when unset). Records are JSON unless LOG_FORMAT=text.
func NewLoggerWithWriter(w io.Writer) *Logger {
	opts := &slog.HandlerOptions{Level: levelFromEnv()}

	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(os.Getenv("LOG_FORMAT")), "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return &Logger{Logger: slog.New(handler)}
}

func levelFromEnv() slog.Level {
	var level slog.Level
	raw := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if strings.EqualFold(raw, "warning") {
		raw = "warn"
	}
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (l *Logger) WithCorrelationID(ctx context.Context) *Logger {
	return &Logger{Logger: l.Logger.With(string(CorrelatedIDKey), GetOrGenerateCorrelationID(ctx))}
}

func GetOrGenerateCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelatedIDKey).(string); ok && id != "" {
		return id
	}
	return GenerateCorrelationID()
}

func GenerateCorrelationID() string {
	return uuid.NewString()
}

// GetLoggerInstanceFromContext prefers the logger injected by the router,
// then fallbackLogger tagged with the context's correlation ID.
func GetLoggerInstanceFromContext(ctx context.Context, fallbackLogger *Logger) *Logger {
	if ctx == nil {
		if fallbackLogger != nil {
			return fallbackLogger
		}
		return NewLoggerWithJSONOutput()
	}

	if l, ok := ctx.Value(LoggerKeyForContext).(*Logger); ok {
		return l
	}
	if fallbackLogger == nil {
		fallbackLogger = NewLoggerWithJSONOutput()
	}
	return fallbackLogger.WithCorrelationID(ctx)
}
