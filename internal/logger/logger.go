package logger

import (
	"fmt"
	"log/slog"
	"os"
)

// Logging levels and environments the service understands
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"

	EnvDevelopment = "dev"
	EnvProduction  = "prod"
)

// Logger is the logging contract passed around the service
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	With(args ...any) Logger
}

// New picks the handler by environment: human-readable text for dev,
// JSON for prod
func New(environment string, level string) (Logger, error) {
	switch environment {
	case EnvDevelopment:
		return newWithHandler(textHandler, level), nil
	case EnvProduction:
		return newWithHandler(jsonHandler, level), nil
	default:
		return nil, fmt.Errorf("unknown environment %q, want %q or %q", environment, EnvDevelopment, EnvProduction)
	}
}

// NewNoOp creates a logger that discards all log messages
func NewNoOp() Logger {
	return &slogLogger{logger: slog.New(slog.DiscardHandler)}
}

type handlerKind int

const (
	textHandler handlerKind = iota
	jsonHandler
)

func newWithHandler(kind handlerKind, level string) Logger {
	opts := &slog.HandlerOptions{
		Level:       parseLevelString(level),
		AddSource:   true,
		ReplaceAttr: trimSourcePath,
	}

	var handler slog.Handler
	switch kind {
	case jsonHandler:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return &slogLogger{logger: slog.New(handler)}
}
