// Package logging configures structured logging for the service.
// It follows the same conventions as the log/slog wrappers of our other services:
// levels and formats come from <SERVICE>_LOG_LEVEL and <SERVICE>_LOG_FMT, and
// request scoped loggers travel on the context.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"
)

type (
	// Level determines the importance or severity of a log record
	Level = slog.Level

	// Format determines the output format of the log records
	Format string
)

// All available log levels
const (
	LevelInfo    Level = slog.LevelInfo
	LevelDebug   Level = slog.LevelDebug
	LevelWarn    Level = slog.LevelWarn
	LevelError   Level = slog.LevelError
	LevelDisable Level = math.MaxInt
)

// All available log formats
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Config represents log configuration.
type Config struct {
	Level  Level
	Format Format
}

// LoadConfig will load the log Config of the service from environment variables.
// So a service "QUERYGUARD" will load the log level from "QUERYGUARD_LOG_LEVEL".
//
// Available log levels are: "debug", "info", "warn", "error", "disable"
// Available log fmts are: "text", "json"
//
// If the environment variables are not found it will use default values.
func LoadConfig(service string) (Config, error) {
	logLevel, err := ParseLevel(os.Getenv(service + "_LOG_LEVEL"))
	if err != nil {
		return Config{}, err
	}
	logFormat, err := ParseFormat(os.Getenv(service + "_LOG_FMT"))
	if err != nil {
		return Config{}, err
	}
	return Config{Level: logLevel, Format: logFormat}, nil
}

// NewHandler creates the handler described by cfg writing to w.
func NewHandler(w io.Writer, cfg Config) (slog.Handler, error) {
	opts := &slog.HandlerOptions{Level: cfg.Level}
	switch cfg.Format {
	case FormatText:
		return slog.NewTextHandler(w, opts), nil
	case FormatJSON:
		return slog.NewJSONHandler(w, opts), nil
	default:
		return nil, fmt.Errorf("unknown log format: %v", cfg.Format)
	}
}

// Configure will change the default logger configuration.
// It should be called as soon as possible, usually on the main of your program.
func Configure(cfg Config) error {
	handler, err := NewHandler(os.Stderr, cfg)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// FromCtx gets the logger associated with the given context. The default logger
// is returned if the context has no logger associated with it.
func FromCtx(ctx context.Context) *slog.Logger {
	log, ok := ctx.Value(loggerKey).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return log
}

// NewContext creates a new [context.Context] with the given logger associated with it.
// Call [FromCtx] to retrieve the logger.
func NewContext(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, log)
}

// key is the type used to store data on contexts.
type key int

const (
	loggerKey key = iota
)

// ParseLevel parses the string and returns the corresponding [Level].
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "info", "":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	case "warn":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "disable":
		return LevelDisable, nil
	default:
		return 0, fmt.Errorf("invalid log level: %q", level)
	}
}

// ParseFormat parses the string and returns the corresponding [Format].
func ParseFormat(format string) (Format, error) {
	switch Format(format) {
	case FormatText, FormatJSON:
		return Format(format), nil
	case "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown log format %q", format)
	}
}
