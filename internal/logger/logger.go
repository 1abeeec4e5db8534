// Package logger provides module-scoped structured logging built on log/slog.
//
// A single root logger is configured once per process with Init. Packages
// obtain their own scoped logger with Module:
//
//	log := logger.Module("tiler")
//	log.Debug("tiled image", "tiles", len(tiles))
//
// Console output is human-readable text on stderr (stdout stays free for
// command output and the stdio tool server). When a file path is configured,
// JSON records are additionally written to that file and rotated by
// lumberjack.
//
// Until Init is called, Module returns loggers writing text at info level to
// stderr, and the ROOMSTAMP_LOG_LEVEL environment variable is honored.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// EnvLogLevel overrides the configured level when set.
const EnvLogLevel = "ROOMSTAMP_LOG_LEVEL"

// Config controls logger output.
type Config struct {
	Level      string // debug, info, warn, error
	FilePath   string // optional JSON log file
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var (
	mu     sync.RWMutex
	root   *slog.Logger
	level  = new(slog.LevelVar)
	closer io.Closer
)

func init() {
	level.Set(ParseLevel(os.Getenv(EnvLogLevel)))
	root = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Init configures the root logger. It may be called again to reconfigure;
// previously returned module loggers keep their old handler.
func Init(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	lvl := ParseLevel(cfg.Level)
	if env := os.Getenv(EnvLogLevel); env != "" {
		lvl = ParseLevel(env)
	}
	level.Set(lvl)

	if closer != nil {
		_ = closer.Close()
		closer = nil
	}

	console := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	if cfg.FilePath == "" {
		root = slog.New(console)
		return nil
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    orDefault(cfg.MaxSizeMB, 50),
		MaxBackups: orDefault(cfg.MaxBackups, 3),
		MaxAge:     orDefault(cfg.MaxAgeDays, 28),
	}
	closer = rotator
	file := slog.NewJSONHandler(rotator, &slog.HandlerOptions{Level: level})
	root = slog.New(fanout{console, file})
	return nil
}

// Close flushes and closes the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	return err
}

// Module returns a logger tagged with the module name.
func Module(name string) *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root.With("module", name)
}

// NewForWriter returns a standalone logger, mainly for tests.
func NewForWriter(w io.Writer, lvl slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// ParseLevel maps a level name to a slog level; unknown names mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "trace":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
