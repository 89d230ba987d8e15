package log

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/small-frappuccino/rolemenu/pkg/util"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Category loggers. Application covers bootstrap and services, Discord covers
// gateway and interaction traffic, Database covers the SQLite store. Errors
// additionally go to stderr and error.log.
var (
	setupOnce sync.Once
	setupErr  error

	application *slog.Logger
	discord     *slog.Logger
	database    *slog.Logger
	errlog      *slog.Logger

	rotators []*lumberjack.Logger
)

func rotatingFile(logDir, name string) *lumberjack.Logger {
	lj := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, name),
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
	rotators = append(rotators, lj)
	return lj
}

func newLogger(console io.Writer, file *lumberjack.Logger) *slog.Logger {
	h := slog.NewTextHandler(io.MultiWriter(console, file), &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	return slog.New(h)
}

// SetupLogger initializes the category loggers. It is idempotent and safe to
// call from multiple goroutines; the first error is retained.
func SetupLogger() error {
	setupOnce.Do(func() {
		logDir := util.LogDir()
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			setupErr = err
			return
		}
		application = newLogger(os.Stdout, rotatingFile(logDir, "application.log"))
		discord = newLogger(os.Stdout, rotatingFile(logDir, "discord_events.log"))
		database = newLogger(os.Stdout, rotatingFile(logDir, "database.log"))
		errlog = newLogger(os.Stderr, rotatingFile(logDir, "error.log"))
	})
	return setupErr
}

// fallback is used when a category logger is requested before SetupLogger,
// which happens in tests and in early bootstrap failures.
func fallback() *slog.Logger {
	return slog.Default()
}

func ApplicationLogger() *slog.Logger {
	if application == nil {
		return fallback()
	}
	return application
}

func DiscordLogger() *slog.Logger {
	if discord == nil {
		return fallback()
	}
	return discord
}

func DatabaseLogger() *slog.Logger {
	if database == nil {
		return fallback()
	}
	return database
}

func ErrorLogger() *slog.Logger {
	if errlog == nil {
		return fallback()
	}
	return errlog
}

// Close closes the rotated log files. Intended for deferred use in main.
func Close() error {
	var first error
	for _, lj := range rotators {
		if err := lj.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
