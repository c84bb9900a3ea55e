package colorbag

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with colorbag-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithSeed adds a seed field to the logger.
func (l *Logger) WithSeed(seed int64) *Logger {
	return &Logger{
		Logger: l.Logger.With("seed", seed),
	}
}

// WithK adds a vocabulary size field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithImages adds an image count field to the logger.
func (l *Logger) WithImages(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("images", count),
	}
}

// LogCollect logs a corpus collection run.
func (l *Logger) LogCollect(ctx context.Context, images int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "corpus collection failed",
			"images", images,
			"duration", duration,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "corpus collected",
			"images", images,
			"duration", duration,
		)
	}
}

// LogTrain logs a vocabulary training run.
func (l *Logger) LogTrain(ctx context.Context, k, iterations int, objective float64, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "vocabulary training failed",
			"k", k,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "vocabulary trained",
			"k", k,
			"iterations", iterations,
			"objective", objective,
			"duration", duration,
		)
	}
}

// LogBuild logs a bag building run.
func (l *Logger) LogBuild(ctx context.Context, images int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "bag building failed",
			"images", images,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "bags built",
			"images", images,
			"duration", duration,
		)
	}
}

// LogExport logs a dataset export.
func (l *Logger) LogExport(ctx context.Context, path string, rows int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "dataset export failed",
			"path", path,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "dataset exported",
			"path", path,
			"rows", rows,
		)
	}
}

// LogPublish logs a dataset publish to a blob store.
func (l *Logger) LogPublish(ctx context.Context, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "publish failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "dataset published",
			"name", name,
		)
	}
}
