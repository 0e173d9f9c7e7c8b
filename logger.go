package argoindex

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	slogzap "github.com/samber/slog-zap/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps slog.Logger with index store context.
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
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewZapLogger routes slog records through zap, writing to w (stderr when
// nil). format is "json" or "console". The zap logger is returned too so the
// caller can Sync it.
func NewZapLogger(level slog.Level, format string, w io.Writer) (*Logger, *zap.Logger) {
	if w == nil {
		w = os.Stderr
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.TimeKey = "time"

	var enc zapcore.Encoder
	if strings.EqualFold(format, "console") {
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), zapLevel(level))
	zl := zap.New(core, zap.AddStacktrace(zapcore.ErrorLevel))

	handler := slogzap.Option{Level: level, Logger: zl}.NewZapHandler()
	return NewLogger(handler), zl
}

func zapLevel(l slog.Level) zapcore.Level {
	switch {
	case l < slog.LevelInfo:
		return zapcore.DebugLevel
	case l < slog.LevelWarn:
		return zapcore.InfoLevel
	case l < slog.LevelError:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // unreachable
	}))
}

// WithHost adds the GDAC host to the logger.
func (l *Logger) WithHost(host string) *Logger {
	return &Logger{Logger: l.Logger.With("host", host)}
}

// WithIndex adds the index file and backend to the logger.
func (l *Logger) WithIndex(indexFile string, backend Backend) *Logger {
	return &Logger{Logger: l.Logger.With("index", indexFile, "backend", string(backend))}
}

// LogLoad logs an index load.
func (l *Logger) LogLoad(ctx context.Context, src string, rows int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "index load failed",
			"src", src,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "index loaded",
		"src", src,
		"records", rows,
		"elapsed", elapsed,
	)
}

// LogSearch logs a search run.
func (l *Logger) LogSearch(ctx context.Context, cname string, matches int, cached bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"cname", cname,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "search completed",
		"cname", cname,
		"matches", matches,
		"cached", cached,
	)
}

// LogExport logs a dataframe export.
func (l *Logger) LogExport(ctx context.Context, path string, rows int, cached bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "export failed",
			"path", path,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "export completed",
		"path", path,
		"rows", rows,
		"cached", cached,
	)
}

// LogCache logs an artifact cache operation.
func (l *Logger) LogCache(ctx context.Context, op, name string, err error) {
	if err != nil {
		l.WarnContext(ctx, "cache "+op+" failed",
			"name", name,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "cache "+op,
		"name", name,
	)
}
