package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"strings"
)

type Logger struct {
	l *slog.Logger
}

// New builds a logger writing to w. format is "json" or "text".
func New(w io.Writer, level, format string) *Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return &Logger{l: slog.New(handler)}
}

// Discard drops everything. Handy in tests.
func Discard() *Logger {
	return New(io.Discard, "error", "text")
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{l: l.l.With(args...)}
}

func (l *Logger) LogErrorf(format string, v ...any) {
	l.l.Error(fmt.Sprintf(format, v...))
}

func (l *Logger) LogWarn(format string, v ...any) {
	l.l.Warn(fmt.Sprintf(format, v...))
}

func (l *Logger) LogInfo(format string, v ...any) {
	l.l.Info(fmt.Sprintf(format, v...))
}

func (l *Logger) LogDebug(format string, v ...any) {
	l.l.Debug(fmt.Sprintf(format, v...))
}

// Access writes one structured access-log record.
func (l *Logger) Access(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.l.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

// StdLogger adapts the logger for http.Server.ErrorLog.
func (l *Logger) StdLogger() *log.Logger {
	return slog.NewLogLogger(l.l.Handler(), slog.LevelError)
}
