package jsonlog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"sort"
)

type Level int8

const (
	LevelInfo Level = iota
	LevelError
	LevelFatal
	LevelOff
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "INFO"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return ""
	}
}

func ParseLevel(s string) Level {
	switch s {
	case "error", "ERROR":
		return LevelError
	case "fatal", "FATAL":
		return LevelFatal
	case "off", "OFF":
		return LevelOff
	default:
		return LevelInfo
	}
}

const slogLevelFatal = slog.Level(12)

func (l Level) slog() slog.Level {
	switch l {
	case LevelError:
		return slog.LevelError
	case LevelFatal:
		return slogLevelFatal
	case LevelOff:
		return slog.Level(1000)
	default:
		return slog.LevelInfo
	}
}

// Logger writes one JSON object per entry. Error and fatal entries carry a stack trace.
type Logger struct {
	logger *slog.Logger
}

func New(out io.Writer, minLevel Level) *Logger {
	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: minLevel.slog(),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == slogLevelFatal {
					return slog.String(slog.LevelKey, LevelFatal.String())
				}
			}
			return a
		},
	})
	return &Logger{logger: slog.New(handler)}
}

// Discard returns a Logger that drops every entry.
func Discard() *Logger {
	return New(io.Discard, LevelOff)
}

func (l *Logger) PrintInfo(message string, properties map[string]string) {
	l.print(slog.LevelInfo, message, properties, false)
}

func (l *Logger) PrintError(err error, properties map[string]string) {
	l.print(slog.LevelError, err.Error(), properties, true)
}

func (l *Logger) PrintFatal(err error, properties map[string]string) {
	l.print(slogLevelFatal, err.Error(), properties, true)
	os.Exit(1)
}

func (l *Logger) print(level slog.Level, message string, properties map[string]string, trace bool) {
	ctx := context.Background()
	if !l.logger.Enabled(ctx, level) {
		return
	}

	attrs := make([]slog.Attr, 0, 2)
	if len(properties) > 0 {
		keys := make([]string, 0, len(properties))
		for k := range properties {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		props := make([]any, 0, len(keys))
		for _, k := range keys {
			props = append(props, slog.String(k, properties[k]))
		}
		attrs = append(attrs, slog.Group("properties", props...))
	}
	if trace {
		attrs = append(attrs, slog.String("trace", string(debug.Stack())))
	}

	l.logger.LogAttrs(ctx, level, message, attrs...)
}

// Write lets the Logger back a log.Logger, e.g. http.Server.ErrorLog.
func (l *Logger) Write(message []byte) (n int, err error) {
	l.print(slog.LevelError, string(message), nil, false)
	return len(message), nil
}
