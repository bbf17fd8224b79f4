// Package hlog sets up the process-wide structured logger.
package hlog

import (
	"io"
	"log/slog"
	"os"
	"time"
)

// Log is the process-wide logger. Init must run before any other package
// logs; until then it defaults to a stdout text logger at info level so
// early startup errors are never silently dropped.
var Log = slog.New(slog.NewTextHandler(os.Stdout, nil))

// Init builds the process-wide logger from a level name and an optional
// log file path, mirroring the teacher's stdout+file multiwriter shape.
func Init(level string, logFile string) error {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	writers := []io.Writer{os.Stdout}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return err
		}
		writers = append(writers, f)
	}

	handler := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level: logLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	})

	Log = slog.New(handler)
	return nil
}
