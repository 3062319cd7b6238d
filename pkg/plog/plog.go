// Package plog builds the application logger. The returned handle is
// passed down explicitly; nothing in this package touches slog's
// process-global default.
package plog

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"

	"github.com/paulschiretz/pgl-mirror/pkg/util"
)

// Options selects the sinks and verbosity of the logger.
type Options struct {
	// Level is one of debug, info, warn, error. Unknown strings mean info.
	Level string
	// NoColor forces plain console output even on a terminal.
	NoColor bool
	// FilePath, when set, additionally writes JSON records to a daily
	// rolling log file at that path.
	FilePath string
}

// New builds the logger. The returned closer flushes and closes the
// file sink, if any; callers must Close it on shutdown.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	level := LevelFromString(opts.Level)

	console := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		NoColor:    opts.NoColor || !isatty.IsTerminal(os.Stderr.Fd()),
		TimeFormat: "15:04:05.000",
	})

	if opts.FilePath == "" {
		return slog.New(console), nopCloser{}, nil
	}

	logPath, err := util.ExpandPath(opts.FilePath)
	if err != nil {
		return nil, nil, err
	}
	fw, err := newRollingWriter(logPath)
	if err != nil {
		return nil, nil, err
	}
	file := slog.NewJSONHandler(fw, &slog.HandlerOptions{Level: level})

	return slog.New(NewMultiHandler(console, file)), fw, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// LevelFromString maps a config string to a slog level, defaulting to
// info for anything it does not recognize.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
