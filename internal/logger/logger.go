package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// StderrPath selects stderr as the log destination.
const StderrPath = "-"

// Options describes logger configuration supplied at creation time. Path,
// when set, names a file that is created and appended to; Writer is used
// otherwise and defaults to stderr, since stdout belongs to the TUI.
type Options struct {
	Level         string
	HumanReadable bool
	Path          string
	Writer        io.Writer
}

// Logger wraps zerolog. Every method is safe on a nil *Logger, so
// components can be built without one.
type Logger struct {
	base  zerolog.Logger
	close func() error
}

// New creates a Logger from opts.
func New(opts Options) (*Logger, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, fmt.Errorf("log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	writer, closeFn, err := destination(opts)
	if err != nil {
		return nil, err
	}

	output := writer
	if opts.HumanReadable {
		output = zerolog.ConsoleWriter{Out: writer, TimeFormat: time.RFC3339, NoColor: true}
	}

	return &Logger{
		base:  zerolog.New(output).Level(level).With().Timestamp().Logger(),
		close: closeFn,
	}, nil
}

func destination(opts Options) (io.Writer, func() error, error) {
	switch opts.Path {
	case "":
		if opts.Writer != nil {
			return opts.Writer, nil, nil
		}
		return os.Stderr, nil, nil
	case StderrPath:
		return os.Stderr, nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return file, file.Close, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{base: zerolog.Nop()}
}

// Close releases the log file, if the logger opened one. Derived loggers
// share the file, so only the root logger should be closed.
func (l *Logger) Close() error {
	if l == nil || l.close == nil {
		return nil
	}
	closeFn := l.close
	l.close = nil
	return closeFn()
}

// WithFields returns a derived logger that always writes the supplied fields.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{base: l.base.With().Fields(fields).Logger()}
}

// With returns a derived logger carrying a single extra field.
func (l *Logger) With(key string, value any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{base: l.base.With().Interface(key, value).Logger()}
}

// Info writes an informational entry. kv holds alternating keys and values.
func (l *Logger) Info(msg string, kv ...any) {
	if l == nil {
		return
	}
	write(l.base.Info(), nil, msg, kv)
}

// Debug writes a debug entry if enabled.
func (l *Logger) Debug(msg string, kv ...any) {
	if l == nil {
		return
	}
	write(l.base.Debug(), nil, msg, kv)
}

// Warn writes a warning. err may be nil.
func (l *Logger) Warn(err error, msg string, kv ...any) {
	if l == nil {
		return
	}
	write(l.base.Warn(), err, msg, kv)
}

// Error writes an error entry.
func (l *Logger) Error(err error, msg string, kv ...any) {
	if l == nil {
		return
	}
	write(l.base.Error(), err, msg, kv)
}

func write(event *zerolog.Event, err error, msg string, kv []any) {
	if event == nil {
		return
	}
	if err != nil {
		event = event.Err(err)
	}
	if len(kv) > 0 {
		event = event.Fields(kv)
	}
	event.Msg(msg)
}
