// Package logging provides leveled, optionally colored console logging with
// an optional file sink. Console lines are human-readable; the file receives
// one JSON object per line so runs can be grepped or parsed afterwards.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/backmassage/dirlaunch/internal/config"
	"github.com/backmassage/dirlaunch/internal/term"
)

const timeFormat = "2006-01-02 15:04:05"

// Logger wraps a zerolog.Logger with the printf-style leveled methods used
// throughout dirlaunch. ERROR lines go to stderr, everything else to stdout.
type Logger struct {
	zl   zerolog.Logger
	mu   *sync.Mutex
	file *os.File
}

// NewLogger configures terminal colors from cfg and optionally opens
// cfg.LogFile in append mode. Call Close when done.
func NewLogger(cfg *config.Config) (*Logger, error) {
	term.Configure(cfg.ColorMode)

	var file *os.File
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, fmt.Errorf("logging: ensure log dir: %w", err)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("logging: open log file: %w", err)
		}
		file = f
	}

	var sink io.Writer
	if file != nil {
		sink = file
	}
	l := New(os.Stdout, os.Stderr, sink, cfg.Verbose, !term.Enabled())
	l.file = file
	return l, nil
}

// New builds a Logger over explicit writers. sink may be nil. Tests use it
// to capture output.
func New(stdout, stderr, sink io.Writer, verbose, noColor bool) *Logger {
	console := levelSplitWriter{
		out: consoleWriter(stdout, noColor),
		err: consoleWriter(stderr, noColor),
	}

	var w io.Writer = console
	if sink != nil {
		w = zerolog.MultiLevelWriter(console, sink)
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return &Logger{
		zl: zerolog.New(w).Level(level).With().Timestamp().Logger(),
		mu: &sync.Mutex{},
	}
}

func consoleWriter(out io.Writer, noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    noColor,
		TimeFormat: timeFormat,
	}
}

// levelSplitWriter sends error-and-above events to err and the rest to out.
type levelSplitWriter struct {
	out io.Writer
	err io.Writer
}

func (w levelSplitWriter) Write(p []byte) (int, error) {
	return w.out.Write(p)
}

func (w levelSplitWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level >= zerolog.ErrorLevel {
		return w.err.Write(p)
	}
	return w.out.Write(p)
}

// With returns a child Logger that adds key=value to every line. The child
// shares the parent's file; only the parent should be closed.
func (l *Logger) With(key, value string) *Logger {
	return &Logger{
		zl: l.zl.With().Str(key, value).Logger(),
		mu: l.mu,
	}
}

// Zerolog exposes the underlying logger for structured events.
func (l *Logger) Zerolog() *zerolog.Logger {
	return &l.zl
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// Info logs at INFO level.
func (l *Logger) Info(format string, args ...any) {
	l.zl.Info().Msgf(format, args...)
}

// Success logs at INFO level with ok=true.
func (l *Logger) Success(format string, args ...any) {
	l.zl.Info().Bool("ok", true).Msgf(format, args...)
}

// Warn logs at WARN level.
func (l *Logger) Warn(format string, args ...any) {
	l.zl.Warn().Msgf(format, args...)
}

// Error logs at ERROR level, to stderr.
func (l *Logger) Error(format string, args ...any) {
	l.zl.Error().Msgf(format, args...)
}

// Debug logs at DEBUG level; dropped unless the logger was built verbose.
func (l *Logger) Debug(format string, args ...any) {
	l.zl.Debug().Msgf(format, args...)
}
