package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

const (
	// LogLevelEnv selects the minimum level (debug/info/warn/error).
	LogLevelEnv = "WARPSESS_LOG_LEVEL"
	// LogFormatEnv forces "text" or "json" output.
	LogFormatEnv = "WARPSESS_LOG_FORMAT"
	// LogFileEnv names a file that receives a JSON copy of the CLI logs.
	LogFileEnv = "WARPSESS_LOG_FILE"
)

// SlogLogger adapts a *slog.Logger to Logger. Messages are formatted
// before they reach slog; attributes can be attached with With.
type SlogLogger struct {
	l *slog.Logger
}

// NewSlogLogger writes text records when w is a terminal and JSON records
// otherwise, unless LogFormatEnv says differently. The level comes from
// LogLevelEnv.
func NewSlogLogger(w io.Writer) *SlogLogger {
	opts := &slog.HandlerOptions{Level: ParseLevel(os.Getenv(LogLevelEnv))}
	var h slog.Handler
	if useText(w, os.Getenv(LogFormatEnv)) {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return &SlogLogger{l: slog.New(h)}
}

// NewSlogLoggerFrom wraps an existing slog logger.
func NewSlogLoggerFrom(l *slog.Logger) *SlogLogger {
	return &SlogLogger{l: l}
}

func useText(w io.Writer, format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "text":
		return true
	case "json":
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ParseLevel converts a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// With returns a logger that adds args as attributes to every record.
func (s *SlogLogger) With(args ...any) *SlogLogger {
	return &SlogLogger{l: s.l.With(args...)}
}

// Slog exposes the underlying logger.
func (s *SlogLogger) Slog() *slog.Logger { return s.l }

func (s *SlogLogger) Info(format string, args ...interface{}) {
	s.l.Info(fmt.Sprintf(format, args...))
}

func (s *SlogLogger) Warning(format string, args ...interface{}) {
	s.l.Warn(fmt.Sprintf(format, args...))
}

func (s *SlogLogger) Error(format string, args ...interface{}) {
	s.l.Error(fmt.Sprintf(format, args...))
}

// Close is a no-op; the writer belongs to the caller.
func (s *SlogLogger) Close() error { return nil }

var _ Logger = (*SlogLogger)(nil)
