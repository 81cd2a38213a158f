// Package logger provides the logging interface shared by the warpsess
// packages together with its slog, file, tee and test backends.
package logger

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Logger is the printf-style logger handed to sessions, controllers and
// form collaborators.
type Logger interface {
	// Info logs progress, e.g. "site: stored session is still logged in".
	Info(format string, args ...interface{})

	// Warning logs a recoverable problem, e.g. "site: login attempt 1/3 failed".
	Warning(format string, args ...interface{})

	// Error logs a failure, e.g. "site: login failed after 3 attempts".
	Error(format string, args ...interface{})

	// Close releases what the logger owns. Calling it twice is allowed.
	Close() error
}

// FileLogger appends JSON records to a file it owns.
type FileLogger struct {
	*SlogLogger
	f    *os.File
	once sync.Once
}

// OpenFile creates the parent folders of path and opens it for appending.
// The level follows LogLevelEnv.
func OpenFile(path string) (*FileLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	h := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: ParseLevel(os.Getenv(LogLevelEnv))})
	return &FileLogger{SlogLogger: NewSlogLoggerFrom(slog.New(h)), f: f}, nil
}

// Close closes the file once.
func (fl *FileLogger) Close() error {
	var err error
	fl.once.Do(func() { err = fl.f.Close() })
	return err
}

// NopLogger discards everything.
type NopLogger struct{}

func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

func (n *NopLogger) Info(format string, args ...interface{}) {}

func (n *NopLogger) Warning(format string, args ...interface{}) {}

func (n *NopLogger) Error(format string, args ...interface{}) {}

func (n *NopLogger) Close() error {
	return nil
}

// MockLogger records formatted messages per level for assertions in tests.
// The exported slices must only be read once the code under test is done.
type MockLogger struct {
	mu           sync.Mutex
	InfoCalls    []string
	WarningCalls []string
	ErrorCalls   []string
	CloseCalled  bool
}

func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (m *MockLogger) record(dst *[]string, format string, args []interface{}) {
	msg := fmt.Sprintf(format, args...)
	m.mu.Lock()
	*dst = append(*dst, msg)
	m.mu.Unlock()
}

func (m *MockLogger) Info(format string, args ...interface{}) {
	m.record(&m.InfoCalls, format, args)
}

func (m *MockLogger) Warning(format string, args ...interface{}) {
	m.record(&m.WarningCalls, format, args)
}

func (m *MockLogger) Error(format string, args ...interface{}) {
	m.record(&m.ErrorCalls, format, args)
}

func (m *MockLogger) Close() error {
	m.mu.Lock()
	m.CloseCalled = true
	m.mu.Unlock()
	return nil
}

var (
	_ Logger = (*FileLogger)(nil)
	_ Logger = (*NopLogger)(nil)
	_ Logger = (*MockLogger)(nil)
)
