// Package logging provides component-scoped structured logging with a
// rotating file sink and optional console output.
//
// Basic usage:
//
//	if err := logging.Init(logging.Config{Level: "info"}); err != nil {
//	    return err
//	}
//	defer logging.Close()
//
//	logger := logging.Get("scheduler")
//	logger.Info("pass complete", "devices", 3)
//
// Loggers may be obtained before Init; they discard output until Init runs
// and pick up the new sinks afterwards.
package logging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// Level represents a logging level.
type Level int

// Log levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// ErrInvalidLevel is returned when an invalid log level string is provided.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel parses a string into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
	}
}

// Config configures the logging system.
type Config struct {
	// Level is the default log level (debug, info, warn, error).
	Level string

	// Path is the log file path. Empty uses DefaultLogPath().
	Path string

	// Rotation configures log file rotation.
	Rotation RotationConfig

	// Components maps component names to their log levels.
	Components map[string]string

	// ConsoleLevel enables stderr output at the given level.
	// Empty disables console output.
	ConsoleLevel string
}

// Logger is a component-scoped logger. The zero value is not usable;
// obtain loggers with Get.
type Logger struct {
	component string
	fields    []interface{}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.log(LevelDebug, msg, args...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...interface{}) {
	l.log(LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.log(LevelWarn, msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...interface{}) {
	l.log(LevelError, msg, args...)
}

// With returns a new logger that attaches the given key/value pairs to
// every message.
func (l *Logger) With(args ...interface{}) *Logger {
	fields := make([]interface{}, 0, len(l.fields)+len(args))
	fields = append(fields, l.fields...)
	fields = append(fields, args...)
	return &Logger{component: l.component, fields: fields}
}

func (l *Logger) log(level Level, msg string, args ...interface{}) {
	globalState.mu.RLock()
	file := globalState.file
	console := globalState.console
	consoleLevel := globalState.consoleLevel
	threshold := globalState.levelFor(l.component)
	globalState.mu.RUnlock()

	if file == nil || level < threshold {
		return
	}

	if len(l.fields) > 0 {
		all := make([]interface{}, 0, len(l.fields)+len(args))
		all = append(all, l.fields...)
		args = append(all, args...)
	}

	logTo(file.WithPrefix(l.component), level, msg, args...)
	if console != nil && level >= consoleLevel {
		logTo(console.WithPrefix(l.component), level, msg, args...)
	}
}

// logTo writes a log message to the given logger at the specified level.
func logTo(logger *log.Logger, level Level, msg string, args ...interface{}) {
	switch level {
	case LevelDebug:
		logger.Debug(msg, args...)
	case LevelInfo:
		logger.Info(msg, args...)
	case LevelWarn:
		logger.Warn(msg, args...)
	case LevelError:
		logger.Error(msg, args...)
	}
}

// state holds the global logging state.
type state struct {
	mu           sync.RWMutex
	writer       *RotatingWriter
	file         *log.Logger
	console      *log.Logger
	consoleLevel Level
	level        Level
	components   map[string]Level
	loggers      map[string]*Logger
}

// levelFor returns the effective level for a component.
// Must be called with s.mu held.
func (s *state) levelFor(component string) Level {
	if lvl, ok := s.components[component]; ok {
		return lvl
	}
	return s.level
}

var globalState = &state{
	components: make(map[string]Level),
	loggers:    make(map[string]*Logger),
}

// Init initializes the logging system. Calling Init again replaces the
// previous configuration and closes the previous log file.
func Init(cfg Config) error {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}

	components := make(map[string]Level, len(cfg.Components))
	for comp, lvl := range cfg.Components {
		parsed, err := ParseLevel(lvl)
		if err != nil {
			return fmt.Errorf("parsing level for component %s: %w", comp, err)
		}
		components[comp] = parsed
	}

	var (
		console      *log.Logger
		consoleLevel Level
	)
	if cfg.ConsoleLevel != "" {
		consoleLevel, err = ParseLevel(cfg.ConsoleLevel)
		if err != nil {
			return fmt.Errorf("parsing console level: %w", err)
		}
		console = log.NewWithOptions(os.Stderr, log.Options{
			Level:           log.DebugLevel,
			ReportTimestamp: true,
			TimeFormat:      "15:04:05",
		})
	}

	path := cfg.Path
	if path == "" {
		path = DefaultLogPath()
	}

	writer, err := NewRotatingWriter(path, cfg.Rotation)
	if err != nil {
		return fmt.Errorf("creating log writer: %w", err)
	}

	file := log.NewWithOptions(writer, log.Options{
		Level:           log.DebugLevel,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})

	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if globalState.writer != nil {
		if err := globalState.writer.Close(); err != nil {
			_ = writer.Close()
			return fmt.Errorf("closing existing writer: %w", err)
		}
	}

	globalState.writer = writer
	globalState.file = file
	globalState.console = console
	globalState.consoleLevel = consoleLevel
	globalState.level = level
	globalState.components = components

	return nil
}

// Get returns the logger for the given component.
func Get(component string) *Logger {
	globalState.mu.RLock()
	logger, ok := globalState.loggers[component]
	globalState.mu.RUnlock()
	if ok {
		return logger
	}

	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if logger, ok := globalState.loggers[component]; ok {
		return logger
	}
	logger = &Logger{component: component}
	globalState.loggers[component] = logger
	return logger
}

// Close flushes and closes the log file. Loggers discard output afterwards.
func Close() error {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	globalState.file = nil
	globalState.console = nil
	globalState.components = make(map[string]Level)

	if globalState.writer == nil {
		return nil
	}
	err := globalState.writer.Close()
	globalState.writer = nil
	if err != nil {
		return fmt.Errorf("closing log writer: %w", err)
	}
	return nil
}

// DefaultLogPath returns $XDG_STATE_HOME/spinkeep/spinkeep.log.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, "spinkeep", "spinkeep.log")
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Level:    "info",
		Path:     DefaultLogPath(),
		Rotation: DefaultRotationConfig(),
	}
}
