package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides component-scoped logging for widget trees.
// File-backed loggers write to a session-specific file in ~/.widgetforge/logs/.
//
// Loggers derived with Named share the parent's sink and level, so a whole
// widget tree writes to one file with hierarchical component names such as
// "LoginView.username".
type Logger struct {
	sessionID string
	component string
	sugar     *zap.SugaredLogger
	level     zap.AtomicLevel
	file      *os.File
	logPath   string
	closeOnce *sync.Once
}

var (
	// Global session ID for the current execution
	sessionID     string
	sessionIDOnce sync.Once

	// logDir is the directory where log files are stored
	logDir string

	// initOnce ensures directory initialization happens once
	initOnce sync.Once

	// initErr stores any error from directory initialization
	initErr error
)

// getSessionID returns or creates the session ID for this execution
func getSessionID() string {
	sessionIDOnce.Do(func() {
		sessionID = uuid.New().String()
	})
	return sessionID
}

// initLogDirectory ensures the log directory exists
func initLogDirectory() error {
	initOnce.Do(func() {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			initErr = fmt.Errorf("failed to get home directory: %w", err)
			return
		}

		logDir = filepath.Join(homeDir, ".widgetforge", "logs")
		if err := os.MkdirAll(logDir, 0750); err != nil {
			initErr = fmt.Errorf("failed to create log directory: %w", err)
			return
		}
	})
	return initErr
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	cfg.EncodeName = func(name string, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString("[" + name + "]")
	}
	cfg.EncodeLevel = func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString("[" + l.CapitalString() + "]")
	}
	cfg.CallerKey = ""
	cfg.ConsoleSeparator = " "
	return cfg
}

func newLogger(component string, sink zapcore.WriteSyncer, file *os.File, logPath string) *Logger {
	level := zap.NewAtomicLevelAt(zapcore.DebugLevel)
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), sink, level)
	return &Logger{
		sessionID: getSessionID(),
		component: component,
		sugar:     zap.New(core).Named(component).Sugar(),
		level:     level,
		file:      file,
		logPath:   logPath,
		closeOnce: &sync.Once{},
	}
}

// NewLogger creates a new logger for a specific component.
// The logger writes to ~/.widgetforge/logs/<session-id>-widgetforge.log
//
// If the log directory cannot be created or the log file cannot be opened,
// it returns a fallback logger that writes to stderr along with the error.
// Callers can check the error to detect fallback mode and log warnings.
func NewLogger(component string) (*Logger, error) {
	if err := initLogDirectory(); err != nil {
		return newFallbackLogger(component, err), err
	}

	sessID := getSessionID()
	logPath := filepath.Join(logDir, fmt.Sprintf("%s-widgetforge.log", sessID))

	// Open log file in append mode (multiple components may write to same file)
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		err = fmt.Errorf("failed to open log file: %w", err)
		return newFallbackLogger(component, err), err
	}

	return newLogger(component, zapcore.AddSync(file), file, logPath), nil
}

// newFallbackLogger creates a logger that writes to stderr when file logging fails
func newFallbackLogger(component string, err error) *Logger {
	l := newLogger(component, zapcore.Lock(os.Stderr), nil, "")
	l.Warnf("Failed to initialize file logging: %v", err)
	l.Warnf("Falling back to stderr logging")
	return l
}

// Nop returns a logger that discards everything. Widget trees created without
// an explicit logger use it.
func Nop() *Logger {
	return &Logger{
		sessionID: getSessionID(),
		sugar:     zap.NewNop().Sugar(),
		level:     zap.NewAtomicLevelAt(zapcore.FatalLevel),
		closeOnce: &sync.Once{},
	}
}

// FromZap wraps an existing zap logger.
func FromZap(z *zap.Logger, component string) *Logger {
	return &Logger{
		sessionID: getSessionID(),
		component: component,
		sugar:     z.Named(component).Sugar(),
		level:     zap.NewAtomicLevelAt(z.Level()),
		closeOnce: &sync.Once{},
	}
}

// Named returns a child logger whose component is "<component>.<name>".
// Children share the parent's sink; closing a child is a no-op.
func (l *Logger) Named(name string) *Logger {
	component := name
	if l.component != "" {
		component = l.component + "." + name
	}
	return &Logger{
		sessionID: l.sessionID,
		component: component,
		sugar:     l.sugar.Desugar().Named(name).Sugar(),
		level:     l.level,
		logPath:   l.logPath,
		closeOnce: &sync.Once{},
	}
}

// SetLevel changes the minimum level for this logger and every logger derived
// from it. Accepts debug, info, warn, error, plus the verbosity names quiet,
// normal and verbose.
func (l *Logger) SetLevel(level string) error {
	switch strings.ToLower(level) {
	case "debug", "verbose":
		l.level.SetLevel(zapcore.DebugLevel)
	case "info", "normal", "":
		l.level.SetLevel(zapcore.InfoLevel)
	case "warn", "warning":
		l.level.SetLevel(zapcore.WarnLevel)
	case "error", "quiet":
		l.level.SetLevel(zapcore.ErrorLevel)
	default:
		return fmt.Errorf("unknown log level: %s", level)
	}
	return nil
}

// Printf logs a formatted message
func (l *Logger) Printf(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

// Debugf logs a debug-level message
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.sugar.Debugf(format, v...)
}

// Infof logs an info-level message
func (l *Logger) Infof(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

// Warnf logs a warning-level message
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.sugar.Warnf(format, v...)
}

// Errorf logs an error-level message
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.sugar.Errorf(format, v...)
}

// Component returns the component name this logger writes under.
func (l *Logger) Component() string {
	return l.component
}

// Zap exposes the underlying zap logger.
func (l *Logger) Zap() *zap.Logger {
	return l.sugar.Desugar()
}

// SessionID returns the current session ID
func (l *Logger) SessionID() string {
	return l.sessionID
}

// LogPath returns the path to the log file
func (l *Logger) LogPath() string {
	return l.logPath
}

// Close flushes and closes the log file. Safe to call multiple times.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		_ = l.sugar.Sync()
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}

// GetSessionID returns the current global session ID
func GetSessionID() string {
	return getSessionID()
}

// GetLogDirectory returns the directory where logs are stored
func GetLogDirectory() (string, error) {
	if err := initLogDirectory(); err != nil {
		return "", err
	}
	return logDir, nil
}
