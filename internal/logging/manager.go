// pattern: Imperative Shell

package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds configuration for the Manager.
type Config struct {
	FilePath   string // Path to the rotated JSON log file
	MaxSizeMB  int    // Max size in MB before rotation
	MaxBackups int    // Max number of old log files to keep
	MaxAgeDays int    // Max days to keep old log files
	Level      string // Minimum log level (debug, info, warn, error)

	// Console, when set, receives human-readable log lines in addition to the file.
	// The CLI points this at stderr when --verbose is given.
	Console io.Writer

	// ChannelBufSize enables the in-process entry channel used by the picker
	// status line. Zero disables it.
	ChannelBufSize int
}

// LoggerProvider is an interface for obtaining scoped loggers.
// Both Manager and TestLogManager implement this interface.
type LoggerProvider interface {
	For(scope string) *ScopedLogger
}

// ScopedLogger is a slog-style logger bound to a named scope.
type ScopedLogger struct {
	slog  *slog.Logger
	scope string
}

// Info logs at INFO level.
func (l *ScopedLogger) Info(msg string, args ...any) {
	if l.slog != nil {
		l.slog.Info(msg, args...)
	}
}

// Debug logs at DEBUG level.
func (l *ScopedLogger) Debug(msg string, args ...any) {
	if l.slog != nil {
		l.slog.Debug(msg, args...)
	}
}

// Warn logs at WARN level.
func (l *ScopedLogger) Warn(msg string, args ...any) {
	if l.slog != nil {
		l.slog.Warn(msg, args...)
	}
}

// Error logs at ERROR level.
func (l *ScopedLogger) Error(msg string, args ...any) {
	if l.slog != nil {
		l.slog.Error(msg, args...)
	}
}

// With returns a logger that adds the given key-value pairs to every entry.
func (l *ScopedLogger) With(args ...any) *ScopedLogger {
	if l.slog == nil {
		return l
	}
	return &ScopedLogger{
		slog:  l.slog.With(args...),
		scope: l.scope,
	}
}

// Scope returns the logger's scope name.
func (l *ScopedLogger) Scope() string {
	return l.scope
}

// Manager owns the zap core shared by all scoped loggers.
type Manager struct {
	baseZap     *zap.Logger
	fileWriter  *lumberjack.Logger
	channelSink *ChannelSink
	level       zapcore.Level

	mu      sync.RWMutex
	loggers map[string]*ScopedLogger
}

// NewManager creates a log manager writing to a rotated file and, optionally,
// to a console writer and an entry channel.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.FilePath == "" {
		return nil, fmt.Errorf("FilePath is required")
	}

	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 5
	}
	if cfg.MaxBackups == 0 {
		cfg.MaxBackups = 3
	}
	if cfg.MaxAgeDays == 0 {
		cfg.MaxAgeDays = 14
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
		return nil, err
	}

	fileWriter := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(jsonEncoderConfig()), zapcore.AddSync(fileWriter), level),
	}

	if cfg.Console != nil {
		consoleCfg := zap.NewDevelopmentEncoderConfig()
		consoleCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		consoleCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleCfg),
			zapcore.AddSync(cfg.Console),
			level,
		))
	}

	var channelSink *ChannelSink
	if cfg.ChannelBufSize > 0 {
		channelSink = NewChannelSink(cfg.ChannelBufSize)
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(jsonEncoderConfig()),
			zapcore.AddSync(channelSink),
			level,
		))
	}

	return &Manager{
		baseZap:     zap.New(zapcore.NewTee(cores...)),
		fileWriter:  fileWriter,
		channelSink: channelSink,
		level:       level,
		loggers:     make(map[string]*ScopedLogger),
	}, nil
}

// jsonEncoderConfig is shared by the file core, the channel core and the test manager.
func jsonEncoderConfig() zapcore.EncoderConfig {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.EpochTimeEncoder
	encoderCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	return encoderCfg
}

// For returns the cached logger for scope, creating it on first use.
func (m *Manager) For(scope string) *ScopedLogger {
	m.mu.RLock()
	if logger, ok := m.loggers[scope]; ok {
		m.mu.RUnlock()
		return logger
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if logger, ok := m.loggers[scope]; ok {
		return logger
	}

	logger := newScopedLogger(m.baseZap, scope, m.level)
	m.loggers[scope] = logger
	return logger
}

// Entries returns the entry channel, or nil when ChannelBufSize was zero.
func (m *Manager) Entries() <-chan LogEntry {
	if m.channelSink == nil {
		return nil
	}
	return m.channelSink.Entries()
}

// Sync flushes all buffered logs.
func (m *Manager) Sync() error {
	return m.baseZap.Sync()
}

// Close syncs and closes all resources.
func (m *Manager) Close() error {
	_ = m.Sync()
	if m.channelSink != nil {
		_ = m.channelSink.Close()
	}
	return m.fileWriter.Close()
}

func newScopedLogger(base *zap.Logger, scope string, level zapcore.Level) *ScopedLogger {
	zapLogger := base.Named(scope)
	return &ScopedLogger{
		slog:  slog.New(&zapSlogHandler{zap: zapLogger, level: level}),
		scope: scope,
	}
}
