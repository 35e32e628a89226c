// pattern: Imperative Shell

package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NopLogger returns a logger that discards all output.
func NopLogger() *ScopedLogger {
	return &ScopedLogger{}
}

// TestLogManager is a LoggerProvider that only writes to a channel, so tests
// can assert on what was logged.
type TestLogManager struct {
	channelSink *ChannelSink
	baseZap     *zap.Logger

	mu      sync.Mutex
	loggers map[string]*ScopedLogger
}

// NewTestLogManager creates a TestLogManager that logs at debug level.
func NewTestLogManager(bufferSize int) *TestLogManager {
	channelSink := NewChannelSink(bufferSize)
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(jsonEncoderConfig()),
		zapcore.AddSync(channelSink),
		zapcore.DebugLevel,
	)
	return &TestLogManager{
		channelSink: channelSink,
		baseZap:     zap.New(core),
		loggers:     make(map[string]*ScopedLogger),
	}
}

// For returns a scoped logger for the given scope name.
func (m *TestLogManager) For(scope string) *ScopedLogger {
	m.mu.Lock()
	defer m.mu.Unlock()

	if logger, ok := m.loggers[scope]; ok {
		return logger
	}
	logger := newScopedLogger(m.baseZap, scope, zapcore.DebugLevel)
	m.loggers[scope] = logger
	return logger
}

// Channel returns the channel entries are delivered on.
func (m *TestLogManager) Channel() <-chan LogEntry {
	return m.channelSink.Entries()
}

// Drain returns every entry currently buffered without blocking.
func (m *TestLogManager) Drain() []LogEntry {
	var out []LogEntry
	for {
		select {
		case e, ok := <-m.channelSink.Entries():
			if !ok {
				return out
			}
			out = append(out, e)
		default:
			return out
		}
	}
}

// Close closes the test log manager.
func (m *TestLogManager) Close() error {
	return m.channelSink.Close()
}
