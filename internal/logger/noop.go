package logger

// NoopLogger is a logger that discards everything. Used in tests and as a
// safe default before configuration is loaded.
type NoopLogger struct{}

// Ensure NoopLogger implements Interface.
var _ Interface = (*NoopLogger)(nil)

// NewNoop creates a no-op logger.
func NewNoop() *NoopLogger {
	return &NoopLogger{}
}

// Debug does nothing.
func (n *NoopLogger) Debug(_ string, _ ...any) {}

// Info does nothing.
func (n *NoopLogger) Info(_ string, _ ...any) {}

// Warn does nothing.
func (n *NoopLogger) Warn(_ string, _ ...any) {}

// Error does nothing.
func (n *NoopLogger) Error(_ string, _ ...any) {}

// Fatal does nothing.
func (n *NoopLogger) Fatal(_ string, _ ...any) {}

// With returns the no-op logger unchanged.
func (n *NoopLogger) With(_ ...any) Interface { return n }

// WithComponent returns the no-op logger unchanged.
func (n *NoopLogger) WithComponent(_ string) Interface { return n }

// WithError returns the no-op logger unchanged.
func (n *NoopLogger) WithError(_ error) Interface { return n }
