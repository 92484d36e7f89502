package logging

import "github.com/policyforge/lapse/types"

// NopLogger implements a no-op logger that discards all messages.
//
// Used as the default when no logger is injected, so controller code never
// needs nil checks.
type NopLogger struct{}

// Compile-time assertion that NopLogger implements Logger.
var _ types.Logger = (*NopLogger)(nil)

// NewNop creates a new no-op logger.
func NewNop() *NopLogger {
	return &NopLogger{}
}

// Debug discards the message.
func (*NopLogger) Debug(_ string, _ ...any) {}

// Info discards the message.
func (*NopLogger) Info(_ string, _ ...any) {}

// Warn discards the message.
func (*NopLogger) Warn(_ string, _ ...any) {}

// Error discards the message.
func (*NopLogger) Error(_ string, _ ...any) {}

// Fatal discards the message and does not exit; a silent logger must not
// terminate the process.
func (*NopLogger) Fatal(_ string, _ ...any) {}
