package ports

import "context"

// Logger is the structured logging port shared by the scanners, adapters,
// and the control server. Implementations decide the backend (zap in
// production, in-memory mocks in tests); fields carry per-event context such
// as the scanner kind or symbol.
type Logger interface {
	// Debug logs a message at Debug level.
	Debug(ctx context.Context, msg string, fields ...map[string]interface{})
	// Info logs a message at Info level.
	Info(ctx context.Context, msg string, fields ...map[string]interface{})
	// Warn logs a message at Warning level.
	Warn(ctx context.Context, msg string, fields ...map[string]interface{})
	// Error logs an error message at Error level.
	Error(ctx context.Context, err error, msg string, fields ...map[string]interface{})
}
