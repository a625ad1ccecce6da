package audit

import "go.uber.org/zap"

// Logger emits one structured record per significant action: submissions,
// rejections, status transitions, listings, and authorization failures. The
// audit trail covers successes and error paths uniformly.
type Logger struct {
	log *zap.Logger
}

func NewLogger(log *zap.Logger) *Logger {
	return &Logger{log: log}
}

// NewNop returns a Logger that discards everything. For tests.
func NewNop() *Logger {
	return &Logger{log: zap.NewNop()}
}

// Event records a single audit entry. Every record carries the action name;
// callers attach actor, feedback id, and outcome detail as typed fields.
func (a *Logger) Event(action string, fields ...zap.Field) {
	a.log.Info(action, append([]zap.Field{zap.String("action", action)}, fields...)...)
}

// Sync flushes buffered records, typically on shutdown.
func (a *Logger) Sync() error {
	return a.log.Sync()
}
