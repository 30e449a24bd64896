package graph

import (
	"maps"
	"slices"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Logger interface for Graph operations.
type Logger interface {
	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
	Trace(msg string, fields map[string]any)
}

// HCLogger adapts an hclog.Logger to the fields-map interface used by the
// managers in this package.
type HCLogger struct {
	logger hclog.Logger
}

// NewHCLogger creates a logger for Graph operations. A nil base logger falls
// back to the hclog default.
func NewHCLogger(base hclog.Logger, subsystem string) *HCLogger {
	if base == nil {
		base = hclog.Default()
	}
	return &HCLogger{logger: base.Named(subsystem)}
}

func (l *HCLogger) Debug(msg string, fields map[string]any) {
	l.logger.Debug(msg, flatten(fields)...)
}

func (l *HCLogger) Info(msg string, fields map[string]any) {
	l.logger.Info(msg, flatten(fields)...)
}

func (l *HCLogger) Warn(msg string, fields map[string]any) {
	l.logger.Warn(msg, flatten(fields)...)
}

func (l *HCLogger) Error(msg string, fields map[string]any) {
	l.logger.Error(msg, flatten(fields)...)
}

func (l *HCLogger) Trace(msg string, fields map[string]any) {
	l.logger.Trace(msg, flatten(fields)...)
}

func flatten(fields map[string]any) []any {
	args := make([]any, 0, len(fields)*2)
	// Stable ordering keeps log lines diffable.
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		args = append(args, k, fields[k])
	}
	return args
}

// LogOperation is a helper function to log an operation with timing.
func LogOperation(logger Logger, operation string, fields map[string]any, fn func() error) error {
	start := time.Now()

	opFields := make(map[string]any, len(fields)+1)
	maps.Copy(opFields, fields)
	opFields["operation"] = operation

	logger.Debug("Starting operation", opFields)

	err := fn()
	opFields["duration_ms"] = time.Since(start).Milliseconds()

	if err != nil {
		opFields["error"] = err.Error()
		logger.Error("Operation failed", opFields)
	} else {
		logger.Debug("Operation completed", opFields)
	}

	return err
}
