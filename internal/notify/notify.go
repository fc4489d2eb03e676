// Package notify is the fire-and-forget notification boundary. The core
// reports outcomes through a Sink and never awaits or inspects delivery;
// real toast/e-mail delivery is an external collaborator.
package notify

import "go.uber.org/zap"

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type Sink interface {
	Notify(title, message string, severity Severity)
}

// LogSink reports notifications through the service log.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Notify(title, message string, severity Severity) {
	fields := []zap.Field{zap.String("title", title), zap.String("message", message)}
	switch severity {
	case SeverityError:
		s.log.Error("notification", fields...)
	case SeverityWarning:
		s.log.Warn("notification", fields...)
	default:
		s.log.Info("notification", fields...)
	}
}

// NopSink discards everything. Useful in tests.
type NopSink struct{}

func (NopSink) Notify(string, string, Severity) {}
