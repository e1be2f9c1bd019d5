package logging

import (
	"log/slog"
	"time"
)

// Record is the structured unit accepted by a Sink.
type Record struct {
	Level    LogLevel       `json:"level"`
	Category string         `json:"category"`
	Message  string         `json:"message"`
	Details  map[string]any `json:"details,omitempty"`
	Source   string         `json:"source,omitempty"`
	Tags     []string       `json:"tags,omitempty"`
}

// Sink consumes structured records. Implementations may buffer, drop or
// forward them; callers treat every write as fire-and-forget.
type Sink interface {
	Write(rec Record)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(rec Record)

// Write implements Sink.
func (f SinkFunc) Write(rec Record) { f(rec) }

// NoOpSink discards all records.
type NoOpSink struct{}

// Write implements Sink.
func (NoOpSink) Write(Record) {}

// SlogSink writes records through a *slog.Logger, flattening details into
// attributes.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink wraps a *slog.Logger as a Sink. A nil logger uses slog.Default.
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger}
}

// Write implements Sink.
func (s *SlogSink) Write(rec Record) {
	attrs := make([]any, 0, 2*(len(rec.Details)+3))
	attrs = append(attrs, "category", rec.Category)
	if rec.Source != "" {
		attrs = append(attrs, "source", rec.Source)
	}
	if len(rec.Tags) > 0 {
		attrs = append(attrs, "tags", rec.Tags)
	}
	attrs = append(attrs, "timestamp", time.Now().UTC())
	for k, v := range rec.Details {
		attrs = append(attrs, k, v)
	}

	switch rec.Level {
	case LogLevelDebug:
		s.logger.Debug(rec.Message, attrs...)
	case LogLevelWarn:
		s.logger.Warn(rec.Message, attrs...)
	case LogLevelError:
		s.logger.Error(rec.Message, attrs...)
	default:
		s.logger.Info(rec.Message, attrs...)
	}
}

// Safe wraps a sink so writes can never propagate a panic into the caller.
// Observability stays best-effort: a broken sink loses records, nothing
// else.
func Safe(sink Sink) Sink {
	if sink == nil {
		return NoOpSink{}
	}
	return SinkFunc(func(rec Record) {
		defer func() {
			_ = recover()
		}()
		sink.Write(rec)
	})
}
