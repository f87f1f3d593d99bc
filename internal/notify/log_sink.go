package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSink writes notifications to a zerolog logger.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink creates a new LogSink.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Notify implements Sink.
func (s *LogSink) Notify(_ context.Context, n Notification) {
	event := s.logger.Info()
	if n.Level == LevelError {
		event = s.logger.Warn()
	}
	event.
		Str("user_id", n.UserID).
		Str("level", string(n.Level)).
		Str("kind", n.Kind).
		Msg(n.Message)
}
