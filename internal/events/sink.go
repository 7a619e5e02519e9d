package events

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

// Sink receives recorded events.
type Sink interface {
	Write(ctx context.Context, event Event) error
}

// LogSink writes events to a structured logger at INFO severity.
type LogSink struct {
	logger *logrus.Logger
}

var _ Sink = (*LogSink)(nil)

// NewLogSink constructs a sink backed by logger.
func NewLogSink(logger *logrus.Logger) (*LogSink, error) {
	if logger == nil {
		return nil, eris.New("logger is required")
	}
	return &LogSink{logger: logger}, nil
}

// Write logs the event payload under jsonPayload.
func (s *LogSink) Write(_ context.Context, event Event) error {
	fields := logrus.Fields{
		"jsonPayload": event.LogValue(),
		"event_id":    event.ID,
	}
	if event.Name != "" {
		fields["event"] = event.Name
	}
	if event.RequestID != "" {
		fields["request_id"] = event.RequestID
	}

	s.logger.WithFields(fields).WithTime(event.ReceivedAt).Info("Client event occurred")
	return nil
}
