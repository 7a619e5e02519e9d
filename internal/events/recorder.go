package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

// Recorder fans client events out to its sinks. Sink failures never reach the caller.
type Recorder struct {
	sinks  []Sink
	logger *logrus.Logger
	now    func() time.Time
}

// NewRecorder builds a Recorder. At least one sink is required.
func NewRecorder(logger *logrus.Logger, sinks ...Sink) (*Recorder, error) {
	active := make([]Sink, 0, len(sinks))
	for _, sink := range sinks {
		if sink != nil {
			active = append(active, sink)
		}
	}
	if len(active) == 0 {
		return nil, eris.New("at least one event sink is required")
	}

	return &Recorder{sinks: active, logger: logger, now: time.Now}, nil
}

// Record forwards payload to every sink and returns the event that was written.
func (r *Recorder) Record(ctx context.Context, requestID string, payload []byte) Event {
	event := Event{
		ID:         uuid.NewString(),
		Name:       eventName(payload),
		RequestID:  requestID,
		Payload:    append([]byte(nil), payload...),
		ReceivedAt: r.now().UTC(),
	}

	for _, sink := range r.sinks {
		if err := writeSafely(ctx, sink, event); err != nil {
			r.logFailure(event, sink, err)
		}
	}

	return event
}

func writeSafely(ctx context.Context, sink Sink, event Event) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = eris.New(fmt.Sprintf("event sink panic: %v", rec))
		}
	}()

	return sink.Write(ctx, event)
}

func (r *Recorder) logFailure(event Event, sink Sink, err error) {
	if r.logger == nil {
		return
	}

	r.logger.WithFields(logrus.Fields{
		"event_id": event.ID,
		"sink":     fmt.Sprintf("%T", sink),
		"error":    err.Error(),
	}).Warn("event sink write failed")
}
