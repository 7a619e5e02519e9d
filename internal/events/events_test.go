package events

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nextword/app/internal/db"
	applog "nextword/app/internal/log"
)

type failingSink struct {
	panics bool
	calls  int
}

func (s *failingSink) Write(context.Context, Event) error {
	s.calls++
	if s.panics {
		panic("sink exploded")
	}
	return eris.New("sink unavailable")
}

type captureSink struct {
	events []Event
}

func (s *captureSink) Write(_ context.Context, event Event) error {
	s.events = append(s.events, event)
	return nil
}

func bufferedLogger(t *testing.T) (*logrus.Logger, *bytes.Buffer) {
	t.Helper()

	logger, err := applog.NewLogger("info")
	require.NoError(t, err)

	var buf bytes.Buffer
	logger.SetOutput(&buf)
	return logger, &buf
}

func TestEventNameExtraction(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		`{"event":"suggestion_clicked","word":"jumps"}`: "suggestion_clicked",
		`{"type":"keypress"}`:                            "keypress",
		`{"name":42,"eventType":"focus"}`:                "focus",
		`["not","an","object"]`:                          "",
		`"just a string"`:                                "",
		`{broken`:                                        "",
	}

	for payload, want := range tests {
		assert.Equal(t, want, eventName([]byte(payload)), payload)
	}
}

func TestLogSinkWritesPayloadVerbatim(t *testing.T) {
	t.Parallel()

	logger, buf := bufferedLogger(t)
	sink, err := NewLogSink(logger)
	require.NoError(t, err)

	recorder, err := NewRecorder(logger, sink)
	require.NoError(t, err)

	payload := `{"event":"suggestion_clicked","index":3,"meta":{"nested":[true,null,1.5]}}`
	event := recorder.Record(context.Background(), "req-1", []byte(payload))
	assert.Equal(t, "suggestion_clicked", event.Name)
	assert.NotEmpty(t, event.ID)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "info", entry["severity"])
	assert.Equal(t, "Client event occurred", entry["msg"])
	assert.Equal(t, "suggestion_clicked", entry["event"])
	assert.Equal(t, "req-1", entry["request_id"])

	logged, err := json.Marshal(entry["jsonPayload"])
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(logged))
}

func TestLogSinkHandlesInvalidJSON(t *testing.T) {
	t.Parallel()

	logger, buf := bufferedLogger(t)
	sink, err := NewLogSink(logger)
	require.NoError(t, err)

	require.NoError(t, sink.Write(context.Background(), Event{ID: "e1", Payload: []byte("not json")}))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "not json", entry["jsonPayload"])
}

func TestRecorderSwallowsSinkFailures(t *testing.T) {
	t.Parallel()

	erroring := &failingSink{}
	panicking := &failingSink{panics: true}
	capture := &captureSink{}

	recorder, err := NewRecorder(applog.Discard(), erroring, panicking, capture)
	require.NoError(t, err)

	require.NotPanics(t, func() {
		recorder.Record(context.Background(), "", []byte(`{"event":"x"}`))
	})

	assert.Equal(t, 1, erroring.calls)
	assert.Equal(t, 1, panicking.calls)
	require.Len(t, capture.events, 1, "later sinks still receive the event")
	assert.JSONEq(t, `{"event":"x"}`, string(capture.events[0].Payload))
}

func TestNewRecorderRequiresSink(t *testing.T) {
	t.Parallel()

	_, err := NewRecorder(applog.Discard())
	assert.Error(t, err)

	_, err = NewRecorder(applog.Discard(), nil)
	assert.Error(t, err)
}

func TestArchiveSinkStoresEvents(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	conn, err := db.Open(db.Options{Path: filepath.Join(t.TempDir(), "events.db"), Logger: applog.Discard()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(conn) })

	require.NoError(t, Migrate(ctx, conn, applog.Discard()))

	archive, err := NewArchiveSink(conn, applog.Discard())
	require.NoError(t, err)

	recorder, err := NewRecorder(applog.Discard(), archive)
	require.NoError(t, err)

	first := recorder.Record(ctx, "req-a", []byte(`{"event":"opened"}`))
	second := recorder.Record(ctx, "req-b", []byte(`[1,2,3]`))

	records, err := archive.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	byID := map[string]Record{}
	for _, record := range records {
		byID[record.EventID] = record
	}

	assert.Equal(t, "opened", byID[first.ID].Name)
	assert.Equal(t, `{"event":"opened"}`, byID[first.ID].Payload)
	assert.Equal(t, "req-b", byID[second.ID].RequestID)
	assert.Equal(t, `[1,2,3]`, byID[second.ID].Payload)
}

func TestNewArchiveSinkRequiresDatabase(t *testing.T) {
	t.Parallel()

	_, err := NewArchiveSink(nil, nil)
	assert.Error(t, err)
}
