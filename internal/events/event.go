package events

import (
	"encoding/json"
	"time"

	"github.com/tidwall/gjson"
)

// nameKeys are checked in order for a human-readable event name.
var nameKeys = []string{"event", "type", "name", "eventType"}

// Event is a client-reported event. Payload is forwarded verbatim and never validated against a schema.
type Event struct {
	ID         string
	Name       string
	RequestID  string
	Payload    json.RawMessage
	ReceivedAt time.Time
}

// Valid reports whether the payload is well-formed JSON.
func (e Event) Valid() bool {
	return gjson.ValidBytes(e.Payload)
}

// LogValue returns the payload as a value the JSON log formatter emits unchanged.
// Payloads that are not valid JSON are logged as a string.
func (e Event) LogValue() any {
	if len(e.Payload) > 0 && e.Valid() {
		return e.Payload
	}
	return string(e.Payload)
}

func eventName(payload []byte) string {
	if !gjson.ValidBytes(payload) {
		return ""
	}

	root := gjson.ParseBytes(payload)
	if !root.IsObject() {
		return ""
	}

	for _, key := range nameKeys {
		if value := root.Get(key); value.Type == gjson.String && value.Str != "" {
			return value.Str
		}
	}
	return ""
}
