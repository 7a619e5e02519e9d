package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLoggerDefaultsToInfo(t *testing.T) {
	t.Parallel()

	logger, err := NewLogger("")
	if err != nil {
		t.Fatalf("NewLogger returned error: %v", err)
	}

	if logger.GetLevel() != logrus.InfoLevel {
		t.Fatalf("expected info level, got %s", logger.GetLevel())
	}
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	if _, err := NewLogger("chatty"); err == nil {
		t.Fatalf("expected error for unknown log level")
	}
}

func TestNewLoggerWritesSeverityField(t *testing.T) {
	t.Parallel()

	logger, err := NewLogger("DEBUG")
	if err != nil {
		t.Fatalf("NewLogger returned error: %v", err)
	}

	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.WithField("typedText", "hello").Info("get_suggestions request received")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}

	if entry["severity"] != "info" {
		t.Fatalf("expected severity info, got %v", entry["severity"])
	}

	if entry["typedText"] != "hello" {
		t.Fatalf("expected typedText field, got %v", entry["typedText"])
	}
}

func TestInitSentryDisabledWithoutDSN(t *testing.T) {
	t.Parallel()

	hub, flush, err := InitSentry(Discard(), SentrySettings{})
	if err != nil {
		t.Fatalf("InitSentry returned error: %v", err)
	}

	if hub != nil {
		t.Fatalf("expected nil hub when DSN is empty")
	}

	flush()
}

func TestInitSentryHooksLoggerWhenEnabled(t *testing.T) {
	t.Parallel()

	logger := Discard()
	hub, flush, err := InitSentry(logger, SentrySettings{
		DSN:         "https://public@example.com/1",
		Environment: "test",
	})
	if err != nil {
		t.Fatalf("InitSentry returned error: %v", err)
	}
	defer flush()

	if hub == nil || hub.Client() == nil {
		t.Fatalf("expected hub with client")
	}
	if got := len(logger.Hooks[logrus.ErrorLevel]); got != 1 {
		t.Fatalf("expected one error-level hook, got %d", got)
	}
	if got := len(logger.Hooks[logrus.InfoLevel]); got != 0 {
		t.Fatalf("expected no info-level hook, got %d", got)
	}
	if FlushTimeout <= 0 {
		t.Fatalf("expected positive flush timeout")
	}
}

func TestInitSentryRejectsInvalidDSN(t *testing.T) {
	t.Parallel()

	_, flush, err := InitSentry(Discard(), SentrySettings{DSN: "not a dsn"})
	if err == nil {
		t.Fatalf("expected error for invalid DSN")
	}
	flush()
}
