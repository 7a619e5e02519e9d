package log

import (
	"time"

	"github.com/getsentry/sentry-go"
	sentrylogrus "github.com/getsentry/sentry-go/logrus"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

// FlushTimeout bounds how long buffered Sentry events may delay a response or shutdown.
const FlushTimeout = 2 * time.Second

const serviceTag = "nextword"

var defaultReportLevels = []logrus.Level{
	logrus.ErrorLevel,
	logrus.FatalLevel,
	logrus.PanicLevel,
}

// SentrySettings controls error reporting. An empty DSN disables it.
type SentrySettings struct {
	DSN         string
	Environment string
	Release     string
	// Levels are the log levels forwarded to Sentry; error and above when empty.
	Levels []logrus.Level
}

// InitSentry builds a Sentry hub and forwards the logger's error entries to it.
// The returned flush func is always safe to call. The hub is nil when reporting is disabled.
func InitSentry(logger *logrus.Logger, settings SentrySettings) (*sentry.Hub, func(), error) {
	noop := func() {}
	if settings.DSN == "" {
		return nil, noop, nil
	}

	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:              settings.DSN,
		Environment:      settings.Environment,
		Release:          settings.Release,
		AttachStacktrace: true,
	})
	if err != nil {
		return nil, noop, eris.Wrap(err, "creating sentry client")
	}

	scope := sentry.NewScope()
	scope.SetTag("service", serviceTag)
	hub := sentry.NewHub(client, scope)

	if logger != nil {
		levels := settings.Levels
		if len(levels) == 0 {
			levels = defaultReportLevels
		}
		logger.AddHook(sentrylogrus.NewEventHookFromClient(levels, client))
	}

	return hub, func() { hub.Flush(FlushTimeout) }, nil
}
