package http

import (
	"context"
	stdhttp "net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"nextword/app/internal/events"
	"nextword/app/internal/suggest"
)

// EventRecorder accepts client events. Implementations never fail the caller.
type EventRecorder interface {
	Record(ctx context.Context, requestID string, payload []byte) events.Event
}

// Options configures the HTTP server wiring. Archive is the optional event
// archive database and is only consulted by the health check.
type Options struct {
	Suggestions suggest.Service
	Events      EventRecorder
	Archive     *gorm.DB
	Logger      *logrus.Logger
	SentryHub   *sentry.Hub
	RateLimiter RateLimiterSettings
}

// RateLimiterSettings configures the HTTP rate limiter behaviour.
// The zero value disables rate limiting.
type RateLimiterSettings struct {
	RequestsPerSecond float64
	Burst             int
	ClientTTL         time.Duration
}

// Server wires the HTTP transport layer via Huma.
type Server struct {
	api         huma.API
	mux         *stdhttp.ServeMux
	suggestions suggest.Service
	events      EventRecorder
	archive     *gorm.DB
	logger      *logrus.Logger
	sentry      *sentry.Hub
	rateLimiter *RateLimiter
}

// NewServer constructs the HTTP server.
func NewServer(opts Options) (*Server, error) {
	if opts.Suggestions == nil {
		return nil, eris.New("suggestion service is required")
	}
	if opts.Events == nil {
		return nil, eris.New("event recorder is required")
	}

	mux := stdhttp.NewServeMux()
	config := huma.DefaultConfig("Nextword", "1.0.0")
	// Response bodies are returned as-is, without a $schema link.
	config.CreateHooks = nil

	srv := &Server{
		api:         humago.New(mux, config),
		mux:         mux,
		suggestions: opts.Suggestions,
		events:      opts.Events,
		archive:     opts.Archive,
		logger:      opts.Logger,
		sentry:      opts.SentryHub,
	}

	settings := opts.RateLimiter
	if settings != (RateLimiterSettings{}) {
		if settings.Burst <= 0 {
			return nil, eris.New("rate limiter burst must be greater than zero")
		}
		if settings.RequestsPerSecond <= 0 {
			return nil, eris.New("rate limiter requests per second must be greater than zero")
		}
		if settings.ClientTTL <= 0 {
			return nil, eris.New("rate limiter client TTL must be greater than zero")
		}
		srv.rateLimiter = NewRateLimiter(settings.Burst, settings.RequestsPerSecond, settings.ClientTTL)
	}

	srv.registerMiddlewares()
	srv.registerRoutes()

	return srv, nil
}

// Handler exposes the underlying HTTP handler for wiring into the application.
func (s *Server) Handler() stdhttp.Handler {
	return s.mux
}

// API exposes the underlying Huma API instance.
func (s *Server) API() huma.API {
	return s.api
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}

func (s *Server) registerMiddlewares() {
	s.api.UseMiddleware(
		s.sentryMiddleware(),
		s.recoveryMiddleware(),
		s.requestIDMiddleware(),
		s.rateLimitMiddleware(),
		s.loggingMiddleware(),
	)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /static/app.js", scriptHandler)

	s.registerIndexRoute()
	s.registerSuggestionsRoute()
	s.registerLogEventRoute()
	s.registerHealthRoute()
}

func (s *Server) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	s.mux.ServeHTTP(w, r)
}
