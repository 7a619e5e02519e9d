package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"nextword/app/internal/db"
	"nextword/app/internal/http/templates"
	"nextword/app/internal/llm"
	"nextword/app/internal/suggest"
)

const (
	htmlContentType      = "text/html; charset=utf-8"
	jsonContentType      = "application/json"
	errorFallbackMessage = "We couldn't process your request right now."
	logEventPath         = "/log_event"
	badRequestMessage    = "Request body must be a JSON object with a string typedText field."
)

type htmlResponse struct {
	Status      int
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// rawJSONInput receives the body untouched so malformed input can be answered with 400.
type rawJSONInput struct {
	RawBody []byte
}

type suggestionsResponse struct {
	Body []suggest.Suggestion
}

type healthResponse struct {
	Status int
	Body   struct {
		Status  string `json:"status"`
		Model   string `json:"model"`
		Archive string `json:"archive"`
	}
}

func (s *Server) registerIndexRoute() {
	huma.Get(s.api, "/", s.indexHandler, func(op *huma.Operation) {
		op.Summary = "Suggestion playground"
		op.Responses = map[string]*huma.Response{
			strconv.Itoa(stdhttp.StatusOK): {
				Description: stdhttp.StatusText(stdhttp.StatusOK),
				Content: map[string]*huma.MediaType{
					htmlContentType: {Schema: &huma.Schema{Type: "string"}},
				},
			},
		}
	})
}

func (s *Server) registerSuggestionsRoute() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-suggestions",
		Method:      stdhttp.MethodPost,
		Path:        "/get_suggestions",
		Summary:     "Suggest next words and phrases for typed text",
		RequestBody: jsonRequestBody(`{"typedText": string}`),
		Errors: []int{
			stdhttp.StatusBadRequest,
			stdhttp.StatusBadGateway,
			stdhttp.StatusInternalServerError,
		},
	}, s.suggestionsHandler)
}

func (s *Server) registerLogEventRoute() {
	huma.Register(s.api, huma.Operation{
		OperationID:      "log-event",
		Method:           stdhttp.MethodPost,
		Path:             logEventPath,
		Summary:          "Record a client event",
		DefaultStatus:    stdhttp.StatusNoContent,
		RequestBody:      jsonRequestBody("Any JSON value"),
		// Malformed payloads are still recorded.
		SkipValidateBody: true,
	}, s.logEventHandler)
}

func (s *Server) registerHealthRoute() {
	huma.Get(s.api, "/healthz", s.healthHandler, func(op *huma.Operation) {
		op.Summary = "Health check"
	})
}

func (s *Server) indexHandler(ctx context.Context, _ *struct{}) (*htmlResponse, error) {
	body, err := renderComponent(ctx, templates.IndexPage(templates.IndexPageData{
		Title:       "Nextword",
		Placeholder: "Start typing...",
		ScriptURL:   "/static/app.js",
	}))
	if err != nil {
		s.recordError(ctx, err, "rendering index page", nil)
		return nil, huma.Error500InternalServerError(errorFallbackMessage)
	}

	return &htmlResponse{Status: stdhttp.StatusOK, ContentType: htmlContentType, Body: body}, nil
}

func (s *Server) suggestionsHandler(ctx context.Context, input *rawJSONInput) (*suggestionsResponse, error) {
	request, err := decodeSuggestionRequest(input.RawBody)
	if err != nil {
		s.logWarning(ctx, err, "rejecting suggestion request")
		return nil, huma.Error400BadRequest(badRequestMessage)
	}

	suggestions, err := s.suggestions.Suggest(ctx, request.TypedText)
	if err != nil {
		status, message := classifyError(err)
		s.recordError(ctx, err, "get_suggestions failed", logrus.Fields{"typedText": request.TypedText})
		return nil, huma.NewError(status, message)
	}

	return &suggestionsResponse{Body: suggestions}, nil
}

func (s *Server) logEventHandler(ctx context.Context, input *rawJSONInput) (*struct{}, error) {
	s.events.Record(ctx, RequestIDFromContext(ctx), input.RawBody)
	return nil, nil
}

func (s *Server) healthHandler(ctx context.Context, _ *struct{}) (*healthResponse, error) {
	resp := &healthResponse{Status: stdhttp.StatusOK}
	resp.Body.Status = "ok"
	resp.Body.Model = "ready"
	resp.Body.Archive = "disabled"

	if s.archive != nil {
		resp.Body.Archive = "ok"
		if err := db.Ping(ctx, s.archive); err != nil {
			s.recordError(ctx, err, "pinging event archive", nil)
			resp.Status = stdhttp.StatusServiceUnavailable
			resp.Body.Status = "degraded"
			resp.Body.Archive = "error"
		}
	}

	return resp, nil
}

// decodeSuggestionRequest requires a JSON object whose typedText is a string; an empty string is allowed.
func decodeSuggestionRequest(raw []byte) (suggest.Request, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return suggest.Request{}, eris.New("request body is required")
	}

	var body struct {
		TypedText *string `json:"typedText"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return suggest.Request{}, eris.Wrap(err, "decoding request body")
	}
	if body.TypedText == nil {
		return suggest.Request{}, eris.New("typedText is required")
	}

	return suggest.Request{TypedText: *body.TypedText}, nil
}

func classifyError(err error) (int, string) {
	switch {
	case err == nil:
		return stdhttp.StatusInternalServerError, errorFallbackMessage
	case eris.Is(err, llm.ErrModelTimeout):
		return stdhttp.StatusBadGateway, "The language model took too long to respond."
	case eris.Is(err, llm.ErrModelUnavailable):
		return stdhttp.StatusBadGateway, "The language model is unavailable right now."
	default:
		return stdhttp.StatusInternalServerError, errorFallbackMessage
	}
}

func jsonRequestBody(description string) *huma.RequestBody {
	return &huma.RequestBody{
		Description: description,
		Required:    false,
		Content: map[string]*huma.MediaType{
			jsonContentType: {Schema: &huma.Schema{}},
		},
	}
}

func (s *Server) logWarning(ctx context.Context, err error, message string) {
	if s.logger == nil || err == nil {
		return
	}

	entry := s.logger.WithField("error", err.Error())
	if requestID := RequestIDFromContext(ctx); requestID != "" {
		entry = entry.WithField("request_id", requestID)
	}
	entry.Warn(message)
}

func (s *Server) recordError(ctx context.Context, err error, message string, fields logrus.Fields) {
	if err == nil {
		return
	}

	if s.logger != nil {
		entry := s.logger.WithField("error", err.Error())
		if fields != nil {
			entry = entry.WithFields(fields)
		}
		if requestID := RequestIDFromContext(ctx); requestID != "" {
			entry = entry.WithField("request_id", requestID)
		}
		entry.Error(message)
	}

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	if s.sentry != nil {
		s.sentry.CaptureException(err)
	}
}
