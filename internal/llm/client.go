package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

// Completer sends a single prompt to the model and returns its raw text reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

var (
	// ErrModelUnavailable marks transport, API or content failures from the model provider.
	ErrModelUnavailable = eris.New("model unavailable")
	// ErrModelTimeout marks a model call that exceeded its deadline.
	ErrModelTimeout = eris.New("model timeout")
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	defaultTimeout = 20 * time.Second
)

// ClientOptions controls how the model client is initialised.
type ClientOptions struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	Temperature float64
	HTTPClient  *http.Client
	Logger      *logrus.Logger
}

// Client issues chat completions against an OpenAI-compatible endpoint.
// It is safe for concurrent use and is meant to be built once per process.
type Client struct {
	chat        chatCompletionClient
	logger      *logrus.Logger
	baseURL     string
	model       string
	timeout     time.Duration
	temperature float64
}

var _ Completer = (*Client)(nil)

type chatCompletionClient interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// NewClient constructs a Client. Retries are disabled so every Complete is a single attempt.
func NewClient(opts ClientOptions) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, eris.New("llm api key is required")
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		return nil, eris.New("llm model is required")
	}

	baseURL := strings.TrimSpace(opts.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	requestOptions := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	}

	if opts.HTTPClient != nil {
		requestOptions = append(requestOptions, option.WithHTTPClient(opts.HTTPClient))
	}

	apiClient := openai.NewClient(requestOptions...)

	return newClient(&apiClient.Chat.Completions, opts, baseURL, model), nil
}

func newClient(chat chatCompletionClient, opts ClientOptions, baseURL, model string) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		chat:        chat,
		logger:      opts.Logger,
		baseURL:     baseURL,
		model:       model,
		timeout:     timeout,
		temperature: opts.Temperature,
	}
}

// Complete sends prompt as a single user message and returns the trimmed reply text.
// Failures are reported as ErrModelTimeout or ErrModelUnavailable.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	if c.temperature > 0 {
		params.Temperature = openai.Float(c.temperature)
	}

	start := time.Now()
	completion, err := c.chat.New(callCtx, params)
	fields := logrus.Fields{
		"model":       c.model,
		"duration_ms": float64(time.Since(start).Microseconds()) / 1000,
	}

	if err != nil {
		classified := classifyError(callCtx, err)
		c.logError(fields, classified, "requesting chat completion")
		return "", classified
	}

	if completion == nil || len(completion.Choices) == 0 {
		err := eris.Wrap(ErrModelUnavailable, "llm completion returned no choices")
		c.logError(fields, err, "processing chat completion")
		return "", err
	}

	choice := completion.Choices[0]
	if reason := strings.TrimSpace(choice.FinishReason); strings.EqualFold(reason, "content_filter") {
		err := eris.Wrap(ErrModelUnavailable, "llm blocked the request via content filter")
		c.logError(fields, err, "completion blocked")
		return "", err
	}

	if refusal := strings.TrimSpace(choice.Message.Refusal); refusal != "" {
		err := eris.Wrapf(ErrModelUnavailable, "llm refused the request: %s", refusal)
		c.logError(fields, err, "completion refused")
		return "", err
	}

	if c.logger != nil {
		c.logger.WithFields(fields).Debug("chat completion received")
	}

	return strings.TrimSpace(choice.Message.Content), nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// BaseURL returns the configured base URL for outbound requests.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func classifyError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return eris.Wrapf(ErrModelTimeout, "requesting chat completion: %v", err)
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusGatewayTimeout || apiErr.StatusCode == http.StatusRequestTimeout {
			return eris.Wrapf(ErrModelTimeout, "requesting chat completion: status %d", apiErr.StatusCode)
		}
		return eris.Wrapf(ErrModelUnavailable, "requesting chat completion: status %d", apiErr.StatusCode)
	}

	return eris.Wrapf(ErrModelUnavailable, "requesting chat completion: %v", err)
}

func (c *Client) logError(fields logrus.Fields, err error, message string) {
	if c.logger == nil || err == nil {
		return
	}

	entry := c.logger.WithField("error", err.Error())
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(message)
}
