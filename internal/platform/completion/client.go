package completion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const (
	DefaultBaseURL      = "https://api.openai.com/v1"
	DefaultModel        = "gpt-4"
	DefaultMaxTokens    = 500
	DefaultTimeout      = 60 * time.Second
	DefaultRetryWait    = 1 * time.Second
	DefaultRetryMaxWait = 10 * time.Second
)

// Options configures a Client. Zero values fall back to the defaults above;
// MaxRetries defaults to 0, so calls are not retried unless asked for.
type Options struct {
	BaseURL      string
	APIKey       string
	Model        string
	MaxTokens    int
	Timeout      time.Duration
	MaxRetries   int
	RetryWait    time.Duration
	RetryMaxWait time.Duration
}

func (o Options) withDefaults() Options {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	if o.Model == "" {
		o.Model = DefaultModel
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryWait <= 0 {
		o.RetryWait = DefaultRetryWait
	}
	if o.RetryMaxWait <= 0 {
		o.RetryMaxWait = DefaultRetryMaxWait
	}
	if o.RetryMaxWait < o.RetryWait {
		o.RetryMaxWait = o.RetryWait
	}
	return o
}

// Client talks to an OpenAI-compatible chat completions endpoint. It holds
// only immutable configuration and is safe for concurrent use.
type Client struct {
	http   *resty.Client
	opts   Options
	logger zerolog.Logger
}

// NewClient creates a chat completions client.
func NewClient(opts Options, logger zerolog.Logger) *Client {
	opts = opts.withDefaults()
	logger = logger.With().Str("component", "completion").Logger()

	hc := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetAuthToken(opts.APIKey).
		SetHeader("Accept", "application/json").
		SetRetryCount(opts.MaxRetries).
		SetRetryWaitTime(opts.RetryWait).
		SetRetryMaxWaitTime(opts.RetryMaxWait).
		AddRetryCondition(shouldRetry).
		AddRetryHook(func(r *resty.Response, err error) {
			evt := logger.Warn()
			if err != nil {
				evt = evt.Err(err)
			} else if r != nil {
				evt = evt.Int("status", r.StatusCode())
			}
			evt.Msg("retrying completion request")
		}).
		SetLogger(restyLogger{logger: logger})

	return &Client{http: hc, opts: opts, logger: logger}
}

// Model returns the model identifier sent with every request.
func (c *Client) Model() string {
	return c.opts.Model
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message *struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends req and returns the first choice's content, trimmed. The
// call is bounded by Options.Timeout; expiry surfaces as a KindTimeout
// ServiceError.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	msgs := make([]chatMessage, 0, 2)
	if req.System != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: req.System})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: req.Prompt})

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(chatRequest{Model: c.opts.Model, Messages: msgs, MaxTokens: c.opts.MaxTokens}).
		Post("/chat/completions")
	latency := time.Since(start)

	if err != nil {
		serr := transportError(ctx, err)
		c.logFailure(serr, latency)
		return "", serr
	}

	text, serr := decodeResponse(resp.StatusCode(), resp.Body())
	if serr != nil {
		c.logFailure(serr, latency)
		return "", serr
	}

	c.logger.Info().
		Str("model", c.opts.Model).
		Int("status", resp.StatusCode()).
		Int("attempt", resp.Request.Attempt).
		Dur("latency", latency).
		Int("chars", len(text)).
		Msg("completion received")
	return text, nil
}

func (c *Client) logFailure(serr *ServiceError, latency time.Duration) {
	c.logger.Error().
		Str("model", c.opts.Model).
		Str("kind", string(serr.Kind)).
		Int("status", serr.StatusCode).
		Dur("latency", latency).
		Msg("completion failed")
}

// shouldRetry retries transport failures, rate limiting and server errors.
// Caller cancellation and deadline expiry are final.
func shouldRetry(r *resty.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	if r == nil {
		return false
	}
	code := r.StatusCode()
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func transportError(ctx context.Context, err error) *ServiceError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &ServiceError{Kind: KindTimeout, Message: "request timed out", Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &ServiceError{Kind: KindTimeout, Message: "request timed out", Err: err}
	}
	return &ServiceError{Kind: KindNetwork, Message: "request failed", Err: err}
}

// decodeResponse classifies the HTTP status and extracts the generated text
// from a successful envelope.
func decodeResponse(status int, body []byte) (string, *ServiceError) {
	if status < 200 || status > 299 {
		return "", statusError(status, body)
	}

	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", &ServiceError{Kind: KindMalformed, StatusCode: status, Message: "undecodable response body", Err: err}
	}
	if len(out.Choices) == 0 {
		return "", &ServiceError{Kind: KindMalformed, StatusCode: status, Message: "response has no choices"}
	}
	msg := out.Choices[0].Message
	if msg == nil || msg.Content == nil {
		return "", &ServiceError{Kind: KindMalformed, StatusCode: status, Message: "choice has no message content"}
	}
	text := strings.TrimSpace(*msg.Content)
	if text == "" {
		return "", &ServiceError{Kind: KindMalformed, StatusCode: status, Message: "choice content is empty"}
	}
	return text, nil
}

func statusError(status int, body []byte) *ServiceError {
	msg := http.StatusText(status)
	var env errorEnvelope
	if json.Unmarshal(body, &env) == nil && env.Error.Message != "" {
		msg = env.Error.Message
	}

	kind := KindUpstream
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = KindAuth
	case status == http.StatusTooManyRequests:
		kind = KindRateLimit
	case status >= http.StatusInternalServerError:
		kind = KindUnavailable
	}
	return &ServiceError{Kind: kind, StatusCode: status, Message: msg}
}

// restyLogger routes resty's internal messages through zerolog.
type restyLogger struct {
	logger zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
