package answering

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-go-golems/chatty/pkg/security"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the local development address of the answering service.
const DefaultBaseURL = "http://localhost:8000"

// ErrServiceUnavailable is the single error kind reported by the client.
// Network failures, non-2xx statuses and malformed bodies all wrap it.
var ErrServiceUnavailable = errors.New("answering service unavailable")

// Asker is the request/response contract the session depends on.
type Asker interface {
	Ask(ctx context.Context, message string, sessionID string) (*Answer, error)
}

// Answer is a decoded, validated reply to a chat request.
type Answer struct {
	Text                  string
	ProcessingTimeSeconds float64
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// Client talks to the answering service over HTTP. It holds no conversation state.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	urlOptions security.OutboundURLOptions
}

var _ Asker = (*Client)(nil)

type ClientOption func(*Client)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithURLOptions(opts security.OutboundURLOptions) ClientOption {
	return func(c *Client) {
		c.urlOptions = opts
	}
}

func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// NewClient validates baseURL and returns a client for it.
func NewClient(baseURL string, options ...ClientOption) (*Client, error) {
	ret := &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  "go-go-golems/chatty",
		urlOptions: security.LocalDevelopmentOptions(),
	}
	for _, option := range options {
		option(ret)
	}

	if err := security.ValidateOutboundURL(ret.baseURL, ret.urlOptions); err != nil {
		return nil, errors.Wrapf(err, "invalid answering service base URL %q", baseURL)
	}

	return ret, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ask posts message to {baseURL}/chat. It neither retries nor enforces a timeout;
// ctx is the only way to bound the call.
func (c *Client) Ask(ctx context.Context, message string, sessionID string) (*Answer, error) {
	body, err := json.Marshal(chatRequest{
		Message:   message,
		SessionID: sessionID,
	})
	if err != nil {
		return nil, unavailable(err, "could not encode chat request")
	}

	respBody, err := c.do(ctx, http.MethodPost, "/chat", body)
	if err != nil {
		return nil, err
	}

	answer, err := decodeAnswer(respBody)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("session_id", sessionID).
		Float64("processing_time", answer.ProcessingTimeSeconds).
		Int("answer_length", len(answer.Text)).
		Msg("Received answer")

	return answer, nil
}

func (c *Client) do(ctx context.Context, method string, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, unavailable(err, "could not create request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	// #nosec G107 -- base URL is validated in NewClient.
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, unavailable(err, "request to %s failed", path)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, unavailable(err, "could not read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, unavailable(
			errors.Errorf("status %d: %s", resp.StatusCode, truncate(string(respBody), 200)),
			"%s %s returned a non-success status", method, path,
		)
	}

	return respBody, nil
}

// unavailable collapses a concrete cause into ErrServiceUnavailable while keeping
// the cause in the message for logs.
func unavailable(cause error, format string, args ...interface{}) error {
	return &serviceError{
		cause: errors.Wrapf(cause, format, args...),
	}
}

type serviceError struct {
	cause error
}

func (e *serviceError) Error() string {
	return ErrServiceUnavailable.Error() + ": " + e.cause.Error()
}

func (e *serviceError) Is(target error) bool {
	return target == ErrServiceUnavailable
}

func (e *serviceError) Unwrap() error {
	return e.cause
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
