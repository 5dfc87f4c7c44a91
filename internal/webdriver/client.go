package webdriver

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
)

// Config configures the connection to a remote end.
type Config struct {
	// URL is the remote end base, e.g. http://localhost:4444 or .../wd/hub
	URL       string
	Timeout   time.Duration
	UserAgent string
}

// Client speaks the W3C WebDriver protocol to one remote end. It is safe for
// concurrent use; sessions created from it share its connection pool.
type Client struct {
	resty   *resty.Client
	baseURL string
}

// envelope is the body shape of every WebDriver response.
type envelope[T any] struct {
	Value T `json:"value"`
}

type errorValue struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	Stacktrace string `json:"stacktrace"`
}

// Status is the remote end readiness report.
type Status struct {
	Ready   bool   `json:"ready"`
	Message string `json:"message"`
}

// NewClient creates a client for the remote end at cfg.URL.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "udh-yappingny/1.0"
	}
	base := strings.TrimRight(cfg.URL, "/")

	// Only the pooled transport is borrowed. Commands are sent exactly once.
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.Logger = nil

	restyClient := resty.New()
	restyClient.
		SetBaseURL(base).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json; charset=utf-8").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal).
		SetTransport(retryClient.HTTPClient.Transport)

	return &Client{
		resty:   restyClient,
		baseURL: base,
	}
}

// URL returns the remote end base URL.
func (c *Client) URL() string {
	return c.baseURL
}

// Status queries GET /status.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	st, err := call[Status](ctx, c, http.MethodGet, "/status", nil)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// NewSession starts a browser on the remote end with the given capabilities.
func (c *Client) NewSession(ctx context.Context, caps Capabilities) (*Session, error) {
	// Legacy JSON-wire servers put sessionId at the top level.
	var reply struct {
		SessionID string `json:"sessionId"`
		Value     struct {
			SessionID    string         `json:"sessionId"`
			Capabilities map[string]any `json:"capabilities"`
		} `json:"value"`
	}
	var failure envelope[errorValue]

	body := map[string]any{
		"capabilities": map[string]any{
			"alwaysMatch": caps,
		},
	}

	resp, err := c.resty.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&reply).
		SetError(&failure).
		Post("/session")
	if err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}
	if resp.IsError() {
		return nil, newError(resp, failure.Value)
	}

	id := reply.Value.SessionID
	if id == "" {
		id = reply.SessionID
	}
	if id == "" {
		return nil, fmt.Errorf("new session: remote end returned no session id")
	}

	return &Session{
		client:  c,
		id:      id,
		caps:    reply.Value.Capabilities,
		created: time.Now(),
	}, nil
}

// call executes one command and decodes its value into T.
func call[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var (
		out     envelope[T]
		failure envelope[errorValue]
		zero    T
	)

	req := c.resty.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&failure)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return zero, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		return zero, newError(resp, failure.Value)
	}
	return out.Value, nil
}

func newError(resp *resty.Response, v errorValue) *Error {
	e := &Error{
		Status:     resp.StatusCode(),
		Code:       v.Error,
		Message:    v.Message,
		Stacktrace: v.Stacktrace,
	}
	if e.Code == "" {
		e.Code = CodeUnknownError
		e.Message = truncate(strings.TrimSpace(resp.String()), 256)
	}
	return e
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
