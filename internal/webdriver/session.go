package webdriver

import (
	"context"
	"net/http"
	"time"
)

// BlankPage is the neutral page sessions start on and are reset to.
const BlankPage = "about:blank"

// Session is a handle to one remote browsing context. All state (current
// page, cookies) lives on the remote end.
type Session struct {
	client  *Client
	id      string
	caps    map[string]any
	created time.Time
}

// Cookie is a WebDriver cookie object.
type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Path     string `json:"path,omitempty"`
	Domain   string `json:"domain,omitempty"`
	Secure   bool   `json:"secure,omitempty"`
	HTTPOnly bool   `json:"httpOnly,omitempty"`
	Expiry   int64  `json:"expiry,omitempty"`
	SameSite string `json:"sameSite,omitempty"`
}

// ID returns the remote session id.
func (s *Session) ID() string {
	return s.id
}

// Capabilities returns the capabilities the remote end agreed to.
func (s *Session) Capabilities() map[string]any {
	out := make(map[string]any, len(s.caps))
	for k, v := range s.caps {
		out[k] = v
	}
	return out
}

// Created returns when the session was started.
func (s *Session) Created() time.Time {
	return s.created
}

func (s *Session) path(suffix string) string {
	return "/session/" + s.id + suffix
}

// Navigate loads url in the current browsing context and blocks until the
// remote end considers navigation complete.
func (s *Session) Navigate(ctx context.Context, url string) error {
	_, err := call[any](ctx, s.client, http.MethodPost, s.path("/url"), map[string]string{"url": url})
	return err
}

// CurrentURL returns the URL of the current page.
func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	return call[string](ctx, s.client, http.MethodGet, s.path("/url"), nil)
}

// Title returns the current page title.
func (s *Session) Title(ctx context.Context) (string, error) {
	return call[string](ctx, s.client, http.MethodGet, s.path("/title"), nil)
}

// PageSource returns the serialized DOM of the current page.
func (s *Session) PageSource(ctx context.Context) (string, error) {
	return call[string](ctx, s.client, http.MethodGet, s.path("/source"), nil)
}

// Cookies returns all cookies visible to the current page.
func (s *Session) Cookies(ctx context.Context) ([]Cookie, error) {
	return call[[]Cookie](ctx, s.client, http.MethodGet, s.path("/cookie"), nil)
}

// DeleteAllCookies removes every cookie of the current browsing context.
func (s *Session) DeleteAllCookies(ctx context.Context) error {
	_, err := call[any](ctx, s.client, http.MethodDelete, s.path("/cookie"), nil)
	return err
}

// ExecuteScript runs a synchronous script and returns its result.
func (s *Session) ExecuteScript(ctx context.Context, script string, args ...any) (any, error) {
	if args == nil {
		args = []any{}
	}
	return call[any](ctx, s.client, http.MethodPost, s.path("/execute/sync"), map[string]any{
		"script": script,
		"args":   args,
	})
}

// ReadyState returns document.readyState of the current page.
func (s *Session) ReadyState(ctx context.Context) (string, error) {
	v, err := s.ExecuteScript(ctx, "return document.readyState")
	if err != nil {
		return "", err
	}
	state, _ := v.(string)
	return state, nil
}

// Close ends the remote session and quits its browser.
func (s *Session) Close(ctx context.Context) error {
	_, err := call[any](ctx, s.client, http.MethodDelete, s.path(""), nil)
	return err
}
