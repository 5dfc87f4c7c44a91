package session

import (
	"context"
	"fmt"

	"github.com/riffvuln/udh-yappingny/internal/webdriver"
)

// Driver is the part of a remote browser session the service drives.
// *webdriver.Session implements it.
type Driver interface {
	ID() string
	Title(ctx context.Context) (string, error)
	Navigate(ctx context.Context, url string) error
	PageSource(ctx context.Context) (string, error)
	DeleteAllCookies(ctx context.Context) error
}

// Factory starts new remote sessions.
type Factory interface {
	Create(ctx context.Context) (Driver, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(ctx context.Context) (Driver, error)

// Create calls f.
func (f FactoryFunc) Create(ctx context.Context) (Driver, error) {
	return f(ctx)
}

// WebDriverFactory starts sessions on a W3C remote end.
type WebDriverFactory struct {
	Client       *webdriver.Client
	Capabilities webdriver.Capabilities
}

// NewWebDriverFactory builds a factory for browser with the given arguments.
func NewWebDriverFactory(client *webdriver.Client, browser string, headless bool, args []string) (*WebDriverFactory, error) {
	caps, err := webdriver.BrowserCapabilities(browser, headless, args)
	if err != nil {
		return nil, err
	}
	return &WebDriverFactory{Client: client, Capabilities: caps}, nil
}

// Create starts a session and parks it on the blank page. A session that
// cannot reach the blank page is closed and reported as a failure.
func (f *WebDriverFactory) Create(ctx context.Context) (Driver, error) {
	sess, err := f.Client.NewSession(ctx, f.Capabilities)
	if err != nil {
		return nil, fmt.Errorf("start session at %s: %w", f.Client.URL(), err)
	}

	if err := sess.Navigate(ctx, webdriver.BlankPage); err != nil {
		_ = sess.Close(ctx)
		return nil, fmt.Errorf("initial navigation to %s: %w", webdriver.BlankPage, err)
	}

	return sess, nil
}
