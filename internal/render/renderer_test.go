package render

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/riffvuln/udh-yappingny/internal/infrastructure/config"
	"github.com/riffvuln/udh-yappingny/internal/infrastructure/monitoring"
	"github.com/riffvuln/udh-yappingny/internal/session"
	"github.com/riffvuln/udh-yappingny/internal/webdriver"
	"github.com/riffvuln/udh-yappingny/internal/webdriver/webdrivertest"
)

// mockSessions is a mock implementation of Sessions.
type mockSessions struct {
	mock.Mock
}

func (m *mockSessions) Acquire(ctx context.Context) (session.Driver, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(session.Driver), args.Error(1)
}

func (m *mockSessions) Reset(ctx context.Context, driver session.Driver) error {
	return m.Called(ctx, driver).Error(0)
}

// mockDriver is a mock implementation of session.Driver.
type mockDriver struct {
	mock.Mock
}

func (d *mockDriver) ID() string { return "mock-session" }

func (d *mockDriver) Title(ctx context.Context) (string, error) {
	args := d.Called(ctx)
	return args.String(0), args.Error(1)
}

func (d *mockDriver) Navigate(ctx context.Context, url string) error {
	return d.Called(ctx, url).Error(0)
}

func (d *mockDriver) PageSource(ctx context.Context) (string, error) {
	args := d.Called(ctx)
	return args.String(0), args.Error(1)
}

func (d *mockDriver) DeleteAllCookies(ctx context.Context) error {
	return d.Called(ctx).Error(0)
}

// readyDriver also reports document.readyState.
type readyDriver struct {
	mockDriver
}

func (d *readyDriver) ReadyState(ctx context.Context) (string, error) {
	args := d.Called(ctx)
	return args.String(0), args.Error(1)
}

func testConfig() config.RenderConfig {
	return config.RenderConfig{
		SettleDelay:  0,
		WaitStrategy: config.WaitFixed,
		ReadyTimeout: time.Second,
		ReadyPoll:    time.Millisecond,
	}
}

func newRemoteRenderer(t *testing.T) (*webdrivertest.Server, *session.Manager, *Renderer) {
	t.Helper()
	remote := webdrivertest.NewServer()
	t.Cleanup(remote.Close)

	client := webdriver.NewClient(webdriver.Config{URL: remote.URL, Timeout: 5 * time.Second})
	factory, err := session.NewWebDriverFactory(client, webdriver.Firefox, true, nil)
	require.NoError(t, err)

	manager := session.NewManager(factory, nil)
	return remote, manager, NewRenderer(manager, testConfig(), nil)
}

func TestRenderReturnsMarkup(t *testing.T) {
	remote, manager, r := newRemoteRenderer(t)
	remote.SetPage("https://example.com", webdrivertest.Page{
		Title: "Example Domain",
		HTML:  "<html><head><title> Example Domain </title></head><body><h1>Example</h1></body></html>",
	})

	page, err := r.Render(context.Background(), "https://example.com")
	require.NoError(t, err)

	assert.Contains(t, page.HTML, "<h1>Example</h1>")
	assert.Equal(t, "Example Domain", page.Title)
	assert.Equal(t, "https://example.com", page.URL)
	assert.Equal(t, len(page.HTML), page.Bytes)

	driver, ok := manager.Current()
	require.True(t, ok)
	state, ok := remote.Session(driver.ID())
	require.True(t, ok)
	assert.Equal(t, webdriver.BlankPage, state.URL)
	assert.Empty(t, state.Cookies)
}

func TestRenderReusesSession(t *testing.T) {
	remote, _, r := newRemoteRenderer(t)

	for _, target := range []string{"https://a.example", "https://b.example"} {
		page, err := r.Render(context.Background(), target)
		require.NoError(t, err)
		assert.Contains(t, page.HTML, target)
	}
	assert.Equal(t, 1, remote.Created())
}

func TestRenderRecoversFromDeadSession(t *testing.T) {
	remote, manager, r := newRemoteRenderer(t)

	_, err := r.Render(context.Background(), "https://example.com")
	require.NoError(t, err)
	first, _ := manager.Current()

	remote.Kill(first.ID())

	page, err := r.Render(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Contains(t, page.HTML, "<html")

	second, _ := manager.Current()
	assert.NotEqual(t, first.ID(), second.ID())
}

func TestRenderMalformedURL(t *testing.T) {
	remote, manager, r := newRemoteRenderer(t)
	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	r.WithMetrics(metrics)

	_, err := r.Render(context.Background(), "not-a-valid-url")
	require.Error(t, err)
	assert.True(t, session.IsKind(err, session.KindNavigation))
	assert.True(t, webdriver.HasCode(err, webdriver.CodeInvalidArgument))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RenderErrors.WithLabelValues(PhaseNavigate)))

	// The session survives a bad target.
	driver, ok := manager.Current()
	require.True(t, ok)
	_, ok = remote.Session(driver.ID())
	assert.True(t, ok)
}

func TestRenderSourceFailure(t *testing.T) {
	remote, _, r := newRemoteRenderer(t)
	remote.FailSource(true)

	_, err := r.Render(context.Background(), "https://example.com")
	require.Error(t, err)
	assert.True(t, session.IsKind(err, session.KindExtraction))
}

func TestRenderCreationFailure(t *testing.T) {
	remote, _, r := newRemoteRenderer(t)
	remote.FailCreate(true)

	_, err := r.Render(context.Background(), "https://example.com")
	require.Error(t, err)
	assert.True(t, session.IsKind(err, session.KindCreation))
}

func TestRenderIgnoresResetFailure(t *testing.T) {
	driver := new(mockDriver)
	driver.On("Navigate", mock.Anything, "https://example.com").Return(nil)
	driver.On("PageSource", mock.Anything).Return("<html><body>ok</body></html>", nil)

	sessions := new(mockSessions)
	sessions.On("Acquire", mock.Anything).Return(driver, nil)
	sessions.On("Reset", mock.Anything, driver).Return(session.Wrap(session.KindReset, errors.New("cookie store unavailable")))

	page, err := NewRenderer(sessions, testConfig(), nil).Render(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "<html><body>ok</body></html>", page.HTML)
	assert.Empty(t, page.Title)

	sessions.AssertExpectations(t)
	driver.AssertExpectations(t)
}

func TestRenderFixedWait(t *testing.T) {
	driver := new(mockDriver)
	driver.On("Navigate", mock.Anything, mock.Anything).Return(nil)
	driver.On("PageSource", mock.Anything).Return("<html></html>", nil)

	sessions := new(mockSessions)
	sessions.On("Acquire", mock.Anything).Return(driver, nil)
	sessions.On("Reset", mock.Anything, driver).Return(nil)

	cfg := testConfig()
	cfg.SettleDelay = 500 * time.Millisecond
	r := NewRenderer(sessions, cfg, nil)

	var slept time.Duration
	r.sleep = func(ctx context.Context, d time.Duration) error {
		slept += d
		return nil
	}

	_, err := r.Render(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, slept)
}

func TestRenderReadyWaitPolls(t *testing.T) {
	driver := new(readyDriver)
	driver.On("Navigate", mock.Anything, mock.Anything).Return(nil)
	driver.On("ReadyState", mock.Anything).Return("loading", nil).Twice()
	driver.On("ReadyState", mock.Anything).Return("complete", nil).Once()
	driver.On("PageSource", mock.Anything).Return("<html></html>", nil)

	sessions := new(mockSessions)
	sessions.On("Acquire", mock.Anything).Return(driver, nil)
	sessions.On("Reset", mock.Anything, driver).Return(nil)

	cfg := testConfig()
	cfg.WaitStrategy = config.WaitReady
	r := NewRenderer(sessions, cfg, nil)

	polls := 0
	r.sleep = func(ctx context.Context, d time.Duration) error {
		polls++
		return nil
	}

	_, err := r.Render(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, polls)
	driver.AssertNumberOfCalls(t, "ReadyState", 3)
}

func TestRenderReadyWaitTimesOut(t *testing.T) {
	driver := new(readyDriver)
	driver.On("Navigate", mock.Anything, mock.Anything).Return(nil)
	driver.On("ReadyState", mock.Anything).Return("loading", nil)
	driver.On("PageSource", mock.Anything).Return("<html>partial</html>", nil)

	sessions := new(mockSessions)
	sessions.On("Acquire", mock.Anything).Return(driver, nil)
	sessions.On("Reset", mock.Anything, driver).Return(nil)

	cfg := testConfig()
	cfg.WaitStrategy = config.WaitReady
	cfg.ReadyTimeout = 20 * time.Millisecond
	cfg.ReadyPoll = 5 * time.Millisecond

	page, err := NewRenderer(sessions, cfg, nil).Render(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "<html>partial</html>", page.HTML)
}

func TestRenderReadyWaitAgainstRemote(t *testing.T) {
	remote := webdrivertest.NewServer()
	t.Cleanup(remote.Close)

	client := webdriver.NewClient(webdriver.Config{URL: remote.URL, Timeout: 5 * time.Second})
	factory, err := session.NewWebDriverFactory(client, webdriver.Chrome, true, nil)
	require.NoError(t, err)

	cfg := testConfig()
	cfg.WaitStrategy = config.WaitReady
	r := NewRenderer(session.NewManager(factory, nil), cfg, nil)

	page, err := r.Render(context.Background(), "https://example.com/path")
	require.NoError(t, err)
	assert.Equal(t, "example.com", page.Title)
}

func TestParseTitle(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{name: "simple", html: "<html><head><title>Hello</title></head></html>", want: "Hello"},
		{name: "missing", html: "<html><body>no title</body></html>", want: ""},
		{name: "fragment", html: "<title>Bare</title>", want: "Bare"},
		{name: "empty", html: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseTitle(tt.html))
		})
	}
}
