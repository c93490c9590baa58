package app_test

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/quewww/blog/internal/app"
	"github.com/quewww/blog/internal/infra/database"
	"github.com/quewww/blog/internal/infra/logging"
	http_ "github.com/quewww/blog/internal/infra/transport/http"
	"github.com/quewww/blog/internal/svc/authsvc"
)

func testConfig(t *testing.T) app.Config {
	t.Helper()

	dir := t.TempDir()

	return app.Config{
		HTTP: http_.HTTPTransportConfig{
			ServerAddr:      "127.0.0.1:0",
			ShutdownTimeout: 5 * time.Second,
		},
		Database: database.Config{
			Driver:      database.DriverSQLite,
			DSN:         filepath.Join(dir, "blog.db"),
			BusyTimeout: time.Second,
		},
		Auth: authsvc.AuthConfig{
			SigningKeyFile:  filepath.Join(dir, "keys", "session.key"),
			SessionDuration: time.Hour,
			BcryptCost:      bcrypt.MinCost,
			CookieName:      "blog_session",
			Issuer:          "blog-test",
		},
	}
}

type client struct {
	t      *testing.T
	http   *http.Client
	server *httptest.Server
}

func newClient(t *testing.T) *client {
	t.Helper()

	a, err := app.New(t.Context(), testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	server := httptest.NewServer(a.Handler())
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &client{
		t: t,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		server: server,
	}
}

func (c *client) do(method, path string, form url.Values) (int, string, string) {
	c.t.Helper()

	req, err := http.NewRequestWithContext(c.t.Context(), method, c.server.URL+path, strings.NewReader(form.Encode()))
	require.NoError(c.t, err)

	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)

	return resp.StatusCode, resp.Header.Get("Location"), string(body)
}

func TestApp_PostLifecycle(t *testing.T) {
	t.Parallel()

	c := newClient(t)

	status, location, _ := c.do(http.MethodPost, "/register",
		url.Values{"username": {"alice"}, "email": {"a@x.com"}, "password": {"pw1"}})
	require.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/login", location)

	status, _, body := c.do(http.MethodPost, "/register",
		url.Values{"username": {"alice"}, "email": {"other@x.com"}, "password": {"pw1"}})
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, body, "username already exists")

	status, location, _ = c.do(http.MethodPost, "/login", url.Values{"username": {"alice"}, "password": {"pw1"}})
	require.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/", location)

	status, location, _ = c.do(http.MethodPost, "/create", url.Values{"title": {"T"}, "content": {"C"}, "author": {"A"}})
	require.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/", location)

	status, _, body = c.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, strings.Count(body, `<a href="/post/`))
	assert.Contains(t, body, ">T</a>")

	status, location, _ = c.do(http.MethodPost, "/post/1/edit", url.Values{"title": {"T2"}, "content": {"C2"}, "author": {"A"}})
	require.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/post/1", location)

	status, _, body = c.do(http.MethodGet, "/post/1", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "T2")
	assert.Contains(t, body, "C2")

	status, _, body = c.do(http.MethodGet, "/profile/alice", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "T2")

	status, location, _ = c.do(http.MethodPost, "/post/1/delete", nil)
	require.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/", location)

	_, _, body = c.do(http.MethodGet, "/", nil)
	assert.NotContains(t, body, `<a href="/post/`)

	status, location, _ = c.do(http.MethodPost, "/logout", nil)
	require.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/login", location)

	status, location, _ = c.do(http.MethodGet, "/create", nil)
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/login", location)
}

func TestApp_GuardedRoutesWithoutSession(t *testing.T) {
	t.Parallel()

	c := newClient(t)

	status, location, _ := c.do(http.MethodPost, "/create", url.Values{"title": {"T"}, "content": {"C"}})
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/login", location)

	status, _, body := c.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, body, `<a href="/post/`)

	status, _, _ = c.do(http.MethodPost, "/login", url.Values{"username": {"ghost"}, "password": {"x"}})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestApp_Serve(t *testing.T) {
	t.Parallel()

	a, err := app.New(t.Context(), testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	sock, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)

	go func() { done <- a.Serve(ctx, sock) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + sock.Addr().String() + "/about") //nolint:noctx
		if err != nil {
			return false
		}

		_ = resp.Body.Close()

		return resp.StatusCode == http.StatusOK && resp.Header.Get(http_.TraceIDHeader) != ""
	}, 5*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestInitDB(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)

	require.NoError(t, app.InitDB(t.Context(), cfg.Database))
	require.NoError(t, app.InitDB(t.Context(), cfg.Database))
	assert.FileExists(t, cfg.Database.DSN)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

//nolint:paralleltest // reconfigures the global logger
func TestApp_ServeLogsSessionCleanupOnce(t *testing.T) {
	var out syncBuffer

	logging.Configure(t.Context(), logging.LoggerConfig{Level: "debug", NoColor: true, OutputHandle: &out}, app.Name)
	t.Cleanup(func() { logging.Configure(context.Background(), logging.LoggerConfig{Output: "discard"}, app.Name) })

	a, err := app.New(t.Context(), testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	sock, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)

	go func() { done <- a.Serve(ctx, sock) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "listening")
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 1, strings.Count(out.String(), "expired sessions removed"))
}
