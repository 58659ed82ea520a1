package auth_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	httpapi "github.com/clubroll/clubroll/internal/auth/http"
	"github.com/clubroll/clubroll/internal/auth/service"
	"github.com/clubroll/clubroll/internal/auth/session"
	sessionredis "github.com/clubroll/clubroll/internal/auth/session/drivers/redis"
	"github.com/clubroll/clubroll/internal/auth/store/drivers/sqlite"
	"github.com/clubroll/clubroll/pkg/cryptox"
	"github.com/clubroll/clubroll/pkg/httpx"
	"github.com/clubroll/clubroll/pkg/jwtx"
)

/*
 * End-to-end tests for the auth service against a real Redis instance.
 * The service itself runs in-process; only the session backend is
 * containerized.
 */

const redisImage = "redis:7-alpine"

// startRedis launches a throwaway Redis container and returns its
// address.
func startRedis(t *testing.T) string {
	t.Helper()

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        redisImage,
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	return net.JoinHostPort(host, port.Port())
}

type env struct {
	server   *httptest.Server
	sessions session.Store
}

// newEnv wires the full service: SQLite principals, Redis sessions,
// real router and middleware, served over httptest.
func newEnv(t *testing.T) *env {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	httpx.StrictLimit = httpx.RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000}

	cryptox.SetPepperPath(filepath.Join(t.TempDir(), "pepper"))

	sessions, err := sessionredis.NewStore(sessionredis.Config{Addr: startRedis(t)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sessions.Close() })

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i * 3)
	}
	codec, err := jwtx.NewCodec(base64.StdEncoding.EncodeToString(key), "clubroll-e2e")
	require.NoError(t, err)

	auth := &service.AuthService{
		Tokens: &service.TokenService{
			Codec:      codec,
			Sessions:   sessions,
			AccessTTL:  jwtx.DefaultAccessTokenTTL,
			RefreshTTL: jwtx.DefaultRefreshTokenTTL,
		},
		Revoker: &service.SessionService{Codec: codec, Sessions: sessions},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := httpapi.NewRouter("e2e", st, sessions, logger)
	router.AuthService = auth
	router.AdminService = &service.AdminAuthService{Store: st, Auth: auth}
	router.UserService = &service.UserAuthService{Store: st, Auth: auth}
	router.ApplyRoutes()

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &env{server: server, sessions: sessions}
}

func (e *env) post(t *testing.T, path string, body any, mutate ...func(*http.Request)) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(http.MethodPost, e.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for _, m := range mutate {
		m(req)
	}

	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (e *env) get(t *testing.T, path string, mutate ...func(*http.Request)) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, e.server.URL+path, nil)
	require.NoError(t, err)
	for _, m := range mutate {
		m(req)
	}

	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func withBearer(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func withRefreshCookie(value string) func(*http.Request) {
	return func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: httpapi.RefreshCookieName, Value: value})
	}
}

func refreshCookieValue(t *testing.T, resp *http.Response) string {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == httpapi.RefreshCookieName {
			return c.Value
		}
	}
	t.Fatalf("response carries no %s cookie", httpapi.RefreshCookieName)
	return ""
}
