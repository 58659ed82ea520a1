package http_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	httpapi "github.com/clubroll/clubroll/internal/auth/http"
	"github.com/clubroll/clubroll/internal/auth/service"
	"github.com/clubroll/clubroll/internal/auth/session/drivers/memory"
	"github.com/clubroll/clubroll/internal/auth/store/drivers/sqlite"
	"github.com/clubroll/clubroll/pkg/cryptox"
	"github.com/clubroll/clubroll/pkg/httpx"
	"github.com/clubroll/clubroll/pkg/jwtx"
)

type fixture struct {
	server   *httptest.Server
	sessions *memory.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	// Generous limits so handler tests never trip the limiter; the
	// profile is captured when routes are registered below.
	httpx.StrictLimit = httpx.RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000}

	cryptox.SetPepperPath(filepath.Join(t.TempDir(), "pepper"))

	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	codec, err := jwtx.NewCodec(base64.StdEncoding.EncodeToString(key), "clubroll-test")
	require.NoError(t, err)

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	sessions := memory.NewStore()

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
	router := httpapi.NewRouter("test", st, sessions, logger)
	router.AuthService = auth
	router.AdminService = &service.AdminAuthService{Store: st, Auth: auth}
	router.UserService = &service.UserAuthService{Store: st, Auth: auth}
	router.ApplyRoutes()

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &fixture{server: server, sessions: sessions}
}

func (f *fixture) post(t *testing.T, path string, body any, mutate ...func(*http.Request)) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(http.MethodPost, f.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for _, m := range mutate {
		m(req)
	}

	resp, err := f.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (f *fixture) get(t *testing.T, path string, mutate ...func(*http.Request)) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, f.server.URL+path, nil)
	require.NoError(t, err)
	for _, m := range mutate {
		m(req)
	}

	resp, err := f.server.Client().Do(req)
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

func joinAdmin(t *testing.T, f *fixture) {
	t.Helper()
	resp := f.post(t, "/v1/admin/auth/join", httpapi.AdminJoinRequest{
		Username: "robotics",
		Password: "s3cretpass",
		ClubName: "Robotics Club",
		ClubUniv: "Acme University",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestAdminLoginFlow(t *testing.T) {
	f := newFixture(t)
	joinAdmin(t, f)

	resp := f.post(t, "/v1/admin/auth/login", httpapi.AdminLoginRequest{
		Username: "robotics", Password: "s3cretpass",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))

	refresh := refreshCookieValue(t, resp)
	require.NotEmpty(t, refresh)

	body := decode[httpapi.AdminLoginResponse](t, resp)
	require.NotEmpty(t, body.AccessToken)
	require.Equal(t, "Bearer", body.TokenType)
	require.Equal(t, int64(3600), body.ExpiresIn)
	require.Equal(t, "Robotics Club", body.ClubName)

	// The minted access token opens the profile endpoint.
	me := f.get(t, "/v1/admin/me", withBearer(body.AccessToken))
	require.Equal(t, http.StatusOK, me.StatusCode)
	profile := decode[httpapi.AdminProfileResponse](t, me)
	require.Equal(t, "robotics", profile.Username)
}

func TestAdminLoginErrors(t *testing.T) {
	f := newFixture(t)
	joinAdmin(t, f)

	resp := f.post(t, "/v1/admin/auth/login", httpapi.AdminLoginRequest{Username: "nobody", Password: "s3cretpass"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.post(t, "/v1/admin/auth/login", httpapi.AdminLoginRequest{Username: "robotics", Password: "wrongpass1"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = f.post(t, "/v1/admin/auth/login", httpapi.AdminLoginRequest{Username: "robotics"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Second login while a session is live conflicts.
	resp = f.post(t, "/v1/admin/auth/login", httpapi.AdminLoginRequest{Username: "robotics", Password: "s3cretpass"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = f.post(t, "/v1/admin/auth/login", httpapi.AdminLoginRequest{Username: "robotics", Password: "s3cretpass"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestReissueFlow(t *testing.T) {
	f := newFixture(t)
	joinAdmin(t, f)

	login := f.post(t, "/v1/admin/auth/login", httpapi.AdminLoginRequest{Username: "robotics", Password: "s3cretpass"})
	require.Equal(t, http.StatusCreated, login.StatusCode)
	refresh := refreshCookieValue(t, login)
	loginBody := decode[httpapi.AdminLoginResponse](t, login)

	resp := f.post(t, "/v1/admin/auth/reissue", nil, withRefreshCookie(refresh))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[httpapi.ReissueResponse](t, resp)
	require.NotEmpty(t, body.AccessToken)
	require.Greater(t, body.RefreshExpiresIn, int64(0))

	// No rotation: reissue never re-sets the cookie.
	for _, c := range resp.Cookies() {
		require.NotEqual(t, httpapi.RefreshCookieName, c.Name)
	}

	// Both access tokens authenticate.
	require.Equal(t, http.StatusOK, f.get(t, "/v1/admin/me", withBearer(loginBody.AccessToken)).StatusCode)
	require.Equal(t, http.StatusOK, f.get(t, "/v1/admin/me", withBearer(body.AccessToken)).StatusCode)
}

func TestReissueErrors(t *testing.T) {
	f := newFixture(t)

	// No cookie at all.
	resp := f.post(t, "/v1/admin/auth/reissue", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Unknown refresh value.
	resp = f.post(t, "/v1/admin/auth/reissue", nil, withRefreshCookie("never-issued"))
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLogoutFlow(t *testing.T) {
	f := newFixture(t)
	joinAdmin(t, f)

	login := f.post(t, "/v1/admin/auth/login", httpapi.AdminLoginRequest{Username: "robotics", Password: "s3cretpass"})
	refresh := refreshCookieValue(t, login)
	body := decode[httpapi.AdminLoginResponse](t, login)

	resp := f.post(t, "/v1/admin/auth/logout", nil, withBearer(body.AccessToken), withRefreshCookie(refresh))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The access token is dead before its natural expiry.
	require.Equal(t, http.StatusUnauthorized, f.get(t, "/v1/admin/me", withBearer(body.AccessToken)).StatusCode)

	// The refresh session is gone.
	resp = f.post(t, "/v1/admin/auth/reissue", nil, withRefreshCookie(refresh))
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Logging out again is still 200.
	resp = f.post(t, "/v1/admin/auth/logout", nil, withBearer(body.AccessToken), withRefreshCookie(refresh))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// And a fresh login works immediately.
	resp = f.post(t, "/v1/admin/auth/login", httpapi.AdminLoginRequest{Username: "robotics", Password: "s3cretpass"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestUserFlowAndRoleSeparation(t *testing.T) {
	f := newFixture(t)

	resp := f.post(t, "/v1/user/auth/join", httpapi.UserJoinRequest{
		Email: "alice@example.com", Password: "s3cretpass", Name: "Alice",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	login := f.post(t, "/v1/user/auth/login", httpapi.UserLoginRequest{
		Email: "alice@example.com", Password: "s3cretpass",
	})
	require.Equal(t, http.StatusCreated, login.StatusCode)
	body := decode[httpapi.UserLoginResponse](t, login)
	require.Equal(t, "Alice", body.Name)

	// A user token opens the user profile but not the admin one.
	require.Equal(t, http.StatusOK, f.get(t, "/v1/user/me", withBearer(body.AccessToken)).StatusCode)
	require.Equal(t, http.StatusForbidden, f.get(t, "/v1/admin/me", withBearer(body.AccessToken)).StatusCode)
}

func TestMeRequiresToken(t *testing.T) {
	f := newFixture(t)

	resp := f.get(t, "/v1/admin/me")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Contains(t, resp.Header.Get("WWW-Authenticate"), "invalid_token")

	resp = f.get(t, "/v1/admin/me", withBearer("garbage"))
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealthEndpoints(t *testing.T) {
	f := newFixture(t)

	resp := f.get(t, "/livez")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	live := decode[httpapi.HealthResponse](t, resp)
	require.Equal(t, "ok", live.Status)

	resp = f.get(t, "/readyz")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ready := decode[httpapi.HealthResponse](t, resp)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.SessionStore)
}

func TestExpiredSessionForcesRelogin(t *testing.T) {
	f := newFixture(t)
	joinAdmin(t, f)

	base := time.Now()
	f.sessions.Now = func() time.Time { return base }

	login := f.post(t, "/v1/admin/auth/login", httpapi.AdminLoginRequest{Username: "robotics", Password: "s3cretpass"})
	refresh := refreshCookieValue(t, login)

	// The whole refresh window elapses.
	f.sessions.Now = func() time.Time { return base.Add(jwtx.DefaultRefreshTokenTTL + time.Minute) }

	resp := f.post(t, "/v1/admin/auth/reissue", nil, withRefreshCookie(refresh))
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.post(t, "/v1/admin/auth/login", httpapi.AdminLoginRequest{Username: "robotics", Password: "s3cretpass"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}
