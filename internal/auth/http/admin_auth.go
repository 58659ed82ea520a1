package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clubroll/clubroll/internal/auth/domain"
	"github.com/clubroll/clubroll/internal/auth/service"
	"github.com/clubroll/clubroll/internal/auth/store"
	"github.com/clubroll/clubroll/pkg/httpx"
	"github.com/clubroll/clubroll/pkg/slogx"
)

// AdminAuthHandler serves the admin credential endpoints. Admin
// sessions are keyed by username.
type AdminAuthHandler struct {
	Admins       *service.AdminAuthService
	Auth         *service.AuthService
	CookieSecure bool
}

func (h *AdminAuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "username and password are required")
		return
	}

	result, err := h.Admins.Login(ctx, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPrincipalNotFound):
			httpx.WriteError(w, http.StatusNotFound, "unknown_principal", "No admin account with that username")
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Password does not match")
		case errors.Is(err, service.ErrSessionAlreadyActive):
			httpx.WriteError(w, http.StatusConflict, "session_active", "An active session already exists; log out first")
		default:
			log.Error("admin login failed", "err", err)
			httpx.WriteError(w, http.StatusServiceUnavailable, "service_unavailable", "Login backend unavailable")
		}
		return
	}

	setRefreshCookie(w, result.Pair.RefreshToken, h.Auth.Tokens.RefreshTTL, h.CookieSecure)
	httpx.WriteJSON(w, http.StatusCreated, AdminLoginResponse{
		AccessToken: result.Pair.AccessToken,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   int64(result.Pair.ExpiresIn.Seconds()),
		ClubName:    result.ClubName,
		ClubUniv:    result.ClubUniv,
	})
}

func (h *AdminAuthHandler) HandleReissue(w http.ResponseWriter, r *http.Request) {
	handleReissue(w, r, h.Auth, domain.RoleAdmin)
}

func (h *AdminAuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	handleLogout(w, r, h.Auth, h.CookieSecure)
}

func (h *AdminAuthHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req AdminJoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	id, err := h.Admins.Join(ctx, req.Username, req.Password, req.ClubName, req.ClubUniv)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUsernameTooShort),
			errors.Is(err, domain.ErrPasswordTooWeak),
			errors.Is(err, domain.ErrClubNameRequired):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		case errors.Is(err, store.ErrAlreadyExists):
			httpx.WriteError(w, http.StatusConflict, "username_taken", "Username is already registered")
		default:
			log.Error("admin join failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to register admin")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, JoinResponse{ID: id})
}

// handleReissue exchanges the cookie-presented refresh token for a new
// access token. The cookie is left untouched: the refresh value does
// not rotate and its expiry is never extended.
func handleReissue(w http.ResponseWriter, r *http.Request, auth *service.AuthService, role domain.Role) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	presented := refreshFromCookie(r)
	if presented == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Refresh cookie is missing or empty")
		return
	}

	pair, remaining, err := auth.Reissue(ctx, presented, role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMalformedRefresh):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Refresh cookie is missing or empty")
		case errors.Is(err, service.ErrRefreshNotFound):
			httpx.WriteError(w, http.StatusNotFound, "refresh_not_found", "Refresh token is unknown or expired")
		default:
			log.Error("reissue failed", "err", err)
			httpx.WriteError(w, http.StatusServiceUnavailable, "service_unavailable", "Session backend unavailable")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, ReissueResponse{
		AccessToken:      pair.AccessToken,
		TokenType:        tokenTypeBearer,
		ExpiresIn:        int64(pair.ExpiresIn.Seconds()),
		RefreshExpiresIn: int64(remaining.Seconds()),
	})
}

// handleLogout revokes whatever credentials the request presents and
// clears the refresh cookie. Always 200 unless the session backend is
// down: logging out twice is not an error.
func handleLogout(w http.ResponseWriter, r *http.Request, auth *service.AuthService, secureCookie bool) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	rawAccess, _ := httpx.BearerToken(r)
	presented := refreshFromCookie(r)

	if err := auth.Logout(ctx, rawAccess, presented); err != nil {
		log.Error("logout failed", "err", err)
		httpx.WriteError(w, http.StatusServiceUnavailable, "service_unavailable", "Session backend unavailable")
		return
	}

	clearRefreshCookie(w, secureCookie)
	httpx.WriteJSON(w, http.StatusOK, LogoutResponse{Status: "ok"})
}
