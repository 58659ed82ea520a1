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

// UserAuthHandler serves the end-user credential endpoints. User
// sessions are keyed by email.
type UserAuthHandler struct {
	Users        *service.UserAuthService
	Auth         *service.AuthService
	CookieSecure bool
}

func (h *UserAuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req UserLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	result, err := h.Users.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPrincipalNotFound):
			httpx.WriteError(w, http.StatusNotFound, "unknown_principal", "No account with that email")
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Password does not match")
		case errors.Is(err, service.ErrSessionAlreadyActive):
			httpx.WriteError(w, http.StatusConflict, "session_active", "An active session already exists; log out first")
		default:
			log.Error("user login failed", "err", err)
			httpx.WriteError(w, http.StatusServiceUnavailable, "service_unavailable", "Login backend unavailable")
		}
		return
	}

	setRefreshCookie(w, result.Pair.RefreshToken, h.Auth.Tokens.RefreshTTL, h.CookieSecure)
	httpx.WriteJSON(w, http.StatusCreated, UserLoginResponse{
		AccessToken: result.Pair.AccessToken,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   int64(result.Pair.ExpiresIn.Seconds()),
		Name:        result.Name,
	})
}

func (h *UserAuthHandler) HandleReissue(w http.ResponseWriter, r *http.Request) {
	handleReissue(w, r, h.Auth, domain.RoleUser)
}

func (h *UserAuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	handleLogout(w, r, h.Auth, h.CookieSecure)
}

func (h *UserAuthHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req UserJoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	id, err := h.Users.Join(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidEmail),
			errors.Is(err, domain.ErrPasswordTooWeak),
			errors.Is(err, domain.ErrNameRequired):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		case errors.Is(err, store.ErrAlreadyExists):
			httpx.WriteError(w, http.StatusConflict, "email_taken", "Email is already registered")
		default:
			log.Error("user join failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to register user")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, JoinResponse{ID: id})
}
