package http

import (
	"errors"
	"net/http"

	"github.com/clubroll/clubroll/internal/auth/store"
	"github.com/clubroll/clubroll/pkg/httpx"
	"github.com/clubroll/clubroll/pkg/slogx"
)

// MeHandler resolves the authenticated principal back to its profile
// row. Doubles as the integration probe for the whole token path.
type MeHandler struct {
	Store store.Store
}

func (h *MeHandler) HandleAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	p, ok := httpx.PrincipalFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "No principal in request")
		return
	}

	admin, err := h.Store.Admins().GetAdminByUsername(ctx, p.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// The token outlived the account.
			httpx.WriteError(w, http.StatusNotFound, "unknown_principal", "Admin account no longer exists")
			return
		}
		log.Error("admin profile lookup failed", "err", err)
		httpx.WriteError(w, http.StatusServiceUnavailable, "service_unavailable", "Profile backend unavailable")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, AdminProfileResponse{
		Username: admin.Username,
		ClubName: admin.ClubName,
		ClubUniv: admin.ClubUniv,
	})
}

func (h *MeHandler) HandleUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	p, ok := httpx.PrincipalFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "No principal in request")
		return
	}

	user, err := h.Store.Users().GetUserByEmail(ctx, p.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "unknown_principal", "User account no longer exists")
			return
		}
		log.Error("user profile lookup failed", "err", err)
		httpx.WriteError(w, http.StatusServiceUnavailable, "service_unavailable", "Profile backend unavailable")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, UserProfileResponse{
		Email: user.Email,
		Name:  user.Name,
	})
}
