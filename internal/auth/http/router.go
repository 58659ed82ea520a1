package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/clubroll/clubroll/internal/auth/domain"
	"github.com/clubroll/clubroll/internal/auth/service"
	"github.com/clubroll/clubroll/internal/auth/session"
	"github.com/clubroll/clubroll/internal/auth/store"
	"github.com/clubroll/clubroll/pkg/httpx"
	"github.com/clubroll/clubroll/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store    store.Store
	sessions session.Store

	AuthService  *service.AuthService
	AdminService *service.AdminAuthService
	UserService  *service.UserAuthService

	// CookieSecure marks the refresh cookie Secure; enabled outside of
	// local development.
	CookieSecure bool
}

func NewRouter(
	buildVersion string,
	st store.Store,
	sessions session.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		sessions:     sessions,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAdminAuth()
	r.registerUserAuth()
	r.registerProfiles()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAdminAuth() {
	h := &AdminAuthHandler{
		Admins:       r.AdminService,
		Auth:         r.AuthService,
		CookieSecure: r.CookieSecure,
	}

	// Credential endpoints carry strict limits against brute force.
	r.Mux.Handle("POST /v1/admin/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/admin/auth/join",
		httpx.Chain(http.HandlerFunc(h.HandleJoin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// Reissue is guess-limited the same way: the cookie value is the
	// only credential presented.
	r.Mux.Handle("POST /v1/admin/auth/reissue",
		httpx.Chain(http.HandlerFunc(h.HandleReissue),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/admin/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerUserAuth() {
	h := &UserAuthHandler{
		Users:        r.UserService,
		Auth:         r.AuthService,
		CookieSecure: r.CookieSecure,
	}

	r.Mux.Handle("POST /v1/user/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/user/auth/join",
		httpx.Chain(http.HandlerFunc(h.HandleJoin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/user/auth/reissue",
		httpx.Chain(http.HandlerFunc(h.HandleReissue),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/user/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerProfiles() {
	h := &MeHandler{Store: r.store}

	r.Mux.Handle("GET /v1/admin/me",
		httpx.Chain(http.HandlerFunc(h.HandleAdmin),
			httpx.AuthnMiddleware(r.AuthService),
			httpx.RequireRole(domain.RoleAdmin),
			httpx.RateLimitByPrincipal(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /v1/user/me",
		httpx.Chain(http.HandlerFunc(h.HandleUser),
			httpx.AuthnMiddleware(r.AuthService),
			httpx.RequireRole(domain.RoleUser),
			httpx.RateLimitByPrincipal(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health endpoints stay lenient: monitoring may poll frequently.
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.sessions),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
