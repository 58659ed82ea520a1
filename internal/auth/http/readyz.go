package http

import (
	"net/http"
	"time"

	"github.com/clubroll/clubroll/internal/auth/session"
	"github.com/clubroll/clubroll/internal/auth/store"
	"github.com/clubroll/clubroll/pkg/httpx"
)

// ReadyzHandler is the readiness probe. It pings both backing stores:
// the service cannot log anyone in without the database, and cannot
// judge any token without the session store.
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	sessions session.Store,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &HealthChecks{
			Database:     "ok",
			SessionStore: "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if err := sessions.Ping(r.Context()); err != nil {
			checks.SessionStore = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
