package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/salesdesk/internal/crm/store"
	"github.com/aussiebroadwan/salesdesk/pkg/crmsdk"
	"github.com/aussiebroadwan/salesdesk/pkg/httpx"
)

// healthReporter is implemented by stores made of several backends.
type healthReporter interface {
	Health(ctx context.Context) map[string]error
}

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Pings every storage backend. The service is ready while at least one backend answers.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	crmsdk.HealthResponse
//	@Failure		503	{object}	crmsdk.HealthResponse
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := &crmsdk.HealthChecks{Database: "ok"}
		healthy := true

		if hr, ok := st.(healthReporter); ok {
			checks.Backends = map[string]string{}
			healthy = false
			for name, err := range hr.Health(ctx) {
				if err != nil {
					checks.Backends[name] = "error: " + err.Error()
					continue
				}
				checks.Backends[name] = "ok"
				healthy = true
			}
		} else if err := st.Ping(ctx); err != nil {
			healthy = false
		}

		status, code := "ok", http.StatusOK
		if !healthy {
			checks.Database = "unavailable"
			status, code = "degraded", http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, crmsdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
