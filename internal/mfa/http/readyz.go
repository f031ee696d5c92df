package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/mfa/internal/mfa/store"
	"github.com/aussiebroadwan/mfa/pkg/httpx"
	"github.com/aussiebroadwan/mfa/pkg/jwtx"
	"github.com/aussiebroadwan/mfa/pkg/mfasdk"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe checking the database and that token verification keys are loaded.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	mfasdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	mfasdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	keys *jwtx.KeySet,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &mfasdk.HealthChecks{
			Database: "ok",
			Keys:     "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		// Without keys every authenticated route answers 401.
		if !keys.IsReady() {
			checks.Keys = "error: no verification keys loaded"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, mfasdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
