package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aussiebroadwan/mfa/internal/mfa/service"
	"github.com/aussiebroadwan/mfa/internal/mfa/store"
	"github.com/aussiebroadwan/mfa/pkg/httpx"
	"github.com/aussiebroadwan/mfa/pkg/jwtx"
	"github.com/aussiebroadwan/mfa/pkg/slogx"

	_ "github.com/aussiebroadwan/mfa/api/mfa" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// RateLimits are the per-route throttling profiles.
type RateLimits struct {
	Strict   httpx.RateLimitConfig
	Moderate httpx.RateLimitConfig
	Lenient  httpx.RateLimitConfig
}

// DefaultRateLimits returns the httpx profiles unchanged.
func DefaultRateLimits() RateLimits {
	return RateLimits{
		Strict:   httpx.StrictLimit,
		Moderate: httpx.ModerateLimit,
		Lenient:  httpx.LenientLimit,
	}
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store
	gatherer     prometheus.Gatherer

	MFAService *service.MFAService

	// RequiredScope, when set, must be present in the token's scopes for
	// every /v1/mfa route.
	RequiredScope string
	Limits        RateLimits
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	gatherer prometheus.Gatherer,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		gatherer:     gatherer,
		logger:       logger,
		Limits:       DefaultRateLimits(),
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerMFA()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Campus MFA Service API
//	@version		0.1.0
//	@description	TOTP enrollment, verification and backup-code recovery for campus accounts.
//	@description
//	@description				All /v1/mfa routes require an access token issued by the campus identity provider.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/mfa
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// secured wraps h with authentication, the optional scope check and a
// per-user rate limit.
func (r *Router) secured(h http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
	mws := []httpx.Middleware{httpx.AuthnMiddleware(r.verifier)}
	if r.RequiredScope != "" {
		mws = append(mws, httpx.RequireAnyScope(r.RequiredScope))
	}
	mws = append(mws, httpx.RateLimitByUser(limit))
	return httpx.Chain(h, mws...)
}

func (r *Router) registerMFA() {
	h := &MFAHandler{MFAService: r.MFAService}

	// Code-bearing routes get the strict limit to slow down guessing.
	r.Mux.Handle("POST /v1/mfa/setup", r.secured(h.HandleSetup, r.Limits.Moderate))
	r.Mux.Handle("POST /v1/mfa/enable", r.secured(h.HandleEnable, r.Limits.Strict))
	r.Mux.Handle("POST /v1/mfa/verify", r.secured(h.HandleVerify, r.Limits.Strict))
	r.Mux.Handle("POST /v1/mfa/disable", r.secured(h.HandleDisable, r.Limits.Strict))
	r.Mux.Handle("POST /v1/mfa/backup-codes", r.secured(h.HandleRegenerateBackupCodes, r.Limits.Strict))
	r.Mux.Handle("GET /v1/mfa/status", r.secured(h.HandleStatus, r.Limits.Moderate))
	r.Mux.Handle("GET /v1/mfa/attempts", r.secured(h.HandleAttempts, r.Limits.Moderate))
}

func (r *Router) registerSystem() {
	// Probes and scrapes poll frequently
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.Limits.Lenient),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(r.Limits.Lenient),
		),
	)
	if r.gatherer != nil {
		r.Mux.Handle("GET /metrics", promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{}))
	}
}
