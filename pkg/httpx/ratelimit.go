package httpx

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/mfa/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines a token bucket per key.
type RateLimitConfig struct {
	// RequestsPerWindow is the number of requests allowed in the time window
	RequestsPerWindow int
	// Window is the time window for rate limiting
	Window time.Duration
	// Burst allows for temporary bursts above the rate limit
	Burst int
}

// Default profiles. Strict guards endpoints that accept a one-time code,
// moderate covers the authenticated reads, lenient the probes.
var (
	StrictLimit = RateLimitConfig{
		RequestsPerWindow: 5,
		Window:            time.Minute,
		Burst:             5,
	}

	ModerateLimit = RateLimitConfig{
		RequestsPerWindow: 30,
		Window:            time.Minute,
		Burst:             30,
	}

	LenientLimit = RateLimitConfig{
		RequestsPerWindow: 300,
		Window:            time.Minute,
		Burst:             300,
	}
)

// ParseRateLimitFromEnv overlays RATELIMIT_{prefix}_REQUESTS,
// RATELIMIT_{prefix}_WINDOW_SEC and RATELIMIT_{prefix}_BURST onto def.
// Missing or non-positive values keep the default.
func ParseRateLimitFromEnv(prefix string, def RateLimitConfig) RateLimitConfig {
	cfg := def
	if n := positiveEnvInt("RATELIMIT_" + prefix + "_REQUESTS"); n > 0 {
		cfg.RequestsPerWindow = n
	}
	if n := positiveEnvInt("RATELIMIT_" + prefix + "_WINDOW_SEC"); n > 0 {
		cfg.Window = time.Duration(n) * time.Second
	}
	if n := positiveEnvInt("RATELIMIT_" + prefix + "_BURST"); n > 0 {
		cfg.Burst = n
	}
	return cfg
}

func positiveEnvInt(key string) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// KeyExtractor picks the bucket a request is charged to.
type KeyExtractor func(*http.Request) string

// IPKeyExtractor keys by client address.
func IPKeyExtractor(r *http.Request) string { return ClientIP(r) }

// UserIDKeyExtractor keys by authenticated subject, or "" when anonymous.
func UserIDKeyExtractor(r *http.Request) string {
	id, _ := UserIDFromContext(r.Context())
	return id
}

// CompositeKeyExtractor joins the non-empty keys of several extractors.
func CompositeKeyExtractor(sep string, extractors ...KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		var parts []string
		for _, extractor := range extractors {
			if key := extractor(r); key != "" {
				parts = append(parts, key)
			}
		}
		return strings.Join(parts, sep)
	}
}

const limiterSweepInterval = 5 * time.Minute

// limiterSet holds one limiter per key and drops idle ones periodically.
type limiterSet struct {
	limit rate.Limit
	burst int

	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
	lastSweep time.Time
}

func newLimiterSet(cfg RateLimitConfig) *limiterSet {
	return &limiterSet{
		limit:     rate.Limit(float64(cfg.RequestsPerWindow) / cfg.Window.Seconds()),
		burst:     cfg.Burst,
		limiters:  make(map[string]*rate.Limiter),
		lastSweep: time.Now(),
	}
}

// allow charges one token to key. When the bucket is empty it returns the
// delay until the next token.
func (s *limiterSet) allow(key string, now time.Time) (bool, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastSweep) >= limiterSweepInterval {
		s.lastSweep = now
		for k, l := range s.limiters {
			// A full bucket means the key has been idle for a whole window.
			if l.TokensAt(now) >= float64(s.burst) {
				delete(s.limiters, k)
			}
		}
	}

	l, ok := s.limiters[key]
	if !ok {
		l = rate.NewLimiter(s.limit, s.burst)
		s.limiters[key] = l
	}
	if l.AllowN(now, 1) {
		return true, 0
	}

	r := l.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	r.CancelAt(now)
	return false, delay
}

// RateLimitMiddleware throttles requests per extracted key and answers 429
// with Retry-After once a bucket is exhausted.
func RateLimitMiddleware(cfg RateLimitConfig, keyExtractor KeyExtractor) Middleware {
	set := newLimiterSet(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			key := keyExtractor(r)
			if key == "" {
				log.Warn("rate limit: unable to extract key, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			ok, delay := set.allow(key, time.Now())
			if !ok {
				retryAfter := max(int(delay.Seconds()), 1)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerWindow))
				w.Header().Set("X-RateLimit-Window", cfg.Window.String())

				log.Warn("rate limit exceeded", "endpoint", r.URL.Path, "retry_after", retryAfter)
				WriteJSON(w, http.StatusTooManyRequests, map[string]string{
					"error":             "rate_limit_exceeded",
					"error_description": "Too many requests. Please try again later.",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitByIP limits by client address.
func RateLimitByIP(cfg RateLimitConfig) Middleware {
	return RateLimitMiddleware(cfg, IPKeyExtractor)
}

// RateLimitByUser limits by authenticated user, falling back to the client
// address. It must run after AuthnMiddleware.
func RateLimitByUser(cfg RateLimitConfig) Middleware {
	return RateLimitMiddleware(cfg, CompositeKeyExtractor(":", UserIDKeyExtractor, IPKeyExtractor))
}
