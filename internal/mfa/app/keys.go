package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aussiebroadwan/mfa/pkg/jwtx"
)

// jwksFetchTimeout bounds a single JWKS download.
const jwksFetchTimeout = 10 * time.Second

// ErrNoKeySource is returned when neither a JWKS URL nor a public key is configured.
var ErrNoKeySource = errors.New("app: no access token key source configured")

// InitVerifierKeys builds the key set used to validate access tokens issued
// by the auth service.
//
// Key sources, in order of preference:
//   - MFA_JWKS_URL: keys are fetched on startup and refreshed in the
//     background by the returned JWKSRefresher.
//   - MFA_JWT_PUBLIC_KEY or MFA_JWT_PUBLIC_KEY_FILE: a single PEM public key
//     registered under MFA_JWT_KEY_ID. The refresher is nil.
//
// A JWKS endpoint that is down at startup is not fatal. The service starts
// with an empty key set, /readyz reports not ready and the refresher keeps
// retrying.
func InitVerifierKeys(ctx context.Context, cfg Config, logger *slog.Logger) (*jwtx.KeySet, jwtx.Verifier, *JWKSRefresher, error) {
	keys := jwtx.NewKeySet()

	verifier, err := jwtx.NewVerifier(cfg.JWTAlgorithm, keys, jwtx.VerifyOptions{
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		Leeway:   30 * time.Second,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create token verifier: %w", err)
	}

	switch {
	case cfg.JWKSURL != "":
		refresher := NewJWKSRefresher(keys, cfg.JWKSURL, nil, logger, cfg.JWKSRefreshInterval)
		if err := refresher.Refresh(ctx); err != nil {
			logger.Warn("initial JWKS fetch failed, will retry", "url", cfg.JWKSURL, "error", err)
		}
		logger.Info("access token keys sourced from JWKS",
			"url", cfg.JWKSURL,
			"algorithm", cfg.JWTAlgorithm,
			"refresh_interval", refresher.Interval,
		)
		return keys, verifier, refresher, nil

	case cfg.JWTPublicKey != "" || cfg.JWTPublicKeyFile != "":
		pemBytes, err := loadPublicKeyPEM(cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := keys.AddPublicKeyPEM(cfg.JWTKeyID, pemBytes); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to load access token public key: %w", err)
		}
		logger.Info("access token key loaded from PEM",
			"kid", cfg.JWTKeyID,
			"algorithm", cfg.JWTAlgorithm,
		)
		return keys, verifier, nil, nil

	default:
		return nil, nil, nil, ErrNoKeySource
	}
}

func loadPublicKeyPEM(cfg Config) ([]byte, error) {
	if cfg.JWTPublicKey != "" {
		return []byte(cfg.JWTPublicKey), nil
	}
	data, err := os.ReadFile(cfg.JWTPublicKeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read access token public key: %w", err)
	}
	return data, nil
}

// JWKSRefresher periodically reloads a KeySet from a JWKS endpoint so key
// rotations on the auth service are picked up without a restart.
type JWKSRefresher struct {
	Keys     *jwtx.KeySet
	URL      string
	Client   *http.Client
	Logger   *slog.Logger
	Interval time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewJWKSRefresher creates a refresher with the given interval.
// If interval is 0 or negative, defaults to 15 minutes.
func NewJWKSRefresher(keys *jwtx.KeySet, url string, client *http.Client, logger *slog.Logger, interval time.Duration) *JWKSRefresher {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if client == nil {
		client = &http.Client{Timeout: jwksFetchTimeout}
	}

	return &JWKSRefresher{
		Keys:     keys,
		URL:      url,
		Client:   client,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background refresh loop. Call Stop to shut it down.
func (r *JWKSRefresher) Start() {
	go r.run()
	r.Logger.Info("jwks refresher started", "interval", r.Interval)
}

// Stop shuts down the background worker and waits for an in-flight
// refresh to finish.
func (r *JWKSRefresher) Stop() {
	close(r.stopCh)
	<-r.doneCh
	r.Logger.Info("jwks refresher stopped")
}

func (r *JWKSRefresher) run() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := r.Refresh(context.Background()); err != nil {
				r.Logger.Error("jwks refresh failed", "url", r.URL, "error", err)
			}
		case <-r.stopCh:
			return
		}
	}
}

// Refresh fetches the JWKS once and replaces the key set. On failure the
// previously loaded keys stay in place.
func (r *JWKSRefresher) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, jwksFetchTimeout)
	defer cancel()

	jwks, err := jwtx.FetchJWKS(ctx, r.Client, r.URL)
	if err != nil {
		return err
	}

	skipped, err := r.Keys.ResetFromJWKS(jwks)
	if err != nil {
		return err
	}
	if skipped > 0 {
		r.Logger.Warn("jwks contained unusable keys", "skipped", skipped)
	}
	r.Logger.Debug("jwks refreshed", "keys", len(jwks.Keys)-skipped)
	return nil
}
