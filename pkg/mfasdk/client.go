package mfasdk

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// TokenSource yields the bearer token for the next request.
type TokenSource func(ctx context.Context) (string, error)

// StaticToken returns a TokenSource that always yields token.
func StaticToken(token string) TokenSource {
	return func(context.Context) (string, error) { return token, nil }
}

// Client talks to the MFA service on behalf of one user.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      TokenSource

	// UserAgent is sent on every request and recorded in the attempt ledger.
	UserAgent string
}

// NewClient returns a Client with a 10 second request timeout.
func NewClient(baseURL string, token TokenSource) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Token:      token,
		UserAgent:  "mfasdk",
	}
}

// Setup starts enrollment and returns the secret and provisioning URI.
func (c *Client) Setup(ctx context.Context, factorType string) (*SetupResponse, error) {
	var out SetupResponse
	if err := c.do(ctx, http.MethodPost, "/v1/mfa/setup", SetupRequest{Type: factorType}, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// Enable confirms enrollment with the first TOTP code and returns the
// initial backup codes.
func (c *Client) Enable(ctx context.Context, code string) ([]string, error) {
	var out BackupCodesResponse
	if err := c.do(ctx, http.MethodPost, "/v1/mfa/enable", CodeRequest{Code: code}, &out, true); err != nil {
		return nil, err
	}
	return out.Codes, nil
}

// Verify checks a TOTP or backup code. A rejected code yields (false, nil).
func (c *Client) Verify(ctx context.Context, code string) (bool, error) {
	var out VerifyResponse
	err := c.do(ctx, http.MethodPost, "/v1/mfa/verify", CodeRequest{Code: code}, &out, true)
	if err != nil {
		if errors.Is(err, ErrInvalidCode) {
			return false, nil
		}
		return false, err
	}
	return out.Verified, nil
}

// Disable turns MFA off. code must verify.
func (c *Client) Disable(ctx context.Context, code string) error {
	return c.do(ctx, http.MethodPost, "/v1/mfa/disable", CodeRequest{Code: code}, &MessageResponse{}, true)
}

// RegenerateBackupCodes replaces every backup code with a new batch.
func (c *Client) RegenerateBackupCodes(ctx context.Context, code string) ([]string, error) {
	var out BackupCodesResponse
	if err := c.do(ctx, http.MethodPost, "/v1/mfa/backup-codes", CodeRequest{Code: code}, &out, true); err != nil {
		return nil, err
	}
	return out.Codes, nil
}

// Status returns the caller's MFA configuration.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	var out StatusResponse
	if err := c.do(ctx, http.MethodGet, "/v1/mfa/status", nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// Attempts returns up to limit recent verification attempts, newest first.
// A non-positive limit uses the server default.
func (c *Client) Attempts(ctx context.Context, limit int) ([]Attempt, error) {
	path := "/v1/mfa/attempts"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}
	var out AttemptsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out, true); err != nil {
		return nil, err
	}
	return out.Attempts, nil
}

// Livez calls the liveness probe.
func (c *Client) Livez(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/livez", nil, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// Readyz calls the readiness probe.
func (c *Client) Readyz(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/readyz", nil, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}
