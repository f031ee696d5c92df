package mfa_test

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/mfa/pkg/mfasdk"
)

// TestHealthEndpoints verifies both probes report healthy once the
// container is up with a configured public key.
func TestHealthEndpoints(t *testing.T) {
	baseURL, cleanup := setupMFAContainer(t)
	defer cleanup()

	client := mfasdk.NewClient(baseURL, nil)

	health, err := client.Livez(t.Context())
	assertHealthy(t, health, err)

	health, err = client.Readyz(t.Context())
	assertHealthy(t, health, err)
	require.NotNil(t, health.Checks)
	require.Equal(t, "ok", health.Checks.Database)
	require.Equal(t, "ok", health.Checks.Keys)
}

// TestUnauthenticatedRequestsRejected verifies /v1/mfa requires a token.
func TestUnauthenticatedRequestsRejected(t *testing.T) {
	baseURL, cleanup := setupMFAContainer(t)
	defer cleanup()

	client := mfasdk.NewClient(baseURL, mfasdk.StaticToken("not-a-jwt"))

	_, err := client.Status(t.Context())
	require.ErrorIs(t, err, mfasdk.ErrInvalidToken)
}

// TestEnrollmentLifecycle walks a user through setup, enable, verification
// with both factors, regeneration and finally disable.
func TestEnrollmentLifecycle(t *testing.T) {
	baseURL, cleanup := setupMFAContainer(t)
	defer cleanup()

	ctx := t.Context()
	client := clientFor(t, baseURL, "student-42")

	status, err := client.Status(ctx)
	require.NoError(t, err)
	require.False(t, status.Enabled)
	require.Equal(t, "disabled", status.State)

	setup, err := client.Setup(ctx, mfasdk.FactorTOTP)
	require.NoError(t, err)
	require.Equal(t, "Campus", setup.Issuer)
	require.Contains(t, setup.QRCode, "data:image/png;base64,")

	uri, err := url.Parse(setup.ProvisioningURI)
	require.NoError(t, err)
	require.Equal(t, "otpauth", uri.Scheme)
	require.Equal(t, setup.Secret, uri.Query().Get("secret"))

	status, err = client.Status(ctx)
	require.NoError(t, err)
	require.Equal(t, "pending_confirmation", status.State)

	backupCodes, err := client.Enable(ctx, currentCode(t, setup.Secret))
	require.NoError(t, err)
	require.Len(t, backupCodes, 10)

	status, err = client.Status(ctx)
	require.NoError(t, err)
	require.True(t, status.Enabled)
	require.Equal(t, 10, status.BackupCodesRemaining)
	require.NotNil(t, status.ConfirmedAt)

	ok, err := client.Verify(ctx, currentCode(t, setup.Secret))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = client.Verify(ctx, "000000")
	require.NoError(t, err)
	require.False(t, ok, "a wrong code is rejected without an error")

	// Backup codes are single use.
	ok, err = client.Verify(ctx, backupCodes[0])
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = client.Verify(ctx, backupCodes[0])
	require.NoError(t, err)
	require.False(t, ok)

	status, err = client.Status(ctx)
	require.NoError(t, err)
	require.Equal(t, 9, status.BackupCodesRemaining)

	fresh, err := client.RegenerateBackupCodes(ctx, currentCode(t, setup.Secret))
	require.NoError(t, err)
	require.Len(t, fresh, 10)

	ok, err = client.Verify(ctx, backupCodes[1])
	require.NoError(t, err)
	require.False(t, ok, "codes from the previous batch are invalidated")

	attempts, err := client.Attempts(ctx, 3)
	require.NoError(t, err)
	require.Len(t, attempts, 3)
	require.Equal(t, "verify", attempts[0].Operation)
	require.Equal(t, "failure", attempts[0].Outcome)
	require.Equal(t, "regenerate", attempts[1].Operation)

	require.NoError(t, client.Disable(ctx, fresh[0]))

	status, err = client.Status(ctx)
	require.NoError(t, err)
	require.False(t, status.Enabled)
	require.Equal(t, 0, status.BackupCodesRemaining)

	_, err = client.Verify(ctx, currentCode(t, setup.Secret))
	require.ErrorIs(t, err, mfasdk.ErrInvalidState)
}

// TestEnableRequiresSetup verifies enable is rejected without a pending enrollment.
func TestEnableRequiresSetup(t *testing.T) {
	baseURL, cleanup := setupMFAContainer(t)
	defer cleanup()

	client := clientFor(t, baseURL, "student-7")

	_, err := client.Enable(t.Context(), "123456")
	require.ErrorIs(t, err, mfasdk.ErrInvalidState)
}

// TestUnsupportedFactor verifies only TOTP can be enrolled.
func TestUnsupportedFactor(t *testing.T) {
	baseURL, cleanup := setupMFAContainer(t)
	defer cleanup()

	client := clientFor(t, baseURL, "student-8")

	_, err := client.Setup(t.Context(), "sms")
	require.ErrorIs(t, err, mfasdk.ErrUnsupportedFactor)
}

// TestUsersAreIsolated verifies one user's enrollment does not leak into another's.
func TestUsersAreIsolated(t *testing.T) {
	baseURL, cleanup := setupMFAContainer(t)
	defer cleanup()

	alice := clientFor(t, baseURL, "alice")
	bob := clientFor(t, baseURL, "bob")

	secret, backupCodes := enrollUser(t, alice)

	status, err := bob.Status(t.Context())
	require.NoError(t, err)
	require.False(t, status.Enabled)

	_, err = bob.Verify(t.Context(), currentCode(t, secret))
	require.ErrorIs(t, err, mfasdk.ErrInvalidState)
	_, err = bob.Verify(t.Context(), backupCodes[0])
	require.ErrorIs(t, err, mfasdk.ErrInvalidState)
}

// TestRateLimitVerifyEndpoint verifies code guessing is throttled per user
// with the default strict profile of five requests a minute.
func TestRateLimitVerifyEndpoint(t *testing.T) {
	baseURL, cleanup := setupMFAContainerWithDefaultRateLimits(t)
	defer cleanup()

	client := clientFor(t, baseURL, "student-9")
	enrollUser(t, client)

	var lastErr error
	for i := range 6 {
		_, err := client.Verify(t.Context(), "000000")
		if i < 5 {
			require.NoError(t, err, "request %d should not be rate limited", i+1)
			continue
		}
		lastErr = err
	}

	var apiErr *mfasdk.APIError
	require.True(t, errors.As(lastErr, &apiErr), "expected an API error, got %v", lastErr)
	require.Equal(t, 429, apiErr.StatusCode)
}
