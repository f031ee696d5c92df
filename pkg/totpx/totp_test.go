package totpx

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp"
	"github.com/stretchr/testify/require"
)

// RFC 6238 appendix B seeds, base32 without padding.
const (
	rfcSecretSHA1   = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"
	rfcSecretSHA256 = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQGEZA"
)

func TestDeriveCode_RFC6238Vectors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		alg    otp.Algorithm
		secret string
		unix   int64
		want   string
	}{
		{"sha1 t=59", otp.AlgorithmSHA1, rfcSecretSHA1, 59, "287082"},
		{"sha1 t=1111111109", otp.AlgorithmSHA1, rfcSecretSHA1, 1111111109, "081804"},
		{"sha1 t=1111111111", otp.AlgorithmSHA1, rfcSecretSHA1, 1111111111, "050471"},
		{"sha1 t=1234567890", otp.AlgorithmSHA1, rfcSecretSHA1, 1234567890, "005924"},
		{"sha1 t=2000000000", otp.AlgorithmSHA1, rfcSecretSHA1, 2000000000, "279037"},
		{"sha256 t=59", otp.AlgorithmSHA256, rfcSecretSHA256, 59, "119246"},
		{"sha256 t=1234567890", otp.AlgorithmSHA256, rfcSecretSHA256, 1234567890, "819424"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(tt.alg, nil)
			code, err := e.DeriveCode(tt.secret, time.Unix(tt.unix, 0))
			require.NoError(t, err)
			require.Equal(t, tt.want, code)
		})
	}
}

func TestVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	e := NewEngine(otp.AlgorithmSHA1, nil)
	for _, unix := range []int64{0, 29, 30, 1700000000, 1999999999} {
		ts := time.Unix(unix, 0)
		code, err := e.DeriveCode(rfcSecretSHA1, ts)
		require.NoError(t, err)
		require.True(t, e.VerifyAt(rfcSecretSHA1, code, ts), "unix=%d", unix)
	}
}

func TestVerify_WindowBoundary(t *testing.T) {
	t.Parallel()

	// 1111111080 is the first second of the step holding 1111111109.
	stepStart := time.Unix(1111111080, 0)
	e := NewEngine(otp.AlgorithmSHA1, FixedClock{T: stepStart})

	code, err := e.DeriveCode(rfcSecretSHA1, stepStart)
	require.NoError(t, err)
	require.Equal(t, "081804", code)

	step := Period * time.Second
	require.True(t, e.VerifyAt(rfcSecretSHA1, code, stepStart.Add(-step)), "n-1 accepted")
	require.True(t, e.VerifyAt(rfcSecretSHA1, code, stepStart), "n accepted")
	require.True(t, e.VerifyAt(rfcSecretSHA1, code, stepStart.Add(step)), "n+1 accepted")
	require.True(t, e.VerifyAt(rfcSecretSHA1, code, stepStart.Add(2*step-time.Second)), "last second of n+1 accepted")

	require.False(t, e.VerifyAt(rfcSecretSHA1, code, stepStart.Add(-2*step)), "n-2 rejected")
	require.False(t, e.VerifyAt(rfcSecretSHA1, code, stepStart.Add(2*step)), "n+2 rejected")

	require.True(t, e.Verify(rfcSecretSHA1, code), "engine clock is used by Verify")
}

func TestVerify_RejectsMalformedCodes(t *testing.T) {
	t.Parallel()

	e := NewEngine(otp.AlgorithmSHA1, nil)
	ts := time.Unix(59, 0)

	for _, code := range []string{"", "28708", "2870822", "28708a", " 287082", "２８７０８２", "287-82"} {
		require.False(t, e.VerifyAt(rfcSecretSHA1, code, ts), "code=%q", code)
	}
}

func TestVerify_InvalidSecret(t *testing.T) {
	t.Parallel()

	e := NewEngine(otp.AlgorithmSHA1, nil)
	require.False(t, e.VerifyAt("not base32!!", "123456", time.Unix(59, 0)))

	_, err := e.DeriveCode("not base32!!", time.Unix(59, 0))
	require.ErrorIs(t, err, ErrInvalidSecret)
}

func TestWellFormed(t *testing.T) {
	t.Parallel()

	require.True(t, WellFormed("000000"))
	require.True(t, WellFormed("987654"))
	require.False(t, WellFormed("98765"))
	require.False(t, WellFormed("98765x"))
}

func TestProvisioningURI(t *testing.T) {
	t.Parallel()

	e := NewEngine(otp.AlgorithmSHA1, nil)
	uri, err := e.ProvisioningURI("Campus", "alice@school.example", rfcSecretSHA1)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(uri, "otpauth://totp/"))

	u, err := url.Parse(uri)
	require.NoError(t, err)
	q := u.Query()
	require.Equal(t, rfcSecretSHA1, q.Get("secret"))
	require.Equal(t, "Campus", q.Get("issuer"))
	require.Equal(t, "6", q.Get("digits"))
	require.Equal(t, "30", q.Get("period"))
	require.Equal(t, "SHA1", q.Get("algorithm"))

	// The scanned key must reproduce the codes we verify against.
	key, err := otp.NewKeyFromURL(uri)
	require.NoError(t, err)
	require.Equal(t, rfcSecretSHA1, key.Secret())
	require.Equal(t, "alice@school.example", key.AccountName())
}

func TestProvisioningURI_BadSecret(t *testing.T) {
	t.Parallel()

	e := NewEngine(otp.AlgorithmSHA1, nil)
	_, err := e.ProvisioningURI("Campus", "alice", "")
	require.ErrorIs(t, err, ErrInvalidSecret)
}

func TestParseAlgorithm(t *testing.T) {
	t.Parallel()

	alg, err := ParseAlgorithm("")
	require.NoError(t, err)
	require.Equal(t, otp.AlgorithmSHA1, alg)

	alg, err = ParseAlgorithm("sha256")
	require.NoError(t, err)
	require.Equal(t, otp.AlgorithmSHA256, alg)

	alg, err = ParseAlgorithm("SHA512")
	require.NoError(t, err)
	require.Equal(t, otp.AlgorithmSHA512, alg)

	_, err = ParseAlgorithm("MD5")
	require.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}
