// Package totpx wraps github.com/pquerna/otp with the knobs the MFA service
// needs: an injectable clock, a fixed 30 second step, a +/-1 step skew window
// and a strict six digit input check before any HMAC work is done.
package totpx

import (
	"encoding/base32"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	// Period is the RFC 6238 time step in seconds.
	Period = 30
	// Skew is how many neighbouring steps are accepted either side of the
	// current one. One step each way gives a 90 second acceptance window.
	Skew = 1
	// Digits is the length of every generated code.
	Digits = 6
)

var (
	ErrUnsupportedAlgorithm = errors.New("totpx: unsupported algorithm")
	ErrInvalidSecret        = errors.New("totpx: invalid secret")
)

// Engine derives and verifies TOTP codes. The zero value is not usable, build
// one with NewEngine.
type Engine struct {
	Algorithm otp.Algorithm
	Clock     Clock
}

// NewEngine returns an Engine using the given HMAC algorithm. A nil clock
// falls back to the system clock.
func NewEngine(alg otp.Algorithm, clock Clock) *Engine {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Engine{Algorithm: alg, Clock: clock}
}

// ParseAlgorithm maps a config value ("SHA1", "sha256", ...) onto an
// otp.Algorithm. MD5 is deliberately not accepted.
func ParseAlgorithm(s string) (otp.Algorithm, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "SHA1":
		return otp.AlgorithmSHA1, nil
	case "SHA256":
		return otp.AlgorithmSHA256, nil
	case "SHA512":
		return otp.AlgorithmSHA512, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, s)
	}
}

func (e *Engine) opts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    Period,
		Skew:      Skew,
		Digits:    otp.DigitsSix,
		Algorithm: e.Algorithm,
	}
}

// DeriveCode returns the six digit code for the step containing t.
func (e *Engine) DeriveCode(secret string, t time.Time) (string, error) {
	code, err := totp.GenerateCodeCustom(secret, t, e.opts())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidSecret, err)
	}
	return code, nil
}

// Verify checks code against the engine clock.
func (e *Engine) Verify(secret, code string) bool {
	return e.VerifyAt(secret, code, e.Clock.Now())
}

// VerifyAt checks code against the steps around now. Anything that is not
// exactly six ASCII digits is rejected before touching the secret; the
// comparison itself is constant time inside pquerna/otp.
func (e *Engine) VerifyAt(secret, code string, now time.Time) bool {
	if !WellFormed(code) {
		return false
	}
	ok, err := totp.ValidateCustom(code, secret, now, e.opts())
	return err == nil && ok
}

// WellFormed reports whether code is exactly Digits ASCII digits.
func WellFormed(code string) bool {
	if len(code) != Digits {
		return false
	}
	for i := range len(code) {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

// ProvisioningURI builds the otpauth:// URI that authenticator apps scan.
// The secret is the base32 (unpadded) value stored for the user.
func (e *Engine) ProvisioningURI(issuer, account, secret string) (string, error) {
	raw, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		Period:      Period,
		Secret:      raw,
		Digits:      otp.DigitsSix,
		Algorithm:   e.Algorithm,
	})
	if err != nil {
		return "", fmt.Errorf("totpx: build provisioning uri: %w", err)
	}
	return key.URL(), nil
}

func decodeSecret(secret string) ([]byte, error) {
	s := strings.ToUpper(strings.TrimSpace(secret))
	s = strings.TrimRight(s, "=")
	raw, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(s)
	if err != nil || len(raw) == 0 {
		return nil, ErrInvalidSecret
	}
	return raw, nil
}
