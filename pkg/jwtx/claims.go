package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the access-token claims minted by the identity provider.
// Only the fields this service reads are declared; unknown claims are ignored.
type Claims struct {
	jwt.RegisteredClaims

	// Session ID
	SID string `json:"sid,omitempty"`

	// Permission Scopes "profile:read mfa:manage"
	Scopes []string `json:"scopes,omitempty"`

	// Authentication Methods Reference ["pwd","otp"]
	AMR []string `json:"amr,omitempty"`

	Username      string `json:"username,omitempty"`
	PreferredName string `json:"preferred_name,omitempty"`
	Email         string `json:"email,omitempty"`
}

// NewAccessClaims builds minimally-correct claims. Used by tests and
// tooling that need to mint tokens the way the identity provider does.
func NewAccessClaims(subject, email, username string, scopes []string, ttl time.Duration, issuer string, audience []string, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings(audience),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Scopes:   scopes,
		AMR:      []string{"pwd"},
		Username: username,
		Email:    email,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// AccountLabel is the human readable account name shown in authenticator
// apps: the email, else the username, else the subject.
func (c *Claims) AccountLabel() string {
	switch {
	case c.Email != "":
		return c.Email
	case c.Username != "":
		return c.Username
	default:
		return c.Subject
	}
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" || c.Issuer == expected {
		return nil
	}
	return ErrIssuer
}

// ValidateAudience checks if at least one expected audience is present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil
	}
	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}
	return ErrAudience
}
