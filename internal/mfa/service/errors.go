package service

import "errors"

var (
	// ErrInvalidStateTransition is returned when an operation is not allowed
	// from the user's current state, including when the state changed under
	// a concurrent request.
	ErrInvalidStateTransition = errors.New("mfa: invalid state transition")

	// ErrCodeMismatch is returned when a submitted TOTP or backup code did not verify.
	ErrCodeMismatch = errors.New("mfa: code mismatch")

	// ErrUnsupportedFactor is returned by Setup for any factor type other than TOTP.
	ErrUnsupportedFactor = errors.New("mfa: unsupported factor type")

	// ErrSecretGeneration is returned when no secret could be produced. The
	// operation is aborted and nothing is persisted.
	ErrSecretGeneration = errors.New("mfa: secret generation failed")
)
