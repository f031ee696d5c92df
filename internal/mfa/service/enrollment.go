package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/mfa/internal/mfa/domain"
	"github.com/aussiebroadwan/mfa/internal/mfa/store"
	"github.com/aussiebroadwan/mfa/pkg/cryptox"
	"github.com/aussiebroadwan/mfa/pkg/totpx"
)

// Enrollment is the per-user MFA state machine:
//
//	Disabled -> PendingConfirmation -> Enabled -> Disabled
//
// Every transition is a compare-and-set on the configuration version, so a
// request that read a stale configuration loses with ErrInvalidStateTransition
// instead of overwriting a concurrent change.
type Enrollment struct {
	Store     store.Store
	Engine    *totpx.Engine
	Vault     *Vault
	Sealer    *cryptox.Sealer
	Generator cryptox.Generator
}

// TxFunc runs inside the transaction of a transition, after the new
// configuration has been written.
type TxFunc func(tx store.Tx, cfg domain.Configuration) error

// BeginSetup generates a fresh secret for the user and stores it awaiting
// confirmation. From Disabled or PendingConfirmation the configuration moves
// to PendingConfirmation and any earlier unconfirmed secret is discarded.
// From Enabled the secret is parked as the pending secret and MFA stays on
// under the current one until Confirm succeeds.
func (e *Enrollment) BeginSetup(ctx context.Context, userID string, factor domain.FactorType) (string, error) {
	if !factor.Supported() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFactor, factor)
	}

	secret, err := e.Generator.GenerateSecret()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSecretGeneration, err)
	}
	sealed, err := e.Sealer.Seal(secret)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSecretGeneration, err)
	}

	now := e.Engine.Clock.Now()
	cfg, err := e.Store.Configurations().Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		err = e.Store.Configurations().Put(ctx, domain.Configuration{
			UserID:    userID,
			Type:      factor,
			State:     domain.StatePendingConfirmation,
			Secret:    sealed,
			Version:   1,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if errors.Is(err, store.ErrAlreadyExists) {
			return "", ErrInvalidStateTransition
		}
		if err != nil {
			return "", fmt.Errorf("create configuration: %w", err)
		}
		return secret, nil
	}
	if err != nil {
		return "", fmt.Errorf("get configuration: %w", err)
	}

	next := cfg
	next.Type = factor
	switch cfg.State {
	case domain.StateEnabled:
		next.PendingSecret = sealed
	default:
		next.State = domain.StatePendingConfirmation
		next.Secret = sealed
		next.PendingSecret = ""
		next.ConfirmedAt = nil
	}

	if err := e.write(ctx, e.Store, next, cfg.Version, now); err != nil {
		return "", err
	}
	return secret, nil
}

// Confirm checks code against the secret awaiting confirmation and, on a
// match, enables MFA under that secret. within runs in the same transaction
// as the state change. A wrong code returns ErrCodeMismatch and leaves the
// configuration untouched.
func (e *Enrollment) Confirm(ctx context.Context, userID, code string, within TxFunc) (domain.Configuration, error) {
	cfg, err := e.load(ctx, userID)
	if err != nil {
		return domain.Configuration{}, err
	}
	if !cfg.AwaitingConfirmation() {
		return domain.Configuration{}, ErrInvalidStateTransition
	}

	candidate := cfg.Secret
	if cfg.State == domain.StateEnabled {
		candidate = cfg.PendingSecret
	}
	secret, err := e.Sealer.Open(candidate)
	if err != nil {
		return domain.Configuration{}, fmt.Errorf("open secret: %w", err)
	}
	if !e.Engine.Verify(secret, code) {
		return domain.Configuration{}, ErrCodeMismatch
	}

	now := e.Engine.Clock.Now()
	next := cfg
	next.State = domain.StateEnabled
	next.Secret = candidate
	next.PendingSecret = ""
	next.ConfirmedAt = &now
	next.DisabledAt = nil

	err = e.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := e.write(ctx, tx, next, cfg.Version, now); err != nil {
			return err
		}
		if within == nil {
			return nil
		}
		return within(tx, next)
	})
	if err != nil {
		return domain.Configuration{}, err
	}

	next.Version = cfg.Version + 1
	next.UpdatedAt = now
	return next, nil
}

// Verify authenticates code for an enabled user, trying TOTP first and then
// backup codes. It reports which method matched; a miss is ErrCodeMismatch
// with MethodNone.
func (e *Enrollment) Verify(ctx context.Context, userID, code string) (domain.Method, error) {
	cfg, err := e.load(ctx, userID)
	if err != nil {
		return domain.MethodNone, err
	}
	if !cfg.Enabled() {
		return domain.MethodNone, ErrInvalidStateTransition
	}
	return e.authenticate(ctx, cfg, code)
}

// Disable verifies code like Verify and then turns MFA off, clearing the
// secrets. A backup code is redeemed in the same transaction as the state
// change, so a failed disable leaves it unused. within runs in that
// transaction too, typically to drop the user's backup codes.
func (e *Enrollment) Disable(ctx context.Context, userID, code string, within TxFunc) (domain.Method, error) {
	cfg, err := e.load(ctx, userID)
	if err != nil {
		return domain.MethodNone, err
	}
	if !cfg.Enabled() {
		return domain.MethodNone, ErrInvalidStateTransition
	}

	now := e.Engine.Clock.Now()
	next := cfg
	next.State = domain.StateDisabled
	next.Secret = ""
	next.PendingSecret = ""
	next.ConfirmedAt = nil
	next.DisabledAt = &now

	method := domain.MethodNone
	err = e.Store.WithTx(ctx, func(tx store.Tx) error {
		m, err := e.AuthenticateTx(ctx, tx, cfg, code)
		if err != nil {
			return err
		}
		method = m

		if err := e.write(ctx, tx, next, cfg.Version, now); err != nil {
			return err
		}
		if within == nil {
			return nil
		}
		return within(tx, next)
	})
	if err != nil {
		return method, err
	}
	return method, nil
}

// Status reads the user's configuration. A user that never enrolled is
// reported as disabled.
func (e *Enrollment) Status(ctx context.Context, userID string) (domain.Configuration, error) {
	cfg, err := e.Store.Configurations().Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Configuration{UserID: userID, Type: domain.FactorTOTP, State: domain.StateDisabled}, nil
	}
	if err != nil {
		return domain.Configuration{}, fmt.Errorf("get configuration: %w", err)
	}
	return cfg, nil
}

// RequireEnabled re-reads the configuration through tx and fails unless MFA
// is still enabled at version.
func (e *Enrollment) RequireEnabled(ctx context.Context, tx store.Tx, userID string, version int64) error {
	cfg, err := tx.Configurations().Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrInvalidStateTransition
	}
	if err != nil {
		return fmt.Errorf("get configuration: %w", err)
	}
	if !cfg.Enabled() || cfg.Version != version {
		return ErrInvalidStateTransition
	}
	return nil
}

// load returns the configuration, mapping a missing one to a state error:
// every operation but setup needs an existing enrollment.
func (e *Enrollment) load(ctx context.Context, userID string) (domain.Configuration, error) {
	cfg, err := e.Store.Configurations().Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Configuration{}, ErrInvalidStateTransition
	}
	if err != nil {
		return domain.Configuration{}, fmt.Errorf("get configuration: %w", err)
	}
	return cfg, nil
}

func (e *Enrollment) authenticate(ctx context.Context, cfg domain.Configuration, code string) (domain.Method, error) {
	if ok, err := e.matchTOTP(cfg, code); err != nil || ok {
		return totpMethod(ok), err
	}

	ok, err := e.Vault.Consume(ctx, cfg.UserID, code)
	return backupMethod(ok, err)
}

// AuthenticateTx checks code against cfg like Verify, but redeems backup
// codes through tx. cfg must have been read at the version tx will write.
func (e *Enrollment) AuthenticateTx(ctx context.Context, tx store.Tx, cfg domain.Configuration, code string) (domain.Method, error) {
	if ok, err := e.matchTOTP(cfg, code); err != nil || ok {
		return totpMethod(ok), err
	}

	ok, err := e.Vault.ConsumeTx(ctx, tx, cfg.UserID, code)
	return backupMethod(ok, err)
}

func (e *Enrollment) matchTOTP(cfg domain.Configuration, code string) (bool, error) {
	secret, err := e.Sealer.Open(cfg.Secret)
	if err != nil {
		return false, fmt.Errorf("open secret: %w", err)
	}
	return e.Engine.Verify(secret, code), nil
}

func totpMethod(ok bool) domain.Method {
	if ok {
		return domain.MethodTOTP
	}
	return domain.MethodNone
}

func backupMethod(ok bool, err error) (domain.Method, error) {
	if err != nil {
		return domain.MethodNone, err
	}
	if ok {
		return domain.MethodBackupCode, nil
	}
	return domain.MethodNone, ErrCodeMismatch
}

// write stores next if the configuration is still at version expected.
func (e *Enrollment) write(ctx context.Context, s store.Store, next domain.Configuration, expected int64, now time.Time) error {
	next.Version = expected + 1
	next.UpdatedAt = now
	err := s.Configurations().CompareAndSet(ctx, next, expected)
	if errors.Is(err, store.ErrConflict) {
		return ErrInvalidStateTransition
	}
	if err != nil {
		return fmt.Errorf("update configuration: %w", err)
	}
	return nil
}
