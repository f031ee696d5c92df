package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pquerna/otp"

	"github.com/aussiebroadwan/mfa/internal/mfa/domain"
	"github.com/aussiebroadwan/mfa/internal/mfa/store"
	"github.com/aussiebroadwan/mfa/pkg/cryptox"
	"github.com/aussiebroadwan/mfa/pkg/slogx"
	"github.com/aussiebroadwan/mfa/pkg/totpx"
)

// DefaultIssuer labels enrollments in authenticator apps.
const DefaultIssuer = "Campus"

type Options struct {
	Store     store.Store
	Engine    *totpx.Engine
	Hasher    *cryptox.Hasher
	Sealer    *cryptox.Sealer
	Generator cryptox.Generator
	Metrics   *Metrics

	Issuer          string
	BackupCodeCount int
}

// MFAService is the public API of the MFA core consumed by the HTTP layer.
// Every code-bearing operation (enable, verify, disable, regenerate) writes
// exactly one verification attempt to the ledger, whatever the outcome.
type MFAService struct {
	Store      store.Store
	Engine     *totpx.Engine
	Vault      *Vault
	Enrollment *Enrollment
	Ledger     *Ledger

	Issuer          string
	BackupCodeCount int
}

func NewMFAService(o Options) *MFAService {
	if o.Engine == nil {
		o.Engine = totpx.NewEngine(otp.AlgorithmSHA1, nil)
	}
	if o.Issuer == "" {
		o.Issuer = DefaultIssuer
	}
	if o.BackupCodeCount <= 0 {
		o.BackupCodeCount = DefaultBackupCodeCount
	}

	vault := &Vault{
		Store:     o.Store,
		Hasher:    o.Hasher,
		Generator: o.Generator,
		Clock:     o.Engine.Clock,
	}
	return &MFAService{
		Store:  o.Store,
		Engine: o.Engine,
		Vault:  vault,
		Enrollment: &Enrollment{
			Store:     o.Store,
			Engine:    o.Engine,
			Vault:     vault,
			Sealer:    o.Sealer,
			Generator: o.Generator,
		},
		Ledger: &Ledger{
			Store:   o.Store,
			Metrics: o.Metrics,
			Clock:   o.Engine.Clock,
		},
		Issuer:          o.Issuer,
		BackupCodeCount: o.BackupCodeCount,
	}
}

// Setup starts (or restarts) TOTP enrollment and returns what the user needs
// to add the account to an authenticator app. account labels the entry.
func (s *MFAService) Setup(ctx context.Context, userID, account string, factor domain.FactorType) (domain.Enrollment, error) {
	if factor == "" {
		factor = domain.FactorTOTP
	}
	if account == "" {
		account = userID
	}

	secret, err := s.Enrollment.BeginSetup(ctx, userID, factor)
	if err != nil {
		return domain.Enrollment{}, err
	}

	uri, err := s.Engine.ProvisioningURI(s.Issuer, account, secret)
	if err != nil {
		return domain.Enrollment{}, fmt.Errorf("build provisioning uri: %w", err)
	}
	qr, err := totpx.QRCodeDataURL(uri, totpx.QRSize)
	if err != nil {
		return domain.Enrollment{}, fmt.Errorf("render qr code: %w", err)
	}

	slogx.FromContext(ctx).Info("mfa setup started", "user_id", userID, "type", factor)
	return domain.Enrollment{
		Secret:          secret,
		ProvisioningURI: uri,
		QRCode:          qr,
		Issuer:          s.Issuer,
		Account:         account,
	}, nil
}

// Enable confirms the pending secret with a TOTP code, switches MFA on and
// returns a fresh batch of backup codes. Codes from an earlier enrollment are
// replaced in the same transaction.
func (s *MFAService) Enable(ctx context.Context, userID, code string, src domain.Source) ([]string, error) {
	var codes []string
	_, err := s.Enrollment.Confirm(ctx, userID, code, func(tx store.Tx, cfg domain.Configuration) error {
		if err := s.Vault.InvalidateBatch(ctx, tx, userID); err != nil {
			return err
		}
		issued, err := s.Vault.IssueBatch(ctx, tx, userID, s.BackupCodeCount)
		if err != nil {
			return err
		}
		codes = issued
		return nil
	})

	method := domain.MethodNone
	if err == nil {
		method = domain.MethodTOTP
	}
	s.record(ctx, userID, domain.OperationConfirm, method, err, src)
	if err != nil {
		return nil, err
	}

	slogx.FromContext(ctx).Info("mfa enabled", "user_id", userID)
	return codes, nil
}

// Verify checks a TOTP or backup code for an enabled user. A wrong code is
// (false, nil); errors are reserved for state and storage problems.
func (s *MFAService) Verify(ctx context.Context, userID, code string, src domain.Source) (bool, error) {
	method, err := s.Enrollment.Verify(ctx, userID, code)
	s.record(ctx, userID, domain.OperationVerify, method, err, src)

	if errors.Is(err, ErrCodeMismatch) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Disable turns MFA off after a successful verification and drops all
// backup codes.
func (s *MFAService) Disable(ctx context.Context, userID, code string, src domain.Source) error {
	method, err := s.Enrollment.Disable(ctx, userID, code, func(tx store.Tx, _ domain.Configuration) error {
		return s.Vault.InvalidateBatch(ctx, tx, userID)
	})
	s.record(ctx, userID, domain.OperationDisable, method, err, src)
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("mfa disabled", "user_id", userID)
	return nil
}

// RegenerateBackupCodes verifies code and replaces the user's backup codes
// with a new batch. The old batch is invalid once this returns.
func (s *MFAService) RegenerateBackupCodes(ctx context.Context, userID, code string, src domain.Source) ([]string, error) {
	codes, method, err := s.regenerate(ctx, userID, code)
	s.record(ctx, userID, domain.OperationRegenerate, method, err, src)
	if err != nil {
		return nil, err
	}

	slogx.FromContext(ctx).Info("backup codes regenerated", "user_id", userID)
	return codes, nil
}

func (s *MFAService) regenerate(ctx context.Context, userID, code string) ([]string, domain.Method, error) {
	cfg, err := s.Enrollment.Status(ctx, userID)
	if err != nil {
		return nil, domain.MethodNone, err
	}
	if !cfg.Enabled() {
		return nil, domain.MethodNone, ErrInvalidStateTransition
	}

	var codes []string
	method := domain.MethodNone
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := s.Enrollment.RequireEnabled(ctx, tx, userID, cfg.Version); err != nil {
			return err
		}
		m, err := s.Enrollment.AuthenticateTx(ctx, tx, cfg, code)
		if err != nil {
			return err
		}
		method = m

		if err := s.Vault.InvalidateBatch(ctx, tx, userID); err != nil {
			return err
		}
		issued, err := s.Vault.IssueBatch(ctx, tx, userID, s.BackupCodeCount)
		if err != nil {
			return err
		}
		codes = issued
		return nil
	})
	if err != nil {
		return nil, method, err
	}
	return codes, method, nil
}

// Status reports the user's MFA state. It has no side effects.
func (s *MFAService) Status(ctx context.Context, userID string) (domain.Status, error) {
	cfg, err := s.Enrollment.Status(ctx, userID)
	if err != nil {
		return domain.Status{}, err
	}

	st := domain.Status{
		Enabled:     cfg.Enabled(),
		State:       cfg.State,
		Type:        cfg.Type,
		ConfirmedAt: cfg.ConfirmedAt,
	}
	if cfg.Enabled() {
		n, err := s.Vault.Remaining(ctx, userID)
		if err != nil {
			return domain.Status{}, err
		}
		st.BackupCodesRemaining = n
	}
	return st, nil
}

// Attempts returns the user's most recent verification attempts.
func (s *MFAService) Attempts(ctx context.Context, userID string, limit int) ([]domain.VerificationAttempt, error) {
	return s.Ledger.Recent(ctx, userID, limit)
}

func (s *MFAService) record(ctx context.Context, userID string, op domain.Operation, method domain.Method, err error, src domain.Source) {
	outcome := domain.OutcomeSuccess
	if err != nil {
		outcome = domain.OutcomeFailure
		method = domain.MethodNone
	}

	s.Ledger.Record(ctx, domain.VerificationAttempt{
		UserID:    userID,
		Operation: op,
		Method:    method,
		Outcome:   outcome,
		SourceIP:  src.IP,
		UserAgent: src.UserAgent,
	})

	if err != nil {
		slogx.FromContext(ctx).Warn("mfa verification failed",
			"user_id", userID,
			"operation", op,
			"err", err,
		)
	}
}
