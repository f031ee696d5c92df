package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/mfa/internal/mfa/domain"
	"github.com/aussiebroadwan/mfa/internal/mfa/store"
	"github.com/aussiebroadwan/mfa/pkg/cryptox"
	"github.com/aussiebroadwan/mfa/pkg/idx"
	"github.com/aussiebroadwan/mfa/pkg/totpx"
)

// DefaultBackupCodeCount is the size of a backup code batch.
const DefaultBackupCodeCount = 10

// Vault issues and redeems backup codes. Plaintext codes leave the vault
// exactly once, from IssueBatch; only argon2id hashes are stored.
type Vault struct {
	Store     store.Store
	Hasher    *cryptox.Hasher
	Generator cryptox.Generator
	Clock     totpx.Clock
}

// IssueBatch generates count codes, stores their hashes under a new batch
// id using tx and returns the plaintext codes.
func (v *Vault) IssueBatch(ctx context.Context, tx store.Tx, userID string, count int) ([]string, error) {
	if count <= 0 {
		count = DefaultBackupCodeCount
	}

	plain, err := v.Generator.GenerateBackupCodes(count)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSecretGeneration, err)
	}

	now := v.Clock.Now()
	batch := idx.NewAt(now).String()
	rows := make([]domain.BackupCode, len(plain))
	for i, code := range plain {
		hash, err := v.Hasher.Hash(cryptox.NormalizeBackupCode(code))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSecretGeneration, err)
		}
		rows[i] = domain.BackupCode{
			ID:        idx.NewAt(now).String(),
			UserID:    userID,
			BatchID:   batch,
			CodeHash:  hash,
			CreatedAt: now,
		}
	}

	if err := tx.BackupCodes().Insert(ctx, rows); err != nil {
		return nil, fmt.Errorf("store backup codes: %w", err)
	}
	return plain, nil
}

// InvalidateBatch removes every code of the user. Paired with IssueBatch in
// one transaction during regeneration.
func (v *Vault) InvalidateBatch(ctx context.Context, tx store.Tx, userID string) error {
	if _, err := tx.BackupCodes().DeleteAll(ctx, userID); err != nil {
		return fmt.Errorf("delete backup codes: %w", err)
	}
	return nil
}

// Consume redeems code for the user. It returns true only for the one caller
// that marks a matching unused code as used; a code that was redeemed
// concurrently, or never existed, yields false.
func (v *Vault) Consume(ctx context.Context, userID, code string) (bool, error) {
	return v.consume(ctx, v.Store.BackupCodes(), userID, code)
}

// ConsumeTx is Consume run through tx. A rollback of tx leaves the code
// unused.
func (v *Vault) ConsumeTx(ctx context.Context, tx store.Tx, userID, code string) (bool, error) {
	return v.consume(ctx, tx.BackupCodes(), userID, code)
}

func (v *Vault) consume(ctx context.Context, repo store.BackupCodes, userID, code string) (bool, error) {
	normalized := cryptox.NormalizeBackupCode(code)
	if !cryptox.LooksLikeBackupCode(normalized) {
		return false, nil
	}

	unused, err := repo.ListUnused(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("list backup codes: %w", err)
	}

	for _, bc := range unused {
		if err := v.Hasher.Verify(normalized, bc.CodeHash); err != nil {
			continue
		}

		err := repo.MarkUsed(ctx, bc.ID, v.Clock.Now())
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, store.ErrConflict):
			return false, nil
		default:
			return false, fmt.Errorf("mark backup code used: %w", err)
		}
	}
	return false, nil
}

// Remaining counts the user's unused codes.
func (v *Vault) Remaining(ctx context.Context, userID string) (int, error) {
	n, err := v.Store.BackupCodes().CountUnused(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count backup codes: %w", err)
	}
	return n, nil
}
