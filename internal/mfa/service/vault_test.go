package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/mfa/internal/mfa/domain"
	"github.com/aussiebroadwan/mfa/internal/mfa/store"
)

func TestVault(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	v := h.svc.Vault

	// Codes hang off a configuration.
	_, err := h.svc.Setup(ctx, "u1", "", domain.FactorTOTP)
	require.NoError(t, err)

	var codes []string
	require.NoError(t, h.store.WithTx(ctx, func(tx store.Tx) error {
		codes, err = v.IssueBatch(ctx, tx, "u1", 3)
		return err
	}))
	require.Len(t, codes, 3)

	unused, err := h.store.BackupCodes().ListUnused(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, unused, 3)
	for _, bc := range unused {
		require.Equal(t, unused[0].BatchID, bc.BatchID)
		require.NotContains(t, bc.CodeHash, codes[0])
	}

	t.Run("garbage never hits the hasher", func(t *testing.T) {
		ok, err := v.Consume(ctx, "u1", "not-a-code!")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("single use", func(t *testing.T) {
		ok, err := v.Consume(ctx, "u1", codes[0])
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = v.Consume(ctx, "u1", codes[0])
		require.NoError(t, err)
		require.False(t, ok)

		n, err := v.Remaining(ctx, "u1")
		require.NoError(t, err)
		require.Equal(t, 2, n)
	})

	t.Run("other users cannot redeem", func(t *testing.T) {
		ok, err := v.Consume(ctx, "u2", codes[1])
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("rolled back redemption", func(t *testing.T) {
		errAbort := errors.New("abort")
		err := h.store.WithTx(ctx, func(tx store.Tx) error {
			ok, err := v.ConsumeTx(ctx, tx, "u1", codes[2])
			require.NoError(t, err)
			require.True(t, ok)
			return errAbort
		})
		require.ErrorIs(t, err, errAbort)

		n, err := v.Remaining(ctx, "u1")
		require.NoError(t, err)
		require.Equal(t, 2, n)

		ok, err := v.Consume(ctx, "u1", codes[2])
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("invalidate", func(t *testing.T) {
		require.NoError(t, h.store.WithTx(ctx, func(tx store.Tx) error {
			return v.InvalidateBatch(ctx, tx, "u1")
		}))
		ok, err := v.Consume(ctx, "u1", codes[1])
		require.NoError(t, err)
		require.False(t, ok)
	})
}
