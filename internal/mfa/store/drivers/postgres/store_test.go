package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aussiebroadwan/mfa/internal/mfa/domain"
	"github.com/aussiebroadwan/mfa/internal/mfa/store"
	"github.com/aussiebroadwan/mfa/internal/mfa/store/drivers/postgres"
)

// newTestStore starts a throwaway postgres container. It needs Docker, so
// the tests are skipped with -short.
func newTestStore(t *testing.T) store.Store {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres store tests need Docker")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "mfa",
				"POSTGRES_PASSWORD": "mfa",
				"POSTGRES_DB":       "mfa",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	url := fmt.Sprintf("postgres://mfa:mfa@%s:%s/mfa?sslmode=disable", host, port.Port())
	s, err := postgres.NewStore(ctx, url)
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

var t0 = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func TestPostgresStore(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.ApplyMigrations(), "migrations are idempotent")

	cfg := domain.Configuration{
		UserID:    "u1",
		Type:      domain.FactorTOTP,
		State:     domain.StatePendingConfirmation,
		Secret:    "v1:sealed",
		Version:   1,
		CreatedAt: t0,
		UpdatedAt: t0,
	}
	require.NoError(t, s.Configurations().Put(ctx, cfg))
	require.ErrorIs(t, s.Configurations().Put(ctx, cfg), store.ErrAlreadyExists)

	t.Run("compare and set", func(t *testing.T) {
		confirmed := t0.Add(time.Minute)
		next := cfg
		next.State = domain.StateEnabled
		next.ConfirmedAt = &confirmed
		next.Version = 2
		require.NoError(t, s.Configurations().CompareAndSet(ctx, next, 1))
		require.ErrorIs(t, s.Configurations().CompareAndSet(ctx, next, 1), store.ErrConflict)

		got, err := s.Configurations().Get(ctx, "u1")
		require.NoError(t, err)
		require.Equal(t, domain.StateEnabled, got.State)
		require.True(t, got.ConfirmedAt.Equal(confirmed))
	})

	t.Run("backup codes", func(t *testing.T) {
		codes := []domain.BackupCode{
			{ID: "c1", UserID: "u1", BatchID: "b1", CodeHash: "$argon2id$a", CreatedAt: t0},
			{ID: "c2", UserID: "u1", BatchID: "b1", CodeHash: "$argon2id$b", CreatedAt: t0},
		}
		require.NoError(t, s.BackupCodes().Insert(ctx, codes))

		require.NoError(t, s.BackupCodes().MarkUsed(ctx, "c1", t0.Add(time.Hour)))
		require.ErrorIs(t, s.BackupCodes().MarkUsed(ctx, "c1", t0.Add(time.Hour)), store.ErrConflict)

		n, err := s.BackupCodes().CountUnused(ctx, "u1")
		require.NoError(t, err)
		require.Equal(t, 1, n)

		deleted, err := s.BackupCodes().DeleteAll(ctx, "u1")
		require.NoError(t, err)
		require.Equal(t, int64(2), deleted)
	})

	t.Run("attempts", func(t *testing.T) {
		for i, outcome := range []domain.Outcome{domain.OutcomeFailure, domain.OutcomeSuccess} {
			require.NoError(t, s.Attempts().Append(ctx, domain.VerificationAttempt{
				ID:         fmt.Sprintf("a%d", i),
				UserID:     "u1",
				Operation:  domain.OperationVerify,
				Method:     domain.MethodTOTP,
				Outcome:    outcome,
				OccurredAt: t0.Add(time.Duration(i) * time.Minute),
			}))
		}

		recent, err := s.Attempts().ListRecent(ctx, "u1", 10)
		require.NoError(t, err)
		require.Len(t, recent, 2)
		require.Equal(t, "a1", recent[0].ID)

		failures, err := s.Attempts().CountFailuresSince(ctx, "u1", t0)
		require.NoError(t, err)
		require.Equal(t, 1, failures)
	})

	t.Run("rollback", func(t *testing.T) {
		err := s.WithTx(ctx, func(tx store.Tx) error {
			if _, err := tx.BackupCodes().DeleteAll(ctx, "u1"); err != nil {
				return err
			}
			return fmt.Errorf("boom")
		})
		require.EqualError(t, err, "boom")
	})
}
