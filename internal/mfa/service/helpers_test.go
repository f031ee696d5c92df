package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pquerna/otp"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/mfa/internal/mfa/domain"
	"github.com/aussiebroadwan/mfa/internal/mfa/store"
	"github.com/aussiebroadwan/mfa/internal/mfa/store/drivers/sqlite"
	"github.com/aussiebroadwan/mfa/pkg/cryptox"
	"github.com/aussiebroadwan/mfa/pkg/totpx"
)

var testSource = domain.Source{IP: "203.0.113.7", UserAgent: "service-test"}

// testClock is a settable clock shared by the engine, vault and ledger.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type harness struct {
	svc     *MFAService
	store   store.Store
	clock   *testClock
	metrics *Metrics
}

func newHarness(t *testing.T, mutate ...func(*Options)) *harness {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	sealer, err := cryptox.NewSealer([]byte("service test master key"))
	require.NoError(t, err)

	clock := &testClock{t: time.Date(2026, 5, 4, 8, 15, 0, 0, time.UTC)}
	metrics := NewMetrics(nil)

	opts := Options{
		Store:   s,
		Engine:  totpx.NewEngine(otp.AlgorithmSHA1, clock),
		Hasher:  &cryptox.Hasher{Pepper: "pepper", Memory: 1024, Iterations: 1, Parallelism: 1},
		Sealer:  sealer,
		Metrics: metrics,
		Issuer:  "Campus",
	}
	for _, m := range mutate {
		m(&opts)
	}

	return &harness{
		svc:     NewMFAService(opts),
		store:   opts.Store,
		clock:   clock,
		metrics: metrics,
	}
}

// code derives the current TOTP code for secret.
func (h *harness) code(t *testing.T, secret string) string {
	t.Helper()
	c, err := h.svc.Engine.DeriveCode(secret, h.clock.Now())
	require.NoError(t, err)
	return c
}

// enroll runs setup and enable for userID and returns the secret and backup codes.
func (h *harness) enroll(t *testing.T, userID string) (string, []string) {
	t.Helper()
	ctx := context.Background()

	enr, err := h.svc.Setup(ctx, userID, userID+"@school.example", domain.FactorTOTP)
	require.NoError(t, err)

	codes, err := h.svc.Enable(ctx, userID, h.code(t, enr.Secret), testSource)
	require.NoError(t, err)
	return enr.Secret, codes
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

// brokenLedgerStore behaves like the wrapped store except that attempts
// cannot be written.
type brokenLedgerStore struct {
	store.Store
}

func (brokenLedgerStore) Attempts() store.Attempts { return brokenAttempts{} }

type brokenAttempts struct{}

var errLedgerDown = errors.New("ledger unavailable")

func (brokenAttempts) Append(context.Context, domain.VerificationAttempt) error {
	return errLedgerDown
}

func (brokenAttempts) ListRecent(context.Context, string, int) ([]domain.VerificationAttempt, error) {
	return nil, errLedgerDown
}

func (brokenAttempts) CountFailuresSince(context.Context, string, time.Time) (int, error) {
	return 0, errLedgerDown
}

// abortingTxStore runs transactions to the end and then rolls them back
// while abort is set, as if the commit had failed.
type abortingTxStore struct {
	store.Store
	abort *atomic.Bool
}

var errTxDown = errors.New("transaction aborted")

func (s abortingTxStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := fn(tx); err != nil {
			return err
		}
		if s.abort.Load() {
			return errTxDown
		}
		return nil
	})
}
