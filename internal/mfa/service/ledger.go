package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/mfa/internal/mfa/domain"
	"github.com/aussiebroadwan/mfa/internal/mfa/store"
	"github.com/aussiebroadwan/mfa/pkg/idx"
	"github.com/aussiebroadwan/mfa/pkg/slogx"
	"github.com/aussiebroadwan/mfa/pkg/totpx"
)

// Page sizes for Recent.
const (
	DefaultAttemptsLimit = 50
	MaxAttemptsLimit     = 200
)

// Ledger is the append-only audit trail of verification attempts.
type Ledger struct {
	Store   store.Store
	Metrics *Metrics
	Clock   totpx.Clock
}

// Record appends an attempt. Writing is best effort: a failure is logged and
// counted but never surfaces to the operation being audited.
func (l *Ledger) Record(ctx context.Context, a domain.VerificationAttempt) {
	if a.OccurredAt.IsZero() {
		a.OccurredAt = l.Clock.Now()
	}
	if a.ID == "" {
		a.ID = idx.NewAt(a.OccurredAt).String()
	}
	l.Metrics.observeAttempt(a.Operation, a.Outcome)

	if err := l.Store.Attempts().Append(ctx, a); err != nil {
		l.Metrics.observeLedgerFailure()
		slogx.FromContext(ctx).Error("failed to record verification attempt",
			"user_id", a.UserID,
			"operation", a.Operation,
			"outcome", a.Outcome,
			"err", err,
		)
	}
}

// Recent returns the newest attempts of a user, newest first.
func (l *Ledger) Recent(ctx context.Context, userID string, limit int) ([]domain.VerificationAttempt, error) {
	switch {
	case limit <= 0:
		limit = DefaultAttemptsLimit
	case limit > MaxAttemptsLimit:
		limit = MaxAttemptsLimit
	}
	out, err := l.Store.Attempts().ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return out, nil
}

// FailuresSince counts failed attempts in the window starting at since. No
// lockout policy consumes it yet.
func (l *Ledger) FailuresSince(ctx context.Context, userID string, since time.Time) (int, error) {
	n, err := l.Store.Attempts().CountFailuresSince(ctx, userID, since)
	if err != nil {
		return 0, fmt.Errorf("count failed attempts: %w", err)
	}
	return n, nil
}
