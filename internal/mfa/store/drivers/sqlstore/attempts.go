package sqlstore

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aussiebroadwan/mfa/internal/mfa/domain"
)

type attemptsRepo struct {
	db sqlx.ExtContext
}

func (r *attemptsRepo) Append(ctx context.Context, a domain.VerificationAttempt) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(
		`INSERT INTO verification_attempts
			(id, user_id, operation, method, outcome, source_ip, user_agent, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	),
		a.ID,
		a.UserID,
		string(a.Operation),
		string(a.Method),
		string(a.Outcome),
		a.SourceIP,
		a.UserAgent,
		a.OccurredAt.UTC(),
	)
	return err
}

func (r *attemptsRepo) ListRecent(ctx context.Context, userID string, limit int) ([]domain.VerificationAttempt, error) {
	var out []domain.VerificationAttempt
	err := sqlx.SelectContext(ctx, r.db, &out, r.db.Rebind(
		`SELECT id, user_id, operation, method, outcome, source_ip, user_agent, occurred_at
		FROM verification_attempts
		WHERE user_id = ?
		ORDER BY occurred_at DESC, id DESC
		LIMIT ?`,
	), userID, int64(limit))
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *attemptsRepo) CountFailuresSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, r.db.Rebind(
		`SELECT COUNT(*) FROM verification_attempts
		WHERE user_id = ? AND outcome = ? AND occurred_at >= ?`,
	), userID, string(domain.OutcomeFailure), since.UTC())
	return n, err
}
