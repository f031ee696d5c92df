package sqlstore

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aussiebroadwan/mfa/internal/mfa/domain"
	"github.com/aussiebroadwan/mfa/internal/mfa/store"
)

type backupCodesRepo struct {
	db sqlx.ExtContext
}

// Insert writes the whole batch with a single statement.
func (r *backupCodesRepo) Insert(ctx context.Context, codes []domain.BackupCode) error {
	if len(codes) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO backup_codes (id, user_id, batch_id, code_hash, created_at, used_at) VALUES `)
	args := make([]any, 0, len(codes)*6)
	for i, c := range codes {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?)")
		args = append(args, c.ID, c.UserID, c.BatchID, c.CodeHash, c.CreatedAt.UTC(), nullableTime(c.UsedAt))
	}

	_, err := r.db.ExecContext(ctx, r.db.Rebind(sb.String()), args...)
	return err
}

func (r *backupCodesRepo) ListUnused(ctx context.Context, userID string) ([]domain.BackupCode, error) {
	var codes []domain.BackupCode
	err := sqlx.SelectContext(ctx, r.db, &codes, r.db.Rebind(
		`SELECT id, user_id, batch_id, code_hash, created_at, used_at
		FROM backup_codes
		WHERE user_id = ? AND used_at IS NULL
		ORDER BY id`,
	), userID)
	if err != nil {
		return nil, err
	}
	return codes, nil
}

func (r *backupCodesRepo) MarkUsed(ctx context.Context, id string, usedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(
		`UPDATE backup_codes SET used_at = ? WHERE id = ? AND used_at IS NULL`,
	), usedAt.UTC(), id)
	if err != nil {
		return err
	}
	return requireOneRow(res, store.ErrConflict)
}

func (r *backupCodesRepo) DeleteAll(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(
		`DELETE FROM backup_codes WHERE user_id = ?`,
	), userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *backupCodesRepo) CountUnused(ctx context.Context, userID string) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, r.db.Rebind(
		`SELECT COUNT(*) FROM backup_codes WHERE user_id = ? AND used_at IS NULL`,
	), userID)
	return n, err
}
