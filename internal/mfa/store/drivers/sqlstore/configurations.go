package sqlstore

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/aussiebroadwan/mfa/internal/mfa/domain"
	"github.com/aussiebroadwan/mfa/internal/mfa/store"
)

type configurationsRepo struct {
	db sqlx.ExtContext
}

const configurationColumns = `user_id, type, state, secret, pending_secret, version,
	created_at, updated_at, confirmed_at, disabled_at`

func (r *configurationsRepo) Get(ctx context.Context, userID string) (domain.Configuration, error) {
	var cfg domain.Configuration
	err := sqlx.GetContext(ctx, r.db, &cfg, r.db.Rebind(
		`SELECT `+configurationColumns+` FROM mfa_configurations WHERE user_id = ?`,
	), userID)
	if err != nil {
		return domain.Configuration{}, mapNotFound(err)
	}
	return cfg, nil
}

func (r *configurationsRepo) Put(ctx context.Context, cfg domain.Configuration) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(
		`INSERT INTO mfa_configurations (`+configurationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO NOTHING`,
	),
		cfg.UserID,
		string(cfg.Type),
		string(cfg.State),
		cfg.Secret,
		cfg.PendingSecret,
		cfg.Version,
		cfg.CreatedAt.UTC(),
		cfg.UpdatedAt.UTC(),
		nullableTime(cfg.ConfirmedAt),
		nullableTime(cfg.DisabledAt),
	)
	if err != nil {
		return err
	}
	return requireOneRow(res, store.ErrAlreadyExists)
}

func (r *configurationsRepo) CompareAndSet(ctx context.Context, cfg domain.Configuration, expected int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(
		`UPDATE mfa_configurations
		SET type = ?, state = ?, secret = ?, pending_secret = ?, version = ?,
			updated_at = ?, confirmed_at = ?, disabled_at = ?
		WHERE user_id = ? AND version = ?`,
	),
		string(cfg.Type),
		string(cfg.State),
		cfg.Secret,
		cfg.PendingSecret,
		cfg.Version,
		cfg.UpdatedAt.UTC(),
		nullableTime(cfg.ConfirmedAt),
		nullableTime(cfg.DisabledAt),
		cfg.UserID,
		expected,
	)
	if err != nil {
		return err
	}
	return requireOneRow(res, store.ErrConflict)
}
