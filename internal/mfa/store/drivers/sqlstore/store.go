// Package sqlstore implements store.Store over database/sql with sqlx. The
// sqlite and postgres drivers share these repositories; queries are written
// with '?' placeholders and rebound for the connection's dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aussiebroadwan/mfa/internal/mfa/store"
)

// Migrator applies the embedded schema of a driver to db.
type Migrator func(db *sql.DB) error

type Store struct {
	db      *sqlx.DB
	migrate Migrator
}

// New wraps an open database. migrate is called by ApplyMigrations.
func New(db *sqlx.DB, migrate Migrator) *Store {
	return &Store{db: db, migrate: migrate}
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) ApplyMigrations() error {
	if s.migrate == nil {
		return nil
	}
	return s.migrate(s.db.DB)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &txStore{tx: tx}, nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Configurations() store.Configurations { return &configurationsRepo{db: s.db} }
func (s *Store) BackupCodes() store.BackupCodes       { return &backupCodesRepo{db: s.db} }
func (s *Store) Attempts() store.Attempts             { return &attemptsRepo{db: s.db} }

type txStore struct {
	tx *sqlx.Tx
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Close is a no-op; the caller commits or rolls back and the DB stays open.
func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

// ApplyMigrations is a no-op; migrations run before any transaction.
func (t *txStore) ApplyMigrations() error { return nil }

func (t *txStore) Configurations() store.Configurations { return &configurationsRepo{db: t.tx} }
func (t *txStore) BackupCodes() store.BackupCodes       { return &backupCodesRepo{db: t.tx} }
func (t *txStore) Attempts() store.Attempts             { return &attemptsRepo{db: t.tx} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// nullableTime binds an optional timestamp. Timestamps are always written
// in UTC so that sqlite's textual representation sorts chronologically.
func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

// requireOneRow maps an UPDATE/INSERT that touched nothing to miss.
func requireOneRow(res sql.Result, miss error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return miss
	}
	return nil
}
