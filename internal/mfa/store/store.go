package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/mfa/internal/mfa/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrConflict is returned by compare-and-set writes whose precondition no
	// longer holds: a stale configuration version or an already used code.
	ErrConflict = errors.New("store: conflict")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. Sub-repositories hang off it so a transaction-scoped Store
// hands out repositories bound to that transaction.
type Store interface {
	Configurations() Configurations
	BackupCodes() BackupCodes
	Attempts() Attempts

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	//
	// Inside fn only use the repositories of tx. The sqlite driver runs on a
	// single connection and the outer Store would block until fn returns.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Configurations interface {
	// Get returns the configuration of a user or ErrNotFound.
	Get(ctx context.Context, userID string) (domain.Configuration, error)

	// Put inserts a first configuration for a user. It returns
	// ErrAlreadyExists if one was created concurrently.
	Put(ctx context.Context, cfg domain.Configuration) error

	// CompareAndSet replaces the stored configuration if its version still
	// equals expected. The new row takes cfg.Version as written; callers bump
	// it. A lost race returns ErrConflict.
	CompareAndSet(ctx context.Context, cfg domain.Configuration, expected int64) error
}

type BackupCodes interface {
	// Insert stores a batch of hashed codes.
	Insert(ctx context.Context, codes []domain.BackupCode) error

	// ListUnused returns codes of a user whose UsedAt is nil, oldest first.
	ListUnused(ctx context.Context, userID string) ([]domain.BackupCode, error)

	// MarkUsed sets used_at on a code that has not been used yet. If the
	// code is already used (or gone) it returns ErrConflict.
	MarkUsed(ctx context.Context, id string, usedAt time.Time) error

	// DeleteAll removes every code of a user and reports how many went.
	DeleteAll(ctx context.Context, userID string) (int64, error)

	CountUnused(ctx context.Context, userID string) (int, error)
}

type Attempts interface {
	Append(ctx context.Context, a domain.VerificationAttempt) error

	// ListRecent returns at most limit attempts of a user, newest first.
	ListRecent(ctx context.Context, userID string, limit int) ([]domain.VerificationAttempt, error)

	// CountFailuresSince counts failed attempts at or after since.
	CountFailuresSince(ctx context.Context, userID string, since time.Time) (int, error)
}
