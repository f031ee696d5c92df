package sqlite

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/aussiebroadwan/mfa/internal/mfa/store/drivers/sqlstore"
)

// NewStore opens the sqlite database at path (":memory:" for an in-memory
// database). The pool is pinned to a single connection: sqlite serialises
// writers anyway and an in-memory database lives and dies with its connection.
func NewStore(path string) (*sqlstore.Store, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return sqlstore.New(db, applyMigrations), nil
}
