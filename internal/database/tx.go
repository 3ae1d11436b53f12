package database

import (
	"context"
	"database/sql"
)

// TxManager runs a function inside the scope of a single database
// transaction: commit when the function returns nil, rollback
// otherwise. It exists as an interface so that services can be unit
// tested with a fake runner that never touches a real connection.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// SQLTxManager is the production TxManager backed by the shared
// *sql.DB pool. Each WithinTx call checks a connection out of the
// pool for the duration of the transaction.
type SQLTxManager struct {
	db *sql.DB
}

// NewTxManager returns a TxManager bound to the given pool.
func NewTxManager(db *sql.DB) *SQLTxManager { return &SQLTxManager{db: db} }

// WithinTx begins a transaction, invokes fn and commits on a nil
// return. On any error (including a failed commit) the transaction is
// rolled back and the error is returned unchanged so callers can
// branch on sentinel values. The connection is released on every exit
// path.
func (m *SQLTxManager) WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
