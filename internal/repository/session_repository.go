package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/conference-checkin/internal/model"
)

// SessionRepo reads the sessions table. Like conferences, session CRUD
// lives elsewhere; the check-in engine only verifies that a session
// scope actually exists before recording against it.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo returns a new SessionRepo bound to the given database.
func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

// GetByID returns one session. Absence is reported as sql.ErrNoRows.
func (r *SessionRepo) GetByID(ctx context.Context, id uint64) (model.Session, error) {
	const q = `SELECT id, conference_id, title, starts_at, ends_at FROM sessions WHERE id = ?`
	var s model.Session
	err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.ConferenceID, &s.Title, &s.StartsAt, &s.EndsAt)
	return s, err
}

// GetByIDTx is GetByID executed inside an existing transaction.
func (r *SessionRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Session, error) {
	const q = `SELECT id, conference_id, title, starts_at, ends_at FROM sessions WHERE id = ?`
	var s model.Session
	err := tx.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.ConferenceID, &s.Title, &s.StartsAt, &s.EndsAt)
	return s, err
}
