package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/conference-checkin/internal/model"
)

// ConferenceRepo reads the conferences table. Conference CRUD belongs
// to the organizer tooling; this service only needs lookups to validate
// registrations and filters.
type ConferenceRepo struct {
	db *sql.DB
}

// NewConferenceRepo returns a new ConferenceRepo bound to the given database.
func NewConferenceRepo(db *sql.DB) *ConferenceRepo { return &ConferenceRepo{db: db} }

// GetByID returns one conference. Absence is reported as sql.ErrNoRows.
func (r *ConferenceRepo) GetByID(ctx context.Context, id uint64) (model.Conference, error) {
	const q = `SELECT id, name, starts_at, ends_at FROM conferences WHERE id = ?`
	var c model.Conference
	err := r.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.Name, &c.StartsAt, &c.EndsAt)
	return c, err
}

// ExistsTx reports whether a conference row exists, inside an existing
// transaction.
func (r *ConferenceRepo) ExistsTx(ctx context.Context, tx *sql.Tx, id uint64) (bool, error) {
	const q = `SELECT 1 FROM conferences WHERE id = ?`
	var one int
	err := tx.QueryRowContext(ctx, q, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
