package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/conference-checkin/internal/model"
)

// CheckinRepo provides data access to the checkins table. The table is
// an append-only log of check-in attempts: rows are inserted for every
// attempt (successful or duplicate) and removed only through the
// QR-verified reversal path. All timestamps are stored in UTC.
type CheckinRepo struct {
	db *sql.DB
}

// NewCheckinRepo returns a new CheckinRepo bound to the given database.
func NewCheckinRepo(db *sql.DB) *CheckinRepo { return &CheckinRepo{db: db} }

const checkinColumns = `id, registration_id, session_id, checkin_time, method, status`

// InsertTx appends a check-in attempt within the provided transaction.
// The caller supplies the checkin_time so the dedup window and the
// stored row share one clock reading. The generated ID is populated on
// the record.
func (r *CheckinRepo) InsertTx(ctx context.Context, tx *sql.Tx, ck *model.Checkin) error {
	const q = `INSERT INTO checkins (registration_id, session_id, checkin_time, method, status) VALUES (?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		ck.RegistrationID, ck.SessionID, ck.CheckinTime.UTC().Format("2006-01-02 15:04:05"), ck.Method, ck.Status)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	ck.ID = uint64(id)
	return nil
}

// LatestSinceTx returns the newest non-error check-in for the given
// (registration, scope) pair whose checkin_time falls at or after the
// since bound. The scope is the session id, or conference-level when
// sessionID is nil; the two scopes never match each other. When no row
// qualifies, (nil, nil) is returned — absence is an answer here, not a
// failure.
func (r *CheckinRepo) LatestSinceTx(ctx context.Context, tx *sql.Tx, registrationID uint64, sessionID *uint64, since time.Time) (*model.Checkin, error) {
	const q = `SELECT ` + checkinColumns + `
	           FROM checkins
	           WHERE registration_id = ?
	             AND session_id <=> ?
	             AND status <> ?
	             AND checkin_time >= ?
	           ORDER BY checkin_time DESC
	           LIMIT 1`
	row := tx.QueryRowContext(ctx, q,
		registrationID, sessionID, model.CheckinError, since.UTC().Format("2006-01-02 15:04:05"))
	ck, err := scanCheckin(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ck, nil
}

// GetByID returns a single check-in row. Absence is reported as
// sql.ErrNoRows.
func (r *CheckinRepo) GetByID(ctx context.Context, id uint64) (*model.Checkin, error) {
	const q = `SELECT ` + checkinColumns + ` FROM checkins WHERE id = ?`
	return scanCheckin(r.db.QueryRowContext(ctx, q, id))
}

// GetByIDTx is GetByID executed inside an existing transaction.
func (r *CheckinRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Checkin, error) {
	const q = `SELECT ` + checkinColumns + ` FROM checkins WHERE id = ?`
	return scanCheckin(tx.QueryRowContext(ctx, q, id))
}

// DeleteTx removes a check-in row within the provided transaction.
// Only the reversal path calls this.
func (r *CheckinRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	const q = `DELETE FROM checkins WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}

// CheckinDetail is a check-in row joined with the attendee identity and
// registration data callers need for display and audit. It is returned
// by List and by the recorder after a scan.
type CheckinDetail struct {
	ID             uint64    `json:"id"`
	RegistrationID uint64    `json:"registration_id"`
	SessionID      *uint64   `json:"session_id,omitempty"`
	CheckinTime    time.Time `json:"checkin_time"`
	Method         string    `json:"method"`
	Status         string    `json:"status"`
	AttendeeID     uint64    `json:"attendee_id"`
	AttendeeName   string    `json:"attendee_name"`
	AttendeeEmail  string    `json:"attendee_email"`
	ConferenceID   uint64    `json:"conference_id"`
	QRCode         string    `json:"qr_code"`
}

// CheckinFilter narrows List results. Zero values mean "no filter".
// Page is 1-based; Limit is clamped by the handler.
type CheckinFilter struct {
	ConferenceID uint64
	AttendeeID   uint64
	Page         int
	Limit        int
}

// List returns check-in attempts newest-first, optionally filtered by
// conference and/or attendee, with page/limit pagination. When nothing
// matches, an empty slice is returned.
func (r *CheckinRepo) List(ctx context.Context, f CheckinFilter) ([]CheckinDetail, error) {
	q := `SELECT c.id, c.registration_id, c.session_id, c.checkin_time, c.method, c.status,
	             u.id, u.full_name, u.email, reg.conference_id, reg.qr_code
	      FROM checkins c
	      JOIN registrations reg ON reg.id = c.registration_id
	      JOIN users u ON u.id = reg.attendee_id
	      WHERE 1=1`
	args := make([]interface{}, 0, 4)
	if f.ConferenceID != 0 {
		q += ` AND reg.conference_id = ?`
		args = append(args, f.ConferenceID)
	}
	if f.AttendeeID != 0 {
		q += ` AND reg.attendee_id = ?`
		args = append(args, f.AttendeeID)
	}
	q += ` ORDER BY c.checkin_time DESC, c.id DESC`
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	q += ` LIMIT ? OFFSET ?`
	args = append(args, limit, (page-1)*limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]CheckinDetail, 0)
	for rows.Next() {
		var d CheckinDetail
		var sessionID sql.NullInt64
		if err := rows.Scan(
			&d.ID, &d.RegistrationID, &sessionID, &d.CheckinTime, &d.Method, &d.Status,
			&d.AttendeeID, &d.AttendeeName, &d.AttendeeEmail, &d.ConferenceID, &d.QRCode,
		); err != nil {
			return nil, err
		}
		if sessionID.Valid {
			sid := uint64(sessionID.Int64)
			d.SessionID = &sid
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

func scanCheckin(row rowScanner) (*model.Checkin, error) {
	var ck model.Checkin
	var sessionID sql.NullInt64
	err := row.Scan(&ck.ID, &ck.RegistrationID, &sessionID, &ck.CheckinTime, &ck.Method, &ck.Status)
	if err != nil {
		return nil, err
	}
	if sessionID.Valid {
		sid := uint64(sessionID.Int64)
		ck.SessionID = &sid
	}
	return &ck, nil
}
