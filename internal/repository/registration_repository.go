package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/conference-checkin/internal/model"
)

// RegistrationRepo provides data access to the registrations table.
// Registrations are created once with a unique QR token and afterwards
// only mutated through single-column status updates driven by the
// check-in engine. All timestamp columns are stored in UTC.
type RegistrationRepo struct {
	db *sql.DB
}

// NewRegistrationRepo returns a new RegistrationRepo bound to the given database.
func NewRegistrationRepo(db *sql.DB) *RegistrationRepo { return &RegistrationRepo{db: db} }

const registrationColumns = `id, attendee_id, conference_id, registration_date, status, qr_code`

// InsertTx inserts a new registration within the scope of an existing
// transaction. It populates the generated ID and the server-assigned
// registration_date on the provided record. A uniqueness violation on
// qr_code surfaces as the driver error unchanged so callers can detect
// it with IsDuplicateEntry and retry with a fresh token. The caller
// must commit or rollback the transaction.
func (r *RegistrationRepo) InsertTx(ctx context.Context, tx *sql.Tx, reg *model.Registration) error {
	const q = `INSERT INTO registrations (attendee_id, conference_id, status, qr_code) VALUES (?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, reg.AttendeeID, reg.ConferenceID, reg.Status, reg.QRCode)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	reg.ID = uint64(id)
	// Query back the full row to populate the DB-assigned timestamp
	const sel = `SELECT ` + registrationColumns + ` FROM registrations WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, reg.ID).Scan(
		&reg.ID, &reg.AttendeeID, &reg.ConferenceID, &reg.RegistrationDate, &reg.Status, &reg.QRCode,
	)
}

// FindByQR returns the registration carrying the given QR token.
// Absence is reported as sql.ErrNoRows.
func (r *RegistrationRepo) FindByQR(ctx context.Context, qr string) (*model.Registration, error) {
	const q = `SELECT ` + registrationColumns + ` FROM registrations WHERE qr_code = ?`
	return scanRegistration(r.db.QueryRowContext(ctx, q, qr))
}

// FindByQRTx is FindByQR executed inside an existing transaction.
func (r *RegistrationRepo) FindByQRTx(ctx context.Context, tx *sql.Tx, qr string) (*model.Registration, error) {
	const q = `SELECT ` + registrationColumns + ` FROM registrations WHERE qr_code = ?`
	return scanRegistration(tx.QueryRowContext(ctx, q, qr))
}

// FindByID returns a registration by primary key. Absence is reported
// as sql.ErrNoRows.
func (r *RegistrationRepo) FindByID(ctx context.Context, id uint64) (*model.Registration, error) {
	const q = `SELECT ` + registrationColumns + ` FROM registrations WHERE id = ?`
	return scanRegistration(r.db.QueryRowContext(ctx, q, id))
}

// FindByIDTx is FindByID executed inside an existing transaction.
func (r *RegistrationRepo) FindByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Registration, error) {
	const q = `SELECT ` + registrationColumns + ` FROM registrations WHERE id = ?`
	return scanRegistration(tx.QueryRowContext(ctx, q, id))
}

// UpdateStatusTx sets registrations.status for a single row within the
// provided transaction. It is the only mutation the check-in engine
// performs on an existing registration.
func (r *RegistrationRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
	const q = `UPDATE registrations SET status = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, status, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row rowScanner) (*model.Registration, error) {
	var reg model.Registration
	err := row.Scan(&reg.ID, &reg.AttendeeID, &reg.ConferenceID, &reg.RegistrationDate, &reg.Status, &reg.QRCode)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}
