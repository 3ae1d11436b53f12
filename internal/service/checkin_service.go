package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/conference-checkin/internal/database"
	"github.com/iliyamo/conference-checkin/internal/model"
	"github.com/iliyamo/conference-checkin/internal/repository"
)

// DedupWindow is the trailing interval during which a repeated check-in
// at the same (registration, scope) is recorded as duplicate instead of
// triggering a new status transition. It slides from the attempt time;
// it is not a calendar boundary.
const DedupWindow = 24 * time.Hour

type checkinStore interface {
	InsertTx(ctx context.Context, tx *sql.Tx, ck *model.Checkin) error
	LatestSinceTx(ctx context.Context, tx *sql.Tx, registrationID uint64, sessionID *uint64, since time.Time) (*model.Checkin, error)
	GetByID(ctx context.Context, id uint64) (*model.Checkin, error)
	GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Checkin, error)
	DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error
	List(ctx context.Context, f repository.CheckinFilter) ([]repository.CheckinDetail, error)
}

type sessionStore interface {
	GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Session, error)
}

// QRVerdict is the structured outcome of reversal verification. A
// mismatch is an answer, not an error: the check-in stays untouched and
// the caller relays the message.
type QRVerdict struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// CheckinService records check-in attempts, derives the per-scope
// two-state machine from the append-only log, and handles QR-verified
// reversal. Every mutating operation runs inside one transaction; the
// only concurrency control is store-level isolation plus the qr_code
// uniqueness constraint. A dedup-window read racing a concurrent insert
// can, in the worst case, produce two success rows for one scope; this
// is accepted and not silently corrected.
type CheckinService struct {
	txm           database.TxManager
	registrations registrationStore
	checkins      checkinStore
	users         userStore
	sessions      sessionStore
	now           func() time.Time
}

// NewCheckinService wires a CheckinService using the real clock.
func NewCheckinService(txm database.TxManager, regs registrationStore, checkins checkinStore, users userStore, sessions sessionStore) *CheckinService {
	return &CheckinService{
		txm:           txm,
		registrations: regs,
		checkins:      checkins,
		users:         users,
		sessions:      sessions,
		now:           time.Now,
	}
}

// ScanByQR records a check-in attempt resolved from a scanned QR token.
// A nil sessionID means conference-level scope. The returned detail is
// enriched with the attendee identity and registration data for
// display and audit.
func (s *CheckinService) ScanByQR(ctx context.Context, qr string, sessionID *uint64) (*repository.CheckinDetail, error) {
	return s.record(ctx, sessionID, model.MethodQR, func(tx *sql.Tx) (*model.Registration, error) {
		return s.registrations.FindByQRTx(ctx, tx, qr)
	})
}

// Manual records a check-in attempt for a registration looked up by id
// at the desk.
func (s *CheckinService) Manual(ctx context.Context, registrationID uint64, sessionID *uint64) (*repository.CheckinDetail, error) {
	return s.record(ctx, sessionID, model.MethodManual, func(tx *sql.Tx) (*model.Registration, error) {
		return s.registrations.FindByIDTx(ctx, tx, registrationID)
	})
}

// record is the shared recorder behind ScanByQR and Manual. Inside one
// transaction it resolves the registration, consults the dedup window
// for the (registration, scope) pair, flips the registration status
// only on a genuinely new presence, and appends the attempt row
// unconditionally. Session-scoped and conference-level windows never
// interfere with each other.
func (s *CheckinService) record(ctx context.Context, sessionID *uint64, method string, resolve func(tx *sql.Tx) (*model.Registration, error)) (*repository.CheckinDetail, error) {
	var detail *repository.CheckinDetail
	err := s.txm.WithinTx(ctx, func(tx *sql.Tx) error {
		reg, err := resolve(tx)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRegistrationNotFound
		}
		if err != nil {
			return err
		}
		if sessionID != nil {
			if _, err := s.sessions.GetByIDTx(ctx, tx, *sessionID); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return ErrSessionNotFound
				}
				return err
			}
		}

		now := s.now().UTC()
		last, err := s.checkins.LatestSinceTx(ctx, tx, reg.ID, sessionID, now.Add(-DedupWindow))
		if err != nil {
			return err
		}
		status := model.CheckinSuccess
		if last != nil {
			status = model.CheckinDuplicate
		} else if err := s.registrations.UpdateStatusTx(ctx, tx, reg.ID, model.StatusCheckedIn); err != nil {
			return err
		}

		ck := &model.Checkin{
			RegistrationID: reg.ID,
			SessionID:      sessionID,
			CheckinTime:    now,
			Method:         method,
			Status:         status,
		}
		if err := s.checkins.InsertTx(ctx, tx, ck); err != nil {
			return err
		}

		attendee, err := s.users.GetByIDTx(ctx, tx, reg.AttendeeID)
		if err != nil {
			return err
		}
		detail = &repository.CheckinDetail{
			ID:             ck.ID,
			RegistrationID: reg.ID,
			SessionID:      sessionID,
			CheckinTime:    ck.CheckinTime,
			Method:         method,
			Status:         status,
			AttendeeID:     attendee.ID,
			AttendeeName:   attendee.FullName,
			AttendeeEmail:  attendee.Email,
			ConferenceID:   reg.ConferenceID,
			QRCode:         reg.QRCode,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// List returns check-in attempts newest-first, filtered and paginated.
func (s *CheckinService) List(ctx context.Context, f repository.CheckinFilter) ([]repository.CheckinDetail, error) {
	return s.checkins.List(ctx, f)
}

// VerifyQRForDelete compares the supplied QR token against the one on
// the check-in's parent registration. The comparison is exact. It
// errors only when the check-in row itself is absent; a mismatch is a
// negative verdict.
func (s *CheckinService) VerifyQRForDelete(ctx context.Context, checkinID uint64, suppliedQR string) (QRVerdict, error) {
	ck, err := s.checkins.GetByID(ctx, checkinID)
	if errors.Is(err, sql.ErrNoRows) {
		return QRVerdict{}, ErrCheckinNotFound
	}
	if err != nil {
		return QRVerdict{}, err
	}
	reg, err := s.registrations.FindByID(ctx, ck.RegistrationID)
	if err != nil {
		return QRVerdict{}, err
	}
	if reg.QRCode != suppliedQR {
		return QRVerdict{Valid: false, Message: "qr code does not match registration"}, nil
	}
	return QRVerdict{Valid: true, Message: "qr code verified"}, nil
}

// Delete removes a check-in row and resets the parent registration to
// registered. The caller must have obtained a positive verdict from
// VerifyQRForDelete first. The status reset is unconditional: it does
// not recompute presence from rows surviving in other scopes on the
// same registration.
func (s *CheckinService) Delete(ctx context.Context, checkinID uint64) error {
	return s.txm.WithinTx(ctx, func(tx *sql.Tx) error {
		ck, err := s.checkins.GetByIDTx(ctx, tx, checkinID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCheckinNotFound
		}
		if err != nil {
			return err
		}
		if err := s.checkins.DeleteTx(ctx, tx, ck.ID); err != nil {
			return err
		}
		return s.registrations.UpdateStatusTx(ctx, tx, ck.RegistrationID, model.StatusRegistered)
	})
}
