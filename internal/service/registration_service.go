package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/conference-checkin/internal/database"
	"github.com/iliyamo/conference-checkin/internal/model"
	"github.com/iliyamo/conference-checkin/internal/qrtoken"
	"github.com/iliyamo/conference-checkin/internal/repository"
)

// qrMintAttempts bounds the regenerate-and-retry loop on qr_code
// uniqueness conflicts during registration creation.
const qrMintAttempts = 5

// registrationStore is the slice of RegistrationRepo the services use.
type registrationStore interface {
	InsertTx(ctx context.Context, tx *sql.Tx, reg *model.Registration) error
	FindByQR(ctx context.Context, qr string) (*model.Registration, error)
	FindByQRTx(ctx context.Context, tx *sql.Tx, qr string) (*model.Registration, error)
	FindByID(ctx context.Context, id uint64) (*model.Registration, error)
	FindByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Registration, error)
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error
}

type conferenceStore interface {
	ExistsTx(ctx context.Context, tx *sql.Tx, id uint64) (bool, error)
}

type userStore interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
	GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.User, error)
}

// RegistrationService owns the lifecycle of registrations: it mints QR
// tokens at creation and exposes the lookups the check-in desk needs.
type RegistrationService struct {
	txm           database.TxManager
	registrations registrationStore
	conferences   conferenceStore
	users         userStore
	tokens        qrtoken.Generator
}

// NewRegistrationService wires a RegistrationService. Pass
// qrtoken.RandomGenerator{} outside of tests.
func NewRegistrationService(txm database.TxManager, regs registrationStore, confs conferenceStore, users userStore, gen qrtoken.Generator) *RegistrationService {
	return &RegistrationService{txm: txm, registrations: regs, conferences: confs, users: users, tokens: gen}
}

// Create registers an attendee for a conference and mints the unique QR
// token. The whole operation, including uniqueness-conflict retries,
// runs inside one transaction, so a failed attempt never leaves a
// partial row behind. Returns ErrQRCodeExhausted when five consecutive
// mints collided, which the boundary treats as fatal.
func (s *RegistrationService) Create(ctx context.Context, attendeeID, conferenceID uint64) (*model.Registration, error) {
	var created *model.Registration
	err := s.txm.WithinTx(ctx, func(tx *sql.Tx) error {
		ok, err := s.conferences.ExistsTx(ctx, tx, conferenceID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrConferenceNotFound
		}
		if _, err := s.users.GetByIDTx(ctx, tx, attendeeID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrAttendeeNotFound
			}
			return err
		}
		for attempt := 0; attempt < qrMintAttempts; attempt++ {
			code, err := qrtoken.New(s.tokens, conferenceID, attendeeID)
			if err != nil {
				return err
			}
			candidate := &model.Registration{
				AttendeeID:   attendeeID,
				ConferenceID: conferenceID,
				Status:       model.StatusRegistered,
				QRCode:       code,
			}
			err = s.registrations.InsertTx(ctx, tx, candidate)
			if err == nil {
				created = candidate
				return nil
			}
			if !repository.IsDuplicateEntry(err) {
				return err
			}
			// Collision on qr_code: mint a fresh suffix and try again.
		}
		return ErrQRCodeExhausted
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// FindByQR resolves a registration from its QR token.
func (s *RegistrationService) FindByQR(ctx context.Context, qr string) (*model.Registration, error) {
	reg, err := s.registrations.FindByQR(ctx, qr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRegistrationNotFound
	}
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// FindByID resolves a registration by primary key.
func (s *RegistrationService) FindByID(ctx context.Context, id uint64) (*model.Registration, error) {
	reg, err := s.registrations.FindByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRegistrationNotFound
	}
	if err != nil {
		return nil, err
	}
	return reg, nil
}
