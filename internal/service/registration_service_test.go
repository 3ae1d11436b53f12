package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/conference-checkin/internal/model"
	"github.com/iliyamo/conference-checkin/internal/qrtoken"
)

func newRegistrationService(regs *fakeRegistrationStore, confs *fakeConferenceStore, users *fakeUserStore) *RegistrationService {
	return NewRegistrationService(fakeTxManager{}, regs, confs, users, qrtoken.RandomGenerator{})
}

func attendee(id uint64) model.User {
	return model.User{ID: id, Email: "attendee@example.com", FullName: "Ada Attendee", Role: model.RoleAttendee, IsActive: true}
}

func TestCreateMintsUniqueQRToken(t *testing.T) {
	regs := newFakeRegistrationStore()
	svc := newRegistrationService(regs, newFakeConferenceStore(3), newFakeUserStore(attendee(7)))

	reg, err := svc.Create(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRegistered, reg.Status)
	assert.Regexp(t, `^REG-3-7-[A-Z0-9]{10}$`, reg.QRCode)
	assert.NotZero(t, reg.ID)

	// A second registration for the same pair gets a different token.
	reg2, err := svc.Create(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.NotEqual(t, reg.QRCode, reg2.QRCode)
}

func TestCreateRetriesOnDuplicateToken(t *testing.T) {
	regs := newFakeRegistrationStore()
	regs.failDuplicates = 2
	svc := newRegistrationService(regs, newFakeConferenceStore(3), newFakeUserStore(attendee(7)))

	reg, err := svc.Create(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, regs.insertCalls, "two collisions then one success")
	assert.Equal(t, model.StatusRegistered, reg.Status)
}

func TestCreateExhaustsRetryBudget(t *testing.T) {
	regs := newFakeRegistrationStore()
	regs.failDuplicates = 5
	svc := newRegistrationService(regs, newFakeConferenceStore(3), newFakeUserStore(attendee(7)))

	reg, err := svc.Create(context.Background(), 7, 3)
	assert.ErrorIs(t, err, ErrQRCodeExhausted)
	assert.Nil(t, reg)
	assert.Equal(t, 5, regs.insertCalls)
	assert.Empty(t, regs.byID, "no partial row may survive")
}

func TestCreateDoesNotRetryOtherErrors(t *testing.T) {
	regs := newFakeRegistrationStore()
	svc := newRegistrationService(regs, newFakeConferenceStore(), newFakeUserStore(attendee(7)))

	_, err := svc.Create(context.Background(), 7, 99)
	assert.ErrorIs(t, err, ErrConferenceNotFound)
	assert.Zero(t, regs.insertCalls)
}

func TestCreateUnknownAttendee(t *testing.T) {
	regs := newFakeRegistrationStore()
	svc := newRegistrationService(regs, newFakeConferenceStore(3), newFakeUserStore())

	_, err := svc.Create(context.Background(), 7, 3)
	assert.ErrorIs(t, err, ErrAttendeeNotFound)
	assert.Zero(t, regs.insertCalls)
}

func TestFindByQR(t *testing.T) {
	regs := newFakeRegistrationStore()
	svc := newRegistrationService(regs, newFakeConferenceStore(3), newFakeUserStore(attendee(7)))

	created, err := svc.Create(context.Background(), 7, 3)
	require.NoError(t, err)

	found, err := svc.FindByQR(context.Background(), created.QRCode)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = svc.FindByQR(context.Background(), "REG-3-7-0000000000")
	assert.ErrorIs(t, err, ErrRegistrationNotFound)

	_, err = svc.FindByID(context.Background(), created.ID+100)
	assert.ErrorIs(t, err, ErrRegistrationNotFound)
}
