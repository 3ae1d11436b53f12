package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/conference-checkin/internal/model"
)

type checkinFixture struct {
	regs     *fakeRegistrationStore
	checkins *fakeCheckinStore
	clock    *fakeClock
	svc      *CheckinService
	reg      *model.Registration
}

// newCheckinFixture seeds one registration for attendee 7 at conference 3
// with the QR token REG-3-7-AAAAAAAAAA and a session 5 belonging to the
// same conference.
func newCheckinFixture(t *testing.T) *checkinFixture {
	t.Helper()
	regs := newFakeRegistrationStore()
	reg := &model.Registration{
		AttendeeID:   7,
		ConferenceID: 3,
		Status:       model.StatusRegistered,
		QRCode:       "REG-3-7-AAAAAAAAAA",
	}
	require.NoError(t, regs.InsertTx(context.Background(), nil, reg))

	checkins := newFakeCheckinStore()
	clock := &fakeClock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	svc := NewCheckinService(
		fakeTxManager{},
		regs,
		checkins,
		newFakeUserStore(attendee(7)),
		newFakeSessionStore(model.Session{ID: 5, ConferenceID: 3, Title: "Opening Keynote"}),
	)
	svc.now = clock.Now
	return &checkinFixture{regs: regs, checkins: checkins, clock: clock, svc: svc, reg: reg}
}

func (f *checkinFixture) status(t *testing.T) string {
	t.Helper()
	reg, err := f.regs.FindByID(context.Background(), f.reg.ID)
	require.NoError(t, err)
	return reg.Status
}

func TestScanTwiceWithinWindow(t *testing.T) {
	f := newCheckinFixture(t)
	ctx := context.Background()

	first, err := f.svc.ScanByQR(ctx, f.reg.QRCode, nil)
	require.NoError(t, err)
	assert.Equal(t, model.CheckinSuccess, first.Status)
	assert.Equal(t, model.MethodQR, first.Method)
	assert.Equal(t, model.StatusCheckedIn, f.status(t))

	f.clock.Advance(2 * time.Hour)
	second, err := f.svc.ScanByQR(ctx, f.reg.QRCode, nil)
	require.NoError(t, err)
	assert.Equal(t, model.CheckinDuplicate, second.Status)
	assert.Equal(t, model.StatusCheckedIn, f.status(t), "duplicate must not transition again")

	rows := f.checkins.all()
	require.Len(t, rows, 2, "every attempt is logged")
	assert.Equal(t, model.CheckinSuccess, rows[0].Status)
	assert.Equal(t, model.CheckinDuplicate, rows[1].Status)
}

func TestSessionAndConferenceScopesAreIndependent(t *testing.T) {
	f := newCheckinFixture(t)
	ctx := context.Background()

	sessionScoped, err := f.svc.ScanByQR(ctx, f.reg.QRCode, sessionPtr(5))
	require.NoError(t, err)
	assert.Equal(t, model.CheckinSuccess, sessionScoped.Status)

	conferenceWide, err := f.svc.ScanByQR(ctx, f.reg.QRCode, nil)
	require.NoError(t, err)
	assert.Equal(t, model.CheckinSuccess, conferenceWide.Status,
		"conference-level window must not see the session-scoped row")

	rows := f.checkins.all()
	require.Len(t, rows, 2)
	assert.Equal(t, model.CheckinSuccess, rows[0].Status)
	assert.Equal(t, model.CheckinSuccess, rows[1].Status)
}

func TestWindowBoundary(t *testing.T) {
	f := newCheckinFixture(t)
	ctx := context.Background()

	_, err := f.svc.ScanByQR(ctx, f.reg.QRCode, nil)
	require.NoError(t, err)

	// Exactly at the window edge the previous row still counts.
	f.clock.Advance(DedupWindow)
	atEdge, err := f.svc.ScanByQR(ctx, f.reg.QRCode, nil)
	require.NoError(t, err)
	assert.Equal(t, model.CheckinDuplicate, atEdge.Status)

	// One second past the edge of the original row opens a new window
	// against it, but the duplicate attempt above is now the most recent
	// row, so move well past both.
	f.clock.Advance(DedupWindow + time.Second)
	fresh, err := f.svc.ScanByQR(ctx, f.reg.QRCode, nil)
	require.NoError(t, err)
	assert.Equal(t, model.CheckinSuccess, fresh.Status)
}

func TestWindowSlidesFromAttemptTime(t *testing.T) {
	f := newCheckinFixture(t)
	ctx := context.Background()

	_, err := f.svc.ScanByQR(ctx, f.reg.QRCode, nil)
	require.NoError(t, err)

	f.clock.Advance(DedupWindow + time.Second)
	fresh, err := f.svc.ScanByQR(ctx, f.reg.QRCode, nil)
	require.NoError(t, err)
	assert.Equal(t, model.CheckinSuccess, fresh.Status,
		"attempt one second past the trailing window is a new presence")
}

func TestManualRecordsMethod(t *testing.T) {
	f := newCheckinFixture(t)

	detail, err := f.svc.Manual(context.Background(), f.reg.ID, sessionPtr(5))
	require.NoError(t, err)
	assert.Equal(t, model.MethodManual, detail.Method)
	assert.Equal(t, model.CheckinSuccess, detail.Status)
	require.NotNil(t, detail.SessionID)
	assert.Equal(t, uint64(5), *detail.SessionID)
}

func TestScanUnknownQRWritesNothing(t *testing.T) {
	f := newCheckinFixture(t)

	_, err := f.svc.ScanByQR(context.Background(), "REG-3-7-ZZZZZZZZZZ", nil)
	assert.ErrorIs(t, err, ErrRegistrationNotFound)
	assert.Empty(t, f.checkins.all())
	assert.Equal(t, model.StatusRegistered, f.status(t))
}

func TestManualUnknownRegistration(t *testing.T) {
	f := newCheckinFixture(t)

	_, err := f.svc.Manual(context.Background(), f.reg.ID+99, nil)
	assert.ErrorIs(t, err, ErrRegistrationNotFound)
	assert.Empty(t, f.checkins.all())
}

func TestScanUnknownSession(t *testing.T) {
	f := newCheckinFixture(t)

	_, err := f.svc.ScanByQR(context.Background(), f.reg.QRCode, sessionPtr(404))
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Empty(t, f.checkins.all())
	assert.Equal(t, model.StatusRegistered, f.status(t))
}

func TestScanResultIsEnriched(t *testing.T) {
	f := newCheckinFixture(t)

	detail, err := f.svc.ScanByQR(context.Background(), f.reg.QRCode, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), detail.AttendeeID)
	assert.Equal(t, "Ada Attendee", detail.AttendeeName)
	assert.Equal(t, "attendee@example.com", detail.AttendeeEmail)
	assert.Equal(t, uint64(3), detail.ConferenceID)
	assert.Equal(t, f.reg.QRCode, detail.QRCode)
}

func TestVerifyQRForDelete(t *testing.T) {
	f := newCheckinFixture(t)
	ctx := context.Background()

	detail, err := f.svc.ScanByQR(ctx, f.reg.QRCode, nil)
	require.NoError(t, err)

	wrong, err := f.svc.VerifyQRForDelete(ctx, detail.ID, "REG-3-7-WRONGWRONG")
	require.NoError(t, err, "a mismatch is a verdict, not an error")
	assert.False(t, wrong.Valid)
	assert.NotEmpty(t, wrong.Message)

	right, err := f.svc.VerifyQRForDelete(ctx, detail.ID, f.reg.QRCode)
	require.NoError(t, err)
	assert.True(t, right.Valid)

	_, err = f.svc.VerifyQRForDelete(ctx, detail.ID+100, f.reg.QRCode)
	assert.ErrorIs(t, err, ErrCheckinNotFound)
}

func TestDeleteResetsRegistrationStatus(t *testing.T) {
	f := newCheckinFixture(t)
	ctx := context.Background()

	detail, err := f.svc.ScanByQR(ctx, f.reg.QRCode, nil)
	require.NoError(t, err)
	require.Equal(t, model.StatusCheckedIn, f.status(t))

	require.NoError(t, f.svc.Delete(ctx, detail.ID))
	assert.Empty(t, f.checkins.all())
	assert.Equal(t, model.StatusRegistered, f.status(t))

	assert.ErrorIs(t, f.svc.Delete(ctx, detail.ID), ErrCheckinNotFound)
}

// TestFullDeskScenario walks the concrete flow end to end: register,
// scan, scan again, reverse the first check-in.
func TestFullDeskScenario(t *testing.T) {
	ctx := context.Background()
	regs := newFakeRegistrationStore()
	checkins := newFakeCheckinStore()
	users := newFakeUserStore(attendee(7))
	clock := &fakeClock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}

	regSvc := newRegistrationService(regs, newFakeConferenceStore(3), users)
	ckSvc := NewCheckinService(fakeTxManager{}, regs, checkins, users, newFakeSessionStore())
	ckSvc.now = clock.Now

	reg, err := regSvc.Create(ctx, 7, 3)
	require.NoError(t, err)
	require.Regexp(t, `^REG-3-7-[A-Z0-9]{10}$`, reg.QRCode)

	first, err := ckSvc.ScanByQR(ctx, reg.QRCode, nil)
	require.NoError(t, err)
	assert.Equal(t, model.CheckinSuccess, first.Status)

	clock.Advance(time.Minute)
	second, err := ckSvc.ScanByQR(ctx, reg.QRCode, nil)
	require.NoError(t, err)
	assert.Equal(t, model.CheckinDuplicate, second.Status)

	verdict, err := ckSvc.VerifyQRForDelete(ctx, first.ID, reg.QRCode)
	require.NoError(t, err)
	require.True(t, verdict.Valid)
	require.NoError(t, ckSvc.Delete(ctx, first.ID))

	after, err := regSvc.FindByID(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRegistered, after.Status)
}
