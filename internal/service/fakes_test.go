package service

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/conference-checkin/internal/model"
	"github.com/iliyamo/conference-checkin/internal/repository"
)

// fakeTxManager runs the function directly with a nil transaction. The
// fake stores below never touch their tx argument, so service logic can
// be exercised without a database.
type fakeTxManager struct{}

func (fakeTxManager) WithinTx(_ context.Context, fn func(tx *sql.Tx) error) error {
	return fn(nil)
}

type fakeRegistrationStore struct {
	byID   map[uint64]*model.Registration
	nextID uint64

	// failDuplicates makes the next N InsertTx calls fail with a MySQL
	// duplicate-entry error, independent of the stored rows.
	failDuplicates int
	insertCalls    int
}

func newFakeRegistrationStore() *fakeRegistrationStore {
	return &fakeRegistrationStore{byID: make(map[uint64]*model.Registration)}
}

func dupErr() error {
	return &mysql.MySQLError{Number: 1062, Message: "Duplicate entry for key 'registrations.qr_code'"}
}

func (s *fakeRegistrationStore) InsertTx(_ context.Context, _ *sql.Tx, reg *model.Registration) error {
	s.insertCalls++
	if s.failDuplicates > 0 {
		s.failDuplicates--
		return dupErr()
	}
	for _, existing := range s.byID {
		if existing.QRCode == reg.QRCode {
			return dupErr()
		}
	}
	s.nextID++
	reg.ID = s.nextID
	reg.RegistrationDate = time.Now().UTC()
	cp := *reg
	s.byID[reg.ID] = &cp
	return nil
}

func (s *fakeRegistrationStore) find(match func(*model.Registration) bool) (*model.Registration, error) {
	for _, reg := range s.byID {
		if match(reg) {
			cp := *reg
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *fakeRegistrationStore) FindByQR(_ context.Context, qr string) (*model.Registration, error) {
	return s.find(func(r *model.Registration) bool { return r.QRCode == qr })
}

func (s *fakeRegistrationStore) FindByQRTx(ctx context.Context, _ *sql.Tx, qr string) (*model.Registration, error) {
	return s.FindByQR(ctx, qr)
}

func (s *fakeRegistrationStore) FindByID(_ context.Context, id uint64) (*model.Registration, error) {
	return s.find(func(r *model.Registration) bool { return r.ID == id })
}

func (s *fakeRegistrationStore) FindByIDTx(ctx context.Context, _ *sql.Tx, id uint64) (*model.Registration, error) {
	return s.FindByID(ctx, id)
}

func (s *fakeRegistrationStore) UpdateStatusTx(_ context.Context, _ *sql.Tx, id uint64, status string) error {
	reg, ok := s.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	reg.Status = status
	return nil
}

type fakeCheckinStore struct {
	rows   map[uint64]*model.Checkin
	nextID uint64
}

func newFakeCheckinStore() *fakeCheckinStore {
	return &fakeCheckinStore{rows: make(map[uint64]*model.Checkin)}
}

func sameScope(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (s *fakeCheckinStore) InsertTx(_ context.Context, _ *sql.Tx, ck *model.Checkin) error {
	s.nextID++
	ck.ID = s.nextID
	cp := *ck
	s.rows[ck.ID] = &cp
	return nil
}

func (s *fakeCheckinStore) LatestSinceTx(_ context.Context, _ *sql.Tx, registrationID uint64, sessionID *uint64, since time.Time) (*model.Checkin, error) {
	var latest *model.Checkin
	for _, ck := range s.rows {
		if ck.RegistrationID != registrationID || !sameScope(ck.SessionID, sessionID) {
			continue
		}
		if ck.Status == model.CheckinError || ck.CheckinTime.Before(since) {
			continue
		}
		if latest == nil || ck.CheckinTime.After(latest.CheckinTime) {
			latest = ck
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (s *fakeCheckinStore) GetByID(_ context.Context, id uint64) (*model.Checkin, error) {
	ck, ok := s.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *ck
	return &cp, nil
}

func (s *fakeCheckinStore) GetByIDTx(ctx context.Context, _ *sql.Tx, id uint64) (*model.Checkin, error) {
	return s.GetByID(ctx, id)
}

func (s *fakeCheckinStore) DeleteTx(_ context.Context, _ *sql.Tx, id uint64) error {
	delete(s.rows, id)
	return nil
}

func (s *fakeCheckinStore) List(_ context.Context, _ repository.CheckinFilter) ([]repository.CheckinDetail, error) {
	out := make([]repository.CheckinDetail, 0, len(s.rows))
	for _, ck := range s.rows {
		out = append(out, repository.CheckinDetail{
			ID:             ck.ID,
			RegistrationID: ck.RegistrationID,
			SessionID:      ck.SessionID,
			CheckinTime:    ck.CheckinTime,
			Method:         ck.Method,
			Status:         ck.Status,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckinTime.After(out[j].CheckinTime) })
	return out, nil
}

// all returns the stored rows for assertions, insertion-ordered by id.
func (s *fakeCheckinStore) all() []*model.Checkin {
	out := make([]*model.Checkin, 0, len(s.rows))
	for _, ck := range s.rows {
		out = append(out, ck)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type fakeUserStore struct {
	users map[uint64]model.User
}

func newFakeUserStore(users ...model.User) *fakeUserStore {
	m := make(map[uint64]model.User, len(users))
	for _, u := range users {
		m[u.ID] = u
	}
	return &fakeUserStore{users: m}
}

func (s *fakeUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (s *fakeUserStore) GetByIDTx(ctx context.Context, _ *sql.Tx, id uint64) (model.User, error) {
	return s.GetByID(ctx, id)
}

type fakeConferenceStore struct {
	ids map[uint64]bool
}

func newFakeConferenceStore(ids ...uint64) *fakeConferenceStore {
	m := make(map[uint64]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return &fakeConferenceStore{ids: m}
}

func (s *fakeConferenceStore) ExistsTx(_ context.Context, _ *sql.Tx, id uint64) (bool, error) {
	return s.ids[id], nil
}

type fakeSessionStore struct {
	sessions map[uint64]model.Session
}

func newFakeSessionStore(sessions ...model.Session) *fakeSessionStore {
	m := make(map[uint64]model.Session, len(sessions))
	for _, s := range sessions {
		m[s.ID] = s
	}
	return &fakeSessionStore{sessions: m}
}

func (s *fakeSessionStore) GetByIDTx(_ context.Context, _ *sql.Tx, id uint64) (model.Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return model.Session{}, sql.ErrNoRows
	}
	return sess, nil
}

// fakeClock is a controllable clock for window-boundary tests.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func sessionPtr(v uint64) *uint64 { return &v }
