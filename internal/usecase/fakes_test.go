package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"gym-booking/internal/data/entity"
	"gym-booking/internal/data/repository"
	"gym-booking/internal/notify"
	"gym-booking/pkg/apperr"
	"gym-booking/pkg/auth"

	"github.com/google/uuid"
)

// memStore is an in-memory stand-in for the SQL layer. Admission
// transactions serialize on the mutex and stage booking writes on a copy
// that is installed only when the callback succeeds, so concurrent
// BookSession calls see the same all-or-nothing behavior the serializable
// transaction gives in production.
type memStore struct {
	mu        sync.Mutex
	templates map[uuid.UUID]*entity.ClassTemplate
	sessions  map[uuid.UUID]*entity.ClassSession
	bookings  map[uuid.UUID]*entity.Booking

	// conflictsLeft injects a serialization failure into that many upcoming
	// admission transactions before letting them through.
	conflictsLeft int
	txRuns        int
}

func newMemStore() *memStore {
	return &memStore{
		templates: make(map[uuid.UUID]*entity.ClassTemplate),
		sessions:  make(map[uuid.UUID]*entity.ClassSession),
		bookings:  make(map[uuid.UUID]*entity.Booking),
	}
}

func (m *memStore) repo() *repository.Repository {
	return &repository.Repository{
		ClassTemplate: &memTemplateRepo{s: m},
		ClassSession:  &memSessionRepo{s: m},
		Booking:       &memBookingRepo{s: m},
	}
}

func (m *memStore) addTemplate(locationID uuid.UUID, title string, capacity int, active bool) *entity.ClassTemplate {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := &entity.ClassTemplate{
		Base:       entity.Base{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		LocationID: locationID,
		Title:      title,
		Capacity:   capacity,
		Active:     active,
	}
	m.templates[t.ID] = t
	return t
}

func (m *memStore) addSession(template *entity.ClassTemplate, startsAt time.Time, override *int, status entity.SessionStatus) *entity.ClassSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := &entity.ClassSession{
		Base:             entity.Base{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		ClassID:          template.ID,
		LocationID:       template.LocationID,
		StartsAt:         startsAt,
		EndsAt:           startsAt.Add(time.Hour),
		CapacityOverride: override,
		Status:           status,
		TemplateCapacity: template.Capacity,
	}
	m.sessions[s.ID] = s
	return s
}

func (m *memStore) addBooking(session *entity.ClassSession, userID uuid.UUID, status entity.BookingStatus) *entity.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	b := &entity.Booking{
		Base:       entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		SessionID:  session.ID,
		UserID:     userID,
		LocationID: session.LocationID,
		Status:     status,
		BookedAt:   now,
	}
	if status == entity.BookingStatusCanceled {
		at := now
		b.CanceledAt = &at
	}
	m.bookings[b.ID] = b
	return b
}

func (m *memStore) booking(id uuid.UUID) *entity.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()

	if b, ok := m.bookings[id]; ok {
		cp := *b
		return &cp
	}
	return nil
}

func (m *memStore) activeCount(sessionID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, b := range m.bookings {
		if b.SessionID == sessionID && b.Active() {
			n++
		}
	}
	return n
}

type memTemplateRepo struct{ s *memStore }

func (r *memTemplateRepo) Create(ctx context.Context, template *entity.ClassTemplate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cp := *template
	r.s.templates[cp.ID] = &cp
	return nil
}

func (r *memTemplateRepo) FindByID(ctx context.Context, id, locationID uuid.UUID) (*entity.ClassTemplate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.templates[id]
	if !ok || t.LocationID != locationID {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *memTemplateRepo) FindByLocation(ctx context.Context, locationID uuid.UUID) ([]*entity.ClassTemplate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*entity.ClassTemplate
	for _, t := range r.s.templates {
		if t.LocationID == locationID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memSessionRepo struct{ s *memStore }

func (r *memSessionRepo) Create(ctx context.Context, session *entity.ClassSession) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cp := *session
	r.s.sessions[cp.ID] = &cp
	return nil
}

func (r *memSessionRepo) FindByID(ctx context.Context, id, locationID uuid.UUID) (*entity.ClassSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	s, ok := r.s.sessions[id]
	if !ok || s.LocationID != locationID {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *memSessionRepo) Cancel(ctx context.Context, id, locationID uuid.UUID) (*entity.ClassSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	s, ok := r.s.sessions[id]
	if !ok || s.LocationID != locationID {
		return nil, nil
	}
	s.Status = entity.SessionStatusCanceled
	s.UpdatedAt = time.Now()
	cp := *s
	return &cp, nil
}

func (r *memSessionRepo) FindByRange(ctx context.Context, locationID uuid.UUID, from, to time.Time) ([]*entity.ClassSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*entity.ClassSession
	for _, s := range r.s.sessions {
		if s.LocationID == locationID && !s.StartsAt.Before(from) && s.StartsAt.Before(to) {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (r *memSessionRepo) BrowseRange(ctx context.Context, locationID, userID uuid.UUID, from, to time.Time) ([]*repository.SessionOverview, error) {
	sessions, err := r.FindByRange(ctx, locationID, from, to)
	if err != nil {
		return nil, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*repository.SessionOverview
	for _, s := range sessions {
		o := &repository.SessionOverview{ClassSession: *s}
		if t, ok := r.s.templates[s.ClassID]; ok {
			o.Title = t.Title
		}
		for _, b := range r.s.bookings {
			if b.SessionID != s.ID || !b.Active() {
				continue
			}
			o.Occupancy++
			if b.UserID == userID {
				o.BookedByCaller = true
			}
		}
		out = append(out, o)
	}
	return out, nil
}

type memBookingRepo struct{ s *memStore }

func (r *memBookingRepo) InAdmissionTx(ctx context.Context, fn func(q repository.AdmissionQueries) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.txRuns++
	if r.s.conflictsLeft > 0 {
		r.s.conflictsLeft--
		return apperr.ConflictRetry("", nil)
	}

	staged := make(map[uuid.UUID]*entity.Booking, len(r.s.bookings))
	for id, b := range r.s.bookings {
		cp := *b
		staged[id] = &cp
	}

	if err := fn(&memAdmission{s: r.s, staged: staged}); err != nil {
		return err
	}

	r.s.bookings = staged
	return nil
}

// memAdmission runs with the store mutex already held.
type memAdmission struct {
	s      *memStore
	staged map[uuid.UUID]*entity.Booking
}

func (q *memAdmission) SessionForAdmission(ctx context.Context, sessionID, locationID uuid.UUID) (*entity.ClassSession, error) {
	s, ok := q.s.sessions[sessionID]
	if !ok || s.LocationID != locationID {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (q *memAdmission) BookingForPair(ctx context.Context, sessionID, userID uuid.UUID) (*entity.Booking, error) {
	for _, b := range q.staged {
		if b.SessionID == sessionID && b.UserID == userID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (q *memAdmission) CountActive(ctx context.Context, sessionID uuid.UUID) (int, error) {
	n := 0
	for _, b := range q.staged {
		if b.SessionID == sessionID && b.Active() {
			n++
		}
	}
	return n, nil
}

func (q *memAdmission) InsertBooked(ctx context.Context, booking *entity.Booking) error {
	cp := *booking
	q.staged[cp.ID] = &cp
	return nil
}

func (q *memAdmission) Rebook(ctx context.Context, bookingID uuid.UUID, at time.Time) (*entity.Booking, error) {
	b := q.staged[bookingID]
	b.Status = entity.BookingStatusBooked
	b.BookedAt = at
	b.CanceledAt = nil
	b.UpdatedAt = at
	cp := *b
	return &cp, nil
}

func (r *memBookingRepo) FindByPair(ctx context.Context, sessionID, userID, locationID uuid.UUID) (*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, b := range r.s.bookings {
		if b.SessionID == sessionID && b.UserID == userID && b.LocationID == locationID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memBookingRepo) CancelBooked(ctx context.Context, bookingID uuid.UUID, at time.Time) (*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.bookings[bookingID]
	if !ok || b.Status != entity.BookingStatusBooked {
		return nil, nil
	}
	b.Status = entity.BookingStatusCanceled
	b.CanceledAt = &at
	b.UpdatedAt = at
	cp := *b
	return &cp, nil
}

func (r *memBookingRepo) SetCheckedIn(ctx context.Context, bookingID uuid.UUID) (*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.bookings[bookingID]
	if !ok || !b.Active() {
		return nil, nil
	}
	b.Status = entity.BookingStatusCheckedIn
	b.UpdatedAt = time.Now()
	cp := *b
	return &cp, nil
}

func (r *memBookingRepo) FindActiveBySession(ctx context.Context, sessionID uuid.UUID) ([]*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*entity.Booking
	for _, b := range r.s.bookings {
		if b.SessionID == sessionID && b.Active() {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookedAt.Before(out[j].BookedAt) })
	return out, nil
}

func (r *memBookingRepo) FindByUser(ctx context.Context, locationID, userID uuid.UUID, limit, offset int) ([]*repository.BookingDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var all []*repository.BookingDetail
	for _, b := range r.s.bookings {
		if b.LocationID != locationID || b.UserID != userID {
			continue
		}
		d := &repository.BookingDetail{Booking: *b}
		if s, ok := r.s.sessions[b.SessionID]; ok {
			d.StartsAt = s.StartsAt
			d.EndsAt = s.EndsAt
			if t, ok := r.s.templates[s.ClassID]; ok {
				d.ClassTitle = t.Title
			}
		}
		all = append(all, d)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].StartsAt.After(all[j].StartsAt) })

	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *memBookingRepo) CountByUser(ctx context.Context, locationID, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, b := range r.s.bookings {
		if b.LocationID == locationID && b.UserID == userID {
			n++
		}
	}
	return n, nil
}

// fakeNotifier records published events and optionally fails every publish.
type fakeNotifier struct {
	mu     sync.Mutex
	events []notify.BookingEvent
	err    error
}

func (f *fakeNotifier) Publish(ctx context.Context, event notify.BookingEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeNotifier) published(eventType string) []notify.BookingEvent {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []notify.BookingEvent
	for _, e := range f.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// testStartsAt is an arbitrary fixed session start well in the future.
func testStartsAt() time.Time {
	return time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC)
}

func memberScope(locationID uuid.UUID) *auth.Scope {
	return &auth.Scope{
		TenantID:       uuid.New(),
		LocationID:     locationID,
		UserID:         uuid.New(),
		Role:           auth.RoleMember,
		EligibleToBook: true,
	}
}

func staffScope(locationID uuid.UUID) *auth.Scope {
	s := memberScope(locationID)
	s.Role = auth.RoleStaff
	return s
}
