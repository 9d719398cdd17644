package usecase

import (
	"context"
	"testing"
	"time"

	"gym-booking/internal/data/entity"
	"gym-booking/internal/dto/request"
	"gym-booking/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRosterFixture(t *testing.T) (*memStore, RosterService) {
	t.Helper()
	store := newMemStore()
	svc := NewRosterService(store.repo(), zap.NewNop())
	return store, svc
}

func TestRoster_ListsActiveAttendeesInBookingOrder(t *testing.T) {
	store, svc := newRosterFixture(t)
	scope := staffScope(uuid.New())
	template := store.addTemplate(scope.LocationID, "Spin", 3, true)
	session := store.addSession(template, testStartsAt(), nil, entity.SessionStatusScheduled)

	first := store.addBooking(session, uuid.New(), entity.BookingStatusBooked)
	second := store.addBooking(session, uuid.New(), entity.BookingStatusCheckedIn)
	store.addBooking(session, uuid.New(), entity.BookingStatusCanceled)

	// Booking order must survive into the roster.
	store.mu.Lock()
	store.bookings[first.ID].BookedAt = testStartsAt().Add(-2 * time.Hour)
	store.bookings[second.ID].BookedAt = testStartsAt().Add(-1 * time.Hour)
	store.mu.Unlock()

	roster, err := svc.Roster(context.Background(), scope, session.ID.String())
	require.NoError(t, err)
	assert.Equal(t, session.ID.String(), roster.SessionID)
	assert.Equal(t, 3, roster.Capacity)
	assert.Equal(t, 2, roster.Occupancy)
	require.Len(t, roster.Attendees, 2)
	assert.Equal(t, first.UserID.String(), roster.Attendees[0].UserID)
	assert.Equal(t, second.UserID.String(), roster.Attendees[1].UserID)
	assert.Equal(t, string(entity.BookingStatusCheckedIn), roster.Attendees[1].Status)
}

func TestRoster_CanceledSessionStillReadable(t *testing.T) {
	store, svc := newRosterFixture(t)
	scope := staffScope(uuid.New())
	template := store.addTemplate(scope.LocationID, "Spin", 3, true)
	session := store.addSession(template, testStartsAt(), nil, entity.SessionStatusCanceled)
	store.addBooking(session, uuid.New(), entity.BookingStatusBooked)

	roster, err := svc.Roster(context.Background(), scope, session.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 1, roster.Occupancy)
}

func TestRoster_OtherLocationNotFound(t *testing.T) {
	store, svc := newRosterFixture(t)
	template := store.addTemplate(uuid.New(), "Spin", 3, true)
	session := store.addSession(template, testStartsAt(), nil, entity.SessionStatusScheduled)

	_, err := svc.Roster(context.Background(), staffScope(uuid.New()), session.ID.String())
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}

func TestCheckIn_TransitionsBookedAttendee(t *testing.T) {
	store, svc := newRosterFixture(t)
	scope := staffScope(uuid.New())
	template := store.addTemplate(scope.LocationID, "Spin", 3, true)
	session := store.addSession(template, testStartsAt(), nil, entity.SessionStatusScheduled)
	attendee := store.addBooking(session, uuid.New(), entity.BookingStatusBooked)

	checked, err := svc.CheckIn(context.Background(), scope, session.ID.String(),
		&request.CheckInRequest{UserID: attendee.UserID.String()})
	require.NoError(t, err)
	assert.Equal(t, string(entity.BookingStatusCheckedIn), checked.Status)

	stored := store.booking(attendee.ID)
	assert.Equal(t, entity.BookingStatusCheckedIn, stored.Status)
}

func TestCheckIn_RepeatIsNoOpSuccess(t *testing.T) {
	store, svc := newRosterFixture(t)
	scope := staffScope(uuid.New())
	template := store.addTemplate(scope.LocationID, "Spin", 3, true)
	session := store.addSession(template, testStartsAt(), nil, entity.SessionStatusScheduled)
	attendee := store.addBooking(session, uuid.New(), entity.BookingStatusCheckedIn)

	checked, err := svc.CheckIn(context.Background(), scope, session.ID.String(),
		&request.CheckInRequest{UserID: attendee.UserID.String()})
	require.NoError(t, err)
	assert.Equal(t, string(entity.BookingStatusCheckedIn), checked.Status)
}

func TestCheckIn_NoActiveBookingNotFound(t *testing.T) {
	store, svc := newRosterFixture(t)
	scope := staffScope(uuid.New())
	template := store.addTemplate(scope.LocationID, "Spin", 3, true)
	session := store.addSession(template, testStartsAt(), nil, entity.SessionStatusScheduled)
	walkIn := uuid.New()

	_, err := svc.CheckIn(context.Background(), scope, session.ID.String(),
		&request.CheckInRequest{UserID: walkIn.String()})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}

func TestCheckIn_CanceledBookingNotFound(t *testing.T) {
	store, svc := newRosterFixture(t)
	scope := staffScope(uuid.New())
	template := store.addTemplate(scope.LocationID, "Spin", 3, true)
	session := store.addSession(template, testStartsAt(), nil, entity.SessionStatusScheduled)
	attendee := store.addBooking(session, uuid.New(), entity.BookingStatusCanceled)

	_, err := svc.CheckIn(context.Background(), scope, session.ID.String(),
		&request.CheckInRequest{UserID: attendee.UserID.String()})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}

func TestCheckIn_MalformedUserIDValidation(t *testing.T) {
	store, svc := newRosterFixture(t)
	scope := staffScope(uuid.New())
	template := store.addTemplate(scope.LocationID, "Spin", 3, true)
	session := store.addSession(template, testStartsAt(), nil, entity.SessionStatusScheduled)

	_, err := svc.CheckIn(context.Background(), scope, session.ID.String(),
		&request.CheckInRequest{UserID: "not-a-uuid"})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
}
