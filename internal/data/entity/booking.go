package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusBooked    BookingStatus = "booked"
	BookingStatusCheckedIn BookingStatus = "checked_in"
	BookingStatusCanceled  BookingStatus = "canceled"
)

// Booking is the ledger row for one (session, user) pair. The pair is unique
// in storage; re-booking after a cancellation transitions the same row back
// to booked instead of inserting a duplicate. LocationID is denormalized
// from the session at write time for tenant-scoped queries.
type Booking struct {
	Base
	SessionID  uuid.UUID     `db:"session_id"`
	UserID     uuid.UUID     `db:"user_id"`
	LocationID uuid.UUID     `db:"location_id"`
	Status     BookingStatus `db:"status"`
	BookedAt   time.Time     `db:"booked_at"`
	CanceledAt *time.Time    `db:"canceled_at"`
}

// Active reports whether the booking holds a seat (booked or checked in).
func (b *Booking) Active() bool {
	return b.Status == BookingStatusBooked || b.Status == BookingStatusCheckedIn
}
