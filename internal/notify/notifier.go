package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types published after successful state changes.
const (
	EventBookingConfirmed = "booking_confirmed"
	EventBookingCanceled  = "booking_canceled"
	EventSessionCanceled  = "session_canceled"
)

// BookingEvent is the payload handed to the notification pipeline. Delivery
// is fire-and-forget: the booking's committed state never depends on it.
type BookingEvent struct {
	Type       string    `json:"type"`
	SessionID  string    `json:"session_id"`
	UserID     string    `json:"user_id,omitempty"`
	LocationID string    `json:"location_id"`
	StartsAt   time.Time `json:"starts_at"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Notifier interface {
	Publish(ctx context.Context, event BookingEvent) error
}

// Nop is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(ctx context.Context, event BookingEvent) error { return nil }

// NewBookingEvent fills the common fields.
func NewBookingEvent(eventType string, sessionID, locationID uuid.UUID, userID uuid.UUID, startsAt time.Time) BookingEvent {
	e := BookingEvent{
		Type:       eventType,
		SessionID:  sessionID.String(),
		LocationID: locationID.String(),
		StartsAt:   startsAt,
		OccurredAt: time.Now(),
	}
	if userID != uuid.Nil {
		e.UserID = userID.String()
	}
	return e
}
