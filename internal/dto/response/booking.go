package response

import (
	"time"

	"gym-booking/internal/data/entity"
	"gym-booking/internal/data/repository"
)

type BookingResponse struct {
	ID         string     `json:"id"`
	SessionID  string     `json:"session_id"`
	UserID     string     `json:"user_id"`
	Status     string     `json:"status"`
	BookedAt   time.Time  `json:"booked_at"`
	CanceledAt *time.Time `json:"canceled_at,omitempty"`
}

type BookingHistoryResponse struct {
	BookingResponse
	ClassTitle string    `json:"class_title"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
}

type RosterAttendeeResponse struct {
	UserID   string    `json:"user_id"`
	Status   string    `json:"status"`
	BookedAt time.Time `json:"booked_at"`
}

type RosterResponse struct {
	SessionID string                   `json:"session_id"`
	Capacity  int                      `json:"capacity"`
	Occupancy int                      `json:"occupancy"`
	Attendees []RosterAttendeeResponse `json:"attendees"`
}

func BookingToResponse(b *entity.Booking) BookingResponse {
	return BookingResponse{
		ID:         b.ID.String(),
		SessionID:  b.SessionID.String(),
		UserID:     b.UserID.String(),
		Status:     string(b.Status),
		BookedAt:   b.BookedAt,
		CanceledAt: b.CanceledAt,
	}
}

func BookingDetailToResponse(d *repository.BookingDetail) BookingHistoryResponse {
	return BookingHistoryResponse{
		BookingResponse: BookingToResponse(&d.Booking),
		ClassTitle:      d.ClassTitle,
		StartsAt:        d.StartsAt,
		EndsAt:          d.EndsAt,
	}
}
