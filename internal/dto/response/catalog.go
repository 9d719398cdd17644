package response

import (
	"time"

	"gym-booking/internal/data/entity"
	"gym-booking/internal/data/repository"
)

type TemplateResponse struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Capacity int    `json:"capacity"`
	Active   bool   `json:"active"`
}

type SessionResponse struct {
	ID        string    `json:"id"`
	ClassID   string    `json:"class_id"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	Capacity  int       `json:"capacity"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ScheduleItemResponse is the browse view: session plus live availability
// and whether the requesting user already holds a seat.
type ScheduleItemResponse struct {
	SessionResponse
	Title     string `json:"title"`
	Occupancy int    `json:"occupancy"`
	SpotsLeft int    `json:"spots_left"`
	Booked    bool   `json:"booked"`
}

func TemplateToResponse(t *entity.ClassTemplate) TemplateResponse {
	return TemplateResponse{
		ID:       t.ID.String(),
		Title:    t.Title,
		Capacity: t.Capacity,
		Active:   t.Active,
	}
}

func SessionToResponse(s *entity.ClassSession) SessionResponse {
	return SessionResponse{
		ID:        s.ID.String(),
		ClassID:   s.ClassID.String(),
		StartsAt:  s.StartsAt,
		EndsAt:    s.EndsAt,
		Capacity:  s.EffectiveCapacity(),
		Status:    string(s.Status),
		CreatedAt: s.CreatedAt,
	}
}

func OverviewToResponse(o *repository.SessionOverview) ScheduleItemResponse {
	capacity := o.EffectiveCapacity()
	spotsLeft := capacity - o.Occupancy
	if spotsLeft < 0 {
		spotsLeft = 0
	}

	return ScheduleItemResponse{
		SessionResponse: SessionToResponse(&o.ClassSession),
		Title:           o.Title,
		Occupancy:       o.Occupancy,
		SpotsLeft:       spotsLeft,
		Booked:          o.BookedByCaller,
	}
}
