package entity

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionStatusScheduled SessionStatus = "scheduled"
	SessionStatusCanceled  SessionStatus = "canceled"
)

// ClassSession is one scheduled occurrence of a class template.
// TemplateCapacity is denormalized into every read (joined from the
// template) so effective capacity can always be computed from the row alone.
type ClassSession struct {
	Base
	ClassID          uuid.UUID     `db:"class_id"`
	LocationID       uuid.UUID     `db:"location_id"`
	StartsAt         time.Time     `db:"starts_at"`
	EndsAt           time.Time     `db:"ends_at"`
	CapacityOverride *int          `db:"capacity_override"`
	Status           SessionStatus `db:"status"`
	TemplateCapacity int           `db:"template_capacity"`
}

// EffectiveCapacity is the session override when present, else the template
// capacity. Every occupancy check and every API response must go through
// this method; computing it anywhere else invites drift between the booking
// transaction and the views.
func (s *ClassSession) EffectiveCapacity() int {
	if s.CapacityOverride != nil && *s.CapacityOverride > 0 {
		return *s.CapacityOverride
	}
	return s.TemplateCapacity
}

func (s *ClassSession) IsBookable() bool {
	return s.Status == SessionStatusScheduled
}
