package entity

import (
	"github.com/google/uuid"
)

// ClassTemplate is a bookable class definition owned by a location. Capacity
// is the default seat count for sessions scheduled from it.
type ClassTemplate struct {
	Base
	LocationID uuid.UUID `db:"location_id"`
	Title      string    `db:"title"`
	Capacity   int       `db:"capacity"`
	Active     bool      `db:"active"`
}
