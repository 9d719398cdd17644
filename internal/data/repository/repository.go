package repository

import (
	"gym-booking/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	ClassTemplate ClassTemplateRepository
	ClassSession  ClassSessionRepository
	Booking       BookingRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		ClassTemplate: NewClassTemplateRepository(db, log),
		ClassSession:  NewClassSessionRepository(db, log),
		Booking:       NewBookingRepository(db, log),
	}
}
