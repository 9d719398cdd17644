package usecase

import (
	"gym-booking/internal/data/repository"
	"gym-booking/internal/notify"
	"gym-booking/pkg/cache"

	"go.uber.org/zap"
)

type Service struct {
	Catalog CatalogService
	Booking BookingService
	Roster  RosterService
}

func NewService(repo *repository.Repository, listCache *cache.Cache, notifier notify.Notifier, log *zap.Logger) *Service {
	return &Service{
		Catalog: NewCatalogService(repo, listCache, notifier, log),
		Booking: NewBookingService(repo, notifier, log),
		Roster:  NewRosterService(repo, log),
	}
}
