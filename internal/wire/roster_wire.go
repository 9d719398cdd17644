package wire

import (
	"gym-booking/internal/adaptor"
	"gym-booking/pkg/middleware"
	"gym-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireRoster(
	r chi.Router,
	rosterHandler *adaptor.RosterHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.AccessScope(config.Access.TokenSecret, log))
		r.Use(middleware.Staff(log))

		r.Get("/api/staff/sessions/{id}/roster", rosterHandler.Roster)
		r.Post("/api/staff/sessions/{id}/checkin", rosterHandler.CheckIn)
	})
}
