package wire

import (
	"gym-booking/internal/adaptor"
	"gym-booking/pkg/middleware"
	"gym-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// Booking a seat requires an eligible membership; reading and releasing
	// one's own booking does not.
	r.Group(func(r chi.Router) {
		r.Use(middleware.AccessScope(config.Access.TokenSecret, log))
		r.Use(middleware.Eligible(log))

		r.Post("/api/sessions/{id}/book", bookingHandler.BookSession)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.AccessScope(config.Access.TokenSecret, log))

		r.Delete("/api/sessions/{id}/booking", bookingHandler.CancelMyBooking)
		r.Get("/api/my/bookings", bookingHandler.ListMyBookings)
	})
}
