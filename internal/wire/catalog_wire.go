package wire

import (
	"gym-booking/internal/adaptor"
	"gym-booking/pkg/middleware"
	"gym-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireCatalog(
	r chi.Router,
	catalogHandler *adaptor.CatalogHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== MEMBER ROUTES ====================
	// Any authenticated caller can read the catalog for their location.
	r.Group(func(r chi.Router) {
		r.Use(middleware.AccessScope(config.Access.TokenSecret, log))

		r.Get("/api/classes", catalogHandler.ListTemplates)
		r.Get("/api/sessions", catalogHandler.ListSessions)   // GET /api/sessions?from=...&to=...
		r.Get("/api/schedule", catalogHandler.BrowseSchedule) // GET /api/schedule?from=...&to=...
	})

	// ==================== STAFF ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AccessScope(config.Access.TokenSecret, log))
		r.Use(middleware.Staff(log))

		r.Post("/api/staff/classes", catalogHandler.CreateTemplate)
		r.Post("/api/staff/sessions", catalogHandler.CreateSession)
		r.Put("/api/staff/sessions/{id}/cancel", catalogHandler.CancelSession)
	})
}
