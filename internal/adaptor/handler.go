package adaptor

import (
	"errors"
	"net/http"

	"gym-booking/internal/usecase"
	"gym-booking/pkg/apperr"
	"gym-booking/pkg/auth"
	"gym-booking/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Catalog *CatalogHandler
	Booking *BookingHandler
	Roster  *RosterHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Catalog: NewCatalogHandler(service.Catalog, log),
		Booking: NewBookingHandler(service.Booking, log),
		Roster:  NewRosterHandler(service.Roster, log),
	}
}

// writeServiceError maps tagged service errors to their HTTP responses.
// Anything untagged is an internal failure and never leaks its message.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		log.Warn("Request rejected",
			zap.String("operation", operation),
			zap.String("code", string(appErr.Code)),
			zap.Error(err),
		)
		utils.ResponseAppError(w, appErr)
		return
	}

	log.Error("Failed to "+operation,
		zap.Error(err),
		zap.String("operation", operation),
	)
	utils.ResponseInternalError(w, "Internal server error")
}

// requestScope pulls the caller scope set by the access middleware.
func requestScope(w http.ResponseWriter, r *http.Request) (*auth.Scope, bool) {
	scope, ok := utils.GetScopeFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Missing access scope")
		return nil, false
	}
	return scope, true
}
