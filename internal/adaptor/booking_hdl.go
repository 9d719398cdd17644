package adaptor

import (
	"net/http"

	"gym-booking/internal/dto/request"
	"gym-booking/internal/usecase"
	"gym-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// BookSession handles POST /api/sessions/{id}/book
func (h *BookingHandler) BookSession(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r)
	if !ok {
		return
	}

	sessionID := chi.URLParam(r, "id")
	if sessionID == "" {
		utils.ResponseBadRequest(w, "Session ID is required", nil)
		return
	}

	booking, err := h.service.BookSession(r.Context(), scope, sessionID)
	if err != nil {
		writeServiceError(w, h.log, err, "book session")
		return
	}

	utils.ResponseCreated(w, "success", booking)
}

// CancelMyBooking handles DELETE /api/sessions/{id}/booking
func (h *BookingHandler) CancelMyBooking(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r)
	if !ok {
		return
	}

	sessionID := chi.URLParam(r, "id")
	if sessionID == "" {
		utils.ResponseBadRequest(w, "Session ID is required", nil)
		return
	}

	booking, err := h.service.CancelMyBooking(r.Context(), scope, sessionID)
	if err != nil {
		writeServiceError(w, h.log, err, "cancel booking")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// ListMyBookings handles GET /api/my/bookings
func (h *BookingHandler) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	bookings, err := h.service.ListMyBookings(r.Context(), scope, req)
	if err != nil {
		writeServiceError(w, h.log, err, "list my bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}
