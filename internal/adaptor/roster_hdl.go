package adaptor

import (
	"encoding/json"
	"net/http"

	"gym-booking/internal/dto/request"
	"gym-booking/internal/usecase"
	"gym-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type RosterHandler struct {
	service usecase.RosterService
	log     *zap.Logger
}

func NewRosterHandler(service usecase.RosterService, log *zap.Logger) *RosterHandler {
	return &RosterHandler{
		service: service,
		log:     log.With(zap.String("handler", "roster")),
	}
}

// Roster handles GET /api/staff/sessions/{id}/roster
func (h *RosterHandler) Roster(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r)
	if !ok {
		return
	}

	sessionID := chi.URLParam(r, "id")
	if sessionID == "" {
		utils.ResponseBadRequest(w, "Session ID is required", nil)
		return
	}

	roster, err := h.service.Roster(r.Context(), scope, sessionID)
	if err != nil {
		writeServiceError(w, h.log, err, "get roster")
		return
	}

	utils.ResponseSuccess(w, "success", roster)
}

// CheckIn handles POST /api/staff/sessions/{id}/checkin
func (h *RosterHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r)
	if !ok {
		return
	}

	sessionID := chi.URLParam(r, "id")
	if sessionID == "" {
		utils.ResponseBadRequest(w, "Session ID is required", nil)
		return
	}

	var req request.CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	booking, err := h.service.CheckIn(r.Context(), scope, sessionID, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "check in attendee")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}
