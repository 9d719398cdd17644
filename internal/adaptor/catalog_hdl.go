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

type CatalogHandler struct {
	service usecase.CatalogService
	log     *zap.Logger
}

func NewCatalogHandler(service usecase.CatalogService, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		log:     log.With(zap.String("handler", "catalog")),
	}
}

// CreateTemplate handles POST /api/staff/classes
func (h *CatalogHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r)
	if !ok {
		return
	}

	var req request.CreateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	template, err := h.service.CreateTemplate(r.Context(), scope, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "create class template")
		return
	}

	utils.ResponseCreated(w, "success", template)
}

// ListTemplates handles GET /api/classes
func (h *CatalogHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r)
	if !ok {
		return
	}

	templates, err := h.service.ListTemplates(r.Context(), scope)
	if err != nil {
		writeServiceError(w, h.log, err, "list class templates")
		return
	}

	utils.ResponseSuccess(w, "success", templates)
}

// CreateSession handles POST /api/staff/sessions
func (h *CatalogHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r)
	if !ok {
		return
	}

	var req request.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	session, err := h.service.CreateSession(r.Context(), scope, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "create session")
		return
	}

	utils.ResponseCreated(w, "success", session)
}

// CancelSession handles PUT /api/staff/sessions/{id}/cancel
func (h *CatalogHandler) CancelSession(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r)
	if !ok {
		return
	}

	sessionID := chi.URLParam(r, "id")
	if sessionID == "" {
		utils.ResponseBadRequest(w, "Session ID is required", nil)
		return
	}

	session, err := h.service.CancelSession(r.Context(), scope, sessionID)
	if err != nil {
		writeServiceError(w, h.log, err, "cancel session")
		return
	}

	utils.ResponseSuccess(w, "success", session)
}

// ListSessions handles GET /api/sessions?from=...&to=...
func (h *CatalogHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	sessions, err := h.service.ListSessions(r.Context(), scope, query.Get("from"), query.Get("to"))
	if err != nil {
		writeServiceError(w, h.log, err, "list sessions")
		return
	}

	utils.ResponseSuccess(w, "success", sessions)
}

// BrowseSchedule handles GET /api/schedule?from=...&to=...
func (h *CatalogHandler) BrowseSchedule(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	items, err := h.service.BrowseSchedule(r.Context(), scope, query.Get("from"), query.Get("to"))
	if err != nil {
		writeServiceError(w, h.log, err, "browse schedule")
		return
	}

	utils.ResponseSuccess(w, "success", items)
}
