package usecase

import (
	"context"
	"fmt"
	"time"

	"gym-booking/internal/data/entity"
	"gym-booking/internal/data/repository"
	"gym-booking/internal/dto/request"
	"gym-booking/internal/dto/response"
	"gym-booking/internal/notify"
	"gym-booking/pkg/apperr"
	"gym-booking/pkg/auth"
	"gym-booking/pkg/cache"
	"gym-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CatalogService interface {
	CreateTemplate(ctx context.Context, scope *auth.Scope, req *request.CreateTemplateRequest) (*response.TemplateResponse, error)
	ListTemplates(ctx context.Context, scope *auth.Scope) ([]response.TemplateResponse, error)

	CreateSession(ctx context.Context, scope *auth.Scope, req *request.CreateSessionRequest) (*response.SessionResponse, error)
	CancelSession(ctx context.Context, scope *auth.Scope, sessionID string) (*response.SessionResponse, error)
	ListSessions(ctx context.Context, scope *auth.Scope, from, to string) ([]response.SessionResponse, error)
	BrowseSchedule(ctx context.Context, scope *auth.Scope, from, to string) ([]response.ScheduleItemResponse, error)
}

type catalogService struct {
	repo      *repository.Repository
	listCache *cache.Cache
	notifier  notify.Notifier
	log       *zap.Logger
}

func NewCatalogService(repo *repository.Repository, listCache *cache.Cache, notifier notify.Notifier, log *zap.Logger) CatalogService {
	return &catalogService{
		repo:      repo,
		listCache: listCache,
		notifier:  notifier,
		log:       log.With(zap.String("service", "catalog")),
	}
}

func (s *catalogService) CreateTemplate(ctx context.Context, scope *auth.Scope, req *request.CreateTemplateRequest) (*response.TemplateResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create template validation failed", zap.Any("errors", errs))
		return nil, apperr.Validation(utils.FormatValidationErrors(errs))
	}

	now := time.Now()
	template := &entity.ClassTemplate{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		LocationID: scope.LocationID,
		Title:      req.Title,
		Capacity:   req.Capacity,
		Active:     true,
	}

	if err := s.repo.ClassTemplate.Create(ctx, template); err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}

	s.log.Info("Class template created",
		zap.String("class_id", template.ID.String()),
		zap.String("location_id", scope.LocationID.String()),
		zap.String("title", template.Title),
		zap.Int("capacity", template.Capacity),
	)

	resp := response.TemplateToResponse(template)
	return &resp, nil
}

func (s *catalogService) ListTemplates(ctx context.Context, scope *auth.Scope) ([]response.TemplateResponse, error) {
	templates, err := s.repo.ClassTemplate.FindByLocation(ctx, scope.LocationID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	out := make([]response.TemplateResponse, 0, len(templates))
	for _, t := range templates {
		out = append(out, response.TemplateToResponse(t))
	}
	return out, nil
}

func (s *catalogService) CreateSession(ctx context.Context, scope *auth.Scope, req *request.CreateSessionRequest) (*response.SessionResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create session validation failed", zap.Any("errors", errs))
		return nil, apperr.Validation(utils.FormatValidationErrors(errs))
	}

	classID, err := uuid.Parse(req.ClassID)
	if err != nil {
		return nil, apperr.Validation("invalid class ID format")
	}

	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		return nil, apperr.Validation("starts_at must be an RFC3339 timestamp")
	}
	endsAt, err := time.Parse(time.RFC3339, req.EndsAt)
	if err != nil {
		return nil, apperr.Validation("ends_at must be an RFC3339 timestamp")
	}
	if !endsAt.After(startsAt) {
		return nil, apperr.Validation("ends_at must be after starts_at")
	}

	// Location scoping doubles as the existence check: a template in another
	// tenant's location is reported as missing, never as forbidden.
	template, err := s.repo.ClassTemplate.FindByID(ctx, classID, scope.LocationID)
	if err != nil {
		return nil, fmt.Errorf("find class template: %w", err)
	}
	if template == nil || !template.Active {
		return nil, apperr.NotFound(fmt.Sprintf("class %s not found", req.ClassID))
	}

	now := time.Now()
	session := &entity.ClassSession{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ClassID:          classID,
		LocationID:       scope.LocationID,
		StartsAt:         startsAt,
		EndsAt:           endsAt,
		CapacityOverride: req.CapacityOverride,
		Status:           entity.SessionStatusScheduled,
		TemplateCapacity: template.Capacity,
	}

	if err := s.repo.ClassSession.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.listCache.Invalidate(ctx, sessionListPrefix(scope.LocationID))

	s.log.Info("Class session created",
		zap.String("session_id", session.ID.String()),
		zap.String("class_id", classID.String()),
		zap.Time("starts_at", startsAt),
		zap.Int("capacity", session.EffectiveCapacity()),
	)

	resp := response.SessionToResponse(session)
	return &resp, nil
}

func (s *catalogService) CancelSession(ctx context.Context, scope *auth.Scope, sessionID string) (*response.SessionResponse, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, apperr.Validation("invalid session ID format")
	}

	session, err := s.repo.ClassSession.Cancel(ctx, id, scope.LocationID)
	if err != nil {
		return nil, fmt.Errorf("cancel session: %w", err)
	}
	if session == nil {
		return nil, apperr.NotFound(fmt.Sprintf("session %s not found", sessionID))
	}

	s.listCache.Invalidate(ctx, sessionListPrefix(scope.LocationID))

	// Attendee notification is owned downstream; publish failure never
	// affects the cancellation.
	event := notify.NewBookingEvent(notify.EventSessionCanceled, session.ID, session.LocationID, uuid.Nil, session.StartsAt)
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.log.Warn("Failed to publish session_canceled event",
			zap.Error(err),
			zap.String("session_id", session.ID.String()),
		)
	}

	s.log.Info("Class session canceled",
		zap.String("session_id", session.ID.String()),
		zap.String("location_id", scope.LocationID.String()),
	)

	resp := response.SessionToResponse(session)
	return &resp, nil
}

func (s *catalogService) ListSessions(ctx context.Context, scope *auth.Scope, from, to string) ([]response.SessionResponse, error) {
	fromT, toT, err := parseRange(from, to)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s%d:%d", sessionListPrefix(scope.LocationID), fromT.Unix(), toT.Unix())
	var cached []response.SessionResponse
	if s.listCache.Get(ctx, key, &cached) {
		return cached, nil
	}

	sessions, err := s.repo.ClassSession.FindByRange(ctx, scope.LocationID, fromT, toT)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	out := make([]response.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, response.SessionToResponse(session))
	}

	s.listCache.Set(ctx, key, out)
	return out, nil
}

func (s *catalogService) BrowseSchedule(ctx context.Context, scope *auth.Scope, from, to string) ([]response.ScheduleItemResponse, error) {
	fromT, toT, err := parseRange(from, to)
	if err != nil {
		return nil, err
	}

	// Never cached: occupancy and the caller's booked flag must be live.
	overviews, err := s.repo.ClassSession.BrowseRange(ctx, scope.LocationID, scope.UserID, fromT, toT)
	if err != nil {
		return nil, fmt.Errorf("browse schedule: %w", err)
	}

	out := make([]response.ScheduleItemResponse, 0, len(overviews))
	for _, o := range overviews {
		out = append(out, response.OverviewToResponse(o))
	}
	return out, nil
}

func parseRange(from, to string) (time.Time, time.Time, error) {
	if from == "" || to == "" {
		return time.Time{}, time.Time{}, apperr.Validation("from and to are required")
	}

	fromT, err := time.Parse(time.RFC3339, from)
	if err != nil {
		return time.Time{}, time.Time{}, apperr.Validation("from must be an RFC3339 timestamp")
	}
	toT, err := time.Parse(time.RFC3339, to)
	if err != nil {
		return time.Time{}, time.Time{}, apperr.Validation("to must be an RFC3339 timestamp")
	}
	if !fromT.Before(toT) {
		return time.Time{}, time.Time{}, apperr.Validation("from must be before to")
	}

	return fromT, toT, nil
}

func sessionListPrefix(locationID uuid.UUID) string {
	return fmt.Sprintf("sessions:%s:", locationID.String())
}
