package usecase

import (
	"context"
	"fmt"

	"gym-booking/internal/data/entity"
	"gym-booking/internal/data/repository"
	"gym-booking/internal/dto/request"
	"gym-booking/internal/dto/response"
	"gym-booking/pkg/apperr"
	"gym-booking/pkg/auth"
	"gym-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RosterService interface {
	Roster(ctx context.Context, scope *auth.Scope, sessionID string) (*response.RosterResponse, error)
	// CheckIn marks an attendee present. The transition is one-way; checking
	// in an already checked-in attendee is a no-op success.
	CheckIn(ctx context.Context, scope *auth.Scope, sessionID string, req *request.CheckInRequest) (*response.BookingResponse, error)
}

type rosterService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewRosterService(repo *repository.Repository, log *zap.Logger) RosterService {
	return &rosterService{
		repo: repo,
		log:  log.With(zap.String("service", "roster")),
	}
}

func (s *rosterService) Roster(ctx context.Context, scope *auth.Scope, sessionID string) (*response.RosterResponse, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, apperr.Validation("invalid session ID format")
	}

	// Canceled sessions keep a readable roster so staff can still see who
	// held a seat.
	session, err := s.repo.ClassSession.FindByID(ctx, id, scope.LocationID)
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	if session == nil {
		return nil, apperr.NotFound(fmt.Sprintf("session %s not found", sessionID))
	}

	bookings, err := s.repo.Booking.FindActiveBySession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}

	attendees := make([]response.RosterAttendeeResponse, 0, len(bookings))
	for _, b := range bookings {
		attendees = append(attendees, response.RosterAttendeeResponse{
			UserID:   b.UserID.String(),
			Status:   string(b.Status),
			BookedAt: b.BookedAt,
		})
	}

	return &response.RosterResponse{
		SessionID: session.ID.String(),
		Capacity:  session.EffectiveCapacity(),
		Occupancy: len(attendees),
		Attendees: attendees,
	}, nil
}

func (s *rosterService) CheckIn(ctx context.Context, scope *auth.Scope, sessionID string, req *request.CheckInRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Check-in validation failed", zap.Any("errors", errs))
		return nil, apperr.Validation(utils.FormatValidationErrors(errs))
	}

	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, apperr.Validation("invalid session ID format")
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, apperr.Validation("invalid user ID format")
	}

	booking, err := s.repo.Booking.FindByPair(ctx, id, userID, scope.LocationID)
	if err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil || booking.Status == entity.BookingStatusCanceled {
		return nil, apperr.NotFound(fmt.Sprintf("booking for session %s not found", sessionID))
	}

	if booking.Status == entity.BookingStatusCheckedIn {
		resp := response.BookingToResponse(booking)
		return &resp, nil
	}

	checked, err := s.repo.Booking.SetCheckedIn(ctx, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("check in booking: %w", err)
	}
	if checked == nil {
		// The booking was canceled between the read and the update.
		return nil, apperr.NotFound(fmt.Sprintf("booking for session %s not found", sessionID))
	}

	s.log.Info("Attendee checked in",
		zap.String("booking_id", checked.ID.String()),
		zap.String("session_id", sessionID),
		zap.String("user_id", req.UserID),
	)

	resp := response.BookingToResponse(checked)
	return &resp, nil
}
