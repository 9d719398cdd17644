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

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	// BookSession admits the caller into a session or rejects with
	// SESSION_FULL. Idempotent: re-booking an already held seat returns the
	// existing booking unchanged.
	BookSession(ctx context.Context, scope *auth.Scope, sessionID string) (*response.BookingResponse, error)
	CancelMyBooking(ctx context.Context, scope *auth.Scope, sessionID string) (*response.BookingResponse, error)
	ListMyBookings(ctx context.Context, scope *auth.Scope, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingHistoryResponse], error)
}

type bookingService struct {
	repo     *repository.Repository
	notifier notify.Notifier
	log      *zap.Logger
}

func NewBookingService(repo *repository.Repository, notifier notify.Notifier, log *zap.Logger) BookingService {
	return &bookingService{
		repo:     repo,
		notifier: notifier,
		log:      log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) BookSession(ctx context.Context, scope *auth.Scope, sessionID string) (*response.BookingResponse, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, apperr.Validation("invalid session ID format")
	}

	var (
		booking  *entity.Booking
		admitted bool
		startsAt time.Time
	)

	// The whole check-then-act sequence runs on one serializable
	// transaction: the occupancy count and the write commit together or not
	// at all, and the store aborts whichever concurrent admission would
	// break serializability.
	attempt := func() error {
		booking, admitted = nil, false
		return s.repo.Booking.InAdmissionTx(ctx, func(q repository.AdmissionQueries) error {
			session, err := q.SessionForAdmission(ctx, id, scope.LocationID)
			if err != nil {
				return err
			}
			if session == nil || !session.IsBookable() {
				return apperr.NotFound(fmt.Sprintf("session %s not found", sessionID))
			}
			startsAt = session.StartsAt

			existing, err := q.BookingForPair(ctx, id, scope.UserID)
			if err != nil {
				return err
			}
			if existing != nil && existing.Active() {
				// Duplicate request; success, nothing to write.
				booking = existing
				return nil
			}

			occupancy, err := q.CountActive(ctx, id)
			if err != nil {
				return err
			}
			if occupancy >= session.EffectiveCapacity() {
				return apperr.SessionFull("")
			}

			now := time.Now()
			if existing != nil {
				// Canceled row for this pair: transition it back instead of
				// inserting a duplicate.
				rebooked, err := q.Rebook(ctx, existing.ID, now)
				if err != nil {
					return err
				}
				booking = rebooked
			} else {
				fresh := &entity.Booking{
					Base: entity.Base{
						ID:        uuid.New(),
						CreatedAt: now,
						UpdatedAt: now,
					},
					SessionID:  id,
					UserID:     scope.UserID,
					LocationID: session.LocationID,
					Status:     entity.BookingStatusBooked,
					BookedAt:   now,
				}
				if err := q.InsertBooked(ctx, fresh); err != nil {
					return err
				}
				booking = fresh
			}

			admitted = true
			return nil
		})
	}

	err = attempt()
	if apperr.IsCode(err, apperr.CodeConflictRetry) {
		// One transparent retry; a second conflict is surfaced to the
		// caller as a transient failure.
		s.log.Info("Admission serialization conflict, retrying",
			zap.String("session_id", sessionID),
			zap.String("user_id", scope.UserID.String()),
		)
		err = attempt()
	}
	if err != nil {
		if apperr.IsCode(err, apperr.CodeSessionFull) {
			s.log.Info("Session full",
				zap.String("session_id", sessionID),
				zap.String("user_id", scope.UserID.String()),
			)
		}
		return nil, err
	}

	if admitted {
		event := notify.NewBookingEvent(notify.EventBookingConfirmed, id, booking.LocationID, scope.UserID, startsAt)
		if err := s.notifier.Publish(ctx, event); err != nil {
			s.log.Warn("Failed to publish booking_confirmed event",
				zap.Error(err),
				zap.String("session_id", sessionID),
			)
		}

		s.log.Info("Booking admitted",
			zap.String("booking_id", booking.ID.String()),
			zap.String("session_id", sessionID),
			zap.String("user_id", scope.UserID.String()),
		)
	}

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) CancelMyBooking(ctx context.Context, scope *auth.Scope, sessionID string) (*response.BookingResponse, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, apperr.Validation("invalid session ID format")
	}

	booking, err := s.repo.Booking.FindByPair(ctx, id, scope.UserID, scope.LocationID)
	if err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil || booking.Status == entity.BookingStatusCanceled {
		return nil, apperr.NotFound(fmt.Sprintf("booking for session %s not found", sessionID))
	}
	if booking.Status == entity.BookingStatusCheckedIn {
		return nil, apperr.Validation("booking is already checked in")
	}

	canceled, err := s.repo.Booking.CancelBooked(ctx, booking.ID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("cancel booking: %w", err)
	}
	if canceled == nil {
		// Lost a race with a concurrent check-in or cancel.
		return nil, apperr.NotFound(fmt.Sprintf("booking for session %s not found", sessionID))
	}

	event := notify.NewBookingEvent(notify.EventBookingCanceled, id, canceled.LocationID, scope.UserID, time.Time{})
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.log.Warn("Failed to publish booking_canceled event",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
	}

	s.log.Info("Booking canceled",
		zap.String("booking_id", canceled.ID.String()),
		zap.String("session_id", sessionID),
		zap.String("user_id", scope.UserID.String()),
	)

	resp := response.BookingToResponse(canceled)
	return &resp, nil
}

func (s *bookingService) ListMyBookings(ctx context.Context, scope *auth.Scope, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingHistoryResponse], error) {
	limit := req.Limit()
	offset := req.Offset()

	details, err := s.repo.Booking.FindByUser(ctx, scope.LocationID, scope.UserID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list my bookings: %w", err)
	}

	total, err := s.repo.Booking.CountByUser(ctx, scope.LocationID, scope.UserID)
	if err != nil {
		return nil, fmt.Errorf("count my bookings: %w", err)
	}

	out := make([]response.BookingHistoryResponse, 0, len(details))
	for _, d := range details {
		out = append(out, response.BookingDetailToResponse(d))
	}

	return response.NewPaginatedResponse(out, req.Page, req.PerPage, total), nil
}
