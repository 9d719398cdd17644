// Package repository holds the hand-written SQL layer.
//
// The bookings table carries a unique index on (session_id, user_id); that
// constraint is what turns re-booking into an in-place transition instead of
// a duplicate insert, and what makes a lost insert race surface as SQLSTATE
// 23505 rather than a second row.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gym-booking/internal/data/entity"
	"gym-booking/pkg/apperr"
	"gym-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const bookingColumns = `
	id, session_id, user_id, location_id, status, booked_at, canceled_at, created_at, updated_at
`

// BookingDetail is a ledger row joined with its session for history views.
type BookingDetail struct {
	entity.Booking
	ClassTitle string
	StartsAt   time.Time
	EndsAt     time.Time
}

// AdmissionQueries is the read/write surface available inside one admission
// transaction. All statements run on the same serializable transaction, so
// the occupancy count and the subsequent write form a single atomic unit.
type AdmissionQueries interface {
	SessionForAdmission(ctx context.Context, sessionID, locationID uuid.UUID) (*entity.ClassSession, error)
	BookingForPair(ctx context.Context, sessionID, userID uuid.UUID) (*entity.Booking, error)
	CountActive(ctx context.Context, sessionID uuid.UUID) (int, error)
	InsertBooked(ctx context.Context, booking *entity.Booking) error
	Rebook(ctx context.Context, bookingID uuid.UUID, at time.Time) (*entity.Booking, error)
}

type BookingRepository interface {
	// InAdmissionTx runs fn inside a serializable transaction. A
	// serialization conflict detected by the store (on any statement or at
	// commit) is returned as a CONFLICT_RETRY tagged error so the caller can
	// retry; any error from fn aborts the transaction with no partial
	// writes.
	InAdmissionTx(ctx context.Context, fn func(q AdmissionQueries) error) error

	FindByPair(ctx context.Context, sessionID, userID, locationID uuid.UUID) (*entity.Booking, error)
	CancelBooked(ctx context.Context, bookingID uuid.UUID, at time.Time) (*entity.Booking, error)
	SetCheckedIn(ctx context.Context, bookingID uuid.UUID) (*entity.Booking, error)
	FindActiveBySession(ctx context.Context, sessionID uuid.UUID) ([]*entity.Booking, error)
	FindByUser(ctx context.Context, locationID, userID uuid.UUID, limit, offset int) ([]*BookingDetail, error)
	CountByUser(ctx context.Context, locationID, userID uuid.UUID) (int64, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

// admissionTx adapts one open pgx transaction to AdmissionQueries.
type admissionTx struct {
	tx  pgx.Tx
	log *zap.Logger
}

func (r *bookingRepository) InAdmissionTx(ctx context.Context, fn func(q AdmissionQueries) error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin admission tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&admissionTx{tx: tx, log: r.log}); err != nil {
		return mapConflict(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return mapConflict(fmt.Errorf("commit admission tx: %w", err))
	}

	return nil
}

// mapConflict translates store-level conflict SQLSTATEs into the retryable
// tagged error. 40001/40P01 is the serializable loser; 23505 on the
// (session_id, user_id) index means a concurrent request already inserted
// the row, which a retry resolves idempotently.
func mapConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "23505":
			return apperr.ConflictRetry("", err)
		}
	}
	return err
}

func (t *admissionTx) SessionForAdmission(ctx context.Context, sessionID, locationID uuid.UUID) (*entity.ClassSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM class_sessions s
		JOIN class_templates t ON t.id = s.class_id
		WHERE s.id = $1 AND s.location_id = $2
	`

	var session entity.ClassSession
	err := t.tx.QueryRow(ctx, query, sessionID, locationID).Scan(
		&session.ID,
		&session.ClassID,
		&session.LocationID,
		&session.StartsAt,
		&session.EndsAt,
		&session.CapacityOverride,
		&session.Status,
		&session.CreatedAt,
		&session.UpdatedAt,
		&session.TemplateCapacity,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session %s for admission: %w", sessionID.String(), err)
	}

	return &session, nil
}

func (t *admissionTx) BookingForPair(ctx context.Context, sessionID, userID uuid.UUID) (*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE session_id = $1 AND user_id = $2
	`

	var booking entity.Booking
	err := t.tx.QueryRow(ctx, query, sessionID, userID).Scan(
		&booking.ID,
		&booking.SessionID,
		&booking.UserID,
		&booking.LocationID,
		&booking.Status,
		&booking.BookedAt,
		&booking.CanceledAt,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read booking for session %s user %s: %w",
			sessionID.String(), userID.String(), err)
	}

	return &booking, nil
}

func (t *admissionTx) CountActive(ctx context.Context, sessionID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM bookings
		WHERE session_id = $1 AND status IN ('booked', 'checked_in')
	`

	var count int
	if err := t.tx.QueryRow(ctx, query, sessionID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count occupancy for session %s: %w", sessionID.String(), err)
	}

	return count, nil
}

func (t *admissionTx) InsertBooked(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, session_id, user_id, location_id, status, booked_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := t.tx.Exec(ctx, query,
		booking.ID,
		booking.SessionID,
		booking.UserID,
		booking.LocationID,
		booking.Status,
		booking.BookedAt,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("insert booking for session %s user %s: %w",
			booking.SessionID.String(), booking.UserID.String(), err)
	}

	return nil
}

func (t *admissionTx) Rebook(ctx context.Context, bookingID uuid.UUID, at time.Time) (*entity.Booking, error) {
	query := `
		UPDATE bookings
		SET status = 'booked', booked_at = $2, canceled_at = NULL, updated_at = $2
		WHERE id = $1
		RETURNING ` + bookingColumns + `
	`

	var booking entity.Booking
	err := t.tx.QueryRow(ctx, query, bookingID, at).Scan(
		&booking.ID,
		&booking.SessionID,
		&booking.UserID,
		&booking.LocationID,
		&booking.Status,
		&booking.BookedAt,
		&booking.CanceledAt,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("rebook booking %s: %w", bookingID.String(), err)
	}

	return &booking, nil
}

func (r *bookingRepository) FindByPair(ctx context.Context, sessionID, userID, locationID uuid.UUID) (*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE session_id = $1 AND user_id = $2 AND location_id = $3
	`

	var booking entity.Booking
	err := r.db.QueryRow(ctx, query, sessionID, userID, locationID).Scan(
		&booking.ID,
		&booking.SessionID,
		&booking.UserID,
		&booking.LocationID,
		&booking.Status,
		&booking.BookedAt,
		&booking.CanceledAt,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by pair",
			zap.Error(err),
			zap.String("session_id", sessionID.String()),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find booking for session %s user %s: %w",
			sessionID.String(), userID.String(), err)
	}

	return &booking, nil
}

func (r *bookingRepository) CancelBooked(ctx context.Context, bookingID uuid.UUID, at time.Time) (*entity.Booking, error) {
	// Status guard in the predicate: cancel releases no seat that was not
	// held as 'booked', so a concurrent check-in wins over a late cancel.
	query := `
		UPDATE bookings
		SET status = 'canceled', canceled_at = $2, updated_at = $2
		WHERE id = $1 AND status = 'booked'
		RETURNING ` + bookingColumns + `
	`

	var booking entity.Booking
	err := r.db.QueryRow(ctx, query, bookingID, at).Scan(
		&booking.ID,
		&booking.SessionID,
		&booking.UserID,
		&booking.LocationID,
		&booking.Status,
		&booking.BookedAt,
		&booking.CanceledAt,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to cancel booking",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("cancel booking %s: %w", bookingID.String(), err)
	}

	return &booking, nil
}

func (r *bookingRepository) SetCheckedIn(ctx context.Context, bookingID uuid.UUID) (*entity.Booking, error) {
	query := `
		UPDATE bookings
		SET status = 'checked_in', updated_at = NOW()
		WHERE id = $1 AND status IN ('booked', 'checked_in')
		RETURNING ` + bookingColumns + `
	`

	var booking entity.Booking
	err := r.db.QueryRow(ctx, query, bookingID).Scan(
		&booking.ID,
		&booking.SessionID,
		&booking.UserID,
		&booking.LocationID,
		&booking.Status,
		&booking.BookedAt,
		&booking.CanceledAt,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to check in booking",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("check in booking %s: %w", bookingID.String(), err)
	}

	return &booking, nil
}

func (r *bookingRepository) FindActiveBySession(ctx context.Context, sessionID uuid.UUID) ([]*entity.Booking, error) {
	// First booked, first listed.
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE session_id = $1 AND status IN ('booked', 'checked_in')
		ORDER BY booked_at
	`

	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		r.log.Error("Failed to find active bookings by session",
			zap.Error(err),
			zap.String("session_id", sessionID.String()),
		)
		return nil, fmt.Errorf("find active bookings for session %s: %w", sessionID.String(), err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		var booking entity.Booking
		err := rows.Scan(
			&booking.ID,
			&booking.SessionID,
			&booking.UserID,
			&booking.LocationID,
			&booking.Status,
			&booking.BookedAt,
			&booking.CanceledAt,
			&booking.CreatedAt,
			&booking.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, &booking)
	}

	return bookings, nil
}

func (r *bookingRepository) FindByUser(ctx context.Context, locationID, userID uuid.UUID, limit, offset int) ([]*BookingDetail, error) {
	query := `
		SELECT b.id, b.session_id, b.user_id, b.location_id, b.status, b.booked_at,
			b.canceled_at, b.created_at, b.updated_at,
			t.title, s.starts_at, s.ends_at
		FROM bookings b
		JOIN class_sessions s ON s.id = b.session_id
		JOIN class_templates t ON t.id = s.class_id
		WHERE b.location_id = $1 AND b.user_id = $2
		ORDER BY s.starts_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.Query(ctx, query, locationID, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by user",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find bookings by user %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var details []*BookingDetail
	for rows.Next() {
		var d BookingDetail
		err := rows.Scan(
			&d.ID,
			&d.SessionID,
			&d.UserID,
			&d.LocationID,
			&d.Status,
			&d.BookedAt,
			&d.CanceledAt,
			&d.CreatedAt,
			&d.UpdatedAt,
			&d.ClassTitle,
			&d.StartsAt,
			&d.EndsAt,
		)
		if err != nil {
			r.log.Error("Failed to scan booking detail row", zap.Error(err))
			return nil, fmt.Errorf("scan booking detail row: %w", err)
		}
		details = append(details, &d)
	}

	return details, nil
}

func (r *bookingRepository) CountByUser(ctx context.Context, locationID, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE location_id = $1 AND user_id = $2`

	var count int64
	if err := r.db.QueryRow(ctx, query, locationID, userID).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings by user",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("count bookings by user %s: %w", userID.String(), err)
	}

	return count, nil
}
