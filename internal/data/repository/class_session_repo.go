package repository

import (
	"context"
	"fmt"
	"time"

	"gym-booking/internal/data/entity"
	"gym-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// sessionColumns joins the template so TemplateCapacity is populated on
// every read and entity.ClassSession.EffectiveCapacity always has its input.
const sessionColumns = `
	s.id, s.class_id, s.location_id, s.starts_at, s.ends_at,
	s.capacity_override, s.status, s.created_at, s.updated_at,
	t.capacity AS template_capacity
`

// SessionOverview is the browse-view projection: a session plus its class
// title, live occupancy, and whether the requesting user holds a seat. The
// booked flag is a UI affordance, not an enforcement input.
type SessionOverview struct {
	entity.ClassSession
	Title          string
	Occupancy      int
	BookedByCaller bool
}

type ClassSessionRepository interface {
	Create(ctx context.Context, session *entity.ClassSession) error
	FindByID(ctx context.Context, id, locationID uuid.UUID) (*entity.ClassSession, error)
	Cancel(ctx context.Context, id, locationID uuid.UUID) (*entity.ClassSession, error)
	FindByRange(ctx context.Context, locationID uuid.UUID, from, to time.Time) ([]*entity.ClassSession, error)
	BrowseRange(ctx context.Context, locationID, userID uuid.UUID, from, to time.Time) ([]*SessionOverview, error)
}

type classSessionRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewClassSessionRepository(db database.PgxIface, log *zap.Logger) ClassSessionRepository {
	return &classSessionRepository{
		db:  db,
		log: log.With(zap.String("repository", "class_session")),
	}
}

func (r *classSessionRepository) Create(ctx context.Context, session *entity.ClassSession) error {
	query := `
		INSERT INTO class_sessions (id, class_id, location_id, starts_at, ends_at, capacity_override, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		session.ID,
		session.ClassID,
		session.LocationID,
		session.StartsAt,
		session.EndsAt,
		session.CapacityOverride,
		session.Status,
		session.CreatedAt,
		session.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create class session",
			zap.Error(err),
			zap.String("class_id", session.ClassID.String()),
			zap.Time("starts_at", session.StartsAt),
		)
		return fmt.Errorf("create session for class %s: %w", session.ClassID.String(), err)
	}

	return nil
}

func (r *classSessionRepository) FindByID(ctx context.Context, id, locationID uuid.UUID) (*entity.ClassSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM class_sessions s
		JOIN class_templates t ON t.id = s.class_id
		WHERE s.id = $1 AND s.location_id = $2
	`

	var session entity.ClassSession
	err := r.db.QueryRow(ctx, query, id, locationID).Scan(
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
		r.log.Error("Failed to find session by ID",
			zap.Error(err),
			zap.String("session_id", id.String()),
		)
		return nil, fmt.Errorf("find session by ID %s: %w", id.String(), err)
	}

	return &session, nil
}

func (r *classSessionRepository) Cancel(ctx context.Context, id, locationID uuid.UUID) (*entity.ClassSession, error) {
	// One-way transition; existing bookings are untouched and stay readable
	// for roster/history.
	query := `
		UPDATE class_sessions s
		SET status = 'canceled', updated_at = NOW()
		FROM class_templates t
		WHERE s.id = $1 AND s.location_id = $2 AND t.id = s.class_id
		RETURNING ` + sessionColumns + `
	`

	var session entity.ClassSession
	err := r.db.QueryRow(ctx, query, id, locationID).Scan(
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
		r.log.Error("Failed to cancel session",
			zap.Error(err),
			zap.String("session_id", id.String()),
		)
		return nil, fmt.Errorf("cancel session %s: %w", id.String(), err)
	}

	return &session, nil
}

func (r *classSessionRepository) FindByRange(ctx context.Context, locationID uuid.UUID, from, to time.Time) ([]*entity.ClassSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM class_sessions s
		JOIN class_templates t ON t.id = s.class_id
		WHERE s.location_id = $1 AND s.starts_at >= $2 AND s.starts_at < $3
		ORDER BY s.starts_at
	`

	rows, err := r.db.Query(ctx, query, locationID, from, to)
	if err != nil {
		r.log.Error("Failed to find sessions by range",
			zap.Error(err),
			zap.String("location_id", locationID.String()),
			zap.Time("from", from),
			zap.Time("to", to),
		)
		return nil, fmt.Errorf("find sessions in range %s..%s: %w",
			from.Format(time.RFC3339), to.Format(time.RFC3339), err)
	}
	defer rows.Close()

	var sessions []*entity.ClassSession
	for rows.Next() {
		var session entity.ClassSession
		err := rows.Scan(
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
		if err != nil {
			r.log.Error("Failed to scan session row", zap.Error(err))
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		sessions = append(sessions, &session)
	}

	return sessions, nil
}

func (r *classSessionRepository) BrowseRange(ctx context.Context, locationID, userID uuid.UUID, from, to time.Time) ([]*SessionOverview, error) {
	query := `
		SELECT ` + sessionColumns + `,
			t.title,
			(SELECT COUNT(*) FROM bookings b
				WHERE b.session_id = s.id AND b.status IN ('booked', 'checked_in')) AS occupancy,
			EXISTS (SELECT 1 FROM bookings b
				WHERE b.session_id = s.id AND b.user_id = $2 AND b.status IN ('booked', 'checked_in')) AS booked_by_caller
		FROM class_sessions s
		JOIN class_templates t ON t.id = s.class_id
		WHERE s.location_id = $1 AND s.starts_at >= $3 AND s.starts_at < $4
		ORDER BY s.starts_at
	`

	rows, err := r.db.Query(ctx, query, locationID, userID, from, to)
	if err != nil {
		r.log.Error("Failed to browse sessions",
			zap.Error(err),
			zap.String("location_id", locationID.String()),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("browse sessions in range %s..%s: %w",
			from.Format(time.RFC3339), to.Format(time.RFC3339), err)
	}
	defer rows.Close()

	var overviews []*SessionOverview
	for rows.Next() {
		var o SessionOverview
		err := rows.Scan(
			&o.ID,
			&o.ClassID,
			&o.LocationID,
			&o.StartsAt,
			&o.EndsAt,
			&o.CapacityOverride,
			&o.Status,
			&o.CreatedAt,
			&o.UpdatedAt,
			&o.TemplateCapacity,
			&o.Title,
			&o.Occupancy,
			&o.BookedByCaller,
		)
		if err != nil {
			r.log.Error("Failed to scan session overview row", zap.Error(err))
			return nil, fmt.Errorf("scan session overview row: %w", err)
		}
		overviews = append(overviews, &o)
	}

	return overviews, nil
}
