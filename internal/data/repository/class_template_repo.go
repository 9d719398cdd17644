package repository

import (
	"context"
	"fmt"

	"gym-booking/internal/data/entity"
	"gym-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ClassTemplateRepository interface {
	Create(ctx context.Context, template *entity.ClassTemplate) error
	// FindByID is location-scoped: a template belonging to another location
	// is indistinguishable from a missing one.
	FindByID(ctx context.Context, id, locationID uuid.UUID) (*entity.ClassTemplate, error)
	FindByLocation(ctx context.Context, locationID uuid.UUID) ([]*entity.ClassTemplate, error)
}

type classTemplateRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewClassTemplateRepository(db database.PgxIface, log *zap.Logger) ClassTemplateRepository {
	return &classTemplateRepository{
		db:  db,
		log: log.With(zap.String("repository", "class_template")),
	}
}

func (r *classTemplateRepository) Create(ctx context.Context, template *entity.ClassTemplate) error {
	query := `
		INSERT INTO class_templates (id, location_id, title, capacity, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		template.ID,
		template.LocationID,
		template.Title,
		template.Capacity,
		template.Active,
		template.CreatedAt,
		template.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create class template",
			zap.Error(err),
			zap.String("location_id", template.LocationID.String()),
			zap.String("title", template.Title),
		)
		return fmt.Errorf("create class template %q: %w", template.Title, err)
	}

	return nil
}

func (r *classTemplateRepository) FindByID(ctx context.Context, id, locationID uuid.UUID) (*entity.ClassTemplate, error) {
	query := `
		SELECT id, location_id, title, capacity, active, created_at, updated_at
		FROM class_templates
		WHERE id = $1 AND location_id = $2
	`

	var template entity.ClassTemplate
	err := r.db.QueryRow(ctx, query, id, locationID).Scan(
		&template.ID,
		&template.LocationID,
		&template.Title,
		&template.Capacity,
		&template.Active,
		&template.CreatedAt,
		&template.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find class template by ID",
			zap.Error(err),
			zap.String("class_id", id.String()),
		)
		return nil, fmt.Errorf("find class template by ID %s: %w", id.String(), err)
	}

	return &template, nil
}

func (r *classTemplateRepository) FindByLocation(ctx context.Context, locationID uuid.UUID) ([]*entity.ClassTemplate, error) {
	query := `
		SELECT id, location_id, title, capacity, active, created_at, updated_at
		FROM class_templates
		WHERE location_id = $1
		ORDER BY title
	`

	rows, err := r.db.Query(ctx, query, locationID)
	if err != nil {
		r.log.Error("Failed to find class templates by location",
			zap.Error(err),
			zap.String("location_id", locationID.String()),
		)
		return nil, fmt.Errorf("find class templates by location %s: %w", locationID.String(), err)
	}
	defer rows.Close()

	var templates []*entity.ClassTemplate
	for rows.Next() {
		var template entity.ClassTemplate
		err := rows.Scan(
			&template.ID,
			&template.LocationID,
			&template.Title,
			&template.Capacity,
			&template.Active,
			&template.CreatedAt,
			&template.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan class template row", zap.Error(err))
			return nil, fmt.Errorf("scan class template row: %w", err)
		}
		templates = append(templates, &template)
	}

	return templates, nil
}
