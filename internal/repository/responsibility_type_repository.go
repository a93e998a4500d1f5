package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/frii-edu/examiner-api/internal/models"
)

// ResponsibilityTypeRepository manages the duty-type catalog.
type ResponsibilityTypeRepository struct {
	db *sqlx.DB
}

// NewResponsibilityTypeRepository constructs a ResponsibilityTypeRepository.
func NewResponsibilityTypeRepository(db *sqlx.DB) *ResponsibilityTypeRepository {
	return &ResponsibilityTypeRepository{db: db}
}

// List returns all responsibility types sorted by name.
func (r *ResponsibilityTypeRepository) List(ctx context.Context) ([]models.ResponsibilityType, error) {
	const query = `SELECT id, name, code, description, category, requires_class_subject, created_at, updated_at FROM responsibility_types ORDER BY name ASC`
	var types []models.ResponsibilityType
	if err := r.db.SelectContext(ctx, &types, query); err != nil {
		return nil, fmt.Errorf("list responsibility types: %w", err)
	}
	return types, nil
}

// FindByID fetches a responsibility type by ID.
func (r *ResponsibilityTypeRepository) FindByID(ctx context.Context, id string) (*models.ResponsibilityType, error) {
	const query = `SELECT id, name, code, description, category, requires_class_subject, created_at, updated_at FROM responsibility_types WHERE id = $1`
	var rt models.ResponsibilityType
	if err := r.db.GetContext(ctx, &rt, query, id); err != nil {
		return nil, err
	}
	return &rt, nil
}

// ExistsByName checks if another type uses the same name.
func (r *ResponsibilityTypeRepository) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	query := "SELECT 1 FROM responsibility_types WHERE LOWER(name) = LOWER($1)"
	args := []interface{}{name}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check responsibility type name: %w", err)
	}
	return true, nil
}

// Create inserts a new responsibility type.
func (r *ResponsibilityTypeRepository) Create(ctx context.Context, rt *models.ResponsibilityType) error {
	if rt.ID == "" {
		rt.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	rt.CreatedAt = now
	rt.UpdatedAt = now

	const query = `INSERT INTO responsibility_types (id, name, code, description, category, requires_class_subject, created_at, updated_at)
		VALUES (:id, :name, :code, :description, :category, :requires_class_subject, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rt); err != nil {
		return fmt.Errorf("create responsibility type: %w", err)
	}
	return nil
}

// Update modifies an existing responsibility type.
func (r *ResponsibilityTypeRepository) Update(ctx context.Context, rt *models.ResponsibilityType) error {
	rt.UpdatedAt = time.Now().UTC()
	const query = `UPDATE responsibility_types SET name = :name, code = :code, description = :description, category = :category, requires_class_subject = :requires_class_subject, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, rt); err != nil {
		return fmt.Errorf("update responsibility type: %w", err)
	}
	return nil
}

// Delete removes a responsibility type.
func (r *ResponsibilityTypeRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM responsibility_types WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete responsibility type: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
