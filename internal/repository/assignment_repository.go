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

// AssignmentRepository manages persistence for responsibility assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs an AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create inserts an assignment. The teacher's campus at assignment time is
// captured in teacher_campus_id so later transfers do not rewrite history.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now

	const query = `INSERT INTO responsibility_assignments (id, teacher_id, teacher_campus_id, responsibility_type_id, year, target_class_id, target_subject_id, status, notes, created_at, updated_at)
		VALUES (:id, :teacher_id, :teacher_campus_id, :responsibility_type_id, :year, :target_class_id, :target_subject_id, :status, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// ExistsActiveDuplicate reports whether a non-cancelled assignment already
// covers the same teacher, type, year, class and subject combination.
func (r *AssignmentRepository) ExistsActiveDuplicate(ctx context.Context, a *models.Assignment) (bool, error) {
	const query = `SELECT 1 FROM responsibility_assignments
		WHERE teacher_id = $1 AND responsibility_type_id = $2 AND year = $3
		AND target_class_id IS NOT DISTINCT FROM $4
		AND target_subject_id IS NOT DISTINCT FROM $5
		AND status <> $6
		LIMIT 1`
	var exists int
	err := r.db.GetContext(ctx, &exists, query,
		a.TeacherID, a.ResponsibilityTypeID, a.Year, a.TargetClassID, a.TargetSubjectID, models.AssignmentCancelled)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check duplicate assignment: %w", err)
	}
	return true, nil
}

const assignmentDetailColumns = `a.id, a.teacher_id, t.name AS teacher_name, t.teacher_id AS teacher_code,
	a.teacher_campus_id, b.name AS campus_name, a.responsibility_type_id, rt.name AS type_name,
	a.year, a.target_class_id, c.name AS class_name, a.target_subject_id, s.name AS subject_name,
	a.status, a.notes, a.created_at, a.updated_at`

const assignmentDetailJoins = `FROM responsibility_assignments a
	JOIN teachers t ON t.id = a.teacher_id
	JOIN responsibility_types rt ON rt.id = a.responsibility_type_id
	LEFT JOIN classes c ON c.id = a.target_class_id
	LEFT JOIN subjects s ON s.id = a.target_subject_id
	LEFT JOIN branches b ON b.id = COALESCE(a.teacher_campus_id, t.campus_id)`

// List returns assignments across teachers with names resolved, narrowed by
// the filter. The campus filter matches either the snapshot campus or the
// teacher's current campus.
func (r *AssignmentRepository) List(ctx context.Context, filter models.AssignmentFilter) ([]models.AssignmentDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE 1=1", assignmentDetailColumns, assignmentDetailJoins)
	var args []interface{}

	if filter.Year > 0 {
		args = append(args, filter.Year)
		query += fmt.Sprintf(" AND a.year = $%d", len(args))
	}
	if filter.TypeID != "" {
		args = append(args, filter.TypeID)
		query += fmt.Sprintf(" AND a.responsibility_type_id = $%d", len(args))
	}
	if filter.ClassID != "" {
		args = append(args, filter.ClassID)
		query += fmt.Sprintf(" AND a.target_class_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND a.status = $%d", len(args))
	}
	if filter.CampusID != "" {
		args = append(args, filter.CampusID)
		n := len(args)
		query += fmt.Sprintf(" AND (a.teacher_campus_id = $%d OR t.campus_id = $%d)", n, n)
	}
	query += " ORDER BY a.year DESC, t.name ASC, a.created_at DESC"

	var details []models.AssignmentDetail
	if err := r.db.SelectContext(ctx, &details, query, args...); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return details, nil
}

// ListByTeacher returns a teacher's assignments with names resolved, newest
// year first.
func (r *AssignmentRepository) ListByTeacher(ctx context.Context, teacherID string, year int) ([]models.AssignmentDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE a.teacher_id = $1", assignmentDetailColumns, assignmentDetailJoins)
	args := []interface{}{teacherID}
	if year > 0 {
		query += " AND a.year = $2"
		args = append(args, year)
	}
	query += " ORDER BY a.year DESC, a.created_at DESC"

	var details []models.AssignmentDetail
	if err := r.db.SelectContext(ctx, &details, query, args...); err != nil {
		return nil, fmt.Errorf("list assignments by teacher: %w", err)
	}
	return details, nil
}

// FindDetail fetches one assignment with names resolved.
func (r *AssignmentRepository) FindDetail(ctx context.Context, id string) (*models.AssignmentDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE a.id = $1", assignmentDetailColumns, assignmentDetailJoins)
	var detail models.AssignmentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// FindByID fetches the raw assignment row.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	const query = `SELECT id, teacher_id, teacher_campus_id, responsibility_type_id, year, target_class_id, target_subject_id, status, notes, created_at, updated_at
		FROM responsibility_assignments WHERE id = $1`
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// UpdateStatus transitions an assignment's lifecycle status.
func (r *AssignmentRepository) UpdateStatus(ctx context.Context, id string, status models.AssignmentStatus) error {
	const query = `UPDATE responsibility_assignments SET status = $1, updated_at = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update assignment status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an assignment.
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM responsibility_assignments WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
