package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/frii-edu/examiner-api/internal/models"
)

// LeaveRepository manages persistence for responsibility leave requests.
type LeaveRepository struct {
	db *sqlx.DB
}

// NewLeaveRepository constructs a LeaveRepository.
func NewLeaveRepository(db *sqlx.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

// Create inserts a leave request.
func (r *LeaveRepository) Create(ctx context.Context, leave *models.Leave) error {
	if leave.ID == "" {
		leave.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	leave.CreatedAt = now
	leave.UpdatedAt = now

	const query = `INSERT INTO leaves (id, teacher_id, responsibility_type_id, year, start_date, end_date, reason, status, decided_by, created_at, updated_at)
		VALUES (:id, :teacher_id, :responsibility_type_id, :year, :start_date, :end_date, :reason, :status, :decided_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, leave); err != nil {
		return fmt.Errorf("create leave: %w", err)
	}
	return nil
}

const leaveDetailColumns = `l.id, l.teacher_id, t.name AS teacher_name, t.teacher_id AS teacher_code,
	b.name AS campus_name, l.responsibility_type_id, rt.name AS type_name, l.year, l.start_date,
	l.end_date, l.reason, l.status, l.decided_by, l.created_at, l.updated_at`

const leaveDetailJoins = `FROM leaves l
	JOIN teachers t ON t.id = l.teacher_id
	JOIN responsibility_types rt ON rt.id = l.responsibility_type_id
	LEFT JOIN branches b ON b.id = t.campus_id`

// List returns leaves matching the filter with names resolved.
func (r *LeaveRepository) List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE 1=1", leaveDetailColumns, leaveDetailJoins)
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("l.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("l.teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.Year > 0 {
		conditions = append(conditions, fmt.Sprintf("l.year = $%d", len(args)+1))
		args = append(args, filter.Year)
	}
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY l.created_at DESC"

	var leaves []models.LeaveDetail
	if err := r.db.SelectContext(ctx, &leaves, query, args...); err != nil {
		return nil, fmt.Errorf("list leaves: %w", err)
	}
	return leaves, nil
}

// FindByID fetches the raw leave row.
func (r *LeaveRepository) FindByID(ctx context.Context, id string) (*models.Leave, error) {
	const query = `SELECT id, teacher_id, responsibility_type_id, year, start_date, end_date, reason, status, decided_by, created_at, updated_at FROM leaves WHERE id = $1`
	var leave models.Leave
	if err := r.db.GetContext(ctx, &leave, query, id); err != nil {
		return nil, err
	}
	return &leave, nil
}

// UpdateStatus records an admin decision on a leave request.
func (r *LeaveRepository) UpdateStatus(ctx context.Context, id string, status models.LeaveStatus, decidedBy string) error {
	const query = `UPDATE leaves SET status = $1, decided_by = $2, updated_at = $3 WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, status, decidedBy, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update leave status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a leave request.
func (r *LeaveRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM leaves WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete leave: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// HasGrantedLeave reports whether a teacher holds a granted leave for the
// responsibility type and year. A granted leave blocks every assignment of
// that type for the year regardless of class or subject.
func (r *LeaveRepository) HasGrantedLeave(ctx context.Context, teacherID, typeID string, year int) (bool, error) {
	const query = `SELECT 1 FROM leaves WHERE teacher_id = $1 AND responsibility_type_id = $2 AND year = $3 AND status = $4 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, teacherID, typeID, year, models.LeaveGranted); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check granted leave: %w", err)
	}
	return true, nil
}
