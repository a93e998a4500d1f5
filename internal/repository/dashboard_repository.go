package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/frii-edu/examiner-api/internal/dto"
	"github.com/frii-edu/examiner-api/internal/models"
)

// DashboardRepository serves the aggregate counts behind the admin dashboard.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository constructs a DashboardRepository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// Summary returns the year-scoped headline counts in a single round trip.
func (r *DashboardRepository) Summary(ctx context.Context, year int) (*dto.DashboardSummary, error) {
	const query = `SELECT
		(SELECT COUNT(*) FROM branches WHERE active = TRUE) AS total_branches,
		(SELECT COUNT(*) FROM classes) AS total_classes,
		(SELECT COUNT(*) FROM subjects) AS total_subjects,
		(SELECT COUNT(*) FROM responsibility_types) AS total_responsibility_types,
		(SELECT COUNT(*) FROM teachers WHERE active = TRUE) AS total_teachers,
		(SELECT COUNT(*) FROM leaves WHERE status = 'Granted' AND year = $1) AS total_granted_leaves,
		(SELECT COUNT(*) FROM responsibility_assignments WHERE status <> 'Cancelled' AND year = $1) AS total_responsibilities`

	var row struct {
		TotalBranches             int `db:"total_branches"`
		TotalClasses              int `db:"total_classes"`
		TotalSubjects             int `db:"total_subjects"`
		TotalResponsibilityTypes  int `db:"total_responsibility_types"`
		TotalTeachers             int `db:"total_teachers"`
		TotalGrantedLeaves        int `db:"total_granted_leaves"`
		TotalActiveResponsibility int `db:"total_responsibilities"`
	}
	if err := r.db.GetContext(ctx, &row, query, year); err != nil {
		return nil, fmt.Errorf("dashboard summary: %w", err)
	}

	return &dto.DashboardSummary{
		TotalBranches:             row.TotalBranches,
		TotalClasses:              row.TotalClasses,
		TotalSubjects:             row.TotalSubjects,
		TotalResponsibilityTypes:  row.TotalResponsibilityTypes,
		TotalTeachers:             row.TotalTeachers,
		TotalGrantedLeaves:        row.TotalGrantedLeaves,
		TotalActiveResponsibility: row.TotalActiveResponsibility,
		ActiveSession:             year,
	}, nil
}

// TopTeachers returns the teachers with the most live duties in a year.
func (r *DashboardRepository) TopTeachers(ctx context.Context, year, limit int) ([]dto.TopTeacherRow, error) {
	const query = `SELECT t.teacher_id AS teacher_code, t.name, COUNT(*) AS total_duties
		FROM responsibility_assignments a
		JOIN teachers t ON t.id = a.teacher_id
		WHERE a.year = $1 AND a.status <> 'Cancelled'
		GROUP BY t.teacher_id, t.name
		ORDER BY total_duties DESC, t.name ASC
		LIMIT $2`

	var rows []dto.TopTeacherRow
	if err := r.db.SelectContext(ctx, &rows, query, year, limit); err != nil {
		return nil, fmt.Errorf("dashboard top teachers: %w", err)
	}
	return rows, nil
}

// CountByType returns live assignment counts per responsibility type.
func (r *DashboardRepository) CountByType(ctx context.Context, year int) ([]dto.NameCountRow, error) {
	const query = `SELECT rt.name, COUNT(*) AS count
		FROM responsibility_assignments a
		JOIN responsibility_types rt ON rt.id = a.responsibility_type_id
		WHERE a.year = $1 AND a.status <> 'Cancelled'
		GROUP BY rt.name
		ORDER BY count DESC, rt.name ASC`

	var rows []dto.NameCountRow
	if err := r.db.SelectContext(ctx, &rows, query, year); err != nil {
		return nil, fmt.Errorf("dashboard count by type: %w", err)
	}
	return rows, nil
}

// CountByBranch returns live assignment counts per effective campus.
func (r *DashboardRepository) CountByBranch(ctx context.Context, year int) ([]dto.NameCountRow, error) {
	const query = `SELECT COALESCE(b.name, 'N/A') AS name, COUNT(*) AS count
		FROM responsibility_assignments a
		JOIN teachers t ON t.id = a.teacher_id
		LEFT JOIN branches b ON b.id = COALESCE(a.teacher_campus_id, t.campus_id)
		WHERE a.year = $1 AND a.status <> 'Cancelled'
		GROUP BY b.name
		ORDER BY count DESC, name ASC`

	var rows []dto.NameCountRow
	if err := r.db.SelectContext(ctx, &rows, query, year); err != nil {
		return nil, fmt.Errorf("dashboard count by branch: %w", err)
	}
	return rows, nil
}

// RecentGrantedLeaves returns the newest granted leaves for the year.
func (r *DashboardRepository) RecentGrantedLeaves(ctx context.Context, year, limit int) ([]models.LeaveDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE l.status = 'Granted' AND l.year = $1 ORDER BY l.updated_at DESC LIMIT $2`,
		leaveDetailColumns, leaveDetailJoins)

	var rows []models.LeaveDetail
	if err := r.db.SelectContext(ctx, &rows, query, year, limit); err != nil {
		return nil, fmt.Errorf("dashboard recent leaves: %w", err)
	}
	return rows, nil
}
