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

// TeacherRepository manages persistence for teachers and their yearly
// performance reports.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

const teacherColumns = `t.id, t.teacher_id, t.name, t.phone, t.campus_id, b.name AS campus_name, t.designation, t.active, t.created_at, t.updated_at`

// List returns teachers matching filters along with total count. CampusID is
// the campus scope restriction; empty means unrestricted.
func (r *TeacherRepository) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	base := "FROM teachers t LEFT JOIN branches b ON b.id = t.campus_id WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.CampusID != "" {
		conditions = append(conditions, fmt.Sprintf("t.campus_id = $%d", len(args)+1))
		args = append(args, filter.CampusID)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("t.active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(t.name) LIKE $%d OR LOWER(t.teacher_id) LIKE $%d OR LOWER(COALESCE(t.phone, '')) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, search)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY t.name ASC LIMIT %d OFFSET %d", teacherColumns, base, size, offset)
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list teachers: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count teachers: %w", err)
	}

	return teachers, total, nil
}

// ListAll returns the full roster without pagination, used to build the
// bulk-upload lookup tables.
func (r *TeacherRepository) ListAll(ctx context.Context) ([]models.Teacher, error) {
	query := fmt.Sprintf("SELECT %s FROM teachers t LEFT JOIN branches b ON b.id = t.campus_id", teacherColumns)
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, fmt.Errorf("list all teachers: %w", err)
	}
	return teachers, nil
}

// FindByID fetches a teacher by record ID.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	query := fmt.Sprintf("SELECT %s FROM teachers t LEFT JOIN branches b ON b.id = t.campus_id WHERE t.id = $1", teacherColumns)
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// FindByTeacherID fetches a teacher by the business key.
func (r *TeacherRepository) FindByTeacherID(ctx context.Context, teacherID string) (*models.Teacher, error) {
	query := fmt.Sprintf("SELECT %s FROM teachers t LEFT JOIN branches b ON b.id = t.campus_id WHERE t.teacher_id = $1", teacherColumns)
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, teacherID); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// ExistsByTeacherIDOrPhone checks whether the business key or phone is taken.
func (r *TeacherRepository) ExistsByTeacherIDOrPhone(ctx context.Context, teacherID string, phone *string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM teachers WHERE (teacher_id = $1 OR (COALESCE($2, '') <> '' AND phone = $2))"
	args := []interface{}{teacherID, phone}
	if excludeID != "" {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check teacher uniqueness: %w", err)
	}
	return true, nil
}

// Create inserts a new teacher record.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	teacher.CreatedAt = now
	teacher.UpdatedAt = now

	const query = `INSERT INTO teachers (id, teacher_id, name, phone, campus_id, designation, active, created_at, updated_at)
		VALUES (:id, :teacher_id, :name, :phone, :campus_id, :designation, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		return fmt.Errorf("create teacher: %w", err)
	}
	return nil
}

// Update modifies an existing teacher record.
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	teacher.UpdatedAt = time.Now().UTC()
	const query = `UPDATE teachers SET teacher_id = :teacher_id, name = :name, phone = :phone, campus_id = :campus_id, designation = :designation, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		return fmt.Errorf("update teacher: %w", err)
	}
	return nil
}

// DeleteWithRelations removes a teacher and every record referencing it in a
// single transaction. The cascade either completes fully or not at all.
func (r *TeacherRepository) DeleteWithRelations(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cascade delete: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	statements := []string{
		`DELETE FROM responsibility_assignments WHERE teacher_id = $1`,
		`DELETE FROM routine_entries WHERE teacher_id = $1`,
		`DELETE FROM leaves WHERE teacher_id = $1`,
		`DELETE FROM teacher_reports WHERE teacher_id = $1`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("cascade delete teacher relations: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM teachers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete teacher: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cascade delete: %w", err)
	}
	return nil
}

// AddReport attaches a yearly performance report.
func (r *TeacherRepository) AddReport(ctx context.Context, report *models.TeacherReport) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	report.CreatedAt = time.Now().UTC()
	if report.ReportDate.IsZero() {
		report.ReportDate = report.CreatedAt
	}

	const query = `INSERT INTO teacher_reports (id, teacher_id, year, responsibility_type_id, report, added_by, report_date, created_at)
		VALUES (:id, :teacher_id, :year, :responsibility_type_id, :report, :added_by, :report_date, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, report); err != nil {
		return fmt.Errorf("add teacher report: %w", err)
	}
	return nil
}

// ListReports returns a teacher's performance reports, newest year first.
func (r *TeacherRepository) ListReports(ctx context.Context, teacherID string) ([]models.TeacherReport, error) {
	const query = `SELECT id, teacher_id, year, responsibility_type_id, report, added_by, report_date, created_at FROM teacher_reports WHERE teacher_id = $1 ORDER BY year DESC, report_date DESC`
	var reports []models.TeacherReport
	if err := r.db.SelectContext(ctx, &reports, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher reports: %w", err)
	}
	return reports, nil
}

// DeleteReport removes one performance report.
func (r *TeacherRepository) DeleteReport(ctx context.Context, teacherID, reportID string) error {
	const query = `DELETE FROM teacher_reports WHERE id = $1 AND teacher_id = $2`
	res, err := r.db.ExecContext(ctx, query, reportID, teacherID)
	if err != nil {
		return fmt.Errorf("delete teacher report: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
