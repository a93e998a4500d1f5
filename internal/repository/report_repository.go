package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/frii-edu/examiner-api/internal/dto"
)

// ReportRepository runs the static report queries over the assignment data.
// Every query treats COALESCE(a.teacher_campus_id, t.campus_id) as the
// effective campus so pre-snapshot rows still land in a branch bucket.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs a ReportRepository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

const reportJoins = `FROM responsibility_assignments a
	JOIN teachers t ON t.id = a.teacher_id
	JOIN responsibility_types rt ON rt.id = a.responsibility_type_id
	LEFT JOIN classes c ON c.id = a.target_class_id
	LEFT JOIN subjects s ON s.id = a.target_subject_id
	LEFT JOIN branches b ON b.id = COALESCE(a.teacher_campus_id, t.campus_id)`

// filterClause renders the shared WHERE conditions. Status empty excludes
// cancelled rows so reports reflect live duties by default.
func filterClause(filter dto.ReportFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.Year > 0 {
		conditions = append(conditions, fmt.Sprintf("a.year = $%d", len(args)+1))
		args = append(args, filter.Year)
	}
	if filter.TypeID != "" {
		conditions = append(conditions, fmt.Sprintf("a.responsibility_type_id = $%d", len(args)+1))
		args = append(args, filter.TypeID)
	}
	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("a.target_class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("a.target_subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	} else {
		conditions = append(conditions, "a.status <> 'Cancelled'")
	}
	if filter.BranchID != "" {
		n := len(args) + 1
		// Matches either campus source: the assignment snapshot or the
		// teacher's current campus. A snapshot pointing elsewhere does not
		// exclude a teacher who belongs to the branch now.
		conditions = append(conditions, fmt.Sprintf("(a.teacher_campus_id = $%d OR t.campus_id = $%d)", n, n))
		args = append(args, filter.BranchID)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// Detailed returns the flat joined assignment listing, ordered by class then
// teacher name.
func (r *ReportRepository) Detailed(ctx context.Context, filter dto.ReportFilter) ([]dto.DetailedRow, error) {
	where, args := filterClause(filter)
	query := `SELECT a.id AS assignment_id, t.name AS teacher_name, t.teacher_id AS teacher_code,
		COALESCE(b.name, 'N/A') AS campus_name, rt.name AS type_name, COALESCE(rt.code, '') AS type_code,
		a.year, COALESCE(c.name, 'N/A') AS class_name, COALESCE(s.name, 'N/A') AS subject_name,
		a.status, a.created_at, a.updated_at ` + reportJoins + where +
		" ORDER BY class_name ASC, teacher_name ASC"

	var rows []dto.DetailedRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("detailed report: %w", err)
	}
	return rows, nil
}

// CampusSummary counts assignments grouped by effective campus and type.
func (r *ReportRepository) CampusSummary(ctx context.Context, filter dto.ReportFilter) ([]dto.CampusSummaryRow, error) {
	where, args := filterClause(filter)
	query := `SELECT COALESCE(b.name, 'N/A') AS campus_name, rt.name AS type_name, COUNT(*) AS total ` +
		reportJoins + where +
		" GROUP BY b.name, rt.name ORDER BY campus_name ASC, type_name ASC"

	var rows []dto.CampusSummaryRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("campus summary report: %w", err)
	}
	return rows, nil
}

// ClassSummary counts assignments grouped by class and type.
func (r *ReportRepository) ClassSummary(ctx context.Context, filter dto.ReportFilter) ([]dto.ClassSummaryRow, error) {
	where, args := filterClause(filter)
	query := `SELECT COALESCE(c.name, 'N/A') AS class_name, rt.name AS type_name, COUNT(*) AS total ` +
		reportJoins + where +
		" GROUP BY c.name, rt.name ORDER BY class_name ASC, type_name ASC"

	var rows []dto.ClassSummaryRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("class summary report: %w", err)
	}
	return rows, nil
}

// YearlyRaw returns the flat rows the yearly pivot is built from. Years is
// the inclusive set of years to cover; cancelled rows are excluded.
func (r *ReportRepository) YearlyRaw(ctx context.Context, years []int, branchID string) ([]dto.YearlyRawRow, error) {
	query := `SELECT t.name AS teacher_name, t.teacher_id AS teacher_code,
		COALESCE(b.name, 'N/A') AS campus_name, a.year, COALESCE(rt.code, rt.name) AS type_code,
		c.name AS class_name, s.name AS subject_name ` + reportJoins +
		" WHERE a.year = ANY($1::int[]) AND a.status <> 'Cancelled'"
	args := []interface{}{intArray(years)}

	if branchID != "" {
		query += " AND (a.teacher_campus_id = $2 OR t.campus_id = $2)"
		args = append(args, branchID)
	}
	query += " ORDER BY teacher_name ASC, a.year ASC"

	var rows []dto.YearlyRawRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("yearly report rows: %w", err)
	}
	return rows, nil
}

// intArray renders a Postgres int array literal for = ANY().
func intArray(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return "{" + strings.Join(parts, ",") + "}"
}
