package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frii-edu/examiner-api/internal/dto"
)

func newReportMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestReportRepositoryDetailed(t *testing.T) {
	db, mock, cleanup := newReportMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"assignment_id", "teacher_name", "teacher_code", "campus_name", "type_name", "type_code",
		"year", "class_name", "subject_name", "status", "created_at", "updated_at",
	}).AddRow("a-1", "Alice", "T-001", "Main Campus", "Examiner", "EXM", 2026, "SIX", "Mathematics", "Assigned", now, now)

	mock.ExpectQuery("FROM responsibility_assignments a").
		WithArgs(2026, "campus-1").
		WillReturnRows(rows)

	result, err := repo.Detailed(context.Background(), dto.ReportFilter{Year: 2026, BranchID: "campus-1"})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "Alice", result[0].TeacherName)
	assert.Equal(t, "SIX", result[0].ClassName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryBranchFilterMatchesEitherCampus(t *testing.T) {
	db, mock, cleanup := newReportMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"assignment_id", "teacher_name", "teacher_code", "campus_name", "type_name", "type_code",
		"year", "class_name", "subject_name", "status", "created_at", "updated_at",
	}).AddRow("a-1", "Alice", "T-001", "Main Campus", "Examiner", "EXM", 2026, "SIX", "Mathematics", "Assigned", now, now)

	mock.ExpectQuery(`\(a\.teacher_campus_id = \$2 OR t\.campus_id = \$2\)`).
		WithArgs(2026, "campus-1").
		WillReturnRows(rows)

	_, err := repo.Detailed(context.Background(), dto.ReportFilter{Year: 2026, BranchID: "campus-1"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryYearlyRawBranchFilterMatchesEitherCampus(t *testing.T) {
	db, mock, cleanup := newReportMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	rows := sqlmock.NewRows([]string{"teacher_name", "teacher_code", "campus_name", "year", "type_code", "class_name", "subject_name"}).
		AddRow("Alice", "T-001", "Main Campus", 2026, "EXM", "SIX", "Mathematics")

	mock.ExpectQuery(`\(a\.teacher_campus_id = \$2 OR t\.campus_id = \$2\)`).
		WithArgs("{2026}", "campus-1").
		WillReturnRows(rows)

	result, err := repo.YearlyRaw(context.Background(), []int{2026}, "campus-1")
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryCampusSummary(t *testing.T) {
	db, mock, cleanup := newReportMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	rows := sqlmock.NewRows([]string{"campus_name", "type_name", "total"}).
		AddRow("Main Campus", "Examiner", 5).
		AddRow("North Campus", "Examiner", 2)

	mock.ExpectQuery("GROUP BY b.name, rt.name").
		WithArgs(2026).
		WillReturnRows(rows)

	result, err := repo.CampusSummary(context.Background(), dto.ReportFilter{Year: 2026})
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, 5, result[0].Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryYearlyRaw(t *testing.T) {
	db, mock, cleanup := newReportMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	rows := sqlmock.NewRows([]string{"teacher_name", "teacher_code", "campus_name", "year", "type_code", "class_name", "subject_name"}).
		AddRow("Alice", "T-001", "Main Campus", 2026, "EXM", "SIX", "Mathematics").
		AddRow("Alice", "T-001", "Main Campus", 2025, "INV", nil, nil)

	mock.ExpectQuery("WHERE a.year = ANY").
		WithArgs("{2025,2026}").
		WillReturnRows(rows)

	result, err := repo.YearlyRaw(context.Background(), []int{2025, 2026}, "")
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "EXM", result[0].TypeCode)
	assert.Nil(t, result[1].ClassName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
