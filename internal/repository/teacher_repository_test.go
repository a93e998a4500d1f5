package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frii-edu/examiner-api/internal/models"
)

func newTeacherMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func teacherRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "teacher_id", "name", "phone", "campus_id", "campus_name",
		"designation", "active", "created_at", "updated_at",
	}).AddRow("t-1", "T-001", "Alice", "01700000000", "campus-1", "Main Campus", nil, true, now, now)
}

func TestTeacherRepositoryListScoped(t *testing.T) {
	db, mock, cleanup := newTeacherMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectQuery("FROM teachers t LEFT JOIN branches b").
		WithArgs("campus-1", "%ali%").
		WillReturnRows(teacherRows())
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM teachers t").
		WithArgs("campus-1", "%ali%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	teachers, total, err := repo.List(context.Background(), models.TeacherFilter{
		Search:   "Ali",
		CampusID: "campus-1",
		Page:     1,
		PageSize: 20,
	})
	require.NoError(t, err)
	assert.Len(t, teachers, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newTeacherMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectExec("INSERT INTO teachers").
		WithArgs(sqlmock.AnyArg(), "T-002", "Bob", nil, "campus-1", nil, true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	teacher := &models.Teacher{
		TeacherID: "T-002",
		Name:      "Bob",
		CampusID:  "campus-1",
		Active:    true,
	}
	require.NoError(t, repo.Create(context.Background(), teacher))
	assert.NotEmpty(t, teacher.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryExistsByTeacherIDOrPhone(t *testing.T) {
	db, mock, cleanup := newTeacherMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	phone := "01700000000"
	mock.ExpectQuery("SELECT 1 FROM teachers").
		WithArgs("T-001", &phone).
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.ExistsByTeacherIDOrPhone(context.Background(), "T-001", &phone, "")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryDeleteWithRelations(t *testing.T) {
	db, mock, cleanup := newTeacherMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM responsibility_assignments").WithArgs("t-1").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM routine_entries").WithArgs("t-1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM leaves").WithArgs("t-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM teacher_reports").WithArgs("t-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM teachers").WithArgs("t-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteWithRelations(context.Background(), "t-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryDeleteWithRelationsMissing(t *testing.T) {
	db, mock, cleanup := newTeacherMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM responsibility_assignments").WithArgs("missing").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM routine_entries").WithArgs("missing").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM leaves").WithArgs("missing").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM teacher_reports").WithArgs("missing").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM teachers").WithArgs("missing").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.DeleteWithRelations(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryReports(t *testing.T) {
	db, mock, cleanup := newTeacherMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectExec("INSERT INTO teacher_reports").
		WithArgs(sqlmock.AnyArg(), "t-1", 2026, "type-1", "Handled invigilation well", "admin-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	report := &models.TeacherReport{
		TeacherID:            "t-1",
		Year:                 2026,
		ResponsibilityTypeID: "type-1",
		Report:               "Handled invigilation well",
		AddedBy:              "admin-1",
	}
	require.NoError(t, repo.AddReport(context.Background(), report))
	assert.False(t, report.ReportDate.IsZero())

	mock.ExpectQuery("FROM teacher_reports WHERE teacher_id").
		WithArgs("t-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "teacher_id", "year", "responsibility_type_id", "report", "added_by", "report_date", "created_at"}).
			AddRow(report.ID, "t-1", 2026, "type-1", "Handled invigilation well", "admin-1", report.ReportDate, report.CreatedAt))

	reports, err := repo.ListReports(context.Background(), "t-1")
	require.NoError(t, err)
	assert.Len(t, reports, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
