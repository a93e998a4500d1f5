package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frii-edu/examiner-api/internal/models"
)

func newAssignmentMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAssignmentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec("INSERT INTO responsibility_assignments").
		WithArgs(sqlmock.AnyArg(), "teacher-1", "campus-1", "type-1", 2026, nil, nil, string(models.AssignmentAssigned), nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	campus := "campus-1"
	assignment := &models.Assignment{
		TeacherID:            "teacher-1",
		TeacherCampusID:      &campus,
		ResponsibilityTypeID: "type-1",
		Year:                 2026,
		Status:               models.AssignmentAssigned,
	}
	require.NoError(t, repo.Create(context.Background(), assignment))
	assert.NotEmpty(t, assignment.ID)
	assert.False(t, assignment.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryExistsActiveDuplicate(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	assignment := &models.Assignment{
		TeacherID:            "teacher-1",
		ResponsibilityTypeID: "type-1",
		Year:                 2026,
	}

	mock.ExpectQuery("SELECT 1 FROM responsibility_assignments").
		WithArgs("teacher-1", "type-1", 2026, nil, nil, string(models.AssignmentCancelled)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.ExistsActiveDuplicate(context.Background(), assignment)
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery("SELECT 1 FROM responsibility_assignments").
		WithArgs("teacher-1", "type-1", 2026, nil, nil, string(models.AssignmentCancelled)).
		WillReturnError(sql.ErrNoRows)

	exists, err = repo.ExistsActiveDuplicate(context.Background(), assignment)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryListByTeacher(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "teacher_id", "teacher_name", "teacher_code", "teacher_campus_id", "campus_name",
		"responsibility_type_id", "type_name", "year", "target_class_id", "class_name",
		"target_subject_id", "subject_name", "status", "notes", "created_at", "updated_at",
	}).AddRow("a-1", "teacher-1", "Alice", "T-001", "campus-1", "Main Campus",
		"type-1", "Exam Invigilator", 2026, nil, nil, nil, nil, "Assigned", nil, now, now)

	mock.ExpectQuery("FROM responsibility_assignments a").
		WithArgs("teacher-1", 2026).
		WillReturnRows(rows)

	details, err := repo.ListByTeacher(context.Background(), "teacher-1", 2026)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "Exam Invigilator", details[0].TypeName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryListFiltered(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "teacher_id", "teacher_name", "teacher_code", "teacher_campus_id", "campus_name",
		"responsibility_type_id", "type_name", "year", "target_class_id", "class_name",
		"target_subject_id", "subject_name", "status", "notes", "created_at", "updated_at",
	}).AddRow("a-1", "teacher-1", "Alice", "T-001", "campus-1", "Main Campus",
		"type-1", "Examiner", 2026, nil, nil, nil, nil, "Assigned", nil, now, now)

	mock.ExpectQuery(`AND a\.year = \$1 AND a\.responsibility_type_id = \$2 AND a\.status = \$3 AND \(a\.teacher_campus_id = \$4 OR t\.campus_id = \$4\)`).
		WithArgs(2026, "type-1", string(models.AssignmentAssigned), "campus-1").
		WillReturnRows(rows)

	details, err := repo.List(context.Background(), models.AssignmentFilter{
		Year:     2026,
		TypeID:   "type-1",
		Status:   models.AssignmentAssigned,
		CampusID: "campus-1",
	})
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "Alice", details[0].TeacherName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryDeleteNotFound(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM responsibility_assignments WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
