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

func newRoutineMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestRoutineRepositoryExists(t *testing.T) {
	db, mock, cleanup := newRoutineMock(t)
	defer cleanup()
	repo := NewRoutineRepository(db)

	mock.ExpectQuery("SELECT 1 FROM routine_entries").
		WithArgs("t-1", 2026, "class-1", "subject-1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.Exists(context.Background(), "t-1", 2026, "class-1", "subject-1")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery("SELECT 1 FROM routine_entries").
		WithArgs("t-1", 2026, "class-2", "subject-1").
		WillReturnError(sql.ErrNoRows)

	exists, err = repo.Exists(context.Background(), "t-1", 2026, "class-2", "subject-1")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoutineRepositoryUpsertForTeacherYear(t *testing.T) {
	db, mock, cleanup := newRoutineMock(t)
	defer cleanup()
	repo := NewRoutineRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM routine_entries WHERE teacher_id = \$1 AND year = \$2 AND class_id = \$3 AND subject_id = \$4`).
		WithArgs("t-1", 2026, "class-1", "subject-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO routine_entries").
		WithArgs(sqlmock.AnyArg(), "t-1", 2026, "class-1", "subject-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`DELETE FROM routine_entries WHERE teacher_id = \$1 AND year = \$2 AND class_id = \$3 AND subject_id = \$4`).
		WithArgs("t-1", 2026, "class-2", "subject-2").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO routine_entries").
		WithArgs(sqlmock.AnyArg(), "t-1", 2026, "class-2", "subject-2", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	entries := []models.RoutineEntry{
		{ClassID: "class-1", SubjectID: "subject-1"},
		{ClassID: "class-2", SubjectID: "subject-2"},
	}
	require.NoError(t, repo.UpsertForTeacherYear(context.Background(), "t-1", 2026, entries))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoutineRepositoryUpsertLeavesUnmentionedPairs(t *testing.T) {
	db, mock, cleanup := newRoutineMock(t)
	defer cleanup()
	repo := NewRoutineRepository(db)

	// A one-entry upload must only touch its own (class, subject) pair. The
	// delete carries all four key columns, so pre-existing rows of the same
	// teacher and year survive.
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM routine_entries WHERE teacher_id = \$1 AND year = \$2 AND class_id = \$3 AND subject_id = \$4`).
		WithArgs("t-1", 2026, "class-3", "subject-9").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO routine_entries").
		WithArgs(sqlmock.AnyArg(), "t-1", 2026, "class-3", "subject-9", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	entries := []models.RoutineEntry{{ClassID: "class-3", SubjectID: "subject-9"}}
	require.NoError(t, repo.UpsertForTeacherYear(context.Background(), "t-1", 2026, entries))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoutineRepositoryListByTeacher(t *testing.T) {
	db, mock, cleanup := newRoutineMock(t)
	defer cleanup()
	repo := NewRoutineRepository(db)

	rows := sqlmock.NewRows([]string{"id", "teacher_id", "year", "class_id", "class_name", "subject_id", "subject_name", "created_at"}).
		AddRow("re-1", "t-1", 2026, "class-1", "SIX", "subject-1", "Mathematics", time.Now())

	mock.ExpectQuery("FROM routine_entries re").
		WithArgs("t-1", 2026).
		WillReturnRows(rows)

	entries, err := repo.ListByTeacher(context.Background(), "t-1", 2026)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Mathematics", entries[0].SubjectName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoutineRepositoryListForCampus(t *testing.T) {
	db, mock, cleanup := newRoutineMock(t)
	defer cleanup()
	repo := NewRoutineRepository(db)

	rows := sqlmock.NewRows([]string{"teacher_name", "teacher_code", "class_name", "subject_name", "year"}).
		AddRow("Alice", "T-001", "ONE", "Bangla", 2026).
		AddRow("Bob", "T-002", "SIX", "English", 2026)

	mock.ExpectQuery("SELECT t.name AS teacher_name").
		WithArgs(2026, "campus-1").
		WillReturnRows(rows)

	entries, err := repo.ListForCampus(context.Background(), "campus-1", 2026)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "T-002", entries[1].TeacherCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoutineRepositoryListTeachersFiltered(t *testing.T) {
	db, mock, cleanup := newRoutineMock(t)
	defer cleanup()
	repo := NewRoutineRepository(db)

	rows := sqlmock.NewRows([]string{"id", "teacher_id", "name", "campus_id", "campus_name"}).
		AddRow("t-1", "T-001", "Alice", "campus-1", "Main Campus")

	mock.ExpectQuery("SELECT DISTINCT t.id").
		WithArgs(2026, "class-1", "campus-1").
		WillReturnRows(rows)

	teachers, err := repo.ListTeachers(context.Background(), 2026, "class-1", "", "campus-1")
	require.NoError(t, err)
	require.Len(t, teachers, 1)
	assert.Equal(t, "Alice", teachers[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
