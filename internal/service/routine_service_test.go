package service

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/frii-edu/examiner-api/internal/models"
	appErrors "github.com/frii-edu/examiner-api/pkg/errors"
)

type mockRoutineRepo struct {
	entries  map[string]models.RoutineEntry
	replaced map[string][]models.RoutineEntry
	teachers []models.RoutineTeacher
	nextID   int
}

func (m *mockRoutineRepo) Exists(ctx context.Context, teacherID string, year int, classID, subjectID string) (bool, error) {
	for _, e := range m.entries {
		if e.TeacherID == teacherID && e.Year == year && e.ClassID == classID && e.SubjectID == subjectID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRoutineRepo) Insert(ctx context.Context, entry *models.RoutineEntry) error {
	if m.entries == nil {
		m.entries = make(map[string]models.RoutineEntry)
	}
	m.nextID++
	entry.ID = fmt.Sprintf("re-%d", m.nextID)
	m.entries[entry.ID] = *entry
	return nil
}

func (m *mockRoutineRepo) UpsertForTeacherYear(ctx context.Context, teacherID string, year int, entries []models.RoutineEntry) error {
	if m.replaced == nil {
		m.replaced = make(map[string][]models.RoutineEntry)
	}
	m.replaced[teacherID] = entries
	return nil
}

func (m *mockRoutineRepo) FindEntryTeacher(ctx context.Context, entryID string) (string, error) {
	if e, ok := m.entries[entryID]; ok {
		return e.TeacherID, nil
	}
	return "", sql.ErrNoRows
}

func (m *mockRoutineRepo) DeleteEntry(ctx context.Context, entryID string) error {
	if _, ok := m.entries[entryID]; !ok {
		return sql.ErrNoRows
	}
	delete(m.entries, entryID)
	return nil
}

func (m *mockRoutineRepo) ListByTeacher(ctx context.Context, teacherID string, year int) ([]models.RoutineEntryDetail, error) {
	var details []models.RoutineEntryDetail
	for _, e := range m.entries {
		if e.TeacherID == teacherID {
			details = append(details, models.RoutineEntryDetail{RoutineEntry: e, ClassName: "SIX", SubjectName: "Mathematics"})
		}
	}
	return details, nil
}

func (m *mockRoutineRepo) ListTeachers(ctx context.Context, year int, classID, subjectID, campusID string) ([]models.RoutineTeacher, error) {
	return m.teachers, nil
}

type mockRoutineTeacherRepo struct {
	byID      map[string]models.Teacher
	byCode    map[string]models.Teacher
	createdN  int
	createErr error
}

func (m *mockRoutineTeacherRepo) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if t, ok := m.byID[id]; ok {
		return &t, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockRoutineTeacherRepo) ListAll(ctx context.Context) ([]models.Teacher, error) {
	all := make([]models.Teacher, 0, len(m.byCode))
	for _, t := range m.byCode {
		all = append(all, t)
	}
	return all, nil
}

func (m *mockRoutineTeacherRepo) Create(ctx context.Context, teacher *models.Teacher) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.createdN++
	teacher.ID = fmt.Sprintf("created-%d", m.createdN)
	if m.byID == nil {
		m.byID = make(map[string]models.Teacher)
	}
	m.byID[teacher.ID] = *teacher
	m.byCode[teacher.TeacherID] = *teacher
	return nil
}

type mockClassList struct{ classes []models.Class }

func (m *mockClassList) List(ctx context.Context) ([]models.Class, error) { return m.classes, nil }

type mockSubjectList struct{ subjects []models.Subject }

func (m *mockSubjectList) List(ctx context.Context) ([]models.Subject, error) {
	return m.subjects, nil
}

func newRoutineFixture() (*RoutineService, *mockRoutineRepo, *mockRoutineTeacherRepo) {
	repo := &mockRoutineRepo{}
	teachers := &mockRoutineTeacherRepo{
		byID: map[string]models.Teacher{
			"t-1": {ID: "t-1", TeacherID: "T-001", Name: "Alice", CampusID: "campus-1"},
			"t-2": {ID: "t-2", TeacherID: "T-002", Name: "Bob", CampusID: "campus-2"},
		},
		byCode: map[string]models.Teacher{
			"T-001": {ID: "t-1", TeacherID: "T-001", Name: "Alice", CampusID: "campus-1"},
			"T-002": {ID: "t-2", TeacherID: "T-002", Name: "Bob", CampusID: "campus-2"},
		},
	}
	classes := &mockClassList{classes: []models.Class{
		{ID: "class-6", Name: "SIX", Level: 6},
		{ID: "class-7", Name: "SEVEN", Level: 7},
	}}
	subjects := &mockSubjectList{subjects: []models.Subject{
		{ID: "subject-m", Name: "Mathematics"},
		{ID: "subject-e", Name: "English"},
	}}
	svc := NewRoutineService(repo, teachers, classes, subjects, validator.New(), zap.NewNop())
	return svc, repo, teachers
}

func buildRoutineSheet(t *testing.T, rows [][]string) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	header := []interface{}{"Teacher ID", "Teacher Name", "Class", "Subject"}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	for i, row := range rows {
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellRef, &values))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestRoutineServiceAddRejectsDuplicate(t *testing.T) {
	svc, repo, _ := newRoutineFixture()

	entry, err := svc.Add(context.Background(), adminScope(), AddRoutineEntryRequest{
		TeacherID: "t-1", Year: 2026, ClassID: "class-6", SubjectID: "subject-m",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Len(t, repo.entries, 1)

	_, err = svc.Add(context.Background(), adminScope(), AddRoutineEntryRequest{
		TeacherID: "t-1", Year: 2026, ClassID: "class-6", SubjectID: "subject-m",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestRoutineServiceAddScopeForbidden(t *testing.T) {
	svc, _, _ := newRoutineFixture()
	scope := models.NewCampusScope(models.RoleIncharge, "campus-2")

	_, err := svc.Add(context.Background(), scope, AddRoutineEntryRequest{
		TeacherID: "t-1", Year: 2026, ClassID: "class-6", SubjectID: "subject-m",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestRoutineServiceBulkUpload(t *testing.T) {
	svc, repo, teachers := newRoutineFixture()

	sheet := buildRoutineSheet(t, [][]string{
		{"T-001", "Alice", "SIX", "Mathematics"},
		{"T-001", "Alice", "SEVEN", "English"},
		{"T-001", "Alice", "SIX", "Mathematics"}, // duplicate row, silently skipped
		{"T-100", "Carol", "SIX", "English"},     // unknown teacher, created
		{"T-200", "", "SIX", "English"},          // unknown teacher without name
		{"T-001", "Alice", "NOPE", "English"},    // unknown class
	})

	result, err := svc.BulkUpload(context.Background(), adminScope(), 2026, "campus-1", sheet)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Synced)
	assert.Equal(t, 1, result.TeachersCreated)
	assert.Equal(t, 1, teachers.createdN)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "row 6")
	assert.Contains(t, result.Errors[1], "row 7")

	require.Len(t, repo.replaced["t-1"], 2)
	require.Len(t, repo.replaced["created-1"], 1)
}

func TestRoutineServiceBulkUploadCampusMismatch(t *testing.T) {
	svc, repo, _ := newRoutineFixture()

	sheet := buildRoutineSheet(t, [][]string{
		{"T-002", "Bob", "SIX", "Mathematics"}, // belongs to campus-2
	})

	result, err := svc.BulkUpload(context.Background(), adminScope(), 2026, "campus-1", sheet)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Synced)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "another campus")
	assert.Empty(t, repo.replaced)
}

func TestRoutineServiceBulkUploadInchargeLockedToOwnCampus(t *testing.T) {
	svc, repo, _ := newRoutineFixture()
	scope := models.NewCampusScope(models.RoleIncharge, "campus-2")

	sheet := buildRoutineSheet(t, [][]string{
		{"T-002", "Bob", "SIX", "Mathematics"},
	})

	// The caller's campus wins over the submitted campus_id.
	result, err := svc.BulkUpload(context.Background(), scope, 2026, "campus-1", sheet)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Synced)
	require.Len(t, repo.replaced["t-2"], 1)
}

func TestRoutineServiceFilter(t *testing.T) {
	svc, repo, _ := newRoutineFixture()
	repo.teachers = []models.RoutineTeacher{{ID: "t-1", TeacherID: "T-001", Name: "Alice", CampusID: "campus-1"}}

	teachers, err := svc.Filter(context.Background(), adminScope(), RoutineFilterRequest{Year: 2026, ClassID: "class-6"})
	require.NoError(t, err)
	assert.Len(t, teachers, 1)
}
