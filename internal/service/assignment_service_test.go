package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/frii-edu/examiner-api/internal/models"
	appErrors "github.com/frii-edu/examiner-api/pkg/errors"
)

type mockAssignmentRepo struct {
	assignments map[string]models.Assignment
	duplicate   bool
	createErr   error
	created     *models.Assignment
	lastFilter  models.AssignmentFilter
}

func (m *mockAssignmentRepo) Create(ctx context.Context, a *models.Assignment) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.assignments == nil {
		m.assignments = make(map[string]models.Assignment)
	}
	if a.ID == "" {
		a.ID = "generated"
	}
	m.assignments[a.ID] = *a
	m.created = a
	return nil
}

func (m *mockAssignmentRepo) ExistsActiveDuplicate(ctx context.Context, a *models.Assignment) (bool, error) {
	return m.duplicate, nil
}

func (m *mockAssignmentRepo) List(ctx context.Context, filter models.AssignmentFilter) ([]models.AssignmentDetail, error) {
	m.lastFilter = filter
	var details []models.AssignmentDetail
	for _, a := range m.assignments {
		if filter.Year > 0 && a.Year != filter.Year {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		details = append(details, models.AssignmentDetail{Assignment: a})
	}
	return details, nil
}

func (m *mockAssignmentRepo) ListByTeacher(ctx context.Context, teacherID string, year int) ([]models.AssignmentDetail, error) {
	var details []models.AssignmentDetail
	for _, a := range m.assignments {
		if a.TeacherID == teacherID {
			details = append(details, models.AssignmentDetail{Assignment: a})
		}
	}
	return details, nil
}

func (m *mockAssignmentRepo) FindDetail(ctx context.Context, id string) (*models.AssignmentDetail, error) {
	if a, ok := m.assignments[id]; ok {
		return &models.AssignmentDetail{Assignment: a}, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAssignmentRepo) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	if a, ok := m.assignments[id]; ok {
		return &a, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAssignmentRepo) UpdateStatus(ctx context.Context, id string, status models.AssignmentStatus) error {
	a, ok := m.assignments[id]
	if !ok {
		return sql.ErrNoRows
	}
	a.Status = status
	m.assignments[id] = a
	return nil
}

func (m *mockAssignmentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.assignments[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.assignments, id)
	return nil
}

type mockTeacherReader struct {
	teachers map[string]models.Teacher
}

func (m *mockTeacherReader) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if t, ok := m.teachers[id]; ok {
		return &t, nil
	}
	return nil, sql.ErrNoRows
}

type mockTypeReader struct {
	types map[string]models.ResponsibilityType
}

func (m *mockTypeReader) FindByID(ctx context.Context, id string) (*models.ResponsibilityType, error) {
	if rt, ok := m.types[id]; ok {
		return &rt, nil
	}
	return nil, sql.ErrNoRows
}

type mockLeaveReader struct {
	granted map[string]bool
}

func (m *mockLeaveReader) HasGrantedLeave(ctx context.Context, teacherID, typeID string, year int) (bool, error) {
	return m.granted[teacherID+"|"+typeID], nil
}

func newAssignmentFixture() (*AssignmentService, *mockAssignmentRepo, *mockTeacherReader, *mockLeaveReader) {
	repo := &mockAssignmentRepo{}
	teachers := &mockTeacherReader{teachers: map[string]models.Teacher{
		"t-1": {ID: "t-1", TeacherID: "T-001", Name: "Alice", CampusID: "campus-1", Active: true},
		"t-2": {ID: "t-2", TeacherID: "T-002", Name: "Bob", Active: true},
	}}
	types := &mockTypeReader{types: map[string]models.ResponsibilityType{
		"type-1": {ID: "type-1", Name: "Examiner"},
		"type-2": {ID: "type-2", Name: "Invigilator", RequiresClassSubject: true},
	}}
	leaves := &mockLeaveReader{granted: make(map[string]bool)}
	svc := NewAssignmentService(repo, teachers, types, leaves, validator.New(), zap.NewNop())
	return svc, repo, teachers, leaves
}

func adminScope() models.CampusScope {
	return models.NewCampusScope(models.RoleAdmin, "")
}

func TestAssignmentServiceAssign(t *testing.T) {
	svc, repo, _, _ := newAssignmentFixture()

	assignment, err := svc.Assign(context.Background(), adminScope(), AssignRequest{
		TeacherID:            "t-1",
		ResponsibilityTypeID: "type-1",
		Year:                 2026,
	})
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentAssigned, assignment.Status)
	require.NotNil(t, assignment.TeacherCampusID)
	assert.Equal(t, "campus-1", *assignment.TeacherCampusID)
	assert.Equal(t, repo.created, assignment)
}

func TestAssignmentServiceAssignUnknownTeacher(t *testing.T) {
	svc, _, _, _ := newAssignmentFixture()

	_, err := svc.Assign(context.Background(), adminScope(), AssignRequest{
		TeacherID:            "missing",
		ResponsibilityTypeID: "type-1",
		Year:                 2026,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestAssignmentServiceAssignTeacherWithoutCampus(t *testing.T) {
	svc, _, _, _ := newAssignmentFixture()

	_, err := svc.Assign(context.Background(), adminScope(), AssignRequest{
		TeacherID:            "t-2",
		ResponsibilityTypeID: "type-1",
		Year:                 2026,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErr.Code)
}

func TestAssignmentServiceAssignBlockedByLeave(t *testing.T) {
	svc, _, _, leaves := newAssignmentFixture()
	leaves.granted["t-1|type-1"] = true

	class := "class-1"
	subject := "subject-1"
	_, err := svc.Assign(context.Background(), adminScope(), AssignRequest{
		TeacherID:            "t-1",
		ResponsibilityTypeID: "type-1",
		Year:                 2026,
		TargetClassID:        &class,
		TargetSubjectID:      &subject,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestAssignmentServiceAssignDuplicate(t *testing.T) {
	svc, repo, _, _ := newAssignmentFixture()
	repo.duplicate = true

	_, err := svc.Assign(context.Background(), adminScope(), AssignRequest{
		TeacherID:            "t-1",
		ResponsibilityTypeID: "type-1",
		Year:                 2026,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestAssignmentServiceAssignRequiresClassSubject(t *testing.T) {
	svc, _, _, _ := newAssignmentFixture()

	_, err := svc.Assign(context.Background(), adminScope(), AssignRequest{
		TeacherID:            "t-1",
		ResponsibilityTypeID: "type-2",
		Year:                 2026,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestAssignmentServiceAssignScopeForbidden(t *testing.T) {
	svc, _, _, _ := newAssignmentFixture()
	scope := models.NewCampusScope(models.RoleIncharge, "campus-2")

	_, err := svc.Assign(context.Background(), scope, AssignRequest{
		TeacherID:            "t-1",
		ResponsibilityTypeID: "type-1",
		Year:                 2026,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestAssignmentServiceScopedGet(t *testing.T) {
	svc, repo, _, _ := newAssignmentFixture()
	campus := "campus-1"
	repo.assignments = map[string]models.Assignment{
		"a-1": {ID: "a-1", TeacherID: "t-1", TeacherCampusID: &campus, Year: 2026, Status: models.AssignmentAssigned},
	}

	detail, err := svc.Get(context.Background(), models.NewCampusScope(models.RoleIncharge, "campus-1"), "a-1")
	require.NoError(t, err)
	assert.Equal(t, "a-1", detail.ID)

	_, err = svc.Get(context.Background(), models.NewCampusScope(models.RoleIncharge, "campus-2"), "a-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestAssignmentServiceUpdateStatus(t *testing.T) {
	svc, repo, _, _ := newAssignmentFixture()
	campus := "campus-1"
	repo.assignments = map[string]models.Assignment{
		"a-1": {ID: "a-1", TeacherID: "t-1", TeacherCampusID: &campus, Year: 2026, Status: models.AssignmentAssigned},
	}

	err := svc.UpdateStatus(context.Background(), adminScope(), "a-1", UpdateAssignmentStatusRequest{Status: models.AssignmentCompleted})
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentCompleted, repo.assignments["a-1"].Status)
}

func TestAssignmentServiceListPassesFilterThrough(t *testing.T) {
	svc, repo, _, _ := newAssignmentFixture()
	campus := "campus-1"
	repo.assignments = map[string]models.Assignment{
		"a-1": {ID: "a-1", TeacherID: "t-1", TeacherCampusID: &campus, Year: 2026, Status: models.AssignmentAssigned},
		"a-2": {ID: "a-2", TeacherID: "t-2", Year: 2025, Status: models.AssignmentCancelled},
	}

	details, err := svc.List(context.Background(), adminScope(), models.AssignmentFilter{
		Year:   2026,
		Status: models.AssignmentAssigned,
		TypeID: "type-1",
	})
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "a-1", details[0].ID)
	assert.Equal(t, "type-1", repo.lastFilter.TypeID)
	assert.Empty(t, repo.lastFilter.CampusID)
}

func TestAssignmentServiceListPinsInchargeCampus(t *testing.T) {
	svc, repo, _, _ := newAssignmentFixture()

	scope := models.NewCampusScope(models.RoleIncharge, "campus-1")
	_, err := svc.List(context.Background(), scope, models.AssignmentFilter{CampusID: "campus-2"})
	require.NoError(t, err)
	assert.Equal(t, "campus-1", repo.lastFilter.CampusID)
}
