package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frii-edu/examiner-api/internal/models"
	appErrors "github.com/frii-edu/examiner-api/pkg/errors"
)

type mockLeaveRepo struct {
	leaves  map[string]models.Leave
	details []models.LeaveDetail
	granted map[string]bool
	nextID  int
}

func (m *mockLeaveRepo) Create(ctx context.Context, leave *models.Leave) error {
	if m.leaves == nil {
		m.leaves = make(map[string]models.Leave)
	}
	m.nextID++
	leave.ID = "leave-1"
	m.leaves[leave.ID] = *leave
	return nil
}

func (m *mockLeaveRepo) List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveDetail, error) {
	return m.details, nil
}

func (m *mockLeaveRepo) FindByID(ctx context.Context, id string) (*models.Leave, error) {
	if l, ok := m.leaves[id]; ok {
		return &l, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockLeaveRepo) UpdateStatus(ctx context.Context, id string, status models.LeaveStatus, decidedBy string) error {
	l, ok := m.leaves[id]
	if !ok {
		return sql.ErrNoRows
	}
	l.Status = status
	l.DecidedBy = &decidedBy
	m.leaves[id] = l
	return nil
}

func (m *mockLeaveRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.leaves[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.leaves, id)
	return nil
}

func (m *mockLeaveRepo) HasGrantedLeave(ctx context.Context, teacherID, typeID string, year int) (bool, error) {
	return m.granted[teacherID+"|"+typeID], nil
}

type mockLeaveTeachers struct {
	byID map[string]models.Teacher
}

func (m *mockLeaveTeachers) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if t, ok := m.byID[id]; ok {
		return &t, nil
	}
	return nil, sql.ErrNoRows
}

type mockLeaveTypes struct {
	byID map[string]models.ResponsibilityType
}

func (m *mockLeaveTypes) FindByID(ctx context.Context, id string) (*models.ResponsibilityType, error) {
	if rt, ok := m.byID[id]; ok {
		return &rt, nil
	}
	return nil, sql.ErrNoRows
}

func newLeaveFixture() (*LeaveService, *mockLeaveRepo) {
	repo := &mockLeaveRepo{granted: make(map[string]bool)}
	teachers := &mockLeaveTeachers{byID: map[string]models.Teacher{
		"t-1": {ID: "t-1", Name: "Alice", CampusID: "campus-1", Active: true},
		"t-2": {ID: "t-2", Name: "Bob", CampusID: "campus-2", Active: true},
	}}
	types := &mockLeaveTypes{byID: map[string]models.ResponsibilityType{
		"type-1": {ID: "type-1", Code: strPtr("EXM"), Name: "Examiner"},
	}}
	svc := NewLeaveService(repo, teachers, types, nil, nil)
	return svc, repo
}

func TestLeaveServiceCreateDefaultsToGranted(t *testing.T) {
	svc, repo := newLeaveFixture()

	leave, err := svc.Create(context.Background(), adminScope(), CreateLeaveRequest{
		TeacherID: "t-1", ResponsibilityTypeID: "type-1", Year: 2026,
	})
	require.NoError(t, err)
	assert.Equal(t, models.LeaveGranted, leave.Status)
	assert.Len(t, repo.leaves, 1)
}

func TestLeaveServiceCreateDuplicateGranted(t *testing.T) {
	svc, repo := newLeaveFixture()
	repo.granted["t-1|type-1"] = true

	_, err := svc.Create(context.Background(), adminScope(), CreateLeaveRequest{
		TeacherID: "t-1", ResponsibilityTypeID: "type-1", Year: 2026,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestLeaveServiceCreateOutsideScope(t *testing.T) {
	svc, _ := newLeaveFixture()
	scope := models.NewCampusScope(models.RoleIncharge, "campus-1")

	_, err := svc.Create(context.Background(), scope, CreateLeaveRequest{
		TeacherID: "t-2", ResponsibilityTypeID: "type-1", Year: 2026,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestLeaveServiceCreateUnknownType(t *testing.T) {
	svc, _ := newLeaveFixture()

	_, err := svc.Create(context.Background(), adminScope(), CreateLeaveRequest{
		TeacherID: "t-1", ResponsibilityTypeID: "type-missing", Year: 2026,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestLeaveServiceListInchargeFiltersForeignCampus(t *testing.T) {
	svc, repo := newLeaveFixture()
	repo.details = []models.LeaveDetail{
		{Leave: models.Leave{ID: "l-1", TeacherID: "t-1"}, TeacherName: "Alice"},
		{Leave: models.Leave{ID: "l-2", TeacherID: "t-2"}, TeacherName: "Bob"},
	}

	leaves, err := svc.List(context.Background(), models.NewCampusScope(models.RoleIncharge, "campus-1"), models.LeaveFilter{})
	require.NoError(t, err)
	require.Len(t, leaves, 1)
	assert.Equal(t, "l-1", leaves[0].ID)
}

func TestLeaveServiceRejectRecordsDecider(t *testing.T) {
	svc, repo := newLeaveFixture()

	leave, err := svc.Create(context.Background(), adminScope(), CreateLeaveRequest{
		TeacherID: "t-1", ResponsibilityTypeID: "type-1", Year: 2026,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Reject(context.Background(), leave.ID, "admin-1"))
	stored := repo.leaves[leave.ID]
	assert.Equal(t, models.LeaveRejected, stored.Status)
	require.NotNil(t, stored.DecidedBy)
	assert.Equal(t, "admin-1", *stored.DecidedBy)
}

func TestLeaveServiceCheckConflict(t *testing.T) {
	svc, repo := newLeaveFixture()
	repo.granted["t-1|type-1"] = true

	result, err := svc.CheckConflict(context.Background(), "t-1", "type-1", 2026)
	require.NoError(t, err)
	assert.True(t, result.Blocked)

	result, err = svc.CheckConflict(context.Background(), "t-1", "type-1", 2027)
	require.NoError(t, err)
	assert.True(t, result.Blocked)

	_, err = svc.CheckConflict(context.Background(), "", "type-1", 2026)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
