package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/frii-edu/examiner-api/internal/models"
	appErrors "github.com/frii-edu/examiner-api/pkg/errors"
)

type leaveRepository interface {
	Create(ctx context.Context, leave *models.Leave) error
	List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveDetail, error)
	FindByID(ctx context.Context, id string) (*models.Leave, error)
	UpdateStatus(ctx context.Context, id string, status models.LeaveStatus, decidedBy string) error
	Delete(ctx context.Context, id string) error
	HasGrantedLeave(ctx context.Context, teacherID, typeID string, year int) (bool, error)
}

type leaveTeacherReader interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type leaveTypeReader interface {
	FindByID(ctx context.Context, id string) (*models.ResponsibilityType, error)
}

// CreateLeaveRequest holds payload for recording a leave.
type CreateLeaveRequest struct {
	TeacherID            string     `json:"teacher_id" validate:"required"`
	ResponsibilityTypeID string     `json:"responsibility_type_id" validate:"required"`
	Year                 int        `json:"year" validate:"required,min=2000,max=2100"`
	StartDate            *time.Time `json:"start_date"`
	EndDate              *time.Time `json:"end_date"`
	Reason               *string    `json:"reason"`
}

// LeaveConflictResult reports whether a granted leave blocks assignment.
type LeaveConflictResult struct {
	Blocked bool `json:"blocked"`
}

// LeaveService handles exemption use-cases.
type LeaveService struct {
	repo      leaveRepository
	teachers  leaveTeacherReader
	types     leaveTypeReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLeaveService constructs the leave service.
func NewLeaveService(repo leaveRepository, teachers leaveTeacherReader, types leaveTypeReader, validate *validator.Validate, logger *zap.Logger) *LeaveService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeaveService{repo: repo, teachers: teachers, types: types, validator: validate, logger: logger}
}

// Create records a leave. Leaves submitted through the admin surface start
// as Granted; they can be rejected afterwards.
func (s *LeaveService) Create(ctx context.Context, scope models.CampusScope, req CreateLeaveRequest) (*models.Leave, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid leave payload")
	}

	teacher, err := s.teachers.FindByID(ctx, req.TeacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if !scope.Allows(teacher.CampusID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "teacher outside caller scope")
	}
	if _, err := s.types.FindByID(ctx, req.ResponsibilityTypeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "responsibility type not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load responsibility type")
	}

	granted, err := s.repo.HasGrantedLeave(ctx, req.TeacherID, req.ResponsibilityTypeID, req.Year)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing leaves")
	}
	if granted {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a granted leave already covers this responsibility and year")
	}

	leave := &models.Leave{
		TeacherID:            req.TeacherID,
		ResponsibilityTypeID: req.ResponsibilityTypeID,
		Year:                 req.Year,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
		Reason:               req.Reason,
		Status:               models.LeaveGranted,
	}
	if err := s.repo.Create(ctx, leave); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create leave")
	}
	return leave, nil
}

// List returns leaves matching the filter within the caller's scope.
func (s *LeaveService) List(ctx context.Context, scope models.CampusScope, filter models.LeaveFilter) ([]models.LeaveDetail, error) {
	leaves, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list leaves")
	}
	if !scope.Restricted() {
		return leaves, nil
	}
	scoped := make([]models.LeaveDetail, 0, len(leaves))
	for _, l := range leaves {
		teacher, err := s.teachers.FindByID(ctx, l.TeacherID)
		if err != nil {
			continue
		}
		if scope.Allows(teacher.CampusID) {
			scoped = append(scoped, l)
		}
	}
	return scoped, nil
}

// Grant marks a leave as granted. Admin only, enforced at the route layer.
func (s *LeaveService) Grant(ctx context.Context, id, decidedBy string) error {
	return s.decide(ctx, id, models.LeaveGranted, decidedBy)
}

// Reject marks a leave as rejected.
func (s *LeaveService) Reject(ctx context.Context, id, decidedBy string) error {
	return s.decide(ctx, id, models.LeaveRejected, decidedBy)
}

func (s *LeaveService) decide(ctx context.Context, id string, status models.LeaveStatus, decidedBy string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "leave not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leave")
	}
	if err := s.repo.UpdateStatus(ctx, id, status, decidedBy); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "leave not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update leave status")
	}
	return nil
}

// Delete removes a leave record.
func (s *LeaveService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "leave not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete leave")
	}
	return nil
}

// CheckConflict reports whether a granted leave blocks assignment of the
// given responsibility type to the teacher in the year. Pure read.
func (s *LeaveService) CheckConflict(ctx context.Context, teacherID, typeID string, year int) (*LeaveConflictResult, error) {
	if teacherID == "" || typeID == "" || year <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "teacher_id, responsibility_type_id and year are required")
	}
	blocked, err := s.repo.HasGrantedLeave(ctx, teacherID, typeID, year)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check leave conflict")
	}
	return &LeaveConflictResult{Blocked: blocked}, nil
}
