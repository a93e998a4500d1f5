package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/frii-edu/examiner-api/internal/models"
	"github.com/frii-edu/examiner-api/internal/repository"
	appErrors "github.com/frii-edu/examiner-api/pkg/errors"
)

type assignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	ExistsActiveDuplicate(ctx context.Context, assignment *models.Assignment) (bool, error)
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.AssignmentDetail, error)
	ListByTeacher(ctx context.Context, teacherID string, year int) ([]models.AssignmentDetail, error)
	FindDetail(ctx context.Context, id string) (*models.AssignmentDetail, error)
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	UpdateStatus(ctx context.Context, id string, status models.AssignmentStatus) error
	Delete(ctx context.Context, id string) error
}

type assignmentTeacherReader interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type assignmentTypeReader interface {
	FindByID(ctx context.Context, id string) (*models.ResponsibilityType, error)
}

type assignmentLeaveReader interface {
	HasGrantedLeave(ctx context.Context, teacherID, typeID string, year int) (bool, error)
}

// AssignRequest holds payload for assigning a duty.
type AssignRequest struct {
	TeacherID            string  `json:"teacher_id" validate:"required"`
	ResponsibilityTypeID string  `json:"responsibility_type_id" validate:"required"`
	Year                 int     `json:"year" validate:"required,min=2000,max=2100"`
	TargetClassID        *string `json:"target_class_id"`
	TargetSubjectID      *string `json:"target_subject_id"`
	Notes                *string `json:"notes"`
}

// UpdateAssignmentStatusRequest transitions an assignment lifecycle state.
type UpdateAssignmentStatusRequest struct {
	Status models.AssignmentStatus `json:"status" validate:"required,oneof=Assigned Confirmed Cancelled Completed"`
}

// AssignmentService handles duty assignment use-cases.
type AssignmentService struct {
	repo      assignmentRepository
	teachers  assignmentTeacherReader
	types     assignmentTypeReader
	leaves    assignmentLeaveReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService constructs the assignment service.
func NewAssignmentService(repo assignmentRepository, teachers assignmentTeacherReader, types assignmentTypeReader, leaves assignmentLeaveReader, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{repo: repo, teachers: teachers, types: types, leaves: leaves, validator: validate, logger: logger}
}

// Assign creates a duty assignment after running the conflict checks: the
// teacher and type must exist, the teacher must belong to a campus, no
// granted leave may cover the (teacher, type, year) tuple, and the exact
// tuple must not already hold a live assignment.
func (s *AssignmentService) Assign(ctx context.Context, scope models.CampusScope, req AssignRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	var teacher *models.Teacher
	var rType *models.ResponsibilityType

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.teachers.FindByID(gctx, req.TeacherID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
		}
		teacher = t
		return nil
	})
	g.Go(func() error {
		rt, err := s.types.FindByID(gctx, req.ResponsibilityTypeID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "responsibility type not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load responsibility type")
		}
		rType = rt
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if !scope.Allows(teacher.CampusID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "teacher outside caller scope")
	}
	if teacher.CampusID == "" {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "teacher has no campus assigned")
	}
	if rType.RequiresClassSubject && (req.TargetClassID == nil || req.TargetSubjectID == nil) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "responsibility type requires class and subject")
	}

	blocked, err := s.leaves.HasGrantedLeave(ctx, req.TeacherID, req.ResponsibilityTypeID, req.Year)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check leaves")
	}
	if blocked {
		return nil, appErrors.Clone(appErrors.ErrConflict, "teacher has a granted leave for this responsibility and year")
	}

	campusID := teacher.CampusID
	assignment := &models.Assignment{
		TeacherID:            req.TeacherID,
		TeacherCampusID:      &campusID,
		ResponsibilityTypeID: req.ResponsibilityTypeID,
		Year:                 req.Year,
		TargetClassID:        req.TargetClassID,
		TargetSubjectID:      req.TargetSubjectID,
		Status:               models.AssignmentAssigned,
		Notes:                req.Notes,
	}

	duplicate, err := s.repo.ExistsActiveDuplicate(ctx, assignment)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check duplicate assignments")
	}
	if duplicate {
		return nil, appErrors.Clone(appErrors.ErrConflict, "assignment already exists for this teacher, responsibility and year")
	}

	if err := s.repo.Create(ctx, assignment); err != nil {
		// Two concurrent requests can pass the duplicate check together; the
		// unique index catches the loser.
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "assignment already exists for this teacher, responsibility and year")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	return assignment, nil
}

// List returns assignments across teachers narrowed by the filter. Incharge
// callers are pinned to their own campus regardless of the requested one.
func (s *AssignmentService) List(ctx context.Context, scope models.CampusScope, filter models.AssignmentFilter) ([]models.AssignmentDetail, error) {
	if scope.Restricted() {
		filter.CampusID = scope.CampusID
	}
	details, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return details, nil
}

// ListByTeacher returns a teacher's assignments, optionally scoped to a year.
func (s *AssignmentService) ListByTeacher(ctx context.Context, scope models.CampusScope, teacherID string, year int) ([]models.AssignmentDetail, error) {
	teacher, err := s.teachers.FindByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if !scope.Allows(teacher.CampusID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "teacher outside caller scope")
	}
	details, err := s.repo.ListByTeacher(ctx, teacherID, year)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return details, nil
}

// Get returns one assignment with names resolved.
func (s *AssignmentService) Get(ctx context.Context, scope models.CampusScope, id string) (*models.AssignmentDetail, error) {
	detail, err := s.repo.FindDetail(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	if !s.scopeAllowsAssignment(ctx, scope, &detail.Assignment) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "assignment outside caller scope")
	}
	return detail, nil
}

// UpdateStatus transitions the lifecycle state of an assignment.
func (s *AssignmentService) UpdateStatus(ctx context.Context, scope models.CampusScope, id string, req UpdateAssignmentStatusRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	if !s.scopeAllowsAssignment(ctx, scope, assignment) {
		return appErrors.Clone(appErrors.ErrForbidden, "assignment outside caller scope")
	}
	if err := s.repo.UpdateStatus(ctx, id, req.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assignment status")
	}
	return nil
}

// Delete removes an assignment.
func (s *AssignmentService) Delete(ctx context.Context, scope models.CampusScope, id string) error {
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	if !s.scopeAllowsAssignment(ctx, scope, assignment) {
		return appErrors.Clone(appErrors.ErrForbidden, "assignment outside caller scope")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	return nil
}

// scopeAllowsAssignment resolves the assignment's effective campus: the
// snapshot when present, otherwise the teacher's current campus.
func (s *AssignmentService) scopeAllowsAssignment(ctx context.Context, scope models.CampusScope, assignment *models.Assignment) bool {
	if !scope.Restricted() {
		return true
	}
	if assignment.TeacherCampusID != nil {
		return scope.Allows(*assignment.TeacherCampusID)
	}
	teacher, err := s.teachers.FindByID(ctx, assignment.TeacherID)
	if err != nil {
		s.logger.Warn("failed to resolve assignment campus", zap.Error(err))
		return false
	}
	return scope.Allows(teacher.CampusID)
}
