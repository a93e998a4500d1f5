package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/frii-edu/examiner-api/internal/models"
	appErrors "github.com/frii-edu/examiner-api/pkg/errors"
)

type teacherRepository interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	ExistsByTeacherIDOrPhone(ctx context.Context, teacherID string, phone *string, excludeID string) (bool, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	DeleteWithRelations(ctx context.Context, id string) error
	AddReport(ctx context.Context, report *models.TeacherReport) error
	ListReports(ctx context.Context, teacherID string) ([]models.TeacherReport, error)
	DeleteReport(ctx context.Context, teacherID, reportID string) error
}

type teacherAssignmentReader interface {
	ListByTeacher(ctx context.Context, teacherID string, year int) ([]models.AssignmentDetail, error)
}

// CreateTeacherRequest holds payload for registering teachers.
type CreateTeacherRequest struct {
	TeacherID   string  `json:"teacher_id" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Phone       *string `json:"phone"`
	CampusID    string  `json:"campus_id" validate:"required"`
	Designation *string `json:"designation"`
}

// UpdateTeacherRequest holds payload for updating teachers.
type UpdateTeacherRequest struct {
	TeacherID   string  `json:"teacher_id" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Phone       *string `json:"phone"`
	CampusID    string  `json:"campus_id" validate:"required"`
	Designation *string `json:"designation"`
	Active      bool    `json:"active"`
}

// AddTeacherReportRequest holds payload for attaching a yearly report.
type AddTeacherReportRequest struct {
	Year                 int    `json:"year" validate:"required,min=2000,max=2100"`
	ResponsibilityTypeID string `json:"responsibility_type_id" validate:"required"`
	Report               string `json:"report" validate:"required"`
}

// TeacherProfile bundles a teacher with duty history grouped by year and the
// performance reports.
type TeacherProfile struct {
	Teacher     models.Teacher                  `json:"teacher"`
	Assignments []models.TeacherYearAssignments `json:"assignments"`
	Reports     []models.TeacherReport          `json:"reports"`
}

// TeacherService handles teacher roster use-cases. Every operation applies
// the caller's campus scope before touching records.
type TeacherService struct {
	repo        teacherRepository
	assignments teacherAssignmentReader
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewTeacherService constructs the teacher service.
func NewTeacherService(repo teacherRepository, assignments teacherAssignmentReader, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, assignments: assignments, validator: validate, logger: logger}
}

// List returns teachers visible to the caller's scope with pagination.
func (s *TeacherService) List(ctx context.Context, scope models.CampusScope, filter models.TeacherFilter) ([]models.Teacher, *models.Pagination, error) {
	if scope.Restricted() {
		filter.CampusID = scope.CampusID
	}
	teachers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return teachers, pagination, nil
}

// Get returns one teacher if the caller's scope allows it.
func (s *TeacherService) Get(ctx context.Context, scope models.CampusScope, id string) (*models.Teacher, error) {
	teacher, err := s.loadScoped(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	return teacher, nil
}

// Profile returns a teacher with duty history grouped by year, newest first,
// plus the yearly performance reports.
func (s *TeacherService) Profile(ctx context.Context, scope models.CampusScope, id string) (*TeacherProfile, error) {
	teacher, err := s.loadScoped(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	details, err := s.assignments.ListByTeacher(ctx, id, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher assignments")
	}

	var years []models.TeacherYearAssignments
	for _, d := range details {
		if len(years) == 0 || years[len(years)-1].Year != d.Year {
			years = append(years, models.TeacherYearAssignments{Year: d.Year})
		}
		last := &years[len(years)-1]
		last.Responsibilities = append(last.Responsibilities, models.TeacherDutySummary{
			AssignmentID: d.ID,
			TypeName:     d.TypeName,
			ClassName:    stringOr(d.ClassName, "N/A"),
			SubjectName:  stringOr(d.SubjectName, "N/A"),
			Status:       string(d.Status),
		})
	}

	reports, err := s.repo.ListReports(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher reports")
	}

	return &TeacherProfile{Teacher: *teacher, Assignments: years, Reports: reports}, nil
}

// Create registers a teacher. Incharge callers may only register into their
// own campus.
func (s *TeacherService) Create(ctx context.Context, scope models.CampusScope, req CreateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	if !scope.Allows(req.CampusID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "campus outside caller scope")
	}
	exists, err := s.repo.ExistsByTeacherIDOrPhone(ctx, req.TeacherID, req.Phone, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate teacher identity")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "teacher id or phone already used")
	}
	teacher := &models.Teacher{
		TeacherID:   req.TeacherID,
		Name:        req.Name,
		Phone:       req.Phone,
		CampusID:    req.CampusID,
		Designation: req.Designation,
		Active:      true,
	}
	if err := s.repo.Create(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher")
	}
	return teacher, nil
}

// Update modifies a teacher within the caller's scope.
func (s *TeacherService) Update(ctx context.Context, scope models.CampusScope, id string, req UpdateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	teacher, err := s.loadScoped(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if !scope.Allows(req.CampusID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "campus outside caller scope")
	}
	exists, err := s.repo.ExistsByTeacherIDOrPhone(ctx, req.TeacherID, req.Phone, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate teacher identity")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "teacher id or phone already used")
	}
	teacher.TeacherID = req.TeacherID
	teacher.Name = req.Name
	teacher.Phone = req.Phone
	teacher.CampusID = req.CampusID
	teacher.Designation = req.Designation
	teacher.Active = req.Active
	if err := s.repo.Update(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teacher")
	}
	return teacher, nil
}

// Delete removes a teacher along with every assignment, routine entry, leave
// and report referencing it. Admin only; the cascade is one transaction.
func (s *TeacherService) Delete(ctx context.Context, scope models.CampusScope, id string) error {
	if scope.Role != models.RoleAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "only admins can delete teachers")
	}
	if err := s.repo.DeleteWithRelations(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete teacher")
	}
	return nil
}

// AddReport attaches a yearly performance report to a teacher.
func (s *TeacherService) AddReport(ctx context.Context, scope models.CampusScope, teacherID, addedBy string, req AddTeacherReportRequest) (*models.TeacherReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report payload")
	}
	if _, err := s.loadScoped(ctx, scope, teacherID); err != nil {
		return nil, err
	}
	report := &models.TeacherReport{
		TeacherID:            teacherID,
		Year:                 req.Year,
		ResponsibilityTypeID: req.ResponsibilityTypeID,
		Report:               req.Report,
		AddedBy:              addedBy,
	}
	if err := s.repo.AddReport(ctx, report); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add teacher report")
	}
	return report, nil
}

// DeleteReport removes one performance report.
func (s *TeacherService) DeleteReport(ctx context.Context, scope models.CampusScope, teacherID, reportID string) error {
	if _, err := s.loadScoped(ctx, scope, teacherID); err != nil {
		return err
	}
	if err := s.repo.DeleteReport(ctx, teacherID, reportID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete teacher report")
	}
	return nil
}

func (s *TeacherService) loadScoped(ctx context.Context, scope models.CampusScope, id string) (*models.Teacher, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if !scope.Allows(teacher.CampusID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "teacher outside caller scope")
	}
	return teacher, nil
}

func stringOr(v *string, fallback string) string {
	if v == nil || *v == "" {
		return fallback
	}
	return *v
}
