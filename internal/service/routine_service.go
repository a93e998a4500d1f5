package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/frii-edu/examiner-api/internal/models"
	appErrors "github.com/frii-edu/examiner-api/pkg/errors"
)

type routineRepository interface {
	Exists(ctx context.Context, teacherID string, year int, classID, subjectID string) (bool, error)
	Insert(ctx context.Context, entry *models.RoutineEntry) error
	UpsertForTeacherYear(ctx context.Context, teacherID string, year int, entries []models.RoutineEntry) error
	FindEntryTeacher(ctx context.Context, entryID string) (string, error)
	DeleteEntry(ctx context.Context, entryID string) error
	ListByTeacher(ctx context.Context, teacherID string, year int) ([]models.RoutineEntryDetail, error)
	ListTeachers(ctx context.Context, year int, classID, subjectID, campusID string) ([]models.RoutineTeacher, error)
}

type routineTeacherRepository interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	ListAll(ctx context.Context) ([]models.Teacher, error)
	Create(ctx context.Context, teacher *models.Teacher) error
}

type routineClassReader interface {
	List(ctx context.Context) ([]models.Class, error)
}

type routineSubjectReader interface {
	List(ctx context.Context) ([]models.Subject, error)
}

// AddRoutineEntryRequest holds payload for a manual routine entry.
type AddRoutineEntryRequest struct {
	TeacherID string `json:"teacher_id" validate:"required"`
	Year      int    `json:"year" validate:"required,min=2000,max=2100"`
	ClassID   string `json:"class_id" validate:"required"`
	SubjectID string `json:"subject_id" validate:"required"`
}

// RoutineFilterRequest selects teachers by their routine slots.
type RoutineFilterRequest struct {
	Year      int    `form:"year" validate:"required,min=2000,max=2100"`
	ClassID   string `form:"class_id"`
	SubjectID string `form:"subject_id"`
}

// RoutineService maintains the teaching routine that feeds duty eligibility.
type RoutineService struct {
	repo      routineRepository
	teachers  routineTeacherRepository
	classes   routineClassReader
	subjects  routineSubjectReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRoutineService constructs the routine service.
func NewRoutineService(repo routineRepository, teachers routineTeacherRepository, classes routineClassReader, subjects routineSubjectReader, validate *validator.Validate, logger *zap.Logger) *RoutineService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoutineService{repo: repo, teachers: teachers, classes: classes, subjects: subjects, validator: validate, logger: logger}
}

// Add inserts one routine entry. The manual path rejects duplicates; only
// the bulk upload overwrites.
func (s *RoutineService) Add(ctx context.Context, scope models.CampusScope, req AddRoutineEntryRequest) (*models.RoutineEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid routine payload")
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

	exists, err := s.repo.Exists(ctx, req.TeacherID, req.Year, req.ClassID, req.SubjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check routine entry")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "routine entry already exists")
	}

	entry := &models.RoutineEntry{
		TeacherID: req.TeacherID,
		Year:      req.Year,
		ClassID:   req.ClassID,
		SubjectID: req.SubjectID,
	}
	if err := s.repo.Insert(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to insert routine entry")
	}
	return entry, nil
}

// DeleteEntry removes one routine entry within the caller's scope.
func (s *RoutineService) DeleteEntry(ctx context.Context, scope models.CampusScope, entryID string) error {
	teacherID, err := s.repo.FindEntryTeacher(ctx, entryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "routine entry not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load routine entry")
	}
	teacher, err := s.teachers.FindByID(ctx, teacherID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if !scope.Allows(teacher.CampusID) {
		return appErrors.Clone(appErrors.ErrForbidden, "routine entry outside caller scope")
	}
	if err := s.repo.DeleteEntry(ctx, entryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "routine entry not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete routine entry")
	}
	return nil
}

// ListByTeacher returns a teacher's routine with a "CLASS - Subject" display
// string per entry.
func (s *RoutineService) ListByTeacher(ctx context.Context, scope models.CampusScope, teacherID string, year int) ([]models.RoutineEntryDetail, error) {
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
	entries, err := s.repo.ListByTeacher(ctx, teacherID, year)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list routine entries")
	}
	for i := range entries {
		entries[i].Display = fmt.Sprintf("%s - %s", entries[i].ClassName, entries[i].SubjectName)
	}
	return entries, nil
}

// Filter returns teachers whose routine covers the year, class and subject.
// Incharge callers only see their own campus.
func (s *RoutineService) Filter(ctx context.Context, scope models.CampusScope, req RoutineFilterRequest) ([]models.RoutineTeacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid routine filter")
	}
	campusID := ""
	if scope.Restricted() {
		campusID = scope.CampusID
	}
	teachers, err := s.repo.ListTeachers(ctx, req.Year, req.ClassID, req.SubjectID, campusID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to filter routine teachers")
	}
	return teachers, nil
}

// BulkUpload ingests a spreadsheet of routine rows. Expected columns:
// teacher id, teacher name, class, subject. Rows are grouped per teacher and
// each uploaded (class, subject) pair overwrites the matching entry while
// entries the upload does not mention are kept. Unknown teachers are
// created when the name column is filled; otherwise the row is reported as
// an error. Incharge uploads are locked to the caller's campus.
func (s *RoutineService) BulkUpload(ctx context.Context, scope models.CampusScope, year int, campusID string, reader io.Reader) (*models.RoutineBulkResult, error) {
	if year < 2000 || year > 2100 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "year is required")
	}
	if scope.Restricted() {
		campusID = scope.CampusID
	}
	if campusID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "campus_id is required")
	}

	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to open spreadsheet")
	}
	defer f.Close() //nolint:errcheck

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read spreadsheet rows")
	}
	if len(rows) < 2 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "spreadsheet has no data rows")
	}

	lookup, err := s.buildLookups(ctx)
	if err != nil {
		return nil, err
	}

	result := &models.RoutineBulkResult{}
	perTeacher := make(map[string][]models.RoutineEntry)
	var teacherOrder []string
	seen := make(map[string]bool)

	for i, row := range rows[1:] {
		rowNum := i + 2 // header occupies row 1
		code := cell(row, 0)
		name := cell(row, 1)
		className := strings.ToUpper(cell(row, 2))
		subjectName := cell(row, 3)

		if code == "" && name == "" && className == "" && subjectName == "" {
			continue
		}
		if code == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: teacher id is missing", rowNum))
			continue
		}
		classID, ok := lookup.classes[className]
		if !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: unknown class %q", rowNum, cell(row, 2)))
			continue
		}
		subjectID, ok := lookup.subjects[strings.ToLower(subjectName)]
		if !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: unknown subject %q", rowNum, subjectName))
			continue
		}

		teacher, ok := lookup.teachers[code]
		if !ok {
			if name == "" {
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: unknown teacher %q and no name to create one", rowNum, code))
				continue
			}
			created := &models.Teacher{
				TeacherID: code,
				Name:      name,
				CampusID:  campusID,
				Active:    true,
			}
			if err := s.teachers.Create(ctx, created); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: failed to create teacher %q", rowNum, code))
				s.logger.Warn("bulk upload teacher create failed", zap.String("teacher_id", code), zap.Error(err))
				continue
			}
			lookup.teachers[code] = *created
			teacher = *created
			result.TeachersCreated++
		}
		if teacher.CampusID != campusID {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: teacher %q belongs to another campus", rowNum, code))
			continue
		}

		dedupeKey := fmt.Sprintf("%s|%s|%s", teacher.ID, classID, subjectID)
		if seen[dedupeKey] {
			continue
		}
		seen[dedupeKey] = true

		if _, ok := perTeacher[teacher.ID]; !ok {
			teacherOrder = append(teacherOrder, teacher.ID)
		}
		perTeacher[teacher.ID] = append(perTeacher[teacher.ID], models.RoutineEntry{
			ClassID:   classID,
			SubjectID: subjectID,
		})
	}

	for _, teacherID := range teacherOrder {
		entries := perTeacher[teacherID]
		if err := s.repo.UpsertForTeacherYear(ctx, teacherID, year, entries); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to sync routine for teacher %s", teacherID))
			s.logger.Warn("bulk upload routine sync failed", zap.String("teacher_id", teacherID), zap.Error(err))
			continue
		}
		result.Synced += len(entries)
	}

	return result, nil
}

type routineLookups struct {
	teachers map[string]models.Teacher
	classes  map[string]string
	subjects map[string]string
}

func (s *RoutineService) buildLookups(ctx context.Context) (*routineLookups, error) {
	teachers, err := s.teachers.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}
	classes, err := s.classes.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classes")
	}
	subjects, err := s.subjects.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subjects")
	}

	lookup := &routineLookups{
		teachers: make(map[string]models.Teacher, len(teachers)),
		classes:  make(map[string]string, len(classes)),
		subjects: make(map[string]string, len(subjects)),
	}
	for _, t := range teachers {
		lookup.teachers[t.TeacherID] = t
	}
	for _, c := range classes {
		lookup.classes[strings.ToUpper(c.Name)] = c.ID
	}
	for _, sub := range subjects {
		lookup.subjects[strings.ToLower(sub.Name)] = sub.ID
	}
	return lookup, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
