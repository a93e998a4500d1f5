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

type responsibilityTypeRepository interface {
	List(ctx context.Context) ([]models.ResponsibilityType, error)
	FindByID(ctx context.Context, id string) (*models.ResponsibilityType, error)
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)
	Create(ctx context.Context, rt *models.ResponsibilityType) error
	Update(ctx context.Context, rt *models.ResponsibilityType) error
	Delete(ctx context.Context, id string) error
}

// CreateResponsibilityTypeRequest holds payload for creating duty types.
type CreateResponsibilityTypeRequest struct {
	Name                 string                        `json:"name" validate:"required"`
	Code                 *string                       `json:"code"`
	Description          *string                       `json:"description"`
	Category             models.ResponsibilityCategory `json:"category" validate:"required,oneof=Examination Administrative Academic Co-curricular Other"`
	RequiresClassSubject bool                          `json:"requires_class_subject"`
}

// UpdateResponsibilityTypeRequest holds payload for updating duty types.
type UpdateResponsibilityTypeRequest struct {
	Name                 string                        `json:"name" validate:"required"`
	Code                 *string                       `json:"code"`
	Description          *string                       `json:"description"`
	Category             models.ResponsibilityCategory `json:"category" validate:"required,oneof=Examination Administrative Academic Co-curricular Other"`
	RequiresClassSubject bool                          `json:"requires_class_subject"`
}

// ResponsibilityTypeService handles duty type catalog use-cases.
type ResponsibilityTypeService struct {
	repo      responsibilityTypeRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewResponsibilityTypeService constructs the responsibility type service.
func NewResponsibilityTypeService(repo responsibilityTypeRepository, validate *validator.Validate, logger *zap.Logger) *ResponsibilityTypeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResponsibilityTypeService{repo: repo, validator: validate, logger: logger}
}

// List returns all duty types ordered by name.
func (s *ResponsibilityTypeService) List(ctx context.Context) ([]models.ResponsibilityType, error) {
	types, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list responsibility types")
	}
	return types, nil
}

// Get returns one duty type.
func (s *ResponsibilityTypeService) Get(ctx context.Context, id string) (*models.ResponsibilityType, error) {
	rt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "responsibility type not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load responsibility type")
	}
	return rt, nil
}

// Create registers a duty type.
func (s *ResponsibilityTypeService) Create(ctx context.Context, req CreateResponsibilityTypeRequest) (*models.ResponsibilityType, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid responsibility type payload")
	}
	exists, err := s.repo.ExistsByName(ctx, req.Name, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate responsibility type name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "responsibility type name already used")
	}
	rt := &models.ResponsibilityType{
		Name:                 req.Name,
		Code:                 req.Code,
		Description:          req.Description,
		Category:             req.Category,
		RequiresClassSubject: req.RequiresClassSubject,
	}
	if err := s.repo.Create(ctx, rt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create responsibility type")
	}
	return rt, nil
}

// Update modifies a duty type.
func (s *ResponsibilityTypeService) Update(ctx context.Context, id string, req UpdateResponsibilityTypeRequest) (*models.ResponsibilityType, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid responsibility type payload")
	}
	rt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "responsibility type not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load responsibility type")
	}
	exists, err := s.repo.ExistsByName(ctx, req.Name, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate responsibility type name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "responsibility type name already used")
	}
	rt.Name = req.Name
	rt.Code = req.Code
	rt.Description = req.Description
	rt.Category = req.Category
	rt.RequiresClassSubject = req.RequiresClassSubject
	if err := s.repo.Update(ctx, rt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update responsibility type")
	}
	return rt, nil
}

// Delete removes a duty type.
func (s *ResponsibilityTypeService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "responsibility type not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete responsibility type")
	}
	return nil
}
