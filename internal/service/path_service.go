package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ppdb-selection-api/internal/models"
	appErrors "github.com/noah-isme/ppdb-selection-api/pkg/errors"
)

type pathRepo interface {
	List(ctx context.Context, filter models.PathFilter) ([]models.AdmissionPath, int, error)
	FindByID(ctx context.Context, id string) (*models.AdmissionPath, error)
	Create(ctx context.Context, path *models.AdmissionPath) error
	Update(ctx context.Context, path *models.AdmissionPath) error
}

type pathPeriodReader interface {
	FindByID(ctx context.Context, id string) (*models.AdmissionPeriod, error)
}

// CreatePathRequest describes the create payload.
type CreatePathRequest struct {
	PeriodID          string         `json:"period_id" validate:"required"`
	Name              string         `json:"name" validate:"required"`
	Type              string         `json:"type" validate:"required"`
	Quota             int            `json:"quota" validate:"gte=0"`
	MinScore          *float64       `json:"min_score"`
	MaxDistanceKM     *float64       `json:"max_distance_km"`
	SelectionCriteria models.JSONMap `json:"selection_criteria"`
	ReserveCount      int            `json:"reserve_count" validate:"gte=0"`
}

// UpdatePathRequest describes the update payload.
type UpdatePathRequest struct {
	Name              string         `json:"name" validate:"required"`
	Type              string         `json:"type" validate:"required"`
	Quota             int            `json:"quota" validate:"gte=0"`
	MinScore          *float64       `json:"min_score"`
	MaxDistanceKM     *float64       `json:"max_distance_km"`
	SelectionCriteria models.JSONMap `json:"selection_criteria"`
	ReserveCount      int            `json:"reserve_count" validate:"gte=0"`
}

// PathService manages admission paths.
type PathService struct {
	repo      pathRepo
	periods   pathPeriodReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPathService constructs the service.
func NewPathService(repo pathRepo, periods pathPeriodReader, validate *validator.Validate, logger *zap.Logger) *PathService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PathService{repo: repo, periods: periods, validator: validate, logger: logger}
}

// List returns paths with pagination.
func (s *PathService) List(ctx context.Context, filter models.PathFilter) ([]models.AdmissionPath, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list paths")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return rows, pagination, nil
}

// Get returns a path by id.
func (s *PathService) Get(ctx context.Context, id string) (*models.AdmissionPath, error) {
	path, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "admission path not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load path")
	}
	return path, nil
}

// Create registers a new admission path in a period.
func (s *PathService) Create(ctx context.Context, req CreatePathRequest) (*models.AdmissionPath, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid path payload")
	}
	pathType := models.PathType(strings.ToUpper(req.Type))
	if !pathType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown path type")
	}
	if err := validateCriteria(req.SelectionCriteria); err != nil {
		return nil, err
	}
	if _, err := s.periods.FindByID(ctx, req.PeriodID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "admission period not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load period")
	}
	path := &models.AdmissionPath{
		PeriodID:          req.PeriodID,
		Name:              req.Name,
		Type:              pathType,
		Quota:             req.Quota,
		MinScore:          req.MinScore,
		MaxDistanceKM:     req.MaxDistanceKM,
		SelectionCriteria: req.SelectionCriteria,
		ReserveCount:      req.ReserveCount,
	}
	if err := s.repo.Create(ctx, path); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create path")
	}
	return path, nil
}

// Update modifies an existing path.
func (s *PathService) Update(ctx context.Context, id string, req UpdatePathRequest) (*models.AdmissionPath, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid path payload")
	}
	pathType := models.PathType(strings.ToUpper(req.Type))
	if !pathType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown path type")
	}
	if err := validateCriteria(req.SelectionCriteria); err != nil {
		return nil, err
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	existing.Name = req.Name
	existing.Type = pathType
	existing.Quota = req.Quota
	existing.MinScore = req.MinScore
	existing.MaxDistanceKM = req.MaxDistanceKM
	existing.SelectionCriteria = req.SelectionCriteria
	existing.ReserveCount = req.ReserveCount
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update path")
	}
	return existing, nil
}

func validateCriteria(criteria models.JSONMap) error {
	if criteria == nil {
		return nil
	}
	for key, weight := range criteria {
		switch key {
		case models.CriteriaAcademic, models.CriteriaAchievement, models.CriteriaDistance:
		default:
			return appErrors.Clone(appErrors.ErrInvalidWeights, "unknown criteria key "+key)
		}
		if weight < 0 {
			return appErrors.Clone(appErrors.ErrInvalidWeights, "criteria weight must not be negative")
		}
	}
	return nil
}
