package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ppdb-selection-api/internal/models"
	appErrors "github.com/noah-isme/ppdb-selection-api/pkg/errors"
)

type periodRepo interface {
	List(ctx context.Context, filter models.PeriodFilter) ([]models.AdmissionPeriod, int, error)
	FindByID(ctx context.Context, id string) (*models.AdmissionPeriod, error)
	Create(ctx context.Context, period *models.AdmissionPeriod) error
	Update(ctx context.Context, period *models.AdmissionPeriod) error
	UpdateStatus(ctx context.Context, id string, status models.PeriodStatus) error
}

// CreatePeriodRequest describes the create payload.
type CreatePeriodRequest struct {
	Name         string    `json:"name" validate:"required"`
	AcademicYear string    `json:"academic_year" validate:"required"`
	StartDate    time.Time `json:"start_date" validate:"required"`
	EndDate      time.Time `json:"end_date" validate:"required"`
}

// UpdatePeriodRequest describes the update payload.
type UpdatePeriodRequest struct {
	Name         string    `json:"name" validate:"required"`
	AcademicYear string    `json:"academic_year" validate:"required"`
	StartDate    time.Time `json:"start_date" validate:"required"`
	EndDate      time.Time `json:"end_date" validate:"required"`
	Status       string    `json:"status" validate:"required"`
}

// PeriodService manages admission periods.
type PeriodService struct {
	repo      periodRepo
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPeriodService constructs the service.
func NewPeriodService(repo periodRepo, validate *validator.Validate, logger *zap.Logger) *PeriodService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PeriodService{repo: repo, validator: validate, logger: logger}
}

// List returns periods with pagination.
func (s *PeriodService) List(ctx context.Context, filter models.PeriodFilter) ([]models.AdmissionPeriod, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list periods")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return rows, pagination, nil
}

// Get returns a period by id.
func (s *PeriodService) Get(ctx context.Context, id string) (*models.AdmissionPeriod, error) {
	period, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "admission period not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load period")
	}
	return period, nil
}

// Create registers a new admission period.
func (s *PeriodService) Create(ctx context.Context, req CreatePeriodRequest) (*models.AdmissionPeriod, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid period payload")
	}
	if !req.EndDate.After(req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must be after start_date")
	}
	period := &models.AdmissionPeriod{
		Name:         req.Name,
		AcademicYear: req.AcademicYear,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Status:       models.PeriodStatusDraft,
	}
	if err := s.repo.Create(ctx, period); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create period")
	}
	return period, nil
}

// Update modifies an existing period. Announced periods stay frozen.
func (s *PeriodService) Update(ctx context.Context, id string, req UpdatePeriodRequest) (*models.AdmissionPeriod, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid period payload")
	}
	status := models.PeriodStatus(req.Status)
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown period status")
	}
	if !req.EndDate.After(req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must be after start_date")
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status == models.PeriodStatusAnnounced && status != models.PeriodStatusAnnounced {
		return nil, appErrors.Clone(appErrors.ErrPeriodAnnounced, "announced period cannot be reopened")
	}
	existing.Name = req.Name
	existing.AcademicYear = req.AcademicYear
	existing.StartDate = req.StartDate
	existing.EndDate = req.EndDate
	existing.Status = status
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update period")
	}
	return existing, nil
}

// Close flips an open period to CLOSED, the precondition for running
// selections across its paths.
func (s *PeriodService) Close(ctx context.Context, id string) (*models.AdmissionPeriod, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch existing.Status {
	case models.PeriodStatusOpen:
	case models.PeriodStatusClosed:
		return existing, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrInvalidStatus, "only open periods can be closed")
	}
	if err := s.repo.UpdateStatus(ctx, id, models.PeriodStatusClosed); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to close period")
	}
	existing.Status = models.PeriodStatusClosed
	return existing, nil
}
