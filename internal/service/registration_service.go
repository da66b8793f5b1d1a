package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ppdb-selection-api/internal/models"
	appErrors "github.com/noah-isme/ppdb-selection-api/pkg/errors"
)

type registrationRepo interface {
	List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, int, error)
	FindByID(ctx context.Context, id string) (*models.Registration, error)
	FindDetailByID(ctx context.Context, id string) (*models.RegistrationDetail, error)
	Create(ctx context.Context, detail *models.RegistrationDetail) error
	UpdateStatus(ctx context.Context, id string, status models.RegistrationStatus) error
}

type registrationPathReader interface {
	FindByID(ctx context.Context, id string) (*models.AdmissionPath, error)
}

// RegistrationScoreInput is one score row in the create payload.
type RegistrationScoreInput struct {
	Subject  string  `json:"subject" validate:"required"`
	Semester int     `json:"semester" validate:"gte=1,lte=6"`
	Type     string  `json:"type" validate:"required"`
	Value    float64 `json:"value" validate:"gte=0,lte=100"`
}

// RegistrationAchievementInput is one achievement row in the create payload.
type RegistrationAchievementInput struct {
	Name  string `json:"name" validate:"required"`
	Level string `json:"level" validate:"required"`
	Rank  int    `json:"rank" validate:"gte=1"`
}

// CreateRegistrationRequest describes the create payload.
type CreateRegistrationRequest struct {
	PathID       string                         `json:"path_id" validate:"required"`
	FullName     string                         `json:"full_name" validate:"required"`
	NISN         string                         `json:"nisn" validate:"required"`
	Email        string                         `json:"email" validate:"omitempty,email"`
	Gender       string                         `json:"gender" validate:"required,oneof=M F"`
	BirthDate    *time.Time                     `json:"birth_date"`
	DistanceKM   *float64                       `json:"distance_km"`
	Scores       []RegistrationScoreInput       `json:"scores" validate:"dive"`
	Achievements []RegistrationAchievementInput `json:"achievements" validate:"dive"`
}

// VerifyRegistrationRequest describes the verification decision payload.
type VerifyRegistrationRequest struct {
	Approved bool `json:"approved"`
}

// Achievement points per competition level. Points are fixed at data entry so
// the selection engine can rely on summing them without recomputation.
var achievementLevelPoints = map[string]float64{
	"SEKOLAH":       5,
	"KECAMATAN":     10,
	"KABUPATEN":     15,
	"PROVINSI":      25,
	"NASIONAL":      40,
	"INTERNASIONAL": 60,
}

func achievementRankFactor(rank int) float64 {
	switch rank {
	case 1:
		return 1.0
	case 2:
		return 0.8
	case 3:
		return 0.6
	default:
		return 0.4
	}
}

// RegistrationService manages candidate registrations and their verification.
type RegistrationService struct {
	repo      registrationRepo
	paths     registrationPathReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRegistrationService constructs the service.
func NewRegistrationService(repo registrationRepo, paths registrationPathReader, validate *validator.Validate, logger *zap.Logger) *RegistrationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{repo: repo, paths: paths, validator: validate, logger: logger}
}

// List returns registrations with pagination.
func (s *RegistrationService) List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registrations")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return rows, pagination, nil
}

// Get returns a registration with its scores and achievements.
func (s *RegistrationService) Get(ctx context.Context, id string) (*models.RegistrationDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}
	return detail, nil
}

// Create registers a candidate application on a path. Achievement points are
// derived here, at entry time, from the level and rank tables.
func (s *RegistrationService) Create(ctx context.Context, req CreateRegistrationRequest) (*models.RegistrationDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	path, err := s.paths.FindByID(ctx, req.PathID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "admission path not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load path")
	}

	detail := &models.RegistrationDetail{
		Registration: models.Registration{
			PeriodID:   path.PeriodID,
			PathID:     path.ID,
			FullName:   req.FullName,
			NISN:       req.NISN,
			Email:      req.Email,
			Gender:     req.Gender,
			BirthDate:  req.BirthDate,
			DistanceKM: req.DistanceKM,
			Status:     models.RegistrationStatusSubmitted,
		},
	}
	for _, score := range req.Scores {
		scoreType := models.ScoreType(strings.ToUpper(score.Type))
		if !scoreType.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown score type "+score.Type)
		}
		detail.Scores = append(detail.Scores, models.RegistrationScore{
			Subject:  score.Subject,
			Semester: score.Semester,
			Type:     scoreType,
			Value:    score.Value,
		})
	}
	for _, achievement := range req.Achievements {
		level := strings.ToUpper(achievement.Level)
		base, ok := achievementLevelPoints[level]
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown achievement level "+achievement.Level)
		}
		detail.Achievements = append(detail.Achievements, models.RegistrationAchievement{
			Name:   achievement.Name,
			Level:  level,
			Rank:   achievement.Rank,
			Points: base * achievementRankFactor(achievement.Rank),
		})
	}

	if err := s.repo.Create(ctx, detail); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create registration")
	}
	return detail, nil
}

// Verify applies the verification decision: SUBMITTED registrations move to
// VERIFIED when approved and REJECTED otherwise. Other statuses refuse the
// transition.
func (s *RegistrationService) Verify(ctx context.Context, id string, req VerifyRegistrationRequest) (*models.Registration, error) {
	registration, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}
	if registration.Status != models.RegistrationStatusSubmitted {
		return nil, appErrors.Clone(appErrors.ErrInvalidStatus, "only submitted registrations can be verified")
	}
	target := models.RegistrationStatusVerified
	if !req.Approved {
		target = models.RegistrationStatusRejected
	}
	if err := s.repo.UpdateStatus(ctx, id, target); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update registration status")
	}
	registration.Status = target
	return registration, nil
}
