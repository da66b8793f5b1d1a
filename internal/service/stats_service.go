package service

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/ppdb-selection-api/internal/models"
	appErrors "github.com/noah-isme/ppdb-selection-api/pkg/errors"
)

type statsRepo interface {
	StatsByPeriod(ctx context.Context, periodID string) ([]models.PathStats, error)
}

type statsPeriodReader interface {
	FindByID(ctx context.Context, id string) (*models.AdmissionPeriod, error)
}

// StatsService serves per-path selection progress, cached per period.
type StatsService struct {
	repo    statsRepo
	periods statsPeriodReader
	cache   *CacheService
	logger  *zap.Logger
}

// NewStatsService constructs the service.
func NewStatsService(repo statsRepo, periods statsPeriodReader, cache *CacheService, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{repo: repo, periods: periods, cache: cache, logger: logger}
}

func statsCacheKey(periodID string) string {
	return fmt.Sprintf("stats:period:%s", periodID)
}

// PeriodStats returns per-path stats of a period.
func (s *StatsService) PeriodStats(ctx context.Context, periodID string) ([]models.PathStats, error) {
	if _, err := s.periods.FindByID(ctx, periodID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "admission period not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load period")
	}

	key := statsCacheKey(periodID)
	var cached []models.PathStats
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	stats, err := s.repo.StatsByPeriod(ctx, periodID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate stats")
	}
	if err := s.cache.Set(ctx, key, stats, 0); err != nil {
		s.logger.Warn("failed to cache period stats", zap.String("period_id", periodID), zap.Error(err))
	}
	return stats, nil
}

// Invalidate drops the cached stats of a period, called after selection runs
// and announce sweeps change the underlying counts.
func (s *StatsService) Invalidate(ctx context.Context, periodID string) {
	if err := s.cache.Delete(ctx, statsCacheKey(periodID)); err != nil {
		s.logger.Warn("failed to invalidate period stats", zap.String("period_id", periodID), zap.Error(err))
	}
}
