package service

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ppdb-selection-api/internal/models"
	appErrors "github.com/noah-isme/ppdb-selection-api/pkg/errors"
)

type selectionPathReader interface {
	FindByID(ctx context.Context, id string) (*models.AdmissionPath, error)
}

type selectionPeriodReader interface {
	FindByID(ctx context.Context, id string) (*models.AdmissionPeriod, error)
}

type selectionPoolReader interface {
	ListEligibleByPath(ctx context.Context, pathID string) ([]models.RegistrationDetail, error)
}

type selectionRepo interface {
	FindByID(ctx context.Context, id string) (*models.Selection, error)
	List(ctx context.Context, filter models.SelectionFilter) ([]models.SelectionDetail, int, error)
	ReplaceForPath(ctx context.Context, pathID string, selections []models.Selection) error
	AnnouncePeriod(ctx context.Context, periodID string) ([]models.AnnouncedRegistration, error)
	OverrideStatus(ctx context.Context, id string, status models.SelectionStatus, notes string) (*models.Selection, error)
}

type outcomeNotifier interface {
	EnqueueOutcome(registration models.AnnouncedRegistration) error
}

// UpdateSelectionStatusRequest is the manual override payload.
type UpdateSelectionStatusRequest struct {
	Status models.SelectionStatus `json:"status" validate:"required"`
	Notes  string                 `json:"notes"`
}

// scoredEntry carries one registration through the ranking pipeline.
type scoredEntry struct {
	registration models.RegistrationDetail
	score        float64
	breakdown    models.JSONMap
	notes        []string
	disqualified bool
	forcedFail   bool
}

// scoreFunc computes the final score for one registration on one path. It
// must be pure: identical inputs always yield identical output.
type scoreFunc func(path *models.AdmissionPath, registration models.RegistrationDetail) scoredEntry

// SelectionService ranks eligible registrations per admission path and
// projects outcomes onto registrations on announce.
type SelectionService struct {
	paths         selectionPathReader
	periods       selectionPeriodReader
	pool          selectionPoolReader
	selections    selectionRepo
	notifier      outcomeNotifier
	metrics       *MetricsService
	validator     *validator.Validate
	logger        *zap.Logger
	reserveWindow int

	strategies map[models.PathType]scoreFunc

	// runMu guards runningPaths: one selection run at a time per path.
	runMu        sync.Mutex
	runningPaths map[string]bool
}

// NewSelectionService constructs SelectionService.
func NewSelectionService(paths selectionPathReader, periods selectionPeriodReader, pool selectionPoolReader, selections selectionRepo, notifier outcomeNotifier, metrics *MetricsService, reserveWindow int, validate *validator.Validate, logger *zap.Logger) *SelectionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if reserveWindow < 0 {
		reserveWindow = 0
	}
	svc := &SelectionService{
		paths:         paths,
		periods:       periods,
		pool:          pool,
		selections:    selections,
		notifier:      notifier,
		metrics:       metrics,
		validator:     validate,
		logger:        logger,
		reserveWindow: reserveWindow,
		runningPaths:  make(map[string]bool),
	}
	svc.strategies = map[models.PathType]scoreFunc{
		models.PathTypeZonasi:      scoreZonasi,
		models.PathTypePrestasi:    scoreAcademicAchievement,
		models.PathTypeAfirmasi:    scoreAcademicAchievement,
		models.PathTypePerpindahan: scoreAcademicAchievement,
		models.PathTypeReguler:     scoreAcademicAchievement,
	}
	return svc
}

// Run executes a full selection run for one path: score, rank, apply quota
// and reserve window, and atomically replace the path's selection set.
func (s *SelectionService) Run(ctx context.Context, pathID string) (*models.SelectionRunResult, error) {
	path, err := s.paths.FindByID(ctx, pathID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "admission path not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load admission path")
	}

	if !s.acquireRun(pathID) {
		return nil, appErrors.Clone(appErrors.ErrSelectionRunning, fmt.Sprintf("selection already running for path %s", pathID))
	}
	defer s.releaseRun(pathID)

	pool, err := s.pool.ListEligibleByPath(ctx, pathID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration pool")
	}

	result := &models.SelectionRunResult{PathID: pathID}
	if len(pool) == 0 {
		return result, nil
	}

	strategy, ok := s.strategies[path.Type]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown path type %s", path.Type))
	}

	entries := make([]scoredEntry, 0, len(pool))
	for _, registration := range pool {
		entry := strategy(path, registration)
		if path.MinScore != nil && !entry.disqualified && entry.score < *path.MinScore {
			entry.forcedFail = true
			entry.notes = append(entry.notes, fmt.Sprintf("final score %.2f below path minimum %.2f", entry.score, *path.MinScore))
		}
		entries = append(entries, entry)
	}

	ranked := make([]*scoredEntry, 0, len(entries))
	for i := range entries {
		if !entries[i].disqualified {
			ranked = append(ranked, &entries[i])
		}
	}
	// Score descending; ties break by earlier submission, then id, so the
	// order never depends on storage order.
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		ci, cj := ranked[i].registration.CreatedAt, ranked[j].registration.CreatedAt
		if !ci.Equal(cj) {
			return ci.Before(cj)
		}
		return ranked[i].registration.ID < ranked[j].registration.ID
	})

	reserveWindow := path.ReserveCount
	if reserveWindow <= 0 {
		reserveWindow = s.reserveWindow
	}

	selections := make([]models.Selection, 0, len(entries))
	passed, reserved := 0, 0
	for i, entry := range ranked {
		rank := i + 1
		status := models.SelectionStatusFailed
		switch {
		case entry.forcedFail:
		case passed < path.Quota:
			status = models.SelectionStatusPassed
			passed++
		case reserved < reserveWindow:
			status = models.SelectionStatusReserve
			reserved++
		}
		selections = append(selections, models.Selection{
			RegistrationID: entry.registration.ID,
			PathID:         pathID,
			FinalScore:     entry.score,
			Rank:           &rank,
			Status:         status,
			ScoreBreakdown: entry.breakdown,
			Notes:          strings.Join(entry.notes, "; "),
		})
	}
	for i := range entries {
		if !entries[i].disqualified {
			continue
		}
		selections = append(selections, models.Selection{
			RegistrationID: entries[i].registration.ID,
			PathID:         pathID,
			FinalScore:     entries[i].score,
			Status:         models.SelectionStatusFailed,
			ScoreBreakdown: entries[i].breakdown,
			Notes:          strings.Join(entries[i].notes, "; "),
		})
	}

	if err := s.selections.ReplaceForPath(ctx, pathID, selections); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist selection run")
	}

	for _, selection := range selections {
		switch selection.Status {
		case models.SelectionStatusPassed:
			result.Passed++
		case models.SelectionStatusFailed:
			result.Failed++
		case models.SelectionStatusReserve:
			result.Reserve++
		case models.SelectionStatusPending:
		}
	}
	result.Total = len(selections)

	s.metrics.RecordSelectionRun(string(path.Type), result.Total)
	s.logger.Info("selection run completed",
		zap.String("path_id", pathID),
		zap.String("path_type", string(path.Type)),
		zap.Int("total", result.Total),
		zap.Int("passed", result.Passed),
		zap.Int("failed", result.Failed),
		zap.Int("reserve", result.Reserve),
	)
	return result, nil
}

// Announce projects selection outcomes onto registration statuses for a
// period and queues one notification per changed registration. Repeating the
// call without intervening selection changes updates nothing further.
func (s *SelectionService) Announce(ctx context.Context, periodID string) (int, error) {
	if _, err := s.periods.FindByID(ctx, periodID); err != nil {
		if err == sql.ErrNoRows {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "admission period not found")
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load admission period")
	}

	changed, err := s.selections.AnnouncePeriod(ctx, periodID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to announce period")
	}

	queued := 0
	if s.notifier != nil {
		for _, registration := range changed {
			if registration.Email == "" {
				continue
			}
			if err := s.notifier.EnqueueOutcome(registration); err != nil {
				// Notification dispatch is best effort; the projection
				// already committed.
				s.logger.Warn("failed to queue outcome notification",
					zap.String("registration_id", registration.RegistrationID),
					zap.Error(err),
				)
				continue
			}
			queued++
		}
	}
	s.metrics.RecordNotificationsQueued(queued)
	s.logger.Info("period announced",
		zap.String("period_id", periodID),
		zap.Int("changed", len(changed)),
		zap.Int("notifications_queued", queued),
	)
	return len(changed), nil
}

// UpdateStatus applies a manual operator decision to one selection,
// bypassing the ranking algorithm. PASSED and FAILED project onto the linked
// registration through the same mapping table the announce sweep uses.
func (s *SelectionService) UpdateStatus(ctx context.Context, id string, req UpdateSelectionStatusRequest) (*models.Selection, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	status := models.SelectionStatus(strings.ToUpper(string(req.Status)))
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown selection status %s", req.Status))
	}
	selection, err := s.selections.OverrideStatus(ctx, id, status, req.Notes)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "selection not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to override selection status")
	}
	return selection, nil
}

// Get returns one selection by id.
func (s *SelectionService) Get(ctx context.Context, id string) (*models.Selection, error) {
	selection, err := s.selections.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "selection not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load selection")
	}
	return selection, nil
}

// List returns ranked selection results for a path.
func (s *SelectionService) List(ctx context.Context, filter models.SelectionFilter) ([]models.SelectionDetail, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	rows, total, err := s.selections.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list selections")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return rows, pagination, nil
}

func (s *SelectionService) acquireRun(pathID string) bool {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.runningPaths[pathID] {
		return false
	}
	s.runningPaths[pathID] = true
	return true
}

func (s *SelectionService) releaseRun(pathID string) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	delete(s.runningPaths, pathID)
}

// Default component weights. A path's selection criteria mapping overrides
// them key by key.
const (
	defaultAcademicWeight    = 0.7
	defaultAchievementWeight = 0.3

	zonasiAcademicWeight    = 0.4
	zonasiAchievementWeight = 0.2
	zonasiDistanceWeight    = 0.4

	// Fallback distance scale when a zonasi path sets no max distance.
	defaultDistanceScaleKM = 10.0
)

// scoreAcademicAchievement combines the academic mean and achievement point
// sum. Used for PRESTASI, AFIRMASI, PERPINDAHAN and REGULER paths.
func scoreAcademicAchievement(path *models.AdmissionPath, registration models.RegistrationDetail) scoredEntry {
	entry := scoredEntry{registration: registration, breakdown: models.JSONMap{}}

	academic, achievement := baseComponents(&entry)
	wAcademic := criteriaWeight(path.SelectionCriteria, models.CriteriaAcademic, defaultAcademicWeight)
	wAchievement := criteriaWeight(path.SelectionCriteria, models.CriteriaAchievement, defaultAchievementWeight)

	entry.breakdown[models.CriteriaAcademic] = round2(academic * wAcademic)
	entry.breakdown[models.CriteriaAchievement] = round2(achievement * wAchievement)
	entry.score = round2(academic*wAcademic + achievement*wAchievement)
	return entry
}

// scoreZonasi adds an inverse-distance component and disqualifies
// registrations beyond the path's maximum distance.
func scoreZonasi(path *models.AdmissionPath, registration models.RegistrationDetail) scoredEntry {
	entry := scoredEntry{registration: registration, breakdown: models.JSONMap{}}

	academic, achievement := baseComponents(&entry)
	wAcademic := criteriaWeight(path.SelectionCriteria, models.CriteriaAcademic, zonasiAcademicWeight)
	wAchievement := criteriaWeight(path.SelectionCriteria, models.CriteriaAchievement, zonasiAchievementWeight)
	wDistance := criteriaWeight(path.SelectionCriteria, models.CriteriaDistance, zonasiDistanceWeight)

	distance := 0.0
	if registration.DistanceKM == nil {
		entry.notes = append(entry.notes, "distance not recorded, distance component scored zero")
	} else {
		d := *registration.DistanceKM
		if path.MaxDistanceKM != nil && d > *path.MaxDistanceKM {
			entry.disqualified = true
			entry.notes = append(entry.notes, fmt.Sprintf("distance %.2f km exceeds path maximum %.2f km", d, *path.MaxDistanceKM))
		}
		scale := defaultDistanceScaleKM
		if path.MaxDistanceKM != nil {
			scale = *path.MaxDistanceKM
		}
		distance = math.Max(0, 100*(1-d/scale))
	}

	entry.breakdown[models.CriteriaAcademic] = round2(academic * wAcademic)
	entry.breakdown[models.CriteriaAchievement] = round2(achievement * wAchievement)
	entry.breakdown[models.CriteriaDistance] = round2(distance * wDistance)
	entry.score = round2(academic*wAcademic + achievement*wAchievement + distance*wDistance)
	return entry
}

// baseComponents computes the academic mean and achievement point sum shared
// by all strategies, recording notes for missing inputs.
func baseComponents(entry *scoredEntry) (academic, achievement float64) {
	registration := entry.registration
	if len(registration.Scores) == 0 {
		entry.notes = append(entry.notes, "no scores recorded, academic component scored zero")
	} else {
		sum := 0.0
		for _, score := range registration.Scores {
			sum += score.Value
		}
		academic = sum / float64(len(registration.Scores))
	}
	// Achievement points are computed at data entry; only summed here.
	for _, a := range registration.Achievements {
		achievement += a.Points
	}
	return academic, achievement
}

func criteriaWeight(criteria models.JSONMap, key string, fallback float64) float64 {
	if criteria == nil {
		return fallback
	}
	if weight, ok := criteria[key]; ok && weight >= 0 {
		return weight
	}
	return fallback
}

func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
