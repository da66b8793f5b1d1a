package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ppdb-selection-api/internal/models"
	appErrors "github.com/noah-isme/ppdb-selection-api/pkg/errors"
)

type mockPathReader struct {
	paths map[string]*models.AdmissionPath
}

func (m *mockPathReader) FindByID(ctx context.Context, id string) (*models.AdmissionPath, error) {
	path, ok := m.paths[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *path
	return &clone, nil
}

type mockPeriodReader struct {
	periods map[string]*models.AdmissionPeriod
}

func (m *mockPeriodReader) FindByID(ctx context.Context, id string) (*models.AdmissionPeriod, error) {
	period, ok := m.periods[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *period
	return &clone, nil
}

type mockPoolReader struct {
	pools map[string][]models.RegistrationDetail
}

func (m *mockPoolReader) ListEligibleByPath(ctx context.Context, pathID string) ([]models.RegistrationDetail, error) {
	return m.pools[pathID], nil
}

// blockingPoolReader parks the first caller until released, so a second run
// can be attempted while the first still holds the path lock.
type blockingPoolReader struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingPoolReader) ListEligibleByPath(ctx context.Context, pathID string) ([]models.RegistrationDetail, error) {
	close(b.entered)
	<-b.release
	return nil, nil
}

type mockSelectionStore struct {
	byPath     map[string][]models.Selection
	pathPeriod map[string]string
	regStatus  map[string]models.RegistrationStatus
	regEmail   map[string]string
	regName    map[string]string

	replaceCalls int
}

func newMockSelectionStore() *mockSelectionStore {
	return &mockSelectionStore{
		byPath:     make(map[string][]models.Selection),
		pathPeriod: make(map[string]string),
		regStatus:  make(map[string]models.RegistrationStatus),
		regEmail:   make(map[string]string),
		regName:    make(map[string]string),
	}
}

func (m *mockSelectionStore) FindByID(ctx context.Context, id string) (*models.Selection, error) {
	for _, selections := range m.byPath {
		for _, selection := range selections {
			if selection.ID == id {
				clone := selection
				return &clone, nil
			}
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockSelectionStore) List(ctx context.Context, filter models.SelectionFilter) ([]models.SelectionDetail, int, error) {
	var rows []models.SelectionDetail
	for _, selection := range m.byPath[filter.PathID] {
		if filter.Status != "" && filter.Status != selection.Status {
			continue
		}
		rows = append(rows, models.SelectionDetail{Selection: selection, FullName: m.regName[selection.RegistrationID]})
	}
	return rows, len(rows), nil
}

func (m *mockSelectionStore) ReplaceForPath(ctx context.Context, pathID string, selections []models.Selection) error {
	m.replaceCalls++
	stored := make([]models.Selection, len(selections))
	for i, selection := range selections {
		selection.ID = fmt.Sprintf("sel-%s-%s", pathID, selection.RegistrationID)
		stored[i] = selection
		if status := m.regStatus[selection.RegistrationID]; status == models.RegistrationStatusVerified || status == models.RegistrationStatusSelection {
			m.regStatus[selection.RegistrationID] = models.RegistrationStatusSelection
		}
	}
	m.byPath[pathID] = stored
	return nil
}

func (m *mockSelectionStore) AnnouncePeriod(ctx context.Context, periodID string) ([]models.AnnouncedRegistration, error) {
	var changed []models.AnnouncedRegistration
	for pathID, selections := range m.byPath {
		if m.pathPeriod[pathID] != periodID {
			continue
		}
		for _, selection := range selections {
			target, ok := selection.Status.RegistrationStatusFor()
			if !ok || m.regStatus[selection.RegistrationID] == target {
				continue
			}
			m.regStatus[selection.RegistrationID] = target
			changed = append(changed, models.AnnouncedRegistration{
				RegistrationID: selection.RegistrationID,
				FullName:       m.regName[selection.RegistrationID],
				Email:          m.regEmail[selection.RegistrationID],
				Status:         target,
			})
		}
	}
	return changed, nil
}

func (m *mockSelectionStore) OverrideStatus(ctx context.Context, id string, status models.SelectionStatus, notes string) (*models.Selection, error) {
	for pathID, selections := range m.byPath {
		for i, selection := range selections {
			if selection.ID != id {
				continue
			}
			selection.Status = status
			selection.Notes = notes
			m.byPath[pathID][i] = selection
			if target, ok := status.RegistrationStatusFor(); ok {
				m.regStatus[selection.RegistrationID] = target
			}
			clone := selection
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

type mockNotifier struct {
	queued []models.AnnouncedRegistration
	fail   bool
}

func (m *mockNotifier) EnqueueOutcome(registration models.AnnouncedRegistration) error {
	if m.fail {
		return fmt.Errorf("queue closed")
	}
	m.queued = append(m.queued, registration)
	return nil
}

func candidate(id string, submittedAt time.Time, scores ...float64) models.RegistrationDetail {
	detail := models.RegistrationDetail{
		Registration: models.Registration{
			ID:        id,
			FullName:  "Candidate " + id,
			Email:     id + "@example.com",
			Status:    models.RegistrationStatusVerified,
			CreatedAt: submittedAt,
		},
	}
	for i, value := range scores {
		detail.Scores = append(detail.Scores, models.RegistrationScore{
			RegistrationID: id,
			Subject:        fmt.Sprintf("subject-%d", i),
			Type:           models.ScoreTypeReportCard,
			Value:          value,
		})
	}
	return detail
}

func floatPtr(v float64) *float64 { return &v }

type selectionFixture struct {
	svc   *SelectionService
	store *mockSelectionStore
	pool  *mockPoolReader
	paths *mockPathReader
}

func newSelectionFixture(path *models.AdmissionPath, pool []models.RegistrationDetail) *selectionFixture {
	store := newMockSelectionStore()
	store.pathPeriod[path.ID] = path.PeriodID
	for _, registration := range pool {
		store.regStatus[registration.ID] = registration.Status
		store.regEmail[registration.ID] = registration.Email
		store.regName[registration.ID] = registration.FullName
	}
	paths := &mockPathReader{paths: map[string]*models.AdmissionPath{path.ID: path}}
	periods := &mockPeriodReader{periods: map[string]*models.AdmissionPeriod{
		path.PeriodID: {ID: path.PeriodID, Name: "PPDB 2026", Status: models.PeriodStatusClosed},
	}}
	poolReader := &mockPoolReader{pools: map[string][]models.RegistrationDetail{path.ID: pool}}
	svc := NewSelectionService(paths, periods, poolReader, store, nil, nil, 0, nil, nil)
	return &selectionFixture{svc: svc, store: store, pool: poolReader, paths: paths}
}

func academicOnlyPath(id string, quota int) *models.AdmissionPath {
	return &models.AdmissionPath{
		ID:                id,
		PeriodID:          "period-1",
		Name:              "Jalur Reguler",
		Type:              models.PathTypeReguler,
		Quota:             quota,
		SelectionCriteria: models.JSONMap{models.CriteriaAcademic: 1, models.CriteriaAchievement: 0},
	}
}

func selectionByRegistration(selections []models.Selection, registrationID string) *models.Selection {
	for i := range selections {
		if selections[i].RegistrationID == registrationID {
			return &selections[i]
		}
	}
	return nil
}

func TestSelectionRunPoolWithinQuota(t *testing.T) {
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	fixture := newSelectionFixture(academicOnlyPath("path-1", 5), []models.RegistrationDetail{
		candidate("reg-1", base, 88),
		candidate("reg-2", base.Add(time.Minute), 72),
	})

	result, err := fixture.svc.Run(context.Background(), "path-1")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Passed)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 0, result.Reserve)
	for _, selection := range fixture.store.byPath["path-1"] {
		assert.Equal(t, models.SelectionStatusPassed, selection.Status)
	}
}

func TestSelectionRunQuotaCutoff(t *testing.T) {
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	fixture := newSelectionFixture(academicOnlyPath("path-1", 2), []models.RegistrationDetail{
		candidate("reg-low", base, 60),
		candidate("reg-top", base.Add(time.Minute), 90),
		candidate("reg-mid", base.Add(2*time.Minute), 75),
	})

	result, err := fixture.svc.Run(context.Background(), "path-1")
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Passed)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 0, result.Reserve)

	stored := fixture.store.byPath["path-1"]
	top := selectionByRegistration(stored, "reg-top")
	mid := selectionByRegistration(stored, "reg-mid")
	low := selectionByRegistration(stored, "reg-low")
	require.NotNil(t, top)
	require.NotNil(t, mid)
	require.NotNil(t, low)

	assert.Equal(t, 1, *top.Rank)
	assert.Equal(t, models.SelectionStatusPassed, top.Status)
	assert.Equal(t, 90.0, top.FinalScore)
	assert.Equal(t, 2, *mid.Rank)
	assert.Equal(t, models.SelectionStatusPassed, mid.Status)
	assert.Equal(t, 3, *low.Rank)
	assert.Equal(t, models.SelectionStatusFailed, low.Status)
}

func TestSelectionRunDeterministicReRun(t *testing.T) {
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	pool := []models.RegistrationDetail{
		candidate("reg-b", base.Add(time.Hour), 80),
		candidate("reg-a", base, 80),
		candidate("reg-c", base.Add(2*time.Hour), 95),
	}
	fixture := newSelectionFixture(academicOnlyPath("path-1", 2), pool)

	_, err := fixture.svc.Run(context.Background(), "path-1")
	require.NoError(t, err)
	first := fixture.store.byPath["path-1"]

	// Re-run with the pool in a different storage order.
	fixture.pool.pools["path-1"] = []models.RegistrationDetail{pool[2], pool[0], pool[1]}
	_, err = fixture.svc.Run(context.Background(), "path-1")
	require.NoError(t, err)
	second := fixture.store.byPath["path-1"]

	ranks := make(map[int]bool)
	for _, selection := range second {
		require.NotNil(t, selection.Rank)
		assert.False(t, ranks[*selection.Rank], "rank %d assigned twice", *selection.Rank)
		ranks[*selection.Rank] = true

		prev := selectionByRegistration(first, selection.RegistrationID)
		require.NotNil(t, prev)
		assert.Equal(t, *prev.Rank, *selection.Rank)
		assert.Equal(t, prev.Status, selection.Status)
		assert.Equal(t, prev.FinalScore, selection.FinalScore)
	}

	// Equal scores break by earlier submission.
	a := selectionByRegistration(second, "reg-a")
	b := selectionByRegistration(second, "reg-b")
	assert.Equal(t, 2, *a.Rank)
	assert.Equal(t, models.SelectionStatusPassed, a.Status)
	assert.Equal(t, 3, *b.Rank)
	assert.Equal(t, models.SelectionStatusFailed, b.Status)
}

func TestSelectionRunZonasiMaxDistance(t *testing.T) {
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	near := candidate("reg-near", base, 80)
	near.DistanceKM = floatPtr(1.5)
	far := candidate("reg-far", base.Add(time.Minute), 95)
	far.DistanceKM = floatPtr(7.2)

	path := &models.AdmissionPath{
		ID:            "path-zonasi",
		PeriodID:      "period-1",
		Name:          "Jalur Zonasi",
		Type:          models.PathTypeZonasi,
		Quota:         10,
		MaxDistanceKM: floatPtr(5),
	}
	fixture := newSelectionFixture(path, []models.RegistrationDetail{near, far})

	result, err := fixture.svc.Run(context.Background(), "path-zonasi")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 1, result.Failed)

	stored := fixture.store.byPath["path-zonasi"]
	disqualified := selectionByRegistration(stored, "reg-far")
	require.NotNil(t, disqualified)
	assert.Equal(t, models.SelectionStatusFailed, disqualified.Status)
	assert.Nil(t, disqualified.Rank)
	assert.Contains(t, disqualified.Notes, "exceeds path maximum")

	passed := selectionByRegistration(stored, "reg-near")
	require.NotNil(t, passed)
	assert.Equal(t, models.SelectionStatusPassed, passed.Status)
	assert.Equal(t, 1, *passed.Rank)
	// academic 80*0.4 + distance 100*(1-1.5/5)*0.4 = 32 + 28
	assert.Equal(t, 60.0, passed.FinalScore)
	assert.Equal(t, 28.0, passed.ScoreBreakdown[models.CriteriaDistance])
}

func TestSelectionRunMinScoreForcesFailed(t *testing.T) {
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	path := academicOnlyPath("path-1", 2)
	path.MinScore = floatPtr(70)
	fixture := newSelectionFixture(path, []models.RegistrationDetail{
		candidate("reg-pass", base, 80),
		candidate("reg-short", base.Add(time.Minute), 65),
	})

	result, err := fixture.svc.Run(context.Background(), "path-1")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 1, result.Failed)

	stored := fixture.store.byPath["path-1"]
	short := selectionByRegistration(stored, "reg-short")
	require.NotNil(t, short)
	assert.Equal(t, models.SelectionStatusFailed, short.Status)
	require.NotNil(t, short.Rank)
	assert.Equal(t, 2, *short.Rank)
	assert.Contains(t, short.Notes, "below path minimum")
}

func TestSelectionRunReserveWindow(t *testing.T) {
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	path := academicOnlyPath("path-1", 1)
	path.ReserveCount = 1
	fixture := newSelectionFixture(path, []models.RegistrationDetail{
		candidate("reg-1", base, 90),
		candidate("reg-2", base.Add(time.Minute), 80),
		candidate("reg-3", base.Add(2*time.Minute), 70),
	})

	result, err := fixture.svc.Run(context.Background(), "path-1")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 1, result.Reserve)
	assert.Equal(t, 1, result.Failed)

	stored := fixture.store.byPath["path-1"]
	assert.Equal(t, models.SelectionStatusPassed, selectionByRegistration(stored, "reg-1").Status)
	assert.Equal(t, models.SelectionStatusReserve, selectionByRegistration(stored, "reg-2").Status)
	assert.Equal(t, models.SelectionStatusFailed, selectionByRegistration(stored, "reg-3").Status)
}

func TestSelectionRunEmptyPool(t *testing.T) {
	fixture := newSelectionFixture(academicOnlyPath("path-1", 3), nil)

	result, err := fixture.svc.Run(context.Background(), "path-1")
	require.NoError(t, err)

	assert.Equal(t, 0, result.Total)
	assert.Equal(t, 0, fixture.store.replaceCalls, "empty pool must not overwrite results")
}

func TestSelectionRunPathNotFound(t *testing.T) {
	fixture := newSelectionFixture(academicOnlyPath("path-1", 3), nil)

	_, err := fixture.svc.Run(context.Background(), "missing")
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestSelectionRunConcurrentConflict(t *testing.T) {
	path := academicOnlyPath("path-1", 3)
	store := newMockSelectionStore()
	paths := &mockPathReader{paths: map[string]*models.AdmissionPath{path.ID: path}}
	blocking := &blockingPoolReader{entered: make(chan struct{}), release: make(chan struct{})}
	svc := NewSelectionService(paths, &mockPeriodReader{}, blocking, store, nil, nil, 0, nil, nil)

	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.Run(context.Background(), "path-1")
		firstDone <- err
	}()

	<-blocking.entered
	_, err := svc.Run(context.Background(), "path-1")
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrSelectionRunning.Code, appErr.Code)

	close(blocking.release)
	require.NoError(t, <-firstDone)
}

func TestSelectionRunLockReleased(t *testing.T) {
	fixture := newSelectionFixture(academicOnlyPath("path-1", 3), nil)

	_, err := fixture.svc.Run(context.Background(), "path-1")
	require.NoError(t, err)
	_, err = fixture.svc.Run(context.Background(), "path-1")
	require.NoError(t, err)
}

func TestAnnounceProjectsOutcomes(t *testing.T) {
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	path := academicOnlyPath("path-1", 1)
	path.ReserveCount = 1
	pool := []models.RegistrationDetail{
		candidate("reg-1", base, 90),
		candidate("reg-2", base.Add(time.Minute), 80),
		candidate("reg-3", base.Add(2*time.Minute), 70),
	}
	fixture := newSelectionFixture(path, pool)
	notifier := &mockNotifier{}
	fixture.svc.notifier = notifier

	_, err := fixture.svc.Run(context.Background(), "path-1")
	require.NoError(t, err)

	notified, err := fixture.svc.Announce(context.Background(), "period-1")
	require.NoError(t, err)

	// PASSED and FAILED project; RESERVE stays untouched.
	assert.Equal(t, 2, notified)
	assert.Equal(t, models.RegistrationStatusAccepted, fixture.store.regStatus["reg-1"])
	assert.Equal(t, models.RegistrationStatusSelection, fixture.store.regStatus["reg-2"])
	assert.Equal(t, models.RegistrationStatusRejected, fixture.store.regStatus["reg-3"])
	assert.Len(t, notifier.queued, 2)
}

func TestAnnounceIdempotent(t *testing.T) {
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	fixture := newSelectionFixture(academicOnlyPath("path-1", 1), []models.RegistrationDetail{
		candidate("reg-1", base, 90),
		candidate("reg-2", base.Add(time.Minute), 80),
	})
	notifier := &mockNotifier{}
	fixture.svc.notifier = notifier

	_, err := fixture.svc.Run(context.Background(), "path-1")
	require.NoError(t, err)

	notified, err := fixture.svc.Announce(context.Background(), "period-1")
	require.NoError(t, err)
	assert.Equal(t, 2, notified)

	notified, err = fixture.svc.Announce(context.Background(), "period-1")
	require.NoError(t, err)
	assert.Equal(t, 0, notified)
	assert.Len(t, notifier.queued, 2, "repeat announce must not queue duplicates")
}

func TestAnnounceSkipsMissingEmail(t *testing.T) {
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	noEmail := candidate("reg-1", base, 90)
	noEmail.Email = ""
	fixture := newSelectionFixture(academicOnlyPath("path-1", 1), []models.RegistrationDetail{noEmail})
	notifier := &mockNotifier{}
	fixture.svc.notifier = notifier

	_, err := fixture.svc.Run(context.Background(), "path-1")
	require.NoError(t, err)

	notified, err := fixture.svc.Announce(context.Background(), "period-1")
	require.NoError(t, err)
	assert.Equal(t, 1, notified, "change count includes registrations without email")
	assert.Empty(t, notifier.queued)
}

func TestAnnounceSurvivesNotifierFailure(t *testing.T) {
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	fixture := newSelectionFixture(academicOnlyPath("path-1", 1), []models.RegistrationDetail{
		candidate("reg-1", base, 90),
	})
	fixture.svc.notifier = &mockNotifier{fail: true}

	_, err := fixture.svc.Run(context.Background(), "path-1")
	require.NoError(t, err)

	notified, err := fixture.svc.Announce(context.Background(), "period-1")
	require.NoError(t, err)
	assert.Equal(t, 1, notified)
}

func TestAnnouncePeriodNotFound(t *testing.T) {
	fixture := newSelectionFixture(academicOnlyPath("path-1", 1), nil)

	_, err := fixture.svc.Announce(context.Background(), "missing")
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestUpdateStatusOverride(t *testing.T) {
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	fixture := newSelectionFixture(academicOnlyPath("path-1", 1), []models.RegistrationDetail{
		candidate("reg-1", base, 90),
		candidate("reg-2", base.Add(time.Minute), 80),
	})

	_, err := fixture.svc.Run(context.Background(), "path-1")
	require.NoError(t, err)

	// Promote the runner-up manually; lowercase input is normalised.
	updated, err := fixture.svc.UpdateStatus(context.Background(), "sel-path-1-reg-2", UpdateSelectionStatusRequest{
		Status: "passed",
		Notes:  "reserve slot confirmed",
	})
	require.NoError(t, err)
	assert.Equal(t, models.SelectionStatusPassed, updated.Status)
	assert.Equal(t, "reserve slot confirmed", updated.Notes)
	assert.Equal(t, models.RegistrationStatusAccepted, fixture.store.regStatus["reg-2"])
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	fixture := newSelectionFixture(academicOnlyPath("path-1", 1), nil)

	_, err := fixture.svc.UpdateStatus(context.Background(), "sel-1", UpdateSelectionStatusRequest{Status: "WAITLISTED"})
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestUpdateStatusNotFound(t *testing.T) {
	fixture := newSelectionFixture(academicOnlyPath("path-1", 1), nil)

	_, err := fixture.svc.UpdateStatus(context.Background(), "missing", UpdateSelectionStatusRequest{Status: models.SelectionStatusFailed})
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestScoreAcademicAchievementWeights(t *testing.T) {
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	registration := candidate("reg-1", base, 80, 90)
	registration.Achievements = []models.RegistrationAchievement{
		{Name: "OSN Matematika", Level: "PROVINSI", Rank: 1, Points: 25},
	}
	path := &models.AdmissionPath{ID: "path-1", Type: models.PathTypePrestasi, Quota: 10}

	entry := scoreAcademicAchievement(path, registration)

	// academic mean 85 * 0.7 + achievement 25 * 0.3
	assert.Equal(t, 59.5, entry.breakdown[models.CriteriaAcademic])
	assert.Equal(t, 7.5, entry.breakdown[models.CriteriaAchievement])
	assert.Equal(t, 67.0, entry.score)
	assert.False(t, entry.disqualified)
}

func TestScoreZonasiMissingDistance(t *testing.T) {
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	registration := candidate("reg-1", base, 80)
	path := &models.AdmissionPath{ID: "path-1", Type: models.PathTypeZonasi, Quota: 10, MaxDistanceKM: floatPtr(5)}

	entry := scoreZonasi(path, registration)

	assert.False(t, entry.disqualified)
	assert.Equal(t, 0.0, entry.breakdown[models.CriteriaDistance])
	assert.Contains(t, entry.notes[0], "distance not recorded")
	// academic 80*0.4 only
	assert.Equal(t, 32.0, entry.score)
}

func TestScoreMissingScores(t *testing.T) {
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	registration := candidate("reg-1", base)
	path := &models.AdmissionPath{ID: "path-1", Type: models.PathTypeReguler, Quota: 10}

	entry := scoreAcademicAchievement(path, registration)

	assert.Equal(t, 0.0, entry.score)
	assert.Contains(t, entry.notes[0], "no scores recorded")
}
