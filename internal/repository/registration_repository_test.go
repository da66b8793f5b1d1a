package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ppdb-selection-api/internal/models"
)

func newRegistrationRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func registrationRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "period_id", "path_id", "full_name", "nisn", "email", "gender", "birth_date", "distance_km", "status", "created_at", "updated_at"})
}

func TestRegistrationRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRegistrationRepoMock(t)
	defer cleanup()

	repo := NewRegistrationRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO registrations")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO registration_scores")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO registration_achievements")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	detail := &models.RegistrationDetail{
		Registration: models.Registration{
			PeriodID: "period-1",
			PathID:   "path-1",
			FullName: "Siti Rahma",
			NISN:     "0051234567",
			Gender:   "F",
			Status:   models.RegistrationStatusSubmitted,
		},
		Scores: []models.RegistrationScore{
			{Subject: "Matematika", Semester: 1, Type: models.ScoreTypeReportCard, Value: 88},
		},
		Achievements: []models.RegistrationAchievement{
			{Name: "OSN Fisika", Level: "NASIONAL", Rank: 1, Points: 40},
		},
	}
	require.NoError(t, repo.Create(context.Background(), detail))
	require.NotEmpty(t, detail.ID)
	require.Equal(t, detail.ID, detail.Scores[0].RegistrationID)
	require.Equal(t, detail.ID, detail.Achievements[0].RegistrationID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryListEligibleByPath(t *testing.T) {
	db, mock, cleanup := newRegistrationRepoMock(t)
	defer cleanup()

	repo := NewRegistrationRepository(db)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, period_id, path_id")).
		WillReturnRows(registrationRows().
			AddRow("reg-1", "period-1", "path-1", "Siti Rahma", "0051234567", "siti@example.com", "F", nil, 2.5, "VERIFIED", now, now).
			AddRow("reg-2", "period-1", "path-1", "Budi Santoso", "0059876543", "budi@example.com", "M", nil, nil, "SELECTION", now.Add(time.Minute), now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, registration_id, subject")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "registration_id", "subject", "semester", "type", "value"}).
			AddRow("score-1", "reg-1", "Matematika", 1, "REPORT_CARD", 88.0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, registration_id, name")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "registration_id", "name", "level", "rank", "points"}).
			AddRow("ach-1", "reg-2", "OSN Fisika", "NASIONAL", 1, 40.0))

	pool, err := repo.ListEligibleByPath(context.Background(), "path-1")
	require.NoError(t, err)
	require.Len(t, pool, 2)
	require.Len(t, pool[0].Scores, 1)
	require.Empty(t, pool[0].Achievements)
	require.Len(t, pool[1].Achievements, 1)
	require.Equal(t, 2.5, *pool[0].DistanceKM)
	require.Nil(t, pool[1].DistanceKM)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRegistrationRepoMock(t)
	defer cleanup()

	repo := NewRegistrationRepository(db)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT r.id, r.period_id")).
		WithArgs("path-1", "VERIFIED", "%rahma%").
		WillReturnRows(registrationRows().
			AddRow("reg-1", "period-1", "path-1", "Siti Rahma", "0051234567", "", "F", nil, nil, "VERIFIED", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("path-1", "VERIFIED", "%rahma%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rows, total, err := repo.List(context.Background(), models.RegistrationFilter{
		PathID: "path-1",
		Status: models.RegistrationStatusVerified,
		Search: "rahma",
	})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, rows, 1)
	require.Equal(t, "Siti Rahma", rows[0].FullName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newRegistrationRepoMock(t)
	defer cleanup()

	repo := NewRegistrationRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE registrations SET status")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "reg-1", models.RegistrationStatusVerified))
	require.NoError(t, mock.ExpectationsWereMet())
}
