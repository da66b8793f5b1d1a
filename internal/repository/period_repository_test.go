package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ppdb-selection-api/internal/models"
)

func newPeriodRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func periodRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "academic_year", "start_date", "end_date", "status", "created_at", "updated_at"})
}

func TestPeriodRepositoryCreateAndFind(t *testing.T) {
	db, mock, cleanup := newPeriodRepoMock(t)
	defer cleanup()

	repo := NewPeriodRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO admission_periods")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	period := &models.AdmissionPeriod{
		Name:         "PPDB SMA 2026",
		AcademicYear: "2026/2027",
		StartDate:    time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Create(context.Background(), period))
	require.NotEmpty(t, period.ID)
	require.Equal(t, models.PeriodStatusDraft, period.Status)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, academic_year")).
		WithArgs(period.ID).
		WillReturnRows(periodRows().
			AddRow(period.ID, period.Name, period.AcademicYear, period.StartDate, period.EndDate, "DRAFT", time.Now(), time.Now()))

	found, err := repo.FindByID(context.Background(), period.ID)
	require.NoError(t, err)
	require.Equal(t, "PPDB SMA 2026", found.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPeriodRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newPeriodRepoMock(t)
	defer cleanup()

	repo := NewPeriodRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, academic_year")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPeriodRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newPeriodRepoMock(t)
	defer cleanup()

	repo := NewPeriodRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT p.id, p.name")).
		WithArgs("2026/2027", "OPEN").
		WillReturnRows(periodRows().
			AddRow("period-1", "PPDB SMA 2026", "2026/2027", time.Now(), time.Now(), "OPEN", time.Now(), time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("2026/2027", "OPEN").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	periods, total, err := repo.List(context.Background(), models.PeriodFilter{
		AcademicYear: "2026/2027",
		Status:       models.PeriodStatusOpen,
	})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, periods, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPeriodRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newPeriodRepoMock(t)
	defer cleanup()

	repo := NewPeriodRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE admission_periods SET status")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "period-1", models.PeriodStatusClosed))
	require.NoError(t, mock.ExpectationsWereMet())
}
