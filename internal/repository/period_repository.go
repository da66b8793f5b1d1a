package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ppdb-selection-api/internal/models"
)

// PeriodRepository handles persistence of admission periods.
type PeriodRepository struct {
	db *sqlx.DB
}

// NewPeriodRepository constructs the repository.
func NewPeriodRepository(db *sqlx.DB) *PeriodRepository {
	return &PeriodRepository{db: db}
}

// List returns periods filtered by the provided criteria.
func (r *PeriodRepository) List(ctx context.Context, filter models.PeriodFilter) ([]models.AdmissionPeriod, int, error) {
	base := "FROM admission_periods p"
	var conditions []string
	var args []interface{}

	if filter.AcademicYear != "" {
		conditions = append(conditions, fmt.Sprintf("p.academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("p.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT p.id, p.name, p.academic_year, p.start_date, p.end_date, p.status, p.created_at, p.updated_at
        %s ORDER BY p.start_date DESC LIMIT %d OFFSET %d`, base+clause, size, offset)

	var periods []models.AdmissionPeriod
	if err := r.db.SelectContext(ctx, &periods, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list periods: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count periods: %w", err)
	}
	return periods, total, nil
}

// FindByID returns a period by its ID.
func (r *PeriodRepository) FindByID(ctx context.Context, id string) (*models.AdmissionPeriod, error) {
	const query = `SELECT id, name, academic_year, start_date, end_date, status, created_at, updated_at
        FROM admission_periods WHERE id = $1`
	var period models.AdmissionPeriod
	if err := r.db.GetContext(ctx, &period, query, id); err != nil {
		return nil, err
	}
	return &period, nil
}

// Create persists a new period record.
func (r *PeriodRepository) Create(ctx context.Context, period *models.AdmissionPeriod) error {
	if period.ID == "" {
		period.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if period.CreatedAt.IsZero() {
		period.CreatedAt = now
	}
	period.UpdatedAt = now
	if period.Status == "" {
		period.Status = models.PeriodStatusDraft
	}
	const query = `INSERT INTO admission_periods (id, name, academic_year, start_date, end_date, status, created_at, updated_at)
        VALUES (:id, :name, :academic_year, :start_date, :end_date, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, period); err != nil {
		return fmt.Errorf("create period: %w", err)
	}
	return nil
}

// Update persists mutable period fields.
func (r *PeriodRepository) Update(ctx context.Context, period *models.AdmissionPeriod) error {
	period.UpdatedAt = time.Now().UTC()
	const query = `UPDATE admission_periods SET name = :name, academic_year = :academic_year,
        start_date = :start_date, end_date = :end_date, status = :status, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, period); err != nil {
		return fmt.Errorf("update period: %w", err)
	}
	return nil
}

// UpdateStatus flips the period status.
func (r *PeriodRepository) UpdateStatus(ctx context.Context, id string, status models.PeriodStatus) error {
	const query = `UPDATE admission_periods SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update period status: %w", err)
	}
	return nil
}
