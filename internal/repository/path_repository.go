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

// PathRepository handles persistence of admission paths.
type PathRepository struct {
	db *sqlx.DB
}

// NewPathRepository constructs the repository.
func NewPathRepository(db *sqlx.DB) *PathRepository {
	return &PathRepository{db: db}
}

const pathColumns = `id, period_id, name, type, quota, min_score, max_distance_km, selection_criteria, reserve_count, created_at, updated_at`

// List returns paths filtered by the provided criteria.
func (r *PathRepository) List(ctx context.Context, filter models.PathFilter) ([]models.AdmissionPath, int, error) {
	base := "FROM admission_paths a"
	var conditions []string
	var args []interface{}

	if filter.PeriodID != "" {
		conditions = append(conditions, fmt.Sprintf("a.period_id = $%d", len(args)+1))
		args = append(args, filter.PeriodID)
	}
	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("a.type = $%d", len(args)+1))
		args = append(args, filter.Type)
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

	query := fmt.Sprintf(`SELECT a.id, a.period_id, a.name, a.type, a.quota, a.min_score, a.max_distance_km,
        a.selection_criteria, a.reserve_count, a.created_at, a.updated_at
        %s ORDER BY a.name ASC LIMIT %d OFFSET %d`, base+clause, size, offset)

	var paths []models.AdmissionPath
	if err := r.db.SelectContext(ctx, &paths, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list paths: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count paths: %w", err)
	}
	return paths, total, nil
}

// FindByID returns a path by its ID.
func (r *PathRepository) FindByID(ctx context.Context, id string) (*models.AdmissionPath, error) {
	query := fmt.Sprintf("SELECT %s FROM admission_paths WHERE id = $1", pathColumns)
	var path models.AdmissionPath
	if err := r.db.GetContext(ctx, &path, query, id); err != nil {
		return nil, err
	}
	return &path, nil
}

// Create persists a new path record.
func (r *PathRepository) Create(ctx context.Context, path *models.AdmissionPath) error {
	if path.ID == "" {
		path.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if path.CreatedAt.IsZero() {
		path.CreatedAt = now
	}
	path.UpdatedAt = now
	const query = `INSERT INTO admission_paths (id, period_id, name, type, quota, min_score, max_distance_km, selection_criteria, reserve_count, created_at, updated_at)
        VALUES (:id, :period_id, :name, :type, :quota, :min_score, :max_distance_km, :selection_criteria, :reserve_count, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, path); err != nil {
		return fmt.Errorf("create path: %w", err)
	}
	return nil
}

// Update persists mutable path fields.
func (r *PathRepository) Update(ctx context.Context, path *models.AdmissionPath) error {
	path.UpdatedAt = time.Now().UTC()
	const query = `UPDATE admission_paths SET name = :name, type = :type, quota = :quota,
        min_score = :min_score, max_distance_km = :max_distance_km, selection_criteria = :selection_criteria,
        reserve_count = :reserve_count, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, path); err != nil {
		return fmt.Errorf("update path: %w", err)
	}
	return nil
}

// ListByPeriod returns all paths belonging to a period.
func (r *PathRepository) ListByPeriod(ctx context.Context, periodID string) ([]models.AdmissionPath, error) {
	query := fmt.Sprintf("SELECT %s FROM admission_paths WHERE period_id = $1 ORDER BY name ASC", pathColumns)
	var paths []models.AdmissionPath
	if err := r.db.SelectContext(ctx, &paths, query, periodID); err != nil {
		return nil, fmt.Errorf("list period paths: %w", err)
	}
	return paths, nil
}
