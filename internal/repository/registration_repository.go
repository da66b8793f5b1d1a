package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/ppdb-selection-api/internal/models"
)

// RegistrationRepository handles persistence of registrations and their
// score/achievement collections.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs the repository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

const registrationColumns = `id, period_id, path_id, full_name, nisn, email, gender, birth_date, distance_km, status, created_at, updated_at`

// List returns registrations filtered by the provided criteria.
func (r *RegistrationRepository) List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, int, error) {
	base := "FROM registrations r"
	var conditions []string
	var args []interface{}

	if filter.PeriodID != "" {
		conditions = append(conditions, fmt.Sprintf("r.period_id = $%d", len(args)+1))
		args = append(args, filter.PeriodID)
	}
	if filter.PathID != "" {
		conditions = append(conditions, fmt.Sprintf("r.path_id = $%d", len(args)+1))
		args = append(args, filter.PathID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("r.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(r.full_name ILIKE $%d OR r.nisn ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"created_at": "r.created_at",
		"full_name":  "r.full_name",
		"nisn":       "r.nisn",
	}
	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	orderBy := allowedSorts[sortBy]
	if orderBy == "" {
		orderBy = "r.created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
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

	query := fmt.Sprintf(`SELECT r.id, r.period_id, r.path_id, r.full_name, r.nisn, r.email, r.gender,
        r.birth_date, r.distance_km, r.status, r.created_at, r.updated_at
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base+clause, orderBy, order, size, offset)

	var registrations []models.Registration
	if err := r.db.SelectContext(ctx, &registrations, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list registrations: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count registrations: %w", err)
	}
	return registrations, total, nil
}

// FindByID returns a registration by its ID.
func (r *RegistrationRepository) FindByID(ctx context.Context, id string) (*models.Registration, error) {
	query := fmt.Sprintf("SELECT %s FROM registrations WHERE id = $1", registrationColumns)
	var registration models.Registration
	if err := r.db.GetContext(ctx, &registration, query, id); err != nil {
		return nil, err
	}
	return &registration, nil
}

// FindDetailByID returns a registration with its scores and achievements.
func (r *RegistrationRepository) FindDetailByID(ctx context.Context, id string) (*models.RegistrationDetail, error) {
	registration, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	details, err := r.attachChildren(ctx, []models.Registration{*registration})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// ListEligibleByPath returns the scoring pool for a path: registrations that
// have reached at least VERIFIED status, with children attached, ordered by
// creation time so the engine's tie-break is deterministic.
func (r *RegistrationRepository) ListEligibleByPath(ctx context.Context, pathID string) ([]models.RegistrationDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM registrations WHERE path_id = $1 AND status = ANY($2)
        ORDER BY created_at ASC, id ASC`, registrationColumns)
	eligible := pq.StringArray{
		string(models.RegistrationStatusVerified),
		string(models.RegistrationStatusSelection),
		string(models.RegistrationStatusAccepted),
		string(models.RegistrationStatusRejected),
	}
	var registrations []models.Registration
	if err := r.db.SelectContext(ctx, &registrations, query, pathID, eligible); err != nil {
		return nil, fmt.Errorf("list eligible registrations: %w", err)
	}
	return r.attachChildren(ctx, registrations)
}

// Create persists a registration together with its scores and achievements.
func (r *RegistrationRepository) Create(ctx context.Context, detail *models.RegistrationDetail) error {
	if detail.ID == "" {
		detail.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if detail.CreatedAt.IsZero() {
		detail.CreatedAt = now
	}
	detail.UpdatedAt = now
	if detail.Status == "" {
		detail.Status = models.RegistrationStatusDraft
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create registration: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insertRegistration = `INSERT INTO registrations (id, period_id, path_id, full_name, nisn, email, gender, birth_date, distance_km, status, created_at, updated_at)
        VALUES (:id, :period_id, :path_id, :full_name, :nisn, :email, :gender, :birth_date, :distance_km, :status, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertRegistration, detail.Registration); err != nil {
		return fmt.Errorf("create registration: %w", err)
	}

	const insertScore = `INSERT INTO registration_scores (id, registration_id, subject, semester, type, value)
        VALUES (:id, :registration_id, :subject, :semester, :type, :value)`
	for i := range detail.Scores {
		if detail.Scores[i].ID == "" {
			detail.Scores[i].ID = uuid.NewString()
		}
		detail.Scores[i].RegistrationID = detail.ID
		if _, err := tx.NamedExecContext(ctx, insertScore, detail.Scores[i]); err != nil {
			return fmt.Errorf("create registration score: %w", err)
		}
	}

	const insertAchievement = `INSERT INTO registration_achievements (id, registration_id, name, level, rank, points)
        VALUES (:id, :registration_id, :name, :level, :rank, :points)`
	for i := range detail.Achievements {
		if detail.Achievements[i].ID == "" {
			detail.Achievements[i].ID = uuid.NewString()
		}
		detail.Achievements[i].RegistrationID = detail.ID
		if _, err := tx.NamedExecContext(ctx, insertAchievement, detail.Achievements[i]); err != nil {
			return fmt.Errorf("create registration achievement: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create registration: %w", err)
	}
	return nil
}

// UpdateStatus updates the status of a registration.
func (r *RegistrationRepository) UpdateStatus(ctx context.Context, id string, status models.RegistrationStatus) error {
	const query = `UPDATE registrations SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update registration status: %w", err)
	}
	return nil
}

func (r *RegistrationRepository) attachChildren(ctx context.Context, registrations []models.Registration) ([]models.RegistrationDetail, error) {
	details := make([]models.RegistrationDetail, len(registrations))
	if len(registrations) == 0 {
		return details, nil
	}

	ids := make(pq.StringArray, 0, len(registrations))
	index := make(map[string]int, len(registrations))
	for i, registration := range registrations {
		details[i] = models.RegistrationDetail{Registration: registration}
		ids = append(ids, registration.ID)
		index[registration.ID] = i
	}

	const scoreQuery = `SELECT id, registration_id, subject, semester, type, value
        FROM registration_scores WHERE registration_id = ANY($1) ORDER BY subject ASC, semester ASC`
	var scores []models.RegistrationScore
	if err := r.db.SelectContext(ctx, &scores, scoreQuery, ids); err != nil {
		return nil, fmt.Errorf("load registration scores: %w", err)
	}
	for _, score := range scores {
		i := index[score.RegistrationID]
		details[i].Scores = append(details[i].Scores, score)
	}

	const achievementQuery = `SELECT id, registration_id, name, level, rank, points
        FROM registration_achievements WHERE registration_id = ANY($1) ORDER BY points DESC`
	var achievements []models.RegistrationAchievement
	if err := r.db.SelectContext(ctx, &achievements, achievementQuery, ids); err != nil {
		return nil, fmt.Errorf("load registration achievements: %w", err)
	}
	for _, achievement := range achievements {
		i := index[achievement.RegistrationID]
		details[i].Achievements = append(details[i].Achievements, achievement)
	}

	return details, nil
}
