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

// SelectionRepository handles persistence of computed selection outcomes.
type SelectionRepository struct {
	db *sqlx.DB
}

// NewSelectionRepository constructs the repository.
func NewSelectionRepository(db *sqlx.DB) *SelectionRepository {
	return &SelectionRepository{db: db}
}

const selectionColumns = `id, registration_id, path_id, final_score, rank, status, score_breakdown, notes, created_at, updated_at`

// FindByID returns a selection by its ID.
func (r *SelectionRepository) FindByID(ctx context.Context, id string) (*models.Selection, error) {
	query := fmt.Sprintf("SELECT %s FROM selections WHERE id = $1", selectionColumns)
	var selection models.Selection
	if err := r.db.GetContext(ctx, &selection, query, id); err != nil {
		return nil, err
	}
	return &selection, nil
}

// List returns selection results joined with candidate info, ranked first.
func (r *SelectionRepository) List(ctx context.Context, filter models.SelectionFilter) ([]models.SelectionDetail, int, error) {
	base := `FROM selections s
JOIN registrations r ON r.id = s.registration_id`
	var conditions []string
	var args []interface{}

	if filter.PathID != "" {
		conditions = append(conditions, fmt.Sprintf("s.path_id = $%d", len(args)+1))
		args = append(args, filter.PathID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("s.status = $%d", len(args)+1))
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

	query := fmt.Sprintf(`SELECT s.id, s.registration_id, s.path_id, s.final_score, s.rank, s.status,
        s.score_breakdown, s.notes, s.created_at, s.updated_at, r.full_name, r.nisn
        %s ORDER BY s.rank ASC NULLS LAST, s.final_score DESC LIMIT %d OFFSET %d`, base+clause, size, offset)

	var selections []models.SelectionDetail
	if err := r.db.SelectContext(ctx, &selections, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list selections: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count selections: %w", err)
	}
	return selections, total, nil
}

// ReplaceForPath overwrites all selections of a path with the freshly computed
// set, flipping the scored registrations to SELECTION status, as one
// transaction. A failure mid-run leaves the prior selection set untouched.
func (r *SelectionRepository) ReplaceForPath(ctx context.Context, pathID string, selections []models.Selection) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin selection replace: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM selections WHERE path_id = $1`, pathID); err != nil {
		return fmt.Errorf("clear prior selections: %w", err)
	}

	now := time.Now().UTC()
	registrationIDs := make(pq.StringArray, 0, len(selections))
	const insert = `INSERT INTO selections (id, registration_id, path_id, final_score, rank, status, score_breakdown, notes, created_at, updated_at)
        VALUES (:id, :registration_id, :path_id, :final_score, :rank, :status, :score_breakdown, :notes, :created_at, :updated_at)`
	for i := range selections {
		if selections[i].ID == "" {
			selections[i].ID = uuid.NewString()
		}
		selections[i].PathID = pathID
		selections[i].CreatedAt = now
		selections[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, insert, selections[i]); err != nil {
			return fmt.Errorf("insert selection: %w", err)
		}
		registrationIDs = append(registrationIDs, selections[i].RegistrationID)
	}

	if len(registrationIDs) > 0 {
		const flip = `UPDATE registrations SET status = $1, updated_at = $2
            WHERE id = ANY($3) AND status = ANY($4)`
		flippable := pq.StringArray{
			string(models.RegistrationStatusVerified),
			string(models.RegistrationStatusSelection),
		}
		if _, err := tx.ExecContext(ctx, flip, models.RegistrationStatusSelection, now, registrationIDs, flippable); err != nil {
			return fmt.Errorf("flip registrations to selection: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit selection replace: %w", err)
	}
	return nil
}

// announceCandidate is an internal row feeding the announce projection.
type announceCandidate struct {
	RegistrationID string                    `db:"registration_id"`
	FullName       string                    `db:"full_name"`
	Email          string                    `db:"email"`
	Current        models.RegistrationStatus `db:"current_status"`
	Outcome        models.SelectionStatus    `db:"selection_status"`
}

// AnnouncePeriod projects selection outcomes onto registration statuses for a
// period and flips the period to ANNOUNCED, all in one transaction. Only
// registrations whose status actually changes are touched, which makes a
// repeated sweep a no-op. The changed registrations are returned for the
// notification fan-out.
func (r *SelectionRepository) AnnouncePeriod(ctx context.Context, periodID string) ([]models.AnnouncedRegistration, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin announce: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const candidateQuery = `SELECT r.id AS registration_id, r.full_name, r.email,
        r.status AS current_status, s.status AS selection_status
        FROM registrations r
        JOIN selections s ON s.registration_id = r.id
        WHERE r.period_id = $1`
	var candidates []announceCandidate
	if err := tx.SelectContext(ctx, &candidates, candidateQuery, periodID); err != nil {
		return nil, fmt.Errorf("load announce candidates: %w", err)
	}

	now := time.Now().UTC()
	changed := make([]models.AnnouncedRegistration, 0, len(candidates))
	byTarget := make(map[models.RegistrationStatus]pq.StringArray)
	for _, candidate := range candidates {
		target, ok := candidate.Outcome.RegistrationStatusFor()
		if !ok || target == candidate.Current {
			continue
		}
		byTarget[target] = append(byTarget[target], candidate.RegistrationID)
		changed = append(changed, models.AnnouncedRegistration{
			RegistrationID: candidate.RegistrationID,
			FullName:       candidate.FullName,
			Email:          candidate.Email,
			Status:         target,
		})
	}

	const project = `UPDATE registrations SET status = $1, updated_at = $2 WHERE id = ANY($3)`
	for target, ids := range byTarget {
		if _, err := tx.ExecContext(ctx, project, target, now, ids); err != nil {
			return nil, fmt.Errorf("project announce statuses: %w", err)
		}
	}

	const flipPeriod = `UPDATE admission_periods SET status = $1, updated_at = $2 WHERE id = $3`
	if _, err := tx.ExecContext(ctx, flipPeriod, models.PeriodStatusAnnounced, now, periodID); err != nil {
		return nil, fmt.Errorf("flip period status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit announce: %w", err)
	}
	return changed, nil
}

// OverrideStatus applies a manual status decision to one selection and, when
// the new status projects onto a registration status, mirrors it onto the
// linked registration within the same transaction.
func (r *SelectionRepository) OverrideStatus(ctx context.Context, id string, status models.SelectionStatus, notes string) (*models.Selection, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin override: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	const update = `UPDATE selections SET status = $2, notes = $3, updated_at = $4 WHERE id = $1
        RETURNING id, registration_id, path_id, final_score, rank, status, score_breakdown, notes, created_at, updated_at`
	var selection models.Selection
	if err := tx.GetContext(ctx, &selection, update, id, status, notes, now); err != nil {
		return nil, err
	}

	if target, ok := status.RegistrationStatusFor(); ok {
		const project = `UPDATE registrations SET status = $2, updated_at = $3 WHERE id = $1`
		if _, err := tx.ExecContext(ctx, project, selection.RegistrationID, target, now); err != nil {
			return nil, fmt.Errorf("project override status: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit override: %w", err)
	}
	return &selection, nil
}

// StatsByPeriod aggregates selection progress per path of a period.
func (r *SelectionRepository) StatsByPeriod(ctx context.Context, periodID string) ([]models.PathStats, error) {
	const query = `SELECT a.id AS path_id, a.name AS path_name, a.type, a.quota,
        (SELECT COUNT(*) FROM registrations r WHERE r.path_id = a.id AND r.status NOT IN ('DRAFT', 'SUBMITTED')) AS pool_size,
        (SELECT COUNT(*) FROM selections s WHERE s.path_id = a.id AND s.status = 'PASSED') AS passed,
        (SELECT COUNT(*) FROM selections s WHERE s.path_id = a.id AND s.status = 'FAILED') AS failed,
        (SELECT COUNT(*) FROM selections s WHERE s.path_id = a.id AND s.status = 'RESERVE') AS reserve,
        (SELECT COUNT(*) FROM selections s WHERE s.path_id = a.id AND s.status = 'PENDING') AS pending
        FROM admission_paths a WHERE a.period_id = $1 ORDER BY a.name ASC`
	var stats []models.PathStats
	if err := r.db.SelectContext(ctx, &stats, query, periodID); err != nil {
		return nil, fmt.Errorf("aggregate path stats: %w", err)
	}
	return stats, nil
}
