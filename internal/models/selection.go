package models

import "time"

// SelectionStatus represents the computed outcome of a registration.
type SelectionStatus string

// Possible selection statuses.
const (
	SelectionStatusPending SelectionStatus = "PENDING"
	SelectionStatusPassed  SelectionStatus = "PASSED"
	SelectionStatusFailed  SelectionStatus = "FAILED"
	SelectionStatusReserve SelectionStatus = "RESERVE"
)

// Valid reports whether the status is a known value.
func (s SelectionStatus) Valid() bool {
	switch s {
	case SelectionStatusPending, SelectionStatusPassed, SelectionStatusFailed, SelectionStatusReserve:
		return true
	default:
		return false
	}
}

// RegistrationStatusFor maps a selection outcome onto the registration status
// it projects during announcement. Both the bulk announce sweep and single
// manual overrides go through this table so the two can never disagree.
// The second return is false when the outcome does not project (PENDING and
// RESERVE wait for an explicit decision).
func (s SelectionStatus) RegistrationStatusFor() (RegistrationStatus, bool) {
	switch s {
	case SelectionStatusPassed:
		return RegistrationStatusAccepted, true
	case SelectionStatusFailed:
		return RegistrationStatusRejected, true
	case SelectionStatusPending, SelectionStatusReserve:
		return "", false
	default:
		return "", false
	}
}

// Selection is the computed outcome for one registration, one-to-one with it.
// Rows are created or fully replaced by a selection run for their path.
type Selection struct {
	ID             string          `db:"id" json:"id"`
	RegistrationID string          `db:"registration_id" json:"registration_id"`
	PathID         string          `db:"path_id" json:"path_id"`
	FinalScore     float64         `db:"final_score" json:"final_score"`
	Rank           *int            `db:"rank" json:"rank,omitempty"`
	Status         SelectionStatus `db:"status" json:"status"`
	ScoreBreakdown JSONMap         `db:"score_breakdown" json:"score_breakdown,omitempty"`
	Notes          string          `db:"notes" json:"notes,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// SelectionDetail enriches Selection with candidate info for listings.
type SelectionDetail struct {
	Selection
	FullName string `db:"full_name" json:"full_name"`
	NISN     string `db:"nisn" json:"nisn"`
}

// SelectionFilter provides filters for listing selection results.
type SelectionFilter struct {
	PathID   string
	Status   SelectionStatus
	Page     int
	PageSize int
}

// SelectionRunResult aggregates outcome counts of one selection run.
type SelectionRunResult struct {
	PathID  string `json:"path_id"`
	Total   int    `json:"total"`
	Passed  int    `json:"passed"`
	Failed  int    `json:"failed"`
	Reserve int    `json:"reserve"`
}

// AnnouncedRegistration captures one registration whose status changed during
// an announce sweep, feeding the notification fan-out.
type AnnouncedRegistration struct {
	RegistrationID string             `db:"registration_id" json:"registration_id"`
	FullName       string             `db:"full_name" json:"full_name"`
	Email          string             `db:"email" json:"email"`
	Status         RegistrationStatus `db:"status" json:"status"`
}

// PathStats summarises selection progress for one path.
type PathStats struct {
	PathID   string   `db:"path_id" json:"path_id"`
	PathName string   `db:"path_name" json:"path_name"`
	Type     PathType `db:"type" json:"type"`
	Quota    int      `db:"quota" json:"quota"`
	PoolSize int      `db:"pool_size" json:"pool_size"`
	Passed   int      `db:"passed" json:"passed"`
	Failed   int      `db:"failed" json:"failed"`
	Reserve  int      `db:"reserve" json:"reserve"`
	Pending  int      `db:"pending" json:"pending"`
}
