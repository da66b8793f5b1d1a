package models

import "time"

// RegistrationStatus represents the lifecycle of a candidate registration.
type RegistrationStatus string

// Possible registration statuses.
const (
	RegistrationStatusDraft     RegistrationStatus = "DRAFT"
	RegistrationStatusSubmitted RegistrationStatus = "SUBMITTED"
	RegistrationStatusVerified  RegistrationStatus = "VERIFIED"
	RegistrationStatusSelection RegistrationStatus = "SELECTION"
	RegistrationStatusAccepted  RegistrationStatus = "ACCEPTED"
	RegistrationStatusRejected  RegistrationStatus = "REJECTED"
)

// Valid reports whether the status is a known value.
func (s RegistrationStatus) Valid() bool {
	switch s {
	case RegistrationStatusDraft, RegistrationStatusSubmitted, RegistrationStatusVerified,
		RegistrationStatusSelection, RegistrationStatusAccepted, RegistrationStatusRejected:
		return true
	default:
		return false
	}
}

// Eligible reports whether a registration in this status enters the scoring
// pool: it must have passed verification.
func (s RegistrationStatus) Eligible() bool {
	switch s {
	case RegistrationStatusVerified, RegistrationStatusSelection,
		RegistrationStatusAccepted, RegistrationStatusRejected:
		return true
	case RegistrationStatusDraft, RegistrationStatusSubmitted:
		return false
	default:
		return false
	}
}

// ScoreType classifies where a score value came from.
type ScoreType string

// Possible score types.
const (
	ScoreTypeReportCard ScoreType = "REPORT_CARD"
	ScoreTypeExam       ScoreType = "EXAM"
	ScoreTypeTest       ScoreType = "TEST"
)

// Valid reports whether the score type is a known value.
func (t ScoreType) Valid() bool {
	switch t {
	case ScoreTypeReportCard, ScoreTypeExam, ScoreTypeTest:
		return true
	default:
		return false
	}
}

// Registration is a candidate application to one path within one period.
// PeriodID is denormalised from the path and must agree with it.
type Registration struct {
	ID          string             `db:"id" json:"id"`
	PeriodID    string             `db:"period_id" json:"period_id"`
	PathID      string             `db:"path_id" json:"path_id"`
	FullName    string             `db:"full_name" json:"full_name"`
	NISN        string             `db:"nisn" json:"nisn"`
	Email       string             `db:"email" json:"email"`
	Gender      string             `db:"gender" json:"gender"`
	BirthDate   *time.Time         `db:"birth_date" json:"birth_date,omitempty"`
	DistanceKM  *float64           `db:"distance_km" json:"distance_km,omitempty"`
	Status      RegistrationStatus `db:"status" json:"status"`
	CreatedAt   time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `db:"updated_at" json:"updated_at"`
}

// RegistrationScore is one subject score attached to a registration.
type RegistrationScore struct {
	ID             string    `db:"id" json:"id"`
	RegistrationID string    `db:"registration_id" json:"registration_id"`
	Subject        string    `db:"subject" json:"subject"`
	Semester       int       `db:"semester" json:"semester"`
	Type           ScoreType `db:"type" json:"type"`
	Value          float64   `db:"value" json:"value"`
}

// RegistrationAchievement is one achievement attached to a registration.
// Points are computed at data entry; the selection engine only sums them.
type RegistrationAchievement struct {
	ID             string  `db:"id" json:"id"`
	RegistrationID string  `db:"registration_id" json:"registration_id"`
	Name           string  `db:"name" json:"name"`
	Level          string  `db:"level" json:"level"`
	Rank           int     `db:"rank" json:"rank"`
	Points         float64 `db:"points" json:"points"`
}

// RegistrationDetail enriches Registration with child collections.
type RegistrationDetail struct {
	Registration
	Scores       []RegistrationScore       `json:"scores"`
	Achievements []RegistrationAchievement `json:"achievements"`
}

// RegistrationFilter provides filters for listing registrations.
type RegistrationFilter struct {
	PeriodID  string
	PathID    string
	Status    RegistrationStatus
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
