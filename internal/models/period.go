package models

import "time"

// PeriodStatus represents the lifecycle of an admission period.
type PeriodStatus string

// Possible period statuses.
const (
	PeriodStatusDraft     PeriodStatus = "DRAFT"
	PeriodStatusOpen      PeriodStatus = "OPEN"
	PeriodStatusClosed    PeriodStatus = "CLOSED"
	PeriodStatusAnnounced PeriodStatus = "ANNOUNCED"
)

// Valid reports whether the status is a known value.
func (s PeriodStatus) Valid() bool {
	switch s {
	case PeriodStatusDraft, PeriodStatusOpen, PeriodStatusClosed, PeriodStatusAnnounced:
		return true
	default:
		return false
	}
}

// AdmissionPeriod groups admission paths for one intake year.
type AdmissionPeriod struct {
	ID           string       `db:"id" json:"id"`
	Name         string       `db:"name" json:"name"`
	AcademicYear string       `db:"academic_year" json:"academic_year"`
	StartDate    time.Time    `db:"start_date" json:"start_date"`
	EndDate      time.Time    `db:"end_date" json:"end_date"`
	Status       PeriodStatus `db:"status" json:"status"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// PeriodFilter provides filters for listing periods.
type PeriodFilter struct {
	AcademicYear string
	Status       PeriodStatus
	Page         int
	PageSize     int
}
