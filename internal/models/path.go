package models

import "time"

// PathType identifies the selection strategy of an admission path.
type PathType string

// Admission path types per the national PPDB scheme.
const (
	PathTypeZonasi      PathType = "ZONASI"
	PathTypePrestasi    PathType = "PRESTASI"
	PathTypeAfirmasi    PathType = "AFIRMASI"
	PathTypePerpindahan PathType = "PERPINDAHAN"
	PathTypeReguler     PathType = "REGULER"
)

// Valid reports whether the path type is a known value.
func (t PathType) Valid() bool {
	switch t {
	case PathTypeZonasi, PathTypePrestasi, PathTypeAfirmasi, PathTypePerpindahan, PathTypeReguler:
		return true
	default:
		return false
	}
}

// Selection criteria weight keys recognised by the engine.
const (
	CriteriaAcademic    = "academic"
	CriteriaAchievement = "achievement"
	CriteriaDistance    = "distance"
)

// AdmissionPath is a quota bucket with a scoring strategy inside a period.
type AdmissionPath struct {
	ID       string   `db:"id" json:"id"`
	PeriodID string   `db:"period_id" json:"period_id"`
	Name     string   `db:"name" json:"name"`
	Type     PathType `db:"type" json:"type"`
	Quota    int      `db:"quota" json:"quota"`
	// MinScore forces FAILED on any registration whose final score falls
	// below it, regardless of rank.
	MinScore *float64 `db:"min_score" json:"min_score,omitempty"`
	// MaxDistanceKM disqualifies zonasi registrations living further away.
	MaxDistanceKM *float64 `db:"max_distance_km" json:"max_distance_km,omitempty"`
	// SelectionCriteria overrides the default component weights when set.
	SelectionCriteria JSONMap `db:"selection_criteria" json:"selection_criteria,omitempty"`
	// ReserveCount gives RESERVE status to the next N ranked registrations
	// beyond quota. Zero means reserve is reachable only by manual override.
	ReserveCount int       `db:"reserve_count" json:"reserve_count"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// PathFilter provides filters for listing paths.
type PathFilter struct {
	PeriodID string
	Type     PathType
	Page     int
	PageSize int
}
