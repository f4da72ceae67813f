package models

import (
	"time"
)

// ConcernCategory classifies what a user is reporting.
type ConcernCategory string

const (
	CategoryBrokenLight ConcernCategory = "broken_light"
	CategoryUnsafePath  ConcernCategory = "unsafe_path"
	CategoryObstruction ConcernCategory = "obstruction"
	CategoryVandalism   ConcernCategory = "vandalism"
	CategoryMaintenance ConcernCategory = "maintenance"
	CategoryOther       ConcernCategory = "other"
)

var categoryLabels = map[ConcernCategory]string{
	CategoryBrokenLight: "Broken Light",
	CategoryUnsafePath:  "Unsafe Path",
	CategoryObstruction: "Obstruction",
	CategoryVandalism:   "Vandalism",
	CategoryMaintenance: "Maintenance",
	CategoryOther:       "Other",
}

// Valid reports whether c is a known category.
func (c ConcernCategory) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Display returns the human-readable label for the category.
// Unknown categories are displayed as-is.
func (c ConcernCategory) Display() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// ConcernStatus is the review state of a SafetyConcern.
type ConcernStatus string

const (
	ConcernPending   ConcernStatus = "pending"
	ConcernApproved  ConcernStatus = "approved"
	ConcernInReview  ConcernStatus = "in_review"
	ConcernResolved  ConcernStatus = "resolved"
	ConcernDismissed ConcernStatus = "dismissed"
)

// ConcernStatuses lists every status in display order.
var ConcernStatuses = []ConcernStatus{
	ConcernPending,
	ConcernApproved,
	ConcernInReview,
	ConcernResolved,
	ConcernDismissed,
}

// Valid reports whether s is a known status.
func (s ConcernStatus) Valid() bool {
	for _, known := range ConcernStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Approvable reports whether a concern in this status may be converted
// into a SafetyAlert.
func (s ConcernStatus) Approvable() bool {
	return s == ConcernPending || s == ConcernApproved || s == ConcernInReview
}

// SafetyConcern is a user-submitted safety report awaiting review.
// Nullable columns use pointers to distinguish NULL from zero values.
type SafetyConcern struct {
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
	ResolvedAt      *time.Time      `db:"resolved_at" json:"resolved_at,omitempty"`
	ReporterID      *int64          `db:"reporter_id" json:"reporter_id,omitempty"`
	Latitude        *float64        `db:"latitude" json:"latitude,omitempty"`
	Longitude       *float64        `db:"longitude" json:"longitude,omitempty"`
	PhotoURL        *string         `db:"photo_url" json:"photo_url,omitempty"`
	LocationAddress string          `db:"location_address" json:"location_address"`
	Category        ConcernCategory `db:"category" json:"category"`
	Description     string          `db:"description" json:"description"`
	Status          ConcernStatus   `db:"status" json:"status"`
	AdminNotes      string          `db:"admin_notes" json:"admin_notes,omitempty"`
	ID              int64           `db:"id" json:"id"`
}

// HasLocation reports whether both coordinates are set.
func (c *SafetyConcern) HasLocation() bool {
	return c.Latitude != nil && c.Longitude != nil
}
