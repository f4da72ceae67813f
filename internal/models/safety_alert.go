package models

import (
	"time"
)

// AlertType classifies a SafetyAlert for map styling.
type AlertType string

const (
	AlertConstruction AlertType = "construction"
	AlertEmergency    AlertType = "emergency"
	AlertMaintenance  AlertType = "maintenance"
	AlertHazard       AlertType = "hazard"
	AlertOther        AlertType = "other"
)

var alertIcons = map[AlertType]string{
	AlertConstruction: "/static/icons/alerts/construction.svg",
	AlertEmergency:    "/static/icons/alerts/emergency.svg",
	AlertMaintenance:  "/static/icons/alerts/maintenance.svg",
	AlertHazard:       "/static/icons/alerts/hazard.svg",
	AlertOther:        "/static/icons/alerts/other.svg",
}

// Valid reports whether t is a known alert type.
func (t AlertType) Valid() bool {
	_, ok := alertIcons[t]
	return ok
}

// IconURL returns the map marker icon for the alert type.
func (t AlertType) IconURL() string {
	if icon, ok := alertIcons[t]; ok {
		return icon
	}
	return alertIcons[AlertOther]
}

// Severity ranks how urgent a SafetyAlert is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityColors = map[Severity]string{
	SeverityLow:      "#fbbf24",
	SeverityMedium:   "#f59e0b",
	SeverityHigh:     "#ef4444",
	SeverityCritical: "#dc2626",
}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	_, ok := severityColors[s]
	return ok
}

// Color returns the hex color the map client draws the alert with.
func (s Severity) Color() string {
	if color, ok := severityColors[s]; ok {
		return color
	}
	return severityColors[SeverityMedium]
}

// LocationType describes the geometry of a SafetyAlert.
type LocationType string

const (
	LocationPoint   LocationType = "point"
	LocationCircle  LocationType = "circle"
	LocationPolygon LocationType = "polygon"
)

// Valid reports whether l is a known location type.
func (l LocationType) Valid() bool {
	return l == LocationPoint || l == LocationCircle || l == LocationPolygon
}

// SafetyAlert is a hazard or event displayed on the campus map.
// SourceConcernID links alerts derived from an approved SafetyConcern.
type SafetyAlert struct {
	CreatedAt          time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `db:"updated_at" json:"updated_at"`
	StartDate          *time.Time         `db:"start_date" json:"start_date,omitempty"`
	EndDate            *time.Time         `db:"end_date" json:"end_date,omitempty"`
	Address            *string            `db:"address" json:"address,omitempty"`
	Latitude           *float64           `db:"latitude" json:"latitude,omitempty"`
	Longitude          *float64           `db:"longitude" json:"longitude,omitempty"`
	Radius             *float64           `db:"radius" json:"radius,omitempty"`
	CreatedBy          *int64             `db:"created_by" json:"created_by,omitempty"`
	SourceConcernID    *int64             `db:"source_concern_id" json:"source_concern_id,omitempty"`
	Title              string             `db:"title" json:"title"`
	Description        string             `db:"description" json:"description"`
	AlertType          AlertType          `db:"alert_type" json:"alert_type"`
	Severity           Severity           `db:"severity" json:"severity"`
	LocationType       LocationType       `db:"location_type" json:"location_type"`
	PolygonCoordinates PolygonCoordinates `db:"polygon_coordinates" json:"polygon_coordinates,omitempty"`
	ID                 int64              `db:"id" json:"id"`
	IsActive           bool               `db:"is_active" json:"is_active"`
}

// IsCurrentlyActive reports whether the alert should be shown at now:
// it must be flagged active and now must fall inside its optional
// [start_date, end_date] window.
func (a *SafetyAlert) IsCurrentlyActive(now time.Time) bool {
	if !a.IsActive {
		return false
	}
	if a.StartDate != nil && now.Before(*a.StartDate) {
		return false
	}
	if a.EndDate != nil && now.After(*a.EndDate) {
		return false
	}
	return true
}
