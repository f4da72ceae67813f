package models

import (
	"time"
)

// AlertView is the map-client representation of a SafetyAlert.
type AlertView struct {
	StartDate          *time.Time         `json:"start_date"`
	EndDate            *time.Time         `json:"end_date"`
	Address            *string            `json:"address"`
	Latitude           *float64           `json:"latitude"`
	Longitude          *float64           `json:"longitude"`
	Radius             *float64           `json:"radius"`
	Title              string             `json:"title"`
	Description        string             `json:"description"`
	AlertType          AlertType          `json:"alert_type"`
	Severity           Severity           `json:"severity"`
	LocationType       LocationType       `json:"location_type"`
	Color              string             `json:"color"`
	IconURL            string             `json:"icon_url"`
	PolygonCoordinates PolygonCoordinates `json:"polygon_coordinates"`
	ID                 int64              `json:"id"`
	IsCurrentlyActive  bool               `json:"is_currently_active"`
}

// NewAlertView projects a for display at now. Radius is only exposed for
// circles and the polygon only for polygons.
func NewAlertView(a *SafetyAlert, now time.Time) AlertView {
	v := AlertView{
		ID:                a.ID,
		Title:             a.Title,
		Description:       a.Description,
		Address:           a.Address,
		AlertType:         a.AlertType,
		Severity:          a.Severity,
		LocationType:      a.LocationType,
		Latitude:          a.Latitude,
		Longitude:         a.Longitude,
		Color:             a.Severity.Color(),
		IconURL:           a.AlertType.IconURL(),
		StartDate:         a.StartDate,
		EndDate:           a.EndDate,
		IsCurrentlyActive: a.IsCurrentlyActive(now),
	}
	switch a.LocationType {
	case LocationCircle:
		v.Radius = a.Radius
	case LocationPolygon:
		v.PolygonCoordinates = a.PolygonCoordinates
	}
	return v
}
