package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrValidation is matched by errors.Is for every ValidationErrors value.
var ErrValidation = errors.New("validation failed")

// Field length limits for concern submissions.
const (
	MinLocationAddressLength = 5
	MinDescriptionLength     = 10
	MinPolygonPoints         = 3
)

// FieldError is a single field-level violation.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationErrors is the ordered set of violations found on a record.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Field+": "+fe.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) Unwrap() error {
	return ErrValidation
}

// Details converts the violations to a field -> reason map for API responses.
// When a field has several violations the first one wins.
func (v ValidationErrors) Details() map[string]interface{} {
	details := make(map[string]interface{}, len(v))
	for _, fe := range v {
		if _, exists := details[fe.Field]; !exists {
			details[fe.Field] = fe.Reason
		}
	}
	return details
}

// Has reports whether field has at least one violation.
func (v ValidationErrors) Has(field string) bool {
	for _, fe := range v {
		if fe.Field == field {
			return true
		}
	}
	return false
}

func (v *ValidationErrors) add(field, format string, args ...interface{}) {
	*v = append(*v, FieldError{Field: field, Reason: fmt.Sprintf(format, args...)})
}

func (v ValidationErrors) orNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

func checkCoordinates(errs *ValidationErrors, lat, lng *float64) {
	if lat != nil && (*lat < MinLatitude || *lat > MaxLatitude) {
		errs.add("latitude", "must be between %g and %g", MinLatitude, MaxLatitude)
	}
	if lng != nil && (*lng < MinLongitude || *lng > MaxLongitude) {
		errs.add("longitude", "must be between %g and %g", MinLongitude, MaxLongitude)
	}
}

// ValidateAlert checks the write-time invariants of a SafetyAlert.
// It returns nil or a ValidationErrors listing every violation.
func ValidateAlert(a *SafetyAlert) error {
	var errs ValidationErrors

	checkCoordinates(&errs, a.Latitude, a.Longitude)

	if a.LocationType == LocationCircle && (a.Radius == nil || *a.Radius <= 0) {
		errs.add("radius", "is required and must be greater than 0 for circle alerts")
	}

	if a.LocationType == LocationPolygon {
		if reason := polygonViolation(a.PolygonCoordinates); reason != "" {
			errs.add("polygon_coordinates", "%s", reason)
		}
	}

	if a.StartDate != nil && a.EndDate != nil && a.EndDate.Before(*a.StartDate) {
		errs.add("end_date", "must be on or after start_date")
	}

	hasAddress := a.Address != nil && strings.TrimSpace(*a.Address) != ""
	hasCoordinates := a.Latitude != nil && a.Longitude != nil
	if !hasAddress && !hasCoordinates {
		errs.add("location", "either address or both latitude and longitude are required")
	}

	if strings.TrimSpace(a.Title) == "" {
		errs.add("title", "is required")
	}
	if !a.AlertType.Valid() {
		errs.add("alert_type", "unknown alert type %q", a.AlertType)
	}
	if !a.Severity.Valid() {
		errs.add("severity", "unknown severity %q", a.Severity)
	}
	if !a.LocationType.Valid() {
		errs.add("location_type", "unknown location type %q", a.LocationType)
	}

	return errs.orNil()
}

func polygonViolation(p PolygonCoordinates) string {
	if len(strings.TrimSpace(string(p))) == 0 {
		return "is required for polygon alerts"
	}
	if !json.Valid(p) {
		return "must be valid JSON"
	}
	var items []json.RawMessage
	if err := json.Unmarshal(p, &items); err != nil {
		return "must be a list of [lat, lng] pairs"
	}
	if len(items) < MinPolygonPoints {
		return fmt.Sprintf("must contain at least %d points", MinPolygonPoints)
	}
	for i, item := range items {
		var pair []float64
		if err := json.Unmarshal(item, &pair); err != nil || len(pair) != 2 {
			return fmt.Sprintf("point %d must be a [lat, lng] pair", i)
		}
	}
	return ""
}

// ValidateConcern checks a user submission before it is stored.
func ValidateConcern(c *SafetyConcern) error {
	var errs ValidationErrors

	if utf8.RuneCountInString(strings.TrimSpace(c.LocationAddress)) < MinLocationAddressLength {
		errs.add("location_address", "must be at least %d characters", MinLocationAddressLength)
	}
	if utf8.RuneCountInString(strings.TrimSpace(c.Description)) < MinDescriptionLength {
		errs.add("description", "must be at least %d characters", MinDescriptionLength)
	}
	if !c.Category.Valid() {
		errs.add("category", "unknown category %q", c.Category)
	}
	if c.Status != "" && !c.Status.Valid() {
		errs.add("status", "unknown status %q", c.Status)
	}

	checkCoordinates(&errs, c.Latitude, c.Longitude)
	if (c.Latitude == nil) != (c.Longitude == nil) {
		errs.add("location", "latitude and longitude must be provided together")
	}

	return errs.orNil()
}
