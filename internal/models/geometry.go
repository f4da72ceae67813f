package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Coordinate range constants (WGS84).
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// PolygonCoordinates holds an alert polygon as raw JSON text: an ordered
// list of [lat, lng] pairs. The raw form is kept so that malformed input
// can be reported by ValidateAlert instead of failing at decode time.
type PolygonCoordinates []byte

// Points decodes the polygon into [lat, lng] pairs.
func (p PolygonCoordinates) Points() ([][2]float64, error) {
	var points [][2]float64
	if err := json.Unmarshal(p, &points); err != nil {
		return nil, fmt.Errorf("failed to decode polygon coordinates: %w", err)
	}
	return points, nil
}

// Scan implements sql.Scanner for reading the jsonb column.
func (p *PolygonCoordinates) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*p = nil
	case []byte:
		*p = append(PolygonCoordinates(nil), v...)
	case string:
		*p = PolygonCoordinates(v)
	default:
		return fmt.Errorf("failed to scan PolygonCoordinates: expected []byte or string, got %T", value)
	}
	return nil
}

// Value implements driver.Valuer for writing the jsonb column.
func (p PolygonCoordinates) Value() (driver.Value, error) {
	if len(p) == 0 {
		return nil, nil
	}
	if !json.Valid(p) {
		return nil, fmt.Errorf("polygon coordinates are not valid JSON")
	}
	return string(p), nil
}

// MarshalJSON emits the stored JSON as-is. Invalid text (only possible
// before validation) is emitted as a JSON string.
func (p PolygonCoordinates) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	if json.Valid(p) {
		return []byte(p), nil
	}
	return json.Marshal(string(p))
}

// UnmarshalJSON accepts either a JSON array or a string containing JSON,
// which is how admin forms submit the field.
func (p *PolygonCoordinates) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*p = nil
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return fmt.Errorf("failed to unmarshal polygon coordinates: %w", err)
		}
		*p = PolygonCoordinates(text)
		return nil
	}
	*p = append(PolygonCoordinates(nil), data...)
	return nil
}

// Bounds is an inclusive latitude/longitude bounding box.
type Bounds struct {
	North float64
	South float64
	East  float64
	West  float64
}

// Contains reports whether the point lies inside the box, edges included.
func (b Bounds) Contains(lat, lng float64) bool {
	return lat >= b.South && lat <= b.North && lng >= b.West && lng <= b.East
}

// String renders the box in the "north,south,east,west" query format.
func (b Bounds) String() string {
	return fmt.Sprintf("%g,%g,%g,%g", b.North, b.South, b.East, b.West)
}

// ParseBounds parses "north,south,east,west". Anything else (wrong arity,
// non-numeric or non-finite parts) yields ok=false so callers can skip the
// filter.
func ParseBounds(raw string) (Bounds, bool) {
	if strings.TrimSpace(raw) == "" {
		return Bounds{}, false
	}
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return Bounds{}, false
	}
	values := make([]float64, 4)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return Bounds{}, false
		}
		values[i] = v
	}
	return Bounds{North: values[0], South: values[1], East: values[2], West: values[3]}, true
}
