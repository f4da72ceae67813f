package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

// validPointAlert returns an alert that passes every invariant.
func validPointAlert() *SafetyAlert {
	return &SafetyAlert{
		Title:        "Wet floor",
		Description:  "Main corridor is wet",
		AlertType:    AlertHazard,
		Severity:     SeverityMedium,
		LocationType: LocationPoint,
		Latitude:     ptr(33.7756),
		Longitude:    ptr(-84.3963),
		IsActive:     true,
	}
}

func requireViolations(t *testing.T, err error) ValidationErrors {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	return verrs
}

func TestValidateAlert_Valid(t *testing.T) {
	assert.NoError(t, ValidateAlert(validPointAlert()))
}

func TestValidateAlert_Circle(t *testing.T) {
	t.Run("missing radius", func(t *testing.T) {
		a := validPointAlert()
		a.LocationType = LocationCircle

		verrs := requireViolations(t, ValidateAlert(a))
		assert.True(t, verrs.Has("radius"))
	})

	t.Run("zero radius", func(t *testing.T) {
		a := validPointAlert()
		a.LocationType = LocationCircle
		a.Radius = ptr(0.0)

		verrs := requireViolations(t, ValidateAlert(a))
		assert.True(t, verrs.Has("radius"))
	})

	t.Run("positive radius", func(t *testing.T) {
		a := validPointAlert()
		a.LocationType = LocationCircle
		a.Radius = ptr(76.2)

		assert.NoError(t, ValidateAlert(a))
	})
}

func TestValidateAlert_Polygon(t *testing.T) {
	tests := []struct {
		name    string
		polygon PolygonCoordinates
		wantErr bool
	}{
		{name: "three points", polygon: PolygonCoordinates(`[[33.77,-84.39],[33.78,-84.39],[33.78,-84.40]]`)},
		{name: "missing", polygon: nil, wantErr: true},
		{name: "invalid json", polygon: PolygonCoordinates(`[[33.77,-84.39],`), wantErr: true},
		{name: "not a list", polygon: PolygonCoordinates(`{"lat":1}`), wantErr: true},
		{name: "two points", polygon: PolygonCoordinates(`[[33.77,-84.39],[33.78,-84.39]]`), wantErr: true},
		{name: "bad pair", polygon: PolygonCoordinates(`[[33.77],[33.78,-84.39],[33.78,-84.40]]`), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validPointAlert()
			a.LocationType = LocationPolygon
			a.PolygonCoordinates = tt.polygon

			err := ValidateAlert(a)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			verrs := requireViolations(t, err)
			assert.True(t, verrs.Has("polygon_coordinates"))
		})
	}
}

func TestValidateAlert_DateRange(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	a := validPointAlert()
	a.StartDate = &start
	a.EndDate = ptr(start.Add(-time.Hour))
	verrs := requireViolations(t, ValidateAlert(a))
	assert.True(t, verrs.Has("end_date"))

	a.EndDate = ptr(start)
	assert.NoError(t, ValidateAlert(a), "equal dates are allowed")
}

func TestValidateAlert_CoordinateRanges(t *testing.T) {
	a := validPointAlert()
	a.Latitude = ptr(91.0)
	a.Longitude = ptr(-181.0)

	verrs := requireViolations(t, ValidateAlert(a))
	assert.True(t, verrs.Has("latitude"))
	assert.True(t, verrs.Has("longitude"))
}

func TestValidateAlert_RequiresAddressOrCoordinates(t *testing.T) {
	a := validPointAlert()
	a.Latitude = nil
	a.Longitude = nil

	verrs := requireViolations(t, ValidateAlert(a))
	assert.True(t, verrs.Has("location"))

	a.Address = ptr("266 Ferst Dr NW")
	assert.NoError(t, ValidateAlert(a))

	a.Address = ptr("   ")
	a.Latitude = ptr(33.77)
	verrs = requireViolations(t, ValidateAlert(a))
	assert.True(t, verrs.Has("location"), "a single coordinate is not enough")
}

func TestValidateAlert_OrderedViolations(t *testing.T) {
	a := &SafetyAlert{
		LocationType: LocationCircle,
		Latitude:     ptr(100.0),
		AlertType:    "flood",
		Severity:     SeverityLow,
	}

	verrs := requireViolations(t, ValidateAlert(a))
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field)
	}
	assert.Equal(t, []string{"latitude", "radius", "location", "title", "alert_type"}, fields)
	assert.Equal(t, "is required", verrs.Details()["title"])
}

func TestIsCurrentlyActive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	before := now.Add(-time.Hour)
	after := now.Add(time.Hour)

	tests := []struct {
		name     string
		isActive bool
		start    *time.Time
		end      *time.Time
		want     bool
	}{
		{name: "active without window", isActive: true, want: true},
		{name: "inactive without window", isActive: false, want: false},
		{name: "inactive inside window", isActive: false, start: &before, end: &after, want: false},
		{name: "inside window", isActive: true, start: &before, end: &after, want: true},
		{name: "before start", isActive: true, start: &after, want: false},
		{name: "after end", isActive: true, end: &before, want: false},
		{name: "exactly at start", isActive: true, start: &now, want: true},
		{name: "exactly at end", isActive: true, end: &now, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &SafetyAlert{IsActive: tt.isActive, StartDate: tt.start, EndDate: tt.end}
			assert.Equal(t, tt.want, a.IsCurrentlyActive(now))
		})
	}
}

func TestSeverityColorAndIcon(t *testing.T) {
	assert.Equal(t, "#fbbf24", SeverityLow.Color())
	assert.Equal(t, "#f59e0b", SeverityMedium.Color())
	assert.Equal(t, "#ef4444", SeverityHigh.Color())
	assert.Equal(t, "#dc2626", SeverityCritical.Color())

	assert.Equal(t, "/static/icons/alerts/hazard.svg", AlertHazard.IconURL())
	assert.Equal(t, AlertOther.IconURL(), AlertType("unknown").IconURL())
}

func TestValidateConcern(t *testing.T) {
	valid := func() *SafetyConcern {
		return &SafetyConcern{
			LocationAddress: "Ramp behind the library",
			Category:        CategoryUnsafePath,
			Description:     "Broken handrail on ramp",
			Latitude:        ptr(33.77),
			Longitude:       ptr(-84.39),
		}
	}

	assert.NoError(t, ValidateConcern(valid()))

	c := valid()
	c.LocationAddress = "Lib"
	c.Description = "short"
	c.Category = "graffiti"
	verrs := requireViolations(t, ValidateConcern(c))
	assert.True(t, verrs.Has("location_address"))
	assert.True(t, verrs.Has("description"))
	assert.True(t, verrs.Has("category"))

	c = valid()
	c.Longitude = nil
	verrs = requireViolations(t, ValidateConcern(c))
	assert.True(t, verrs.Has("location"))

	c = valid()
	c.Latitude = nil
	c.Longitude = nil
	assert.NoError(t, ValidateConcern(c), "coordinates are optional")

	c = valid()
	c.Status = "archived"
	verrs = requireViolations(t, ValidateConcern(c))
	assert.True(t, verrs.Has("status"))
}

func TestConcernStatusAndCategory(t *testing.T) {
	assert.True(t, ConcernPending.Approvable())
	assert.True(t, ConcernApproved.Approvable())
	assert.True(t, ConcernInReview.Approvable())
	assert.False(t, ConcernResolved.Approvable())
	assert.False(t, ConcernDismissed.Approvable())
	assert.False(t, ConcernStatus("closed").Valid())

	assert.Equal(t, "Unsafe Path", CategoryUnsafePath.Display())
	assert.Equal(t, "graffiti", ConcernCategory("graffiti").Display())
}
