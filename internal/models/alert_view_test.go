package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAlertView(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("circle exposes radius only", func(t *testing.T) {
		a := &SafetyAlert{
			ID:                 7,
			Title:              "Unsafe Path - Ramp",
			AlertType:          AlertHazard,
			Severity:           SeverityHigh,
			LocationType:       LocationCircle,
			Radius:             ptr(76.2),
			PolygonCoordinates: PolygonCoordinates(`[[1,2],[3,4],[5,6]]`),
			IsActive:           true,
		}

		v := NewAlertView(a, now)
		assert.Equal(t, int64(7), v.ID)
		require.NotNil(t, v.Radius)
		assert.Equal(t, 76.2, *v.Radius)
		assert.Nil(t, v.PolygonCoordinates)
		assert.Equal(t, "#ef4444", v.Color)
		assert.Equal(t, "/static/icons/alerts/hazard.svg", v.IconURL)
		assert.True(t, v.IsCurrentlyActive)
	})

	t.Run("polygon exposes coordinates only", func(t *testing.T) {
		a := &SafetyAlert{
			AlertType:          AlertConstruction,
			Severity:           SeverityLow,
			LocationType:       LocationPolygon,
			Radius:             ptr(10.0),
			PolygonCoordinates: PolygonCoordinates(`[[1,2],[3,4],[5,6]]`),
			IsActive:           true,
			EndDate:            ptr(now.Add(-time.Minute)),
		}

		v := NewAlertView(a, now)
		assert.Nil(t, v.Radius)
		assert.False(t, v.IsCurrentlyActive)

		out, err := json.Marshal(v)
		require.NoError(t, err)

		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(out, &decoded))
		assert.Nil(t, decoded["radius"])
		assert.Equal(t, []interface{}{[]interface{}{1.0, 2.0}, []interface{}{3.0, 4.0}, []interface{}{5.0, 6.0}}, decoded["polygon_coordinates"])
		assert.Equal(t, "#fbbf24", decoded["color"])
	})
}
