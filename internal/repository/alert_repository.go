package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jonpan30062/newsaferoute/internal/database"
	"github.com/jonpan30062/newsaferoute/internal/models"
)

// AlertRepository defines data access for safety alerts.
type AlertRepository interface {
	// Create inserts the alert and fills in its id and timestamps.
	Create(ctx context.Context, alert *models.SafetyAlert) error

	// Update overwrites the editable fields of an existing alert.
	Update(ctx context.Context, alert *models.SafetyAlert) error

	// GetByID returns the alert or ErrNotFound.
	GetByID(ctx context.Context, id int64) (*models.SafetyAlert, error)

	// ListActive returns alerts flagged active that match the filter's
	// type, severity and inclusive bounding box. Date windows are not
	// checked here.
	ListActive(ctx context.Context, filter models.AlertFilter) ([]models.SafetyAlert, error)

	// SetActive flips is_active on the given alerts and returns the rows
	// that exist.
	SetActive(ctx context.Context, ids []int64, active bool) ([]models.SafetyAlert, error)

	// Expire deactivates the given alerts and sets their end_date to now.
	Expire(ctx context.Context, ids []int64, now time.Time) ([]models.SafetyAlert, error)

	// ExpireElapsed deactivates active alerts whose end_date is before now.
	ExpireElapsed(ctx context.Context, now time.Time) ([]models.SafetyAlert, error)
}

type alertRepository struct {
	db *database.Database
}

// NewAlertRepository creates a new instance of AlertRepository.
func NewAlertRepository(db *database.Database) AlertRepository {
	return &alertRepository{db: db}
}

const alertColumns = `
	id,
	title,
	description,
	address,
	alert_type,
	severity,
	location_type,
	latitude::float8,
	longitude::float8,
	radius,
	polygon_coordinates,
	is_active,
	start_date,
	end_date,
	created_by,
	source_concern_id,
	created_at,
	updated_at`

func scanAlert(row rowScanner) (*models.SafetyAlert, error) {
	var a models.SafetyAlert
	var polygon []byte
	err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Description,
		&a.Address,
		&a.AlertType,
		&a.Severity,
		&a.LocationType,
		&a.Latitude,
		&a.Longitude,
		&a.Radius,
		&polygon,
		&a.IsActive,
		&a.StartDate,
		&a.EndDate,
		&a.CreatedBy,
		&a.SourceConcernID,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(polygon) > 0 {
		a.PolygonCoordinates = models.PolygonCoordinates(polygon)
	}
	return &a, nil
}

func collectAlerts(rows pgx.Rows) ([]models.SafetyAlert, error) {
	defer rows.Close()

	alerts := make([]models.SafetyAlert, 0)
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return alerts, nil
}

// insertAlert is shared with the approval transaction.
func insertAlert(ctx context.Context, q interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}, a *models.SafetyAlert) error {
	query := `
		INSERT INTO safety_alerts (
			title, description, address, alert_type, severity, location_type,
			latitude, longitude, radius, polygon_coordinates, is_active,
			start_date, end_date, created_by, source_concern_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at
	`

	return q.QueryRow(ctx, query,
		a.Title,
		a.Description,
		a.Address,
		string(a.AlertType),
		string(a.Severity),
		string(a.LocationType),
		a.Latitude,
		a.Longitude,
		a.Radius,
		jsonParam(a.PolygonCoordinates),
		a.IsActive,
		a.StartDate,
		a.EndDate,
		a.CreatedBy,
		a.SourceConcernID,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *alertRepository) Create(ctx context.Context, a *models.SafetyAlert) error {
	if err := insertAlert(ctx, r.db.Pool, a); err != nil {
		return wrapError("create alert", err)
	}
	return nil
}

func (r *alertRepository) Update(ctx context.Context, a *models.SafetyAlert) error {
	query := `
		UPDATE safety_alerts
		SET title = $2,
			description = $3,
			address = $4,
			alert_type = $5,
			severity = $6,
			location_type = $7,
			latitude = $8,
			longitude = $9,
			radius = $10,
			polygon_coordinates = $11,
			is_active = $12,
			start_date = $13,
			end_date = $14,
			updated_at = NOW()
		WHERE id = $1
		RETURNING created_by, source_concern_id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		a.ID,
		a.Title,
		a.Description,
		a.Address,
		string(a.AlertType),
		string(a.Severity),
		string(a.LocationType),
		a.Latitude,
		a.Longitude,
		a.Radius,
		jsonParam(a.PolygonCoordinates),
		a.IsActive,
		a.StartDate,
		a.EndDate,
	).Scan(&a.CreatedBy, &a.SourceConcernID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return wrapError(fmt.Sprintf("update alert %d", a.ID), err)
	}
	return nil
}

func (r *alertRepository) GetByID(ctx context.Context, id int64) (*models.SafetyAlert, error) {
	query := `SELECT` + alertColumns + ` FROM safety_alerts WHERE id = $1`

	a, err := scanAlert(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, wrapError(fmt.Sprintf("get alert %d", id), err)
	}
	return a, nil
}

func (r *alertRepository) ListActive(ctx context.Context, filter models.AlertFilter) ([]models.SafetyAlert, error) {
	var where whereBuilder
	where.add("is_active = TRUE")
	if filter.AlertType != "" {
		where.add("alert_type = ?", string(filter.AlertType))
	}
	if filter.Severity != "" {
		where.add("severity = ?", string(filter.Severity))
	}
	if b := filter.Bounds; b != nil {
		where.add("latitude >= ? AND latitude <= ?", b.South, b.North)
		where.add("longitude >= ? AND longitude <= ?", b.West, b.East)
	}

	query := `SELECT` + alertColumns + ` FROM safety_alerts` + where.sql() +
		` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Pool.Query(ctx, query, where.args...)
	if err != nil {
		return nil, wrapError("list active alerts", err)
	}
	alerts, err := collectAlerts(rows)
	if err != nil {
		return nil, wrapError("scan active alerts", err)
	}
	return alerts, nil
}

func (r *alertRepository) SetActive(ctx context.Context, ids []int64, active bool) ([]models.SafetyAlert, error) {
	query := `
		UPDATE safety_alerts
		SET is_active = $2, updated_at = NOW()
		WHERE id = ANY($1)
		RETURNING` + alertColumns

	rows, err := r.db.Pool.Query(ctx, query, ids, active)
	if err != nil {
		return nil, wrapError("set alerts active", err)
	}
	alerts, err := collectAlerts(rows)
	if err != nil {
		return nil, wrapError("set alerts active", err)
	}
	return alerts, nil
}

func (r *alertRepository) Expire(ctx context.Context, ids []int64, now time.Time) ([]models.SafetyAlert, error) {
	query := `
		UPDATE safety_alerts
		SET is_active = FALSE, end_date = $2, updated_at = $2
		WHERE id = ANY($1)
		RETURNING` + alertColumns

	rows, err := r.db.Pool.Query(ctx, query, ids, now)
	if err != nil {
		return nil, wrapError("expire alerts", err)
	}
	alerts, err := collectAlerts(rows)
	if err != nil {
		return nil, wrapError("expire alerts", err)
	}
	return alerts, nil
}

func (r *alertRepository) ExpireElapsed(ctx context.Context, now time.Time) ([]models.SafetyAlert, error) {
	query := `
		UPDATE safety_alerts
		SET is_active = FALSE, updated_at = $1
		WHERE is_active = TRUE AND end_date IS NOT NULL AND end_date < $1
		RETURNING` + alertColumns

	rows, err := r.db.Pool.Query(ctx, query, now)
	if err != nil {
		return nil, wrapError("expire elapsed alerts", err)
	}
	alerts, err := collectAlerts(rows)
	if err != nil {
		return nil, wrapError("expire elapsed alerts", err)
	}
	return alerts, nil
}
