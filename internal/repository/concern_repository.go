package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jonpan30062/newsaferoute/internal/database"
	"github.com/jonpan30062/newsaferoute/internal/models"
)

// ConcernRepository defines data access for safety concerns.
type ConcernRepository interface {
	// Create inserts a new concern and fills in its id and timestamps.
	Create(ctx context.Context, concern *models.SafetyConcern) error

	// GetByID returns the concern or ErrNotFound.
	GetByID(ctx context.Context, id int64) (*models.SafetyConcern, error)

	// List returns one page of concerns (newest first) plus the total
	// number of matching rows.
	List(ctx context.Context, filter models.ConcernFilter) ([]models.SafetyConcern, int, error)

	// UpdateStatus sets the status. Moving to resolved stamps resolved_at
	// with now unless it is already set.
	UpdateStatus(ctx context.Context, id int64, status models.ConcernStatus, now time.Time) (*models.SafetyConcern, error)

	// UpdateNotes replaces the reviewer notes.
	UpdateNotes(ctx context.Context, id int64, notes string, now time.Time) (*models.SafetyConcern, error)

	// ResolveWithAlert resolves an approvable concern and inserts the
	// derived alert in a single transaction. ErrConflict means the concern
	// was no longer approvable or already has an alert.
	ResolveWithAlert(ctx context.Context, concernID int64, alert *models.SafetyAlert, note func(alertID int64) string, now time.Time) error
}

type concernRepository struct {
	db *database.Database
}

// NewConcernRepository creates a new instance of ConcernRepository.
func NewConcernRepository(db *database.Database) ConcernRepository {
	return &concernRepository{db: db}
}

const concernColumns = `
	id,
	reporter_id,
	location_address,
	latitude::float8,
	longitude::float8,
	category,
	description,
	photo_url,
	status,
	admin_notes,
	created_at,
	updated_at,
	resolved_at`

func scanConcern(row rowScanner) (*models.SafetyConcern, error) {
	var c models.SafetyConcern
	err := row.Scan(
		&c.ID,
		&c.ReporterID,
		&c.LocationAddress,
		&c.Latitude,
		&c.Longitude,
		&c.Category,
		&c.Description,
		&c.PhotoURL,
		&c.Status,
		&c.AdminNotes,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *concernRepository) Create(ctx context.Context, c *models.SafetyConcern) error {
	if c.Status == "" {
		c.Status = models.ConcernPending
	}

	query := `
		INSERT INTO safety_concerns (
			reporter_id, location_address, latitude, longitude,
			category, description, photo_url, status, admin_notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		c.ReporterID,
		c.LocationAddress,
		c.Latitude,
		c.Longitude,
		string(c.Category),
		c.Description,
		c.PhotoURL,
		string(c.Status),
		c.AdminNotes,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return wrapError("create concern", err)
	}
	return nil
}

func (r *concernRepository) GetByID(ctx context.Context, id int64) (*models.SafetyConcern, error) {
	query := `SELECT` + concernColumns + ` FROM safety_concerns WHERE id = $1`

	c, err := scanConcern(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, wrapError(fmt.Sprintf("get concern %d", id), err)
	}
	return c, nil
}

func (r *concernRepository) List(ctx context.Context, filter models.ConcernFilter) ([]models.SafetyConcern, int, error) {
	filter.Normalize()

	var where whereBuilder
	if filter.Status != "" {
		where.add("status = ?", string(filter.Status))
	}
	if filter.Category != "" {
		where.add("category = ?", string(filter.Category))
	}
	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		where.add("(location_address ILIKE ? OR description ILIKE ?)", pattern, pattern)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM safety_concerns` + where.sql()
	if err := r.db.Pool.QueryRow(ctx, countQuery, where.args...).Scan(&total); err != nil {
		return nil, 0, wrapError("count concerns", err)
	}

	whereSQL := where.sql()
	limit := where.next(filter.Limit)
	offset := where.next(filter.Offset())
	query := `SELECT` + concernColumns + ` FROM safety_concerns` + whereSQL +
		` ORDER BY created_at DESC, id DESC LIMIT ` + limit + ` OFFSET ` + offset

	rows, err := r.db.Pool.Query(ctx, query, where.args...)
	if err != nil {
		return nil, 0, wrapError("list concerns", err)
	}
	defer rows.Close()

	concerns := make([]models.SafetyConcern, 0, filter.Limit)
	for rows.Next() {
		c, err := scanConcern(rows)
		if err != nil {
			return nil, 0, wrapError("scan concern", err)
		}
		concerns = append(concerns, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapError("iterate concerns", err)
	}

	return concerns, total, nil
}

func (r *concernRepository) UpdateStatus(ctx context.Context, id int64, status models.ConcernStatus, now time.Time) (*models.SafetyConcern, error) {
	query := `
		UPDATE safety_concerns
		SET status = $2::text,
			updated_at = $3,
			resolved_at = CASE
				WHEN $2::text = 'resolved' AND resolved_at IS NULL THEN $3
				ELSE resolved_at
			END
		WHERE id = $1
		RETURNING` + concernColumns

	c, err := scanConcern(r.db.Pool.QueryRow(ctx, query, id, string(status), now))
	if err != nil {
		return nil, wrapError(fmt.Sprintf("update concern %d status", id), err)
	}
	return c, nil
}

func (r *concernRepository) UpdateNotes(ctx context.Context, id int64, notes string, now time.Time) (*models.SafetyConcern, error) {
	query := `
		UPDATE safety_concerns
		SET admin_notes = $2, updated_at = $3
		WHERE id = $1
		RETURNING` + concernColumns

	c, err := scanConcern(r.db.Pool.QueryRow(ctx, query, id, notes, now))
	if err != nil {
		return nil, wrapError(fmt.Sprintf("update concern %d notes", id), err)
	}
	return c, nil
}

// approvableStatuses are the states ResolveWithAlert may transition from.
func approvableStatuses() []string {
	out := make([]string, 0, len(models.ConcernStatuses))
	for _, s := range models.ConcernStatuses {
		if s.Approvable() {
			out = append(out, string(s))
		}
	}
	return out
}

func (r *concernRepository) ResolveWithAlert(
	ctx context.Context,
	concernID int64,
	alert *models.SafetyAlert,
	note func(alertID int64) string,
	now time.Time,
) error {
	op := fmt.Sprintf("resolve concern %d", concernID)

	err := pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		// The conditional update takes the row lock; a concurrent approver
		// blocks here and then matches nothing.
		tag, err := tx.Exec(ctx, `
			UPDATE safety_concerns
			SET status = 'resolved',
				resolved_at = $2,
				updated_at = $2
			WHERE id = $1 AND status = ANY($3)
		`, concernID, now, approvableStatuses())
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrConflict
		}

		if err := insertAlert(ctx, tx, alert); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE safety_concerns
			SET admin_notes = CASE
				WHEN admin_notes = '' THEN $2::text
				ELSE admin_notes || E'\n' || $2::text
			END
			WHERE id = $1
		`, concernID, note(alert.ID))
		return err
	})
	if err != nil {
		alert.ID = 0
		return wrapError(op, err)
	}
	return nil
}
