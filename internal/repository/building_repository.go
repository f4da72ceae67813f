package repository

import (
	"context"

	"github.com/jonpan30062/newsaferoute/internal/database"
	"github.com/jonpan30062/newsaferoute/internal/models"
)

// BuildingRepository defines read access to the building directory.
type BuildingRepository interface {
	// Search returns buildings whose name, code or address contains q
	// (case-insensitive), ordered by name.
	Search(ctx context.Context, q string, limit int) ([]models.Building, error)
}

type buildingRepository struct {
	db *database.Database
}

// NewBuildingRepository creates a new instance of BuildingRepository.
func NewBuildingRepository(db *database.Database) BuildingRepository {
	return &buildingRepository{db: db}
}

func (r *buildingRepository) Search(ctx context.Context, q string, limit int) ([]models.Building, error) {
	query := `
		SELECT id, name, code, address, latitude::float8, longitude::float8, created_at
		FROM buildings
		WHERE name ILIKE $1 OR code ILIKE $1 OR address ILIKE $1
		ORDER BY name, id
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, containsPattern(q), limit)
	if err != nil {
		return nil, wrapError("search buildings", err)
	}
	defer rows.Close()

	buildings := make([]models.Building, 0)
	for rows.Next() {
		var b models.Building
		if err := rows.Scan(&b.ID, &b.Name, &b.Code, &b.Address, &b.Latitude, &b.Longitude, &b.CreatedAt); err != nil {
			return nil, wrapError("scan building", err)
		}
		buildings = append(buildings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("iterate buildings", err)
	}

	return buildings, nil
}
