package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonpan30062/newsaferoute/internal/logger"
	"github.com/jonpan30062/newsaferoute/internal/models"
	"github.com/jonpan30062/newsaferoute/internal/repository"
)

// Building search limits
const (
	DefaultBuildingResults = 10
	MaxBuildingResults     = 50
)

// BuildingService searches the campus building directory.
type BuildingService interface {
	// Search returns buildings matching q. An empty query returns no results.
	Search(ctx context.Context, q string, limit int) ([]models.Building, error)
}

type buildingService struct {
	repo repository.BuildingRepository
	log  *logger.Logger
}

// NewBuildingService creates a new instance of BuildingService.
func NewBuildingService(repo repository.BuildingRepository, log *logger.Logger) BuildingService {
	return &buildingService{repo: repo, log: log}
}

func (s *buildingService) Search(ctx context.Context, q string, limit int) ([]models.Building, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []models.Building{}, nil
	}

	if limit < 1 {
		limit = DefaultBuildingResults
	}
	if limit > MaxBuildingResults {
		limit = MaxBuildingResults
	}

	buildings, err := s.repo.Search(ctx, q, limit)
	if err != nil {
		s.log.Error("Failed to search buildings", err, map[string]interface{}{
			"query": q,
		})
		return nil, fmt.Errorf("failed to search buildings: %w", err)
	}
	return buildings, nil
}
