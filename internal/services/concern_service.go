package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonpan30062/newsaferoute/internal/logger"
	"github.com/jonpan30062/newsaferoute/internal/models"
	"github.com/jonpan30062/newsaferoute/internal/repository"
)

// ConcernInput is a user submission.
type ConcernInput struct {
	Latitude        *float64
	Longitude       *float64
	PhotoURL        *string
	LocationAddress string
	Category        models.ConcernCategory
	Description     string
}

// ConcernPage is one page of a concern listing.
type ConcernPage struct {
	Concerns []models.SafetyConcern `json:"concerns"`
	Total    int                    `json:"total"`
	Page     int                    `json:"page"`
	Limit    int                    `json:"limit"`
}

// ConcernService defines the interface for concern intake and review.
type ConcernService interface {
	// Submit validates and stores a new pending concern.
	// Returns models.ValidationErrors for invalid input.
	Submit(ctx context.Context, reporterID *int64, input ConcernInput) (*models.SafetyConcern, error)

	// Get returns the concern or ErrNotFound.
	Get(ctx context.Context, id int64) (*models.SafetyConcern, error)

	// List returns a filtered, paginated listing for reviewers.
	List(ctx context.Context, filter models.ConcernFilter) (*ConcernPage, error)

	// SetStatus moves a concern to status without creating an alert.
	// Returns ErrInvalidStatus for unknown statuses and ErrNotFound for
	// unknown ids.
	SetStatus(ctx context.Context, id int64, status models.ConcernStatus) (*models.SafetyConcern, error)

	// UpdateNotes replaces the reviewer notes on a concern.
	UpdateNotes(ctx context.Context, id int64, notes string) (*models.SafetyConcern, error)
}

type concernService struct {
	repo repository.ConcernRepository
	log  *logger.Logger
	now  func() time.Time
}

// NewConcernService creates a new instance of ConcernService.
func NewConcernService(repo repository.ConcernRepository, log *logger.Logger) ConcernService {
	return newConcernService(repo, log)
}

func newConcernService(repo repository.ConcernRepository, log *logger.Logger) *concernService {
	return &concernService{
		repo: repo,
		log:  log.WithComponent("concerns"),
		now:  time.Now,
	}
}

func (s *concernService) Submit(ctx context.Context, reporterID *int64, input ConcernInput) (*models.SafetyConcern, error) {
	concern := &models.SafetyConcern{
		ReporterID:      reporterID,
		LocationAddress: strings.TrimSpace(input.LocationAddress),
		Latitude:        input.Latitude,
		Longitude:       input.Longitude,
		Category:        input.Category,
		Description:     strings.TrimSpace(input.Description),
		PhotoURL:        input.PhotoURL,
		Status:          models.ConcernPending,
	}

	if err := models.ValidateConcern(concern); err != nil {
		s.log.Debug("Rejected concern submission", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	if err := s.repo.Create(ctx, concern); err != nil {
		s.log.Error("Failed to store concern", err, map[string]interface{}{
			"category": concern.Category,
		})
		return nil, fmt.Errorf("failed to store concern: %w", err)
	}

	s.log.Info("Concern submitted", map[string]interface{}{
		"concern_id":   concern.ID,
		"category":     concern.Category,
		"has_location": concern.HasLocation(),
	})
	return concern, nil
}

func (s *concernService) Get(ctx context.Context, id int64) (*models.SafetyConcern, error) {
	concern, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError("get", id, err)
	}
	return concern, nil
}

func (s *concernService) List(ctx context.Context, filter models.ConcernFilter) (*ConcernPage, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, filter.Status)
	}
	filter.Normalize()

	concerns, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.log.Error("Failed to list concerns", err, nil)
		return nil, fmt.Errorf("failed to list concerns: %w", err)
	}

	return &ConcernPage{
		Concerns: concerns,
		Total:    total,
		Page:     filter.Page,
		Limit:    filter.Limit,
	}, nil
}

func (s *concernService) SetStatus(ctx context.Context, id int64, status models.ConcernStatus) (*models.SafetyConcern, error) {
	if !status.Valid() {
		s.log.Warn("Invalid status requested", map[string]interface{}{
			"concern_id": id,
			"status":     status,
		})
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	concern, err := s.repo.UpdateStatus(ctx, id, status, s.now())
	if err != nil {
		return nil, s.mapRepoError("update status of", id, err)
	}

	s.log.Info("Concern status changed", map[string]interface{}{
		"concern_id": id,
		"status":     status,
	})
	return concern, nil
}

func (s *concernService) UpdateNotes(ctx context.Context, id int64, notes string) (*models.SafetyConcern, error) {
	concern, err := s.repo.UpdateNotes(ctx, id, notes, s.now())
	if err != nil {
		return nil, s.mapRepoError("update notes of", id, err)
	}
	return concern, nil
}

func (s *concernService) mapRepoError(action string, id int64, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("concern %d: %w", id, ErrNotFound)
	}
	s.log.Error("Concern repository failure", err, map[string]interface{}{
		"concern_id": id,
		"action":     action,
	})
	return fmt.Errorf("failed to %s concern %d: %w", action, id, err)
}
