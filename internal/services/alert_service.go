package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonpan30062/newsaferoute/internal/cache"
	"github.com/jonpan30062/newsaferoute/internal/logger"
	"github.com/jonpan30062/newsaferoute/internal/models"
	"github.com/jonpan30062/newsaferoute/internal/notify"
	"github.com/jonpan30062/newsaferoute/internal/repository"
)

// AlertInput carries the reviewer-editable fields of an alert.
type AlertInput struct {
	StartDate          *time.Time
	EndDate            *time.Time
	Address            *string
	Latitude           *float64
	Longitude          *float64
	Radius             *float64
	IsActive           *bool
	Title              string
	Description        string
	AlertType          models.AlertType
	Severity           models.Severity
	LocationType       models.LocationType
	PolygonCoordinates models.PolygonCoordinates
}

func (in AlertInput) applyTo(a *models.SafetyAlert) {
	a.Title = strings.TrimSpace(in.Title)
	a.Description = in.Description
	a.Address = in.Address
	a.AlertType = in.AlertType
	a.Severity = in.Severity
	a.LocationType = in.LocationType
	a.Latitude = in.Latitude
	a.Longitude = in.Longitude
	a.Radius = in.Radius
	a.PolygonCoordinates = in.PolygonCoordinates
	a.StartDate = in.StartDate
	a.EndDate = in.EndDate
	if in.IsActive != nil {
		a.IsActive = *in.IsActive
	}
}

// AlertService is the alert query layer plus reviewer alert management.
type AlertService interface {
	// ListActive returns alerts that are currently active and match the
	// filter. Filtering runs in two phases: storage-level predicates
	// (optionally cached) and the date-window check at the current time.
	ListActive(ctx context.Context, filter models.AlertFilter) ([]models.AlertView, error)

	// Get returns one alert's view or ErrNotFound.
	Get(ctx context.Context, id int64) (models.AlertView, error)

	// Create validates and stores a reviewer-authored alert.
	Create(ctx context.Context, input AlertInput, createdBy *int64) (*models.SafetyAlert, error)

	// Update validates and overwrites an existing alert.
	Update(ctx context.Context, id int64, input AlertInput) (*models.SafetyAlert, error)

	// SetActive bulk activates or deactivates alerts and returns how many
	// existed.
	SetActive(ctx context.Context, ids []int64, active bool) (int, error)

	// Expire deactivates alerts and ends their window now.
	Expire(ctx context.Context, ids []int64) (int, error)

	// ExpireElapsed deactivates alerts whose end date has passed.
	ExpireElapsed(ctx context.Context) (int, error)
}

type alertService struct {
	repo    repository.AlertRepository
	cache   cache.AlertCache
	changes alertChanges
	log     *logger.Logger
	now     func() time.Time
}

// NewAlertService creates a new instance of AlertService.
func NewAlertService(
	repo repository.AlertRepository,
	alertCache cache.AlertCache,
	publisher notify.Publisher,
	log *logger.Logger,
) AlertService {
	return newAlertService(repo, alertCache, publisher, log)
}

func newAlertService(
	repo repository.AlertRepository,
	alertCache cache.AlertCache,
	publisher notify.Publisher,
	log *logger.Logger,
) *alertService {
	log = log.WithComponent("alerts")
	return &alertService{
		repo:    repo,
		cache:   alertCache,
		changes: alertChanges{cache: alertCache, publisher: publisher, log: log},
		log:     log,
		now:     time.Now,
	}
}

func (s *alertService) ListActive(ctx context.Context, filter models.AlertFilter) ([]models.AlertView, error) {
	candidates, err := s.storageCandidates(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := s.now()
	views := make([]models.AlertView, 0, len(candidates))
	for i := range candidates {
		if !candidates[i].IsCurrentlyActive(now) {
			continue
		}
		views = append(views, models.NewAlertView(&candidates[i], now))
	}

	s.log.Debug("Active alerts listed", map[string]interface{}{
		"filter":     filter.CacheKey(),
		"candidates": len(candidates),
		"count":      len(views),
	})
	return views, nil
}

// storageCandidates runs the storage-level phase, preferring the cache.
func (s *alertService) storageCandidates(ctx context.Context, filter models.AlertFilter) ([]models.SafetyAlert, error) {
	cached, gen, hit, cacheErr := s.cache.Get(ctx, filter)
	if cacheErr != nil {
		s.log.Warn("Alert cache read failed", map[string]interface{}{
			"error": cacheErr.Error(),
		})
	} else if hit {
		return cached, nil
	}

	alerts, err := s.repo.ListActive(ctx, filter)
	if err != nil {
		s.log.Error("Failed to query active alerts", err, map[string]interface{}{
			"filter": filter.CacheKey(),
		})
		return nil, fmt.Errorf("failed to query active alerts: %w", err)
	}

	// The generation is only known when the lookup succeeded.
	if cacheErr == nil {
		if err := s.cache.Set(ctx, gen, filter, alerts); err != nil {
			s.log.Warn("Alert cache write failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return alerts, nil
}

func (s *alertService) Get(ctx context.Context, id int64) (models.AlertView, error) {
	alert, err := s.load(ctx, id)
	if err != nil {
		return models.AlertView{}, err
	}
	return models.NewAlertView(alert, s.now()), nil
}

func (s *alertService) load(ctx context.Context, id int64) (*models.SafetyAlert, error) {
	alert, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("alert %d: %w", id, ErrNotFound)
		}
		s.log.Error("Failed to load alert", err, map[string]interface{}{
			"alert_id": id,
		})
		return nil, fmt.Errorf("failed to load alert %d: %w", id, err)
	}
	return alert, nil
}

func (s *alertService) Create(ctx context.Context, input AlertInput, createdBy *int64) (*models.SafetyAlert, error) {
	alert := &models.SafetyAlert{IsActive: true, CreatedBy: createdBy}
	input.applyTo(alert)

	if err := models.ValidateAlert(alert); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, alert); err != nil {
		s.log.Error("Failed to create alert", err, nil)
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}

	s.log.Info("Alert created", map[string]interface{}{
		"alert_id": alert.ID,
		"severity": alert.Severity,
	})
	s.changes.record(ctx, notify.EventCreated, []models.SafetyAlert{*alert}, s.now())
	return alert, nil
}

func (s *alertService) Update(ctx context.Context, id int64, input AlertInput) (*models.SafetyAlert, error) {
	alert, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	input.applyTo(alert)
	if err := models.ValidateAlert(alert); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, alert); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("alert %d: %w", id, ErrNotFound)
		}
		s.log.Error("Failed to update alert", err, map[string]interface{}{
			"alert_id": id,
		})
		return nil, fmt.Errorf("failed to update alert %d: %w", id, err)
	}

	event := notify.EventUpdated
	if !alert.IsActive {
		event = notify.EventDeactivated
	}
	s.changes.record(ctx, event, []models.SafetyAlert{*alert}, s.now())
	return alert, nil
}

func (s *alertService) SetActive(ctx context.Context, ids []int64, active bool) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	alerts, err := s.repo.SetActive(ctx, ids, active)
	if err != nil {
		s.log.Error("Failed to change alert activation", err, map[string]interface{}{
			"alert_ids": ids,
			"active":    active,
		})
		return 0, fmt.Errorf("failed to change alert activation: %w", err)
	}

	event := notify.EventUpdated
	if !active {
		event = notify.EventDeactivated
	}
	s.changes.record(ctx, event, alerts, s.now())
	return len(alerts), nil
}

func (s *alertService) Expire(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	now := s.now()
	alerts, err := s.repo.Expire(ctx, ids, now)
	if err != nil {
		s.log.Error("Failed to expire alerts", err, map[string]interface{}{
			"alert_ids": ids,
		})
		return 0, fmt.Errorf("failed to expire alerts: %w", err)
	}

	s.changes.record(ctx, notify.EventDeactivated, alerts, now)
	return len(alerts), nil
}

func (s *alertService) ExpireElapsed(ctx context.Context) (int, error) {
	now := s.now()
	alerts, err := s.repo.ExpireElapsed(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire elapsed alerts: %w", err)
	}

	if len(alerts) > 0 {
		s.log.Info("Expired elapsed alerts", map[string]interface{}{
			"count": len(alerts),
		})
	}
	s.changes.record(ctx, notify.EventDeactivated, alerts, now)
	return len(alerts), nil
}
