package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonpan30062/newsaferoute/internal/cache"
	"github.com/jonpan30062/newsaferoute/internal/logger"
	"github.com/jonpan30062/newsaferoute/internal/models"
	"github.com/jonpan30062/newsaferoute/internal/notify"
	"github.com/jonpan30062/newsaferoute/internal/repository"
)

// Values every concern-derived alert starts with.
const (
	DerivedAlertRadius   = 76.2 // meters (250 ft)
	DerivedAlertSeverity = models.SeverityMedium
	maxTitleAddressRunes = 50
)

var categoryAlertTypes = map[models.ConcernCategory]models.AlertType{
	models.CategoryBrokenLight: models.AlertMaintenance,
	models.CategoryUnsafePath:  models.AlertHazard,
	models.CategoryObstruction: models.AlertHazard,
	models.CategoryVandalism:   models.AlertOther,
	models.CategoryMaintenance: models.AlertMaintenance,
	models.CategoryOther:       models.AlertOther,
}

// AlertTypeFor maps a concern category to the alert type shown on the map.
func AlertTypeFor(category models.ConcernCategory) models.AlertType {
	if t, ok := categoryAlertTypes[category]; ok {
		return t
	}
	return models.AlertOther
}

// AlertFromConcern derives the alert created when c is approved.
// c must have coordinates.
func AlertFromConcern(c *models.SafetyConcern, reviewer *int64) *models.SafetyAlert {
	address := c.LocationAddress
	concernID := c.ID
	radius := DerivedAlertRadius

	return &models.SafetyAlert{
		Title:           c.Category.Display() + " - " + truncateRunes(c.LocationAddress, maxTitleAddressRunes),
		Description:     c.Description,
		Address:         &address,
		AlertType:       AlertTypeFor(c.Category),
		Severity:        DerivedAlertSeverity,
		LocationType:    models.LocationCircle,
		Latitude:        c.Latitude,
		Longitude:       c.Longitude,
		Radius:          &radius,
		IsActive:        true,
		CreatedBy:       reviewer,
		SourceConcernID: &concernID,
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// ApprovalNote is appended to the concern's admin notes on approval.
func ApprovalNote(alertID int64) string {
	return fmt.Sprintf("Approved and converted to Safety Alert #%d", alertID)
}

// BatchItemError describes one concern a batch approval skipped.
type BatchItemError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	ConcernID int64  `json:"concern_id"`
}

// BatchResult summarizes a batch approval.
type BatchResult struct {
	AlertIDs []int64          `json:"alert_ids"`
	Errors   []BatchItemError `json:"errors"`
	Created  int              `json:"created"`
	Skipped  int              `json:"skipped"`
}

// ApprovalService converts reviewed concerns into map alerts.
type ApprovalService interface {
	// Approve resolves the concern and creates its alert atomically,
	// returning the new alert id.
	// Returns ErrNotFound, ErrAlreadyResolved, ErrNotApprovable or
	// ErrMissingLocation without mutating anything.
	Approve(ctx context.Context, concernID int64, reviewer *int64) (int64, error)

	// ApproveBatch approves each concern independently. Failures are
	// counted as skipped and never abort the rest of the batch.
	ApproveBatch(ctx context.Context, concernIDs []int64, reviewer *int64) BatchResult
}

type approvalService struct {
	concerns repository.ConcernRepository
	changes  alertChanges
	log      *logger.Logger
	now      func() time.Time
}

// NewApprovalService creates a new instance of ApprovalService.
func NewApprovalService(
	concerns repository.ConcernRepository,
	alertCache cache.AlertCache,
	publisher notify.Publisher,
	log *logger.Logger,
) ApprovalService {
	return newApprovalService(concerns, alertCache, publisher, log)
}

func newApprovalService(
	concerns repository.ConcernRepository,
	alertCache cache.AlertCache,
	publisher notify.Publisher,
	log *logger.Logger,
) *approvalService {
	log = log.WithComponent("approval")
	return &approvalService{
		concerns: concerns,
		changes:  alertChanges{cache: alertCache, publisher: publisher, log: log},
		log:      log,
		now:      time.Now,
	}
}

func (s *approvalService) Approve(ctx context.Context, concernID int64, reviewer *int64) (int64, error) {
	concern, err := s.concerns.GetByID(ctx, concernID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, fmt.Errorf("concern %d: %w", concernID, ErrNotFound)
		}
		s.log.Error("Failed to load concern for approval", err, map[string]interface{}{
			"concern_id": concernID,
		})
		return 0, fmt.Errorf("failed to load concern %d: %w", concernID, err)
	}

	switch {
	case concern.Status == models.ConcernResolved:
		return 0, fmt.Errorf("concern %d: %w", concernID, ErrAlreadyResolved)
	case !concern.Status.Approvable():
		return 0, fmt.Errorf("concern %d is %s: %w", concernID, concern.Status, ErrNotApprovable)
	case !concern.HasLocation():
		s.log.Warn("Cannot approve concern without coordinates", map[string]interface{}{
			"concern_id": concernID,
		})
		return 0, fmt.Errorf("concern %d: %w", concernID, ErrMissingLocation)
	}

	alert := AlertFromConcern(concern, reviewer)
	if err := models.ValidateAlert(alert); err != nil {
		return 0, fmt.Errorf("derived alert for concern %d: %w", concernID, err)
	}

	now := s.now()
	if err := s.concerns.ResolveWithAlert(ctx, concernID, alert, ApprovalNote, now); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return 0, fmt.Errorf("concern %d: %w", concernID, ErrAlreadyResolved)
		}
		s.log.Error("Failed to approve concern", err, map[string]interface{}{
			"concern_id": concernID,
		})
		return 0, fmt.Errorf("failed to approve concern %d: %w", concernID, err)
	}

	s.log.Info("Concern approved", map[string]interface{}{
		"concern_id": concernID,
		"alert_id":   alert.ID,
		"alert_type": alert.AlertType,
	})

	s.changes.record(ctx, notify.EventCreated, []models.SafetyAlert{*alert}, now)
	return alert.ID, nil
}

func (s *approvalService) ApproveBatch(ctx context.Context, concernIDs []int64, reviewer *int64) BatchResult {
	result := BatchResult{
		AlertIDs: make([]int64, 0, len(concernIDs)),
		Errors:   make([]BatchItemError, 0),
	}

	for _, id := range concernIDs {
		alertID, err := s.Approve(ctx, id, reviewer)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, BatchItemError{
				ConcernID: id,
				Code:      ErrorCode(err),
				Message:   err.Error(),
			})
			continue
		}
		result.Created++
		result.AlertIDs = append(result.AlertIDs, alertID)
	}

	s.log.Info("Batch approval finished", map[string]interface{}{
		"requested": len(concernIDs),
		"created":   result.Created,
		"skipped":   result.Skipped,
	})
	return result
}
