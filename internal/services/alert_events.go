package services

import (
	"context"
	"time"

	"github.com/jonpan30062/newsaferoute/internal/cache"
	"github.com/jonpan30062/newsaferoute/internal/logger"
	"github.com/jonpan30062/newsaferoute/internal/models"
	"github.com/jonpan30062/newsaferoute/internal/notify"
)

// alertChanges runs the side effects of every alert write: the listing
// cache is invalidated and an event is published per alert. Both are
// best-effort and only logged on failure.
type alertChanges struct {
	cache     cache.AlertCache
	publisher notify.Publisher
	log       *logger.Logger
}

func (c alertChanges) record(ctx context.Context, event notify.Event, alerts []models.SafetyAlert, now time.Time) {
	if len(alerts) == 0 {
		return
	}

	if err := c.cache.Invalidate(ctx); err != nil {
		c.log.Warn("Failed to invalidate alert cache", map[string]interface{}{
			"error": err.Error(),
		})
	}

	for i := range alerts {
		if err := c.publisher.Publish(ctx, event, models.NewAlertView(&alerts[i], now)); err != nil {
			c.log.Warn("Failed to publish alert event", map[string]interface{}{
				"alert_id": alerts[i].ID,
				"event":    event,
				"error":    err.Error(),
			})
		}
	}
}
