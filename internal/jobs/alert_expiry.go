package jobs

import (
	"context"
	"time"
)

// AlertExpiryTaskName identifies the expiry task in logs.
const AlertExpiryTaskName = "alert-expiry"

// AlertExpirer deactivates alerts whose end date has passed.
type AlertExpirer interface {
	ExpireElapsed(ctx context.Context) (int, error)
}

// NewAlertExpiryTask returns a task that periodically deactivates elapsed
// alerts so they stop matching storage-level queries and cached listings.
func NewAlertExpiryTask(alerts AlertExpirer, interval time.Duration) Task {
	return Task{
		Name:     AlertExpiryTaskName,
		Interval: interval,
		Run:      alerts.ExpireElapsed,
	}
}
