package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonpan30062/newsaferoute/internal/middleware"
)

const (
	// APIVersion is the current version of the API
	APIVersion = "1.0.0"
	// HealthCheckTimeout bounds each dependency ping in the readiness check
	HealthCheckTimeout = 2 * time.Second
)

// Pinger is a dependency the readiness check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check and readiness endpoints.
type HealthHandler struct {
	db        Pinger
	cache     Pinger
	startTime time.Time
	env       string
}

// NewHealthHandler creates a new HealthHandler instance. cache may be nil
// when the alert cache is disabled.
func NewHealthHandler(db Pinger, cache Pinger, env string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		cache:     cache,
		startTime: time.Now(),
		env:       env,
	}
}

// HealthResponse represents the basic health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache,omitempty"`
}

// InfoResponse represents the API information response.
type InfoResponse struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
	Uptime      string `json:"uptime"`
}

// Health handles GET /health. It never checks dependencies and is used for
// liveness probes.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "healthy",
	})
}

// Ready handles GET /health/ready.
// The database is required. The alert cache is reported but optional since
// listings fall back to the database when it is down.
func (h *HealthHandler) Ready(c *gin.Context) {
	response := ReadyResponse{Status: "ready", Database: "connected"}
	status := http.StatusOK

	if err := h.ping(c, h.db); err != nil {
		h.logFailure(c, "Database health check failed", err)
		response.Status = "not_ready"
		response.Database = "disconnected"
		status = http.StatusServiceUnavailable
	}

	if h.cache != nil {
		response.Cache = "connected"
		if err := h.ping(c, h.cache); err != nil {
			h.logFailure(c, "Cache health check failed", err)
			response.Cache = "disconnected"
		}
	}

	c.JSON(status, response)
}

func (h *HealthHandler) ping(c *gin.Context, p Pinger) error {
	ctx, cancel := context.WithTimeout(c.Request.Context(), HealthCheckTimeout)
	defer cancel()
	return p.Ping(ctx)
}

func (h *HealthHandler) logFailure(c *gin.Context, msg string, err error) {
	if log := middleware.GetLogger(c); log != nil {
		log.Error(msg, err, map[string]interface{}{
			"timeout": HealthCheckTimeout.String(),
		})
	}
}

// Info handles GET /api/v1/info endpoint.
// Returns API metadata including version, environment, and uptime.
func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, InfoResponse{
		Version:     APIVersion,
		Environment: h.env,
		Uptime:      formatUptime(time.Since(h.startTime)),
	})
}

// formatUptime formats a duration into a human-readable string.
func formatUptime(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}
