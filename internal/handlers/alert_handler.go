package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonpan30062/newsaferoute/internal/middleware"
	"github.com/jonpan30062/newsaferoute/internal/models"
	"github.com/jonpan30062/newsaferoute/internal/services"
)

// AlertHandler serves the public alert map endpoints.
type AlertHandler struct {
	service services.AlertService
}

// NewAlertHandler creates a new AlertHandler instance.
func NewAlertHandler(service services.AlertService) *AlertHandler {
	return &AlertHandler{service: service}
}

// ListAlertsRequest holds the optional map filters.
type ListAlertsRequest struct {
	AlertType string `form:"alert_type"`
	Severity  string `form:"severity"`
	Bounds    string `form:"bounds"`
}

// ListAlertsResponse is returned by GET /api/v1/alerts.
type ListAlertsResponse struct {
	Alerts []models.AlertView `json:"alerts"`
	Count  int                `json:"count"`
}

// AlertResponse wraps a single alert.
type AlertResponse struct {
	Alert models.AlertView `json:"alert"`
}

// filter builds the service filter. A malformed bounds value is ignored
// rather than rejected.
func (r ListAlertsRequest) filter() (models.AlertFilter, bool) {
	f := models.AlertFilter{
		AlertType: models.AlertType(r.AlertType),
		Severity:  models.Severity(r.Severity),
	}
	if r.Bounds == "" {
		return f, true
	}
	b, ok := models.ParseBounds(r.Bounds)
	if ok {
		f.Bounds = &b
	}
	return f, ok
}

// List handles GET /api/v1/alerts.
func (h *AlertHandler) List(c *gin.Context) {
	var req ListAlertsRequest
	if !bindQuery(c, &req) {
		return
	}

	filter, boundsOK := req.filter()
	if !boundsOK {
		if log := middleware.GetLogger(c); log != nil {
			log.Debug("Ignoring malformed bounds", map[string]interface{}{
				"bounds": req.Bounds,
			})
		}
	}

	alerts, err := h.service.ListActive(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Alert")
		return
	}

	c.JSON(http.StatusOK, ListAlertsResponse{
		Alerts: alerts,
		Count:  len(alerts),
	})
}

// Get handles GET /api/v1/alerts/:id.
func (h *AlertHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	alert, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Alert")
		return
	}

	c.JSON(http.StatusOK, AlertResponse{Alert: alert})
}
