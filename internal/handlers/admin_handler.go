package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apierrors "github.com/jonpan30062/newsaferoute/internal/errors"
	"github.com/jonpan30062/newsaferoute/internal/middleware"
	"github.com/jonpan30062/newsaferoute/internal/models"
	"github.com/jonpan30062/newsaferoute/internal/services"
)

// Quick actions accepted by POST /admin/concerns/:id/quick/:action.
const (
	QuickApprove  = "approve"
	QuickInReview = "in_review"
	QuickResolve  = "resolve"
	QuickDismiss  = "dismiss"
	QuickPending  = "pending"
)

var quickStatuses = map[string]models.ConcernStatus{
	QuickInReview: models.ConcernInReview,
	QuickResolve:  models.ConcernResolved,
	QuickDismiss:  models.ConcernDismissed,
	QuickPending:  models.ConcernPending,
}

// AdminHandler serves the reviewer endpoints. Routes must be mounted behind
// middleware.RequireReviewer.
type AdminHandler struct {
	concerns  services.ConcernService
	approvals services.ApprovalService
	alerts    services.AlertService
}

// NewAdminHandler creates a new AdminHandler instance.
func NewAdminHandler(
	concerns services.ConcernService,
	approvals services.ApprovalService,
	alerts services.AlertService,
) *AdminHandler {
	return &AdminHandler{concerns: concerns, approvals: approvals, alerts: alerts}
}

// ListConcernsRequest holds the reviewer listing filters.
type ListConcernsRequest struct {
	Status   string `form:"status"`
	Category string `form:"category"`
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,gte=1"`
	Limit    int    `form:"limit" binding:"omitempty,gte=1,lte=100"`
}

// ConcernResponse wraps a single concern.
type ConcernResponse struct {
	Concern *models.SafetyConcern `json:"concern"`
}

// UpdateStatusRequest is the body of PATCH /admin/concerns/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateNotesRequest is the body of PATCH /admin/concerns/:id/notes.
// An empty string clears the notes.
type UpdateNotesRequest struct {
	AdminNotes *string `json:"admin_notes" binding:"required,max=5000"`
}

// ApproveResponse is returned after a single approval.
type ApproveResponse struct {
	Message   string `json:"message"`
	ConcernID int64  `json:"concern_id"`
	AlertID   int64  `json:"alert_id"`
}

// QuickActionResponse is returned by quick actions.
type QuickActionResponse struct {
	Concern *models.SafetyConcern `json:"concern,omitempty"`
	AlertID *int64                `json:"alert_id,omitempty"`
	Action  string                `json:"action"`
}

// BatchApproveRequest is the body of POST /admin/concerns/approve.
type BatchApproveRequest struct {
	ConcernIDs []int64 `json:"concern_ids" binding:"required,min=1,max=100,dive,gt=0"`
}

// AlertIDsRequest is the body of the bulk alert actions.
type AlertIDsRequest struct {
	AlertIDs []int64 `json:"alert_ids" binding:"required,min=1,max=500,dive,gt=0"`
}

// BulkAlertResponse reports how many alerts a bulk action changed.
type BulkAlertResponse struct {
	Updated int `json:"updated"`
}

// AlertRequest is the body of alert create and update. Geometry rules are
// checked by the domain validators so violations are reported per field.
type AlertRequest struct {
	StartDate          *time.Time                `json:"start_date"`
	EndDate            *time.Time                `json:"end_date"`
	Address            *string                   `json:"address" binding:"omitempty,max=255"`
	Latitude           *float64                  `json:"latitude"`
	Longitude          *float64                  `json:"longitude"`
	Radius             *float64                  `json:"radius"`
	IsActive           *bool                     `json:"is_active"`
	Title              string                    `json:"title" binding:"required,max=200"`
	Description        string                    `json:"description" binding:"required"`
	AlertType          string                    `json:"alert_type" binding:"required"`
	Severity           string                    `json:"severity" binding:"required"`
	LocationType       string                    `json:"location_type" binding:"required"`
	PolygonCoordinates models.PolygonCoordinates `json:"polygon_coordinates"`
}

func (r AlertRequest) input() services.AlertInput {
	return services.AlertInput{
		StartDate:          r.StartDate,
		EndDate:            r.EndDate,
		Address:            r.Address,
		Latitude:           r.Latitude,
		Longitude:          r.Longitude,
		Radius:             r.Radius,
		IsActive:           r.IsActive,
		Title:              r.Title,
		Description:        r.Description,
		AlertType:          models.AlertType(r.AlertType),
		Severity:           models.Severity(r.Severity),
		LocationType:       models.LocationType(r.LocationType),
		PolygonCoordinates: r.PolygonCoordinates,
	}
}

// ListConcerns handles GET /api/v1/admin/concerns.
func (h *AdminHandler) ListConcerns(c *gin.Context) {
	var req ListConcernsRequest
	if !bindQuery(c, &req) {
		return
	}

	status := models.ConcernStatus(req.Status)
	if status != "" && !status.Valid() {
		apierrors.InvalidStatus(c, req.Status)
		return
	}

	page, err := h.concerns.List(c.Request.Context(), models.ConcernFilter{
		Status:   status,
		Category: models.ConcernCategory(req.Category),
		Search:   req.Search,
		Page:     req.Page,
		Limit:    req.Limit,
	})
	if err != nil {
		respondError(c, err, "Concern")
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetConcern handles GET /api/v1/admin/concerns/:id.
func (h *AdminHandler) GetConcern(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	concern, err := h.concerns.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Concern")
		return
	}
	c.JSON(http.StatusOK, ConcernResponse{Concern: concern})
}

// UpdateStatus handles PATCH /api/v1/admin/concerns/:id/status.
func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	status := models.ConcernStatus(req.Status)
	if !status.Valid() {
		apierrors.InvalidStatus(c, req.Status)
		return
	}

	concern, err := h.concerns.SetStatus(c.Request.Context(), id, status)
	if err != nil {
		respondError(c, err, "Concern")
		return
	}
	c.JSON(http.StatusOK, ConcernResponse{Concern: concern})
}

// UpdateNotes handles PATCH /api/v1/admin/concerns/:id/notes.
func (h *AdminHandler) UpdateNotes(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateNotesRequest
	if !bindJSON(c, &req) {
		return
	}

	concern, err := h.concerns.UpdateNotes(c.Request.Context(), id, *req.AdminNotes)
	if err != nil {
		respondError(c, err, "Concern")
		return
	}
	c.JSON(http.StatusOK, ConcernResponse{Concern: concern})
}

// Approve handles POST /api/v1/admin/concerns/:id/approve.
func (h *AdminHandler) Approve(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	alertID, err := h.approvals.Approve(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		respondError(c, err, "Concern")
		return
	}

	c.JSON(http.StatusCreated, ApproveResponse{
		ConcernID: id,
		AlertID:   alertID,
		Message:   services.ApprovalNote(alertID),
	})
}

// QuickAction handles POST /api/v1/admin/concerns/:id/quick/:action.
func (h *AdminHandler) QuickAction(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	action := c.Param("action")

	if action == QuickApprove {
		alertID, err := h.approvals.Approve(c.Request.Context(), id, middleware.UserID(c))
		if err != nil {
			respondError(c, err, "Concern")
			return
		}
		c.JSON(http.StatusOK, QuickActionResponse{Action: action, AlertID: &alertID})
		return
	}

	status, known := quickStatuses[action]
	if !known {
		apierrors.BadRequest(c, "Unknown action", map[string]interface{}{
			"action":  action,
			"allowed": []string{QuickApprove, QuickInReview, QuickResolve, QuickDismiss, QuickPending},
		})
		return
	}

	concern, err := h.concerns.SetStatus(c.Request.Context(), id, status)
	if err != nil {
		respondError(c, err, "Concern")
		return
	}
	c.JSON(http.StatusOK, QuickActionResponse{Action: action, Concern: concern})
}

// ApproveBatch handles POST /api/v1/admin/concerns/approve. Per-item
// failures are reported in the body; the request itself succeeds.
func (h *AdminHandler) ApproveBatch(c *gin.Context) {
	var req BatchApproveRequest
	if !bindJSON(c, &req) {
		return
	}

	result := h.approvals.ApproveBatch(c.Request.Context(), req.ConcernIDs, middleware.UserID(c))
	c.JSON(http.StatusOK, result)
}

// CreateAlert handles POST /api/v1/admin/alerts.
func (h *AdminHandler) CreateAlert(c *gin.Context) {
	var req AlertRequest
	if !bindJSON(c, &req) {
		return
	}

	alert, err := h.alerts.Create(c.Request.Context(), req.input(), middleware.UserID(c))
	if err != nil {
		respondError(c, err, "Alert")
		return
	}
	c.JSON(http.StatusCreated, AlertResponse{Alert: models.NewAlertView(alert, time.Now())})
}

// UpdateAlert handles PUT /api/v1/admin/alerts/:id.
func (h *AdminHandler) UpdateAlert(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req AlertRequest
	if !bindJSON(c, &req) {
		return
	}

	alert, err := h.alerts.Update(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, err, "Alert")
		return
	}
	c.JSON(http.StatusOK, AlertResponse{Alert: models.NewAlertView(alert, time.Now())})
}

// ActivateAlerts handles POST /api/v1/admin/alerts/activate.
func (h *AdminHandler) ActivateAlerts(c *gin.Context) {
	h.bulkAlerts(c, func(c *gin.Context, ids []int64) (int, error) {
		return h.alerts.SetActive(c.Request.Context(), ids, true)
	})
}

// DeactivateAlerts handles POST /api/v1/admin/alerts/deactivate.
func (h *AdminHandler) DeactivateAlerts(c *gin.Context) {
	h.bulkAlerts(c, func(c *gin.Context, ids []int64) (int, error) {
		return h.alerts.SetActive(c.Request.Context(), ids, false)
	})
}

// ExpireAlerts handles POST /api/v1/admin/alerts/expire.
func (h *AdminHandler) ExpireAlerts(c *gin.Context) {
	h.bulkAlerts(c, func(c *gin.Context, ids []int64) (int, error) {
		return h.alerts.Expire(c.Request.Context(), ids)
	})
}

func (h *AdminHandler) bulkAlerts(c *gin.Context, apply func(*gin.Context, []int64) (int, error)) {
	var req AlertIDsRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := apply(c, req.AlertIDs)
	if err != nil {
		respondError(c, err, "Alert")
		return
	}
	c.JSON(http.StatusOK, BulkAlertResponse{Updated: updated})
}
