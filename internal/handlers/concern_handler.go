package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonpan30062/newsaferoute/internal/middleware"
	"github.com/jonpan30062/newsaferoute/internal/models"
	"github.com/jonpan30062/newsaferoute/internal/services"
)

// ConcernHandler serves public concern submission.
type ConcernHandler struct {
	service services.ConcernService
}

// NewConcernHandler creates a new ConcernHandler instance.
func NewConcernHandler(service services.ConcernService) *ConcernHandler {
	return &ConcernHandler{service: service}
}

// SubmitConcernRequest is the body of POST /api/v1/concerns.
type SubmitConcernRequest struct {
	Latitude        *float64 `json:"latitude" binding:"omitempty,lat"`
	Longitude       *float64 `json:"longitude" binding:"omitempty,lng"`
	PhotoURL        *string  `json:"photo_url" binding:"omitempty,url"`
	LocationAddress string   `json:"location_address" binding:"required,max=255"`
	Category        string   `json:"category" binding:"required,oneof=broken_light unsafe_path obstruction vandalism maintenance other"`
	Description     string   `json:"description" binding:"required"`
}

// SubmittedConcern is what reporters get back. Reviewer-only fields such as
// admin notes are never included.
type SubmittedConcern struct {
	CreatedAt time.Time              `json:"created_at"`
	Category  models.ConcernCategory `json:"category"`
	Status    models.ConcernStatus   `json:"status"`
	ID        int64                  `json:"id"`
}

// SubmitConcernResponse is returned by POST /api/v1/concerns.
type SubmitConcernResponse struct {
	Concern SubmittedConcern `json:"concern"`
	Message string           `json:"message"`
}

// Submit handles POST /api/v1/concerns. Authentication is optional; the
// reporter is recorded when a token is sent.
func (h *ConcernHandler) Submit(c *gin.Context) {
	var req SubmitConcernRequest
	if !bindJSON(c, &req) {
		return
	}

	concern, err := h.service.Submit(c.Request.Context(), middleware.UserID(c), services.ConcernInput{
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		PhotoURL:        req.PhotoURL,
		LocationAddress: req.LocationAddress,
		Category:        models.ConcernCategory(req.Category),
		Description:     req.Description,
	})
	if err != nil {
		respondError(c, err, "Concern")
		return
	}

	c.JSON(http.StatusCreated, SubmitConcernResponse{
		Concern: SubmittedConcern{
			ID:        concern.ID,
			Category:  concern.Category,
			Status:    concern.Status,
			CreatedAt: concern.CreatedAt,
		},
		Message: "Thank you. Your concern has been submitted for review.",
	})
}
