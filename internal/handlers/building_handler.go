package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonpan30062/newsaferoute/internal/models"
	"github.com/jonpan30062/newsaferoute/internal/services"
)

// BuildingHandler serves the building directory search.
type BuildingHandler struct {
	service services.BuildingService
}

// NewBuildingHandler creates a new BuildingHandler instance.
func NewBuildingHandler(service services.BuildingService) *BuildingHandler {
	return &BuildingHandler{service: service}
}

// SearchBuildingsRequest holds the search query parameters.
type SearchBuildingsRequest struct {
	Query string `form:"q"`
	Limit int    `form:"limit" binding:"omitempty,gte=1,lte=50"`
}

// SearchBuildingsResponse is returned by GET /api/v1/buildings/search.
type SearchBuildingsResponse struct {
	Buildings []models.Building `json:"buildings"`
	Count     int               `json:"count"`
}

// Search handles GET /api/v1/buildings/search.
func (h *BuildingHandler) Search(c *gin.Context) {
	var req SearchBuildingsRequest
	if !bindQuery(c, &req) {
		return
	}

	buildings, err := h.service.Search(c.Request.Context(), req.Query, req.Limit)
	if err != nil {
		respondError(c, err, "Building")
		return
	}

	c.JSON(http.StatusOK, SearchBuildingsResponse{
		Buildings: buildings,
		Count:     len(buildings),
	})
}
