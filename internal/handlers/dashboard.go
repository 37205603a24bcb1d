package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/dto"
	"github.com/yukikurage/project-management-api/internal/services"
)

// DashboardHandler serves the read-only dashboard indicators
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// ListIndicators returns every indicator
func (h *DashboardHandler) ListIndicators(c *gin.Context) {
	indicators, err := h.dashboardService.ListIndicators(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDashboardIndicatorDTOs(indicators))
}

// GetIndicator returns one indicator by id
func (h *DashboardHandler) GetIndicator(c *gin.Context) {
	indicator, err := h.dashboardService.GetIndicator(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDashboardIndicatorDTO(*indicator))
}
