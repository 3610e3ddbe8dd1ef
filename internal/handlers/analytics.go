package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shihabhq/democracy-server/internal/services"
)

type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// Get godoc
// @Summary      Quiz analytics
// @Description  Attempt totals, pass rate, per-question difficulty, and district/age-group breakdowns
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} services.AnalyticsSummary
// @Router       /api/analytics [get]
func (h *AnalyticsHandler) Get(c *gin.Context) {
	summary, err := h.analyticsService.Summary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to fetch analytics"})
		return
	}
	c.JSON(http.StatusOK, summary)
}
