package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/lexdesk-api/internal/application/service"
	"github.com/sangkips/lexdesk-api/internal/presentation/http/dto/response"
	"github.com/sangkips/lexdesk-api/pkg/pagination"
)

// DashboardHandler serves the dashboard figures and the activity log
type DashboardHandler struct {
	dashboardService *service.DashboardService
	activityService  *service.ActivityService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *service.DashboardService, activityService *service.ActivityService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, activityService: activityService}
}

// GetStats handles getting dashboard statistics. Money figures are only
// present for callers with finance access.
// @Summary Dashboard
// @Tags dashboard
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /dashboard [get]
func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.dashboardService.GetDashboardStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Dashboard stats retrieved successfully", stats)
}

// Activity lists the audit trail, newest first
// @Summary Activity Log
// @Tags dashboard
// @Security BearerAuth
// @Produce json
// @Param cursor query string false "Cursor from the previous page"
// @Param limit query int false "Page size" default(15)
// @Param entity_type query string false "Filter by entity type"
// @Success 200 {object} response.APIResponse
// @Router /activity [get]
func (h *DashboardHandler) Activity(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "15"))
	params := &pagination.CursorParams{Cursor: c.Query("cursor"), Limit: limit}

	result, err := h.activityService.List(c.Request.Context(), params, c.Query("entity_type"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Activity retrieved successfully", result)
}
