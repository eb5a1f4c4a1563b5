package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/pharmacy-pos/internal/application/service"
	"github.com/sangkips/pharmacy-pos/internal/presentation/http/dto/response"
)

// DashboardHandler handles dashboard and report requests
type DashboardHandler struct {
	dashboardService *service.DashboardService
	reportService    *service.ReportService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *service.DashboardService, reportService *service.ReportService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		reportService:    reportService,
	}
}

// GetStats handles getting dashboard statistics
func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.dashboardService.GetDashboardStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Dashboard stats retrieved successfully", stats)
}

// GetReport handles GET /reports?type=&startDate=&endDate=
// @Summary Reports
// @Tags reports
// @Produce json
// @Param type query string true "sales, inventory, low-stock, expiring-soon or dashboard"
// @Param startDate query string false "YYYY-MM-DD"
// @Param endDate query string false "YYYY-MM-DD"
// @Success 200 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Router /reports [get]
func (h *DashboardHandler) GetReport(c *gin.Context) {
	start, err := parseDate(c.Query("startDate"), "startDate", false)
	if err != nil {
		response.Error(c, err)
		return
	}
	end, err := parseDate(c.Query("endDate"), "endDate", true)
	if err != nil {
		response.Error(c, err)
		return
	}

	report, err := h.reportService.GetReport(c.Request.Context(), c.Query("type"), service.DateRange{Start: start, End: end})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Report generated successfully", report)
}
