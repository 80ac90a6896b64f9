package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jumpyouth/checkin/internal/app/models/dto"
	"github.com/jumpyouth/checkin/internal/app/services"
	"github.com/jumpyouth/checkin/internal/middleware"
)

// DashboardController serves the statistics page
type DashboardController struct {
	reportService services.ReportService
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(reportService services.ReportService) *DashboardController {
	return &DashboardController{reportService: reportService}
}

// dateQuery reads the first present key as a date
func dateQuery(ctx *gin.Context, keys ...string) (*time.Time, bool) {
	for _, k := range keys {
		if ctx.Query(k) != "" {
			return optionalDate(ctx, k)
		}
	}
	return nil, true
}

// Get returns the dashboard for the active year.
// Query: day, or from/to (dia_especifico, data_inicio, data_fim also accepted).
// @Summary Dashboard
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param year query int false "Enrollment year (defaults to the active year)"
// @Param day query string false "Single day, YYYY-MM-DD (alias: dia_especifico)"
// @Param from query string false "Range start, YYYY-MM-DD (alias: data_inicio)"
// @Param to query string false "Range end, YYYY-MM-DD (alias: data_fim)"
// @Success 200 {object} dto.APIResponse{data=dto.Dashboard} "Dashboard"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Missing permission"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /dashboard [get]
func (c *DashboardController) Get(ctx *gin.Context) {
	var filter dto.DashboardFilter
	var ok bool
	if filter.Day, ok = dateQuery(ctx, "day", "dia_especifico"); !ok {
		return
	}
	if filter.From, ok = dateQuery(ctx, "from", "data_inicio"); !ok {
		return
	}
	if filter.To, ok = dateQuery(ctx, "to", "data_fim"); !ok {
		return
	}

	res, err := c.reportService.Dashboard(ctx.Request.Context(), middleware.Year(ctx), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, res)
}
