package controllers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jumpyouth/checkin/internal/app/services"
	"github.com/jumpyouth/checkin/internal/middleware"
	"github.com/rs/zerolog"
)

// ExportController streams CSV downloads and pushes to Google Sheets
type ExportController struct {
	exportService services.ExportService
	logger        zerolog.Logger
}

// NewExportController creates a new ExportController
func NewExportController(exportService services.ExportService, logger zerolog.Logger) *ExportController {
	return &ExportController{exportService: exportService, logger: logger}
}

// ParticipantsCSV downloads the active year's participants
// @Summary Export participants CSV
// @Tags exports
// @Produce text/csv
// @Security BearerAuth
// @Param year query int false "Enrollment year (defaults to the active year)"
// @Success 200 {file} file "CSV attachment"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Missing permission"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /exports/participants.csv [get]
func (c *ExportController) ParticipantsCSV(ctx *gin.Context) {
	var buf bytes.Buffer
	if err := c.exportService.WriteParticipantsCSV(ctx.Request.Context(), middleware.Year(ctx), &buf); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	attachment(ctx, services.ParticipantsFilename)
	ctx.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// AttendanceCSV downloads one day's attendance
// @Summary Export attendance CSV
// @Tags exports
// @Produce text/csv
// @Security BearerAuth
// @Param id path int true "Event day ID" Format(int64) minimum(1)
// @Success 200 {file} file "CSV attachment"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Missing permission"
// @Failure 404 {object} dto.ErrorResponse "Event day not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /exports/event-days/{id}/attendance.csv [get]
func (c *ExportController) AttendanceCSV(ctx *gin.Context) {
	dayID, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	filename, err := c.exportService.AttendanceFilename(ctx.Request.Context(), dayID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	var buf bytes.Buffer
	if err := c.exportService.WriteAttendanceCSV(ctx.Request.Context(), dayID, &buf); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	attachment(ctx, filename)
	ctx.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ParticipantsToSheets overwrites the configured spreadsheet range
// @Summary Export participants to Google Sheets
// @Tags exports
// @Produce json
// @Security BearerAuth
// @Param year query int false "Enrollment year (defaults to the active year)"
// @Success 200 {object} dto.APIResponse{data=dto.SheetsExportResponse} "Spreadsheet updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Missing permission"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /exports/participants/sheets [post]
func (c *ExportController) ParticipantsToSheets(ctx *gin.Context) {
	res, err := c.exportService.ExportParticipantsToSheets(ctx.Request.Context(), middleware.Year(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().
		Int64("userID", middleware.UserID(ctx)).
		Int("rows", res.Rows).
		Str("range", res.Range).
		Msg("Participants exported to Google Sheets")

	respond(ctx, http.StatusOK, res)
}
