package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jumpyouth/checkin/internal/app/models/dto"
	"github.com/jumpyouth/checkin/internal/app/models/dto/enums"
	"github.com/jumpyouth/checkin/internal/app/services"
	"github.com/jumpyouth/checkin/internal/middleware"
	"github.com/jumpyouth/checkin/internal/pkg/helpers"
)

// CheckinController handles the check-in screen: roster, attendance, VIP and headcounts
type CheckinController struct {
	checkinService   services.CheckinService
	headcountService services.HeadcountService
}

// NewCheckinController creates a new CheckinController
func NewCheckinController(checkinService services.CheckinService, headcountService services.HeadcountService) *CheckinController {
	return &CheckinController{
		checkinService:   checkinService,
		headcountService: headcountService,
	}
}

// Roster returns one page of the day's roster
// @Summary Day roster
// @Tags checkin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event day ID" Format(int64) minimum(1)
// @Param year query int false "Enrollment year (defaults to the active year)"
// @Param status query string false "all, present or absent (alias: filtro)"
// @Param search query string false "Name search (alias: busca)"
// @Param page query int false "Page number (1-based)" default(1) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.RosterResponse} "Roster page"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Event day not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /checkin/days/{id} [get]
func (c *CheckinController) Roster(ctx *gin.Context) {
	dayID, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	q := dto.RosterQuery{
		Status: enums.ParseRosterStatus(queryAny(ctx, "status", "filtro")),
		Search: queryAny(ctx, "search", "busca"),
		Page:   helpers.PageParam(ctx),
	}

	res, err := c.checkinService.Roster(ctx.Request.Context(), middleware.Year(ctx), dayID, q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, res)
}

// Submit replaces the day's attendance for the filtered roster
// @Summary Submit check-in
// @Description Replaces the day's attendance with one record per participant of the filtered roster
// @Tags checkin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event day ID" Format(int64) minimum(1)
// @Param request body dto.SubmitCheckinRequest true "Present participants and the roster filter they were picked from"
// @Success 200 {object} dto.APIResponse{data=dto.CheckinResult} "Attendance replaced"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Missing permission or read-only year"
// @Failure 404 {object} dto.ErrorResponse "Event day not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /checkin/days/{id} [post]
func (c *CheckinController) Submit(ctx *gin.Context) {
	dayID, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.SubmitCheckinRequest
	if !bindJSON(ctx, &req) {
		return
	}

	res, err := c.checkinService.SubmitCheckin(ctx.Request.Context(), middleware.Year(ctx), dayID, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, res)
}

// UpdateAttendance toggles one participant's presence on a day
// @Summary Update one attendance record
// @Tags checkin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AttendanceUpdateRequest true "Participant, day and presence"
// @Success 200 {object} dto.APIResponse{data=dto.AttendanceUpdateResponse} "Record updated"
// @Success 201 {object} dto.APIResponse{data=dto.AttendanceUpdateResponse} "Record created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Missing permission or read-only year"
// @Failure 404 {object} dto.ErrorResponse "Participant or event day not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /checkin/attendance [put]
func (c *CheckinController) UpdateAttendance(ctx *gin.Context) {
	var req dto.AttendanceUpdateRequest
	if !bindJSON(ctx, &req) {
		return
	}

	res, err := c.checkinService.UpdateAttendance(ctx.Request.Context(), middleware.Year(ctx), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	respond(ctx, status, res)
}

// VIP returns the day's present participants without a cohort
// @Summary VIP report
// @Tags checkin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event day ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.VIPReport} "VIP candidates and participants needing a cohort"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Event day not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /checkin/days/{id}/vip [get]
func (c *CheckinController) VIP(ctx *gin.Context) {
	dayID, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	res, err := c.checkinService.VIP(ctx.Request.Context(), middleware.Year(ctx), dayID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, res)
}

// NotifyVIP sends the VIP summary to the notification chat
// @Summary Send VIP report
// @Tags checkin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event day ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.VIPReport} "Report sent"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Event day not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /checkin/days/{id}/vip/notify [post]
func (c *CheckinController) NotifyVIP(ctx *gin.Context) {
	dayID, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	res, err := c.checkinService.NotifyVIP(ctx.Request.Context(), middleware.Year(ctx), dayID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, res)
}

// RecordAuditorium upserts the day's auditorium count
// @Summary Record auditorium count
// @Tags headcounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event day ID" Format(int64) minimum(1)
// @Param request body dto.HeadcountRequest true "Quantity"
// @Success 200 {object} dto.APIResponse{data=dto.HeadcountResponse} "Count updated"
// @Success 201 {object} dto.APIResponse{data=dto.HeadcountResponse} "Count created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Missing permission or read-only year"
// @Failure 404 {object} dto.ErrorResponse "Event day not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /checkin/days/{id}/auditorium [put]
func (c *CheckinController) RecordAuditorium(ctx *gin.Context) {
	c.recordHeadcount(ctx, c.headcountService.RecordAuditorium)
}

// RecordVisitors upserts the day's visitor count
// @Summary Record visitor count
// @Tags headcounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event day ID" Format(int64) minimum(1)
// @Param request body dto.HeadcountRequest true "Quantity"
// @Success 200 {object} dto.APIResponse{data=dto.HeadcountResponse} "Count updated"
// @Success 201 {object} dto.APIResponse{data=dto.HeadcountResponse} "Count created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Missing permission or read-only year"
// @Failure 404 {object} dto.ErrorResponse "Event day not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /checkin/days/{id}/visitors [put]
func (c *CheckinController) RecordVisitors(ctx *gin.Context) {
	c.recordHeadcount(ctx, c.headcountService.RecordVisitors)
}

type headcountFunc func(ctx context.Context, year int, actor int64, dayID int64, quantity *int) (*dto.HeadcountResponse, error)

func (c *CheckinController) recordHeadcount(ctx *gin.Context, record headcountFunc) {
	dayID, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.HeadcountRequest
	if !bindJSON(ctx, &req) {
		return
	}

	res, err := record(ctx.Request.Context(), middleware.Year(ctx), middleware.UserID(ctx), dayID, req.Quantity)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	respond(ctx, status, res)
}

// ListAuditorium returns the active year's auditorium counts, newest day first
// @Summary List auditorium counts
// @Tags headcounts
// @Produce json
// @Security BearerAuth
// @Param year query int false "Enrollment year (defaults to the active year)"
// @Success 200 {object} dto.APIResponse{data=[]models.Headcount} "Auditorium counts, newest day first"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Missing permission"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /headcounts/auditorium [get]
func (c *CheckinController) ListAuditorium(ctx *gin.Context) {
	counts, err := c.headcountService.ListAuditorium(ctx.Request.Context(), middleware.Year(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, counts)
}
