package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jumpyouth/checkin/internal/app/models/dto"
	"github.com/jumpyouth/checkin/internal/app/services"
	"github.com/jumpyouth/checkin/internal/middleware"
)

// EventDayController handles event day endpoints
type EventDayController struct {
	eventDayService services.EventDayService
}

// NewEventDayController creates a new EventDayController
func NewEventDayController(eventDayService services.EventDayService) *EventDayController {
	return &EventDayController{eventDayService: eventDayService}
}

// List returns the active year's event days, newest first
// @Summary List event days
// @Tags event-days
// @Produce json
// @Security BearerAuth
// @Param year query int false "Enrollment year (defaults to the active year)"
// @Success 200 {object} dto.APIResponse{data=dto.EventDayListResponse} "Event days with attendance totals"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /event-days [get]
func (c *EventDayController) List(ctx *gin.Context) {
	res, err := c.eventDayService.List(ctx.Request.Context(), middleware.Year(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, res)
}

// Create adds an event day to the active year
// @Summary Create event day
// @Tags event-days
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.EventDayRequest true "Event day"
// @Success 201 {object} dto.APIResponse{data=models.EventDay} "Event day created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Missing permission or read-only year"
// @Failure 409 {object} dto.ErrorResponse "An event day already exists for this date"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /event-days [post]
func (c *EventDayController) Create(ctx *gin.Context) {
	var req dto.EventDayRequest
	if !bindJSON(ctx, &req) {
		return
	}

	day, err := c.eventDayService.Create(ctx.Request.Context(), middleware.Year(ctx), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, day)
}
