package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jumpyouth/checkin/internal/app/models/dto"
	"github.com/jumpyouth/checkin/internal/app/services"
	"github.com/jumpyouth/checkin/internal/middleware"
)

// GroupController handles cohort (PG) and império endpoints
type GroupController struct {
	groupService services.GroupService
}

// NewGroupController creates a new GroupController
func NewGroupController(groupService services.GroupService) *GroupController {
	return &GroupController{groupService: groupService}
}

// ListCohorts returns the active year's cohorts with member counts
// @Summary List cohorts
// @Tags cohorts
// @Produce json
// @Security BearerAuth
// @Param year query int false "Enrollment year (defaults to the active year)"
// @Success 200 {object} dto.APIResponse{data=[]models.Cohort} "Cohorts with member counts"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Missing permission"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /cohorts [get]
func (c *GroupController) ListCohorts(ctx *gin.Context) {
	cohorts, err := c.groupService.ListCohorts(ctx.Request.Context(), middleware.Year(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, cohorts)
}

// GetCohort returns a cohort and its members
// @Summary Get cohort
// @Tags cohorts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Cohort ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.CohortDetailResponse} "Cohort and its members"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Missing permission"
// @Failure 404 {object} dto.ErrorResponse "Cohort not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /cohorts/{id} [get]
func (c *GroupController) GetCohort(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	res, err := c.groupService.GetCohort(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, res)
}

// CreateCohort adds a cohort to the active year
// @Summary Create cohort
// @Tags cohorts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CohortRequest true "Cohort information"
// @Success 201 {object} dto.APIResponse{data=models.Cohort} "Cohort created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Missing permission or read-only year"
// @Failure 409 {object} dto.ErrorResponse "Cohort already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /cohorts [post]
func (c *GroupController) CreateCohort(ctx *gin.Context) {
	var req dto.CohortRequest
	if !bindJSON(ctx, &req) {
		return
	}
	cohort, err := c.groupService.CreateCohort(ctx.Request.Context(), middleware.Year(ctx), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, cohort)
}

// UpdateCohort renames or retags a cohort
// @Summary Update cohort
// @Tags cohorts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Cohort ID" Format(int64) minimum(1)
// @Param request body dto.CohortRequest true "Cohort information"
// @Success 200 {object} dto.APIResponse{data=models.Cohort} "Cohort updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Missing permission or read-only year"
// @Failure 404 {object} dto.ErrorResponse "Cohort not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /cohorts/{id} [put]
func (c *GroupController) UpdateCohort(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.CohortRequest
	if !bindJSON(ctx, &req) {
		return
	}
	cohort, err := c.groupService.UpdateCohort(ctx.Request.Context(), id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, cohort)
}

// DeleteCohort removes a cohort
// @Summary Delete cohort
// @Tags cohorts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Cohort ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Cohort deleted"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Missing permission or read-only year"
// @Failure 404 {object} dto.ErrorResponse "Cohort not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /cohorts/{id} [delete]
func (c *GroupController) DeleteCohort(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.groupService.DeleteCohort(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.SuccessResponse{Message: "Cohort deleted"})
}

// AddCohortMembers moves participants into a cohort
// @Summary Add cohort members
// @Tags cohorts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Cohort ID" Format(int64) minimum(1)
// @Param request body dto.BulkMembersRequest true "Participant IDs"
// @Success 200 {object} dto.APIResponse{data=dto.BulkResult} "Members added"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Missing permission or read-only year"
// @Failure 404 {object} dto.ErrorResponse "Cohort not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /cohorts/{id}/members [post]
func (c *GroupController) AddCohortMembers(ctx *gin.Context) {
	c.members(ctx, c.groupService.AddCohortMembers)
}

// RemoveCohortMembers takes participants out of a cohort
// @Summary Remove cohort members
// @Tags cohorts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Cohort ID" Format(int64) minimum(1)
// @Param request body dto.BulkMembersRequest true "Participant IDs"
// @Success 200 {object} dto.APIResponse{data=dto.BulkResult} "Members removed"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Missing permission or read-only year"
// @Failure 404 {object} dto.ErrorResponse "Cohort not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /cohorts/{id}/members [delete]
func (c *GroupController) RemoveCohortMembers(ctx *gin.Context) {
	c.members(ctx, c.groupService.RemoveCohortMembers)
}

// ListImperios returns the active year's impérios with member counts
// @Summary List impérios
// @Tags imperios
// @Produce json
// @Security BearerAuth
// @Param year query int false "Enrollment year (defaults to the active year)"
// @Success 200 {object} dto.APIResponse{data=[]models.Imperio} "Impérios with member counts"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Missing permission"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /imperios [get]
func (c *GroupController) ListImperios(ctx *gin.Context) {
	imperios, err := c.groupService.ListImperios(ctx.Request.Context(), middleware.Year(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, imperios)
}

// GetImperio returns an império and its members
// @Summary Get império
// @Tags imperios
// @Produce json
// @Security BearerAuth
// @Param id path int true "Império ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.ImperioDetailResponse} "Império and its members"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Missing permission"
// @Failure 404 {object} dto.ErrorResponse "Império not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /imperios/{id} [get]
func (c *GroupController) GetImperio(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	res, err := c.groupService.GetImperio(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, res)
}

// CreateImperio adds an império to the active year
// @Summary Create império
// @Tags imperios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ImperioRequest true "Império information"
// @Success 201 {object} dto.APIResponse{data=models.Imperio} "Império created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Missing permission or read-only year"
// @Failure 409 {object} dto.ErrorResponse "Império already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /imperios [post]
func (c *GroupController) CreateImperio(ctx *gin.Context) {
	var req dto.ImperioRequest
	if !bindJSON(ctx, &req) {
		return
	}
	imperio, err := c.groupService.CreateImperio(ctx.Request.Context(), middleware.Year(ctx), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, imperio)
}

// UpdateImperio renames an império
// @Summary Update império
// @Tags imperios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Império ID" Format(int64) minimum(1)
// @Param request body dto.ImperioRequest true "Império information"
// @Success 200 {object} dto.APIResponse{data=models.Imperio} "Império updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Missing permission or read-only year"
// @Failure 404 {object} dto.ErrorResponse "Império not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /imperios/{id} [put]
func (c *GroupController) UpdateImperio(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.ImperioRequest
	if !bindJSON(ctx, &req) {
		return
	}
	imperio, err := c.groupService.UpdateImperio(ctx.Request.Context(), id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, imperio)
}

// DeleteImperio removes an império
// @Summary Delete império
// @Tags imperios
// @Produce json
// @Security BearerAuth
// @Param id path int true "Império ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Império deleted"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Missing permission or read-only year"
// @Failure 404 {object} dto.ErrorResponse "Império not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /imperios/{id} [delete]
func (c *GroupController) DeleteImperio(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.groupService.DeleteImperio(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.SuccessResponse{Message: "Império deleted"})
}

// AddImperioMembers moves participants into an império
// @Summary Add império members
// @Tags imperios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Império ID" Format(int64) minimum(1)
// @Param request body dto.BulkMembersRequest true "Participant IDs"
// @Success 200 {object} dto.APIResponse{data=dto.BulkResult} "Members added"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Missing permission or read-only year"
// @Failure 404 {object} dto.ErrorResponse "Império not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /imperios/{id}/members [post]
func (c *GroupController) AddImperioMembers(ctx *gin.Context) {
	c.members(ctx, c.groupService.AddImperioMembers)
}

// RemoveImperioMembers takes participants out of an império
// @Summary Remove império members
// @Tags imperios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Império ID" Format(int64) minimum(1)
// @Param request body dto.BulkMembersRequest true "Participant IDs"
// @Success 200 {object} dto.APIResponse{data=dto.BulkResult} "Members removed"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Missing permission or read-only year"
// @Failure 404 {object} dto.ErrorResponse "Império not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /imperios/{id}/members [delete]
func (c *GroupController) RemoveImperioMembers(ctx *gin.Context) {
	c.members(ctx, c.groupService.RemoveImperioMembers)
}

type membersFunc func(ctx context.Context, id int64, ids []int64) (*dto.BulkResult, error)

func (c *GroupController) members(ctx *gin.Context, apply membersFunc) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.BulkMembersRequest
	if !bindJSON(ctx, &req) {
		return
	}
	res, err := apply(ctx.Request.Context(), id, req.ParticipantIDs)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, res)
}
