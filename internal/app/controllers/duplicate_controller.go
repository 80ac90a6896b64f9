package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jumpyouth/checkin/internal/app/models/dto"
	"github.com/jumpyouth/checkin/internal/app/services"
	"github.com/jumpyouth/checkin/internal/middleware"
)

// DuplicateController handles duplicate review endpoints
type DuplicateController struct {
	duplicateService services.DuplicateService
}

// NewDuplicateController creates a new DuplicateController
func NewDuplicateController(duplicateService services.DuplicateService) *DuplicateController {
	return &DuplicateController{duplicateService: duplicateService}
}

// Suggest lists likely duplicate pairs in the active year.
// Query: threshold (0..1, default from config), limit.
// @Summary Suggest duplicates
// @Tags duplicates
// @Produce json
// @Security BearerAuth
// @Param year query int false "Enrollment year (defaults to the active year)"
// @Param threshold query number false "Minimum name similarity (0..1)" default(0.75)
// @Param limit query int false "Maximum pairs" default(50) maximum(500)
// @Success 200 {object} dto.APIResponse{data=dto.DuplicateListResponse} "Candidate pairs, best score first"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Missing permission"
// @Failure 500 {object} dto.ErrorResponse "Internal server error or similarity search unavailable"
// @Router /duplicates [get]
func (c *DuplicateController) Suggest(ctx *gin.Context) {
	var threshold float64
	if raw := queryAny(ctx, "threshold"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			badRequest(ctx, "threshold", "threshold must be a number")
			return
		}
		threshold = v
	}
	var limit int
	if raw := queryAny(ctx, "limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(ctx, "limit", "limit must be an integer")
			return
		}
		limit = v
	}

	res, err := c.duplicateService.Suggest(ctx.Request.Context(), middleware.Year(ctx), threshold, limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, res)
}

// Merge folds the loser into the winner, or previews it when dryRun is set
// @Summary Merge duplicates
// @Description Moves the loser's attendance to the winner and deletes the loser. dryRun only reports
// @Tags duplicates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.MergeRequest true "Winner, loser and options"
// @Success 200 {object} dto.APIResponse{data=models.MergeReport} "Merge report"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Missing permission or read-only year"
// @Failure 404 {object} dto.ErrorResponse "Participant not found"
// @Failure 409 {object} dto.ErrorResponse "Birth dates differ"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /duplicates/merge [post]
func (c *DuplicateController) Merge(ctx *gin.Context) {
	var req dto.MergeRequest
	if !bindJSON(ctx, &req) {
		return
	}

	report, err := c.duplicateService.Merge(ctx.Request.Context(), middleware.Year(ctx), middleware.UserID(ctx), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, report)
}

// Reject marks a pair as not duplicates
// @Summary Reject a duplicate pair
// @Tags duplicates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RejectPairRequest true "Pair and reason"
// @Success 200 {object} dto.APIResponse{data=models.RejectedPair} "Pair rejected"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Missing permission"
// @Failure 404 {object} dto.ErrorResponse "Participant not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /duplicates/reject [post]
func (c *DuplicateController) Reject(ctx *gin.Context) {
	var req dto.RejectPairRequest
	if !bindJSON(ctx, &req) {
		return
	}

	pair, err := c.duplicateService.RejectPair(ctx.Request.Context(), middleware.UserID(ctx), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, pair)
}
