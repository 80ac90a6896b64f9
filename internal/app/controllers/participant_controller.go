package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jumpyouth/checkin/internal/app/models"
	"github.com/jumpyouth/checkin/internal/app/models/dto"
	"github.com/jumpyouth/checkin/internal/app/models/dto/enums"
	"github.com/jumpyouth/checkin/internal/app/services"
	"github.com/jumpyouth/checkin/internal/middleware"
	"github.com/jumpyouth/checkin/internal/pkg/helpers"
)

// ParticipantController handles participant endpoints
type ParticipantController struct {
	participantService services.ParticipantService
}

// NewParticipantController creates a new ParticipantController
func NewParticipantController(participantService services.ParticipantService) *ParticipantController {
	return &ParticipantController{participantService: participantService}
}

// queryAny returns the first non-empty value among the given query keys
func queryAny(ctx *gin.Context, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(ctx.Query(k)); v != "" {
			return v
		}
	}
	return ""
}

// groupFilter parses a cohort or império filter: an id, or one of the "none" aliases
func groupFilter(ctx *gin.Context, field string, raw string, noneAliases ...string) (*int64, bool, bool) {
	if raw == "" {
		return nil, false, true
	}
	for _, alias := range noneAliases {
		if strings.EqualFold(raw, alias) {
			return nil, true, true
		}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		badRequest(ctx, field, "Invalid "+field)
		return nil, false, false
	}
	return &id, false, true
}

func parseParticipantQuery(ctx *gin.Context) (dto.ParticipantQuery, bool) {
	q := dto.ParticipantQuery{
		Search:     queryAny(ctx, "search", "busca"),
		Attendance: enums.ParseAttendanceBucket(queryAny(ctx, "attendance", "presenca")),
		Sort:       enums.ParseSortField(queryAny(ctx, "sort", "ordenar_por")),
		Desc:       strings.EqualFold(queryAny(ctx, "direction", "direcao"), "desc"),
		Page:       helpers.PageParam(ctx),
	}

	var ok bool
	if q.CohortID, q.NoCohort, ok = groupFilter(ctx, "cohort", queryAny(ctx, "cohort", "pg"), "none", "sem_pg"); !ok {
		return q, false
	}
	if q.ImperioID, q.NoImperio, ok = groupFilter(ctx, "imperio", queryAny(ctx, "imperio"), "none", "sem_imperio"); !ok {
		return q, false
	}

	if g := queryAny(ctx, "gender", "genero"); g != "" {
		q.Gender = models.Gender(strings.ToUpper(g))
		if !q.Gender.Valid() {
			badRequest(ctx, "gender", "gender must be M or F")
			return q, false
		}
	}

	if by := queryAny(ctx, "birthYear", "ano_nascimento"); by != "" {
		year, err := strconv.Atoi(by)
		if err != nil || year <= 0 {
			badRequest(ctx, "birthYear", "Invalid birthYear")
			return q, false
		}
		q.BirthYear = year
	}

	return q, true
}

// List returns a filtered, sorted page of the active year's participants
// @Summary List participants
// @Description Returns one page of the active year's participants. Out-of-range pages land on the last page
// @Tags participants
// @Produce json
// @Security BearerAuth
// @Param year query int false "Enrollment year (defaults to the active year)"
// @Param search query string false "Name search (alias: busca)"
// @Param cohort query string false "Cohort ID or none (alias: pg)"
// @Param imperio query string false "Império ID or none"
// @Param gender query string false "M or F (alias: genero)"
// @Param birthYear query int false "Birth year (alias: ano_nascimento)"
// @Param attendance query string false "present_30d, absent_30d or never (alias: presenca)"
// @Param sort query string false "name, family_name, gender, birth_date, cohort or imperio (alias: ordenar_por)"
// @Param direction query string false "asc or desc (alias: direcao)"
// @Param page query int false "Page number (1-based)" default(1) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.ParticipantListResponse} "Participants retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Missing permission"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /participants [get]
func (c *ParticipantController) List(ctx *gin.Context) {
	q, ok := parseParticipantQuery(ctx)
	if !ok {
		return
	}

	res, err := c.participantService.List(ctx.Request.Context(), middleware.Year(ctx), q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, res)
}

// Get returns a single participant
// @Summary Get participant
// @Tags participants
// @Produce json
// @Security BearerAuth
// @Param id path int true "Participant ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Participant} "Participant retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Missing permission"
// @Failure 404 {object} dto.ErrorResponse "Participant not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /participants/{id} [get]
func (c *ParticipantController) Get(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	participant, err := c.participantService.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, participant)
}

// Create registers a participant in the active year
// @Summary Create participant
// @Tags participants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ParticipantRequest true "Participant information"
// @Success 201 {object} dto.APIResponse{data=models.Participant} "Participant created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Missing permission or read-only year"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /participants [post]
func (c *ParticipantController) Create(ctx *gin.Context) {
	var req dto.ParticipantRequest
	if !bindJSON(ctx, &req) {
		return
	}
	in, err := services.ParseParticipantRequest(req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	participant, err := c.participantService.Create(ctx.Request.Context(), middleware.Year(ctx), in)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, participant)
}

// Update replaces a participant's fields
// @Summary Update participant
// @Tags participants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Participant ID" Format(int64) minimum(1)
// @Param request body dto.ParticipantRequest true "Participant information"
// @Success 200 {object} dto.APIResponse{data=models.Participant} "Participant updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Missing permission or read-only year"
// @Failure 404 {object} dto.ErrorResponse "Participant not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /participants/{id} [put]
func (c *ParticipantController) Update(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.ParticipantRequest
	if !bindJSON(ctx, &req) {
		return
	}
	in, err := services.ParseParticipantRequest(req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	participant, err := c.participantService.Update(ctx.Request.Context(), id, in)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, participant)
}

// Delete removes a participant
// @Summary Delete participant
// @Tags participants
// @Produce json
// @Security BearerAuth
// @Param id path int true "Participant ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Participant deleted"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Missing permission or read-only year"
// @Failure 404 {object} dto.ErrorResponse "Participant not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /participants/{id} [delete]
func (c *ParticipantController) Delete(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.participantService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.SuccessResponse{Message: "Participant deleted"})
}

// UploadPhoto stores the multipart "photo" file as the participant's photo
// @Summary Upload participant photo
// @Description Replaces the participant's photo. The previous file is removed
// @Tags participants
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Participant ID" Format(int64) minimum(1)
// @Param photo formData file true "Photo to upload"
// @Success 200 {object} dto.APIResponse{data=models.Participant} "Photo stored"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Missing permission or read-only year"
// @Failure 404 {object} dto.ErrorResponse "Participant not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /participants/{id}/photo [post]
func (c *ParticipantController) UploadPhoto(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	file, err := ctx.FormFile("photo")
	if err != nil {
		badRequest(ctx, "photo", "photo file is required")
		return
	}

	participant, err := c.participantService.UploadPhoto(ctx.Request.Context(), id, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, participant)
}

// BulkAssign sets the cohort and/or império of the selected participants
// @Summary Assign participants to groups
// @Tags participants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkAssignRequest true "Participants and target groups"
// @Success 200 {object} dto.APIResponse{data=dto.BulkResult} "Participants updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Missing permission or read-only year"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /participants/bulk-assign [post]
func (c *ParticipantController) BulkAssign(ctx *gin.Context) {
	var req dto.BulkAssignRequest
	if !bindJSON(ctx, &req) {
		return
	}

	res, err := c.participantService.BulkAssign(ctx.Request.Context(), middleware.Year(ctx), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, res)
}
