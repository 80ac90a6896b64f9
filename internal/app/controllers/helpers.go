// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jumpyouth/checkin/internal/app/models/dto"
	"github.com/jumpyouth/checkin/internal/pkg/helpers"
)

func respond(ctx *gin.Context, status int, data interface{}) {
	ctx.JSON(status, dto.APIResponse{
		Data:      data,
		Timestamp: time.Now(),
	})
}

func badRequest(ctx *gin.Context, field, message string) {
	errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, message)
	if field != "" {
		errorDetail = errorDetail.WithField(field)
	}
	ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
}

// bindJSON binds the request body and writes the validation error on failure
func bindJSON(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return false
	}
	return true
}

// idParam parses a positive int64 path parameter
func idParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(ctx, name, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// optionalDate parses an optional YYYY-MM-DD or DD/MM/YYYY query parameter
func optionalDate(ctx *gin.Context, name string) (*time.Time, bool) {
	raw := strings.TrimSpace(ctx.Query(name))
	if raw == "" {
		return nil, true
	}
	d, err := helpers.ParseDate(raw)
	if err != nil {
		badRequest(ctx, name, name+" must be YYYY-MM-DD")
		return nil, false
	}
	return &d, true
}

func attachment(ctx *gin.Context, filename string) {
	ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
}
