package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jumpyouth/checkin/internal/app/models/dto"
	"github.com/jumpyouth/checkin/internal/app/services"
	"github.com/jumpyouth/checkin/internal/middleware"
	"github.com/rs/zerolog"
)

// AuthController handles login, logout and the enrollment year selection
type AuthController struct {
	authService  *services.AuthService
	yearService  services.YearService
	cookieSecure bool
	logger       zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, yearService services.YearService, cookieSecure bool, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService:  authService,
		yearService:  yearService,
		cookieSecure: cookieSecure,
		logger:       logger,
	}
}

// Login handles user login
// @Summary Log in
// @Description Returns an access token and sets it as an HttpOnly cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.APIResponse{data=dto.LoginResponse} "Logged in"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials or disabled account"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(ctx, &req) {
		return
	}

	res, err := c.authService.Login(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	maxAge := int(time.Until(res.ExpiresAt).Seconds())
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middleware.TokenCookieName, res.AccessToken, maxAge, "/", "", c.cookieSecure, true)

	respond(ctx, http.StatusOK, res)
}

// Logout clears the session cookie
// @Summary Log out
// @Tags auth
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Logged out"
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middleware.TokenCookieName, "", -1, "/", "", c.cookieSecure, true)
	respond(ctx, http.StatusOK, dto.SuccessResponse{Message: "Logged out"})
}

// Me returns the authenticated user
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.User} "Authenticated user"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	user, err := c.authService.Me(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, user)
}

// Years lists the enrollment years and the active one
// @Summary List enrollment years
// @Tags years
// @Produce json
// @Security BearerAuth
// @Param year query int false "Enrollment year (defaults to the active year)"
// @Success 200 {object} dto.APIResponse{data=dto.YearsResponse} "Available years"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /years [get]
func (c *AuthController) Years(ctx *gin.Context) {
	res, err := c.yearService.Available(ctx.Request.Context(), middleware.Year(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, res)
}

// SetActiveYear stores the selected year in a cookie
// @Summary Select the active year
// @Tags years
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SetYearRequest true "Year to activate"
// @Success 200 {object} dto.APIResponse{data=dto.YearsResponse} "Active year stored"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /years/active [put]
func (c *AuthController) SetActiveYear(ctx *gin.Context) {
	var req dto.SetYearRequest
	if !bindJSON(ctx, &req) {
		return
	}
	if err := c.yearService.Validate(req.Year); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middleware.YearCookieName, strconv.Itoa(req.Year), 365*24*3600, "/", "", c.cookieSecure, true)

	c.logger.Info().Int64("userID", middleware.UserID(ctx)).Int("year", req.Year).Msg("Active year changed")

	res, err := c.yearService.Available(ctx.Request.Context(), req.Year)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, res)
}
