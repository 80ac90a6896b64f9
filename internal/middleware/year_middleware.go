package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jumpyouth/checkin/internal/app/models/dto"
	"github.com/jumpyouth/checkin/internal/pkg/validation"
)

const (
	// YearCookieName stores the year picked with PUT /years/active
	YearCookieName = "active_year"
	YearHeader     = "X-Active-Year"
	ContextYear    = "activeYear"
)

// ActiveYear resolves the enrollment year of the request: the year query
// parameter, then the X-Active-Year header, then the cookie, then current.
func ActiveYear(current int) gin.HandlerFunc {
	return func(c *gin.Context) {
		year := current

		explicit := c.Query("year")
		if explicit == "" {
			explicit = c.GetHeader(YearHeader)
		}

		if explicit != "" {
			y, err := strconv.Atoi(strings.TrimSpace(explicit))
			if err == nil {
				err = validation.Year(y)
			}
			if err != nil {
				errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid enrollment year").WithField("year")
				c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
				return
			}
			year = y
		} else if cookie, err := c.Cookie(YearCookieName); err == nil {
			// a stale or tampered cookie falls back to the current year
			if y, err := strconv.Atoi(cookie); err == nil && validation.Year(y) == nil {
				year = y
			}
		}

		c.Set(ContextYear, year)
		c.Next()
	}
}

// Year returns the year resolved by ActiveYear
func Year(c *gin.Context) int {
	return c.GetInt(ContextYear)
}
