package helpers

import (
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jumpyouth/checkin/internal/app/models/dto"
)

const (
	DefaultPageSize = 25
	MaxPageSize     = 100
	DefaultPage     = 1
)

// ParsePage turns a raw page parameter into a 1-based page. Anything that
// is not a positive integer resolves to the first page.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return DefaultPage
	}
	return page
}

// PageParam reads the "page" query parameter.
func PageParam(c *gin.Context) int {
	return ParsePage(c.Query("page"))
}

// NormalizePageSize maps a non-positive size to DefaultPageSize and caps it
// at MaxPageSize. Every helper below pages with the normalized size.
func NormalizePageSize(size int) int {
	switch {
	case size <= 0:
		return DefaultPageSize
	case size > MaxPageSize:
		return MaxPageSize
	}
	return size
}

// TotalPages returns the number of pages for totalItems, never less than 1.
func TotalPages(totalItems int64, size int) int {
	size = NormalizePageSize(size)
	if totalItems <= 0 {
		return 1
	}
	return int(math.Ceil(float64(totalItems) / float64(size)))
}

// ClampPage limits page to [1, last page]. Out-of-range requests land on
// the last page instead of failing.
func ClampPage(page int, totalItems int64, size int) int {
	if page < 1 {
		return DefaultPage
	}
	if last := TotalPages(totalItems, size); page > last {
		return last
	}
	return page
}

// CalculateOffsetLimit calculates the offset and limit for SQL queries based on 1-based page index.
func CalculateOffsetLimit(page, size int) (offset uint64, limit uint64) {
	size = NormalizePageSize(size)
	if page < 1 {
		page = DefaultPage
	}
	return uint64((page - 1) * size), uint64(size)
}

// CalculateSliceIndices returns the [start, end) bounds of a page over an
// in-memory slice of totalItems.
func CalculateSliceIndices(page, size, totalItems int) (start, end int) {
	size = NormalizePageSize(size)
	if page < 1 {
		page = DefaultPage
	}

	start = (page - 1) * size
	if start > totalItems {
		start = totalItems
	}
	end = start + size
	if end > totalItems {
		end = totalItems
	}
	return start, end
}

// NewPaginationInfo creates the PaginationInfo DTO for an already clamped page.
func NewPaginationInfo(totalItems int64, page, size int) dto.PaginationInfo {
	size = NormalizePageSize(size)
	return dto.PaginationInfo{
		CurrentPage: ClampPage(page, totalItems, size),
		TotalPages:  TotalPages(totalItems, size),
		PageSize:    size,
		TotalItems:  totalItems,
	}
}
