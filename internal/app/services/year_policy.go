package services

import (
	"fmt"

	"github.com/jumpyouth/checkin/internal/app/models"
	"github.com/jumpyouth/checkin/internal/pkg/apperrors"
)

// YearPolicy decides which enrollment years accept writes. Only the current
// year and later are writable.
type YearPolicy struct {
	Current int
}

// Writable reports whether year accepts writes
func (p YearPolicy) Writable(year int) bool {
	return year >= p.Current
}

// EnsureWritable returns ErrReadonlyYear for closed years
func (p YearPolicy) EnsureWritable(year int) error {
	if !p.Writable(year) {
		return apperrors.NewReadonlyYearError(year, p.Current)
	}
	return nil
}

// EnsureDayWritable checks that day is open for writes and belongs to the
// active year.
func (p YearPolicy) EnsureDayWritable(year int, day *models.EventDay) error {
	if err := p.EnsureWritable(day.Year); err != nil {
		return err
	}
	if day.Year != year {
		return apperrors.NewValidationError("eventDayId",
			fmt.Sprintf("event day belongs to enrollment year %d", day.Year))
	}
	return nil
}
