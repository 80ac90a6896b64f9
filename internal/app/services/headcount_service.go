package services

import (
	"context"

	"github.com/jumpyouth/checkin/internal/app/models"
	"github.com/jumpyouth/checkin/internal/app/models/dto"
	"github.com/jumpyouth/checkin/internal/pkg/apperrors"
	"github.com/jumpyouth/checkin/internal/pkg/logger"
)

// HeadcountService records the auditorium and visitor counts of a day
type HeadcountService interface {
	RecordAuditorium(ctx context.Context, year int, actor int64, dayID int64, quantity *int) (*dto.HeadcountResponse, error)
	RecordVisitors(ctx context.Context, year int, actor int64, dayID int64, quantity *int) (*dto.HeadcountResponse, error)
	ListAuditorium(ctx context.Context, year int) ([]models.Headcount, error)
}

type headcountServiceImpl struct {
	headcounts HeadcountStore
	days       EventDayStore
	feed       LiveFeed
	years      YearPolicy
}

// NewHeadcountService creates a new headcount service
func NewHeadcountService(headcounts HeadcountStore, days EventDayStore, feed LiveFeed, years YearPolicy) HeadcountService {
	if feed == nil {
		feed = noopFeed{}
	}
	return &headcountServiceImpl{headcounts: headcounts, days: days, feed: feed, years: years}
}

// RecordAuditorium stores a positive auditorium count for a day
func (s *headcountServiceImpl) RecordAuditorium(ctx context.Context, year int, actor int64, dayID int64, quantity *int) (*dto.HeadcountResponse, error) {
	if quantity == nil || *quantity <= 0 {
		return nil, apperrors.NewValidationError("quantity", "quantity must be a positive number")
	}
	return s.record(ctx, year, actor, models.HeadcountAuditorium, dayID, *quantity)
}

// RecordVisitors stores a non-negative visitor count for a day
func (s *headcountServiceImpl) RecordVisitors(ctx context.Context, year int, actor int64, dayID int64, quantity *int) (*dto.HeadcountResponse, error) {
	if quantity == nil || *quantity < 0 {
		return nil, apperrors.NewValidationError("quantity", "quantity cannot be negative")
	}
	return s.record(ctx, year, actor, models.HeadcountVisitors, dayID, *quantity)
}

func (s *headcountServiceImpl) record(ctx context.Context, year int, actor int64, kind models.HeadcountKind, dayID int64, quantity int) (*dto.HeadcountResponse, error) {
	if err := s.years.EnsureWritable(year); err != nil {
		return nil, err
	}
	day, err := s.days.GetByID(ctx, dayID)
	if err != nil {
		return nil, err
	}
	if err := s.years.EnsureDayWritable(year, day); err != nil {
		return nil, err
	}

	var recordedBy *int64
	if actor > 0 {
		recordedBy = &actor
	}
	created, err := s.headcounts.Upsert(ctx, kind, dayID, quantity, recordedBy)
	if err != nil {
		return nil, err
	}

	h, err := s.headcounts.GetForDay(ctx, kind, dayID)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, apperrors.NewResourceNotFoundError("headcount not found")
	}

	logger.Info().
		Str("kind", string(kind)).
		Int64("eventDayID", dayID).
		Int("quantity", quantity).
		Bool("created", created).
		Msg("Headcount recorded")

	s.feed.HeadcountUpdated(dayID, kind, quantity)
	return &dto.HeadcountResponse{Headcount: *h, Created: created}, nil
}

// ListAuditorium lists the year's auditorium counts, newest day first
func (s *headcountServiceImpl) ListAuditorium(ctx context.Context, year int) ([]models.Headcount, error) {
	return s.headcounts.ListByYear(ctx, models.HeadcountAuditorium, year)
}
