package services

import (
	"context"
	"strings"
	"time"

	"github.com/jumpyouth/checkin/internal/app/models"
	"github.com/jumpyouth/checkin/internal/app/models/dto"
	"github.com/jumpyouth/checkin/internal/pkg/apperrors"
	"github.com/jumpyouth/checkin/internal/pkg/helpers"
	"github.com/jumpyouth/checkin/internal/pkg/logger"
	"github.com/jumpyouth/checkin/internal/pkg/validation"
)

// EventDayService creates and lists event days
type EventDayService interface {
	Create(ctx context.Context, year int, req dto.EventDayRequest) (*models.EventDay, error)
	Get(ctx context.Context, id int64) (*models.EventDay, error)
	List(ctx context.Context, year int) (*dto.EventDayListResponse, error)
}

type eventDayServiceImpl struct {
	days  EventDayStore
	years YearPolicy
	now   func() time.Time
}

// NewEventDayService creates a new event day service
func NewEventDayService(days EventDayStore, years YearPolicy) EventDayService {
	return &eventDayServiceImpl{days: days, years: years, now: time.Now}
}

// Create adds an event day to year. Past dates are rejected.
func (s *eventDayServiceImpl) Create(ctx context.Context, year int, req dto.EventDayRequest) (*models.EventDay, error) {
	if err := s.years.EnsureWritable(year); err != nil {
		return nil, err
	}

	date, err := helpers.ParseDate(req.Date)
	if err != nil {
		return nil, apperrors.NewValidationError("date", "date must be YYYY-MM-DD")
	}
	if err := validation.NotBefore("date", date, s.now()); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if len([]rune(title)) > validation.TitleMaxLength {
		return nil, apperrors.NewValidationError("title", "title is too long")
	}

	day := &models.EventDay{Date: helpers.DateOnly(date), Title: title, Year: year}
	if _, err := s.days.Create(ctx, day); err != nil {
		return nil, err
	}

	logger.Info().Int64("eventDayID", day.ID).Str("date", day.Date.Format(models.DateLayout)).Msg("Event day created")
	return day, nil
}

// Get returns an event day
func (s *eventDayServiceImpl) Get(ctx context.Context, id int64) (*models.EventDay, error) {
	if id <= 0 {
		return nil, apperrors.NewValidationError("id", "invalid event day ID")
	}
	return s.days.GetByID(ctx, id)
}

// List returns the year's days, newest first, with the mean presence
func (s *eventDayServiceImpl) List(ctx context.Context, year int) (*dto.EventDayListResponse, error) {
	items, err := s.days.ListSummaries(ctx, year)
	if err != nil {
		return nil, err
	}

	res := &dto.EventDayListResponse{Items: items}
	if len(items) > 0 {
		total := 0
		for _, d := range items {
			total += d.Present
		}
		res.AveragePresent = helpers.Round1(float64(total) / float64(len(items)))
	}
	return res, nil
}
