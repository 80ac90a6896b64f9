package services

import (
	"context"
	"sort"

	"github.com/jumpyouth/checkin/internal/app/models/dto"
	"github.com/jumpyouth/checkin/internal/pkg/validation"
)

// YearService lists enrollment years
type YearService interface {
	Available(ctx context.Context, active int) (*dto.YearsResponse, error)
	Validate(year int) error
	Policy() YearPolicy
}

type yearServiceImpl struct {
	participants ParticipantStore
	policy       YearPolicy
}

// NewYearService creates a new year service
func NewYearService(participants ParticipantStore, policy YearPolicy) YearService {
	return &yearServiceImpl{participants: participants, policy: policy}
}

// Available returns the years holding data plus the current year, newest first
func (s *yearServiceImpl) Available(ctx context.Context, active int) (*dto.YearsResponse, error) {
	stored, err := s.participants.Years(ctx)
	if err != nil {
		return nil, err
	}

	seen := map[int]bool{s.policy.Current: true}
	years := []int{s.policy.Current}
	for _, y := range stored {
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	return &dto.YearsResponse{
		Years:    years,
		Active:   active,
		Current:  s.policy.Current,
		ReadOnly: !s.policy.Writable(active),
	}, nil
}

// Validate checks a year can be selected
func (s *yearServiceImpl) Validate(year int) error {
	return validation.Year(year)
}

// Policy returns the write policy
func (s *yearServiceImpl) Policy() YearPolicy {
	return s.policy
}
