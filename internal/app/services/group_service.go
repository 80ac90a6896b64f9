package services

import (
	"context"
	"strings"

	"github.com/jumpyouth/checkin/internal/app/models"
	"github.com/jumpyouth/checkin/internal/app/models/dto"
	"github.com/jumpyouth/checkin/internal/pkg/apperrors"
	"github.com/jumpyouth/checkin/internal/pkg/logger"
	"github.com/jumpyouth/checkin/internal/pkg/validation"
)

const (
	cohortColumn  = "cohort_id"
	imperioColumn = "imperio_id"
)

// GroupService manages cohorts and impérios and their members
type GroupService interface {
	ListCohorts(ctx context.Context, year int) ([]models.Cohort, error)
	GetCohort(ctx context.Context, id int64) (*dto.CohortDetailResponse, error)
	CreateCohort(ctx context.Context, year int, req dto.CohortRequest) (*models.Cohort, error)
	UpdateCohort(ctx context.Context, id int64, req dto.CohortRequest) (*models.Cohort, error)
	DeleteCohort(ctx context.Context, id int64) error
	AddCohortMembers(ctx context.Context, id int64, ids []int64) (*dto.BulkResult, error)
	RemoveCohortMembers(ctx context.Context, id int64, ids []int64) (*dto.BulkResult, error)

	ListImperios(ctx context.Context, year int) ([]models.Imperio, error)
	GetImperio(ctx context.Context, id int64) (*dto.ImperioDetailResponse, error)
	CreateImperio(ctx context.Context, year int, req dto.ImperioRequest) (*models.Imperio, error)
	UpdateImperio(ctx context.Context, id int64, req dto.ImperioRequest) (*models.Imperio, error)
	DeleteImperio(ctx context.Context, id int64) error
	AddImperioMembers(ctx context.Context, id int64, ids []int64) (*dto.BulkResult, error)
	RemoveImperioMembers(ctx context.Context, id int64, ids []int64) (*dto.BulkResult, error)
}

type groupServiceImpl struct {
	cohorts      CohortStore
	imperios     ImperioStore
	participants ParticipantStore
	years        YearPolicy
}

// NewGroupService creates a new group service
func NewGroupService(cohorts CohortStore, imperios ImperioStore, participants ParticipantStore, years YearPolicy) GroupService {
	return &groupServiceImpl{
		cohorts:      cohorts,
		imperios:     imperios,
		participants: participants,
		years:        years,
	}
}

func requireMembers(ids []int64) error {
	if len(ids) == 0 {
		return apperrors.NewValidationError("participantIds", "select at least one participant")
	}
	return nil
}

// ListCohorts lists the year's cohorts with member counts
func (s *groupServiceImpl) ListCohorts(ctx context.Context, year int) ([]models.Cohort, error) {
	return s.cohorts.ListByYear(ctx, year)
}

// GetCohort returns a cohort and its members
func (s *groupServiceImpl) GetCohort(ctx context.Context, id int64) (*dto.CohortDetailResponse, error) {
	c, err := s.cohorts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	members, err := s.participants.ListByCohort(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.CohortDetailResponse{Cohort: *c, Members: members}, nil
}

// CreateCohort adds a cohort to year
func (s *groupServiceImpl) CreateCohort(ctx context.Context, year int, req dto.CohortRequest) (*models.Cohort, error) {
	if err := s.years.EnsureWritable(year); err != nil {
		return nil, err
	}
	if err := validation.Name("name", req.Name); err != nil {
		return nil, err
	}

	c := &models.Cohort{
		Name: strings.TrimSpace(req.Name),
		Tag:  strings.TrimSpace(req.Tag),
		Year: year,
	}
	if _, err := s.cohorts.Create(ctx, c); err != nil {
		return nil, err
	}
	logger.Info().Int64("cohortID", c.ID).Int("year", year).Msg("Cohort created")
	return c, nil
}

// UpdateCohort renames or retags a cohort
func (s *groupServiceImpl) UpdateCohort(ctx context.Context, id int64, req dto.CohortRequest) (*models.Cohort, error) {
	c, err := s.cohorts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.years.EnsureWritable(c.Year); err != nil {
		return nil, err
	}
	if err := validation.Name("name", req.Name); err != nil {
		return nil, err
	}

	c.Name = strings.TrimSpace(req.Name)
	c.Tag = strings.TrimSpace(req.Tag)
	if err := s.cohorts.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCohort removes a cohort. Members keep their registration.
func (s *groupServiceImpl) DeleteCohort(ctx context.Context, id int64) error {
	c, err := s.cohorts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.years.EnsureWritable(c.Year); err != nil {
		return err
	}
	return s.cohorts.Delete(ctx, id)
}

// AddCohortMembers moves participants of the cohort's year into it
func (s *groupServiceImpl) AddCohortMembers(ctx context.Context, id int64, ids []int64) (*dto.BulkResult, error) {
	if err := requireMembers(ids); err != nil {
		return nil, err
	}
	c, err := s.cohorts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.years.EnsureWritable(c.Year); err != nil {
		return nil, err
	}
	n, err := s.participants.BulkAssign(ctx, c.Year, ids, &c.ID, nil)
	if err != nil {
		return nil, err
	}
	return &dto.BulkResult{Updated: n}, nil
}

// RemoveCohortMembers clears the cohort of participants currently in it
func (s *groupServiceImpl) RemoveCohortMembers(ctx context.Context, id int64, ids []int64) (*dto.BulkResult, error) {
	if err := requireMembers(ids); err != nil {
		return nil, err
	}
	c, err := s.cohorts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.years.EnsureWritable(c.Year); err != nil {
		return nil, err
	}
	n, err := s.participants.RemoveFromGroup(ctx, cohortColumn, id, ids)
	if err != nil {
		return nil, err
	}
	return &dto.BulkResult{Updated: n}, nil
}

// ListImperios lists the year's impérios with member counts
func (s *groupServiceImpl) ListImperios(ctx context.Context, year int) ([]models.Imperio, error) {
	return s.imperios.ListByYear(ctx, year)
}

// GetImperio returns an império and its members
func (s *groupServiceImpl) GetImperio(ctx context.Context, id int64) (*dto.ImperioDetailResponse, error) {
	i, err := s.imperios.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	members, err := s.participants.ListByImperio(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.ImperioDetailResponse{Imperio: *i, Members: members}, nil
}

// CreateImperio adds an império to year. Names are unique per year.
func (s *groupServiceImpl) CreateImperio(ctx context.Context, year int, req dto.ImperioRequest) (*models.Imperio, error) {
	if err := s.years.EnsureWritable(year); err != nil {
		return nil, err
	}
	if err := validation.Name("name", req.Name); err != nil {
		return nil, err
	}

	i := &models.Imperio{Name: strings.TrimSpace(req.Name), Year: year}
	if _, err := s.imperios.Create(ctx, i); err != nil {
		return nil, err
	}
	logger.Info().Int64("imperioID", i.ID).Int("year", year).Msg("Império created")
	return i, nil
}

// UpdateImperio renames an império
func (s *groupServiceImpl) UpdateImperio(ctx context.Context, id int64, req dto.ImperioRequest) (*models.Imperio, error) {
	i, err := s.imperios.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.years.EnsureWritable(i.Year); err != nil {
		return nil, err
	}
	if err := validation.Name("name", req.Name); err != nil {
		return nil, err
	}

	i.Name = strings.TrimSpace(req.Name)
	if err := s.imperios.Update(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}

// DeleteImperio removes an império
func (s *groupServiceImpl) DeleteImperio(ctx context.Context, id int64) error {
	i, err := s.imperios.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.years.EnsureWritable(i.Year); err != nil {
		return err
	}
	return s.imperios.Delete(ctx, id)
}

// AddImperioMembers moves participants of the império's year into it
func (s *groupServiceImpl) AddImperioMembers(ctx context.Context, id int64, ids []int64) (*dto.BulkResult, error) {
	if err := requireMembers(ids); err != nil {
		return nil, err
	}
	i, err := s.imperios.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.years.EnsureWritable(i.Year); err != nil {
		return nil, err
	}
	n, err := s.participants.BulkAssign(ctx, i.Year, ids, nil, &i.ID)
	if err != nil {
		return nil, err
	}
	return &dto.BulkResult{Updated: n}, nil
}

// RemoveImperioMembers clears the império of participants currently in it
func (s *groupServiceImpl) RemoveImperioMembers(ctx context.Context, id int64, ids []int64) (*dto.BulkResult, error) {
	if err := requireMembers(ids); err != nil {
		return nil, err
	}
	i, err := s.imperios.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.years.EnsureWritable(i.Year); err != nil {
		return nil, err
	}
	n, err := s.participants.RemoveFromGroup(ctx, imperioColumn, id, ids)
	if err != nil {
		return nil, err
	}
	return &dto.BulkResult{Updated: n}, nil
}
