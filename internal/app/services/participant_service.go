package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/jumpyouth/checkin/internal/app/models"
	"github.com/jumpyouth/checkin/internal/app/models/dto"
	"github.com/jumpyouth/checkin/internal/pkg/apperrors"
	"github.com/jumpyouth/checkin/internal/pkg/filestorage"
	"github.com/jumpyouth/checkin/internal/pkg/logger"
	"github.com/jumpyouth/checkin/internal/pkg/validation"
)

const photoSubPath = "participants"

// ParticipantService defines the participant operations
type ParticipantService interface {
	List(ctx context.Context, year int, q dto.ParticipantQuery) (*dto.ParticipantListResponse, error)
	Get(ctx context.Context, id int64) (*models.Participant, error)
	Create(ctx context.Context, year int, in dto.ParticipantInput) (*models.Participant, error)
	Update(ctx context.Context, id int64, in dto.ParticipantInput) (*models.Participant, error)
	Delete(ctx context.Context, id int64) error
	UploadPhoto(ctx context.Context, id int64, file *multipart.FileHeader) (*models.Participant, error)
	BulkAssign(ctx context.Context, year int, req dto.BulkAssignRequest) (*dto.BulkResult, error)
	CleanupOrphanedPhotos(ctx context.Context, dryRun bool) (*dto.PhotoCleanupReport, error)
}

// ParticipantSettings are the listing knobs taken from config
type ParticipantSettings struct {
	PageSize   int
	WindowDays int
}

type participantServiceImpl struct {
	participants ParticipantStore
	cohorts      CohortStore
	imperios     ImperioStore
	storage      filestorage.FileStorage
	years        YearPolicy
	settings     ParticipantSettings
	now          func() time.Time
}

// NewParticipantService creates a new participant service
func NewParticipantService(
	participants ParticipantStore,
	cohorts CohortStore,
	imperios ImperioStore,
	storage filestorage.FileStorage,
	years YearPolicy,
	settings ParticipantSettings,
) ParticipantService {
	if settings.PageSize <= 0 {
		settings.PageSize = 25
	}
	if settings.WindowDays <= 0 {
		settings.WindowDays = 30
	}
	return &participantServiceImpl{
		participants: participants,
		cohorts:      cohorts,
		imperios:     imperios,
		storage:      storage,
		years:        years,
		settings:     settings,
		now:          time.Now,
	}
}

// ParseParticipantRequest converts a request body into validated input
func ParseParticipantRequest(req dto.ParticipantRequest) (dto.ParticipantInput, error) {
	in := dto.ParticipantInput{
		GivenName:     strings.TrimSpace(req.GivenName),
		FamilyName:    strings.TrimSpace(req.FamilyName),
		Gender:        models.Gender(strings.ToUpper(strings.TrimSpace(req.Gender))),
		Phone:         strings.TrimSpace(req.Phone),
		GuardianName:  strings.TrimSpace(req.GuardianName),
		GuardianPhone: strings.TrimSpace(req.GuardianPhone),
		CohortID:      req.CohortID,
		ImperioID:     req.ImperioID,
	}

	birth, err := time.Parse(models.DateLayout, strings.TrimSpace(req.BirthDate))
	if err != nil {
		return in, apperrors.NewValidationError("birthDate", "birthDate must be YYYY-MM-DD")
	}
	in.BirthDate = birth

	if s := strings.TrimSpace(req.StartDate); s != "" {
		start, err := time.Parse(models.DateLayout, s)
		if err != nil {
			return in, apperrors.NewValidationError("startDate", "startDate must be YYYY-MM-DD")
		}
		in.StartDate = &start
	}
	return in, nil
}

func (s *participantServiceImpl) validate(ctx context.Context, year int, in dto.ParticipantInput) error {
	if err := validation.Name("givenName", in.GivenName); err != nil {
		return err
	}
	if err := validation.Name("familyName", in.FamilyName); err != nil {
		return err
	}
	if !in.Gender.Valid() {
		return apperrors.NewValidationError("gender", "gender must be M or F")
	}
	if err := validation.NotAfter("birthDate", in.BirthDate, s.now()); err != nil {
		return err
	}
	if err := validation.Phone("phone", in.Phone); err != nil {
		return err
	}
	if err := validation.Phone("guardianPhone", in.GuardianPhone); err != nil {
		return err
	}

	return s.checkGroups(ctx, year, in)
}

func applyInput(p *models.Participant, in dto.ParticipantInput) {
	p.GivenName = in.GivenName
	p.FamilyName = in.FamilyName
	p.BirthDate = in.BirthDate
	p.Gender = in.Gender
	p.Phone = in.Phone
	p.GuardianName = in.GuardianName
	p.GuardianPhone = in.GuardianPhone
	p.CohortID = in.CohortID
	p.ImperioID = in.ImperioID
	p.StartDate = in.StartDate
}

// List returns one page of the year's participants
func (s *participantServiceImpl) List(ctx context.Context, year int, q dto.ParticipantQuery) (*dto.ParticipantListResponse, error) {
	res, err := s.participants.List(ctx, year, q, s.now(), s.settings.WindowDays, s.settings.PageSize)
	if err != nil {
		return nil, fmt.Errorf("error listing participants: %w", err)
	}
	return res, nil
}

// Get returns a participant by id
func (s *participantServiceImpl) Get(ctx context.Context, id int64) (*models.Participant, error) {
	if id <= 0 {
		return nil, apperrors.NewValidationError("id", "invalid participant ID")
	}
	return s.participants.GetByID(ctx, id)
}

// Create registers a participant in year
func (s *participantServiceImpl) Create(ctx context.Context, year int, in dto.ParticipantInput) (*models.Participant, error) {
	if err := s.years.EnsureWritable(year); err != nil {
		return nil, err
	}
	if err := s.validate(ctx, year, in); err != nil {
		return nil, err
	}

	p := &models.Participant{Year: year}
	applyInput(p, in)
	if _, err := s.participants.Create(ctx, p); err != nil {
		return nil, err
	}

	logger.Info().Int64("participantID", p.ID).Int("year", year).Msg("Participant created")
	return s.participants.GetByID(ctx, p.ID)
}

// Update overwrites the editable fields of a participant
func (s *participantServiceImpl) Update(ctx context.Context, id int64, in dto.ParticipantInput) (*models.Participant, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.years.EnsureWritable(current.Year); err != nil {
		return nil, err
	}
	if err := s.validate(ctx, current.Year, in); err != nil {
		return nil, err
	}

	applyInput(current, in)
	if err := s.participants.Update(ctx, current); err != nil {
		return nil, err
	}
	return s.participants.GetByID(ctx, id)
}

// Delete removes a participant and its stored photo
func (s *participantServiceImpl) Delete(ctx context.Context, id int64) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.years.EnsureWritable(current.Year); err != nil {
		return err
	}

	if err := s.participants.Delete(ctx, id); err != nil {
		return err
	}

	if current.Photo != "" {
		if err := s.storage.DeleteFile(ctx, current.Photo); err != nil {
			logger.Warn().Err(err).Int64("participantID", id).Str("photo", current.Photo).
				Msg("Failed to delete photo of removed participant")
		}
	}
	return nil
}

// UploadPhoto stores a new photo and deletes the one it replaces
func (s *participantServiceImpl) UploadPhoto(ctx context.Context, id int64, file *multipart.FileHeader) (*models.Participant, error) {
	if file == nil {
		return nil, apperrors.NewValidationError("photo", "photo is required")
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.years.EnsureWritable(current.Year); err != nil {
		return nil, err
	}

	ref, err := s.storage.SaveFile(ctx, file, photoSubPath)
	if err != nil {
		return nil, fmt.Errorf("error storing photo: %w", err)
	}

	if err := s.participants.SetPhoto(ctx, id, ref); err != nil {
		_ = s.storage.DeleteFile(ctx, ref)
		return nil, err
	}

	if current.Photo != "" && current.Photo != ref {
		if err := s.storage.DeleteFile(ctx, current.Photo); err != nil {
			logger.Warn().Err(err).Int64("participantID", id).Msg("Failed to delete replaced photo")
		}
	}

	current.Photo = ref
	return current, nil
}

// BulkAssign sets the cohort and/or império of several participants
func (s *participantServiceImpl) BulkAssign(ctx context.Context, year int, req dto.BulkAssignRequest) (*dto.BulkResult, error) {
	if err := s.years.EnsureWritable(year); err != nil {
		return nil, err
	}
	if len(req.ParticipantIDs) == 0 {
		return nil, apperrors.NewValidationError("participantIds", "select at least one participant")
	}
	if req.CohortID == nil && req.ImperioID == nil {
		return nil, apperrors.NewValidationError("cohortId", "choose a cohort or an império")
	}

	in := dto.ParticipantInput{CohortID: req.CohortID, ImperioID: req.ImperioID}
	if err := s.checkGroups(ctx, year, in); err != nil {
		return nil, err
	}

	n, err := s.participants.BulkAssign(ctx, year, req.ParticipantIDs, req.CohortID, req.ImperioID)
	if err != nil {
		return nil, err
	}
	return &dto.BulkResult{Updated: n}, nil
}

func (s *participantServiceImpl) checkGroups(ctx context.Context, year int, in dto.ParticipantInput) error {
	if in.CohortID != nil {
		c, err := s.cohorts.GetByID(ctx, *in.CohortID)
		if err != nil {
			return err
		}
		if c.Year != year {
			return apperrors.NewValidationError("cohortId", "cohort belongs to another year")
		}
	}
	if in.ImperioID != nil {
		i, err := s.imperios.GetByID(ctx, *in.ImperioID)
		if err != nil {
			return err
		}
		if i.Year != year {
			return apperrors.NewValidationError("imperioId", "império belongs to another year")
		}
	}
	return nil
}

// CleanupOrphanedPhotos clears photo references whose file is gone. It
// spans every year, so closed years are swept too.
func (s *participantServiceImpl) CleanupOrphanedPhotos(ctx context.Context, dryRun bool) (*dto.PhotoCleanupReport, error) {
	withPhotos, err := s.participants.ListWithPhotos(ctx)
	if err != nil {
		return nil, err
	}

	report := &dto.PhotoCleanupReport{Checked: len(withPhotos), DryRun: dryRun}
	for _, p := range withPhotos {
		ok, err := s.storage.Exists(ctx, p.Photo)
		if err != nil && !errors.Is(err, filestorage.ErrInvalidReference) {
			return nil, fmt.Errorf("error checking photo of participant %d: %w", p.ID, err)
		}
		if ok {
			continue
		}

		report.Orphaned++
		report.IDs = append(report.IDs, p.ID)
		if dryRun {
			continue
		}
		if err := s.participants.SetPhoto(ctx, p.ID, ""); err != nil {
			return nil, err
		}
		report.Cleared++
	}

	logger.Info().
		Int("checked", report.Checked).
		Int("orphaned", report.Orphaned).
		Int("cleared", report.Cleared).
		Bool("dryRun", dryRun).
		Msg("Photo cleanup finished")
	return report, nil
}
