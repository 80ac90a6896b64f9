package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/jumpyouth/checkin/internal/app/models"
	"github.com/jumpyouth/checkin/internal/app/models/dto"
	"github.com/jumpyouth/checkin/internal/app/models/dto/enums"
	"github.com/jumpyouth/checkin/internal/pkg/apperrors"
	"github.com/jumpyouth/checkin/internal/pkg/helpers"
	"github.com/jumpyouth/checkin/internal/pkg/logger"
)

// RosterPageSize is the default number of participants per roster page
const RosterPageSize = 20

// CheckinService records per-day attendance
type CheckinService interface {
	Roster(ctx context.Context, year int, dayID int64, q dto.RosterQuery) (*dto.RosterResponse, error)
	SubmitCheckin(ctx context.Context, year int, dayID int64, req dto.SubmitCheckinRequest) (*dto.CheckinResult, error)
	UpdateAttendance(ctx context.Context, year int, req dto.AttendanceUpdateRequest) (*dto.AttendanceUpdateResponse, error)
	VIP(ctx context.Context, year int, dayID int64) (*dto.VIPReport, error)
	NotifyVIP(ctx context.Context, year int, dayID int64) (*dto.VIPReport, error)
}

// CheckinSettings are the check-in knobs taken from config
type CheckinSettings struct {
	PageSize     int
	VIPThreshold int
}

type checkinServiceImpl struct {
	participants ParticipantStore
	days         EventDayStore
	attendance   AttendanceStore
	headcounts   HeadcountStore
	feed         LiveFeed
	notifier     Notifier
	years        YearPolicy
	settings     CheckinSettings
}

// NewCheckinService creates a new check-in service. A nil feed disables
// live events and a nil notifier disables VIP notifications.
func NewCheckinService(
	participants ParticipantStore,
	days EventDayStore,
	attendance AttendanceStore,
	headcounts HeadcountStore,
	feed LiveFeed,
	notifier Notifier,
	years YearPolicy,
	settings CheckinSettings,
) CheckinService {
	if feed == nil {
		feed = noopFeed{}
	}
	if settings.PageSize <= 0 {
		settings.PageSize = RosterPageSize
	}
	if settings.VIPThreshold <= 0 {
		settings.VIPThreshold = DefaultVIPThreshold
	}
	return &checkinServiceImpl{
		participants: participants,
		days:         days,
		attendance:   attendance,
		headcounts:   headcounts,
		feed:         feed,
		notifier:     notifier,
		years:        years,
		settings:     settings,
	}
}

// filterRoster applies the status and name filters and orders the result
// present first, then by given and family name.
func filterRoster(participants []models.Participant, present map[int64]bool, status enums.RosterStatus, search string) []models.RosterEntry {
	nq := models.ParseNameQuery(search)

	entries := []models.RosterEntry{}
	for _, p := range participants {
		isPresent := present[p.ID]
		switch status {
		case enums.RosterPresent:
			if !isPresent {
				continue
			}
		case enums.RosterAbsent:
			if isPresent {
				continue
			}
		}
		if !nq.Empty() && !nq.Match(p.GivenName, p.FamilyName) {
			continue
		}
		entries = append(entries, models.RosterEntry{Participant: p, Present: isPresent})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Present != b.Present {
			return a.Present
		}
		if a.GivenName != b.GivenName {
			return a.GivenName < b.GivenName
		}
		if a.FamilyName != b.FamilyName {
			return a.FamilyName < b.FamilyName
		}
		return a.ID < b.ID
	})
	return entries
}

func (s *checkinServiceImpl) filteredRoster(ctx context.Context, year int, dayID int64, status enums.RosterStatus, search string) ([]models.RosterEntry, map[int64]bool, error) {
	participants, err := s.participants.ListByYear(ctx, year)
	if err != nil {
		return nil, nil, err
	}
	present, err := s.attendance.PresentIDs(ctx, dayID)
	if err != nil {
		return nil, nil, err
	}
	return filterRoster(participants, present, status, search), present, nil
}

// Roster lists one page of the year's participants for a day
func (s *checkinServiceImpl) Roster(ctx context.Context, year int, dayID int64, q dto.RosterQuery) (*dto.RosterResponse, error) {
	day, err := s.days.GetByID(ctx, dayID)
	if err != nil {
		return nil, err
	}

	entries, present, err := s.filteredRoster(ctx, year, dayID, q.Status, q.Search)
	if err != nil {
		return nil, err
	}

	total := int64(len(entries))
	page := helpers.ClampPage(q.Page, total, s.settings.PageSize)
	start, end := helpers.CalculateSliceIndices(page, s.settings.PageSize, len(entries))

	res := &dto.RosterResponse{
		Day:          *day,
		Items:        entries[start:end],
		Pagination:   helpers.NewPaginationInfo(total, page, s.settings.PageSize),
		PresentCount: len(present),
		ListedCount:  len(entries),
	}

	if res.Auditorium, err = s.headcounts.GetForDay(ctx, models.HeadcountAuditorium, dayID); err != nil {
		return nil, err
	}
	if res.Visitors, err = s.headcounts.GetForDay(ctx, models.HeadcountVisitors, dayID); err != nil {
		return nil, err
	}
	return res, nil
}

// SubmitCheckin replaces the day's attendance with one record per
// participant of the filtered roster. Participants outside the filter lose
// their record for the day.
func (s *checkinServiceImpl) SubmitCheckin(ctx context.Context, year int, dayID int64, req dto.SubmitCheckinRequest) (*dto.CheckinResult, error) {
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

	entries, _, err := s.filteredRoster(ctx, year, dayID, enums.ParseRosterStatus(req.Status), req.Search)
	if err != nil {
		return nil, err
	}

	marked := make(map[int64]bool, len(req.PresentIDs))
	for _, id := range req.PresentIDs {
		marked[id] = true
	}

	presence := make(map[int64]bool, len(entries))
	presentCount := 0
	for _, e := range entries {
		presence[e.ID] = marked[e.ID]
		if marked[e.ID] {
			presentCount++
		}
	}

	deleted, err := s.attendance.ReplaceDay(ctx, dayID, presence)
	if err != nil {
		return nil, fmt.Errorf("error submitting check-in: %w", err)
	}

	logger.Info().
		Int64("eventDayID", dayID).
		Int64("deleted", deleted).
		Int("created", len(presence)).
		Int("present", presentCount).
		Msg("Check-in submitted")

	s.feed.CheckinSubmitted(dayID, presentCount, len(presence))
	return &dto.CheckinResult{
		DayID:   dayID,
		Deleted: deleted,
		Created: len(presence),
		Present: presentCount,
	}, nil
}

// UpdateAttendance upserts a single attendance record
func (s *checkinServiceImpl) UpdateAttendance(ctx context.Context, year int, req dto.AttendanceUpdateRequest) (*dto.AttendanceUpdateResponse, error) {
	if req.ParticipantID == nil || *req.ParticipantID <= 0 {
		return nil, apperrors.NewValidationError("participantId", "participantId is required")
	}
	if req.EventDayID == nil || *req.EventDayID <= 0 {
		return nil, apperrors.NewValidationError("eventDayId", "eventDayId is required")
	}
	if req.Present == nil {
		return nil, apperrors.NewValidationError("present", "present is required")
	}
	if err := s.years.EnsureWritable(year); err != nil {
		return nil, err
	}
	day, err := s.days.GetByID(ctx, *req.EventDayID)
	if err != nil {
		return nil, err
	}
	if err := s.years.EnsureDayWritable(year, day); err != nil {
		return nil, err
	}
	participant, err := s.participants.GetByID(ctx, *req.ParticipantID)
	if err != nil {
		return nil, err
	}
	if participant.Year != day.Year {
		return nil, apperrors.NewValidationError("participantId",
			"participant and event day belong to different enrollment years")
	}

	created, err := s.attendance.Upsert(ctx, *req.ParticipantID, *req.EventDayID, *req.Present)
	if err != nil {
		return nil, err
	}

	s.feed.AttendanceUpdated(*req.EventDayID, *req.ParticipantID, *req.Present, created)
	return &dto.AttendanceUpdateResponse{
		ParticipantID: *req.ParticipantID,
		EventDayID:    *req.EventDayID,
		Present:       *req.Present,
		Created:       created,
	}, nil
}

// VIP classifies the day's present participants without a cohort
func (s *checkinServiceImpl) VIP(ctx context.Context, year int, dayID int64) (*dto.VIPReport, error) {
	day, err := s.days.GetByID(ctx, dayID)
	if err != nil {
		return nil, err
	}
	tallies, err := s.attendance.PresenceTallies(ctx, year, dayID)
	if err != nil {
		return nil, err
	}

	candidates, needs := ClassifyVIP(tallies, s.settings.VIPThreshold)
	return &dto.VIPReport{
		Day:            *day,
		Threshold:      s.settings.VIPThreshold,
		Candidates:     candidates,
		NeedsPlacement: needs,
	}, nil
}

// NotifyVIP sends the day's VIP report to the leaders' chat
func (s *checkinServiceImpl) NotifyVIP(ctx context.Context, year int, dayID int64) (*dto.VIPReport, error) {
	if s.notifier == nil {
		return nil, apperrors.NewValidationError("telegram", "notifications are not enabled")
	}

	report, err := s.VIP(ctx, year, dayID)
	if err != nil {
		return nil, err
	}
	if err := s.notifier.Send(ctx, FormatVIPMessage(report)); err != nil {
		logger.Error().Err(err).Int64("eventDayID", dayID).Msg("Error sending VIP notification")
		return nil, fmt.Errorf("error sending VIP notification: %w", err)
	}
	return report, nil
}
