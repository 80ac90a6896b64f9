package services

import (
	"context"
	"sort"

	"github.com/jumpyouth/checkin/internal/app/models"
	"github.com/jumpyouth/checkin/internal/app/models/dto"
	"github.com/jumpyouth/checkin/internal/app/repositories"
	"github.com/jumpyouth/checkin/internal/pkg/helpers"
)

const (
	topCohortCount = 5
	timelineLength = 10
)

// ReportService builds the statistics dashboard
type ReportService interface {
	Dashboard(ctx context.Context, year int, filter dto.DashboardFilter) (*dto.Dashboard, error)
}

type reportServiceImpl struct {
	reports    ReportStore
	days       EventDayStore
	headcounts HeadcountStore
}

// NewReportService creates a new report service
func NewReportService(reports ReportStore, days EventDayStore, headcounts HeadcountStore) ReportService {
	return &reportServiceImpl{reports: reports, days: days, headcounts: headcounts}
}

// qualifies reports whether a day passes the filter. A single day wins over
// a range and both range ends are inclusive.
func qualifies(day models.EventDay, f dto.DashboardFilter) bool {
	d := helpers.DateOnly(day.Date)
	if f.Day != nil {
		return d.Equal(helpers.DateOnly(*f.Day))
	}
	if f.From != nil && d.Before(helpers.DateOnly(*f.From)) {
		return false
	}
	if f.To != nil && d.After(helpers.DateOnly(*f.To)) {
		return false
	}
	return true
}

// Dashboard aggregates the year's attendance over the qualifying events
func (s *reportServiceImpl) Dashboard(ctx context.Context, year int, filter dto.DashboardFilter) (*dto.Dashboard, error) {
	totals, err := s.reports.Totals(ctx, year)
	if err != nil {
		return nil, err
	}

	summaries, err := s.days.ListSummaries(ctx, year)
	if err != nil {
		return nil, err
	}

	// summaries are newest first; events is chronological
	var events []models.EventDaySummary
	for i := len(summaries) - 1; i >= 0; i-- {
		if qualifies(summaries[i].EventDay, filter) {
			events = append(events, summaries[i])
		}
	}
	dayIDs := make([]int64, len(events))
	present := 0
	for i, e := range events {
		dayIDs[i] = e.ID
		present += e.Present
	}

	dash := &dto.Dashboard{
		Year:             year,
		Totals:           totals,
		QualifyingEvents: len(events),
	}
	if len(events) > 0 {
		dash.AverageAttendance = helpers.Round1(float64(present) / float64(len(events)))
	}

	genders, err := s.reports.GenderCounts(ctx, year)
	if err != nil {
		return nil, err
	}
	dash.Gender = genderBuckets(genders)

	cohorts, err := s.reports.GroupPresence(ctx, repositories.GroupCohort, year, dayIDs)
	if err != nil {
		return nil, err
	}
	dash.TopCohorts = rankGroups(cohorts, len(events), topCohortCount)

	imperios, err := s.reports.GroupPresence(ctx, repositories.GroupImperio, year, dayIDs)
	if err != nil {
		return nil, err
	}
	dash.Imperios = rankGroups(imperios, len(events), 0)

	dash.Timeline = timeline(events, totals.Participants)
	if n := len(dash.Timeline); n > 0 {
		last := dash.Timeline[n-1]
		dash.LastEvent = &last
	}

	if dash.Auditorium, err = s.headcountStats(ctx, models.HeadcountAuditorium, year, dayIDs); err != nil {
		return nil, err
	}
	if dash.Visitors, err = s.headcountStats(ctx, models.HeadcountVisitors, year, dayIDs); err != nil {
		return nil, err
	}
	return dash, nil
}

func genderBuckets(counts map[models.Gender]int) []dto.GenderBucket {
	buckets := []dto.GenderBucket{}
	for _, g := range []models.Gender{models.GenderMale, models.GenderFemale} {
		buckets = append(buckets, dto.GenderBucket{Gender: g, Label: g.Label(), Count: counts[g]})
	}
	return buckets
}

// rankGroups averages each group's presence over events and orders by that
// average desc, then name. A top of 0 keeps every group.
func rankGroups(groups []dto.GroupRanking, events, top int) []dto.GroupRanking {
	ranked := make([]dto.GroupRanking, len(groups))
	copy(ranked, groups)
	for i := range ranked {
		ranked[i].AveragePresent = 0
		if events > 0 {
			ranked[i].AveragePresent = helpers.Round1(float64(ranked[i].TotalPresent) / float64(events))
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].TotalPresent != ranked[j].TotalPresent {
			return ranked[i].TotalPresent > ranked[j].TotalPresent
		}
		return ranked[i].Name < ranked[j].Name
	})

	if top > 0 && len(ranked) > top {
		ranked = ranked[:top]
	}
	return ranked
}

// timeline returns the last timelineLength events in chronological order
func timeline(events []models.EventDaySummary, participants int) []dto.TimelinePoint {
	start := max(0, len(events)-timelineLength)

	points := []dto.TimelinePoint{}
	for _, e := range events[start:] {
		points = append(points, dto.TimelinePoint{
			EventDayID: e.ID,
			Date:       e.Date,
			Label:      e.Date.Format("02/01"),
			Title:      e.Title,
			Present:    e.Present,
			Total:      e.Total,
			Percent:    helpers.Percent(e.Present, participants),
		})
	}
	return points
}

func (s *reportServiceImpl) headcountStats(ctx context.Context, kind models.HeadcountKind, year int, dayIDs []int64) (dto.HeadcountStats, error) {
	var stats dto.HeadcountStats

	all, err := s.headcounts.ListByYear(ctx, kind, year)
	if err != nil {
		return stats, err
	}

	wanted := make(map[int64]bool, len(dayIDs))
	for _, id := range dayIDs {
		wanted[id] = true
	}

	sum, n := 0, 0
	for i := range all {
		if !wanted[all[i].EventDayID] {
			continue
		}
		// ListByYear is newest day first
		if stats.Latest == nil {
			h := all[i]
			stats.Latest = &h
		}
		sum += all[i].Quantity
		n++
	}
	if n > 0 {
		stats.Average = helpers.Round1(float64(sum) / float64(n))
	}
	return stats, nil
}
