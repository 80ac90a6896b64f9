package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jumpyouth/checkin/internal/app/models"
	"github.com/jumpyouth/checkin/internal/app/models/dto"
	"github.com/jumpyouth/checkin/internal/pkg/logger"
)

// GroupKind selects cohorts or impérios in group aggregates
type GroupKind string

const (
	GroupCohort  GroupKind = "cohort"
	GroupImperio GroupKind = "imperio"
)

// ReportRepository runs the dashboard aggregate queries
type ReportRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewReportRepository creates a new ReportRepository
func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Totals counts the year's participants, cohorts, impérios and event days
func (r *ReportRepository) Totals(ctx context.Context, year int) (dto.DashboardTotals, error) {
	var t dto.DashboardTotals
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM participants WHERE year = $1),
			(SELECT COUNT(*) FROM cohorts WHERE year = $1),
			(SELECT COUNT(*) FROM imperios WHERE year = $1),
			(SELECT COUNT(*) FROM event_days WHERE year = $1)`, year).
		Scan(&t.Participants, &t.Cohorts, &t.Imperios, &t.EventDays)
	if err != nil {
		logger.Error().Err(err).Int("year", year).Msg("Error counting dashboard totals")
		return t, fmt.Errorf("error counting dashboard totals: %w", err)
	}
	return t, nil
}

// GenderCounts returns the number of the year's participants per gender
func (r *ReportRepository) GenderCounts(ctx context.Context, year int) (map[models.Gender]int, error) {
	sql, args, err := r.sb.Select("gender", "COUNT(*)").
		From("participants").
		Where(squirrel.Eq{"year": year}).
		GroupBy("gender").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build gender count query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int("year", year).Msg("Error counting genders")
		return nil, fmt.Errorf("error counting genders: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Gender]int)
	for rows.Next() {
		var g string
		var n int
		if err := rows.Scan(&g, &n); err != nil {
			return nil, fmt.Errorf("error scanning gender count: %w", err)
		}
		counts[models.Gender(g)] = n
	}
	return counts, rows.Err()
}

// groupPresenceQuery sums the present records of each group's members over
// dayIDs. Groups with no presence are listed with zero.
func (r *ReportRepository) groupPresenceQuery(kind GroupKind, year int, dayIDs []int64) (squirrel.SelectBuilder, error) {
	var table, column string
	switch kind {
	case GroupCohort:
		table, column = "cohorts", "cohort_id"
	case GroupImperio:
		table, column = "imperios", "imperio_id"
	default:
		return squirrel.SelectBuilder{}, fmt.Errorf("unknown group kind %q", kind)
	}

	if dayIDs == nil {
		dayIDs = []int64{}
	}
	return r.sb.Select("g.id", "g.name", "COUNT(ar.id)").
		From(table+" g").
		LeftJoin("participants p ON p."+column+" = g.id").
		LeftJoin("attendance_records ar ON ar.participant_id = p.id AND ar.present AND ar.event_day_id = ANY(?)", dayIDs).
		Where(squirrel.Eq{"g.year": year}).
		GroupBy("g.id", "g.name"), nil
}

// GroupPresence returns each group of kind in year with its members' total
// present records over dayIDs.
func (r *ReportRepository) GroupPresence(ctx context.Context, kind GroupKind, year int, dayIDs []int64) ([]dto.GroupRanking, error) {
	b, err := r.groupPresenceQuery(kind, year, dayIDs)
	if err != nil {
		return nil, err
	}
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build group presence query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("kind", string(kind)).Int("year", year).Msg("Error aggregating group presence")
		return nil, fmt.Errorf("error aggregating group presence: %w", err)
	}
	defer rows.Close()

	items := []dto.GroupRanking{}
	for rows.Next() {
		var g dto.GroupRanking
		if err := rows.Scan(&g.ID, &g.Name, &g.TotalPresent); err != nil {
			return nil, fmt.Errorf("error scanning group presence: %w", err)
		}
		items = append(items, g)
	}
	return items, rows.Err()
}
