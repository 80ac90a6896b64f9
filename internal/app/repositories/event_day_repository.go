package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jumpyouth/checkin/internal/app/models"
	"github.com/jumpyouth/checkin/internal/pkg/apperrors"
	"github.com/jumpyouth/checkin/internal/pkg/dberrors"
	"github.com/jumpyouth/checkin/internal/pkg/logger"
)

// ErrEventDateTaken is returned when an event day already exists for the date
var ErrEventDateTaken = apperrors.NewCustomError(apperrors.ErrConflict, "an event day already exists for this date")

// EventDayRepository handles event day database operations
type EventDayRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewEventDayRepository creates a new EventDayRepository
func NewEventDayRepository(db *pgxpool.Pool) *EventDayRepository {
	return &EventDayRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *EventDayRepository) selectDays() squirrel.SelectBuilder {
	return r.sb.Select("d.id", "d.event_date", "d.title", "d.year", "d.created_at").From("event_days d")
}

func scanEventDay(row interface{ Scan(...any) error }, d *models.EventDay) error {
	return row.Scan(&d.ID, &d.Date, &d.Title, &d.Year, &d.CreatedAt)
}

// Create inserts an event day. Dates are unique across all years.
func (r *EventDayRepository) Create(ctx context.Context, d *models.EventDay) (int64, error) {
	sql, args, err := r.sb.Insert("event_days").
		Columns("event_date", "title", "year").
		Values(d.Date, d.Title, d.Year).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create event day SQL")
		return 0, fmt.Errorf("failed to build create event day query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&d.ID, &d.CreatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "event_days_event_date_key") {
			return 0, ErrEventDateTaken
		}
		logger.Error().Err(err).Time("date", d.Date).Msg("Error creating event day")
		return 0, fmt.Errorf("error creating event day: %w", err)
	}
	return d.ID, nil
}

// GetByID returns an event day
func (r *EventDayRepository) GetByID(ctx context.Context, id int64) (*models.EventDay, error) {
	return r.getOne(ctx, squirrel.Eq{"d.id": id})
}

// GetByDate returns the event day on date
func (r *EventDayRepository) GetByDate(ctx context.Context, date time.Time) (*models.EventDay, error) {
	return r.getOne(ctx, squirrel.Eq{"d.event_date": date})
}

func (r *EventDayRepository) getOne(ctx context.Context, cond squirrel.Sqlizer) (*models.EventDay, error) {
	sql, args, err := r.selectDays().Where(cond).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get event day query: %w", err)
	}

	d := &models.EventDay{}
	if err := scanEventDay(r.db.QueryRow(ctx, sql, args...), d); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventDayNotFound
		}
		logger.Error().Err(err).Msg("Error scanning event day row")
		return nil, fmt.Errorf("error getting event day: %w", err)
	}
	return d, nil
}

// ListByYear returns the year's event days in chronological order
func (r *EventDayRepository) ListByYear(ctx context.Context, year int) ([]models.EventDay, error) {
	sql, args, err := r.selectDays().
		Where(squirrel.Eq{"d.year": year}).
		OrderBy("d.event_date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list event days query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int("year", year).Msg("Error listing event days")
		return nil, fmt.Errorf("error listing event days: %w", err)
	}
	defer rows.Close()

	days := []models.EventDay{}
	for rows.Next() {
		var d models.EventDay
		if err := scanEventDay(rows, &d); err != nil {
			return nil, fmt.Errorf("error scanning event day row: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// ListSummaries returns the year's event days, newest first, with the number
// of present and total attendance records of each.
func (r *EventDayRepository) ListSummaries(ctx context.Context, year int) ([]models.EventDaySummary, error) {
	sql, args, err := r.sb.Select("d.id", "d.event_date", "d.title", "d.year", "d.created_at",
		"COUNT(ar.id) FILTER (WHERE ar.present)", "COUNT(ar.id)").
		From("event_days d").
		LeftJoin("attendance_records ar ON ar.event_day_id = d.id").
		Where(squirrel.Eq{"d.year": year}).
		GroupBy("d.id").
		OrderBy("d.event_date DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build event day summary query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int("year", year).Msg("Error listing event day summaries")
		return nil, fmt.Errorf("error listing event day summaries: %w", err)
	}
	defer rows.Close()

	items := []models.EventDaySummary{}
	for rows.Next() {
		var s models.EventDaySummary
		if err := rows.Scan(&s.ID, &s.Date, &s.Title, &s.Year, &s.CreatedAt, &s.Present, &s.Total); err != nil {
			return nil, fmt.Errorf("error scanning event day summary: %w", err)
		}
		items = append(items, s)
	}
	return items, rows.Err()
}
