package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jumpyouth/checkin/internal/app/models"
	"github.com/jumpyouth/checkin/internal/pkg/apperrors"
	"github.com/jumpyouth/checkin/internal/pkg/dberrors"
	"github.com/jumpyouth/checkin/internal/pkg/logger"
)

// HeadcountRepository handles auditorium and visitor counts. Both kinds
// share one shape and live in separate tables.
type HeadcountRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewHeadcountRepository creates a new HeadcountRepository
func NewHeadcountRepository(db *pgxpool.Pool) *HeadcountRepository {
	return &HeadcountRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func headcountTable(kind models.HeadcountKind) (string, error) {
	switch kind {
	case models.HeadcountAuditorium:
		return "auditorium_counts", nil
	case models.HeadcountVisitors:
		return "visitor_counts", nil
	default:
		return "", fmt.Errorf("unknown headcount kind %q", kind)
	}
}

func (r *HeadcountRepository) selectHeadcounts(table string) squirrel.SelectBuilder {
	return r.sb.Select("h.id", "h.event_day_id", "d.event_date", "h.quantity",
		"h.recorded_by", "COALESCE(NULLIF(u.full_name, ''), u.username, '')", "h.recorded_at").
		From(table + " h").
		Join("event_days d ON d.id = h.event_day_id").
		LeftJoin("users u ON u.id = h.recorded_by")
}

func scanHeadcount(row interface{ Scan(...any) error }, kind models.HeadcountKind, h *models.Headcount) error {
	h.Kind = kind
	return row.Scan(&h.ID, &h.EventDayID, &h.EventDate, &h.Quantity, &h.RecordedBy, &h.RecordedByName, &h.RecordedAt)
}

// Upsert records the day's count of kind, replacing any previous entry and
// re-stamping the recorder. It reports whether a new row was created.
func (r *HeadcountRepository) Upsert(ctx context.Context, kind models.HeadcountKind, dayID int64, quantity int, recordedBy *int64) (bool, error) {
	table, err := headcountTable(kind)
	if err != nil {
		return false, err
	}

	sql, args, err := r.sb.Insert(table).
		Columns("event_day_id", "quantity", "recorded_by").
		Values(dayID, quantity, recordedBy).
		Suffix("ON CONFLICT (event_day_id) DO UPDATE SET quantity = EXCLUDED.quantity, recorded_by = EXCLUDED.recorded_by, recorded_at = NOW() RETURNING (xmax = 0)").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build upsert headcount query: %w", err)
	}

	var created bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&created); err != nil {
		switch {
		case dberrors.IsForeignKeyViolation(err):
			return false, apperrors.ErrEventDayNotFound
		case dberrors.IsCheckViolation(err):
			return false, apperrors.NewValidationError("quantity", "quantity is out of range")
		}
		logger.Error().Err(err).Str("kind", string(kind)).Int64("eventDayID", dayID).Msg("Error upserting headcount")
		return false, fmt.Errorf("error upserting headcount: %w", err)
	}
	return created, nil
}

// GetForDay returns the day's count of kind, or nil when none was recorded
func (r *HeadcountRepository) GetForDay(ctx context.Context, kind models.HeadcountKind, dayID int64) (*models.Headcount, error) {
	table, err := headcountTable(kind)
	if err != nil {
		return nil, err
	}

	sql, args, err := r.selectHeadcounts(table).Where(squirrel.Eq{"h.event_day_id": dayID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get headcount query: %w", err)
	}

	h := &models.Headcount{}
	if err := scanHeadcount(r.db.QueryRow(ctx, sql, args...), kind, h); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		logger.Error().Err(err).Str("kind", string(kind)).Int64("eventDayID", dayID).Msg("Error getting headcount")
		return nil, fmt.Errorf("error getting headcount: %w", err)
	}
	return h, nil
}

// ListByYear returns the year's counts of kind, newest day first
func (r *HeadcountRepository) ListByYear(ctx context.Context, kind models.HeadcountKind, year int) ([]models.Headcount, error) {
	table, err := headcountTable(kind)
	if err != nil {
		return nil, err
	}

	sql, args, err := r.selectHeadcounts(table).
		Where(squirrel.Eq{"d.year": year}).
		OrderBy("d.event_date DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list headcounts query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("kind", string(kind)).Int("year", year).Msg("Error listing headcounts")
		return nil, fmt.Errorf("error listing headcounts: %w", err)
	}
	defer rows.Close()

	items := []models.Headcount{}
	for rows.Next() {
		var h models.Headcount
		if err := scanHeadcount(rows, kind, &h); err != nil {
			return nil, fmt.Errorf("error scanning headcount row: %w", err)
		}
		items = append(items, h)
	}
	return items, rows.Err()
}
