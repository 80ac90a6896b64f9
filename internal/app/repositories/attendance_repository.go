package repositories

import (
	"context"
	"fmt"
	"slices"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jumpyouth/checkin/internal/app/models"
	"github.com/jumpyouth/checkin/internal/db"
	"github.com/jumpyouth/checkin/internal/pkg/apperrors"
	"github.com/jumpyouth/checkin/internal/pkg/dberrors"
	"github.com/jumpyouth/checkin/internal/pkg/logger"
)

// insertBatchSize bounds the number of rows per multi-row INSERT.
const insertBatchSize = 500

// AttendanceRepository handles attendance record database operations
type AttendanceRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAttendanceRepository creates a new AttendanceRepository
func NewAttendanceRepository(db *pgxpool.Pool) *AttendanceRepository {
	return &AttendanceRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ReplaceDay deletes every record of the day and inserts presence for each
// listed participant, atomically. It returns the number of deleted records.
func (r *AttendanceRepository) ReplaceDay(ctx context.Context, dayID int64, presence map[int64]bool) (int64, error) {
	var deleted int64
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Delete("attendance_records").Where(squirrel.Eq{"event_day_id": dayID}).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build delete attendance query: %w", err)
		}
		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return fmt.Errorf("error deleting day attendance: %w", err)
		}
		deleted = tag.RowsAffected()

		ids := sortedIDs(presence)
		for start := 0; start < len(ids); start += insertBatchSize {
			end := min(start+insertBatchSize, len(ids))
			b := r.sb.Insert("attendance_records").Columns("participant_id", "event_day_id", "present")
			for _, id := range ids[start:end] {
				b = b.Values(id, dayID, presence[id])
			}
			sql, args, err := b.ToSql()
			if err != nil {
				return fmt.Errorf("failed to build insert attendance query: %w", err)
			}
			if _, err := tx.Exec(ctx, sql, args...); err != nil {
				return fmt.Errorf("error inserting attendance: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Int64("eventDayID", dayID).Int("records", len(presence)).Msg("Error replacing day attendance")
		return 0, err
	}
	return deleted, nil
}

// Upsert sets the presence of one participant on one day and reports
// whether a new record was created.
func (r *AttendanceRepository) Upsert(ctx context.Context, participantID, dayID int64, present bool) (bool, error) {
	sql, args, err := r.sb.Insert("attendance_records").
		Columns("participant_id", "event_day_id", "present").
		Values(participantID, dayID, present).
		Suffix("ON CONFLICT ON CONSTRAINT attendance_participant_day_key DO UPDATE SET present = EXCLUDED.present RETURNING (xmax = 0)").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build upsert attendance query: %w", err)
	}

	var created bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&created); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return false, apperrors.NewResourceNotFoundError("participant or event day not found")
		}
		logger.Error().Err(err).Int64("participantID", participantID).Int64("eventDayID", dayID).Msg("Error upserting attendance")
		return false, fmt.Errorf("error upserting attendance: %w", err)
	}
	return created, nil
}

func sortedIDs(set map[int64]bool) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// PresentIDs returns the set of participants marked present on the day
func (r *AttendanceRepository) PresentIDs(ctx context.Context, dayID int64) (map[int64]bool, error) {
	sql, args, err := r.sb.Select("participant_id").
		From("attendance_records").
		Where(squirrel.Eq{"event_day_id": dayID, "present": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build present ids query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("eventDayID", dayID).Msg("Error loading present participants")
		return nil, fmt.Errorf("error loading present participants: %w", err)
	}
	defer rows.Close()

	ids := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning participant id: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// PresenceTallies returns the participants of year present on the day with
// no cohort, each with their all-time count of present records.
func (r *AttendanceRepository) PresenceTallies(ctx context.Context, year int, dayID int64) ([]models.PresenceTally, error) {
	cols := append(append([]string{}, participantColumns...),
		"(SELECT COUNT(*) FROM attendance_records t WHERE t.participant_id = p.id AND t.present)")
	sql, args, err := r.sb.Select(cols...).
		From("participants p").
		LeftJoin("cohorts c ON c.id = p.cohort_id").
		LeftJoin("imperios i ON i.id = p.imperio_id").
		Join("attendance_records ar ON ar.participant_id = p.id").
		Where(squirrel.Eq{"ar.event_day_id": dayID, "ar.present": true, "p.year": year, "p.cohort_id": nil}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build presence tally query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("eventDayID", dayID).Msg("Error loading presence tallies")
		return nil, fmt.Errorf("error loading presence tallies: %w", err)
	}
	defer rows.Close()

	tallies := []models.PresenceTally{}
	for rows.Next() {
		var t models.PresenceTally
		if err := scanParticipant(rows, &t.Participant, &t.PresentCount); err != nil {
			return nil, fmt.Errorf("error scanning presence tally: %w", err)
		}
		tallies = append(tallies, t)
	}
	return tallies, rows.Err()
}

// ListForDay returns every record of the day joined with its participant,
// ordered by given name.
func (r *AttendanceRepository) ListForDay(ctx context.Context, dayID int64) ([]models.RosterEntry, error) {
	cols := append(append([]string{}, participantColumns...), "ar.present")
	sql, args, err := r.sb.Select(cols...).
		From("attendance_records ar").
		Join("participants p ON p.id = ar.participant_id").
		LeftJoin("cohorts c ON c.id = p.cohort_id").
		LeftJoin("imperios i ON i.id = p.imperio_id").
		Where(squirrel.Eq{"ar.event_day_id": dayID}).
		OrderBy("p.given_name ASC", "p.family_name ASC", "p.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build day attendance query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("eventDayID", dayID).Msg("Error listing day attendance")
		return nil, fmt.Errorf("error listing day attendance: %w", err)
	}
	defer rows.Close()

	entries := []models.RosterEntry{}
	for rows.Next() {
		var e models.RosterEntry
		if err := scanParticipant(rows, &e.Participant, &e.Present); err != nil {
			return nil, fmt.Errorf("error scanning attendance row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
