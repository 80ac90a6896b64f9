package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jumpyouth/checkin/internal/app/models"
	"github.com/jumpyouth/checkin/internal/db"
	"github.com/jumpyouth/checkin/internal/pkg/apperrors"
	"github.com/jumpyouth/checkin/internal/pkg/dberrors"
	"github.com/jumpyouth/checkin/internal/pkg/logger"
)

// sameNameScore is the fixed score of a same-name, different-birth-date pair.
const sameNameScore = 0.70

// errDryRun rolls back a merge transaction after planning.
var errDryRun = errors.New("merge dry run")

// MergePlanner turns the locked merge state into a plan, or rejects it.
type MergePlanner func(state models.MergeState) (models.MergePlan, error)

// DuplicateRepository handles duplicate detection, rejected pairs and merges
type DuplicateRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewDuplicateRepository creates a new DuplicateRepository
func NewDuplicateRepository(db *pgxpool.Pool) *DuplicateRepository {
	return &DuplicateRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

const notRejected = `NOT EXISTS (SELECT 1 FROM rejected_duplicate_pairs r
	WHERE r.participant_a_id = a.id AND r.participant_b_id = b.id)`

// similarBirthDateQuery pairs participants of a year sharing a birth date
// whose full names are at least threshold similar under pg_trgm.
func (r *DuplicateRepository) similarBirthDateQuery(year int, threshold float64) squirrel.SelectBuilder {
	score := "similarity(a.given_name || ' ' || a.family_name, b.given_name || ' ' || b.family_name)"
	return r.sb.Select("a.id", "b.id", score).
		From("participants a").
		Join("participants b ON a.id < b.id AND a.birth_date = b.birth_date").
		Where(squirrel.Eq{"a.year": year, "b.year": year}).
		Where(squirrel.Expr(score+" >= ?", threshold)).
		Where(notRejected)
}

// sameNameQuery pairs participants of a year with equal names and
// different birth dates. Names compare case-insensitively after trimming.
func (r *DuplicateRepository) sameNameQuery(year int) squirrel.SelectBuilder {
	return r.sb.Select("a.id", "b.id").
		From("participants a").
		Join(`participants b ON a.id < b.id
			AND LOWER(TRIM(a.given_name)) = LOWER(TRIM(b.given_name))
			AND LOWER(TRIM(a.family_name)) = LOWER(TRIM(b.family_name))
			AND a.birth_date <> b.birth_date`).
		Where(squirrel.Eq{"a.year": year, "b.year": year}).
		Where(notRejected)
}

// SimilarSameBirthDate scores candidates with pg_trgm. A missing extension
// is reported as ErrSimilarityUnavailable.
func (r *DuplicateRepository) SimilarSameBirthDate(ctx context.Context, year int, threshold float64) ([]models.ScoredPair, error) {
	sql, args, err := r.similarBirthDateQuery(year, threshold).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build similarity query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, r.similarityError(err, year)
	}
	defer rows.Close()

	pairs := []models.ScoredPair{}
	for rows.Next() {
		var p models.ScoredPair
		if err := rows.Scan(&p.A, &p.B, &p.Score); err != nil {
			return nil, fmt.Errorf("error scanning similarity pair: %w", err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, r.similarityError(err, year)
	}
	return pairs, nil
}

func (r *DuplicateRepository) similarityError(err error, year int) error {
	if dberrors.IsUndefinedFunction(err) {
		logger.Warn().Err(err).Msg("pg_trgm similarity() is not available")
		return apperrors.NewCustomError(apperrors.ErrSimilarityUnavailable, "similarity search unavailable").
			WithDetails(map[string]interface{}{"hint": apperrors.SimilarityHint})
	}
	logger.Error().Err(err).Int("year", year).Msg("Error executing similarity query")
	return fmt.Errorf("error executing similarity query: %w", err)
}

// SameNameDifferentBirthDate returns pairs with equal names and different
// birth dates, scored at a fixed 0.70.
func (r *DuplicateRepository) SameNameDifferentBirthDate(ctx context.Context, year int) ([]models.ScoredPair, error) {
	sql, args, err := r.sameNameQuery(year).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build same name query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int("year", year).Msg("Error executing same name query")
		return nil, fmt.Errorf("error executing same name query: %w", err)
	}
	defer rows.Close()

	pairs := []models.ScoredPair{}
	for rows.Next() {
		p := models.ScoredPair{Score: sameNameScore, DatesDiffer: true}
		if err := rows.Scan(&p.A, &p.B); err != nil {
			return nil, fmt.Errorf("error scanning same name pair: %w", err)
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

// RejectedPairs returns the rejected pairs among participants of year, keyed
// by their canonical ids.
func (r *DuplicateRepository) RejectedPairs(ctx context.Context, year int) (map[[2]int64]bool, error) {
	sql, args, err := r.sb.Select("r.participant_a_id", "r.participant_b_id").
		From("rejected_duplicate_pairs r").
		Join("participants a ON a.id = r.participant_a_id").
		Where(squirrel.Eq{"a.year": year}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build rejected pairs query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int("year", year).Msg("Error listing rejected pairs")
		return nil, fmt.Errorf("error listing rejected pairs: %w", err)
	}
	defer rows.Close()

	pairs := make(map[[2]int64]bool)
	for rows.Next() {
		var a, b int64
		if err := rows.Scan(&a, &b); err != nil {
			return nil, fmt.Errorf("error scanning rejected pair: %w", err)
		}
		pairs[[2]int64{a, b}] = true
	}
	return pairs, rows.Err()
}

// RejectPair stores a canonical rejected pair, refreshing reason, user and
// time when it already exists.
func (r *DuplicateRepository) RejectPair(ctx context.Context, a, b int64, rejectedBy *int64, reason string) (*models.RejectedPair, error) {
	a, b = models.CanonicalPair(a, b)
	sql, args, err := r.sb.Insert("rejected_duplicate_pairs").
		Columns("participant_a_id", "participant_b_id", "rejected_by", "reason").
		Values(a, b, rejectedBy, reason).
		Suffix(`ON CONFLICT ON CONSTRAINT rejected_pairs_key DO UPDATE
			SET rejected_by = EXCLUDED.rejected_by, reason = EXCLUDED.reason, rejected_at = NOW()
			RETURNING id, rejected_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build reject pair query: %w", err)
	}

	pair := &models.RejectedPair{ParticipantA: a, ParticipantB: b, RejectedBy: rejectedBy, Reason: reason}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&pair.ID, &pair.RejectedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return nil, apperrors.ErrParticipantNotFound
		}
		logger.Error().Err(err).Int64("participantA", a).Int64("participantB", b).Msg("Error rejecting pair")
		return nil, fmt.Errorf("error rejecting duplicate pair: %w", err)
	}
	return pair, nil
}

// Merge locks both participants, asks plan for the writes and applies them in
// one transaction. With dryRun the plan is computed and nothing is written.
func (r *DuplicateRepository) Merge(ctx context.Context, winnerID, loserID int64, dryRun bool, plan MergePlanner) (models.MergePlan, error) {
	var result models.MergePlan
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		state, err := r.loadMergeState(ctx, tx, winnerID, loserID)
		if err != nil {
			return err
		}
		if result, err = plan(state); err != nil {
			return err
		}
		if dryRun {
			return errDryRun
		}
		return r.applyMerge(ctx, tx, winnerID, loserID, result)
	})
	if err != nil && !errors.Is(err, errDryRun) {
		return models.MergePlan{}, err
	}
	return result, nil
}

func (r *DuplicateRepository) loadMergeState(ctx context.Context, q db.Querier, winnerID, loserID int64) (models.MergeState, error) {
	var state models.MergeState
	lock := func(id int64, p *models.Participant) error {
		sql, args, err := selectParticipants(r.sb).Where(squirrel.Eq{"p.id": id}).Suffix("FOR UPDATE OF p").ToSql()
		if err != nil {
			return fmt.Errorf("failed to build lock participant query: %w", err)
		}
		if err := scanParticipant(q.QueryRow(ctx, sql, args...), p); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrParticipantNotFound
			}
			return fmt.Errorf("error locking participant: %w", err)
		}
		return nil
	}
	// lock in id order so concurrent merges of the same pair cannot deadlock
	first, second := &state.Winner, &state.Loser
	firstID, secondID := winnerID, loserID
	if loserID < winnerID {
		first, second, firstID, secondID = second, first, secondID, firstID
	}
	if err := lock(firstID, first); err != nil {
		return state, err
	}
	if err := lock(secondID, second); err != nil {
		return state, err
	}

	var err error
	if state.WinnerAttendance, err = r.attendanceOf(ctx, q, winnerID); err != nil {
		return state, err
	}
	if state.LoserAttendance, err = r.attendanceOf(ctx, q, loserID); err != nil {
		return state, err
	}
	return state, nil
}

func (r *DuplicateRepository) attendanceOf(ctx context.Context, q db.Querier, participantID int64) (map[int64]bool, error) {
	rows, err := q.Query(ctx, "SELECT event_day_id, present FROM attendance_records WHERE participant_id = $1", participantID)
	if err != nil {
		return nil, fmt.Errorf("error loading attendance: %w", err)
	}
	defer rows.Close()

	att := make(map[int64]bool)
	for rows.Next() {
		var dayID int64
		var present bool
		if err := rows.Scan(&dayID, &present); err != nil {
			return nil, fmt.Errorf("error scanning attendance: %w", err)
		}
		att[dayID] = present
	}
	return att, rows.Err()
}

func (r *DuplicateRepository) applyMerge(ctx context.Context, q db.Querier, winnerID, loserID int64, plan models.MergePlan) error {
	if len(plan.ReassignDays) > 0 {
		sql, args, err := r.sb.Update("attendance_records").
			Set("participant_id", winnerID).
			Where(squirrel.Eq{"participant_id": loserID, "event_day_id": plan.ReassignDays}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build reassign query: %w", err)
		}
		if _, err := q.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("error reassigning attendance: %w", err)
		}
	}

	if drop := append(append([]int64{}, plan.DuplicateDays...), plan.ConflictDays...); len(drop) > 0 {
		sql, args, err := r.sb.Delete("attendance_records").
			Where(squirrel.Eq{"participant_id": loserID, "event_day_id": drop}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build drop attendance query: %w", err)
		}
		if _, err := q.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("error dropping loser attendance: %w", err)
		}
	}

	if plan.CopyPhoto {
		sql, args, err := r.sb.Update("participants").
			Set("photo", plan.Photo).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": winnerID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build copy photo query: %w", err)
		}
		if _, err := q.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("error copying photo: %w", err)
		}
	}

	if _, err := q.Exec(ctx, "DELETE FROM participants WHERE id = $1", loserID); err != nil {
		return fmt.Errorf("error deleting merged participant: %w", err)
	}

	logger.Info().
		Int64("winnerID", winnerID).
		Int64("loserID", loserID).
		Int("reassigned", len(plan.ReassignDays)).
		Int("duplicates", len(plan.DuplicateDays)).
		Int("conflicts", len(plan.ConflictDays)).
		Msg("Participants merged")
	return nil
}
