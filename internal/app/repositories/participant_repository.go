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
	"github.com/jumpyouth/checkin/internal/app/models/dto"
	"github.com/jumpyouth/checkin/internal/pkg/apperrors"
	"github.com/jumpyouth/checkin/internal/pkg/dberrors"
	"github.com/jumpyouth/checkin/internal/pkg/helpers"
	"github.com/jumpyouth/checkin/internal/pkg/logger"
)

// ParticipantRepository handles participant database operations
type ParticipantRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewParticipantRepository creates a new ParticipantRepository
func NewParticipantRepository(db *pgxpool.Pool) *ParticipantRepository {
	return &ParticipantRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func participantValues(p *models.Participant) map[string]interface{} {
	return map[string]interface{}{
		"given_name":     p.GivenName,
		"family_name":    p.FamilyName,
		"birth_date":     p.BirthDate,
		"gender":         string(p.Gender),
		"phone":          p.Phone,
		"guardian_name":  p.GuardianName,
		"guardian_phone": p.GuardianPhone,
		"cohort_id":      p.CohortID,
		"imperio_id":     p.ImperioID,
		"start_date":     p.StartDate,
	}
}

// translateGroupFK maps a foreign key violation to the missing group.
func translateGroupFK(err error, p *models.Participant) error {
	if !dberrors.IsForeignKeyViolation(err) {
		return err
	}
	if p.CohortID != nil {
		return apperrors.ErrCohortNotFound
	}
	return apperrors.ErrImperioNotFound
}

// Create inserts a participant and returns its id
func (r *ParticipantRepository) Create(ctx context.Context, p *models.Participant) (int64, error) {
	values := participantValues(p)
	values["photo"] = p.Photo
	values["year"] = p.Year

	sql, args, err := r.sb.Insert("participants").
		SetMap(values).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create participant SQL")
		return 0, fmt.Errorf("failed to build create participant query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return 0, translateGroupFK(err, p)
		}
		logger.Error().Err(err).Msg("Error executing create participant query")
		return 0, fmt.Errorf("error creating participant: %w", err)
	}
	return p.ID, nil
}

// Update overwrites the editable fields of a participant
func (r *ParticipantRepository) Update(ctx context.Context, p *models.Participant) error {
	values := participantValues(p)
	values["updated_at"] = squirrel.Expr("NOW()")

	sql, args, err := r.sb.Update("participants").
		SetMap(values).
		Where(squirrel.Eq{"id": p.ID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update participant SQL")
		return fmt.Errorf("failed to build update participant query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return translateGroupFK(err, p)
		}
		logger.Error().Err(err).Int64("participantID", p.ID).Msg("Error executing update participant query")
		return fmt.Errorf("error updating participant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrParticipantNotFound
	}
	return nil
}

// Delete removes a participant. Attendance and rejected pairs cascade.
func (r *ParticipantRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("participants").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete participant query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("participantID", id).Msg("Error deleting participant")
		return fmt.Errorf("error deleting participant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrParticipantNotFound
	}
	return nil
}

// GetByID returns a participant with its group names
func (r *ParticipantRepository) GetByID(ctx context.Context, id int64) (*models.Participant, error) {
	sql, args, err := selectParticipants(r.sb).Where(squirrel.Eq{"p.id": id}).Limit(1).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get participant SQL")
		return nil, fmt.Errorf("failed to build get participant query: %w", err)
	}

	p := &models.Participant{}
	if err := scanParticipant(r.db.QueryRow(ctx, sql, args...), p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrParticipantNotFound
		}
		logger.Error().Err(err).Int64("participantID", id).Msg("Error scanning participant row")
		return nil, fmt.Errorf("error getting participant: %w", err)
	}
	return p, nil
}

// List returns one page of the year's participants matching q. The page is
// clamped to the last page when it is out of range.
func (r *ParticipantRepository) List(ctx context.Context, year int, q dto.ParticipantQuery, now time.Time, windowDays, pageSize int) (*dto.ParticipantListResponse, error) {
	countBuilder := r.sb.Select("COUNT(*)").
		From("participants p").
		LeftJoin("cohorts c ON c.id = p.cohort_id").
		LeftJoin("imperios i ON i.id = p.imperio_id")
	countSQL, countArgs, err := applyParticipantFilter(countBuilder, year, q, now, windowDays).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building participant count SQL")
		return nil, fmt.Errorf("failed to build participant count query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Int("year", year).Msg("Error counting participants")
		return nil, fmt.Errorf("error counting participants: %w", err)
	}

	page := helpers.ClampPage(q.Page, total, pageSize)
	offset, limit := helpers.CalculateOffsetLimit(page, pageSize)

	sql, args, err := applyParticipantFilter(selectParticipants(r.sb), year, q, now, windowDays).
		OrderBy(participantOrderBy(q.Sort, q.Desc)...).
		Limit(limit).
		Offset(offset).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building participant list SQL")
		return nil, fmt.Errorf("failed to build participant list query: %w", err)
	}

	items, err := r.query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	return &dto.ParticipantListResponse{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(total, page, pageSize),
	}, nil
}

// ListByYear returns all of a year's participants ordered by name
func (r *ParticipantRepository) ListByYear(ctx context.Context, year int) ([]models.Participant, error) {
	return r.listWhere(ctx, squirrel.Eq{"p.year": year})
}

// ListByCohort returns a cohort's members ordered by name
func (r *ParticipantRepository) ListByCohort(ctx context.Context, cohortID int64) ([]models.Participant, error) {
	return r.listWhere(ctx, squirrel.Eq{"p.cohort_id": cohortID})
}

// ListByImperio returns an império's members ordered by name
func (r *ParticipantRepository) ListByImperio(ctx context.Context, imperioID int64) ([]models.Participant, error) {
	return r.listWhere(ctx, squirrel.Eq{"p.imperio_id": imperioID})
}

// ListWithPhotos returns every participant holding a photo reference
func (r *ParticipantRepository) ListWithPhotos(ctx context.Context) ([]models.Participant, error) {
	return r.listWhere(ctx, squirrel.NotEq{"p.photo": ""})
}

func (r *ParticipantRepository) listWhere(ctx context.Context, cond squirrel.Sqlizer) ([]models.Participant, error) {
	sql, args, err := selectParticipants(r.sb).
		Where(cond).
		OrderBy("p.given_name ASC", "p.family_name ASC", "p.id ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building participant list SQL")
		return nil, fmt.Errorf("failed to build participant list query: %w", err)
	}
	return r.query(ctx, sql, args...)
}

func (r *ParticipantRepository) query(ctx context.Context, sql string, args ...interface{}) ([]models.Participant, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing participant query")
		return nil, fmt.Errorf("error querying participants: %w", err)
	}
	defer rows.Close()

	items := []models.Participant{}
	for rows.Next() {
		var p models.Participant
		if err := scanParticipant(rows, &p); err != nil {
			logger.Error().Err(err).Msg("Error scanning participant row")
			return nil, fmt.Errorf("error scanning participant row: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating participant rows")
		return nil, fmt.Errorf("error iterating participant rows: %w", err)
	}
	return items, nil
}

// SetPhoto replaces the photo reference of a participant
func (r *ParticipantRepository) SetPhoto(ctx context.Context, id int64, photo string) error {
	sql, args, err := r.sb.Update("participants").
		Set("photo", photo).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build set photo query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("participantID", id).Msg("Error setting participant photo")
		return fmt.Errorf("error setting participant photo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrParticipantNotFound
	}
	return nil
}

// BulkAssign sets the cohort and/or império of the given participants of
// year. Nil references are left untouched.
func (r *ParticipantRepository) BulkAssign(ctx context.Context, year int, ids []int64, cohortID, imperioID *int64) (int64, error) {
	b := r.sb.Update("participants").
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": ids, "year": year})
	if cohortID != nil {
		b = b.Set("cohort_id", *cohortID)
	}
	if imperioID != nil {
		b = b.Set("imperio_id", *imperioID)
	}

	sql, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build bulk assign query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return 0, apperrors.NewResourceNotFoundError("cohort or império not found")
		}
		logger.Error().Err(err).Int("count", len(ids)).Msg("Error bulk assigning participants")
		return 0, fmt.Errorf("error bulk assigning participants: %w", err)
	}
	return tag.RowsAffected(), nil
}

// RemoveFromGroup clears column (cohort_id or imperio_id) for the given
// participants, only where it currently points at groupID.
func (r *ParticipantRepository) RemoveFromGroup(ctx context.Context, column string, groupID int64, ids []int64) (int64, error) {
	sql, args, err := r.sb.Update("participants").
		Set(column, nil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": ids, column: groupID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build remove from group query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("column", column).Int64("groupID", groupID).Msg("Error removing group members")
		return 0, fmt.Errorf("error removing group members: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Years lists the distinct enrollment years holding participants or event days
func (r *ParticipantRepository) Years(ctx context.Context) ([]int, error) {
	rows, err := r.db.Query(ctx, `
		SELECT year FROM participants
		UNION
		SELECT year FROM event_days
		ORDER BY year DESC`)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing years")
		return nil, fmt.Errorf("error listing years: %w", err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("error scanning year: %w", err)
		}
		years = append(years, y)
	}
	return years, rows.Err()
}
