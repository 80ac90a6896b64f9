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

const imperioNameConstraint = "imperios_year_name_key"

// ErrImperioNameTaken is returned when another império of the year has the name
var ErrImperioNameTaken = apperrors.NewCustomError(apperrors.ErrConflict, "an império with this name already exists in this year")

// ImperioRepository handles império database operations
type ImperioRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewImperioRepository creates a new ImperioRepository
func NewImperioRepository(db *pgxpool.Pool) *ImperioRepository {
	return &ImperioRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *ImperioRepository) selectImperios() squirrel.SelectBuilder {
	return r.sb.Select("i.id", "i.name", "i.year", "i.created_at",
		"(SELECT COUNT(*) FROM participants p WHERE p.imperio_id = i.id)").
		From("imperios i")
}

func scanImperio(row interface{ Scan(...any) error }, i *models.Imperio) error {
	return row.Scan(&i.ID, &i.Name, &i.Year, &i.CreatedAt, &i.MemberCount)
}

// Create inserts an império. Names are unique within a year.
func (r *ImperioRepository) Create(ctx context.Context, i *models.Imperio) (int64, error) {
	sql, args, err := r.sb.Insert("imperios").
		Columns("name", "year").
		Values(i.Name, i.Year).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create império SQL")
		return 0, fmt.Errorf("failed to build create império query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&i.ID, &i.CreatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, imperioNameConstraint) {
			return 0, ErrImperioNameTaken
		}
		logger.Error().Err(err).Msg("Error executing create império query")
		return 0, fmt.Errorf("error creating império: %w", err)
	}
	return i.ID, nil
}

// Update renames an império
func (r *ImperioRepository) Update(ctx context.Context, i *models.Imperio) error {
	sql, args, err := r.sb.Update("imperios").
		Set("name", i.Name).
		Where(squirrel.Eq{"id": i.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update império query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, imperioNameConstraint) {
			return ErrImperioNameTaken
		}
		logger.Error().Err(err).Int64("imperioID", i.ID).Msg("Error updating império")
		return fmt.Errorf("error updating império: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrImperioNotFound
	}
	return nil
}

// Delete removes an império; members keep existing with no império
func (r *ImperioRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("imperios").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete império query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("imperioID", id).Msg("Error deleting império")
		return fmt.Errorf("error deleting império: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrImperioNotFound
	}
	return nil
}

// GetByID returns an império with its member count
func (r *ImperioRepository) GetByID(ctx context.Context, id int64) (*models.Imperio, error) {
	sql, args, err := r.selectImperios().Where(squirrel.Eq{"i.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get império query: %w", err)
	}

	i := &models.Imperio{}
	if err := scanImperio(r.db.QueryRow(ctx, sql, args...), i); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrImperioNotFound
		}
		logger.Error().Err(err).Int64("imperioID", id).Msg("Error scanning império row")
		return nil, fmt.Errorf("error getting império: %w", err)
	}
	return i, nil
}

// ListByYear returns the year's impérios ordered by name
func (r *ImperioRepository) ListByYear(ctx context.Context, year int) ([]models.Imperio, error) {
	sql, args, err := r.selectImperios().
		Where(squirrel.Eq{"i.year": year}).
		OrderBy("i.name ASC", "i.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list impérios query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int("year", year).Msg("Error listing impérios")
		return nil, fmt.Errorf("error listing impérios: %w", err)
	}
	defer rows.Close()

	imperios := []models.Imperio{}
	for rows.Next() {
		var i models.Imperio
		if err := scanImperio(rows, &i); err != nil {
			return nil, fmt.Errorf("error scanning império row: %w", err)
		}
		imperios = append(imperios, i)
	}
	return imperios, rows.Err()
}
