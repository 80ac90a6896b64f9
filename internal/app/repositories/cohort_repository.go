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
	"github.com/jumpyouth/checkin/internal/pkg/logger"
)

// CohortRepository handles cohort (PG) database operations
type CohortRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCohortRepository creates a new CohortRepository
func NewCohortRepository(db *pgxpool.Pool) *CohortRepository {
	return &CohortRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *CohortRepository) selectCohorts() squirrel.SelectBuilder {
	return r.sb.Select("c.id", "c.name", "c.tag", "c.year", "c.created_at",
		"(SELECT COUNT(*) FROM participants p WHERE p.cohort_id = c.id)").
		From("cohorts c")
}

func scanCohort(row interface{ Scan(...any) error }, c *models.Cohort) error {
	return row.Scan(&c.ID, &c.Name, &c.Tag, &c.Year, &c.CreatedAt, &c.MemberCount)
}

// Create inserts a cohort
func (r *CohortRepository) Create(ctx context.Context, c *models.Cohort) (int64, error) {
	sql, args, err := r.sb.Insert("cohorts").
		Columns("name", "tag", "year").
		Values(c.Name, c.Tag, c.Year).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create cohort SQL")
		return 0, fmt.Errorf("failed to build create cohort query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.CreatedAt); err != nil {
		logger.Error().Err(err).Msg("Error executing create cohort query")
		return 0, fmt.Errorf("error creating cohort: %w", err)
	}
	return c.ID, nil
}

// Update renames or retags a cohort
func (r *CohortRepository) Update(ctx context.Context, c *models.Cohort) error {
	sql, args, err := r.sb.Update("cohorts").
		Set("name", c.Name).
		Set("tag", c.Tag).
		Where(squirrel.Eq{"id": c.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update cohort query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("cohortID", c.ID).Msg("Error updating cohort")
		return fmt.Errorf("error updating cohort: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCohortNotFound
	}
	return nil
}

// Delete removes a cohort; members keep existing with no cohort
func (r *CohortRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("cohorts").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete cohort query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("cohortID", id).Msg("Error deleting cohort")
		return fmt.Errorf("error deleting cohort: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCohortNotFound
	}
	return nil
}

// GetByID returns a cohort with its member count
func (r *CohortRepository) GetByID(ctx context.Context, id int64) (*models.Cohort, error) {
	sql, args, err := r.selectCohorts().Where(squirrel.Eq{"c.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get cohort query: %w", err)
	}

	c := &models.Cohort{}
	if err := scanCohort(r.db.QueryRow(ctx, sql, args...), c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCohortNotFound
		}
		logger.Error().Err(err).Int64("cohortID", id).Msg("Error scanning cohort row")
		return nil, fmt.Errorf("error getting cohort: %w", err)
	}
	return c, nil
}

// ListByYear returns the year's cohorts ordered by name
func (r *CohortRepository) ListByYear(ctx context.Context, year int) ([]models.Cohort, error) {
	sql, args, err := r.selectCohorts().
		Where(squirrel.Eq{"c.year": year}).
		OrderBy("c.name ASC", "c.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list cohorts query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int("year", year).Msg("Error listing cohorts")
		return nil, fmt.Errorf("error listing cohorts: %w", err)
	}
	defer rows.Close()

	cohorts := []models.Cohort{}
	for rows.Next() {
		var c models.Cohort
		if err := scanCohort(rows, &c); err != nil {
			return nil, fmt.Errorf("error scanning cohort row: %w", err)
		}
		cohorts = append(cohorts, c)
	}
	return cohorts, rows.Err()
}
