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

// ErrUsernameTaken is returned when creating a user whose username exists
var ErrUsernameTaken = apperrors.NewCustomError(apperrors.ErrConflict, "username already exists")

// UserRepository handles staff account database operations
type UserRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *UserRepository) selectUsers() squirrel.SelectBuilder {
	return r.sb.Select("id", "username", "password_hash", "full_name", "email",
		"is_active", "is_superuser", "permissions", "last_login_at", "created_at", "updated_at").
		From("users")
}

func scanUser(row pgx.Row, u *models.User) error {
	var perms []string
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.Email,
		&u.IsActive, &u.IsSuperuser, &perms, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return err
	}
	u.Permissions = make([]models.Permission, 0, len(perms))
	for _, p := range perms {
		if perm, ok := models.ParsePermission(p); ok {
			u.Permissions = append(u.Permissions, perm)
		}
	}
	return nil
}

// Create inserts a new staff user
func (r *UserRepository) Create(ctx context.Context, u *models.User) (int64, error) {
	perms := make([]string, len(u.Permissions))
	for i, p := range u.Permissions {
		perms[i] = string(p)
	}

	sql, args, err := r.sb.Insert("users").
		Columns("username", "password_hash", "full_name", "email", "is_active", "is_superuser", "permissions").
		Values(u.Username, u.PasswordHash, u.FullName, u.Email, u.IsActive, u.IsSuperuser, perms).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create user SQL")
		return 0, fmt.Errorf("failed to build create user query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "") {
			return 0, ErrUsernameTaken
		}
		logger.Error().Err(err).Str("username", u.Username).Msg("Error creating user")
		return 0, fmt.Errorf("error creating user: %w", err)
	}
	return u.ID, nil
}

// GetByUsername returns the user with the given username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"username": username})
}

// GetByID returns the user with the given id
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

func (r *UserRepository) getOne(ctx context.Context, cond squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := r.selectUsers().Where(cond).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	u := &models.User{}
	if err := scanUser(r.db.QueryRow(ctx, sql, args...), u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Msg("Error scanning user row")
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return u, nil
}

// UsernameExists reports whether a username is already taken
func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)", username).Scan(&exists)
	if err != nil {
		logger.Error().Err(err).Str("username", username).Msg("Error checking username")
		return false, fmt.Errorf("error checking username: %w", err)
	}
	return exists, nil
}

// UpdateLastLogin stamps the user's last successful login
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Update("users").
		Set("last_login_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update last login query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", id).Msg("Error updating last login")
		return fmt.Errorf("error updating last login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
