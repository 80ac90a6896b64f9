package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jumpyouth/checkin/internal/app/models"
	"github.com/jumpyouth/checkin/internal/app/models/dto"
	"github.com/jumpyouth/checkin/internal/pkg/apperrors"
	"github.com/jumpyouth/checkin/internal/pkg/auth"
	"github.com/rs/zerolog"
)

// AuthService handles staff login and account creation
type AuthService struct {
	users      UserStore
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(users UserStore, jwtService *auth.JWTService, logger zerolog.Logger) *AuthService {
	return &AuthService{
		users:      users,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Login checks credentials and issues an access token
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Warn().Str("username", username).Msg("Failed login attempt")
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	token, expiresAt, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("token generation error: %w", err)
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to update last login")
	}

	s.logger.Info().Int64("userID", user.ID).Msg("User logged in")
	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        *user,
	}, nil
}

// Me returns the authenticated user
func (s *AuthService) Me(ctx context.Context, userID int64) (*models.User, error) {
	if userID <= 0 {
		return nil, apperrors.ErrUnauthorized
	}
	return s.users.GetByID(ctx, userID)
}

// CreateUser adds a staff account
func (s *AuthService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, apperrors.NewValidationError("username", "username is required")
	}
	if len(req.Password) < 8 {
		return nil, apperrors.NewValidationError("password", "password must be at least 8 characters")
	}

	perms := make([]models.Permission, 0, len(req.Permissions))
	for _, name := range req.Permissions {
		p, ok := models.ParsePermission(strings.TrimSpace(name))
		if !ok {
			return nil, apperrors.NewValidationError("permissions", "unknown permission "+name)
		}
		perms = append(perms, p)
	}

	exists, err := s.users.UsernameExists(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewConflictError("username already exists")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(req.FullName),
		Email:        strings.TrimSpace(req.Email),
		IsActive:     true,
		IsSuperuser:  req.IsSuperuser,
		Permissions:  perms,
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Str("username", username).Msg("User created")
	return user, nil
}

// EnsureAdmin creates the seed superuser when no account uses its username
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password, email string) error {
	if username == "" || password == "" {
		return nil
	}
	exists, err := s.users.UsernameExists(ctx, username)
	if err != nil || exists {
		return err
	}
	_, err = s.CreateUser(ctx, dto.CreateUserRequest{
		Username:    username,
		Password:    password,
		FullName:    "Administrador",
		Email:       email,
		IsSuperuser: true,
	})
	return err
}
