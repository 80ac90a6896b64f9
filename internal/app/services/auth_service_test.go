package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jumpyouth/checkin/internal/app/models"
	"github.com/jumpyouth/checkin/internal/app/models/dto"
	"github.com/jumpyouth/checkin/internal/pkg/apperrors"
	"github.com/jumpyouth/checkin/internal/pkg/auth"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	rows      map[int64]*models.User
	lastLogin map[int64]bool
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{rows: map[int64]*models.User{}, lastLogin: map[int64]bool{}}
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) (int64, error) {
	u.ID = int64(len(f.rows) + 1)
	cp := *u
	f.rows[u.ID] = &cp
	return u.ID, nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range f.rows {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := f.rows[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) UsernameExists(c context.Context, username string) (bool, error) {
	_, err := f.GetByUsername(c, username)
	return err == nil, nil
}

func (f *fakeUsers) UpdateLastLogin(_ context.Context, id int64) error {
	f.lastLogin[id] = true
	return nil
}

func newAuthFixture(t *testing.T) (*fakeUsers, *AuthService) {
	t.Helper()
	users := newFakeUsers()
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "test", AccessTokenExp: time.Hour, TokenIssuer: "checkin.test"})
	svc := NewAuthService(users, jwtService, zerolog.Nop())

	_, err := svc.CreateUser(ctx, dto.CreateUserRequest{
		Username:    "lider",
		Password:    "senha-forte",
		Permissions: []string{"view_dashboard"},
	})
	require.NoError(t, err)
	return users, svc
}

func TestLogin(t *testing.T) {
	users, svc := newAuthFixture(t)

	res, err := svc.Login(ctx, dto.LoginRequest{Username: " lider ", Password: "senha-forte"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "Bearer", res.TokenType)
	assert.Equal(t, []models.Permission{models.PermViewDashboard}, res.User.Permissions)
	assert.True(t, users.lastLogin[res.User.ID])

	tests := []struct {
		name    string
		req     dto.LoginRequest
		wantErr error
	}{
		{name: "wrong password", req: dto.LoginRequest{Username: "lider", Password: "errada123"}, wantErr: apperrors.ErrInvalidCredentials},
		{name: "unknown user", req: dto.LoginRequest{Username: "ninguem", Password: "senha-forte"}, wantErr: apperrors.ErrInvalidCredentials},
		{name: "empty", req: dto.LoginRequest{}, wantErr: apperrors.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.req)
			assert.True(t, errors.Is(err, tt.wantErr))
		})
	}
}

func TestLogin_InactiveUser(t *testing.T) {
	users, svc := newAuthFixture(t)
	users.rows[1].IsActive = false

	_, err := svc.Login(ctx, dto.LoginRequest{Username: "lider", Password: "senha-forte"})
	assert.True(t, errors.Is(err, apperrors.ErrAccountDisabled))
}

func TestCreateUser_Validation(t *testing.T) {
	_, svc := newAuthFixture(t)

	tests := []struct {
		name    string
		req     dto.CreateUserRequest
		wantErr error
	}{
		{name: "short password", req: dto.CreateUserRequest{Username: "novo", Password: "curta"}, wantErr: apperrors.ErrValidationFailed},
		{name: "unknown permission", req: dto.CreateUserRequest{Username: "novo", Password: "senha-forte", Permissions: []string{"fly"}}, wantErr: apperrors.ErrValidationFailed},
		{name: "taken username", req: dto.CreateUserRequest{Username: "lider", Password: "senha-forte"}, wantErr: apperrors.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateUser(ctx, tt.req)
			assert.True(t, errors.Is(err, tt.wantErr), err)
		})
	}
}

func TestEnsureAdmin(t *testing.T) {
	users, svc := newAuthFixture(t)

	require.NoError(t, svc.EnsureAdmin(ctx, "admin", "admin-pass", "admin@example.com"))
	require.NoError(t, svc.EnsureAdmin(ctx, "admin", "admin-pass", "admin@example.com"))
	require.Len(t, users.rows, 2)

	admin, err := users.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, admin.IsSuperuser)
	assert.Equal(t, "Administrador", admin.FullName)

	require.NoError(t, svc.EnsureAdmin(ctx, "", "", ""))
}

func TestYearService(t *testing.T) {
	participants := newFakeParticipants()
	participants.years = []int{2023, 2025, 2024}
	svc := NewYearService(participants, YearPolicy{Current: 2026})

	res, err := svc.Available(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, []int{2026, 2025, 2024, 2023}, res.Years)
	assert.True(t, res.ReadOnly)

	res, err = svc.Available(ctx, 2026)
	require.NoError(t, err)
	assert.False(t, res.ReadOnly)

	assert.NoError(t, svc.Validate(2025))
	assert.Error(t, svc.Validate(1999))
}
