package dto

import (
	"time"

	"github.com/jumpyouth/checkin/internal/app/models"
)

// LoginRequest is the staff login body
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued access token
type LoginResponse struct {
	AccessToken string      `json:"accessToken"`
	TokenType   string      `json:"tokenType"`
	ExpiresAt   time.Time   `json:"expiresAt"`
	User        models.User `json:"user"`
}

// CreateUserRequest creates a staff account
type CreateUserRequest struct {
	Username    string   `json:"username" binding:"required,max=150"`
	Password    string   `json:"password" binding:"required,min=8"`
	FullName    string   `json:"fullName" binding:"max=200"`
	Email       string   `json:"email" binding:"omitempty,email"`
	IsSuperuser bool     `json:"isSuperuser"`
	Permissions []string `json:"permissions"`
}

// YearsResponse lists the enrollment years and the active one
type YearsResponse struct {
	Years    []int `json:"years"`
	Active   int   `json:"active"`
	Current  int   `json:"current"`
	ReadOnly bool  `json:"readOnly"`
}

// SetYearRequest selects the active enrollment year
type SetYearRequest struct {
	Year int `json:"year" binding:"required"`
}
