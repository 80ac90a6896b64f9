package dto

import (
	"time"

	"github.com/jumpyouth/checkin/internal/app/models"
	"github.com/jumpyouth/checkin/internal/app/models/dto/enums"
)

// ParticipantRequest is the body for creating or updating a participant
type ParticipantRequest struct {
	GivenName     string `json:"givenName" binding:"required,max=100"`
	FamilyName    string `json:"familyName" binding:"required,max=100"`
	BirthDate     string `json:"birthDate" binding:"required"`
	Gender        string `json:"gender" binding:"required,gender"`
	Phone         string `json:"phone" binding:"omitempty,phone"`
	GuardianName  string `json:"guardianName" binding:"max=200"`
	GuardianPhone string `json:"guardianPhone" binding:"omitempty,phone"`
	CohortID      *int64 `json:"cohortId"`
	ImperioID     *int64 `json:"imperioId"`
	StartDate     string `json:"startDate"`
}

// ParticipantInput is a parsed ParticipantRequest
type ParticipantInput struct {
	GivenName     string
	FamilyName    string
	BirthDate     time.Time
	Gender        models.Gender
	Phone         string
	GuardianName  string
	GuardianPhone string
	CohortID      *int64
	ImperioID     *int64
	StartDate     *time.Time
}

// ParticipantQuery holds the filter, sort and page of a participant listing
type ParticipantQuery struct {
	Search     string
	CohortID   *int64
	NoCohort   bool
	Gender     models.Gender
	ImperioID  *int64
	NoImperio  bool
	BirthYear  int
	Attendance enums.AttendanceBucket
	Sort       enums.SortField
	Desc       bool
	Page       int
}

// ParticipantListResponse is one page of participants
type ParticipantListResponse struct {
	Items      []models.Participant `json:"items"`
	Pagination PaginationInfo       `json:"pagination"`
}

// BulkAssignRequest sets the cohort and/or império of several participants
type BulkAssignRequest struct {
	ParticipantIDs []int64 `json:"participantIds" binding:"required,min=1"`
	CohortID       *int64  `json:"cohortId"`
	ImperioID      *int64  `json:"imperioId"`
}

// BulkMembersRequest adds or removes group members
type BulkMembersRequest struct {
	ParticipantIDs []int64 `json:"participantIds" binding:"required,min=1"`
}

// BulkResult reports how many rows a bulk operation touched
type BulkResult struct {
	Updated int64 `json:"updated"`
}

// PhotoCleanupReport is the outcome of an orphaned photo sweep
type PhotoCleanupReport struct {
	Checked  int     `json:"checked"`
	Orphaned int     `json:"orphaned"`
	Cleared  int     `json:"cleared"`
	IDs      []int64 `json:"ids,omitempty"`
	DryRun   bool    `json:"dryRun"`
}
