package dto

import "github.com/jumpyouth/checkin/internal/app/models"

// DuplicateListResponse lists suggested duplicate pairs
type DuplicateListResponse struct {
	Threshold  float64                     `json:"threshold"`
	Limit      int                         `json:"limit"`
	Candidates []models.DuplicateCandidate `json:"candidates"`
}

// MergeRequest merges loser into winner
type MergeRequest struct {
	WinnerID                int64 `json:"winnerId" binding:"required"`
	LoserID                 int64 `json:"loserId" binding:"required"`
	AllowDifferentBirthDate bool  `json:"allowDifferentBirthDate"`
	DryRun                  bool  `json:"dryRun"`
}

// RejectPairRequest marks two participants as not duplicates
type RejectPairRequest struct {
	ParticipantA int64  `json:"participantA" binding:"required"`
	ParticipantB int64  `json:"participantB" binding:"required"`
	Reason       string `json:"reason" binding:"max=200"`
}
