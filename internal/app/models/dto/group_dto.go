package dto

import "github.com/jumpyouth/checkin/internal/app/models"

// CohortRequest creates or updates a cohort
type CohortRequest struct {
	Name string `json:"name" binding:"required,max=100"`
	Tag  string `json:"tag" binding:"max=50"`
}

// ImperioRequest creates or updates an império
type ImperioRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// CohortDetailResponse is a cohort with its members
type CohortDetailResponse struct {
	Cohort  models.Cohort        `json:"cohort"`
	Members []models.Participant `json:"members"`
}

// ImperioDetailResponse is an império with its members
type ImperioDetailResponse struct {
	Imperio models.Imperio       `json:"imperio"`
	Members []models.Participant `json:"members"`
}
