package models

import "time"

// Participant is a registered youth ("adolescente").
type Participant struct {
	ID            int64      `json:"id"`
	GivenName     string     `json:"givenName"`
	FamilyName    string     `json:"familyName"`
	BirthDate     time.Time  `json:"birthDate"`
	Gender        Gender     `json:"gender"`
	Photo         string     `json:"photo,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	GuardianName  string     `json:"guardianName,omitempty"`
	GuardianPhone string     `json:"guardianPhone,omitempty"`
	CohortID      *int64     `json:"cohortId,omitempty"`
	CohortName    string     `json:"cohortName,omitempty"`
	ImperioID     *int64     `json:"imperioId,omitempty"`
	ImperioName   string     `json:"imperioName,omitempty"`
	Year          int        `json:"year"`
	StartDate     *time.Time `json:"startDate,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// FullName joins given and family name
func (p Participant) FullName() string {
	return p.GivenName + " " + p.FamilyName
}

// HasCohort reports whether the participant belongs to a cohort
func (p Participant) HasCohort() bool {
	return p.CohortID != nil
}

// HasImperio reports whether the participant belongs to an império
func (p Participant) HasImperio() bool {
	return p.ImperioID != nil
}
