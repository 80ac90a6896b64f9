package dto

import (
	"github.com/jumpyouth/checkin/internal/app/models"
	"github.com/jumpyouth/checkin/internal/app/models/dto/enums"
)

// RosterQuery filters a check-in roster
type RosterQuery struct {
	Status enums.RosterStatus
	Search string
	Page   int
}

// RosterResponse is one page of a day's check-in roster
type RosterResponse struct {
	Day          models.EventDay      `json:"day"`
	Items        []models.RosterEntry `json:"items"`
	Pagination   PaginationInfo       `json:"pagination"`
	PresentCount int                  `json:"presentCount"`
	ListedCount  int                  `json:"listedCount"`
	Auditorium   *models.Headcount    `json:"auditorium,omitempty"`
	Visitors     *models.Headcount    `json:"visitors,omitempty"`
}

// SubmitCheckinRequest replaces the day's attendance for the filtered roster
type SubmitCheckinRequest struct {
	PresentIDs []int64 `json:"presentIds"`
	Status     string  `json:"status"`
	Search     string  `json:"search"`
}

// CheckinResult reports the outcome of a check-in submission
type CheckinResult struct {
	DayID   int64 `json:"dayId"`
	Deleted int64 `json:"deleted"`
	Created int   `json:"created"`
	Present int   `json:"present"`
}

// AttendanceUpdateRequest toggles a single attendance record
type AttendanceUpdateRequest struct {
	ParticipantID *int64 `json:"participantId" binding:"required"`
	EventDayID    *int64 `json:"eventDayId" binding:"required"`
	Present       *bool  `json:"present" binding:"required"`
}

// AttendanceUpdateResponse reports a single attendance upsert
type AttendanceUpdateResponse struct {
	ParticipantID int64 `json:"participantId"`
	EventDayID    int64 `json:"eventDayId"`
	Present       bool  `json:"present"`
	Created       bool  `json:"created"`
}

// HeadcountRequest records an auditorium or visitor count
type HeadcountRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// HeadcountResponse reports a headcount upsert
type HeadcountResponse struct {
	Headcount models.Headcount `json:"headcount"`
	Created   bool             `json:"created"`
}

// VIPEntry is a present participant without a cohort
type VIPEntry struct {
	models.Participant
	PresentCount    int  `json:"presentCount"`
	FirstAttendance bool `json:"firstAttendance"`
}

// VIPReport classifies a day's present participants without a cohort
type VIPReport struct {
	Day            models.EventDay `json:"day"`
	Threshold      int             `json:"threshold"`
	Candidates     []VIPEntry      `json:"candidates"`
	NeedsPlacement []VIPEntry      `json:"needsPlacement"`
}

// EventDayRequest creates an event day
type EventDayRequest struct {
	Date  string `json:"date" binding:"required"`
	Title string `json:"title" binding:"max=100"`
}

// EventDayListResponse lists the year's event days with attendance totals
type EventDayListResponse struct {
	Items          []models.EventDaySummary `json:"items"`
	AveragePresent float64                  `json:"averagePresent"`
}
