package dto

import (
	"time"

	"github.com/jumpyouth/checkin/internal/app/models"
)

// DashboardFilter narrows the qualifying events. Day takes precedence over
// the From/To range.
type DashboardFilter struct {
	Day  *time.Time
	From *time.Time
	To   *time.Time
}

// DashboardTotals are the year's entity counts
type DashboardTotals struct {
	Participants int `json:"participants"`
	Cohorts      int `json:"cohorts"`
	Imperios     int `json:"imperios"`
	EventDays    int `json:"eventDays"`
}

// GenderBucket is one bar of the gender histogram
type GenderBucket struct {
	Gender models.Gender `json:"gender"`
	Label  string        `json:"label"`
	Count  int           `json:"count"`
}

// GroupRanking is a cohort or império ranked by average attendance
type GroupRanking struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	TotalPresent   int     `json:"totalPresent"`
	AveragePresent float64 `json:"averagePresent"`
}

// TimelinePoint is the attendance of one event
type TimelinePoint struct {
	EventDayID int64     `json:"eventDayId"`
	Date       time.Time `json:"date"`
	Label      string    `json:"label"`
	Title      string    `json:"title,omitempty"`
	Present    int       `json:"present"`
	Total      int       `json:"total"`
	Percent    float64   `json:"percent"`
}

// HeadcountStats summarizes a headcount kind over the qualifying events
type HeadcountStats struct {
	Average float64           `json:"average"`
	Latest  *models.Headcount `json:"latest,omitempty"`
}

// Dashboard is the statistics page payload
type Dashboard struct {
	Year              int             `json:"year"`
	Totals            DashboardTotals `json:"totals"`
	QualifyingEvents  int             `json:"qualifyingEvents"`
	AverageAttendance float64         `json:"averageAttendance"`
	Gender            []GenderBucket  `json:"gender"`
	TopCohorts        []GroupRanking  `json:"topCohorts"`
	Imperios          []GroupRanking  `json:"imperios"`
	Timeline          []TimelinePoint `json:"timeline"`
	LastEvent         *TimelinePoint  `json:"lastEvent,omitempty"`
	Auditorium        HeadcountStats  `json:"auditorium"`
	Visitors          HeadcountStats  `json:"visitors"`
}
