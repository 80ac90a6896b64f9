package models

import "time"

// HeadcountKind distinguishes the two per-day headcounts.
type HeadcountKind string

const (
	HeadcountAuditorium HeadcountKind = "auditorium"
	HeadcountVisitors   HeadcountKind = "visitors"
)

// Headcount is a staff-entered count for a day. There is at most one of
// each kind per day.
type Headcount struct {
	ID             int64         `json:"id"`
	Kind           HeadcountKind `json:"kind"`
	EventDayID     int64         `json:"eventDayId"`
	EventDate      time.Time     `json:"eventDate"`
	Quantity       int           `json:"quantity"`
	RecordedBy     *int64        `json:"recordedBy,omitempty"`
	RecordedByName string        `json:"recordedByName,omitempty"`
	RecordedAt     time.Time     `json:"recordedAt"`
}
