package models

import "time"

// EventDay is one calendar occurrence of the tracked activity.
type EventDay struct {
	ID        int64     `json:"id"`
	Date      time.Time `json:"date"`
	Title     string    `json:"title,omitempty"`
	Year      int       `json:"year"`
	CreatedAt time.Time `json:"createdAt"`
}

// EventDaySummary is an EventDay with its attendance totals.
type EventDaySummary struct {
	EventDay
	Present int `json:"present"`
	Total   int `json:"total"`
}
