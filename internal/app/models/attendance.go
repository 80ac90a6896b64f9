package models

// AttendanceRecord is a presence fact for one participant on one day.
type AttendanceRecord struct {
	ID            int64 `json:"id"`
	ParticipantID int64 `json:"participantId"`
	EventDayID    int64 `json:"eventDayId"`
	Present       bool  `json:"present"`
}

// RosterEntry is a participant as listed on a check-in day.
type RosterEntry struct {
	Participant
	Present bool `json:"present"`
}

// PresenceTally pairs a participant with the all-time number of days
// they were marked present.
type PresenceTally struct {
	Participant
	PresentCount int `json:"presentCount"`
}
