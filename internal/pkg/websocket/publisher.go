package websocket

import "github.com/jumpyouth/checkin/internal/app/models"

// Publisher turns check-in activity into live feed events
type Publisher struct {
	hub *Hub
}

// NewPublisher creates a Publisher broadcasting through hub
func NewPublisher(hub *Hub) *Publisher {
	return &Publisher{hub: hub}
}

// AttendanceUpdated announces a single attendance toggle
func (p *Publisher) AttendanceUpdated(dayID, participantID int64, present, created bool) {
	p.hub.Publish(&Event{
		Type:       EventAttendanceUpdated,
		EventDayID: dayID,
		Data: map[string]interface{}{
			"participantId": participantID,
			"present":       present,
			"created":       created,
		},
	})
}

// CheckinSubmitted announces a full roster submission
func (p *Publisher) CheckinSubmitted(dayID int64, present, total int) {
	p.hub.Publish(&Event{
		Type:       EventCheckinSubmitted,
		EventDayID: dayID,
		Data: map[string]interface{}{
			"present": present,
			"total":   total,
		},
	})
}

// HeadcountUpdated announces a new auditorium or visitor count
func (p *Publisher) HeadcountUpdated(dayID int64, kind models.HeadcountKind, quantity int) {
	p.hub.Publish(&Event{
		Type:       EventHeadcountUpdated,
		EventDayID: dayID,
		Data: map[string]interface{}{
			"kind":     kind,
			"quantity": quantity,
		},
	})
}
