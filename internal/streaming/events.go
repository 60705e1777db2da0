package streaming

import (
	"time"

	"github.com/google/uuid"

	"honeypot-lab/internal/domain/models"
)

// EventType represents the type of honeypot event
type EventType string

const (
	EventTypeScamConfirmed   EventType = "scam_confirmed"
	EventTypeReportDelivered EventType = "report_delivered"
)

// SessionEvent represents a real-time honeypot session event
type SessionEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`

	// Detection details
	Method     string  `json:"method,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`

	// Report delivery details
	Delivered         bool `json:"delivered,omitempty"`
	TotalMessages     int  `json:"total_messages,omitempty"`
	IntelligenceItems int  `json:"intelligence_items,omitempty"`
}

// NewScamConfirmedEvent creates an event for a session crossing the scam gate
func NewScamConfirmedEvent(sessionID, method string, confidence float64) *SessionEvent {
	return &SessionEvent{
		ID:         uuid.New().String(),
		Type:       EventTypeScamConfirmed,
		Timestamp:  time.Now(),
		SessionID:  sessionID,
		Method:     method,
		Confidence: confidence,
	}
}

// NewReportDeliveredEvent creates an event for a final report delivery attempt
func NewReportDeliveredEvent(report models.FinalReport, success bool) *SessionEvent {
	return &SessionEvent{
		ID:                uuid.New().String(),
		Type:              EventTypeReportDelivered,
		Timestamp:         time.Now(),
		SessionID:         report.SessionID,
		Delivered:         success,
		TotalMessages:     report.TotalMessagesExchanged,
		IntelligenceItems: report.ExtractedIntelligence.Total(),
	}
}
