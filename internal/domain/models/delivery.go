package models

import (
	"time"

	"github.com/google/uuid"
)

// ReportDelivery records the outcome of one final-report delivery attempt.
// Deliveries are fire-and-forget from the request path; this record is
// what makes their outcome observable.
type ReportDelivery struct {
	ID             uuid.UUID `json:"id"`
	SessionID      string    `json:"session_id"`
	Success        bool      `json:"success"`
	StatusCode     int       `json:"status_code"`
	Error          string    `json:"error,omitempty"`
	DurationMillis int64     `json:"duration_ms"`
	AttemptedAt    time.Time `json:"attempted_at"`
}
