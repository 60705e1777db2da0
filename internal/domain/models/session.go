package models

import "time"

// Stage is the behavioral posture the agent adopts for the current turn
type Stage string

const (
	StageTrust   Stage = "trust"
	StageExtract Stage = "extract"
	StageStall   Stage = "stall"
)

// Session tracks one ongoing scam-engagement conversation. It is owned
// exclusively by the session store; callers hold a reference only for the
// duration of one orchestration turn, under the store's per-id lock.
type Session struct {
	ID            string
	History       []Message
	Stage         Stage
	ScamConfirmed bool
	Intelligence  Intelligence
	MessageCount  int
	FinalNotes    string
	CreatedAt     time.Time
}

// NewSession creates a fresh session in the trust stage
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:           id,
		Stage:        StageTrust,
		Intelligence: NewIntelligence(),
		CreatedAt:    now,
	}
}

// SessionSnapshot is the read-only view returned by the session endpoint
type SessionSnapshot struct {
	SessionID          string       `json:"sessionId"`
	ScamDetected       bool         `json:"scamDetected"`
	TotalMessages      int          `json:"totalMessages"`
	Stage              Stage        `json:"stage"`
	Intelligence       Intelligence `json:"extractedIntelligence"`
	ConversationLength int          `json:"conversationLength"`
}

// Snapshot captures the session's externally visible state
func (s *Session) Snapshot() SessionSnapshot {
	return SessionSnapshot{
		SessionID:          s.ID,
		ScamDetected:       s.ScamConfirmed,
		TotalMessages:      s.MessageCount,
		Stage:              s.Stage,
		Intelligence:       s.Intelligence,
		ConversationLength: len(s.History),
	}
}
