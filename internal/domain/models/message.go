package models

// Sender identifies which side of the conversation produced a message
type Sender string

const (
	SenderScammer Sender = "scammer"
	SenderAgent   Sender = "agent"
)

// Message is a single conversation turn. Immutable once created.
type Message struct {
	Sender          Sender `json:"sender"`
	Text            string `json:"text"`
	TimestampMillis int64  `json:"timestamp"`
}
