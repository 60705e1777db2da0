package models

// FinalReport is the payload delivered to the external report sink once a
// session is finalized. Field names follow the evaluator's callback
// contract.
type FinalReport struct {
	SessionID              string       `json:"sessionId"`
	ScamDetected           bool         `json:"scamDetected"`
	TotalMessagesExchanged int          `json:"totalMessagesExchanged"`
	ExtractedIntelligence  Intelligence `json:"extractedIntelligence"`
	AgentNotes             string       `json:"agentNotes"`
}

// BuildFinalReport assembles the sink payload from a finalized session
func BuildFinalReport(s *Session) FinalReport {
	notes := s.FinalNotes
	if notes == "" {
		notes = "Conversation completed"
	}
	return FinalReport{
		SessionID:              s.ID,
		ScamDetected:           s.ScamConfirmed,
		TotalMessagesExchanged: s.MessageCount,
		ExtractedIntelligence:  s.Intelligence,
		AgentNotes:             notes,
	}
}
