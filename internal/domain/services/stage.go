package services

import "honeypot-lab/internal/domain/models"

// NextStage derives the conversation stage from how far the engagement has
// progressed. Pure and total; the session's stage is simply this
// function's output recomputed every turn.
//
// The first two messages build trust. After that the agent works on
// extraction until both the conversation is past six messages and at
// least one critical category (payment handle, URL, bank account) has
// been obtained, at which point it stalls to keep the scammer engaged.
func NextStage(messageCount int, intel models.Intelligence) models.Stage {
	switch {
	case messageCount <= 2:
		return models.StageTrust
	case messageCount <= 6 || !intel.HasCritical():
		return models.StageExtract
	default:
		return models.StageStall
	}
}
