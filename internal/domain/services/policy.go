package services

import (
	"fmt"
	"strings"

	"honeypot-lab/internal/domain/models"
)

// CallbackPolicy decides when a session is worth reporting and renders the
// behavioral summary that accompanies the final report. Both methods are
// pure; at-most-once delivery is enforced by the orchestrator checking
// FinalNotes before submitting.
type CallbackPolicy struct {
	maxTurns int
}

// NewCallbackPolicy creates a policy with the configured turn ceiling
func NewCallbackPolicy(maxTurns int) *CallbackPolicy {
	return &CallbackPolicy{maxTurns: maxTurns}
}

// ShouldFinalize reports whether the session has earned a final report:
// a confirmed scam, at least 3 messages exchanged, and either some
// harvested intelligence or an exhausted turn budget.
func (p *CallbackPolicy) ShouldFinalize(s *models.Session) bool {
	return s.ScamConfirmed &&
		s.MessageCount >= 3 &&
		(!s.Intelligence.IsEmpty() || s.MessageCount >= p.maxTurns)
}

// BuildNotes renders a deterministic summary of the scammer's behavior:
// up to five observed tactics, the obtained intelligence categories with
// counts, and a persistence qualifier for long conversations.
func (p *CallbackPolicy) BuildNotes(s *models.Session) string {
	var notes []string

	if s.Intelligence.SuspiciousKeywords.Len() > 0 {
		keywords := s.Intelligence.SuspiciousKeywords.Values()
		if len(keywords) > 5 {
			keywords = keywords[:5]
		}
		notes = append(notes, fmt.Sprintf("Used tactics: %s", strings.Join(keywords, ", ")))
	}

	var requested []string
	if n := s.Intelligence.UPIIDs.Len(); n > 0 {
		requested = append(requested, fmt.Sprintf("UPI IDs (%d)", n))
	}
	if n := s.Intelligence.URLs.Len(); n > 0 {
		requested = append(requested, fmt.Sprintf("malicious links (%d)", n))
	}
	if n := s.Intelligence.BankAccounts.Len(); n > 0 {
		requested = append(requested, fmt.Sprintf("bank accounts (%d)", n))
	}
	if len(requested) > 0 {
		notes = append(notes, fmt.Sprintf("Requested: %s", strings.Join(requested, ", ")))
	}

	switch {
	case s.MessageCount > 7:
		notes = append(notes, fmt.Sprintf("Highly persistent (%d messages)", s.MessageCount))
	case s.MessageCount > 4:
		notes = append(notes, "Moderately persistent")
	}

	if len(notes) == 0 {
		return "Limited engagement, minimal intelligence extracted."
	}
	return strings.Join(notes, ". ") + "."
}
