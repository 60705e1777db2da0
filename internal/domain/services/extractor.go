package services

import (
	"regexp"

	"honeypot-lab/internal/domain/models"
	"honeypot-lab/pkg/logger"
)

// EntityExtractor pulls scammer-identifying artifacts out of message text
// using regex patterns: UPI-style payment handles, URLs, IFSC routing
// codes, mobile numbers, candidate bank account numbers, and emails.
type EntityExtractor struct {
	upiPattern     *regexp.Regexp
	urlPattern     *regexp.Regexp
	ifscPattern    *regexp.Regexp
	phonePattern   *regexp.Regexp
	accountPattern *regexp.Regexp
	emailPattern   *regexp.Regexp
	logger         *logger.Logger
}

// NewEntityExtractor compiles the extraction patterns
func NewEntityExtractor(log *logger.Logger) *EntityExtractor {
	return &EntityExtractor{
		upiPattern:  regexp.MustCompile(`\b[a-zA-Z0-9.\-_]{2,}@[a-zA-Z]{2,}\b`),
		urlPattern:  regexp.MustCompile(`https?://[^\s]+`),
		ifscPattern: regexp.MustCompile(`\b[A-Z]{4}0[A-Z0-9]{6}\b`),
		// Local mobile convention: 10 digits starting 6-9
		phonePattern:   regexp.MustCompile(`\b[6-9]\d{9}\b`),
		accountPattern: regexp.MustCompile(`\b\d{9,18}\b`),
		emailPattern:   regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		logger:         log.WithComponent("entity-extractor"),
	}
}

// Extract returns the intelligence found in text. Total: any input,
// including empty, yields a well-formed (possibly all-empty) record.
// The agent's confirmed-scam keyword hits are merged in elsewhere; the
// SuspiciousKeywords category is always empty here.
func (ee *EntityExtractor) Extract(text string) models.Intelligence {
	intel := models.NewIntelligence()
	if text == "" {
		return intel
	}

	for _, m := range ee.upiPattern.FindAllString(text, -1) {
		intel.UPIIDs.Add(m)
	}
	for _, m := range ee.urlPattern.FindAllString(text, -1) {
		intel.URLs.Add(m)
	}
	for _, m := range ee.emailPattern.FindAllString(text, -1) {
		intel.Emails.Add(m)
	}
	// IFSC routing codes identify a bank branch, so they travel in the
	// bank-accounts category
	for _, m := range ee.ifscPattern.FindAllString(text, -1) {
		intel.BankAccounts.Add(m)
	}

	// Phones must be classified before account numbers: every 10-digit
	// mobile number also matches the 9-18 digit account pattern, and a
	// value claimed as a phone must never reappear as an account.
	for _, m := range ee.phonePattern.FindAllString(text, -1) {
		intel.PhoneNumbers.Add(m)
	}
	for _, m := range ee.accountPattern.FindAllString(text, -1) {
		if intel.PhoneNumbers.Contains(m) {
			continue
		}
		intel.BankAccounts.Add(m)
	}

	if total := intel.Total(); total > 0 {
		ee.logger.Info().Int("entities", total).Msg("extracted intelligence from message")
	}

	return intel
}
