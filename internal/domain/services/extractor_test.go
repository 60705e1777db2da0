package services

import (
	"testing"

	"honeypot-lab/pkg/logger"
)

func TestExtractEmptyInput(t *testing.T) {
	ee := NewEntityExtractor(logger.Nop())
	intel := ee.Extract("")
	if !intel.IsEmpty() {
		t.Errorf("empty input produced intelligence: %+v", intel)
	}
}

func TestExtractUPIAndURL(t *testing.T) {
	ee := NewEntityExtractor(logger.Nop())
	intel := ee.Extract("Send money to scammer@paytm or visit http://fake-refund.example/claim now")

	if !intel.UPIIDs.Contains("scammer@paytm") {
		t.Errorf("UPI id not extracted, got %v", intel.UPIIDs.Values())
	}
	if !intel.URLs.Contains("http://fake-refund.example/claim") {
		t.Errorf("URL not extracted, got %v", intel.URLs.Values())
	}
}

func TestExtractPhoneNotDuplicatedAsAccount(t *testing.T) {
	ee := NewEntityExtractor(logger.Nop())
	intel := ee.Extract("Call me on 9876543210 and transfer to account 123456789012")

	if !intel.PhoneNumbers.Contains("9876543210") {
		t.Fatalf("phone not extracted, got %v", intel.PhoneNumbers.Values())
	}
	if intel.BankAccounts.Contains("9876543210") {
		t.Errorf("phone also classified as bank account: %v", intel.BankAccounts.Values())
	}
	if !intel.BankAccounts.Contains("123456789012") {
		t.Errorf("account number not extracted, got %v", intel.BankAccounts.Values())
	}
}

func TestExtractIFSCIntoBankAccounts(t *testing.T) {
	ee := NewEntityExtractor(logger.Nop())
	intel := ee.Extract("Branch code is HDFC0001234")

	if !intel.BankAccounts.Contains("HDFC0001234") {
		t.Errorf("IFSC code not extracted into bank accounts, got %v", intel.BankAccounts.Values())
	}
}

func TestExtractEmail(t *testing.T) {
	ee := NewEntityExtractor(logger.Nop())
	intel := ee.Extract("Forward proofs to verify@fraud-desk.example.com please")

	if !intel.Emails.Contains("verify@fraud-desk.example.com") {
		t.Errorf("email not extracted, got %v", intel.Emails.Values())
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	ee := NewEntityExtractor(logger.Nop())
	text := "Pay scammer@okaxis, call 9123456789, see https://bad.example"

	first := ee.Extract(text)
	second := ee.Extract(text)
	if !first.Equal(second) {
		t.Errorf("repeated extraction differs: %+v vs %+v", first, second)
	}
}
