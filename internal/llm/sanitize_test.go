package llm

import (
	"strings"
	"testing"
)

func TestCleanReplyEmpty(t *testing.T) {
	if got := CleanReply(""); got != "" {
		t.Errorf("CleanReply(\"\") = %q", got)
	}
}

func TestCleanReplyStripsQuotes(t *testing.T) {
	got := CleanReply(`"Okay, send it over"`)
	if got != "Okay, send it over" {
		t.Errorf("got %q", got)
	}
}

func TestCleanReplyKeepsTwoSentences(t *testing.T) {
	got := CleanReply("One moment please. Let me check. I will call you back.")
	if got != "One moment please. Let me check" {
		t.Errorf("got %q", got)
	}
}

func TestCleanReplyStripsSelfReferences(t *testing.T) {
	inputs := []string{
		"As an AI language model I should not say this but okay",
		"I am an AI assistant, here is the answer",
	}
	for _, in := range inputs {
		got := CleanReply(in)
		lower := strings.ToLower(got)
		for _, marker := range []string{"as an ai", "i am an ai", "language model"} {
			if strings.Contains(lower, marker) {
				t.Errorf("CleanReply(%q) = %q still contains %q", in, got, marker)
			}
		}
	}
}

func TestCleanReplyTruncatesLongText(t *testing.T) {
	long := strings.Repeat("word ", 100)
	got := CleanReply(long)

	if !strings.HasSuffix(got, "...") {
		t.Errorf("long reply not truncated with ellipsis: %q", got)
	}
	if len(got) > maxReplyLength+3 {
		t.Errorf("reply length %d exceeds cap", len(got))
	}
	// Truncation must land on a word boundary
	trimmed := strings.TrimSuffix(got, "...")
	if strings.HasSuffix(trimmed, " ") {
		t.Errorf("truncation left trailing space: %q", trimmed)
	}
}
