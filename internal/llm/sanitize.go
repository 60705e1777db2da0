package llm

import (
	"regexp"
	"strings"
)

var (
	selfReferencePattern = regexp.MustCompile(`(?i)(as an ai|i am an ai|language model|i cannot|i can't|i'm an assistant)`)
	sentenceSplitPattern = regexp.MustCompile(`[.!?]+`)
)

// maxReplyLength caps agent replies so they read like text messages
const maxReplyLength = 250

// CleanReply sanitizes raw model output for use as an agent reply: AI
// self-references are stripped, wrapping quotes removed, at most the first
// two sentences kept, and the result truncated at a word boundary.
func CleanReply(text string) string {
	if text == "" {
		return ""
	}

	text = selfReferencePattern.ReplaceAllString(text, "")
	text = strings.Trim(strings.TrimSpace(text), `"'`+"`")

	sentences := sentenceSplitPattern.Split(text, -1)
	kept := make([]string, 0, 2)
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		kept = append(kept, s)
		if len(kept) == 2 {
			break
		}
	}
	text = strings.Join(kept, ". ")

	if len(text) > maxReplyLength {
		cut := text[:maxReplyLength]
		if idx := strings.LastIndex(cut, " "); idx > 0 {
			cut = cut[:idx]
		}
		text = cut + "..."
	}

	return text
}
