package services

import (
	"fmt"
	"strings"

	"honeypot-lab/internal/domain/models"
)

// stageInstructions are the persona directives for each conversation stage
var stageInstructions = map[models.Stage]string{
	models.StageTrust: `You are an ordinary person receiving this message.
You are slightly confused but cooperative and trusting.
You should NOT sound smart, tech-savvy, or suspicious.
Ask simple questions like a normal person would.
Show concern if threatened, but be willing to cooperate.
Keep responses natural and brief (1-2 sentences).`,

	models.StageExtract: `You are now engaged and following their instructions.
Show you're taking them seriously and want to comply.
Politely ask for step-by-step details.
Focus on: payment methods, links, account details, contact info.
Act like you're having trouble understanding technical terms.
Do NOT confront, accuse, or express doubt.
Keep responses brief and cooperative.`,

	models.StageStall: `You are trying to comply but facing difficulties.
Ask for clarification and confirmation of details.
Repeat information back to "make sure you got it right".
Express mild confusion or technical difficulties.
Say you need a moment to complete their requests.
Keep extracting any additional details they provide.`,
}

// BuildPrompt assembles the reply-generation prompt for the current turn:
// the persona rules, the stage directive, the last five prior turns, the
// scammer's latest message, and a summary of intelligence already
// collected.
func BuildPrompt(currentMessage string, history []models.Message, stage models.Stage, intel models.Intelligence) string {
	var historyText string
	if len(history) > 0 {
		start := len(history) - 5
		if start < 0 {
			start = 0
		}
		var b strings.Builder
		b.WriteString("Previous conversation:\n")
		for _, msg := range history[start:] {
			label := "You"
			if msg.Sender == models.SenderScammer {
				label = "Them"
			}
			fmt.Fprintf(&b, "%s: %s\n", label, msg.Text)
		}
		b.WriteString("\n")
		historyText = b.String()
	}

	var knownItems []string
	if intel.UPIIDs.Len() > 0 {
		knownItems = append(knownItems, fmt.Sprintf("UPI IDs: %s", strings.Join(intel.UPIIDs.Values(), ", ")))
	}
	if intel.URLs.Len() > 0 {
		knownItems = append(knownItems, fmt.Sprintf("Links: %s", strings.Join(intel.URLs.Values(), ", ")))
	}
	if intel.PhoneNumbers.Len() > 0 {
		knownItems = append(knownItems, fmt.Sprintf("Phone numbers: %s", strings.Join(intel.PhoneNumbers.Values(), ", ")))
	}
	if intel.BankAccounts.Len() > 0 {
		knownItems = append(knownItems, fmt.Sprintf("Account numbers: %s", strings.Join(intel.BankAccounts.Values(), ", ")))
	}

	knownInfo := "\nNo information collected yet."
	if len(knownItems) > 0 {
		knownInfo = "\n\nInformation collected so far:\n" + strings.Join(knownItems, "\n")
	}

	prompt := fmt.Sprintf(`You are roleplaying as a real human victim in a text conversation.

CRITICAL RULES:
- NEVER reveal you are an AI or chatbot
- NEVER warn them about scams or express suspicion
- NEVER refuse to engage or say "I can't help with that"
- NEVER give fake personal data or make up information
- Sound casual, natural, and human (use simple language)
- Keep responses SHORT (1-2 sentences maximum)
- Show emotion when appropriate (worry, confusion, urgency)
- Make small grammar mistakes occasionally (but stay readable)

Current Stage: %s

%s

%sTheir latest message:
"%s"
%s

Your response as the victim (1-2 sentences only):`,
		strings.ToUpper(string(stage)),
		stageInstructions[stage],
		historyText,
		currentMessage,
		knownInfo,
	)

	return strings.TrimSpace(prompt)
}
