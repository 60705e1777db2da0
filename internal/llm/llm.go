package llm

import "context"

// Label is the classifier's verdict on a piece of text
type Label string

const (
	LabelScam       Label = "Scam"
	LabelLegitimate Label = "Legitimate"
	LabelUncertain  Label = "Uncertain"
)

// Classification is the structured result of a fraud-classification call
type Classification struct {
	Label      Label   `json:"label"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// Uncertain is the safe default used whenever the backing model fails,
// times out, or returns output that cannot be parsed.
func Uncertain(reason string) Classification {
	return Classification{Label: LabelUncertain, Confidence: 0, Reason: reason}
}

// Classifier decides whether text is a scam attempt. Implementations must
// convert malformed or missing model output into an Uncertain result
// rather than returning an error for it; errors are reserved for callers
// that want to log transport failures.
type Classifier interface {
	Classify(ctx context.Context, text string) (Classification, error)
}

// ReplyGenerator produces the agent persona's next reply from an
// assembled prompt
type ReplyGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
