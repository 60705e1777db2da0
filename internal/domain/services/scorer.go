package services

import (
	"context"
	"fmt"
	"strings"

	"honeypot-lab/internal/config"
	"honeypot-lab/internal/domain/models"
	"honeypot-lab/internal/llm"
	"honeypot-lab/pkg/logger"
)

// ScoreMethod records which detection tier produced a verdict
type ScoreMethod string

const (
	MethodHeuristic    ScoreMethod = "heuristic"
	MethodClassifier   ScoreMethod = "classifier"
	MethodHeuristicLow ScoreMethod = "heuristic_low"
	MethodNone         ScoreMethod = "none"
)

// ScamScore is the scorer's decision for one message
type ScamScore struct {
	IsScam          bool
	Confidence      float64
	Method          ScoreMethod
	MatchedKeywords models.StringSet
}

// scamKeywords maps indicator phrases to weights. Matching is substring
// containment on lower-cased text, not word-boundary aware: "pin" matches
// inside "pine". That is the intended semantics; the false-positive risk
// is accepted.
var scamKeywords = map[string]int{
	// Authentication & verification
	"otp":                   5,
	"one time password":     5,
	"kyc":                   4,
	"verify your account":   4,
	"verify immediately":    5,
	"verification required": 4,

	// Urgency & threats
	"urgent":                 3,
	"immediately":            3,
	"account blocked":        5,
	"account suspended":      5,
	"account will be blocked": 5,
	"limited time":           3,
	"expires today":          4,
	"last chance":            4,

	// Authority impersonation
	"bank officer":        4,
	"customer care":       3,
	"government official": 4,
	"tax department":      4,
	"police":              4,

	// Financial bait
	"refund":   3,
	"cashback": 2,
	"prize":    3,
	"lottery":  4,
	"won":      2,
	"claim":    2,

	// Malicious actions
	"click the link": 5,
	"install app":    5,
	"anydesk":        5,
	"teamviewer":     5,
	"remote access":  5,
	"screen share":   4,
	"download":       3,

	// Payment & banking
	"upi":         3,
	"bank account": 2,
	"credit card": 2,
	"debit card":  2,
	"cvv":         5,
	"pin":         4,
	"password":    4,
	"net banking": 3,
}

// heuristicScoreCap normalizes raw keyword scores into confidences
const heuristicScoreCap = 15.0

// ScamScorer is the two-tier scam gate: a fast weighted-keyword pass that
// short-circuits on strong signal, escalating borderline text to an
// external classifier. It is only consulted while a session remains
// unconfirmed; the orchestrator bypasses it entirely afterwards.
type ScamScorer struct {
	heuristicThreshold  int
	classifierThreshold float64
	classifier          llm.Classifier
	logger              *logger.Logger
}

// NewScamScorer creates a scorer with the given thresholds and classifier
func NewScamScorer(cfg config.DetectionConfig, classifier llm.Classifier, log *logger.Logger) *ScamScorer {
	return &ScamScorer{
		heuristicThreshold:  cfg.HeuristicThreshold,
		classifierThreshold: cfg.ClassifierThreshold,
		classifier:          classifier,
		logger:              log.WithComponent("scam-scorer"),
	}
}

// heuristicScore runs the weighted-keyword pass over text
func heuristicScore(text string) (int, models.StringSet) {
	score := 0
	matched := models.NewStringSet()
	lower := strings.ToLower(text)

	for keyword, weight := range scamKeywords {
		if strings.Contains(lower, keyword) {
			score += weight
			matched.Add(keyword)
		}
	}
	return score, matched
}

// Score decides whether text is a scam attempt. The heuristic tier
// short-circuits at the configured threshold without touching the
// classifier; otherwise the last 5 prior turns plus the current message
// form the classifier's context. A failing classifier is treated as
// Uncertain and never surfaces to the caller.
func (s *ScamScorer) Score(ctx context.Context, text string, recentHistory []models.Message) ScamScore {
	score, matched := heuristicScore(text)
	s.logger.Debug().Int("score", score).Strs("matched", matched.Values()).Msg("heuristic pass")

	if score >= s.heuristicThreshold {
		confidence := float64(score) / heuristicScoreCap
		if confidence > 0.95 {
			confidence = 0.95
		}
		s.logger.Info().Int("score", score).Strs("keywords", matched.Values()).Msg("scam detected via heuristics")
		return ScamScore{
			IsScam:          true,
			Confidence:      confidence,
			Method:          MethodHeuristic,
			MatchedKeywords: matched,
		}
	}

	result, err := s.classifier.Classify(ctx, s.buildContext(text, recentHistory))
	if err != nil {
		s.logger.Warn().Err(err).Msg("classifier call failed, treating as uncertain")
		result = llm.Uncertain("classifier unavailable")
	}

	if result.Label == llm.LabelScam && result.Confidence >= s.classifierThreshold {
		s.logger.Info().Float64("confidence", result.Confidence).Str("reason", result.Reason).Msg("scam detected via classifier")
		return ScamScore{
			IsScam:          true,
			Confidence:      result.Confidence,
			Method:          MethodClassifier,
			MatchedKeywords: matched,
		}
	}

	if score > 0 {
		return ScamScore{
			Confidence:      float64(score) / heuristicScoreCap,
			Method:          MethodHeuristicLow,
			MatchedKeywords: matched,
		}
	}

	return ScamScore{Method: MethodNone, MatchedKeywords: matched}
}

// buildContext assembles the bounded classifier window: the most recent 5
// prior turns in chronological order, then the current message.
func (s *ScamScorer) buildContext(text string, recentHistory []models.Message) string {
	if len(recentHistory) == 0 {
		return text
	}

	start := len(recentHistory) - 5
	if start < 0 {
		start = 0
	}

	var b strings.Builder
	for _, msg := range recentHistory[start:] {
		fmt.Fprintf(&b, "%s: %s\n", msg.Sender, msg.Text)
	}
	fmt.Fprintf(&b, "Current: %s", text)
	return b.String()
}
