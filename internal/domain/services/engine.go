package services

import (
	"context"

	"honeypot-lab/internal/domain/models"
	"honeypot-lab/internal/llm"
	"honeypot-lab/internal/session"
	"honeypot-lab/pkg/logger"
)

// neutralReply is returned for messages the gate does not confirm as a
// scam: a polite acknowledgment with no engagement.
const neutralReply = "Thank you for the message."

// fallbackReply keeps the persona alive when reply generation fails
const fallbackReply = "Sorry, I'm not understanding. Can you explain again?"

// HandleRequest is one inbound scammer message plus optional prior context
// supplied by the caller.
type HandleRequest struct {
	SessionID string
	Message   models.Message
	// History is the caller-supplied prior conversation, used to widen
	// the classifier's context window beyond what the store has seen.
	History []models.Message
}

// Engine orchestrates one conversation turn: gate, extract, merge, stage,
// reply, finalize. It is the only component with side effects beyond
// memory — it calls the reply generator and hands finished sessions to
// the report sink.
type Engine struct {
	sessions  *session.Store
	extractor *EntityExtractor
	scorer    *ScamScorer
	policy    *CallbackPolicy
	generator llm.ReplyGenerator
	sink      ReportSink
	events    EventPublisher
	maxTurns  int
	logger    *logger.Logger
}

// EngineDeps bundles the engine's collaborators
type EngineDeps struct {
	Sessions  *session.Store
	Extractor *EntityExtractor
	Scorer    *ScamScorer
	Policy    *CallbackPolicy
	Generator llm.ReplyGenerator
	Sink      ReportSink
	Events    EventPublisher
	MaxTurns  int
	Logger    *logger.Logger
}

// NewEngine creates the orchestrator
func NewEngine(deps EngineDeps) *Engine {
	return &Engine{
		sessions:  deps.Sessions,
		extractor: deps.Extractor,
		scorer:    deps.Scorer,
		policy:    deps.Policy,
		generator: deps.Generator,
		sink:      deps.Sink,
		events:    deps.Events,
		maxTurns:  deps.MaxTurns,
		logger:    deps.Logger.WithComponent("engine"),
	}
}

// HandleMessage processes one inbound message and returns the agent's
// reply. The whole turn runs under the session's per-id lock, so
// concurrent requests on the same session serialize. Collaborator
// failures degrade to safe defaults; the only errors surfaced are ones
// the transport should turn into a 500.
func (e *Engine) HandleMessage(ctx context.Context, req HandleRequest) (string, error) {
	log := e.logger.WithSessionID(req.SessionID)

	unlock := e.sessions.Lock(req.SessionID)
	defer unlock()

	sess := e.sessions.GetOrCreate(req.SessionID)
	e.sessions.Append(sess, req.Message)

	// The gate runs only while the session is unconfirmed; once a scam is
	// confirmed the session stays confirmed for its whole life.
	if !sess.ScamConfirmed {
		score := e.scorer.Score(ctx, req.Message.Text, req.History)
		if score.IsScam {
			sess.ScamConfirmed = true
			sess.Intelligence.SuspiciousKeywords = sess.Intelligence.SuspiciousKeywords.Union(score.MatchedKeywords)
			log.Info().
				Str("method", string(score.Method)).
				Float64("confidence", score.Confidence).
				Msg("scam confirmed")
			if e.events != nil {
				e.events.ScamConfirmed(ctx, sess.ID, score.Method, score.Confidence)
			}
		}
	}

	if !sess.ScamConfirmed {
		log.Debug().Msg("no scam detected, returning neutral reply")
		return neutralReply, nil
	}

	// Harvest the current message and fold it into the session
	extracted := e.extractor.Extract(req.Message.Text)
	e.sessions.MergeIntelligence(sess, extracted)

	sess.Stage = NextStage(sess.MessageCount, sess.Intelligence)

	prompt := BuildPrompt(req.Message.Text, historyBefore(sess.History), sess.Stage, sess.Intelligence)
	reply := e.generateReply(ctx, prompt, log)

	e.sessions.Append(sess, models.Message{
		Sender:          models.SenderAgent,
		Text:            reply,
		TimestampMillis: req.Message.TimestampMillis + 1000,
	})

	// Diagnostic pass over our own reply: the agent must never leak
	// harvestable artifacts of its own
	if leaked := e.extractor.Extract(reply); !leaked.IsEmpty() {
		log.Warn().Int("entities", leaked.Total()).Msg("agent reply contains extractable artifacts")
	}

	if e.policy.ShouldFinalize(sess) && sess.FinalNotes == "" {
		e.finalize(sess, log)
	}

	// Exhausted turn budget forces a report for confirmed sessions even
	// when the policy has not fired yet
	if sess.MessageCount >= e.maxTurns && sess.ScamConfirmed && sess.FinalNotes == "" {
		log.Info().Int("messages", sess.MessageCount).Msg("max turns reached, forcing finalize")
		e.finalize(sess, log)
	}

	return reply, nil
}

// finalize stamps the session's notes and hands the report to the sink.
// FinalNotes being set is the at-most-once guard: callers check it before
// invoking finalize, and it is never cleared.
func (e *Engine) finalize(sess *models.Session, log *logger.Logger) {
	sess.FinalNotes = e.policy.BuildNotes(sess)
	report := models.BuildFinalReport(sess)
	e.sink.Submit(report)
	log.Info().Str("notes", sess.FinalNotes).Msg("session finalized, report submitted")
}

func (e *Engine) generateReply(ctx context.Context, prompt string, log *logger.Logger) string {
	reply, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		log.Error().Err(err).Msg("reply generation failed, using fallback")
		return fallbackReply
	}
	if len(reply) < 3 {
		log.Warn().Msg("reply generation returned empty output, using fallback")
		return fallbackReply
	}
	return reply
}

// historyBefore returns the conversation excluding the just-appended
// current message
func historyBefore(history []models.Message) []models.Message {
	if len(history) == 0 {
		return nil
	}
	return history[:len(history)-1]
}
