package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"honeypot-lab/internal/domain/models"
	"honeypot-lab/internal/llm"
	"honeypot-lab/internal/session"
	"honeypot-lab/pkg/logger"
)

type stubGenerator struct {
	reply string
	err   error
	calls int
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

type stubSink struct {
	mu      sync.Mutex
	reports []models.FinalReport
}

func (s *stubSink) Submit(report models.FinalReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, report)
}

func (s *stubSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}

func newTestEngine(classifier *stubClassifier, gen *stubGenerator, sink *stubSink) *Engine {
	log := logger.Nop()
	return NewEngine(EngineDeps{
		Sessions:  session.New(30*time.Minute, log),
		Extractor: NewEntityExtractor(log),
		Scorer:    NewScamScorer(detectionConfig(), classifier, log),
		Policy:    NewCallbackPolicy(10),
		Generator: gen,
		Sink:      sink,
		MaxTurns:  10,
		Logger:    log,
	})
}

func sendTurn(t *testing.T, e *Engine, sessionID, text string) string {
	t.Helper()
	reply, err := e.HandleMessage(context.Background(), HandleRequest{
		SessionID: sessionID,
		Message: models.Message{
			Sender:          models.SenderScammer,
			Text:            text,
			TimestampMillis: time.Now().UnixMilli(),
		},
	})
	if err != nil {
		t.Fatalf("HandleMessage failed: %v", err)
	}
	return reply
}

func TestBenignMessageGetsNeutralReply(t *testing.T) {
	classifier := &stubClassifier{result: llm.Classification{Label: llm.LabelLegitimate, Confidence: 0.9}}
	gen := &stubGenerator{reply: "Oh okay, tell me more?"}
	sink := &stubSink{}
	e := newTestEngine(classifier, gen, sink)

	reply := sendTurn(t, e, "benign-1", "Hi, are we still meeting for lunch tomorrow?")

	if reply != neutralReply {
		t.Errorf("reply = %q, want neutral reply", reply)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times for an unconfirmed session", gen.calls)
	}
	if sink.count() != 0 {
		t.Errorf("report submitted for an unconfirmed session")
	}
}

func TestScamMessageEngagesPersona(t *testing.T) {
	classifier := &stubClassifier{}
	gen := &stubGenerator{reply: "Oh no, what should I do?"}
	sink := &stubSink{}
	e := newTestEngine(classifier, gen, sink)

	reply := sendTurn(t, e, "scam-1", "URGENT! Your bank account will be blocked today. Share your OTP immediately.")

	if reply != gen.reply {
		t.Errorf("reply = %q, want generated persona reply", reply)
	}
	if classifier.calls != 0 {
		t.Errorf("classifier consulted despite heuristic short circuit")
	}
}

func TestScorerBypassedOnceConfirmed(t *testing.T) {
	classifier := &stubClassifier{result: llm.Classification{Label: llm.LabelLegitimate, Confidence: 0.9}}
	gen := &stubGenerator{reply: "Okay, one moment please."}
	e := newTestEngine(classifier, gen, &stubSink{})

	sendTurn(t, e, "s1", "URGENT! Share your OTP immediately to avoid account suspended.")
	// These turns carry no scam signal at all; if the gate still ran,
	// each would hit the classifier.
	sendTurn(t, e, "s1", "Are you there?")
	sendTurn(t, e, "s1", "Hello?")

	if classifier.calls != 0 {
		t.Errorf("classifier called %d times after confirmation, want 0", classifier.calls)
	}
}

func TestIntelligenceAccumulatesAcrossTurns(t *testing.T) {
	gen := &stubGenerator{reply: "Which app is that exactly?"}
	e := newTestEngine(&stubClassifier{}, gen, &stubSink{})

	sendTurn(t, e, "s1", "URGENT! Your account will be blocked, verify immediately with OTP.")
	sendTurn(t, e, "s1", "Send your UPI ID to refund@scam. Also install AnyDesk app.")

	sess, err := e.sessions.Get("s1")
	if err != nil {
		t.Fatalf("session missing: %v", err)
	}
	if !sess.Intelligence.UPIIDs.Contains("refund@scam") {
		t.Errorf("UPI id not harvested: %v", sess.Intelligence.UPIIDs.Values())
	}
	if sess.Intelligence.SuspiciousKeywords.Len() == 0 {
		t.Error("matched keywords not folded into intelligence")
	}
}

func TestReportSubmittedAtMostOnce(t *testing.T) {
	gen := &stubGenerator{reply: "Let me find my phone first."}
	sink := &stubSink{}
	e := newTestEngine(&stubClassifier{}, gen, sink)

	sendTurn(t, e, "s1", "URGENT! Account blocked, share OTP immediately.")
	sendTurn(t, e, "s1", "Pay to scammer@paytm right now.")
	sendTurn(t, e, "s1", "Also send to 9876543210.")
	sendTurn(t, e, "s1", "Hurry up, last chance!")

	if got := sink.count(); got != 1 {
		t.Fatalf("report submitted %d times, want exactly 1", got)
	}

	report := sink.reports[0]
	if !report.ScamDetected {
		t.Error("report does not mark the scam as detected")
	}
	if report.SessionID != "s1" {
		t.Errorf("report session id = %q", report.SessionID)
	}
	if report.AgentNotes == "" {
		t.Error("report carries empty agent notes")
	}
}

func TestGeneratorFailureFallsBack(t *testing.T) {
	gen := &stubGenerator{err: errors.New("model unavailable")}
	e := newTestEngine(&stubClassifier{}, gen, &stubSink{})

	reply := sendTurn(t, e, "s1", "URGENT! Share OTP immediately, account suspended.")

	if reply != fallbackReply {
		t.Errorf("reply = %q, want fallback", reply)
	}
}

func TestStageProgression(t *testing.T) {
	gen := &stubGenerator{reply: "Sorry, which account is this about?"}
	e := newTestEngine(&stubClassifier{}, gen, &stubSink{})

	sendTurn(t, e, "s1", "URGENT! Account blocked, share OTP immediately.")
	sess, _ := e.sessions.Get("s1")
	if sess.Stage != models.StageTrust {
		t.Errorf("stage after turn 1 = %q, want %q", sess.Stage, models.StageTrust)
	}

	sendTurn(t, e, "s1", "Verify now or lose everything.")
	sess, _ = e.sessions.Get("s1")
	if sess.Stage != models.StageExtract {
		t.Errorf("stage after turn 2 = %q, want %q", sess.Stage, models.StageExtract)
	}

	sendTurn(t, e, "s1", "Pay scammer@paytm immediately.")
	sendTurn(t, e, "s1", "Did you pay yet?")
	sess, _ = e.sessions.Get("s1")
	if sess.Stage != models.StageStall {
		t.Errorf("stage after turn 4 = %q, want %q", sess.Stage, models.StageStall)
	}
}
