package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"honeypot-lab/internal/config"
	"honeypot-lab/internal/domain/models"
	"honeypot-lab/pkg/logger"
)

type recordingJournal struct {
	ch chan models.ReportDelivery
}

func (j *recordingJournal) Record(ctx context.Context, d models.ReportDelivery) error {
	j.ch <- d
	return nil
}

func testReport() models.FinalReport {
	intel := models.NewIntelligence()
	intel.UPIIDs.Add("scammer@paytm")
	return models.FinalReport{
		SessionID:              "sess-42",
		ScamDetected:           true,
		TotalMessagesExchanged: 6,
		ExtractedIntelligence:  intel,
		AgentNotes:             "Used tactics: otp.",
	}
}

func TestReporterDeliversSignedPayload(t *testing.T) {
	type received struct {
		body      []byte
		signature string
	}
	gotCh := make(chan received, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotCh <- received{body: body, signature: r.Header.Get("X-Honeypot-Signature")}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	journal := &recordingJournal{ch: make(chan models.ReportDelivery, 1)}
	reporter := NewReporter(config.CallbackConfig{
		URL:     srv.URL,
		Secret:  "callback-secret",
		Timeout: 5 * time.Second,
		Workers: 1,
	}, journal, nil, logger.Nop())
	defer reporter.Stop()

	reporter.Submit(testReport())

	var got received
	select {
	case got = <-gotCh:
	case <-time.After(3 * time.Second):
		t.Fatal("report never delivered")
	}

	var payload models.FinalReport
	if err := json.Unmarshal(got.body, &payload); err != nil {
		t.Fatalf("payload unmarshal: %v", err)
	}
	if payload.SessionID != "sess-42" {
		t.Errorf("sessionId = %q", payload.SessionID)
	}
	if !payload.ExtractedIntelligence.UPIIDs.Contains("scammer@paytm") {
		t.Errorf("intelligence missing from payload: %s", got.body)
	}

	mac := hmac.New(sha256.New, []byte("callback-secret"))
	mac.Write(got.body)
	want := hex.EncodeToString(mac.Sum(nil))
	if got.signature != want {
		t.Errorf("signature = %q, want %q", got.signature, want)
	}

	select {
	case delivery := <-journal.ch:
		if !delivery.Success {
			t.Errorf("journal marks delivery as failed: %+v", delivery)
		}
		if delivery.StatusCode != http.StatusOK {
			t.Errorf("journaled status = %d", delivery.StatusCode)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("delivery never journaled")
	}
}

func TestReporterJournalsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	journal := &recordingJournal{ch: make(chan models.ReportDelivery, 1)}
	reporter := NewReporter(config.CallbackConfig{
		URL:     srv.URL,
		Timeout: 5 * time.Second,
		Workers: 1,
	}, journal, nil, logger.Nop())
	defer reporter.Stop()

	reporter.Submit(testReport())

	select {
	case delivery := <-journal.ch:
		if delivery.Success {
			t.Error("rejected delivery journaled as success")
		}
		if delivery.StatusCode != http.StatusBadGateway {
			t.Errorf("journaled status = %d, want 502", delivery.StatusCode)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("failed delivery never journaled")
	}
}

func TestReporterSubmitNeverBlocks(t *testing.T) {
	// No server listening; queue of 1 without workers draining fast
	// enough must still accept Submit calls without blocking.
	reporter := NewReporter(config.CallbackConfig{
		URL:       "http://127.0.0.1:0",
		Timeout:   time.Second,
		Workers:   1,
		QueueSize: 1,
	}, nil, nil, logger.Nop())
	defer reporter.Stop()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			reporter.Submit(testReport())
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Submit blocked the caller")
	}
}
