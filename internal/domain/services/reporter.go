package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"honeypot-lab/internal/config"
	"honeypot-lab/internal/domain/models"
	"honeypot-lab/pkg/logger"
)

// ReportSink accepts finalized session reports for out-of-band delivery.
// Submit must never block the request path and must never fail it.
type ReportSink interface {
	Submit(report models.FinalReport)
}

// DeliveryJournal persists delivery outcomes for observability
type DeliveryJournal interface {
	Record(ctx context.Context, delivery models.ReportDelivery) error
}

// Reporter delivers final reports to the external evaluator endpoint
// through a buffered queue and a small worker pool. Payloads are signed
// with HMAC-SHA256 when a secret is configured. Outcomes are logged and,
// when wired, journaled and published as events; failures are never
// retried and never reach the inbound request.
type Reporter struct {
	url     string
	secret  string
	queue   chan models.FinalReport
	client  *http.Client
	journal DeliveryJournal
	events  EventPublisher
	logger  *logger.Logger

	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewReporter creates a reporter and starts its delivery workers
func NewReporter(cfg config.CallbackConfig, journal DeliveryJournal, events EventPublisher, log *logger.Logger) *Reporter {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 2
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 100
	}

	r := &Reporter{
		url:     cfg.URL,
		secret:  cfg.Secret,
		queue:   make(chan models.FinalReport, queueSize),
		client:  &http.Client{Timeout: cfg.Timeout},
		journal: journal,
		events:  events,
		logger:  log.WithComponent("reporter"),
		stopCh:  make(chan struct{}),
	}

	for i := 0; i < workers; i++ {
		r.wg.Add(1)
		go r.worker()
	}
	r.logger.Info().Int("workers", workers).Msg("report delivery workers started")

	return r
}

// Submit enqueues a report for delivery. If the queue is full the report
// is dropped with a warning rather than blocking the caller.
func (r *Reporter) Submit(report models.FinalReport) {
	select {
	case r.queue <- report:
	default:
		r.logger.Warn().Str("session_id", report.SessionID).Msg("delivery queue full, report dropped")
	}
}

// Stop drains the workers and shuts the reporter down
func (r *Reporter) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
	})
	r.wg.Wait()
	r.logger.Info().Msg("reporter stopped")
}

func (r *Reporter) worker() {
	defer r.wg.Done()

	for {
		select {
		case <-r.stopCh:
			return
		case report := <-r.queue:
			r.deliver(report)
		}
	}
}

func (r *Reporter) deliver(report models.FinalReport) {
	ctx, cancel := context.WithTimeout(context.Background(), r.client.Timeout)
	defer cancel()

	delivery := models.ReportDelivery{
		ID:          uuid.New(),
		SessionID:   report.SessionID,
		AttemptedAt: time.Now(),
	}

	start := time.Now()
	status, err := r.post(ctx, report)
	delivery.DurationMillis = time.Since(start).Milliseconds()
	delivery.StatusCode = status
	delivery.Success = err == nil && status >= 200 && status < 300

	if err != nil {
		delivery.Error = err.Error()
		r.logger.Error().Err(err).Str("session_id", report.SessionID).Msg("final report delivery failed")
	} else if !delivery.Success {
		r.logger.Error().Int("status", status).Str("session_id", report.SessionID).Msg("final report rejected by sink")
	} else {
		r.logger.Info().
			Str("session_id", report.SessionID).
			Int("intel_total", report.ExtractedIntelligence.Total()).
			Msg("final report delivered")
	}

	if r.journal != nil {
		if jerr := r.journal.Record(ctx, delivery); jerr != nil {
			r.logger.Warn().Err(jerr).Str("session_id", report.SessionID).Msg("failed to journal delivery")
		}
	}

	if r.events != nil {
		r.events.ReportDelivered(ctx, report, delivery.Success)
	}
}

func (r *Reporter) post(ctx context.Context, report models.FinalReport) (int, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if r.secret != "" {
		req.Header.Set("X-Honeypot-Signature", sign(payload, r.secret))
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode, nil
}

// sign computes the hex HMAC-SHA256 of the payload
func sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
