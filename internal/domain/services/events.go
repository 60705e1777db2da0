package services

import (
	"context"

	"honeypot-lab/internal/domain/models"
)

// EventPublisher broadcasts notable session milestones to interested
// consumers. Publishing is best-effort; implementations must not block
// message handling or surface failures to it.
type EventPublisher interface {
	ScamConfirmed(ctx context.Context, sessionID string, method ScoreMethod, confidence float64)
	ReportDelivered(ctx context.Context, report models.FinalReport, success bool)
}
