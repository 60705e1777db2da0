package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"honeypot-lab/internal/domain/models"
)

// DeliveryRepository journals final report delivery attempts
type DeliveryRepository struct {
	pool *pgxpool.Pool
}

// NewDeliveryRepository creates a new delivery repository
func NewDeliveryRepository(pool *pgxpool.Pool) *DeliveryRepository {
	return &DeliveryRepository{pool: pool}
}

// EnsureSchema creates the report_deliveries table if it does not exist
func (r *DeliveryRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS report_deliveries (
			id UUID PRIMARY KEY,
			session_id TEXT NOT NULL,
			success BOOLEAN NOT NULL,
			status_code INT NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT '',
			duration_ms BIGINT NOT NULL DEFAULT 0,
			attempted_at TIMESTAMPTZ NOT NULL
		)`

	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create report_deliveries table: %w", err)
	}
	return nil
}

// Record inserts a delivery attempt
func (r *DeliveryRepository) Record(ctx context.Context, d models.ReportDelivery) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}

	query := `
		INSERT INTO report_deliveries (
			id, session_id, success, status_code, error, duration_ms, attempted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		d.ID, d.SessionID, d.Success, d.StatusCode, d.Error, d.DurationMillis, d.AttemptedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record delivery: %w", err)
	}
	return nil
}

// RecentForSession returns the most recent delivery attempts for a session
func (r *DeliveryRepository) RecentForSession(ctx context.Context, sessionID string, limit int) ([]models.ReportDelivery, error) {
	query := `
		SELECT id, session_id, success, status_code, error, duration_ms, attempted_at
		FROM report_deliveries
		WHERE session_id = $1
		ORDER BY attempted_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []models.ReportDelivery
	for rows.Next() {
		var d models.ReportDelivery
		if err := rows.Scan(&d.ID, &d.SessionID, &d.Success, &d.StatusCode, &d.Error, &d.DurationMillis, &d.AttemptedAt); err != nil {
			return nil, fmt.Errorf("failed to scan delivery: %w", err)
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}
