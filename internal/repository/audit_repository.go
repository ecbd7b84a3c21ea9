package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/absence-emailer/internal/model"
)

// AuditRepository records sent emails in PostgreSQL.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// Record inserts one sent email.
func (r *AuditRepository) Record(ctx context.Context, rec model.SendRecord) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sent_emails (run_id, recipient, subject, is_test, sent_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		rec.RunID, rec.Recipient, rec.Subject, rec.Test, rec.SentAt,
	)
	return err
}
