package postgres

import (
	"context"
	"database/sql"

	"docregistry/internal/model"
	"docregistry/internal/repository"
)

// AccessLogPostgres is a PostgreSQL implementation of repository.AccessLogRepository.
type AccessLogPostgres struct {
	db *sql.DB
}

// NewAccessLogPostgres creates a new AccessLogPostgres repository.
func NewAccessLogPostgres(db *sql.DB) *AccessLogPostgres {
	return &AccessLogPostgres{db: db}
}

var _ repository.AccessLogRepository = (*AccessLogPostgres)(nil)

// Record appends one audit row.
func (r *AccessLogPostgres) Record(ctx context.Context, entry *model.AccessLogEntry) error {
	const q = `
		INSERT INTO document_access_log (document_type, reference_id, actor_id, action, request_id, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)`
	_, err := r.db.ExecContext(ctx, q,
		entry.Type,
		entry.ReferenceID,
		entry.ActorID,
		entry.Action,
		entry.RequestID,
		entry.CreatedAt,
	)
	return err
}
