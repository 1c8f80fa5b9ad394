package repository

import (
	"context"

	"docregistry/internal/model"
)

// ReferenceRepository defines data access for the reference-number namespace:
// the per-type sequences and the reservation table.
type ReferenceRepository interface {
	// Reserve atomically checks availability and inserts the reservation,
	// then advances the sequence past the reserved value so it can never be
	// minted again. Returns ErrConflict when a document of that type already
	// holds the reference id (soft-deleted included) or an active reservation
	// exists for the pair.
	Reserve(ctx context.Context, res *model.Reservation) (*model.Reservation, error)

	// ListActive returns all unused reservations across types, in insertion
	// order.
	ListActive(ctx context.Context) ([]model.Reservation, error)

	// IsAvailable reports whether the reference id is free: no document of
	// that type holds it (soft-deleted included) and no active reservation
	// exists for it. This is a point-in-time query; allocation re-checks
	// under its own transaction.
	IsAvailable(ctx context.Context, t model.DocumentType, referenceID int64) (bool, error)

	// ResetSequences sets the sequences for all named types back to 1 in one
	// transaction; a failure on any type resets none. Previously issued
	// document reference ids are not freed.
	ResetSequences(ctx context.Context, types []model.DocumentType) error
}

// AccessLogRepository appends audit-trail rows for document operations.
type AccessLogRepository interface {
	Record(ctx context.Context, entry *model.AccessLogEntry) error
}
