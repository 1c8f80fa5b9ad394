package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"docregistry/internal/model"
	"docregistry/internal/repository"
)

// ReferencePostgres is a PostgreSQL implementation of repository.ReferenceRepository.
type ReferencePostgres struct {
	db *sql.DB
}

// NewReferencePostgres creates a new ReferencePostgres repository.
func NewReferencePostgres(db *sql.DB) *ReferencePostgres {
	return &ReferencePostgres{db: db}
}

var _ repository.ReferenceRepository = (*ReferencePostgres)(nil)

const reservationColumns = `id, document_type, reference_id, notes, reserved_by,
		reserved_at, is_used, used_at, used_document_id`

// documentHoldsRef covers soft-deleted rows too; a reference once issued to a
// document is never reusable.
const documentHoldsRef = `SELECT EXISTS (
		SELECT 1 FROM documents WHERE document_type = $1 AND reference_id = $2)`

func scanReservation(row rowScanner) (*model.Reservation, error) {
	var (
		res    model.Reservation
		usedAt sql.NullTime
		usedID sql.NullString
	)
	if err := row.Scan(
		&res.ID,
		&res.Type,
		&res.ReferenceID,
		&res.Notes,
		&res.ReservedBy,
		&res.ReservedAt,
		&res.IsUsed,
		&usedAt,
		&usedID,
	); err != nil {
		return nil, err
	}
	if usedAt.Valid {
		t := usedAt.Time
		res.UsedAt = &t
	}
	res.UsedDocumentID = usedID.String
	return &res, nil
}

// Reserve advances the sequence, checks the document namespace, and inserts
// the reservation, all in one transaction. The sequence row lock taken by the
// leading UPDATE serializes this against concurrent allocations of the same
// id, so the namespace check cannot go stale before the insert; the partial
// unique index on active reservations backstops duplicate reservations,
// returned as ErrConflict.
func (r *ReferencePostgres) Reserve(ctx context.Context, res *model.Reservation) (*model.Reservation, error) {
	var out *model.Reservation
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, advanceSequence, res.Type, res.ReferenceID); err != nil {
			return fmt.Errorf("advance sequence: %w", err)
		}

		var taken bool
		if err := tx.QueryRowContext(ctx, documentHoldsRef, res.Type, res.ReferenceID).Scan(&taken); err != nil {
			return fmt.Errorf("check document namespace: %w", err)
		}
		if taken {
			return repository.ErrConflict
		}

		const insert = `
			INSERT INTO reference_reservations (id, document_type, reference_id, notes, reserved_by, reserved_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING ` + reservationColumns
		stored, err := scanReservation(tx.QueryRowContext(ctx, insert,
			res.ID,
			res.Type,
			res.ReferenceID,
			res.Notes,
			res.ReservedBy,
			res.ReservedAt,
		))
		if err != nil {
			if isUniqueViolation(err) {
				return repository.ErrConflict
			}
			return err
		}

		out = stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListActive returns unused reservations in insertion order.
func (r *ReferencePostgres) ListActive(ctx context.Context) ([]model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reference_reservations WHERE NOT is_used ORDER BY seq`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// IsAvailable reports whether no document and no active reservation hold the
// reference id.
func (r *ReferencePostgres) IsAvailable(ctx context.Context, t model.DocumentType, referenceID int64) (bool, error) {
	const q = `SELECT NOT EXISTS (
			SELECT 1 FROM documents WHERE document_type = $1 AND reference_id = $2
		) AND NOT EXISTS (
			SELECT 1 FROM reference_reservations WHERE document_type = $1 AND reference_id = $2 AND NOT is_used
		)`
	var free bool
	if err := r.db.QueryRowContext(ctx, q, t, referenceID).Scan(&free); err != nil {
		return false, err
	}
	return free, nil
}

// ResetSequences rewinds the named sequences for a new-year rollover, all in
// one transaction so a failure mid-list resets nothing. It does not free
// previously issued reference ids; subsequent automatic allocations may
// conflict with retained documents, which surfaces as ErrConflict to callers.
func (r *ReferencePostgres) ResetSequences(ctx context.Context, types []model.DocumentType) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		const q = `UPDATE reference_sequences SET next_value = 1 WHERE document_type = $1`
		for _, t := range types {
			res, err := tx.ExecContext(ctx, q, t)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if n == 0 {
				return sql.ErrNoRows
			}
		}
		return nil
	})
}
