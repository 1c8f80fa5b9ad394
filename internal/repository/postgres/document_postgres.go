package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"docregistry/internal/model"
	"docregistry/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `document_type, reference_id, title, subject, sender,
		document_date, uploaded_by, file_name, storage_path, file_size,
		file_content_type, file_hash, is_manual_reference, created_at, deleted_at`

const insertDocument = `
		INSERT INTO documents (document_type, reference_id, title, subject, sender,
			document_date, uploaded_by, file_name, storage_path, file_size,
			file_content_type, file_hash, is_manual_reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6::date, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + documentColumns

// nextSequenceValue atomically claims the current value and moves the
// sequence forward in one statement, so concurrent callers never observe the
// same value.
const nextSequenceValue = `
		UPDATE reference_sequences
		SET next_value = next_value + 1
		WHERE document_type = $1
		RETURNING next_value - 1`

// consumeReservation marks the unique active reservation for the pair as
// used. Zero rows affected is fine; unreserved ids are allocated directly.
const consumeReservation = `
		UPDATE reference_reservations
		SET is_used = TRUE, used_at = now(), used_document_id = $3
		WHERE document_type = $1 AND reference_id = $2 AND NOT is_used`

// advanceSequence moves the sequence past a manually claimed value so it can
// never mint that value later. Its row lock doubles as the writer lock for
// the type's namespace: Reserve and CreateManual run it first, so the checks
// and inserts behind it never race each other or a concurrent mint.
const advanceSequence = `
		UPDATE reference_sequences
		SET next_value = GREATEST(next_value, $2 + 1)
		WHERE document_type = $1`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*model.Document, error) {
	var (
		d           model.Document
		docDate     sql.NullTime
		fileName    sql.NullString
		storagePath sql.NullString
		fileSize    sql.NullInt64
		contentType sql.NullString
		fileHash    sql.NullString
		deletedAt   sql.NullTime
	)
	if err := row.Scan(
		&d.Type,
		&d.ReferenceID,
		&d.Title,
		&d.Subject,
		&d.Sender,
		&docDate,
		&d.UploadedBy,
		&fileName,
		&storagePath,
		&fileSize,
		&contentType,
		&fileHash,
		&d.IsManualReference,
		&d.CreatedAt,
		&deletedAt,
	); err != nil {
		return nil, err
	}
	if docDate.Valid {
		d.DocumentDate = docDate.Time.Format("2006-01-02")
	}
	if storagePath.Valid {
		d.File = &model.FileMetadata{
			Name:        fileName.String,
			StoragePath: storagePath.String,
			Size:        fileSize.Int64,
			ContentType: contentType.String,
			ContentHash: fileHash.String,
		}
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		d.DeletedAt = &t
	}
	return &d, nil
}

func insertArgs(doc *model.Document) []any {
	var (
		fileName    sql.NullString
		storagePath sql.NullString
		fileSize    sql.NullInt64
		contentType sql.NullString
		fileHash    sql.NullString
	)
	if doc.File != nil {
		fileName = sql.NullString{String: doc.File.Name, Valid: true}
		storagePath = sql.NullString{String: doc.File.StoragePath, Valid: true}
		fileSize = sql.NullInt64{Int64: doc.File.Size, Valid: true}
		contentType = sql.NullString{String: doc.File.ContentType, Valid: true}
		fileHash = sql.NullString{String: doc.File.ContentHash, Valid: true}
	}
	return []any{
		doc.Type,
		doc.ReferenceID,
		doc.Title,
		doc.Subject,
		doc.Sender,
		doc.DocumentDate,
		doc.UploadedBy,
		fileName,
		storagePath,
		fileSize,
		contentType,
		fileHash,
		doc.IsManualReference,
		doc.CreatedAt,
	}
}

// CreateAuto mints the next sequence value and inserts the document in one
// transaction. A rollback returns the minted value to the sequence, so a
// failed allocation does not leave a gap.
func (r *DocumentPostgres) CreateAuto(ctx context.Context, doc *model.Document) (*model.Document, error) {
	var out *model.Document
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var ref int64
		if err := tx.QueryRowContext(ctx, nextSequenceValue, doc.Type).Scan(&ref); err != nil {
			return fmt.Errorf("mint sequence value: %w", err)
		}
		doc.ReferenceID = ref

		stored, err := scanDocument(tx.QueryRowContext(ctx, insertDocument, insertArgs(doc)...))
		if err != nil {
			// Possible only after an administrative sequence reset left old
			// documents in the minted range.
			if isUniqueViolation(err) {
				return repository.ErrConflict
			}
			return err
		}

		docID := strconv.FormatInt(ref, 10)
		if _, err := tx.ExecContext(ctx, consumeReservation, doc.Type, ref, docID); err != nil {
			return fmt.Errorf("consume reservation: %w", err)
		}

		out = stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateManual inserts the document under the caller-supplied reference id.
// The sequence row lock serializes it against concurrent reservations of the
// same id; the primary key backstops document-vs-document claims, which
// surface as a unique violation, returned as ErrConflict.
func (r *DocumentPostgres) CreateManual(ctx context.Context, doc *model.Document) (*model.Document, error) {
	var out *model.Document
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		// Sequence row lock first: a concurrent Reserve for the same id now
		// waits here and sees this document after commit.
		if _, err := tx.ExecContext(ctx, advanceSequence, doc.Type, doc.ReferenceID); err != nil {
			return fmt.Errorf("advance sequence: %w", err)
		}

		stored, err := scanDocument(tx.QueryRowContext(ctx, insertDocument, insertArgs(doc)...))
		if err != nil {
			if isUniqueViolation(err) {
				return repository.ErrConflict
			}
			return err
		}

		docID := strconv.FormatInt(doc.ReferenceID, 10)
		if _, err := tx.ExecContext(ctx, consumeReservation, doc.Type, doc.ReferenceID, docID); err != nil {
			return fmt.Errorf("consume reservation: %w", err)
		}

		out = stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Find fetches a single document by (type, reference id), soft-deleted rows
// included.
func (r *DocumentPostgres) Find(ctx context.Context, t model.DocumentType, referenceID int64) (*model.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents WHERE document_type = $1 AND reference_id = $2`
	return scanDocument(r.db.QueryRowContext(ctx, q, t, referenceID))
}

// List returns non-deleted documents using LIMIT/OFFSET pagination and a
// total count for the same filter.
func (r *DocumentPostgres) List(ctx context.Context, q repository.DocumentQuery) (*repository.PageResult[model.Document], error) {
	where := []string{"deleted_at IS NULL"}
	args := []any{}

	if q.OwnerID != "" {
		args = append(args, q.OwnerID)
		where = append(where, fmt.Sprintf("uploaded_by = $%d", len(args)))
	}
	if q.Type != "" {
		args = append(args, q.Type)
		where = append(where, fmt.Sprintf("document_type = $%d", len(args)))
	}
	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(title ILIKE $%d OR subject ILIKE $%d OR sender ILIKE $%d OR CAST(reference_id AS TEXT) LIKE $%d)",
			n, n, n, n))
	}
	cond := strings.Join(where, " AND ")

	var total int
	qCount := `SELECT COUNT(*) FROM documents WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, qCount, args...).Scan(&total); err != nil {
		return nil, err
	}

	qList := `SELECT ` + documentColumns + ` FROM documents WHERE ` + cond +
		fmt.Sprintf(" ORDER BY created_at DESC, reference_id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, q.Limit, q.Offset)

	rows, err := r.db.QueryContext(ctx, qList, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Document]{
		Items: items,
		Total: total,
	}, nil
}

// SoftDelete marks the document deleted without freeing its reference id.
func (r *DocumentPostgres) SoftDelete(ctx context.Context, t model.DocumentType, referenceID int64) error {
	const q = `UPDATE documents SET deleted_at = now() WHERE document_type = $1 AND reference_id = $2 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, q, t, referenceID)
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
	return nil
}

// Stats aggregates counts, latest references per type, and monthly totals
// over non-deleted documents matching f.
func (r *DocumentPostgres) Stats(ctx context.Context, f repository.StatsFilter) (*repository.StatsResult, error) {
	where := []string{"deleted_at IS NULL"}
	args := []any{}

	if f.OwnerID != "" {
		args = append(args, f.OwnerID)
		where = append(where, fmt.Sprintf("uploaded_by = $%d", len(args)))
	}
	if f.Since != nil {
		args = append(args, *f.Since)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	out := &repository.StatsResult{}

	qCounts := `SELECT document_type, COUNT(*) FROM documents WHERE ` + cond + ` GROUP BY document_type`
	rows, err := r.db.QueryContext(ctx, qCounts, args...)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var t model.DocumentType
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			rows.Close()
			return nil, err
		}
		switch t {
		case model.DocumentTypeInbound:
			out.InboundCount = n
		case model.DocumentTypeOutbound:
			out.OutboundCount = n
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	qLast := `SELECT reference_id FROM documents WHERE ` + cond +
		fmt.Sprintf(" AND document_type = $%d ORDER BY created_at DESC LIMIT 1", len(args)+1)
	for _, t := range model.DocumentTypes() {
		var ref int64
		err := r.db.QueryRowContext(ctx, qLast, append(args, t)...).Scan(&ref)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, err
		}
		if t == model.DocumentTypeInbound {
			out.LastInboundRef = ref
		} else {
			out.LastOutboundRef = ref
		}
	}

	qMonthly := `SELECT to_char(created_at, 'YYYY-MM') AS month, document_type, COUNT(*)
		FROM documents WHERE ` + cond + ` GROUP BY 1, 2 ORDER BY 1`
	rows, err = r.db.QueryContext(ctx, qMonthly, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byMonth := map[string]*model.MonthlyCount{}
	order := []string{}
	for rows.Next() {
		var month string
		var t model.DocumentType
		var n int
		if err := rows.Scan(&month, &t, &n); err != nil {
			return nil, err
		}
		mc, ok := byMonth[month]
		if !ok {
			mc = &model.MonthlyCount{Month: month}
			byMonth[month] = mc
			order = append(order, month)
		}
		if t == model.DocumentTypeInbound {
			mc.Inbound = n
		} else {
			mc.Outbound = n
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, m := range order {
		out.Monthly = append(out.Monthly, *byMonth[m])
	}

	return out, nil
}
