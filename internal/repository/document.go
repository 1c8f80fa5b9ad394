package repository

import (
	"context"
	"time"

	"docregistry/internal/model"
)

// DocumentQuery filters and paginates document listings.
// OwnerID, when set, restricts results to documents uploaded by that user;
// the service sets it for non-admin actors.
type DocumentQuery struct {
	Type    model.DocumentType // zero value means all types
	Search  string             // matches title, subject, sender, or reference id
	OwnerID string
	PageQuery
}

// StatsFilter scopes aggregate document statistics.
type StatsFilter struct {
	OwnerID string
	Since   *time.Time // nil means all time
}

// StatsResult carries raw aggregates; display formatting belongs to the
// service layer. LastInboundRef/LastOutboundRef are zero when no document of
// that type matches the filter.
type StatsResult struct {
	InboundCount    int
	OutboundCount   int
	LastInboundRef  int64
	LastOutboundRef int64
	Monthly         []model.MonthlyCount
}

// DocumentRepository defines data access for documents using SQL queries only.
//
// CreateAuto and CreateManual are the two allocation paths. Each executes as
// one transaction covering the sequence, the document insert, and the
// reservation bookkeeping, so a failure at any step leaves no partial state.
type DocumentRepository interface {
	// CreateAuto mints the next sequence value for doc.Type, inserts the
	// document under it, and returns the stored row. Returns ErrConflict when
	// the minted value collides with an existing document, which can only
	// happen after an administrative sequence reset.
	CreateAuto(ctx context.Context, doc *model.Document) (*model.Document, error)

	// CreateManual inserts the document under the caller-supplied
	// doc.ReferenceID, consumes any active reservation for that pair, and
	// advances the sequence past the claimed value. Returns ErrConflict when
	// a document of that type already holds the reference id, soft-deleted
	// rows included.
	CreateManual(ctx context.Context, doc *model.Document) (*model.Document, error)

	// Find returns a document by (type, reference id), including soft-deleted
	// rows. Callers decide how to treat deleted documents.
	Find(ctx context.Context, t model.DocumentType, referenceID int64) (*model.Document, error)

	// List returns a paginated list of non-deleted documents matching q, plus
	// the total row count for the filter.
	List(ctx context.Context, q DocumentQuery) (*PageResult[model.Document], error)

	// SoftDelete marks a document deleted. Returns sql.ErrNoRows when no
	// non-deleted document matches.
	SoftDelete(ctx context.Context, t model.DocumentType, referenceID int64) error

	// Stats aggregates counts, latest references, and monthly totals over
	// non-deleted documents matching f.
	Stats(ctx context.Context, f StatsFilter) (*StatsResult, error)
}
