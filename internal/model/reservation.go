package model

import "time"

// Reservation is a manual pre-claim on a reference number, made before the
// document exists. At most one active (unused) reservation may exist per
// (type, reference number) pair. A used reservation is kept for audit; it is
// consumed exactly once, by the document creation that claims its number.
type Reservation struct {
	ID             string       `json:"id"`
	ReferenceID    int64        `json:"reference_id,string"`
	Type           DocumentType `json:"document_type"`
	Notes          string       `json:"notes"`
	ReservedBy     string       `json:"reserved_by"`
	ReservedAt     time.Time    `json:"reserved_at"`
	IsUsed         bool         `json:"is_used"`
	UsedAt         *time.Time   `json:"used_at,omitempty"`
	UsedDocumentID string       `json:"used_document_id,omitempty"`
}
