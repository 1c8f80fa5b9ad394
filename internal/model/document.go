package model

import "time"

// FileMetadata describes the stored object backing a document, when one was
// attached at creation time. ContentHash is the hex sha512 of the content,
// recorded for integrity checks at download time.
type FileMetadata struct {
	Name        string `json:"name"`
	StoragePath string `json:"storage_path"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
	ContentHash string `json:"content_hash"`
}

// Document represents an inbound or outbound correspondence item. Its
// identity is the reference number within its type's namespace; reference
// numbers are never recycled, even after soft deletion.
type Document struct {
	ReferenceID       int64         `json:"reference_id,string"`
	Type              DocumentType  `json:"document_type"`
	Title             string        `json:"title"`
	Subject           string        `json:"subject"`
	Sender            string        `json:"sender"`
	DocumentDate      string        `json:"document_date"` // YYYY-MM-DD
	UploadedBy        string        `json:"uploaded_by"`
	File              *FileMetadata `json:"file,omitempty"`
	IsManualReference bool          `json:"is_manual_reference"`
	CreatedAt         time.Time     `json:"created_at"`
	DeletedAt         *time.Time    `json:"deleted_at,omitempty"`
}

// Deleted reports whether the document has been soft-deleted.
func (d *Document) Deleted() bool {
	return d.DeletedAt != nil
}

// OwnedBy reports whether the actor created this document.
func (d *Document) OwnedBy(a Actor) bool {
	return d.UploadedBy == a.ID
}
