package service

// Common service-level error values. Services return these so handlers can
// translate them into status codes; the services themselves never format
// user-facing text.

import "errors"

var (
	// ErrNotFound indicates the requested document or reservation does not
	// exist (soft-deleted documents are not found for read purposes).
	ErrNotFound = errors.New("document not found")

	// ErrForbidden indicates the actor may not act on the document: not the
	// owner and not an admin.
	ErrForbidden = errors.New("operation not permitted for this user")

	// ErrReferenceConflict indicates the reference id is already held by a
	// document (soft-deleted included) or an active reservation.
	ErrReferenceConflict = errors.New("reference id already in use or reserved")

	// ErrInvalidDocumentType is returned for a type outside {inbound, outbound}.
	ErrInvalidDocumentType = errors.New("document type must be inbound or outbound")

	// ErrInvalidDocumentDate is returned when the document date is not YYYY-MM-DD.
	ErrInvalidDocumentDate = errors.New("document date must be YYYY-MM-DD")

	// ErrMissingFields is returned when a required metadata field is empty.
	ErrMissingFields = errors.New("title, subject, sender, and date are required")

	// ErrFileTooLarge is returned when an attachment exceeds the configured limit.
	ErrFileTooLarge = errors.New("file exceeds the maximum allowed size")

	// ErrFileTypeNotAllowed is returned for attachments outside the allowed
	// extension list.
	ErrFileTypeNotAllowed = errors.New("file type not allowed")

	// ErrNoFile indicates a download was requested for a document without an
	// attached file.
	ErrNoFile = errors.New("document has no file attached")
)
