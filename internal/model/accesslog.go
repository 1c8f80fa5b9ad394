package model

import "time"

// AccessAction enumerates audited document operations.
type AccessAction string

const (
	AccessActionCreate   AccessAction = "create"
	AccessActionDownload AccessAction = "download"
	AccessActionDelete   AccessAction = "delete"
)

// AccessLogEntry is one audit-trail row. Entries are append-only and written
// best-effort alongside the operation they record.
type AccessLogEntry struct {
	Type        DocumentType `json:"document_type"`
	ReferenceID int64        `json:"reference_id,string"`
	ActorID     string       `json:"actor_id"`
	Action      AccessAction `json:"action"`
	RequestID   string       `json:"request_id,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}
