package service

import (
	"context"
	"crypto/sha512"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"docregistry/internal/config"
	"docregistry/internal/model"
	"docregistry/internal/refid"
	"docregistry/internal/repository"
	"docregistry/internal/requestid"
	"docregistry/internal/storage"
)

// FileUpload is an attachment streamed in at document creation.
type FileUpload struct {
	Reader      io.Reader
	Filename    string
	Size        int64
	ContentType string
}

// CreateDocumentInput carries the metadata and optional attachment for a new
// document. ManualReferenceID, when non-empty, claims that reference number
// instead of minting the next sequence value.
type CreateDocumentInput struct {
	Type              string
	Title             string
	Subject           string
	Sender            string
	DocumentDate      string
	ManualReferenceID string
	File              *FileUpload
}

// ListQuery filters and paginates document listings.
type ListQuery struct {
	Type   string
	Search string
	Page   int
	Limit  int
}

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
	Page  int              `json:"page"`
	Pages int              `json:"pages"`
}

// DocumentService defines the use cases for handling documents. Every
// operation takes the acting user; non-admin actors see and mutate only their
// own documents.
type DocumentService interface {
	// Create allocates a reference number (manual or sequence-minted),
	// uploads the attachment if any, and persists the document. Allocation
	// and the document insert are one transaction; a failure leaves no
	// partial state and rolls back the uploaded object.
	Create(ctx context.Context, actor model.Actor, in CreateDocumentInput) (*model.Document, error)

	// Get returns a single non-deleted document.
	Get(ctx context.Context, actor model.Actor, docType, ref string) (*model.Document, error)

	// List returns documents matching q, owner-scoped for non-admins.
	List(ctx context.Context, actor model.Actor, q ListQuery) (*DocumentListResult, error)

	// Delete soft-deletes a document. The reference number stays burned.
	Delete(ctx context.Context, actor model.Actor, docType, ref string) error

	// DownloadURL returns a presigned URL for the document's attachment.
	DownloadURL(ctx context.Context, actor model.Actor, docType, ref string) (string, error)

	// Stats aggregates document counts for the given period
	// (all|today|week|month|year) and optional user filter (admin only).
	Stats(ctx context.Context, actor model.Actor, period, userID string) (*model.DocumentStats, error)
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store  storage.Storage
	docs   repository.DocumentRepository
	audit  repository.AccessLogRepository
	upload config.UploadConfig
	now    func() time.Time
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store storage.Storage, docs repository.DocumentRepository, audit repository.AccessLogRepository, upload config.UploadConfig) DocumentService {
	return &documentService{
		store:  store,
		docs:   docs,
		audit:  audit,
		upload: upload,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *documentService) Create(ctx context.Context, actor model.Actor, in CreateDocumentInput) (*model.Document, error) {
	t := model.DocumentType(in.Type)
	if !t.Valid() {
		return nil, ErrInvalidDocumentType
	}
	if in.Title == "" || in.Subject == "" || in.Sender == "" || in.DocumentDate == "" {
		return nil, ErrMissingFields
	}
	if _, err := time.Parse("2006-01-02", in.DocumentDate); err != nil {
		return nil, ErrInvalidDocumentDate
	}

	// Validate the manual reference before touching storage, so a rejected
	// format costs nothing.
	manual := in.ManualReferenceID != ""
	var manualRef int64
	if manual {
		var err error
		manualRef, err = refid.Parse(in.ManualReferenceID)
		if err != nil {
			return nil, err
		}
	}

	var file *model.FileMetadata
	var objectKey string
	if in.File != nil {
		meta, key, err := s.uploadFile(ctx, in.File)
		if err != nil {
			return nil, err
		}
		file = meta
		objectKey = key
	}

	doc := &model.Document{
		Type:              t,
		Title:             in.Title,
		Subject:           in.Subject,
		Sender:            in.Sender,
		DocumentDate:      in.DocumentDate,
		UploadedBy:        actor.ID,
		File:              file,
		IsManualReference: manual,
		CreatedAt:         s.now(),
	}

	var stored *model.Document
	var err error
	if manual {
		doc.ReferenceID = manualRef
		stored, err = s.docs.CreateManual(ctx, doc)
	} else {
		stored, err = s.docs.CreateAuto(ctx, doc)
	}
	if err != nil {
		// Rollback: delete the uploaded object so storage holds no orphan.
		if objectKey != "" {
			if delErr := s.store.Delete(ctx, objectKey); delErr != nil {
				return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
			}
		}
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrReferenceConflict
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	s.record(ctx, actor, stored, model.AccessActionCreate)
	return stored, nil
}

// uploadFile streams the attachment to object storage under a year/month
// key, hashing the content on the way through.
func (s *documentService) uploadFile(ctx context.Context, f *FileUpload) (*model.FileMetadata, string, error) {
	if s.upload.MaxSizeBytes > 0 && f.Size > s.upload.MaxSizeBytes {
		return nil, "", ErrFileTooLarge
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(f.Filename), "."))
	if !s.extensionAllowed(ext) {
		return nil, "", ErrFileTypeNotAllowed
	}

	hash := sha512.New()
	key := path.Join("documents", s.now().Format("2006/01"), uuid.New().String()+"."+ext)

	info, err := s.store.Put(ctx, key, io.TeeReader(f.Reader, hash), storage.PutObjectOptions{
		Size:        f.Size,
		ContentType: f.ContentType,
		Metadata: map[string]string{
			"original-filename": f.Filename,
		},
	})
	if err != nil {
		return nil, "", fmt.Errorf("upload to storage: %w", err)
	}

	return &model.FileMetadata{
		Name:        f.Filename,
		StoragePath: info.Key,
		Size:        info.Size,
		ContentType: f.ContentType,
		ContentHash: hex.EncodeToString(hash.Sum(nil)),
	}, key, nil
}

func (s *documentService) extensionAllowed(ext string) bool {
	for _, allowed := range s.upload.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// fetch loads a non-deleted document and enforces the ownership rule shared
// by Get, Delete, and DownloadURL.
func (s *documentService) fetch(ctx context.Context, actor model.Actor, docType, ref string) (*model.Document, error) {
	t := model.DocumentType(docType)
	if !t.Valid() {
		return nil, ErrInvalidDocumentType
	}
	n, err := refid.Parse(ref)
	if err != nil {
		return nil, err
	}
	doc, err := s.docs.Find(ctx, t, n)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if doc.Deleted() {
		return nil, ErrNotFound
	}
	if !actor.IsAdmin() && !doc.OwnedBy(actor) {
		return nil, ErrForbidden
	}
	return doc, nil
}

func (s *documentService) Get(ctx context.Context, actor model.Actor, docType, ref string) (*model.Document, error) {
	return s.fetch(ctx, actor, docType, ref)
}

// List returns paginated documents without exposing repository types.
func (s *documentService) List(ctx context.Context, actor model.Actor, q ListQuery) (*DocumentListResult, error) {
	if q.Type != "" && !model.DocumentType(q.Type).Valid() {
		return nil, ErrInvalidDocumentType
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 20
	}
	if q.Limit > 100 {
		q.Limit = 100
	}

	rq := repository.DocumentQuery{
		Type:   model.DocumentType(q.Type),
		Search: q.Search,
		PageQuery: repository.PageQuery{
			Limit:  q.Limit,
			Offset: (q.Page - 1) * q.Limit,
		},
	}
	if !actor.IsAdmin() {
		rq.OwnerID = actor.ID
	}

	res, err := s.docs.List(ctx, rq)
	if err != nil {
		return nil, err
	}
	pages := (res.Total + q.Limit - 1) / q.Limit
	return &DocumentListResult{Items: res.Items, Total: res.Total, Page: q.Page, Pages: pages}, nil
}

func (s *documentService) Delete(ctx context.Context, actor model.Actor, docType, ref string) error {
	doc, err := s.fetch(ctx, actor, docType, ref)
	if err != nil {
		return err
	}
	if err := s.docs.SoftDelete(ctx, doc.Type, doc.ReferenceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	s.record(ctx, actor, doc, model.AccessActionDelete)
	return nil
}

func (s *documentService) DownloadURL(ctx context.Context, actor model.Actor, docType, ref string) (string, error) {
	doc, err := s.fetch(ctx, actor, docType, ref)
	if err != nil {
		return "", err
	}
	if doc.File == nil {
		return "", ErrNoFile
	}
	expiry := time.Duration(s.upload.PresignExpirySec) * time.Second
	url, err := s.store.PresignGet(ctx, doc.File.StoragePath, expiry)
	if err != nil {
		return "", fmt.Errorf("presign download: %w", err)
	}
	s.record(ctx, actor, doc, model.AccessActionDownload)
	return url, nil
}

func (s *documentService) Stats(ctx context.Context, actor model.Actor, period, userID string) (*model.DocumentStats, error) {
	if userID != "" && !actor.IsAdmin() && userID != actor.ID {
		return nil, ErrForbidden
	}

	f := repository.StatsFilter{}
	if !actor.IsAdmin() {
		f.OwnerID = actor.ID
	} else if userID != "" {
		f.OwnerID = userID
	}
	if since := periodStart(s.now(), period); !since.IsZero() {
		f.Since = &since
	}

	res, err := s.docs.Stats(ctx, f)
	if err != nil {
		return nil, err
	}

	stats := &model.DocumentStats{
		Total:         res.InboundCount + res.OutboundCount,
		InboundCount:  res.InboundCount,
		OutboundCount: res.OutboundCount,
		Monthly:       res.Monthly,
	}
	if res.LastInboundRef > 0 {
		stats.LastInboundRef = refid.Display(model.DocumentTypeInbound, res.LastInboundRef)
	}
	if res.LastOutboundRef > 0 {
		stats.LastOutboundRef = refid.Display(model.DocumentTypeOutbound, res.LastOutboundRef)
	}
	return stats, nil
}

// periodStart returns the zero time for "all" or unknown periods.
func periodStart(now time.Time, period string) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch period {
	case "today":
		return today
	case "week":
		return today.AddDate(0, 0, -7)
	case "month":
		return today.AddDate(0, -1, 0)
	case "year":
		return today.AddDate(-1, 0, 0)
	default:
		return time.Time{}
	}
}

// record appends an audit row. Audit failures never fail the operation that
// triggered them.
func (s *documentService) record(ctx context.Context, actor model.Actor, doc *model.Document, action model.AccessAction) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, &model.AccessLogEntry{
		Type:        doc.Type,
		ReferenceID: doc.ReferenceID,
		ActorID:     actor.ID,
		Action:      action,
		RequestID:   requestid.FromContext(ctx),
		CreatedAt:   s.now(),
	})
}
