package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"docregistry/internal/model"
	"docregistry/internal/refid"
	"docregistry/internal/repository"
)

// ReserveInput is a request to pre-claim a reference number before the
// document exists.
type ReserveInput struct {
	Type        string
	ReferenceID string
	Notes       string
}

// ReferenceService exposes the reference-number namespace: reservations,
// availability checks, and the administrative sequence reset.
type ReferenceService interface {
	// Reserve claims the reference number for later use. Fails with
	// ErrReferenceConflict when a document or an active reservation already
	// holds it.
	Reserve(ctx context.Context, actor model.Actor, in ReserveInput) (*model.Reservation, error)

	// ListActive returns unused reservations across all types in insertion
	// order.
	ListActive(ctx context.Context) ([]model.Reservation, error)

	// CheckAvailability reports whether the reference number is free to
	// claim. A malformed reference id is reported as unavailable rather than
	// as an error; the result is advisory and re-checked at allocation time.
	CheckAvailability(ctx context.Context, docType, ref string) (bool, error)

	// ResetSequences rewinds the named sequences to 1 for a new-year
	// rollover, all or nothing. Admin only. Reference ids held by retained
	// documents are not freed; the operator is expected to archive first.
	ResetSequences(ctx context.Context, actor model.Actor, docTypes []string) error
}

type referenceService struct {
	refs repository.ReferenceRepository
	now  func() time.Time
}

// NewReferenceService constructs a new ReferenceService.
func NewReferenceService(refs repository.ReferenceRepository) ReferenceService {
	return &referenceService{
		refs: refs,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *referenceService) Reserve(ctx context.Context, actor model.Actor, in ReserveInput) (*model.Reservation, error) {
	t := model.DocumentType(in.Type)
	if !t.Valid() {
		return nil, ErrInvalidDocumentType
	}
	n, err := refid.Parse(in.ReferenceID)
	if err != nil {
		return nil, err
	}

	res, err := s.refs.Reserve(ctx, &model.Reservation{
		ID:          uuid.New().String(),
		ReferenceID: n,
		Type:        t,
		Notes:       in.Notes,
		ReservedBy:  actor.ID,
		ReservedAt:  s.now(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrReferenceConflict
		}
		return nil, err
	}
	return res, nil
}

func (s *referenceService) ListActive(ctx context.Context) ([]model.Reservation, error) {
	return s.refs.ListActive(ctx)
}

func (s *referenceService) CheckAvailability(ctx context.Context, docType, ref string) (bool, error) {
	t := model.DocumentType(docType)
	if !t.Valid() {
		return false, ErrInvalidDocumentType
	}
	n, err := refid.Parse(ref)
	if err != nil {
		// Malformed ids can never be allocated, so they are simply not
		// available.
		return false, nil
	}
	return s.refs.IsAvailable(ctx, t, n)
}

func (s *referenceService) ResetSequences(ctx context.Context, actor model.Actor, docTypes []string) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	if len(docTypes) == 0 {
		return ErrInvalidDocumentType
	}
	types := make([]model.DocumentType, 0, len(docTypes))
	for _, dt := range docTypes {
		t := model.DocumentType(dt)
		if !t.Valid() {
			return ErrInvalidDocumentType
		}
		types = append(types, t)
	}
	return s.refs.ResetSequences(ctx, types)
}
