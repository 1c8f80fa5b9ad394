package service

import (
	"context"
	"testing"
	"time"

	"docregistry/internal/model"
	"docregistry/internal/refid"
	"docregistry/internal/repository"
	repomocks "docregistry/internal/repository/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReferenceService_Reserve(t *testing.T) {
	ctx := context.Background()

	t.Run("reserves a normalized reference id", func(t *testing.T) {
		refs := new(repomocks.MockReferenceRepository)
		svc := NewReferenceService(refs)

		stored := &model.Reservation{
			ID:          "f1c0a1de-0000-4000-8000-000000000001",
			Type:        model.DocumentTypeInbound,
			ReferenceID: 15,
			Notes:       "annual report",
			ReservedBy:  "user-1",
		}
		refs.On("Reserve", ctx, mock.MatchedBy(func(r *model.Reservation) bool {
			_, idErr := uuid.Parse(r.ID)
			return r.Type == model.DocumentTypeInbound &&
				r.ReferenceID == 15 &&
				r.ReservedBy == "user-1" &&
				idErr == nil
		})).Return(stored, nil)

		res, err := svc.Reserve(ctx, userActor, ReserveInput{
			Type:        "inbound",
			ReferenceID: "015",
			Notes:       "annual report",
		})

		assert.NoError(t, err)
		assert.Equal(t, int64(15), res.ReferenceID)
		refs.AssertExpectations(t)
	})

	t.Run("conflict with an existing claim", func(t *testing.T) {
		refs := new(repomocks.MockReferenceRepository)
		svc := NewReferenceService(refs)

		refs.On("Reserve", ctx, mock.Anything).Return(nil, repository.ErrConflict)

		_, err := svc.Reserve(ctx, userActor, ReserveInput{Type: "inbound", ReferenceID: "15"})

		assert.ErrorIs(t, err, ErrReferenceConflict)
	})

	t.Run("invalid inputs", func(t *testing.T) {
		svc := NewReferenceService(new(repomocks.MockReferenceRepository))

		_, err := svc.Reserve(ctx, userActor, ReserveInput{Type: "memo", ReferenceID: "15"})
		assert.ErrorIs(t, err, ErrInvalidDocumentType)

		_, err = svc.Reserve(ctx, userActor, ReserveInput{Type: "inbound", ReferenceID: "IN-15"})
		assert.ErrorIs(t, err, refid.ErrInvalidFormat)

		_, err = svc.Reserve(ctx, userActor, ReserveInput{Type: "inbound", ReferenceID: "0"})
		assert.ErrorIs(t, err, refid.ErrInvalidFormat)
	})
}

func TestReferenceService_ListActive(t *testing.T) {
	ctx := context.Background()
	refs := new(repomocks.MockReferenceRepository)
	svc := NewReferenceService(refs)

	want := []model.Reservation{
		{ID: "id-1", Type: model.DocumentTypeInbound, ReferenceID: 15, ReservedAt: time.Now()},
	}
	refs.On("ListActive", ctx).Return(want, nil)

	got, err := svc.ListActive(ctx)

	assert.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(15), got[0].ReferenceID)
}

func TestReferenceService_CheckAvailability(t *testing.T) {
	ctx := context.Background()

	t.Run("free and taken", func(t *testing.T) {
		refs := new(repomocks.MockReferenceRepository)
		svc := NewReferenceService(refs)

		refs.On("IsAvailable", ctx, model.DocumentTypeInbound, int64(42)).Return(true, nil)
		refs.On("IsAvailable", ctx, model.DocumentTypeInbound, int64(7)).Return(false, nil)

		free, err := svc.CheckAvailability(ctx, "inbound", "42")
		assert.NoError(t, err)
		assert.True(t, free)

		free, err = svc.CheckAvailability(ctx, "inbound", "7")
		assert.NoError(t, err)
		assert.False(t, free)
	})

	t.Run("malformed id is unavailable, not an error", func(t *testing.T) {
		refs := new(repomocks.MockReferenceRepository)
		svc := NewReferenceService(refs)

		free, err := svc.CheckAvailability(ctx, "inbound", "abc")

		assert.NoError(t, err)
		assert.False(t, free)
		refs.AssertNotCalled(t, "IsAvailable")
	})

	t.Run("unknown type is an error", func(t *testing.T) {
		svc := NewReferenceService(new(repomocks.MockReferenceRepository))

		_, err := svc.CheckAvailability(ctx, "memo", "42")

		assert.ErrorIs(t, err, ErrInvalidDocumentType)
	})
}

func TestReferenceService_ResetSequences(t *testing.T) {
	ctx := context.Background()

	t.Run("admin resets the named sequences in one call", func(t *testing.T) {
		refs := new(repomocks.MockReferenceRepository)
		svc := NewReferenceService(refs)

		refs.On("ResetSequences", ctx, []model.DocumentType{model.DocumentTypeInbound, model.DocumentTypeOutbound}).
			Return(nil)

		err := svc.ResetSequences(ctx, adminActor, []string{"inbound", "outbound"})

		assert.NoError(t, err)
		refs.AssertExpectations(t)
	})

	t.Run("non-admin is forbidden", func(t *testing.T) {
		refs := new(repomocks.MockReferenceRepository)
		svc := NewReferenceService(refs)

		err := svc.ResetSequences(ctx, userActor, []string{"inbound"})

		assert.ErrorIs(t, err, ErrForbidden)
		refs.AssertNotCalled(t, "ResetSequences")
	})

	t.Run("one bad type rejects the whole request", func(t *testing.T) {
		refs := new(repomocks.MockReferenceRepository)
		svc := NewReferenceService(refs)

		err := svc.ResetSequences(ctx, adminActor, []string{"inbound", "memo"})

		assert.ErrorIs(t, err, ErrInvalidDocumentType)
		refs.AssertNotCalled(t, "ResetSequences")
	})

	t.Run("empty request", func(t *testing.T) {
		svc := NewReferenceService(new(repomocks.MockReferenceRepository))

		err := svc.ResetSequences(ctx, adminActor, nil)

		assert.ErrorIs(t, err, ErrInvalidDocumentType)
	})
}
