package mocks

import (
	"context"

	"docregistry/internal/model"
	"docregistry/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Create(ctx context.Context, actor model.Actor, in service.CreateDocumentInput) (*model.Document, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, actor model.Actor, docType, ref string) (*model.Document, error) {
	args := m.Called(ctx, actor, docType, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, actor model.Actor, q service.ListQuery) (*service.DocumentListResult, error) {
	args := m.Called(ctx, actor, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentListResult), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, actor model.Actor, docType, ref string) error {
	args := m.Called(ctx, actor, docType, ref)
	return args.Error(0)
}

func (m *MockDocumentService) DownloadURL(ctx context.Context, actor model.Actor, docType, ref string) (string, error) {
	args := m.Called(ctx, actor, docType, ref)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentService) Stats(ctx context.Context, actor model.Actor, period, userID string) (*model.DocumentStats, error) {
	args := m.Called(ctx, actor, period, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentStats), args.Error(1)
}
