package mocks

import (
	"context"

	"docregistry/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockReferenceRepository struct {
	mock.Mock
}

func (m *MockReferenceRepository) Reserve(ctx context.Context, res *model.Reservation) (*model.Reservation, error) {
	args := m.Called(ctx, res)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *MockReferenceRepository) ListActive(ctx context.Context) ([]model.Reservation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Reservation), args.Error(1)
}

func (m *MockReferenceRepository) IsAvailable(ctx context.Context, t model.DocumentType, referenceID int64) (bool, error) {
	args := m.Called(ctx, t, referenceID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReferenceRepository) ResetSequences(ctx context.Context, types []model.DocumentType) error {
	args := m.Called(ctx, types)
	return args.Error(0)
}

type MockAccessLogRepository struct {
	mock.Mock
}

func (m *MockAccessLogRepository) Record(ctx context.Context, entry *model.AccessLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
