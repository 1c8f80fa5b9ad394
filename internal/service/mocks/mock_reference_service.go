package mocks

import (
	"context"

	"docregistry/internal/model"
	"docregistry/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockReferenceService struct {
	mock.Mock
}

func (m *MockReferenceService) Reserve(ctx context.Context, actor model.Actor, in service.ReserveInput) (*model.Reservation, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *MockReferenceService) ListActive(ctx context.Context) ([]model.Reservation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Reservation), args.Error(1)
}

func (m *MockReferenceService) CheckAvailability(ctx context.Context, docType, ref string) (bool, error) {
	args := m.Called(ctx, docType, ref)
	return args.Bool(0), args.Error(1)
}

func (m *MockReferenceService) ResetSequences(ctx context.Context, actor model.Actor, docTypes []string) error {
	args := m.Called(ctx, actor, docTypes)
	return args.Error(0)
}
