package mocks

import (
	"context"

	"github.com/dukex/n8nmigrate/pkg/models"
	"github.com/stretchr/testify/mock"
)

// MockLedgerStore is a mock implementation of ledger.Store interface.
type MockLedgerStore struct {
	mock.Mock
}

func (m *MockLedgerStore) Record(ctx context.Context, instanceURL string, kind models.ResourceKind, id, name string) error {
	args := m.Called(ctx, instanceURL, kind, id, name)

	return args.Error(0)
}

func (m *MockLedgerStore) Forget(ctx context.Context, instanceURL string, kind models.ResourceKind, id string) error {
	args := m.Called(ctx, instanceURL, kind, id)

	return args.Error(0)
}

func (m *MockLedgerStore) ListFor(ctx context.Context, instanceURL string) (*models.ResourceSet, error) {
	args := m.Called(ctx, instanceURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.ResourceSet), args.Error(1)
}

func (m *MockLedgerStore) Instances(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]string), args.Error(1)
}

func (m *MockLedgerStore) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
