package mocks

import (
	"context"

	"github.com/dukex/n8nmigrate/pkg/models"
	"github.com/stretchr/testify/mock"
)

// MockRemote is a mock implementation of migration.Remote interface.
type MockRemote struct {
	mock.Mock
}

func (m *MockRemote) Ping(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockRemote) Projects(ctx context.Context) ([]models.Project, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]models.Project), args.Error(1)
}

func (m *MockRemote) CreateProject(ctx context.Context, name string) (*models.Project, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockRemote) DeleteProject(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

func (m *MockRemote) Workflows(ctx context.Context, projectID string) ([]*models.Workflow, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Workflow), args.Error(1)
}

func (m *MockRemote) CreateWorkflow(ctx context.Context, payload *models.WorkflowPayload) (*models.Workflow, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Workflow), args.Error(1)
}

func (m *MockRemote) TransferWorkflow(ctx context.Context, id, projectID string) error {
	args := m.Called(ctx, id, projectID)

	return args.Error(0)
}

func (m *MockRemote) DeleteWorkflow(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

func (m *MockRemote) CreateCredential(ctx context.Context, payload *models.CredentialPayload) (*models.Credential, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Credential), args.Error(1)
}

func (m *MockRemote) DeleteCredential(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}
