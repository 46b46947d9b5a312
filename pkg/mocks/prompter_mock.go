package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockPrompter is a mock implementation of migration.Prompter interface.
type MockPrompter struct {
	mock.Mock
}

func (m *MockPrompter) Select(ctx context.Context, title string, options []string) (int, error) {
	args := m.Called(ctx, title, options)

	return args.Int(0), args.Error(1)
}

func (m *MockPrompter) Confirm(ctx context.Context, message string) (bool, error) {
	args := m.Called(ctx, message)

	return args.Bool(0), args.Error(1)
}
