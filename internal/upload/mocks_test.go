package upload

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/deon-gracias/rag/internal/domain"
)

// MockBackend mocks the Backend interface
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) CreateAndUpload(ctx context.Context, files []*domain.File, quality domain.Quality) (*domain.Session, error) {
	args := m.Called(ctx, files, quality)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockBackend) ListSessions(ctx context.Context) ([]domain.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Session), args.Error(1)
}

// MockNotifier mocks the Notifier interface
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Success(title, detail string) {
	m.Called(title, detail)
}

func (m *MockNotifier) Error(title, detail string) {
	m.Called(title, detail)
}
