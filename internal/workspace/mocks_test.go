package workspace

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

func (m *MockBackend) SendChatMessage(ctx context.Context, name, text string) (domain.ChatResponse, error) {
	args := m.Called(ctx, name, text)
	return args.Get(0).(domain.ChatResponse), args.Error(1)
}

func (m *MockBackend) GetSession(ctx context.Context, name string) (*domain.Session, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockBackend) GetSessionMessages(ctx context.Context, name string) ([]domain.SessionMessage, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SessionMessage), args.Error(1)
}

func (m *MockBackend) DeleteSession(ctx context.Context, id int64) (domain.DeleteResult, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.DeleteResult), args.Error(1)
}

func (m *MockBackend) UploadToSession(ctx context.Context, name string, files []*domain.File) error {
	args := m.Called(ctx, name, files)
	return args.Error(0)
}

// MockNotifier mocks upload.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Success(title, detail string) {
	m.Called(title, detail)
}

func (m *MockNotifier) Error(title, detail string) {
	m.Called(title, detail)
}
