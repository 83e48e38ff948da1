package handler_test

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/deon-gracias/rag/internal/domain"
	"github.com/deon-gracias/rag/internal/service"
)

// MockSessionService mocks handler.SessionService
type MockSessionService struct {
	mock.Mock
	uploaded map[string]string
}

func (m *MockSessionService) Create(ctx context.Context) (*domain.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionService) List(ctx context.Context) ([]domain.Session, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Session), args.Error(1)
}

func (m *MockSessionService) Get(ctx context.Context, ref string) (*domain.Session, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionService) Delete(ctx context.Context, id int64) (*domain.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionService) History(ctx context.Context, name string) ([]domain.SessionMessage, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SessionMessage), args.Error(1)
}

func (m *MockSessionService) Chat(ctx context.Context, name, question string) (*domain.ChatResponse, error) {
	args := m.Called(ctx, name, question)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChatResponse), args.Error(1)
}

// CreateAndUpload records file contents before the request body is released
func (m *MockSessionService) CreateAndUpload(ctx context.Context, files []service.Upload, quality string) (*domain.Session, error) {
	m.record(files)
	args := m.Called(ctx, len(files), quality)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionService) Upload(ctx context.Context, name string, files []service.Upload) error {
	m.record(files)
	args := m.Called(ctx, name, len(files))
	return args.Error(0)
}

func (m *MockSessionService) record(files []service.Upload) {
	m.uploaded = make(map[string]string, len(files))
	for _, f := range files {
		data, _ := io.ReadAll(f.Content)
		m.uploaded[f.Name] = string(data)
	}
}
