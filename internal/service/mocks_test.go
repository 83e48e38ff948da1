package service

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/deon-gracias/rag/internal/domain"
	"github.com/deon-gracias/rag/internal/llm"
)

// MockSessionRepository mocks the SessionRepository interface
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) Get(ctx context.Context, id int64) (*domain.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionRepository) GetByName(ctx context.Context, name string) (*domain.Session, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionRepository) List(ctx context.Context) ([]domain.Session, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Session), args.Error(1)
}

func (m *MockSessionRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockMessageRepository mocks the MessageRepository interface
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(ctx context.Context, message *domain.SessionMessage) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockMessageRepository) ListBySession(ctx context.Context, sessionID int64) ([]domain.SessionMessage, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).([]domain.SessionMessage), args.Error(1)
}

// MockDocumentRepository mocks the DocumentRepository interface
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *domain.StoredDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) ListBySession(ctx context.Context, sessionID int64) ([]domain.StoredDocument, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).([]domain.StoredDocument), args.Error(1)
}

// MockDocumentStore mocks the DocumentStore interface
type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) Save(session, name string, r io.Reader) (string, error) {
	args := m.Called(session, name, r)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentStore) RemoveSession(session string) error {
	args := m.Called(session)
	return args.Error(0)
}

// MockProvider mocks the llm.Provider interface
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Name() string         { return "mock" }
func (m *MockProvider) DefaultModel() string { return "mock-model" }
func (m *MockProvider) IsConfigured() bool   { return true }

func (m *MockProvider) Chat(ctx context.Context, req llm.Request) (*domain.ChatResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChatResponse), args.Error(1)
}
