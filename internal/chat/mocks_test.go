package chat

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/deon-gracias/rag/internal/domain"
)

// MockSender mocks the Sender interface
type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendChatMessage(ctx context.Context, name, text string) (domain.ChatResponse, error) {
	args := m.Called(ctx, name, text)
	return args.Get(0).(domain.ChatResponse), args.Error(1)
}
