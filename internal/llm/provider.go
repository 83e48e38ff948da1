package llm

import (
	"context"

	"github.com/deon-gracias/rag/internal/domain"
)

// Request contains everything a responder sees for one question
type Request struct {
	Question  string
	History   []domain.SessionMessage
	Documents []string
}

// Provider defines the interface for chat responders
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// DefaultModel returns the model used when none is configured
	DefaultModel() string

	// IsConfigured reports whether the provider can serve requests
	IsConfigured() bool

	// Chat answers the question in req
	Chat(ctx context.Context, req Request) (*domain.ChatResponse, error)
}
