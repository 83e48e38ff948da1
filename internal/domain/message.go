package domain

import (
	"context"
	"time"
)

// MessageType is the wire discriminator of a persisted message
type MessageType string

const (
	MessageHuman MessageType = "human"
	MessageAI    MessageType = "ai"

	// Older backends wrote these.
	MessageSystem MessageType = "system"
	MessageUser   MessageType = "user"
)

// SessionMessage is one persisted turn in a session's history
type SessionMessage struct {
	ID        int64       `json:"id"`
	SessionID int64       `json:"chat_session_id,omitempty"`
	Type      MessageType `json:"type"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

// MessageRepository defines the interface for message storage
type MessageRepository interface {
	Create(ctx context.Context, message *SessionMessage) error
	ListBySession(ctx context.Context, sessionID int64) ([]SessionMessage, error)
}
