package domain

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is returned by repositories when no session matches.
var ErrSessionNotFound = errors.New("session not found")

// Session identifies one document collection and its conversation.
// ID is the primary key; Name is the routable lookup field.
type Session struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// DeleteResult is the backend's answer to a session deletion
type DeleteResult struct {
	OK      bool     `json:"ok"`
	Session *Session `json:"data,omitempty"`
}

// SessionRepository defines the interface for session storage
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, id int64) (*Session, error)
	GetByName(ctx context.Context, name string) (*Session, error)
	List(ctx context.Context) ([]Session, error)
	Delete(ctx context.Context, id int64) error
}
