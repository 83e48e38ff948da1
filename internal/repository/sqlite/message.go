package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/deon-gracias/rag/internal/domain"
)

// MessageRepository implements domain.MessageRepository
type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, message *domain.SessionMessage) error {
	query := `
		INSERT INTO chats (chat_session_id, type, content, created_at)
		VALUES (?, ?, ?, ?)
	`
	res, err := r.db.ExecContext(ctx, query,
		message.SessionID,
		string(message.Type),
		message.Content,
		message.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read message id: %w", err)
	}
	message.ID = id
	return nil
}

// ListBySession returns a session's messages oldest first
func (r *MessageRepository) ListBySession(ctx context.Context, sessionID int64) ([]domain.SessionMessage, error) {
	query := `
		SELECT id, chat_session_id, type, content, created_at
		FROM chats
		WHERE chat_session_id = ?
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := []domain.SessionMessage{}
	for rows.Next() {
		var m domain.SessionMessage
		var kind string
		if err := rows.Scan(&m.ID, &m.SessionID, &kind, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Type = domain.MessageType(kind)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
