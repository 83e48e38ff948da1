package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/deon-gracias/rag/internal/domain"
)

// SessionRepository implements domain.SessionRepository
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, name, created_at, updated_at`

func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO chat_sessions (name, created_at, updated_at)
		VALUES (?, ?, ?)
	`
	res, err := r.db.ExecContext(ctx, query,
		session.Name,
		session.CreatedAt.UTC(),
		nullTime(session.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read session id: %w", err)
	}
	session.ID = id
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, id int64) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM chat_sessions WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *SessionRepository) GetByName(ctx context.Context, name string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM chat_sessions WHERE name = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, name))
}

func (r *SessionRepository) List(ctx context.Context) ([]domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM chat_sessions ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []domain.Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

func (r *SessionRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM chat_sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepository) scanOne(row *sql.Row) (*domain.Session, error) {
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*domain.Session, error) {
	var s domain.Session
	var updated sql.NullTime
	if err := row.Scan(&s.ID, &s.Name, &s.CreatedAt, &updated); err != nil {
		return nil, err
	}
	if updated.Valid {
		s.UpdatedAt = updated.Time
	}
	return &s, nil
}
