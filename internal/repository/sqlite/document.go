package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/deon-gracias/rag/internal/domain"
)

// DocumentRepository implements domain.DocumentRepository
type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.StoredDocument) error {
	query := `
		INSERT INTO documents (chat_session_id, name, path, quality, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	res, err := r.db.ExecContext(ctx, query,
		doc.SessionID,
		doc.Name,
		doc.Path,
		string(doc.Quality),
		doc.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record document: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read document id: %w", err)
	}
	doc.ID = id
	return nil
}

func (r *DocumentRepository) ListBySession(ctx context.Context, sessionID int64) ([]domain.StoredDocument, error) {
	query := `
		SELECT id, chat_session_id, name, path, quality, created_at
		FROM documents
		WHERE chat_session_id = ?
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	docs := []domain.StoredDocument{}
	for rows.Next() {
		var d domain.StoredDocument
		var quality string
		if err := rows.Scan(&d.ID, &d.SessionID, &d.Name, &d.Path, &quality, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		d.Quality = domain.Quality(quality)
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
