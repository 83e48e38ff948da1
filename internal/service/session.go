package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/deon-gracias/rag/internal/domain"
	"github.com/deon-gracias/rag/internal/llm"
)

// DocumentStore keeps uploaded file content
type DocumentStore interface {
	Save(session, name string, r io.Reader) (string, error)
	RemoveSession(session string) error
}

// Upload is one received multipart file
type Upload struct {
	Name    string
	Content io.Reader
}

// SessionService handles session, chat and upload operations
type SessionService struct {
	sessions  domain.SessionRepository
	messages  domain.MessageRepository
	documents domain.DocumentRepository
	store     DocumentStore
	llmRouter *llm.Router
	provider  string
	now       func() time.Time
}

// NewSessionService creates a new session service. provider names the
// responder used for chat; empty selects the router default.
func NewSessionService(
	sessions domain.SessionRepository,
	messages domain.MessageRepository,
	documents domain.DocumentRepository,
	store DocumentStore,
	llmRouter *llm.Router,
	provider string,
) *SessionService {
	return &SessionService{
		sessions:  sessions,
		messages:  messages,
		documents: documents,
		store:     store,
		llmRouter: llmRouter,
		provider:  provider,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create creates an empty session with a fresh UUID name
func (s *SessionService) Create(ctx context.Context) (*domain.Session, error) {
	session := &domain.Session{
		Name:      uuid.NewString(),
		CreatedAt: s.now(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// List returns every session in id order
func (s *SessionService) List(ctx context.Context) ([]domain.Session, error) {
	sessions, err := s.sessions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// Get resolves ref as a numeric id first, then as a name
func (s *SessionService) Get(ctx context.Context, ref string) (*domain.Session, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return s.sessions.Get(ctx, id)
	}
	return s.sessions.GetByName(ctx, ref)
}

// Delete removes a session with its messages and documents. The deleted
// session is returned.
func (s *SessionService) Delete(ctx context.Context, id int64) (*domain.Session, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to delete session: %w", err)
	}

	if err := s.store.RemoveSession(session.Name); err != nil {
		log.Error().Err(err).Str("session", session.Name).Msg("failed to remove session documents")
	}

	return session, nil
}

// History returns the persisted messages of a session, oldest first
func (s *SessionService) History(ctx context.Context, name string) ([]domain.SessionMessage, error) {
	session, err := s.sessions.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	messages, err := s.messages.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

// Chat answers a question in a session and persists both turns
func (s *SessionService) Chat(ctx context.Context, name, question string) (*domain.ChatResponse, error) {
	session, err := s.sessions.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	history, err := s.messages.ListBySession(ctx, session.ID)
	if err != nil {
		log.Warn().Err(err).Int64("session_id", session.ID).Msg("failed to fetch chat history")
		history = []domain.SessionMessage{}
	}

	humanMsg := &domain.SessionMessage{
		SessionID: session.ID,
		Type:      domain.MessageHuman,
		Content:   question,
		CreatedAt: s.now(),
	}
	if err := s.messages.Create(ctx, humanMsg); err != nil {
		log.Error().Err(err).Msg("failed to save human message")
	}

	provider, err := s.llmRouter.GetProvider(s.provider)
	if err != nil {
		return nil, fmt.Errorf("failed to get responder: %w", err)
	}

	resp, err := provider.Chat(ctx, llm.Request{
		Question:  question,
		History:   history,
		Documents: s.documentNames(ctx, session.ID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}
	if resp.Type == "" {
		resp.Type = domain.MessageAI
	}

	log.Debug().
		Str("session", session.Name).
		Str("provider", provider.Name()).
		Int("answer_len", len(resp.Content)).
		Msg("chat answered")

	aiMsg := &domain.SessionMessage{
		SessionID: session.ID,
		Type:      domain.MessageAI,
		Content:   resp.Content,
		CreatedAt: s.now(),
	}
	if err := s.messages.Create(ctx, aiMsg); err != nil {
		log.Error().Err(err).Msg("failed to save AI message")
	}

	return resp, nil
}

// CreateAndUpload creates a session holding the given files. The session is
// removed again when any file cannot be stored.
func (s *SessionService) CreateAndUpload(ctx context.Context, files []Upload, quality string) (*domain.Session, error) {
	q, err := domain.ParseQuality(quality)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, domain.ErrNoFiles
	}

	session, err := s.Create(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.storeAll(ctx, session, files, q); err != nil {
		if _, derr := s.Delete(ctx, session.ID); derr != nil {
			log.Error().Err(derr).Int64("session_id", session.ID).Msg("failed to roll back session")
		}
		return nil, err
	}

	log.Info().
		Str("session", session.Name).
		Int("files", len(files)).
		Str("quality", string(q)).
		Msg("session created from upload")

	return session, nil
}

// Upload adds files to an existing session. They are processed at hi-res
// quality, as the upload endpoint takes no quality field.
func (s *SessionService) Upload(ctx context.Context, name string, files []Upload) error {
	if len(files) == 0 {
		return domain.ErrNoFiles
	}

	session, err := s.sessions.GetByName(ctx, name)
	if err != nil {
		return err
	}

	return s.storeAll(ctx, session, files, domain.QualityHiRes)
}

func (s *SessionService) storeAll(ctx context.Context, session *domain.Session, files []Upload, q domain.Quality) error {
	for _, f := range files {
		path, err := s.store.Save(session.Name, f.Name, f.Content)
		if err != nil {
			return fmt.Errorf("failed to store %s: %w", f.Name, err)
		}

		doc := &domain.StoredDocument{
			SessionID: session.ID,
			Name:      f.Name,
			Path:      path,
			Quality:   q,
			CreatedAt: s.now(),
		}
		if err := s.documents.Create(ctx, doc); err != nil {
			return fmt.Errorf("failed to record %s: %w", f.Name, err)
		}
	}
	return nil
}

func (s *SessionService) documentNames(ctx context.Context, sessionID int64) []string {
	docs, err := s.documents.ListBySession(ctx, sessionID)
	if err != nil {
		log.Warn().Err(err).Int64("session_id", sessionID).Msg("failed to list documents")
		return nil
	}

	names := make([]string, 0, len(docs))
	for _, d := range docs {
		names = append(names, d.Name)
	}
	return names
}

// IsNotFound reports whether err means the session does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrSessionNotFound)
}
