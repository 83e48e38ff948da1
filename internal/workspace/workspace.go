// Package workspace ties the registry, the backend client and the flow
// controllers together for a front end.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/deon-gracias/rag/internal/backend"
	"github.com/deon-gracias/rag/internal/chat"
	"github.com/deon-gracias/rag/internal/domain"
	"github.com/deon-gracias/rag/internal/registry"
	"github.com/deon-gracias/rag/internal/upload"
)

// ErrNotFound means the session or its history does not exist. Front ends
// show a dedicated not-found view for it.
var ErrNotFound = errors.New("session not found")

// Backend is everything the workspace asks of the backend client
type Backend interface {
	upload.Backend
	chat.Sender
	GetSession(ctx context.Context, name string) (*domain.Session, error)
	GetSessionMessages(ctx context.Context, name string) ([]domain.SessionMessage, error)
	DeleteSession(ctx context.Context, id int64) (domain.DeleteResult, error)
	UploadToSession(ctx context.Context, name string, files []*domain.File) error
}

type Options struct {
	SessionTTL       time.Duration
	CleanupInterval  time.Duration
	MinMessageLength int
	DefaultQuality   domain.Quality
}

type Workspace struct {
	backend  Backend
	registry *registry.Registry
	notifier upload.Notifier
	sessions *cache.Cache // session name -> domain.Session
	opts     Options
}

func New(b Backend, reg *registry.Registry, notifier upload.Notifier, opts Options) *Workspace {
	if opts.SessionTTL == 0 {
		opts.SessionTTL = time.Minute
	}
	if opts.CleanupInterval == 0 {
		opts.CleanupInterval = 5 * time.Minute
	}
	if !opts.DefaultQuality.Valid() {
		opts.DefaultQuality = domain.DefaultQuality
	}

	return &Workspace{
		backend:  b,
		registry: reg,
		notifier: notifier,
		sessions: cache.New(opts.SessionTTL, opts.CleanupInterval),
		opts:     opts,
	}
}

func (w *Workspace) Registry() *registry.Registry {
	return w.registry
}

// Refresh replaces the registry's list with the backend's
func (w *Workspace) Refresh(ctx context.Context) error {
	sessions, err := w.backend.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	w.registry.SetSessions(sessions)
	for _, s := range sessions {
		w.sessions.SetDefault(s.Name, s)
	}
	return nil
}

// Open resolves a session by name, loads its history and makes it active
func (w *Workspace) Open(ctx context.Context, name string) (*chat.Controller, error) {
	session, err := w.lookup(ctx, name)
	if err != nil {
		return nil, err
	}

	history, err := w.backend.GetSessionMessages(ctx, name)
	if err != nil {
		if backend.IsAbsent(err) {
			log.Warn().Err(err).Str("session", name).Msg("Session history not found")
			w.sessions.Delete(name)
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	w.registry.SetActive(session)
	return chat.New(session, history, w.backend, chat.Options{MinLength: w.opts.MinMessageLength}), nil
}

func (w *Workspace) lookup(ctx context.Context, name string) (domain.Session, error) {
	if cached, ok := w.sessions.Get(name); ok {
		return cached.(domain.Session), nil
	}

	session, err := w.backend.GetSession(ctx, name)
	if err != nil {
		if backend.IsAbsent(err) {
			log.Warn().Err(err).Str("session", name).Msg("Session not found")
			return domain.Session{}, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return domain.Session{}, fmt.Errorf("failed to get session: %w", err)
	}

	w.sessions.SetDefault(name, *session)
	return *session, nil
}

// Delete removes a session from the registry right away, then asks the
// backend. A failed delete reloads the registry so it matches the backend.
func (w *Workspace) Delete(ctx context.Context, id int64) (domain.DeleteResult, error) {
	w.registry.Remove(id)
	w.forget(id)

	res, err := w.backend.DeleteSession(ctx, id)
	if err == nil && !res.OK {
		err = fmt.Errorf("%w: delete session %d", backend.ErrRejected, id)
	}
	if err != nil {
		if rerr := w.Refresh(ctx); rerr != nil {
			log.Warn().Err(rerr).Msg("Failed to refresh sessions after failed delete")
		}
		return res, err
	}

	log.Info().Int64("session_id", id).Msg("Session deleted")
	return res, nil
}

func (w *Workspace) forget(id int64) {
	for name, item := range w.sessions.Items() {
		if s, ok := item.Object.(domain.Session); ok && s.ID == id {
			w.sessions.Delete(name)
		}
	}
}

// NewUpload builds an upload flow that publishes into the registry
func (w *Workspace) NewUpload() *upload.Controller {
	return upload.New(w.backend, w.registry, w.notifier, upload.WithQuality(w.opts.DefaultQuality))
}

// Attach adds documents to an existing session
func (w *Workspace) Attach(ctx context.Context, name string, files []*domain.File) error {
	if len(files) == 0 {
		return domain.ErrNoFiles
	}
	if err := w.backend.UploadToSession(ctx, name, files); err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		log.Error().Err(err).Str("session", name).Msg("Attach failed")
		w.notifier.Error("failed to upload data", "")
		return err
	}
	w.notifier.Success("File(s) Uploaded", fmt.Sprintf("Uploaded %d file(s)", len(files)))
	return nil
}
