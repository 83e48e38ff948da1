// Package upload drives the attach-files flow: staging documents, choosing a
// processing quality and creating a session from them.
package upload

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/deon-gracias/rag/internal/domain"
	"github.com/deon-gracias/rag/internal/metrics"
	"github.com/deon-gracias/rag/internal/registry"
)

// ErrBusy is returned while a submission is in flight
var ErrBusy = errors.New("upload already in progress")

// Backend is the part of the backend client the flow needs
type Backend interface {
	CreateAndUpload(ctx context.Context, files []*domain.File, quality domain.Quality) (*domain.Session, error)
	ListSessions(ctx context.Context) ([]domain.Session, error)
}

// Notifier shows short user-facing notices
type Notifier interface {
	Success(title, detail string)
	Error(title, detail string)
}

// Controller owns one upload surface. Its state moves
// Idle -> Submitting -> Idle; staged files are cleared on every outcome.
type Controller struct {
	backend  Backend
	registry registry.Writer
	notifier Notifier

	mu         sync.Mutex
	files      []*domain.File
	quality    domain.Quality
	open       bool
	submitting bool
	cancel     context.CancelFunc
	lastErr    error
}

type Option func(*Controller)

// WithQuality sets the initial quality mode
func WithQuality(q domain.Quality) Option {
	return func(c *Controller) {
		if q.Valid() {
			c.quality = q
		}
	}
}

func New(backend Backend, reg registry.Writer, notifier Notifier, opts ...Option) *Controller {
	c := &Controller{
		backend:  backend,
		registry: reg,
		notifier: notifier,
		quality:  domain.DefaultQuality,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open shows the surface
func (c *Controller) Open() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = true
}

// Close hides the surface and aborts an in-flight submission
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	if c.cancel != nil {
		c.cancel()
	}
}

// AddFiles stages files whose names are not staged yet and returns how many
// were added. A repeated name is dropped, including within one call.
func (c *Controller) AddFiles(files ...*domain.File) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.submitting {
		return 0
	}

	added := 0
	for _, f := range files {
		if f == nil || c.stagedLocked(f.Name) {
			continue
		}
		c.files = append(c.files, f)
		added++
	}
	return added
}

func (c *Controller) stagedLocked(name string) bool {
	for _, f := range c.files {
		if f.Name == name {
			return true
		}
	}
	return false
}

// RemoveFile unstages exactly the given file
func (c *Controller) RemoveFile(file *domain.File) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.submitting {
		return false
	}
	for i, f := range c.files {
		if f == file {
			c.files = append(c.files[:i:i], c.files[i+1:]...)
			return true
		}
	}
	return false
}

// SetQuality selects the processing quality for the next submission
func (c *Controller) SetQuality(q domain.Quality) error {
	if !q.Valid() {
		return fmt.Errorf("%w: got %q", domain.ErrInvalidQuality, q)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return ErrBusy
	}
	c.quality = q
	return nil
}

// Submit uploads every staged file. On success the registry is refreshed,
// the new session becomes active and is returned as the navigation target.
func (c *Controller) Submit(ctx context.Context) (*domain.Session, error) {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	if len(c.files) == 0 {
		c.mu.Unlock()
		return nil, domain.ErrNoFiles
	}

	files := append([]*domain.File(nil), c.files...)
	quality := c.quality
	ctx, cancel := context.WithCancel(ctx)
	c.submitting = true
	c.cancel = cancel
	c.lastErr = nil
	c.mu.Unlock()
	defer cancel()

	log.Info().
		Int("files", len(files)).
		Str("quality", string(quality)).
		Msg("Uploading documents")

	session, err := c.backend.CreateAndUpload(ctx, files, quality)
	metrics.ObserveUpload(string(quality), len(files), err == nil)
	if err == nil {
		c.refresh(ctx, *session)
	}

	c.mu.Lock()
	c.files = nil
	c.submitting = false
	c.cancel = nil
	c.open = false
	c.lastErr = err
	c.mu.Unlock()

	if err != nil {
		log.Error().Err(err).Msg("Upload failed")
		if errors.Is(err, context.Canceled) {
			c.notifier.Error("Upload cancelled", "")
		} else {
			c.notifier.Error("failed to upload data", "")
		}
		return nil, err
	}

	c.notifier.Success("File(s) Uploaded", fmt.Sprintf("Uploaded %d file(s)", len(files)))
	log.Info().
		Int64("session_id", session.ID).
		Str("session", session.Name).
		Msg("Session created")
	return session, nil
}

// refresh reloads the registry, making sure the new session is in it even
// when the list lags behind or cannot be fetched.
func (c *Controller) refresh(ctx context.Context, created domain.Session) {
	sessions, err := c.backend.ListSessions(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to refresh sessions after upload")
		c.registry.Upsert(created)
	} else {
		c.registry.SetSessions(sessions)
		if !contains(sessions, created.ID) {
			c.registry.Upsert(created)
		}
	}
	c.registry.SetActive(created)
}

func contains(sessions []domain.Session, id int64) bool {
	for _, s := range sessions {
		if s.ID == id {
			return true
		}
	}
	return false
}

// Files returns the staged files in staging order
func (c *Controller) Files() []*domain.File {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*domain.File(nil), c.files...)
}

func (c *Controller) Quality() domain.Quality {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quality
}

func (c *Controller) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

func (c *Controller) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// LastError is the outcome of the most recent submission
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}
