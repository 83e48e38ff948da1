// Package chat holds the transcript of one session and the send flow that
// appends to it.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/deon-gracias/rag/internal/domain"
	"github.com/deon-gracias/rag/internal/metrics"
)

var (
	ErrTooShort       = errors.New("message is too short")
	ErrBusy           = errors.New("a message is already being sent")
	ErrNothingToRetry = errors.New("no failed message to retry")
)

// DefaultMinLength is the shortest message accepted, in characters
const DefaultMinLength = 2

// Sender is the part of the backend client the flow needs
type Sender interface {
	SendChatMessage(ctx context.Context, name, text string) (domain.ChatResponse, error)
}

// Controller is one session's transcript. Entries are only ever appended,
// in call order.
type Controller struct {
	session   domain.Session
	sender    Sender
	minLength int
	now       func() time.Time

	mu         sync.Mutex
	transcript []domain.Entry
	submitting bool
	cancel     context.CancelFunc
}

type Options struct {
	// MinLength overrides DefaultMinLength when positive
	MinLength int
	Now       func() time.Time
}

// New seeds a controller from the session's persisted history. Messages of
// an unknown type are skipped.
func New(session domain.Session, history []domain.SessionMessage, sender Sender, opts Options) *Controller {
	c := &Controller{
		session:   session,
		sender:    sender,
		minLength: DefaultMinLength,
		now:       time.Now,
	}
	if opts.MinLength > 0 {
		c.minLength = opts.MinLength
	}
	if opts.Now != nil {
		c.now = opts.Now
	}

	c.transcript = make([]domain.Entry, 0, len(history))
	for _, msg := range history {
		entry, err := domain.EntryFromMessage(msg)
		if err != nil {
			log.Warn().Err(err).Int64("message_id", msg.ID).Msg("Skipping history entry")
			continue
		}
		c.transcript = append(c.transcript, entry)
	}
	return c
}

func (c *Controller) Session() domain.Session {
	return c.session
}

// Send appends the human entry right away, then the AI answer once it
// arrives. On failure the human entry stays, marked failed.
func (c *Controller) Send(ctx context.Context, text string) (domain.Entry, error) {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < c.minLength {
		metrics.ObserveChatSend("rejected")
		return domain.Entry{}, fmt.Errorf("%w: at least %d characters", ErrTooShort, c.minLength)
	}

	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		metrics.ObserveChatSend("rejected")
		return domain.Entry{}, ErrBusy
	}
	c.transcript = append(c.transcript, domain.NewHumanEntry(text, c.now()))
	index := len(c.transcript) - 1
	ctx = c.beginLocked(ctx)
	c.mu.Unlock()

	return c.deliver(ctx, index, text)
}

// Retry re-sends the last entry when it is a failed human entry
func (c *Controller) Retry(ctx context.Context) (domain.Entry, error) {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return domain.Entry{}, ErrBusy
	}
	index := len(c.transcript) - 1
	if index < 0 {
		c.mu.Unlock()
		return domain.Entry{}, ErrNothingToRetry
	}
	last := c.transcript[index]
	if last.Kind != domain.KindHuman || last.Status != domain.StatusFailed {
		c.mu.Unlock()
		return domain.Entry{}, ErrNothingToRetry
	}
	c.transcript[index].Status = domain.StatusPending
	ctx = c.beginLocked(ctx)
	c.mu.Unlock()

	return c.deliver(ctx, index, last.Content)
}

func (c *Controller) beginLocked(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	c.submitting = true
	c.cancel = cancel
	return ctx
}

func (c *Controller) deliver(ctx context.Context, index int, text string) (domain.Entry, error) {
	resp, err := c.sender.SendChatMessage(ctx, c.session.Name, text)

	var reply domain.Entry
	if err == nil {
		reply, err = domain.EntryFromResponse(resp, c.now())
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancel()
	c.cancel = nil
	c.submitting = false

	if err != nil {
		c.transcript[index].Status = domain.StatusFailed
		metrics.ObserveChatSend("failed")
		log.Error().Err(err).Str("session", c.session.Name).Msg("Failed to send message")
		return domain.Entry{}, err
	}

	c.transcript[index].Status = domain.StatusDelivered
	c.transcript = append(c.transcript, reply)
	metrics.ObserveChatSend("ok")
	return reply, nil
}

// Cancel aborts the in-flight send, if any
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}

// Transcript returns a copy of the entries in order
func (c *Controller) Transcript() []domain.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Entry(nil), c.transcript...)
}

func (c *Controller) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}
