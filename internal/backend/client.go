// Package backend talks to the document assistant service. Every response is
// validated against its shape before it is returned.
package backend

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/deon-gracias/rag/internal/config"
	"github.com/deon-gracias/rag/internal/domain"
	"github.com/deon-gracias/rag/internal/metrics"
	"github.com/deon-gracias/rag/internal/schema"
)

// ProgressFunc is called once per upload with the total byte count. The
// returned writer receives file content as it is read and is closed when
// the request finishes.
type ProgressFunc func(total int64) io.WriteCloser

// Client wraps HTTP communication with the backend
type Client struct {
	http           *resty.Client
	requestTimeout time.Duration
	chatTimeout    time.Duration
	uploadTimeout  time.Duration
	progress       ProgressFunc
}

type Option func(*Client)

// WithUploadProgress reports upload byte counts to fn
func WithUploadProgress(fn ProgressFunc) Option {
	return func(c *Client) { c.progress = fn }
}

// New creates a backend client
func New(cfg config.BackendConfig, opts ...Option) *Client {
	rc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Accept", "application/json").
		SetLogger(restyLogger{}).
		SetDebug(cfg.Debug)
	if cfg.UserAgent != "" {
		rc.SetHeader("User-Agent", cfg.UserAgent)
	}

	c := &Client{
		http:           rc,
		requestTimeout: cfg.RequestTimeout,
		chatTimeout:    cfg.ChatTimeout,
		uploadTimeout:  cfg.UploadTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateSession creates an empty session
func (c *Client) CreateSession(ctx context.Context) (_ domain.Session, err error) {
	const op = "create_session"
	defer c.observe(op, time.Now(), &err)

	body, err := c.do(ctx, op, c.requestTimeout, func(r *resty.Request) (*resty.Response, error) {
		return r.Post("/session/new")
	})
	if err != nil {
		return domain.Session{}, err
	}

	wire, err := schema.Decode[schema.Session](body, schema.SessionShape)
	if err != nil {
		return domain.Session{}, err
	}
	return wire.ToDomain(), nil
}

// DeleteSession deletes a session by id
func (c *Client) DeleteSession(ctx context.Context, id int64) (_ domain.DeleteResult, err error) {
	const op = "delete_session"
	defer c.observe(op, time.Now(), &err)

	body, err := c.do(ctx, op, c.requestTimeout, func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("id", strconv.FormatInt(id, 10)).Delete("/session/{id}")
	})
	if err != nil {
		return domain.DeleteResult{}, err
	}

	wire, err := schema.Decode[schema.SessionEnvelope](body, schema.SessionEnvelopeShape)
	if err != nil {
		return domain.DeleteResult{}, err
	}
	return wire.ToDomain(), nil
}

// ListSessions returns all sessions in server order
func (c *Client) ListSessions(ctx context.Context) (_ []domain.Session, err error) {
	const op = "list_sessions"
	defer c.observe(op, time.Now(), &err)

	body, err := c.do(ctx, op, c.requestTimeout, func(r *resty.Request) (*resty.Response, error) {
		return r.Get("/session")
	})
	if err != nil {
		return nil, err
	}

	wire, err := schema.DecodeList[schema.Session](body, schema.SessionListShape)
	if err != nil {
		return nil, err
	}
	sessions := make([]domain.Session, 0, len(wire))
	for _, s := range wire {
		sessions = append(sessions, s.ToDomain())
	}
	return sessions, nil
}

// GetSession fetches a session by name. Use IsAbsent on the error to tell
// a missing session from a failed call.
func (c *Client) GetSession(ctx context.Context, name string) (_ *domain.Session, err error) {
	const op = "get_session"
	defer c.observe(op, time.Now(), &err)

	body, err := c.do(ctx, op, c.requestTimeout, func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("name", name).Get("/session/{name}")
	})
	if err != nil {
		return nil, err
	}

	wire, err := schema.Decode[schema.Session](body, schema.SessionShape)
	if err != nil {
		return nil, err
	}
	s := wire.ToDomain()
	return &s, nil
}

// GetSessionMessages fetches the persisted history of a session
func (c *Client) GetSessionMessages(ctx context.Context, name string) (_ []domain.SessionMessage, err error) {
	const op = "get_session_messages"
	defer c.observe(op, time.Now(), &err)

	body, err := c.do(ctx, op, c.requestTimeout, func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("name", name).Get("/session/{name}/chat")
	})
	if err != nil {
		return nil, err
	}

	wire, err := schema.DecodeList[schema.Message](body, schema.MessageListShape)
	if err != nil {
		return nil, err
	}
	messages := make([]domain.SessionMessage, 0, len(wire))
	for _, m := range wire {
		messages = append(messages, m.ToDomain())
	}
	return messages, nil
}

// SendChatMessage asks a question in a session
func (c *Client) SendChatMessage(ctx context.Context, name, text string) (_ domain.ChatResponse, err error) {
	const op = "send_chat_message"
	defer c.observe(op, time.Now(), &err)

	body, err := c.do(ctx, op, c.chatTimeout, func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("name", name).
			SetHeader("Content-Type", "application/json").
			SetBody(domain.ChatRequest{Question: text}).
			Post("/session/{name}/chat")
	})
	if err != nil {
		return domain.ChatResponse{}, err
	}

	wire, err := schema.Decode[schema.ChatResponse](body, schema.ChatResponseShape)
	if err != nil {
		return domain.ChatResponse{}, err
	}

	resp := wire.ToDomain()
	if resp.Usage != nil {
		metrics.ObserveTokens(resp.Usage.InputTokens, resp.Usage.OutputTokens, resp.Usage.TotalTokens)
	}
	return resp, nil
}

// Health returns the backend's health message
func (c *Client) Health(ctx context.Context) (_ string, err error) {
	const op = "health"
	defer c.observe(op, time.Now(), &err)

	body, err := c.do(ctx, op, c.requestTimeout, func(r *resty.Request) (*resty.Response, error) {
		return r.Get("/check_health")
	})
	if err != nil {
		return "", err
	}

	wire, err := schema.Decode[schema.Health](body, schema.HealthShape)
	if err != nil {
		return "", err
	}
	return wire.Response, nil
}

// do executes one bounded request and returns the body of a 2xx answer
func (c *Client) do(ctx context.Context, op string, timeout time.Duration, send func(*resty.Request) (*resty.Response, error)) ([]byte, error) {
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	req := c.http.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", uuid.NewString())

	res, err := send(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	if !res.IsSuccess() {
		return nil, newStatusError(op, res.StatusCode(), res.Body())
	}
	return res.Body(), nil
}

func (c *Client) observe(op string, start time.Time, errp *error) {
	elapsed := time.Since(start)
	outcome := outcomeOf(*errp)
	metrics.ObserveBackendCall(op, outcome, elapsed)

	evt := log.Debug()
	if *errp != nil {
		evt = evt.Err(*errp)
	}
	evt.Str("op", op).
		Str("outcome", outcome).
		Dur("elapsed", elapsed).
		Msg("Backend call")
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...interface{}) { log.Error().Msgf(format, v...) }
func (restyLogger) Warnf(format string, v ...interface{})  { log.Warn().Msgf(format, v...) }
func (restyLogger) Debugf(format string, v ...interface{}) { log.Debug().Msgf(format, v...) }
