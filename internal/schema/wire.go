package schema

import (
	"time"

	"github.com/deon-gracias/rag/internal/domain"
)

// Session is the wire form of a session
type Session struct {
	ID        int64      `json:"id" validate:"gt=0"`
	Name      string     `json:"name" validate:"required"`
	CreatedAt Timestamp  `json:"created_at"`
	UpdatedAt *Timestamp `json:"updated_at,omitempty"`
}

func (s Session) ToDomain() domain.Session {
	out := domain.Session{
		ID:        s.ID,
		Name:      s.Name,
		CreatedAt: s.CreatedAt.Time,
	}
	if s.UpdatedAt != nil {
		out.UpdatedAt = s.UpdatedAt.Time
	}
	return out
}

// SessionEnvelope wraps a session in an ok flag
type SessionEnvelope struct {
	OK   bool     `json:"ok"`
	Data *Session `json:"data,omitempty"`
}

func (e SessionEnvelope) ToDomain() domain.DeleteResult {
	res := domain.DeleteResult{OK: e.OK}
	if e.Data != nil {
		s := e.Data.ToDomain()
		res.Session = &s
	}
	return res
}

type Message struct {
	ID        int64     `json:"id" validate:"gt=0"`
	Type      string    `json:"type" validate:"oneof=human ai system user"`
	Content   string    `json:"content"`
	CreatedAt Timestamp `json:"created_at"`
}

func (m Message) ToDomain() domain.SessionMessage {
	return domain.SessionMessage{
		ID:        m.ID,
		Type:      domain.MessageType(m.Type),
		Content:   m.Content,
		CreatedAt: m.CreatedAt.Time,
	}
}

type Usage struct {
	InputTokens  int `json:"input_tokens" validate:"gte=0"`
	OutputTokens int `json:"output_tokens" validate:"gte=0"`
	TotalTokens  int `json:"total_tokens" validate:"gte=0"`
}

type ResponseMessage struct {
	Role string `json:"role"`
}

// ResponseMetadata durations are nanoseconds
type ResponseMetadata struct {
	Model         string           `json:"model"`
	CreatedAt     *Timestamp       `json:"created_at,omitempty"`
	Message       *ResponseMessage `json:"message,omitempty"`
	TotalDuration float64          `json:"total_duration" validate:"gte=0"`
	LoadDuration  float64          `json:"load_duration" validate:"gte=0"`
}

type ChatResponse struct {
	Content  string            `json:"content"`
	Type     string            `json:"type" validate:"oneof=human ai system user"`
	Usage    *Usage            `json:"usage_metadata,omitempty"`
	Response *ResponseMetadata `json:"response_metadata,omitempty"`
}

func (c ChatResponse) ToDomain() domain.ChatResponse {
	out := domain.ChatResponse{
		Content: c.Content,
		Type:    domain.MessageType(c.Type),
	}
	if c.Usage != nil {
		out.Usage = &domain.UsageMetadata{
			InputTokens:  c.Usage.InputTokens,
			OutputTokens: c.Usage.OutputTokens,
			TotalTokens:  c.Usage.TotalTokens,
		}
	}
	if c.Response != nil {
		md := &domain.ResponseMetadata{
			Model:         c.Response.Model,
			TotalDuration: time.Duration(c.Response.TotalDuration),
			LoadDuration:  time.Duration(c.Response.LoadDuration),
		}
		if c.Response.CreatedAt != nil {
			md.CreatedAt = c.Response.CreatedAt.Time
		}
		if c.Response.Message != nil {
			md.Role = c.Response.Message.Role
		}
		out.Response = md
	}
	return out
}

type Health struct {
	Response string `json:"response"`
}

type OK struct {
	OK bool `json:"ok"`
}
