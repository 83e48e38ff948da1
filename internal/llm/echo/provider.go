// Package echo answers every question with a canned reply. It lets the
// stand-in backend run without a model server.
package echo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/deon-gracias/rag/internal/domain"
	"github.com/deon-gracias/rag/internal/llm"
)

const model = "echo"

// Provider implements llm.Provider without any model
type Provider struct {
	now func() time.Time
}

// NewProvider creates the echo responder. A nil clock uses time.Now.
func NewProvider(now func() time.Time) llm.Provider {
	if now == nil {
		now = time.Now
	}
	return &Provider{now: now}
}

func (p *Provider) Name() string         { return "echo" }
func (p *Provider) DefaultModel() string { return model }
func (p *Provider) IsConfigured() bool   { return true }

// Chat repeats the question and names the session's documents
func (p *Provider) Chat(ctx context.Context, req llm.Request) (*domain.ChatResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := p.now()

	var b strings.Builder
	fmt.Fprintf(&b, "You asked: %s", strings.TrimSpace(req.Question))
	switch len(req.Documents) {
	case 0:
		b.WriteString("\nNo documents have been uploaded to this session.")
	default:
		fmt.Fprintf(&b, "\nDocuments in this session: %s", strings.Join(req.Documents, ", "))
	}
	content := b.String()

	prompt := 0
	for _, m := range llm.BuildMessages(req) {
		prompt += len(strings.Fields(m.Content))
	}
	output := len(strings.Fields(content))

	end := p.now()
	return &domain.ChatResponse{
		Content: content,
		Type:    domain.MessageAI,
		Usage: &domain.UsageMetadata{
			InputTokens:  prompt,
			OutputTokens: output,
			TotalTokens:  prompt + output,
		},
		Response: &domain.ResponseMetadata{
			Model:         model,
			CreatedAt:     end,
			Role:          llm.RoleAssistant,
			TotalDuration: end.Sub(start),
		},
	}, nil
}
