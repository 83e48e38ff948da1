package ollama

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/deon-gracias/rag/internal/domain"
	"github.com/deon-gracias/rag/internal/llm"
)

// Provider implements llm.Provider for Ollama's chat endpoint
type Provider struct {
	host         string
	defaultModel string
	client       *resty.Client
}

// NewProvider creates a new Ollama provider
func NewProvider(host, defaultModel string, timeout time.Duration) llm.Provider {
	if defaultModel == "" {
		defaultModel = "llama3.2"
	}
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	return &Provider{
		host:         strings.TrimRight(host, "/"),
		defaultModel: defaultModel,
		client:       resty.New().SetBaseURL(strings.TrimRight(host, "/")).SetTimeout(timeout),
	}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "ollama"
}

// DefaultModel returns the default model
func (p *Provider) DefaultModel() string {
	return p.defaultModel
}

// IsConfigured checks if a host is set
func (p *Provider) IsConfigured() bool {
	return p.host != ""
}

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []llm.Message  `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type chatResponse struct {
	Model           string      `json:"model"`
	CreatedAt       string      `json:"created_at"`
	Message         llm.Message `json:"message"`
	Done            bool        `json:"done"`
	TotalDuration   int64       `json:"total_duration"`
	LoadDuration    int64       `json:"load_duration"`
	PromptEvalCount int         `json:"prompt_eval_count"`
	EvalCount       int         `json:"eval_count"`
}

// Chat sends the conversation to /api/chat and maps the reply
func (p *Provider) Chat(ctx context.Context, req llm.Request) (*domain.ChatResponse, error) {
	ollamaReq := chatRequest{
		Model:    p.defaultModel,
		Messages: llm.BuildMessages(req),
		Stream:   false,
		Options: map[string]any{
			"temperature": 0.0,
		},
	}

	var ollamaResp chatResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(ollamaReq).
		SetResult(&ollamaResp).
		Post("/api/chat")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}

	createdAt, err := time.Parse(time.RFC3339Nano, ollamaResp.CreatedAt)
	if err != nil {
		createdAt = time.Now().UTC()
	}

	role := ollamaResp.Message.Role
	if role == "" {
		role = llm.RoleAssistant
	}

	return &domain.ChatResponse{
		Content: ollamaResp.Message.Content,
		Type:    domain.MessageAI,
		Usage: &domain.UsageMetadata{
			InputTokens:  ollamaResp.PromptEvalCount,
			OutputTokens: ollamaResp.EvalCount,
			TotalTokens:  ollamaResp.PromptEvalCount + ollamaResp.EvalCount,
		},
		Response: &domain.ResponseMetadata{
			Model:         ollamaResp.Model,
			CreatedAt:     createdAt,
			Role:          role,
			TotalDuration: time.Duration(ollamaResp.TotalDuration),
			LoadDuration:  time.Duration(ollamaResp.LoadDuration),
		},
	}, nil
}
