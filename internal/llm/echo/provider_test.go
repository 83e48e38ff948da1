package echo

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deon-gracias/rag/internal/domain"
	"github.com/deon-gracias/rag/internal/llm"
)

func TestProvider_Chat(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	p := NewProvider(func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Second)
	})

	resp, err := p.Chat(context.Background(), llm.Request{
		Question:  "  what is in it? ",
		Documents: []string{"report.pdf"},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.MessageAI, resp.Type)
	assert.True(t, strings.HasPrefix(resp.Content, "You asked: what is in it?"))
	assert.Contains(t, resp.Content, "report.pdf")

	require.NotNil(t, resp.Usage)
	assert.Positive(t, resp.Usage.InputTokens)
	assert.Equal(t, resp.Usage.InputTokens+resp.Usage.OutputTokens, resp.Usage.TotalTokens)

	require.NotNil(t, resp.Response)
	assert.Equal(t, "echo", resp.Response.Model)
	assert.Equal(t, "assistant", resp.Response.Role)
	assert.Equal(t, time.Second, resp.Response.TotalDuration)
}

func TestProvider_NoDocuments(t *testing.T) {
	resp, err := NewProvider(nil).Chat(context.Background(), llm.Request{Question: "hi"})
	require.NoError(t, err)
	assert.Contains(t, resp.Content, "No documents")
}

func TestProvider_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewProvider(nil).Chat(ctx, llm.Request{Question: "hi"})
	assert.ErrorIs(t, err, context.Canceled)
}
