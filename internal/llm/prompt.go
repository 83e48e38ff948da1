package llm

import (
	"fmt"
	"strings"

	"github.com/deon-gracias/rag/internal/domain"
)

// Chat roles understood by chat-completion style models
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat-completion turn
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// BuildSystemPrompt creates the instruction block for document questions
func BuildSystemPrompt(documents []string) string {
	var b strings.Builder
	b.WriteString("You are an assistant for question-answering tasks. ")
	b.WriteString("Use the documents uploaded to this session to answer the question. ")
	b.WriteString("If you don't know the answer, say that you don't know. ")
	b.WriteString("Use three sentences maximum and keep the answer concise.")

	if len(documents) > 0 {
		b.WriteString("\n\nDocuments:\n")
		for _, d := range documents {
			fmt.Fprintf(&b, "- %s\n", d)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// BuildMessages turns a request into the system prompt, prior turns and
// the new question. History entries of unknown type are skipped.
func BuildMessages(req Request) []Message {
	msgs := make([]Message, 0, len(req.History)+2)
	msgs = append(msgs, Message{Role: RoleSystem, Content: BuildSystemPrompt(req.Documents)})

	for _, m := range req.History {
		role, ok := roleOf(m.Type)
		if !ok {
			continue
		}
		msgs = append(msgs, Message{Role: role, Content: m.Content})
	}

	return append(msgs, Message{Role: RoleUser, Content: req.Question})
}

func roleOf(t domain.MessageType) (string, bool) {
	switch t {
	case domain.MessageHuman, domain.MessageUser:
		return RoleUser, true
	case domain.MessageAI:
		return RoleAssistant, true
	case domain.MessageSystem:
		return RoleSystem, true
	default:
		return "", false
	}
}
