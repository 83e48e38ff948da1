package domain

import "time"

// ChatRequest is the body of a chat call
type ChatRequest struct {
	Question string `json:"question" validate:"required"`
}

// ChatResponse is returned by a live chat call. It is never persisted by
// the client; reloading history drops the metadata.
type ChatResponse struct {
	Content  string            `json:"content"`
	Type     MessageType       `json:"type"`
	Usage    *UsageMetadata    `json:"usage_metadata,omitempty"`
	Response *ResponseMetadata `json:"response_metadata,omitempty"`
}

// UsageMetadata contains token accounting for one response
type UsageMetadata struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// ResponseMetadata describes the model call that produced a response
type ResponseMetadata struct {
	Model         string        `json:"model"`
	CreatedAt     time.Time     `json:"created_at"`
	Role          string        `json:"role"`
	TotalDuration time.Duration `json:"total_duration"`
	LoadDuration  time.Duration `json:"load_duration"`
}
