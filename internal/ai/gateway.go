// Package ai provides a provider-agnostic gateway to multimodal AI services
// with ordered fallback routing.
package ai

import (
	"context"
	"errors"
)

// ErrNoContent is returned when a provider answers without any text.
var ErrNoContent = errors.New("no content in response")

// Image is an inline image attached to a message.
type Image struct {
	MIMEType string
	Data     []byte
}

// Message represents a chat message.
type Message struct {
	Role    string  `json:"role"`
	Content string  `json:"content"`
	Images  []Image `json:"-"`
}

// CompletionRequest is the input to an AI completion.
type CompletionRequest struct {
	Messages    []Message `json:"messages"`
	Model       string    `json:"model,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

// CompletionResponse is the output from an AI completion.
type CompletionResponse struct {
	Content      string `json:"content"`
	Model        string `json:"model"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
}

// TotalTokens returns the sum of input and output tokens.
func (r CompletionResponse) TotalTokens() int {
	return r.InputTokens + r.OutputTokens
}

// Provider is the interface all AI providers must implement.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
	HealthCheck(ctx context.Context) error
}

// UserMessage builds a user message carrying text and optional images.
func UserMessage(text string, images ...Image) Message {
	return Message{Role: "user", Content: text, Images: images}
}
