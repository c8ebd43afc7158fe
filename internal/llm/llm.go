package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// Message is one chat message in a generation request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request captures a single generation-service dispatch.
type Request struct {
	Messages  []Message
	MaxTokens int
}

// Client abstracts the generation service. Complete returns the raw response
// envelope verbatim; envelope and content validation belong to the caller so
// a malformed response can drive its retry decision.
type Client interface {
	Complete(ctx context.Context, req Request) (json.RawMessage, error)
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("generation service not configured")

// PlaceholderClient stands in when no provider is wired; every category then
// degrades to its sentinel.
type PlaceholderClient struct{}

// Complete returns ErrNotConfigured.
func (PlaceholderClient) Complete(ctx context.Context, req Request) (json.RawMessage, error) {
	_ = ctx
	_ = req
	return nil, ErrNotConfigured
}
