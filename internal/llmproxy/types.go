// Package llmproxy adapts upstream chat-completion providers (OpenAI,
// Anthropic) behind one Provider interface and streams their replies to
// the client as prompt/delta/done envelopes. Grounded on the teacher's
// internal/llm package (Provider/ChatRequest/ChatResponse shape,
// per-provider convertRequest/makeRequest/convertResponse structure),
// generalized from the teacher's tool-calling agent loop (not needed here)
// to plain chat completion plus client-side delta chunking.
package llmproxy

import "context"

// Message is one chat turn.
type Message struct {
	Role    string
	Content string
}

// ChatRequest is a provider-agnostic chat completion request.
type ChatRequest struct {
	Model    string
	Messages []Message
}

// ChatResponse is a provider-agnostic chat completion result.
type ChatResponse struct {
	Content string
}

// Provider adapts one upstream vendor's chat completion API.
type Provider interface {
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
	SupportsModel(model string) bool
}

// ClientConfig configures one provider's credentials.
type ClientConfig struct {
	APIKey  string
	BaseURL string
}
