package llmproxy

import (
	"context"
	"fmt"
)

// Client routes a prompt to a named provider. Grounded on the teacher's
// internal/llm/types.go Client, generalized to select by the caller's
// explicit provider name (the envelope always names one) rather than by
// SupportsModel sniffing alone.
type Client struct {
	providers map[string]Provider
}

// NewClient builds a Client from per-provider credentials.
func NewClient(configs map[string]ClientConfig) *Client {
	c := &Client{providers: make(map[string]Provider)}
	for name, cfg := range configs {
		switch name {
		case "openai":
			c.providers[name] = NewOpenAIProvider(cfg.APIKey, cfg.BaseURL)
		case "anthropic":
			c.providers[name] = NewAnthropicProvider(cfg.APIKey)
		}
	}
	return c
}

// Chat resolves the named provider and sends the request. If name is
// empty, the first provider that claims to support the model is used.
func (c *Client) Chat(ctx context.Context, name string, req *ChatRequest) (*ChatResponse, error) {
	if name != "" {
		p, ok := c.providers[name]
		if !ok {
			return nil, fmt.Errorf("llmproxy: unknown provider %q", name)
		}
		return p.Chat(ctx, req)
	}

	for _, p := range c.providers {
		if p.SupportsModel(req.Model) {
			return p.Chat(ctx, req)
		}
	}
	return nil, fmt.Errorf("llmproxy: no provider supports model %q", req.Model)
}
