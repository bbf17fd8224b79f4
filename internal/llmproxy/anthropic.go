package llmproxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// AnthropicProvider implements Provider for Anthropic's Messages API.
// Grounded on the teacher's internal/llm/anthropic.go.
type AnthropicProvider struct {
	apiKey string
	client *http.Client
}

// NewAnthropicProvider returns an Anthropic provider.
func NewAnthropicProvider(apiKey string) *AnthropicProvider {
	return &AnthropicProvider{apiKey: apiKey, client: &http.Client{Timeout: 60 * time.Second}}
}

// SupportsModel matches Anthropic's claude- model name family.
func (p *AnthropicProvider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, "claude-")
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []anthropicContentBlock `json:"content"`
}

type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Chat sends the conversation to Anthropic, folding any system messages
// into the dedicated system field.
func (p *AnthropicProvider) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	areq := &anthropicRequest{Model: req.Model, MaxTokens: 4096}

	var system strings.Builder
	for _, m := range req.Messages {
		if m.Role == "system" {
			if system.Len() > 0 {
				system.WriteString("\n\n")
			}
			system.WriteString(m.Content)
			continue
		}
		areq.Messages = append(areq.Messages, anthropicMessage{Role: m.Role, Content: m.Content})
	}
	areq.System = system.String()

	body, err := p.makeRequest(ctx, areq)
	if err != nil {
		return nil, err
	}

	var aresp anthropicResponse
	if err := json.Unmarshal(body, &aresp); err != nil {
		return nil, fmt.Errorf("parse anthropic response: %w", err)
	}

	var textParts []string
	for _, block := range aresp.Content {
		if block.Type == "text" {
			textParts = append(textParts, block.Text)
		}
	}
	return &ChatResponse{Content: strings.Join(textParts, "")}, nil
}

func (p *AnthropicProvider) makeRequest(ctx context.Context, req *anthropicRequest) ([]byte, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal anthropic request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.anthropic.com/v1/messages", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("build anthropic request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read anthropic response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("anthropic api error (status %d): %s", resp.StatusCode, respBody)
	}
	return respBody, nil
}
