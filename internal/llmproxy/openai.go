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

// OpenAIProvider implements Provider for OpenAI-compatible chat APIs.
// Grounded on the teacher's internal/llm/openai.go.
type OpenAIProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewOpenAIProvider returns an OpenAI provider; an empty baseURL defaults
// to the public API.
func NewOpenAIProvider(apiKey, baseURL string) *OpenAIProvider {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &OpenAIProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// SupportsModel matches OpenAI's gpt-/o1- model name families.
func (p *OpenAIProvider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, "gpt-") || strings.HasPrefix(model, "o1-")
}

type openaiChatRequest struct {
	Model    string          `json:"model"`
	Messages []openaiMessage `json:"messages"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiChatResponse struct {
	Choices []openaiChoice `json:"choices"`
}

type openaiChoice struct {
	Message openaiMessage `json:"message"`
}

// Chat sends the conversation to OpenAI and returns the top choice.
func (p *OpenAIProvider) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	oreq := &openaiChatRequest{Model: req.Model}
	for _, m := range req.Messages {
		oreq.Messages = append(oreq.Messages, openaiMessage{Role: m.Role, Content: m.Content})
	}

	body, err := p.makeRequest(ctx, oreq)
	if err != nil {
		return nil, err
	}

	var oresp openaiChatResponse
	if err := json.Unmarshal(body, &oresp); err != nil {
		return nil, fmt.Errorf("parse openai response: %w", err)
	}
	if len(oresp.Choices) == 0 {
		return &ChatResponse{}, nil
	}
	return &ChatResponse{Content: oresp.Choices[0].Message.Content}, nil
}

func (p *OpenAIProvider) makeRequest(ctx context.Context, req *openaiChatRequest) ([]byte, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal openai request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("build openai request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read openai response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai api error (status %d): %s", resp.StatusCode, respBody)
	}
	return respBody, nil
}
