package llmproxy

import (
	"strings"
	"testing"
)

func TestChunkWordsReconstructs(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog"
	chunks := chunkWords(text, 4)
	if strings.Join(chunks, "") != text {
		t.Fatalf("chunks = %q, want %q", strings.Join(chunks, ""), text)
	}
}

func TestChunkWordsEmpty(t *testing.T) {
	if chunks := chunkWords("   ", 4); chunks != nil {
		t.Fatalf("expected nil for blank text, got %v", chunks)
	}
}

func TestProviderSupportsModel(t *testing.T) {
	o := NewOpenAIProvider("key", "")
	if !o.SupportsModel("gpt-4o") {
		t.Fatal("expected openai to support gpt-4o")
	}
	a := NewAnthropicProvider("key")
	if !a.SupportsModel("claude-3-5-sonnet") {
		t.Fatal("expected anthropic to support claude-3-5-sonnet")
	}
	if a.SupportsModel("gpt-4o") {
		t.Fatal("anthropic should not claim gpt models")
	}
}
