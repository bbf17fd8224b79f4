package llmproxy

import (
	"context"
	"strings"

	"github.com/hearthd/hearthd/internal/envelope"
	"github.com/hearthd/hearthd/internal/sink"
)

// deltaWordChunk is the number of words grouped into each emitted
// llm.delta — small enough to feel incremental to a client, large enough
// to avoid one envelope per word.
const deltaWordChunk = 4

// Handler drives one `llm.prompt` request: a single upstream Chat call,
// chunked into llm.delta envelopes and closed with llm.done, matching the
// streaming shape voice and pty already use on the wire even though the
// upstream call itself is not server-sent-events based.
type Handler struct {
	client *Client
	sink   sink.Sink
}

// New returns a handler bound to a provider client.
func New(client *Client) *Handler {
	return &Handler{client: client}
}

// SetSink installs the connection's shared sink.
func (h *Handler) SetSink(s sink.Sink) {
	h.sink = s
}

// Prompt executes one chat completion and streams its content as deltas.
func (h *Handler) Prompt(ctx context.Context, req envelope.LLMPrompt) error {
	var messages []Message
	for _, m := range req.Messages {
		messages = append(messages, Message{Role: m.Role, Content: m.Content})
	}

	resp, err := h.client.Chat(ctx, req.Provider, &ChatRequest{Model: req.Model, Messages: messages})
	if err != nil {
		return err
	}

	for _, chunk := range chunkWords(resp.Content, deltaWordChunk) {
		if h.sink != nil {
			h.sink.SendJSON(envelope.NewResponse(envelope.ModuleLLM, "delta", map[string]any{"text": chunk}))
		}
	}
	if h.sink != nil {
		h.sink.SendJSON(envelope.NewResponse(envelope.ModuleLLM, "done", nil))
	}
	return nil
}

// chunkWords splits text into groups of n whitespace-delimited words, each
// group prefixed with a leading space except the first, so concatenating
// all chunks gives the words joined by single spaces (runs of whitespace
// and leading/trailing whitespace in text are not preserved).
func chunkWords(text string, n int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	for i := 0; i < len(words); i += n {
		end := i + n
		if end > len(words) {
			end = len(words)
		}
		chunk := strings.Join(words[i:end], " ")
		if i > 0 {
			chunk = " " + chunk
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}
