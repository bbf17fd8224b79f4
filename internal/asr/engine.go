// Package asr adapts three speech-recognition vendors (Qwen, Doubao,
// SenseVoice) behind one Engine interface, plus the primary/fallback
// racing strategy used by internal/voice. HTTP one-shot clients are
// grounded on net/http directly (see DESIGN.md); the realtime WebSocket
// clients are grounded on other_examples/c59575f3_ashi009-asr-eval__pkg-qwen-client.go.go
// and other_examples/a2ad366d_haivivi-giztoy__go-pkg-doubaospeech-asr_v2.go.go,
// both of which reach for gorilla/websocket for this exact purpose.
package asr

import (
	"context"
	"fmt"

	"github.com/hearthd/hearthd/internal/audiocapture"
	"github.com/hearthd/hearthd/internal/config"
)

// Engine transcribes audio, either as one complete buffer or as a live
// stream of chunks.
type Engine interface {
	// Transcribe sends one complete recording and returns its final text.
	Transcribe(ctx context.Context, audio audiocapture.AudioData) (string, error)

	// TranscribeStream consumes chunks until they're exhausted or stop
	// fires, invoking partial with each incremental hypothesis, and
	// returns the final aggregated text.
	TranscribeStream(ctx context.Context, chunks <-chan audiocapture.AudioChunk, partial func(string), stop <-chan struct{}) (string, error)
}

// New resolves a ProviderConfig to its concrete Engine. Validate should be
// called first; New does not re-check credentials.
func New(pc config.ProviderConfig) (Engine, error) {
	switch pc.Provider {
	case config.ProviderQwen:
		return newQwenEngine(pc), nil
	case config.ProviderDoubao:
		return newDoubaoEngine(pc), nil
	case config.ProviderSenseVoice:
		return newSenseVoiceEngine(pc), nil
	default:
		return nil, fmt.Errorf("asr: unknown provider %q", pc.Provider)
	}
}

// TranscriptionResult reports which engine produced a transcript and how.
type TranscriptionResult struct {
	Text         string
	Engine       config.ASRProvider
	UsedFallback bool
	DurationMs   int64
}
