package asr

import (
	"context"
	"fmt"
	"time"

	"github.com/hearthd/hearthd/internal/audiocapture"
	"github.com/hearthd/hearthd/internal/config"
)

// raceResult carries one engine's outcome back to TranscribeWithFallback.
type raceResult struct {
	provider config.ASRProvider
	text     string
	err      error
}

// TranscribeWithFallback runs the primary engine and, if enabled, a
// fallback engine concurrently, returning the first success and
// cancelling the loser. If both fail, the primary's error is returned
// (SPEC_FULL.md §4.7).
func TranscribeWithFallback(ctx context.Context, primary, fallback Engine, primaryName, fallbackName config.ASRProvider, audio audiocapture.AudioData) (TranscriptionResult, error) {
	start := time.Now()

	if fallback == nil {
		text, err := primary.Transcribe(ctx, audio)
		if err != nil {
			return TranscriptionResult{}, fmt.Errorf("%s: %w", primaryName, err)
		}
		return TranscriptionResult{Text: text, Engine: primaryName, DurationMs: time.Since(start).Milliseconds()}, nil
	}

	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan raceResult, 2)

	go func() {
		text, err := primary.Transcribe(raceCtx, audio)
		results <- raceResult{provider: primaryName, text: text, err: err}
	}()
	go func() {
		text, err := fallback.Transcribe(raceCtx, audio)
		results <- raceResult{provider: fallbackName, text: text, err: err}
	}()

	first := <-results
	if first.err == nil {
		cancel()
		return TranscriptionResult{
			Text:         first.text,
			Engine:       first.provider,
			UsedFallback: first.provider == fallbackName,
			DurationMs:   time.Since(start).Milliseconds(),
		}, nil
	}

	second := <-results
	if second.err == nil {
		return TranscriptionResult{
			Text:         second.text,
			Engine:       second.provider,
			UsedFallback: second.provider == fallbackName,
			DurationMs:   time.Since(start).Milliseconds(),
		}, nil
	}

	primaryErr := second.err
	if first.provider == primaryName {
		primaryErr = first.err
	}
	return TranscriptionResult{}, fmt.Errorf("%s: %w", primaryName, primaryErr)
}
