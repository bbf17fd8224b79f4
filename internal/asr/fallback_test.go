package asr

import (
	"context"
	"errors"
	"testing"

	"github.com/hearthd/hearthd/internal/audiocapture"
	"github.com/hearthd/hearthd/internal/config"
)

type fakeEngine struct {
	text string
	err  error
}

func (f *fakeEngine) Transcribe(ctx context.Context, audio audiocapture.AudioData) (string, error) {
	return f.text, f.err
}

func (f *fakeEngine) TranscribeStream(ctx context.Context, chunks <-chan audiocapture.AudioChunk, partial func(string), stop <-chan struct{}) (string, error) {
	return f.text, f.err
}

func TestTranscribeWithFallbackPrimarySucceeds(t *testing.T) {
	primary := &fakeEngine{text: "hello"}
	fallback := &fakeEngine{text: "bye"}

	res, err := TranscribeWithFallback(context.Background(), primary, fallback, config.ProviderQwen, config.ProviderDoubao, audiocapture.AudioData{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "hello" || res.UsedFallback {
		t.Fatalf("got %+v, want primary result", res)
	}
}

func TestTranscribeWithFallbackPrimaryFailsFallbackSucceeds(t *testing.T) {
	primary := &fakeEngine{err: errors.New("boom")}
	fallback := &fakeEngine{text: "bye"}

	res, err := TranscribeWithFallback(context.Background(), primary, fallback, config.ProviderQwen, config.ProviderDoubao, audiocapture.AudioData{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "bye" || !res.UsedFallback {
		t.Fatalf("got %+v, want fallback result", res)
	}
}

func TestTranscribeWithFallbackBothFail(t *testing.T) {
	primary := &fakeEngine{err: errors.New("primary down")}
	fallback := &fakeEngine{err: errors.New("fallback down")}

	_, err := TranscribeWithFallback(context.Background(), primary, fallback, config.ProviderQwen, config.ProviderDoubao, audiocapture.AudioData{})
	if err == nil {
		t.Fatal("expected the primary's error")
	}
}

func TestTranscribeNoFallback(t *testing.T) {
	primary := &fakeEngine{text: "solo"}
	res, err := TranscribeWithFallback(context.Background(), primary, nil, config.ProviderQwen, "", audiocapture.AudioData{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "solo" {
		t.Fatalf("got %q, want solo", res.Text)
	}
}

func TestDoubaoFrameHeaderBytes(t *testing.T) {
	frame := doubaoFrame(0x20, []byte("ab"))
	if frame[0] != 0x11 || frame[1] != 0x20 {
		t.Fatalf("unexpected header bytes: %v", frame[:4])
	}
}
