package asr

import (
	"testing"

	"github.com/hearthd/hearthd/internal/config"
)

func TestNewResolvesKnownProviders(t *testing.T) {
	providers := []config.ASRProvider{config.ProviderQwen, config.ProviderDoubao, config.ProviderSenseVoice}
	for _, p := range providers {
		eng, err := New(config.ProviderConfig{Provider: p})
		if err != nil {
			t.Fatalf("New(%s): %v", p, err)
		}
		if eng == nil {
			t.Fatalf("New(%s) returned a nil engine", p)
		}
	}
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	if _, err := New(config.ProviderConfig{Provider: "made-up"}); err == nil {
		t.Fatal("expected an error for an unknown provider")
	}
}

func TestSenseVoiceTranscribeStreamUnsupported(t *testing.T) {
	eng, err := New(config.ProviderConfig{Provider: config.ProviderSenseVoice})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := eng.TranscribeStream(nil, nil, nil, nil); err == nil {
		t.Fatal("expected sensevoice streaming to be rejected")
	}
}
