package voice

import (
	"sync"
	"testing"

	"github.com/hearthd/hearthd/internal/config"
	"github.com/hearthd/hearthd/internal/envelope"
)

type fakeSink struct {
	mu   sync.Mutex
	json []any
}

func (f *fakeSink) SendJSON(v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.json = append(f.json, v)
	return nil
}

func (f *fakeSink) SendBinary(data []byte) error { return nil }

func (f *fakeSink) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.json)
}

func TestStartRecordingRejectsInvalidConfig(t *testing.T) {
	h := New()
	req := envelope.VoiceStartRecording{
		ASRConfig: config.ASRConfig{
			Primary: config.ProviderConfig{Provider: config.ProviderQwen, Mode: config.ModeHTTP},
		},
	}
	if _, err := h.StartRecording(req); err == nil {
		t.Fatal("expected validation error for missing dashscope_api_key")
	}
}

func TestStartRecordingRejectsSenseVoiceRealtime(t *testing.T) {
	h := New()
	req := envelope.VoiceStartRecording{
		ASRConfig: config.ASRConfig{
			Primary: config.ProviderConfig{
				Provider:          config.ProviderSenseVoice,
				Mode:              config.ModeRealtime,
				SiliconflowAPIKey: "key",
			},
		},
	}
	if _, err := h.StartRecording(req); err == nil {
		t.Fatal("expected validation error for sensevoice realtime mode")
	}
}

func TestStopRecordingWithNoSessionErrors(t *testing.T) {
	h := New()
	if err := h.StopRecording(); err == nil {
		t.Fatal("expected error stopping with no recording in progress")
	}
}

func TestCancelRecordingWithNoSessionErrors(t *testing.T) {
	h := New()
	if err := h.CancelRecording(); err == nil {
		t.Fatal("expected error cancelling with no recording in progress")
	}
}

func TestUpdateConfigValidatesOnly(t *testing.T) {
	h := New()
	good := envelope.VoiceUpdateConfig{ASRConfig: config.ASRConfig{
		Primary: config.ProviderConfig{Provider: config.ProviderQwen, Mode: config.ModeHTTP, DashscopeAPIKey: "k"},
	}}
	if err := h.UpdateConfig(good); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := envelope.VoiceUpdateConfig{ASRConfig: config.ASRConfig{
		Primary: config.ProviderConfig{Provider: config.ProviderDoubao},
	}}
	if err := h.UpdateConfig(bad); err == nil {
		t.Fatal("expected error for missing doubao credentials")
	}
}

func TestEmitLevelNoSinkDoesNotPanic(t *testing.T) {
	h := New()
	h.emitLevel(0.5, [9]float64{})
}

func TestEmitLevelForwardsThroughSink(t *testing.T) {
	h := New()
	s := &fakeSink{}
	h.SetSink(s)
	h.emitLevel(0.5, [9]float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.4, 0.3, 0.2, 0.1})
	if s.count() != 1 {
		t.Fatalf("expected one level envelope, got %d", s.count())
	}
	resp := s.json[0].(envelope.Response)
	if resp["type"] != "audio_level" {
		t.Fatalf("expected type audio_level, got %+v", resp)
	}
}

func TestEmitTranscriptionSkippedWithNilSink(t *testing.T) {
	h := New()
	h.emitTranscription(nil, "hello", config.ProviderQwen, false, 42)
}

func TestEmitTranscriptionIncludesDurationMs(t *testing.T) {
	h := New()
	s := &fakeSink{}
	h.emitTranscription(s, "hello", config.ProviderQwen, true, 123)
	if s.count() != 1 {
		t.Fatalf("expected one transcription_complete envelope, got %d", s.count())
	}
	resp := s.json[0].(envelope.Response)
	if resp["type"] != "transcription_complete" || resp["duration_ms"] != int64(123) || resp["used_fallback"] != true {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
}

func TestEmitRecordingStateForwardsState(t *testing.T) {
	h := New()
	s := &fakeSink{}
	h.SetSink(s)
	h.emitRecordingState("started")
	if s.count() != 1 {
		t.Fatalf("expected one recording_state envelope, got %d", s.count())
	}
	resp := s.json[0].(envelope.Response)
	if resp["type"] != "recording_state" || resp["state"] != "started" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
}

func TestCleanupWithNoSessionIsNoop(t *testing.T) {
	h := New()
	h.Cleanup()
}
