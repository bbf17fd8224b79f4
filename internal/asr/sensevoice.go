package asr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/hearthd/hearthd/internal/audiocapture"
	"github.com/hearthd/hearthd/internal/config"
)

const sensevoiceHTTPURL = "https://api.siliconflow.cn/v1/audio/transcriptions"

// senseVoiceEngine talks to SiliconFlow's hosted SenseVoice model over its
// HTTP one-shot endpoint only — the vendor has no realtime offering, so
// config.ProviderConfig.Validate rejects ModeRealtime for this provider
// before an engine is ever constructed.
type senseVoiceEngine struct {
	apiKey string
}

func newSenseVoiceEngine(pc config.ProviderConfig) *senseVoiceEngine {
	return &senseVoiceEngine{apiKey: pc.SiliconflowAPIKey}
}

func (e *senseVoiceEngine) Transcribe(ctx context.Context, audio audiocapture.AudioData) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	part, err := w.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", fmt.Errorf("sensevoice: build form: %w", err)
	}
	if _, err := part.Write(audio.ToWAV()); err != nil {
		return "", fmt.Errorf("sensevoice: write audio: %w", err)
	}
	w.WriteField("model", "FunAudioLLM/SenseVoiceSmall")
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("sensevoice: close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sensevoiceHTTPURL, &body)
	if err != nil {
		return "", fmt.Errorf("sensevoice: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sensevoice: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sensevoice: http status %d", resp.StatusCode)
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("sensevoice: decode response: %w", err)
	}
	return out.Text, nil
}

// TranscribeStream is unreachable in practice (config validation rejects
// realtime mode for this provider) but is implemented to satisfy Engine.
func (e *senseVoiceEngine) TranscribeStream(ctx context.Context, chunks <-chan audiocapture.AudioChunk, partial func(string), stop <-chan struct{}) (string, error) {
	return "", errors.New("sensevoice: realtime streaming is not supported")
}
