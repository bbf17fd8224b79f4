package asr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/hearthd/hearthd/internal/audiocapture"
	"github.com/hearthd/hearthd/internal/config"
)

const qwenRealtimeURL = "wss://dashscope.aliyuncs.com/api-ws/v1/realtime"
const qwenHTTPURL = "https://dashscope.aliyuncs.com/api/v1/services/audio/asr/transcription"

// qwenEngine talks to Alibaba DashScope's Qwen ASR, in either HTTP
// one-shot or realtime WebSocket mode, grounded on
// other_examples/c59575f3_ashi009-asr-eval__pkg-qwen-client.go.go.
type qwenEngine struct {
	apiKey string
	mode   config.ASRMode
}

func newQwenEngine(pc config.ProviderConfig) *qwenEngine {
	return &qwenEngine{apiKey: pc.DashscopeAPIKey, mode: pc.Mode}
}

func (e *qwenEngine) Transcribe(ctx context.Context, audio audiocapture.AudioData) (string, error) {
	wav := audio.ToWAV()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, qwenHTTPURL, bytes.NewReader(wav))
	if err != nil {
		return "", fmt.Errorf("qwen: build request: %w", err)
	}
	req.Header.Set("Authorization", "bearer "+e.apiKey)
	req.Header.Set("Content-Type", "audio/wav")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("qwen: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("qwen: http status %d", resp.StatusCode)
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("qwen: decode response: %w", err)
	}
	return out.Text, nil
}

type qwenSessionUpdate struct {
	EventID string     `json:"event_id"`
	Type    string     `json:"type"`
	Session qwenSession `json:"session"`
}

type qwenSession struct {
	Modalities       []string           `json:"modalities"`
	InputAudioFormat string             `json:"input_audio_format"`
	SampleRate       int                `json:"sample_rate"`
	TurnDetection    *qwenTurnDetection `json:"turn_detection,omitempty"`
}

type qwenTurnDetection struct {
	Type              string  `json:"type"`
	Threshold         float64 `json:"threshold"`
	SilenceDurationMs int     `json:"silence_duration_ms"`
}

type qwenAudioAppend struct {
	EventID string `json:"event_id"`
	Type    string `json:"type"`
	Audio   string `json:"audio"`
}

type qwenSessionFinish struct {
	EventID string `json:"event_id"`
	Type    string `json:"type"`
}

type qwenServerEvent struct {
	Type       string `json:"type"`
	Transcript string `json:"transcript"`
	Delta      string `json:"delta"`
}

func (e *qwenEngine) TranscribeStream(ctx context.Context, chunks <-chan audiocapture.AudioChunk, partial func(string), stop <-chan struct{}) (string, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	u := qwenRealtimeURL + "?model=paraformer-realtime"
	headers := http.Header{}
	headers.Set("Authorization", "bearer "+e.apiKey)

	conn, resp, err := websocket.DefaultDialer.DialContext(dialCtx, u, headers)
	if err != nil {
		if resp != nil {
			return "", fmt.Errorf("qwen: dial failed: %w (status %s)", err, resp.Status)
		}
		return "", fmt.Errorf("qwen: dial failed: %w", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(qwenSessionUpdate{
		EventID: uuid.NewString(),
		Type:    "session.update",
		Session: qwenSession{
			Modalities:       []string{"text"},
			InputAudioFormat: "pcm",
			SampleRate:       16000,
			TurnDetection: &qwenTurnDetection{
				Type:              "server_vad",
				SilenceDurationMs: 400,
			},
		},
	}); err != nil {
		return "", fmt.Errorf("qwen: session update: %w", err)
	}

	final := make(chan string, 1)
	recvErr := make(chan error, 1)
	go func() {
		var text string
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				recvErr <- err
				return
			}
			var ev qwenServerEvent
			if err := json.Unmarshal(msg, &ev); err != nil {
				continue
			}
			switch ev.Type {
			case "response.text.delta":
				text += ev.Delta
				if partial != nil {
					partial(text)
				}
			case "session.finished", "response.done":
				final <- text
				return
			}
		}
	}()

	go func() {
		for {
			select {
			case <-stop:
				conn.WriteJSON(qwenSessionFinish{EventID: uuid.NewString(), Type: "session.finish"})
				return
			case chunk, ok := <-chunks:
				if !ok {
					conn.WriteJSON(qwenSessionFinish{EventID: uuid.NewString(), Type: "session.finish"})
					return
				}
				pcm := floatToPCM16(chunk.Samples)
				conn.WriteJSON(qwenAudioAppend{
					EventID: uuid.NewString(),
					Type:    "input_audio_buffer.append",
					Audio:   base64.StdEncoding.EncodeToString(pcm),
				})
			}
		}
	}()

	select {
	case text := <-final:
		return text, nil
	case err := <-recvErr:
		return "", fmt.Errorf("qwen: receive: %w", err)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func floatToPCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		v := int16(clampSample(s) * 32767)
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return out
}

func clampSample(s float32) float32 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}
