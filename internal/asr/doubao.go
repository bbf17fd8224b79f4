package asr

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hearthd/hearthd/internal/audiocapture"
	"github.com/hearthd/hearthd/internal/config"
)

const (
	doubaoWSURL   = "wss://openspeech.bytedance.com/api/v3/sauc/bigmodel"
	doubaoHTTPURL = "https://openspeech.bytedance.com/api/v1/asr/submit"
)

// doubaoEngine talks to Volcengine/ByteDance's BigModel ASR (SAUC),
// grounded on other_examples/a2ad366d_haivivi-giztoy__go-pkg-doubaospeech-asr_v2.go.go's
// X-Api-* header auth and binary session-start/audio/finish framing.
type doubaoEngine struct {
	appID       string
	accessToken string
}

func newDoubaoEngine(pc config.ProviderConfig) *doubaoEngine {
	return &doubaoEngine{appID: pc.AppID, accessToken: pc.AccessToken}
}

func (e *doubaoEngine) headers(connectID string) http.Header {
	h := http.Header{}
	h.Set("X-Api-App-Key", e.appID)
	h.Set("X-Api-Access-Key", e.accessToken)
	h.Set("X-Api-Connect-Id", connectID)
	return h
}

func (e *doubaoEngine) Transcribe(ctx context.Context, audio audiocapture.AudioData) (string, error) {
	wav := audio.ToWAV()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, doubaoHTTPURL, bytes.NewReader(wav))
	if err != nil {
		return "", fmt.Errorf("doubao: build request: %w", err)
	}
	req.Header = e.headers(fmt.Sprintf("doubao-http-%d", time.Now().UnixNano()))
	req.Header.Set("Content-Type", "audio/wav")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("doubao: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("doubao: http status %d", resp.StatusCode)
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("doubao: decode response: %w", err)
	}
	return out.Text, nil
}

// doubaoFrame builds the 4-byte SAUC header (version/header-size,
// message-type/flags, serialization/compression, reserved) that precedes
// every binary frame.
func doubaoFrame(msgType byte, payload []byte) []byte {
	header := []byte{0x11, msgType, 0x00, 0x00}
	var buf bytes.Buffer
	buf.Write(header)
	binary.Write(&buf, binary.BigEndian, uint32(len(payload)))
	buf.Write(payload)
	return buf.Bytes()
}

func (e *doubaoEngine) TranscribeStream(ctx context.Context, chunks <-chan audiocapture.AudioChunk, partial func(string), stop <-chan struct{}) (string, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	connectID := fmt.Sprintf("doubao-%d", time.Now().UnixNano())
	conn, resp, err := websocket.DefaultDialer.DialContext(dialCtx, doubaoWSURL, e.headers(connectID))
	if err != nil {
		if resp != nil {
			return "", fmt.Errorf("doubao: dial failed: %w (status %s)", err, resp.Status)
		}
		return "", fmt.Errorf("doubao: dial failed: %w", err)
	}
	defer conn.Close()

	startPayload, _ := json.Marshal(map[string]any{
		"format":      "pcm",
		"sample_rate": 16000,
		"channel":     1,
		"bits":        16,
	})
	if err := conn.WriteMessage(websocket.BinaryMessage, doubaoFrame(0x10, startPayload)); err != nil {
		return "", fmt.Errorf("doubao: session start: %w", err)
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
			var ev struct {
				Text    string `json:"text"`
				IsFinal bool   `json:"is_final"`
			}
			if len(msg) > 4 {
				if jerr := json.Unmarshal(msg[4:], &ev); jerr == nil {
					if ev.Text != "" {
						text = ev.Text
						if partial != nil {
							partial(text)
						}
					}
					if ev.IsFinal {
						final <- text
						return
					}
				}
			}
		}
	}()

	go func() {
		for {
			select {
			case <-stop:
				conn.WriteMessage(websocket.BinaryMessage, doubaoFrame(0x22, nil))
				return
			case chunk, ok := <-chunks:
				if !ok {
					conn.WriteMessage(websocket.BinaryMessage, doubaoFrame(0x22, nil))
					return
				}
				pcm := floatToPCM16(chunk.Samples)
				conn.WriteMessage(websocket.BinaryMessage, doubaoFrame(0x20, pcm))
			}
		}
	}()

	select {
	case text := <-final:
		return text, nil
	case err := <-recvErr:
		return "", fmt.Errorf("doubao: receive: %w", err)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
