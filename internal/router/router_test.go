package router

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/hearthd/hearthd/internal/config"
	"github.com/hearthd/hearthd/internal/llmproxy"
	"github.com/hearthd/hearthd/internal/transport"
)

func startTestServer(t *testing.T) string {
	t.Helper()

	mgr := config.NewManager()
	llmClient := llmproxy.NewClient(nil)
	rt := New(mgr, llmClient)

	srv := &transport.Server{OnConnect: rt.Handle}
	go srv.Start("127.0.0.1:0")
	t.Cleanup(func() { srv.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if addr := srv.Addr(); addr != nil {
			return addr.String()
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("server never bound an address")
	return ""
}

func TestDetectLanguageRoundTrip(t *testing.T) {
	addr := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws://"+addr+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	req := map[string]any{
		"module":     "utils",
		"type":       "detect_language",
		"text":       "你好世界",
		"request_id": "r1",
	}
	body, _ := json.Marshal(req)
	if err := conn.Write(ctx, websocket.MessageText, body); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp["type"] != "language_detected" || resp["language"] != "zh" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if _, ok := resp["confidence"]; !ok {
		t.Fatalf("expected a confidence field: %+v", resp)
	}
	if _, ok := resp["is_simplified"]; !ok {
		t.Fatalf("expected an is_simplified field for zh: %+v", resp)
	}
}

func TestUnknownModuleProducesErrorEnvelope(t *testing.T) {
	addr := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws://"+addr+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	body, _ := json.Marshal(map[string]any{"module": "bogus", "type": "whatever"})
	if err := conn.Write(ctx, websocket.MessageText, body); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var resp map[string]any
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp["type"] != "error" || resp["code"] != "UNKNOWN_MODULE" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
