package ptyhandler

import (
	"sync"
	"testing"
	"time"

	"github.com/hearthd/hearthd/internal/envelope"
)

type recordingSink struct {
	mu     sync.Mutex
	json   []any
	binary [][]byte
}

func (s *recordingSink) SendJSON(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.json = append(s.json, v)
	return nil
}

func (s *recordingSink) SendBinary(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.binary = append(s.binary, append([]byte(nil), data...))
	return nil
}

func (s *recordingSink) binaryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.binary)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestInitWriteResizeDestroyLifecycle(t *testing.T) {
	h := New()
	s := &recordingSink{}
	h.SetSink(s)

	resp, err := h.Init(envelope.PTYInit{ShellType: "bash", ShellArgs: []string{"-c", "cat"}})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	sessionID := resp["session_id"].(string)
	if sessionID == "" {
		t.Fatal("expected a non-empty session id")
	}

	if id, ok := h.SingleSession(); !ok || id != sessionID {
		t.Fatalf("SingleSession() = %q, %v; want %q, true", id, ok, sessionID)
	}
	if h.SessionCount() != 1 {
		t.Fatalf("SessionCount() = %d, want 1", h.SessionCount())
	}

	if err := h.Resize(envelope.PTYResize{SessionID: sessionID, Cols: 100, Rows: 40}); err != nil {
		t.Fatalf("Resize: %v", err)
	}

	if err := h.WriteData(sessionID, []byte("hello\n")); err != nil {
		t.Fatalf("WriteData: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool { return s.binaryCount() > 0 })

	if err := h.Destroy(sessionID); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if _, ok := h.SingleSession(); ok {
		t.Fatal("expected no sessions after Destroy")
	}
	if err := h.Destroy(sessionID); err == nil {
		t.Fatal("expected NotFoundError destroying an already-gone session")
	}
}

func TestResizeUnknownSessionErrors(t *testing.T) {
	h := New()
	err := h.Resize(envelope.PTYResize{SessionID: "nope", Cols: 80, Rows: 24})
	if _, ok := err.(*NotFoundError); !ok {
		t.Fatalf("expected *NotFoundError, got %v (%T)", err, err)
	}
}

func TestSingleSessionAmbiguousWithZeroOrMany(t *testing.T) {
	h := New()
	if _, ok := h.SingleSession(); ok {
		t.Fatal("expected false with zero sessions")
	}

	s := &recordingSink{}
	h.SetSink(s)
	if _, err := h.Init(envelope.PTYInit{ShellType: "bash", ShellArgs: []string{"-c", "cat"}}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := h.Init(envelope.PTYInit{ShellType: "bash", ShellArgs: []string{"-c", "cat"}}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, ok := h.SingleSession(); ok {
		t.Fatal("expected false with two sessions")
	}

	h.CleanupAll()
	waitFor(t, 2*time.Second, func() bool { return h.SessionCount() == 0 })
}
