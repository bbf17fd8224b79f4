package ptysession

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestStartEchoAndKill(t *testing.T) {
	sess, err := Start(Options{
		Cols:      80,
		Rows:      24,
		ShellType: "bash",
		ShellArgs: []string{"-c", "echo hearthd-ready; cat"},
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer sess.Close()

	if sess.PID <= 0 {
		t.Fatalf("expected a positive PID, got %d", sess.PID)
	}

	type readResult struct {
		data []byte
		err  error
	}
	reads := make(chan readResult, 1)
	go func() {
		buf := make([]byte, 256)
		n, err := sess.Read(buf)
		reads <- readResult{data: append([]byte(nil), buf[:n]...), err: err}
	}()

	var out bytes.Buffer
	select {
	case r := <-reads:
		out.Write(r.data)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for pty output")
	}
	if !strings.Contains(out.String(), "hearthd-ready") {
		t.Fatalf("did not observe expected output, got %q", out.String())
	}

	if _, err := sess.Write([]byte("echo back\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	sess.Kill()
	code := sess.Wait()
	if code == 0 {
		t.Logf("child exited cleanly with code %d", code)
	}
}

func TestResizeDoesNotError(t *testing.T) {
	sess, err := Start(Options{Cols: 80, Rows: 24, ShellType: "bash", ShellArgs: []string{"-c", "cat"}})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() {
		sess.Kill()
		sess.Wait()
		sess.Close()
	}()

	if err := sess.Resize(100, 40); err != nil {
		t.Fatalf("Resize: %v", err)
	}
}
