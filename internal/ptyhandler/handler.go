// Package ptyhandler manages many PTY sessions keyed by session-id over
// one shared transport sink. Grounded on the teacher's
// internal/relay/pty_relay.go routing-table shape (PTYRoutes) combined
// with the actual PTY lifecycle from internal/egg/server.go, collapsed
// into a single in-process component since this spec has no
// sandbox/relay split.
package ptyhandler

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/hearthd/hearthd/internal/envelope"
	"github.com/hearthd/hearthd/internal/hlog"
	"github.com/hearthd/hearthd/internal/ptyshell"
	"github.com/hearthd/hearthd/internal/ptysession"
	"github.com/hearthd/hearthd/internal/sink"
)

const (
	initialCols = 80
	initialRows = 24
	readBufSize = 8192
)

// entry pairs a live session with the goroutine reading its output.
type entry struct {
	session *ptysession.Session
	done    chan struct{}
}

// Handler owns the session table for one connection.
type Handler struct {
	mu       sync.Mutex
	sessions map[string]*entry
	sink     sink.Sink
}

// New returns an empty handler. SetSink must be called once the
// connection's sink is known (at connection-accept time).
func New() *Handler {
	return &Handler{sessions: make(map[string]*entry)}
}

// SetSink installs the shared transport sink.
func (h *Handler) SetSink(s sink.Sink) {
	h.mu.Lock()
	h.sink = s
	h.mu.Unlock()
}

// Init spawns a new shell and registers its session, replying with
// init_complete.
func (h *Handler) Init(req envelope.PTYInit) (envelope.Response, error) {
	sessionID := uuid.NewString()

	sess, err := ptysession.Start(ptysession.Options{
		Cols:      initialCols,
		Rows:      initialRows,
		ShellType: req.ShellType,
		ShellArgs: req.ShellArgs,
		CWD:       req.CWD,
		Env:       req.Env,
	})
	if err != nil {
		return nil, fmt.Errorf("pty spawn: %w", err)
	}

	e := &entry{session: sess, done: make(chan struct{})}

	h.mu.Lock()
	h.sessions[sessionID] = e
	s := h.sink
	h.mu.Unlock()

	go h.readLoop(sessionID, req.ShellType, e, s)

	return envelope.NewResponse(envelope.ModulePTY, "init_complete", map[string]any{
		"success":    true,
		"session_id": sessionID,
	}), nil
}

// Resize resizes a session's PTY. No response on success.
func (h *Handler) Resize(req envelope.PTYResize) error {
	h.mu.Lock()
	e, ok := h.sessions[req.SessionID]
	h.mu.Unlock()
	if !ok {
		return &NotFoundError{SessionID: req.SessionID}
	}
	return e.session.Resize(req.Cols, req.Rows)
}

// WriteData writes raw bytes to a session's PTY.
func (h *Handler) WriteData(sessionID string, data []byte) error {
	h.mu.Lock()
	e, ok := h.sessions[sessionID]
	h.mu.Unlock()
	if !ok {
		return &NotFoundError{SessionID: sessionID}
	}
	_, err := e.session.Write(data)
	return err
}

// SingleSession returns the lone live session-id when exactly one session
// exists, for legacy unframed binary input routing (see SPEC_FULL.md §4.10
// and §9).
func (h *Handler) SingleSession() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.sessions) != 1 {
		return "", false
	}
	for id := range h.sessions {
		return id, true
	}
	return "", false
}

// SessionCount reports how many PTY sessions are currently live.
func (h *Handler) SessionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Destroy kills a session's child, awaits its reader goroutine, and
// removes it from the table. Idempotent: returns NotFoundError if already
// gone.
func (h *Handler) Destroy(sessionID string) error {
	h.mu.Lock()
	e, ok := h.sessions[sessionID]
	h.mu.Unlock()
	if !ok {
		return &NotFoundError{SessionID: sessionID}
	}

	e.session.Kill()
	<-e.done

	h.mu.Lock()
	delete(h.sessions, sessionID)
	h.mu.Unlock()
	return nil
}

// CleanupAll kills and joins every live session. Called on connection
// close.
func (h *Handler) CleanupAll() {
	h.mu.Lock()
	entries := make(map[string]*entry, len(h.sessions))
	for id, e := range h.sessions {
		entries[id] = e
	}
	h.mu.Unlock()

	for id, e := range entries {
		e.session.Kill()
		<-e.done
		h.mu.Lock()
		delete(h.sessions, id)
		h.mu.Unlock()
	}
}

// readLoop is the per-session reader task: reads up to 8KiB at a time,
// emits each non-empty read as a binary frame, writes the shell
// integration script once after the first successful read, and on EOF or
// read error emits exactly one `exit` envelope, removes the session, and
// closes the done channel.
func (h *Handler) readLoop(sessionID, shellType string, e *entry, s sink.Sink) {
	defer close(e.done)
	defer e.session.Close()

	buf := make([]byte, readBufSize)
	firstRead := true

	for {
		n, err := e.session.Read(buf)
		if n > 0 {
			if firstRead {
				firstRead = false
				if script, ok := ptyshell.IntegrationScript(shellType); ok {
					if _, werr := e.session.Write([]byte(script)); werr != nil {
						hlog.Log.Debug("pty: shell integration write failed", "session_id", sessionID, "err", werr)
					}
				}
			}
			frame := EncodeFrame(sessionID, buf[:n])
			if s != nil {
				if serr := s.SendBinary(frame); serr != nil {
					hlog.Log.Debug("pty: send binary failed, client likely gone", "session_id", sessionID, "err", serr)
				}
			}
		}
		if err != nil {
			exitCode := e.session.Wait()
			if s != nil {
				s.SendJSON(envelope.NewResponse(envelope.ModulePTY, "exit", map[string]any{
					"session_id": sessionID,
					"code":       exitCode,
				}))
			}
			h.mu.Lock()
			delete(h.sessions, sessionID)
			h.mu.Unlock()
			return
		}
	}
}

// NotFoundError reports an operation addressed to an unknown session-id.
type NotFoundError struct {
	SessionID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("pty session not found: %s", e.SessionID)
}
