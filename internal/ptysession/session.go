// Package ptysession owns a single child process and its master PTY
// endpoint. Grounded on the teacher's internal/egg/server.go PTY-spawn
// logic (pty.StartWithSize, readPTY, Kill/Resize), stripped of the
// gRPC/sandbox machinery that carried it in the teacher's multi-process
// architecture — this spec runs the PTY in-process.
package ptysession

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/creack/pty"

	"github.com/hearthd/hearthd/internal/ptyshell"
)

// Options configure a new session.
type Options struct {
	Cols, Rows int
	ShellType  string
	ShellArgs  []string
	CWD        string
	Env        map[string]string
}

// Session owns one child process + master PTY. Reader/Writer are
// independent handles that do not share locks with the session, so reads
// and writes may proceed concurrently.
type Session struct {
	PID  int
	ptmx *os.File
	cmd  *exec.Cmd
}

// Start spawns the shell and opens its PTY at the requested size.
func Start(opts Options) (*Session, error) {
	shellCmd := ptyshell.Resolve(opts.ShellType)
	args := append(append([]string{}, shellCmd.Args...), opts.ShellArgs...)

	cmd := exec.Command(shellCmd.Path, args...)
	cmd.Env = ptyshell.BuildEnv(opts.Env)
	if opts.CWD != "" {
		cmd.Dir = opts.CWD
	}
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = 5 * time.Second

	size := &pty.Winsize{Cols: uint16(opts.Cols), Rows: uint16(opts.Rows)}
	ptmx, err := pty.StartWithSize(cmd, size)
	if err != nil {
		return nil, fmt.Errorf("start pty: %w", err)
	}

	return &Session{
		PID:  cmd.Process.Pid,
		ptmx: ptmx,
		cmd:  cmd,
	}, nil
}

// Read reads up to len(buf) bytes of PTY output. Zero-length read with a
// nil error does not happen on a PTY; callers treat err != nil (including
// io.EOF) as session termination.
func (s *Session) Read(buf []byte) (int, error) {
	return s.ptmx.Read(buf)
}

// Write sends bytes to the PTY as keyboard/input data.
func (s *Session) Write(data []byte) (int, error) {
	return s.ptmx.Write(data)
}

// Resize updates the PTY's terminal size. Idempotent and non-blocking with
// respect to the reader.
func (s *Session) Resize(cols, rows int) error {
	return pty.Setsize(s.ptmx, &pty.Winsize{Cols: uint16(cols), Rows: uint16(rows)})
}

// Kill terminates the child. The caller must still read until EOF (or
// read error) and then call Close to release the master PTY fd.
func (s *Session) Kill() {
	if s.cmd.Process != nil {
		s.cmd.Process.Signal(syscall.SIGTERM)
	}
}

// Wait blocks until the child exits and returns its exit code.
func (s *Session) Wait() int {
	err := s.cmd.Wait()
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return 1
}

// Close releases the master PTY file descriptor.
func (s *Session) Close() error {
	return s.ptmx.Close()
}
