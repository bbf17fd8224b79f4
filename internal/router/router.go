// Package router owns one Router per server, dispatching every accepted
// connection to its own set of per-module handlers (PTY, voice, LLM,
// utils) behind the shared sink.Sink interface. Grounded on the teacher's
// internal/ws/protocol.go type-naming conventions and internal/direct's
// per-connection reader loop, generalized from the teacher's single PTY
// module to the full module set.
package router

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/hearthd/hearthd/internal/audiocapture"
	"github.com/hearthd/hearthd/internal/config"
	"github.com/hearthd/hearthd/internal/envelope"
	"github.com/hearthd/hearthd/internal/hlog"
	"github.com/hearthd/hearthd/internal/langdetect"
	"github.com/hearthd/hearthd/internal/llmproxy"
	"github.com/hearthd/hearthd/internal/ptyhandler"
	"github.com/hearthd/hearthd/internal/transport"
	"github.com/hearthd/hearthd/internal/voice"
)

// Router builds one connection-scoped handler set per accepted
// connection and dispatches its frames.
type Router struct {
	cfgManager *config.Manager
	llmClient  *llmproxy.Client
}

// New returns a Router bound to the live configuration and LLM client.
func New(cfgManager *config.Manager, llmClient *llmproxy.Client) *Router {
	return &Router{cfgManager: cfgManager, llmClient: llmClient}
}

// Handle implements transport.Handler: it runs for the connection's
// lifetime, cleaning up every module's state on exit.
func (r *Router) Handle(ctx context.Context, conn *transport.Conn) {
	c := &connection{
		conn:  conn,
		pty:   ptyhandler.New(),
		voice: voice.New(),
		llm:   llmproxy.New(r.llmClient),
	}
	c.pty.SetSink(conn)
	c.voice.SetSink(conn)
	c.llm.SetSink(conn)
	c.bg, _ = errgroup.WithContext(ctx)

	defer c.pty.CleanupAll()
	defer c.voice.Cleanup()
	// Join every in-flight voice/LLM goroutine before the connection's
	// handlers are torn down, so a slow transcription or prompt never
	// writes to a sink whose underlying socket is already gone unnoticed.
	defer func() {
		if err := c.bg.Wait(); err != nil {
			hlog.Log.Debug("router: background task returned error", "err", err)
		}
	}()

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return
		}

		switch typ {
		case transport.FrameBinary:
			c.handleBinary(data)
		case transport.FrameText:
			c.handleText(data)
		}
	}
}

type connection struct {
	conn  *transport.Conn
	pty   *ptyhandler.Handler
	voice *voice.Handler
	llm   *llmproxy.Handler
	bg    *errgroup.Group
}

func (c *connection) handleBinary(data []byte) {
	if sessionID, payload, ok := ptyhandler.DecodeFrame(data); ok {
		if err := c.pty.WriteData(sessionID, payload); err != nil {
			hlog.Log.Debug("router: binary write to unknown session", "session_id", sessionID, "err", err)
		}
		return
	}

	if sessionID, ok := c.pty.SingleSession(); ok {
		if err := c.pty.WriteData(sessionID, data); err != nil {
			hlog.Log.Debug("router: legacy binary write failed", "err", err)
		}
		return
	}

	c.conn.SendJSON(envelope.NewError(envelope.ModulePTY, envelope.CodeSessionIDRequired,
		"binary frame received with no framed session id and more than one session is live"))
}

func (c *connection) handleText(data []byte) {
	raw, err := envelope.Parse(data)
	if err != nil {
		if sessionID, ok := c.pty.SingleSession(); ok {
			if werr := c.pty.WriteData(sessionID, data); werr == nil {
				return
			}
		}
		c.conn.SendJSON(envelope.NewError(envelope.ModuleUtils, envelope.CodeParseError, err.Error()))
		return
	}

	switch raw.Module {
	case envelope.ModulePTY:
		c.dispatchPTY(raw)
	case envelope.ModuleVoice:
		c.dispatchVoice(raw)
	case envelope.ModuleLLM:
		c.dispatchLLM(raw)
	case envelope.ModuleUtils:
		c.dispatchUtils(raw)
	default:
		c.conn.SendJSON(envelope.NewError(raw.Module, envelope.CodeUnknownModule, "unknown module"))
	}
}

func (c *connection) dispatchPTY(raw envelope.Raw) {
	switch raw.Type {
	case "init":
		var req envelope.PTYInit
		if err := raw.Decode(&req); err != nil {
			c.sendModuleError(envelope.ModulePTY, err)
			return
		}
		resp, err := c.pty.Init(req)
		if err != nil {
			c.sendModuleError(envelope.ModulePTY, err)
			return
		}
		c.conn.SendJSON(resp)

	case "resize":
		var req envelope.PTYResize
		if err := raw.Decode(&req); err != nil {
			c.sendModuleError(envelope.ModulePTY, err)
			return
		}
		if err := c.pty.Resize(req); err != nil {
			c.sendSessionError(req.SessionID, err)
		}

	case "destroy":
		var req envelope.PTYDestroy
		if err := raw.Decode(&req); err != nil {
			c.sendModuleError(envelope.ModulePTY, err)
			return
		}
		if err := c.pty.Destroy(req.SessionID); err != nil {
			c.sendSessionError(req.SessionID, err)
		}

	case "write_data":
		var req envelope.PTYWriteData
		if err := raw.Decode(&req); err != nil {
			c.sendModuleError(envelope.ModulePTY, err)
			return
		}
		if err := c.pty.WriteData(req.SessionID, req.Data); err != nil {
			c.sendSessionError(req.SessionID, err)
		}

	case "env":
		// Informational only: acknowledged, no state change.

	default:
		c.conn.SendJSON(envelope.NewError(envelope.ModulePTY, envelope.CodeInvalidMessage, "unknown pty message type: "+raw.Type))
	}
}

func (c *connection) dispatchVoice(raw envelope.Raw) {
	switch raw.Type {
	case "start_recording":
		var req envelope.VoiceStartRecording
		if err := raw.Decode(&req); err != nil {
			c.sendModuleError(envelope.ModuleVoice, err)
			return
		}
		resp, err := c.voice.StartRecording(req)
		if err != nil {
			c.sendModuleError(envelope.ModuleVoice, err)
			return
		}
		c.conn.SendJSON(resp)

	case "stop_recording":
		c.bg.Go(func() error {
			if err := c.voice.StopRecording(); err != nil {
				c.conn.SendJSON(envelope.NewError(envelope.ModuleVoice, envelope.CodeTranscriptionError, err.Error()))
			}
			return nil
		})

	case "cancel_recording":
		if err := c.voice.CancelRecording(); err != nil {
			c.sendModuleError(envelope.ModuleVoice, err)
		}

	case "update_config":
		var req envelope.VoiceUpdateConfig
		if err := raw.Decode(&req); err != nil {
			c.sendModuleError(envelope.ModuleVoice, err)
			return
		}
		if err := c.voice.UpdateConfig(req); err != nil {
			c.sendModuleError(envelope.ModuleVoice, err)
		}

	default:
		c.conn.SendJSON(envelope.NewError(envelope.ModuleVoice, envelope.CodeInvalidMessage, "unknown voice message type: "+raw.Type))
	}
}

func (c *connection) dispatchLLM(raw envelope.Raw) {
	switch raw.Type {
	case "prompt":
		var req envelope.LLMPrompt
		if err := raw.Decode(&req); err != nil {
			c.sendModuleError(envelope.ModuleLLM, err)
			return
		}
		c.bg.Go(func() error {
			if err := c.llm.Prompt(context.Background(), req); err != nil {
				c.conn.SendJSON(envelope.NewError(envelope.ModuleLLM, envelope.CodeModuleError, err.Error()))
			}
			return nil
		})
	default:
		c.conn.SendJSON(envelope.NewError(envelope.ModuleLLM, envelope.CodeInvalidMessage, "unknown llm message type: "+raw.Type))
	}
}

func (c *connection) dispatchUtils(raw envelope.Raw) {
	switch raw.Type {
	case "detect_language":
		var req envelope.DetectLanguage
		if err := raw.Decode(&req); err != nil {
			c.sendModuleError(envelope.ModuleUtils, err)
			return
		}
		result := langdetect.Detect(req.Text)
		fields := map[string]any{
			"request_id": req.RequestID,
			"language":   string(result.Language),
			"confidence": result.Confidence,
		}
		if result.Language == langdetect.LangZH {
			fields["is_simplified"] = result.IsSimplified
		}
		c.conn.SendJSON(envelope.NewResponse(envelope.ModuleUtils, "language_detected", fields))

	case "list_devices":
		var req envelope.ListDevices
		if err := raw.Decode(&req); err != nil {
			c.sendModuleError(envelope.ModuleUtils, err)
			return
		}
		devices, err := audiocapture.ListInputDevices()
		if err != nil {
			c.sendModuleError(envelope.ModuleUtils, err)
			return
		}
		c.conn.SendJSON(envelope.NewResponse(envelope.ModuleUtils, "device_list", map[string]any{
			"request_id": req.RequestID,
			"devices":    devices,
		}))

	default:
		c.conn.SendJSON(envelope.NewError(envelope.ModuleUtils, envelope.CodeInvalidMessage, "unknown utils message type: "+raw.Type))
	}
}

func (c *connection) sendModuleError(module envelope.Module, err error) {
	c.conn.SendJSON(envelope.NewError(module, envelope.CodeModuleError, err.Error()))
}

func (c *connection) sendSessionError(sessionID string, err error) {
	c.conn.SendJSON(envelope.NewError(envelope.ModulePTY, envelope.CodeSessionNotFound, err.Error()))
}
