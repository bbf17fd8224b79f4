// Package voice orchestrates one connection's recording lifecycle: batch
// (HTTP) or streaming (realtime) capture, ASR transcription with
// primary/fallback racing, level/waveform forwarding, and the
// realtime-to-HTTP fallback path when a realtime engine fails mid-stream.
// Grounded on the teacher's per-connection handler shape (one Handler per
// connection, guarded by a single mutex) generalized from PTY sessions to
// one recording session.
package voice

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/hearthd/hearthd/internal/asr"
	"github.com/hearthd/hearthd/internal/audiocapture"
	"github.com/hearthd/hearthd/internal/beep"
	"github.com/hearthd/hearthd/internal/config"
	"github.com/hearthd/hearthd/internal/envelope"
	"github.com/hearthd/hearthd/internal/hlog"
	"github.com/hearthd/hearthd/internal/sink"
)

const levelForwardHz = 30

// session holds the state of one in-progress recording.
type session struct {
	cfg          config.ASRConfig
	primary      asr.Engine
	fallback     asr.Engine
	primaryName  config.ASRProvider
	fallbackName config.ASRProvider

	cancel context.CancelFunc
	start  time.Time

	// realtime path only
	realtimeDone chan realtimeOutcome
}

type realtimeOutcome struct {
	text string
	err  error
}

// Handler owns one connection's recording state.
type Handler struct {
	mu sync.Mutex

	sink      sink.Sink
	limiter   *rate.Limiter
	batch     *audiocapture.BatchRecorder
	streaming *audiocapture.StreamingRecorder
	sess      *session
}

// New returns an idle voice handler.
func New() *Handler {
	return &Handler{
		limiter:   rate.NewLimiter(rate.Limit(levelForwardHz), 1),
		batch:     audiocapture.NewBatchRecorder(),
		streaming: audiocapture.NewStreamingRecorder(),
	}
}

// SetSink installs the connection's shared sink.
func (h *Handler) SetSink(s sink.Sink) {
	h.mu.Lock()
	h.sink = s
	h.mu.Unlock()
}

func (h *Handler) currentSink() sink.Sink {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sink
}

func (h *Handler) emitLevel(level float64, waveform [9]float64) {
	if !h.limiter.Allow() {
		return
	}
	s := h.currentSink()
	if s == nil {
		return
	}
	s.SendJSON(envelope.NewResponse(envelope.ModuleVoice, "audio_level", map[string]any{
		"level":    level,
		"waveform": waveform,
	}))
}

func (h *Handler) emitRecordingState(state string) {
	s := h.currentSink()
	if s == nil {
		return
	}
	s.SendJSON(envelope.NewResponse(envelope.ModuleVoice, "recording_state", map[string]any{
		"state": state,
	}))
}

func buildEngines(cfg config.ASRConfig) (primary, fallback asr.Engine, fallbackName config.ASRProvider, err error) {
	primary, err = asr.New(cfg.Primary)
	if err != nil {
		return nil, nil, "", err
	}
	if cfg.EnableFallback && cfg.Fallback != nil {
		fallback, err = asr.New(*cfg.Fallback)
		if err != nil {
			return nil, nil, "", err
		}
		fallbackName = cfg.Fallback.Provider
	}
	return primary, fallback, fallbackName, nil
}

// StartRecording validates the config, resolves engines, and begins
// capture (streaming for realtime mode, batch otherwise).
func (h *Handler) StartRecording(req envelope.VoiceStartRecording) (envelope.Response, error) {
	if err := req.ASRConfig.Validate(); err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sess != nil {
		return nil, fmt.Errorf("voice: recording already in progress")
	}

	primary, fallback, fallbackName, err := buildEngines(req.ASRConfig)
	if err != nil {
		return nil, err
	}

	sess := &session{
		cfg:          req.ASRConfig,
		primary:      primary,
		fallback:     fallback,
		primaryName:  req.ASRConfig.Primary.Provider,
		fallbackName: fallbackName,
		start:        time.Now(),
	}

	if req.ASRConfig.Primary.Mode == config.ModeRealtime {
		chunkCh, err := h.streaming.Start(audiocapture.StreamingOptions{
			Device:  req.ASRConfig.InputDevice,
			OnLevel: h.emitLevel,
		})
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithCancel(context.Background())
		sess.cancel = cancel
		sess.realtimeDone = make(chan realtimeOutcome, 1)

		partial := func(text string) {
			s := h.currentSink()
			if s != nil {
				s.SendJSON(envelope.NewResponse(envelope.ModuleVoice, "transcription_progress", map[string]any{"partial_text": text}))
			}
		}
		stop := make(chan struct{})
		go func() {
			text, err := primary.TranscribeStream(ctx, chunkCh, partial, stop)
			sess.realtimeDone <- realtimeOutcome{text: text, err: err}
		}()
	} else {
		if err := h.batch.Start(audiocapture.BatchOptions{
			Device:      req.ASRConfig.InputDevice,
			Compression: req.ASRConfig.Compression,
			OnLevel:     h.emitLevel,
		}); err != nil {
			return nil, err
		}
	}

	h.sess = sess
	if req.ASRConfig.EnableAudioFeedback {
		go beep.PlayStart()
	}

	return envelope.NewResponse(envelope.ModuleVoice, "recording_state", map[string]any{"state": "started"}), nil
}

// StopRecording halts capture, resolves a final transcript (racing
// fallback for HTTP mode, falling back to the configured fallback engine
// or an HTTP re-transcription of the raw audio if the realtime engine
// failed), and emits the result on the connection's sink.
func (h *Handler) StopRecording() error {
	h.mu.Lock()
	sess := h.sess
	h.sess = nil
	s := h.sink
	h.mu.Unlock()

	if sess == nil {
		return fmt.Errorf("voice: no recording in progress")
	}

	if sess.cfg.Primary.Mode == config.ModeRealtime {
		raw, err := h.streaming.StopStreaming()
		if err != nil {
			return err
		}
		h.emitRecordingState("stopped")

		outcome := <-sess.realtimeDone
		if outcome.err == nil {
			h.emitTranscription(s, outcome.text, sess.primaryName, false, time.Since(sess.start).Milliseconds())
			h.playStopFeedback(sess)
			return nil
		}

		hlog.Log.Warn("voice: realtime transcription failed, falling back to http", "err", outcome.err)

		var (
			text       string
			engineName config.ASRProvider
			fallErr    error
		)
		fallbackStart := time.Now()
		if sess.cfg.EnableFallback && sess.fallback != nil {
			text, fallErr = sess.fallback.Transcribe(context.Background(), raw)
			engineName = sess.fallbackName
		} else {
			httpCfg := sess.cfg.Primary
			httpCfg.Mode = config.ModeHTTP
			httpEngine, buildErr := asr.New(httpCfg)
			if buildErr != nil {
				h.playStopFeedback(sess)
				return fmt.Errorf("realtime: %v; http fallback: %v", outcome.err, buildErr)
			}
			text, fallErr = httpEngine.Transcribe(context.Background(), raw)
			engineName = config.ASRProvider(string(sess.primaryName) + "-http")
		}
		h.playStopFeedback(sess)
		if fallErr != nil {
			return fmt.Errorf("realtime: %v; http fallback: %v", outcome.err, fallErr)
		}
		h.emitTranscription(s, text, engineName, true, time.Since(fallbackStart).Milliseconds())
		return nil
	}

	audio, err := h.batch.Stop(sess.cfg.Compression)
	if err != nil {
		return err
	}
	h.emitRecordingState("stopped")

	if len(audio.Samples) == 0 {
		h.playStopFeedback(sess)
		h.emitTranscription(s, "", sess.primaryName, false, 0)
		return nil
	}

	result, err := asr.TranscribeWithFallback(context.Background(), sess.primary, sess.fallback, sess.primaryName, sess.fallbackName, audio)
	h.playStopFeedback(sess)
	if err != nil {
		return err
	}
	h.emitTranscription(s, result.Text, result.Engine, result.UsedFallback, result.DurationMs)
	return nil
}

func (h *Handler) playStopFeedback(sess *session) {
	if sess.cfg.EnableAudioFeedback {
		go beep.PlayStop()
	}
}

func (h *Handler) emitTranscription(s sink.Sink, text string, engine config.ASRProvider, usedFallback bool, durationMs int64) {
	if s == nil {
		return
	}
	s.SendJSON(envelope.NewResponse(envelope.ModuleVoice, "transcription_complete", map[string]any{
		"text":          text,
		"engine":        string(engine),
		"used_fallback": usedFallback,
		"duration_ms":   durationMs,
	}))
}

// CancelRecording halts capture without producing a transcription.
func (h *Handler) CancelRecording() error {
	h.mu.Lock()
	sess := h.sess
	h.sess = nil
	h.mu.Unlock()

	if sess == nil {
		return fmt.Errorf("voice: no recording in progress")
	}
	if sess.cancel != nil {
		sess.cancel()
	}

	var err error
	if sess.cfg.Primary.Mode == config.ModeRealtime {
		_, err = h.streaming.StopStreaming()
	} else {
		err = h.batch.Cancel()
	}
	h.emitRecordingState("cancelled")
	return err
}

// UpdateConfig validates new ASR settings and returns any validation
// error. It stores nothing: the handler keeps no ASR config between
// recordings, and each start_recording uses the config it carries.
func (h *Handler) UpdateConfig(req envelope.VoiceUpdateConfig) error {
	return req.ASRConfig.Validate()
}

// Cleanup halts any in-progress recording. Called on connection close.
func (h *Handler) Cleanup() {
	h.mu.Lock()
	sess := h.sess
	h.sess = nil
	h.mu.Unlock()

	if sess == nil {
		return
	}
	if sess.cancel != nil {
		sess.cancel()
	}
	if sess.cfg.Primary.Mode == config.ModeRealtime {
		h.streaming.StopStreaming()
	} else {
		h.batch.Cancel()
	}
}
