package audiocapture

import (
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gordonklaus/portaudio"

	"github.com/hearthd/hearthd/internal/audiodsp"
	"github.com/hearthd/hearthd/internal/config"
	"github.com/hearthd/hearthd/internal/hlog"
)

const (
	frameSize      = 1024
	levelInterval  = 33 * time.Millisecond
	agcBlockSize   = 3200
	drainSleep     = 100 * time.Millisecond
)

// LevelCallback is invoked at roughly 30Hz while a recorder is running with
// a perceptual level in [0, 1] and a 9-bar waveform snapshot.
type LevelCallback func(level float64, waveform [9]float64)

// BatchOptions configures a single recording.
type BatchOptions struct {
	Device      string
	Compression config.CompressionLevel
	OnLevel     LevelCallback
}

// BatchRecorder implements the one-shot Idle -> Recording -> Idle capture
// state machine (SPEC_FULL.md §4.4), grounded on the blocking
// portaudio.OpenStream + Stream.Read() pattern in
// other_examples/531227bb_rustyguts-bken__client-audio.go.go's
// AudioEngine.Start/captureLoop/Stop.
type BatchRecorder struct {
	mu        sync.Mutex
	recording bool

	stream     *portaudio.Stream
	buf        []float32
	sampleRate int
	channels   int

	collected []float32
	smoothed  float64

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewBatchRecorder returns an idle recorder.
func NewBatchRecorder() *BatchRecorder {
	return &BatchRecorder{}
}

// Start resolves the capture device and begins recording. Returns
// errAlreadyRecording if a recording is already in progress.
func (r *BatchRecorder) Start(opts BatchOptions) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recording {
		return errAlreadyRecording
	}

	dev, err := selectInputDevice(opts.Device)
	if err != nil {
		return err
	}

	channels := 1
	if dev.MaxInputChannels < channels {
		channels = dev.MaxInputChannels
	}
	sampleRate := dev.DefaultSampleRate
	if sampleRate <= 0 {
		sampleRate = 16000
	}

	buf := make([]float32, frameSize*channels)
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   dev,
			Channels: channels,
			Latency:  dev.DefaultLowInputLatency,
		},
		SampleRate:      sampleRate,
		FramesPerBuffer: frameSize,
	}

	stream, err := portaudio.OpenStream(params, buf)
	if err != nil {
		return &DeviceError{Msg: "open capture stream: " + err.Error()}
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return &DeviceError{Msg: "start capture stream: " + err.Error()}
	}

	r.stream = stream
	r.buf = buf
	r.sampleRate = int(sampleRate)
	r.channels = channels
	r.collected = r.collected[:0]
	r.smoothed = 0
	r.stopCh = make(chan struct{})
	r.recording = true

	r.wg.Add(1)
	go r.captureLoop(opts.OnLevel)

	return nil
}

// captureLoop blocks on Stream.Read in a dedicated goroutine so the caller
// never blocks; Stop() halts the underlying stream to unblock the pending
// Read before joining this goroutine.
func (r *BatchRecorder) captureLoop(onLevel LevelCallback) {
	defer r.wg.Done()

	lastLevel := time.Now()
	for {
		select {
		case <-r.stopCh:
			return
		default:
		}

		if err := r.stream.Read(); err != nil {
			return
		}

		mono := audiodsp.MonoMix(r.buf, r.channels)

		r.mu.Lock()
		r.collected = append(r.collected, mono...)
		r.mu.Unlock()

		if onLevel != nil && time.Since(lastLevel) >= levelInterval {
			lastLevel = time.Now()
			rms := audiodsp.RMS(mono)
			target := audiodsp.Level(rms)
			r.smoothed = audiodsp.SmoothLevel(r.smoothed, target)
			waveform := audiodsp.Waveform(mono, 9)
			var wf [9]float64
			copy(wf[:], waveform)
			onLevel(r.smoothed, wf)
		}
	}
}

// Stop halts capture and returns the finished recording: mono-mixed,
// resampled to the configured compression target, and gain-normalized
// block-wise. Returns errNotRecording if no recording is in progress.
func (r *BatchRecorder) Stop(compression config.CompressionLevel) (AudioData, error) {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return AudioData{}, errNotRecording
	}
	r.recording = false
	stream := r.stream
	sourceRate := r.sampleRate
	r.mu.Unlock()

	time.Sleep(drainSleep)
	close(r.stopCh)
	stream.Stop()
	r.wg.Wait()
	stream.Close()

	r.mu.Lock()
	samples := append([]float32(nil), r.collected...)
	r.mu.Unlock()

	if len(samples) == 0 {
		return AudioData{SampleRate: 16000, Channels: 1}, nil
	}

	targetRate := compressionTargetRate(compression, sourceRate)
	resampled := audiodsp.Resample(samples, sourceRate, targetRate)
	normalized := applyBlockAGC(resampled)

	audio := AudioData{Samples: normalized, SampleRate: targetRate, Channels: 1}
	hlog.Log.Debug("audiocapture: batch recording finished",
		"duration_ms", audio.DurationMs(),
		"wav_size", humanize.Bytes(uint64(len(audio.ToWAV()))))

	return audio, nil
}

// Cancel halts capture and discards whatever was collected.
func (r *BatchRecorder) Cancel() error {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return errNotRecording
	}
	r.recording = false
	stream := r.stream
	r.mu.Unlock()

	close(r.stopCh)
	stream.Stop()
	r.wg.Wait()
	stream.Close()
	return nil
}

// IsRecording reports the recorder's current state.
func (r *BatchRecorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

func compressionTargetRate(level config.CompressionLevel, sourceRate int) int {
	switch level {
	case config.CompressionMedium:
		return minInt(24000, sourceRate)
	case config.CompressionMinimum:
		return minInt(16000, sourceRate)
	default:
		return sourceRate
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func applyBlockAGC(samples []float32) []float32 {
	out := make([]float32, 0, len(samples))
	gain := 1.0
	for i := 0; i < len(samples); i += agcBlockSize {
		end := i + agcBlockSize
		if end > len(samples) {
			end = len(samples)
		}
		block, newGain := audiodsp.AGC(samples[i:end], gain)
		gain = newGain
		out = append(out, block...)
	}
	return out
}
