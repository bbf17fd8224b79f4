package audiocapture

import (
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/hearthd/hearthd/internal/audiodsp"
	"github.com/hearthd/hearthd/internal/hlog"
)

const (
	chunkChanCapacity  = 50
	voiceHangoverBlocks = 3
	streamStopSettle    = 200 * time.Millisecond
	streamDrainSleep    = 100 * time.Millisecond
)

// StreamingOptions configures a streaming recording.
type StreamingOptions struct {
	Device  string
	OnLevel LevelCallback
}

// StreamingRecorder implements the chunked capture path used by realtime
// ASR (SPEC_FULL.md §4.5): it pushes AudioChunk values onto a bounded
// channel as they're captured, applying voice-activity gating and a
// gentle automatic-gain relax during silence, and dropping chunks (with a
// log line) if the consumer falls behind.
type StreamingRecorder struct {
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

// NewStreamingRecorder returns an idle streaming recorder.
func NewStreamingRecorder() *StreamingRecorder {
	return &StreamingRecorder{}
}

// Start begins capture and returns a channel of audio chunks. The channel
// is closed once the capture goroutine exits (Stop, Cancel, or a stream
// read error).
func (r *StreamingRecorder) Start(opts StreamingOptions) (<-chan AudioChunk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recording {
		return nil, errAlreadyRecording
	}

	dev, err := selectInputDevice(opts.Device)
	if err != nil {
		return nil, err
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
		return nil, &DeviceError{Msg: "open capture stream: " + err.Error()}
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, &DeviceError{Msg: "start capture stream: " + err.Error()}
	}

	r.stream = stream
	r.buf = buf
	r.sampleRate = int(sampleRate)
	r.channels = channels
	r.collected = r.collected[:0]
	r.smoothed = 0
	r.stopCh = make(chan struct{})
	r.recording = true

	chunkCh := make(chan AudioChunk, chunkChanCapacity)

	r.wg.Add(1)
	go r.captureLoop(chunkCh, opts.OnLevel)

	return chunkCh, nil
}

func (r *StreamingRecorder) captureLoop(chunkCh chan<- AudioChunk, onLevel LevelCallback) {
	defer r.wg.Done()
	defer close(chunkCh)

	gain := 1.0
	silentBlocks := voiceHangoverBlocks
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
		rate := r.sampleRate
		r.mu.Unlock()

		if audiodsp.IsVoiceActive(mono) {
			silentBlocks = 0
		} else {
			silentBlocks++
		}

		if silentBlocks > voiceHangoverBlocks {
			gain = gain*0.5 + 0.5
		}

		adjusted := make([]float32, len(mono))
		for i, s := range mono {
			adjusted[i] = s * float32(gain)
		}

		select {
		case chunkCh <- AudioChunk{Samples: adjusted, SampleRate: rate}:
		default:
			hlog.Log.Debug("audiocapture: dropping chunk, consumer is behind")
		}

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

// StopStreaming settles briefly to let trailing audio drain, halts
// capture, and returns the full raw (mono, un-AGC'd) aggregate recording
// — per-chunk gain relaxation already happened in captureLoop, so no
// second AGC pass runs here.
func (r *StreamingRecorder) StopStreaming() (AudioData, error) {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return AudioData{}, errNotRecording
	}
	r.recording = false
	stream := r.stream
	sourceRate := r.sampleRate
	r.mu.Unlock()

	time.Sleep(streamStopSettle)
	close(r.stopCh)
	stream.Stop()
	r.wg.Wait()
	stream.Close()
	time.Sleep(streamDrainSleep)

	r.mu.Lock()
	samples := append([]float32(nil), r.collected...)
	r.mu.Unlock()

	return AudioData{Samples: samples, SampleRate: sourceRate, Channels: 1}, nil
}

// Cancel halts capture immediately and discards the channel.
func (r *StreamingRecorder) Cancel() error {
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
func (r *StreamingRecorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}
