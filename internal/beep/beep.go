// Package beep plays short confirmation tones (recording start/stop) on
// the default output device. Grounded on the blocking
// portaudio.OpenDefaultStream + Stream.Write() pattern used for playback in
// other_examples/531227bb_rustyguts-bken__client-audio.go.go's
// AudioEngine.playbackLoop. Failures here are cosmetic — they're logged at
// debug level and never surfaced to the client (SPEC_FULL.md §4.11).
package beep

import (
	"math"

	"github.com/gordonklaus/portaudio"

	"github.com/hearthd/hearthd/internal/hlog"
)

const (
	sampleRate  = 44100
	toneLenMs   = 120
	startFreqHz = 880.0
	stopFreqHz  = 660.0
	amplitude   = 0.2
)

// PlayStart plays the recording-started tone.
func PlayStart() {
	play(startFreqHz)
}

// PlayStop plays the recording-stopped tone.
func PlayStop() {
	play(stopFreqHz)
}

func play(freqHz float64) {
	samples := synthSineTone(freqHz)

	buf := make([]float32, len(samples))
	stream, err := portaudio.OpenDefaultStream(0, 1, sampleRate, len(buf), &buf)
	if err != nil {
		hlog.Log.Debug("beep: open output stream failed", "err", err)
		return
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		hlog.Log.Debug("beep: start output stream failed", "err", err)
		return
	}
	defer stream.Stop()

	copy(buf, samples)
	if err := stream.Write(); err != nil {
		hlog.Log.Debug("beep: write tone failed", "err", err)
	}
}

func synthSineTone(freqHz float64) []float32 {
	n := sampleRate * toneLenMs / 1000
	out := make([]float32, n)
	for i := range out {
		t := float64(i) / float64(sampleRate)
		out[i] = float32(amplitude * math.Sin(2*math.Pi*freqHz*t))
	}
	return out
}
