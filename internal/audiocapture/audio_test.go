package audiocapture

import (
	"bytes"
	"testing"

	"github.com/hearthd/hearthd/internal/config"
)

func TestConvertI16ToF32Range(t *testing.T) {
	out := ConvertI16ToF32([]int16{0, 32767, -32768})
	if out[0] != 0 {
		t.Fatalf("zero sample = %v, want 0", out[0])
	}
	if out[1] < 0.99 || out[1] > 1.0 {
		t.Fatalf("max sample = %v, want ~1.0", out[1])
	}
}

func TestConvertU16ToF32Range(t *testing.T) {
	out := ConvertU16ToF32([]uint16{32768, 65535, 0})
	if out[0] != 0 {
		t.Fatalf("midpoint sample = %v, want 0", out[0])
	}
	if out[2] != -1 {
		t.Fatalf("zero sample = %v, want -1", out[2])
	}
}

func TestAudioDataDurationMs(t *testing.T) {
	a := AudioData{Samples: make([]float32, 16000), SampleRate: 16000, Channels: 1}
	if got := a.DurationMs(); got != 1000 {
		t.Fatalf("duration = %d, want 1000", got)
	}
}

func TestAudioDataToWAVHeader(t *testing.T) {
	a := AudioData{Samples: []float32{0, 0.5, -0.5}, SampleRate: 16000, Channels: 1}
	wav := a.ToWAV()
	if !bytes.HasPrefix(wav, []byte("RIFF")) {
		t.Fatal("missing RIFF header")
	}
	if !bytes.Contains(wav, []byte("WAVE")) {
		t.Fatal("missing WAVE tag")
	}
}

func TestCompressionTargetRate(t *testing.T) {
	if got := compressionTargetRate(config.CompressionOriginal, 48000); got != 48000 {
		t.Fatalf("original = %d, want 48000", got)
	}
	if got := compressionTargetRate(config.CompressionMedium, 48000); got != 24000 {
		t.Fatalf("medium = %d, want 24000", got)
	}
	if got := compressionTargetRate(config.CompressionMinimum, 8000); got != 8000 {
		t.Fatalf("minimum under cap = %d, want 8000", got)
	}
}

func TestApplyBlockAGCAllZeroStaysZero(t *testing.T) {
	out := applyBlockAGC(make([]float32, agcBlockSize*2))
	for _, s := range out {
		if s != 0 {
			t.Fatalf("expected silence to stay silent, got %v", s)
		}
	}
}
