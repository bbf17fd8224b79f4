package audiocapture

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// AudioData is a complete, in-memory mono or interleaved PCM float32
// recording plus the sample rate it was captured at. Grounded on
// original_source/rust-servers/src/voice/audio/mod.rs's AudioData.
type AudioData struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// DurationMs reports the recording's length in milliseconds.
func (a AudioData) DurationMs() int64 {
	if a.SampleRate <= 0 || a.Channels <= 0 {
		return 0
	}
	frames := len(a.Samples) / a.Channels
	return int64(frames) * 1000 / int64(a.SampleRate)
}

// ToWAV encodes the recording as a 16-bit PCM WAV file.
func (a AudioData) ToWAV() []byte {
	channels := a.Channels
	if channels <= 0 {
		channels = 1
	}
	pcm := make([]byte, len(a.Samples)*2)
	for i, s := range a.Samples {
		v := int16(clampSample(s) * 32767)
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(v))
	}

	byteRate := a.SampleRate * channels * 2
	blockAlign := channels * 2

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(a.SampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}

func clampSample(s float32) float32 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}

// AudioChunk is one block of a streaming recording, delivered on the
// streaming recorder's output channel.
type AudioChunk struct {
	Samples    []float32
	SampleRate int
}

// SampleFormat names a native PCM representation a capture device may
// report in place of float32. gordonklaus/portaudio always hands this
// package float32 buffers in practice (see devices.go/batch.go); these
// converters exist for the non-float32 native formats named in
// SPEC_FULL.md §4.4 and are exercised directly by the package's tests.
type SampleFormat int

const (
	FormatF32 SampleFormat = iota
	FormatI16
	FormatU16
)

// ConvertI16ToF32 converts signed 16-bit PCM samples to float32 by
// dividing by 32767, so 32767 maps to 1 and -32768 maps just below -1.
func ConvertI16ToF32(samples []int16) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s) / 32767.0
	}
	return out
}

// ConvertU16ToF32 converts unsigned 16-bit PCM samples to float32 in
// [-1, 1], per SPEC_FULL.md's u16 formula (subtract 32768, divide by
// 32768).
func ConvertU16ToF32(samples []uint16) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = (float32(s) - 32768) / 32768.0
	}
	return out
}

// UnsupportedFormatError reports a capture device whose only reported
// native formats this package has no converter for.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported native sample format: %s", e.Format)
}
