// Package audiocapture captures microphone audio into AudioData/AudioChunk
// buffers, grounded on other_examples/531227bb_rustyguts-bken__client-audio.go.go's
// blocking gordonklaus/portaudio Stream.Read() usage, and on
// original_source/rust-servers/src/voice/audio/{recorder,streaming}.rs for
// the exact constants and state-machine semantics.
package audiocapture

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// InputDeviceInfo describes one capture device for a device-picker UI.
type InputDeviceInfo struct {
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
}

// ListInputDevices enumerates capture devices.
func ListInputDevices() ([]InputDeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}

	def, derr := portaudio.DefaultInputDevice()
	var defaultName string
	if derr == nil && def != nil {
		defaultName = def.Name
	}

	var out []InputDeviceInfo
	for _, d := range devices {
		if d.MaxInputChannels <= 0 {
			continue
		}
		out = append(out, InputDeviceInfo{
			Name:      d.Name,
			IsDefault: d.Name == defaultName,
		})
	}
	return out, nil
}

// selectInputDevice resolves a device by name, or the system default when
// name is empty.
func selectInputDevice(name string) (*portaudio.DeviceInfo, error) {
	if name == "" {
		dev, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, &DeviceError{Msg: "no default input device: " + err.Error()}
		}
		return dev, nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, &DeviceError{Msg: "list devices: " + err.Error()}
	}
	for _, d := range devices {
		if d.Name == name && d.MaxInputChannels > 0 {
			return d, nil
		}
	}
	return nil, &DeviceError{Msg: fmt.Sprintf("input device not found: %s", name)}
}
