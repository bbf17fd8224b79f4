package audiocapture

// DeviceError reports a capture-device resolution failure (not found, no
// default device, PortAudio host error).
type DeviceError struct {
	Msg string
}

func (e *DeviceError) Error() string { return e.Msg }

// StateError reports an operation that doesn't fit the recorder's current
// Idle/Recording state, e.g. stopping a recorder that was never started.
type StateError struct {
	Msg string
}

func (e *StateError) Error() string { return e.Msg }

var (
	errAlreadyRecording = &StateError{Msg: "recording already in progress"}
	errNotRecording     = &StateError{Msg: "no recording in progress"}
)
