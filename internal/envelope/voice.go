package envelope

import "github.com/hearthd/hearthd/internal/config"

// RecordingMode selects push-to-talk vs toggle semantics; interpreted by
// the client UI only — the server treats both identically once recording
// has started.
type RecordingMode string

const (
	ModePress  RecordingMode = "press"
	ModeToggle RecordingMode = "toggle"
)

// VoiceStartRecording is the `voice.start_recording` request payload.
type VoiceStartRecording struct {
	Mode      RecordingMode    `mapstructure:"mode"`
	ASRConfig config.ASRConfig `mapstructure:"asr_config"`
}

// VoiceUpdateConfig is the `voice.update_config` request payload.
type VoiceUpdateConfig struct {
	ASRConfig config.ASRConfig `mapstructure:"asr_config"`
}

// DetectLanguage is the `utils.detect_language` request payload.
type DetectLanguage struct {
	Text      string `mapstructure:"text"`
	RequestID string `mapstructure:"request_id"`
}

// ListDevices is the `utils.list_devices` request payload.
type ListDevices struct {
	RequestID string `mapstructure:"request_id"`
}

// LLMPrompt is the `llm.prompt` request payload.
type LLMPrompt struct {
	Provider string       `mapstructure:"provider"`
	Model    string       `mapstructure:"model"`
	Messages []LLMMessage `mapstructure:"messages"`
}

// LLMMessage is one chat turn in an `llm.prompt` request.
type LLMMessage struct {
	Role    string `mapstructure:"role"`
	Content string `mapstructure:"content"`
}
