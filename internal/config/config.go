// Package config loads and hot-reloads hearthd's on-disk YAML configuration.
package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// ASRProvider names a supported speech-recognition vendor.
type ASRProvider string

const (
	ProviderQwen       ASRProvider = "qwen"
	ProviderDoubao     ASRProvider = "doubao"
	ProviderSenseVoice ASRProvider = "sensevoice"
)

// ASRMode selects between one-shot HTTP transcription and streaming realtime.
type ASRMode string

const (
	ModeHTTP     ASRMode = "http"
	ModeRealtime ASRMode = "realtime"
)

// CompressionLevel caps the sample rate of captured/transcoded audio.
type CompressionLevel string

const (
	CompressionOriginal CompressionLevel = "original"
	CompressionMedium   CompressionLevel = "medium"  // min(24kHz, device rate)
	CompressionMinimum  CompressionLevel = "minimum" // min(16kHz, device rate)
)

// ConfigError marks a rejected configuration: missing credentials or an
// unsupported provider/mode pairing. The router reports it, like any other
// voice request error, with the envelope MODULE_ERROR code.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return e.Msg }

// ProviderConfig carries one vendor's credentials and the mode it runs in.
type ProviderConfig struct {
	Provider ASRProvider `yaml:"provider" json:"provider"`
	Mode     ASRMode     `yaml:"mode" json:"mode"`

	DashscopeAPIKey   string `yaml:"dashscope_api_key,omitempty" json:"dashscope_api_key,omitempty"`
	AppID             string `yaml:"app_id,omitempty" json:"app_id,omitempty"`
	AccessToken       string `yaml:"access_token,omitempty" json:"access_token,omitempty"`
	SiliconflowAPIKey string `yaml:"siliconflow_api_key,omitempty" json:"siliconflow_api_key,omitempty"`
}

// Validate rejects missing credentials and provider/mode pairs the vendor
// does not support. Grounded on original_source/rust-servers/src/voice/config.rs.
func (p ProviderConfig) Validate() error {
	switch p.Provider {
	case ProviderQwen:
		if p.DashscopeAPIKey == "" {
			return &ConfigError{Msg: "qwen: dashscope_api_key is required"}
		}
	case ProviderDoubao:
		if p.AppID == "" || p.AccessToken == "" {
			return &ConfigError{Msg: "doubao: app_id and access_token are required"}
		}
	case ProviderSenseVoice:
		if p.SiliconflowAPIKey == "" {
			return &ConfigError{Msg: "sensevoice: siliconflow_api_key is required"}
		}
		if p.Mode == ModeRealtime {
			return &ConfigError{Msg: "sensevoice: realtime mode is not supported, use http"}
		}
	default:
		return &ConfigError{Msg: fmt.Sprintf("unknown asr provider %q", p.Provider)}
	}
	return nil
}

// ASRConfig is the per-connection speech-recognition configuration.
type ASRConfig struct {
	Primary             ProviderConfig   `yaml:"primary" json:"primary"`
	Fallback            *ProviderConfig  `yaml:"fallback,omitempty" json:"fallback,omitempty"`
	EnableFallback      bool             `yaml:"enable_fallback" json:"enable_fallback"`
	InputDevice         string           `yaml:"input_device,omitempty" json:"input_device,omitempty"`
	Compression         CompressionLevel `yaml:"compression" json:"compression"`
	EnableAudioFeedback bool             `yaml:"enable_audio_feedback" json:"enable_audio_feedback"`
}

// Validate validates the primary config and, if present, the fallback config.
func (a ASRConfig) Validate() error {
	if err := a.Primary.Validate(); err != nil {
		return fmt.Errorf("primary asr config: %w", err)
	}
	if a.Fallback != nil {
		if err := a.Fallback.Validate(); err != nil {
			return fmt.Errorf("fallback asr config: %w", err)
		}
	}
	return nil
}

// LLMProviderConfig configures one upstream LLM provider's credentials.
type LLMProviderConfig struct {
	APIKey  string `yaml:"api_key,omitempty" json:"api_key,omitempty"`
	BaseURL string `yaml:"base_url,omitempty" json:"base_url,omitempty"`
}

// Config is the top-level on-disk configuration.
type Config struct {
	LogLevel     string                       `yaml:"log_level"`
	LogFile      string                       `yaml:"log_file,omitempty"`
	BindPort     int                          `yaml:"bind_port"` // 0 = OS-assigned
	DefaultShell string                       `yaml:"default_shell,omitempty"`
	ASR          ASRConfig                    `yaml:"asr"`
	LLMProviders map[string]LLMProviderConfig `yaml:"llm_providers,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		BindPort: 0,
		ASR: ASRConfig{
			Primary: ProviderConfig{
				Provider: ProviderQwen,
				Mode:     ModeHTTP,
			},
			Compression:         CompressionMedium,
			EnableAudioFeedback: true,
		},
	}
}

// Manager owns the current configuration and allows it to be swapped out
// atomically as the file is hot-reloaded.
type Manager struct {
	mu  sync.RWMutex
	cur *Config
}

// NewManager returns a Manager seeded with Default().
func NewManager() *Manager {
	return &Manager{cur: Default()}
}

// Load reads and parses the YAML file at path, replacing the current
// config on success. A missing file is not an error — the prior (or
// default) config is kept.
func (m *Manager) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	m.mu.Lock()
	m.cur = cfg
	m.mu.Unlock()
	return nil
}

// Current returns the active configuration.
func (m *Manager) Current() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cur
}
