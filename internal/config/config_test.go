package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestProviderConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		pc      ProviderConfig
		wantErr bool
	}{
		{"qwen missing key", ProviderConfig{Provider: ProviderQwen}, true},
		{"qwen ok", ProviderConfig{Provider: ProviderQwen, DashscopeAPIKey: "k"}, false},
		{"doubao missing creds", ProviderConfig{Provider: ProviderDoubao, AppID: "a"}, true},
		{"doubao ok", ProviderConfig{Provider: ProviderDoubao, AppID: "a", AccessToken: "t"}, false},
		{"sensevoice realtime rejected", ProviderConfig{Provider: ProviderSenseVoice, SiliconflowAPIKey: "k", Mode: ModeRealtime}, true},
		{"sensevoice http ok", ProviderConfig{Provider: ProviderSenseVoice, SiliconflowAPIKey: "k", Mode: ModeHTTP}, false},
		{"unknown provider", ProviderConfig{Provider: "bogus"}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.pc.Validate()
			if (err != nil) != c.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, c.wantErr)
			}
		})
	}
}

func TestASRConfigValidatesFallback(t *testing.T) {
	cfg := ASRConfig{
		Primary:  ProviderConfig{Provider: ProviderQwen, DashscopeAPIKey: "k"},
		Fallback: &ProviderConfig{Provider: ProviderDoubao},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected fallback validation error to surface")
	}
}

func TestManagerLoadMissingFileKeepsDefault(t *testing.T) {
	m := NewManager()
	if err := m.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml")); err != nil {
		t.Fatalf("unexpected error for missing file: %v", err)
	}
	if m.Current().LogLevel != "info" {
		t.Fatalf("expected default config to remain active, got %+v", m.Current())
	}
}

func TestManagerLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hearthd.yaml")
	body := "log_level: debug\nbind_port: 9090\nasr:\n  primary:\n    provider: doubao\n    mode: http\n    app_id: a\n    access_token: t\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewManager()
	if err := m.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	cur := m.Current()
	if cur.LogLevel != "debug" || cur.BindPort != 9090 {
		t.Fatalf("unexpected config after load: %+v", cur)
	}
	if cur.ASR.Primary.Provider != ProviderDoubao {
		t.Fatalf("unexpected asr provider: %+v", cur.ASR.Primary)
	}
}

func TestDefaultHasNoCredentialsAndFailsValidation(t *testing.T) {
	// Default() picks a provider/mode pair but never invents credentials;
	// Validate rightly rejects it until a real config file supplies them.
	if err := Default().ASR.Validate(); err == nil {
		t.Fatal("expected Default() config to fail validation without credentials")
	}
}
