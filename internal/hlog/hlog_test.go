package hlog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInitWritesToLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hearthd.log")
	if err := Init("debug", path); err != nil {
		t.Fatalf("Init: %v", err)
	}
	Log.Info("test message", "key", "value")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected log file to contain the written entry")
	}
}

func TestInitUnknownLevelDefaultsToInfo(t *testing.T) {
	if err := Init("not-a-real-level", ""); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if !Log.Enabled(nil, 0) {
		t.Fatal("expected info level to be enabled by default")
	}
}
