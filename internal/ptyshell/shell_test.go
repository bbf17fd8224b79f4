package ptyshell

import "testing"

func TestResolveCustomStripsPrefix(t *testing.T) {
	cmd := Resolve("custom:/opt/my/shell")
	if cmd.Path != "/opt/my/shell" {
		t.Fatalf("Path = %q, want /opt/my/shell", cmd.Path)
	}
}

func TestResolveBash(t *testing.T) {
	cmd := Resolve("bash")
	if cmd.Path != "bash" {
		t.Fatalf("Path = %q, want bash", cmd.Path)
	}
}

func TestBuildEnvDefaultsWhenUnset(t *testing.T) {
	t.Setenv("TERM", "")
	env := BuildEnv(nil)
	found := false
	for _, kv := range env {
		if kv == "TERM=xterm-256color" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected TERM=xterm-256color in env, got %v", env)
	}
}

func TestBuildEnvCallerOverride(t *testing.T) {
	env := BuildEnv(map[string]string{"TERM": "screen"})
	found := false
	for _, kv := range env {
		if kv == "TERM=screen" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected caller-supplied TERM=screen to win, got %v", env)
	}
}
