// Package ptyshell resolves a shell tag to a concrete command and argument
// list, per platform. Grounded on original_source/pty-server/src/shell.rs,
// ported to the Go exec.Cmd idiom.
package ptyshell

import (
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Command is a resolved shell invocation: a binary path/name plus any
// arguments the tag requires (e.g. gitbash's "--login").
type Command struct {
	Path string
	Args []string
}

// Resolve maps a shell tag to a Command. An empty or unrecognized tag
// falls back to the platform default. "custom:<path>" runs path verbatim.
func Resolve(shellType string) Command {
	switch {
	case shellType == "cmd":
		return Command{Path: "cmd.exe"}
	case shellType == "powershell":
		if runtime.GOOS == "windows" {
			if path, ok := whichPowerShell(); ok {
				return Command{Path: path}
			}
			return Command{Path: "powershell.exe"}
		}
		return Default()
	case shellType == "wsl":
		return Command{Path: "wsl.exe"}
	case shellType == "gitbash":
		if runtime.GOOS == "windows" {
			if path, ok := whichGitBash(); ok {
				return Command{Path: path, Args: []string{"--login"}}
			}
			return Default()
		}
		return Command{Path: "bash"}
	case shellType == "bash":
		return Command{Path: "bash"}
	case shellType == "zsh":
		return Command{Path: "zsh"}
	case strings.HasPrefix(shellType, "custom:"):
		return Command{Path: strings.TrimPrefix(shellType, "custom:")}
	default:
		return Default()
	}
}

// Default returns the platform default shell: on Windows, PowerShell Core
// then Windows PowerShell then cmd.exe; on Unix, $SHELL then /bin/bash.
func Default() Command {
	if runtime.GOOS == "windows" {
		if path, ok := whichPowerShell(); ok {
			return Command{Path: path}
		}
		return Command{Path: "cmd.exe"}
	}
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/bash"
	}
	return Command{Path: shell}
}

func whichPowerShell() (string, bool) {
	for _, candidate := range []string{"pwsh.exe", "powershell.exe"} {
		if _, err := exec.LookPath(candidate); err == nil {
			return candidate, true
		}
	}
	return "", false
}

func whichGitBash() (string, bool) {
	userProfile := os.Getenv("USERPROFILE")
	candidates := []string{
		`C:\Program Files\Git\bin\bash.exe`,
		`C:\Program Files (x86)\Git\bin\bash.exe`,
	}
	if userProfile != "" {
		candidates = append(candidates, userProfile+`\AppData\Local\Programs\Git\bin\bash.exe`)
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, true
		}
	}
	if path, err := exec.LookPath("bash.exe"); err == nil && strings.Contains(path, "Git") {
		return path, true
	}
	return "", false
}
