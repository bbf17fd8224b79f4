package ptyshell

// integrationScripts maps a shell tag to a one-time setup script written
// into the PTY right after the first successful read. The scripts emit
// OSC 133 shell-integration markers (prompt start/end) so a terminal UI
// can detect command boundaries; shells without a known script are left
// untouched.
var integrationScripts = map[string]string{
	"bash": "PS1=\"\\[\\e]133;A\\a\\]$PS1\\[\\e]133;B\\a\\]\"\n",
	"zsh":  "PROMPT=\"%{\\e]133;A\\a%}$PROMPT%{\\e]133;B\\a%}\"\n",
}

// IntegrationScript returns the one-time setup script for a shell tag, if
// one is known.
func IntegrationScript(shellType string) (string, bool) {
	script, ok := integrationScripts[shellType]
	return script, ok
}
