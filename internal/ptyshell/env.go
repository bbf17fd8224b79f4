package ptyshell

import (
	"fmt"
	"os"
)

// BuildEnv constructs the child process environment: TERM/LANG/LC_ALL/
// LC_CTYPE default to xterm-256color / en_US.UTF-8 unless the caller or
// the parent environment already supplies them; any other caller-supplied
// variable passes through verbatim.
func BuildEnv(caller map[string]string) []string {
	defaults := map[string]string{
		"TERM":     "xterm-256color",
		"LANG":     "en_US.UTF-8",
		"LC_ALL":   "en_US.UTF-8",
		"LC_CTYPE": "en_US.UTF-8",
	}

	merged := map[string]string{}
	for _, kv := range os.Environ() {
		k, v, ok := splitEnv(kv)
		if ok {
			merged[k] = v
		}
	}

	for k, v := range caller {
		merged[k] = v
	}

	for k, v := range defaults {
		if existing, set := merged[k]; set && existing != "" {
			continue
		}
		merged[k] = v
	}

	out := make([]string, 0, len(merged))
	for k, v := range merged {
		out = append(out, fmt.Sprintf("%s=%s", k, v))
	}
	return out
}

func splitEnv(kv string) (key, value string, ok bool) {
	for i := 0; i < len(kv); i++ {
		if kv[i] == '=' {
			return kv[:i], kv[i+1:], true
		}
	}
	return "", "", false
}
