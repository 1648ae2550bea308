package config

import (
	"os"

	"simple-chat/internal/env"
)

// DeterminePath picks the config file: the --config flag, then CHAT_CONFIG,
// then the first candidate that exists. An empty result means defaults and
// environment only.
func DeterminePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}

	if p := env.GetString("CHAT_CONFIG", ""); p != "" {
		return p
	}

	candidates := []string{
		"./config.yaml",
		"./config.yml",
		"/etc/simple-chat/config.yaml",
		"/app/config.yaml", // common in Docker
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
