// Package config resolves capital's settings from files, environment, and flags.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultDatabasePath is used when database.path is not configured.
const DefaultDatabasePath = "~/.local/share/capital/capital.db"

// DefaultConfigDir is where config.yaml is looked up.
const DefaultConfigDir = "~/.config/capital"

// ExpandPath resolves a leading ~ to the home directory and then expands
// $VAR references. Paths that need no expansion are returned unchanged.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return os.ExpandEnv(path)
}

// DatabasePath resolves a configured path, falling back to the default.
func DatabasePath(configured string) string {
	if strings.TrimSpace(configured) == "" {
		configured = DefaultDatabasePath
	}
	return ExpandPath(configured)
}
