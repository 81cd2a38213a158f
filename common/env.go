// Package common holds the environment and filesystem layout shared by the
// warpsess binary and its commands.
package common

import (
	"os"
	"path/filepath"
)

// Environment variable names for configuration.
const (
	// ConfigDirEnv overrides the configuration directory.
	ConfigDirEnv = "WARPSESS_CONFIG_DIR"

	// SessionDirEnv overrides the folder a page's session is stored in.
	SessionDirEnv = "WARPSESS_SESSION_DIR"

	// PasswordEnv supplies the login password.
	PasswordEnv = "WARPSESS_PASSWORD"
)

const appDir = "warpsess"

// ConfigDir returns the configuration directory: $WARPSESS_CONFIG_DIR when
// set, otherwise warpsess inside the user's config directory, falling back
// to the working directory when the platform has none.
func ConfigDir() string {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		if abs, err := filepath.Abs(dir); err == nil {
			return abs
		}
		return dir
	}
	cdr, err := os.UserConfigDir()
	if err != nil {
		return appDir
	}
	return filepath.Join(cdr, appDir)
}

// SessionFolder is the folder holding the session record of page.
func SessionFolder(page string) string {
	return filepath.Join(ConfigDir(), "sessions", page)
}
