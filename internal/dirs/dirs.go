// Package dirs resolves the devcyclesim config and state locations following
// the XDG Base Directory layout.
package dirs

import (
	"os"
	"path/filepath"
)

const appName = "devcyclesim"

// LocalDirName is the per-project directory holding local overrides.
const LocalDirName = ".devcyclesim"

// ConfigDir returns the global configuration directory:
// XDG_CONFIG_HOME/devcyclesim, else ~/.config/devcyclesim.
func ConfigDir() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// StateDir returns the state directory: DEVCYCLESIM_STATE_DIR, else
// XDG_STATE_HOME/devcyclesim, else ~/.local/state/devcyclesim.
func StateDir() string {
	if dir := os.Getenv("DEVCYCLESIM_STATE_DIR"); dir != "" {
		return dir
	}
	return xdgDir("XDG_STATE_HOME", ".local", "state")
}

// LogsDir returns the default directory for run logs (StateDir/logs).
func LogsDir() string {
	return filepath.Join(StateDir(), "logs")
}

// LocalConfigDir returns the project-local override directory under base.
func LocalConfigDir(base string) string {
	return filepath.Join(base, LocalDirName)
}

func xdgDir(env string, fallback ...string) string {
	if xdg := os.Getenv(env); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	parts := append([]string{home}, fallback...)
	return filepath.Join(append(parts, appName)...)
}
