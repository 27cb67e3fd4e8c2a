package config

import (
	"os"
	"path/filepath"
)

const (
	// AppName names the config and data directories.
	AppName = "tilebar"

	// ConfigFileName is looked up in ConfigDir when no --config is given.
	ConfigFileName = "config.yaml"

	// LogFileName is the default log file inside the data directory.
	LogFileName = "tilebar.log"
)

// ConfigDir returns $XDG_CONFIG_HOME/tilebar, or the platform equivalent.
func ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName), nil
}

// DataDir returns $XDG_DATA_HOME/tilebar, falling back to
// ~/.local/share/tilebar.
func DataDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", AppName), nil
}

// expandPath resolves a leading ~ and environment variables.
func expandPath(path string) string {
	path = os.ExpandEnv(path)
	if path == "~" || len(path) > 1 && path[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	return path
}
