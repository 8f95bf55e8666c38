// Package where implements a cross-platform resolver for application-specific filesystem paths.
package where

import (
	"os"
	"path/filepath"

	"github.com/jellytok/jellytok/constant"
	"github.com/jellytok/jellytok/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath is the environment variable identifier used to override the default configuration directory.
const EnvConfigPath = "JELLYTOK_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the absolute path to the primary application configuration directory.
// It honours XDG_CONFIG_HOME on Linux and the user profile equivalents on Darwin and Windows.
// The JELLYTOK_CONFIG_PATH environment variable overrides it.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.App))
}

// Cache resolves the absolute path to the application's persistent cache directory.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.App))
}

// Logs resolves the directory holding rotated log files.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Preferences resolves the persisted session and preference blob.
func Preferences() string {
	return filepath.Join(Config(), "preferences.json")
}

// Temp resolves the directory for volatile artifacts such as mpv IPC sockets.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.App))
}
