package util

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// Unified filesystem layout, following the host OS conventions:
//   - Linux/Unix: ~/.config/<app>, ~/.cache/<app>, ~/.log/<app>
//   - macOS:      ~/Library/Preferences|Caches|Logs/<app>
//   - Windows:    %APPDATA%/<app> (+ Cache, Logs subdirectories)
//
// Helpers return base directories only; callers create them as needed.

var (
	appNameMu sync.RWMutex
	appName   = "rolemenu"
)

// SetAppName sets the application name used to derive config/cache/log paths.
// Call before anything opens files; blank names are ignored.
func SetAppName(name string) {
	n := sanitizeAppName(name)
	if n == "" {
		return
	}
	appNameMu.Lock()
	appName = n
	appNameMu.Unlock()
}

// AppName returns the configured application name.
func AppName() string {
	appNameMu.RLock()
	defer appNameMu.RUnlock()
	return appName
}

func sanitizeAppName(name string) string {
	n := strings.TrimSpace(name)
	n = strings.ReplaceAll(n, "/", "-")
	n = strings.ReplaceAll(n, "\\", "-")
	n = strings.ReplaceAll(n, "\x00", "")
	return strings.TrimSpace(n)
}

func homeDir() string {
	if h := strings.TrimSpace(os.Getenv("HOME")); h != "" {
		return h
	}
	if h, err := os.UserHomeDir(); err == nil && strings.TrimSpace(h) != "" {
		return h
	}
	return "."
}

// ConfigDir returns the base directory for configuration files.
func ConfigDir() string {
	app := AppName()
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Preferences", app)
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, app)
		}
		return filepath.Join(homeDir(), app)
	default:
		return filepath.Join(homeDir(), ".config", app)
	}
}

// CacheDir returns the base directory for caches and durable data files.
func CacheDir() string {
	app := AppName()
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Caches", app)
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, app, "Cache")
		}
		return filepath.Join(homeDir(), app, "Cache")
	default:
		return filepath.Join(homeDir(), ".cache", app)
	}
}

// LogDir returns the base directory for log files.
func LogDir() string {
	app := AppName()
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Logs", app)
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, app, "Logs")
		}
		return filepath.Join(homeDir(), app, "Logs")
	default:
		return filepath.Join(homeDir(), ".log", app)
	}
}

// MenuDBPath returns the SQLite database path for menu persistence.
// Layout: <CacheDir>/menus/menus.db
func MenuDBPath() string {
	return filepath.Join(CacheDir(), "menus", "menus.db")
}
