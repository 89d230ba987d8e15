package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnvWithLocalBinFallback ensures the specified environment variable is
// present. It does not load .env from the working directory; instead it tries
// the app's <ConfigDir>/.env, then $HOME/.local/bin/.env, both with
// non-overwriting semantics, and re-reads the variable.
func LoadEnvWithLocalBinFallback(envName string) (string, error) {
	candidates := []string{filepath.Join(ConfigDir(), ".env")}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		candidates = append(candidates, filepath.Join(home, ".local", "bin", ".env"))
	}
	for _, envPath := range candidates {
		if info, statErr := os.Stat(envPath); statErr == nil && !info.IsDir() {
			// godotenv.Load does not override variables that are already set.
			_ = godotenv.Load(envPath)
		}
	}

	if v := os.Getenv(envName); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("environment variable %q not set; attempted fallback files %s",
		envName, strings.Join(candidates, ", "))
}

// EnvBool reports whether the variable holds a truthy value ("1", "true",
// "yes", "on", case-insensitive).
func EnvBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// EnvString returns the trimmed value of the variable, or fallback when the
// variable is unset or blank.
func EnvString(name, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return fallback
}

// EnvInt64 returns the variable parsed as int64, or fallback on absence or
// parse failure.
func EnvInt64(name string, fallback int64) int64 {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
